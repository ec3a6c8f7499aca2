package services

import (
	"context"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const tokenTypeBearer = "bearer"

type oauthService struct {
	applications ports.ApplicationRepository
	authCodes    ports.AuthCodeRepository
	accessTokens ports.AccessTokenRepository
	crypto       ports.Crypto
	now          ports.Clock
}

func NewOAuthService(repos ports.Repositories, crypto ports.Crypto, now ports.Clock) ports.OAuthService {
	return &oauthService{
		applications: repos.Applications,
		authCodes:    repos.AuthCodes,
		accessTokens: repos.AccessTokens,
		crypto:       crypto,
		now:          now,
	}
}

// Authorize issues an authorization code for actor. Until the redirect_uri is
// proven to belong to the client, errors never carry it.
func (s *oauthService) Authorize(ctx context.Context, actor *domain.User, form domain.AuthorizeForm) (*ports.AuthorizeResult, error) {
	if actor == nil {
		return nil, &domain.AuthorizeError{Kind: domain.AuthorizeUnauthenticated}
	}
	if err := form.Validate(); err != nil {
		return nil, &domain.AuthorizeError{Kind: domain.AuthorizeInvalidRequest}
	}

	clientID, err := uuid.Parse(form.ClientID)
	if err != nil {
		return nil, &domain.AuthorizeError{Kind: domain.AuthorizeInvalidRequest}
	}
	client, err := s.applications.FindByID(ctx, clientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.IsAllowedRedirect(form.RedirectURI) {
		return nil, &domain.AuthorizeError{Kind: domain.AuthorizeInvalidRequest}
	}

	if !client.IsAllowedResponse(form.ResponseType) {
		return nil, &domain.AuthorizeError{
			Kind:        domain.AuthorizeUnsupportedResponseType,
			RedirectURI: form.RedirectURI,
			State:       form.State,
		}
	}

	var code domain.AuthorizationCode
	err = insertWithRetry(ctx, "auth_code.create", domain.ErrCodeAlreadyExists, func(ctx context.Context) error {
		code = domain.AuthorizationCode{
			Code:        s.crypto.Token(),
			ClientID:    client.ID,
			UserID:      actor.ID,
			RedirectURI: form.RedirectURI,
			Scopes:      form.Scopes,
			CreatedAt:   s.now().UTC(),
		}
		return s.authCodes.Create(ctx, code)
	})
	if err != nil {
		return nil, err
	}

	return &ports.AuthorizeResult{
		Code:        code.Code,
		RedirectURI: form.RedirectURI,
		State:       form.State,
	}, nil
}

func (s *oauthService) Exchange(ctx context.Context, form domain.TokenExchangeForm) (*ports.ExchangeResult, error) {
	if err := form.Validate(); err != nil {
		return nil, &domain.TokenError{Kind: domain.TokenInvalidRequest}
	}
	if form.GrantType != domain.GrantTypeAuthorizationCode {
		return nil, &domain.TokenError{Kind: domain.TokenUnsupportedGrantType}
	}
	clientID, err := uuid.Parse(form.ClientID)
	if err != nil {
		return nil, &domain.TokenError{Kind: domain.TokenInvalidRequest}
	}

	code, err := s.authCodes.Read(ctx, form.Code)
	if err != nil {
		return nil, err
	}
	if code == nil {
		return nil, &domain.TokenError{Kind: domain.TokenInvalidGrant}
	}
	if !code.IsCodeValid(form.Code) ||
		code.IsExpired(s.now()) ||
		code.RedirectURI != form.RedirectURI ||
		code.ClientID != clientID {
		return nil, &domain.TokenError{Kind: domain.TokenInvalidGrant}
	}

	client, err := s.applications.FindByID(ctx, code.ClientID)
	if err != nil {
		return nil, err
	}
	if client == nil || !client.IsEnabled() || !client.IsAllowedSecret(clientID, form.ClientSecret) {
		return nil, &domain.TokenError{Kind: domain.TokenInvalidClient}
	}

	consumed, err := s.authCodes.Consume(ctx, code.Code)
	if err != nil {
		return nil, err
	}
	if !consumed {
		log.Ctx(ctx).Info().Stringer("client_id", client.ID).Msg("authorization code redeemed twice")
		return nil, &domain.TokenError{Kind: domain.TokenInvalidGrant}
	}

	var token domain.AccessToken
	err = insertWithRetry(ctx, "access_token.create", domain.ErrTokenAlreadyExists, func(ctx context.Context) error {
		token = domain.AccessToken{
			Token:     s.crypto.LongToken(),
			UserID:    code.UserID,
			ClientID:  code.ClientID,
			Scopes:    code.Scopes,
			ExpiresAt: s.now().UTC().Add(domain.AccessTokenLifetime),
		}
		return s.accessTokens.Create(ctx, token)
	})
	if err != nil {
		return nil, err
	}

	return &ports.ExchangeResult{
		AccessToken: token.Token,
		TokenType:   tokenTypeBearer,
		ExpiresAt:   token.ExpiresAt,
	}, nil
}
