package services

import (
	"context"
	"errors"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type sessionService struct {
	users    ports.UserRepository
	sessions ports.SessionRepository
	crypto   ports.Crypto
	now      ports.Clock
}

func NewSessionService(repos ports.Repositories, crypto ports.Crypto, now ports.Clock) ports.SessionService {
	return &sessionService{
		users:    repos.Users,
		sessions: repos.Sessions,
		crypto:   crypto,
		now:      now,
	}
}

func (s *sessionService) ResolveByCookie(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessions.GetUserBySessionToken(ctx, token)
}

func (s *sessionService) ResolveByAccessToken(ctx context.Context, token string) (*domain.User, error) {
	if token == "" {
		return nil, nil
	}
	return s.sessions.GetUserByAccessToken(ctx, token)
}

func (s *sessionService) Create(ctx context.Context, form domain.SessionCreateForm) (*domain.SessionToken, *domain.User, error) {
	if err := form.Validate(); err != nil {
		return nil, nil, err
	}

	// Hashing before the lookup keeps unknown emails as slow as wrong passwords.
	candidate, err := s.crypto.HashPassword(form.Password)
	if err != nil {
		return nil, nil, domain.Unexpected("crypto.hash_password", err)
	}

	user, err := s.users.FindByCredentials(ctx, domain.UserCredentials{
		Email:        form.Email,
		PasswordHash: candidate.Encoded,
	})
	if err != nil {
		return nil, nil, err
	}
	if user == nil {
		return nil, nil, domain.ErrInvalidCredentials
	}

	ok, err := s.crypto.VerifyPassword(user.PasswordHash, form.Password)
	if err != nil {
		return nil, nil, domain.Unexpected("crypto.verify_password", err)
	}
	if !ok {
		return nil, nil, domain.ErrInvalidCredentials
	}

	var session domain.SessionToken
	err = insertWithRetry(ctx, "session.create", domain.ErrTokenAlreadyExists, func(ctx context.Context) error {
		session = domain.SessionToken{
			Token:     s.crypto.Token(),
			UserID:    user.ID,
			ExpiresAt: s.now().UTC().Add(domain.SessionTokenLifetime),
		}
		return s.sessions.Create(ctx, session)
	})
	if err != nil {
		if errors.Is(err, domain.ErrUserNotFound) {
			return nil, nil, domain.ErrInvalidCredentials
		}
		return nil, nil, err
	}

	return &session, user, nil
}

func (s *sessionService) Delete(ctx context.Context, user *domain.User, strategy ports.SessionDeleteStrategy) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if strategy.All {
		_, err := s.sessions.DeleteByUserID(ctx, user.ID)
		return err
	}
	_, err := s.sessions.DeleteToken(ctx, strategy.Token)
	return err
}
