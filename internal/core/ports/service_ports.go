package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

type RegistrationService interface {
	CreateRegisterRequest(ctx context.Context, form domain.RegisterRequestForm) (*domain.RegisterRequest, error)
	ConfirmRegistration(ctx context.Context, form domain.RegisterConfirmForm) error
}

// SessionDeleteStrategy selects every session of a user or a single token.
type SessionDeleteStrategy struct {
	All   bool
	Token string
}

func DeleteAllSessions() SessionDeleteStrategy {
	return SessionDeleteStrategy{All: true}
}

func DeleteSingleSession(token string) SessionDeleteStrategy {
	return SessionDeleteStrategy{Token: token}
}

type SessionService interface {
	ResolveByCookie(ctx context.Context, token string) (*domain.User, error)
	ResolveByAccessToken(ctx context.Context, token string) (*domain.User, error)
	Create(ctx context.Context, form domain.SessionCreateForm) (*domain.SessionToken, *domain.User, error)
	Delete(ctx context.Context, user *domain.User, strategy SessionDeleteStrategy) error
}

type AccountService interface {
	Edit(ctx context.Context, user *domain.User, form domain.UserEditForm) (*domain.User, error)
}

type AuthorizeResult struct {
	Code        string
	RedirectURI string
	State       string
}

type ExchangeResult struct {
	AccessToken string
	TokenType   string
	ExpiresAt   time.Time
}

type OAuthService interface {
	Authorize(ctx context.Context, actor *domain.User, form domain.AuthorizeForm) (*AuthorizeResult, error)
	Exchange(ctx context.Context, form domain.TokenExchangeForm) (*ExchangeResult, error)
}

type ViewerService interface {
	Get(ctx context.Context, accessToken string) (*domain.User, error)
}

type AdminSessionService interface {
	Create(ctx context.Context, authorizationCode string) (*domain.AdminSessionToken, *domain.AdminUser, error)
	Resolve(ctx context.Context, token string) (*domain.AdminUser, error)
	Delete(ctx context.Context, user *domain.AdminUser, strategy SessionDeleteStrategy) error
}

type ApplicationService interface {
	List(ctx context.Context) ([]*domain.Application, error)
	Get(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	Create(ctx context.Context, form domain.ApplicationForm) (*domain.Application, error)
	Edit(ctx context.Context, id uuid.UUID, form domain.ApplicationEditForm) (*domain.Application, error)
	RegenerateSecret(ctx context.Context, id uuid.UUID) (*domain.Application, error)
}

type CleanupService interface {
	PurgeExpired(ctx context.Context) (map[string]int64, error)
}
