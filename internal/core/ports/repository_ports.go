package ports

import (
	"context"
	"time"

	"github.com/google/uuid"
	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

// Getters return (nil, nil) when the row does not exist.

type UserRepository interface {
	HasWithEmail(ctx context.Context, email string) (bool, error)
	Register(ctx context.Context, form domain.UserRegisterForm) (*domain.User, error)
	FindByCredentials(ctx context.Context, creds domain.UserCredentials) (*domain.User, error)
	GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error)
	EditByID(ctx context.Context, id uuid.UUID, form domain.UserEditForm) (*domain.User, error)
}

type RegisterRequestRepository interface {
	ExpiredPurger
	Save(ctx context.Context, req domain.RegisterRequest) error
	GetByCode(ctx context.Context, code string) (*domain.RegisterRequest, error)
	DeleteAllForEmail(ctx context.Context, email string) (int64, error)
}

type SessionRepository interface {
	ExpiredPurger
	Create(ctx context.Context, token domain.SessionToken) error
	GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error)
	GetUserByAccessToken(ctx context.Context, token string) (*domain.User, error)
	DeleteToken(ctx context.Context, token string) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

type AuthCodeRepository interface {
	ExpiredPurger
	Create(ctx context.Context, code domain.AuthorizationCode) error
	Read(ctx context.Context, code string) (*domain.AuthorizationCode, error)
	// Consume deletes the code and reports whether this call removed it.
	Consume(ctx context.Context, code string) (bool, error)
}

type AccessTokenRepository interface {
	ExpiredPurger
	Create(ctx context.Context, token domain.AccessToken) error
}

type ApplicationRepository interface {
	FindByID(ctx context.Context, id uuid.UUID) (*domain.Application, error)
	List(ctx context.Context) ([]*domain.Application, error)
	Create(ctx context.Context, app domain.Application) (*domain.Application, error)
	Edit(ctx context.Context, id uuid.UUID, form domain.ApplicationEditForm) (*domain.Application, error)
	UpdateSecret(ctx context.Context, id uuid.UUID, secret string) (*domain.Application, error)
}

type AdminUserRepository interface {
	FindByAccessoID(ctx context.Context, accessoID uuid.UUID) (*domain.AdminUser, error)
	Create(ctx context.Context, user domain.AdminUser) (*domain.AdminUser, error)
	Update(ctx context.Context, user domain.AdminUser) (*domain.AdminUser, error)
}

type AdminSessionRepository interface {
	ExpiredPurger
	Create(ctx context.Context, token domain.AdminSessionToken) error
	GetUserBySessionToken(ctx context.Context, token string) (*domain.AdminUser, error)
	DeleteToken(ctx context.Context, token string) (int64, error)
	DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error)
}

// ExpiredPurger removes rows that can no longer be used at now.
type ExpiredPurger interface {
	PurgeExpired(ctx context.Context, now time.Time) (int64, error)
}

// Repositories bundles the capabilities for dependency injection only.
type Repositories struct {
	Users            UserRepository
	RegisterRequests RegisterRequestRepository
	Sessions         SessionRepository
	AuthCodes        AuthCodeRepository
	AccessTokens     AccessTokenRepository
	Applications     ApplicationRepository
	AdminUsers       AdminUserRepository
	AdminSessions    AdminSessionRepository

	// Purgers is keyed by table name.
	Purgers map[string]ExpiredPurger
}
