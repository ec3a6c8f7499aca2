package domain

import (
	"time"

	"github.com/google/uuid"
)

const (
	SessionTokenLifetime      = 14 * 24 * time.Hour
	AccessTokenLifetime       = 24 * time.Hour
	AuthorizationCodeLifetime = 15 * time.Minute
	RegisterRequestLifetime   = 24 * time.Hour
)

type SessionToken struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t SessionToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type AdminSessionToken struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t AdminSessionToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type AccessToken struct {
	Token     string    `json:"-"`
	UserID    uuid.UUID `json:"user_id"`
	ClientID  uuid.UUID `json:"client_id"`
	Scopes    []string  `json:"scopes"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (t AccessToken) IsExpired(now time.Time) bool {
	return !now.Before(t.ExpiresAt)
}

type AuthorizationCode struct {
	Code        string
	ClientID    uuid.UUID
	UserID      uuid.UUID
	RedirectURI string
	Scopes      []string
	CreatedAt   time.Time
}

func (c AuthorizationCode) ExpiresAt() time.Time {
	return c.CreatedAt.Add(AuthorizationCodeLifetime)
}

// IsExpired reports whether the code can no longer be redeemed at now.
func (c AuthorizationCode) IsExpired(now time.Time) bool {
	return !now.Before(c.ExpiresAt())
}

// IsCodeValid compares the presented value with the stored one.
func (c AuthorizationCode) IsCodeValid(code string) bool {
	return c.Code == code
}

type RegisterRequest struct {
	Email     string    `json:"email"`
	Code      string    `json:"-"`
	ExpiresAt time.Time `json:"expires_at"`
}

func (r RegisterRequest) IsExpired(now time.Time) bool {
	return !now.Before(r.ExpiresAt)
}
