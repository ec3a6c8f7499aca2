package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/lib/pq"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

var authCodeForeignKeys = map[string]error{
	"authorization_codes_client_id_fkey": domain.ErrClientNotFound,
	"authorization_codes_user_id_fkey":   domain.ErrUserNotFound,
}

var accessTokenForeignKeys = map[string]error{
	"access_tokens_client_id_fkey": domain.ErrClientNotFound,
	"access_tokens_user_id_fkey":   domain.ErrUserNotFound,
}

type AuthCodeRepository struct {
	db *sql.DB
}

func NewAuthCodeRepository(db *sql.DB) ports.AuthCodeRepository {
	return &AuthCodeRepository{db: db}
}

func (r *AuthCodeRepository) Create(ctx context.Context, code domain.AuthorizationCode) error {
	query := `
		INSERT INTO authorization_codes (code, client_id, user_id, redirect_uri, scope, created_at)
		VALUES ($1, $2, $3, $4, $5, $6)
	`
	_, err := r.db.ExecContext(ctx, query,
		code.Code, code.ClientID, code.UserID, code.RedirectURI, pq.Array(nonNil(code.Scopes)), code.CreatedAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeAlreadyExists
		}
		if target := foreignKeyTarget(err, authCodeForeignKeys); target != nil {
			return target
		}
		return domain.Unexpected("auth_code.create", err)
	}
	return nil
}

// Read returns the code regardless of its age; expiry is decided by the caller.
func (r *AuthCodeRepository) Read(ctx context.Context, code string) (*domain.AuthorizationCode, error) {
	query := `
		SELECT code, client_id, user_id, redirect_uri, scope, created_at
		FROM authorization_codes
		WHERE code = $1
	`
	c := &domain.AuthorizationCode{}
	err := r.db.QueryRowContext(ctx, query, code).Scan(
		&c.Code, &c.ClientID, &c.UserID, &c.RedirectURI, pq.Array(&c.Scopes), &c.CreatedAt,
	)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("auth_code.read", err)
	}
	return c, nil
}

func (r *AuthCodeRepository) Consume(ctx context.Context, code string) (bool, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM authorization_codes WHERE code = $1`, code)
	if err != nil {
		return false, domain.Unexpected("auth_code.consume", err)
	}
	n, err := rowsAffected(res, "auth_code.consume")
	if err != nil {
		return false, err
	}
	return n == 1, nil
}

func (r *AuthCodeRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	cutoff := now.Add(-domain.AuthorizationCodeLifetime)
	res, err := r.db.ExecContext(ctx, `DELETE FROM authorization_codes WHERE created_at <= $1`, cutoff)
	if err != nil {
		return 0, domain.Unexpected("auth_code.purge_expired", err)
	}
	return rowsAffected(res, "auth_code.purge_expired")
}

type AccessTokenRepository struct {
	db *sql.DB
}

func NewAccessTokenRepository(db *sql.DB) ports.AccessTokenRepository {
	return &AccessTokenRepository{db: db}
}

func (r *AccessTokenRepository) Create(ctx context.Context, token domain.AccessToken) error {
	query := `
		INSERT INTO access_tokens (token, user_id, client_id, scopes, expires_at)
		VALUES ($1, $2, $3, $4, $5)
	`
	_, err := r.db.ExecContext(ctx, query,
		token.Token, token.UserID, token.ClientID, pq.Array(nonNil(token.Scopes)), token.ExpiresAt,
	)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenAlreadyExists
		}
		if target := foreignKeyTarget(err, accessTokenForeignKeys); target != nil {
			return target
		}
		return domain.Unexpected("access_token.create", err)
	}
	return nil
}

func (r *AccessTokenRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM access_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.Unexpected("access_token.purge_expired", err)
	}
	return rowsAffected(res, "access_token.purge_expired")
}

// nonNil keeps NOT NULL array columns satisfied.
func nonNil(s []string) []string {
	if s == nil {
		return []string{}
	}
	return s
}
