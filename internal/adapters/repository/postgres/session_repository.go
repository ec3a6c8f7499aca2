package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

var sessionForeignKeys = map[string]error{
	"session_tokens_user_id_fkey": domain.ErrUserNotFound,
}

type SessionRepository struct {
	db  *sql.DB
	now ports.Clock
}

func NewSessionRepository(db *sql.DB, now ports.Clock) ports.SessionRepository {
	return &SessionRepository{db: db, now: now}
}

func (r *SessionRepository) Create(ctx context.Context, token domain.SessionToken) error {
	query := `INSERT INTO session_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenAlreadyExists
		}
		if target := foreignKeyTarget(err, sessionForeignKeys); target != nil {
			return target
		}
		return domain.Unexpected("session.create", err)
	}
	return nil
}

func (r *SessionRepository) GetUserBySessionToken(ctx context.Context, token string) (*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.canonical_email, u.password_hash, u.first_name, u.last_name
		FROM session_tokens s
		JOIN users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2
	`
	return r.userByToken(ctx, "session.get_user_by_session_token", query, token)
}

func (r *SessionRepository) GetUserByAccessToken(ctx context.Context, token string) (*domain.User, error) {
	query := `
		SELECT u.id, u.email, u.canonical_email, u.password_hash, u.first_name, u.last_name
		FROM access_tokens a
		JOIN users u ON u.id = a.user_id
		WHERE a.token = $1 AND a.expires_at > $2
	`
	return r.userByToken(ctx, "session.get_user_by_access_token", query, token)
}

func (r *SessionRepository) userByToken(ctx context.Context, op, query, token string) (*domain.User, error) {
	user, err := scanUser(r.db.QueryRowContext(ctx, query, token, r.now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected(op, err)
	}
	return user, nil
}

func (r *SessionRepository) DeleteToken(ctx context.Context, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, domain.Unexpected("session.delete_token", err)
	}
	return rowsAffected(res, "session.delete_token")
}

func (r *SessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, domain.Unexpected("session.delete_by_user_id", err)
	}
	return rowsAffected(res, "session.delete_by_user_id")
}

func (r *SessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM session_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.Unexpected("session.purge_expired", err)
	}
	return rowsAffected(res, "session.purge_expired")
}
