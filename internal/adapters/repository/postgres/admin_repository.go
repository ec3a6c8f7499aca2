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

const adminUserColumns = `id, accesso_id, first_name, last_name`

var adminSessionForeignKeys = map[string]error{
	"admin_session_tokens_user_id_fkey": domain.ErrAdminUserNotFound,
}

type AdminUserRepository struct {
	db *sql.DB
}

func NewAdminUserRepository(db *sql.DB) ports.AdminUserRepository {
	return &AdminUserRepository{db: db}
}

func scanAdminUser(row rowScanner) (*domain.AdminUser, error) {
	user := &domain.AdminUser{}
	if err := row.Scan(&user.ID, &user.AccessoID, &user.FirstName, &user.LastName); err != nil {
		return nil, err
	}
	return user, nil
}

func (r *AdminUserRepository) FindByAccessoID(ctx context.Context, accessoID uuid.UUID) (*domain.AdminUser, error) {
	query := `SELECT ` + adminUserColumns + ` FROM admin_users WHERE accesso_id = $1`
	user, err := scanAdminUser(r.db.QueryRowContext(ctx, query, accessoID))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("admin_user.find_by_accesso_id", err)
	}
	return user, nil
}

func (r *AdminUserRepository) Create(ctx context.Context, user domain.AdminUser) (*domain.AdminUser, error) {
	query := `
		INSERT INTO admin_users (id, accesso_id, first_name, last_name)
		VALUES ($1, $2, $3, $4)
		RETURNING ` + adminUserColumns
	created, err := scanAdminUser(r.db.QueryRowContext(ctx, query, user.ID, user.AccessoID, user.FirstName, user.LastName))
	if err != nil {
		if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "admin_users_accesso_id_key" {
			return nil, domain.ErrAdminUserAlreadyExists
		}
		return nil, domain.Unexpected("admin_user.create", err)
	}
	return created, nil
}

func (r *AdminUserRepository) Update(ctx context.Context, user domain.AdminUser) (*domain.AdminUser, error) {
	query := `
		UPDATE admin_users SET first_name = $2, last_name = $3
		WHERE id = $1
		RETURNING ` + adminUserColumns
	updated, err := scanAdminUser(r.db.QueryRowContext(ctx, query, user.ID, user.FirstName, user.LastName))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrAdminUserNotFound
		}
		return nil, domain.Unexpected("admin_user.update", err)
	}
	return updated, nil
}

type AdminSessionRepository struct {
	db  *sql.DB
	now ports.Clock
}

func NewAdminSessionRepository(db *sql.DB, now ports.Clock) ports.AdminSessionRepository {
	return &AdminSessionRepository{db: db, now: now}
}

func (r *AdminSessionRepository) Create(ctx context.Context, token domain.AdminSessionToken) error {
	query := `INSERT INTO admin_session_tokens (token, user_id, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, token.Token, token.UserID, token.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrTokenAlreadyExists
		}
		if target := foreignKeyTarget(err, adminSessionForeignKeys); target != nil {
			return target
		}
		return domain.Unexpected("admin_session.create", err)
	}
	return nil
}

func (r *AdminSessionRepository) GetUserBySessionToken(ctx context.Context, token string) (*domain.AdminUser, error) {
	query := `
		SELECT u.id, u.accesso_id, u.first_name, u.last_name
		FROM admin_session_tokens s
		JOIN admin_users u ON u.id = s.user_id
		WHERE s.token = $1 AND s.expires_at > $2
	`
	user, err := scanAdminUser(r.db.QueryRowContext(ctx, query, token, r.now().UTC()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("admin_session.get_user_by_session_token", err)
	}
	return user, nil
}

func (r *AdminSessionRepository) DeleteToken(ctx context.Context, token string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_session_tokens WHERE token = $1`, token)
	if err != nil {
		return 0, domain.Unexpected("admin_session.delete_token", err)
	}
	return rowsAffected(res, "admin_session.delete_token")
}

func (r *AdminSessionRepository) DeleteByUserID(ctx context.Context, userID uuid.UUID) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_session_tokens WHERE user_id = $1`, userID)
	if err != nil {
		return 0, domain.Unexpected("admin_session.delete_by_user_id", err)
	}
	return rowsAffected(res, "admin_session.delete_by_user_id")
}

func (r *AdminSessionRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM admin_session_tokens WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.Unexpected("admin_session.purge_expired", err)
	}
	return rowsAffected(res, "admin_session.purge_expired")
}
