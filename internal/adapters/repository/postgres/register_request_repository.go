package postgres

import (
	"context"
	"database/sql"
	"errors"
	"time"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type RegisterRequestRepository struct {
	db  *sql.DB
	now ports.Clock
}

func NewRegisterRequestRepository(db *sql.DB, now ports.Clock) ports.RegisterRequestRepository {
	return &RegisterRequestRepository{db: db, now: now}
}

func (r *RegisterRequestRepository) Save(ctx context.Context, req domain.RegisterRequest) error {
	query := `INSERT INTO registration_requests (confirmation_code, email, expires_at) VALUES ($1, $2, $3)`
	_, err := r.db.ExecContext(ctx, query, req.Code, req.Email, req.ExpiresAt)
	if err != nil {
		if isUniqueViolation(err) {
			return domain.ErrCodeAlreadyExists
		}
		return domain.Unexpected("register_requests.save", err)
	}
	return nil
}

// GetByCode only returns requests that have not expired yet.
func (r *RegisterRequestRepository) GetByCode(ctx context.Context, code string) (*domain.RegisterRequest, error) {
	query := `
		SELECT confirmation_code, email, expires_at
		FROM registration_requests
		WHERE confirmation_code = $1 AND expires_at > $2
	`
	req := &domain.RegisterRequest{}
	err := r.db.QueryRowContext(ctx, query, code, r.now().UTC()).Scan(&req.Code, &req.Email, &req.ExpiresAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("register_requests.get_by_code", err)
	}
	return req, nil
}

func (r *RegisterRequestRepository) DeleteAllForEmail(ctx context.Context, email string) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registration_requests WHERE lower(email) = $1`, domain.CanonicalEmail(email))
	if err != nil {
		return 0, domain.Unexpected("register_requests.delete_all_for_email", err)
	}
	return rowsAffected(res, "register_requests.delete_all_for_email")
}

func (r *RegisterRequestRepository) PurgeExpired(ctx context.Context, now time.Time) (int64, error) {
	res, err := r.db.ExecContext(ctx, `DELETE FROM registration_requests WHERE expires_at <= $1`, now)
	if err != nil {
		return 0, domain.Unexpected("register_requests.purge_expired", err)
	}
	return rowsAffected(res, "register_requests.purge_expired")
}

func rowsAffected(res sql.Result, op string) (int64, error) {
	n, err := res.RowsAffected()
	if err != nil {
		return 0, domain.Unexpected(op, err)
	}
	return n, nil
}
