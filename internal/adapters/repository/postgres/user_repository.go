package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const userColumns = `id, email, canonical_email, password_hash, first_name, last_name`

type UserRepository struct {
	db *sql.DB
}

func NewUserRepository(db *sql.DB) ports.UserRepository {
	return &UserRepository{db: db}
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanUser(row rowScanner) (*domain.User, error) {
	user := &domain.User{}
	err := row.Scan(&user.ID, &user.Email, &user.CanonicalEmail, &user.PasswordHash, &user.FirstName, &user.LastName)
	if err != nil {
		return nil, err
	}
	return user, nil
}

func (r *UserRepository) HasWithEmail(ctx context.Context, email string) (bool, error) {
	query := `SELECT EXISTS (SELECT 1 FROM users WHERE canonical_email = $1)`
	var exists bool
	if err := r.db.QueryRowContext(ctx, query, domain.CanonicalEmail(email)).Scan(&exists); err != nil {
		return false, domain.Unexpected("users.has_with_email", err)
	}
	return exists, nil
}

func (r *UserRepository) Register(ctx context.Context, form domain.UserRegisterForm) (*domain.User, error) {
	query := `
		INSERT INTO users (id, email, canonical_email, password_hash, first_name, last_name)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query,
		form.ID, form.Email, domain.CanonicalEmail(form.Email), form.PasswordHash, form.FirstName, form.LastName,
	))
	if err != nil {
		if constraint, ok := constraintError(err, uniqueViolation); ok && constraint == "users_canonical_email_key" {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, domain.Unexpected("users.register", err)
	}
	return user, nil
}

// FindByCredentials locates the row by email only. The caller verifies the
// stored hash against the password.
func (r *UserRepository) FindByCredentials(ctx context.Context, creds domain.UserCredentials) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE canonical_email = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, domain.CanonicalEmail(creds.Email)))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("users.find_by_credentials", err)
	}
	return user, nil
}

func (r *UserRepository) GetByID(ctx context.Context, id uuid.UUID) (*domain.User, error) {
	query := `SELECT ` + userColumns + ` FROM users WHERE id = $1`
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("users.get_by_id", err)
	}
	return user, nil
}

func (r *UserRepository) EditByID(ctx context.Context, id uuid.UUID, form domain.UserEditForm) (*domain.User, error) {
	var canonical *string
	if form.Email != nil {
		c := domain.CanonicalEmail(*form.Email)
		canonical = &c
	}

	query := `
		UPDATE users SET
			first_name = COALESCE($2, first_name),
			last_name = COALESCE($3, last_name),
			email = COALESCE($4, email),
			canonical_email = COALESCE($5, canonical_email)
		WHERE id = $1
		RETURNING ` + userColumns
	user, err := scanUser(r.db.QueryRowContext(ctx, query, id, form.FirstName, form.LastName, form.Email, canonical))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrUserNotFound
		}
		if isUniqueViolation(err) {
			return nil, domain.ErrEmailAlreadyExists
		}
		return nil, domain.Unexpected("users.edit_by_id", err)
	}
	return user, nil
}
