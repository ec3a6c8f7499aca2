package postgres

import (
	"context"
	"database/sql"
	"errors"

	"github.com/google/uuid"
	"github.com/lib/pq"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

const applicationColumns = `id, title, secret_key, redirect_uri, is_dev, allowed_registrations`

type ApplicationRepository struct {
	db *sql.DB
}

func NewApplicationRepository(db *sql.DB) ports.ApplicationRepository {
	return &ApplicationRepository{db: db}
}

func scanApplication(row rowScanner) (*domain.Application, error) {
	app := &domain.Application{}
	err := row.Scan(&app.ID, &app.Title, &app.SecretKey, pq.Array(&app.RedirectURI), &app.IsDev, &app.AllowedRegistrations)
	if err != nil {
		return nil, err
	}
	return app, nil
}

func (r *ApplicationRepository) FindByID(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM clients WHERE id = $1`
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, domain.Unexpected("application.find_by_id", err)
	}
	return app, nil
}

func (r *ApplicationRepository) List(ctx context.Context) ([]*domain.Application, error) {
	query := `SELECT ` + applicationColumns + ` FROM clients ORDER BY title, id`
	rows, err := r.db.QueryContext(ctx, query)
	if err != nil {
		return nil, domain.Unexpected("application.list", err)
	}
	defer rows.Close()

	apps := []*domain.Application{}
	for rows.Next() {
		app, err := scanApplication(rows)
		if err != nil {
			return nil, domain.Unexpected("application.list", err)
		}
		apps = append(apps, app)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.Unexpected("application.list", err)
	}
	return apps, nil
}

func (r *ApplicationRepository) Create(ctx context.Context, app domain.Application) (*domain.Application, error) {
	query := `
		INSERT INTO clients (id, title, secret_key, redirect_uri, is_dev, allowed_registrations)
		VALUES ($1, $2, $3, $4, $5, $6)
		RETURNING ` + applicationColumns
	created, err := scanApplication(r.db.QueryRowContext(ctx, query,
		app.ID, app.Title, app.SecretKey, pq.Array(nonNil(app.RedirectURI)), app.IsDev, app.AllowedRegistrations,
	))
	if err != nil {
		return nil, domain.Unexpected("application.create", err)
	}
	return created, nil
}

func (r *ApplicationRepository) Edit(ctx context.Context, id uuid.UUID, form domain.ApplicationEditForm) (*domain.Application, error) {
	query := `
		UPDATE clients SET
			title = COALESCE($2, title),
			redirect_uri = COALESCE($3, redirect_uri),
			is_dev = COALESCE($4, is_dev),
			allowed_registrations = COALESCE($5, allowed_registrations)
		WHERE id = $1
		RETURNING ` + applicationColumns
	app, err := scanApplication(r.db.QueryRowContext(ctx, query,
		id, form.Title, pq.StringArray(form.RedirectURI), form.IsDev, form.AllowedRegistrations,
	))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, domain.Unexpected("application.edit", err)
	}
	return app, nil
}

func (r *ApplicationRepository) UpdateSecret(ctx context.Context, id uuid.UUID, secret string) (*domain.Application, error) {
	query := `UPDATE clients SET secret_key = $2 WHERE id = $1 RETURNING ` + applicationColumns
	app, err := scanApplication(r.db.QueryRowContext(ctx, query, id, secret))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, domain.ErrClientNotFound
		}
		return nil, domain.Unexpected("application.update_secret", err)
	}
	return app, nil
}
