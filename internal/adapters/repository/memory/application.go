package memory

import (
	"cmp"
	"context"
	"slices"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

type applicationRepository struct{ *store }

func cloneApplication(app domain.Application) *domain.Application {
	app.RedirectURI = slices.Clone(app.RedirectURI)
	return &app
}

func (r *applicationRepository) FindByID(_ context.Context, id uuid.UUID) (*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	app, ok := r.applications[id]
	if !ok {
		return nil, nil
	}
	return cloneApplication(app), nil
}

func (r *applicationRepository) List(_ context.Context) ([]*domain.Application, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	apps := make([]*domain.Application, 0, len(r.applications))
	for _, app := range r.applications {
		apps = append(apps, cloneApplication(app))
	}
	slices.SortFunc(apps, func(a, b *domain.Application) int {
		return cmp.Or(cmp.Compare(a.Title, b.Title), cmp.Compare(a.ID.String(), b.ID.String()))
	})
	return apps, nil
}

func (r *applicationRepository) Create(_ context.Context, app domain.Application) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.applications[app.ID]; ok {
		return nil, domain.Unexpected("application.create", domain.ErrTokenAlreadyExists)
	}
	if app.RedirectURI == nil {
		app.RedirectURI = []string{}
	}
	r.applications[app.ID] = *cloneApplication(app)
	return cloneApplication(app), nil
}

func (r *applicationRepository) Edit(_ context.Context, id uuid.UUID, form domain.ApplicationEditForm) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.applications[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	if form.Title != nil {
		app.Title = *form.Title
	}
	if form.RedirectURI != nil {
		app.RedirectURI = slices.Clone(form.RedirectURI)
	}
	if form.IsDev != nil {
		app.IsDev = *form.IsDev
	}
	if form.AllowedRegistrations != nil {
		app.AllowedRegistrations = *form.AllowedRegistrations
	}
	r.applications[id] = app
	return cloneApplication(app), nil
}

func (r *applicationRepository) UpdateSecret(_ context.Context, id uuid.UUID, secret string) (*domain.Application, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	app, ok := r.applications[id]
	if !ok {
		return nil, domain.ErrClientNotFound
	}
	app.SecretKey = secret
	r.applications[id] = app
	return cloneApplication(app), nil
}
