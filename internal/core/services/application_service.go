package services

import (
	"context"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type applicationService struct {
	repo   ports.ApplicationRepository
	crypto ports.Crypto
}

func NewApplicationService(repos ports.Repositories, crypto ports.Crypto) ports.ApplicationService {
	return &applicationService{
		repo:   repos.Applications,
		crypto: crypto,
	}
}

func (s *applicationService) List(ctx context.Context) ([]*domain.Application, error) {
	apps, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	public := make([]*domain.Application, 0, len(apps))
	for _, app := range apps {
		p := app.WithoutSecret()
		public = append(public, &p)
	}
	return public, nil
}

func (s *applicationService) Get(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	app, err := s.repo.FindByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if app == nil {
		return nil, domain.ErrClientNotFound
	}
	p := app.WithoutSecret()
	return &p, nil
}

// Create is one of the two places the cleartext secret is handed out.
func (s *applicationService) Create(ctx context.Context, form domain.ApplicationForm) (*domain.Application, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return s.repo.Create(ctx, domain.Application{
		ID:                   uuid.New(),
		Title:                form.Title,
		SecretKey:            s.crypto.LongToken(),
		RedirectURI:          form.RedirectURI,
		IsDev:                form.IsDev,
		AllowedRegistrations: form.AllowedRegistrations,
	})
}

func (s *applicationService) Edit(ctx context.Context, id uuid.UUID, form domain.ApplicationEditForm) (*domain.Application, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}
	app, err := s.repo.Edit(ctx, id, form)
	if err != nil {
		return nil, err
	}
	p := app.WithoutSecret()
	return &p, nil
}

func (s *applicationService) RegenerateSecret(ctx context.Context, id uuid.UUID) (*domain.Application, error) {
	return s.repo.UpdateSecret(ctx, id, s.crypto.LongToken())
}
