package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type adminSessionService struct {
	adminUsers    ports.AdminUserRepository
	adminSessions ports.AdminSessionRepository
	accesso       ports.AccessoClient
	crypto        ports.Crypto
	now           ports.Clock
}

func NewAdminSessionService(repos ports.Repositories, accesso ports.AccessoClient, crypto ports.Crypto, now ports.Clock) ports.AdminSessionService {
	return &adminSessionService{
		adminUsers:    repos.AdminUsers,
		adminSessions: repos.AdminSessions,
		accesso:       accesso,
		crypto:        crypto,
		now:           now,
	}
}

// Create logs an operator in with a code obtained from the upstream accesso.
func (s *adminSessionService) Create(ctx context.Context, authorizationCode string) (*domain.AdminSessionToken, *domain.AdminUser, error) {
	if authorizationCode == "" {
		return nil, nil, &domain.ValidationError{Fields: map[string]string{"authorization_code": "required"}}
	}

	accessToken, err := s.accesso.ExchangeCode(ctx, authorizationCode)
	if err != nil {
		return nil, nil, err
	}
	profile, err := s.accesso.Viewer(ctx, accessToken)
	if err != nil {
		return nil, nil, err
	}

	admin, err := s.upsertAdmin(ctx, profile)
	if err != nil {
		return nil, nil, err
	}

	var session domain.AdminSessionToken
	err = insertWithRetry(ctx, "admin_session.create", domain.ErrTokenAlreadyExists, func(ctx context.Context) error {
		session = domain.AdminSessionToken{
			Token:     s.crypto.Token(),
			UserID:    admin.ID,
			ExpiresAt: s.now().UTC().Add(domain.SessionTokenLifetime),
		}
		return s.adminSessions.Create(ctx, session)
	})
	if err != nil {
		return nil, nil, err
	}

	return &session, admin, nil
}

func (s *adminSessionService) upsertAdmin(ctx context.Context, profile *domain.UpstreamProfile) (*domain.AdminUser, error) {
	existing, err := s.adminUsers.FindByAccessoID(ctx, profile.AccessoID)
	if err != nil {
		return nil, err
	}
	if existing != nil {
		if existing.FirstName == profile.FirstName && existing.LastName == profile.LastName {
			return existing, nil
		}
		existing.FirstName = profile.FirstName
		existing.LastName = profile.LastName
		return s.adminUsers.Update(ctx, *existing)
	}

	created, err := s.adminUsers.Create(ctx, domain.AdminUser{
		ID:        uuid.New(),
		AccessoID: profile.AccessoID,
		FirstName: profile.FirstName,
		LastName:  profile.LastName,
	})
	if err == nil {
		return created, nil
	}
	if !errors.Is(err, domain.ErrAdminUserAlreadyExists) {
		return nil, err
	}

	// Another login for the same operator won the insert.
	existing, err = s.adminUsers.FindByAccessoID(ctx, profile.AccessoID)
	if err != nil {
		return nil, err
	}
	if existing == nil {
		return nil, domain.Unexpected("admin_user.create", fmt.Errorf("admin user %s vanished after conflict", profile.AccessoID))
	}
	return existing, nil
}

func (s *adminSessionService) Resolve(ctx context.Context, token string) (*domain.AdminUser, error) {
	if token == "" {
		return nil, domain.ErrUnauthorized
	}
	admin, err := s.adminSessions.GetUserBySessionToken(ctx, token)
	if err != nil {
		return nil, err
	}
	if admin == nil {
		return nil, domain.ErrUnauthorized
	}
	return admin, nil
}

func (s *adminSessionService) Delete(ctx context.Context, user *domain.AdminUser, strategy ports.SessionDeleteStrategy) error {
	if user == nil {
		return domain.ErrUnauthorized
	}
	if strategy.All {
		_, err := s.adminSessions.DeleteByUserID(ctx, user.ID)
		return err
	}
	_, err := s.adminSessions.DeleteToken(ctx, strategy.Token)
	return err
}
