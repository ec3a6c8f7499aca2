package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type registrationService struct {
	users    ports.UserRepository
	requests ports.RegisterRequestRepository
	crypto   ports.Crypto
	email    ports.EmailNotifier
	now      ports.Clock
}

func NewRegistrationService(repos ports.Repositories, crypto ports.Crypto, email ports.EmailNotifier, now ports.Clock) ports.RegistrationService {
	return &registrationService{
		users:    repos.Users,
		requests: repos.RegisterRequests,
		crypto:   crypto,
		email:    email,
		now:      now,
	}
}

func (s *registrationService) CreateRegisterRequest(ctx context.Context, form domain.RegisterRequestForm) (*domain.RegisterRequest, error) {
	if err := form.Validate(); err != nil {
		return nil, err
	}

	exists, err := s.users.HasWithEmail(ctx, form.Email)
	if err != nil {
		return nil, err
	}
	if exists {
		return nil, domain.ErrEmailAlreadyRegistered
	}

	var req domain.RegisterRequest
	err = insertWithRetry(ctx, "register_requests.save", domain.ErrCodeAlreadyExists, func(ctx context.Context) error {
		req = domain.RegisterRequest{
			Email:     form.Email,
			Code:      s.crypto.ConfirmationCode(),
			ExpiresAt: s.now().UTC().Add(domain.RegisterRequestLifetime),
		}
		return s.requests.Save(ctx, req)
	})
	if err != nil {
		return nil, err
	}

	// The caller retries the whole request when the code never reached the inbox.
	if err := s.email.Send(ctx, req.Email, domain.RegisterConfirmation{Code: req.Code}); err != nil {
		return nil, fmt.Errorf("failed to send confirmation: %w", err)
	}

	return &req, nil
}

func (s *registrationService) ConfirmRegistration(ctx context.Context, form domain.RegisterConfirmForm) error {
	if err := form.Validate(); err != nil {
		return err
	}

	req, err := s.requests.GetByCode(ctx, form.ConfirmationCode)
	if err != nil {
		return err
	}
	if req == nil || req.IsExpired(s.now()) {
		return domain.ErrCodeNotFound
	}

	hash, err := s.crypto.HashPassword(form.Password)
	if err != nil {
		return domain.Unexpected("crypto.hash_password", err)
	}

	user, err := s.users.Register(ctx, domain.UserRegisterForm{
		ID:           uuid.New(),
		Email:        req.Email,
		PasswordHash: hash.Encoded,
		FirstName:    form.FirstName,
		LastName:     form.LastName,
	})
	if err != nil {
		if errors.Is(err, domain.ErrEmailAlreadyExists) {
			return domain.ErrAlreadyActivated
		}
		return err
	}

	// The account exists from here on; later failures leave pending requests to expire.
	if err := s.email.Send(ctx, user.Email, domain.RegisterFinished{FirstName: user.FirstName, LastName: user.LastName}); err != nil {
		log.Ctx(ctx).Warn().Err(err).Stringer("user_id", user.ID).Msg("register finished email not delivered")
	}

	if _, err := s.requests.DeleteAllForEmail(ctx, req.Email); err != nil {
		log.Ctx(ctx).Warn().Err(err).Stringer("user_id", user.ID).Msg("failed to clean up register requests")
	}

	return nil
}
