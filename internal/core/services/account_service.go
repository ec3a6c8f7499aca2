package services

import (
	"context"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type accountService struct {
	users ports.UserRepository
}

func NewAccountService(repos ports.Repositories) ports.AccountService {
	return &accountService{users: repos.Users}
}

func (s *accountService) Edit(ctx context.Context, user *domain.User, form domain.UserEditForm) (*domain.User, error) {
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	if err := form.Validate(); err != nil {
		return nil, err
	}
	return s.users.EditByID(ctx, user.ID, form)
}
