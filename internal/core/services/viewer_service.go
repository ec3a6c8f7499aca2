package services

import (
	"context"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type viewerService struct {
	sessions ports.SessionRepository
}

func NewViewerService(repos ports.Repositories) ports.ViewerService {
	return &viewerService{sessions: repos.Sessions}
}

func (s *viewerService) Get(ctx context.Context, accessToken string) (*domain.User, error) {
	if accessToken == "" {
		return nil, domain.ErrUnauthorized
	}
	user, err := s.sessions.GetUserByAccessToken(ctx, accessToken)
	if err != nil {
		return nil, err
	}
	if user == nil {
		return nil, domain.ErrUnauthorized
	}
	return user, nil
}
