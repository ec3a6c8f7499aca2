package memory

import (
	"context"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

type adminUserRepository struct{ *store }

func (r *adminUserRepository) FindByAccessoID(_ context.Context, accessoID uuid.UUID) (*domain.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	for _, u := range r.adminUsers {
		if u.AccessoID == accessoID {
			return &u, nil
		}
	}
	return nil, nil
}

func (r *adminUserRepository) Create(_ context.Context, user domain.AdminUser) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, u := range r.adminUsers {
		if u.AccessoID == user.AccessoID {
			return nil, domain.ErrAdminUserAlreadyExists
		}
	}
	r.adminUsers[user.ID] = user
	return &user, nil
}

func (r *adminUserRepository) Update(_ context.Context, user domain.AdminUser) (*domain.AdminUser, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.adminUsers[user.ID]
	if !ok {
		return nil, domain.ErrAdminUserNotFound
	}
	existing.FirstName = user.FirstName
	existing.LastName = user.LastName
	r.adminUsers[user.ID] = existing
	return &existing, nil
}

type adminSessionRepository struct{ *store }

func (r *adminSessionRepository) Create(_ context.Context, token domain.AdminSessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adminSessions[token.Token]; ok {
		return domain.ErrTokenAlreadyExists
	}
	if _, ok := r.adminUsers[token.UserID]; !ok {
		return domain.ErrAdminUserNotFound
	}
	r.adminSessions[token.Token] = token
	return nil
}

func (r *adminSessionRepository) GetUserBySessionToken(_ context.Context, token string) (*domain.AdminUser, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.adminSessions[token]
	if !ok || session.IsExpired(r.now()) {
		return nil, nil
	}
	user, ok := r.adminUsers[session.UserID]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *adminSessionRepository) DeleteToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.adminSessions[token]; !ok {
		return 0, nil
	}
	delete(r.adminSessions, token)
	return 1, nil
}

func (r *adminSessionRepository) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, session := range r.adminSessions {
		if session.UserID == userID {
			delete(r.adminSessions, token)
			n++
		}
	}
	return n, nil
}

func (r *adminSessionRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, session := range r.adminSessions {
		if session.IsExpired(now) {
			delete(r.adminSessions, token)
			n++
		}
	}
	return n, nil
}
