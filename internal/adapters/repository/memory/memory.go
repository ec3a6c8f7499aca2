package memory

import (
	"context"
	"slices"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

// store holds every table behind one lock so joins see a consistent view.
type store struct {
	mu  sync.RWMutex
	now ports.Clock

	users            map[uuid.UUID]domain.User
	registerRequests map[string]domain.RegisterRequest
	sessions         map[string]domain.SessionToken
	accessTokens     map[string]domain.AccessToken
	authCodes        map[string]domain.AuthorizationCode
	applications     map[uuid.UUID]domain.Application
	adminUsers       map[uuid.UUID]domain.AdminUser
	adminSessions    map[string]domain.AdminSessionToken
}

// NewRepositories returns a fresh in-memory bundle. Constraints mirror the
// Postgres schema.
func NewRepositories(now ports.Clock) ports.Repositories {
	s := &store{
		now:              now,
		users:            make(map[uuid.UUID]domain.User),
		registerRequests: make(map[string]domain.RegisterRequest),
		sessions:         make(map[string]domain.SessionToken),
		accessTokens:     make(map[string]domain.AccessToken),
		authCodes:        make(map[string]domain.AuthorizationCode),
		applications:     make(map[uuid.UUID]domain.Application),
		adminUsers:       make(map[uuid.UUID]domain.AdminUser),
		adminSessions:    make(map[string]domain.AdminSessionToken),
	}

	sessions := &sessionRepository{s}
	adminSessions := &adminSessionRepository{s}
	registerRequests := &registerRequestRepository{s}
	authCodes := &authCodeRepository{s}
	accessTokens := &accessTokenRepository{s}

	return ports.Repositories{
		Users:            &userRepository{s},
		RegisterRequests: registerRequests,
		Sessions:         sessions,
		AuthCodes:        authCodes,
		AccessTokens:     accessTokens,
		Applications:     &applicationRepository{s},
		AdminUsers:       &adminUserRepository{s},
		AdminSessions:    adminSessions,
		Purgers: map[string]ports.ExpiredPurger{
			"session_tokens":        sessions,
			"admin_session_tokens":  adminSessions,
			"registration_requests": registerRequests,
			"authorization_codes":   authCodes,
			"access_tokens":         accessTokens,
		},
	}
}

func (s *store) userByCanonicalEmail(canonical string) (domain.User, bool) {
	for _, u := range s.users {
		if u.CanonicalEmail == canonical {
			return u, true
		}
	}
	return domain.User{}, false
}

type userRepository struct{ *store }

func (r *userRepository) HasWithEmail(_ context.Context, email string) (bool, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.userByCanonicalEmail(domain.CanonicalEmail(email))
	return ok, nil
}

func (r *userRepository) Register(_ context.Context, form domain.UserRegisterForm) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	canonical := domain.CanonicalEmail(form.Email)
	if _, ok := r.userByCanonicalEmail(canonical); ok {
		return nil, domain.ErrEmailAlreadyExists
	}
	user := domain.User{
		ID:             form.ID,
		Email:          form.Email,
		CanonicalEmail: canonical,
		PasswordHash:   form.PasswordHash,
		FirstName:      form.FirstName,
		LastName:       form.LastName,
	}
	r.users[user.ID] = user
	return &user, nil
}

func (r *userRepository) FindByCredentials(_ context.Context, creds domain.UserCredentials) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.userByCanonicalEmail(domain.CanonicalEmail(creds.Email))
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepository) GetByID(_ context.Context, id uuid.UUID) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	user, ok := r.users[id]
	if !ok {
		return nil, nil
	}
	return &user, nil
}

func (r *userRepository) EditByID(_ context.Context, id uuid.UUID, form domain.UserEditForm) (*domain.User, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	user, ok := r.users[id]
	if !ok {
		return nil, domain.ErrUserNotFound
	}
	if form.Email != nil {
		canonical := domain.CanonicalEmail(*form.Email)
		if other, taken := r.userByCanonicalEmail(canonical); taken && other.ID != id {
			return nil, domain.ErrEmailAlreadyExists
		}
		user.Email = *form.Email
		user.CanonicalEmail = canonical
	}
	if form.FirstName != nil {
		user.FirstName = *form.FirstName
	}
	if form.LastName != nil {
		user.LastName = *form.LastName
	}
	r.users[id] = user
	return &user, nil
}

type registerRequestRepository struct{ *store }

func (r *registerRequestRepository) Save(_ context.Context, req domain.RegisterRequest) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.registerRequests[req.Code]; ok {
		return domain.ErrCodeAlreadyExists
	}
	r.registerRequests[req.Code] = req
	return nil
}

func (r *registerRequestRepository) GetByCode(_ context.Context, code string) (*domain.RegisterRequest, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	req, ok := r.registerRequests[code]
	if !ok || req.IsExpired(r.now()) {
		return nil, nil
	}
	return &req, nil
}

func (r *registerRequestRepository) DeleteAllForEmail(_ context.Context, email string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	canonical := domain.CanonicalEmail(email)
	var n int64
	for code, req := range r.registerRequests {
		if domain.CanonicalEmail(req.Email) == canonical {
			delete(r.registerRequests, code)
			n++
		}
	}
	return n, nil
}

func (r *registerRequestRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for code, req := range r.registerRequests {
		if req.IsExpired(now) {
			delete(r.registerRequests, code)
			n++
		}
	}
	return n, nil
}

type sessionRepository struct{ *store }

func (r *sessionRepository) Create(_ context.Context, token domain.SessionToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token.Token]; ok {
		return domain.ErrTokenAlreadyExists
	}
	if _, ok := r.users[token.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	r.sessions[token.Token] = token
	return nil
}

func (r *sessionRepository) GetUserBySessionToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	session, ok := r.sessions[token]
	if !ok || session.IsExpired(r.now()) {
		return nil, nil
	}
	return r.userCopy(session.UserID), nil
}

func (r *sessionRepository) GetUserByAccessToken(_ context.Context, token string) (*domain.User, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	access, ok := r.accessTokens[token]
	if !ok || access.IsExpired(r.now()) {
		return nil, nil
	}
	return r.userCopy(access.UserID), nil
}

func (r *sessionRepository) userCopy(id uuid.UUID) *domain.User {
	user, ok := r.users[id]
	if !ok {
		return nil
	}
	return &user
}

func (r *sessionRepository) DeleteToken(_ context.Context, token string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.sessions[token]; !ok {
		return 0, nil
	}
	delete(r.sessions, token)
	return 1, nil
}

func (r *sessionRepository) DeleteByUserID(_ context.Context, userID uuid.UUID) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, session := range r.sessions {
		if session.UserID == userID {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

func (r *sessionRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for token, session := range r.sessions {
		if session.IsExpired(now) {
			delete(r.sessions, token)
			n++
		}
	}
	return n, nil
}

type authCodeRepository struct{ *store }

func (r *authCodeRepository) Create(_ context.Context, code domain.AuthorizationCode) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authCodes[code.Code]; ok {
		return domain.ErrCodeAlreadyExists
	}
	if _, ok := r.applications[code.ClientID]; !ok {
		return domain.ErrClientNotFound
	}
	if _, ok := r.users[code.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	code.Scopes = slices.Clone(code.Scopes)
	r.authCodes[code.Code] = code
	return nil
}

func (r *authCodeRepository) Read(_ context.Context, code string) (*domain.AuthorizationCode, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.authCodes[code]
	if !ok {
		return nil, nil
	}
	c.Scopes = slices.Clone(c.Scopes)
	return &c, nil
}

func (r *authCodeRepository) Consume(_ context.Context, code string) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.authCodes[code]; !ok {
		return false, nil
	}
	delete(r.authCodes, code)
	return true, nil
}

func (r *authCodeRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, code := range r.authCodes {
		if code.IsExpired(now) {
			delete(r.authCodes, key)
			n++
		}
	}
	return n, nil
}

type accessTokenRepository struct{ *store }

func (r *accessTokenRepository) Create(_ context.Context, token domain.AccessToken) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.accessTokens[token.Token]; ok {
		return domain.ErrTokenAlreadyExists
	}
	if _, ok := r.applications[token.ClientID]; !ok {
		return domain.ErrClientNotFound
	}
	if _, ok := r.users[token.UserID]; !ok {
		return domain.ErrUserNotFound
	}
	token.Scopes = slices.Clone(token.Scopes)
	r.accessTokens[token.Token] = token
	return nil
}

func (r *accessTokenRepository) PurgeExpired(_ context.Context, now time.Time) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for key, token := range r.accessTokens {
		if token.IsExpired(now) {
			delete(r.accessTokens, key)
			n++
		}
	}
	return n, nil
}
