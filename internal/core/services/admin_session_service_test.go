package services

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

// blindAdminUsers misses the first lookup, as if a concurrent login inserted
// the row right after it.
type blindAdminUsers struct {
	ports.AdminUserRepository
	lookups int
}

func (r *blindAdminUsers) FindByAccessoID(ctx context.Context, id uuid.UUID) (*domain.AdminUser, error) {
	r.lookups++
	if r.lookups == 1 {
		return nil, nil
	}
	return r.AdminUserRepository.FindByAccessoID(ctx, id)
}

func newAdminFixture() (*fixture, *fakeAccesso) {
	f := newFixture()
	return f, &fakeAccesso{profile: domain.UpstreamProfile{
		AccessoID: uuid.New(),
		FirstName: "Ada",
		LastName:  "Lovelace",
	}}
}

func TestAdminSessionCreateAndResolve(t *testing.T) {
	f, upstream := newAdminFixture()
	svc := NewAdminSessionService(f.repos, upstream, f.crypto, f.clock.Now)
	ctx := context.Background()

	session, admin, err := svc.Create(ctx, "upstream-code")
	require.NoError(t, err)
	assert.Equal(t, []string{"upstream-code"}, upstream.codes)
	assert.Equal(t, upstream.profile.AccessoID, admin.AccessoID)
	assert.Equal(t, "Ada", admin.FirstName)
	assert.Equal(t, f.clock.Now().Add(domain.SessionTokenLifetime), session.ExpiresAt)

	resolved, err := svc.Resolve(ctx, session.Token)
	require.NoError(t, err)
	assert.Equal(t, admin.ID, resolved.ID)

	f.clock.Advance(domain.SessionTokenLifetime)
	_, err = svc.Resolve(ctx, session.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
}

func TestAdminSessionCreate_UpdatesNames(t *testing.T) {
	f, upstream := newAdminFixture()
	svc := NewAdminSessionService(f.repos, upstream, f.crypto, f.clock.Now)
	ctx := context.Background()

	_, first, err := svc.Create(ctx, "one")
	require.NoError(t, err)

	upstream.profile.LastName = "King"
	_, second, err := svc.Create(ctx, "two")
	require.NoError(t, err)

	assert.Equal(t, first.ID, second.ID)
	assert.Equal(t, "King", second.LastName)

	stored, err := f.repos.AdminUsers.FindByAccessoID(ctx, upstream.profile.AccessoID)
	require.NoError(t, err)
	assert.Equal(t, "King", stored.LastName)
}

func TestAdminSessionCreate_ConcurrentFirstLogin(t *testing.T) {
	f, upstream := newAdminFixture()
	ctx := context.Background()

	winner, err := f.repos.AdminUsers.Create(ctx, domain.AdminUser{
		ID:        uuid.New(),
		AccessoID: upstream.profile.AccessoID,
		FirstName: "Ada",
		LastName:  "Lovelace",
	})
	require.NoError(t, err)

	repos := f.repos
	repos.AdminUsers = &blindAdminUsers{AdminUserRepository: f.repos.AdminUsers}
	svc := NewAdminSessionService(repos, upstream, f.crypto, f.clock.Now)

	_, admin, err := svc.Create(ctx, "code")
	require.NoError(t, err)
	assert.Equal(t, winner.ID, admin.ID)
}

func TestAdminSessionCreate_UpstreamErrors(t *testing.T) {
	tests := []struct {
		name        string
		exchangeErr error
		viewerErr   error
		kind        domain.UpstreamErrorKind
	}{
		{"exchange rejected", &domain.UpstreamError{Kind: domain.UpstreamUnauthorized}, nil, domain.UpstreamUnauthorized},
		{"exchange unavailable", &domain.UpstreamError{Kind: domain.UpstreamTryLater}, nil, domain.UpstreamTryLater},
		{"viewer failed", nil, &domain.UpstreamError{Kind: domain.UpstreamFailed}, domain.UpstreamFailed},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			f, upstream := newAdminFixture()
			upstream.exchangeErr = tt.exchangeErr
			upstream.viewerErr = tt.viewerErr
			svc := NewAdminSessionService(f.repos, upstream, f.crypto, f.clock.Now)

			_, _, err := svc.Create(context.Background(), "code")
			var upErr *domain.UpstreamError
			require.ErrorAs(t, err, &upErr)
			assert.Equal(t, tt.kind, upErr.Kind)

			stored, err := f.repos.AdminUsers.FindByAccessoID(context.Background(), upstream.profile.AccessoID)
			require.NoError(t, err)
			assert.Nil(t, stored)
		})
	}
}

func TestAdminSessionCreate_MissingCode(t *testing.T) {
	f, upstream := newAdminFixture()
	svc := NewAdminSessionService(f.repos, upstream, f.crypto, f.clock.Now)

	_, _, err := svc.Create(context.Background(), "")
	assert.ErrorIs(t, err, domain.ErrInvalidForm)
	assert.Empty(t, upstream.codes)
}

func TestAdminSessionDelete(t *testing.T) {
	f, upstream := newAdminFixture()
	svc := NewAdminSessionService(f.repos, upstream, f.crypto, f.clock.Now)
	ctx := context.Background()

	first, admin, err := svc.Create(ctx, "a")
	require.NoError(t, err)
	second, _, err := svc.Create(ctx, "b")
	require.NoError(t, err)
	third, _, err := svc.Create(ctx, "c")
	require.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, ports.DeleteSingleSession(first.Token)))
	_, err = svc.Resolve(ctx, first.Token)
	assert.ErrorIs(t, err, domain.ErrUnauthorized)
	_, err = svc.Resolve(ctx, second.Token)
	assert.NoError(t, err)

	require.NoError(t, svc.Delete(ctx, admin, ports.DeleteAllSessions()))
	for _, token := range []string{second.Token, third.Token} {
		_, err = svc.Resolve(ctx, token)
		assert.ErrorIs(t, err, domain.ErrUnauthorized)
	}

	assert.NoError(t, svc.Delete(ctx, admin, ports.DeleteSingleSession(first.Token)))
	assert.ErrorIs(t, svc.Delete(ctx, nil, ports.DeleteAllSessions()), domain.ErrUnauthorized)
}

func TestAdminSessionCreate_UnexpectedUpstream(t *testing.T) {
	f, upstream := newAdminFixture()
	boom := errors.New("boom")
	upstream.viewerErr = boom
	svc := NewAdminSessionService(f.repos, upstream, f.crypto, f.clock.Now)

	_, _, err := svc.Create(context.Background(), "code")
	assert.ErrorIs(t, err, boom)
}
