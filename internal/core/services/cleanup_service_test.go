package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

type failingPurger struct{ err error }

func (p failingPurger) PurgeExpired(context.Context, time.Time) (int64, error) {
	return 0, p.err
}

func TestCleanupService_PurgeExpired(t *testing.T) {
	f := newFixture()
	ctx := context.Background()
	registerAlice(t, f)

	sessions := NewSessionService(f.repos, f.crypto, f.clock.Now)
	_, _, err := sessions.Create(ctx, domain.SessionCreateForm{Email: "alice@example.com", Password: "hunter2hunter"})
	require.NoError(t, err)

	require.NoError(t, f.repos.RegisterRequests.Save(ctx, domain.RegisterRequest{
		Email:     "bob@example.com",
		Code:      "old-request-code",
		ExpiresAt: f.clock.Now().Add(time.Hour),
	}))

	svc := NewCleanupService(f.repos, f.clock.Now)

	counts, err := svc.PurgeExpired(ctx)
	require.NoError(t, err)
	for table, n := range counts {
		assert.Zero(t, n, table)
	}

	f.clock.Advance(domain.SessionTokenLifetime)
	counts, err = svc.PurgeExpired(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), counts["session_tokens"])
	assert.Equal(t, int64(1), counts["registration_requests"])

	resolved, err := f.repos.Sessions.GetUserBySessionToken(ctx, "token1")
	require.NoError(t, err)
	assert.Nil(t, resolved)
}

func TestCleanupService_ReportsFailure(t *testing.T) {
	f := newFixture()
	boom := errors.New("boom")
	repos := f.repos
	repos.Purgers = map[string]ports.ExpiredPurger{
		"session_tokens": f.repos.Purgers["session_tokens"],
		"broken":         failingPurger{err: boom},
	}

	counts, err := NewCleanupService(repos, f.clock.Now).PurgeExpired(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.Contains(t, counts, "session_tokens")
	assert.NotContains(t, counts, "broken")
}
