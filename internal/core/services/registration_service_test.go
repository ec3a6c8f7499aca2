package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

func TestCreateRegisterRequest(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)

	req, err := svc.CreateRegisterRequest(context.Background(), domain.RegisterRequestForm{Email: "alice@example.com"})
	require.NoError(t, err)

	assert.Equal(t, f.clock.Now().Add(24*time.Hour), req.ExpiresAt)
	require.Len(t, f.email.sent, 1)
	assert.Equal(t, "alice@example.com", f.email.sent[0].To)
	assert.Equal(t, domain.RegisterConfirmation{Code: req.Code}, f.email.sent[0].Msg)
}

func TestCreateRegisterRequest_InvalidEmail(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)

	_, err := svc.CreateRegisterRequest(context.Background(), domain.RegisterRequestForm{Email: "not-an-email"})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Contains(t, verr.Fields, "email")
	assert.Empty(t, f.email.sent)
}

func TestCreateRegisterRequest_EmailAlreadyRegistered(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	registerAlice(t, f)

	_, err := svc.CreateRegisterRequest(context.Background(), domain.RegisterRequestForm{Email: "ALICE@Example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailAlreadyRegistered)
}

func TestCreateRegisterRequest_RetriesCodeCollision(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	ctx := context.Background()

	f.crypto.codes = []string{"taken-code-one-two"}
	_, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "first@example.com"})
	require.NoError(t, err)

	f.crypto.codes = []string{"taken-code-one-two", "taken-code-one-two", "fresh-code-one-two"}
	req, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "second@example.com"})
	require.NoError(t, err)
	assert.Equal(t, "fresh-code-one-two", req.Code)
}

func TestCreateRegisterRequest_RetryCapReturnsUnexpected(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	ctx := context.Background()

	f.crypto.codes = []string{"only-code-left-here"}
	_, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "first@example.com"})
	require.NoError(t, err)

	for range maxInsertAttempts + 1 {
		f.crypto.codes = append(f.crypto.codes, "only-code-left-here")
	}
	_, err = svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "second@example.com"})
	assert.ErrorIs(t, err, domain.ErrUnexpected)
	assert.ErrorIs(t, err, domain.ErrCodeAlreadyExists)
	assert.Len(t, f.crypto.codes, 1, "exactly ten attempts are made")
}

func TestCreateRegisterRequest_EmailFailureAborts(t *testing.T) {
	f := newFixture()
	f.email.fail = map[string]error{
		"register_confirmation": &domain.EmailError{Kind: domain.EmailTransportError, Err: errors.New("timeout")},
	}
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)

	_, err := svc.CreateRegisterRequest(context.Background(), domain.RegisterRequestForm{Email: "alice@example.com"})
	assert.ErrorIs(t, err, domain.ErrEmailDelivery)
}

func TestConfirmRegistration(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	ctx := context.Background()

	req, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "alice@example.com"})
	require.NoError(t, err)

	err = svc.ConfirmRegistration(ctx, domain.RegisterConfirmForm{
		ConfirmationCode: req.Code, FirstName: "Al", LastName: "Bo", Password: "hunter2hunter",
	})
	require.NoError(t, err)

	user, err := f.repos.Users.FindByCredentials(ctx, domain.UserCredentials{Email: "alice@example.com"})
	require.NoError(t, err)
	require.NotNil(t, user)
	assert.NotEqual(t, "hunter2hunter", user.PasswordHash)

	require.Len(t, f.email.sent, 2)
	assert.Equal(t, domain.RegisterFinished{FirstName: "Al", LastName: "Bo"}, f.email.sent[1].Msg)

	left, err := f.repos.RegisterRequests.GetByCode(ctx, req.Code)
	require.NoError(t, err)
	assert.Nil(t, left, "pending requests are removed")
}

func TestConfirmRegistration_InvalidForm(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)

	err := svc.ConfirmRegistration(context.Background(), domain.RegisterConfirmForm{
		ConfirmationCode: "short", FirstName: "A", LastName: "Bo", Password: "1234567",
	})

	var verr *domain.ValidationError
	require.ErrorAs(t, err, &verr)
	assert.Equal(t, []string{"confirmationCode", "firstName", "password"}, sortedKeys(verr.Fields))
}

func TestConfirmRegistration_ExpiredCode(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	ctx := context.Background()

	req, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "alice@example.com"})
	require.NoError(t, err)
	f.clock.Advance(24 * time.Hour)

	err = svc.ConfirmRegistration(ctx, domain.RegisterConfirmForm{
		ConfirmationCode: req.Code, FirstName: "Al", LastName: "Bo", Password: "hunter2hunter",
	})
	assert.ErrorIs(t, err, domain.ErrCodeNotFound)
}

func TestConfirmRegistration_AlreadyActivated(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	ctx := context.Background()

	first, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "alice@example.com"})
	require.NoError(t, err)
	second, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "alice@example.com"})
	require.NoError(t, err)

	form := domain.RegisterConfirmForm{ConfirmationCode: first.Code, FirstName: "Al", LastName: "Bo", Password: "hunter2hunter"}
	require.NoError(t, svc.ConfirmRegistration(ctx, form))

	// The second request was deleted together with the first one.
	form.ConfirmationCode = second.Code
	assert.ErrorIs(t, svc.ConfirmRegistration(ctx, form), domain.ErrCodeNotFound)

	require.NoError(t, f.repos.RegisterRequests.Save(ctx, domain.RegisterRequest{
		Email: "Alice@example.com", Code: "late-code-for-alice", ExpiresAt: f.clock.Now().Add(time.Hour),
	}))
	form.ConfirmationCode = "late-code-for-alice"
	assert.ErrorIs(t, svc.ConfirmRegistration(ctx, form), domain.ErrAlreadyActivated)
}

func TestConfirmRegistration_FinishedEmailFailureKeepsUser(t *testing.T) {
	f := newFixture()
	svc := NewRegistrationService(f.repos, f.crypto, f.email, f.clock.Now)
	ctx := context.Background()

	req, err := svc.CreateRegisterRequest(ctx, domain.RegisterRequestForm{Email: "alice@example.com"})
	require.NoError(t, err)

	f.email.fail = map[string]error{"register_finished": &domain.EmailError{Kind: domain.EmailOtherError, Err: errors.New("quota")}}
	err = svc.ConfirmRegistration(ctx, domain.RegisterConfirmForm{
		ConfirmationCode: req.Code, FirstName: "Al", LastName: "Bo", Password: "hunter2hunter",
	})
	require.NoError(t, err)

	exists, err := f.repos.Users.HasWithEmail(ctx, "alice@example.com")
	require.NoError(t, err)
	assert.True(t, exists)
}
