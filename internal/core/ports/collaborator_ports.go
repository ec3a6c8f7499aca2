package ports

import (
	"context"
	"time"

	"github.com/vncsmyrnk/accesso/internal/core/domain"
)

// Clock returns the current time. Services take one so tests can travel.
type Clock func() time.Time

type PasswordHash struct {
	Encoded string
	Raw     []byte
}

type Crypto interface {
	HashPassword(password string) (PasswordHash, error)
	VerifyPassword(encoded, password string) (bool, error)
	// Token is a 28 character alphanumeric string.
	Token() string
	// LongToken is a 52 character alphanumeric string.
	LongToken() string
	// ConfirmationCode is four dictionary words joined with "-".
	ConfirmationCode() string
}

type EmailNotifier interface {
	Send(ctx context.Context, to string, msg domain.EmailMessage) error
}

// AccessoClient talks to the upstream accesso instance used for admin login.
type AccessoClient interface {
	ExchangeCode(ctx context.Context, code string) (string, error)
	Viewer(ctx context.Context, accessToken string) (*domain.UpstreamProfile, error)
}
