package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/vncsmyrnk/accesso/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
)

// fakeCrypto hands out predictable values. Queued values are used first so
// tests can force collisions.
type fakeCrypto struct {
	mu     sync.Mutex
	seq    int
	tokens []string
	codes  []string
}

func (c *fakeCrypto) HashPassword(password string) (ports.PasswordHash, error) {
	return ports.PasswordHash{Encoded: "fake$" + password, Raw: []byte(password)}, nil
}

func (c *fakeCrypto) VerifyPassword(encoded, password string) (bool, error) {
	return encoded == "fake$"+password, nil
}

func (c *fakeCrypto) next(queue *[]string, prefix string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	if len(*queue) > 0 {
		v := (*queue)[0]
		*queue = (*queue)[1:]
		return v
	}
	c.seq++
	return fmt.Sprintf("%s%d", prefix, c.seq)
}

func (c *fakeCrypto) Token() string            { return c.next(&c.tokens, "token") }
func (c *fakeCrypto) LongToken() string        { return c.next(&c.tokens, "long-token") }
func (c *fakeCrypto) ConfirmationCode() string { return c.next(&c.codes, "oak-river-moon-") }

type sentEmail struct {
	To  string
	Msg domain.EmailMessage
}

type fakeEmail struct {
	mu   sync.Mutex
	sent []sentEmail
	fail map[string]error
}

func (e *fakeEmail) Send(_ context.Context, to string, msg domain.EmailMessage) error {
	e.mu.Lock()
	defer e.mu.Unlock()
	if err := e.fail[msg.TemplateName()]; err != nil {
		return err
	}
	e.sent = append(e.sent, sentEmail{To: to, Msg: msg})
	return nil
}

func (e *fakeEmail) lastCode() string {
	e.mu.Lock()
	defer e.mu.Unlock()
	for i := len(e.sent) - 1; i >= 0; i-- {
		if m, ok := e.sent[i].Msg.(domain.RegisterConfirmation); ok {
			return m.Code
		}
	}
	return ""
}

type fakeAccesso struct {
	exchangeErr error
	viewerErr   error
	profile     domain.UpstreamProfile
	codes       []string
}

func (a *fakeAccesso) ExchangeCode(_ context.Context, code string) (string, error) {
	a.codes = append(a.codes, code)
	if a.exchangeErr != nil {
		return "", a.exchangeErr
	}
	return "upstream-" + code, nil
}

func (a *fakeAccesso) Viewer(_ context.Context, accessToken string) (*domain.UpstreamProfile, error) {
	if a.viewerErr != nil {
		return nil, a.viewerErr
	}
	if !strings.HasPrefix(accessToken, "upstream-") {
		return nil, &domain.UpstreamError{Kind: domain.UpstreamFailed}
	}
	p := a.profile
	return &p, nil
}

type testClock struct {
	mu  sync.Mutex
	now time.Time
}

func newTestClock() *testClock {
	return &testClock{now: time.Date(2026, 3, 1, 12, 0, 0, 0, time.UTC)}
}

func (c *testClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *testClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

type fixture struct {
	clock  *testClock
	repos  ports.Repositories
	crypto *fakeCrypto
	email  *fakeEmail
}

func newFixture() *fixture {
	clock := newTestClock()
	return &fixture{
		clock:  clock,
		repos:  memory.NewRepositories(clock.Now),
		crypto: &fakeCrypto{},
		email:  &fakeEmail{},
	}
}
