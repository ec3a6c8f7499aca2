package integration

import (
	"context"
	"database/sql"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	tcpostgres "github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"

	"github.com/vncsmyrnk/accesso/internal/adapters/crypto"
	handler "github.com/vncsmyrnk/accesso/internal/adapters/handler/http"
	"github.com/vncsmyrnk/accesso/internal/adapters/oauth/accesso"
	"github.com/vncsmyrnk/accesso/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/accesso/internal/core/domain"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
	"github.com/vncsmyrnk/accesso/internal/core/services"
)

// AdminRedirect is where the upstream sends operators back after login.
const AdminRedirect = "https://admin.example.com/login/callback"

func setupPostgresContainer(ctx context.Context, t *testing.T) (string, error) {
	pgContainer, err := tcpostgres.Run(ctx, "postgres:15-alpine",
		tcpostgres.WithDatabase("testdb"),
		tcpostgres.WithUsername("user"),
		tcpostgres.WithPassword("password"),
		testcontainers.WithWaitStrategy(
			wait.ForLog("database system is ready to accept connections").
				WithOccurrence(2).
				WithStartupTimeout(30*time.Second),
		),
	)
	testcontainers.CleanupContainer(t, pgContainer)
	if err != nil {
		return "", fmt.Errorf("failed to start postgres container: %w", err)
	}

	return pgContainer.ConnectionString(ctx, "sslmode=disable")
}

// Mailbox keeps the confirmation codes the service tried to send.
type Mailbox struct {
	mu    sync.Mutex
	codes map[string]string
}

func (m *Mailbox) Send(_ context.Context, to string, msg domain.EmailMessage) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if c, ok := msg.(domain.RegisterConfirmation); ok {
		m.codes[to] = c.Code
	}
	return nil
}

func (m *Mailbox) CodeFor(email string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.codes[email]
}

type TestApp struct {
	Server *httptest.Server
	DB     *sql.DB
	Repos  ports.Repositories
	Mail   *Mailbox

	// AdminClient is the application the admin login is registered as.
	AdminClient *domain.Application
}

// setupTestApp serves the whole API over a fresh Postgres. Admin login is
// wired against the same server, which acts as its own upstream accesso.
func setupTestApp(t *testing.T) *TestApp {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping integration test")
	}
	testcontainers.SkipIfProviderIsNotHealthy(t)

	ctx := context.Background()
	dsn, err := setupPostgresContainer(ctx, t)
	require.NoError(t, err)

	db, err := postgres.Open(ctx, dsn, postgres.PoolConfig{MaxOpenConns: 10})
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, postgres.ApplyMigrations(ctx, db))

	repos := postgres.NewRepositories(db, time.Now)
	adminClient, err := repos.Applications.Create(ctx, domain.Application{
		ID:          uuid.New(),
		Title:       "accesso admin",
		SecretKey:   "admin-secret",
		RedirectURI: []string{AdminRedirect},
	})
	require.NoError(t, err)

	app := &TestApp{
		DB:          db,
		Repos:       repos,
		Mail:        &Mailbox{codes: make(map[string]string)},
		AdminClient: adminClient,
	}

	var api http.Handler
	app.Server = httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		api.ServeHTTP(w, r)
	}))
	t.Cleanup(app.Server.Close)

	upstream := accesso.NewClient(accesso.Config{
		URL:             app.Server.URL,
		ClientID:        adminClient.ID.String(),
		ClientSecret:    adminClient.SecretKey,
		RedirectBackURL: AdminRedirect,
		SSLValidate:     true,
		Timeout:         5 * time.Second,
	})
	cr := crypto.NewService(crypto.Params{Time: 1, Memory: 8 * 1024, Threads: 1, SaltLen: 16, KeyLen: 32})

	api = handler.NewHandler(handler.Config{
		Cookies:       handler.CookieConfig{HTTPOnly: true},
		Pinger:        db,
		AdminLoginURL: upstream.AuthCodeURL,
	}, handler.Services{
		Registration:  services.NewRegistrationService(repos, cr, app.Mail, time.Now),
		Sessions:      services.NewSessionService(repos, cr, time.Now),
		Accounts:      services.NewAccountService(repos),
		OAuth:         services.NewOAuthService(repos, cr, time.Now),
		Viewer:        services.NewViewerService(repos),
		AdminSessions: services.NewAdminSessionService(repos, upstream, cr, time.Now),
		Applications:  services.NewApplicationService(repos, cr),
	})

	return app
}
