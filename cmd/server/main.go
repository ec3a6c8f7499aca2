package main

import (
	"context"
	"database/sql"
	"errors"
	"flag"
	stdhttp "net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/adapters/crypto"
	"github.com/vncsmyrnk/accesso/internal/adapters/email/sendgrid"
	"github.com/vncsmyrnk/accesso/internal/adapters/handler/http"
	"github.com/vncsmyrnk/accesso/internal/adapters/oauth/accesso"
	"github.com/vncsmyrnk/accesso/internal/adapters/repository/memory"
	"github.com/vncsmyrnk/accesso/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/accesso/internal/config"
	"github.com/vncsmyrnk/accesso/internal/core/ports"
	"github.com/vncsmyrnk/accesso/internal/core/services"
	"github.com/vncsmyrnk/accesso/internal/logging"
)

func main() {
	var configDir, mode, api string
	flag.StringVar(&configDir, "config-dir", "config", "Directory holding the yaml configuration")
	flag.StringVar(&mode, "mode", "", "Configuration mode (defaults to $ACCESSO_MODE)")
	flag.StringVar(&api, "api", config.APIPublic, "API flavour whose config file is layered last (public or admin)")
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{Dir: configDir, Mode: mode, API: api})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Options{Debug: cfg.Debug, Format: cfg.LogFormat})
	if err := cfg.Validate(); err != nil {
		log.Fatal().Err(err).Msg("invalid config")
	}
	if cfg.UseOpenTelemetry {
		log.Warn().Msg("use_opentelemetry is set but no exporter is built in, ignoring")
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	repos, db, err := openRepositories(ctx, cfg)
	if err != nil {
		log.Fatal().Err(err).Msg("failed to open storage")
	}
	if db != nil {
		defer db.Close()
	}

	httpClient := &stdhttp.Client{Timeout: cfg.HTTPClient.Timeout}
	cr := crypto.NewService(crypto.InteractiveParams)
	notifier := sendgrid.NewNotifier(sendgrid.Config{
		APIKey:                cfg.SendGrid.APIKey,
		SenderEmail:           cfg.SendGrid.SenderEmail,
		Enabled:               cfg.SendGrid.Enabled,
		TemplateID:            cfg.SendGrid.TemplateID,
		ApplicationHost:       cfg.SendGrid.ApplicationHost,
		EmailConfirmURLPrefix: cfg.SendGrid.EmailConfirmURLPrefix,
	}, httpClient)
	upstream := accesso.NewClient(accesso.Config{
		URL:             cfg.Accesso.URL,
		ClientID:        cfg.Accesso.ClientID,
		ClientSecret:    cfg.Accesso.ClientSecret,
		RedirectBackURL: cfg.Accesso.RedirectBackURL,
		SSLValidate:     cfg.Accesso.SSLValidate,
		Timeout:         cfg.HTTPClient.Timeout,
	})

	now := time.Now
	routerCfg := http.Config{
		Cookies: http.CookieConfig{
			Name:      cfg.Cookies.Name,
			AdminName: cfg.Cookies.AdminName,
			Path:      cfg.Cookies.Path,
			Secure:    cfg.Cookies.Secure,
			HTTPOnly:  cfg.Cookies.HTTPOnly,
		},
		RequestTimeout: cfg.Server.RequestTimeout,
		Now:            now,
	}
	if db != nil {
		routerCfg.Pinger = db
	}
	if cfg.Accesso.URL != "" {
		routerCfg.AdminLoginURL = upstream.AuthCodeURL
	}

	handler := http.NewHandler(routerCfg, http.Services{
		Registration:  services.NewRegistrationService(repos, cr, notifier, now),
		Sessions:      services.NewSessionService(repos, cr, now),
		Accounts:      services.NewAccountService(repos),
		OAuth:         services.NewOAuthService(repos, cr, now),
		Viewer:        services.NewViewerService(repos),
		AdminSessions: services.NewAdminSessionService(repos, upstream, cr, now),
		Applications:  services.NewApplicationService(repos, cr),
	})

	server := &stdhttp.Server{
		Addr:              cfg.Server.Addr(),
		Handler:           handler,
		ReadTimeout:       cfg.Server.ReadTimeout,
		ReadHeaderTimeout: cfg.Server.ClientShutdown,
		WriteTimeout:      cfg.Server.WriteTimeout,
		IdleTimeout:       cfg.Server.KeepAlive,
	}

	go func() {
		log.Info().
			Str("addr", server.Addr).
			Str("mode", cfg.Mode).
			Str("api", cfg.API).
			Str("storage", cfg.Database.Adapter).
			Msg("server listening")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, stdhttp.ErrServerClosed) {
			log.Fatal().Err(err).Msg("server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("gracefully shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("shutdown did not complete")
	}
}

func openRepositories(ctx context.Context, cfg *config.Config) (ports.Repositories, *sql.DB, error) {
	if cfg.Database.Adapter == config.AdapterMemory {
		log.Warn().Msg("using in-memory storage, data is lost on restart")
		return memory.NewRepositories(time.Now), nil, nil
	}

	db, err := postgres.Open(ctx, cfg.Database.DSN(), postgres.PoolConfig{
		MaxOpenConns:    max(cfg.Database.PoolSize, cfg.Server.Workers),
		MaxIdleConns:    cfg.Server.Workers,
		ConnMaxLifetime: 30 * time.Minute,
	})
	if err != nil {
		return ports.Repositories{}, nil, err
	}
	if err := postgres.ApplyMigrations(ctx, db); err != nil {
		db.Close()
		return ports.Repositories{}, nil, err
	}
	return postgres.NewRepositories(db, time.Now), db, nil
}
