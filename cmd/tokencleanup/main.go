package main

import (
	"context"
	"flag"
	"os"
	"time"

	"github.com/rs/zerolog/log"

	"github.com/vncsmyrnk/accesso/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/accesso/internal/config"
	"github.com/vncsmyrnk/accesso/internal/core/services"
	"github.com/vncsmyrnk/accesso/internal/logging"
)

func main() {
	var (
		configDir string
		mode      string
		timeout   time.Duration
	)
	flag.StringVar(&configDir, "config-dir", "config", "Directory holding the yaml configuration")
	flag.StringVar(&mode, "mode", "", "Configuration mode (defaults to $ACCESSO_MODE)")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Upper bound for the whole job")
	flag.Parse()

	cfg, err := config.Load(config.LoadOptions{Dir: configDir, Mode: mode})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to load config")
	}
	logging.Init(logging.Options{Debug: cfg.Debug, Format: cfg.LogFormat})

	if cfg.Database.Adapter != config.AdapterPostgres {
		log.Fatal().Str("adapter", cfg.Database.Adapter).Msg("token cleanup only runs against postgres")
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	db, err := postgres.Open(ctx, cfg.Database.DSN(), postgres.PoolConfig{MaxOpenConns: cfg.Database.PoolSize})
	if err != nil {
		log.Fatal().Err(err).Msg("failed to connect to database")
	}
	defer db.Close()

	cleanup := services.NewCleanupService(postgres.NewRepositories(db, time.Now), time.Now)

	log.Info().Msg("starting expired credential cleanup")

	counts, err := cleanup.PurgeExpired(ctx)
	for table, n := range counts {
		log.Info().Str("table", table).Int64("deleted", n).Msg("purged expired rows")
	}
	if err != nil {
		log.Error().Err(err).Msg("cleanup failed")
		db.Close()
		os.Exit(1)
	}

	log.Info().Msg("expired credential cleanup completed")
}
