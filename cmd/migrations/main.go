package main

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"strconv"

	"github.com/golang-migrate/migrate/v4"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"github.com/vncsmyrnk/accesso/internal/adapters/repository/postgres"
	"github.com/vncsmyrnk/accesso/internal/config"
	"github.com/vncsmyrnk/accesso/internal/logging"
)

var (
	configDir string
	mode      string
	steps     int
)

var rootCmd = &cobra.Command{
	Use:   "migrations",
	Short: "Manage the accesso database schema",
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		logging.Init(logging.Options{Format: "console"})
	},
	SilenceUsage:  true,
	SilenceErrors: true,
}

var upCmd = &cobra.Command{
	Use:   "up",
	Short: "Apply pending migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			if steps > 0 {
				return ignoreNoChange(m.Steps(steps))
			}
			return ignoreNoChange(m.Up())
		})
	},
}

var downCmd = &cobra.Command{
	Use:   "down",
	Short: "Roll back migrations, all of them unless --steps is given",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			if steps > 0 {
				return ignoreNoChange(m.Steps(-steps))
			}
			return ignoreNoChange(m.Down())
		})
	},
}

var versionCmd = &cobra.Command{
	Use:   "version",
	Short: "Print the current schema version",
	RunE: func(cmd *cobra.Command, args []string) error {
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			v, dirty, err := m.Version()
			if errors.Is(err, migrate.ErrNilVersion) {
				fmt.Println("no migration applied")
				return nil
			}
			if err != nil {
				return err
			}
			if dirty {
				return fmt.Errorf("database is in a dirty state (version %d)", v)
			}
			fmt.Printf("current migration version: %d\n", v)
			return nil
		})
	},
}

var forceCmd = &cobra.Command{
	Use:   "force VERSION",
	Short: "Set the schema version without running migrations, clearing the dirty flag",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		v, err := strconv.Atoi(args[0])
		if err != nil {
			return fmt.Errorf("invalid version %q: %w", args[0], err)
		}
		return withMigrator(cmd.Context(), func(m *migrate.Migrate) error {
			return m.Force(v)
		})
	},
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configDir, "config-dir", "config", "Directory holding the yaml configuration")
	rootCmd.PersistentFlags().StringVar(&mode, "mode", "", "Configuration mode (defaults to $ACCESSO_MODE)")

	upCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to apply")
	downCmd.Flags().IntVar(&steps, "steps", 0, "Number of migrations to roll back")

	rootCmd.AddCommand(upCmd, downCmd, versionCmd, forceCmd)
}

func withMigrator(ctx context.Context, fn func(m *migrate.Migrate) error) error {
	cfg, err := config.Load(config.LoadOptions{Dir: configDir, Mode: mode})
	if err != nil {
		return err
	}
	if cfg.Database.Adapter != config.AdapterPostgres {
		return fmt.Errorf("migrations only apply to postgres, configured adapter is %q", cfg.Database.Adapter)
	}

	db, err := postgres.Open(ctx, cfg.Database.DSN(), postgres.PoolConfig{MaxOpenConns: 1})
	if err != nil {
		return err
	}
	defer func(db *sql.DB) { _ = db.Close() }(db)

	m, release, err := postgres.NewMigrator(ctx, db)
	if err != nil {
		return err
	}
	defer release()

	if err := fn(m); err != nil {
		return err
	}
	log.Info().Str("database", cfg.Database.Database).Msg("migration command finished")
	return nil
}

func ignoreNoChange(err error) error {
	if errors.Is(err, migrate.ErrNoChange) {
		log.Info().Msg("no change")
		return nil
	}
	return err
}

func main() {
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		log.Error().Err(err).Msg("migration failed")
		os.Exit(1)
	}
}
