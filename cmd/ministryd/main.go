// Command ministryd serves the ministry site and carries its maintenance
// commands.
//
// @title       Ministry Site API
// @version     1.0
// @description Public page snapshot, scripture post likes, and the content admin API.
// @BasePath    /api/v1
package main

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"strings"

	"github.com/joho/godotenv"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/tbourn/go-ministry-site/internal/config"
	"github.com/tbourn/go-ministry-site/internal/http/middleware"
	"github.com/tbourn/go-ministry-site/internal/observability"
	"github.com/tbourn/go-ministry-site/internal/repo"
	"github.com/tbourn/go-ministry-site/internal/seed"
	"github.com/tbourn/go-ministry-site/internal/services"
	"github.com/tbourn/go-ministry-site/internal/sysutil"
)

// version is stamped at build time with -ldflags "-X main.version=...".
var version = ""

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "ministryd",
		Short:         "Youth ministry website server",
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, envFile)
			if err != nil {
				return err
			}
			return serve(cmd.Context(), cfg)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "dotenv file loaded before reading the environment")

	serveCmd := &cobra.Command{
		Use:   "serve",
		Short: "Run the HTTP server (default)",
		RunE:  root.RunE,
	}

	migrateCmd := &cobra.Command{
		Use:   "migrate",
		Short: "Create or update the database schema",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, envFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)
			if err := repo.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			fmt.Fprintln(cmd.OutOrStdout(), "schema up to date")
			return nil
		},
	}

	var seedFile string
	seedCmd := &cobra.Command{
		Use:   "seed",
		Short: "Load content records from a YAML fixture",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cmd, envFile)
			if err != nil {
				return err
			}
			db, err := openDB(cfg)
			if err != nil {
				return err
			}
			defer closeDB(db)
			if err := repo.AutoMigrate(db); err != nil {
				return fmt.Errorf("migrate: %w", err)
			}
			res, err := seed.File(cmd.Context(), services.NewAdminService(db, cfg.IdempotencyTTL), seedFile)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "created %d, already present %d, skipped %d\n", res.Created, res.Replayed, res.Skipped)
			return nil
		},
	}
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "content.yaml", "fixture file")

	hashCmd := &cobra.Command{
		Use:   "hash-token <token>",
		Short: "Print the bcrypt hash to set as ADMIN_TOKEN_HASH",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			token := strings.TrimSpace(args[0])
			if len(token) < 12 {
				return errors.New("admin token must be at least 12 characters")
			}
			hash, err := middleware.HashAdminToken(token)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), hash)
			return nil
		},
	}

	versionCmd := &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Run: func(cmd *cobra.Command, _ []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "ministryd %s\n", appVersion())
		},
	}

	root.AddCommand(serveCmd, migrateCmd, seedCmd, hashCmd, versionCmd)
	return root
}

func appVersion() string { return sysutil.FirstNonEmpty(version, "dev") }

// loadConfig reads the dotenv file when present, then the environment, and
// configures the global logger.
func loadConfig(cmd *cobra.Command, envFile string) (config.Config, error) {
	if envFile != "" {
		if err := godotenv.Load(envFile); err != nil && !errors.Is(err, fs.ErrNotExist) {
			return config.Config{}, fmt.Errorf("load %s: %w", envFile, err)
		}
	}
	cfg, err := config.Load()
	if err != nil {
		return cfg, fmt.Errorf("config: %w", err)
	}
	sysutil.ConfigureLogger(cmd.ErrOrStderr(), cfg.LogLevel, cfg.LogPretty)
	return cfg, nil
}

// openDB connects and registers query tracing.
func openDB(cfg config.Config) (*gorm.DB, error) {
	db, err := repo.Open(cfg.DatabaseURL)
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := observability.InstrumentDB(db); err != nil {
		closeDB(db)
		return nil, fmt.Errorf("instrument database: %w", err)
	}
	return db, nil
}

func closeDB(db *gorm.DB) {
	sqlDB, err := db.DB()
	if err != nil {
		return
	}
	if err := sqlDB.Close(); err != nil {
		log.Warn().Err(err).Msg("close database")
	}
}
