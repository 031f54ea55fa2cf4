package service

import (
	"context"
	"fmt"
	"log/slog"

	"portfolio/app/config"
	"portfolio/app/logging"
	"portfolio/app/repositories"
	"portfolio/app/repositories/postgres"

	"github.com/dgraph-io/badger/v4"
	"github.com/spf13/cobra"
)

// loadConfig reads the config file and applies the --db override.
func loadConfig(opts *options) (config.Config, error) {
	cfg, err := config.Load(opts.configPath)
	if err != nil {
		return cfg, err
	}
	if opts.dbPath != "" {
		cfg.Database.Path = opts.dbPath
	}
	return cfg, nil
}

func newLogger(cmd *cobra.Command, cfg config.Config) *slog.Logger {
	return logging.New(logging.Options{
		Level:  cfg.Log.Level,
		Format: cfg.Log.Format,
		Writer: cmd.ErrOrStderr(),
	})
}

// confirm asks a yes/no question on the command's streams. Anything but y/Y is a no.
func confirm(cmd *cobra.Command, prompt string) bool {
	fmt.Fprintf(cmd.OutOrStdout(), "%s [y/N] ", prompt)
	var response string
	fmt.Fscanln(cmd.InOrStdin(), &response)
	return response == "y" || response == "Y"
}

// backend is the opened content store for the configured driver.
type backend struct {
	repos    repositories.Set
	badger   *repositories.Store
	postgres *postgres.Store

	// sessionPath is where the session badger lives when content is in Postgres.
	sessionPath string
	sessionDB   *badger.DB
}

func openBackend(ctx context.Context, cfg config.Config) (*backend, error) {
	if cfg.Database.Driver == config.DriverPostgres {
		pg, err := postgres.Open(ctx, cfg.Database.URL)
		if err != nil {
			return nil, err
		}
		if err := pg.Migrate(ctx); err != nil {
			pg.Close()
			return nil, err
		}
		return &backend{repos: pg.Set(), postgres: pg, sessionPath: cfg.Database.Path}, nil
	}

	store, err := repositories.Open(cfg.Database.Path)
	if err != nil {
		return nil, err
	}
	return &backend{repos: store.Set(), badger: store}, nil
}

// sessions returns the badger database sessions are kept in. With the badger driver this
// is the content database; with Postgres a separate badger is opened on first use.
func (b *backend) sessions() (*badger.DB, error) {
	if b.badger != nil {
		return b.badger.DB(), nil
	}
	if b.sessionDB == nil {
		db, err := badger.Open(repositories.Options(b.sessionPath))
		if err != nil {
			return nil, fmt.Errorf("open session store at %q: %w", b.sessionPath, err)
		}
		b.sessionDB = db
	}
	return b.sessionDB, nil
}

func (b *backend) Close() error {
	if b.postgres != nil {
		b.postgres.Close()
	}
	if b.sessionDB != nil {
		if err := b.sessionDB.Close(); err != nil {
			return err
		}
	}
	if b.badger != nil {
		return b.badger.Close()
	}
	return nil
}
