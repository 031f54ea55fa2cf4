package service

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"time"

	"portfolio/app/config"
	"portfolio/app/repositories"
	"portfolio/app/repositories/postgres"

	"github.com/spf13/cobra"
)

var errBadgerOnly = errors.New("this command only supports the badger driver")

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func newInitCommand(opts *options) *cobra.Command {
	var writeConfig bool
	cmd := &cobra.Command{
		Use:   "init",
		Short: "Initialize a new empty database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			if writeConfig {
				if exists(opts.configPath) {
					fmt.Fprintf(out, "Config file %s already exists, leaving it alone\n", opts.configPath)
				} else {
					if err := config.Write(opts.configPath, config.DefaultConfig()); err != nil {
						return fmt.Errorf("failed to write config: %w", err)
					}
					fmt.Fprintf(out, "Wrote default configuration to %s\n", opts.configPath)
				}
			}

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if cfg.Database.Driver == config.DriverPostgres {
				pg, err := postgres.Open(cmd.Context(), cfg.Database.URL)
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := pg.Migrate(cmd.Context()); err != nil {
					return err
				}
				fmt.Fprintln(out, "Database schema initialized successfully")
				return nil
			}

			if exists(cfg.Database.Path) {
				fmt.Fprintln(out, "Database already exists. Use 'clean' first if you want to reinitialize.")
				return nil
			}
			if err := os.MkdirAll(cfg.Database.Path, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}
			store, err := repositories.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to initialize database: %w", err)
			}
			if err := store.Close(); err != nil {
				return err
			}
			fmt.Fprintln(out, "Database initialized successfully")
			return nil
		},
	}
	cmd.Flags().BoolVar(&writeConfig, "write-config", false, "Also write a default config file when none exists")
	return cmd
}

func newCleanCommand(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "clean",
		Short: "Delete all blog data",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}

			if cfg.Database.Driver == config.DriverPostgres {
				if !yes && !confirm(cmd, "Are you sure you want to delete every post, tag and comment? This cannot be undone.") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				pg, err := postgres.Open(cmd.Context(), cfg.Database.URL)
				if err != nil {
					return err
				}
				defer pg.Close()
				if err := pg.Clear(cmd.Context()); err != nil {
					return fmt.Errorf("failed to clean database: %w", err)
				}
				fmt.Fprintln(out, "Database cleaned successfully")
				return nil
			}

			if !exists(cfg.Database.Path) {
				fmt.Fprintln(out, "Database is already clean (does not exist)")
				return nil
			}
			if !yes && !confirm(cmd, "Are you sure you want to clean the database? This cannot be undone.") {
				fmt.Fprintln(out, "Operation cancelled")
				return nil
			}
			if err := os.RemoveAll(cfg.Database.Path); err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			fmt.Fprintln(out, "Database cleaned successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Skip the confirmation prompt")
	return cmd
}

func newBackupCommand(opts *options) *cobra.Command {
	var dir string
	cmd := &cobra.Command{
		Use:   "backup",
		Short: "Create a backup of the database",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverBadger {
				return errBadgerOnly
			}
			if !exists(cfg.Database.Path) {
				fmt.Fprintln(out, "No database exists to backup")
				return nil
			}

			if dir == "" {
				dir = cfg.Paths.BackupDir
			}
			if err := os.MkdirAll(dir, 0755); err != nil {
				return fmt.Errorf("failed to create backup directory: %w", err)
			}

			store, err := repositories.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			backupFile := filepath.Join(dir, fmt.Sprintf("backup_%d.db", time.Now().UnixNano()))
			f, err := os.Create(backupFile)
			if err != nil {
				return fmt.Errorf("failed to create backup file: %w", err)
			}
			defer f.Close()

			if err := store.Backup(f); err != nil {
				return fmt.Errorf("failed to backup database: %w", err)
			}
			fmt.Fprintf(out, "Database backed up successfully to %s\n", backupFile)
			return nil
		},
	}
	cmd.Flags().StringVar(&dir, "dir", "", "Backup directory (defaults to paths.backup_dir)")
	return cmd
}

func newRestoreCommand(opts *options) *cobra.Command {
	var yes bool
	cmd := &cobra.Command{
		Use:   "restore <file>",
		Short: "Restore the database from a backup",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			out := cmd.OutOrStdout()
			backupFile := args[0]

			cfg, err := loadConfig(opts)
			if err != nil {
				return err
			}
			if cfg.Database.Driver != config.DriverBadger {
				return errBadgerOnly
			}

			fi, err := os.Stat(backupFile)
			if errors.Is(err, fs.ErrNotExist) {
				return fmt.Errorf("backup file does not exist: %s", backupFile)
			}
			if err != nil {
				return err
			}
			if fi.Size() == 0 {
				return fmt.Errorf("backup file is empty: %s", backupFile)
			}

			if exists(cfg.Database.Path) {
				if !yes && !confirm(cmd, "Existing database found. Do you want to replace it?") {
					fmt.Fprintln(out, "Operation cancelled")
					return nil
				}
				if err := os.RemoveAll(cfg.Database.Path); err != nil {
					return fmt.Errorf("failed to remove existing database: %w", err)
				}
			}
			if err := os.MkdirAll(cfg.Database.Path, 0755); err != nil {
				return fmt.Errorf("failed to create database directory: %w", err)
			}

			store, err := repositories.Open(cfg.Database.Path)
			if err != nil {
				return fmt.Errorf("failed to open database: %w", err)
			}
			defer store.Close()

			f, err := os.Open(backupFile)
			if err != nil {
				return fmt.Errorf("failed to open backup file: %w", err)
			}
			defer f.Close()

			if err := store.Restore(f); err != nil {
				return fmt.Errorf("failed to restore database: %w", err)
			}
			fmt.Fprintln(out, "Database restored successfully")
			return nil
		},
	}
	cmd.Flags().BoolVarP(&yes, "yes", "y", false, "Replace an existing database without asking")
	return cmd
}
