// Package service is the portfolio command line: the web server plus the database and
// content maintenance commands.
package service

import (
	"fmt"
	"os"

	"portfolio/app/config"

	"github.com/spf13/cobra"
)

// Version is overridden at build time with -ldflags "-X portfolio/service.Version=...".
var Version = "dev"

var osExit = os.Exit

// options are the persistent flags shared by every command.
type options struct {
	configPath string
	dbPath     string
}

// NewRootCommand builds the command tree. A fresh tree is built per call so flag state
// never leaks between runs.
func NewRootCommand() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:   "portfolio",
		Short: "Personal blog and portfolio site",
		Long: `portfolio serves a personal blog: a paginated home page, a searchable post
listing with tag filters, post pages with comments, and a per-visitor
"saved for later" list.

Content lives in BadgerDB by default or PostgreSQL when database.driver is
"postgres". Settings come from portfolio.yaml and PORTFOLIO_* environment
variables.`,
		Version:       Version,
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.PersistentFlags().StringVarP(&opts.configPath, "config", "c", config.DefaultPath, "Path to the YAML config file")
	root.PersistentFlags().StringVar(&opts.dbPath, "db", "", "Badger database directory (overrides database.path)")

	root.AddCommand(
		newServeCommand(opts),
		newInitCommand(opts),
		newCleanCommand(opts),
		newBackupCommand(opts),
		newRestoreCommand(opts),
		newSeedCommand(opts),
		newTagCommand(opts),
		newPostCommand(opts),
		newVersionCommand(),
	)
	return root
}

// Execute runs the root command and exits non-zero on failure.
func Execute() {
	if err := NewRootCommand().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		osExit(1)
	}
}

func newVersionCommand() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "portfolio version %s\n", Version)
		},
	}
}
