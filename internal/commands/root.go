// Package commands wires the spendboard CLI.
package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mmynk/spendboard/internal/config"
	"github.com/mmynk/spendboard/internal/storage/sqlite"
	"github.com/mmynk/spendboard/pkg/logging"
)

// app carries state shared by every subcommand once the root has loaded it.
type app struct {
	cfg      *config.Config
	logLevel string
	dbPath   string
}

// NewRootCommand creates the root CLI command with all subcommands registered.
func NewRootCommand() *cobra.Command {
	a := &app{}

	rootCmd := &cobra.Command{
		Use:   "spendboard",
		Short: "Shared expense tracking with CSV imports and spending dashboards",
		CompletionOptions: cobra.CompletionOptions{
			DisableDefaultCmd: true,
		},
		SilenceUsage: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return a.load(cmd)
		},
	}

	rootCmd.PersistentFlags().StringVar(&a.logLevel, "log-level", "", "log level: debug, info, warn, error (default from LOG_LEVEL)")
	rootCmd.PersistentFlags().StringVar(&a.dbPath, "db", "", "SQLite database path (default from DB_PATH)")

	rootCmd.AddCommand(
		newServeCommand(a),
		newImportCommand(a),
		newBalancesCommand(a),
		newExportCommand(a),
		newTokenCommand(a),
	)

	return rootCmd
}

func (a *app) load(cmd *cobra.Command) error {
	if a.logLevel != "" {
		logging.SetupWithLevel(logging.ParseLevel(a.logLevel))
	} else {
		logging.Setup()
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}
	if a.dbPath != "" {
		cfg.DBPath = a.dbPath
	}
	a.cfg = cfg
	return nil
}

func (a *app) openStore() (*sqlite.SQLiteStore, error) {
	store, err := sqlite.New(a.cfg.DBPath)
	if err != nil {
		return nil, fmt.Errorf("opening database %s: %w", a.cfg.DBPath, err)
	}
	return store, nil
}
