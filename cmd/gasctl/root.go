package main

import (
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/gas/internal/config"
)

const defaultConfigPath = "config/gas.yaml"

// Global flags available to all subcommands.
var (
	configFile  string
	databaseURL string
)

// NewRootCmd creates the root command for the gasctl CLI.
func NewRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "gasctl",
		Short: "Manage attribute, effect and ability definitions",
		Long: `gasctl validates definition files and moves them between YAML
and the PostgreSQL definition store used by gassim.`,
		SilenceUsage: true,
	}

	cmd.PersistentFlags().StringVar(&configFile, "config", "", "engine config file path (default $GAS_CONFIG or config/gas.yaml)")
	cmd.PersistentFlags().StringVar(&databaseURL, "database-url", "", "PostgreSQL DSN, overrides the config database section")

	cmd.AddCommand(NewMigrateCmd())
	cmd.AddCommand(NewImportCmd())
	cmd.AddCommand(NewExportCmd())
	cmd.AddCommand(NewValidateCmd())

	return cmd
}

// resolveDSN picks the database DSN: flag, then DATABASE_URL, then config.
func resolveDSN() (string, error) {
	if databaseURL != "" {
		return databaseURL, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}

	path := configFile
	if path == "" {
		path = os.Getenv("GAS_CONFIG")
	}
	if path == "" {
		path = defaultConfigPath
	}
	cfg, err := config.LoadEngine(path)
	if err != nil {
		return "", err
	}
	return cfg.Database.DSN(), nil
}
