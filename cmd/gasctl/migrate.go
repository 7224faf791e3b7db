package main

import (
	"github.com/spf13/cobra"

	"github.com/udisondev/gas/internal/db"
)

// NewMigrateCmd creates the migrate command group.
func NewMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the definition store schema",
	}
	cmd.AddCommand(&cobra.Command{
		Use:   "up",
		Short: "Apply all pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := resolveDSN()
			if err != nil {
				return err
			}
			cmd.Println("Running migrations...")
			if err := db.RunMigrations(cmd.Context(), dsn); err != nil {
				return err
			}
			cmd.Println("Migrations completed successfully")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "down",
		Short: "Roll back the most recent migration",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := resolveDSN()
			if err != nil {
				return err
			}
			if err := db.RollbackMigration(cmd.Context(), dsn); err != nil {
				return err
			}
			cmd.Println("Rolled back one migration")
			return nil
		},
	})
	cmd.AddCommand(&cobra.Command{
		Use:   "status",
		Short: "Print the current schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			dsn, err := resolveDSN()
			if err != nil {
				return err
			}
			version, err := db.MigrationVersion(cmd.Context(), dsn)
			if err != nil {
				return err
			}
			cmd.Printf("Schema version: %d\n", version)
			return nil
		},
	})
	return cmd
}
