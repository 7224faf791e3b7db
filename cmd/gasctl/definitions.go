package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/udisondev/gas/internal/data"
	"github.com/udisondev/gas/internal/db"
)

// NewValidateCmd creates the validate subcommand.
func NewValidateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "validate <definitions.yaml>",
		Short: "Check a definition file without touching the database",
		Long: `Parses the definition file and resolves every reference.
Exits with code 0 on success, non-zero on failure.

Useful in CI pipelines to catch definition errors early:
  gasctl validate config/definitions.yaml`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			catalog, err := readCatalog(args[0])
			if err != nil {
				return err
			}
			cmd.Printf("%s: %d attributes, %d effects, %d abilities\n", args[0],
				len(catalog.Attributes()), len(catalog.Effects()), len(catalog.Abilities()))
			return nil
		},
	}
}

// NewImportCmd creates the import subcommand.
func NewImportCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "import <definitions.yaml>",
		Short: "Replace the stored definitions with a YAML file",
		Long: `Validates the definition file, applies pending migrations and
replaces every stored definition in one transaction.`,
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			doc, err := data.ReadDocument(args[0])
			if err != nil {
				return err
			}
			if _, err := data.BuildCatalog(doc); err != nil {
				return fmt.Errorf("validating %s: %w", args[0], err)
			}

			database, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			if err := database.Definitions().Save(cmd.Context(), doc); err != nil {
				return err
			}
			cmd.Printf("Imported %d attributes, %d effects, %d abilities\n",
				len(doc.Attributes), len(doc.Effects), len(doc.Abilities))
			return nil
		},
	}
}

// NewExportCmd creates the export subcommand.
func NewExportCmd() *cobra.Command {
	var output string
	cmd := &cobra.Command{
		Use:   "export",
		Short: "Write the stored definitions as YAML",
		RunE: func(cmd *cobra.Command, _ []string) error {
			database, err := openDB(cmd)
			if err != nil {
				return err
			}
			defer database.Close()

			doc, err := database.Definitions().Load(cmd.Context())
			if err != nil {
				return err
			}
			b, err := doc.Marshal()
			if err != nil {
				return err
			}
			if output == "" || output == "-" {
				_, err = cmd.OutOrStdout().Write(b)
				return err
			}
			if err := os.WriteFile(output, b, 0o644); err != nil {
				return fmt.Errorf("writing %s: %w", output, err)
			}
			return nil
		},
	}
	cmd.Flags().StringVarP(&output, "output", "o", "", "output file (default stdout)")
	return cmd
}

func readCatalog(path string) (*data.Catalog, error) {
	doc, err := data.ReadDocument(path)
	if err != nil {
		return nil, err
	}
	catalog, err := data.BuildCatalog(doc)
	if err != nil {
		return nil, fmt.Errorf("validating %s: %w", path, err)
	}
	return catalog, nil
}

func openDB(cmd *cobra.Command) (*db.DB, error) {
	dsn, err := resolveDSN()
	if err != nil {
		return nil, err
	}
	if err := db.RunMigrations(cmd.Context(), dsn); err != nil {
		return nil, err
	}
	database, err := db.New(cmd.Context(), dsn)
	if err != nil {
		return nil, fmt.Errorf("connecting to database: %w", err)
	}
	return database, nil
}
