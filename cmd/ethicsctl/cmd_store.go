package main

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/tjfontaine/ethics-pipeline/internal/adapters/storage/sqlite"
	"github.com/tjfontaine/ethics-pipeline/internal/pipeline"
	"github.com/tjfontaine/ethics-pipeline/internal/registration"
)

func newImportCmd(root *rootOptions) *cobra.Command {
	var dbPath string

	cmd := &cobra.Command{
		Use:   "import",
		Short: "Copy the configured plugins into a SQLite descriptor store",
		Long: "import validates pipeline.plugins against the plugin catalog and\n" +
			"replaces the descriptors stored in the database with them. Point\n" +
			"store.path at the database to load the pipeline from it.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := root.loadConfig()
			if err != nil {
				return err
			}
			descriptors := cfg.Descriptors()
			if _, err := pipeline.LoadRegistry(registration.NewCatalog(), descriptors); err != nil {
				return err
			}

			store, err := sqlite.NewProvider(dbPath)
			if err != nil {
				return err
			}
			defer store.Close()

			if err := store.SaveDescriptors(cmd.Context(), descriptors); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "imported %d plugins into %s\n", len(descriptors), dbPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dbPath, "db", "", "SQLite database path (required)")
	_ = cmd.MarkFlagRequired("db")
	return cmd
}
