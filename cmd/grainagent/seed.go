package main

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/tbxark/grainagent/store"
)

var seedFile string

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Load grain references and recipes from a YAML file into the catalog",
	RunE: func(cmd *cobra.Command, args []string) error {
		catalog, err := openCatalog(cfg.Catalog)
		if err != nil {
			return err
		}
		if catalog == nil {
			return errors.New("catalog.path (or --catalog) is required")
		}
		defer func() { _ = catalog.Close() }()

		data, err := store.LoadCatalog(seedFile)
		if err != nil {
			return err
		}
		stats, err := catalog.Seed(cmd.Context(), data)
		if err != nil {
			return fmt.Errorf("seed catalog: %w", err)
		}
		fmt.Fprintf(cmd.OutOrStdout(), "seeded %d grains (%d aliases) and %d recipes into %s\n",
			stats.Grains, stats.Aliases, stats.Recipes, cfg.Catalog.Path)
		return nil
	},
}

func init() {
	seedCmd.Flags().StringVarP(&seedFile, "file", "f", "catalog.yaml", "catalog YAML file")
}
