package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	_ "storefront/docs"
	"storefront/pkg/catalog"
)

// @title Storefront API
// @version 1.0
// @description Catalog, favourites and cart for the phone storefront
// @host localhost:8443
// @BasePath /
func main() {
	if err := newRootCmd().ExecuteContext(context.Background()); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var cfgPath string
	root := &cobra.Command{
		Use:          "storefront",
		Short:        "Phone, tablet and accessory storefront API",
		SilenceUsage: true,
	}
	root.PersistentFlags().StringVar(&cfgPath, "config", "", "path to a YAML config file")
	root.AddCommand(newServeCmd(&cfgPath), newCatalogCmd())
	return root
}

func newCatalogCmd() *cobra.Command {
	var category string
	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Print the built-in catalog as JSON",
		RunE: func(cmd *cobra.Command, args []string) error {
			products, err := catalog.Static()
			if err != nil {
				return err
			}
			if category != "" {
				c, ok := catalog.ParseCategory(category)
				if !ok {
					return fmt.Errorf("unknown category %q", category)
				}
				filtered := products[:0]
				for _, p := range products {
					if p.Category == c {
						filtered = append(filtered, p)
					}
				}
				products = filtered
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(products)
		},
	}
	cmd.Flags().StringVar(&category, "category", "", "phones, tablets or accessories")
	return cmd
}
