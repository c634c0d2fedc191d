// Package catalog provides CLI commands for inspecting the operations registered in a catalog.
package catalog

import (
	"fmt"
	"strings"

	"github.com/spf13/cobra"

	"github.com/hackico-ai/hati-operation/operations"
	"github.com/hackico-ai/hati-operation/pkg/logger"
)

// Config holds the configuration of the catalog commands.
type Config struct {
	Logger  logger.Logger
	Catalog *operations.Catalog
}

// NewCommand creates a new catalog command with all subcommands.
//
// Usage:
//
//	rootCmd.AddCommand(catalog.NewCommand(catalog.Config{
//	    Logger:  lggr,
//	    Catalog: operations.NewCatalog(transfer, refund),
//	}))
func NewCommand(cfg Config) *cobra.Command {
	if cfg.Logger == nil {
		cfg.Logger = logger.Nop()
	}
	if cfg.Catalog == nil {
		cfg.Catalog = operations.NewCatalog()
	}

	cmd := &cobra.Command{
		Use:   "catalog",
		Short: "Operation catalog commands",
	}

	cmd.AddCommand(newListCmd(cfg))

	return cmd
}

func newListCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the registered operations and their steps",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ops := cfg.Catalog.List()
			cfg.Logger.Debugw("Listing catalog", "operations", len(ops))

			out := cmd.OutOrStdout()
			for _, op := range ops {
				def := op.Def()
				version := "-"
				if def.Version != nil {
					version = def.Version.String()
				}

				fmt.Fprintf(out, "%s\t%s\t%s\t[%s]\n",
					def.ID, version, def.Description, strings.Join(op.Registry().Steps(), ", "))
			}

			return nil
		},
	}
}
