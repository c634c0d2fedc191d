// Package commands provides modular CLI command packages for operation engines.
//
// There are two ways to use commands from this package:
//
// 1. Via the Commands factory (recommended for most use cases):
//
//	commands := commands.New(lggr)
//	app.AddCommand(
//	    commands.Reports(),
//	    commands.Catalog(catalog),
//	)
//
// 2. Via direct package imports (for advanced DI/testing):
//
//	import "github.com/hackico-ai/hati-operation/pkg/commands/reports"
//
//	app.AddCommand(reports.NewCommand(reports.Config{
//	    Logger: lggr,
//	    Deps:   &reports.Deps{...},  // inject mocks for testing
//	}))
package commands

import (
	"github.com/spf13/cobra"

	"github.com/hackico-ai/hati-operation/operations"
	"github.com/hackico-ai/hati-operation/pkg/commands/catalog"
	"github.com/hackico-ai/hati-operation/pkg/commands/reports"
	"github.com/hackico-ai/hati-operation/pkg/logger"
)

// Commands provides a factory for creating CLI commands with shared configuration.
// This allows setting the logger once and reusing it across all commands.
type Commands struct {
	lggr logger.Logger
}

// New creates a new Commands factory with the given logger.
// The logger will be shared across all commands created by this factory.
func New(lggr logger.Logger) *Commands {
	return &Commands{lggr: lggr}
}

// Reports creates the reports command group for inspecting stored call reports.
//
// Usage:
//
//	cmds := commands.New(lggr)
//	rootCmd.AddCommand(cmds.Reports())
func (c *Commands) Reports() *cobra.Command {
	return reports.NewCommand(reports.Config{
		Logger: c.lggr,
	})
}

// Catalog creates the catalog command group listing the operations of cat.
func (c *Commands) Catalog(cat *operations.Catalog) *cobra.Command {
	return catalog.NewCommand(catalog.Config{
		Logger:  c.lggr,
		Catalog: cat,
	})
}
