// Package reports provides CLI commands for inspecting stored operation call reports.
package reports

import (
	"github.com/hackico-ai/hati-operation/operations"
)

// ReporterLoaderFunc opens the reporter backed by the reports file at path.
type ReporterLoaderFunc func(path string) (operations.Reporter, error)

// defaultReporterLoader is the production implementation that reads a YAML reports file.
func defaultReporterLoader(path string) (operations.Reporter, error) {
	return operations.NewFileReporter(path)
}

// Deps holds the injectable dependencies for reports commands.
// All fields are optional; nil values will use production defaults.
type Deps struct {
	// ReporterLoader opens the reports file.
	// Default: operations.NewFileReporter
	ReporterLoader ReporterLoaderFunc
}

// applyDefaults fills in nil dependencies with production defaults.
func (d *Deps) applyDefaults() {
	if d.ReporterLoader == nil {
		d.ReporterLoader = defaultReporterLoader
	}
}
