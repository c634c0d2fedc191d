package reports

import (
	"fmt"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/hackico-ai/hati-operation/operations"
	"github.com/hackico-ai/hati-operation/pkg/logger"
)

// Config holds the configuration of the reports commands.
type Config struct {
	// Logger is used for command diagnostics. Defaults to a no-op logger.
	Logger logger.Logger

	// Deps overrides the production dependencies, mostly for testing.
	Deps *Deps
}

func (c *Config) deps() {
	if c.Logger == nil {
		c.Logger = logger.Nop()
	}
	if c.Deps == nil {
		c.Deps = &Deps{}
	}
	c.Deps.applyDefaults()
}

// NewCommand creates a new reports command with all subcommands.
// The command requires a file flag (-f) which is used by all subcommands.
//
// Usage:
//
//	rootCmd.AddCommand(reports.NewCommand(reports.Config{
//	    Logger: lggr,
//	}))
func NewCommand(cfg Config) *cobra.Command {
	cfg.deps()

	cmd := &cobra.Command{
		Use:   "reports",
		Short: "Operation report commands",
	}

	cmd.AddCommand(
		newListCmd(cfg),
		newShowCmd(cfg),
	)

	cmd.PersistentFlags().
		StringP("file", "f", "", "Reports file (required)")
	_ = cmd.MarkPersistentFlagRequired("file")

	return cmd
}

func newListCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "list",
		Short: "List the stored operation call reports",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			reporter, err := loadReporter(cmd, cfg)
			if err != nil {
				return err
			}

			reports, err := reporter.GetReports()
			if err != nil {
				return fmt.Errorf("get reports: %w", err)
			}

			out := cmd.OutOrStdout()
			for _, r := range reports {
				status := "success"
				if !r.Succeeded() {
					status = "failure"
				}

				fmt.Fprintf(out, "%s\t%s\t%s\t%s\n", r.ID, operationLabel(r.Def), status, timestampLabel(r.Timestamp))
			}

			return nil
		},
	}
}

func newShowCmd(cfg Config) *cobra.Command {
	return &cobra.Command{
		Use:   "show <id>",
		Short: "Show a report together with the reports of the operations it called",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			reporter, err := loadReporter(cmd, cfg)
			if err != nil {
				return err
			}

			reports, err := reporter.GetExecutionReports(args[0])
			if err != nil {
				return fmt.Errorf("get execution reports: %w", err)
			}

			views := make([]reportView, 0, len(reports))
			for _, r := range reports {
				views = append(views, newReportView(r))
			}

			enc := yaml.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent(2)
			if err = enc.Encode(views); err != nil {
				return fmt.Errorf("encode reports: %w", err)
			}

			return enc.Close()
		},
	}
}

func loadReporter(cmd *cobra.Command, cfg Config) (operations.Reporter, error) {
	path, err := cmd.Flags().GetString("file")
	if err != nil {
		return nil, err
	}

	reporter, err := cfg.Deps.ReporterLoader(path)
	if err != nil {
		return nil, fmt.Errorf("load reports from %s: %w", path, err)
	}
	cfg.Logger.Debugw("Loaded reports", "path", path)

	return reporter, nil
}

// reportView is the printed form of a report.
type reportView struct {
	ID        string                  `yaml:"id"`
	Operation string                  `yaml:"operation"`
	Input     any                     `yaml:"input,omitempty"`
	Output    any                     `yaml:"output,omitempty"`
	Error     *string                 `yaml:"error,omitempty"`
	Timestamp string                  `yaml:"timestamp,omitempty"`
	Steps     []operations.StepReport `yaml:"steps,omitempty"`
	Children  []string                `yaml:"children,omitempty"`
}

func newReportView(r operations.Report[any, any]) reportView {
	v := reportView{
		ID:        r.ID,
		Operation: operationLabel(r.Def),
		Input:     r.Input,
		Output:    r.Output,
		Timestamp: timestampLabel(r.Timestamp),
		Steps:     r.Steps,
		Children:  r.ChildOperationReports,
	}
	if r.Err != nil {
		msg := r.Err.Message
		v.Error = &msg
	}

	return v
}

func operationLabel(def operations.Definition) string {
	if def.Version == nil {
		return def.ID
	}

	return def.ID + "@" + def.Version.String()
}

func timestampLabel(ts *time.Time) string {
	if ts == nil {
		return ""
	}

	return ts.UTC().Format(time.RFC3339)
}
