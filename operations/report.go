package operations

import (
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
)

// Report is the record of one operation call.
// It contains the args, the final output or error and the steps that were entered.
type Report[IN, OUT any] struct {
	ID        string       `json:"id" yaml:"id"`
	Def       Definition   `json:"definition" yaml:"definition"`
	Output    OUT          `json:"output" yaml:"output"`
	Input     IN           `json:"input" yaml:"input"`
	Timestamp *time.Time   `json:"timestamp" yaml:"timestamp"`
	Err       *ReportError `json:"error" yaml:"error,omitempty"`
	// Steps lists the step accessors read during the call, in order.
	Steps []StepReport `json:"steps,omitempty" yaml:"steps,omitempty"`
	// stores the report IDs of operations that were called as steps of this operation.
	ChildOperationReports []string `json:"childOperationReports" yaml:"childOperationReports,omitempty"`
}

// StepReport is the reported form of an execution Frame.
type StepReport struct {
	Name string `json:"name" yaml:"name"`
	Done bool   `json:"done" yaml:"done"`
}

func newStepReports(frames []Frame) []StepReport {
	if len(frames) == 0 {
		return nil
	}

	steps := make([]StepReport, 0, len(frames))
	for _, f := range frames {
		steps = append(steps, StepReport{Name: f.Step, Done: f.Done})
	}

	return steps
}

// ToGenericReport converts the Report to a generic Report.
func (r Report[IN, OUT]) ToGenericReport() Report[any, any] {
	return genericReport(r)
}

// Succeeded reports whether the call ended with a Success.
func (r Report[IN, OUT]) Succeeded() bool {
	return r.Err == nil
}

// NewReport creates a new report.
// childReportsID lists the reports of operations called as steps.
func NewReport[IN, OUT any](
	def Definition, input IN, output OUT, err error, childReportsID ...string,
) Report[IN, OUT] {
	now := time.Now()
	r := Report[IN, OUT]{
		ID:                    uuid.New().String(),
		Def:                   def,
		Output:                output,
		Input:                 input,
		Timestamp:             &now,
		ChildOperationReports: childReportsID,
	}
	if err != nil {
		r.Err = &ReportError{Message: err.Error()}
	}

	return r
}

// ReportError represents an error in the Report.
// Its purpose is to have an exported field `Message` for marshalling as the
// native error cant be marshaled.
type ReportError struct {
	Message string `json:"message" yaml:"message"`
}

// Error implements the error interface.
func (o ReportError) Error() string {
	return o.Message
}

var ErrReportNotFound = errors.New("report not found")

// Reporter manages reports. It can store them in memory, in a file, etc.
type Reporter interface {
	GetReport(id string) (Report[any, any], error)
	GetReports() ([]Report[any, any], error)
	AddReport(report Report[any, any]) error
	GetExecutionReports(reportID string) ([]Report[any, any], error)
}

// MemoryReporter stores reports in memory.
// This is thread-safe and can be used in a multi-threaded environment.
type MemoryReporter struct {
	reports []Report[any, any]
	mu      sync.RWMutex
}

type MemoryReporterOption func(*MemoryReporter)

// WithReports is an option to initialize the MemoryReporter with a list of reports.
func WithReports(reports []Report[any, any]) MemoryReporterOption {
	return func(mr *MemoryReporter) {
		mr.reports = reports
	}
}

// NewMemoryReporter creates a new MemoryReporter.
// It can be initialized with a list of reports using the WithReports option.
func NewMemoryReporter(options ...MemoryReporterOption) *MemoryReporter {
	reporter := &MemoryReporter{}
	for _, opt := range options {
		opt(reporter)
	}

	return reporter
}

// AddReport adds a report to the memory reporter.
func (e *MemoryReporter) AddReport(report Report[any, any]) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	e.reports = append(e.reports, report)

	return nil
}

// GetReports returns all reports.
func (e *MemoryReporter) GetReports() ([]Report[any, any], error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	// Create a copy to avoid data races after returning
	reports := make([]Report[any, any], len(e.reports))
	copy(reports, e.reports)

	return reports, nil
}

// GetReport returns a report by ID.
// Returns ErrReportNotFound if the report is not found.
func (e *MemoryReporter) GetReport(id string) (Report[any, any], error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return findReport(e.reports, id)
}

// GetExecutionReports returns the report of an operation call together with the reports of all
// operations it called as steps, children first.
func (e *MemoryReporter) GetExecutionReports(reportID string) ([]Report[any, any], error) {
	e.mu.RLock()
	defer e.mu.RUnlock()

	return executionReports(e.reports, reportID)
}

// RecentReporter is a wrapper around a Reporter that keeps track of the most recent reports.
// Calls use it to collect the reports of operations called as their steps.
// It is thread-safe and can be used in a multi-threaded environment.
type RecentReporter struct {
	Reporter
	recentReports []Report[any, any]
	mu            sync.RWMutex
}

// AddReport adds a report to the recent reporter.
func (e *RecentReporter) AddReport(report Report[any, any]) error {
	// First add to underlying reporter
	err := e.Reporter.AddReport(report)
	if err != nil {
		return err
	}

	// Then add to recent reports
	e.mu.Lock()
	defer e.mu.Unlock()

	e.recentReports = append(e.recentReports, report)

	return nil
}

// GetRecentReports returns all the reports that was added since the construction of the RecentReporter.
func (e *RecentReporter) GetRecentReports() []Report[any, any] {
	e.mu.RLock()
	defer e.mu.RUnlock()

	reports := make([]Report[any, any], len(e.recentReports))
	copy(reports, e.recentReports)

	return reports
}

// NewRecentMemoryReporter creates a new RecentReporter.
func NewRecentMemoryReporter(reporter Reporter) *RecentReporter {
	r := &RecentReporter{
		Reporter:      reporter,
		recentReports: []Report[any, any]{},
	}

	return r
}

func findReport(reports []Report[any, any], id string) (Report[any, any], error) {
	for _, report := range reports {
		if report.ID == id {
			return report, nil
		}
	}

	return Report[any, any]{}, fmt.Errorf("report_id %s: %w", id, ErrReportNotFound)
}

// executionReports recursively collects the report reportID and its child reports.
func executionReports(reports []Report[any, any], reportID string) ([]Report[any, any], error) {
	var allReports []Report[any, any]

	var getReportsRecursively func(id string) error
	getReportsRecursively = func(id string) error {
		report, err := findReport(reports, id)
		if err != nil {
			return err
		}

		for _, childID := range report.ChildOperationReports {
			if err := getReportsRecursively(childID); err != nil {
				return err
			}
		}
		allReports = append(allReports, report)

		return nil
	}

	if err := getReportsRecursively(reportID); err != nil {
		return nil, err
	}

	return allReports, nil
}

func genericReport[IN, OUT any](r Report[IN, OUT]) Report[any, any] {
	return Report[any, any]{
		ID: r.ID,
		Def: Definition{
			ID:          r.Def.ID,
			Version:     r.Def.Version,
			Description: r.Def.Description,
		},
		Output:                r.Output,
		Input:                 r.Input,
		Timestamp:             r.Timestamp,
		Err:                   r.Err,
		Steps:                 r.Steps,
		ChildOperationReports: r.ChildOperationReports,
	}
}
