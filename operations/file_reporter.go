package operations

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/Masterminds/semver/v3"
	"gopkg.in/yaml.v3"
)

// FileReporter stores reports in a YAML file. The file is loaded once on construction and
// rewritten on every AddReport. Inputs and outputs are persisted in their YAML form, so reports
// read back from the file hold generic maps, slices and scalars instead of the original types.
// It is thread-safe within one process; concurrent processes writing the same file are not
// supported.
type FileReporter struct {
	path    string
	reports []Report[any, any]
	mu      sync.RWMutex
}

type reportFile struct {
	Reports []reportRecord `yaml:"reports"`
}

type reportRecord struct {
	ID          string       `yaml:"id"`
	Operation   string       `yaml:"operation"`
	Version     string       `yaml:"version,omitempty"`
	Description string       `yaml:"description,omitempty"`
	Input       any          `yaml:"input,omitempty"`
	Output      any          `yaml:"output,omitempty"`
	Timestamp   *time.Time   `yaml:"timestamp,omitempty"`
	Error       *string      `yaml:"error,omitempty"`
	Steps       []StepReport `yaml:"steps,omitempty"`
	Children    []string     `yaml:"children,omitempty"`
}

// NewFileReporter creates a FileReporter backed by path, loading the reports already stored there.
// A missing file is treated as empty and created on the first AddReport.
func NewFileReporter(path string) (*FileReporter, error) {
	r := &FileReporter{path: path}

	data, err := os.ReadFile(path)
	if errors.Is(err, fs.ErrNotExist) {
		return r, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read reports file: %w", err)
	}

	var file reportFile
	if err = yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("decode reports file %s: %w", path, err)
	}

	r.reports = make([]Report[any, any], 0, len(file.Reports))
	for _, rec := range file.Reports {
		report, err := rec.toReport()
		if err != nil {
			return nil, fmt.Errorf("decode report %s: %w", rec.ID, err)
		}
		r.reports = append(r.reports, report)
	}

	return r, nil
}

// Path returns the file the reports are stored in.
func (r *FileReporter) Path() string {
	return r.path
}

// AddReport appends report and rewrites the file.
func (r *FileReporter) AddReport(report Report[any, any]) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	reports := append(r.reports[:len(r.reports):len(r.reports)], report)
	if err := r.write(reports); err != nil {
		return err
	}
	r.reports = reports

	return nil
}

// GetReports returns all reports.
func (r *FileReporter) GetReports() ([]Report[any, any], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	reports := make([]Report[any, any], len(r.reports))
	copy(reports, r.reports)

	return reports, nil
}

// GetReport returns a report by ID.
// Returns ErrReportNotFound if the report is not found.
func (r *FileReporter) GetReport(id string) (Report[any, any], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return findReport(r.reports, id)
}

// GetExecutionReports returns the report reportID together with the reports of all operations
// it called as steps, children first.
func (r *FileReporter) GetExecutionReports(reportID string) ([]Report[any, any], error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	return executionReports(r.reports, reportID)
}

func (r *FileReporter) write(reports []Report[any, any]) error {
	file := reportFile{Reports: make([]reportRecord, 0, len(reports))}
	for _, report := range reports {
		file.Reports = append(file.Reports, newReportRecord(report))
	}

	data, err := yaml.Marshal(file)
	if err != nil {
		return fmt.Errorf("encode reports: %w", err)
	}

	if err = os.MkdirAll(filepath.Dir(r.path), 0o755); err != nil {
		return fmt.Errorf("create reports dir: %w", err)
	}

	tmp := r.path + ".tmp"
	if err = os.WriteFile(tmp, data, 0o600); err != nil {
		return fmt.Errorf("write reports file: %w", err)
	}

	return os.Rename(tmp, r.path)
}

func newReportRecord(r Report[any, any]) reportRecord {
	rec := reportRecord{
		ID:          r.ID,
		Operation:   r.Def.ID,
		Description: r.Def.Description,
		Input:       r.Input,
		Output:      r.Output,
		Timestamp:   r.Timestamp,
		Steps:       r.Steps,
		Children:    r.ChildOperationReports,
	}
	if r.Def.Version != nil {
		rec.Version = r.Def.Version.String()
	}
	if r.Err != nil {
		msg := r.Err.Message
		rec.Error = &msg
	}

	return rec
}

func (rec reportRecord) toReport() (Report[any, any], error) {
	report := Report[any, any]{
		ID: rec.ID,
		Def: Definition{
			ID:          rec.Operation,
			Description: rec.Description,
		},
		Input:                 rec.Input,
		Output:                rec.Output,
		Timestamp:             rec.Timestamp,
		Steps:                 rec.Steps,
		ChildOperationReports: rec.Children,
	}

	if rec.Version != "" {
		v, err := semver.NewVersion(rec.Version)
		if err != nil {
			return Report[any, any]{}, err
		}
		report.Def.Version = v
	}
	if rec.Error != nil {
		report.Err = &ReportError{Message: *rec.Error}
	}

	return report, nil
}
