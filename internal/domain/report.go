package domain

import (
	"fmt"
	"time"
)

// Report aggregates the per-object and per-ledger outcomes of one run. It is
// owned by the orchestrator and threaded explicitly through the scan, never
// shared state.
type Report struct {
	Mode      string
	Files     int
	Objects   int
	Rewritten int
	Failures  []Failure
	Warnings  []Warning
}

// AddFailure appends a failure to the report.
func (r *Report) AddFailure(f Failure) {
	r.Failures = append(r.Failures, f)
}

// AddWarning appends a warning to the report.
func (r *Report) AddWarning(w Warning) {
	r.Warnings = append(r.Warnings, w)
}

// Failed reports whether the run must exit non-zero.
func (r *Report) Failed() bool {
	return len(r.Failures) > 0
}

// Summary returns the single end-of-run summary line.
func (r *Report) Summary() string {
	return fmt.Sprintf("%s: %d files, %d governed objects, %d rewritten, %d failures, %d warnings",
		r.Mode, r.Files, r.Objects, r.Rewritten, len(r.Failures), len(r.Warnings))
}

// RunRecord captures the outcome of one run for the history repository.
type RunRecord struct {
	ID         string
	Mode       string
	StartedAt  time.Time
	FinishedAt time.Time
	Files      int
	Objects    int
	Rewritten  int
	Warnings   int
	Status     string // "clean" or "drift"
	Failures   []Failure
}

// RunStatus values recorded in the history repository.
const (
	RunStatusClean = "clean"
	RunStatusDrift = "drift"
)

// NewRunRecord builds a history record from a finished report.
func NewRunRecord(id string, report *Report, started, finished time.Time) *RunRecord {
	status := RunStatusClean
	if report.Failed() {
		status = RunStatusDrift
	}
	return &RunRecord{
		ID:         id,
		Mode:       report.Mode,
		StartedAt:  started,
		FinishedAt: finished,
		Files:      report.Files,
		Objects:    report.Objects,
		Rewritten:  report.Rewritten,
		Warnings:   len(report.Warnings),
		Status:     status,
		Failures:   report.Failures,
	}
}
