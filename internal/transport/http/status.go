package http

import (
	"sync"
	"time"

	"vn.io.arda/rolesync/internal/domain"
)

// Status holds the daemon's in-process run state for the operational
// endpoints. The daemon is single-instance, so memory is the source of truth.
type Status struct {
	mu sync.RWMutex

	runsStarted   int
	runsSucceeded int
	runsFailed    int

	lastRunAt  time.Time
	nextRunAt  time.Time
	lastError  string
	lastReport *domain.Report
}

// StatusView is the JSON shape served by GET /status.
type StatusView struct {
	RunsStarted   int        `json:"runs_started"`
	RunsSucceeded int        `json:"runs_succeeded"`
	RunsFailed    int        `json:"runs_failed"`
	LastRunID     string     `json:"last_run_id,omitempty"`
	LastRunAt     *time.Time `json:"last_run_at,omitempty"`
	NextRunAt     *time.Time `json:"next_run_at,omitempty"`
	LastError     string     `json:"last_error,omitempty"`
}

// NewStatus returns an empty Status.
func NewStatus() *Status {
	return &Status{}
}

// RecordStart marks a run as begun.
func (s *Status) RecordStart() {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runsStarted++
}

// RecordSuccess stores the finished run's report and the next scheduled run.
func (s *Status) RecordSuccess(report *domain.Report, next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runsSucceeded++
	s.lastRunAt = report.FinishedAt
	s.nextRunAt = next
	s.lastError = ""
	s.lastReport = report
}

// RecordFailure notes a failed run. The last successful report is kept.
func (s *Status) RecordFailure(err error, next time.Time) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.runsFailed++
	s.lastRunAt = time.Now().UTC()
	s.nextRunAt = next
	s.lastError = err.Error()
}

// Snapshot returns a consistent view of the counters.
func (s *Status) Snapshot() StatusView {
	s.mu.RLock()
	defer s.mu.RUnlock()

	view := StatusView{
		RunsStarted:   s.runsStarted,
		RunsSucceeded: s.runsSucceeded,
		RunsFailed:    s.runsFailed,
		LastError:     s.lastError,
	}
	if s.lastReport != nil {
		view.LastRunID = s.lastReport.RunID
	}
	if !s.lastRunAt.IsZero() {
		at := s.lastRunAt
		view.LastRunAt = &at
	}
	if !s.nextRunAt.IsZero() {
		at := s.nextRunAt
		view.NextRunAt = &at
	}
	return view
}

// LastReport returns the most recent successful run report, or nil before
// the first completed run.
func (s *Status) LastReport() *domain.Report {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.lastReport
}
