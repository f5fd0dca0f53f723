package domain

import "time"

// Mapping pairs one Okta group with the CockroachDB role its members should
// hold. Mappings are supplied by configuration and immutable for a run; their
// order determines report ordering only.
type Mapping struct {
	OktaGroup string
	CRDBRole  string
}

// Options controls how a reconciliation run behaves. DryRun replaces every
// mutation with a report-only notice; EnforceRemovals opts in to destructive
// sync (the default is additive-only).
type Options struct {
	EnsureUsers     bool
	EnsureRoles     bool
	EnforceRemovals bool
	DryRun          bool
}

// Outcome records what one mapping's reconciliation did, or would have done
// under dry-run. Granted and Revoked are sorted and never nil so the report
// stays stable for downstream automation.
type Outcome struct {
	OktaGroup    string   `json:"okta_group"`
	CRDBRole     string   `json:"crdb_role"`
	DesiredCount int      `json:"desired_count"`
	CurrentCount int      `json:"current_count"`
	Granted      []string `json:"granted"`
	Revoked      []string `json:"revoked"`
}

// Report is the machine-readable result of one run: the outcomes in mapping
// order plus an identifying envelope.
type Report struct {
	RunID      string    `json:"run_id"`
	DryRun     bool      `json:"dry_run"`
	StartedAt  time.Time `json:"started_at"`
	FinishedAt time.Time `json:"finished_at"`
	Results    []Outcome `json:"results"`
}

// OutcomeEvent is the wire form of a single outcome published to the audit
// topic.
type OutcomeEvent struct {
	RunID  string `json:"run_id"`
	DryRun bool   `json:"dry_run"`
	Outcome
}
