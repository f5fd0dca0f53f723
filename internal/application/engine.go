// Package application orchestrates reconciliation runs.
package application

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"

	"vn.io.arda/rolesync/internal/domain"
	"vn.io.arda/rolesync/internal/identity"
	"vn.io.arda/rolesync/internal/metrics"
)

// OutcomePublisher forwards completed outcomes to an audit sink. Publishing
// is best-effort: the engine logs failures and carries on.
type OutcomePublisher interface {
	PublishOutcome(ctx context.Context, event domain.OutcomeEvent) error
}

// Engine reconciles CockroachDB role membership against Okta group
// membership, one mapping at a time.
type Engine struct {
	directory GroupDirectory
	store     domain.RoleStore
	mapper    *identity.Mapper
	publisher OutcomePublisher
	metrics   *metrics.RunMetrics
	opts      domain.Options
}

// NewEngine assembles an engine. publisher and runMetrics may be nil, which
// disables outcome publishing and instrumentation respectively.
func NewEngine(
	directory GroupDirectory,
	store domain.RoleStore,
	mapper *identity.Mapper,
	publisher OutcomePublisher,
	runMetrics *metrics.RunMetrics,
	opts domain.Options,
) *Engine {
	return &Engine{
		directory: directory,
		store:     store,
		mapper:    mapper,
		publisher: publisher,
		metrics:   runMetrics,
		opts:      opts,
	}
}

// Run reconciles every mapping in order and assembles the run report. The
// first fatal error aborts the run: earlier mappings keep whatever changes
// were already applied (each statement autocommits) and no report is
// produced. Under dry-run the database is never written, only read.
func (e *Engine) Run(ctx context.Context, mappings []domain.Mapping) (*domain.Report, error) {
	report := &domain.Report{
		RunID:     uuid.NewString(),
		DryRun:    e.opts.DryRun,
		StartedAt: time.Now().UTC(),
		Results:   make([]domain.Outcome, 0, len(mappings)),
	}
	e.metrics.RecordRunStarted()
	log.Info().
		Str("run_id", report.RunID).
		Bool("dry_run", report.DryRun).
		Int("mappings", len(mappings)).
		Msg("reconciliation run started")

	for _, mapping := range mappings {
		outcome, err := e.SyncMapping(ctx, mapping)
		if err != nil {
			e.metrics.RecordRunFinished(false, time.Since(report.StartedAt))
			return nil, fmt.Errorf("sync %s -> %s: %w", mapping.OktaGroup, mapping.CRDBRole, err)
		}
		report.Results = append(report.Results, outcome)
		e.publishOutcome(ctx, report, outcome)
	}

	report.FinishedAt = time.Now().UTC()
	e.metrics.RecordRunFinished(true, report.FinishedAt.Sub(report.StartedAt))
	log.Info().
		Str("run_id", report.RunID).
		Dur("elapsed", report.FinishedAt.Sub(report.StartedAt)).
		Msg("reconciliation run finished")
	return report, nil
}

// SyncMapping reconciles a single mapping: resolve the group, list members,
// derive usernames, provision role and users, read current membership, diff,
// apply. Identities the mapping rule does not cover are logged and skipped;
// every other failure is fatal and returned as-is for classification by the
// caller.
func (e *Engine) SyncMapping(ctx context.Context, mapping domain.Mapping) (domain.Outcome, error) {
	groupID, err := e.directory.FindGroupIDByName(ctx, mapping.OktaGroup)
	if err != nil {
		return domain.Outcome{}, err
	}

	emails, err := e.directory.ListGroupMemberEmails(ctx, groupID)
	if err != nil {
		return domain.Outcome{}, err
	}

	desired := make(map[string]struct{}, len(emails))
	for _, email := range emails {
		user, err := e.mapper.Derive(email)
		if err != nil {
			log.Warn().Str("identity", email).Err(err).Msg("skipping unmappable identity")
			e.metrics.RecordSkippedIdentity()
			continue
		}
		desired[user] = struct{}{}
	}

	if e.opts.EnsureRoles {
		if e.opts.DryRun {
			log.Info().Str("role", mapping.CRDBRole).Msg("dry-run: would ensure role exists")
		} else if err := e.store.EnsureRole(ctx, mapping.CRDBRole); err != nil {
			return domain.Outcome{}, err
		}
	}
	if e.opts.EnsureUsers {
		for _, user := range domain.SortedMembers(desired) {
			if e.opts.DryRun {
				log.Info().Str("user", user).Msg("dry-run: would ensure user exists")
				continue
			}
			if err := e.store.EnsureUser(ctx, user); err != nil {
				return domain.Outcome{}, err
			}
		}
	}

	current, err := e.store.CurrentMembers(ctx, mapping.CRDBRole)
	if err != nil {
		return domain.Outcome{}, err
	}

	toAdd, toRemove := domain.Diff(desired, current, e.opts.EnforceRemovals)

	for _, user := range toAdd {
		if e.opts.DryRun {
			log.Info().Str("role", mapping.CRDBRole).Str("user", user).Msg("dry-run: would grant role")
			continue
		}
		if err := e.store.Grant(ctx, mapping.CRDBRole, user); err != nil {
			return domain.Outcome{}, err
		}
		e.metrics.RecordGrant()
	}
	for _, user := range toRemove {
		if e.opts.DryRun {
			log.Info().Str("role", mapping.CRDBRole).Str("user", user).Msg("dry-run: would revoke role")
			continue
		}
		if err := e.store.Revoke(ctx, mapping.CRDBRole, user); err != nil {
			return domain.Outcome{}, err
		}
		e.metrics.RecordRevoke()
	}

	outcome := domain.Outcome{
		OktaGroup:    mapping.OktaGroup,
		CRDBRole:     mapping.CRDBRole,
		DesiredCount: len(desired),
		CurrentCount: len(current),
		Granted:      toAdd,
		Revoked:      toRemove,
	}
	log.Info().
		Str("group", outcome.OktaGroup).
		Str("role", outcome.CRDBRole).
		Int("desired", outcome.DesiredCount).
		Int("current", outcome.CurrentCount).
		Int("granted", len(outcome.Granted)).
		Int("revoked", len(outcome.Revoked)).
		Msg("mapping reconciled")
	return outcome, nil
}

func (e *Engine) publishOutcome(ctx context.Context, report *domain.Report, outcome domain.Outcome) {
	if e.publisher == nil {
		return
	}
	event := domain.OutcomeEvent{RunID: report.RunID, DryRun: report.DryRun, Outcome: outcome}
	if err := e.publisher.PublishOutcome(ctx, event); err != nil {
		log.Warn().
			Err(err).
			Str("group", outcome.OktaGroup).
			Str("role", outcome.CRDBRole).
			Msg("outcome publish failed")
	}
}
