package commands

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/rs/zerolog/log"

	"vn.io.arda/rolesync/internal/application"
	"vn.io.arda/rolesync/internal/config"
	"vn.io.arda/rolesync/internal/domain"
	"vn.io.arda/rolesync/internal/identity"
	"vn.io.arda/rolesync/internal/infrastructure/crdb"
	"vn.io.arda/rolesync/internal/infrastructure/okta"
	"vn.io.arda/rolesync/internal/kafka"
	"vn.io.arda/rolesync/internal/metrics"
)

// loadConfig reads the configuration file, wires logging and runs the
// pre-flight validation.
func loadConfig() (*config.Config, error) {
	cfg, err := config.Load(cfgFile)
	if err != nil {
		return nil, err
	}
	initLogging(cfg.Log.Level)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// buildEngine assembles the reconciliation engine and returns it with a
// cleanup function for the connections it opened.
func buildEngine(ctx context.Context, cfg *config.Config, dryRun bool, runMetrics *metrics.RunMetrics) (*application.Engine, func(), error) {
	mapper, err := identity.NewMapper(cfg.IdentityMap.Pattern, cfg.IdentityMap.Replacement)
	if err != nil {
		return nil, nil, err
	}

	directory := okta.NewClient(cfg.Okta.OrgURL, cfg.Okta.APIToken, cfg.Okta.PageSize)

	pool, err := pgxpool.New(ctx, cfg.CRDB.URL)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to cockroachdb: %w", err)
	}
	if err := pool.Ping(ctx); err != nil {
		pool.Close()
		return nil, nil, fmt.Errorf("cockroachdb ping: %w", err)
	}
	log.Info().Msg("cockroachdb connected")

	cleanup := func() { pool.Close() }

	var publisher application.OutcomePublisher
	if len(cfg.Kafka.Brokers) > 0 {
		kp, err := kafka.NewPublisher(cfg.Kafka.Brokers, cfg.Kafka.Topic)
		if err != nil {
			pool.Close()
			return nil, nil, err
		}
		publisher = kp
		cleanup = func() {
			kp.Close()
			pool.Close()
		}
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.Topic).Msg("outcome publishing enabled")
	}

	opts := domain.Options{
		EnsureUsers:     cfg.CRDB.EnsureSQLUsers,
		EnsureRoles:     cfg.CRDB.EnsureRoles,
		EnforceRemovals: cfg.CRDB.EnforceRemovals,
		DryRun:          dryRun,
	}
	engine := application.NewEngine(directory, crdb.New(pool), mapper, publisher, runMetrics, opts)
	return engine, cleanup, nil
}

// mappingsFromConfig converts configured mappings into domain mappings,
// preserving file order.
func mappingsFromConfig(cfg *config.Config) []domain.Mapping {
	mappings := make([]domain.Mapping, 0, len(cfg.Mappings))
	for _, m := range cfg.Mappings {
		mappings = append(mappings, domain.Mapping{OktaGroup: m.OktaGroup, CRDBRole: m.CRDBRole})
	}
	return mappings
}
