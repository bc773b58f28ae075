package main

import (
	"context"
	"fmt"

	"github.com/prometheus/client_golang/prometheus"

	"strategy-gate/internal/config"
	"strategy-gate/internal/events"
	"strategy-gate/internal/observability"
	"strategy-gate/internal/orchestrator"
	"strategy-gate/internal/reporting"
	"strategy-gate/internal/storage"
	chstore "strategy-gate/internal/storage/clickhouse"
	"strategy-gate/internal/storage/memory"
	"strategy-gate/internal/storage/migrations"
	pgstore "strategy-gate/internal/storage/postgres"
	redisstore "strategy-gate/internal/storage/redis"
	"strategy-gate/internal/validation"
)

// allStores holds all storage implementations.
type allStores struct {
	runStore         storage.ValidationRunStore
	foldStore        storage.FoldMetricStore
	decisionStore    storage.GateDecisionStore
	calibrationStore storage.CalibrationStore
}

// createStores creates stores for the configured backend.
// Postgres holds runs, decisions and calibrations; ClickHouse holds fold
// metrics when a DSN is set; Redis fronts calibrations when an address is set.
func (a *app) createStores(ctx context.Context) (*allStores, func(), error) {
	sc := a.cfg.Storage
	if sc.Backend == config.BackendMemory {
		return &allStores{
			runStore:         memory.NewValidationRunStore(),
			foldStore:        memory.NewFoldMetricStore(),
			decisionStore:    memory.NewGateDecisionStore(),
			calibrationStore: memory.NewCalibrationStore(),
		}, func() {}, nil
	}

	var closers []func()
	cleanup := func() {
		for i := len(closers) - 1; i >= 0; i-- {
			closers[i]()
		}
	}

	// PostgreSQL
	pool, err := pgstore.NewPool(ctx, sc.PostgresDSN)
	if err != nil {
		return nil, nil, fmt.Errorf("connect to postgres: %w", err)
	}
	closers = append(closers, pool.Close)
	if err := migrations.RunPostgresMigrations(ctx, pool); err != nil {
		cleanup()
		return nil, nil, fmt.Errorf("postgres migrations: %w", err)
	}

	stores := &allStores{
		runStore:         pgstore.NewValidationRunStore(pool),
		decisionStore:    pgstore.NewGateDecisionStore(pool),
		calibrationStore: pgstore.NewCalibrationStore(pool),
	}

	// ClickHouse
	if sc.ClickhouseDSN != "" {
		conn, err := migrations.RunClickhouseMigrations(ctx, sc.ClickhouseDSN)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("clickhouse migrations: %w", err)
		}
		closers = append(closers, func() { _ = conn.Close() })
		stores.foldStore = chstore.NewFoldMetricStore(conn)
	} else {
		a.logger.Warn().Msg("clickhouse_dsn not set; fold metrics are kept in memory only")
		stores.foldStore = memory.NewFoldMetricStore()
	}

	// Redis
	if sc.RedisAddr != "" {
		client, err := redisstore.NewClient(ctx, sc.RedisAddr, sc.RedisPassword, sc.RedisDB)
		if err != nil {
			cleanup()
			return nil, nil, fmt.Errorf("connect to redis: %w", err)
		}
		closers = append(closers, func() { _ = client.Close() })
		stores.calibrationStore = redisstore.NewCalibrationCache(client, stores.calibrationStore, sc.CalibrationTTL)
	}

	return stores, cleanup, nil
}

// createPublisher returns a Kafka publisher when brokers are configured.
func (a *app) createPublisher() (events.Publisher, func(), error) {
	kc := a.cfg.Kafka
	if len(kc.Brokers) == 0 {
		return events.NopPublisher{}, func() {}, nil
	}
	pub, err := events.NewKafkaPublisher(events.KafkaConfig{
		Brokers:      kc.Brokers,
		Topic:        kc.Topic,
		WriteTimeout: kc.WriteTimeout,
		MaxAttempts:  kc.MaxAttempts,
	})
	if err != nil {
		return nil, nil, err
	}
	return pub, func() {
		if err := pub.Close(); err != nil {
			a.logger.Warn().Err(err).Msg("close kafka publisher")
		}
	}, nil
}

// services bundles everything the run and serve commands need.
type services struct {
	orch     *orchestrator.Orchestrator
	reports  *reporting.Generator
	metrics  *observability.Metrics
	registry *prometheus.Registry
}

func (a *app) createServices(ctx context.Context) (*services, func(), error) {
	stores, closeStores, err := a.createStores(ctx)
	if err != nil {
		return nil, nil, err
	}
	pub, closePub, err := a.createPublisher()
	if err != nil {
		closeStores()
		return nil, nil, err
	}
	cleanup := func() {
		closePub()
		closeStores()
	}

	reg := prometheus.NewRegistry()
	m := observability.NewMetrics(observability.DefaultNamespace, reg)

	orch, err := orchestrator.New(orchestrator.Options{
		RunStore:         stores.runStore,
		FoldStore:        stores.foldStore,
		DecisionStore:    stores.decisionStore,
		CalibrationStore: stores.calibrationStore,
		Publisher:        pub,
		Metrics:          m,
		Logger:           &a.logger,
		Workers:          a.cfg.Validation.Workers,
		EmbargoMode:      validation.EmbargoMode(a.cfg.Validation.EmbargoMode),
	})
	if err != nil {
		cleanup()
		return nil, nil, err
	}

	return &services{
		orch:     orch,
		reports:  reporting.NewGenerator(stores.runStore, stores.foldStore, stores.decisionStore),
		metrics:  m,
		registry: reg,
	}, cleanup, nil
}
