package pipeline

import (
	"context"
	"errors"
	"log/slog"
	"sync/atomic"
	"time"

	"github.com/couchcryptid/datacommons-client/internal/domain"
	"github.com/couchcryptid/datacommons-client/internal/observability"
	"github.com/jonboulle/clockwork"
)

// RowFetcher produces enriched rows for a query.
type RowFetcher interface {
	GetDataRows(ctx context.Context, params RowsParams) ([]domain.DataRow, error)
}

// RowLoader writes enriched rows to the destination.
type RowLoader interface {
	LoadRows(ctx context.Context, rows []domain.DataRow) error
}

// Syncer periodically fetches a fixed query and publishes the rows.
type Syncer struct {
	fetcher  RowFetcher
	loader   RowLoader
	params   RowsParams
	interval time.Duration
	logger   *slog.Logger
	metrics  *observability.Metrics
	clock    clockwork.Clock
	ready    atomic.Bool
	latest   atomic.Pointer[[]domain.DataRow]
}

// NewSyncer creates a Syncer that runs params every interval.
func NewSyncer(f RowFetcher, l RowLoader, params RowsParams, interval time.Duration, logger *slog.Logger, metrics *observability.Metrics, clock clockwork.Clock) *Syncer {
	if clock == nil {
		clock = clockwork.NewRealClock()
	}
	return &Syncer{
		fetcher:  f,
		loader:   l,
		params:   params,
		interval: interval,
		logger:   logger,
		metrics:  metrics,
		clock:    clock,
	}
}

// CheckReadiness returns nil once at least one sync has been published.
func (s *Syncer) CheckReadiness(_ context.Context) error {
	if !s.ready.Load() {
		return errors.New("no sync has completed yet")
	}
	return nil
}

// Run syncs immediately and then on every tick until the context is
// cancelled. A failed sync is logged and retried on the next tick.
func (s *Syncer) Run(ctx context.Context) error {
	s.logger.Info("sync started", "interval", s.interval, "variables", s.params.Variables)
	s.metrics.SyncRunning.Set(1)
	defer s.metrics.SyncRunning.Set(0)

	ticker := s.clock.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		if err := s.SyncOnce(ctx); err != nil {
			if ctx.Err() != nil {
				return nil
			}
			s.metrics.SyncErrors.Inc()
			s.logger.Error("sync failed", "error", err)
		}

		select {
		case <-ctx.Done():
			s.logger.Info("sync stopping", "reason", ctx.Err())
			return nil
		case <-ticker.Chan():
		}
	}
}

// SyncOnce runs one fetch-enrich-publish cycle.
func (s *Syncer) SyncOnce(ctx context.Context) error {
	start := s.clock.Now()

	rows, err := s.fetcher.GetDataRows(ctx, s.params)
	if err != nil {
		return err
	}
	if err := s.loader.LoadRows(ctx, rows); err != nil {
		return err
	}

	s.metrics.MessagesProduced.Add(float64(len(rows)))
	s.metrics.SyncDuration.Observe(s.clock.Since(start).Seconds())
	s.latest.Store(&rows)
	s.ready.Store(true)
	s.logger.Info("sync complete", "rows", len(rows))
	return nil
}

// Snapshot returns the rows published by the most recent successful sync.
func (s *Syncer) Snapshot() []domain.DataRow {
	if rows := s.latest.Load(); rows != nil {
		return *rows
	}
	return nil
}
