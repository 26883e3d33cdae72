// Package jobs builds job snapshots from the remote job API with a synthetic fallback.
package jobs

import (
	"context"
	"log/slog"
	"time"

	"github.com/kiranshivaraju/qwatch/internal/cache"
	"github.com/kiranshivaraju/qwatch/internal/ibmq"
	"github.com/kiranshivaraju/qwatch/internal/simulator"
	"github.com/kiranshivaraju/qwatch/internal/telemetry"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

const remoteSource = "remote"

// Config controls how snapshots are produced.
type Config struct {
	JobLimit  int
	SeedCount int
	CacheTTL  time.Duration
}

// Service produces snapshots. Snapshot never fails: any remote problem is
// replaced by synthetic data.
type Service struct {
	remote ibmq.Client
	sim    *simulator.Simulator
	cache  cache.Cache
	cfg    Config
}

// NewService creates a Service. remote and ca may be nil.
func NewService(remote ibmq.Client, sim *simulator.Simulator, ca cache.Cache, cfg Config) *Service {
	if cfg.SeedCount <= 0 {
		cfg.SeedCount = 25
	}
	return &Service{
		remote: remote,
		sim:    sim,
		cache:  ca,
		cfg:    cfg,
	}
}

// Snapshot returns the current job list and its stats.
func (s *Service) Snapshot(ctx context.Context) models.Snapshot {
	if s.remote == nil {
		return s.synthetic()
	}

	if snap, ok := s.cached(ctx); ok {
		return snap
	}

	list, err := s.remote.ListJobs(ctx, s.cfg.JobLimit)
	if err != nil {
		telemetry.RemoteFetches.WithLabelValues("error").Inc()
		slog.Warn("remote job fetch failed, using synthetic data",
			"error", err,
			"source", remoteSource,
		)
		return s.synthetic()
	}
	telemetry.RemoteFetches.WithLabelValues("ok").Inc()

	snap := models.Snapshot{Jobs: list, Stats: simulator.Summarize(list)}
	s.store(ctx, snap)
	return snap
}

func (s *Service) synthetic() models.Snapshot {
	telemetry.SyntheticServed.Inc()
	list := s.sim.Seed(s.cfg.SeedCount)
	return models.Snapshot{Jobs: list, Stats: simulator.Summarize(list)}
}

func (s *Service) cached(ctx context.Context) (models.Snapshot, bool) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return models.Snapshot{}, false
	}

	snap, found, err := cache.GetJSON[models.Snapshot](ctx, s.cache, cache.SnapshotKey(remoteSource))
	if err != nil {
		slog.Warn("snapshot cache read failed", "error", err)
		return models.Snapshot{}, false
	}
	if !found {
		telemetry.SnapshotCache.WithLabelValues("miss").Inc()
		return models.Snapshot{}, false
	}
	if snap.Jobs == nil {
		snap.Jobs = []models.Job{}
	}
	telemetry.SnapshotCache.WithLabelValues("hit").Inc()
	return snap, true
}

func (s *Service) store(ctx context.Context, snap models.Snapshot) {
	if s.cache == nil || s.cfg.CacheTTL <= 0 {
		return
	}
	if err := cache.SetJSON(ctx, s.cache, cache.SnapshotKey(remoteSource), snap, s.cfg.CacheTTL); err != nil {
		slog.Warn("snapshot cache write failed", "error", err)
	}
}
