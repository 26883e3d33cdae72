package feed

import (
	"context"

	"github.com/kiranshivaraju/qwatch/internal/jobs"
	"github.com/kiranshivaraju/qwatch/internal/simulator"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// SimulatedSource seeds a synthetic queue and ticks it forward.
type SimulatedSource struct {
	sim   *simulator.Simulator
	count int
}

func NewSimulatedSource(sim *simulator.Simulator, count int) *SimulatedSource {
	return &SimulatedSource{sim: sim, count: count}
}

func (s *SimulatedSource) Initial(_ context.Context) []models.Job {
	return s.sim.Seed(s.count)
}

func (s *SimulatedSource) Next(_ context.Context, current []models.Job) []models.Job {
	return s.sim.Tick(current)
}

// RemoteSource re-fetches the whole snapshot on every step.
type RemoteSource struct {
	svc *jobs.Service
}

func NewRemoteSource(svc *jobs.Service) *RemoteSource {
	return &RemoteSource{svc: svc}
}

func (s *RemoteSource) Initial(ctx context.Context) []models.Job {
	return s.svc.Snapshot(ctx).Jobs
}

func (s *RemoteSource) Next(ctx context.Context, _ []models.Job) []models.Job {
	return s.svc.Snapshot(ctx).Jobs
}

var (
	_ Source = (*SimulatedSource)(nil)
	_ Source = (*RemoteSource)(nil)
)
