// Package feed owns the live job snapshot and advances it on a schedule.
package feed

import (
	"context"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/kiranshivaraju/qwatch/internal/simulator"
	"github.com/kiranshivaraju/qwatch/internal/telemetry"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// Source produces the initial job list and each following one.
// Next must not modify current.
type Source interface {
	Initial(ctx context.Context) []models.Job
	Next(ctx context.Context, current []models.Job) []models.Job
}

// State is the feed's owned snapshot.
type State struct {
	Jobs      []models.Job
	Version   uint64
	UpdatedAt time.Time
}

// Feed holds the current State. Step is the only writer; readers get copies.
type Feed struct {
	source   Source
	interval time.Duration
	now      func() time.Time

	mu    sync.RWMutex
	state State

	stepMu sync.Mutex
	cron   *cron.Cron
}

// New creates a Feed that advances every interval once started.
func New(source Source, interval time.Duration) *Feed {
	return &Feed{
		source:   source,
		interval: interval,
		now:      time.Now,
	}
}

// Start loads the initial snapshot and schedules Step. It returns an error
// only if the interval cannot be scheduled.
func (f *Feed) Start(ctx context.Context) error {
	if f.interval <= 0 {
		return fmt.Errorf("feed interval must be positive, got %s", f.interval)
	}

	f.replace(f.source.Initial(ctx))

	logger := slogLogger{}
	c := cron.New(cron.WithLogger(logger), cron.WithChain(
		cron.Recover(logger),
		cron.SkipIfStillRunning(logger),
	))
	if _, err := c.AddFunc(fmt.Sprintf("@every %s", f.interval), func() { f.Step(ctx) }); err != nil {
		return fmt.Errorf("schedule feed step: %w", err)
	}

	f.cron = c
	c.Start()
	slog.Info("feed started", "interval", f.interval.String(), "jobs", len(f.Current().Jobs))
	return nil
}

// Stop halts the schedule and waits for an in-flight step to finish.
func (f *Feed) Stop() {
	if f.cron == nil {
		return
	}
	<-f.cron.Stop().Done()
	slog.Info("feed stopped")
}

// Step reads the current jobs, computes the next list and swaps it in.
func (f *Feed) Step(ctx context.Context) {
	f.stepMu.Lock()
	defer f.stepMu.Unlock()

	f.mu.RLock()
	current := f.state.Jobs
	f.mu.RUnlock()

	f.replace(f.source.Next(ctx, current))
	telemetry.FeedSteps.Inc()
}

func (f *Feed) replace(jobs []models.Job) {
	if jobs == nil {
		jobs = []models.Job{}
	}

	f.mu.Lock()
	f.state = State{
		Jobs:      jobs,
		Version:   f.state.Version + 1,
		UpdatedAt: f.now(),
	}
	f.mu.Unlock()

	telemetry.ObserveStats(simulator.Summarize(jobs))
}

// State returns a copy of the owned state.
func (f *Feed) State() State {
	f.mu.RLock()
	defer f.mu.RUnlock()

	s := f.state
	s.Jobs = append([]models.Job(nil), f.state.Jobs...)
	if s.Jobs == nil {
		s.Jobs = []models.Job{}
	}
	return s
}

// Current returns the jobs and their stats.
func (f *Feed) Current() models.Snapshot {
	s := f.State()
	return models.Snapshot{Jobs: s.Jobs, Stats: simulator.Summarize(s.Jobs)}
}

// Job looks up a job by ID in the current snapshot.
func (f *Feed) Job(id string) (models.Job, bool) {
	f.mu.RLock()
	defer f.mu.RUnlock()

	for _, j := range f.state.Jobs {
		if j.ID == id {
			return j, true
		}
	}
	return models.Job{}, false
}
