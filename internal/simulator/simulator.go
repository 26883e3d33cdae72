// Package simulator generates and evolves synthetic quantum job snapshots.
package simulator

import (
	"fmt"
	"math/rand/v2"
	"sort"
	"sync"
	"time"

	"github.com/google/uuid"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// Rand is the random source the simulator draws from.
// *rand.Rand from math/rand/v2 satisfies it.
type Rand interface {
	IntN(n int) int
	Float64() float64
}

// Config holds the tick probabilities and retention bounds.
type Config struct {
	ArrivalProbability  float64
	StartProbability    float64
	CompleteProbability float64
	MaxJobs             int
	SubmitWindow        time.Duration
}

// DefaultConfig returns the probabilities used by the live dashboard.
func DefaultConfig() Config {
	return Config{
		ArrivalProbability:  0.3,
		StartProbability:    0.2,
		CompleteProbability: 0.1,
		MaxJobs:             25,
		SubmitWindow:        7 * 24 * time.Hour,
	}
}

const (
	runningETAWindow = time.Hour
	queuedETAWindow  = 4 * time.Hour
)

// Simulator produces synthetic jobs. It is safe for concurrent use.
type Simulator struct {
	mu    sync.Mutex
	rng   Rand
	cfg   Config
	now   func() time.Time
	newID func() string
	seq   int
}

type Option func(*Simulator)

// WithClock overrides time.Now.
func WithClock(now func() time.Time) Option {
	return func(s *Simulator) { s.now = now }
}

// WithIDFunc overrides the job ID generator (uuid by default).
func WithIDFunc(fn func() string) Option {
	return func(s *Simulator) { s.newID = fn }
}

// New creates a Simulator drawing from rng.
func New(rng Rand, cfg Config, opts ...Option) *Simulator {
	if cfg.MaxJobs <= 0 {
		cfg.MaxJobs = DefaultConfig().MaxJobs
	}
	if cfg.SubmitWindow <= 0 {
		cfg.SubmitWindow = DefaultConfig().SubmitWindow
	}
	s := &Simulator{
		rng:   rng,
		cfg:   cfg,
		now:   time.Now,
		newID: uuid.NewString,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewRand returns a PCG-backed source. A zero seed is replaced by the current time.
func NewRand(seed uint64) *rand.Rand {
	if seed == 0 {
		seed = uint64(time.Now().UnixNano())
	}
	return rand.New(rand.NewPCG(seed, seed^0x9e3779b97f4a7c15))
}

// Seed produces count independently generated jobs, newest submission first.
func (s *Simulator) Seed(count int) []models.Job {
	if count <= 0 {
		return []models.Job{}
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	jobs := make([]models.Job, 0, count)
	for i := 0; i < count; i++ {
		submitted := now.Add(-time.Duration(s.rng.Float64() * float64(s.cfg.SubmitWindow)))
		status := models.AllJobStatuses[s.rng.IntN(len(models.AllJobStatuses))]
		jobs = append(jobs, s.generate(status, submitted, now))
	}

	sort.SliceStable(jobs, func(a, b int) bool {
		return jobs[a].SubmittedAt.After(jobs[b].SubmittedAt)
	})
	return jobs
}

// Tick computes the next snapshot from current without modifying it.
// It may prepend one arrival and advances each non-terminal job by at most one step.
// The result holds at most MaxJobs entries; the oldest are dropped.
func (s *Simulator) Tick(current []models.Job) []models.Job {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := s.now()
	next := make([]models.Job, 0, len(current)+1)

	if s.rng.Float64() < s.cfg.ArrivalProbability {
		status := arrivalStatuses[s.rng.IntN(len(arrivalStatuses))]
		next = append(next, s.generate(status, now, now))
	}

	for _, job := range current {
		next = append(next, s.advance(job, now))
	}

	if len(next) > s.cfg.MaxJobs {
		next = next[:s.cfg.MaxJobs]
	}
	return next
}

// advance moves job one lifecycle step forward with the configured probability.
// Terminal jobs are returned as-is and consume no draws.
func (s *Simulator) advance(job models.Job, now time.Time) models.Job {
	switch job.Status {
	case models.JobStatusQueued:
		if s.rng.Float64() < s.cfg.StartProbability {
			job.Status = models.JobStatusRunning
			progress := 0
			job.Progress = &progress
			eta := now.Add(time.Duration(s.rng.Float64() * float64(runningETAWindow)))
			job.EstimatedCompletion = &eta
		}
	case models.JobStatusRunning:
		if s.rng.Float64() < s.cfg.CompleteProbability {
			job.Status = models.JobStatusCompleted
			job.Progress = nil
			job.EstimatedCompletion = nil
		}
	}
	return job
}

// generate builds one job. Callers hold s.mu.
func (s *Simulator) generate(status models.JobStatus, submitted, now time.Time) models.Job {
	s.seq++
	job := models.Job{
		ID:          s.newID(),
		Name:        fmt.Sprintf("Quantum Job %d", s.seq),
		Status:      status,
		Backend:     Backends[s.rng.IntN(len(Backends))],
		User:        Users[s.rng.IntN(len(Users))],
		Circuit:     Circuits[s.rng.IntN(len(Circuits))],
		Qubits:      QubitCounts[s.rng.IntN(len(QubitCounts))],
		Shots:       ShotCounts[s.rng.IntN(len(ShotCounts))],
		SubmittedAt: submitted,
	}

	switch status {
	case models.JobStatusRunning:
		eta := now.Add(time.Duration(s.rng.Float64() * float64(runningETAWindow)))
		progress := 10 + s.rng.IntN(80)
		job.EstimatedCompletion = &eta
		job.Progress = &progress
	case models.JobStatusQueued:
		eta := now.Add(time.Duration(s.rng.Float64() * float64(queuedETAWindow)))
		job.EstimatedCompletion = &eta
	}
	return job
}

// Summarize counts jobs by status.
func Summarize(jobs []models.Job) models.Stats {
	stats := models.Stats{Total: len(jobs)}
	for _, j := range jobs {
		switch j.Status {
		case models.JobStatusRunning:
			stats.Running++
		case models.JobStatusQueued:
			stats.Queued++
		case models.JobStatusCompleted:
			stats.Completed++
		case models.JobStatusFailed:
			stats.Failed++
		}
	}
	return stats
}
