package simulator_test

import (
	"fmt"
	"testing"
	"time"

	"github.com/kiranshivaraju/qwatch/internal/simulator"
	"github.com/kiranshivaraju/qwatch/pkg/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// --- scripted random source ---

// scriptedRand replays fixed draws. Once a queue runs dry, Float64 returns
// 0.99 (no event fires) and IntN returns 0.
type scriptedRand struct {
	floats []float64
	ints   []int
}

func (r *scriptedRand) Float64() float64 {
	if len(r.floats) == 0 {
		return 0.99
	}
	f := r.floats[0]
	r.floats = r.floats[1:]
	return f
}

func (r *scriptedRand) IntN(n int) int {
	if len(r.ints) == 0 {
		return 0
	}
	i := r.ints[0]
	r.ints = r.ints[1:]
	return i % n
}

// --- helpers ---

var fixedNow = time.Date(2026, 3, 14, 12, 0, 0, 0, time.UTC)

func counterIDs() func() string {
	n := 0
	return func() string {
		n++
		return fmt.Sprintf("job-%d", n)
	}
}

func newScripted(r simulator.Rand, cfg simulator.Config) *simulator.Simulator {
	return simulator.New(r, cfg,
		simulator.WithClock(func() time.Time { return fixedNow }),
		simulator.WithIDFunc(counterIDs()),
	)
}

func intPtr(i int) *int { return &i }

func timePtr(t time.Time) *time.Time { return &t }

func assertInvariants(t *testing.T, jobs []models.Job) {
	t.Helper()
	seen := make(map[string]bool, len(jobs))
	for _, j := range jobs {
		assert.True(t, j.Status.Valid(), "invalid status %q", j.Status)
		assert.Equal(t, j.Status == models.JobStatusRunning, j.Progress != nil,
			"progress presence mismatch for %s job %s", j.Status, j.ID)
		if j.EstimatedCompletion != nil {
			assert.Contains(t, []models.JobStatus{models.JobStatusQueued, models.JobStatusRunning}, j.Status,
				"eta set on %s job %s", j.Status, j.ID)
		}
		if j.Progress != nil {
			assert.GreaterOrEqual(t, *j.Progress, 0)
			assert.LessOrEqual(t, *j.Progress, 100)
		}
		assert.Greater(t, j.Qubits, 0)
		assert.Greater(t, j.Shots, 0)
		assert.False(t, seen[j.ID], "duplicate id %s", j.ID)
		seen[j.ID] = true
	}
}

// --- Seed ---

func TestSeed_Count25_NewestFirst(t *testing.T) {
	sim := simulator.New(simulator.NewRand(42), simulator.DefaultConfig())

	jobs := sim.Seed(25)
	require.Len(t, jobs, 25)

	for i := 1; i < len(jobs); i++ {
		assert.False(t, jobs[i].SubmittedAt.After(jobs[i-1].SubmittedAt),
			"job %d submitted after job %d", i, i-1)
	}
}

func TestSeed_ZeroCount_ReturnsEmpty(t *testing.T) {
	sim := simulator.New(simulator.NewRand(1), simulator.DefaultConfig())

	jobs := sim.Seed(0)
	assert.NotNil(t, jobs)
	assert.Empty(t, jobs)
	assert.Empty(t, sim.Seed(-3))
}

func TestSeed_Invariants(t *testing.T) {
	sim := simulator.New(simulator.NewRand(7), simulator.DefaultConfig())

	jobs := sim.Seed(500)
	assertInvariants(t, jobs)

	for _, j := range jobs {
		assert.Contains(t, simulator.Backends, j.Backend)
		assert.Contains(t, simulator.Users, j.User)
		assert.Contains(t, simulator.Circuits, j.Circuit)
		assert.Contains(t, simulator.QubitCounts, j.Qubits)
		assert.Contains(t, simulator.ShotCounts, j.Shots)
		if j.Progress != nil {
			assert.GreaterOrEqual(t, *j.Progress, 10)
			assert.Less(t, *j.Progress, 90)
		}
	}
}

func TestSeed_SubmittedWithinWindow(t *testing.T) {
	sim := simulator.New(simulator.NewRand(3), simulator.DefaultConfig(),
		simulator.WithClock(func() time.Time { return fixedNow }))

	for _, j := range sim.Seed(200) {
		assert.False(t, j.SubmittedAt.After(fixedNow))
		assert.True(t, j.SubmittedAt.After(fixedNow.Add(-7*24*time.Hour-time.Second)))
	}
}

func TestSeed_ScriptedStatusAndFields(t *testing.T) {
	r := &scriptedRand{
		// submitted offset, running ETA
		floats: []float64{0.5, 0.25},
		// status=running(1), backend, user, circuit, qubits, shots, progress
		ints: []int{1, 2, 3, 4, 4, 3, 40},
	}
	sim := newScripted(r, simulator.DefaultConfig())

	jobs := sim.Seed(1)
	require.Len(t, jobs, 1)
	j := jobs[0]

	assert.Equal(t, "job-1", j.ID)
	assert.Equal(t, "Quantum Job 1", j.Name)
	assert.Equal(t, models.JobStatusRunning, j.Status)
	assert.Equal(t, "ibm_kyoto", j.Backend)
	assert.Equal(t, "david_kim", j.User)
	assert.Equal(t, "Quantum Approximate Optimization", j.Circuit)
	assert.Equal(t, 127, j.Qubits)
	assert.Equal(t, 8192, j.Shots)
	assert.Equal(t, fixedNow.Add(-84*time.Hour), j.SubmittedAt)
	require.NotNil(t, j.Progress)
	assert.Equal(t, 50, *j.Progress)
	require.NotNil(t, j.EstimatedCompletion)
	assert.Equal(t, fixedNow.Add(15*time.Minute), *j.EstimatedCompletion)
}

// --- Tick ---

func TestTick_NeverChangesTerminalJobs(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.ArrivalProbability = 0
	cfg.StartProbability = 1
	cfg.CompleteProbability = 1
	sim := newScripted(simulator.NewRand(5), cfg)

	current := []models.Job{
		{ID: "a", Status: models.JobStatusCompleted, Backend: "ibm_osaka", Qubits: 5, Shots: 1024, SubmittedAt: fixedNow},
		{ID: "b", Status: models.JobStatusFailed, Backend: "ibm_hanoi", Qubits: 27, Shots: 2048, SubmittedAt: fixedNow},
	}

	next := current
	for i := 0; i < 50; i++ {
		next = sim.Tick(next)
	}
	assert.Equal(t, current, next)
}

func TestTick_ScriptedTransitions(t *testing.T) {
	r := &scriptedRand{
		floats: []float64{
			0.9,  // no arrival
			0.1,  // A: start (< 0.2)
			0.5,  // A: ETA = now + 30m
			0.05, // B: complete (< 0.1)
			0.5,  // C: stays queued
		},
	}
	sim := newScripted(r, simulator.DefaultConfig())

	eta := fixedNow.Add(2 * time.Hour)
	current := []models.Job{
		{ID: "A", Status: models.JobStatusQueued, EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
		{ID: "B", Status: models.JobStatusRunning, Progress: intPtr(60), EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
		{ID: "C", Status: models.JobStatusQueued, EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
	}

	next := sim.Tick(current)
	require.Len(t, next, 3)

	assert.Equal(t, "A", next[0].ID)
	assert.Equal(t, models.JobStatusRunning, next[0].Status)
	require.NotNil(t, next[0].Progress)
	assert.Equal(t, 0, *next[0].Progress)
	require.NotNil(t, next[0].EstimatedCompletion)
	assert.Equal(t, fixedNow.Add(30*time.Minute), *next[0].EstimatedCompletion)

	assert.Equal(t, "B", next[1].ID)
	assert.Equal(t, models.JobStatusCompleted, next[1].Status)
	assert.Nil(t, next[1].Progress)
	assert.Nil(t, next[1].EstimatedCompletion)

	assert.Equal(t, current[2], next[2])
	assertInvariants(t, next)
}

func TestTick_DoesNotModifyInput(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.ArrivalProbability = 1
	cfg.StartProbability = 1
	cfg.CompleteProbability = 1
	sim := newScripted(simulator.NewRand(9), cfg)

	eta := fixedNow.Add(time.Hour)
	current := []models.Job{
		{ID: "q", Status: models.JobStatusQueued, EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
		{ID: "r", Status: models.JobStatusRunning, Progress: intPtr(42), EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
	}
	before := []models.Job{
		{ID: "q", Status: models.JobStatusQueued, EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
		{ID: "r", Status: models.JobStatusRunning, Progress: intPtr(42), EstimatedCompletion: timePtr(eta), Qubits: 5, Shots: 1024},
	}

	next := sim.Tick(current)
	require.Len(t, next, 3)
	assert.Equal(t, before, current)
}

func TestTick_ArrivalPrependsAndCapsOldest(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.MaxJobs = 3
	r := &scriptedRand{
		floats: []float64{
			0.1, // arrival (< 0.3)
			0.0, // arrival ETA = now
		},
		// arrival status=running(1), backend..shots, progress=10
		ints: []int{1, 0, 0, 0, 0, 0, 0},
	}
	sim := newScripted(r, cfg)

	current := []models.Job{
		{ID: "new", Status: models.JobStatusQueued, Qubits: 5, Shots: 1024, EstimatedCompletion: timePtr(fixedNow)},
		{ID: "mid", Status: models.JobStatusCompleted, Qubits: 5, Shots: 1024},
		{ID: "old", Status: models.JobStatusFailed, Qubits: 5, Shots: 1024},
	}

	next := sim.Tick(current)
	require.Len(t, next, 3)

	arrival := next[0]
	assert.Equal(t, "job-1", arrival.ID)
	assert.Equal(t, models.JobStatusRunning, arrival.Status)
	assert.Equal(t, fixedNow, arrival.SubmittedAt)
	assert.Equal(t, "ibm_sherbrooke", arrival.Backend)
	require.NotNil(t, arrival.Progress)
	assert.Equal(t, 10, *arrival.Progress)

	assert.Equal(t, "new", next[1].ID)
	assert.Equal(t, "mid", next[2].ID)
	for _, j := range next {
		assert.NotEqual(t, "old", j.ID)
	}
}

func TestTick_ArrivalsAreQueuedOrRunning(t *testing.T) {
	cfg := simulator.DefaultConfig()
	cfg.ArrivalProbability = 1
	cfg.StartProbability = 0
	cfg.CompleteProbability = 0
	cfg.MaxJobs = 1000
	sim := simulator.New(simulator.NewRand(11), cfg)

	var jobs []models.Job
	for i := 0; i < 100; i++ {
		jobs = sim.Tick(jobs)
		assert.Contains(t, []models.JobStatus{models.JobStatusQueued, models.JobStatusRunning}, jobs[0].Status)
	}
	assert.Len(t, jobs, 100)
}

func TestTick_LongRunKeepsInvariants(t *testing.T) {
	sim := simulator.New(simulator.NewRand(2024), simulator.DefaultConfig())

	jobs := sim.Seed(25)
	terminal := map[string]models.Job{}
	for i := 0; i < 500; i++ {
		jobs = sim.Tick(jobs)
		assertInvariants(t, jobs)
		assert.LessOrEqual(t, len(jobs), 25)

		for _, j := range jobs {
			if prev, ok := terminal[j.ID]; ok {
				assert.Equal(t, prev, j, "terminal job %s changed", j.ID)
			}
			if j.Status.Terminal() {
				terminal[j.ID] = j
			}
		}
	}
}

// --- Summarize ---

func TestSummarize_CountsSumToTotal(t *testing.T) {
	sim := simulator.New(simulator.NewRand(99), simulator.DefaultConfig())

	for _, n := range []int{0, 1, 25, 300} {
		jobs := sim.Seed(n)
		s := simulator.Summarize(jobs)
		assert.Equal(t, n, s.Total)
		assert.Equal(t, s.Total, s.Running+s.Queued+s.Completed+s.Failed)
	}
}

func TestSummarize_Exact(t *testing.T) {
	jobs := []models.Job{
		{Status: models.JobStatusRunning},
		{Status: models.JobStatusRunning},
		{Status: models.JobStatusQueued},
		{Status: models.JobStatusCompleted},
		{Status: models.JobStatusFailed},
		{Status: models.JobStatusFailed},
	}

	assert.Equal(t, models.Stats{Total: 6, Running: 2, Queued: 1, Completed: 1, Failed: 2},
		simulator.Summarize(jobs))
	assert.Equal(t, models.Stats{}, simulator.Summarize(nil))
}
