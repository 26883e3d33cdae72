package simulator

import (
	"fmt"

	"github.com/kiranshivaraju/qwatch/pkg/models"
)

const (
	timeSeriesPoints = 10

	// maxUtilizationBars caps the per-qubit chart; larger devices are truncated.
	maxUtilizationBars = 128
)

// Details generates chart data for a single job.
// Executed share follows the job's progress; completed jobs count as fully executed.
func (s *Simulator) Details(job models.Job) models.JobDetails {
	s.mu.Lock()
	defer s.mu.Unlock()

	executed := 0.0
	switch {
	case job.Status == models.JobStatusCompleted:
		executed = 100
	case job.Progress != nil:
		executed = float64(*job.Progress)
	}

	bars := job.Qubits
	if bars < 0 {
		bars = 0
	}
	if bars > maxUtilizationBars {
		bars = maxUtilizationBars
	}

	details := models.JobDetails{
		Execution: []models.ChartSlice{
			{Name: "Executed", Value: executed},
			{Name: "Remaining", Value: 100 - executed},
		},
		Performance: []models.ChartSlice{
			{Name: "Success Rate", Value: 95.2},
			{Name: "Error Rate", Value: 4.8},
		},
		QubitUtilization: make([]models.QubitUtilization, 0, bars),
		TimeSeries:       make([]models.TimeSeriesPoint, 0, timeSeriesPoints),
	}

	for i := 0; i < bars; i++ {
		details.QubitUtilization = append(details.QubitUtilization, models.QubitUtilization{
			Qubit:       fmt.Sprintf("Q%d", i),
			Utilization: s.rng.Float64() * 100,
		})
	}

	for i := 0; i < timeSeriesPoints; i++ {
		details.TimeSeries = append(details.TimeSeries, models.TimeSeriesPoint{
			Time:     fmt.Sprintf("T%d", i+1),
			Fidelity: 85 + s.rng.Float64()*10,
			GateTime: 20 + s.rng.Float64()*5,
		})
	}

	return details
}
