package models

// JobDetails carries the chart data shown in the job details view.
type JobDetails struct {
	Execution        []ChartSlice       `json:"execution"`
	Performance      []ChartSlice       `json:"performance"`
	QubitUtilization []QubitUtilization `json:"qubitUtilization"`
	TimeSeries       []TimeSeriesPoint  `json:"timeSeries"`
}

// ChartSlice is one named share of a pie chart, in percent.
type ChartSlice struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

type QubitUtilization struct {
	Qubit       string  `json:"qubit"`
	Utilization float64 `json:"utilization"`
}

type TimeSeriesPoint struct {
	Time     string  `json:"time"`
	Fidelity float64 `json:"fidelity"`
	GateTime float64 `json:"gateTime"`
}
