// Package models contains shared data models used across the QWatch codebase.
package models

import "time"

// JobStatus is the local lifecycle state of a quantum job.
type JobStatus string

const (
	JobStatusQueued    JobStatus = "queued"
	JobStatusRunning   JobStatus = "running"
	JobStatusCompleted JobStatus = "completed"
	JobStatusFailed    JobStatus = "failed"
)

// AllJobStatuses lists every status in lifecycle order.
var AllJobStatuses = []JobStatus{
	JobStatusQueued,
	JobStatusRunning,
	JobStatusCompleted,
	JobStatusFailed,
}

func (s JobStatus) String() string {
	return string(s)
}

// Valid reports whether s is one of the four known statuses.
func (s JobStatus) Valid() bool {
	switch s {
	case JobStatusQueued, JobStatusRunning, JobStatusCompleted, JobStatusFailed:
		return true
	}
	return false
}

// Terminal reports whether a job in this status can no longer change.
func (s JobStatus) Terminal() bool {
	return s == JobStatusCompleted || s == JobStatusFailed
}

// Job is a single quantum job as shown on the dashboard.
// Progress is set only while running; EstimatedCompletion only while queued or running.
type Job struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Status              JobStatus  `json:"status"`
	Backend             string     `json:"backend"`
	Qubits              int        `json:"qubits"`
	Shots               int        `json:"shots"`
	SubmittedAt         time.Time  `json:"submittedAt"`
	EstimatedCompletion *time.Time `json:"estimatedCompletion,omitempty"`
	Progress            *int       `json:"progress,omitempty"`
	User                string     `json:"user"`
	Circuit             string     `json:"circuit"`
}

// Stats counts jobs by status. Running+Queued+Completed+Failed == Total.
type Stats struct {
	Total     int `json:"total"`
	Running   int `json:"running"`
	Queued    int `json:"queued"`
	Completed int `json:"completed"`
	Failed    int `json:"failed"`
}

// Snapshot is the full job collection at a point in time together with its stats.
type Snapshot struct {
	Jobs  []Job `json:"jobs"`
	Stats Stats `json:"stats"`
}
