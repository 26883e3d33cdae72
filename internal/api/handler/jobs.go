package handler

import (
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	mw "github.com/kiranshivaraju/qwatch/internal/api/middleware"
	"github.com/kiranshivaraju/qwatch/internal/api/response"
	"github.com/kiranshivaraju/qwatch/internal/simulator"
	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// SnapshotReader is the read side of the live feed.
type SnapshotReader interface {
	Current() models.Snapshot
	Job(id string) (models.Job, bool)
}

// DetailsGenerator produces chart data for a single job.
type DetailsGenerator interface {
	Details(job models.Job) models.JobDetails
}

// JobResult is the body of GET /api/v1/jobs/{jobID}.
type JobResult struct {
	Job     models.Job        `json:"job"`
	Details models.JobDetails `json:"details"`
}

// NewListJobsHandler returns an http.HandlerFunc for GET /api/v1/jobs.
// The body is the bare snapshot. An optional ?status= narrows the job list;
// stats always describe the whole snapshot.
func NewListJobsHandler(feed SnapshotReader) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		snap := feed.Current()

		if raw := r.URL.Query().Get("status"); raw != "" {
			status := models.JobStatus(strings.ToLower(strings.TrimSpace(raw)))
			if !status.Valid() {
				response.Error(w, http.StatusBadRequest, "INVALID_REQUEST",
					"status must be one of queued, running, completed, failed",
					map[string]string{"status": raw})
				return
			}
			snap.Jobs = filterByStatus(snap.Jobs, status)
			mw.Annotate(r, "status_filter", string(status))
		}

		mw.Annotate(r, "jobs", len(snap.Jobs))
		response.Plain(w, http.StatusOK, snap)
	}
}

// NewGetJobHandler returns an http.HandlerFunc for GET /api/v1/jobs/{jobID}.
func NewGetJobHandler(feed SnapshotReader, details DetailsGenerator) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id := chi.URLParam(r, "jobID")

		job, ok := feed.Job(id)
		if !ok {
			response.Error(w, http.StatusNotFound, "JOB_NOT_FOUND", "Job not found", nil)
			return
		}

		mw.Annotate(r, "job_id", id)
		response.JSON(w, JobResult{Job: job, Details: details.Details(job)})
	}
}

// NewStatsHandler returns an http.HandlerFunc for GET /api/v1/stats.
func NewStatsHandler(feed SnapshotReader) http.HandlerFunc {
	return func(w http.ResponseWriter, _ *http.Request) {
		response.JSON(w, simulator.Summarize(feed.Current().Jobs))
	}
}

func filterByStatus(jobs []models.Job, status models.JobStatus) []models.Job {
	out := make([]models.Job, 0, len(jobs))
	for _, j := range jobs {
		if j.Status == status {
			out = append(out, j)
		}
	}
	return out
}
