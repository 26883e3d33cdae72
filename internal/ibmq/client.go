// Package ibmq talks to the IBM Quantum runtime job listing API.
package ibmq

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net"
	"net/http"
	"net/url"
	"sort"
	"strconv"
	"time"

	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// Sentinel errors for remote job source failures.
var (
	ErrMissingToken = errors.New("ibmq api token not configured")
	ErrUnreachable  = errors.New("ibmq unreachable")
	ErrTimeout      = errors.New("ibmq request timeout")
	ErrUpstream     = errors.New("ibmq upstream error")
	ErrDecode       = errors.New("ibmq response decode error")
	ErrCanceled     = errors.New("ibmq request canceled")
)

// Bounds applied to remote counts before they reach the local model.
const (
	MaxQubits = 4096
	MaxShots  = 10_000_000
)

// Client lists jobs from the remote job API.
type Client interface {
	ListJobs(ctx context.Context, limit int) ([]models.Job, error)
}

// HTTPClient implements Client over the runtime REST API.
type HTTPClient struct {
	baseURL string
	token   string
	client  *http.Client
}

// NewHTTPClient creates a client. An empty token makes every call fail with ErrMissingToken.
func NewHTTPClient(baseURL, token string, timeout time.Duration) *HTTPClient {
	return &HTTPClient{
		baseURL: baseURL,
		token:   token,
		client:  &http.Client{Timeout: timeout},
	}
}

// ListJobs fetches up to limit jobs and maps them into local Jobs, newest first.
func (c *HTTPClient) ListJobs(ctx context.Context, limit int) ([]models.Job, error) {
	if c.token == "" {
		return nil, ErrMissingToken
	}

	params := url.Values{}
	if limit > 0 {
		params.Set("limit", strconv.Itoa(limit))
	}
	u := fmt.Sprintf("%s/jobs", c.baseURL)
	if len(params) > 0 {
		u += "?" + params.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("building request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+c.token)
	req.Header.Set("Accept", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return nil, classifyError(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("%w: status %d", ErrUpstream, resp.StatusCode)
	}

	var body jobsResponse
	if err := json.NewDecoder(resp.Body).Decode(&body); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDecode, err)
	}

	return mapJobs(body.Jobs), nil
}

// classifyError maps transport-level errors to sentinel errors.
func classifyError(err error) error {
	if errors.Is(err, context.Canceled) {
		return fmt.Errorf("%w: %w", ErrCanceled, err)
	}
	if errors.Is(err, context.DeadlineExceeded) {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	var netErr net.Error
	if errors.As(err, &netErr) && netErr.Timeout() {
		return fmt.Errorf("%w: %v", ErrTimeout, err)
	}

	return fmt.Errorf("%w: %v", ErrUnreachable, err)
}

// mapJobs converts remote records and enforces the local Job invariants.
// Records without an ID are skipped; repeated IDs keep the newest record.
func mapJobs(remote []remoteJob) []models.Job {
	jobs := make([]models.Job, 0, len(remote))
	seen := make(map[string]int, len(remote))
	for _, r := range remote {
		if r.ID == "" {
			continue
		}
		status := TranslateStatus(r.Status)
		job := models.Job{
			ID:          r.ID,
			Name:        r.Name,
			Status:      status,
			Backend:     r.Backend,
			Qubits:      clamp(r.Qubits, 1, MaxQubits),
			Shots:       clamp(r.Params.Shots, 1, MaxShots),
			SubmittedAt: r.Created.UTC(),
			User:        r.UserID,
			Circuit:     r.Program.ID,
		}
		if job.Name == "" {
			job.Name = r.ID
		}

		if status == models.JobStatusRunning {
			p := 0
			if r.Progress != nil {
				p = clamp(int(*r.Progress), 0, 100)
			}
			job.Progress = &p
		}
		if (status == models.JobStatusQueued || status == models.JobStatusRunning) && r.EstimatedCompletion != nil {
			eta := r.EstimatedCompletion.UTC()
			job.EstimatedCompletion = &eta
		}

		if i, dup := seen[job.ID]; dup {
			if job.SubmittedAt.After(jobs[i].SubmittedAt) {
				jobs[i] = job
			}
			continue
		}
		seen[job.ID] = len(jobs)
		jobs = append(jobs, job)
	}

	sort.SliceStable(jobs, func(a, b int) bool {
		return jobs[a].SubmittedAt.After(jobs[b].SubmittedAt)
	})
	return jobs
}

func clamp(v, lo, hi int) int {
	if v < lo {
		return lo
	}
	if v > hi {
		return hi
	}
	return v
}

// --- runtime API response types ---

type jobsResponse struct {
	Jobs  []remoteJob `json:"jobs"`
	Count int         `json:"count"`
}

type remoteJob struct {
	ID                  string     `json:"id"`
	Name                string     `json:"name"`
	Backend             string     `json:"backend"`
	Status              string     `json:"status"`
	Created             time.Time  `json:"created"`
	EstimatedCompletion *time.Time `json:"estimated_completion"`
	Progress            *float64   `json:"progress"`
	Qubits              int        `json:"qubits"`
	UserID              string     `json:"user_id"`
	Program             struct {
		ID string `json:"id"`
	} `json:"program"`
	Params struct {
		Shots int `json:"shots"`
	} `json:"params"`
}

// Compile-time check that HTTPClient implements Client.
var _ Client = (*HTTPClient)(nil)
