package ibmq

import (
	"strings"

	"github.com/kiranshivaraju/qwatch/pkg/models"
)

// statusTable maps remote job states onto the four local statuses.
var statusTable = map[string]models.JobStatus{
	"INITIALIZING": models.JobStatusQueued,
	"QUEUED":       models.JobStatusQueued,
	"VALIDATING":   models.JobStatusQueued,
	"RUNNING":      models.JobStatusRunning,
	"DONE":         models.JobStatusCompleted,
	"CANCELLED":    models.JobStatusFailed,
	"ERROR":        models.JobStatusFailed,
}

// TranslateStatus maps a remote status name to a local status.
// Matching ignores case and surrounding space; unknown names map to queued.
func TranslateStatus(remote string) models.JobStatus {
	if s, ok := statusTable[strings.ToUpper(strings.TrimSpace(remote))]; ok {
		return s
	}
	return models.JobStatusQueued
}
