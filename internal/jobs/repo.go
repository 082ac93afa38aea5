package jobs

import (
	"context"
	"encoding/json"
	"time"
)

// Repo defines persistence operations for jobs. The Mark methods only apply while the job is
// still processing and return ErrNotProcessing otherwise.
type Repo interface {
	Create(ctx context.Context, job Job) error
	Get(ctx context.Context, id string) (Job, error)
	ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error)
	MarkCompleted(ctx context.Context, id string, result json.RawMessage, completedAt time.Time) error
	MarkFailed(ctx context.Context, id, code, message string, completedAt time.Time) error
}
