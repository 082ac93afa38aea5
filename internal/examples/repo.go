package examples

import "context"

// Repo defines persistence operations for examples. Reads and writes are scoped to the
// creating user; another user's example reads as ErrNotFound.
type Repo interface {
	Create(ctx context.Context, ex Example) error
	// CreateMany inserts all examples or none.
	CreateMany(ctx context.Context, items []Example) error
	Get(ctx context.Context, createdBy, id string) (Example, error)
	List(ctx context.Context, createdBy, projectID string, limit, offset int) ([]Example, error)
	Update(ctx context.Context, ex Example) error
	Delete(ctx context.Context, createdBy, id string) error
}
