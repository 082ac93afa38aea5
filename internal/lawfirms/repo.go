package lawfirms

import "context"

// Repo defines persistence operations for firms, custom columns and custom values.
type Repo interface {
	CreateFirm(ctx context.Context, f LawFirm) error
	GetFirm(ctx context.Context, workspaceID, id string) (LawFirm, error)
	ListFirms(ctx context.Context, workspaceID string) ([]LawFirm, error)
	UpdateFirm(ctx context.Context, f LawFirm) error
	DeleteFirm(ctx context.Context, workspaceID, id string) error

	// ListColumns returns stored columns as-is, including legacy duplicates.
	ListColumns(ctx context.Context, workspaceID string) ([]Column, error)
	CreateColumn(ctx context.Context, col Column) error
	UpdateColumn(ctx context.Context, col Column) error
	// DeleteColumn removes the column and strips its key from every firm's value blob when no
	// other column with the same key remains.
	DeleteColumn(ctx context.Context, workspaceID, id string) error
	SetColumnPositions(ctx context.Context, workspaceID string, positions map[string]int) error

	// SetValues replaces a firm's custom value blob.
	SetValues(ctx context.Context, firmID string, values map[string]any) error
}
