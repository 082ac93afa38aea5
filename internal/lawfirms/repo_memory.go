package lawfirms

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu      sync.RWMutex
	firms   map[string]LawFirm
	columns map[string]Column
	values  map[string]map[string]any // firmID -> blob
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		firms:   make(map[string]LawFirm),
		columns: make(map[string]Column),
		values:  make(map[string]map[string]any),
	}
}

func (r *MemoryRepo) CreateFirm(ctx context.Context, f LawFirm) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f.CustomValues = nil
	r.firms[f.ID] = f
	return nil
}

func (r *MemoryRepo) GetFirm(ctx context.Context, workspaceID, id string) (LawFirm, error) {
	if err := ctx.Err(); err != nil {
		return LawFirm{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	f, ok := r.firms[id]
	if !ok || f.WorkspaceID != workspaceID {
		return LawFirm{}, ErrNotFound
	}
	f.CustomValues = copyValues(r.values[id])
	return f, nil
}

func (r *MemoryRepo) ListFirms(ctx context.Context, workspaceID string) ([]LawFirm, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]LawFirm, 0)
	for id, f := range r.firms {
		if f.WorkspaceID != workspaceID {
			continue
		}
		f.CustomValues = copyValues(r.values[id])
		out = append(out, f)
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) UpdateFirm(ctx context.Context, f LawFirm) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.firms[f.ID]
	if !ok || existing.WorkspaceID != f.WorkspaceID {
		return ErrNotFound
	}
	f.CustomValues = nil
	r.firms[f.ID] = f
	return nil
}

func (r *MemoryRepo) DeleteFirm(ctx context.Context, workspaceID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	f, ok := r.firms[id]
	if !ok || f.WorkspaceID != workspaceID {
		return ErrNotFound
	}
	delete(r.firms, id)
	delete(r.values, id)
	return nil
}

func (r *MemoryRepo) ListColumns(ctx context.Context, workspaceID string) ([]Column, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]Column, 0)
	for _, col := range r.columns {
		if col.WorkspaceID == workspaceID {
			out = append(out, col)
		}
	}
	sortColumns(out)
	return out, nil
}

func (r *MemoryRepo) CreateColumn(ctx context.Context, col Column) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.columns {
		if existing.WorkspaceID == col.WorkspaceID && existing.Key == col.Key {
			return ErrDuplicateColumn
		}
	}
	r.columns[col.ID] = col
	return nil
}

// InsertLegacyColumn stores a column without the unique key check, as older data allowed.
func (r *MemoryRepo) InsertLegacyColumn(col Column) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.columns[col.ID] = col
}

func (r *MemoryRepo) UpdateColumn(ctx context.Context, col Column) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	existing, ok := r.columns[col.ID]
	if !ok || existing.WorkspaceID != col.WorkspaceID {
		return ErrColumnNotFound
	}
	r.columns[col.ID] = col
	return nil
}

func (r *MemoryRepo) DeleteColumn(ctx context.Context, workspaceID, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	col, ok := r.columns[id]
	if !ok || col.WorkspaceID != workspaceID {
		return ErrColumnNotFound
	}
	delete(r.columns, id)

	for _, other := range r.columns {
		if other.WorkspaceID == workspaceID && other.Key == col.Key {
			return nil
		}
	}
	for firmID, blob := range r.values {
		if r.firms[firmID].WorkspaceID == workspaceID {
			delete(blob, col.Key)
		}
	}
	return nil
}

func (r *MemoryRepo) SetColumnPositions(ctx context.Context, workspaceID string, positions map[string]int) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	for id := range positions {
		col, ok := r.columns[id]
		if !ok || col.WorkspaceID != workspaceID {
			return ErrColumnNotFound
		}
	}
	for id, pos := range positions {
		col := r.columns[id]
		col.Position = pos
		r.columns[id] = col
	}
	return nil
}

func (r *MemoryRepo) SetValues(ctx context.Context, firmID string, values map[string]any) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, ok := r.firms[firmID]; !ok {
		return ErrNotFound
	}
	r.values[firmID] = copyValues(values)
	return nil
}

func copyValues(in map[string]any) map[string]any {
	out := make(map[string]any, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}

var _ Repo = (*MemoryRepo)(nil)
