package examples

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu       sync.RWMutex
	data     map[string]Example
	shortIDs map[string]string
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		data:     make(map[string]Example),
		shortIDs: make(map[string]string),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, ex Example) error {
	return r.CreateMany(ctx, []Example{ex})
}

func (r *MemoryRepo) CreateMany(ctx context.Context, items []Example) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	seen := make(map[string]struct{}, len(items))
	for _, ex := range items {
		if _, ok := r.shortIDs[ex.ShortID]; ok {
			return ErrShortIDTaken
		}
		if _, ok := seen[ex.ShortID]; ok {
			return ErrShortIDTaken
		}
		seen[ex.ShortID] = struct{}{}
	}
	for _, ex := range items {
		r.data[ex.ID] = ex
		r.shortIDs[ex.ShortID] = ex.ID
	}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, createdBy, id string) (Example, error) {
	if err := ctx.Err(); err != nil {
		return Example{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ex, ok := r.data[id]
	if !ok || ex.CreatedBy != createdBy {
		return Example{}, ErrNotFound
	}
	return ex, nil
}

// List returns the user's examples newest first. An empty projectID lists every project.
func (r *MemoryRepo) List(ctx context.Context, createdBy, projectID string, limit, offset int) ([]Example, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if offset < 0 {
		offset = 0
	}

	r.mu.RLock()
	out := make([]Example, 0, len(r.data))
	for _, ex := range r.data {
		if ex.CreatedBy != createdBy || (projectID != "" && ex.ProjectID != projectID) {
			continue
		}
		out = append(out, ex)
	}
	r.mu.RUnlock()

	sort.Slice(out, func(i, j int) bool {
		if out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].ShortID > out[j].ShortID
		}
		return out[i].CreatedAt.After(out[j].CreatedAt)
	})

	if offset >= len(out) {
		return []Example{}, nil
	}
	end := len(out)
	if limit > 0 && offset+limit < end {
		end = offset + limit
	}
	return out[offset:end], nil
}

func (r *MemoryRepo) Update(ctx context.Context, ex Example) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if current, ok := r.data[ex.ID]; !ok || current.CreatedBy != ex.CreatedBy {
		return ErrNotFound
	}
	r.data[ex.ID] = ex
	return nil
}

func (r *MemoryRepo) Delete(ctx context.Context, createdBy, id string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	ex, ok := r.data[id]
	if !ok || ex.CreatedBy != createdBy {
		return ErrNotFound
	}
	delete(r.shortIDs, ex.ShortID)
	delete(r.data, id)
	return nil
}

var _ Repo = (*MemoryRepo)(nil)
