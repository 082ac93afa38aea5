package workspaces

import (
	"context"
	"sort"
	"sync"
)

// MemoryRepo is an in-memory implementation of Repo.
type MemoryRepo struct {
	mu         sync.RWMutex
	workspaces map[string]Workspace
	members    map[string]map[string]Member // workspaceID -> email -> member
}

// NewMemoryRepo constructs a MemoryRepo.
func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{
		workspaces: make(map[string]Workspace),
		members:    make(map[string]map[string]Member),
	}
}

func (r *MemoryRepo) Create(ctx context.Context, ws Workspace, owner Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	r.workspaces[ws.ID] = ws
	r.members[ws.ID] = map[string]Member{owner.Email: owner}
	return nil
}

func (r *MemoryRepo) Get(ctx context.Context, id string) (Workspace, error) {
	if err := ctx.Err(); err != nil {
		return Workspace{}, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	ws, ok := r.workspaces[id]
	if !ok {
		return Workspace{}, ErrNotFound
	}
	return ws, nil
}

func (r *MemoryRepo) ListForEmail(ctx context.Context, email string) ([]Workspace, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	out := make([]Workspace, 0)
	for id, members := range r.members {
		if _, ok := members[email]; ok {
			out = append(out, r.workspaces[id])
		}
	}
	r.mu.RUnlock()
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (r *MemoryRepo) AddMember(ctx context.Context, m Member) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[m.WorkspaceID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := members[m.Email]; exists {
		return ErrMemberExists
	}
	members[m.Email] = m
	return nil
}

func (r *MemoryRepo) RemoveMember(ctx context.Context, workspaceID, email string) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	members, ok := r.members[workspaceID]
	if !ok {
		return ErrNotFound
	}
	if _, exists := members[email]; !exists {
		return ErrMemberMissing
	}
	delete(members, email)
	return nil
}

func (r *MemoryRepo) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	members, ok := r.members[workspaceID]
	if !ok {
		return nil, ErrNotFound
	}
	out := make([]Member, 0, len(members))
	for _, m := range members {
		out = append(out, m)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Email < out[j].Email })
	return out, nil
}

func (r *MemoryRepo) IsMember(ctx context.Context, workspaceID, email string) (bool, error) {
	if err := ctx.Err(); err != nil {
		return false, err
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.members[workspaceID][email]
	return ok, nil
}

var _ Repo = (*MemoryRepo)(nil)
