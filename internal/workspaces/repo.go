package workspaces

import "context"

// Repo defines persistence operations for workspaces and their members.
type Repo interface {
	// Create stores the workspace together with its owner membership.
	Create(ctx context.Context, ws Workspace, owner Member) error
	Get(ctx context.Context, id string) (Workspace, error)
	ListForEmail(ctx context.Context, email string) ([]Workspace, error)
	AddMember(ctx context.Context, m Member) error
	RemoveMember(ctx context.Context, workspaceID, email string) error
	ListMembers(ctx context.Context, workspaceID string) ([]Member, error)
	IsMember(ctx context.Context, workspaceID, email string) (bool, error)
}
