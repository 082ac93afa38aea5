package workspaces

import "time"

const (
	RoleOwner  = "owner"
	RoleMember = "member"
)

// Workspace groups law firms and research material shared by its members.
type Workspace struct {
	ID        string
	Name      string
	CreatedBy string
	CreatedAt time.Time
}

// Member is an email-addressed workspace membership.
type Member struct {
	WorkspaceID string
	Email       string
	Role        string
	CreatedAt   time.Time
}
