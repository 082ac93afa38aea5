package workspaces

import (
	"context"
	"fmt"
	"net/mail"
	"strings"
	"time"

	"github.com/google/uuid"

	"journey-backend/internal/shared/telemetry"
)

// Service contains business logic for workspaces and membership.
type Service struct {
	Repo Repo
}

// NormalizeEmail lower-cases and trims an address for membership comparisons.
func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}

// Create makes a workspace and records ownerEmail as its owner.
func (s *Service) Create(ctx context.Context, name, ownerEmail string) (Workspace, error) {
	name = strings.TrimSpace(name)
	owner := NormalizeEmail(ownerEmail)
	if name == "" {
		return Workspace{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	if owner == "" {
		return Workspace{}, fmt.Errorf("%w: owner email is required", ErrInvalidInput)
	}

	now := time.Now().UTC()
	ws := Workspace{
		ID:        uuid.NewString(),
		Name:      name,
		CreatedBy: owner,
		CreatedAt: now,
	}
	member := Member{WorkspaceID: ws.ID, Email: owner, Role: RoleOwner, CreatedAt: now}
	if err := s.Repo.Create(ctx, ws, member); err != nil {
		return Workspace{}, err
	}
	telemetry.Info("workspace.created", map[string]any{"workspace_id": ws.ID, "owner": owner})
	return ws, nil
}

func (s *Service) Get(ctx context.Context, id string) (Workspace, error) {
	return s.Repo.Get(ctx, id)
}

func (s *Service) ListForEmail(ctx context.Context, email string) ([]Workspace, error) {
	email = NormalizeEmail(email)
	if email == "" {
		return []Workspace{}, nil
	}
	return s.Repo.ListForEmail(ctx, email)
}

// AddMember grants access to an email address. Role defaults to member.
func (s *Service) AddMember(ctx context.Context, workspaceID, email, role string) (Member, error) {
	email = NormalizeEmail(email)
	if _, err := mail.ParseAddress(email); err != nil || email == "" {
		return Member{}, fmt.Errorf("%w: a valid email is required", ErrInvalidInput)
	}
	role = strings.ToLower(strings.TrimSpace(role))
	if role == "" {
		role = RoleMember
	}
	if role != RoleMember && role != RoleOwner {
		return Member{}, fmt.Errorf("%w: role must be owner or member", ErrInvalidInput)
	}
	m := Member{WorkspaceID: workspaceID, Email: email, Role: role, CreatedAt: time.Now().UTC()}
	if err := s.Repo.AddMember(ctx, m); err != nil {
		return Member{}, err
	}
	return m, nil
}

// RemoveMember revokes access. The last owner cannot be removed.
func (s *Service) RemoveMember(ctx context.Context, workspaceID, email string) error {
	email = NormalizeEmail(email)
	members, err := s.Repo.ListMembers(ctx, workspaceID)
	if err != nil {
		return err
	}
	owners := 0
	var target *Member
	for i := range members {
		if members[i].Role == RoleOwner {
			owners++
		}
		if members[i].Email == email {
			target = &members[i]
		}
	}
	if target == nil {
		return ErrMemberMissing
	}
	if target.Role == RoleOwner && owners <= 1 {
		return ErrLastOwner
	}
	return s.Repo.RemoveMember(ctx, workspaceID, email)
}

func (s *Service) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	return s.Repo.ListMembers(ctx, workspaceID)
}

// IsMember reports whether email belongs to the workspace.
func (s *Service) IsMember(ctx context.Context, workspaceID, email string) (bool, error) {
	email = NormalizeEmail(email)
	if email == "" || strings.TrimSpace(workspaceID) == "" {
		return false, nil
	}
	return s.Repo.IsMember(ctx, workspaceID, email)
}
