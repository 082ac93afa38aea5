package workspaces

import (
	"context"
	"database/sql"
	"errors"

	"journey-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

func (r *PGRepo) Create(ctx context.Context, ws Workspace, owner Member) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		if _, err := tx.ExecContext(ctx, `
INSERT INTO workspaces (id, name, created_by, created_at)
VALUES ($1, $2, $3, $4)`, ws.ID, ws.Name, ws.CreatedBy, ws.CreatedAt); err != nil {
			return err
		}
		_, err := tx.ExecContext(ctx, `
INSERT INTO workspace_users (workspace_id, email, role, created_at)
VALUES ($1, $2, $3, $4)`, owner.WorkspaceID, owner.Email, owner.Role, owner.CreatedAt)
		return err
	})
}

func (r *PGRepo) Get(ctx context.Context, id string) (Workspace, error) {
	var ws Workspace
	err := r.DB.QueryRowContext(ctx, `
SELECT id, name, created_by, created_at
FROM workspaces
WHERE id = $1`, id).Scan(&ws.ID, &ws.Name, &ws.CreatedBy, &ws.CreatedAt)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Workspace{}, ErrNotFound
		}
		return Workspace{}, err
	}
	return ws, nil
}

func (r *PGRepo) ListForEmail(ctx context.Context, email string) ([]Workspace, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT w.id, w.name, w.created_by, w.created_at
FROM workspaces w
JOIN workspace_users wu ON wu.workspace_id = w.id
WHERE wu.email = $1
ORDER BY w.name`, email)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Workspace, 0)
	for rows.Next() {
		var ws Workspace
		if err := rows.Scan(&ws.ID, &ws.Name, &ws.CreatedBy, &ws.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, ws)
	}
	return out, rows.Err()
}

func (r *PGRepo) AddMember(ctx context.Context, m Member) error {
	_, err := r.DB.ExecContext(ctx, `
INSERT INTO workspace_users (workspace_id, email, role, created_at)
VALUES ($1, $2, $3, $4)`, m.WorkspaceID, m.Email, m.Role, m.CreatedAt)
	switch {
	case db.IsUniqueViolation(err):
		return ErrMemberExists
	case db.IsForeignKeyViolation(err):
		return ErrNotFound
	}
	return err
}

func (r *PGRepo) RemoveMember(ctx context.Context, workspaceID, email string) error {
	res, err := r.DB.ExecContext(ctx, `
DELETE FROM workspace_users
WHERE workspace_id = $1 AND email = $2`, workspaceID, email)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrMemberMissing
	}
	return nil
}

func (r *PGRepo) ListMembers(ctx context.Context, workspaceID string) ([]Member, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT workspace_id, email, role, created_at
FROM workspace_users
WHERE workspace_id = $1
ORDER BY email`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Member, 0)
	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.WorkspaceID, &m.Email, &m.Role, &m.CreatedAt); err != nil {
			return nil, err
		}
		out = append(out, m)
	}
	return out, rows.Err()
}

func (r *PGRepo) IsMember(ctx context.Context, workspaceID, email string) (bool, error) {
	var exists bool
	err := r.DB.QueryRowContext(ctx, `
SELECT EXISTS (
    SELECT 1 FROM workspace_users WHERE workspace_id = $1 AND email = $2
)`, workspaceID, email).Scan(&exists)
	return exists, err
}

var _ Repo = (*PGRepo)(nil)
