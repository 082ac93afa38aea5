package lawfirms

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"journey-backend/internal/shared/storage/db"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const selectFirm = `
SELECT f.id, f.workspace_id, f.name, f.structure, f.status, f.top_4, f.created_at, f.updated_at, v."values"
FROM law_firms f
LEFT JOIN law_firm_custom_values v ON v.law_firm_id = f.id`

func (r *PGRepo) CreateFirm(ctx context.Context, f LawFirm) error {
	const query = `
INSERT INTO law_firms (id, workspace_id, name, structure, status, top_4, created_at, updated_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`
	_, err := r.DB.ExecContext(ctx, query, f.ID, f.WorkspaceID, f.Name, f.Structure, f.Status, f.Top4, f.CreatedAt, f.UpdatedAt)
	return err
}

func (r *PGRepo) GetFirm(ctx context.Context, workspaceID, id string) (LawFirm, error) {
	row := r.DB.QueryRowContext(ctx, selectFirm+`
WHERE f.workspace_id = $1 AND f.id = $2`, workspaceID, id)
	f, err := scanFirm(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return LawFirm{}, ErrNotFound
		}
		return LawFirm{}, err
	}
	return f, nil
}

func (r *PGRepo) ListFirms(ctx context.Context, workspaceID string) ([]LawFirm, error) {
	rows, err := r.DB.QueryContext(ctx, selectFirm+`
WHERE f.workspace_id = $1
ORDER BY f.name`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]LawFirm, 0)
	for rows.Next() {
		f, err := scanFirm(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, f)
	}
	return out, rows.Err()
}

func (r *PGRepo) UpdateFirm(ctx context.Context, f LawFirm) error {
	const query = `
UPDATE law_firms
SET name = $3, structure = $4, status = $5, top_4 = $6, updated_at = $7
WHERE workspace_id = $1 AND id = $2`
	res, err := r.DB.ExecContext(ctx, query, f.WorkspaceID, f.ID, f.Name, f.Structure, f.Status, f.Top4, f.UpdatedAt)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

func (r *PGRepo) DeleteFirm(ctx context.Context, workspaceID, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM law_firms WHERE workspace_id = $1 AND id = $2`, workspaceID, id)
	if err != nil {
		return err
	}
	return requireRow(res, ErrNotFound)
}

func (r *PGRepo) ListColumns(ctx context.Context, workspaceID string) ([]Column, error) {
	rows, err := r.DB.QueryContext(ctx, `
SELECT id, workspace_id, key, name, type, options, position, created_at
FROM law_firm_custom_columns
WHERE workspace_id = $1
ORDER BY position, created_at, id`, workspaceID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Column, 0)
	for rows.Next() {
		var col Column
		var options []byte
		if err := rows.Scan(&col.ID, &col.WorkspaceID, &col.Key, &col.Name, &col.Type, &options, &col.Position, &col.CreatedAt); err != nil {
			return nil, err
		}
		col.Options = []string{}
		if len(options) > 0 {
			if err := json.Unmarshal(options, &col.Options); err != nil {
				return nil, fmt.Errorf("decode options for column %s: %w", col.ID, err)
			}
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

func (r *PGRepo) CreateColumn(ctx context.Context, col Column) error {
	options, err := json.Marshal(col.Options)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO law_firm_custom_columns (id, workspace_id, key, name, type, options, position, created_at)
VALUES ($1, $2, $3, $4, $5, $6, $7, $8)`,
		col.ID, col.WorkspaceID, col.Key, col.Name, col.Type, options, col.Position, col.CreatedAt)
	if db.IsUniqueViolation(err) {
		return fmt.Errorf("%w: %s", ErrDuplicateColumn, col.Key)
	}
	return err
}

func (r *PGRepo) UpdateColumn(ctx context.Context, col Column) error {
	options, err := json.Marshal(col.Options)
	if err != nil {
		return err
	}
	res, err := r.DB.ExecContext(ctx, `
UPDATE law_firm_custom_columns
SET name = $3, options = $4
WHERE workspace_id = $1 AND id = $2`, col.WorkspaceID, col.ID, col.Name, options)
	if err != nil {
		return err
	}
	return requireRow(res, ErrColumnNotFound)
}

func (r *PGRepo) DeleteColumn(ctx context.Context, workspaceID, id string) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		var key string
		err := tx.QueryRowContext(ctx, `
DELETE FROM law_firm_custom_columns
WHERE workspace_id = $1 AND id = $2
RETURNING key`, workspaceID, id).Scan(&key)
		if err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrColumnNotFound
			}
			return err
		}
		_, err = tx.ExecContext(ctx, `
UPDATE law_firm_custom_values v
SET "values" = v."values" - $2::text, updated_at = now()
FROM law_firms f
WHERE f.id = v.law_firm_id
  AND f.workspace_id = $1
  AND NOT EXISTS (
      SELECT 1 FROM law_firm_custom_columns c WHERE c.workspace_id = $1 AND c.key = $2
  )`, workspaceID, key)
		return err
	})
}

func (r *PGRepo) SetColumnPositions(ctx context.Context, workspaceID string, positions map[string]int) error {
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for id, pos := range positions {
			res, err := tx.ExecContext(ctx, `
UPDATE law_firm_custom_columns
SET position = $3
WHERE workspace_id = $1 AND id = $2`, workspaceID, id, pos)
			if err != nil {
				return err
			}
			if err := requireRow(res, ErrColumnNotFound); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepo) SetValues(ctx context.Context, firmID string, values map[string]any) error {
	payload, err := json.Marshal(values)
	if err != nil {
		return err
	}
	_, err = r.DB.ExecContext(ctx, `
INSERT INTO law_firm_custom_values (law_firm_id, "values", updated_at)
VALUES ($1, $2, now())
ON CONFLICT (law_firm_id) DO UPDATE SET "values" = EXCLUDED."values", updated_at = now()`, firmID, payload)
	if db.IsForeignKeyViolation(err) {
		return ErrNotFound
	}
	return err
}

type scanner interface {
	Scan(dest ...any) error
}

func scanFirm(s scanner) (LawFirm, error) {
	var f LawFirm
	var values []byte
	if err := s.Scan(&f.ID, &f.WorkspaceID, &f.Name, &f.Structure, &f.Status, &f.Top4, &f.CreatedAt, &f.UpdatedAt, &values); err != nil {
		return LawFirm{}, err
	}
	f.CustomValues = map[string]any{}
	if len(values) > 0 {
		if err := json.Unmarshal(values, &f.CustomValues); err != nil {
			return LawFirm{}, fmt.Errorf("decode custom values for firm %s: %w", f.ID, err)
		}
	}
	return f, nil
}

func requireRow(res sql.Result, notFound error) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return notFound
	}
	return nil
}

var _ Repo = (*PGRepo)(nil)
