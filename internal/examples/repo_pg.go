package examples

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

const insertExample = `
INSERT INTO examples (
    id,
    short_id,
    project_id,
    actor,
    goal,
    entry_point,
    actions,
    error,
    outcome,
    created_by,
    created_at,
    updated_at
) VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $12)`

const selectExample = `
SELECT id, short_id, project_id, actor, goal, entry_point, actions, error, outcome, created_by, created_at, updated_at
FROM examples`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

func insert(ctx context.Context, e execer, ex Example) error {
	_, err := e.ExecContext(
		ctx,
		insertExample,
		ex.ID,
		ex.ShortID,
		nullString(ex.ProjectID),
		ex.Actor,
		ex.Goal,
		ex.EntryPoint,
		ex.Actions,
		ex.Error,
		ex.Outcome,
		ex.CreatedBy,
		ex.CreatedAt,
		ex.UpdatedAt,
	)
	if db.IsUniqueViolation(err) {
		return ErrShortIDTaken
	}
	return err
}

func (r *PGRepo) Create(ctx context.Context, ex Example) error {
	return insert(ctx, r.DB, ex)
}

// CreateMany inserts the examples in one transaction.
func (r *PGRepo) CreateMany(ctx context.Context, items []Example) error {
	if len(items) == 0 {
		return nil
	}
	return db.WithTx(ctx, r.DB, func(tx *sql.Tx) error {
		for _, ex := range items {
			if err := insert(ctx, tx, ex); err != nil {
				return err
			}
		}
		return nil
	})
}

func (r *PGRepo) Get(ctx context.Context, createdBy, id string) (Example, error) {
	row := r.DB.QueryRowContext(ctx, selectExample+`
WHERE id = $1 AND created_by = $2`, id, createdBy)
	ex, err := scanExample(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return Example{}, ErrNotFound
		}
		return Example{}, err
	}
	return ex, nil
}

// List returns the user's examples newest first. An empty projectID lists every project.
func (r *PGRepo) List(ctx context.Context, createdBy, projectID string, limit, offset int) ([]Example, error) {
	const query = selectExample + `
WHERE created_by = $1 AND ($2 = '' OR project_id = $2)
ORDER BY created_at DESC, short_id DESC
LIMIT $3 OFFSET $4`

	if limit <= 0 {
		limit = 100
	}
	if offset < 0 {
		offset = 0
	}
	rows, err := r.DB.QueryContext(ctx, query, createdBy, projectID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Example, 0)
	for rows.Next() {
		ex, err := scanExample(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, ex)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return out, nil
}

func (r *PGRepo) Update(ctx context.Context, ex Example) error {
	const query = `
UPDATE examples
SET project_id = $2,
    actor = $3,
    goal = $4,
    entry_point = $5,
    actions = $6,
    error = $7,
    outcome = $8,
    updated_at = $9
WHERE id = $1 AND created_by = $10`
	res, err := r.DB.ExecContext(ctx, query,
		ex.ID,
		nullString(ex.ProjectID),
		ex.Actor,
		ex.Goal,
		ex.EntryPoint,
		ex.Actions,
		ex.Error,
		ex.Outcome,
		ex.UpdatedAt,
		ex.CreatedBy,
	)
	if err != nil {
		return err
	}
	return requireRow(res)
}

func (r *PGRepo) Delete(ctx context.Context, createdBy, id string) error {
	res, err := r.DB.ExecContext(ctx, `DELETE FROM examples WHERE id = $1 AND created_by = $2`, id, createdBy)
	if err != nil {
		return err
	}
	return requireRow(res)
}

type scanner interface {
	Scan(dest ...any) error
}

func scanExample(s scanner) (Example, error) {
	var ex Example
	var projectID sql.NullString
	err := s.Scan(
		&ex.ID,
		&ex.ShortID,
		&projectID,
		&ex.Actor,
		&ex.Goal,
		&ex.EntryPoint,
		&ex.Actions,
		&ex.Error,
		&ex.Outcome,
		&ex.CreatedBy,
		&ex.CreatedAt,
		&ex.UpdatedAt,
	)
	if err != nil {
		return Example{}, err
	}
	if projectID.Valid {
		ex.ProjectID = projectID.String
	}
	return ex, nil
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}

func nullString(s string) sql.NullString {
	if s == "" {
		return sql.NullString{}
	}
	return sql.NullString{String: s, Valid: true}
}

var _ Repo = (*PGRepo)(nil)
