package jobs

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"time"
)

// PGRepo implements Repo using Postgres.
type PGRepo struct {
	DB *sql.DB
}

const insertJob = `
INSERT INTO ai_processing_jobs (
    id,
    user_id,
    job_type,
    status,
    input_data,
    created_at
) VALUES ($1, $2, $3, $4, $5, $6)`

const selectJob = `
SELECT id, user_id, job_type, status, input_data, result_data, error_code, error_message, created_at, completed_at
FROM ai_processing_jobs`

const markJobCompleted = `
UPDATE ai_processing_jobs
SET status = 'completed',
    result_data = $2,
    error_code = NULL,
    error_message = NULL,
    completed_at = $3
WHERE id = $1 AND status = 'processing'`

const markJobFailed = `
UPDATE ai_processing_jobs
SET status = 'failed',
    error_code = $2,
    error_message = $3,
    completed_at = $4
WHERE id = $1 AND status = 'processing'`

func (r *PGRepo) Create(ctx context.Context, job Job) error {
	input := job.InputData
	if len(input) == 0 {
		input = json.RawMessage(`{}`)
	}
	_, err := r.DB.ExecContext(ctx, insertJob, job.ID, job.UserID, job.JobType, job.Status, []byte(input), job.CreatedAt)
	return err
}

func (r *PGRepo) Get(ctx context.Context, id string) (Job, error) {
	row := r.DB.QueryRowContext(ctx, selectJob+` WHERE id = $1`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, ErrNotFound
	}
	return job, err
}

func (r *PGRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	rows, err := r.DB.QueryContext(ctx, selectJob+`
WHERE user_id = $1
ORDER BY created_at DESC
LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	out := make([]Job, 0)
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, rows.Err()
}

func (r *PGRepo) MarkCompleted(ctx context.Context, id string, result json.RawMessage, completedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, markJobCompleted, id, []byte(result), completedAt)
	if err != nil {
		return err
	}
	return r.requireProcessing(ctx, res, id)
}

func (r *PGRepo) MarkFailed(ctx context.Context, id, code, message string, completedAt time.Time) error {
	res, err := r.DB.ExecContext(ctx, markJobFailed, id, code, message, completedAt)
	if err != nil {
		return err
	}
	return r.requireProcessing(ctx, res, id)
}

// requireProcessing tells a missing row apart from a row that already left processing.
func (r *PGRepo) requireProcessing(ctx context.Context, res sql.Result, id string) error {
	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected > 0 {
		return nil
	}
	if _, err := r.Get(ctx, id); err != nil {
		return err
	}
	return ErrNotProcessing
}

type scanner interface {
	Scan(dest ...any) error
}

func scanJob(s scanner) (Job, error) {
	var (
		job          Job
		input        []byte
		result       []byte
		errorCode    sql.NullString
		errorMessage sql.NullString
		completedAt  sql.NullTime
	)
	if err := s.Scan(
		&job.ID,
		&job.UserID,
		&job.JobType,
		&job.Status,
		&input,
		&result,
		&errorCode,
		&errorMessage,
		&job.CreatedAt,
		&completedAt,
	); err != nil {
		return Job{}, err
	}
	job.InputData = json.RawMessage(input)
	if len(result) > 0 {
		job.ResultData = json.RawMessage(result)
	}
	job.ErrorCode = errorCode.String
	job.ErrorMessage = errorMessage.String
	if completedAt.Valid {
		t := completedAt.Time
		job.CompletedAt = &t
	}
	return job, nil
}
