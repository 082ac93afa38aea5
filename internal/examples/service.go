package examples

import (
	"context"
	"crypto/rand"
	"encoding/base32"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"journey-backend/internal/shared/telemetry"
)

const (
	shortIDPrefix   = "EX-"
	shortIDLength   = 6
	maxIDAttempts   = 3
	MaxBulkItems    = 500
	defaultPageSize = 50
)

// Service contains business logic for examples.
type Service struct {
	Repo Repo
	Now  func() time.Time
}

func (s *Service) now() time.Time {
	if s.Now != nil {
		return s.Now().UTC()
	}
	return time.Now().UTC()
}

// Create validates and stores a new example.
func (s *Service) Create(ctx context.Context, userID string, in Input) (Example, error) {
	in = TrimExample(in)
	if missing := MissingFields(in); len(missing) > 0 {
		return Example{}, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}

	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		ex := s.newExample(userID, in)
		err := s.Repo.Create(ctx, ex)
		if err == nil {
			return ex, nil
		}
		if !errors.Is(err, ErrShortIDTaken) {
			return Example{}, err
		}
		lastErr = err
	}
	return Example{}, lastErr
}

// Get returns one of the user's examples. Examples created by someone else read as not found.
func (s *Service) Get(ctx context.Context, userID, id string) (Example, error) {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return Example{}, ErrNotFound
	}
	return s.Repo.Get(ctx, userID, id)
}

func (s *Service) List(ctx context.Context, userID, projectID string, limit, offset int) ([]Example, error) {
	if strings.TrimSpace(userID) == "" {
		return []Example{}, nil
	}
	if limit <= 0 {
		limit = defaultPageSize
	}
	return s.Repo.List(ctx, userID, strings.TrimSpace(projectID), limit, offset)
}

// Update replaces the editable fields of an example, with the same validation as Create.
func (s *Service) Update(ctx context.Context, userID, id string, in Input) (Example, error) {
	in = TrimExample(in)
	if missing := MissingFields(in); len(missing) > 0 {
		return Example{}, fmt.Errorf("%w: missing %s", ErrInvalidInput, strings.Join(missing, ", "))
	}
	ex, err := s.Get(ctx, userID, id)
	if err != nil {
		return Example{}, err
	}
	ex.ProjectID = in.ProjectID
	ex.Actor = in.Actor
	ex.Goal = in.Goal
	ex.EntryPoint = in.EntryPoint
	ex.Actions = in.Actions
	ex.Error = in.Error
	ex.Outcome = in.Outcome
	ex.UpdatedAt = s.now()
	if err := s.Repo.Update(ctx, ex); err != nil {
		return Example{}, err
	}
	return ex, nil
}

func (s *Service) Delete(ctx context.Context, userID, id string) error {
	if strings.TrimSpace(userID) == "" || strings.TrimSpace(id) == "" {
		return ErrNotFound
	}
	return s.Repo.Delete(ctx, userID, id)
}

// BulkImport validates the batch and inserts the valid items atomically. projectID, when set,
// overrides the project of every item.
func (s *Service) BulkImport(ctx context.Context, userID, projectID string, items []Input) (BulkResult, error) {
	if len(items) == 0 {
		return BulkResult{}, fmt.Errorf("%w: no items", ErrInvalidInput)
	}
	if len(items) > MaxBulkItems {
		return BulkResult{}, fmt.Errorf("%w: at most %d items per import", ErrInvalidInput, MaxBulkItems)
	}

	valid, invalid := ValidateBulk(items)
	result := BulkResult{Created: []Example{}, Invalid: invalid}
	if len(valid) == 0 {
		return result, nil
	}

	projectID = strings.TrimSpace(projectID)
	var lastErr error
	for attempt := 0; attempt < maxIDAttempts; attempt++ {
		created := make([]Example, 0, len(valid))
		for _, in := range valid {
			if projectID != "" {
				in.ProjectID = projectID
			}
			created = append(created, s.newExample(userID, in))
		}
		err := s.Repo.CreateMany(ctx, created)
		if err == nil {
			result.Created = created
			telemetry.Info("examples.bulk_import", map[string]any{
				"user_id":  userID,
				"created":  len(created),
				"rejected": len(invalid),
			})
			return result, nil
		}
		if !errors.Is(err, ErrShortIDTaken) {
			return BulkResult{}, err
		}
		lastErr = err
	}
	return BulkResult{}, lastErr
}

func (s *Service) newExample(userID string, in Input) Example {
	now := s.now()
	return Example{
		ID:         uuid.NewString(),
		ShortID:    newShortID(),
		ProjectID:  in.ProjectID,
		Actor:      in.Actor,
		Goal:       in.Goal,
		EntryPoint: in.EntryPoint,
		Actions:    in.Actions,
		Error:      in.Error,
		Outcome:    in.Outcome,
		CreatedBy:  userID,
		CreatedAt:  now,
		UpdatedAt:  now,
	}
}

func newShortID() string {
	var b [5]byte
	if _, err := rand.Read(b[:]); err != nil {
		return shortIDPrefix + strings.ToUpper(uuid.NewString()[:shortIDLength])
	}
	return shortIDPrefix + base32.StdEncoding.EncodeToString(b[:])[:shortIDLength]
}
