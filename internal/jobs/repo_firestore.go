package jobs

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"cloud.google.com/go/firestore"
	"google.golang.org/api/iterator"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/status"
)

// CollectionName is the Firestore collection holding job documents.
const CollectionName = "ai_processing_jobs"

// FirestoreRepo implements Repo on a Firestore collection. Input and result payloads are stored
// as JSON strings so arbitrary diagram shapes survive the round trip.
type FirestoreRepo struct {
	Client     *firestore.Client
	Collection string
}

func NewFirestoreRepo(client *firestore.Client) *FirestoreRepo {
	return &FirestoreRepo{Client: client, Collection: CollectionName}
}

type jobDocument struct {
	UserID       string     `firestore:"userId"`
	JobType      string     `firestore:"jobType"`
	Status       string     `firestore:"status"`
	InputData    string     `firestore:"inputData"`
	ResultData   string     `firestore:"resultData,omitempty"`
	ErrorCode    string     `firestore:"errorCode,omitempty"`
	ErrorMessage string     `firestore:"errorMessage,omitempty"`
	CreatedAt    time.Time  `firestore:"createdAt"`
	CompletedAt  *time.Time `firestore:"completedAt,omitempty"`
}

func (r *FirestoreRepo) collection() *firestore.CollectionRef {
	name := r.Collection
	if name == "" {
		name = CollectionName
	}
	return r.Client.Collection(name)
}

func (r *FirestoreRepo) Create(ctx context.Context, job Job) error {
	doc := jobDocument{
		UserID:    job.UserID,
		JobType:   job.JobType,
		Status:    job.Status,
		InputData: string(job.InputData),
		CreatedAt: job.CreatedAt.UTC(),
	}
	if _, err := r.collection().Doc(job.ID).Create(ctx, doc); err != nil {
		return fmt.Errorf("failed to create job document: %w", err)
	}
	return nil
}

func (r *FirestoreRepo) Get(ctx context.Context, id string) (Job, error) {
	snap, err := r.collection().Doc(id).Get(ctx)
	if status.Code(err) == codes.NotFound {
		return Job{}, ErrNotFound
	}
	if err != nil {
		return Job{}, err
	}
	return fromSnapshot(snap)
}

func (r *FirestoreRepo) ListByUser(ctx context.Context, userID string, limit, offset int) ([]Job, error) {
	query := r.collection().
		Where("userId", "==", userID).
		OrderBy("createdAt", firestore.Desc).
		Offset(offset)
	if limit > 0 {
		query = query.Limit(limit)
	}

	iter := query.Documents(ctx)
	defer iter.Stop()

	out := make([]Job, 0)
	for {
		snap, err := iter.Next()
		if errors.Is(err, iterator.Done) {
			break
		}
		if err != nil {
			return nil, fmt.Errorf("failed to list jobs: %w", err)
		}
		job, err := fromSnapshot(snap)
		if err != nil {
			return nil, err
		}
		out = append(out, job)
	}
	return out, nil
}

func (r *FirestoreRepo) MarkCompleted(ctx context.Context, id string, result json.RawMessage, completedAt time.Time) error {
	return r.finish(ctx, id, []firestore.Update{
		{Path: "status", Value: StatusCompleted},
		{Path: "resultData", Value: string(result)},
		{Path: "completedAt", Value: completedAt.UTC()},
	})
}

func (r *FirestoreRepo) MarkFailed(ctx context.Context, id, code, message string, completedAt time.Time) error {
	return r.finish(ctx, id, []firestore.Update{
		{Path: "status", Value: StatusFailed},
		{Path: "errorCode", Value: code},
		{Path: "errorMessage", Value: message},
		{Path: "completedAt", Value: completedAt.UTC()},
	})
}

// finish applies updates inside a transaction so only a processing job can move to a terminal state.
func (r *FirestoreRepo) finish(ctx context.Context, id string, updates []firestore.Update) error {
	docRef := r.collection().Doc(id)
	return r.Client.RunTransaction(ctx, func(ctx context.Context, tx *firestore.Transaction) error {
		snap, err := tx.Get(docRef)
		if status.Code(err) == codes.NotFound {
			return ErrNotFound
		}
		if err != nil {
			return err
		}
		current, err := snap.DataAt("status")
		if err != nil {
			return err
		}
		if current != StatusProcessing {
			return ErrNotProcessing
		}
		return tx.Update(docRef, updates)
	})
}

func fromSnapshot(snap *firestore.DocumentSnapshot) (Job, error) {
	var doc jobDocument
	if err := snap.DataTo(&doc); err != nil {
		return Job{}, fmt.Errorf("failed to decode job document %s: %w", snap.Ref.ID, err)
	}
	job := Job{
		ID:           snap.Ref.ID,
		UserID:       doc.UserID,
		JobType:      doc.JobType,
		Status:       doc.Status,
		InputData:    json.RawMessage(doc.InputData),
		ErrorCode:    doc.ErrorCode,
		ErrorMessage: doc.ErrorMessage,
		CreatedAt:    doc.CreatedAt,
		CompletedAt:  doc.CompletedAt,
	}
	if doc.ResultData != "" {
		job.ResultData = json.RawMessage(doc.ResultData)
	}
	return job, nil
}

var _ Repo = (*FirestoreRepo)(nil)
