package main

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"path"
	"strings"

	cloudevents "github.com/cloudevents/sdk-go/v2"

	"journey-backend/internal/jobs"
	"journey-backend/internal/shared/storage/object"
	"journey-backend/internal/shared/util"
	"journey-backend/internal/shared/telemetry"
)

// storageObjectData is the subset of a GCS object finalize payload the trigger reads.
type storageObjectData struct {
	Bucket      string            `json:"bucket"`
	Name        string            `json:"name"`
	ContentType string            `json:"contentType"`
	Metadata    map[string]string `json:"metadata"`
}

type keyResolver interface {
	KeyForObject(bucket, name string) (string, bool)
}

type jobStarter interface {
	Start(ctx context.Context, userID, jobType string, input json.RawMessage) (jobs.Job, error)
}

// transcriptTypes lists the document types a transcript job can extract text from.
var transcriptTypes = map[string]bool{
	"application/pdf": true,
	"application/vnd.openxmlformats-officedocument.wordprocessingml.document": true,
	"text/plain":    true,
	"text/vtt":      true,
	"text/markdown": true,
	"text/csv":      true,
}

type uploadTrigger struct {
	keys    keyResolver
	starter jobStarter
}

// newUploadTrigger returns nil keys when the configured store is not GCS; every event is then skipped.
func newUploadTrigger(store object.ObjectStore, starter jobStarter) *uploadTrigger {
	t := &uploadTrigger{starter: starter}
	if resolver, ok := store.(keyResolver); ok {
		t.keys = resolver
	}
	return t
}

// Handle starts a transcript job for a finalized upload. Objects that cannot become a job are
// logged and acknowledged so the event is not redelivered.
func (t *uploadTrigger) Handle(ctx context.Context, e cloudevents.Event) error {
	var data storageObjectData
	if err := json.Unmarshal(e.Data(), &data); err != nil {
		telemetry.Error("upload.trigger.decode_failed", map[string]any{"event_id": e.ID(), "error": err.Error()})
		return nil
	}
	fields := map[string]any{
		"event_id": e.ID(),
		"bucket":   data.Bucket,
		"object":   data.Name,
	}

	if reason := t.skipReason(data); reason != "" {
		fields["reason"] = reason
		telemetry.Info("upload.trigger.skipped", fields)
		return nil
	}

	key, ok := t.keys.KeyForObject(data.Bucket, data.Name)
	if !ok {
		fields["reason"] = "outside store prefix"
		telemetry.Info("upload.trigger.skipped", fields)
		return nil
	}

	input, err := json.Marshal(jobs.TranscriptInput{
		Title:       strings.TrimSuffix(path.Base(data.Name), path.Ext(data.Name)),
		DocumentKey: key,
		MimeType:    normalizeContentType(data.ContentType),
	})
	if err != nil {
		return err
	}

	job, err := t.starter.Start(ctx, data.Metadata[object.MetadataUserID], jobs.TypeTranscript, input)
	if err != nil {
		fields["error"] = err.Error()
		telemetry.Error("upload.trigger.start_failed", fields)
		// A failed dispatch already recorded the job as failed; retrying would duplicate it.
		if errors.Is(err, jobs.ErrInvalidInput) || errors.Is(err, jobs.ErrDispatchFailed) {
			return nil
		}
		return fmt.Errorf("start transcript job: %w", err)
	}

	fields["job_id"] = job.ID
	fields["user_id"] = job.UserID
	fields["status"] = job.Status
	telemetry.Info("upload.trigger.job_started", fields)
	return nil
}

func (t *uploadTrigger) skipReason(data storageObjectData) string {
	switch {
	case t.keys == nil:
		return "object store is not gcs"
	case strings.TrimSpace(data.Name) == "":
		return "missing object name"
	case strings.HasSuffix(data.Name, util.ExtractedTextSuffix):
		return "derived extract"
	case strings.TrimSpace(data.Metadata[object.MetadataUserID]) == "":
		return "missing uploader"
	case !transcriptTypes[normalizeContentType(data.ContentType)]:
		return "not a transcript document"
	}
	return ""
}

func normalizeContentType(contentType string) string {
	base, _, _ := strings.Cut(contentType, ";")
	return strings.ToLower(strings.TrimSpace(base))
}
