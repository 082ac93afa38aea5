package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-lambda-go/events"

	"journey-backend/internal/bootstrap"
	"journey-backend/internal/jobs"
)

type stubProcessor struct {
	errs map[string]error
}

func (p stubProcessor) Process(ctx context.Context, jobID string) error {
	return p.errs[jobID]
}

func TestHandlerReportsOnlyRetryableFailures(t *testing.T) {
	initOnce.Do(func() {})
	app = &bootstrap.App{JobProcessor: stubProcessor{errs: map[string]error{
		"job-db":   errors.New("database unavailable"),
		"job-gone": fmt.Errorf("job lookup id=job-gone: %w", jobs.ErrNotFound),
	}}}
	t.Cleanup(func() { app = nil })

	resp, err := handler(context.Background(), events.SQSEvent{Records: []events.SQSMessage{
		{MessageId: "ok", Body: `{"jobId":"job-ok","version":1}`},
		{MessageId: "db", Body: `{"jobId":"job-db","version":1}`},
		{MessageId: "gone", Body: `{"jobId":"job-gone","version":1}`},
		{MessageId: "bad", Body: `{bad-json`},
	}})
	if err != nil {
		t.Fatalf("handler: %v", err)
	}
	if len(resp.BatchItemFailures) != 1 || resp.BatchItemFailures[0].ItemIdentifier != "db" {
		t.Fatalf("expected only the transient failure to be redelivered, got %+v", resp.BatchItemFailures)
	}
}
