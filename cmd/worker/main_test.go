package main

import (
	"context"
	"errors"
	"fmt"
	"testing"

	"github.com/aws/aws-sdk-go-v2/aws"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	sqstypes "github.com/aws/aws-sdk-go-v2/service/sqs/types"

	"journey-backend/internal/jobs"
	"journey-backend/internal/queue"
)

type fakeSQS struct {
	deleted []string
}

func (f *fakeSQS) ReceiveMessage(ctx context.Context, params *sqs.ReceiveMessageInput, optFns ...func(*sqs.Options)) (*sqs.ReceiveMessageOutput, error) {
	return &sqs.ReceiveMessageOutput{}, nil
}

func (f *fakeSQS) DeleteMessage(ctx context.Context, params *sqs.DeleteMessageInput, optFns ...func(*sqs.Options)) (*sqs.DeleteMessageOutput, error) {
	f.deleted = append(f.deleted, aws.ToString(params.ReceiptHandle))
	return &sqs.DeleteMessageOutput{}, nil
}

type fakeProcessor struct {
	err  error
	seen []string
}

func (f *fakeProcessor) Process(ctx context.Context, jobID string) error {
	f.seen = append(f.seen, jobID)
	return f.err
}

func sqsMessage(id, body string) sqstypes.Message {
	return sqstypes.Message{
		MessageId:     aws.String(id),
		ReceiptHandle: aws.String("receipt-" + id),
		Body:          aws.String(body),
		Attributes:    map[string]string{"ApproximateReceiveCount": "1"},
	}
}

func TestWorkerDeletesMessageOnSuccess(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{}
	body, _ := queue.EncodeMessage(queue.Message{JobID: "job-1", RequestID: "req-1", Version: 1})

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("m1", string(body)))

	if len(client.deleted) != 1 || client.deleted[0] != "receipt-m1" {
		t.Fatalf("expected delete of m1, got %v", client.deleted)
	}
	if len(proc.seen) != 1 || proc.seen[0] != "job-1" {
		t.Fatalf("expected job-1 processed, got %v", proc.seen)
	}
}

func TestWorkerKeepsMessageOnFailure(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: errors.New("database unavailable")}
	body, _ := queue.EncodeMessage(queue.Message{JobID: "job-2", Version: 1})

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("m2", string(body)))

	if len(client.deleted) != 0 {
		t.Fatalf("expected no delete, got %d", len(client.deleted))
	}
}

func TestWorkerDropsUnrecoverableMessages(t *testing.T) {
	tests := map[string]string{
		"invalid json": "{bad-json",
		"empty body":   "",
		"no job id":    `{"requestId":"req-3"}`,
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			client := &fakeSQS{}
			proc := &fakeProcessor{}
			handleMessage(context.Background(), client, "queue", proc, sqsMessage("m3", body))
			if len(client.deleted) != 1 {
				t.Fatalf("expected delete, got %d", len(client.deleted))
			}
			if len(proc.seen) != 0 {
				t.Fatalf("processor should not run")
			}
		})
	}
}

func TestWorkerDropsMessagesForMissingJobs(t *testing.T) {
	client := &fakeSQS{}
	proc := &fakeProcessor{err: fmt.Errorf("job lookup id=job-gone: %w", jobs.ErrNotFound)}
	body, _ := queue.EncodeMessage(queue.Message{JobID: "job-gone", Version: 1})

	handleMessage(context.Background(), client, "queue", proc, sqsMessage("m4", string(body)))

	if len(client.deleted) != 1 || client.deleted[0] != "receipt-m4" {
		t.Fatalf("expected delete of m4, got %v", client.deleted)
	}
}

func TestReceiveCount(t *testing.T) {
	if got := receiveCount(sqsMessage("m", "")); got != 1 {
		t.Fatalf("expected 1, got %d", got)
	}
	if got := receiveCount(sqstypes.Message{}); got != 0 {
		t.Fatalf("expected 0, got %d", got)
	}
}
