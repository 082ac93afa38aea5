package health

import (
	"context"
	"errors"
	"testing"
)

func TestStatusWithoutChecksIsOK(t *testing.T) {
	payload, ok := NewService().Status(context.Background())
	if !ok || payload["ok"] != true {
		t.Fatalf("expected ok payload, got %v", payload)
	}
	if _, has := payload["dependencies"]; has {
		t.Fatalf("expected no dependencies key, got %v", payload)
	}
}

func TestStatusReportsFailingDependency(t *testing.T) {
	svc := NewService()
	svc.Register("db", CheckFunc(func(ctx context.Context) error { return errors.New("connection refused") }))
	svc.Register("queue", CheckFunc(func(ctx context.Context) error { return nil }))
	svc.Register("ignored", nil)

	payload, ok := svc.Status(context.Background())
	if ok {
		t.Fatal("expected not ok")
	}
	deps := payload["dependencies"].(map[string]string)
	if deps["db"] != "connection refused" || deps["queue"] != "ok" {
		t.Fatalf("unexpected dependencies %v", deps)
	}
	if _, has := deps["ignored"]; has {
		t.Fatal("nil checker should not be registered")
	}
}
