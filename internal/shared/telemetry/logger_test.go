package telemetry

import (
	"bytes"
	"encoding/json"
	"errors"
	"io"
	"os"
	"strings"
	"testing"
)

func captureStdout(t *testing.T, fn func()) string {
	t.Helper()
	orig := os.Stdout
	r, w, err := os.Pipe()
	if err != nil {
		t.Fatalf("pipe: %v", err)
	}
	os.Stdout = w
	defer func() { os.Stdout = orig }()

	fn()

	_ = w.Close()
	var buf bytes.Buffer
	if _, err := io.Copy(&buf, r); err != nil {
		t.Fatalf("read output: %v", err)
	}
	return strings.TrimSpace(buf.String())
}

func TestReservedKeysCannotBeOverridden(t *testing.T) {
	out := captureStdout(t, func() {
		Error("job.failed", map[string]any{"msg": "spoofed", "level": "info", "error": errors.New("boom")})
	})

	var payload map[string]any
	if err := json.Unmarshal([]byte(out), &payload); err != nil {
		t.Fatalf("decode: %v", err)
	}
	if payload["msg"] != "job.failed" {
		t.Fatalf("expected msg job.failed, got %v", payload["msg"])
	}
	if payload["level"] != "error" {
		t.Fatalf("expected level error, got %v", payload["level"])
	}
	if payload["error"] != "boom" {
		t.Fatalf("expected error string boom, got %v", payload["error"])
	}
}

func TestFieldsMergesLaterWins(t *testing.T) {
	got := Fields(map[string]any{"a": 1, "b": 1}, map[string]any{"b": 2})
	if got["a"] != 1 || got["b"] != 2 {
		t.Fatalf("unexpected merge result: %#v", got)
	}
}
