package openai

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"journey-backend/internal/llm"
)

type capturedRequests struct {
	mu     sync.Mutex
	bodies []map[string]any
}

func (c *capturedRequests) add(body map[string]any) int {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.bodies = append(c.bodies, body)
	return len(c.bodies)
}

func newTestServer(t *testing.T, captured *capturedRequests, respond func(call int, w http.ResponseWriter)) {
	t.Helper()
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		defer r.Body.Close()
		var payload map[string]any
		if err := json.NewDecoder(r.Body).Decode(&payload); err != nil {
			t.Errorf("decode request: %v", err)
		}
		call := captured.add(payload)
		w.Header().Set("Content-Type", "application/json")
		respond(call, w)
	}))
	t.Cleanup(server.Close)

	oldURL := apiURL
	apiURL = server.URL
	t.Cleanup(func() { apiURL = oldURL })
}

func TestCompleteSendsImagesAsDataURLs(t *testing.T) {
	captured := &capturedRequests{}
	newTestServer(t, captured, func(call int, w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{\"nodes\":[]}"}}]}`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	out, err := client.Complete(context.Background(), llm.Request{
		System: "system",
		Prompt: "describe",
		Images: []llm.Image{{MIMEType: "image/png", Data: []byte("png-bytes")}},
		JSON:   true,
	})
	if err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if out != `{"nodes":[]}` {
		t.Fatalf("unexpected output %q", out)
	}

	body := captured.bodies[0]
	if rf, ok := body["response_format"].(map[string]any); !ok || rf["type"] != "json_object" {
		t.Fatalf("expected json_object response format, got %v", body["response_format"])
	}
	messages := body["messages"].([]any)
	if len(messages) != 2 {
		t.Fatalf("expected system and user messages, got %d", len(messages))
	}
	user := messages[1].(map[string]any)
	parts := user["content"].([]any)
	if len(parts) != 2 {
		t.Fatalf("expected text and image parts, got %d", len(parts))
	}
	img := parts[1].(map[string]any)["image_url"].(map[string]any)
	if !strings.HasPrefix(img["url"].(string), "data:image/png;base64,") {
		t.Fatalf("expected data url, got %v", img["url"])
	}
}

func TestCompleteOmitsTemperatureForDenylist(t *testing.T) {
	captured := &capturedRequests{}
	newTestServer(t, captured, func(call int, w http.ResponseWriter) {
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})
	t.Setenv("LLM_NO_TEMP0_MODELS", "o3-mini")

	client, err := NewClient("test-key", "o3-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "p"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if _, ok := captured.bodies[0]["temperature"]; ok {
		t.Fatalf("expected temperature to be omitted for denylisted model")
	}
}

func TestCompleteRetriesWithoutTemperature(t *testing.T) {
	captured := &capturedRequests{}
	newTestServer(t, captured, func(call int, w http.ResponseWriter) {
		if call == 1 {
			w.WriteHeader(http.StatusBadRequest)
			_, _ = w.Write([]byte(`{"error":{"message":"Unsupported value: 'temperature' does not support 0 with this model.","type":"invalid_request_error"}}`))
			return
		}
		_, _ = w.Write([]byte(`{"choices":[{"message":{"content":"{}"}}]}`))
	})
	t.Setenv("LLM_NO_TEMP0_MODELS", "")

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := client.Complete(context.Background(), llm.Request{Prompt: "p"}); err != nil {
		t.Fatalf("Complete: %v", err)
	}
	if len(captured.bodies) != 2 {
		t.Fatalf("expected 2 requests, got %d", len(captured.bodies))
	}
	if _, ok := captured.bodies[0]["temperature"]; !ok {
		t.Fatalf("expected first request to include temperature")
	}
	if _, ok := captured.bodies[1]["temperature"]; ok {
		t.Fatalf("expected retry request to omit temperature")
	}
}

func TestCompleteReportsServerErrorsAsRetryable(t *testing.T) {
	captured := &capturedRequests{}
	newTestServer(t, captured, func(call int, w http.ResponseWriter) {
		w.WriteHeader(http.StatusBadGateway)
		_, _ = w.Write([]byte(`upstream`))
	})

	client, err := NewClient("test-key", "gpt-4o-mini")
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	_, err = client.Complete(context.Background(), llm.Request{Prompt: "p"})
	if err == nil {
		t.Fatal("expected error")
	}
	if !llm.ShouldRetry(err) {
		t.Fatalf("expected 502 to be retryable, got %v", err)
	}
}

func TestSupportsZeroTemperature(t *testing.T) {
	t.Setenv("LLM_NO_TEMP0_MODELS", "")
	tests := []struct {
		model string
		want  bool
	}{
		{model: "gpt-5", want: false},
		{model: " GPT-5-mini ", want: false},
		{model: "gpt-4o", want: true},
	}
	for _, tt := range tests {
		if got := supportsZeroTemperature(tt.model); got != tt.want {
			t.Fatalf("supportsZeroTemperature(%q) = %v, want %v", tt.model, got, tt.want)
		}
	}
}

func TestNewClientRequiresKeyAndModel(t *testing.T) {
	if _, err := NewClient("", "gpt-4o"); err == nil {
		t.Fatal("expected missing key error")
	}
	if _, err := NewClient("key", " "); err == nil {
		t.Fatal("expected missing model error")
	}
}
