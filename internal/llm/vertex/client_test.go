package vertex

import (
	"testing"

	"cloud.google.com/go/vertexai/genai"

	"journey-backend/internal/llm"
)

func TestExtractTextJoinsTextParts(t *testing.T) {
	resp := &genai.GenerateContentResponse{
		Candidates: []*genai.Candidate{{
			Content: &genai.Content{Parts: []genai.Part{
				genai.Text(`{"nodes":`),
				genai.Blob{MIMEType: "image/png", Data: []byte{1}},
				genai.Text(`[]} `),
			}},
		}},
	}
	if got := extractText(resp); got != `{"nodes":[]}` {
		t.Fatalf("unexpected text %q", got)
	}
}

func TestExtractTextEmpty(t *testing.T) {
	if got := extractText(nil); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
	if got := extractText(&genai.GenerateContentResponse{}); got != "" {
		t.Fatalf("expected empty, got %q", got)
	}
}

func TestBuildPartsDefaultsImageMIME(t *testing.T) {
	parts := buildParts(llm.Request{
		Prompt: "describe",
		Images: []llm.Image{{Data: []byte("x")}, {MIMEType: "image/webp", Data: []byte("y")}},
	})
	if len(parts) != 3 {
		t.Fatalf("expected 3 parts, got %d", len(parts))
	}
	if txt, ok := parts[0].(genai.Text); !ok || string(txt) != "describe" {
		t.Fatalf("expected prompt text first, got %#v", parts[0])
	}
	if blob, ok := parts[1].(genai.Blob); !ok || blob.MIMEType != "image/png" {
		t.Fatalf("expected png default, got %#v", parts[1])
	}
	if blob, ok := parts[2].(genai.Blob); !ok || blob.MIMEType != "image/webp" {
		t.Fatalf("expected webp, got %#v", parts[2])
	}
}
