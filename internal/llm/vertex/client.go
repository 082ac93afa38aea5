package vertex

import (
	"context"
	"fmt"
	"strings"

	"cloud.google.com/go/vertexai/genai"

	"journey-backend/internal/llm"
)

// Client implements llm.Client on Gemini models served by Vertex AI.
type Client struct {
	base  *genai.Client
	model string
}

// NewClient connects to Vertex AI in the given project and region.
func NewClient(ctx context.Context, projectID, region, model string) (*Client, error) {
	if strings.TrimSpace(projectID) == "" {
		return nil, fmt.Errorf("GCP_PROJECT_ID is required for vertex")
	}
	if strings.TrimSpace(region) == "" {
		region = "us-central1"
	}
	if strings.TrimSpace(model) == "" {
		model = "gemini-2.5-flash"
	}
	base, err := genai.NewClient(ctx, projectID, region)
	if err != nil {
		return nil, fmt.Errorf("genai.NewClient: %w", err)
	}
	return &Client{base: base, model: model}, nil
}

// Close releases the underlying gRPC connection.
func (c *Client) Close() error {
	return c.base.Close()
}

func (c *Client) Complete(ctx context.Context, req llm.Request) (string, error) {
	model := c.base.GenerativeModel(c.model)
	if strings.TrimSpace(req.System) != "" {
		model.SystemInstruction = &genai.Content{
			Parts: []genai.Part{genai.Text(req.System)},
		}
	}
	model.GenerationConfig = genai.GenerationConfig{
		Temperature: genai.Ptr[float32](0),
	}
	if req.JSON {
		model.GenerationConfig.ResponseMIMEType = "application/json"
	}

	resp, err := model.GenerateContent(ctx, buildParts(req)...)
	if err != nil {
		return "", fmt.Errorf("vertex generate: %w", err)
	}
	out := extractText(resp)
	if out == "" {
		return "", fmt.Errorf("vertex response empty content")
	}
	return out, nil
}

func buildParts(req llm.Request) []genai.Part {
	parts := make([]genai.Part, 0, len(req.Images)+1)
	parts = append(parts, genai.Text(req.Prompt))
	for _, img := range req.Images {
		mimeType := strings.TrimSpace(img.MIMEType)
		if mimeType == "" {
			mimeType = "image/png"
		}
		parts = append(parts, genai.Blob{MIMEType: mimeType, Data: img.Data})
	}
	return parts
}

// extractText concatenates the text parts of the first candidate.
func extractText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if txt, ok := part.(genai.Text); ok {
			b.WriteString(string(txt))
		}
	}
	return strings.TrimSpace(b.String())
}

var _ llm.Client = (*Client)(nil)
