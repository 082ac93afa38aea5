package llm

import (
	"context"
	"errors"
)

// Client abstracts LLM providers. Complete returns the model's raw text answer.
type Client interface {
	Complete(ctx context.Context, req Request) (string, error)
}

// Request is a single-turn completion request.
type Request struct {
	System string
	Prompt string
	Images []Image
	// JSON asks the provider to constrain its answer to a JSON object where supported.
	JSON bool
}

// Image is an inline image attached to a request.
type Image struct {
	MIMEType string
	Data     []byte
}

// ErrNotImplemented is returned by the placeholder client.
var ErrNotImplemented = errors.New("LLM not implemented")

// PlaceholderClient is used when no provider is configured.
type PlaceholderClient struct{}

// Complete returns ErrNotImplemented.
func (PlaceholderClient) Complete(ctx context.Context, req Request) (string, error) {
	_ = ctx
	_ = req
	return "", ErrNotImplemented
}
