package convert

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"journey-backend/internal/diagram"
	"journey-backend/internal/examples"
	"journey-backend/internal/extract"
	"journey-backend/internal/llm"
	"journey-backend/internal/shared/metrics"
	"journey-backend/internal/shared/storage/object"
	"journey-backend/internal/shared/telemetry"
)

const (
	MaxInstructionLength = 4_000
	MaxTranscriptLength  = 200_000
)

var (
	ErrInvalidInput   = errors.New("invalid input")
	ErrLLMUnavailable = errors.New("llm not configured")
	ErrLLMOutput      = errors.New("llm output invalid")
)

// Service runs the synchronous LLM conversions.
type Service struct {
	LLM   llm.Client
	Store object.ObjectStore
}

// ExtractResult splits the extracted examples into importable items and rejects.
type ExtractResult struct {
	Valid   []examples.Input       `json:"valid"`
	Invalid []examples.InvalidItem `json:"invalid"`
}

func (s *Service) client() (llm.Client, error) {
	if s.LLM == nil {
		return nil, ErrLLMUnavailable
	}
	return llm.WithRetry(s.LLM, func(err error) {
		metrics.IncLLMRetries()
		telemetry.Warn("convert.llm_retry", map[string]any{"error": err.Error()})
	}), nil
}

// EditDiagram applies a natural-language instruction to a diagram and returns the full result.
func (s *Service) EditDiagram(ctx context.Context, current diagram.Diagram, instruction string) (diagram.Diagram, error) {
	instruction = strings.TrimSpace(instruction)
	if instruction == "" {
		return diagram.Diagram{}, fmt.Errorf("%w: instruction is required", ErrInvalidInput)
	}
	if len(instruction) > MaxInstructionLength {
		return diagram.Diagram{}, fmt.Errorf("%w: instruction exceeds %d characters", ErrInvalidInput, MaxInstructionLength)
	}
	if len(current.Nodes) == 0 {
		return diagram.Diagram{}, fmt.Errorf("%w: diagram has no nodes", ErrInvalidInput)
	}

	client, err := s.client()
	if err != nil {
		return diagram.Diagram{}, err
	}
	encoded, err := json.Marshal(current)
	if err != nil {
		return diagram.Diagram{}, err
	}
	prompt, err := llm.LoadPrompt(llm.PromptEditDiagram)
	if err != nil {
		return diagram.Diagram{}, err
	}

	text, err := client.Complete(ctx, prompt.Request(map[string]string{
		"instruction": instruction,
		"diagram":     string(encoded),
	}))
	if err != nil {
		return diagram.Diagram{}, mapLLMError(err)
	}
	edited, err := diagram.FromText(text)
	if err != nil {
		return diagram.Diagram{}, fmt.Errorf("%w: %v", ErrLLMOutput, err)
	}
	return edited, nil
}

// ExtractExamples pulls research examples out of a transcript. The transcript is given inline or
// as the key of an uploaded document. projectID, if set, is stamped on every item.
func (s *Service) ExtractExamples(ctx context.Context, transcript, documentKey, projectID string) (ExtractResult, error) {
	text, err := s.transcriptText(ctx, transcript, documentKey)
	if err != nil {
		return ExtractResult{}, err
	}

	client, err := s.client()
	if err != nil {
		return ExtractResult{}, err
	}
	prompt, err := llm.LoadPrompt(llm.PromptExtractExamples)
	if err != nil {
		return ExtractResult{}, err
	}
	out, err := client.Complete(ctx, prompt.Request(map[string]string{"transcript": text}))
	if err != nil {
		return ExtractResult{}, mapLLMError(err)
	}

	items, err := parseExamples(out)
	if err != nil {
		return ExtractResult{}, err
	}
	projectID = strings.TrimSpace(projectID)
	for i := range items {
		items[i].ProjectID = projectID
	}
	valid, invalid := examples.ValidateBulk(items)
	telemetry.Info("convert.extract_examples", map[string]any{
		"extracted": len(items),
		"valid":     len(valid),
		"invalid":   len(invalid),
	})
	return ExtractResult{Valid: valid, Invalid: invalid}, nil
}

func (s *Service) transcriptText(ctx context.Context, transcript, documentKey string) (string, error) {
	text := strings.TrimSpace(transcript)
	documentKey = strings.TrimSpace(documentKey)
	if text == "" && documentKey != "" {
		if s.Store == nil {
			return "", fmt.Errorf("%w: document uploads are not configured", ErrInvalidInput)
		}
		extracted, err := extract.ExtractText(ctx, s.Store, documentKey, "")
		switch {
		case errors.Is(err, object.ErrNotFound):
			return "", fmt.Errorf("%w: document not found", ErrInvalidInput)
		case errors.Is(err, extract.ErrUnsupportedType), errors.Is(err, extract.ErrTooManyPages),
			errors.Is(err, extract.ErrEmptyText), errors.Is(err, object.ErrTooLarge):
			return "", fmt.Errorf("%w: %v", ErrInvalidInput, err)
		case err != nil:
			return "", err
		}
		text = extracted
	}
	if text == "" {
		return "", fmt.Errorf("%w: transcript or documentKey is required", ErrInvalidInput)
	}
	if len(text) > MaxTranscriptLength {
		return "", fmt.Errorf("%w: transcript exceeds %d characters", ErrInvalidInput, MaxTranscriptLength)
	}
	return text, nil
}

type extractedExample struct {
	Actor      string `json:"actor"`
	Goal       string `json:"goal"`
	EntryPoint string `json:"entry_point"`
	Actions    string `json:"actions"`
	Error      string `json:"error"`
	Outcome    string `json:"outcome"`
}

func parseExamples(text string) ([]examples.Input, error) {
	raw, err := diagram.ExtractJSON(text)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMOutput, err)
	}
	var payload struct {
		Examples []extractedExample `json:"examples"`
	}
	if err := json.Unmarshal(raw, &payload); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrLLMOutput, err)
	}
	if payload.Examples == nil {
		return nil, fmt.Errorf("%w: examples array missing", ErrLLMOutput)
	}
	out := make([]examples.Input, 0, len(payload.Examples))
	for _, ex := range payload.Examples {
		out = append(out, examples.Input{
			Actor:      ex.Actor,
			Goal:       ex.Goal,
			EntryPoint: ex.EntryPoint,
			Actions:    ex.Actions,
			Error:      ex.Error,
			Outcome:    ex.Outcome,
		})
	}
	return out, nil
}

func mapLLMError(err error) error {
	if errors.Is(err, llm.ErrNotImplemented) {
		return fmt.Errorf("%w: %v", ErrLLMUnavailable, err)
	}
	return fmt.Errorf("llm complete: %w", err)
}
