package jobs

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
)

// ValidateInput checks the input for jobType and returns it re-encoded in canonical form.
func ValidateInput(jobType string, input json.RawMessage) (json.RawMessage, error) {
	if len(bytes.TrimSpace(input)) == 0 {
		return nil, fmt.Errorf("%w: input is required", ErrInvalidInput)
	}
	switch jobType {
	case TypeTranscript:
		var in TranscriptInput
		if err := decodeStrict(input, &in); err != nil {
			return nil, err
		}
		in.Title = strings.TrimSpace(in.Title)
		in.Transcript = strings.TrimSpace(in.Transcript)
		in.DocumentKey = strings.TrimSpace(in.DocumentKey)
		in.MimeType = strings.TrimSpace(in.MimeType)
		if in.Transcript == "" && in.DocumentKey == "" {
			return nil, fmt.Errorf("%w: transcript or documentKey is required", ErrInvalidInput)
		}
		if len(in.Transcript) > MaxTranscriptLength {
			return nil, fmt.Errorf("%w: transcript exceeds %d characters", ErrInvalidInput, MaxTranscriptLength)
		}
		return json.Marshal(in)
	case TypeDiagram:
		var in DiagramInput
		if err := decodeStrict(input, &in); err != nil {
			return nil, err
		}
		keys := make([]string, 0, len(in.ImageKeys))
		for _, key := range in.ImageKeys {
			key = strings.TrimSpace(key)
			if key == "" {
				return nil, fmt.Errorf("%w: imageKeys must not contain empty keys", ErrInvalidInput)
			}
			keys = append(keys, key)
		}
		if len(keys) == 0 || len(keys) > MaxImages {
			return nil, fmt.Errorf("%w: between 1 and %d imageKeys are required", ErrInvalidInput, MaxImages)
		}
		in.ImageKeys = keys
		in.Notes = strings.TrimSpace(in.Notes)
		return json.Marshal(in)
	default:
		return nil, fmt.Errorf("%w: unknown job type %q", ErrInvalidInput, jobType)
	}
}

func decodeStrict(input json.RawMessage, v any) error {
	dec := json.NewDecoder(bytes.NewReader(input))
	dec.DisallowUnknownFields()
	if err := dec.Decode(v); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalidInput, err)
	}
	return nil
}
