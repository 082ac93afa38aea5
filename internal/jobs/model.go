package jobs

import (
	"encoding/json"
	"time"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"

	TypeTranscript = "transcript"
	TypeDiagram    = "diagram"
)

// Job is one AI import run. It is created in processing, mutated exactly once into completed or
// failed, and read-only afterwards.
type Job struct {
	ID           string
	UserID       string
	JobType      string
	Status       string
	InputData    json.RawMessage
	ResultData   json.RawMessage
	ErrorCode    string
	ErrorMessage string
	CreatedAt    time.Time
	CompletedAt  *time.Time
}

// TranscriptInput asks for a diagram built from an interview transcript. Either Transcript or
// DocumentKey (an uploaded pdf, docx or text file) is required.
type TranscriptInput struct {
	Title       string `json:"title,omitempty"`
	Transcript  string `json:"transcript,omitempty"`
	DocumentKey string `json:"documentKey,omitempty"`
	MimeType    string `json:"mimeType,omitempty"`
}

// DiagramInput asks for a diagram built from uploaded screenshots.
type DiagramInput struct {
	ImageKeys []string `json:"imageKeys"`
	Notes     string   `json:"notes,omitempty"`
}
