package examples

import "time"

// Example is a structured actor/goal/action/outcome research record.
type Example struct {
	ID         string
	ShortID    string
	ProjectID  string
	Actor      string
	Goal       string
	EntryPoint string
	Actions    string
	Error      string
	Outcome    string
	CreatedBy  string
	CreatedAt  time.Time
	UpdatedAt  time.Time
}

// Input carries the editable fields of an example.
type Input struct {
	ProjectID  string `json:"projectId"`
	Actor      string `json:"actor"`
	Goal       string `json:"goal"`
	EntryPoint string `json:"entryPoint"`
	Actions    string `json:"actions"`
	Error      string `json:"error"`
	Outcome    string `json:"outcome"`
}

// InvalidItem describes a bulk item that failed validation.
type InvalidItem struct {
	Index   int      `json:"index"`
	Item    Input    `json:"item"`
	Reason  string   `json:"reason"`
	Missing []string `json:"missing,omitempty"`
}

// BulkResult reports the outcome of a bulk import.
type BulkResult struct {
	Created []Example
	Invalid []InvalidItem
}

const (
	ReasonMissingFields = "missing_fields"
	ReasonDuplicate     = "duplicate"
)
