package lawfirms

import "time"

const (
	StructureCentralised   = "centralised"
	StructureDecentralised = "decentralised"

	StatusActive = "active"

	ColumnText    = "text"
	ColumnNumber  = "number"
	ColumnBoolean = "boolean"
	ColumnDate    = "date"
	ColumnSelect  = "select"

	// Top4Key is the fixed top_4 flag as it appears in custom value blobs.
	Top4Key = "top_4"
)

// reservedKeys are fixed firm fields that custom columns may not shadow.
var reservedKeys = map[string]struct{}{
	"name":      {},
	"structure": {},
	"status":    {},
	Top4Key:     {},
}

// IsReservedKey reports whether key collides with a fixed firm field.
func IsReservedKey(key string) bool {
	_, ok := reservedKeys[key]
	return ok
}

// LawFirm is a firm under research within a workspace.
type LawFirm struct {
	ID           string
	WorkspaceID  string
	Name         string
	Structure    string
	Status       string
	Top4         bool
	CustomValues map[string]any
	CreatedAt    time.Time
	UpdatedAt    time.Time
}

// Column is a workspace-defined custom attribute of law firms.
type Column struct {
	ID          string
	WorkspaceID string
	Key         string
	Name        string
	Type        string
	Options     []string
	Position    int
	CreatedAt   time.Time
}

// FirmInput carries the fields of a new firm.
type FirmInput struct {
	Name      string `json:"name"`
	Structure string `json:"structure"`
	Status    string `json:"status"`
	Top4      bool   `json:"top4"`
}

// FirmPatch updates the fixed fields that are set.
type FirmPatch struct {
	Name      *string `json:"name"`
	Structure *string `json:"structure"`
	Status    *string `json:"status"`
	Top4      *bool   `json:"top4"`
}

// ColumnInput carries the fields of a new column. Key is derived from Name when empty.
type ColumnInput struct {
	Key     string   `json:"key"`
	Name    string   `json:"name"`
	Type    string   `json:"type"`
	Options []string `json:"options"`
}

// ColumnPatch updates the name and, when non-nil, the options of a column.
type ColumnPatch struct {
	Name    *string  `json:"name"`
	Options []string `json:"options"`
}
