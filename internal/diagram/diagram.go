package diagram

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"regexp"
	"strings"
)

var (
	// ErrNoJSON is returned when an LLM answer contains no parseable JSON object.
	ErrNoJSON = errors.New("no JSON object found in response")
	// ErrInvalidDiagram is returned when the JSON does not look like a diagram.
	ErrInvalidDiagram = errors.New("invalid diagram")
)

// Diagram is a journey diagram as produced by the import pipelines.
type Diagram struct {
	Nodes []Node `json:"nodes"`
	Edges []Edge `json:"edges"`
}

type Node struct {
	ID    string          `json:"id"`
	Type  string          `json:"type,omitempty"`
	Label string          `json:"label"`
	Data  json.RawMessage `json:"data,omitempty"`
}

type Edge struct {
	ID     string `json:"id,omitempty"`
	Source string `json:"source"`
	Target string `json:"target"`
	Label  string `json:"label,omitempty"`
}

var fencedBlock = regexp.MustCompile("(?s)```(?:json|JSON)?\\s*\\n?(.*?)```")

// ExtractJSON pulls a JSON object out of free text. A fenced code block wins; otherwise the span
// from the first '{' to the last '}' is used.
func ExtractJSON(text string) (json.RawMessage, error) {
	for _, m := range fencedBlock.FindAllStringSubmatch(text, -1) {
		candidate := strings.TrimSpace(m[1])
		if candidate != "" && json.Valid([]byte(candidate)) {
			return json.RawMessage(candidate), nil
		}
	}

	start := strings.Index(text, "{")
	end := strings.LastIndex(text, "}")
	if start < 0 || end <= start {
		return nil, ErrNoJSON
	}
	candidate := text[start : end+1]
	if !json.Valid([]byte(candidate)) {
		return nil, ErrNoJSON
	}
	return json.RawMessage(candidate), nil
}

type rawDiagram struct {
	Nodes json.RawMessage `json:"nodes"`
	Edges json.RawMessage `json:"edges"`
}

// Parse shallow-validates a diagram: nodes must be a non-empty array and edges, when present,
// an array. Nodes without an id are numbered node-1, node-2, ...
func Parse(raw json.RawMessage) (Diagram, error) {
	var shape rawDiagram
	if err := json.Unmarshal(raw, &shape); err != nil {
		return Diagram{}, fmt.Errorf("%w: %v", ErrInvalidDiagram, err)
	}
	if !isArray(shape.Nodes) {
		return Diagram{}, fmt.Errorf("%w: nodes must be an array", ErrInvalidDiagram)
	}

	var out Diagram
	if err := json.Unmarshal(shape.Nodes, &out.Nodes); err != nil {
		return Diagram{}, fmt.Errorf("%w: nodes: %v", ErrInvalidDiagram, err)
	}
	if len(out.Nodes) == 0 {
		return Diagram{}, fmt.Errorf("%w: nodes must not be empty", ErrInvalidDiagram)
	}

	if len(shape.Edges) > 0 && !bytes.Equal(bytes.TrimSpace(shape.Edges), []byte("null")) {
		if !isArray(shape.Edges) {
			return Diagram{}, fmt.Errorf("%w: edges must be an array", ErrInvalidDiagram)
		}
		if err := json.Unmarshal(shape.Edges, &out.Edges); err != nil {
			return Diagram{}, fmt.Errorf("%w: edges: %v", ErrInvalidDiagram, err)
		}
	}
	if out.Edges == nil {
		out.Edges = []Edge{}
	}

	for i := range out.Nodes {
		if strings.TrimSpace(out.Nodes[i].ID) == "" {
			out.Nodes[i].ID = fmt.Sprintf("node-%d", i+1)
		}
	}
	for i := range out.Edges {
		if strings.TrimSpace(out.Edges[i].ID) == "" {
			out.Edges[i].ID = fmt.Sprintf("edge-%d", i+1)
		}
	}
	return out, nil
}

// FromText runs ExtractJSON and Parse.
func FromText(text string) (Diagram, error) {
	raw, err := ExtractJSON(text)
	if err != nil {
		return Diagram{}, err
	}
	return Parse(raw)
}

func isArray(raw json.RawMessage) bool {
	trimmed := bytes.TrimSpace(raw)
	return len(trimmed) > 0 && trimmed[0] == '['
}
