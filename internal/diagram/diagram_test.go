package diagram

import (
	"errors"
	"testing"
)

func TestExtractJSON(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{
			name: "fenced json block",
			in:   "Here you go:\n```json\n{\"nodes\":[{\"label\":\"a\"}]}\n```\nThanks",
			want: `{"nodes":[{"label":"a"}]}`,
		},
		{
			name: "bare fence",
			in:   "```\n{\"a\":1}\n```",
			want: `{"a":1}`,
		},
		{
			name: "brace span",
			in:   "Sure! {\"a\":{\"b\":2}} hope that helps",
			want: `{"a":{"b":2}}`,
		},
		{
			name: "fence preferred over surrounding braces",
			in:   "{not json} ```json\n{\"x\":true}\n```",
			want: `{"x":true}`,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := ExtractJSON(tt.in)
			if err != nil {
				t.Fatalf("ExtractJSON: %v", err)
			}
			if string(got) != tt.want {
				t.Fatalf("got %s, want %s", got, tt.want)
			}
		})
	}
}

func TestExtractJSONErrors(t *testing.T) {
	for _, in := range []string{"", "no json here", "{\"truncated\": [1, 2", "} backwards {"} {
		if _, err := ExtractJSON(in); !errors.Is(err, ErrNoJSON) {
			t.Fatalf("ExtractJSON(%q) expected ErrNoJSON, got %v", in, err)
		}
	}
}

func TestParseDefaultsEdgesAndIDs(t *testing.T) {
	d, err := Parse([]byte(`{"nodes":[{"label":"Start"},{"id":"b","label":"End"}]}`))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if d.Edges == nil || len(d.Edges) != 0 {
		t.Fatalf("expected empty edges, got %#v", d.Edges)
	}
	if d.Nodes[0].ID != "node-1" || d.Nodes[1].ID != "b" {
		t.Fatalf("unexpected ids %q %q", d.Nodes[0].ID, d.Nodes[1].ID)
	}
}

func TestParseRejects(t *testing.T) {
	for _, in := range []string{
		`{"nodes":[]}`,
		`{"nodes":{}}`,
		`{"edges":[]}`,
		`{"nodes":[{"label":"a"}],"edges":"x"}`,
		`[]`,
	} {
		if _, err := Parse([]byte(in)); !errors.Is(err, ErrInvalidDiagram) {
			t.Fatalf("Parse(%s) expected ErrInvalidDiagram, got %v", in, err)
		}
	}
}

func TestFromText(t *testing.T) {
	d, err := FromText("```json\n{\"nodes\":[{\"id\":\"n\",\"label\":\"x\"}],\"edges\":[{\"source\":\"n\",\"target\":\"n\"}]}\n```")
	if err != nil {
		t.Fatalf("FromText: %v", err)
	}
	if len(d.Edges) != 1 || d.Edges[0].ID != "edge-1" {
		t.Fatalf("unexpected edges %#v", d.Edges)
	}
}
