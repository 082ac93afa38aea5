package lawfirms

import (
	"errors"
	"math"
	"testing"
	"time"
)

func TestDedupeColumns(t *testing.T) {
	base := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)
	cols := []Column{
		{ID: "c3", Key: "region", Position: 1, CreatedAt: base.Add(2 * time.Hour)},
		{ID: "c1", Key: "region", Position: 1, CreatedAt: base},
		{ID: "c2", Key: "top_4", Position: 0, CreatedAt: base},
		{ID: "c4", Key: "headcount", Position: 0, CreatedAt: base.Add(time.Hour)},
		{ID: "c5", Key: "Region", Position: 5, CreatedAt: base},
	}

	got := dedupeColumns(cols)
	if len(got) != 2 {
		t.Fatalf("expected 2 columns, got %d: %#v", len(got), got)
	}
	if got[0].ID != "c4" || got[1].ID != "c1" {
		t.Fatalf("unexpected winners %s %s", got[0].ID, got[1].ID)
	}
}

func TestSlugKey(t *testing.T) {
	tests := map[string]string{
		"Head Count":          "head_count",
		"  Practice--Areas  ": "practice_areas",
		"Revenue (£m)":        "revenue_m",
		"!!!":                 "",
		"2024 Rank":           "2024_rank",
	}
	for in, want := range tests {
		if got := slugKey(in); got != want {
			t.Fatalf("slugKey(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestCoerceValue(t *testing.T) {
	tests := []struct {
		name    string
		col     Column
		in      any
		want    any
		wantErr bool
	}{
		{name: "number from float", col: Column{Key: "n", Type: ColumnNumber}, in: 12.5, want: 12.5},
		{name: "number from string", col: Column{Key: "n", Type: ColumnNumber}, in: " 40 ", want: 40.0},
		{name: "number rejects text", col: Column{Key: "n", Type: ColumnNumber}, in: "many", wantErr: true},
		{name: "number rejects NaN", col: Column{Key: "n", Type: ColumnNumber}, in: "NaN", wantErr: true},
		{name: "number rejects Inf", col: Column{Key: "n", Type: ColumnNumber}, in: "+Inf", wantErr: true},
		{name: "number rejects -Infinity", col: Column{Key: "n", Type: ColumnNumber}, in: "-Infinity", wantErr: true},
		{name: "number rejects non-finite float", col: Column{Key: "n", Type: ColumnNumber}, in: math.Inf(1), wantErr: true},
		{name: "boolean", col: Column{Key: "b", Type: ColumnBoolean}, in: "true", want: true},
		{name: "boolean rejects number", col: Column{Key: "b", Type: ColumnBoolean}, in: 1.0, wantErr: true},
		{name: "date", col: Column{Key: "d", Type: ColumnDate}, in: "2024-02-29", want: "2024-02-29"},
		{name: "date from timestamp", col: Column{Key: "d", Type: ColumnDate}, in: "2024-03-01T10:00:00Z", want: "2024-03-01"},
		{name: "date rejects other format", col: Column{Key: "d", Type: ColumnDate}, in: "01/03/2024", wantErr: true},
		{name: "select in options", col: Column{Key: "s", Type: ColumnSelect, Options: []string{"UK", "US"}}, in: "US", want: "US"},
		{name: "select outside options", col: Column{Key: "s", Type: ColumnSelect, Options: []string{"UK"}}, in: "FR", wantErr: true},
		{name: "text from number", col: Column{Key: "t", Type: ColumnText}, in: 3.0, want: "3"},
		{name: "text rejects object", col: Column{Key: "t", Type: ColumnText}, in: map[string]any{}, wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := coerceValue(tt.col, tt.in)
			if tt.wantErr {
				if !errors.Is(err, ErrInvalidInput) {
					t.Fatalf("expected ErrInvalidInput, got %v", err)
				}
				return
			}
			if err != nil {
				t.Fatalf("coerceValue: %v", err)
			}
			if got != tt.want {
				t.Fatalf("got %#v, want %#v", got, tt.want)
			}
		})
	}
}
