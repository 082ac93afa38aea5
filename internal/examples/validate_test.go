package examples

import (
	"reflect"
	"testing"
)

func fullInput(actor string) Input {
	return Input{
		Actor:      actor,
		Goal:       "file a claim",
		EntryPoint: "portal",
		Actions:    "clicks submit",
		Error:      "timeout",
		Outcome:    "calls support",
	}
}

func TestTrimExample(t *testing.T) {
	got := TrimExample(Input{ProjectID: " p1 ", Actor: "  Paralegal\n", Goal: "\tx "})
	if got.ProjectID != "p1" || got.Actor != "Paralegal" || got.Goal != "x" {
		t.Fatalf("unexpected trim result %#v", got)
	}
}

func TestValidateBulkMissingFields(t *testing.T) {
	item := fullInput("Associate")
	item.Goal = "   "
	item.Outcome = ""

	valid, invalid := ValidateBulk([]Input{item})
	if len(valid) != 0 {
		t.Fatalf("expected no valid items, got %d", len(valid))
	}
	if len(invalid) != 1 || invalid[0].Reason != ReasonMissingFields {
		t.Fatalf("expected missing_fields, got %#v", invalid)
	}
	if !reflect.DeepEqual(invalid[0].Missing, []string{"goal", "outcome"}) {
		t.Fatalf("unexpected missing list %v", invalid[0].Missing)
	}
}

func TestValidateBulkDuplicatesAfterTrim(t *testing.T) {
	first := fullInput("Partner")
	second := fullInput("  Partner ")
	third := fullInput("partner")

	valid, invalid := ValidateBulk([]Input{first, second, third})
	if len(valid) != 2 {
		t.Fatalf("expected 2 valid items (case-sensitive), got %d", len(valid))
	}
	if len(invalid) != 1 || invalid[0].Index != 1 || invalid[0].Reason != ReasonDuplicate {
		t.Fatalf("expected index 1 duplicate, got %#v", invalid)
	}
	if valid[0].Actor != "Partner" || valid[1].Actor != "partner" {
		t.Fatalf("unexpected valid order %#v", valid)
	}
}

func TestValidateBulkDuplicateOfInvalidIsNotDuplicate(t *testing.T) {
	broken := fullInput("Clerk")
	broken.Error = ""

	valid, invalid := ValidateBulk([]Input{broken, broken})
	if len(valid) != 0 || len(invalid) != 2 {
		t.Fatalf("unexpected split valid=%d invalid=%d", len(valid), len(invalid))
	}
	for _, item := range invalid {
		if item.Reason != ReasonMissingFields {
			t.Fatalf("expected missing_fields for both, got %s", item.Reason)
		}
	}
}
