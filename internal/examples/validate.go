package examples

import (
	"strings"
)

// TrimExample trims surrounding whitespace from every field.
func TrimExample(in Input) Input {
	return Input{
		ProjectID:  strings.TrimSpace(in.ProjectID),
		Actor:      strings.TrimSpace(in.Actor),
		Goal:       strings.TrimSpace(in.Goal),
		EntryPoint: strings.TrimSpace(in.EntryPoint),
		Actions:    strings.TrimSpace(in.Actions),
		Error:      strings.TrimSpace(in.Error),
		Outcome:    strings.TrimSpace(in.Outcome),
	}
}

// MissingFields lists the narrative fields that are empty, using their wire names.
func MissingFields(in Input) []string {
	var missing []string
	for _, f := range []struct {
		name  string
		value string
	}{
		{"actor", in.Actor},
		{"goal", in.Goal},
		{"entryPoint", in.EntryPoint},
		{"actions", in.Actions},
		{"error", in.Error},
		{"outcome", in.Outcome},
	} {
		if f.value == "" {
			missing = append(missing, f.name)
		}
	}
	return missing
}

type narrativeKey struct {
	actor, goal, entryPoint, actions, error, outcome string
}

func keyOf(in Input) narrativeKey {
	return narrativeKey{in.Actor, in.Goal, in.EntryPoint, in.Actions, in.Error, in.Outcome}
}

// ValidateBulk trims every item and splits the batch into valid items and rejects. Items missing
// a narrative field are rejected as missing_fields; items repeating an earlier valid item's six
// narrative fields are rejected as duplicate. Order is preserved in both results.
func ValidateBulk(items []Input) ([]Input, []InvalidItem) {
	valid := make([]Input, 0, len(items))
	invalid := make([]InvalidItem, 0)
	seen := make(map[narrativeKey]struct{}, len(items))

	for i, raw := range items {
		item := TrimExample(raw)
		if missing := MissingFields(item); len(missing) > 0 {
			invalid = append(invalid, InvalidItem{Index: i, Item: item, Reason: ReasonMissingFields, Missing: missing})
			continue
		}
		key := keyOf(item)
		if _, dup := seen[key]; dup {
			invalid = append(invalid, InvalidItem{Index: i, Item: item, Reason: ReasonDuplicate})
			continue
		}
		seen[key] = struct{}{}
		valid = append(valid, item)
	}
	return valid, invalid
}
