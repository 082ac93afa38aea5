package lawfirms

import (
	"fmt"
	"math"
	"sort"
	"strconv"
	"strings"
	"time"
)

const dateLayout = "2006-01-02"

// sortColumns orders columns by position, then creation time, then id.
func sortColumns(cols []Column) {
	sort.SliceStable(cols, func(i, j int) bool {
		if cols[i].Position != cols[j].Position {
			return cols[i].Position < cols[j].Position
		}
		if !cols[i].CreatedAt.Equal(cols[j].CreatedAt) {
			return cols[i].CreatedAt.Before(cols[j].CreatedAt)
		}
		return cols[i].ID < cols[j].ID
	})
}

// dedupeColumns collapses legacy duplicates: the first column per key by position then creation
// time wins, and columns shadowing a fixed field are dropped.
func dedupeColumns(cols []Column) []Column {
	sorted := append([]Column(nil), cols...)
	sortColumns(sorted)

	seen := make(map[string]struct{}, len(sorted))
	out := make([]Column, 0, len(sorted))
	for _, col := range sorted {
		key := strings.ToLower(strings.TrimSpace(col.Key))
		if IsReservedKey(key) {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		out = append(out, col)
	}
	return out
}

// slugKey turns a display name into a column key of [a-z0-9_].
func slugKey(name string) string {
	var b strings.Builder
	lastUnderscore := true
	for _, r := range strings.ToLower(strings.TrimSpace(name)) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			lastUnderscore = false
		default:
			if !lastUnderscore {
				b.WriteByte('_')
				lastUnderscore = true
			}
		}
	}
	return strings.Trim(b.String(), "_")
}

func validColumnType(t string) bool {
	switch t {
	case ColumnText, ColumnNumber, ColumnBoolean, ColumnDate, ColumnSelect:
		return true
	}
	return false
}

func cleanOptions(options []string) []string {
	out := make([]string, 0, len(options))
	seen := make(map[string]struct{}, len(options))
	for _, opt := range options {
		opt = strings.TrimSpace(opt)
		if opt == "" {
			continue
		}
		if _, dup := seen[opt]; dup {
			continue
		}
		seen[opt] = struct{}{}
		out = append(out, opt)
	}
	return out
}

// coerceValue converts a decoded JSON value to the column's type.
func coerceValue(col Column, raw any) (any, error) {
	switch col.Type {
	case ColumnNumber:
		var f float64
		switch v := raw.(type) {
		case float64:
			f = v
		case int:
			f = float64(v)
		case int64:
			f = float64(v)
		case string:
			parsed, err := strconv.ParseFloat(strings.TrimSpace(v), 64)
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, col.Key)
			}
			f = parsed
		default:
			return nil, fmt.Errorf("%w: %s must be a number", ErrInvalidInput, col.Key)
		}
		// Value blobs are stored and served as JSON, which has no NaN or Inf.
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("%w: %s must be a finite number", ErrInvalidInput, col.Key)
		}
		return f, nil
	case ColumnBoolean:
		switch v := raw.(type) {
		case bool:
			return v, nil
		case string:
			b, err := strconv.ParseBool(strings.TrimSpace(v))
			if err != nil {
				return nil, fmt.Errorf("%w: %s must be true or false", ErrInvalidInput, col.Key)
			}
			return b, nil
		}
		return nil, fmt.Errorf("%w: %s must be true or false", ErrInvalidInput, col.Key)
	case ColumnDate:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", ErrInvalidInput, col.Key)
		}
		s = strings.TrimSpace(s)
		if len(s) > len(dateLayout) {
			if ts, err := time.Parse(time.RFC3339, s); err == nil {
				return ts.UTC().Format(dateLayout), nil
			}
		}
		d, err := time.Parse(dateLayout, s)
		if err != nil {
			return nil, fmt.Errorf("%w: %s must be a YYYY-MM-DD date", ErrInvalidInput, col.Key)
		}
		return d.Format(dateLayout), nil
	case ColumnSelect:
		s, ok := raw.(string)
		if !ok {
			return nil, fmt.Errorf("%w: %s must be one of the column options", ErrInvalidInput, col.Key)
		}
		s = strings.TrimSpace(s)
		for _, opt := range col.Options {
			if opt == s {
				return s, nil
			}
		}
		return nil, fmt.Errorf("%w: %s must be one of the column options", ErrInvalidInput, col.Key)
	default:
		switch v := raw.(type) {
		case string:
			return v, nil
		case float64:
			return strconv.FormatFloat(v, 'f', -1, 64), nil
		case bool:
			return strconv.FormatBool(v), nil
		}
		return nil, fmt.Errorf("%w: %s must be text", ErrInvalidInput, col.Key)
	}
}
