package main

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"journey-backend/internal/examples"
	"journey-backend/internal/lawfirms"
)

type importer struct {
	Examples *examples.Service
	LawFirms *lawfirms.Service
}

// rejectedRow is a CSV data row that was not imported. Row is 1-based and excludes the header.
type rejectedRow struct {
	Row    int
	Reason string
}

type importSummary struct {
	Created      int
	ColumnsAdded int
	Rejected     []rejectedRow
}

// exampleHeaders maps normalized CSV headers onto example fields.
var exampleHeaders = map[string]string{
	"project":     "projectId",
	"projectid":   "projectId",
	"actor":       "actor",
	"goal":        "goal",
	"entrypoint":  "entryPoint",
	"actions":     "actions",
	"error":       "error",
	"outcome":     "outcome",
	"description": "outcome",
}

// ImportExamples reads the CSV in batches of the bulk import limit. Invalid rows are reported,
// valid rows are written.
func (i *importer) ImportExamples(ctx context.Context, r io.Reader, userID, projectID string) (importSummary, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return importSummary{}, err
	}
	fields := make([]string, len(header))
	for idx, h := range header {
		fields[idx] = exampleHeaders[normalizeHeader(h)]
	}

	items := make([]examples.Input, 0, len(rows))
	for _, row := range rows {
		var in examples.Input
		for idx, value := range row {
			if idx >= len(fields) {
				break
			}
			switch fields[idx] {
			case "projectId":
				in.ProjectID = value
			case "actor":
				in.Actor = value
			case "goal":
				in.Goal = value
			case "entryPoint":
				in.EntryPoint = value
			case "actions":
				in.Actions = value
			case "error":
				in.Error = value
			case "outcome":
				in.Outcome = value
			}
		}
		items = append(items, in)
	}

	var summary importSummary
	for start := 0; start < len(items); start += examples.MaxBulkItems {
		end := min(start+examples.MaxBulkItems, len(items))
		result, err := i.Examples.BulkImport(ctx, userID, projectID, items[start:end])
		if err != nil {
			return summary, fmt.Errorf("rows %d-%d: %w", start+1, end, err)
		}
		summary.Created += len(result.Created)
		for _, inv := range result.Invalid {
			reason := inv.Reason
			if len(inv.Missing) > 0 {
				reason += ": " + strings.Join(inv.Missing, ",")
			}
			summary.Rejected = append(summary.Rejected, rejectedRow{Row: start + inv.Index + 1, Reason: reason})
		}
	}
	return summary, nil
}

// ImportLawFirms creates one firm per row. Headers other than the fixed fields are matched to
// workspace columns by key or name; unknown headers become new text columns.
func (i *importer) ImportLawFirms(ctx context.Context, r io.Reader, workspaceID string) (importSummary, error) {
	header, rows, err := readCSV(r)
	if err != nil {
		return importSummary{}, err
	}

	var summary importSummary
	columnKeys, added, err := i.resolveColumns(ctx, workspaceID, header)
	if err != nil {
		return summary, err
	}
	summary.ColumnsAdded = added

	for n, row := range rows {
		var in lawfirms.FirmInput
		values := map[string]any{}
		var rowErr error
		for idx, value := range row {
			if idx >= len(header) {
				break
			}
			switch normalizeHeader(header[idx]) {
			case "name", "firm", "firmname":
				in.Name = value
			case "structure":
				in.Structure = value
			case "status":
				in.Status = value
			case "top4":
				if value == "" {
					continue
				}
				top4, err := parseBool(value)
				if err != nil {
					rowErr = err
				}
				in.Top4 = top4
			default:
				if key := columnKeys[idx]; key != "" && value != "" {
					values[key] = value
				}
			}
		}
		if rowErr != nil {
			summary.Rejected = append(summary.Rejected, rejectedRow{Row: n + 1, Reason: rowErr.Error()})
			continue
		}

		firm, err := i.LawFirms.CreateFirm(ctx, workspaceID, in)
		if err != nil {
			if errors.Is(err, lawfirms.ErrInvalidInput) {
				summary.Rejected = append(summary.Rejected, rejectedRow{Row: n + 1, Reason: err.Error()})
				continue
			}
			return summary, fmt.Errorf("row %d: %w", n+1, err)
		}
		summary.Created++
		if len(values) == 0 {
			continue
		}
		if _, err := i.LawFirms.SetCustomValues(ctx, workspaceID, firm.ID, values); err != nil {
			if errors.Is(err, lawfirms.ErrInvalidInput) {
				summary.Rejected = append(summary.Rejected, rejectedRow{Row: n + 1, Reason: "custom values: " + err.Error()})
				continue
			}
			return summary, fmt.Errorf("row %d: %w", n+1, err)
		}
	}
	return summary, nil
}

// resolveColumns returns the column key for each non-fixed header index.
func (i *importer) resolveColumns(ctx context.Context, workspaceID string, header []string) (map[int]string, int, error) {
	cols, err := i.LawFirms.ListColumns(ctx, workspaceID)
	if err != nil {
		return nil, 0, err
	}
	byName := make(map[string]string, len(cols)*2)
	for _, col := range cols {
		byName[normalizeHeader(col.Key)] = col.Key
		byName[normalizeHeader(col.Name)] = col.Key
	}

	keys := make(map[int]string, len(header))
	added := 0
	for idx, h := range header {
		norm := normalizeHeader(h)
		switch norm {
		case "", "name", "firm", "firmname", "structure", "status", "top4":
			continue
		}
		if key, ok := byName[norm]; ok {
			keys[idx] = key
			continue
		}
		col, err := i.LawFirms.CreateColumn(ctx, workspaceID, lawfirms.ColumnInput{Name: strings.TrimSpace(h), Type: lawfirms.ColumnText})
		if err != nil {
			return nil, added, fmt.Errorf("create column %q: %w", h, err)
		}
		byName[norm] = col.Key
		keys[idx] = col.Key
		added++
	}
	return keys, added, nil
}

func readCSV(r io.Reader) ([]string, [][]string, error) {
	reader := csv.NewReader(r)
	reader.FieldsPerRecord = -1
	reader.TrimLeadingSpace = true
	records, err := reader.ReadAll()
	if err != nil {
		return nil, nil, fmt.Errorf("read csv: %w", err)
	}
	if len(records) == 0 {
		return nil, nil, errors.New("csv is empty")
	}
	header := records[0]
	if len(header) > 0 {
		header[0] = strings.TrimPrefix(header[0], "\ufeff")
	}
	rows := make([][]string, 0, len(records)-1)
	for _, rec := range records[1:] {
		blank := true
		for idx := range rec {
			rec[idx] = strings.TrimSpace(rec[idx])
			if rec[idx] != "" {
				blank = false
			}
		}
		if !blank {
			rows = append(rows, rec)
		}
	}
	return header, rows, nil
}

// normalizeHeader lower-cases and drops separators so "Entry Point", "entry_point" and
// "entryPoint" compare equal.
func normalizeHeader(h string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(h)) {
		if r == ' ' || r == '_' || r == '-' {
			continue
		}
		b.WriteRune(r)
	}
	return b.String()
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(value) {
	case "yes", "y":
		return true, nil
	case "no", "n":
		return false, nil
	}
	b, err := strconv.ParseBool(value)
	if err != nil {
		return false, fmt.Errorf("top_4: %q is not a boolean", value)
	}
	return b, nil
}
