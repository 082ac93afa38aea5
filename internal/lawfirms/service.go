package lawfirms

import (
	"context"
	"fmt"
	"sort"
	"strings"
	"time"

	"github.com/google/uuid"

	"journey-backend/internal/shared/telemetry"
)

// Service contains business logic for law firms and their custom columns.
type Service struct {
	Repo Repo
}

func normalizeStructure(s string) (string, error) {
	s = strings.ToLower(strings.TrimSpace(s))
	switch s {
	case StructureCentralised, StructureDecentralised:
		return s, nil
	}
	return "", fmt.Errorf("%w: structure must be %s or %s", ErrInvalidInput, StructureCentralised, StructureDecentralised)
}

// CreateFirm validates and stores a firm. Status defaults to active.
func (s *Service) CreateFirm(ctx context.Context, workspaceID string, in FirmInput) (LawFirm, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return LawFirm{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	structure, err := normalizeStructure(in.Structure)
	if err != nil {
		return LawFirm{}, err
	}
	status := strings.ToLower(strings.TrimSpace(in.Status))
	if status == "" {
		status = StatusActive
	}

	now := time.Now().UTC()
	f := LawFirm{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Name:        name,
		Structure:   structure,
		Status:      status,
		Top4:        in.Top4,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	if err := s.Repo.CreateFirm(ctx, f); err != nil {
		return LawFirm{}, err
	}
	f.CustomValues = map[string]any{}
	return present(f), nil
}

func (s *Service) GetFirm(ctx context.Context, workspaceID, id string) (LawFirm, error) {
	f, err := s.Repo.GetFirm(ctx, workspaceID, id)
	if err != nil {
		return LawFirm{}, err
	}
	return present(f), nil
}

func (s *Service) ListFirms(ctx context.Context, workspaceID string) ([]LawFirm, error) {
	firms, err := s.Repo.ListFirms(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	for i := range firms {
		firms[i] = present(firms[i])
	}
	return firms, nil
}

// UpdateFirm applies the set fields of patch.
func (s *Service) UpdateFirm(ctx context.Context, workspaceID, id string, patch FirmPatch) (LawFirm, error) {
	f, err := s.Repo.GetFirm(ctx, workspaceID, id)
	if err != nil {
		return LawFirm{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return LawFirm{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		f.Name = name
	}
	if patch.Structure != nil {
		structure, err := normalizeStructure(*patch.Structure)
		if err != nil {
			return LawFirm{}, err
		}
		f.Structure = structure
	}
	if patch.Status != nil {
		status := strings.ToLower(strings.TrimSpace(*patch.Status))
		if status == "" {
			status = StatusActive
		}
		f.Status = status
	}
	if patch.Top4 != nil {
		f.Top4 = *patch.Top4
	}
	f.UpdatedAt = time.Now().UTC()

	values := f.CustomValues
	if err := s.Repo.UpdateFirm(ctx, f); err != nil {
		return LawFirm{}, err
	}
	f.CustomValues = values
	return present(f), nil
}

func (s *Service) DeleteFirm(ctx context.Context, workspaceID, id string) error {
	return s.Repo.DeleteFirm(ctx, workspaceID, id)
}

// ListColumns returns the workspace's columns with legacy duplicates collapsed.
func (s *Service) ListColumns(ctx context.Context, workspaceID string) ([]Column, error) {
	cols, err := s.Repo.ListColumns(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	return dedupeColumns(cols), nil
}

// CreateColumn adds a column at the end of the workspace's column order.
func (s *Service) CreateColumn(ctx context.Context, workspaceID string, in ColumnInput) (Column, error) {
	name := strings.TrimSpace(in.Name)
	if name == "" {
		return Column{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
	}
	key := slugKey(in.Key)
	if key == "" {
		key = slugKey(name)
	}
	if key == "" {
		return Column{}, fmt.Errorf("%w: key must contain letters or digits", ErrInvalidInput)
	}
	if IsReservedKey(key) {
		return Column{}, fmt.Errorf("%w: %s", ErrReservedKey, key)
	}
	colType := strings.ToLower(strings.TrimSpace(in.Type))
	if colType == "" {
		colType = ColumnText
	}
	if !validColumnType(colType) {
		return Column{}, fmt.Errorf("%w: unknown column type %q", ErrInvalidInput, in.Type)
	}
	options := cleanOptions(in.Options)
	if colType == ColumnSelect && len(options) == 0 {
		return Column{}, fmt.Errorf("%w: select columns need options", ErrInvalidInput)
	}
	if colType != ColumnSelect {
		options = []string{}
	}

	existing, err := s.Repo.ListColumns(ctx, workspaceID)
	if err != nil {
		return Column{}, err
	}
	position := 0
	for _, col := range existing {
		if col.Key == key {
			return Column{}, fmt.Errorf("%w: %s", ErrDuplicateColumn, key)
		}
		if col.Position >= position {
			position = col.Position + 1
		}
	}

	col := Column{
		ID:          uuid.NewString(),
		WorkspaceID: workspaceID,
		Key:         key,
		Name:        name,
		Type:        colType,
		Options:     options,
		Position:    position,
		CreatedAt:   time.Now().UTC(),
	}
	if err := s.Repo.CreateColumn(ctx, col); err != nil {
		return Column{}, err
	}
	return col, nil
}

// UpdateColumn renames a column or replaces its options. Key and type are fixed once created.
func (s *Service) UpdateColumn(ctx context.Context, workspaceID, id string, patch ColumnPatch) (Column, error) {
	col, err := s.findColumn(ctx, workspaceID, id)
	if err != nil {
		return Column{}, err
	}
	if patch.Name != nil {
		name := strings.TrimSpace(*patch.Name)
		if name == "" {
			return Column{}, fmt.Errorf("%w: name is required", ErrInvalidInput)
		}
		col.Name = name
	}
	if patch.Options != nil {
		if col.Type != ColumnSelect {
			return Column{}, fmt.Errorf("%w: only select columns have options", ErrInvalidInput)
		}
		options := cleanOptions(patch.Options)
		if len(options) == 0 {
			return Column{}, fmt.Errorf("%w: select columns need options", ErrInvalidInput)
		}
		col.Options = options
	}
	if err := s.Repo.UpdateColumn(ctx, col); err != nil {
		return Column{}, err
	}
	return col, nil
}

func (s *Service) DeleteColumn(ctx context.Context, workspaceID, id string) error {
	if err := s.Repo.DeleteColumn(ctx, workspaceID, id); err != nil {
		return err
	}
	telemetry.Info("lawfirms.column_deleted", map[string]any{"workspace_id": workspaceID, "column_id": id})
	return nil
}

// ReorderColumns sets positions from orderedIDs. Columns left out keep their relative order
// after the listed ones.
func (s *Service) ReorderColumns(ctx context.Context, workspaceID string, orderedIDs []string) ([]Column, error) {
	if len(orderedIDs) == 0 {
		return nil, fmt.Errorf("%w: column order is empty", ErrInvalidInput)
	}
	cols, err := s.Repo.ListColumns(ctx, workspaceID)
	if err != nil {
		return nil, err
	}
	known := make(map[string]struct{}, len(cols))
	for _, col := range cols {
		known[col.ID] = struct{}{}
	}

	positions := make(map[string]int, len(cols))
	for i, id := range orderedIDs {
		if _, ok := known[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrColumnNotFound, id)
		}
		if _, dup := positions[id]; dup {
			return nil, fmt.Errorf("%w: column %s listed twice", ErrInvalidInput, id)
		}
		positions[id] = i
	}
	next := len(orderedIDs)
	for _, col := range cols {
		if _, ok := positions[col.ID]; ok {
			continue
		}
		positions[col.ID] = next
		next++
	}

	if err := s.Repo.SetColumnPositions(ctx, workspaceID, positions); err != nil {
		return nil, err
	}
	for i := range cols {
		cols[i].Position = positions[cols[i].ID]
	}
	return dedupeColumns(cols), nil
}

// SetCustomValues merges values into the firm's blob. Each value is coerced to its column's type,
// null removes the key, unknown keys are rejected and top_4 is ignored in favour of the fixed flag.
func (s *Service) SetCustomValues(ctx context.Context, workspaceID, firmID string, values map[string]any) (LawFirm, error) {
	f, err := s.Repo.GetFirm(ctx, workspaceID, firmID)
	if err != nil {
		return LawFirm{}, err
	}
	cols, err := s.ListColumns(ctx, workspaceID)
	if err != nil {
		return LawFirm{}, err
	}
	byKey := make(map[string]Column, len(cols))
	for _, col := range cols {
		byKey[col.Key] = col
	}

	merged := make(map[string]any, len(f.CustomValues)+len(values))
	for k, v := range f.CustomValues {
		if k == Top4Key {
			continue
		}
		merged[k] = v
	}

	keys := make([]string, 0, len(values))
	for k := range values {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if key == Top4Key {
			continue
		}
		col, ok := byKey[key]
		if !ok {
			return LawFirm{}, fmt.Errorf("%w: unknown column %q", ErrInvalidInput, key)
		}
		raw := values[key]
		if raw == nil {
			delete(merged, key)
			continue
		}
		coerced, err := coerceValue(col, raw)
		if err != nil {
			return LawFirm{}, err
		}
		merged[key] = coerced
	}

	if err := s.Repo.SetValues(ctx, firmID, merged); err != nil {
		return LawFirm{}, err
	}
	f.CustomValues = merged
	return present(f), nil
}

// present mirrors the fixed top_4 flag into the value blob.
func present(f LawFirm) LawFirm {
	values := make(map[string]any, len(f.CustomValues)+1)
	for k, v := range f.CustomValues {
		values[k] = v
	}
	values[Top4Key] = f.Top4
	f.CustomValues = values
	return f
}
