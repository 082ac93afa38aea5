package lawfirms

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service. Routes expect a workspace group guarded by
// workspaces.RequireMember.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches law firm and column routes to a /workspaces/:workspaceId group.
func (h *Handler) RegisterRoutes(wg *gin.RouterGroup) {
	wg.GET("/law-firms", h.listFirms)
	wg.POST("/law-firms", h.createFirm)
	wg.GET("/law-firms/:id", h.getFirm)
	wg.PUT("/law-firms/:id", h.updateFirm)
	wg.DELETE("/law-firms/:id", h.deleteFirm)
	wg.PUT("/law-firms/:id/custom-values", h.setCustomValues)

	wg.GET("/law-firm-columns", h.listColumns)
	wg.POST("/law-firm-columns", h.createColumn)
	wg.PUT("/law-firm-columns/order", h.reorderColumns)
	wg.PUT("/law-firm-columns/:columnId", h.updateColumn)
	wg.DELETE("/law-firm-columns/:columnId", h.deleteColumn)
}

type firmResponse struct {
	ID           string         `json:"id"`
	Name         string         `json:"name"`
	Structure    string         `json:"structure"`
	Status       string         `json:"status"`
	Top4         bool           `json:"top4"`
	CustomValues map[string]any `json:"customValues"`
	CreatedAt    time.Time      `json:"createdAt"`
	UpdatedAt    time.Time      `json:"updatedAt"`
}

type columnResponse struct {
	ID        string    `json:"id"`
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Type      string    `json:"type"`
	Options   []string  `json:"options"`
	Position  int       `json:"position"`
	CreatedAt time.Time `json:"createdAt"`
}

func toFirmResponse(f LawFirm) firmResponse {
	return firmResponse{
		ID:           f.ID,
		Name:         f.Name,
		Structure:    f.Structure,
		Status:       f.Status,
		Top4:         f.Top4,
		CustomValues: f.CustomValues,
		CreatedAt:    f.CreatedAt,
		UpdatedAt:    f.UpdatedAt,
	}
}

func toColumnResponses(cols []Column) []columnResponse {
	out := make([]columnResponse, 0, len(cols))
	for _, col := range cols {
		out = append(out, toColumnResponse(col))
	}
	return out
}

func toColumnResponse(col Column) columnResponse {
	options := col.Options
	if options == nil {
		options = []string{}
	}
	return columnResponse{
		ID:        col.ID,
		Key:       col.Key,
		Name:      col.Name,
		Type:      col.Type,
		Options:   options,
		Position:  col.Position,
		CreatedAt: col.CreatedAt,
	}
}

func workspaceID(c *gin.Context) string {
	return c.Param("workspaceId")
}

func (h *Handler) listFirms(c *gin.Context) {
	firms, err := h.Svc.ListFirms(c.Request.Context(), workspaceID(c))
	if err != nil {
		writeError(c, err, "failed to list law firms")
		return
	}
	out := make([]firmResponse, 0, len(firms))
	for _, f := range firms {
		out = append(out, toFirmResponse(f))
	}
	respond.OK(c, out)
}

func (h *Handler) createFirm(c *gin.Context) {
	var req FirmInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	f, err := h.Svc.CreateFirm(c.Request.Context(), workspaceID(c), req)
	if err != nil {
		writeError(c, err, "failed to create law firm")
		return
	}
	respond.JSON(c, http.StatusCreated, toFirmResponse(f))
}

func (h *Handler) getFirm(c *gin.Context) {
	f, err := h.Svc.GetFirm(c.Request.Context(), workspaceID(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch law firm")
		return
	}
	respond.OK(c, toFirmResponse(f))
}

func (h *Handler) updateFirm(c *gin.Context) {
	var req FirmPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	f, err := h.Svc.UpdateFirm(c.Request.Context(), workspaceID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to update law firm")
		return
	}
	respond.OK(c, toFirmResponse(f))
}

func (h *Handler) deleteFirm(c *gin.Context) {
	if err := h.Svc.DeleteFirm(c.Request.Context(), workspaceID(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete law firm")
		return
	}
	c.Status(http.StatusNoContent)
}

func (h *Handler) setCustomValues(c *gin.Context) {
	var req map[string]any
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "body must be a JSON object", nil)
		return
	}
	f, err := h.Svc.SetCustomValues(c.Request.Context(), workspaceID(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to save custom values")
		return
	}
	respond.OK(c, toFirmResponse(f))
}

func (h *Handler) listColumns(c *gin.Context) {
	cols, err := h.Svc.ListColumns(c.Request.Context(), workspaceID(c))
	if err != nil {
		writeError(c, err, "failed to list columns")
		return
	}
	respond.OK(c, toColumnResponses(cols))
}

func (h *Handler) createColumn(c *gin.Context) {
	var req ColumnInput
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	col, err := h.Svc.CreateColumn(c.Request.Context(), workspaceID(c), req)
	if err != nil {
		writeError(c, err, "failed to create column")
		return
	}
	respond.JSON(c, http.StatusCreated, toColumnResponse(col))
}

func (h *Handler) updateColumn(c *gin.Context) {
	var req ColumnPatch
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	col, err := h.Svc.UpdateColumn(c.Request.Context(), workspaceID(c), c.Param("columnId"), req)
	if err != nil {
		writeError(c, err, "failed to update column")
		return
	}
	respond.OK(c, toColumnResponse(col))
}

func (h *Handler) deleteColumn(c *gin.Context) {
	if err := h.Svc.DeleteColumn(c.Request.Context(), workspaceID(c), c.Param("columnId")); err != nil {
		writeError(c, err, "failed to delete column")
		return
	}
	c.Status(http.StatusNoContent)
}

type reorderRequest struct {
	ColumnIDs []string `json:"columnIds"`
}

func (h *Handler) reorderColumns(c *gin.Context) {
	var req reorderRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	cols, err := h.Svc.ReorderColumns(c.Request.Context(), workspaceID(c), req.ColumnIDs)
	if err != nil {
		writeError(c, err, "failed to reorder columns")
		return
	}
	respond.OK(c, toColumnResponses(cols))
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "law firm not found", nil)
	case errors.Is(err, ErrColumnNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", err.Error(), nil)
	case errors.Is(err, ErrDuplicateColumn):
		respond.Error(c, http.StatusConflict, "duplicate_column", err.Error(), nil)
	case errors.Is(err, ErrReservedKey):
		respond.Error(c, http.StatusBadRequest, "reserved_key", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
