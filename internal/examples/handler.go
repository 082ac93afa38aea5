package examples

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/shared/server/middleware"
	"journey-backend/internal/shared/server/respond"
)

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches example routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/examples", h.list)
	rg.POST("/examples", h.create)
	rg.POST("/examples/bulk", h.bulkImport)
	rg.POST("/examples/bulk/validate", h.bulkValidate)
	rg.GET("/examples/:id", h.get)
	rg.PUT("/examples/:id", h.update)
	rg.DELETE("/examples/:id", h.delete)
}

type exampleResponse struct {
	ID         string    `json:"id"`
	ShortID    string    `json:"shortId"`
	ProjectID  string    `json:"projectId,omitempty"`
	Actor      string    `json:"actor"`
	Goal       string    `json:"goal"`
	EntryPoint string    `json:"entryPoint"`
	Actions    string    `json:"actions"`
	Error      string    `json:"error"`
	Outcome    string    `json:"outcome"`
	CreatedBy  string    `json:"createdBy"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

func toResponse(ex Example) exampleResponse {
	return exampleResponse{
		ID:         ex.ID,
		ShortID:    ex.ShortID,
		ProjectID:  ex.ProjectID,
		Actor:      ex.Actor,
		Goal:       ex.Goal,
		EntryPoint: ex.EntryPoint,
		Actions:    ex.Actions,
		Error:      ex.Error,
		Outcome:    ex.Outcome,
		CreatedBy:  ex.CreatedBy,
		CreatedAt:  ex.CreatedAt,
		UpdatedAt:  ex.UpdatedAt,
	}
}

func toResponses(items []Example) []exampleResponse {
	out := make([]exampleResponse, 0, len(items))
	for _, ex := range items {
		out = append(out, toResponse(ex))
	}
	return out
}

func (h *Handler) list(c *gin.Context) {
	limit := 50
	offset := 0
	if v := c.Query("limit"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			limit = parsed
		}
	}
	if limit <= 0 {
		limit = 50
	}
	if limit > 200 {
		limit = 200
	}
	if v := c.Query("offset"); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil && parsed > 0 {
			offset = parsed
		}
	}

	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), c.Query("projectId"), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list examples", nil)
		return
	}
	respond.OK(c, toResponses(items))
}

func (h *Handler) create(c *gin.Context) {
	var req Input
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ex, err := h.Svc.Create(c.Request.Context(), middleware.UserIDFromContext(c), req)
	if err != nil {
		writeError(c, err, "failed to create example")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(ex))
}

func (h *Handler) get(c *gin.Context) {
	ex, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"))
	if err != nil {
		writeError(c, err, "failed to fetch example")
		return
	}
	respond.OK(c, toResponse(ex))
}

func (h *Handler) update(c *gin.Context) {
	var req Input
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ex, err := h.Svc.Update(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id"), req)
	if err != nil {
		writeError(c, err, "failed to update example")
		return
	}
	respond.OK(c, toResponse(ex))
}

func (h *Handler) delete(c *gin.Context) {
	if err := h.Svc.Delete(c.Request.Context(), middleware.UserIDFromContext(c), c.Param("id")); err != nil {
		writeError(c, err, "failed to delete example")
		return
	}
	c.Status(http.StatusNoContent)
}

type bulkRequest struct {
	ProjectID string  `json:"projectId"`
	Items     []Input `json:"items"`
}

func (h *Handler) bulkImport(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	result, err := h.Svc.BulkImport(c.Request.Context(), middleware.UserIDFromContext(c), req.ProjectID, req.Items)
	if err != nil {
		writeError(c, err, "failed to import examples")
		return
	}
	respond.JSON(c, http.StatusCreated, gin.H{
		"created": toResponses(result.Created),
		"invalid": result.Invalid,
	})
}

func (h *Handler) bulkValidate(c *gin.Context) {
	var req bulkRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	valid, invalid := ValidateBulk(req.Items)
	respond.OK(c, gin.H{
		"valid":   valid,
		"invalid": invalid,
	})
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "example not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
