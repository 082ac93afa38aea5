package convert

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/diagram"
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

// RegisterRoutes attaches the conversion routes to a workspace-member group.
func (h *Handler) RegisterRoutes(wg *gin.RouterGroup) {
	wg.POST("/ai/edit-diagram", h.editDiagram)
	wg.POST("/ai/extract-examples", h.extractExamples)
}

type editDiagramRequest struct {
	Diagram     json.RawMessage `json:"diagram"`
	Instruction string          `json:"instruction"`
}

func (h *Handler) editDiagram(c *gin.Context) {
	var req editDiagramRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	current, err := diagram.Parse(req.Diagram)
	if err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
		return
	}
	edited, err := h.Svc.EditDiagram(c.Request.Context(), current, req.Instruction)
	if err != nil {
		writeError(c, err, "failed to edit diagram")
		return
	}
	respond.OK(c, gin.H{"diagram": edited})
}

type extractExamplesRequest struct {
	Transcript  string `json:"transcript"`
	DocumentKey string `json:"documentKey"`
	ProjectID   string `json:"projectId"`
}

func (h *Handler) extractExamples(c *gin.Context) {
	var req extractExamplesRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	result, err := h.Svc.ExtractExamples(c.Request.Context(), req.Transcript, req.DocumentKey, req.ProjectID)
	if err != nil {
		writeError(c, err, "failed to extract examples")
		return
	}
	respond.OK(c, result)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrLLMUnavailable):
		respond.Error(c, http.StatusServiceUnavailable, "llm_unavailable", "AI conversion is not configured", nil)
	case errors.Is(err, ErrLLMOutput):
		respond.Error(c, http.StatusBadGateway, "llm_output_invalid", "AI returned an unusable answer", nil)
	case errors.Is(err, context.DeadlineExceeded):
		respond.Error(c, http.StatusGatewayTimeout, "llm_timeout", "AI request timed out", nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
