package jobs

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/shared/server/middleware"
	"journey-backend/internal/shared/server/respond"
)

const maxInputBytes = 1 << 20

// Handler wires HTTP handlers to the service.
type Handler struct {
	Svc *Service
}

// NewHandler constructs a Handler.
func NewHandler(svc *Service) *Handler {
	return &Handler{Svc: svc}
}

// RegisterRoutes attaches job routes to the router group.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.POST("/jobs/transcript", h.start(TypeTranscript))
	rg.POST("/jobs/diagram", h.start(TypeDiagram))
	rg.GET("/jobs", h.list)
	rg.GET("/jobs/:id", h.get)
}

type jobResponse struct {
	ID           string          `json:"id"`
	JobType      string          `json:"jobType"`
	Status       string          `json:"status"`
	Input        json.RawMessage `json:"input,omitempty"`
	Result       json.RawMessage `json:"result,omitempty"`
	ErrorCode    string          `json:"errorCode,omitempty"`
	ErrorMessage string          `json:"errorMessage,omitempty"`
	CreatedAt    time.Time       `json:"createdAt"`
	CompletedAt  *time.Time      `json:"completedAt,omitempty"`
}

func toResponse(job Job) jobResponse {
	return jobResponse{
		ID:           job.ID,
		JobType:      job.JobType,
		Status:       job.Status,
		Input:        job.InputData,
		Result:       job.ResultData,
		ErrorCode:    job.ErrorCode,
		ErrorMessage: job.ErrorMessage,
		CreatedAt:    job.CreatedAt,
		CompletedAt:  job.CompletedAt,
	}
}

func (h *Handler) start(jobType string) gin.HandlerFunc {
	return func(c *gin.Context) {
		body, err := io.ReadAll(io.LimitReader(c.Request.Body, maxInputBytes+1))
		if err != nil {
			respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
			return
		}
		if len(body) > maxInputBytes {
			respond.Error(c, http.StatusRequestEntityTooLarge, "payload_too_large", "request body too large", nil)
			return
		}

		ctx := WithRequestID(c.Request.Context(), middleware.RequestIDFromContext(c))
		job, err := h.Svc.Start(ctx, middleware.UserIDFromContext(c), jobType, body)
		if job.ID != "" {
			c.Set("jobId", job.ID)
			c.Set("statusTransition", "->"+job.Status)
		}
		if err != nil {
			writeError(c, err, "failed to start job", job.ID)
			return
		}
		respond.JSON(c, http.StatusAccepted, gin.H{
			"jobId":  job.ID,
			"status": job.Status,
		})
	}
}

func (h *Handler) get(c *gin.Context) {
	jobID := c.Param("id")
	c.Set("jobId", jobID)
	job, err := h.Svc.Get(c.Request.Context(), middleware.UserIDFromContext(c), jobID)
	if err != nil {
		writeError(c, err, "failed to fetch job", "")
		return
	}
	respond.OK(c, toResponse(job))
}

func (h *Handler) list(c *gin.Context) {
	limit, _ := strconv.Atoi(c.Query("limit"))
	offset, _ := strconv.Atoi(c.Query("offset"))
	items, err := h.Svc.List(c.Request.Context(), middleware.UserIDFromContext(c), limit, offset)
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list jobs", nil)
		return
	}
	out := make([]jobResponse, 0, len(items))
	for _, job := range items {
		out = append(out, toResponse(job))
	}
	respond.OK(c, out)
}

func writeError(c *gin.Context, err error, fallback, jobID string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "job not found", nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	case errors.Is(err, ErrDispatchFailed):
		respond.Error(c, http.StatusServiceUnavailable, "dispatch_failed", "job could not be queued", gin.H{"jobId": jobID})
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
