package workspaces

import (
	"errors"
	"net/http"
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

// RegisterRoutes attaches the workspace collection routes.
func (h *Handler) RegisterRoutes(rg *gin.RouterGroup) {
	rg.GET("/workspaces", h.list)
	rg.POST("/workspaces", h.create)
}

// RegisterMemberRoutes attaches routes to a group already guarded by RequireMember.
func (h *Handler) RegisterMemberRoutes(wg *gin.RouterGroup) {
	wg.GET("", h.get)
	wg.GET("/members", h.listMembers)
	wg.POST("/members", h.addMember)
	wg.DELETE("/members/:email", h.removeMember)
}

type workspaceResponse struct {
	ID        string    `json:"id"`
	Name      string    `json:"name"`
	CreatedBy string    `json:"createdBy"`
	CreatedAt time.Time `json:"createdAt"`
}

type memberResponse struct {
	Email     string    `json:"email"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"createdAt"`
}

func toResponse(ws Workspace) workspaceResponse {
	return workspaceResponse{ID: ws.ID, Name: ws.Name, CreatedBy: ws.CreatedBy, CreatedAt: ws.CreatedAt}
}

func (h *Handler) list(c *gin.Context) {
	items, err := h.Svc.ListForEmail(c.Request.Context(), middleware.UserEmailFromContext(c))
	if err != nil {
		respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to list workspaces", nil)
		return
	}
	out := make([]workspaceResponse, 0, len(items))
	for _, ws := range items {
		out = append(out, toResponse(ws))
	}
	respond.OK(c, out)
}

type createRequest struct {
	Name string `json:"name"`
}

func (h *Handler) create(c *gin.Context) {
	email := middleware.UserEmailFromContext(c)
	if middleware.IsGuest(c) || email == "" {
		respond.Error(c, http.StatusUnauthorized, "login_required", "sign in to create a workspace", nil)
		return
	}
	var req createRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	ws, err := h.Svc.Create(c.Request.Context(), req.Name, email)
	if err != nil {
		writeError(c, err, "failed to create workspace")
		return
	}
	respond.JSON(c, http.StatusCreated, toResponse(ws))
}

func (h *Handler) get(c *gin.Context) {
	ws, err := h.Svc.Get(c.Request.Context(), WorkspaceIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to fetch workspace")
		return
	}
	respond.OK(c, toResponse(ws))
}

func (h *Handler) listMembers(c *gin.Context) {
	members, err := h.Svc.ListMembers(c.Request.Context(), WorkspaceIDFromContext(c))
	if err != nil {
		writeError(c, err, "failed to list members")
		return
	}
	out := make([]memberResponse, 0, len(members))
	for _, m := range members {
		out = append(out, memberResponse{Email: m.Email, Role: m.Role, CreatedAt: m.CreatedAt})
	}
	respond.OK(c, out)
}

type addMemberRequest struct {
	Email string `json:"email"`
	Role  string `json:"role"`
}

func (h *Handler) addMember(c *gin.Context) {
	var req addMemberRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		respond.Error(c, http.StatusBadRequest, "validation_error", "invalid request body", nil)
		return
	}
	m, err := h.Svc.AddMember(c.Request.Context(), WorkspaceIDFromContext(c), req.Email, req.Role)
	if err != nil {
		writeError(c, err, "failed to add member")
		return
	}
	respond.JSON(c, http.StatusCreated, memberResponse{Email: m.Email, Role: m.Role, CreatedAt: m.CreatedAt})
}

func (h *Handler) removeMember(c *gin.Context) {
	if err := h.Svc.RemoveMember(c.Request.Context(), WorkspaceIDFromContext(c), c.Param("email")); err != nil {
		writeError(c, err, "failed to remove member")
		return
	}
	c.Status(http.StatusNoContent)
}

func writeError(c *gin.Context, err error, fallback string) {
	switch {
	case errors.Is(err, ErrNotFound):
		respond.Error(c, http.StatusNotFound, "not_found", "workspace not found", nil)
	case errors.Is(err, ErrMemberMissing):
		respond.Error(c, http.StatusNotFound, "not_found", "member not found", nil)
	case errors.Is(err, ErrMemberExists):
		respond.Error(c, http.StatusConflict, "conflict", "member already exists", nil)
	case errors.Is(err, ErrLastOwner):
		respond.Error(c, http.StatusConflict, "conflict", err.Error(), nil)
	case errors.Is(err, ErrInvalidInput):
		respond.Error(c, http.StatusBadRequest, "validation_error", err.Error(), nil)
	default:
		respond.Error(c, http.StatusInternalServerError, "internal_error", fallback, nil)
	}
}
