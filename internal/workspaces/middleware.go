package workspaces

import (
	"context"
	"net/http"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/shared/server/middleware"
	"journey-backend/internal/shared/server/respond"
)

const workspaceIDKey = "workspaceId"

// MembershipChecker is the subset of Service used by RequireMember.
type MembershipChecker interface {
	IsMember(ctx context.Context, workspaceID, email string) (bool, error)
}

// RequireMember rejects callers without an email claim (401) and callers that are not members of
// the :workspaceId in the path (403).
func RequireMember(checker MembershipChecker) gin.HandlerFunc {
	return func(c *gin.Context) {
		email := middleware.UserEmailFromContext(c)
		if middleware.IsGuest(c) || email == "" {
			respond.Error(c, http.StatusUnauthorized, "login_required", "sign in with a workspace account", nil)
			return
		}

		workspaceID := c.Param("workspaceId")
		ok, err := checker.IsMember(c.Request.Context(), workspaceID, email)
		if err != nil {
			respond.Error(c, http.StatusInternalServerError, "internal_error", "failed to check workspace membership", nil)
			return
		}
		if !ok {
			respond.Error(c, http.StatusForbidden, "forbidden", "not a member of this workspace", nil)
			return
		}

		c.Set(workspaceIDKey, workspaceID)
		c.Next()
	}
}

// WorkspaceIDFromContext returns the workspace id verified by RequireMember.
func WorkspaceIDFromContext(c *gin.Context) string {
	return c.GetString(workspaceIDKey)
}
