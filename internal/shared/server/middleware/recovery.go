package middleware

import (
	"fmt"
	"net/http"
	"runtime/debug"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/shared/server/respond"
	"journey-backend/internal/shared/telemetry"
)

// Recovery recovers from panics and returns a standardized error response.
func Recovery() gin.HandlerFunc {
	return func(c *gin.Context) {
		defer func() {
			if rec := recover(); rec != nil {
				reqID := RequestIDFromContext(c)
				telemetry.Error("http.panic", map[string]any{
					"request_id":   reqID,
					"error":        fmt.Sprint(rec),
					"stack":        string(debug.Stack()),
					"path":         c.Request.URL.Path,
					"method":       c.Request.Method,
					"user_id":      UserIDFromContext(c),
					"workspace_id": c.Param("workspaceId"),
				})
				respond.Error(c, http.StatusInternalServerError, "internal_error", "unexpected server error", nil)
			}
		}()
		c.Next()
	}
}
