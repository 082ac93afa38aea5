package server

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"journey-backend/internal/convert"
	"journey-backend/internal/examples"
	"journey-backend/internal/jobs"
	"journey-backend/internal/lawfirms"
	"journey-backend/internal/services/health"
	"journey-backend/internal/shared/config"
	"journey-backend/internal/shared/metrics"
	"journey-backend/internal/shared/server/middleware"
	"journey-backend/internal/shared/server/respond"
	"journey-backend/internal/uploads"
	"journey-backend/internal/workspaces"
)

const jobStatusRoute = "/api/v1/jobs/:id"

// RouterDeps carries the handlers mounted by NewRouter. Nil handlers are skipped.
type RouterDeps struct {
	Config            config.Config
	Membership        workspaces.MembershipChecker
	WorkspacesHandler *workspaces.Handler
	LawFirmsHandler   *lawfirms.Handler
	ExamplesHandler   *examples.Handler
	JobsHandler       *jobs.Handler
	ConvertHandler    *convert.Handler
	UploadsHandler    *uploads.Handler
	RateLimiter       *middleware.RateLimiter
	Health            *health.Service
}

// DefaultRateLimits gives job polling its own, larger budget.
var DefaultRateLimits = map[string]middleware.RateLimitRule{
	"DEFAULT":                        {Rate: 5, Burst: 30},
	middleware.PollingRateLimitGroup: {Rate: 2, Burst: 20},
}

// NewRouter constructs the Gin engine with middleware and routes registered.
func NewRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	r.Use(
		middleware.RequestID(),
		middleware.Logging(),
		middleware.Recovery(),
		middleware.CORS(deps.Config.CORSAllowOrigin),
		middleware.Auth(),
		middleware.RateLimit(middleware.RateLimitConfig{
			Rules:    DefaultRateLimits,
			GroupFor: rateLimitGroup,
			Limiter:  deps.RateLimiter,
		}),
	)

	r.GET("/metrics", metrics.Handler())

	api := r.Group("/api/v1")
	healthSvc := deps.Health
	if healthSvc == nil {
		healthSvc = health.NewService()
	}
	api.GET("/health", func(c *gin.Context) {
		payload, ok := healthSvc.Status(c.Request.Context())
		status := http.StatusOK
		if !ok {
			status = http.StatusServiceUnavailable
		}
		respond.JSON(c, status, payload)
	})
	registerMeRoutes(api)

	if deps.JobsHandler != nil {
		deps.JobsHandler.RegisterRoutes(api)
	}
	if deps.UploadsHandler != nil {
		deps.UploadsHandler.RegisterRoutes(api)
	}
	if deps.ExamplesHandler != nil {
		deps.ExamplesHandler.RegisterRoutes(api)
	}

	if deps.WorkspacesHandler != nil && deps.Membership != nil {
		deps.WorkspacesHandler.RegisterRoutes(api)

		wg := api.Group("/workspaces/:workspaceId", workspaces.RequireMember(deps.Membership))
		deps.WorkspacesHandler.RegisterMemberRoutes(wg)
		if deps.LawFirmsHandler != nil {
			deps.LawFirmsHandler.RegisterRoutes(wg)
		}
		if deps.ConvertHandler != nil {
			deps.ConvertHandler.RegisterRoutes(wg)
		}
	}

	return r
}

func rateLimitGroup(c *gin.Context) string {
	if c.Request.Method == http.MethodGet && c.FullPath() == jobStatusRoute {
		return middleware.PollingRateLimitGroup
	}
	return ""
}

// Addr normalizes the listen address.
func Addr(port string) string {
	if port == "" {
		return ":8080"
	}
	if port[0] == ':' {
		return port
	}
	return ":" + port
}
