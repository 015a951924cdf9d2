package router // package router defines how HTTP routes are registered for the API

import (
	"github.com/labstack/echo/v4"
	"github.com/redis/go-redis/v9"

	"github.com/kolade/campus-election/internal/config"
	"github.com/kolade/campus-election/internal/handler"
	"github.com/kolade/campus-election/internal/middleware"
	"github.com/kolade/campus-election/internal/utils"
)

// Handlers bundles every handler the API mounts. All fields must be
// non-nil.
type Handlers struct {
	Auth        *handler.AuthHandler
	Vote        *handler.VoteHandler
	Admin       *handler.AdminHandler
	Eligibility *handler.EligibilityHandler
	Results     *handler.PublicResultsHandler
}

// RegisterRoutes mounts the full API surface on the Echo instance:
//
//	/healthz                  – liveness probe, no auth
//	/v1/auth/*                – register and login, rate limited
//	/v1/departments           – public department list
//	/v1/results               – public results, cached, visibility gated
//	/v1/*                     – voter endpoints, JWT required
//	/v1/admin/*               – admin console, ADMIN role required
//
// rdb may be nil, which disables rate limiting and response caching.
func RegisterRoutes(e *echo.Echo, h Handlers, cfg config.Config, rdb *redis.Client) {
	e.GET("/healthz", handler.Health)

	limiter := middleware.NewTokenBucket(rdb, config.LoadRateLimitConfig())
	cache := middleware.NewRedisCache(rdb, config.LoadCacheConfig())

	// Credential endpoints are the brute-force target, so the rate
	// limiter sits on this group only.
	auth := e.Group("/v1/auth", limiter)
	auth.POST("/register", h.Auth.Register)
	auth.POST("/login", h.Auth.Login)

	// Public, unauthenticated reads. Results accept an optional
	// session token so admins see tallies regardless of the
	// visibility policy.
	e.GET("/v1/departments", h.Auth.ListDepartments)
	e.GET("/v1/results", h.Results.Results, middleware.OptionalJWTAuth(cfg.JWTSecret), cache)

	// Voter endpoints. Both roles pass; admins can inspect their own
	// ballot like any voter.
	v1 := e.Group("/v1")
	v1.Use(middleware.JWTAuth(cfg.JWTSecret))
	v1.Use(middleware.RequireRole(utils.RoleStudent, utils.RoleAdmin))
	v1.GET("/auth/me", h.Auth.Profile)
	v1.GET("/vote/data", h.Vote.GetVotingData)
	v1.POST("/vote", h.Vote.CastVote)
	v1.GET("/vote/receipt", h.Vote.GetReceipt)

	// Admin console.
	admin := e.Group("/v1/admin")
	admin.Use(middleware.JWTAuth(cfg.JWTSecret))
	admin.Use(middleware.RequireRole(utils.RoleAdmin))

	admin.POST("/departments", h.Admin.CreateDepartment)
	admin.GET("/departments", h.Admin.ListAllDepartments)
	admin.PUT("/departments/:id", h.Admin.UpdateDepartment)
	admin.DELETE("/departments/:id", h.Admin.DeleteDepartment)

	admin.POST("/offices", h.Admin.CreateOffice)
	admin.GET("/offices", h.Admin.ListOffices)
	admin.PUT("/offices/:id", h.Admin.UpdateOffice)
	admin.DELETE("/offices/:id", h.Admin.DeleteOffice)

	admin.POST("/candidates", h.Admin.CreateCandidate)
	admin.GET("/candidates", h.Admin.ListCandidates)
	admin.PUT("/candidates/:id", h.Admin.UpdateCandidate)
	admin.DELETE("/candidates/:id", h.Admin.DeleteCandidate)

	admin.GET("/settings", h.Admin.GetSettings)
	admin.PUT("/settings", h.Admin.UpdateSettings)

	admin.GET("/results", h.Admin.Results)
	admin.GET("/statistics", h.Admin.Statistics)

	admin.GET("/eligibility/college", h.Eligibility.ListCollege)
	admin.POST("/eligibility/college", h.Eligibility.AddCollege)
	admin.POST("/eligibility/college/bulk", h.Eligibility.BulkAddCollege)
	admin.DELETE("/eligibility/college/:studentId", h.Eligibility.RemoveCollege)

	admin.GET("/eligibility/department", h.Eligibility.ListDepartment)
	admin.POST("/eligibility/department", h.Eligibility.AddDepartment)
	admin.POST("/eligibility/department/bulk", h.Eligibility.BulkAddDepartment)
	admin.DELETE("/eligibility/department/:id", h.Eligibility.RemoveDepartment)
}
