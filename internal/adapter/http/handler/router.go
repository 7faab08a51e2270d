package handler

import (
	"reimbursement-hub/internal/adapter/http/middleware"
	redisStore "reimbursement-hub/internal/adapter/storage/redis"
	"reimbursement-hub/internal/core/ports"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"
)

// RouterDeps holds all dependencies needed to set up routes.
type RouterDeps struct {
	AuthSvc        ports.AuthService
	LifecycleSvc   ports.LifecycleService
	QuerySvc       ports.QueryService
	FundSvc        ports.FundService
	AuditSvc       ports.AuditService
	TokenSvc       ports.TokenService
	RateLimitStore *redisStore.RateLimitStore // nil = rate limiting disabled
	HealthCheckers []ports.HealthChecker
	Logger         zerolog.Logger
}

// SetupRouter initialises the Gin engine with all routes and middleware.
func SetupRouter(deps RouterDeps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	r := gin.New()

	// Global middleware
	r.Use(middleware.Recovery(deps.Logger))
	r.Use(middleware.RequestID())
	r.Use(middleware.RequestLogger(deps.Logger))
	r.Use(middleware.MaxBodySize(1 << 20)) // 1 MB request body limit

	// Health check (deep, verifies PostgreSQL + Redis)
	r.GET("/health", HealthCheck(deps.HealthCheckers...))

	// Rate limit rules
	rules := middleware.DefaultRateLimitRules()

	// Helper: return rate limiter middleware if store is available, else noop.
	rl := func(group string) gin.HandlerFunc {
		if deps.RateLimitStore == nil {
			return func(c *gin.Context) { c.Next() }
		}
		rule, ok := rules[group]
		if !ok {
			return func(c *gin.Context) { c.Next() }
		}
		return middleware.RateLimiter(deps.RateLimitStore, group, rule, deps.Logger)
	}

	v1 := r.Group("/api/v1")

	// --- Public routes (no auth) ---
	authHandler := NewAuthHandler(deps.AuthSvc)
	auth := v1.Group("/auth")
	{
		auth.POST("/register", rl("auth_register"), authHandler.Register)
		auth.POST("/login", rl("auth_login"), authHandler.Login)
	}

	// --- Authenticated routes ---
	jwtAuth := middleware.JWTAuth(deps.TokenSvc, deps.Logger)
	requestHandler := NewRequestHandler(deps.LifecycleSvc, deps.QuerySvc)

	v1.POST("/auth/change-password", jwtAuth, rl("auth_login"), authHandler.ChangePassword)

	requests := v1.Group("/requests", jwtAuth)
	{
		requests.POST("", rl("requests"), requestHandler.Create)
		requests.GET("/mine", rl("queries"), requestHandler.MyHistory)
		requests.POST("/:id/withdraw", rl("requests"), requestHandler.Withdraw)
	}

	v1.GET("/funds", jwtAuth, rl("queries"), requestHandler.RemainingFunds)

	// --- Administrator routes ---
	adminHandler := NewAdminHandler(deps.LifecycleSvc, deps.QuerySvc, deps.FundSvc, deps.AuditSvc)
	admin := v1.Group("/admin", jwtAuth, middleware.RequireAdmin())
	{
		admin.GET("/requests", rl("admin"), adminHandler.ListAll)
		admin.GET("/requests/pending", rl("admin"), adminHandler.ListPending)
		admin.GET("/requests/processed", rl("admin"), adminHandler.ListProcessed)
		admin.POST("/requests/:id/review", rl("admin"), adminHandler.Review)
		admin.GET("/funds", rl("admin"), adminHandler.GetFunds)
		admin.PUT("/funds", rl("admin"), adminHandler.SetFunds)
		admin.GET("/audit", rl("admin"), adminHandler.ListAudit)
	}

	return r
}
