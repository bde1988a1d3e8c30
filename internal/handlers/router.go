package handlers

import (
	"fmt"
	"log/slog"
	"time"

	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/infinito-iitp/ca-portal-api/internal/auth"
	"github.com/infinito-iitp/ca-portal-api/internal/constants"
	"github.com/infinito-iitp/ca-portal-api/internal/metrics"
	"github.com/infinito-iitp/ca-portal-api/internal/middleware"
	"github.com/infinito-iitp/ca-portal-api/internal/models"
	"github.com/infinito-iitp/ca-portal-api/internal/ratelimit"
	"github.com/infinito-iitp/ca-portal-api/internal/repository"
	"github.com/infinito-iitp/ca-portal-api/internal/services"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"
)

// RouterConfig carries everything the HTTP layer depends on.
type RouterConfig struct {
	DB              *gorm.DB
	Tokens          *auth.TokenManager
	Log             *slog.Logger
	Metrics         *metrics.Metrics
	Gatherer        prometheus.Gatherer // nil disables /metrics
	GeneralLimiter  ratelimit.Limiter
	PasswordLimiter ratelimit.Limiter
	CORSOrigins     []string
	TrustedProxies  []string // empty trusts no forwarding headers
	Clock           func() time.Time
}

// NewRouter wires repositories, services and handlers into a gin engine.
func NewRouter(cfg RouterConfig) (*gin.Engine, error) {
	userRepo := repository.NewUserRepository(cfg.DB)
	taskRepo := repository.NewTaskRepository(cfg.DB)
	caRepo := repository.NewCAApplicationRepository(cfg.DB)
	submissionRepo := repository.NewSubmissionRepository(cfg.DB)

	taskService := services.NewTaskService(taskRepo)

	authHandler := NewAuthHandler(services.NewAuthService(userRepo, cfg.Tokens))
	profileHandler := NewProfileHandler(services.NewProfileService(userRepo))
	caHandler := NewCAHandler(services.NewCAService(caRepo, cfg.Metrics, cfg.Log))
	dashboardHandler := NewDashboardHandler(services.NewDashboardService(userRepo, taskRepo, caRepo, cfg.Metrics, cfg.Log, cfg.Clock))
	taskHandler := NewTaskHandler(taskService)
	submissionHandler := NewSubmissionHandler(services.NewSubmissionService(submissionRepo, taskRepo, cfg.Metrics, cfg.Log))
	healthHandler := NewHealthHandler(cfg.DB)

	r := gin.New()
	// Rate limits key on ClientIP, so forwarding headers count only when
	// they come from a configured proxy.
	if err := r.SetTrustedProxies(cfg.TrustedProxies); err != nil {
		return nil, fmt.Errorf("trusted proxies: %w", err)
	}
	r.Use(gin.Recovery(), middleware.RequestLogger(cfg.Log))

	if len(cfg.CORSOrigins) > 0 {
		r.Use(cors.New(cors.Config{
			AllowOrigins:     cfg.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "OPTIONS"},
			AllowHeaders:     []string{"Origin", "Content-Type", "Authorization", constants.HeaderRequestID},
			ExposeHeaders:    []string{constants.HeaderRequestID, "RateLimit-Limit", "RateLimit-Remaining", "RateLimit-Reset"},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}))
	}

	// Health check endpoint
	r.GET("/healthcheck", healthHandler.Healthcheck)
	if cfg.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(promhttp.HandlerFor(cfg.Gatherer, promhttp.HandlerOpts{})))
	}

	requireAuth := middleware.RequireAuth(cfg.Tokens, userRepo)
	staff := middleware.RequireRole(models.RoleAdmin, models.RoleModerator)

	// API routes
	api := r.Group("/api")
	if cfg.GeneralLimiter != nil {
		api.Use(middleware.RateLimit(cfg.GeneralLimiter, "general",
			"Too many requests from this IP, please try again later.", cfg.Metrics))
	}
	{
		// Auth routes (public)
		authGroup := api.Group("/auth")
		{
			authGroup.POST("/register", authHandler.Register)
			authGroup.POST("/login", authHandler.Login)
		}

		// Everything below requires a bearer token
		protected := api.Group("")
		protected.Use(requireAuth)

		ca := protected.Group("/ca")
		{
			ca.POST("/apply", middleware.RequireRole(models.RoleUser), caHandler.Apply)
			ca.GET("/application", caHandler.GetMine)
			ca.GET("/applications", staff, caHandler.ListApplications)
			ca.PUT("/:id/accept", staff, caHandler.Accept)
			ca.PUT("/:id/reject", staff, caHandler.Reject)
		}

		protected.GET("/dashboard", dashboardHandler.GetDashboard)
		protected.GET("/profile", profileHandler.GetProfile)
		protected.PUT("/update-profile", profileHandler.UpdateProfile)

		changePassword := []gin.HandlerFunc{}
		if cfg.PasswordLimiter != nil {
			changePassword = append(changePassword, middleware.RateLimit(cfg.PasswordLimiter, "password_change",
				"Too many password change attempts, please try again later.", cfg.Metrics))
		}
		changePassword = append(changePassword, profileHandler.ChangePassword)
		protected.PUT("/change-password", changePassword...)

		tasks := protected.Group("/tasks")
		{
			tasks.GET("", taskHandler.ListTasks)
			tasks.POST("", middleware.RequireRole(models.RoleCA, models.RoleModerator, models.RoleAdmin), taskHandler.CreateTask)
			tasks.GET("/:id", middleware.RequireTaskAccess(taskService), taskHandler.GetTask)
			tasks.POST("/:id/submissions", middleware.RequireRole(models.RoleCA), middleware.RequireTaskAccess(taskService), submissionHandler.Submit)
		}

		submissions := protected.Group("/submissions")
		{
			submissions.GET("/mine", middleware.RequireRole(models.RoleCA), submissionHandler.ListMine)
			submissions.PUT("/:id/review", staff, submissionHandler.Review)
		}
	}

	return r, nil
}
