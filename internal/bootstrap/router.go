package bootstrap

import (
	"database/sql"
	"time"

	"github.com/GoSim-25-26J-441/taskhub-backend/config"
	httpapi "github.com/GoSim-25-26J-441/taskhub-backend/internal/api/http"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/api/http/middleware"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/auth"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/dashboard"
	projecthttp "github.com/GoSim-25-26J-441/taskhub-backend/internal/projects/http"
	projectrepo "github.com/GoSim-25-26J-441/taskhub-backend/internal/projects/repository"
	projectsvc "github.com/GoSim-25-26J-441/taskhub-backend/internal/projects/service"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/stats"
	taskhttp "github.com/GoSim-25-26J-441/taskhub-backend/internal/tasks/http"
	taskrepo "github.com/GoSim-25-26J-441/taskhub-backend/internal/tasks/repository"
	tasksvc "github.com/GoSim-25-26J-441/taskhub-backend/internal/tasks/service"
	"github.com/GoSim-25-26J-441/taskhub-backend/internal/users"
	"github.com/gin-contrib/cors"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
)

type RouterDeps struct {
	ServiceName string
	Config      *config.Config
	DB          *sql.DB
	Redis       *redis.Client
	// Firebase is optional; nil disables Firebase ID tokens.
	Firebase auth.IDTokenVerifier
	Clock    func() time.Time
}

func BuildRouter(dep RouterDeps) *gin.Engine {
	cfg := dep.Config
	r := gin.New()

	metrics := middleware.NewMetrics()
	r.Use(
		gin.Recovery(),
		middleware.RequestID(),
		middleware.AccessLog(),
		metrics.Middleware(),
		cors.New(cors.Config{
			AllowOrigins:     cfg.Server.CORSOrigins,
			AllowMethods:     []string{"GET", "POST", "PUT", "PATCH", "DELETE", "OPTIONS"},
			AllowHeaders:     []string{"Authorization", "Content-Type", middleware.HeaderRequestID},
			ExposeHeaders:    []string{middleware.HeaderRequestID},
			AllowCredentials: true,
			MaxAge:           12 * time.Hour,
		}),
	)

	healthHandler := httpapi.NewHealthHandler(dep.ServiceName, cfg.App.Version, dep.DB, dep.Redis)
	healthHandler.RegisterRoutes(r)
	r.GET("/metrics", metrics.Handler())

	var cache *stats.Cache
	if dep.Redis != nil {
		cache = stats.NewCache(dep.Redis, cfg.Redis.StatsTTL)
	}
	agg := stats.NewAggregator(cfg.DueSoonWindow())

	// A nil *stats.Cache must stay a nil interface for the services.
	var inv projectsvc.CacheInvalidator
	var dashCache dashboard.Cache
	if cache != nil {
		inv, dashCache = cache, cache
	}

	userRepo := users.NewRepo(dep.DB)
	projectRepo := projectrepo.NewProjectRepository(dep.DB)
	taskRepo := taskrepo.NewTaskRepository(dep.DB)

	tokens := auth.NewTokens(cfg.Auth.JWTSecret, cfg.Auth.TokenTTL)
	authSvc := auth.NewService(userRepo, tokens)
	authn := auth.NewAuthenticator(tokens, dep.Firebase, userRepo)

	projects := projectsvc.NewProjectService(projectRepo, taskRepo, inv, projectsvc.Options{
		DefaultPageSize: cfg.App.DefaultPageSize,
		MaxPageSize:     cfg.App.MaxPageSize,
		DueSoonWindow:   cfg.DueSoonWindow(),
		Clock:           dep.Clock,
	})
	tasks := tasksvc.NewTaskService(taskRepo, projectRepo, userRepo, inv, tasksvc.Options{
		DefaultPageSize: cfg.App.DefaultPageSize,
		MaxPageSize:     cfg.App.MaxPageSize,
		DueSoonWindow:   cfg.DueSoonWindow(),
		Clock:           dep.Clock,
	})
	dash := dashboard.NewService(projectRepo, taskRepo, dashCache, agg, dep.Clock)

	limiter := middleware.NewRateLimiter(cfg.App.RateLimitRPS, cfg.App.RateLimitBurst)
	authHandler := auth.NewHandler(authSvc)

	api := r.Group("/api/v1")
	api.GET("/meta/enums", httpapi.Enums)
	authHandler.RegisterPublic(api.Group("/auth", limiter.Middleware()))

	protected := api.Group("",
		authn.Middleware(),
		limiter.Middleware(),
		httpapi.HideForbidden(cfg.App.HideForbidden),
	)
	authHandler.RegisterProtected(protected.Group("/auth"))
	users.NewHandler(userRepo).Register(protected.Group("/users"))
	projecthttp.New(projects).Register(protected.Group("/projects"))
	taskhttp.New(tasks).Register(protected.Group("/tasks"))
	dashboard.NewHandler(dash).Register(protected.Group("/dashboard"))

	return r
}
