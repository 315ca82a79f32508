package api

import (
	"github.com/google/uuid"
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/rs/zerolog"
	echoSwagger "github.com/swaggo/echo-swagger"

	_ "github.com/taskhub/taskhub/docs" // swagger spec
	"github.com/taskhub/taskhub/internal/api/handler"
	"github.com/taskhub/taskhub/internal/api/middleware"
	"github.com/taskhub/taskhub/internal/core/domain"
	"github.com/taskhub/taskhub/internal/core/ports"
)

// Dependencies is everything the HTTP layer needs. Revocations may be nil,
// in which case the guard checks signatures only.
type Dependencies struct {
	Logger      zerolog.Logger
	Tokens      ports.TokenVerifier
	Revocations ports.SessionRevoker

	Auth     ports.AuthService
	Users    ports.UserService
	Projects ports.ProjectService
	Tasks    ports.TaskService
	Tags     ports.TagService

	// Health lists the dependencies checked by the readiness probe.
	Health map[string]handler.Pinger
	// AuthRateLimit is requests per minute per IP on /auth/register and
	// /auth/login. Zero disables it.
	AuthRateLimit int
	// Registry receives the HTTP metrics. Nil means the default registry.
	Registry *prometheus.Registry
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(d Dependencies) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = NewHTTPErrorHandler(d.Logger)
	e.Validator = handler.NewValidator()
	e.JSONSerializer = handler.StrictJSONSerializer{}

	var (
		registerer prometheus.Registerer = prometheus.DefaultRegisterer
		gatherer   prometheus.Gatherer   = prometheus.DefaultGatherer
	)
	if d.Registry != nil {
		registerer, gatherer = d.Registry, d.Registry
	}

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestIDWithConfig(echomiddleware.RequestIDConfig{
		Generator: uuid.NewString,
	}))
	e.Use(middleware.RequestLogger(d.Logger))
	e.Use(echoprometheus.NewMiddlewareWithConfig(echoprometheus.MiddlewareConfig{
		Subsystem:  "taskhub",
		Registerer: registerer,
	}))

	// --- Operational endpoints (no auth required) ---
	health := handler.NewHealthHandler(d.Health)
	e.GET("/health", health.Liveness)
	e.GET("/health/ready", health.Readiness)
	e.GET("/metrics", echoprometheus.NewHandlerWithConfig(echoprometheus.HandlerConfig{Gatherer: gatherer}))
	e.GET("/swagger/*", echoSwagger.WrapHandler)

	guard := middleware.Auth(d.Tokens, d.Revocations, d.Logger)
	adminOnly := middleware.RBAC(domain.RoleAdmin)

	// --- Auth ---
	authHandler := handler.NewAuthHandler(d.Auth)
	limited := middleware.AuthRateLimit(d.AuthRateLimit)
	e.POST("/auth/register", authHandler.Register, limited)
	e.POST("/auth/login", authHandler.Login, limited)
	e.GET("/auth/me", authHandler.Me, guard)

	// --- Users ---
	users := e.Group("/users", guard)
	userHandler := handler.NewUserHandler(d.Users)
	users.GET("", userHandler.List, adminOnly)
	users.GET("/:id", userHandler.Get)
	users.PATCH("/:id", userHandler.Update)
	users.PATCH("/:id/role", userHandler.ChangeRole, adminOnly)
	users.PATCH("/:id/password", userHandler.ChangePassword)
	users.DELETE("/:id", userHandler.Delete, adminOnly)

	// --- Projects ---
	projects := e.Group("/projects", guard)
	projectHandler := handler.NewProjectHandler(d.Projects)
	projects.GET("", projectHandler.List)
	projects.POST("", projectHandler.Create)
	projects.GET("/:id", projectHandler.Get)
	projects.PATCH("/:id", projectHandler.Update)
	projects.DELETE("/:id", projectHandler.Delete)

	// --- Tasks ---
	tasks := e.Group("/tasks", guard)
	taskHandler := handler.NewTaskHandler(d.Tasks)
	tasks.GET("", taskHandler.List)
	tasks.GET("/stats", taskHandler.Stats)
	tasks.POST("", taskHandler.Create)
	tasks.GET("/:id", taskHandler.Get)
	tasks.PATCH("/:id", taskHandler.Update)
	tasks.DELETE("/:id", taskHandler.Delete)
	tasks.GET("/:id/activity", taskHandler.Activity)

	// --- Tags ---
	tags := e.Group("/tags", guard)
	tagHandler := handler.NewTagHandler(d.Tags)
	tags.GET("", tagHandler.List)
	tags.POST("", tagHandler.Create)
	tags.GET("/:id", tagHandler.Get)
	tags.PATCH("/:id", tagHandler.Rename)
	tags.DELETE("/:id", tagHandler.Delete, adminOnly)

	return e
}
