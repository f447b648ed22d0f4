package api

import (
	"github.com/labstack/echo-contrib/echoprometheus"
	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/greenroute/fulfillment-engine/internal/api/handler"
	"github.com/greenroute/fulfillment-engine/internal/api/middleware"
	"github.com/greenroute/fulfillment-engine/internal/core/domain"
	"github.com/greenroute/fulfillment-engine/internal/core/ports"
)

// Deps carries everything the router needs to register routes.
type Deps struct {
	Orders    ports.OrderService
	Optimizer ports.OptimizerService
	Auth      ports.AuthService
	Mongo     *mongo.Database
	Redis     *redis.Client
	JWTSecret string
	Logger    zerolog.Logger
}

// NewRouter builds and returns the Echo instance with all routes registered.
func NewRouter(deps Deps) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.Validator = handler.NewValidator()
	e.HTTPErrorHandler = NewHTTPErrorHandler(deps.Logger)

	// --- Global middleware ---
	e.Use(echomiddleware.Recover())
	e.Use(echomiddleware.RequestID())
	e.Use(echomiddleware.Logger())
	e.Use(echoprometheus.NewMiddleware("fulfillment"))

	authMiddleware := middleware.Auth(deps.JWTSecret)

	// --- Handlers ---
	authHandler := handler.NewAuthHandler(deps.Auth)
	orderHandler := handler.NewOrderHandler(deps.Orders)
	optimizeHandler := handler.NewOptimizeHandler(deps.Optimizer)

	// --- Auth routes ---
	// Registration is admin-only; the first admin account is seeded out of band.
	e.POST("/auth/register", authHandler.Register, authMiddleware, middleware.RBAC(domain.RoleAdmin))
	e.POST("/auth/login", authHandler.Login)

	// --- Health probes (no auth required) ---
	healthHandler := handler.NewHealthHandler()
	readinessHandler := handler.NewReadinessHandler(deps.Mongo, deps.Redis)

	e.GET("/health", healthHandler.Liveness)           // liveness  – is the process alive?
	e.GET("/health/ready", readinessHandler.Readiness) // readiness – are dependencies up?

	// --- Metrics ---
	e.GET("/metrics", echoprometheus.NewHandler())

	// --- Fulfillment routes (JWT required) ---
	v1 := e.Group("/v1", authMiddleware)

	operators := middleware.RBAC(domain.RoleAdmin, domain.RoleOps)
	v1.POST("/orders", orderHandler.Create, operators)
	v1.GET("/orders/:id", orderHandler.Get, operators)
	v1.POST("/orders/:id/optimize", optimizeHandler.Optimize, operators)

	return e
}
