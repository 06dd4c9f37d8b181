package http

import (
	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/spec-kit/support-desk/internal/api/http/handlers"
	"github.com/spec-kit/support-desk/internal/auth"
	"github.com/spec-kit/support-desk/internal/config"
	"github.com/spec-kit/support-desk/internal/observability"
	"github.com/spec-kit/support-desk/internal/persistence"
	"github.com/spec-kit/support-desk/internal/repository"
	"github.com/spec-kit/support-desk/internal/service"
)

// Services groups what the HTTP layer needs from the rest of the app.
type Services struct {
	Tickets   *service.TicketService
	Queries   *service.QueryService
	Dashboard *service.DashboardService
	Auth      *service.AuthService
	Users     repository.UserRepository
	Postgres  *persistence.Postgres
	Redis     *persistence.Redis
}

// NewApp builds the Fiber application with middlewares and routes.
func NewApp(cfg config.AppConfig, logger *zap.Logger, metrics *observability.Metrics, svc Services) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               cfg.Name,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger),
	})

	RegisterMiddlewares(app, logger, metrics, cfg.RequestTimeout(), cfg.CORSOrigins)
	RegisterRoutes(app, RouteConfig{
		Health:         handlers.NewHealthHandler(cfg.Name, cfg.Version, svc.Postgres, svc.Redis),
		Metrics:        handlers.NewMetricsHandler(metrics),
		Tickets:        handlers.NewTicketsHandler(svc.Tickets, svc.Queries),
		Dashboard:      handlers.NewDashboardHandler(svc.Dashboard),
		Auth:           handlers.NewAuthHandler(svc.Auth),
		Users:          handlers.NewUsersHandler(svc.Users),
		AuthMiddleware: auth.NewAuthMiddleware(svc.Auth.TokenManager(), svc.Users),
	})
	return app
}
