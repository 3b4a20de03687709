package http

import (
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/observability"
)

// ServerOptions tune the fiber application.
type ServerOptions struct {
	Name           string
	RequestTimeout time.Duration
	BodyLimitBytes int
}

// NewApp builds the fiber application with middlewares and routes attached.
func NewApp(logger *zap.Logger, metrics *observability.Metrics, opts ServerOptions, routes RouteConfig) *fiber.App {
	app := fiber.New(fiber.Config{
		AppName:               opts.Name,
		BodyLimit:             opts.BodyLimitBytes,
		DisableStartupMessage: true,
		ErrorHandler:          ErrorHandler(logger, metrics),
	})
	RegisterMiddlewares(app, logger, metrics, opts.RequestTimeout)
	RegisterRoutes(app, routes)
	return app
}
