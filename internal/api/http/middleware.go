package http

import (
	"context"
	"fmt"
	"runtime/debug"
	"time"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/visitordesk/visitor-service/internal/observability"
	apperrors "github.com/visitordesk/visitor-service/pkg/util/errorutil"
)

// RegisterMiddlewares attaches global middlewares. The request logger wraps
// the error normalizer so it observes the status the normalizer writes.
func RegisterMiddlewares(app *fiber.App, logger *zap.Logger, metrics *observability.Metrics, timeout time.Duration) {
	app.Use(observability.RequestLogger(logger, metrics))
	app.Use(errorHandlingMiddleware(logger, metrics))
	if timeout > 0 {
		app.Use(requestTimeoutMiddleware(timeout))
	}
}

// ErrorHandler is the fiber fallback for errors raised outside the middleware chain.
func ErrorHandler(logger *zap.Logger, metrics *observability.Metrics) fiber.ErrorHandler {
	return func(c *fiber.Ctx, err error) error {
		writeError(c, logger, metrics, err)
		return nil
	}
}

func requestTimeoutMiddleware(timeout time.Duration) fiber.Handler {
	return func(c *fiber.Ctx) error {
		ctx, cancel := context.WithTimeout(c.UserContext(), timeout)
		defer cancel()
		c.SetUserContext(ctx)
		return c.Next()
	}
}

func errorHandlingMiddleware(logger *zap.Logger, metrics *observability.Metrics) fiber.Handler {
	return func(c *fiber.Ctx) (err error) {
		defer func() {
			if r := recover(); r != nil {
				logger.Error("panic recovered", zap.Any("panic", r), zap.ByteString("stack", debug.Stack()))
				err = apperrors.NewInternalError(fmt.Errorf("panic: %v", r))
			}
			if err != nil {
				writeError(c, logger, metrics, err)
				err = nil
			}
		}()
		return c.Next()
	}
}

func writeError(c *fiber.Ctx, logger *zap.Logger, metrics *observability.Metrics, err error) {
	domainErr := apperrors.ToDomainError(err)
	route := c.Path()
	if r := c.Route(); r != nil && r.Path != "" {
		route = r.Path
	}
	metrics.RecordError(route, c.Method(), domainErr.Code)
	if domainErr.HTTPStatus >= fiber.StatusInternalServerError {
		logger.Error("request failed",
			zap.String("request_id", observability.RequestID(c)),
			zap.String("code", domainErr.Code),
			zap.Error(domainErr))
	}
	if domainErr.Code == apperrors.CodeTooManyRequests {
		if detail, ok := domainErr.Detail.(map[string]any); ok {
			if retry, ok := detail["retry_after_seconds"]; ok {
				c.Set(fiber.HeaderRetryAfter, fmt.Sprint(retry))
			}
		}
	}
	_ = c.Status(domainErr.HTTPStatus).JSON(domainErr)
}
