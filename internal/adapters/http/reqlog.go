package http

import (
	"context"
	"log/slog"

	"github.com/gofiber/fiber/v2"
)

type ctxKey string

const requestIDKey ctxKey = "request_id"

// RequestIDLogMiddleware injects a per-request *slog.Logger into the
// context, with the request ID and route baked in so a save, review, or
// delete can be traced back to the request that caused it.
func RequestIDLogMiddleware() fiber.Handler {
	return func(c *fiber.Ctx) error {
		rid := c.Locals("requestid")
		if rid == nil {
			return c.Next()
		}

		ridStr, ok := rid.(string)
		if !ok || ridStr == "" {
			return c.Next()
		}

		reqLogger := slog.Default().With(
			"request_id", ridStr,
			"method", c.Method(),
			"path", c.Path(),
		)

		// Store logger in Go context so usecases/repos can retrieve it.
		ctx := context.WithValue(c.Context(), requestIDKey, ridStr)
		ctx = context.WithValue(ctx, ctxKey("logger"), reqLogger)
		c.SetUserContext(ctx)

		return c.Next()
	}
}

// LoggerFromCtx extracts the per-request slog.Logger from a context.
// Falls back to the default logger if none is set.
func LoggerFromCtx(ctx context.Context) *slog.Logger {
	if l, ok := ctx.Value(ctxKey("logger")).(*slog.Logger); ok {
		return l
	}
	return slog.Default()
}

// SiteLoggerFromCtx returns the request logger scoped to one site.
func SiteLoggerFromCtx(ctx context.Context, siteID string) *slog.Logger {
	return LoggerFromCtx(ctx).With("site_id", siteID)
}
