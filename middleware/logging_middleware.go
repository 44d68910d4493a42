package middleware

import (
	"book-search/logger"
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
)

// LoggingMiddleware tags the request context with its route and writes an access
// log line for every response that is not 200 OK.
func LoggingMiddleware(contextLogger *logger.ContextLogger) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			req := c.Request()
			start := time.Now()

			ctx := logger.WithOperation(req.Context(), req.Method+" "+req.URL.Path)
			c.SetRequest(req.WithContext(ctx))

			err := next(c)

			status := c.Response().Status
			if he, ok := err.(*echo.HTTPError); ok && !c.Response().Committed {
				status = he.Code
			}
			if status == http.StatusOK {
				return err
			}

			contextLogger.WithContext(ctx).Info("request completed",
				"log_type", "access",
				"method", req.Method,
				"url", req.URL.String(),
				"status_code", status,
				"ip_address", c.RealIP(),
				"duration_ms", time.Since(start).Milliseconds(),
			)

			return err
		}
	}
}
