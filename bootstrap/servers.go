package bootstrap

import (
	"book-search/config"
	"book-search/logger"
	"book-search/middleware"
	"book-search/rest"
	appOtel "book-search/utils/otel"

	"github.com/labstack/echo/v4"
	echomw "github.com/labstack/echo/v4/middleware"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"
)

// newHTTPServer creates the REST server with the v1 routes mounted under the API root path.
func newHTTPServer(cfg config.HTTPConfig, handler *rest.Handler, otelCfg appOtel.Config) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	e.HTTPErrorHandler = rest.ErrorHandler
	e.Server.ReadHeaderTimeout = cfg.ReadHeaderTimeout

	e.Use(echomw.Recover())
	if otelCfg.Enabled {
		e.Use(otelecho.Middleware(otelCfg.ServiceName))
		e.Use(middleware.OTelStatusMiddleware())
	}
	e.Use(middleware.RequestIDMiddleware())
	e.Use(middleware.LoggingMiddleware(logger.GlobalContext))

	rest.RegisterRoutes(e, cfg.APIRootPath, handler)
	return e
}
