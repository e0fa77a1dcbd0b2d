package webapi

import (
	"github.com/apex/log"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/materials-commons/partdensity/pkg/clog"
)

// RequestLogger logs one line per request to the "api" logging context.
func RequestLogger() echo.MiddlewareFunc {
	return middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogError:   true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			entry := clog.UsingCtx("api").WithFields(log.Fields{
				"method":  v.Method,
				"uri":     v.URI,
				"status":  v.Status,
				"latency": v.Latency.String(),
			})

			if v.Error != nil {
				entry.WithError(v.Error).Warn("request failed")
				return nil
			}

			entry.Info("request")
			return nil
		},
	})
}
