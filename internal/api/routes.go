// routes.go - Server construction and route registration
package api

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/labstack/gommon/log"
	"github.com/netstats-history/netdelta/internal/session"
)

// Handlers holds all handler instances
type Handlers struct {
	Health    *HealthHandler
	Report    *ReportHandler
	WebSocket *WebSocketHandler
}

// NewHandlers creates all handler instances
func NewHandlers(result *session.Result, version string) *Handlers {
	return &Handlers{
		Health:    NewHealthHandler(version),
		Report:    NewReportHandler(result),
		WebSocket: NewWebSocketHandler(result),
	}
}

// RegisterRoutes registers all API routes with the Echo instance
func RegisterRoutes(e *echo.Echo, handlers *Handlers) {
	apiGroup := e.Group("/api")
	apiGroup.GET("/health", handlers.Health.HandleHealth)

	apiGroup.GET("/report", handlers.Report.HandleGetReport)
	apiGroup.GET("/report/msgpack", handlers.Report.HandleGetReportMsgpack)
	apiGroup.GET("/interfaces", handlers.Report.HandleListInterfaces)
	apiGroup.GET("/interfaces/:name/deltas", handlers.Report.HandleGetInterfaceDeltas)

	apiGroup.GET("/ws", handlers.WebSocket.HandleWebSocket)
}

// NewEcho builds the echo instance serving result. logger is shared with the
// rest of the process; nil keeps echo's default.
func NewEcho(result *session.Result, version string, logger *log.Logger) *echo.Echo {
	e := echo.New()
	e.HideBanner = true
	e.HidePort = true
	if logger != nil {
		e.Logger = logger
	}
	e.HTTPErrorHandler = ErrorHandler

	e.Use(middleware.RecoverWithConfig(middleware.RecoverConfig{
		StackSize: 1024 * 4,
	}))
	e.Use(middleware.RequestLoggerWithConfig(middleware.RequestLoggerConfig{
		LogMethod:  true,
		LogURI:     true,
		LogStatus:  true,
		LogLatency: true,
		LogValuesFunc: func(c echo.Context, v middleware.RequestLoggerValues) error {
			c.Logger().Infof("[API] %s %s %d %v", v.Method, v.URI, v.Status, v.Latency)
			return nil
		},
	}))

	RegisterRoutes(e, NewHandlers(result, version))
	return e
}

// ServerOptions configures the HTTP server around the echo instance.
type ServerOptions struct {
	Addr         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// NewHTTPServer wraps e in an http.Server with the configured timeouts.
func NewHTTPServer(e *echo.Echo, opts ServerOptions) *http.Server {
	return &http.Server{
		Addr:         opts.Addr,
		Handler:      e,
		ReadTimeout:  opts.ReadTimeout,
		WriteTimeout: opts.WriteTimeout,
		IdleTimeout:  120 * time.Second,
	}
}
