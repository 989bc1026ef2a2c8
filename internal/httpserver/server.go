package httpserver

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/PratikDhanave/idp-hook-bridge/internal/config"
	"github.com/PratikDhanave/idp-hook-bridge/internal/handlers"
	"github.com/PratikDhanave/idp-hook-bridge/internal/hooks"
	"github.com/PratikDhanave/idp-hook-bridge/internal/logging"
	"github.com/PratikDhanave/idp-hook-bridge/internal/store"
)

// Deps are the collaborators the router serves. A nil processor disables
// that source's endpoint; a nil Ready skips the dependency check.
type Deps struct {
	Auth0  hooks.Processor
	Okta   hooks.Processor
	Ready  store.Pinger
	Logger logrus.FieldLogger
}

// NewRouter wires public endpoints and webhook receivers.
// Probes: /health, /ready, /metrics
// Webhooks: /hooks/auth0, /hooks/okta
func NewRouter(deps Deps) *gin.Engine {
	gin.SetMode(gin.ReleaseMode)
	logger := logging.OrDiscard(deps.Logger)

	r := gin.New()
	r.Use(gin.Recovery(), requestLogger(logger))

	handlers.RegisterHealthRoutes(r, deps.Ready)
	handlers.RegisterMetricRoutes(r)
	handlers.RegisterHookRoutes(r, deps.Auth0, deps.Okta, logger)

	return r
}

// NewServer wraps the router in an http.Server with the configured timeouts.
func NewServer(cfg config.ServerConfig, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              config.ListenAddr(cfg.Port),
		Handler:           handler,
		ReadTimeout:       cfg.ReadTimeout,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      cfg.WriteTimeout,
		IdleTimeout:       cfg.IdleTimeout,
	}
}

func requestLogger(logger logrus.FieldLogger) gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()

		path := c.FullPath()
		if path == "/health" || path == "/ready" || path == "/metrics" {
			return
		}
		logger.WithFields(logrus.Fields{
			logging.FieldMethod: c.Request.Method,
			logging.FieldPath:   c.Request.URL.Path,
			logging.FieldStatus: c.Writer.Status(),
			"duration_ms":       time.Since(start).Milliseconds(),
		}).Info("request handled")
	}
}
