package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"

	"github.com/PratikDhanave/idp-hook-bridge/internal/store"
)

// ReadyTimeout bounds the dependency check behind /ready.
const ReadyTimeout = time.Second

// RegisterHealthRoutes registers the liveness and readiness probes.
// Readiness pings the dedup store when there is one to ping.
func RegisterHealthRoutes(r gin.IRoutes, pinger store.Pinger) {
	// Liveness: confirms the process is running.
	r.GET("/health", func(c *gin.Context) {
		c.JSON(http.StatusOK, gin.H{"status": "ok"})
	})

	r.GET("/ready", func(c *gin.Context) {
		if pinger != nil {
			ctx, cancel := context.WithTimeout(c.Request.Context(), ReadyTimeout)
			defer cancel()

			if err := pinger.Ping(ctx); err != nil {
				c.JSON(http.StatusServiceUnavailable, gin.H{"status": "not_ready", "error": err.Error()})
				return
			}
		}
		c.JSON(http.StatusOK, gin.H{"status": "ready"})
	})
}

// RegisterMetricRoutes exposes the Prometheus registry on GET /metrics.
func RegisterMetricRoutes(r gin.IRoutes) {
	r.GET("/metrics", gin.WrapH(promhttp.Handler()))
}
