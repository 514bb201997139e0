package main

import (
	"net/http"
	"os"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"gorm.io/gorm"

	"github.com/driftline/foundry/internal/app"
	"github.com/driftline/foundry/internal/cache"
	"github.com/driftline/foundry/internal/entities"
	"github.com/driftline/foundry/internal/monitoring"
	"github.com/driftline/foundry/internal/monitoring/checks"
)

// newRouter builds the operational HTTP surface: health probes, metrics and
// the cache flush hook. Game routes are mounted by the consuming
// application, not here.
func newRouter(cfg *app.Config, db *gorm.DB, store cache.Store, registries *entities.Registries) *gin.Engine {
	if debug, _ := os.LookupEnv("GIN_DEBUG"); debug != "true" {
		gin.SetMode(gin.ReleaseMode)
	}

	router := gin.New()
	router.Use(gin.Recovery())

	if cfg.Monitoring.Health.Enabled {
		health := monitoring.NewHealthManager()
		health.Register(checks.Database(db, 0))
		health.Register(checks.CacheStore(store, 0))

		router.GET("/healthz", func(c *gin.Context) {
			report := health.Evaluate(c.Request.Context())
			status := http.StatusOK
			if !report.Success {
				status = http.StatusServiceUnavailable
			}
			c.JSON(status, report)
		})
	}

	if cfg.Monitoring.Prometheus.Enabled {
		endpoint := cfg.Monitoring.Prometheus.Endpoint
		if endpoint == "" {
			endpoint = "/metrics"
		}
		router.GET(endpoint, gin.WrapH(promhttp.Handler()))
	}

	// Operator escape hatch after out-of-band data fixes: drops every
	// identity registry along with its cached fields.
	router.POST("/internal/cache/flush", func(c *gin.Context) {
		registries.ClearAll()
		c.JSON(http.StatusOK, gin.H{"status": "flushed"})
	})

	return router
}
