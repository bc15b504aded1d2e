package api

import (
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"golang.org/x/time/rate"

	"fiberwatch-backend/config"
	"fiberwatch-backend/internal/metrics"
	"fiberwatch-backend/internal/mw"
)

// NewRouter creates and configures a new Gin router.
func NewRouter(cfg *config.Config, handler *Handler) *gin.Engine {
	r := gin.Default()

	rateLimiter := mw.RateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)
	deviceLimiter := mw.DeviceRateLimiter(rate.Limit(cfg.Server.RateLimitPerSec), 5)

	cacheTTL := time.Duration(cfg.Server.CacheTTLSeconds) * time.Second
	cacheStore := cache.New(cacheTTL, 2*cacheTTL)
	caching := mw.Cache(cacheStore, cacheTTL)

	deviceAuth := mw.DeviceAuth(handler.store)

	r.GET("/metrics", gin.WrapH(promhttp.Handler()))

	// API group
	api := r.Group("/api")
	api.Use(rateLimiter, observeLatency())
	{
		// Ingestion pipeline; credential is a hard gate before anything else.
		api.POST("/measurements", deviceAuth, deviceLimiter, handler.PostMeasurement)
		api.GET("/measurements", deviceAuth, deviceLimiter, handler.GetMeasurements)

		// Dashboard collaborators
		api.POST("/predict", handler.Predict)
		api.GET("/data/recent", caching, handler.GetRecentData)
		api.GET("/data/stats", caching, handler.GetStats)
		api.GET("/notifications", handler.GetNotifications)

		// Device registration and editing
		api.POST("/devices", handler.CreateDevice)
		api.GET("/devices", handler.ListDevices)
		api.PUT("/devices/:device_id", handler.UpdateDevice)

		// Web push subscriptions
		api.PUT("/subscriptions", handler.PutSubscription)
		api.DELETE("/subscriptions", handler.DeleteSubscription)
		api.GET("/vapid_public_key", handler.GetVAPIDPublicKey)

		api.POST("/test-email", handler.PostTestEmail)
		api.GET("/health", handler.GetHealth)
	}

	return r
}

// observeLatency records handler latency into the request duration histogram.
func observeLatency() gin.HandlerFunc {
	return func(c *gin.Context) {
		start := time.Now()
		c.Next()
		metrics.RequestDuration.
			WithLabelValues(c.Request.Method, c.FullPath()).
			Observe(time.Since(start).Seconds())
	}
}
