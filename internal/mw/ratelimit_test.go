package mw

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"golang.org/x/time/rate"

	"fiberwatch-backend/internal/model"
)

func limitedGet(router *gin.Engine, path, apiKey string) int {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w.Code
}

// Rotating credential headers must not mint fresh buckets: the pre-auth
// limiter keys on the client IP only.
func TestRateLimiter_HeaderRotationSharesBucket(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/x", RateLimiter(rate.Limit(0.001), 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, limitedGet(r, "/x", "bogus-key-1"))
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(r, "/x", "bogus-key-2"))
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(r, "/x", ""))
}

func TestDeviceRateLimiter_KeyedByVerifiedDevice(t *testing.T) {
	gin.SetMode(gin.TestMode)

	inject := func(id string) gin.HandlerFunc {
		return func(c *gin.Context) {
			c.Set(deviceContextKey, &model.Device{ID: id})
		}
	}

	limiter := DeviceRateLimiter(rate.Limit(0.001), 1)
	r := gin.New()
	r.GET("/a", inject("dev-a"), limiter, func(c *gin.Context) { c.Status(http.StatusOK) })
	r.GET("/b", inject("dev-b"), limiter, func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusOK, limitedGet(r, "/a", ""))
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(r, "/a", ""))

	// A different device from the same client IP has its own bucket.
	assert.Equal(t, http.StatusOK, limitedGet(r, "/b", ""))
}

func TestDeviceRateLimiter_FallsBackToIPWithoutDevice(t *testing.T) {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.GET("/x", DeviceRateLimiter(rate.Limit(0.001), 1), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	assert.Equal(t, http.StatusOK, limitedGet(r, "/x", ""))
	assert.Equal(t, http.StatusTooManyRequests, limitedGet(r, "/x", ""))
}
