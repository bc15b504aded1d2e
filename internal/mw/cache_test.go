package mw

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/patrickmn/go-cache"
	"github.com/stretchr/testify/assert"
)

func setupCachedRouter(t *testing.T) (*gin.Engine, *int64) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	store := cache.New(time.Minute, time.Minute)
	var handlerCalls int64

	r := gin.New()
	r.GET("/data", Cache(store, time.Minute), func(c *gin.Context) {
		n := atomic.AddInt64(&handlerCalls, 1)
		c.JSON(http.StatusOK, gin.H{"call": n, "key": c.GetHeader(APIKeyHeader)})
	})
	r.GET("/broken", Cache(store, time.Minute), func(c *gin.Context) {
		atomic.AddInt64(&handlerCalls, 1)
		c.JSON(http.StatusInternalServerError, gin.H{"error": "boom"})
	})
	r.POST("/data", Cache(store, time.Minute), func(c *gin.Context) {
		atomic.AddInt64(&handlerCalls, 1)
		c.Status(http.StatusOK)
	})
	return r, &handlerCalls
}

func cachedGet(router *gin.Engine, path, apiKey string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodGet, path, nil)
	if apiKey != "" {
		req.Header.Set(APIKeyHeader, apiKey)
	}
	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func TestCache_HitAndMiss(t *testing.T) {
	router, calls := setupCachedRouter(t)

	first := cachedGet(router, "/data", "key-a")
	assert.Equal(t, http.StatusOK, first.Code)
	assert.Equal(t, int64(1), atomic.LoadInt64(calls))

	// Repeat with the same credential: served from cache, handler not called.
	second := cachedGet(router, "/data", "key-a")
	assert.Equal(t, http.StatusOK, second.Code)
	assert.Equal(t, first.Body.String(), second.Body.String())
	assert.Equal(t, int64(1), atomic.LoadInt64(calls))
}

func TestCache_KeyIsolatedPerCredential(t *testing.T) {
	router, calls := setupCachedRouter(t)

	a := cachedGet(router, "/data", "key-a")
	assert.Equal(t, http.StatusOK, a.Code)

	// Same URI, different credential: must miss and never see key-a's body.
	b := cachedGet(router, "/data", "key-b")
	assert.Equal(t, http.StatusOK, b.Code)
	assert.Equal(t, int64(2), atomic.LoadInt64(calls))
	assert.NotEqual(t, a.Body.String(), b.Body.String())
	assert.Contains(t, b.Body.String(), "key-b")
	assert.NotContains(t, b.Body.String(), "key-a")

	// Each credential keeps its own entry.
	a2 := cachedGet(router, "/data", "key-a")
	assert.Equal(t, a.Body.String(), a2.Body.String())
	assert.Equal(t, int64(2), atomic.LoadInt64(calls))
}

func TestCache_ErrorResponsesNotCached(t *testing.T) {
	router, calls := setupCachedRouter(t)

	first := cachedGet(router, "/broken", "key-a")
	assert.Equal(t, http.StatusInternalServerError, first.Code)

	second := cachedGet(router, "/broken", "key-a")
	assert.Equal(t, http.StatusInternalServerError, second.Code)
	assert.Equal(t, int64(2), atomic.LoadInt64(calls))
}

func TestCache_NonGETBypassed(t *testing.T) {
	router, calls := setupCachedRouter(t)

	for i := 0; i < 2; i++ {
		req := httptest.NewRequest(http.MethodPost, "/data", nil)
		w := httptest.NewRecorder()
		router.ServeHTTP(w, req)
		assert.Equal(t, http.StatusOK, w.Code)
	}
	assert.Equal(t, int64(2), atomic.LoadInt64(calls))
}

func TestCache_EntryExpires(t *testing.T) {
	gin.SetMode(gin.TestMode)

	store := cache.New(20*time.Millisecond, time.Minute)
	var calls int64
	r := gin.New()
	r.GET("/data", Cache(store, 20*time.Millisecond), func(c *gin.Context) {
		atomic.AddInt64(&calls, 1)
		c.Status(http.StatusOK)
	})

	cachedGet(r, "/data", "key-a")
	cachedGet(r, "/data", "key-a")
	assert.Equal(t, int64(1), atomic.LoadInt64(&calls))

	time.Sleep(40 * time.Millisecond)
	cachedGet(r, "/data", "key-a")
	assert.Equal(t, int64(2), atomic.LoadInt64(&calls))
}
