package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"

	"github.com/certdesk/certdesk/pkg/metrics"
)

func TestRateLimitMiddleware_AllowsUnderLimit(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(10, 2))
	r.GET("/ok", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	before := testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory"))
	for i := 0; i < 2; i++ {
		req := httptest.NewRequest("GET", "/ok", nil)
		req.RemoteAddr = "10.0.0.1:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		require.Equal(t, http.StatusOK, w.Code)
	}
	require.Equal(t, before+2, testutil.ToFloat64(metrics.RateLimitAllowed.WithLabelValues("memory")))
}

func TestRateLimitMiddleware_BlocksWhenExceeded(t *testing.T) {
	r := gin.New()
	r.Use(RateLimitMiddleware(0.5, 1))
	r.GET("/limited", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	send := func() int {
		req := httptest.NewRequest("GET", "/limited", nil)
		req.RemoteAddr = "10.0.0.2:1234"
		w := httptest.NewRecorder()
		r.ServeHTTP(w, req)
		return w.Code
	}
	require.Equal(t, http.StatusOK, send())
	require.Equal(t, http.StatusTooManyRequests, send())

	time.Sleep(2100 * time.Millisecond)
	require.Equal(t, http.StatusOK, send())
}

func TestRateLimitMiddleware_KeysByAccount(t *testing.T) {
	r := gin.New()
	r.Use(func(c *gin.Context) {
		c.Set("claims", map[string]interface{}{"sub": "user-123"})
		c.Next()
	})
	r.GET("/api/accounts/:accountID/render", RateLimitMiddleware(0.5, 1), func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })
	r.GET("/u", RateLimitMiddleware(0.5, 1), func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	get := func(path string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", path, nil))
		return w.Code
	}
	require.Equal(t, http.StatusOK, get("/api/accounts/RLACCOUNT00000001/render"))
	require.Equal(t, http.StatusTooManyRequests, get("/api/accounts/RLACCOUNT00000001/render"))
	require.Equal(t, http.StatusOK, get("/api/accounts/RLACCOUNT00000002/render"))

	require.Equal(t, http.StatusOK, get("/u"))
	require.Equal(t, http.StatusTooManyRequests, get("/u"))
}
