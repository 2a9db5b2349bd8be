package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	mr "github.com/alicebob/miniredis/v2"
	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

func TestRedisRateLimitMiddleware_Basic(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	defer m.Close()

	client := redis.NewClient(&redis.Options{Addr: m.Addr()})

	r := gin.New()
	r.GET("/api/accounts/:accountID/render", RedisRateLimitMiddleware(client, 0, 1, time.Minute), func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	get := func(acct string) int {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/api/accounts/"+acct+"/render", nil))
		return w.Code
	}
	require.Equal(t, http.StatusOK, get("A1"))
	require.Equal(t, http.StatusTooManyRequests, get("A1"))
	require.Equal(t, http.StatusOK, get("A2"))

	// expire the window key
	m.FastForward(2 * time.Minute)
	require.Equal(t, http.StatusOK, get("A1"))
}

func TestRedisRateLimitMiddleware_RedisDown(t *testing.T) {
	m, err := mr.Run()
	require.NoError(t, err)
	client := redis.NewClient(&redis.Options{Addr: m.Addr(), MaxRetries: -1})
	m.Close()

	r := gin.New()
	r.Use(RedisRateLimitMiddleware(client, 1, 0, time.Second))
	r.GET("/r", func(c *gin.Context) { c.JSON(200, gin.H{"ok": true}) })

	for i := 0; i < 3; i++ {
		w := httptest.NewRecorder()
		r.ServeHTTP(w, httptest.NewRequest("GET", "/r", nil))
		require.Equal(t, http.StatusOK, w.Code)
	}
}
