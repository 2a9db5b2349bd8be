package middleware

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

// fakeToken implements Token
type fakeToken struct {
	data map[string]interface{}
}

func (t *fakeToken) Claims(v interface{}) error {
	if mm, ok := v.(*map[string]interface{}); ok {
		*mm = t.data
		return nil
	}
	return fmt.Errorf("unsupported claims type")
}

// fakeVerifier implements Verifier
type fakeVerifier struct{}

func (f *fakeVerifier) Verify(ctx context.Context, raw string) (Token, error) {
	switch raw {
	case "goodtoken":
		return &fakeToken{data: map[string]interface{}{"sub": "user1", "email": "test@example.com"}}, nil
	case "scopedtoken":
		return &fakeToken{data: map[string]interface{}{"sub": "user2", "account_id": "ACC18CHARID000001"}}, nil
	case "multitoken":
		return &fakeToken{data: map[string]interface{}{"sub": "user3", "account_ids": []interface{}{"A1", "A2"}}}, nil
	}
	return nil, fmt.Errorf("invalid token")
}

func TestAuthMiddleware_NoHeader(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusUnauthorized, rw.Code)
}

func TestAuthMiddleware_InvalidHeader(t *testing.T) {
	g := gin.New()
	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	for _, h := range []string{"BadHeader", "Bearer badtoken"} {
		req := httptest.NewRequest(http.MethodGet, "/", nil)
		req.Header.Set("Authorization", h)
		rw := httptest.NewRecorder()
		g.ServeHTTP(rw, req)
		require.Equal(t, http.StatusUnauthorized, rw.Code, h)
	}
}

func TestAuthMiddleware_ValidToken(t *testing.T) {
	g := gin.New()
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Authorization", "Bearer goodtoken")
	rw := httptest.NewRecorder()

	g.GET("/", AuthMiddleware(&fakeVerifier{}), func(c *gin.Context) {
		claims, _ := c.Get("claims")
		c.JSON(http.StatusOK, gin.H{"claims": claims})
	})
	g.ServeHTTP(rw, req)

	require.Equal(t, http.StatusOK, rw.Code)
	var got map[string]interface{}
	require.NoError(t, json.Unmarshal(rw.Body.Bytes(), &got))
	require.Contains(t, got, "claims")
}

func TestAccountScope(t *testing.T) {
	g := gin.New()
	g.GET("/api/accounts/:accountID/holders", AuthMiddleware(&fakeVerifier{}), AccountScope(), func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	cases := []struct {
		token, account string
		want           int
	}{
		{"goodtoken", "ANY", http.StatusOK},
		{"scopedtoken", "ACC18CHARID000001", http.StatusOK},
		{"scopedtoken", "OTHER", http.StatusForbidden},
		{"multitoken", "A2", http.StatusOK},
		{"multitoken", "A3", http.StatusForbidden},
	}
	for _, tc := range cases {
		req := httptest.NewRequest(http.MethodGet, "/api/accounts/"+tc.account+"/holders", nil)
		req.Header.Set("Authorization", "Bearer "+tc.token)
		rw := httptest.NewRecorder()
		g.ServeHTTP(rw, req)
		require.Equal(t, tc.want, rw.Code, "%s -> %s", tc.token, tc.account)
	}
}
