package middleware

import (
	"context"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"
)

// Token is minimal interface for a verified token that can expose claims
type Token interface {
	Claims(v interface{}) error
}

// Verifier is the minimal interface the middleware depends on
type Verifier interface {
	Verify(ctx context.Context, raw string) (Token, error)
}

// AuthMiddleware returns a Gin middleware that verifies Bearer tokens using the provided verifier
func AuthMiddleware(ver Verifier) gin.HandlerFunc {
	return func(c *gin.Context) {
		auth := c.GetHeader("Authorization")
		if auth == "" {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "missing Authorization header"})
			return
		}
		var token string
		if n, _ := fmt.Sscanf(auth, "Bearer %s", &token); n != 1 {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid Authorization header"})
			return
		}

		idToken, err := ver.Verify(c.Request.Context(), token)
		if err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "invalid token", "details": err.Error()})
			return
		}

		var claims map[string]interface{}
		if err := idToken.Claims(&claims); err != nil {
			c.AbortWithStatusJSON(http.StatusUnauthorized, gin.H{"error": "failed to parse claims"})
			return
		}

		c.Set("claims", claims)
		c.Next()
	}
}

// AccountScope rejects requests whose :accountID path parameter is not among
// the accounts the token grants. Tokens carry either an "account_id" string or
// an "account_ids" list; tokens with neither claim are not account-scoped.
func AccountScope() gin.HandlerFunc {
	return func(c *gin.Context) {
		account := c.Param("accountID")
		if account == "" {
			c.Next()
			return
		}
		granted, scoped := grantedAccounts(c)
		if scoped && !granted[account] {
			c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"error": "account not permitted"})
			return
		}
		c.Next()
	}
}

func grantedAccounts(c *gin.Context) (map[string]bool, bool) {
	v, ok := c.Get("claims")
	if !ok {
		return nil, false
	}
	cm, ok := v.(map[string]interface{})
	if !ok {
		return nil, false
	}
	out := map[string]bool{}
	scoped := false
	if id, ok := cm["account_id"].(string); ok {
		scoped = true
		out[id] = true
	}
	if ids, ok := cm["account_ids"].([]interface{}); ok {
		scoped = true
		for _, id := range ids {
			if s, ok := id.(string); ok {
				out[s] = true
			}
		}
	}
	return out, scoped
}
