package oidc

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/golang-jwt/jwt/v5"

	"github.com/certdesk/certdesk/pkg/middleware"
)

// insecureToken exposes the claims of a parsed but unverified JWT.
type insecureToken struct {
	claims jwt.MapClaims
}

func (t *insecureToken) Claims(v interface{}) error {
	b, err := json.Marshal(t.claims)
	if err != nil {
		return err
	}
	return json.Unmarshal(b, v)
}

// InsecureVerifier accepts any well-formed JWT without checking its signature.
// Only for local and integration runs with KEYCLOAK_INSECURE=true.
type InsecureVerifier struct {
	parser *jwt.Parser
}

func NewInsecureVerifier() *InsecureVerifier {
	return &InsecureVerifier{parser: jwt.NewParser()}
}

func (v *InsecureVerifier) Verify(_ context.Context, raw string) (middleware.Token, error) {
	claims := jwt.MapClaims{}
	if _, _, err := v.parser.ParseUnverified(raw, claims); err != nil {
		return nil, fmt.Errorf("invalid token format: %w", err)
	}
	if sub, _ := claims.GetSubject(); sub == "" {
		return nil, fmt.Errorf("token has no subject")
	}
	return &insecureToken{claims: claims}, nil
}
