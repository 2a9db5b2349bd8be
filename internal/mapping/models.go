// Package mapping resolves abstract data roles onto the field names of a template.
package mapping

import (
	"errors"
	"strings"
	"time"
)

// Scope names the data source a mapping applies to.
type Scope string

const (
	ScopeHolder       Scope = "holder"
	ScopeAgency       Scope = "agency"
	ScopeNamedInsured Scope = "named_insured"
)

// DefaultKey is the template key used when a key is empty or has no stored mapping.
const DefaultKey = "default"

var (
	ErrNotFound     = errors.New("mapping not found")
	ErrInvalidScope = errors.New("invalid mapping scope")
)

// Mapping is a stored override: role key -> field name for one template and scope.
type Mapping struct {
	TemplateKey string            `json:"template_key" bson:"template_key"`
	Scope       Scope             `json:"scope" bson:"scope"`
	Roles       map[string]string `json:"roles" bson:"roles"`
	UpdatedAt   time.Time         `json:"updated_at" bson:"updated_at"`
}

// ParseScope validates a scope string.
func ParseScope(s string) (Scope, error) {
	switch sc := Scope(strings.ToLower(strings.TrimSpace(s))); sc {
	case ScopeHolder, ScopeAgency, ScopeNamedInsured:
		return sc, nil
	}
	return "", ErrInvalidScope
}

// NormalizeKey lowercases a template key and strips everything but letters
// and digits, so "ACORD 25" and "acord_25" both become "acord25".
func NormalizeKey(key string) string {
	var b strings.Builder
	for _, r := range strings.ToLower(strings.TrimSpace(key)) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			b.WriteRune(r)
		}
	}
	if b.Len() == 0 {
		return DefaultKey
	}
	return b.String()
}

// Apply turns role values into field values using a role map. Roles without
// a value and empty field names are skipped.
func Apply(roles map[string]string, roleValues map[string]string) map[string]string {
	out := make(map[string]string, len(roles))
	for role, fieldName := range roles {
		v, ok := roleValues[role]
		if !ok || fieldName == "" {
			continue
		}
		out[fieldName] = v
	}
	return out
}
