// Package fieldvalues persists the last known field values per account and template.
package fieldvalues

import (
	"errors"
	"time"
)

var (
	// ErrVersionConflict is returned by a repository when the stored version
	// no longer matches the one the write was based on.
	ErrVersionConflict = errors.New("field value set version mismatch")
	// ErrConflict is returned by the service when a save still conflicts after its retry.
	ErrConflict = errors.New("field values were modified concurrently")
)

// FieldValueSet is the stored value map for one (account, template) pair.
// Version grows by one with every successful write.
type FieldValueSet struct {
	AccountID  string            `json:"account_id" bson:"account_id"`
	TemplateID string            `json:"template_id" bson:"template_id"`
	Values     map[string]string `json:"values" bson:"values"`
	Version    int64             `json:"version" bson:"version"`
	UpdatedAt  time.Time         `json:"updated_at" bson:"updated_at"`
}
