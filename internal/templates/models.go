// Package templates stores ACORD form templates and resolves their bytes.
package templates

import (
	"errors"
	"strings"
	"time"

	"github.com/certdesk/certdesk/internal/form"
)

var (
	ErrNotFound         = errors.New("template not found")
	ErrTemplateNotFound = errors.New("template not found after all fallbacks")
	ErrNoLocalFile      = errors.New("no local template file")
)

// Template is one stored form. Bytes is only populated when the store keeps
// inline blobs; otherwise StorageKey points into the object store.
type Template struct {
	ID          string           `json:"id" bson:"_id"`
	TypeKey     string           `json:"type_key" bson:"type_key"`
	DisplayName string           `json:"display_name" bson:"display_name"`
	Bytes       []byte           `json:"-" bson:"bytes,omitempty"`
	StorageKey  string           `json:"storage_key,omitempty" bson:"storage_key,omitempty"`
	StoragePath string           `json:"storage_path,omitempty" bson:"storage_path,omitempty"`
	Checksum    string           `json:"checksum,omitempty" bson:"checksum,omitempty"`
	KnownFields []form.FieldInfo `json:"known_fields" bson:"known_fields"`
	CreatedAt   time.Time        `json:"created_at" bson:"created_at"`
	UpdatedAt   time.Time        `json:"updated_at" bson:"updated_at"`
}

// StorageCapabilities says where template bytes can live. It is computed once
// at startup and handed to the store and resolver.
type StorageCapabilities struct {
	InlineBlob  bool `json:"inline_blob"`
	ObjectStore bool `json:"object_store"`
}

// Slug lowercases s and joins its alphanumeric runs with dashes.
func Slug(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(s) {
		if (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9') {
			if dash && b.Len() > 0 {
				b.WriteByte('-')
			}
			b.WriteRune(r)
			dash = false
			continue
		}
		dash = true
	}
	return b.String()
}

// Filename is the suggested download name for a filled copy of t.
func (t *Template) Filename() string {
	name := Slug(t.DisplayName)
	if name == "" {
		name = Slug(t.TypeKey)
	}
	if name == "" {
		name = "certificate"
	}
	return name + ".pdf"
}
