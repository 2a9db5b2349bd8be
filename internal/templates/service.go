package templates

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"reflect"
	"sort"

	"github.com/google/uuid"

	"github.com/certdesk/certdesk/internal/form"
	"github.com/certdesk/certdesk/internal/mapping"
	"github.com/certdesk/certdesk/pkg/logger"
	"github.com/certdesk/certdesk/pkg/metrics"
)

// Source says where resolved template bytes came from.
type Source string

const (
	SourceStored      Source = "stored"
	SourceLocal       Source = "local"
	SourcePlaceholder Source = "placeholder"
)

// Service resolves and refreshes templates.
type Service struct {
	repo    Repository
	objects ObjectStore
	caps    StorageCapabilities
	dir     string
}

// NewService wires the store. objects may be nil when caps.ObjectStore is false.
func NewService(repo Repository, objects ObjectStore, caps StorageCapabilities, dir string) *Service {
	if objects == nil {
		caps.ObjectStore = false
	}
	return &Service{repo: repo, objects: objects, caps: caps, dir: dir}
}

// Capabilities returns the storage capabilities the service was built with.
func (s *Service) Capabilities() StorageCapabilities { return s.caps }

// Lookup finds a template row by id or by (normalized) type key.
func (s *Service) Lookup(ctx context.Context, keyOrID string) (*Template, error) {
	t, err := s.repo.Get(ctx, keyOrID)
	if err == nil {
		return t, nil
	}
	if !errors.Is(err, ErrNotFound) {
		return nil, err
	}
	return s.repo.GetByKey(ctx, mapping.NormalizeKey(keyOrID))
}

// List returns every stored template without bytes.
func (s *Service) List(ctx context.Context) ([]*Template, error) {
	list, err := s.repo.List(ctx)
	if err != nil {
		return nil, err
	}
	for _, t := range list {
		t.Bytes = nil
	}
	return list, nil
}

// Resolve returns a template and its bytes: the stored binary, else a local
// canonical file, else a placeholder built from the known fields. A key with
// neither a row nor a local file is ErrTemplateNotFound.
func (s *Service) Resolve(ctx context.Context, keyOrID string) (*Template, []byte, Source, error) {
	t, err := s.Lookup(ctx, keyOrID)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, nil, "", err
	}
	if t != nil {
		if b := s.stored(ctx, t); len(b) > 0 {
			metrics.TemplateResolutions.WithLabelValues(string(SourceStored)).Inc()
			return t, b, SourceStored, nil
		}
	}

	key := mapping.NormalizeKey(keyOrID)
	if t != nil {
		key = t.TypeKey
	}
	if b, _, err := s.local(key, t); err == nil {
		if t == nil {
			t = newTemplate(key)
		}
		metrics.TemplateResolutions.WithLabelValues(string(SourceLocal)).Inc()
		return t, b, SourceLocal, nil
	}
	if t == nil {
		return nil, nil, "", fmt.Errorf("%w: %s", ErrTemplateNotFound, keyOrID)
	}

	logger.Warnf("template %s has no stored or local bytes, using placeholder", t.TypeKey)
	b, err := Placeholder(t)
	if err != nil {
		return nil, nil, "", fmt.Errorf("build placeholder: %w", err)
	}
	metrics.TemplateResolutions.WithLabelValues(string(SourcePlaceholder)).Inc()
	return t, b, SourcePlaceholder, nil
}

func (s *Service) stored(ctx context.Context, t *Template) []byte {
	if s.caps.InlineBlob && len(t.Bytes) > 0 {
		return t.Bytes
	}
	if s.caps.ObjectStore && t.StorageKey != "" {
		b, err := s.objects.Get(ctx, t.StorageKey)
		if err != nil {
			logger.Warnf("template %s: object %s unavailable: %v", t.TypeKey, t.StorageKey, err)
			return nil
		}
		return b
	}
	return nil
}

// local reads the first existing candidate file for key.
func (s *Service) local(key string, t *Template) ([]byte, string, error) {
	if s.dir == "" {
		return nil, "", ErrNoLocalFile
	}
	candidates := []string{key + ".pdf"}
	if t != nil {
		if t.StoragePath != "" {
			candidates = append(candidates, filepath.Base(t.StoragePath))
		}
		if slug := Slug(t.DisplayName); slug != "" {
			candidates = append(candidates, slug+".pdf")
		}
	} else if name, ok := DisplayName(key); ok {
		candidates = append(candidates, Slug(name)+".pdf")
	}
	for _, c := range candidates {
		path := filepath.Join(s.dir, c)
		b, err := os.ReadFile(path)
		if err == nil && len(b) > 0 {
			return b, path, nil
		}
	}
	return nil, "", ErrNoLocalFile
}

func newTemplate(key string) *Template {
	name, ok := DisplayName(key)
	if !ok {
		name = key
	}
	return &Template{ID: TemplateID(key), TypeKey: key, DisplayName: name}
}

// TemplateID derives the id a template gets when it is first seen under key,
// so a template served from a local file keeps the same id across requests.
func TemplateID(key string) string {
	return uuid.NewSHA1(uuid.NameSpaceURL, []byte("certdesk:template:"+key)).String()
}

// Placeholder builds a stand-in document with one text widget per known field
// and per field named in the default role tables.
func Placeholder(t *Template) ([]byte, error) {
	seen := map[string]bool{}
	var fields []form.FieldSpec
	add := func(fs form.FieldSpec) {
		if fs.Name == "" || seen[fs.Name] {
			return
		}
		seen[fs.Name] = true
		fields = append(fields, fs)
	}
	for _, f := range t.KnownFields {
		add(form.FieldSpec{Name: f.Name, Label: f.Label, Multiline: f.Multiline()})
	}
	for _, sc := range []mapping.Scope{mapping.ScopeHolder, mapping.ScopeAgency, mapping.ScopeNamedInsured} {
		table := mapping.Defaults(t.TypeKey, sc)
		roles := make([]string, 0, len(table))
		for r := range table {
			roles = append(roles, r)
		}
		sort.Strings(roles)
		for _, r := range roles {
			add(form.FieldSpec{Name: table[r]})
		}
	}
	title := t.DisplayName
	if title == "" {
		title = t.TypeKey
	}
	return form.BuildTemplate(title+" (placeholder)", fields)
}

// Refresh re-syncs the stored template for key from its local canonical file.
// changed is false when bytes and field metadata already match.
func (s *Service) Refresh(ctx context.Context, key string) (t *Template, changed bool, err error) {
	key = mapping.NormalizeKey(key)
	t, err = s.repo.GetByKey(ctx, key)
	if err != nil && !errors.Is(err, ErrNotFound) {
		return nil, false, err
	}
	data, path, err := s.local(key, t)
	if err != nil {
		return nil, false, fmt.Errorf("%w for %s in %s", err, key, s.dir)
	}
	fields, err := form.Introspect(data)
	if err != nil {
		return nil, false, fmt.Errorf("introspect %s: %w", path, err)
	}
	sum := sha256.Sum256(data)
	checksum := hex.EncodeToString(sum[:])

	if t == nil {
		t = newTemplate(key)
	} else if t.Checksum == checksum && reflect.DeepEqual(t.KnownFields, fields) && s.holds(ctx, t, data) {
		logger.Debugf("template %s unchanged", key)
		return t, false, nil
	}

	t.Checksum = checksum
	t.KnownFields = fields
	t.StoragePath = path
	t.Bytes = nil
	if s.caps.InlineBlob {
		t.Bytes = data
	}
	if s.caps.ObjectStore {
		t.StorageKey = "templates/" + key + ".pdf"
		if err := s.objects.Put(ctx, t.StorageKey, data, "application/pdf"); err != nil {
			return nil, false, fmt.Errorf("upload template %s: %w", key, err)
		}
	}
	if err := s.repo.Upsert(ctx, t); err != nil {
		return nil, false, fmt.Errorf("store template %s: %w", key, err)
	}
	logger.Infof("template %s refreshed from %s (%d fields)", key, path, len(fields))
	return t, true, nil
}

// holds reports whether the stored copy of t equals data.
func (s *Service) holds(ctx context.Context, t *Template, data []byte) bool {
	return bytes.Equal(s.stored(ctx, t), data)
}

// RefreshAll refreshes every catalog template that has a local file and
// returns the keys that changed.
func (s *Service) RefreshAll(ctx context.Context) ([]string, error) {
	var changed []string
	for _, key := range CatalogKeys() {
		_, ok, err := s.Refresh(ctx, key)
		if errors.Is(err, ErrNoLocalFile) {
			continue
		}
		if err != nil {
			return changed, err
		}
		if ok {
			changed = append(changed, key)
		}
	}
	return changed, nil
}
