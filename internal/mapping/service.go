package mapping

import (
	"context"
	"errors"
	"strings"

	"github.com/certdesk/certdesk/pkg/logger"
)

// Service resolves and edits role mappings.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service {
	return &Service{repo: repo}
}

// Resolve returns the role map for a template and scope: the stored override
// for the key, then the stored override for the default key, then the
// built-in table. It never fails and never returns nil; store errors are
// logged and treated as a miss.
func (s *Service) Resolve(ctx context.Context, templateKey string, scope Scope) map[string]string {
	key := NormalizeKey(templateKey)
	if _, err := ParseScope(string(scope)); err != nil {
		return map[string]string{}
	}
	for _, k := range []string{key, DefaultKey} {
		mp, err := s.repo.Get(ctx, k, scope)
		if err == nil {
			return mp.Roles
		}
		if !errors.Is(err, ErrNotFound) {
			logger.Warnf("mapping lookup %s/%s failed: %v", k, scope, err)
		}
	}
	return Defaults(key, scope)
}

// Get returns the effective role map, or only the built-in table when defaultsOnly is set.
func (s *Service) Get(ctx context.Context, templateKey, scope string, defaultsOnly bool) (map[string]string, error) {
	sc, err := ParseScope(scope)
	if err != nil {
		return nil, err
	}
	if defaultsOnly {
		return Defaults(NormalizeKey(templateKey), sc), nil
	}
	return s.Resolve(ctx, templateKey, sc), nil
}

// Put upserts the override for (template key, scope). Keys and values are
// trimmed; nil values and blank keys are dropped.
func (s *Service) Put(ctx context.Context, templateKey, scope string, roles map[string]*string) (*Mapping, error) {
	sc, err := ParseScope(scope)
	if err != nil {
		return nil, err
	}
	clean := make(map[string]string, len(roles))
	for k, v := range roles {
		k = strings.TrimSpace(k)
		if k == "" || v == nil {
			continue
		}
		clean[k] = strings.TrimSpace(*v)
	}
	mp := &Mapping{TemplateKey: NormalizeKey(templateKey), Scope: sc, Roles: clean}
	if err := s.repo.Put(ctx, mp); err != nil {
		return nil, err
	}
	return mp, nil
}
