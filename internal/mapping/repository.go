package mapping

import (
	"context"
	"sync"
	"time"
)

// Repository stores mapping overrides keyed by (template key, scope).
type Repository interface {
	Get(ctx context.Context, templateKey string, scope Scope) (*Mapping, error)
	Put(ctx context.Context, m *Mapping) error
}

type memKey struct {
	key   string
	scope Scope
}

// MemoryRepo keeps mappings in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[memKey]*Mapping
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[memKey]*Mapping)}
}

func (m *MemoryRepo) Get(_ context.Context, templateKey string, scope Scope) (*Mapping, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if mp, ok := m.store[memKey{templateKey, scope}]; ok {
		cp := *mp
		cp.Roles = copyRoles(mp.Roles)
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Put(_ context.Context, mp *Mapping) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *mp
	cp.Roles = copyRoles(mp.Roles)
	if cp.UpdatedAt.IsZero() {
		cp.UpdatedAt = time.Now()
	}
	m.store[memKey{mp.TemplateKey, mp.Scope}] = &cp
	return nil
}

func copyRoles(in map[string]string) map[string]string {
	out := make(map[string]string, len(in))
	for k, v := range in {
		out[k] = v
	}
	return out
}
