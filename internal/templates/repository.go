package templates

import (
	"context"
	"sort"
	"sync"
	"time"
)

// Repository stores template rows.
type Repository interface {
	Get(ctx context.Context, id string) (*Template, error)
	GetByKey(ctx context.Context, typeKey string) (*Template, error)
	List(ctx context.Context) ([]*Template, error)
	Upsert(ctx context.Context, t *Template) error
}

// ObjectStore holds template and certificate bytes outside the database.
type ObjectStore interface {
	Put(ctx context.Context, key string, data []byte, contentType string) error
	Get(ctx context.Context, key string) ([]byte, error)
}

// MemoryRepo keeps templates in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Template
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*Template)}
}

func (m *MemoryRepo) Get(_ context.Context, id string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if t, ok := m.store[id]; ok {
		cp := *t
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) GetByKey(_ context.Context, typeKey string) (*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	for _, t := range m.store {
		if t.TypeKey == typeKey {
			cp := *t
			return &cp, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(_ context.Context) ([]*Template, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := make([]*Template, 0, len(m.store))
	for _, t := range m.store {
		cp := *t
		out = append(out, &cp)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].TypeKey < out[j].TypeKey })
	return out, nil
}

func (m *MemoryRepo) Upsert(_ context.Context, t *Template) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	now := time.Now()
	if t.CreatedAt.IsZero() {
		t.CreatedAt = now
	}
	t.UpdatedAt = now
	cp := *t
	m.store[t.ID] = &cp
	return nil
}
