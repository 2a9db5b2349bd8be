package fieldvalues

import (
	"context"
	"sync"
	"time"
)

// Repository stores value sets with optimistic versioning.
type Repository interface {
	// Get returns nil, nil when nothing is stored yet.
	Get(ctx context.Context, accountID, templateID string) (*FieldValueSet, error)
	// Put stores set with version expected+1 if the stored version is still
	// expected (0 meaning no row yet), otherwise it returns ErrVersionConflict.
	Put(ctx context.Context, set *FieldValueSet, expected int64) error
}

type memKey struct{ account, template string }

// MemoryRepo keeps value sets in process memory.
type MemoryRepo struct {
	mu    sync.Mutex
	store map[memKey]*FieldValueSet
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[memKey]*FieldValueSet)}
}

func (m *MemoryRepo) Get(_ context.Context, accountID, templateID string) (*FieldValueSet, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[memKey{accountID, templateID}]
	if !ok {
		return nil, nil
	}
	return clone(cur), nil
}

func (m *MemoryRepo) Put(_ context.Context, set *FieldValueSet, expected int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	k := memKey{set.AccountID, set.TemplateID}
	var version int64
	if cur, ok := m.store[k]; ok {
		version = cur.Version
	}
	if version != expected {
		return ErrVersionConflict
	}
	set.Version = expected + 1
	set.UpdatedAt = time.Now()
	m.store[k] = clone(set)
	return nil
}

func clone(s *FieldValueSet) *FieldValueSet {
	cp := *s
	cp.Values = make(map[string]string, len(s.Values))
	for k, v := range s.Values {
		cp.Values[k] = v
	}
	return &cp
}
