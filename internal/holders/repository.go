package holders

import (
	"context"
	"errors"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Repository stores holders scoped by account.
type Repository interface {
	Create(ctx context.Context, h *Holder) error
	Get(ctx context.Context, accountID, id string) (*Holder, error)
	List(ctx context.Context, accountID string) ([]*Holder, error)
	Update(ctx context.Context, h *Holder) error
	Delete(ctx context.Context, accountID, id string) error
}

// MemoryRepo keeps holders in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Holder
}

func NewMemoryRepo() *MemoryRepo {
	return &MemoryRepo{store: make(map[string]*Holder)}
}

func (m *MemoryRepo) Create(_ context.Context, h *Holder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	cp := *h
	m.store[h.ID] = &cp
	return nil
}

func (m *MemoryRepo) Get(_ context.Context, accountID, id string) (*Holder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if h, ok := m.store[id]; ok && h.AccountID == accountID {
		cp := *h
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) List(_ context.Context, accountID string) ([]*Holder, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Holder{}
	for _, h := range m.store {
		if h.AccountID == accountID {
			cp := *h
			out = append(out, &cp)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out, nil
}

func (m *MemoryRepo) Update(_ context.Context, h *Holder) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cur, ok := m.store[h.ID]
	if !ok || cur.AccountID != h.AccountID {
		return ErrNotFound
	}
	h.UpdatedAt = time.Now()
	cp := *h
	m.store[h.ID] = &cp
	return nil
}

func (m *MemoryRepo) Delete(_ context.Context, accountID, id string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	h, ok := m.store[id]
	if !ok || h.AccountID != accountID {
		return ErrNotFound
	}
	delete(m.store, id)
	return nil
}

// MongoRepo stores holders in the "certificate_holders" collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "name", Value: 1}}}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Create(ctx context.Context, h *Holder) error {
	h.CreatedAt = time.Now()
	h.UpdatedAt = h.CreatedAt
	_, err := m.col.InsertOne(ctx, h)
	return err
}

func (m *MongoRepo) Get(ctx context.Context, accountID, id string) (*Holder, error) {
	var h Holder
	err := m.col.FindOne(ctx, bson.M{"_id": id, "account_id": accountID}).Decode(&h)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &h, nil
}

func (m *MongoRepo) List(ctx context.Context, accountID string) ([]*Holder, error) {
	cur, err := m.col.Find(ctx, bson.M{"account_id": accountID}, options.Find().SetSort(bson.D{{Key: "name", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Holder{}
	for cur.Next(ctx) {
		var h Holder
		if err := cur.Decode(&h); err != nil {
			return nil, err
		}
		out = append(out, &h)
	}
	return out, cur.Err()
}

func (m *MongoRepo) Update(ctx context.Context, h *Holder) error {
	h.UpdatedAt = time.Now()
	res, err := m.col.ReplaceOne(ctx, bson.M{"_id": h.ID, "account_id": h.AccountID}, h)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

func (m *MongoRepo) Delete(ctx context.Context, accountID, id string) error {
	res, err := m.col.DeleteOne(ctx, bson.M{"_id": id, "account_id": accountID})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return ErrNotFound
	}
	return nil
}
