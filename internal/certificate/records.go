package certificate

import (
	"context"
	"sort"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Record describes one generated certificate.
type Record struct {
	ID           string    `json:"id" bson:"_id"`
	AccountID    string    `json:"account_id" bson:"account_id"`
	TemplateID   string    `json:"template_id" bson:"template_id"`
	Name         string    `json:"name" bson:"name"`
	StorageKey   string    `json:"storage_key,omitempty" bson:"storage_key,omitempty"`
	Status       string    `json:"status" bson:"status"`
	FailureCount int       `json:"failure_count" bson:"failure_count"`
	GeneratedAt  time.Time `json:"generated_at" bson:"generated_at"`
}

// RecordRepository stores generated certificate records.
type RecordRepository interface {
	Create(ctx context.Context, r *Record) error
	List(ctx context.Context, accountID string) ([]*Record, error)
}

// MemoryRecords keeps records in process memory.
type MemoryRecords struct {
	mu   sync.RWMutex
	recs []*Record
}

func NewMemoryRecords() *MemoryRecords { return &MemoryRecords{} }

func (m *MemoryRecords) Create(_ context.Context, r *Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	cp := *r
	m.recs = append(m.recs, &cp)
	return nil
}

func (m *MemoryRecords) List(_ context.Context, accountID string) ([]*Record, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	out := []*Record{}
	for _, r := range m.recs {
		if r.AccountID == accountID {
			cp := *r
			out = append(out, &cp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].GeneratedAt.After(out[j].GeneratedAt) })
	return out, nil
}

// MongoRecords stores records in the "generated_certificates" collection.
type MongoRecords struct {
	col *mongo.Collection
}

func NewMongoRecords(col *mongo.Collection) *MongoRecords {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}, {Key: "generated_at", Value: -1}}}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRecords{col: col}
}

func (m *MongoRecords) Create(ctx context.Context, r *Record) error {
	_, err := m.col.InsertOne(ctx, r)
	return err
}

func (m *MongoRecords) List(ctx context.Context, accountID string) ([]*Record, error) {
	opts := options.Find().SetSort(bson.D{{Key: "generated_at", Value: -1}}).SetLimit(200)
	cur, err := m.col.Find(ctx, bson.M{"account_id": accountID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	out := []*Record{}
	for cur.Next(ctx) {
		var r Record
		if err := cur.Decode(&r); err != nil {
			return nil, err
		}
		out = append(out, &r)
	}
	return out, cur.Err()
}
