// Package agency stores the producer (agency) settings of an account.
package agency

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/certdesk/certdesk/internal/validation"
)

var ErrNotFound = errors.New("agency settings not found")

// Settings is the producer block printed on every certificate of an account.
type Settings struct {
	AccountID     string    `json:"account_id" bson:"account_id"`
	Name          string    `json:"name" bson:"name"`
	Street        string    `json:"street" bson:"street"`
	Suite         string    `json:"suite" bson:"suite"`
	City          string    `json:"city" bson:"city"`
	State         string    `json:"state" bson:"state" validate:"omitempty,usstate"`
	Zip           string    `json:"zip" bson:"zip"`
	Phone         string    `json:"phone" bson:"phone"`
	Fax           string    `json:"fax" bson:"fax"`
	Email         string    `json:"email" bson:"email" validate:"omitempty,simpleemail"`
	ProducerName  string    `json:"producer_name" bson:"producer_name"`
	ProducerPhone string    `json:"producer_phone" bson:"producer_phone"`
	ProducerEmail string    `json:"producer_email" bson:"producer_email" validate:"omitempty,simpleemail"`
	SignatureText string    `json:"signature_text" bson:"signature_text"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at"`
}

// Roles returns the settings keyed by mapping role.
func (s *Settings) Roles() map[string]string {
	if s == nil {
		return map[string]string{}
	}
	return map[string]string{
		"name":           s.Name,
		"street":         s.Street,
		"suite":          s.Suite,
		"city":           s.City,
		"state":          s.State,
		"zip":            s.Zip,
		"phone":          s.Phone,
		"fax":            s.Fax,
		"email":          s.Email,
		"producer_name":  s.ProducerName,
		"producer_phone": s.ProducerPhone,
		"producer_email": s.ProducerEmail,
		"signature_text": s.SignatureText,
	}
}

// Repository stores one Settings per account.
type Repository interface {
	Get(ctx context.Context, accountID string) (*Settings, error)
	Upsert(ctx context.Context, s *Settings) error
}

// Service validates and upserts agency settings.
type Service struct {
	repo Repository
}

func NewService(repo Repository) *Service { return &Service{repo: repo} }

func (s *Service) Get(ctx context.Context, accountID string) (*Settings, error) {
	return s.repo.Get(ctx, accountID)
}

// Put replaces the settings of accountID.
func (s *Service) Put(ctx context.Context, accountID string, in Settings) (*Settings, error) {
	for _, p := range []*string{&in.Name, &in.Street, &in.Suite, &in.City, &in.Zip, &in.Phone, &in.Fax,
		&in.Email, &in.ProducerName, &in.ProducerPhone, &in.ProducerEmail, &in.SignatureText} {
		*p = strings.TrimSpace(*p)
	}
	in.State = strings.ToUpper(strings.TrimSpace(in.State))
	if err := validation.Struct(in); err != nil {
		return nil, err
	}
	in.AccountID = accountID
	if err := s.repo.Upsert(ctx, &in); err != nil {
		return nil, err
	}
	return &in, nil
}

// MemoryRepo keeps settings in process memory.
type MemoryRepo struct {
	mu    sync.RWMutex
	store map[string]*Settings
}

func NewMemoryRepo() *MemoryRepo { return &MemoryRepo{store: make(map[string]*Settings)} }

func (m *MemoryRepo) Get(_ context.Context, accountID string) (*Settings, error) {
	m.mu.RLock()
	defer m.mu.RUnlock()
	if s, ok := m.store[accountID]; ok {
		cp := *s
		return &cp, nil
	}
	return nil, ErrNotFound
}

func (m *MemoryRepo) Upsert(_ context.Context, s *Settings) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	s.UpdatedAt = time.Now()
	cp := *s
	m.store[s.AccountID] = &cp
	return nil
}

// MongoRepo stores settings in the "agency_settings" collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{Keys: bson.D{{Key: "account_id", Value: 1}}, Options: options.Index().SetUnique(true)}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Get(ctx context.Context, accountID string) (*Settings, error) {
	var s Settings
	if err := m.col.FindOne(ctx, bson.M{"account_id": accountID}).Decode(&s); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &s, nil
}

func (m *MongoRepo) Upsert(ctx context.Context, s *Settings) error {
	s.UpdatedAt = time.Now()
	_, err := m.col.UpdateOne(ctx, bson.M{"account_id": s.AccountID}, bson.M{"$set": s}, options.Update().SetUpsert(true))
	return err
}
