package mapping

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores mappings in the "field_mappings" collection.
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "template_key", Value: 1}, {Key: "scope", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Get(ctx context.Context, templateKey string, scope Scope) (*Mapping, error) {
	var mp Mapping
	err := m.col.FindOne(ctx, bson.M{"template_key": templateKey, "scope": scope}).Decode(&mp)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, ErrNotFound
		}
		return nil, err
	}
	if mp.Roles == nil {
		mp.Roles = map[string]string{}
	}
	return &mp, nil
}

func (m *MongoRepo) Put(ctx context.Context, mp *Mapping) error {
	if mp.UpdatedAt.IsZero() {
		mp.UpdatedAt = time.Now()
	}
	filter := bson.M{"template_key": mp.TemplateKey, "scope": mp.Scope}
	update := bson.M{"$set": bson.M{"roles": mp.Roles, "updated_at": mp.UpdatedAt}}
	_, err := m.col.UpdateOne(ctx, filter, update, options.Update().SetUpsert(true))
	return err
}
