package fieldvalues

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// MongoRepo stores value sets in the "field_values" collection, one document
// per (account_id, template_id).
type MongoRepo struct {
	col *mongo.Collection
}

func NewMongoRepo(col *mongo.Collection) *MongoRepo {
	idx := mongo.IndexModel{
		Keys:    bson.D{{Key: "account_id", Value: 1}, {Key: "template_id", Value: 1}},
		Options: options.Index().SetUnique(true),
	}
	col.Indexes().CreateOne(context.Background(), idx)
	return &MongoRepo{col: col}
}

func (m *MongoRepo) Get(ctx context.Context, accountID, templateID string) (*FieldValueSet, error) {
	var set FieldValueSet
	err := m.col.FindOne(ctx, bson.M{"account_id": accountID, "template_id": templateID}).Decode(&set)
	if err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return nil, nil
		}
		return nil, err
	}
	if set.Values == nil {
		set.Values = map[string]string{}
	}
	return &set, nil
}

func (m *MongoRepo) Put(ctx context.Context, set *FieldValueSet, expected int64) error {
	now := time.Now()
	if expected == 0 {
		doc := *set
		doc.Version = 1
		doc.UpdatedAt = now
		if _, err := m.col.InsertOne(ctx, doc); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrVersionConflict
			}
			return err
		}
		set.Version, set.UpdatedAt = 1, now
		return nil
	}
	filter := bson.M{"account_id": set.AccountID, "template_id": set.TemplateID, "version": expected}
	update := bson.M{"$set": bson.M{"values": set.Values, "version": expected + 1, "updated_at": now}}
	res, err := m.col.UpdateOne(ctx, filter, update)
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrVersionConflict
	}
	set.Version, set.UpdatedAt = expected+1, now
	return nil
}
