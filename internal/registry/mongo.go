package registry

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"aesthetic_doctor_bot/internal/domain"
)

type findInsertCollection interface {
	Find(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (*mongo.Cursor, error)
	InsertMany(ctx context.Context, documents []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// MongoBackend stores codes in a MongoDB collection.
type MongoBackend struct {
	collection findInsertCollection
}

// NewMongoBackend constructs a MongoBackend.
func NewMongoBackend(collection findInsertCollection) *MongoBackend {
	return &MongoBackend{collection: collection}
}

// Existing matches codes by exact code_plain value.
func (b *MongoBackend) Existing(ctx context.Context, codes []string) ([]string, error) {
	if b == nil || b.collection == nil {
		return nil, errors.New("mongo code backend is not initialized")
	}
	if ctx == nil {
		return nil, errors.New("context is required")
	}
	if len(codes) == 0 {
		return nil, nil
	}

	opts := options.Find().SetProjection(bson.D{{Key: "code_plain", Value: 1}, {Key: "_id", Value: 0}})
	cursor, err := b.collection.Find(ctx, bson.M{"code_plain": bson.M{"$in": codes}}, opts)
	if err != nil {
		return nil, fmt.Errorf("find codes: %w", err)
	}

	var docs []struct {
		Code string `bson:"code_plain"`
	}
	if err := cursor.All(ctx, &docs); err != nil {
		return nil, fmt.Errorf("decode codes: %w", err)
	}

	found := make([]string, 0, len(docs))
	for _, doc := range docs {
		found = append(found, doc.Code)
	}
	return found, nil
}

// Insert writes every record in one batch.
func (b *MongoBackend) Insert(ctx context.Context, records []domain.ActivationCode) error {
	if b == nil || b.collection == nil {
		return errors.New("mongo code backend is not initialized")
	}
	if ctx == nil {
		return errors.New("context is required")
	}

	docs := make([]interface{}, 0, len(records))
	for _, record := range records {
		if record.Code == "" {
			return errors.New("code_plain is required")
		}
		docs = append(docs, record)
	}

	if _, err := b.collection.InsertMany(ctx, docs); err != nil {
		return fmt.Errorf("insert codes: %w", err)
	}
	return nil
}
