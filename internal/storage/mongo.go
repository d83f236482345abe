package storage

import (
	"context"
	"fmt"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type draftDoc struct {
	Key   string `bson:"_id"`
	Value []byte `bson:"value"`
}

// MongoStore keeps drafts in a mongo collection keyed by the draft key.
type MongoStore struct {
	col *mongo.Collection
}

func NewMongoStore(db *mongo.Database) *MongoStore {
	return &MongoStore{col: db.Collection("drafts")}
}

func (s *MongoStore) Put(ctx context.Context, key string, value []byte) error {
	opts := options.Replace().SetUpsert(true)
	_, err := s.col.ReplaceOne(ctx, bson.M{"_id": key}, draftDoc{Key: key, Value: value}, opts)
	if err != nil {
		return fmt.Errorf("failed to write draft to mongo: %w", err)
	}
	return nil
}

func (s *MongoStore) Get(ctx context.Context, key string) ([]byte, error) {
	var doc draftDoc
	err := s.col.FindOne(ctx, bson.M{"_id": key}).Decode(&doc)
	if err == mongo.ErrNoDocuments {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read draft from mongo: %w", err)
	}
	return doc.Value, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	_, err := s.col.DeleteOne(ctx, bson.M{"_id": key})
	if err != nil {
		return fmt.Errorf("failed to delete draft from mongo: %w", err)
	}
	return nil
}
