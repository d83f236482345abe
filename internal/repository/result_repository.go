package repository

import (
	"context"

	"practice-service/internal/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type ResultRepository struct {
	Col *mongo.Collection
}

func NewResultRepository(db *mongo.Database) *ResultRepository {
	return &ResultRepository{Col: db.Collection("results")}
}

func (r *ResultRepository) Create(ctx context.Context, result *models.PracticeResult) error {
	res, err := r.Col.InsertOne(ctx, result)
	if err != nil {
		return err
	}
	if oid, ok := res.InsertedID.(primitive.ObjectID); ok {
		result.ID = oid.Hex()
	}
	return nil
}

func (r *ResultRepository) FindByUser(ctx context.Context, userID string) ([]models.PracticeResult, error) {
	opts := options.Find().SetSort(bson.D{{Key: "completed_at", Value: -1}})
	cur, err := r.Col.Find(ctx, bson.M{"user_id": userID}, opts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)
	var results []models.PracticeResult
	for cur.Next(ctx) {
		var pr models.PracticeResult
		if err := cur.Decode(&pr); err != nil {
			return nil, err
		}
		results = append(results, pr)
	}
	return results, nil
}

func (r *ResultRepository) FindBySession(ctx context.Context, sessionID string) (*models.PracticeResult, error) {
	var result models.PracticeResult
	err := r.Col.FindOne(ctx, bson.M{"session_id": sessionID}).Decode(&result)
	if err != nil {
		return nil, err
	}
	return &result, nil
}
