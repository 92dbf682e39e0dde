package leads

import (
	"context"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Repository interface {
	Create(ctx context.Context, fields Fields) (string, error)
	List(ctx context.Context) ([]Lead, error)
	GetByID(ctx context.Context, id string) (Lead, error)
	UpdateStatus(ctx context.Context, id string, status Status) (bool, error)
	Delete(ctx context.Context, id string) (bool, error)
}

type MongoRepository struct {
	col  *mongo.Collection
	kind Kind
}

func NewRepository(col *mongo.Collection, kind Kind) *MongoRepository {
	return &MongoRepository{col: col, kind: kind}
}

// Create upserts on a fresh id so the server clock stamps createdAt through
// $currentDate. The status always starts as new.
func (r *MongoRepository) Create(ctx context.Context, fields Fields) (string, error) {
	id := primitive.NewObjectID().Hex()

	doc := bson.M{
		"name":    fields.Name,
		"email":   fields.Email,
		"phone":   fields.Phone,
		"message": fields.Message,
		"status":  StatusNew,
	}
	if r.kind == KindQuote {
		doc["elevatorType"] = fields.ElevatorType
		doc["floors"] = fields.Floors
	}

	update := bson.M{
		"$setOnInsert": doc,
		"$currentDate": bson.M{"createdAt": true},
	}
	if _, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, update, options.Update().SetUpsert(true)); err != nil {
		return "", err
	}
	return id, nil
}

func (r *MongoRepository) List(ctx context.Context) ([]Lead, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}})

	cursor, err := r.col.Find(ctx, bson.M{}, opts)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	items := make([]Lead, 0)
	for cursor.Next(ctx) {
		var lead Lead
		if err := cursor.Decode(&lead); err != nil {
			return nil, err
		}
		lead.Kind = r.kind
		items = append(items, lead)
	}
	if err := cursor.Err(); err != nil {
		return nil, err
	}

	return items, nil
}

func (r *MongoRepository) GetByID(ctx context.Context, id string) (Lead, error) {
	var lead Lead
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&lead); err != nil {
		return Lead{}, err
	}
	lead.Kind = r.kind
	return lead, nil
}

func (r *MongoRepository) UpdateStatus(ctx context.Context, id string, status Status) (bool, error) {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{"status": status}})
	if err != nil {
		return false, err
	}
	return res.MatchedCount > 0, nil
}

func (r *MongoRepository) Delete(ctx context.Context, id string) (bool, error) {
	res, err := r.col.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return false, err
	}
	return res.DeletedCount > 0, nil
}
