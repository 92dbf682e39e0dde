package identity

import (
	"context"
	"errors"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type Accounts interface {
	FindByEmail(ctx context.Context, email string) (Account, error)
	FindByID(ctx context.Context, id string) (Account, error)
	UpdatePassword(ctx context.Context, id, hash string, at time.Time) error
}

type MongoAccounts struct {
	col *mongo.Collection
}

func NewMongoAccounts(col *mongo.Collection) *MongoAccounts {
	return &MongoAccounts{col: col}
}

func (r *MongoAccounts) find(ctx context.Context, filter bson.M) (Account, error) {
	var acc Account
	if err := r.col.FindOne(ctx, filter).Decode(&acc); err != nil {
		if errors.Is(err, mongo.ErrNoDocuments) {
			return Account{}, ErrAccountNotFound
		}
		return Account{}, err
	}
	return acc, nil
}

func (r *MongoAccounts) FindByEmail(ctx context.Context, email string) (Account, error) {
	return r.find(ctx, bson.M{"email": NormalizeEmail(email)})
}

func (r *MongoAccounts) FindByID(ctx context.Context, id string) (Account, error) {
	return r.find(ctx, bson.M{"_id": id})
}

func (r *MongoAccounts) UpdatePassword(ctx context.Context, id, hash string, at time.Time) error {
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id}, bson.M{"$set": bson.M{
		"passwordHash":      hash,
		"passwordChangedAt": at,
		"updatedAt":         at,
	}})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrAccountNotFound
	}
	return nil
}

// Upsert creates the account for email or resets its password. Used by the
// seed command.
func (r *MongoAccounts) Upsert(ctx context.Context, email, hash string, at time.Time) (bool, error) {
	res, err := r.col.UpdateOne(ctx,
		bson.M{"email": NormalizeEmail(email)},
		bson.M{
			"$set": bson.M{
				"passwordHash":      hash,
				"passwordChangedAt": at,
				"updatedAt":         at,
				"disabled":          false,
			},
			"$setOnInsert": bson.M{
				"_id":       primitive.NewObjectID().Hex(),
				"email":     NormalizeEmail(email),
				"createdAt": at,
			},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return false, err
	}
	return res.UpsertedCount > 0, nil
}

func NormalizeEmail(email string) string {
	return strings.ToLower(strings.TrimSpace(email))
}
