package db

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	QuotesCollection    = "quotes"
	EnquiriesCollection = "enquiries"
	AdminsCollection    = "admins"
)

type Collections struct {
	Quotes    *mongo.Collection
	Enquiries *mongo.Collection
	Admins    *mongo.Collection
}

func Connect(ctx context.Context, uri, dbName string) (*mongo.Client, *Collections, error) {
	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, nil, err
	}

	if err := client.Ping(ctx, nil); err != nil {
		return nil, nil, err
	}

	db := client.Database(dbName)

	cols := &Collections{
		Quotes:    db.Collection(QuotesCollection),
		Enquiries: db.Collection(EnquiriesCollection),
		Admins:    db.Collection(AdminsCollection),
	}

	return client, cols, nil
}

func EnsureIndexes(ctx context.Context, cols *Collections) error {
	indexTimeout, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	for _, col := range []*mongo.Collection{cols.Quotes, cols.Enquiries} {
		_, err := col.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
			{
				Keys: bson.D{{Key: "createdAt", Value: -1}},
			},
			{
				Keys: bson.D{{Key: "status", Value: 1}},
			},
		})
		if err != nil {
			return err
		}
	}

	_, err := cols.Admins.Indexes().CreateMany(indexTimeout, []mongo.IndexModel{
		{
			Keys:    bson.D{{Key: "email", Value: 1}},
			Options: options.Index().SetUnique(true),
		},
	})
	if err != nil {
		return err
	}

	return nil
}
