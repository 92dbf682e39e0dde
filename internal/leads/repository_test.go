package leads

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoRepository(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))

	created := time.Date(2024, 3, 14, 9, 30, 0, 0, time.UTC)

	mt.Run("create", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindQuote)
		mt.AddMockResponses(mtest.CreateSuccessResponse(
			bson.E{Key: "n", Value: 1},
			bson.E{Key: "nModified", Value: 0},
		))

		id, err := repo.Create(context.Background(), Fields{Name: "Suraj", Email: "s@x.com", Phone: "9876543210", ElevatorType: "Home Elevator", Floors: "3"})
		require.NoError(mt, err)
		assert.True(mt, primitive.IsValidObjectID(id))
	})

	mt.Run("create error", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindEnquiry)
		mt.AddMockResponses(mtest.CreateCommandErrorResponse(mtest.CommandError{Code: 11000, Message: "duplicate"}))

		_, err := repo.Create(context.Background(), Fields{Name: "Asha"})
		assert.Error(mt, err)
	})

	mt.Run("list", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindEnquiry)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch,
			bson.D{
				{Key: "_id", Value: "e1"},
				{Key: "name", Value: "Asha"},
				{Key: "email", Value: "asha@example.in"},
				{Key: "phone", Value: ""},
				{Key: "message", Value: "Please call me back about AMC."},
				{Key: "status", Value: "read"},
				{Key: "createdAt", Value: primitive.NewDateTimeFromTime(created)},
			},
		))

		items, err := repo.List(context.Background())
		require.NoError(mt, err)
		require.Len(mt, items, 1)
		assert.Equal(mt, "e1", items[0].ID)
		assert.Equal(mt, KindEnquiry, items[0].Kind)
		assert.Equal(mt, StatusRead, items[0].Status)
		require.NotNil(mt, items[0].CreatedAt)
		assert.True(mt, created.Equal(*items[0].CreatedAt))
	})

	mt.Run("list empty", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindQuote)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		items, err := repo.List(context.Background())
		require.NoError(mt, err)
		assert.NotNil(mt, items)
		assert.Empty(mt, items)
	})

	mt.Run("get missing", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindQuote)
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := repo.GetByID(context.Background(), "nope")
		assert.ErrorIs(mt, err, mongo.ErrNoDocuments)
	})

	mt.Run("update status", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindQuote)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}, bson.E{Key: "nModified", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}, bson.E{Key: "nModified", Value: 0}),
		)

		found, err := repo.UpdateStatus(context.Background(), "q1", StatusReplied)
		require.NoError(mt, err)
		assert.True(mt, found)

		found, err = repo.UpdateStatus(context.Background(), "missing", StatusReplied)
		require.NoError(mt, err)
		assert.False(mt, found)
	})

	mt.Run("delete", func(mt *mtest.T) {
		repo := NewRepository(mt.Coll, KindQuote)
		mt.AddMockResponses(
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 1}),
			mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}),
		)

		deleted, err := repo.Delete(context.Background(), "q1")
		require.NoError(mt, err)
		assert.True(mt, deleted)

		deleted, err = repo.Delete(context.Background(), "q1")
		require.NoError(mt, err)
		assert.False(mt, deleted)
	})
}
