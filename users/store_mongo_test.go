package users

import (
	"context"
	"errors"
	"testing"

	"campusexplorer/errs"
	"campusexplorer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find by email", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch, bson.D{
			{Key: "email", Value: "cy@iastate.edu"},
			{Key: "name", Value: "cy"},
		}))

		u, err := NewMongoStore(mt.Coll).FindByEmail(ctx, "Cy@IAState.edu")
		require.NoError(mt, err)
		assert.Equal(mt, "cy", u.Name)
	})

	mt.Run("find missing", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoStore(mt.Coll).FindByEmail(ctx, "ghost@iastate.edu")
		assert.True(mt, errors.Is(err, errs.ErrNotFound))
	})

	mt.Run("duplicate email", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index: 0, Code: 11000, Message: "duplicate key error",
		}))

		err := NewMongoStore(mt.Coll).Insert(ctx, models.User{Email: "cy@iastate.edu"})
		assert.ErrorIs(mt, err, errEmailTaken)
	})
}

