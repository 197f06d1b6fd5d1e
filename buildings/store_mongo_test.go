package buildings

import (
	"context"
	"errors"
	"testing"
	"time"

	"campusexplorer/errs"
	"campusexplorer/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/integration/mtest"
)

func buildingDoc(key, name string) bson.D {
	return bson.D{
		{Key: "id", Value: key},
		{Key: "name", Value: name},
		{Key: "code", Value: "X"},
		{Key: "type", Value: "Academic"},
		{Key: "floors", Value: 2},
		{Key: "floorPlans", Value: bson.A{"a.png", "b.png"}},
	}
}

func TestMongoStore(t *testing.T) {
	mt := mtest.New(t, mtest.NewOptions().ClientType(mtest.Mock))
	ctx := context.Background()

	mt.Run("find decodes in server order", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		first := mtest.CreateCursorResponse(1, ns, mtest.FirstBatch, buildingDoc("carver", "Carver Hall"))
		rest := mtest.CreateCursorResponse(0, ns, mtest.NextBatch, buildingDoc("coover", "Coover Hall"))
		mt.AddMockResponses(first, rest)

		list, err := NewMongoStore(mt.Coll).Find(ctx, models.BuildingFilter{Category: models.CategoryAcademic})
		require.NoError(mt, err)
		require.Len(mt, list, 2)
		assert.Equal(mt, "carver", list[0].Key)
		assert.Equal(mt, []string{"a.png", "b.png"}, list[1].FloorPlans)
	})

	mt.Run("find one missing", func(mt *mtest.T) {
		ns := mt.Coll.Database().Name() + "." + mt.Coll.Name()
		mt.AddMockResponses(mtest.CreateCursorResponse(0, ns, mtest.FirstBatch))

		_, err := NewMongoStore(mt.Coll).FindOne(ctx, "ghost")
		assert.True(mt, errors.Is(err, errs.ErrNotFound))
	})

	mt.Run("insert duplicate", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateWriteErrorsResponse(mtest.WriteError{
			Index:   0,
			Code:    11000,
			Message: "duplicate key error",
		}))

		err := NewMongoStore(mt.Coll).Insert(ctx, models.Building{Key: "library"})
		var de *errs.Error
		require.True(mt, errors.As(err, &de))
		assert.Equal(mt, errs.KindDuplicateKey, de.Kind)
		assert.Equal(mt, "library", de.Key)
	})

	mt.Run("update returns the new document", func(mt *mtest.T) {
		doc := buildingDoc("campanile", "Campanile")
		doc = append(doc, bson.E{Key: "coordinates", Value: bson.D{{Key: "x", Value: 95.0}, {Key: "y", Value: 5.0}}})
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: doc}))

		patch := models.BuildingPatch{Coordinates: models.Some(&models.Coordinates{X: 95, Y: 5})}
		b, err := NewMongoStore(mt.Coll).UpdateFields(ctx, "campanile", patch, time.Now())
		require.NoError(mt, err)
		require.NotNil(mt, b.Coordinates)
		assert.Equal(mt, 95.0, b.Coordinates.X)
	})

	mt.Run("update missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "value", Value: nil}))

		_, err := NewMongoStore(mt.Coll).UpdateFields(ctx, "ghost", models.BuildingPatch{Hours: models.Some("x")}, time.Now())
		assert.True(mt, errors.Is(err, errs.ErrNotFound))
	})

	mt.Run("delete missing", func(mt *mtest.T) {
		mt.AddMockResponses(mtest.CreateSuccessResponse(bson.E{Key: "n", Value: 0}))

		err := NewMongoStore(mt.Coll).Delete(ctx, "ghost")
		assert.True(mt, errors.Is(err, errs.ErrNotFound))
	})
}

func TestBuildFilter(t *testing.T) {
	assert.Empty(t, buildFilter(models.BuildingFilter{}))

	q := buildFilter(models.BuildingFilter{Category: models.CategoryLandmark, Text: "a.b"})
	assert.Equal(t, models.CategoryLandmark, q["type"])
	or, ok := q["$or"].(bson.A)
	require.True(t, ok)
	require.Len(t, or, 4)
	assert.Equal(t, bson.M{"name": bson.M{"$regex": `a\.b`, "$options": "i"}}, or[0])
}
