package buildings

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"campusexplorer/errs"
	"campusexplorer/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

// EnsureIndexes creates the unique key index the duplicate check relies on,
// plus the category and text indexes used by listings.
func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "id", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "type", Value: 1}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}, {Key: "code", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("create building indexes: %w", err)
	}
	return nil
}

func buildFilter(filter models.BuildingFilter) bson.M {
	query := bson.M{}
	if filter.Category != "" {
		query["type"] = filter.Category
	}
	if q := strings.TrimSpace(filter.Text); q != "" {
		rx := bson.M{"$regex": regexp.QuoteMeta(q), "$options": "i"}
		query["$or"] = bson.A{
			bson.M{"name": rx},
			bson.M{"description": rx},
			bson.M{"code": rx},
			bson.M{"departments": rx},
		}
	}
	return query
}

func (s *MongoStore) Find(ctx context.Context, filter models.BuildingFilter) ([]models.Building, error) {
	opts := options.Find().SetSort(bson.D{{Key: "name", Value: 1}, {Key: "id", Value: 1}})

	cursor, err := s.coll.Find(ctx, buildFilter(filter), opts)
	if err != nil {
		return nil, fmt.Errorf("find buildings: %w", err)
	}
	defer cursor.Close(ctx)

	list := []models.Building{}
	if err := cursor.All(ctx, &list); err != nil {
		return nil, fmt.Errorf("decode buildings: %w", err)
	}
	return list, nil
}

func (s *MongoStore) FindOne(ctx context.Context, key string) (models.Building, error) {
	var b models.Building
	err := s.coll.FindOne(ctx, bson.M{"id": key}).Decode(&b)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Building{}, errs.NotFound("building", key)
	}
	if err != nil {
		return models.Building{}, fmt.Errorf("find building %s: %w", key, err)
	}
	return b, nil
}

func (s *MongoStore) Insert(ctx context.Context, b models.Building) error {
	_, err := s.coll.InsertOne(ctx, b)
	if mongo.IsDuplicateKeyError(err) {
		return errs.DuplicateKey(b.Key)
	}
	if err != nil {
		return fmt.Errorf("insert building %s: %w", b.Key, err)
	}
	return nil
}

// UpdateFields applies the patch in a single atomic $set, so the stored
// document always reflects the last write the server committed.
func (s *MongoStore) UpdateFields(ctx context.Context, key string, patch models.BuildingPatch, at time.Time) (models.Building, error) {
	set := bson.M{"updatedAt": at}
	for name, value := range patch.Fields() {
		set[name] = value
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Building
	err := s.coll.FindOneAndUpdate(ctx, bson.M{"id": key}, bson.M{"$set": set}, opts).Decode(&updated)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Building{}, errs.NotFound("building", key)
	}
	if err != nil {
		return models.Building{}, fmt.Errorf("update building %s: %w", key, err)
	}
	return updated, nil
}

func (s *MongoStore) Delete(ctx context.Context, key string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"id": key})
	if err != nil {
		return fmt.Errorf("delete building %s: %w", key, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("building", key)
	}
	return nil
}
