package tours

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"

	"campusexplorer/errs"
	"campusexplorer/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists tours by id.
type Store interface {
	FindOne(ctx context.Context, id string) (models.Tour, error)
	FindByOwner(ctx context.Context, ownerID string) ([]models.Tour, error)
	Insert(ctx context.Context, t models.Tour) error
	Replace(ctx context.Context, t models.Tour) error
	Delete(ctx context.Context, id string) error
}

type MemoryStore struct {
	mu    sync.RWMutex
	items map[string]models.Tour
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{items: make(map[string]models.Tour)}
}

func (s *MemoryStore) FindOne(_ context.Context, id string) (models.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	t, ok := s.items[id]
	if !ok {
		return models.Tour{}, errs.NotFound("tour", id)
	}
	return t.Clone(), nil
}

// FindByOwner returns the owner's tours, newest first.
func (s *MemoryStore) FindByOwner(_ context.Context, ownerID string) ([]models.Tour, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := []models.Tour{}
	for _, t := range s.items {
		if t.OwnerID == ownerID {
			out = append(out, t.Clone())
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if !out[i].CreatedAt.Equal(out[j].CreatedAt) {
			return out[i].CreatedAt.After(out[j].CreatedAt)
		}
		return out[i].TourID < out[j].TourID
	})
	return out, nil
}

func (s *MemoryStore) Insert(_ context.Context, t models.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[t.TourID]; ok {
		return fmt.Errorf("tour %s already stored", t.TourID)
	}
	s.items[t.TourID] = t.Clone()
	return nil
}

func (s *MemoryStore) Replace(_ context.Context, t models.Tour) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[t.TourID]; !ok {
		return errs.NotFound("tour", t.TourID)
	}
	s.items[t.TourID] = t.Clone()
	return nil
}

func (s *MemoryStore) Delete(_ context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.items[id]; !ok {
		return errs.NotFound("tour", id)
	}
	delete(s.items, id)
	return nil
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "tourid", Value: 1}}, Options: options.Index().SetUnique(true)},
		{Keys: bson.D{{Key: "owner_id", Value: 1}, {Key: "createdAt", Value: -1}}},
		{Keys: bson.D{{Key: "name", Value: "text"}, {Key: "description", Value: "text"}}},
	})
	if err != nil {
		return fmt.Errorf("create tour indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindOne(ctx context.Context, id string) (models.Tour, error) {
	var t models.Tour
	err := s.coll.FindOne(ctx, bson.M{"tourid": id}).Decode(&t)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.Tour{}, errs.NotFound("tour", id)
	}
	if err != nil {
		return models.Tour{}, fmt.Errorf("find tour %s: %w", id, err)
	}
	return t, nil
}

func (s *MongoStore) FindByOwner(ctx context.Context, ownerID string) ([]models.Tour, error) {
	opts := options.Find().SetSort(bson.D{{Key: "createdAt", Value: -1}, {Key: "tourid", Value: 1}})
	cursor, err := s.coll.Find(ctx, bson.M{"owner_id": ownerID}, opts)
	if err != nil {
		return nil, fmt.Errorf("find tours for %s: %w", ownerID, err)
	}
	defer cursor.Close(ctx)

	tours := []models.Tour{}
	if err := cursor.All(ctx, &tours); err != nil {
		return nil, fmt.Errorf("decode tours: %w", err)
	}
	return tours, nil
}

func (s *MongoStore) Insert(ctx context.Context, t models.Tour) error {
	if _, err := s.coll.InsertOne(ctx, t); err != nil {
		return fmt.Errorf("insert tour %s: %w", t.TourID, err)
	}
	return nil
}

// Replace overwrites the whole document, so the stored sequence is always one
// that passed the composer's checks.
func (s *MongoStore) Replace(ctx context.Context, t models.Tour) error {
	res, err := s.coll.ReplaceOne(ctx, bson.M{"tourid": t.TourID}, t)
	if err != nil {
		return fmt.Errorf("replace tour %s: %w", t.TourID, err)
	}
	if res.MatchedCount == 0 {
		return errs.NotFound("tour", t.TourID)
	}
	return nil
}

func (s *MongoStore) Delete(ctx context.Context, id string) error {
	res, err := s.coll.DeleteOne(ctx, bson.M{"tourid": id})
	if err != nil {
		return fmt.Errorf("delete tour %s: %w", id, err)
	}
	if res.DeletedCount == 0 {
		return errs.NotFound("tour", id)
	}
	return nil
}
