package users

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"sync"

	"campusexplorer/errs"
	"campusexplorer/models"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// Store persists user accounts by lowercase email.
type Store interface {
	FindByEmail(ctx context.Context, email string) (models.User, error)
	Insert(ctx context.Context, u models.User) error
}

// errEmailTaken is returned when two requests race to create the same owner.
var errEmailTaken = errors.New("email already registered")

type MemoryStore struct {
	mu      sync.RWMutex
	byEmail map[string]models.User
}

func NewMemoryStore() *MemoryStore {
	return &MemoryStore{byEmail: make(map[string]models.User)}
}

func (s *MemoryStore) FindByEmail(_ context.Context, email string) (models.User, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	u, ok := s.byEmail[strings.ToLower(email)]
	if !ok {
		return models.User{}, errs.NotFound("user", email)
	}
	return u, nil
}

func (s *MemoryStore) Insert(_ context.Context, u models.User) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if _, ok := s.byEmail[u.Email]; ok {
		return errEmailTaken
	}
	s.byEmail[u.Email] = u
	return nil
}

type MongoStore struct {
	coll *mongo.Collection
}

func NewMongoStore(coll *mongo.Collection) *MongoStore {
	return &MongoStore{coll: coll}
}

func (s *MongoStore) EnsureIndexes(ctx context.Context) error {
	_, err := s.coll.Indexes().CreateOne(ctx, mongo.IndexModel{
		Keys:    bson.D{{Key: "email", Value: 1}},
		Options: options.Index().SetUnique(true),
	})
	if err != nil {
		return fmt.Errorf("create user indexes: %w", err)
	}
	return nil
}

func (s *MongoStore) FindByEmail(ctx context.Context, email string) (models.User, error) {
	var u models.User
	err := s.coll.FindOne(ctx, bson.M{"email": strings.ToLower(email)}).Decode(&u)
	if errors.Is(err, mongo.ErrNoDocuments) {
		return models.User{}, errs.NotFound("user", email)
	}
	if err != nil {
		return models.User{}, fmt.Errorf("find user %s: %w", email, err)
	}
	return u, nil
}

func (s *MongoStore) Insert(ctx context.Context, u models.User) error {
	_, err := s.coll.InsertOne(ctx, u)
	if mongo.IsDuplicateKeyError(err) {
		return errEmailTaken
	}
	if err != nil {
		return fmt.Errorf("insert user %s: %w", u.Email, err)
	}
	return nil
}
