package db

import (
	"context"
	"fmt"
	"time"

	"campusexplorer/config"
	"campusexplorer/globals"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

var (
	BuildingsCollection *mongo.Collection
	ToursCollection     *mongo.Collection
	UserCollection      *mongo.Collection
	Client              *mongo.Client
)

// Connect opens the MongoDB client, verifies it with a ping and binds the
// collection handles.
func Connect(ctx context.Context, cfg config.MongoConfig) (*mongo.Client, error) {
	clientOptions := options.Client().
		ApplyURI(cfg.URI).
		SetServerSelectionTimeout(10 * time.Second)

	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, fmt.Errorf("connect to mongodb: %w", err)
	}

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("ping mongodb: %w", err)
	}

	Bind(client.Database(cfg.Database))
	Client = client
	return client, nil
}

// Bind points the collection handles at database.
func Bind(database *mongo.Database) {
	BuildingsCollection = database.Collection(globals.BuildingsCollection)
	ToursCollection = database.Collection(globals.ToursCollection)
	UserCollection = database.Collection(globals.UsersCollection)
}

// Disconnect closes the client opened by Connect.
func Disconnect(ctx context.Context) error {
	if Client == nil {
		return nil
	}
	return Client.Disconnect(ctx)
}
