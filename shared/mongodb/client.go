// shared/mongodb/client.go
package mongodb

import (
	"context"
	"fmt"
	"log"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// Client wraps *mongo.Client and pins it to one database.
type Client struct {
	mongoClient *mongo.Client
	database    string
}

// NewClient connects to MongoDB, pings the primary and returns a Client
// bound to databaseName.
func NewClient(ctx context.Context, connStr, databaseName string) (*Client, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(connStr))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	if err = client.Ping(ctx, readpref.Primary()); err != nil {
		if disconnectErr := client.Disconnect(context.Background()); disconnectErr != nil {
			log.Printf("WARN: failed to disconnect MongoDB client after ping failure: %v", disconnectErr)
		}
		return nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	log.Printf("INFO: connected to MongoDB database %q", databaseName)
	return &Client{
		mongoClient: client,
		database:    databaseName,
	}, nil
}

// Collection returns a handle to the named collection.
func (mc *Client) Collection(collectionName string) *mongo.Collection {
	return mc.mongoClient.Database(mc.database).Collection(collectionName)
}

// EnsureIndexes creates the given indexes on a collection. Existing
// identical indexes are left alone by the server.
func (mc *Client) EnsureIndexes(ctx context.Context, collectionName string, models []mongo.IndexModel) error {
	if len(models) == 0 {
		return nil
	}
	names, err := mc.Collection(collectionName).Indexes().CreateMany(ctx, models)
	if err != nil {
		return fmt.Errorf("failed to create indexes on %s: %w", collectionName, err)
	}
	log.Printf("INFO: ensured indexes %v on %s", names, collectionName)
	return nil
}

// Disconnect closes the MongoDB client connection.
func (mc *Client) Disconnect(ctx context.Context) error {
	log.Println("INFO: disconnecting from MongoDB...")
	return mc.mongoClient.Disconnect(ctx)
}
