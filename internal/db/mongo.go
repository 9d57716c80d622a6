package db

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

// ConnectDB initializes and returns a MongoDB client and database instance.
func ConnectDB(uri, dbName string) (*mongo.Client, *mongo.Database, error) {
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	clientOptions := options.Client().ApplyURI(uri)
	client, err := mongo.Connect(ctx, clientOptions)
	if err != nil {
		return nil, nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
	}

	// Ping the primary node
	ctxPing, cancelPing := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancelPing()
	if err := client.Ping(ctxPing, readpref.Primary()); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, nil, fmt.Errorf("failed to ping MongoDB: %w", err)
	}

	db := client.Database(dbName)
	fmt.Println("Successfully connected to MongoDB!")

	return client, db, nil
}

// DisconnectDB closes the MongoDB client connection.
func DisconnectDB(client *mongo.Client) error {
	if client == nil {
		return nil
	}
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := client.Disconnect(ctx); err != nil {
		return fmt.Errorf("failed to disconnect MongoDB: %w", err)
	}
	fmt.Println("MongoDB connection closed.")
	return nil
}

// EnsureIndexes declares the unique indexes every check-then-act sequence in
// the services relies on. Duplicate inserts surface as mongo duplicate-key
// errors (code 11000) instead of racing past a pre-check query:
//
//   - applications: one per (listing_id, buyer_id)
//   - property_views: one per (buyer_id, listing_id)
//   - users: unique email (system-agent get-or-create hinges on this)
//   - subscriptions: one row per user
//   - search_alerts: one per (saved_search_id, listing_id)
func EnsureIndexes(ctx context.Context, db *mongo.Database) error {
	unique := options.Index().SetUnique(true)

	indexes := map[string][]mongo.IndexModel{
		"applications": {
			{Keys: bson.D{{Key: "listing_id", Value: 1}, {Key: "buyer_id", Value: 1}}, Options: unique},
			{Keys: bson.D{{Key: "agent_id", Value: 1}}},
		},
		"property_views": {
			{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "listing_id", Value: 1}}, Options: unique},
		},
		"users": {
			{Keys: bson.D{{Key: "email", Value: 1}}, Options: unique},
		},
		"subscriptions": {
			{Keys: bson.D{{Key: "user_id", Value: 1}}, Options: unique},
		},
		"search_alerts": {
			{Keys: bson.D{{Key: "saved_search_id", Value: 1}, {Key: "listing_id", Value: 1}}, Options: unique},
		},
		"listings": {
			{Keys: bson.D{{Key: "status", Value: 1}, {Key: "published_at", Value: -1}}},
			{Keys: bson.D{{Key: "agent_id", Value: 1}}},
		},
		"saved_searches": {
			{Keys: bson.D{{Key: "buyer_id", Value: 1}}},
		},
		"messages": {
			{Keys: bson.D{{Key: "buyer_id", Value: 1}, {Key: "created_at", Value: -1}}},
			{Keys: bson.D{{Key: "agent_id", Value: 1}, {Key: "created_at", Value: -1}}},
		},
	}

	for collection, models := range indexes {
		if _, err := db.Collection(collection).Indexes().CreateMany(ctx, models); err != nil {
			return fmt.Errorf("failed to create indexes for %s: %w", collection, err)
		}
	}
	return nil
}
