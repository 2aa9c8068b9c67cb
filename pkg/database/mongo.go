package database

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.mongodb.org/mongo-driver/mongo/readpref"
)

const mongoConnectTimeout = 10 * time.Second

// SourceDB wraps the MongoDB database the spreadsheet ingestion writes into.
type SourceDB struct {
	client *mongo.Client
	db     *mongo.Database
}

// NewSourceConnection connects to the source document store and verifies
// the connection with a ping.
func NewSourceConnection(ctx context.Context, uri, database string) (*SourceDB, error) {
	ctx, cancel := context.WithTimeout(ctx, mongoConnectTimeout)
	defer cancel()

	client, err := mongo.Connect(ctx, options.Client().ApplyURI(uri))
	if err != nil {
		return nil, fmt.Errorf("failed to connect to source store: %w", err)
	}

	if err := client.Ping(ctx, readpref.Primary()); err != nil {
		_ = client.Disconnect(ctx)
		return nil, fmt.Errorf("failed to ping source store: %w", err)
	}

	return &SourceDB{client: client, db: client.Database(database)}, nil
}

// Database returns the underlying mongo database handle.
func (s *SourceDB) Database() *mongo.Database {
	return s.db
}

// Close disconnects from the source store.
func (s *SourceDB) Close(ctx context.Context) error {
	return s.client.Disconnect(ctx)
}
