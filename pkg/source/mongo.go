package source

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
	"go.uber.org/zap"
)

// MongoStore reads source collections from a MongoDB database.
type MongoStore struct {
	db     *mongo.Database
	logger *zap.Logger
}

// NewMongoStore creates a read-only document store over db.
func NewMongoStore(db *mongo.Database, logger *zap.Logger) *MongoStore {
	return &MongoStore{db: db, logger: logger.Named("source")}
}

var _ DocumentStore = (*MongoStore)(nil)

// Count implements DocumentStore.
func (s *MongoStore) Count(ctx context.Context, collection string) (int64, error) {
	n, err := s.db.Collection(collection).CountDocuments(ctx, bson.D{})
	if err != nil {
		return 0, fmt.Errorf("count %s: %w", collection, err)
	}
	return n, nil
}

// Sample implements DocumentStore.
func (s *MongoStore) Sample(ctx context.Context, collection string, n int) ([]map[string]any, error) {
	opts := options.Find().SetLimit(int64(n))
	return s.find(ctx, collection, opts)
}

// Scan implements DocumentStore.
func (s *MongoStore) Scan(ctx context.Context, collection string) ([]map[string]any, error) {
	return s.find(ctx, collection, options.Find())
}

func (s *MongoStore) find(ctx context.Context, collection string, opts *options.FindOptions) ([]map[string]any, error) {
	cursor, err := s.db.Collection(collection).Find(ctx, bson.D{}, opts)
	if err != nil {
		return nil, fmt.Errorf("find %s: %w", collection, err)
	}
	defer cursor.Close(ctx)

	var docs []map[string]any
	for cursor.Next(ctx) {
		var doc bson.M
		if err := cursor.Decode(&doc); err != nil {
			return nil, fmt.Errorf("decode %s document: %w", collection, err)
		}
		docs = append(docs, flattenDocument(doc))
	}
	if err := cursor.Err(); err != nil {
		return nil, fmt.Errorf("iterate %s: %w", collection, err)
	}
	return docs, nil
}

// ListCollections implements DocumentStore.
func (s *MongoStore) ListCollections(ctx context.Context, prefix string) ([]string, error) {
	names, err := s.db.ListCollectionNames(ctx, bson.D{})
	if err != nil {
		return nil, fmt.Errorf("list collections: %w", err)
	}

	var out []string
	for _, name := range names {
		if strings.HasPrefix(name, prefix) {
			out = append(out, name)
		}
	}
	sort.Strings(out)
	return out, nil
}

// flattenDocument renders BSON values as plain Go values. ObjectIDs and
// other non-scalar identifiers stringify so downstream coercion only deals
// with strings and numbers.
func flattenDocument(doc bson.M) map[string]any {
	out := make(map[string]any, len(doc))
	for k, v := range doc {
		switch tv := v.(type) {
		case bson.M, bson.D, bson.A:
			out[k] = fmt.Sprintf("%v", tv)
		default:
			out[k] = v
		}
	}
	return out
}
