// Package source reads the schema-less document store the upstream
// spreadsheet ingestion writes into. The pipeline is strictly read-only
// against it.
package source

import "context"

// DocumentStore is the boundary to the per-business document collections.
// No transactional guarantees are assumed.
type DocumentStore interface {
	// Count returns the number of documents in a collection.
	Count(ctx context.Context, collection string) (int64, error)

	// Sample returns up to n documents from a collection.
	Sample(ctx context.Context, collection string, n int) ([]map[string]any, error)

	// Scan returns every document in a collection.
	Scan(ctx context.Context, collection string) ([]map[string]any, error)

	// ListCollections returns collection names starting with prefix.
	ListCollections(ctx context.Context, prefix string) ([]string, error)
}
