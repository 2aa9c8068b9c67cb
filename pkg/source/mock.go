package source

import (
	"context"
	"sort"
	"strings"
)

// MockStore is an in-memory DocumentStore for tests.
type MockStore struct {
	// Collections maps collection name to its documents.
	Collections map[string][]map[string]any

	// ListErr and ScanErr inject failures.
	ListErr error
	ScanErr error
}

// NewMockStore creates an empty mock document store.
func NewMockStore() *MockStore {
	return &MockStore{Collections: make(map[string][]map[string]any)}
}

var _ DocumentStore = (*MockStore)(nil)

// Count implements DocumentStore.
func (m *MockStore) Count(ctx context.Context, collection string) (int64, error) {
	return int64(len(m.Collections[collection])), nil
}

// Sample implements DocumentStore.
func (m *MockStore) Sample(ctx context.Context, collection string, n int) ([]map[string]any, error) {
	docs := m.Collections[collection]
	if len(docs) > n {
		docs = docs[:n]
	}
	return docs, nil
}

// Scan implements DocumentStore.
func (m *MockStore) Scan(ctx context.Context, collection string) ([]map[string]any, error) {
	if m.ScanErr != nil {
		return nil, m.ScanErr
	}
	return m.Collections[collection], nil
}

// ListCollections implements DocumentStore.
func (m *MockStore) ListCollections(ctx context.Context, prefix string) ([]string, error) {
	if m.ListErr != nil {
		return nil, m.ListErr
	}
	var names []string
	for name := range m.Collections {
		if strings.HasPrefix(name, prefix) {
			names = append(names, name)
		}
	}
	sort.Strings(names)
	return names, nil
}
