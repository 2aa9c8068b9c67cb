package repositories

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// MockTargetStore is an in-memory TargetStore for tests. It assigns
// incrementing surrogate keys the way the real store's sequences do, and
// supports per-table error injection.
type MockTargetStore struct {
	mu     sync.Mutex
	rows   map[string][]map[string]any
	nextID int64

	// InsertErr, if set, is consulted before every insert; a non-nil return
	// fails that batch.
	InsertErr func(table string, rows []models.TransformedRecord) error

	InsertCalls int
	UpdateCalls int
}

// NewMockTargetStore creates an empty in-memory store.
func NewMockTargetStore() *MockTargetStore {
	return &MockTargetStore{rows: make(map[string][]map[string]any), nextID: 1}
}

// SelectByColumn implements TargetStore.
func (m *MockTargetStore) SelectByColumn(ctx context.Context, table, column, businessID string, values []string) ([]map[string]any, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	wanted := make(map[string]bool, len(values))
	for _, v := range values {
		wanted[strings.ToLower(v)] = true
	}

	var out []map[string]any
	for _, row := range m.rows[table] {
		if fmt.Sprintf("%v", row[catalog.BusinessIDColumn]) != businessID {
			continue
		}
		if v, ok := row[column]; ok && wanted[strings.ToLower(fmt.Sprintf("%v", v))] {
			copied := make(map[string]any, len(row))
			for k, val := range row {
				copied[k] = val
			}
			out = append(out, copied)
		}
	}
	return out, nil
}

// InsertRows implements TargetStore.
func (m *MockTargetStore) InsertRows(ctx context.Context, table string, rows []models.TransformedRecord) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.InsertCalls++

	if m.InsertErr != nil {
		if err := m.InsertErr(table, rows); err != nil {
			return 0, err
		}
	}

	autoID := catalog.AutoIDColumn(table)
	for _, row := range rows {
		stored := make(map[string]any, len(row)+1)
		for k, v := range row {
			if k == autoID {
				continue
			}
			stored[k] = v
		}
		if autoID != "" {
			stored[autoID] = m.nextID
			m.nextID++
		}
		m.rows[table] = append(m.rows[table], stored)
	}
	return len(rows), nil
}

// UpdateRow implements TargetStore.
func (m *MockTargetStore) UpdateRow(ctx context.Context, table string, row models.TransformedRecord, keyColumn string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.UpdateCalls++

	key := fmt.Sprintf("%v", row[keyColumn])
	for _, stored := range m.rows[table] {
		if fmt.Sprintf("%v", stored[catalog.BusinessIDColumn]) != row.BusinessID() {
			continue
		}
		if fmt.Sprintf("%v", stored[keyColumn]) == key {
			for k, v := range row {
				if v != nil && k != keyColumn && k != catalog.AutoIDColumn(table) {
					stored[k] = v
				}
			}
			return nil
		}
	}
	return nil
}

// Rows returns the stored rows of a table, for assertions.
func (m *MockTargetStore) Rows(table string) []map[string]any {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([]map[string]any(nil), m.rows[table]...)
}

var _ TargetStore = (*MockTargetStore)(nil)
