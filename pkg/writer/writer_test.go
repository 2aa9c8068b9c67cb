package writer

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/repositories"
)

func newTestWriter(store repositories.TargetStore, batchSize int) *BatchWriter {
	return New(store, batchSize, zap.NewNop())
}

func TestWrite_InsertsTransactionalRecords(t *testing.T) {
	store := repositories.NewMockTargetStore()
	w := newTestWriter(store, 10)

	records := []models.TransformedRecord{
		{"business_id": "biz1", "order_date": "2024-03-01T00:00:00Z", "total_amount": 100.0},
		{"business_id": "biz1", "order_date": "2024-03-02T00:00:00Z", "total_amount": 250.5},
	}

	outcome := w.Write(context.Background(), "sales_order", records)

	assert.Equal(t, 2, outcome.Inserted)
	assert.Equal(t, 0, outcome.Updated)
	assert.Empty(t, outcome.Errors)
	assert.Len(t, store.Rows("sales_order"), 2)
}

func TestWrite_StripsAutoIDBeforeInsert(t *testing.T) {
	store := repositories.NewMockTargetStore()
	var seen []models.TransformedRecord
	store.InsertErr = func(table string, rows []models.TransformedRecord) error {
		seen = append(seen, rows...)
		return nil
	}
	w := newTestWriter(store, 10)

	records := []models.TransformedRecord{
		{"business_id": "biz1", "sales_order_id": 999, "order_date": "2024-03-01T00:00:00Z", "total_amount": 10.0},
	}
	outcome := w.Write(context.Background(), "sales_order", records)

	assert.Equal(t, 1, outcome.Inserted)
	require.Len(t, seen, 1)
	_, has := seen[0]["sales_order_id"]
	assert.False(t, has, "caller-supplied surrogate key should be dropped")

	// The original record must not be mutated.
	assert.Equal(t, 999, records[0]["sales_order_id"])
}

func TestWrite_UpsertsExistingEntityRows(t *testing.T) {
	store := repositories.NewMockTargetStore()
	_, err := store.InsertRows(context.Background(), "customer", []models.TransformedRecord{
		{"business_id": "biz1", "customer_name": "Rahim Traders", "phone": "+8801711111111"},
	})
	require.NoError(t, err)

	w := newTestWriter(store, 10)
	records := []models.TransformedRecord{
		// Matches the stored row case-insensitively; new email merges in.
		{"business_id": "biz1", "customer_name": "rahim traders", "email": "rahim@example.com"},
		{"business_id": "biz1", "customer_name": "Karim Store"},
	}

	outcome := w.Write(context.Background(), "customer", records)

	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 1, outcome.Updated)
	assert.Empty(t, outcome.Errors)
	assert.Len(t, store.Rows("customer"), 2)

	for _, row := range store.Rows("customer") {
		if row["customer_name"] == "Rahim Traders" {
			assert.Equal(t, "rahim@example.com", row["email"])
			assert.Equal(t, "+8801711111111", row["phone"], "existing fields survive the merge")
		}
	}
}

func TestWrite_EntityRowsScopedToBusiness(t *testing.T) {
	store := repositories.NewMockTargetStore()
	_, err := store.InsertRows(context.Background(), "supplier", []models.TransformedRecord{
		{"business_id": "other", "supplier_name": "Acme Ltd"},
	})
	require.NoError(t, err)

	w := newTestWriter(store, 10)
	outcome := w.Write(context.Background(), "supplier", []models.TransformedRecord{
		{"business_id": "biz1", "supplier_name": "Acme Ltd"},
	})

	// Same name under a different business is not a match.
	assert.Equal(t, 1, outcome.Inserted)
	assert.Equal(t, 0, outcome.Updated)
	assert.Len(t, store.Rows("supplier"), 2)
}

func TestWrite_PartialBatchFailureContinues(t *testing.T) {
	store := repositories.NewMockTargetStore()
	calls := 0
	store.InsertErr = func(table string, rows []models.TransformedRecord) error {
		calls++
		if calls == 2 {
			return errors.New("deadlock detected")
		}
		return nil
	}
	w := newTestWriter(store, 2)

	var records []models.TransformedRecord
	for i := 0; i < 6; i++ {
		records = append(records, models.TransformedRecord{
			"business_id": "biz1", "order_date": "2024-03-01T00:00:00Z", "total_amount": float64(i),
		})
	}

	outcome := w.Write(context.Background(), "sales_order", records)

	assert.Equal(t, 4, outcome.Inserted)
	require.Len(t, outcome.Errors, 1)
	assert.Contains(t, outcome.Errors[0], "deadlock detected")
	assert.Equal(t, 3, store.InsertCalls)
}

func TestWrite_EmptyInput(t *testing.T) {
	store := repositories.NewMockTargetStore()
	w := newTestWriter(store, 10)

	outcome := w.Write(context.Background(), "expense", nil)

	assert.Zero(t, outcome.Inserted)
	assert.Zero(t, outcome.Updated)
	assert.Zero(t, store.InsertCalls)
}

func TestWrite_DefaultBatchSize(t *testing.T) {
	w := newTestWriter(repositories.NewMockTargetStore(), 0)
	assert.Equal(t, DefaultBatchSize, w.batchSize)
}
