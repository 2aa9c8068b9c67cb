package validate

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

func TestClean_DropsRecordsMissingRequiredFields(t *testing.T) {
	v := New(zap.NewNop())
	records := []models.TransformedRecord{
		{"business_id": "b1", "customer_name": "Rahim"},
		{"business_id": "b1", "phone": "01711223344"},
		{"business_id": "b1", "customer_name": "   "},
		{"business_id": "b1", "customer_name": nil},
	}

	result := v.Clean("customer", records)
	assert.Len(t, result.Clean, 1)
	assert.Equal(t, 3, result.Invalid)
	assert.Equal(t, 0, result.Duplicates)
}

func TestClean_DeduplicatesByIdentityTuple(t *testing.T) {
	v := New(zap.NewNop())
	records := []models.TransformedRecord{
		{"business_id": "b1", "supplier_name": "Acme Ltd", "phone": "111"},
		{"business_id": "b1", "supplier_name": "acme ltd", "phone": "222"},
		{"business_id": "b1", "supplier_name": " ACME LTD "},
		{"business_id": "b1", "supplier_name": "Other Co"},
	}

	result := v.Clean("supplier", records)
	require.Len(t, result.Clean, 2)
	assert.Equal(t, 2, result.Duplicates)

	// First occurrence wins.
	assert.Equal(t, "Acme Ltd", result.Clean[0]["supplier_name"])
	assert.Equal(t, "111", result.Clean[0]["phone"])
}

func TestClean_ProductIdentityIncludesBrandAndSupplier(t *testing.T) {
	v := New(zap.NewNop())
	records := []models.TransformedRecord{
		{"business_id": "b1", "product_name": "Pen", "brand_id": 1, "supplier_id": 1},
		{"business_id": "b1", "product_name": "Pen", "brand_id": 2, "supplier_id": 1},
		{"business_id": "b1", "product_name": "Pen", "brand_id": 1, "supplier_id": 1},
	}

	result := v.Clean("product", records)
	assert.Len(t, result.Clean, 2)
	assert.Equal(t, 1, result.Duplicates)
}

func TestClean_TransactionalTablesDoNotDeduplicate(t *testing.T) {
	v := New(zap.NewNop())
	records := []models.TransformedRecord{
		{"business_id": "b1", "order_date": "2024-01-15T00:00:00Z", "total_amount": 100.0},
		{"business_id": "b1", "order_date": "2024-01-15T00:00:00Z", "total_amount": 100.0},
	}

	result := v.Clean("sales_order", records)
	assert.Len(t, result.Clean, 2)
	assert.Equal(t, 0, result.Duplicates)
}
