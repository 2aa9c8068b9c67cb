package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

func TestNormalizeFieldName(t *testing.T) {
	tests := []struct {
		input string
		want  string
	}{
		{"Product Name", "product_name"},
		{"  Selling Price (BDT)  ", "selling_price_bdt"},
		{"customer-name", "customer_name"},
		{"Phone#Number", "phone_number"},
		{"qty", "qty"},
		{"মোট টাকা", "মোট_টাকা"},
		{"__weird__", "weird"},
	}

	for _, tt := range tests {
		assert.Equal(t, tt.want, NormalizeFieldName(tt.input), "input %q", tt.input)
	}
}

func TestAnalyze_FieldOrderIsDeterministic(t *testing.T) {
	a := New(zap.NewNop())
	docs := []map[string]any{
		{"name": "Rahim", "phone": "01711223344", "_id": "a1"},
		{"name": "Karim", "email": "karim@example.com"},
	}

	first := a.Analyze("customers", docs, 2)
	for i := 0; i < 5; i++ {
		again := a.Analyze("customers", docs, 2)
		require.Equal(t, first.Fields, again.Fields)
	}

	var names []string
	for _, f := range first.Fields {
		names = append(names, f.Name)
	}
	// Keys sorted within a doc, first-seen across docs; _id is internal.
	assert.Equal(t, []string{"name", "phone", "email"}, names)
}

func TestAnalyze_SkipsInternalFields(t *testing.T) {
	a := New(zap.NewNop())
	docs := []map[string]any{
		{"_id": "x", "business_id": "b1", "uploaded_at": "2024-01-01", "supplier_name": "Acme"},
	}

	analysis := a.Analyze("suppliers", docs, 1)
	require.Len(t, analysis.Fields, 1)
	assert.Equal(t, "supplier_name", analysis.Fields[0].Name)
}

func TestAnalyze_SemanticClassification(t *testing.T) {
	a := New(zap.NewNop())
	docs := []map[string]any{
		{
			"Product Name":   "Atlas Pen",
			"Purchase Price": "45.00",
			"Mobile Number":  "01711223344",
		},
	}

	analysis := a.Analyze("inventory", docs, 1)
	byName := map[string]models.FieldDescriptor{}
	for _, f := range analysis.Fields {
		byName[f.Name] = f
	}

	assert.Equal(t, "inventory", byName["Product Name"].SemanticCategory)
	assert.Equal(t, "product_name", byName["Product Name"].SemanticSubtype)
	assert.Equal(t, "cost_price", byName["Purchase Price"].SemanticSubtype)
	assert.True(t, byName["Purchase Price"].IsFinanceRelated)
	assert.Equal(t, "phone", byName["Mobile Number"].SemanticSubtype)
	assert.False(t, byName["Mobile Number"].IsFinanceRelated)
}

func TestAnalyze_LongestAliasWins(t *testing.T) {
	a := New(zap.NewNop())
	docs := []map[string]any{{"purchase price": "100"}}

	analysis := a.Analyze("stock", docs, 1)
	require.Len(t, analysis.Fields, 1)
	// "purchase_price" must beat the shorter "price" alias.
	assert.Equal(t, "cost_price", analysis.Fields[0].SemanticSubtype)
}

func TestAnalyze_CapsSample(t *testing.T) {
	a := New(zap.NewNop())
	var docs []map[string]any
	for i := 0; i < 20; i++ {
		docs = append(docs, map[string]any{"name": "x"})
	}

	analysis := a.Analyze("things", docs, 20)
	assert.Equal(t, MaxSampleDocuments, analysis.SampleSize)
	assert.Equal(t, int64(20), analysis.DocumentCount)
}
