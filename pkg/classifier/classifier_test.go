package classifier

import (
	"context"
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/analyzer"
	"github.com/ledgermap/ledgermap-engine/pkg/llm"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/rules"
)

func testConfig() Config {
	return Config{MaxAttempts: 2, Backoff: time.Millisecond, Temperature: 0.1}
}

func salesAnalysis(t *testing.T) *models.CollectionAnalysis {
	t.Helper()
	docs := []map[string]any{
		{"Order Date": "2024-01-15", "Total Amount": "1,299.50 ৳", "Customer": "Rahim", "Profit Margin": "0.3"},
	}
	return analyzer.New(zap.NewNop()).Analyze("sales", docs, 1)
}

func newTestClassifier(clients ...llm.Client) *Classifier {
	logger := zap.NewNop()
	return NewWithClients(testConfig(), clients, rules.New(logger), logger)
}

func TestClassify_ValidResponse(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"tables": [{"table_name": "sales_order", "confidence": 0.9,
			"field_mappings": [
				{"source_field": "Order Date", "target_field": "order_date", "confidence": 0.95},
				{"source_field": "Total Amount", "target_field": "total_amount", "confidence": "0.9"}
			],
			"relationships": [{"related_table": "customer", "key": "customer_id"}]
		}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)

	tm := result.Tables[0]
	assert.Equal(t, "sales_order", tm.TableName)
	assert.Len(t, tm.FieldMappings, 2)
	// Confidence returned as a quoted string still parses.
	assert.InDelta(t, 0.9, tm.FieldMappings[1].Confidence, 1e-9)
	assert.Equal(t, models.MappingMethodLLM, tm.FieldMappings[0].Method)
	require.Len(t, tm.Relationships, 1)
	assert.Equal(t, "customer", tm.Relationships[0].RelatedTable)
}

func TestClassify_DiscardsHallucinatedColumn(t *testing.T) {
	// sales_order has no profit_margin column; the mapping must be
	// downgraded to an unmapped field, not passed through.
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"tables": [{"table_name": "sales_order", "confidence": 0.9,
			"field_mappings": [
				{"source_field": "Order Date", "target_field": "order_date", "confidence": 0.95},
				{"source_field": "Profit Margin", "target_field": "profit_margin", "confidence": 0.8}
			]}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)
	assert.Len(t, result.Tables[0].FieldMappings, 1)

	require.Len(t, result.UnmappedFields, 1)
	assert.Equal(t, "Profit Margin", result.UnmappedFields[0].FieldName)
	assert.Contains(t, result.UnmappedFields[0].Reason, "non-existent column")
}

func TestClassify_DiscardsReservedColumnMapping(t *testing.T) {
	// business_id scopes every write and the other *_id columns are assigned
	// by the target database; a response mapping source data onto them must
	// be downgraded, never passed through to the transformer.
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"tables": [{"table_name": "sales_order", "confidence": 0.9,
			"field_mappings": [
				{"source_field": "Order Date", "target_field": "order_date", "confidence": 0.95},
				{"source_field": "Shop", "target_field": "business_id", "confidence": 0.9},
				{"source_field": "Customer", "target_field": "customer_id", "confidence": 0.8}
			]}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	require.Len(t, result.Tables, 1)
	require.Len(t, result.Tables[0].FieldMappings, 1)
	assert.Equal(t, "order_date", result.Tables[0].FieldMappings[0].TargetField)

	require.Len(t, result.UnmappedFields, 2)
	for _, uf := range result.UnmappedFields {
		assert.Contains(t, uf.Reason, "assigned by the engine")
	}
}

func TestClassify_ToleratesNonStringReasoning(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"tables": [{"table_name": "sales_order", "confidence": 0.9, "reasoning": 4,
			"field_mappings": [{"source_field": "Order Date", "target_field": "order_date", "confidence": 0.9}]}],
			"unmapped_fields": [{"field_name": "Profit Margin", "reason": 12}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	// A mistyped reasoning field must not fail the parse and force a retry.
	assert.Equal(t, 1, mock.CompleteCalls)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "4", result.Tables[0].Reasoning)
	require.Len(t, result.UnmappedFields, 1)
	assert.Equal(t, "12", result.UnmappedFields[0].Reason)
}

func TestClassify_DiscardsHallucinatedTable(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"tables": [{"table_name": "profit_reports", "confidence": 0.9,
			"field_mappings": [
				{"source_field": "Profit Margin", "target_field": "margin", "confidence": 0.8}
			]}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	assert.Empty(t, result.Tables)
	require.Len(t, result.UnmappedFields, 1)
	assert.Contains(t, result.UnmappedFields[0].Reason, "non-existent table")
}

func TestClassify_DropsTableWithNoValidMappings(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		return `{"tables": [{"table_name": "sales_order", "confidence": 0.9,
			"field_mappings": [
				{"source_field": "Profit Margin", "target_field": "profit_margin", "confidence": 0.8}
			]}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	assert.Empty(t, result.Tables)
}

func TestClassify_RetriesMalformedThenSucceeds(t *testing.T) {
	mock := llm.NewMockClient()
	mock.CompleteFunc = func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
		if mock.CompleteCalls == 1 {
			return "I think this maps to sales_order, roughly.", nil
		}
		return `{"tables": [{"table_name": "sales_order", "confidence": 0.8,
			"field_mappings": [{"source_field": "Order Date", "target_field": "order_date", "confidence": 0.9}]}]}`, nil
	}

	c := newTestClassifier(mock)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	assert.Equal(t, 2, mock.CompleteCalls)
	require.Len(t, result.Tables, 1)
}

func TestClassify_RotatesToNextModel(t *testing.T) {
	failing := &llm.MockClient{
		ModelName: "model-a",
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
			return "", llm.NewError(llm.ErrorTypeServer, "boom", true, nil, "model-a")
		},
	}
	working := &llm.MockClient{
		ModelName: "model-b",
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
			return `{"tables": [{"table_name": "sales_order", "confidence": 0.8,
				"field_mappings": [{"source_field": "Order Date", "target_field": "order_date", "confidence": 0.9}]}]}`, nil
		},
	}

	c := newTestClassifier(failing, working)
	result, err := c.Classify(context.Background(), salesAnalysis(t))
	require.NoError(t, err)
	assert.Equal(t, 2, failing.CompleteCalls)
	assert.Equal(t, 1, working.CompleteCalls)
	require.Len(t, result.Tables, 1)
}

func TestClassify_NonRetryableAbortsModelImmediately(t *testing.T) {
	failing := &llm.MockClient{
		ModelName: "model-a",
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
			return "", llm.NewError(llm.ErrorTypeAuth, "bad key", false, nil, "model-a")
		},
	}

	c := newTestClassifier(failing)
	_, err := c.Classify(context.Background(), salesAnalysis(t))
	require.Error(t, err)
	assert.Equal(t, 1, failing.CompleteCalls)
}

func TestDetermineMapping_FallsBackToRules(t *testing.T) {
	failing := &llm.MockClient{
		CompleteFunc: func(ctx context.Context, prompt, system string, temperature float64) (string, error) {
			return "", fmt.Errorf("503 service unavailable")
		},
	}

	c := newTestClassifier(failing)
	result := c.DetermineMapping(context.Background(), salesAnalysis(t))
	require.NotNil(t, result)
	require.Len(t, result.Tables, 1)
	assert.Equal(t, "sales_order", result.Tables[0].TableName)
	for _, fm := range result.Tables[0].FieldMappings {
		assert.Equal(t, models.MappingMethodRule, fm.Method)
	}
}

func TestDetermineMapping_NoClientsUsesRules(t *testing.T) {
	c := newTestClassifier()
	result := c.DetermineMapping(context.Background(), salesAnalysis(t))
	require.NotNil(t, result)
	require.NotEmpty(t, result.Tables)
}

func TestBuildPrompt_ContainsCatalogAndGuardrails(t *testing.T) {
	a := salesAnalysis(t)
	prompt := buildPrompt(a)

	assert.Contains(t, prompt, "sales_order")
	assert.Contains(t, prompt, "order_date")
	assert.Contains(t, prompt, "Do NOT invent tables or columns")
	assert.Contains(t, prompt, "Order Date")
}
