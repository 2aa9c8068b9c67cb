package source

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/bson"
)

func TestFlattenDocument(t *testing.T) {
	doc := bson.M{
		"name":   "Rahim Traders",
		"amount": 1250.5,
		"count":  int32(3),
		"nested": bson.M{"city": "Dhaka"},
		"items":  bson.A{"a", "b"},
	}

	flat := flattenDocument(doc)

	assert.Equal(t, "Rahim Traders", flat["name"])
	assert.Equal(t, 1250.5, flat["amount"])
	assert.Equal(t, int32(3), flat["count"])

	// Non-scalar values stringify so downstream coercion sees text.
	_, isMap := flat["nested"].(string)
	assert.True(t, isMap, "nested documents should flatten to strings")
	_, isArr := flat["items"].(string)
	assert.True(t, isArr, "arrays should flatten to strings")
}

func TestMockStore_ListCollectionsFiltersByPrefix(t *testing.T) {
	store := NewMockStore()
	store.Collections["biz1_customers"] = nil
	store.Collections["biz1_sales"] = nil
	store.Collections["biz2_customers"] = nil

	names, err := store.ListCollections(context.Background(), "biz1_")
	require.NoError(t, err)
	assert.Equal(t, []string{"biz1_customers", "biz1_sales"}, names)
}

func TestMockStore_SampleBounded(t *testing.T) {
	store := NewMockStore()
	for i := 0; i < 10; i++ {
		store.Collections["biz1_sales"] = append(store.Collections["biz1_sales"], map[string]any{"n": i})
	}

	docs, err := store.Sample(context.Background(), "biz1_sales", 3)
	require.NoError(t, err)
	assert.Len(t, docs, 3)

	count, err := store.Count(context.Background(), "biz1_sales")
	require.NoError(t, err)
	assert.Equal(t, int64(10), count)
}
