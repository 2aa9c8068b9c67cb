package hierarchy

import (
	"fmt"
	"strconv"
	"strings"

	"github.com/ledgermap/ledgermap-engine/pkg/analyzer"
	"github.com/ledgermap/ledgermap-engine/pkg/transform"
)

// Field-name pools consulted when shaping heterogeneous inventory rows.
// Cost and selling pools are disjoint so purchase cost is never conflated
// with retail price; the generic pool is a selling-price fallback only.
var (
	productNameFields  = []string{"product_name", "item_name", "product", "item", "goods", "title", "name"}
	quantityFields     = []string{"stock_quantity", "stock", "quantity", "qty", "units", "count"}
	costPriceFields    = []string{"purchase_price", "buying_price", "cost_price", "unit_cost", "cost"}
	sellingFields      = []string{"selling_price", "sale_price", "retail_price", "mrp"}
	genericPriceFields = []string{"price", "amount", "value"}
	categoryFields     = []string{"category_name", "category", "type", "group"}
	brandFields        = []string{"brand_name", "brand", "company", "manufacturer"}
	skuFields          = []string{"sku", "barcode", "item_code", "code"}
	descriptionFields  = []string{"description", "details", "notes", "remarks"}
)

// categoryRules infer a category from the collection name when rows carry
// no explicit category field.
var categoryRules = []struct {
	substring string
	category  string
}{
	{"book", "Books"},
	{"electronic", "Electronics"},
	{"gadget", "Electronics"},
	{"mobile", "Electronics"},
	{"cloth", "Clothing"},
	{"garment", "Clothing"},
	{"apparel", "Clothing"},
	{"grocery", "Groceries"},
	{"food", "Groceries"},
	{"medicine", "Pharmacy"},
	{"pharma", "Pharmacy"},
	{"cosmetic", "Cosmetics"},
	{"beauty", "Cosmetics"},
	{"furniture", "Furniture"},
	{"stationery", "Stationery"},
}

// DefaultCategory is used when nothing else resolves.
const DefaultCategory = "Uncategorized"

// lookupField finds the first pool member present in the document by
// normalized field name and returns its trimmed string value.
func lookupField(doc map[string]any, pool []string) (string, bool) {
	normalized := make(map[string]string, len(doc))
	for k := range doc {
		normalized[analyzer.NormalizeFieldName(k)] = k
	}
	for _, candidate := range pool {
		orig, ok := normalized[candidate]
		if !ok {
			continue
		}
		if raw := doc[orig]; raw != nil {
			if v := strings.TrimSpace(fmt.Sprintf("%v", raw)); v != "" {
				return v, true
			}
		}
	}
	return "", false
}

func lookupPrice(doc map[string]any, pool []string) *float64 {
	raw, ok := lookupField(doc, pool)
	if !ok {
		return nil
	}
	if v, parsed := transform.ParseCurrency(raw); parsed {
		return &v
	}
	return nil
}

func lookupQuantity(doc map[string]any) int {
	raw, ok := lookupField(doc, quantityFields)
	if !ok {
		return 1
	}
	if v, err := strconv.Atoi(strings.TrimSpace(raw)); err == nil && v > 0 {
		return v
	}
	if v, parsed := transform.ParseCurrency(raw); parsed && v > 0 {
		return int(v)
	}
	return 1
}

// inferCategory resolves a category name from the collection identifier.
func inferCategory(collectionID string) string {
	normalized := analyzer.NormalizeFieldName(collectionID)
	for _, rule := range categoryRules {
		if strings.Contains(normalized, rule.substring) {
			return rule.category
		}
	}
	return DefaultCategory
}
