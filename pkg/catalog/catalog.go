// Package catalog holds the fixed target schema: the table→column whitelist
// that classifier output is validated against. Loaded once, immutable for the
// process lifetime.
package catalog

import "strings"

// BusinessIDColumn is present on every target table and scopes all reads and
// writes to one business.
const BusinessIDColumn = "business_id"

// ProductKeyColumn is the one key column whose value is caller-supplied text
// rather than a database-assigned integer.
const ProductKeyColumn = "product_id"

// tableSpec is the declarative definition of one target table.
type tableSpec struct {
	columns []string // allowed columns, insert order
	// autoID is the auto-assigned surrogate key column, stripped from insert
	// payloads. Empty for the product table, whose key is caller-supplied.
	autoID string
	// naturalKey is the business-meaningful identity column used for
	// upsert-by-name. Empty for transactional tables.
	naturalKey string
	// required are the natural/foreign key columns a record must carry to be
	// meaningful. Surrogate keys are intentionally excluded.
	required []string
	// dedupKey is the identity tuple used to drop within-run duplicates.
	dedupKey []string
	// priority breaks table-detection ties; lower wins.
	priority int
}

var tables = map[string]tableSpec{
	"category": {
		columns:    []string{"category_id", BusinessIDColumn, "category_name", "description"},
		autoID:     "category_id",
		naturalKey: "category_name",
		required:   []string{"category_name"},
		dedupKey:   []string{"category_name"},
		priority:   6,
	},
	"brand": {
		columns:    []string{"brand_id", BusinessIDColumn, "category_id", "brand_name", "description"},
		autoID:     "brand_id",
		naturalKey: "brand_name",
		required:   []string{"brand_name"},
		dedupKey:   []string{"brand_name"},
		priority:   7,
	},
	"supplier": {
		columns:    []string{"supplier_id", BusinessIDColumn, "supplier_name", "contact_person", "email", "phone", "address"},
		autoID:     "supplier_id",
		naturalKey: "supplier_name",
		required:   []string{"supplier_name"},
		dedupKey:   []string{"supplier_name"},
		priority:   2,
	},
	"customer": {
		columns:    []string{"customer_id", BusinessIDColumn, "customer_name", "email", "phone", "address"},
		autoID:     "customer_id",
		naturalKey: "customer_name",
		required:   []string{"customer_name"},
		dedupKey:   []string{"customer_name"},
		priority:   3,
	},
	"investor": {
		columns:    []string{"investor_id", BusinessIDColumn, "investor_name", "contact_person", "email", "phone", "investment_amount", "investment_date", "ownership_percentage"},
		autoID:     "investor_id",
		naturalKey: "investor_name",
		required:   []string{"investor_name"},
		dedupKey:   []string{"investor_name"},
		priority:   8,
	},
	"product": {
		columns:    []string{"product_id", BusinessIDColumn, "brand_id", "supplier_id", "product_name", "description", "cost_price", "selling_price", "sku", "status", "created_date"},
		naturalKey: "product_name",
		required:   []string{"product_name"},
		dedupKey:   []string{"product_name", "brand_id", "supplier_id"},
		priority:   1,
	},
	"purchase_order": {
		columns:  []string{"purchase_order_id", BusinessIDColumn, "supplier_id", "order_date", "total_amount", "status"},
		autoID:   "purchase_order_id",
		required: []string{"order_date"},
		priority: 5,
	},
	"purchase_order_item": {
		columns:  []string{"po_item_id", "purchase_order_id", BusinessIDColumn, "product_name", "quantity", "unit_cost", "subtotal"},
		autoID:   "po_item_id",
		required: []string{"product_name"},
		priority: 10,
	},
	"sales_order": {
		columns:  []string{"sales_order_id", BusinessIDColumn, "customer_id", "order_date", "total_amount", "status"},
		autoID:   "sales_order_id",
		required: []string{"order_date"},
		priority: 4,
	},
	"sales_order_item": {
		columns:  []string{"so_item_id", "sales_order_id", BusinessIDColumn, "product_name", "quantity", "unit_price", "subtotal"},
		autoID:   "so_item_id",
		required: []string{"product_name"},
		priority: 11,
	},
	"expense": {
		columns:  []string{"expense_id", BusinessIDColumn, "expense_category", "description", "amount", "expense_date"},
		autoID:   "expense_id",
		required: []string{"amount"},
		priority: 9,
	},
	"investment": {
		columns:  []string{"investment_id", BusinessIDColumn, "investor_id", "amount", "investment_date", "purpose"},
		autoID:   "investment_id",
		required: []string{"amount"},
		priority: 12,
	},
}

// tableOrder fixes iteration order for prompts and scoring so output is
// stable across calls.
var tableOrder = []string{
	"product", "supplier", "customer", "sales_order", "purchase_order",
	"category", "brand", "investor", "expense",
	"purchase_order_item", "sales_order_item", "investment",
}

// Tables returns all target table names in fixed order.
func Tables() []string {
	out := make([]string, len(tableOrder))
	copy(out, tableOrder)
	return out
}

// HasTable reports whether name is a target table.
func HasTable(name string) bool {
	_, ok := tables[name]
	return ok
}

// Columns returns the allowed columns of a table in fixed order, or nil for
// an unknown table.
func Columns(table string) []string {
	spec, ok := tables[table]
	if !ok {
		return nil
	}
	out := make([]string, len(spec.columns))
	copy(out, spec.columns)
	return out
}

// HasColumn reports whether column is allowed in table.
func HasColumn(table, column string) bool {
	spec, ok := tables[table]
	if !ok {
		return false
	}
	for _, c := range spec.columns {
		if c == column {
			return true
		}
	}
	return false
}

// AutoIDColumn returns the auto-assigned surrogate key column, or "" if the
// table's key is caller-supplied (product).
func AutoIDColumn(table string) string {
	return tables[table].autoID
}

// NaturalKey returns the natural identity column used for upsert-by-name, or
// "" for transactional tables.
func NaturalKey(table string) string {
	return tables[table].naturalKey
}

// RequiredFields returns the columns a record must carry to be meaningful.
func RequiredFields(table string) []string {
	spec := tables[table]
	out := make([]string, len(spec.required))
	copy(out, spec.required)
	return out
}

// DedupKey returns the identity tuple used for within-run deduplication.
// Empty means the table is insert-only with no identity tuple.
func DedupKey(table string) []string {
	spec := tables[table]
	out := make([]string, len(spec.dedupKey))
	copy(out, spec.dedupKey)
	return out
}

// Priority breaks detection-score ties; lower wins. Unknown tables sort last.
func Priority(table string) int {
	spec, ok := tables[table]
	if !ok {
		return 1 << 10
	}
	return spec.priority
}

// IsReservedColumn reports whether column may never be populated from source
// data: business_id is supplied by the pipeline, and every other *_id column
// except the caller-supplied product key is an integer assigned or resolved on
// the target side.
func IsReservedColumn(column string) bool {
	if column == BusinessIDColumn {
		return true
	}
	return strings.HasSuffix(column, "_id") && column != ProductKeyColumn
}

// IsEntityTable reports whether the table carries a natural name key and is
// therefore written with upsert semantics.
func IsEntityTable(table string) bool {
	return tables[table].naturalKey != ""
}
