package rules

// DetectionRule scores one target table against an analyzed collection.
// Required and Optional reference semantic subtypes produced by the analyzer;
// Keywords are matched against the collection identifier and field names
// after singularization.
type DetectionRule struct {
	Table    string
	Required []string
	Optional []string
	Keywords []string
}

// Scoring weights per table-detection rule.
const (
	scoreRequiredPresent  = 10
	scoreRequiredMissing  = -5
	scoreOptionalPresent  = 3
	scoreCollectionKeyword = 5
	scoreFieldKeyword      = 2
)

// detectionRules is the full rule library, one entry per detectable table.
// Line-item and investment tables are reached through relationships rather
// than direct detection, so they carry no rules.
var detectionRules = []DetectionRule{
	{
		Table:    "product",
		Required: []string{"product_name", "stock_quantity"},
		Optional: []string{"cost_price", "selling_price", "sku", "brand", "category"},
		Keywords: []string{"product", "inventory", "stock", "item", "goods"},
	},
	{
		Table:    "supplier",
		Required: []string{"supplier_name"},
		Optional: []string{"contact", "email", "phone", "address"},
		Keywords: []string{"supplier", "vendor", "wholesaler"},
	},
	{
		Table:    "customer",
		Required: []string{"customer_name"},
		Optional: []string{"email", "phone", "address"},
		Keywords: []string{"customer", "client", "buyer"},
	},
	{
		Table:    "sales_order",
		Required: []string{"order_date", "total_amount"},
		Optional: []string{"customer_name", "status", "order_ref"},
		Keywords: []string{"sale", "order", "invoice", "revenue"},
	},
	{
		Table:    "purchase_order",
		Required: []string{"order_date", "supplier_name"},
		Optional: []string{"total_amount", "status", "order_ref"},
		Keywords: []string{"purchase", "procurement", "po"},
	},
	{
		Table:    "investor",
		Required: []string{"investor_name"},
		Optional: []string{"investment_amount", "investment_date", "ownership", "email", "phone"},
		Keywords: []string{"investor", "shareholder", "equity"},
	},
	{
		Table:    "expense",
		Required: []string{"amount"},
		Optional: []string{"expense_category", "date", "description"},
		Keywords: []string{"expense", "cost", "spending"},
	},
	{
		Table:    "category",
		Required: []string{"category"},
		Optional: []string{"description"},
		Keywords: []string{"category", "categories"},
	},
	{
		Table:    "brand",
		Required: []string{"brand"},
		Optional: []string{"category", "description"},
		Keywords: []string{"brand"},
	},
}

// semanticColumns maps, per target table, an analyzer subtype to the catalog
// column it fills. Consulted after exact-name matching fails.
var semanticColumns = map[string]map[string]string{
	"product": {
		"product_name":  "product_name",
		"cost_price":    "cost_price",
		"selling_price": "selling_price",
		"sku":           "sku",
		"description":   "description",
		"status":        "status",
	},
	"supplier": {
		"supplier_name": "supplier_name",
		"contact":       "contact_person",
		"email":         "email",
		"phone":         "phone",
		"address":       "address",
		"name":          "supplier_name",
	},
	"customer": {
		"customer_name": "customer_name",
		"email":         "email",
		"phone":         "phone",
		"address":       "address",
		"name":          "customer_name",
	},
	"investor": {
		"investor_name":     "investor_name",
		"investment_amount": "investment_amount",
		"investment_date":   "investment_date",
		"ownership":         "ownership_percentage",
		"contact":           "contact_person",
		"email":             "email",
		"phone":             "phone",
		"name":              "investor_name",
	},
	"sales_order": {
		"order_date":   "order_date",
		"total_amount": "total_amount",
		"status":       "status",
		"date":         "order_date",
	},
	"purchase_order": {
		"order_date":   "order_date",
		"total_amount": "total_amount",
		"status":       "status",
		"date":         "order_date",
	},
	"expense": {
		"amount":           "amount",
		"expense_category": "expense_category",
		"date":             "expense_date",
		"description":      "description",
	},
	"category": {
		"category":    "category_name",
		"description": "description",
		"name":        "category_name",
	},
	"brand": {
		"brand":       "brand_name",
		"description": "description",
		"name":        "brand_name",
	},
}

// columnKeywords are last-resort heuristics: if a normalized field name
// contains the keyword and the table has the column, the field maps to it.
type columnKeyword struct {
	keyword string
	column  string
}

var columnKeywords = []columnKeyword{
	{"date", "order_date"},
	{"date", "expense_date"},
	{"date", "investment_date"},
	{"total", "total_amount"},
	{"amount", "total_amount"},
	{"amount", "amount"},
	{"qty", "quantity"},
	{"quantity", "quantity"},
	{"status", "status"},
	{"address", "address"},
	{"desc", "description"},
	{"note", "description"},
}
