package analyzer

// fieldAlias maps a normalized field-name variant to a semantic
// {category, subtype} pair. Matching is longest-variant-first so that
// "purchase price" beats "price".
type fieldAlias struct {
	variant  string
	category string
	subtype  string
}

// Semantic categories correspond to the business concepts the source sheets
// describe. Variants cover the spellings seen in real uploads, including a
// handful of Bengali headers.
var fieldAliases = []fieldAlias{
	// inventory
	{"product_name", "inventory", "product_name"},
	{"item_name", "inventory", "product_name"},
	{"item", "inventory", "product_name"},
	{"product", "inventory", "product_name"},
	{"goods", "inventory", "product_name"},
	{"পণ্যের_নাম", "inventory", "product_name"},
	{"পণ্য", "inventory", "product_name"},
	{"stock_quantity", "inventory", "stock_quantity"},
	{"stock", "inventory", "stock_quantity"},
	{"quantity", "inventory", "stock_quantity"},
	{"qty", "inventory", "stock_quantity"},
	{"units", "inventory", "stock_quantity"},
	{"পরিমাণ", "inventory", "stock_quantity"},
	{"purchase_price", "inventory", "cost_price"},
	{"buying_price", "inventory", "cost_price"},
	{"cost_price", "inventory", "cost_price"},
	{"unit_cost", "inventory", "cost_price"},
	{"ক্রয়_মূল্য", "inventory", "cost_price"},
	{"selling_price", "inventory", "selling_price"},
	{"sale_price", "inventory", "selling_price"},
	{"retail_price", "inventory", "selling_price"},
	{"mrp", "inventory", "selling_price"},
	{"বিক্রয়_মূল্য", "inventory", "selling_price"},
	{"price", "inventory", "selling_price"},
	{"sku", "inventory", "sku"},
	{"barcode", "inventory", "sku"},
	{"item_code", "inventory", "sku"},
	{"brand_name", "inventory", "brand"},
	{"brand", "inventory", "brand"},
	{"company", "inventory", "brand"},
	{"category_name", "inventory", "category"},
	{"category", "inventory", "category"},
	{"type", "inventory", "category"},

	// vendor / supplier
	{"supplier_name", "vendor", "supplier_name"},
	{"supplier", "vendor", "supplier_name"},
	{"vendor_name", "vendor", "supplier_name"},
	{"vendor", "vendor", "supplier_name"},
	{"সরবরাহকারী", "vendor", "supplier_name"},
	{"contact_person", "vendor", "contact"},
	{"contact_name", "vendor", "contact"},
	{"contact", "vendor", "contact"},

	// customer
	{"customer_name", "customer", "customer_name"},
	{"customer", "customer", "customer_name"},
	{"client_name", "customer", "customer_name"},
	{"client", "customer", "customer_name"},
	{"buyer", "customer", "customer_name"},
	{"ক্রেতা", "customer", "customer_name"},

	// investor
	{"investor_name", "investor", "investor_name"},
	{"investor", "investor", "investor_name"},
	{"shareholder", "investor", "investor_name"},
	{"investment_amount", "investor", "investment_amount"},
	{"invested_amount", "investor", "investment_amount"},
	{"capital", "investor", "investment_amount"},
	{"investment_date", "investor", "investment_date"},
	{"ownership", "investor", "ownership"},
	{"share", "investor", "ownership"},
	{"equity", "investor", "ownership"},

	// purchase order
	{"purchase_date", "purchase_order", "order_date"},
	{"po_date", "purchase_order", "order_date"},
	{"purchase_order", "purchase_order", "order_ref"},
	{"po_number", "purchase_order", "order_ref"},

	// sales order
	{"sale_date", "sales_order", "order_date"},
	{"sold_date", "sales_order", "order_date"},
	{"order_date", "sales_order", "order_date"},
	{"invoice_date", "sales_order", "order_date"},
	{"invoice_no", "sales_order", "order_ref"},
	{"order_no", "sales_order", "order_ref"},
	{"total_amount", "sales_order", "total_amount"},
	{"grand_total", "sales_order", "total_amount"},
	{"total", "sales_order", "total_amount"},
	{"মোট", "sales_order", "total_amount"},

	// shared contact details
	{"email_address", "contact", "email"},
	{"e_mail", "contact", "email"},
	{"email", "contact", "email"},
	{"mail", "contact", "email"},
	{"phone_number", "contact", "phone"},
	{"mobile_number", "contact", "phone"},
	{"phone", "contact", "phone"},
	{"mobile", "contact", "phone"},
	{"cell", "contact", "phone"},
	{"ফোন", "contact", "phone"},
	{"address", "contact", "address"},
	{"location", "contact", "address"},
	{"ঠিকানা", "contact", "address"},

	// finance misc
	{"expense_category", "expense", "expense_category"},
	{"expense", "expense", "expense_category"},
	{"amount", "expense", "amount"},
	{"cost", "expense", "amount"},
	{"খরচ", "expense", "amount"},
	{"date", "generic", "date"},
	{"তারিখ", "generic", "date"},
	{"status", "generic", "status"},
	{"description", "generic", "description"},
	{"notes", "generic", "description"},
	{"remarks", "generic", "description"},
	{"name", "generic", "name"},
	{"নাম", "generic", "name"},
}

// financeKeywords flag a field as finance-related by containment against the
// normalized name.
var financeKeywords = []string{
	"amount", "price", "cost", "total", "revenue", "profit", "investment",
	"capital", "expense", "payment", "paid", "due", "balance", "মূল্য", "টাকা",
}
