// Package hierarchy expands inventory documents into the product hierarchy:
// categories and brands are reconciled against existing rows, and each item
// is fanned out into per-unit product rows with deterministic identifiers.
package hierarchy

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/repositories"
	"github.com/ledgermap/ledgermap-engine/pkg/transform"
)

const (
	defaultBatchSize  = 50
	existingIDChunk   = 200
	defaultItemStatus = "active"
)

// itemRow is one inventory document shaped for expansion.
type itemRow struct {
	sourceID     string
	name         string
	categoryName string
	brandName    string
	sku          string
	description  string
	costPrice    *float64
	sellingPrice *float64
	quantity     int
}

// Builder expands inventory collections into category, brand and per-unit
// product rows. Category and brand writes are fatal when they fail; unit
// batch failures are recorded and remaining batches continue.
type Builder struct {
	store     repositories.TargetStore
	batchSize int
	logger    *zap.Logger
}

func NewBuilder(store repositories.TargetStore, batchSize int, logger *zap.Logger) *Builder {
	if batchSize <= 0 {
		batchSize = defaultBatchSize
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Builder{store: store, batchSize: batchSize, logger: logger}
}

// Build runs the full expansion for one inventory collection.
func (b *Builder) Build(ctx context.Context, businessID, collectionID string, docs []map[string]any) (models.TableResult, error) {
	result := models.TableResult{Table: "product"}

	items := b.analyze(collectionID, docs)
	if len(items) == 0 {
		return result, nil
	}

	categoryIDs, err := b.reconcileCategories(ctx, businessID, items)
	if err != nil {
		return result, fmt.Errorf("failed to reconcile categories: %w", err)
	}

	brandIDs, err := b.reconcileBrands(ctx, businessID, items, categoryIDs)
	if err != nil {
		return result, fmt.Errorf("failed to reconcile brands: %w", err)
	}

	units, expandErrors := b.expandUnits(businessID, items, brandIDs)
	result.Transformed = len(units)
	result.Errors = append(result.Errors, expandErrors...)

	fresh, existing, err := b.filterExisting(ctx, businessID, units)
	if err != nil {
		// Idempotency lookup failing degrades to inserting everything;
		// duplicates surface as batch errors instead.
		b.logger.Warn("product id lookup failed, inserting all units",
			zap.String("collection_id", collectionID), zap.Error(err))
		result.Errors = append(result.Errors, fmt.Sprintf("product id lookup: %v", err))
		fresh = units
		existing = 0
	}
	result.Duplicates = existing
	result.Clean = len(fresh)

	for start := 0; start < len(fresh); start += b.batchSize {
		end := start + b.batchSize
		if end > len(fresh) {
			end = len(fresh)
		}
		n, err := b.store.InsertRows(ctx, "product", fresh[start:end])
		if err != nil {
			result.Errors = append(result.Errors, fmt.Sprintf("product batch %d-%d: %v", start, end, err))
			continue
		}
		result.Inserted += n
	}

	b.logger.Info("expanded inventory collection",
		zap.String("business_id", businessID),
		zap.String("collection_id", collectionID),
		zap.Int("items", len(items)),
		zap.Int("units", len(units)),
		zap.Int("inserted", result.Inserted),
		zap.Int("duplicates", result.Duplicates))

	return result, nil
}

// analyze shapes raw documents into itemRows, skipping documents with no
// recognizable product name.
func (b *Builder) analyze(collectionID string, docs []map[string]any) []itemRow {
	items := make([]itemRow, 0, len(docs))
	for i, doc := range docs {
		name, ok := lookupField(doc, productNameFields)
		if !ok {
			b.logger.Debug("inventory document has no product name, skipping",
				zap.String("collection_id", collectionID), zap.Int("index", i))
			continue
		}

		item := itemRow{
			sourceID:     sourceID(doc, collectionID, i),
			name:         name,
			quantity:     lookupQuantity(doc),
			costPrice:    lookupPrice(doc, costPriceFields),
			sellingPrice: lookupPrice(doc, sellingFields),
		}
		if item.sellingPrice == nil {
			item.sellingPrice = lookupPrice(doc, genericPriceFields)
		}

		if v, ok := lookupField(doc, categoryFields); ok {
			item.categoryName = v
		} else {
			item.categoryName = inferCategory(collectionID)
		}
		if v, ok := lookupField(doc, brandFields); ok {
			item.brandName = v
		} else {
			// No brand information: the item stands as its own brand.
			item.brandName = name
		}
		if v, ok := lookupField(doc, skuFields); ok {
			item.sku = v
		}
		if v, ok := lookupField(doc, descriptionFields); ok {
			item.description = v
		}

		items = append(items, item)
	}
	return items
}

// reconcileCategories ensures every referenced category exists and returns
// lowercased name -> category_id.
func (b *Builder) reconcileCategories(ctx context.Context, businessID string, items []itemRow) (map[string]any, error) {
	names := map[string]string{}
	for _, item := range items {
		names[strings.ToLower(item.categoryName)] = item.categoryName
	}

	rows := make(map[string]models.TransformedRecord, len(names))
	for key, display := range names {
		rows[key] = models.TransformedRecord{
			"business_id":   businessID,
			"category_name": display,
		}
	}
	return b.reconcile(ctx, businessID, "category", "category_name", "category_id", rows)
}

// reconcileBrands ensures every referenced brand exists, linked to its
// item's category, and returns lowercased name -> brand_id.
func (b *Builder) reconcileBrands(ctx context.Context, businessID string, items []itemRow, categoryIDs map[string]any) (map[string]any, error) {
	rows := map[string]models.TransformedRecord{}
	for _, item := range items {
		key := strings.ToLower(item.brandName)
		if _, seen := rows[key]; seen {
			continue
		}
		row := models.TransformedRecord{
			"business_id": businessID,
			"brand_name":  item.brandName,
		}
		if id, ok := categoryIDs[strings.ToLower(item.categoryName)]; ok {
			row["category_id"] = id
		}
		rows[key] = row
	}
	return b.reconcile(ctx, businessID, "brand", "brand_name", "brand_id", rows)
}

// reconcile fetches existing rows by name, inserts the missing ones, and
// re-fetches so every name resolves to a database-assigned identifier.
func (b *Builder) reconcile(ctx context.Context, businessID, table, nameColumn, idColumn string, rows map[string]models.TransformedRecord) (map[string]any, error) {
	names := make([]string, 0, len(rows))
	for _, row := range rows {
		names = append(names, fmt.Sprintf("%v", row[nameColumn]))
	}

	existing, err := b.store.SelectByColumn(ctx, table, nameColumn, businessID, names)
	if err != nil {
		return nil, fmt.Errorf("failed to look up existing %s rows: %w", table, err)
	}

	ids := make(map[string]any, len(rows))
	for _, row := range existing {
		name, _ := row[nameColumn].(string)
		ids[strings.ToLower(name)] = row[idColumn]
	}

	var missing []models.TransformedRecord
	for key, row := range rows {
		if _, ok := ids[key]; !ok {
			missing = append(missing, row)
		}
	}
	if len(missing) == 0 {
		return ids, nil
	}

	if _, err := b.store.InsertRows(ctx, table, missing); err != nil {
		return nil, fmt.Errorf("failed to insert %s rows: %w", table, err)
	}

	refreshed, err := b.store.SelectByColumn(ctx, table, nameColumn, businessID, names)
	if err != nil {
		return nil, fmt.Errorf("failed to re-read %s rows: %w", table, err)
	}
	for _, row := range refreshed {
		name, _ := row[nameColumn].(string)
		ids[strings.ToLower(name)] = row[idColumn]
	}
	return ids, nil
}

// expandUnits fans each item out into quantity-many product rows. Every unit
// carries a deterministic identifier derived from the source document, the
// item and brand names, and the unit index, so re-runs regenerate the same
// IDs instead of minting new rows.
func (b *Builder) expandUnits(businessID string, items []itemRow, brandIDs map[string]any) ([]models.TransformedRecord, []string) {
	var units []models.TransformedRecord
	var errors []string

	for _, item := range items {
		brandID, ok := brandIDs[strings.ToLower(item.brandName)]
		if !ok {
			errors = append(errors, fmt.Sprintf("no brand id resolved for item %q", item.name))
			continue
		}

		for unit := 0; unit < item.quantity; unit++ {
			row := models.TransformedRecord{
				"product_id":   transform.DeterministicID(item.sourceID, item.name, item.brandName, strconv.Itoa(unit)),
				"business_id":  businessID,
				"brand_id":     brandID,
				"product_name": item.name,
				"status":       defaultItemStatus,
			}
			if item.costPrice != nil {
				row["cost_price"] = *item.costPrice
			}
			if item.sellingPrice != nil {
				row["selling_price"] = *item.sellingPrice
			}
			if item.sku != "" {
				row["sku"] = item.sku
			}
			if item.description != "" {
				row["description"] = item.description
			}
			units = append(units, row)
		}
	}
	return units, errors
}

// filterExisting drops units whose product_id is already present, returning
// the fresh units and the count of duplicates skipped.
func (b *Builder) filterExisting(ctx context.Context, businessID string, units []models.TransformedRecord) ([]models.TransformedRecord, int, error) {
	if len(units) == 0 {
		return nil, 0, nil
	}

	ids := make([]string, 0, len(units))
	for _, u := range units {
		if id, ok := u.StringField("product_id"); ok {
			ids = append(ids, id)
		}
	}

	existing := map[string]bool{}
	for start := 0; start < len(ids); start += existingIDChunk {
		end := start + existingIDChunk
		if end > len(ids) {
			end = len(ids)
		}
		rows, err := b.store.SelectByColumn(ctx, "product", "product_id", businessID, ids[start:end])
		if err != nil {
			return nil, 0, err
		}
		for _, row := range rows {
			if id, ok := row["product_id"].(string); ok {
				existing[id] = true
			}
		}
	}

	if len(existing) == 0 {
		return units, 0, nil
	}

	fresh := make([]models.TransformedRecord, 0, len(units))
	for _, u := range units {
		if id, ok := u.StringField("product_id"); ok && existing[id] {
			continue
		}
		fresh = append(fresh, u)
	}
	return fresh, len(units) - len(fresh), nil
}

func sourceID(doc map[string]any, collectionID string, index int) string {
	for _, key := range []string{"_id", "id", "doc_id"} {
		if v, ok := doc[key]; ok && v != nil {
			if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
				return s
			}
		}
	}
	return fmt.Sprintf("%s:%d", collectionID, index)
}
