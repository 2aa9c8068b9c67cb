// Package writer persists validated records in bounded batches, choosing
// insert vs. update per record: upsert-by-natural-key for entity tables,
// straight insert for transactional tables.
package writer

import (
	"context"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
	"github.com/ledgermap/ledgermap-engine/pkg/repositories"
)

// DefaultBatchSize bounds how many rows one insert carries.
const DefaultBatchSize = 50

// BatchWriter writes one table's records at a time.
type BatchWriter struct {
	store     repositories.TargetStore
	batchSize int
	logger    *zap.Logger
}

// New creates a batch writer. batchSize rounds up to the default when
// non-positive.
func New(store repositories.TargetStore, batchSize int, logger *zap.Logger) *BatchWriter {
	if batchSize <= 0 {
		batchSize = DefaultBatchSize
	}
	return &BatchWriter{store: store, batchSize: batchSize, logger: logger.Named("writer")}
}

// Outcome reports what one Write call did. Errors are per batch or per
// record; a failed batch never stops subsequent batches.
type Outcome struct {
	Inserted int
	Updated  int
	Errors   []string
}

// Write persists records into table. For entity tables existing rows are
// fetched by natural key within the business scope, non-nil incoming fields
// are merged over matches, and only unmatched records are inserted.
func (w *BatchWriter) Write(ctx context.Context, table string, records []models.TransformedRecord) Outcome {
	var outcome Outcome
	if len(records) == 0 {
		return outcome
	}

	toInsert := records
	if catalog.IsEntityTable(table) {
		toInsert = w.upsertExisting(ctx, table, records, &outcome)
	}

	autoID := catalog.AutoIDColumn(table)
	for start := 0; start < len(toInsert); start += w.batchSize {
		end := start + w.batchSize
		if end > len(toInsert) {
			end = len(toInsert)
		}
		batch := stripColumn(toInsert[start:end], autoID)

		n, err := w.store.InsertRows(ctx, table, batch)
		if err != nil {
			w.logger.Warn("batch insert failed",
				zap.String("table", table),
				zap.Int("batch_start", start),
				zap.Int("batch_size", len(batch)),
				zap.Error(err))
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("batch %d-%d: %v", start, end, err))
			continue
		}
		outcome.Inserted += n
	}

	w.logger.Info("table written",
		zap.String("table", table),
		zap.Int("inserted", outcome.Inserted),
		zap.Int("updated", outcome.Updated),
		zap.Int("errors", len(outcome.Errors)))

	return outcome
}

// upsertExisting merges records whose natural key already exists in the
// store and returns the remainder for insertion.
func (w *BatchWriter) upsertExisting(ctx context.Context, table string, records []models.TransformedRecord, outcome *Outcome) []models.TransformedRecord {
	naturalKey := catalog.NaturalKey(table)
	businessID := records[0].BusinessID()

	var names []string
	for _, r := range records {
		if name, ok := r.StringField(naturalKey); ok {
			names = append(names, name)
		}
	}

	existing, err := w.store.SelectByColumn(ctx, table, naturalKey, businessID, names)
	if err != nil {
		// Degrade to insert-only; the store will surface real conflicts.
		w.logger.Warn("existing-row lookup failed, inserting all",
			zap.String("table", table), zap.Error(err))
		outcome.Errors = append(outcome.Errors, fmt.Sprintf("lookup existing: %v", err))
		return records
	}

	known := make(map[string]bool, len(existing))
	for _, row := range existing {
		if name, ok := row[naturalKey].(string); ok {
			known[strings.ToLower(strings.TrimSpace(name))] = true
		}
	}

	var toInsert []models.TransformedRecord
	for _, r := range records {
		name, _ := r.StringField(naturalKey)
		if !known[strings.ToLower(strings.TrimSpace(name))] {
			toInsert = append(toInsert, r)
			continue
		}
		if err := w.store.UpdateRow(ctx, table, r, naturalKey); err != nil {
			outcome.Errors = append(outcome.Errors, fmt.Sprintf("update %s=%q: %v", naturalKey, name, err))
			continue
		}
		outcome.Updated++
	}
	return toInsert
}

// stripColumn drops the auto-assigned surrogate key from insert payloads so
// the store assigns it.
func stripColumn(records []models.TransformedRecord, column string) []models.TransformedRecord {
	if column == "" {
		return records
	}
	out := make([]models.TransformedRecord, len(records))
	for i, r := range records {
		if _, has := r[column]; !has {
			out[i] = r
			continue
		}
		copied := make(models.TransformedRecord, len(r))
		for k, v := range r {
			if k != column {
				copied[k] = v
			}
		}
		out[i] = copied
	}
	return out
}
