// Package validate enforces per-table required-field rules and removes
// within-run duplicates by table-specific identity key.
package validate

import (
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// Validator screens transformed records before they reach the batch writer.
type Validator struct {
	logger *zap.Logger
}

// New creates a validator.
func New(logger *zap.Logger) *Validator {
	return &Validator{logger: logger.Named("validate")}
}

// Result reports what Clean kept and dropped.
type Result struct {
	Clean      []models.TransformedRecord
	Invalid    int
	Duplicates int
}

// Clean drops records missing the table's required natural/foreign key
// fields, then deduplicates on the table's identity tuple. The first
// occurrence wins; later duplicates are dropped silently but counted.
func (v *Validator) Clean(table string, records []models.TransformedRecord) Result {
	required := catalog.RequiredFields(table)
	dedupKey := catalog.DedupKey(table)

	var result Result
	seen := make(map[string]bool)

	for _, record := range records {
		if !hasRequired(record, required) {
			result.Invalid++
			continue
		}

		if len(dedupKey) > 0 {
			key := identityKey(record, dedupKey)
			if seen[key] {
				result.Duplicates++
				continue
			}
			seen[key] = true
		}

		result.Clean = append(result.Clean, record)
	}

	if result.Invalid > 0 || result.Duplicates > 0 {
		v.logger.Debug("records screened",
			zap.String("table", table),
			zap.Int("clean", len(result.Clean)),
			zap.Int("invalid", result.Invalid),
			zap.Int("duplicates", result.Duplicates))
	}

	return result
}

func hasRequired(record models.TransformedRecord, required []string) bool {
	for _, field := range required {
		v, ok := record[field]
		if !ok || v == nil {
			return false
		}
		if s, isStr := v.(string); isStr && strings.TrimSpace(s) == "" {
			return false
		}
	}
	return true
}

// identityKey renders the dedup tuple. Missing components render as empty so
// two records missing the same component still collide.
func identityKey(record models.TransformedRecord, dedupKey []string) string {
	parts := make([]string, len(dedupKey))
	for i, field := range dedupKey {
		if v, ok := record[field]; ok && v != nil {
			parts[i] = strings.ToLower(strings.TrimSpace(fmt.Sprintf("%v", v)))
		}
	}
	return strings.Join(parts, "\x1f")
}
