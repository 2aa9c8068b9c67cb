// Package transform applies a resolved table mapping to source documents,
// coercing values by target-column heuristics and synthesizing contact
// fields for contact-bearing entity tables.
package transform

import (
	"fmt"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/analyzer"
	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// contactTables get the secondary shape-based contact enhancement pass.
var contactTables = map[string]bool{
	"supplier": true,
	"investor": true,
}

// Transformer turns raw documents into records for one target table.
type Transformer struct {
	logger *zap.Logger
}

// New creates a document transformer.
func New(logger *zap.Logger) *Transformer {
	return &Transformer{logger: logger.Named("transform")}
}

// Transform applies tm to doc. The second return is false when the document
// yields no usable record: after mapping it lacks the table's natural-key
// field, or carries nothing beyond the business identifier.
func (t *Transformer) Transform(doc map[string]any, tm *models.TableMapping, businessID string) (models.TransformedRecord, bool) {
	record := models.TransformedRecord{catalog.BusinessIDColumn: businessID}

	consumed := make(map[string]bool)
	for _, fm := range tm.FieldMappings {
		// business_id and engine-assigned key columns are never taken from
		// source data, whatever the mapping claims.
		if catalog.IsReservedColumn(fm.TargetField) {
			continue
		}
		raw, ok := doc[fm.SourceField]
		if !ok || raw == nil {
			continue
		}
		value := strings.TrimSpace(fmt.Sprintf("%v", raw))
		if value == "" {
			continue
		}
		consumed[fm.SourceField] = true
		if coerced := CoerceValue(fm.TargetField, value); coerced != nil {
			record[fm.TargetField] = coerced
		}
	}

	if contactTables[tm.TableName] {
		t.enhanceContactFields(doc, consumed, record)
	}

	if naturalKey := catalog.NaturalKey(tm.TableName); naturalKey != "" {
		if _, ok := record.StringField(naturalKey); !ok {
			return nil, false
		}
	}
	if len(record) <= 1 {
		// only the business identifier
		return nil, false
	}

	return record, true
}

// KindFor reports which coercion a target column receives.
func KindFor(column string) models.TransformKind {
	switch {
	case column == catalog.ProductKeyColumn:
		// the only key column that stores text; every other *_id column is an
		// integer the target database assigns
		return models.TransformID
	case isCurrencyColumn(column):
		return models.TransformCurrency
	case strings.Contains(column, "date"):
		return models.TransformDate
	case strings.Contains(column, "email"):
		return models.TransformEmail
	case strings.Contains(column, "phone"):
		return models.TransformPhone
	default:
		return models.TransformText
	}
}

// CoerceValue applies the column's coercion to a non-empty value. Uncoercible
// currency and date values become nil rather than errors; coercion never
// panics.
func CoerceValue(column, value string) any {
	switch KindFor(column) {
	case models.TransformID:
		return DeterministicID(value)
	case models.TransformCurrency:
		if v, ok := ParseCurrency(value); ok {
			return v
		}
		return nil
	case models.TransformDate:
		if v, ok := NormalizeDate(value); ok {
			return v
		}
		return nil
	case models.TransformEmail:
		return strings.ToLower(value)
	case models.TransformPhone:
		return NormalizePhone(value)
	default:
		return value
	}
}

// enhanceContactFields scans raw fields the mapping did not consume for an
// email-shaped value, a phone-shaped value, and otherwise a contact-person
// name. Ambiguity is resolved by value shape, not field name.
func (t *Transformer) enhanceContactFields(doc map[string]any, consumed map[string]bool, record models.TransformedRecord) {
	// Sorted iteration keeps the outcome stable when two fields carry the
	// same value shape.
	fields := make([]string, 0, len(doc))
	for field := range doc {
		fields = append(fields, field)
	}
	sort.Strings(fields)

	for _, field := range fields {
		raw := doc[field]
		if consumed[field] || raw == nil {
			continue
		}
		value := strings.TrimSpace(fmt.Sprintf("%v", raw))
		if value == "" {
			continue
		}

		switch {
		case analyzer.IsEmailValue(value):
			if _, ok := record.StringField("email"); !ok {
				record["email"] = strings.ToLower(value)
			}
		case analyzer.IsPhoneValue(value):
			if _, ok := record.StringField("phone"); !ok {
				record["phone"] = NormalizePhone(value)
			}
		case looksLikePersonName(field, value):
			if _, ok := record.StringField("contact_person"); !ok {
				record["contact_person"] = value
			}
		}
	}
}

// looksLikePersonName accepts short text values from contact-ish fields.
func looksLikePersonName(field, value string) bool {
	normalized := analyzer.NormalizeFieldName(field)
	if !strings.Contains(normalized, "contact") && !strings.Contains(normalized, "person") &&
		!strings.Contains(normalized, "owner") && !strings.Contains(normalized, "name") {
		return false
	}
	return len(value) <= 80 && !analyzer.IsNumericValue(value) && !analyzer.IsDateValue(value)
}
