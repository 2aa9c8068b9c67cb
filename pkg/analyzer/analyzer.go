// Package analyzer inspects a sample of a source collection and infers, per
// distinct field name, a normalized name, a semantic {category, subtype} pair
// and a primitive type. Output is deterministic for a given sample.
package analyzer

import (
	"fmt"
	"regexp"
	"sort"
	"strings"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// MaxSampleDocuments bounds how many documents are inspected per collection.
const MaxSampleDocuments = 5

// maxSampleValues bounds how many example values are kept per field.
const maxSampleValues = 5

// internalFields are ingestion bookkeeping fields that never map to target
// columns.
var internalFields = map[string]bool{
	"_id":         true,
	"business_id": true,
	"uploaded_at": true,
	"source_file": true,
	"row_number":  true,
}

var nonWordRuns = regexp.MustCompile(`[\s\p{P}\p{S}]+`)

// Analyzer produces CollectionAnalysis values from raw sample documents.
type Analyzer struct {
	logger *zap.Logger
}

// New creates a field analyzer.
func New(logger *zap.Logger) *Analyzer {
	return &Analyzer{logger: logger.Named("analyzer")}
}

// Analyze inspects up to MaxSampleDocuments of docs and describes every
// distinct non-internal field. Fields are returned in first-seen order across
// documents, which is stable for a fixed sample.
func (a *Analyzer) Analyze(collectionID string, docs []map[string]any, documentCount int64) *models.CollectionAnalysis {
	if len(docs) > MaxSampleDocuments {
		docs = docs[:MaxSampleDocuments]
	}

	var order []string
	samples := make(map[string][]string)
	for _, doc := range docs {
		keys := make([]string, 0, len(doc))
		for k := range doc {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		for _, k := range keys {
			if internalFields[k] {
				continue
			}
			if _, seen := samples[k]; !seen {
				order = append(order, k)
				samples[k] = nil
			}
			if v := doc[k]; v != nil && len(samples[k]) < maxSampleValues {
				if s := strings.TrimSpace(fmt.Sprintf("%v", v)); s != "" {
					samples[k] = append(samples[k], s)
				}
			}
		}
	}

	fields := make([]models.FieldDescriptor, 0, len(order))
	for _, name := range order {
		fields = append(fields, a.describeField(name, samples[name]))
	}

	a.logger.Debug("collection analyzed",
		zap.String("collection", collectionID),
		zap.Int("fields", len(fields)),
		zap.Int("sample_size", len(docs)))

	return &models.CollectionAnalysis{
		CollectionID:    collectionID,
		DocumentCount:   documentCount,
		SampleSize:      len(docs),
		Fields:          fields,
		SampleDocuments: docs,
	}
}

func (a *Analyzer) describeField(name string, sampleValues []string) models.FieldDescriptor {
	normalized := NormalizeFieldName(name)
	category, subtype := classifySemantic(normalized)

	return models.FieldDescriptor{
		Name:             name,
		NormalizedName:   normalized,
		SemanticCategory: category,
		SemanticSubtype:  subtype,
		InferredType:     InferType(sampleValues),
		SampleValues:     sampleValues,
		IsFinanceRelated: isFinanceRelated(normalized),
	}
}

// NormalizeFieldName lowercases, trims and collapses whitespace/punctuation
// runs to single underscores.
func NormalizeFieldName(name string) string {
	n := strings.ToLower(strings.TrimSpace(name))
	n = nonWordRuns.ReplaceAllString(n, "_")
	return strings.Trim(n, "_")
}

// classifySemantic resolves a normalized field name against the alias table,
// preferring the longest matching variant. Exact match beats containment.
func classifySemantic(normalized string) (category, subtype string) {
	bestLen := 0
	for _, alias := range fieldAliases {
		if alias.variant == normalized {
			return alias.category, alias.subtype
		}
		if strings.Contains(normalized, alias.variant) && len(alias.variant) > bestLen {
			bestLen = len(alias.variant)
			category, subtype = alias.category, alias.subtype
		}
	}
	return category, subtype
}

func isFinanceRelated(normalized string) bool {
	for _, kw := range financeKeywords {
		if strings.Contains(normalized, kw) {
			return true
		}
	}
	return false
}
