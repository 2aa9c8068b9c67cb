// Package rules is the deterministic table-detection and field-mapping
// engine. It serves as the offline fallback for the LLM classifier and must
// produce identical output for identical input.
package rules

import (
	"sort"
	"strings"

	"github.com/jinzhu/inflection"
	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/analyzer"
	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

const similarityThreshold = 0.6

// Engine scores collections against the detection rule library and maps
// fields onto catalog columns.
type Engine struct {
	logger *zap.Logger
}

// New creates a rule engine.
func New(logger *zap.Logger) *Engine {
	return &Engine{logger: logger.Named("rules")}
}

// Detection is the table-selection outcome for one collection.
type Detection struct {
	Table      string
	Score      int
	Confidence float64
}

// DetectTable scores every detection rule and selects the winner. Ties break
// by fixed catalog priority. A non-positive best score still yields a result,
// defaulting to the product table, so downstream always has something to map
// against.
func (e *Engine) DetectTable(a *models.CollectionAnalysis) Detection {
	subtypes := make(map[string]bool)
	var fieldTokens []string
	for _, f := range a.Fields {
		if f.SemanticSubtype != "" {
			subtypes[f.SemanticSubtype] = true
		}
		fieldTokens = append(fieldTokens, singularTokens(f.NormalizedName)...)
	}
	collectionTokens := singularTokens(analyzer.NormalizeFieldName(a.CollectionID))

	best := Detection{Table: "product", Score: -1 << 20}
	for _, rule := range detectionRules {
		score := 0
		for _, req := range rule.Required {
			if subtypes[req] {
				score += scoreRequiredPresent
			} else {
				score += scoreRequiredMissing
			}
		}
		for _, opt := range rule.Optional {
			if subtypes[opt] {
				score += scoreOptionalPresent
			}
		}
		for _, kw := range rule.Keywords {
			if containsToken(collectionTokens, kw) {
				score += scoreCollectionKeyword
			}
			if containsToken(fieldTokens, kw) {
				score += scoreFieldKeyword
			}
		}

		if score > best.Score ||
			(score == best.Score && catalog.Priority(rule.Table) < catalog.Priority(best.Table)) {
			best = Detection{Table: rule.Table, Score: score}
		}
	}

	if best.Score <= 0 {
		best.Table = "product"
	}
	best.Confidence = clampConfidence(float64(best.Score) / 30)

	e.logger.Debug("table detected",
		zap.String("collection", a.CollectionID),
		zap.String("table", best.Table),
		zap.Int("score", best.Score),
		zap.Float64("confidence", best.Confidence))

	return best
}

// MapFields resolves each analyzed field to a column of table, in priority
// order: exact normalized match, per-table semantic lookup, edit-distance
// similarity, keyword heuristics. Unresolved fields are returned with up to
// three similarity-ranked suggestions.
func (e *Engine) MapFields(a *models.CollectionAnalysis, table string) ([]models.FieldMapping, []models.UnmappedField) {
	columns := catalog.Columns(table)
	semantics := semanticColumns[table]
	taken := make(map[string]bool)

	var mapped []models.FieldMapping
	var unmapped []models.UnmappedField

	for _, f := range a.Fields {
		column, confidence := resolveColumn(f, table, columns, semantics, taken)
		if column == "" {
			unmapped = append(unmapped, models.UnmappedField{
				FieldName:   f.Name,
				Reason:      "no matching column",
				Suggestions: suggestColumns(f.NormalizedName, columns),
			})
			continue
		}
		taken[column] = true
		mapped = append(mapped, models.FieldMapping{
			SourceField: f.Name,
			TargetField: column,
			Confidence:  confidence,
			Method:      models.MappingMethodRule,
		})
	}

	return mapped, unmapped
}

// Classify produces a complete rule-based mapping result for a collection.
func (e *Engine) Classify(a *models.CollectionAnalysis) *models.MappingResult {
	detection := e.DetectTable(a)
	mapped, unmapped := e.MapFields(a, detection.Table)

	result := &models.MappingResult{UnmappedFields: unmapped}
	if len(mapped) > 0 {
		result.Tables = []models.TableMapping{{
			TableName:     detection.Table,
			Confidence:    detection.Confidence,
			FieldMappings: mapped,
			Relationships: tableRelationships(detection.Table),
		}}
	}
	return result
}

func resolveColumn(f models.FieldDescriptor, table string, columns []string, semantics map[string]string, taken map[string]bool) (string, float64) {
	// 1. Exact normalized name match.
	for _, c := range columns {
		if c == f.NormalizedName && !taken[c] && !catalog.IsReservedColumn(c) {
			return c, 0.95
		}
	}

	// 2. Semantic subtype lookup for this table.
	if f.SemanticSubtype != "" {
		if c, ok := semantics[f.SemanticSubtype]; ok && !taken[c] {
			return c, 0.85
		}
	}

	// 3. Edit-distance similarity against catalog columns.
	bestCol, bestSim := "", 0.0
	for _, c := range columns {
		if taken[c] || catalog.IsReservedColumn(c) {
			continue
		}
		if sim := Similarity(f.NormalizedName, c); sim > bestSim {
			bestCol, bestSim = c, sim
		}
	}
	if bestSim >= similarityThreshold {
		return bestCol, bestSim * 0.8
	}

	// 4. Keyword-to-column heuristics.
	for _, kw := range columnKeywords {
		if strings.Contains(f.NormalizedName, kw.keyword) && catalog.HasColumn(table, kw.column) && !taken[kw.column] {
			return kw.column, 0.5
		}
	}

	return "", 0
}

func suggestColumns(normalized string, columns []string) []string {
	type ranked struct {
		column string
		sim    float64
	}
	var candidates []ranked
	for _, c := range columns {
		if catalog.IsReservedColumn(c) {
			continue
		}
		candidates = append(candidates, ranked{c, Similarity(normalized, c)})
	}
	sort.SliceStable(candidates, func(i, j int) bool { return candidates[i].sim > candidates[j].sim })

	var out []string
	for _, c := range candidates {
		if len(out) == 3 || c.sim == 0 {
			break
		}
		out = append(out, c.column)
	}
	return out
}

// tableRelationships declares the foreign-key edges a mapped table implies.
func tableRelationships(table string) []models.Relationship {
	switch table {
	case "product":
		return []models.Relationship{
			{RelatedTable: "brand", Key: "brand_id"},
			{RelatedTable: "supplier", Key: "supplier_id"},
		}
	case "brand":
		return []models.Relationship{{RelatedTable: "category", Key: "category_id"}}
	case "sales_order":
		return []models.Relationship{{RelatedTable: "customer", Key: "customer_id"}}
	case "purchase_order":
		return []models.Relationship{{RelatedTable: "supplier", Key: "supplier_id"}}
	case "investment":
		return []models.Relationship{{RelatedTable: "investor", Key: "investor_id"}}
	default:
		return nil
	}
}

func clampConfidence(v float64) float64 {
	if v < 0.4 {
		return 0.4
	}
	if v > 0.95 {
		return 0.95
	}
	return v
}

func singularTokens(normalized string) []string {
	parts := strings.Split(normalized, "_")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p == "" {
			continue
		}
		out = append(out, inflection.Singular(p))
	}
	return out
}

func containsToken(tokens []string, keyword string) bool {
	keyword = inflection.Singular(keyword)
	for _, t := range tokens {
		if t == keyword {
			return true
		}
	}
	return false
}
