package classifier

import (
	"encoding/json"
	"fmt"

	"go.uber.org/zap"

	"github.com/ledgermap/ledgermap-engine/pkg/catalog"
	"github.com/ledgermap/ledgermap-engine/pkg/jsonutil"
	"github.com/ledgermap/ledgermap-engine/pkg/llm"
	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// rawResponse mirrors the JSON shape the completion service is asked for.
// The service is untrusted: every part is revalidated before use, and
// confidence and reasoning values tolerate being returned as the wrong
// JSON type.
type rawResponse struct {
	Tables []struct {
		TableName     string          `json:"table_name"`
		Confidence    json.RawMessage `json:"confidence"`
		Reasoning     json.RawMessage `json:"reasoning"`
		FieldMappings []struct {
			SourceField string          `json:"source_field"`
			TargetField string          `json:"target_field"`
			Confidence  json.RawMessage `json:"confidence"`
		} `json:"field_mappings"`
		Relationships []struct {
			RelatedTable string `json:"related_table"`
			Key          string `json:"key"`
		} `json:"relationships"`
	} `json:"tables"`
	UnmappedFields []struct {
		FieldName string          `json:"field_name"`
		Reason    json.RawMessage `json:"reason"`
	} `json:"unmapped_fields"`
}

// parseResponse strips code fences, extracts the first top-level JSON object
// and rejects responses without a tables array.
func parseResponse(raw string) (*rawResponse, error) {
	parsed, err := llm.ParseObject[rawResponse](raw)
	if err != nil {
		return nil, err
	}
	if parsed.Tables == nil {
		return nil, fmt.Errorf("response has no tables array")
	}
	return &parsed, nil
}

// validate enforces the catalog invariant on classifier output, regardless
// of which model produced it: unknown tables are discarded, field mappings
// onto non-existent columns are downgraded to unmapped fields, and tables
// left with zero valid mappings are dropped entirely.
func (c *Classifier) validate(raw *rawResponse, a *models.CollectionAnalysis) *models.MappingResult {
	result := &models.MappingResult{}

	for _, uf := range raw.UnmappedFields {
		if uf.FieldName == "" {
			continue
		}
		reason := jsonutil.FlexibleStringValue(uf.Reason)
		if reason == "" {
			reason = "unmapped by classifier"
		}
		result.UnmappedFields = append(result.UnmappedFields, models.UnmappedField{
			FieldName: uf.FieldName,
			Reason:    reason,
		})
	}

	for _, rt := range raw.Tables {
		if !catalog.HasTable(rt.TableName) {
			c.logger.Warn("discarding hallucinated table",
				zap.String("collection", a.CollectionID),
				zap.String("table", rt.TableName))
			for _, fm := range rt.FieldMappings {
				result.UnmappedFields = append(result.UnmappedFields, models.UnmappedField{
					FieldName: fm.SourceField,
					Reason:    fmt.Sprintf("non-existent table %q", rt.TableName),
				})
			}
			continue
		}

		tm := models.TableMapping{
			TableName:  rt.TableName,
			Confidence: jsonutil.FlexibleFloatValue(rt.Confidence),
			Reasoning:  jsonutil.FlexibleStringValue(rt.Reasoning),
		}

		for _, fm := range rt.FieldMappings {
			if fm.SourceField == "" || fm.TargetField == "" {
				continue
			}
			if !catalog.HasColumn(rt.TableName, fm.TargetField) {
				c.logger.Warn("discarding hallucinated column",
					zap.String("collection", a.CollectionID),
					zap.String("table", rt.TableName),
					zap.String("column", fm.TargetField))
				result.UnmappedFields = append(result.UnmappedFields, models.UnmappedField{
					FieldName: fm.SourceField,
					Reason:    fmt.Sprintf("non-existent column %q in table %q", fm.TargetField, rt.TableName),
				})
				continue
			}
			if catalog.IsReservedColumn(fm.TargetField) {
				c.logger.Warn("discarding mapping onto reserved column",
					zap.String("collection", a.CollectionID),
					zap.String("table", rt.TableName),
					zap.String("column", fm.TargetField))
				result.UnmappedFields = append(result.UnmappedFields, models.UnmappedField{
					FieldName: fm.SourceField,
					Reason:    fmt.Sprintf("column %q is assigned by the engine", fm.TargetField),
				})
				continue
			}
			tm.FieldMappings = append(tm.FieldMappings, models.FieldMapping{
				SourceField: fm.SourceField,
				TargetField: fm.TargetField,
				Confidence:  jsonutil.FlexibleFloatValue(fm.Confidence),
				Method:      models.MappingMethodLLM,
			})
		}

		if len(tm.FieldMappings) == 0 {
			continue
		}

		for _, rel := range rt.Relationships {
			if catalog.HasTable(rel.RelatedTable) {
				tm.Relationships = append(tm.Relationships, models.Relationship{
					RelatedTable: rel.RelatedTable,
					Key:          rel.Key,
				})
			}
		}

		result.Tables = append(result.Tables, tm)
	}

	return result
}
