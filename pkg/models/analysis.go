// Package models defines the core domain types shared across the migration engine.
package models

// FieldType is the primitive type inferred for a source field from its sample values.
type FieldType string

const (
	FieldTypeDate   FieldType = "date"
	FieldTypeNumber FieldType = "number"
	FieldTypeEmail  FieldType = "email"
	FieldTypePhone  FieldType = "phone"
	FieldTypeText   FieldType = "text"
)

// FieldDescriptor describes one distinct field name observed in a collection sample.
// Immutable after analysis.
type FieldDescriptor struct {
	Name             string    `json:"name"`
	NormalizedName   string    `json:"normalized_name"`
	SemanticCategory string    `json:"semantic_category,omitempty"`
	SemanticSubtype  string    `json:"semantic_subtype,omitempty"`
	InferredType     FieldType `json:"inferred_type"`
	SampleValues     []string  `json:"sample_values,omitempty"` // at most 5
	IsFinanceRelated bool      `json:"is_finance_related"`
}

// CollectionAnalysis is the result of sampling a source collection.
// It is transient: owned by a single pipeline run and never persisted.
type CollectionAnalysis struct {
	CollectionID    string            `json:"collection_id"`
	DocumentCount   int64             `json:"document_count"`
	SampleSize      int               `json:"sample_size"`
	Fields          []FieldDescriptor `json:"fields"`
	SampleDocuments []map[string]any  `json:"sample_documents,omitempty"`
}

// Field returns the descriptor for the given original field name, or nil.
func (a *CollectionAnalysis) Field(name string) *FieldDescriptor {
	for i := range a.Fields {
		if a.Fields[i].Name == name {
			return &a.Fields[i]
		}
	}
	return nil
}
