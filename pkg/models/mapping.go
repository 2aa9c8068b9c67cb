package models

// MappingMethod records which component produced a field mapping.
type MappingMethod string

const (
	MappingMethodLLM  MappingMethod = "llm"
	MappingMethodRule MappingMethod = "rule"
)

// TransformKind names the coercion applied when a mapped value is transformed.
type TransformKind string

const (
	TransformID       TransformKind = "id"
	TransformCurrency TransformKind = "currency"
	TransformDate     TransformKind = "date"
	TransformEmail    TransformKind = "email"
	TransformPhone    TransformKind = "phone"
	TransformText     TransformKind = "text"
)

// FieldMapping maps one source field onto a target column.
type FieldMapping struct {
	SourceField string        `json:"source_field"`
	TargetField string        `json:"target_field"`
	Confidence  float64       `json:"confidence"`
	Transform   TransformKind `json:"transform,omitempty"`
	Method      MappingMethod `json:"method"`
}

// Relationship points from a mapped table to a related table via a key column.
type Relationship struct {
	RelatedTable string `json:"related_table"`
	Key          string `json:"key"`
}

// TableMapping is the resolved mapping of a collection onto one target table.
// Post-validation it is guaranteed that TableName is a catalog table and every
// FieldMapping.TargetField is an allowed column of that table.
type TableMapping struct {
	TableName     string         `json:"table_name"`
	Confidence    float64        `json:"confidence"`
	Reasoning     string         `json:"reasoning,omitempty"`
	FieldMappings []FieldMapping `json:"field_mappings"`
	Relationships []Relationship `json:"relationships,omitempty"`
}

// UnmappedField records a source field that could not be mapped, with a reason
// and up to three similarity-ranked column suggestions.
type UnmappedField struct {
	FieldName   string   `json:"field_name"`
	Reason      string   `json:"reason"`
	Suggestions []string `json:"suggestions,omitempty"`
}

// MappingResult is the full classification outcome for one collection.
// Tables only contains entries with at least one valid field mapping.
type MappingResult struct {
	Tables         []TableMapping  `json:"tables"`
	UnmappedFields []UnmappedField `json:"unmapped_fields,omitempty"`
}

// Table returns the mapping for the named table, or nil.
func (r *MappingResult) Table(name string) *TableMapping {
	for i := range r.Tables {
		if r.Tables[i].TableName == name {
			return &r.Tables[i]
		}
	}
	return nil
}
