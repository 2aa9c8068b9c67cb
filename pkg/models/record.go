package models

// TransformedRecord is a column→value map scoped to one target table.
// It always carries the owning business identifier under "business_id".
type TransformedRecord map[string]any

// BusinessID returns the owning business identifier, if set.
func (r TransformedRecord) BusinessID() string {
	if v, ok := r["business_id"].(string); ok {
		return v
	}
	return ""
}

// StringField returns the named field as a trimmed-nothing string, if present
// and string-typed.
func (r TransformedRecord) StringField(name string) (string, bool) {
	v, ok := r[name]
	if !ok || v == nil {
		return "", false
	}
	s, ok := v.(string)
	return s, ok && s != ""
}
