package analyzer

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

func TestInferType(t *testing.T) {
	tests := []struct {
		name    string
		samples []string
		want    models.FieldType
	}{
		{"dates", []string{"2024-01-15", "2024-02-20"}, models.FieldTypeDate},
		{"slash dates", []string{"15/01/2024", "20/02/2024"}, models.FieldTypeDate},
		{"plain numbers", []string{"10", "25.5"}, models.FieldTypeNumber},
		{"currency numbers", []string{"1,299.50 ৳", "৳ 500"}, models.FieldTypeNumber},
		{"emails", []string{"a@b.com", "c@d.org"}, models.FieldTypeEmail},
		{"phones", []string{"01711-223344", "+8801911223344"}, models.FieldTypePhone},
		{"text", []string{"Atlas Pen", "Blue Notebook"}, models.FieldTypeText},
		{"majority wins", []string{"2024-01-15", "not a date", "2024-02-01"}, models.FieldTypeDate},
		{"empty samples", nil, models.FieldTypeText},
		{"blank samples", []string{"", "  "}, models.FieldTypeText},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, InferType(tt.samples))
		})
	}
}

func TestIsPhoneValue_RequiresSevenDigits(t *testing.T) {
	assert.False(t, IsPhoneValue("123-456"))
	assert.True(t, IsPhoneValue("123-4567"))
	assert.True(t, IsPhoneValue("+880 1711 223344"))
	assert.False(t, IsPhoneValue("hello"))
}

func TestParseDate(t *testing.T) {
	for _, v := range []string{"2024-03-01", "01/03/2024", "Mar 1, 2024", "1 Mar 2024"} {
		_, ok := ParseDate(v)
		assert.True(t, ok, "expected %q to parse", v)
	}
	_, ok := ParseDate("yesterday")
	assert.False(t, ok)
}
