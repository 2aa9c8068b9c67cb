package analyzer

import (
	"regexp"
	"strings"
	"time"

	"github.com/ledgermap/ledgermap-engine/pkg/models"
)

// dateLayouts are tried in order when probing a value for a date.
var dateLayouts = []string{
	"2006-01-02",
	"2006-01-02T15:04:05Z07:00",
	"2006-01-02 15:04:05",
	"02/01/2006",
	"01/02/2006",
	"02-01-2006",
	"2.1.2006",
	"Jan 2, 2006",
	"2 Jan 2006",
	"January 2, 2006",
}

var (
	// numericValue tolerates thousands separators and leading/trailing
	// currency symbols.
	numericValue = regexp.MustCompile(`^[^\d+-]{0,3}[+-]?\d{1,3}(,\d{3})*(\.\d+)?[^\d]{0,4}$|^[+-]?\d+(\.\d+)?$`)
	emailValue   = regexp.MustCompile(`^[a-zA-Z0-9._%+\-]+@[a-zA-Z0-9.\-]+\.[a-zA-Z]{2,}$`)
	phoneValue   = regexp.MustCompile(`^\+?[\d\s\-()]{7,18}$`)
)

// InferType probes sample values in order date → number → email → phone and
// falls back to text. The majority type among non-empty samples wins; ties go
// to the earlier probe.
func InferType(sampleValues []string) models.FieldType {
	counts := map[models.FieldType]int{}
	total := 0
	for _, raw := range sampleValues {
		v := strings.TrimSpace(raw)
		if v == "" {
			continue
		}
		total++
		counts[probeValue(v)]++
	}
	if total == 0 {
		return models.FieldTypeText
	}

	best := models.FieldTypeText
	bestCount := 0
	for _, ft := range []models.FieldType{models.FieldTypeDate, models.FieldTypeNumber, models.FieldTypeEmail, models.FieldTypePhone, models.FieldTypeText} {
		if counts[ft] > bestCount {
			best = ft
			bestCount = counts[ft]
		}
	}
	return best
}

func probeValue(v string) models.FieldType {
	if IsDateValue(v) {
		return models.FieldTypeDate
	}
	if IsNumericValue(v) {
		return models.FieldTypeNumber
	}
	if IsEmailValue(v) {
		return models.FieldTypeEmail
	}
	if IsPhoneValue(v) {
		return models.FieldTypePhone
	}
	return models.FieldTypeText
}

// ParseDate tries every supported layout and returns the parsed time.
func ParseDate(v string) (time.Time, bool) {
	v = strings.TrimSpace(v)
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, v); err == nil {
			return t, true
		}
	}
	return time.Time{}, false
}

// IsDateValue reports whether v parses under any supported date layout.
func IsDateValue(v string) bool {
	_, ok := ParseDate(v)
	return ok
}

// IsNumericValue reports whether v looks numeric, tolerating thousands
// separators and currency symbols such as "৳ 1,299.50".
func IsNumericValue(v string) bool {
	return numericValue.MatchString(strings.TrimSpace(v))
}

// IsEmailValue reports whether v is email-shaped.
func IsEmailValue(v string) bool {
	return emailValue.MatchString(strings.TrimSpace(v))
}

// IsPhoneValue reports whether v is phone-shaped. Requires at least seven
// digits so short numerics are not misread as phone numbers.
func IsPhoneValue(v string) bool {
	v = strings.TrimSpace(v)
	if !phoneValue.MatchString(v) {
		return false
	}
	digits := 0
	for _, r := range v {
		if r >= '0' && r <= '9' {
			digits++
		}
	}
	return digits >= 7
}
