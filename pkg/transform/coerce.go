package transform

import (
	"fmt"
	"hash/fnv"
	"strconv"
	"strings"
	"time"

	"github.com/ledgermap/ledgermap-engine/pkg/analyzer"
)

// currencyColumns marks target columns whose values get currency parsing.
var currencyColumnKeywords = []string{
	"price", "amount", "cost", "total", "investment", "capital", "roi", "subtotal",
}

// ParseCurrency strips thousands separators and currency symbols and parses
// the remainder as a decimal. Returns false for anything that does not
// reduce to a single number; it never panics on garbage input.
func ParseCurrency(raw string) (float64, bool) {
	var b strings.Builder
	for _, r := range strings.TrimSpace(raw) {
		switch {
		case r >= '0' && r <= '9', r == '.':
			b.WriteRune(r)
		case r == '-' && b.Len() == 0:
			b.WriteRune(r)
		case r == ',':
			// thousands separator
		}
	}
	cleaned := b.String()
	if cleaned == "" || cleaned == "-" {
		return 0, false
	}
	v, err := strconv.ParseFloat(cleaned, 64)
	if err != nil {
		return 0, false
	}
	return v, true
}

// NormalizeDate parses a permissive set of date formats and renders a
// normalized RFC 3339 timestamp.
func NormalizeDate(raw string) (string, bool) {
	t, ok := analyzer.ParseDate(raw)
	if !ok {
		return "", false
	}
	return t.UTC().Format(time.RFC3339), true
}

// NormalizePhone strips everything except digits, preserving one leading +.
func NormalizePhone(raw string) string {
	var b strings.Builder
	for i, r := range strings.TrimSpace(raw) {
		if r >= '0' && r <= '9' {
			b.WriteRune(r)
		} else if r == '+' && i == 0 {
			b.WriteRune(r)
		}
	}
	return b.String()
}

// DeterministicID derives a stable identifier from its parts. Identical
// input tuples always produce the same identifier, which is what makes
// re-running a migration idempotent.
func DeterministicID(parts ...string) string {
	h := fnv.New64a()
	for _, p := range parts {
		h.Write([]byte(strings.ToLower(strings.TrimSpace(p))))
		h.Write([]byte{0})
	}
	return fmt.Sprintf("%016x", h.Sum64())
}

func isCurrencyColumn(column string) bool {
	for _, kw := range currencyColumnKeywords {
		if strings.Contains(column, kw) {
			return true
		}
	}
	return false
}
