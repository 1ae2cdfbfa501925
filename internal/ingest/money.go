package ingest

import (
	"strconv"
	"strings"
)

// ParseMoney coerces a provider-shaped money value into a non-negative float.
// Strings are stripped of dollar signs, thousands separators and whitespace
// before parsing. Anything that still fails to parse, and anything negative,
// collapses to zero: an unknown spend must never pass a spend threshold.
func ParseMoney(value any) float64 {
	var amount float64

	switch typed := value.(type) {
	case nil:
		return 0
	case float64:
		amount = typed
	case float32:
		amount = float64(typed)
	case int:
		amount = float64(typed)
	case int64:
		amount = float64(typed)
	case string:
		cleaned := strings.NewReplacer("$", "", ",", "", " ", "").Replace(strings.TrimSpace(typed))
		parsed, err := strconv.ParseFloat(cleaned, 64)
		if err != nil {
			return 0
		}
		amount = parsed
	default:
		return 0
	}

	if amount < 0 {
		return 0
	}
	return amount
}
