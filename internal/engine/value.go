package engine

import (
	"fmt"
	"strconv"
)

// toFloat coerces the numeric value types SQL drivers and JSON decoding hand
// back. ok is false for nil, non-numeric strings, and unknown types.
func toFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case nil:
		return 0, false
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int64:
		return float64(t), true
	case string:
		f, err := strconv.ParseFloat(t, 64)
		if err != nil {
			return 0, false
		}
		return f, true
	case []byte:
		f, err := strconv.ParseFloat(string(t), 64)
		if err != nil {
			return 0, false
		}
		return f, true
	default:
		return 0, false
	}
}

// toString renders a row value as a plain string, without fmt's []byte quoting.
func toString(v any) string {
	switch t := v.(type) {
	case nil:
		return ""
	case string:
		return t
	case []byte:
		return string(t)
	case float64:
		return strconv.FormatFloat(t, 'f', -1, 64)
	case int64:
		return strconv.FormatInt(t, 10)
	default:
		return fmt.Sprintf("%v", t)
	}
}

// fieldFloat resolves a logical field on a row through the collection's field
// map. present reports whether the row carries a non-nil value for the field
// at all; ok reports whether that value was numeric.
func fieldFloat(row map[string]any, fields fieldMap, logical string) (val float64, ok, present bool) {
	phys, mapped := fields[logical]
	if !mapped {
		return 0, false, false
	}
	raw, exists := row[phys]
	if !exists || raw == nil {
		return 0, false, false
	}
	f, ok := toFloat(raw)
	return f, ok, true
}

// fieldString resolves a logical string field on a row. present reports
// whether the row carries a non-nil value for the field.
func fieldString(row map[string]any, fields fieldMap, logical string) (val string, present bool) {
	phys, mapped := fields[logical]
	if !mapped {
		return "", false
	}
	raw, exists := row[phys]
	if !exists || raw == nil {
		return "", false
	}
	return toString(raw), true
}
