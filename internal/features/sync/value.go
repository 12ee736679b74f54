package sync

import (
	"strconv"
	"strings"
)

// External payloads are opaque key/value structures. The helpers below walk
// and coerce them fail-soft: anything that cannot be read or converted
// comes back as absent, never as a panic or error.

// lookupPath walks dot-separated segments through nested objects. A missing
// or non-object segment yields nil.
func lookupPath(raw map[string]interface{}, path string) interface{} {
	if raw == nil || path == "" {
		return nil
	}

	var current interface{} = raw
	for _, segment := range strings.Split(path, ".") {
		obj, ok := current.(map[string]interface{})
		if !ok {
			return nil
		}
		current, ok = obj[segment]
		if !ok {
			return nil
		}
	}
	return current
}

// asString coerces string, numeric and boolean values to a string.
func asString(v interface{}) (string, bool) {
	switch val := v.(type) {
	case string:
		return val, true
	case float64:
		return strconv.FormatFloat(val, 'f', -1, 64), true
	case float32:
		return strconv.FormatFloat(float64(val), 'f', -1, 64), true
	case int:
		return strconv.Itoa(val), true
	case int64:
		return strconv.FormatInt(val, 10), true
	case bool:
		return strconv.FormatBool(val), true
	default:
		return "", false
	}
}

// asNumber coerces numeric or numeric-string values and fails closed on
// anything else ("contact us" is not a price).
func asNumber(v interface{}) (float64, bool) {
	switch val := v.(type) {
	case float64:
		return val, true
	case float32:
		return float64(val), true
	case int:
		return float64(val), true
	case int64:
		return float64(val), true
	case string:
		n, err := strconv.ParseFloat(strings.TrimSpace(val), 64)
		if err != nil {
			return 0, false
		}
		return n, true
	default:
		return 0, false
	}
}

// asStringList accepts either an array (entries stringified, empties
// dropped) or a comma-separated string (split and trimmed).
func asStringList(v interface{}) []string {
	switch val := v.(type) {
	case []interface{}:
		var out []string
		for _, item := range val {
			if s, ok := asString(item); ok && strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case []string:
		var out []string
		for _, s := range val {
			if strings.TrimSpace(s) != "" {
				out = append(out, s)
			}
		}
		return out
	case string:
		var out []string
		for _, part := range strings.Split(val, ",") {
			if trimmed := strings.TrimSpace(part); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		return out
	default:
		return nil
	}
}
