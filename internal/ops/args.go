package ops

import (
	"encoding/json"
	"math"
)

// Argument coercion helpers. JSON decoding yields float64/bool/string/any
// maps; handlers use these to pull typed values with BadArgs reporting.

// Float extracts a finite numeric argument.
func Float(args map[string]any, key string) (float64, error) {
	v, ok := args[key]
	if !ok {
		return 0, BadArgs("missing arg: %s", key)
	}
	switch n := v.(type) {
	case float64:
		if math.IsNaN(n) || math.IsInf(n, 0) {
			return 0, BadArgs("arg %s is not finite", key)
		}
		return n, nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, BadArgs("arg %s is not a number", key)
		}
		return f, nil
	case int:
		return float64(n), nil
	case int64:
		return float64(n), nil
	default:
		return 0, BadArgs("arg %s must be a number", key)
	}
}

// FloatOr extracts a numeric argument with a default for a missing key.
func FloatOr(args map[string]any, key string, def float64) (float64, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return Float(args, key)
}

// Int extracts an integral numeric argument.
func Int(args map[string]any, key string) (int, error) {
	f, err := Float(args, key)
	if err != nil {
		return 0, err
	}
	if f != math.Trunc(f) {
		return 0, BadArgs("arg %s must be an integer", key)
	}
	return int(f), nil
}

// IntOr extracts an integral argument with a default for a missing key.
func IntOr(args map[string]any, key string, def int) (int, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return Int(args, key)
}

// Bool extracts a boolean argument.
func Bool(args map[string]any, key string) (bool, error) {
	v, ok := args[key]
	if !ok {
		return false, BadArgs("missing arg: %s", key)
	}
	b, ok := v.(bool)
	if !ok {
		return false, BadArgs("arg %s must be a boolean", key)
	}
	return b, nil
}

// BoolOr extracts a boolean argument with a default for a missing key.
func BoolOr(args map[string]any, key string, def bool) (bool, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return Bool(args, key)
}

// String extracts a string argument.
func String(args map[string]any, key string) (string, error) {
	v, ok := args[key]
	if !ok {
		return "", BadArgs("missing arg: %s", key)
	}
	s, ok := v.(string)
	if !ok {
		return "", BadArgs("arg %s must be a string", key)
	}
	return s, nil
}

// StringOr extracts a string argument with a default for a missing key.
func StringOr(args map[string]any, key string, def string) (string, error) {
	if _, ok := args[key]; !ok {
		return def, nil
	}
	return String(args, key)
}

// Object extracts a nested object argument.
func Object(args map[string]any, key string) (map[string]any, error) {
	v, ok := args[key]
	if !ok {
		return nil, BadArgs("missing arg: %s", key)
	}
	m, ok := v.(map[string]any)
	if !ok {
		return nil, BadArgs("arg %s must be an object", key)
	}
	return m, nil
}
