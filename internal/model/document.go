package model

// Document is a whole record as stored in a collection. The store layer
// moves documents verbatim; field meaning belongs to the entity types below.
type Document = map[string]interface{}

// Filter is a caller-supplied field→value match, applied with equality
// semantics on every backend.
type Filter = map[string]interface{}

// Partial is a caller-supplied set of fields to merge into an existing
// document. Field names must pass the entity's schema before reaching
// the store.
type Partial = map[string]interface{}

// Int64 coerces a decoded document value to an integer. JSON decoding
// produces float64, MongoDB produces int32/int64, so quantity arithmetic
// must tolerate all three.
func Int64(v interface{}) (int64, bool) {
	switch n := v.(type) {
	case int64:
		return n, true
	case int32:
		return int64(n), true
	case int:
		return int64(n), true
	case float64:
		return int64(n), true
	case float32:
		return int64(n), true
	default:
		return 0, false
	}
}

// Float64 coerces a decoded document value to a float.
func Float64(v interface{}) (float64, bool) {
	switch n := v.(type) {
	case float64:
		return n, true
	case float32:
		return float64(n), true
	case int64:
		return float64(n), true
	case int32:
		return float64(n), true
	case int:
		return float64(n), true
	default:
		return 0, false
	}
}

// String coerces a document value to a string, returning "" for absent or
// non-string values.
func String(v interface{}) string {
	s, _ := v.(string)
	return s
}
