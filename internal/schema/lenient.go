package schema

import (
	"encoding/json"
	"fmt"
	"strconv"
)

// CoerceScalars normalizes an extraction payload before the typed decode:
// numeric and boolean leaf values become strings, nulls are dropped. The
// service contract says string fields, but real responses carry bare
// numbers for quantities and totals often enough that a strict decode
// would fail whole documents over one field.
func CoerceScalars(raw []byte) ([]byte, error) {
	var top map[string]any
	if err := json.Unmarshal(raw, &top); err != nil {
		return nil, fmt.Errorf("coerce: decode: %w", err)
	}

	for name, value := range top {
		switch v := value.(type) {
		case map[string]any:
			top[name] = coerceFlat(v)
		case []any:
			for i, elem := range v {
				if obj, ok := elem.(map[string]any); ok {
					v[i] = coerceFlat(obj)
				}
			}
		}
	}

	return json.Marshal(top)
}

func coerceFlat(obj map[string]any) map[string]any {
	for field, value := range obj {
		switch t := value.(type) {
		case nil:
			delete(obj, field)
		case float64:
			obj[field] = strconv.FormatFloat(t, 'f', -1, 64)
		case bool:
			obj[field] = strconv.FormatBool(t)
		}
	}
	return obj
}
