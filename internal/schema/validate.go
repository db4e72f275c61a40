package schema

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/santhosh-tekuri/jsonschema/v5"

	"github.com/ade-labs/invoice-pipeline/internal/common"
)

// ValidateJSONAgainstSchema validates "data" against "schemaMap".
func ValidateJSONAgainstSchema(schemaMap map[string]any, data []byte) error {
	b, err := json.Marshal(schemaMap)
	if err != nil {
		return fmt.Errorf("marshal schema: %w", err)
	}
	compiler := jsonschema.NewCompiler()
	if err := compiler.AddResource("schema.json", bytes.NewReader(b)); err != nil {
		return fmt.Errorf("add schema: %w", err)
	}
	compiled, err := compiler.Compile("schema.json")
	if err != nil {
		return fmt.Errorf("compile schema: %w", err)
	}
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return fmt.Errorf("unmarshal data: %w", err)
	}
	if err := compiled.Validate(v); err != nil {
		return fmt.Errorf("json does not match schema: %w", err)
	}
	return nil
}

// CheckNestingDepth verifies that an extraction payload has at most one
// level of grouping: top-level values may be scalars, flat objects, or
// arrays whose elements are scalars or flat objects. Anything deeper is a
// contract violation and fails loudly rather than being truncated.
func CheckNestingDepth(data []byte) error {
	var top map[string]any
	if err := json.Unmarshal(data, &top); err != nil {
		return common.ValidationError("extraction is not a JSON object", err)
	}

	for name, value := range top {
		switch v := value.(type) {
		case map[string]any:
			if err := checkFlat(name, v); err != nil {
				return err
			}
		case []any:
			for i, elem := range v {
				if obj, ok := elem.(map[string]any); ok {
					if err := checkFlat(fmt.Sprintf("%s[%d]", name, i), obj); err != nil {
						return err
					}
				}
			}
		}
	}
	return nil
}

func checkFlat(name string, obj map[string]any) error {
	for field, value := range obj {
		switch value.(type) {
		case map[string]any, []any:
			return common.ValidationError(
				fmt.Sprintf("group %q field %q nests beyond one level", name, field), nil)
		}
	}
	return nil
}

// DecodeExtraction turns the service's raw extraction payload into the
// typed invoice record, enforcing the one-level-nesting contract first.
func DecodeExtraction(raw json.RawMessage) (*InvoiceExtraction, error) {
	if len(raw) == 0 {
		return &InvoiceExtraction{}, nil
	}
	if err := CheckNestingDepth(raw); err != nil {
		return nil, err
	}
	coerced, err := CoerceScalars(raw)
	if err != nil {
		return nil, common.ValidationError("normalize extraction", err)
	}
	if err := ValidateJSONAgainstSchema(BuildInvoiceJSONSchema(), coerced); err != nil {
		return nil, common.ValidationError("extraction does not match invoice schema", err)
	}
	var out InvoiceExtraction
	if err := json.Unmarshal(coerced, &out); err != nil {
		return nil, common.ValidationError("decode extraction", err)
	}
	return &out, nil
}
