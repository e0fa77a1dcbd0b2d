// Package decoder turns loosely typed documents (YAML or JSON decoded into
// any) into structs, rejecting keys the struct does not declare.
package decoder

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// DecodeStrict converts v into a T through its JSON tags.
func DecodeStrict[T any](v any) (T, error) {
	var out T

	b, err := json.Marshal(v)
	if err != nil {
		return out, fmt.Errorf("failed to marshal %T: %w", v, err)
	}

	dec := json.NewDecoder(bytes.NewReader(b))
	dec.DisallowUnknownFields()

	if err := dec.Decode(&out); err != nil {
		return out, fmt.Errorf("failed to decode into %T: %w", out, err)
	}

	return out, nil
}

// DecodeEachStrict decodes every item of a list; errors name the offending index.
func DecodeEachStrict[T any](items []any) ([]T, error) {
	out := make([]T, 0, len(items))
	for i, item := range items {
		decoded, err := DecodeStrict[T](item)
		if err != nil {
			return nil, fmt.Errorf("entry %d: %w", i, err)
		}
		out = append(out, decoded)
	}

	return out, nil
}
