package safety

import (
	"encoding/json"
	"fmt"
	"unicode/utf8"
)

// Input limits applied before anything reaches a model.
const (
	MaxInputBytes   = 100 * 1024
	MaxStringLength = 50000
	MaxArrayLength  = 1000
	MaxDepth        = 10
)

// ValidateStructure enforces the size and shape limits on a decoded input.
// The top-level object counts as depth 1.
func ValidateStructure(input map[string]any) error {
	data, err := json.Marshal(input)
	if err != nil {
		return fmt.Errorf("input is not serializable: %w", err)
	}
	if len(data) > MaxInputBytes {
		return fmt.Errorf("input is %d bytes, limit is %d", len(data), MaxInputBytes)
	}
	return checkValue(input, 1)
}

func checkValue(v any, depth int) error {
	switch t := v.(type) {
	case string:
		if n := utf8.RuneCountInString(t); n > MaxStringLength {
			return fmt.Errorf("string of %d characters exceeds limit of %d", n, MaxStringLength)
		}
	case map[string]any:
		if depth > MaxDepth {
			return fmt.Errorf("input nesting exceeds depth %d", MaxDepth)
		}
		for k, child := range t {
			if err := checkValue(k, depth); err != nil {
				return err
			}
			if err := checkValue(child, depth+1); err != nil {
				return err
			}
		}
	case []any:
		if depth > MaxDepth {
			return fmt.Errorf("input nesting exceeds depth %d", MaxDepth)
		}
		if len(t) > MaxArrayLength {
			return fmt.Errorf("array of %d elements exceeds limit of %d", len(t), MaxArrayLength)
		}
		for _, child := range t {
			if err := checkValue(child, depth+1); err != nil {
				return err
			}
		}
	}
	return nil
}
