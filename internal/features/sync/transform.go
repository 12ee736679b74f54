package sync

import (
	"fmt"

	"github.com/d5/tengo/v2"
)

// applyTransform evaluates a mapping's per-field expression against the raw
// value. The expression sees the extracted value as `value` and its result
// is read back from `out`.
func applyTransform(expr string, value interface{}) (interface{}, error) {
	script := tengo.NewScript([]byte(fmt.Sprintf("out := %s", expr)))

	if err := script.Add("value", value); err != nil {
		return nil, fmt.Errorf("failed to bind value: %w", err)
	}

	compiled, err := script.Compile()
	if err != nil {
		return nil, fmt.Errorf("failed to compile transform: %w", err)
	}

	if err := compiled.Run(); err != nil {
		return nil, fmt.Errorf("failed to run transform: %w", err)
	}

	return compiled.Get("out").Value(), nil
}
