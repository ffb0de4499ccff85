package ui

import (
	"encoding/json"
	"fmt"
)

// PrintJSON writes v to Out as indented JSON. Used by every command when
// --json is set.
func PrintJSON(v any) error {
	enc := json.NewEncoder(Out)
	enc.SetIndent("", "  ")
	if err := enc.Encode(v); err != nil {
		return fmt.Errorf("failed to encode JSON output: %w", err)
	}
	return nil
}
