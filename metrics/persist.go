package metrics

import (
	"encoding/json"
	"fmt"
	"os"
)

// WriteFile persists a record set as a pretty-printed JSON document mapping
// domain to a flat metric-name→number object.
func WriteFile(path string, set Set) error {
	data, err := json.MarshalIndent(set, "", "    ")
	if err != nil {
		return fmt.Errorf("metrics: marshal %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("metrics: write %s: %w", path, err)
	}
	return nil
}

// ReadFile loads a record set previously written by WriteFile.
func ReadFile(path string) (Set, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("metrics: read %s: %w", path, err)
	}
	var set Set
	if err := json.Unmarshal(data, &set); err != nil {
		return nil, fmt.Errorf("metrics: parse %s: %w", path, err)
	}
	return set, nil
}
