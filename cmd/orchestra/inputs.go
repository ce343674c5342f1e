package main

import (
	"fmt"
	"strings"
)

// parseInputs turns a repeated --input key=value flag into the bound-inputs
// map New/Load expect. Values are kept as plain strings; a template whose
// input declares a non-string type is the author's responsibility, same as
// original_source's CLI, which also only ever bound strings from argv.
func parseInputs(raw []string) (map[string]any, error) {
	inputs := make(map[string]any, len(raw))
	for _, kv := range raw {
		name, value, ok := strings.Cut(kv, "=")
		if !ok || name == "" {
			return nil, fmt.Errorf("invalid --input %q, want key=value", kv)
		}
		inputs[name] = value
	}
	return inputs, nil
}
