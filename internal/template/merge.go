package template

import "dario.cat/mergo"

// overlayInputs implements spec.md §4.3's "inputs OVERLAY (key-by-key merge)
// on top of the type's inputs": the template-level override wins on
// conflicting keys, but keys only present on the type side survive.
func overlayInputs(base, override map[string]any) map[string]any {
	if len(base) == 0 && len(override) == 0 {
		return nil
	}

	merged := make(map[string]any, len(base))
	for k, v := range base {
		merged[k] = v
	}

	if len(override) == 0 {
		return merged
	}

	if err := mergo.Merge(&merged, override, mergo.WithOverride); err != nil {
		// mergo only errors on incompatible struct shapes; map[string]any
		// merges never hit that path, but fall back to a manual overlay
		// defensively rather than dropping the override silently.
		for k, v := range override {
			merged[k] = v
		}
	}

	return merged
}
