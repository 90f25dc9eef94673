package render

import (
	"fmt"
	"sort"
	"strings"
)

// DefaultCSRFField is the hidden input name used for RenderOptions.CSRFToken.
const DefaultCSRFField = "_csrf"

// MethodOverrideField carries the intended verb when a form submits PUT,
// PATCH or DELETE through a POST.
const MethodOverrideField = "_method"

// HiddenField represents a hidden input emitted alongside the visible fields.
type HiddenField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Hidden returns a HiddenField for an arbitrary name/value pair.
func Hidden(name string, value any) HiddenField {
	return HiddenField{
		Name:  strings.TrimSpace(name),
		Value: fmt.Sprint(value),
	}
}

// SortedHiddenFields normalises and sorts hidden fields for deterministic
// rendering. Empty names are dropped.
func SortedHiddenFields(fields map[string]string) []HiddenField {
	if len(fields) == 0 {
		return nil
	}

	clean := make(map[string]string, len(fields))
	for name, value := range fields {
		key := strings.TrimSpace(name)
		if key == "" {
			continue
		}
		clean[key] = value
	}

	result := make([]HiddenField, 0, len(clean))
	for _, name := range sortedKeys(clean) {
		result = append(result, HiddenField{Name: name, Value: clean[name]})
	}
	return result
}

func sortedKeys[V any](values map[string]V) []string {
	keys := make([]string, 0, len(values))
	for key := range values {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
