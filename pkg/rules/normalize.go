// Package rules merges declared validation rules with rules inferred from a
// field descriptor into one ordered, deduplicated rule set, resolving each
// rule's error message for the active locale.
package rules

import (
	"errors"
	"fmt"
	"math"
	"regexp"
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Options configures message resolution.
type Options struct {
	// Locale selects the errorMessages entry to surface. Empty means
	// "default".
	Locale string
	// Translator optionally supplies localized kind templates under the
	// keys returned by TemplateKey.
	Translator Translator
}

// Normalizer produces compiled rule sets.
type Normalizer struct {
	opts Options
}

// New constructs a Normalizer.
func New(opts Options) *Normalizer {
	return &Normalizer{opts: opts}
}

// Normalize validates and merges rules with the package defaults.
func Normalize(declared []model.ValidationRule, descriptor model.FieldDescriptor) ([]model.CompiledRule, error) {
	return New(Options{}).Normalize(declared, descriptor)
}

// Normalize returns declared rules in author order followed by inferred rules
// whose kind no declared rule covers. An unsupported or malformed declared
// rule fails with a ConfigurationError naming descriptor.Name.
func (n *Normalizer) Normalize(declared []model.ValidationRule, descriptor model.FieldDescriptor) ([]model.CompiledRule, error) {
	out := make([]model.CompiledRule, 0, len(declared)+len(descriptor.Constraints)+1)
	covered := make(map[model.RuleType]struct{}, len(declared))
	seen := make(map[string]struct{}, len(declared))

	for idx, rule := range declared {
		if err := check(rule); err != nil {
			return nil, model.Configf(descriptor.Name, "validation rule %d: %s", idx, err.Error())
		}
		key := identity(rule)
		if _, dup := seen[key]; dup {
			continue
		}
		seen[key] = struct{}{}
		covered[rule.Type] = struct{}{}
		out = append(out, n.compile(rule, descriptor.Label))
	}

	var inferred []model.ValidationRule
	if descriptor.InferredRequired {
		inferred = append(inferred, model.ValidationRule{Type: model.RuleRequired})
	}
	inferred = append(inferred, descriptor.Constraints...)

	for idx, rule := range inferred {
		if _, ok := covered[rule.Type]; ok {
			continue
		}
		if err := check(rule); err != nil {
			return nil, model.Configf(descriptor.Name, "inferred rule %d: %s", idx, err.Error())
		}
		covered[rule.Type] = struct{}{}
		out = append(out, n.compile(rule, descriptor.Label))
	}

	return out, nil
}

func (n *Normalizer) compile(rule model.ValidationRule, label string) model.CompiledRule {
	compiled := model.CompiledRule{
		Type:    rule.Type,
		Pattern: rule.Pattern,
		Min:     copyFloat(rule.Min),
		Max:     copyFloat(rule.Max),
	}
	compiled.ErrorMessage = interpolate(n.template(rule), label, rule.Pattern, rule.Min, rule.Max)
	return compiled
}

// template resolves: explicit message for the locale, explicit default,
// translated kind template, built-in kind template, generic fallback.
func (n *Normalizer) template(rule model.ValidationRule) string {
	if len(rule.ErrorMessages) > 0 {
		for _, locale := range localeCandidates(n.opts.Locale) {
			if msg := strings.TrimSpace(rule.ErrorMessages[locale]); msg != "" {
				return msg
			}
		}
		if msg := strings.TrimSpace(rule.ErrorMessages[model.DefaultLocaleKey]); msg != "" {
			return msg
		}
	}
	if n.opts.Translator != nil {
		translated, err := n.opts.Translator.Translate(n.opts.Locale, TemplateKey(rule.Type))
		if err == nil && strings.TrimSpace(translated) != "" {
			return usable(translated, rule.Min, rule.Max)
		}
	}
	return usable(DefaultTemplate(rule.Type), rule.Min, rule.Max)
}

func check(rule model.ValidationRule) error {
	if !rule.Type.Valid() {
		return fmt.Errorf("unsupported rule type %q", rule.Type)
	}
	if len(rule.ErrorMessages) > 0 {
		if _, ok := rule.ErrorMessages[model.DefaultLocaleKey]; !ok {
			return errors.New("errorMessages must contain a \"default\" entry")
		}
	}
	if !finite(rule.Min) || !finite(rule.Max) {
		return errors.New("min/max must be finite numbers")
	}

	switch rule.Type {
	case model.RulePattern:
		if rule.Pattern == "" {
			return errors.New("Pattern rule requires a pattern")
		}
		if _, err := regexp.Compile(rule.Pattern); err != nil {
			return fmt.Errorf("invalid pattern: %w", err)
		}
	case model.RuleMinLength:
		if rule.Min == nil || *rule.Min < 0 {
			return errors.New("MinLength rule requires a non-negative min")
		}
	case model.RuleMaxLength:
		if rule.Max == nil || *rule.Max < 0 {
			return errors.New("MaxLength rule requires a non-negative max")
		}
	case model.RuleMin:
		if rule.Min == nil {
			return errors.New("Min rule requires min")
		}
	case model.RuleMax:
		if rule.Max == nil {
			return errors.New("Max rule requires max")
		}
	case model.RuleRange:
		if rule.Min == nil && rule.Max == nil {
			return errors.New("Range rule requires min or max")
		}
		if rule.Min != nil && rule.Max != nil && *rule.Min > *rule.Max {
			return errors.New("Range rule min exceeds max")
		}
	}
	return nil
}

func finite(value *float64) bool {
	return value == nil || !(math.IsNaN(*value) || math.IsInf(*value, 0))
}

func identity(rule model.ValidationRule) string {
	return string(rule.Type) + "|" + rule.Pattern + "|" + formatBound(rule.Min) + "|" + formatBound(rule.Max)
}

func copyFloat(value *float64) *float64 {
	if value == nil {
		return nil
	}
	v := *value
	return &v
}
