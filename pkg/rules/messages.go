package rules

import (
	"strconv"
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
)

// GenericTemplate is the last-resort message.
const GenericTemplate = "{field} is invalid"

var defaultTemplates = map[model.RuleType]string{
	model.RuleRequired:  "{field} is required",
	model.RuleEmail:     "{field} must be a valid email address",
	model.RuleURL:       "{field} must be a valid URL",
	model.RulePattern:   "{field} is not in the expected format",
	model.RuleMinLength: "{field} must be at least {min} characters",
	model.RuleMaxLength: "{field} must be at most {max} characters",
	model.RuleMin:       "{field} must be at least {min}",
	model.RuleMax:       "{field} must be at most {max}",
	model.RuleRange:     "{field} must be between {min} and {max}",
}

// Translator resolves translation keys for a locale.
type Translator interface {
	Translate(locale, key string) (string, error)
}

// TranslatorFunc adapts a function into a Translator.
type TranslatorFunc func(locale, key string) (string, error)

// Translate delegates to the wrapped function.
func (fn TranslatorFunc) Translate(locale, key string) (string, error) {
	return fn(locale, key)
}

// TemplateKey is the translation key consulted for a rule kind, for example
// "validation.minLength".
func TemplateKey(kind model.RuleType) string {
	name := string(kind)
	if name == "" {
		return "validation.invalid"
	}
	return "validation." + strings.ToLower(name[:1]) + name[1:]
}

// DefaultTemplate returns the built-in template for a rule kind.
func DefaultTemplate(kind model.RuleType) string {
	if tpl, ok := defaultTemplates[kind]; ok {
		return tpl
	}
	return GenericTemplate
}

// Message renders the built-in message for a rule kind, falling back to the
// generic template when a placeholder cannot be filled.
func Message(kind model.RuleType, label string, min, max *float64) string {
	return interpolate(usable(DefaultTemplate(kind), min, max), label, "", min, max)
}

func usable(tpl string, min, max *float64) string {
	if strings.Contains(tpl, "{min}") && min == nil {
		return GenericTemplate
	}
	if strings.Contains(tpl, "{max}") && max == nil {
		return GenericTemplate
	}
	return tpl
}

func interpolate(tpl, label, pattern string, min, max *float64) string {
	replacer := strings.NewReplacer(
		"{field}", label,
		"{pattern}", pattern,
		"{min}", formatBound(min),
		"{max}", formatBound(max),
	)
	return replacer.Replace(tpl)
}

func formatBound(value *float64) string {
	if value == nil {
		return ""
	}
	return strconv.FormatFloat(*value, 'f', -1, 64)
}

// localeCandidates yields "en-GB", "en" for "en-GB" and nothing for "".
func localeCandidates(locale string) []string {
	locale = strings.TrimSpace(locale)
	if locale == "" {
		return nil
	}
	out := []string{locale}
	if base, _, ok := strings.Cut(strings.ReplaceAll(locale, "_", "-"), "-"); ok && base != "" {
		out = append(out, base)
	}
	return out
}
