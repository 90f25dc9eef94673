package evaluate

import (
	"regexp"
	"strconv"
	"sync"
	"unicode/utf8"

	"github.com/go-playground/validator"

	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/rules"
)

// Issue is one failed check on a submitted value.
type Issue struct {
	Field   string         `json:"field"`
	Rule    model.RuleType `json:"rule,omitempty"`
	Message string         `json:"message"`
}

// Result is the outcome of Validate.
type Result struct {
	Valid  bool                  `json:"valid"`
	Issues []Issue               `json:"issues,omitempty"`
	State  map[string]FieldState `json:"state"`
}

// Fields groups issue messages by field id, the shape render.RenderOptions
// expects for re-rendering a form with errors.
func (r Result) Fields() map[string][]string {
	if len(r.Issues) == 0 {
		return nil
	}
	out := make(map[string][]string)
	for _, issue := range r.Issues {
		out[issue.Field] = append(out[issue.Field], issue.Message)
	}
	return out
}

var (
	validateOnce sync.Once
	validate     *validator.Validate

	patterns sync.Map
)

func checker() *validator.Validate {
	validateOnce.Do(func() {
		validate = validator.New()
	})
	return validate
}

// Validate checks submitted values against the compiled rules. Hidden and
// disabled fields are skipped. An empty value only fails the Required check,
// the remaining rules apply to non-empty values.
func Validate(form model.CompiledForm, values Values) Result {
	e := newEvaluator(form, values)
	result := Result{Valid: true, State: make(map[string]FieldState, len(e.order))}

	for _, id := range e.order {
		field := e.fields[id]
		st := e.state(id)
		result.State[id] = st
		if !st.Visible || !st.Enabled {
			continue
		}
		result.Issues = append(result.Issues, checkField(field, st, present(e.raw(id)))...)
	}
	result.Valid = len(result.Issues) == 0
	return result
}

func checkField(field model.CompiledField, st FieldState, values model.Values) []Issue {
	if len(values) == 0 {
		if !st.Required {
			return nil
		}
		message := rules.Message(model.RuleRequired, field.Label, nil, nil)
		if rule, ok := field.Rule(model.RuleRequired); ok && rule.ErrorMessage != "" {
			message = rule.ErrorMessage
		}
		return []Issue{{Field: field.ID, Rule: model.RuleRequired, Message: message}}
	}

	var issues []Issue
	if field.Type.IsChoice() {
		for _, value := range values {
			if !hasOption(field, value) {
				issues = append(issues, Issue{Field: field.ID, Message: rules.Message("", field.Label, nil, nil)})
				break
			}
		}
	}
	for _, rule := range field.Rules {
		if rule.Type == model.RuleRequired {
			continue
		}
		for _, value := range values {
			if !passes(rule, value) {
				issues = append(issues, Issue{Field: field.ID, Rule: rule.Type, Message: rule.ErrorMessage})
				break
			}
		}
	}
	return issues
}

func hasOption(field model.CompiledField, value string) bool {
	for _, option := range field.Options {
		if option.Value == value {
			return true
		}
	}
	return false
}

func passes(rule model.CompiledRule, value string) bool {
	switch rule.Type {
	case model.RuleEmail:
		return checker().Var(value, "email") == nil
	case model.RuleURL:
		return checker().Var(value, "url") == nil
	case model.RulePattern:
		re, err := pattern(rule.Pattern)
		return err == nil && re.MatchString(value)
	case model.RuleMinLength:
		return rule.Min == nil || float64(utf8.RuneCountInString(value)) >= *rule.Min
	case model.RuleMaxLength:
		return rule.Max == nil || float64(utf8.RuneCountInString(value)) <= *rule.Max
	case model.RuleMin, model.RuleMax, model.RuleRange:
		number, err := strconv.ParseFloat(value, 64)
		if err != nil {
			return false
		}
		if rule.Min != nil && rule.Type != model.RuleMax && number < *rule.Min {
			return false
		}
		if rule.Max != nil && rule.Type != model.RuleMin && number > *rule.Max {
			return false
		}
		return true
	default:
		return true
	}
}

// pattern compiles rule patterns anchored to the whole value, matching the
// HTML pattern attribute.
func pattern(raw string) (*regexp.Regexp, error) {
	if cached, ok := patterns.Load(raw); ok {
		return cached.(*regexp.Regexp), nil
	}
	re, err := regexp.Compile("^(?:" + raw + ")$")
	if err != nil {
		return nil, err
	}
	patterns.Store(raw, re)
	return re, nil
}
