package widgets

import (
	"sort"
	"strings"
	"sync"

	"github.com/goliatone/go-formdef/pkg/document"
	"github.com/goliatone/go-formdef/pkg/model"
)

// Built-in widget identifiers exposed by the registry.
const (
	WidgetInput    = "input"
	WidgetTextArea = "textarea"
	WidgetFile     = "file"
	WidgetRadio    = "radio-group"
	WidgetCheckbox = "checkbox-group"
	WidgetSelect   = "select"
)

// Matcher decides whether a widget should handle the supplied field.
type Matcher func(field model.CompiledField) bool

// Context is what a Builder receives for one field.
type Context struct {
	Field model.CompiledField
	// Errors are server-side messages to show inline.
	Errors []string
}

// HintID is the id of the hint element, empty when the field has no hint.
func (c Context) HintID() string {
	if c.Field.Hint == "" {
		return ""
	}
	return c.Field.ID + "-hint"
}

// ErrorID is the id of the error list, empty when there are no errors.
func (c Context) ErrorID() string {
	if len(c.Errors) == 0 {
		return ""
	}
	return c.Field.ID + "-error"
}

// DescribedBy joins the hint and error ids for aria-describedby.
func (c Context) DescribedBy() string {
	return strings.TrimSpace(c.HintID() + " " + c.ErrorID())
}

// Builder produces the nodes placed inside a field's wrapper element.
type Builder func(ctx Context) []*document.Node

type entry struct {
	name     string
	priority int
	match    Matcher
	build    Builder
	order    int
}

// Registry selects element builders for compiled fields. Higher priority
// wins; ties fall back to registration order. The built-ins register at
// priority 0 so any custom widget with a positive priority overrides them.
type Registry struct {
	mu      sync.RWMutex
	entries []entry
}

// NewRegistry constructs a registry with the built-in widgets registered.
func NewRegistry() *Registry {
	reg := &Registry{}
	reg.registerBuiltins()
	return reg
}

// Register adds a widget. Blank names, nil matchers and nil builders are
// ignored.
func (r *Registry) Register(name string, priority int, matcher Matcher, builder Builder) {
	if r == nil || matcher == nil || builder == nil {
		return
	}
	trimmed := strings.TrimSpace(name)
	if trimmed == "" {
		return
	}
	r.mu.Lock()
	defer r.mu.Unlock()

	r.entries = append(r.entries, entry{
		name:     trimmed,
		priority: priority,
		match:    matcher,
		build:    builder,
		order:    len(r.entries),
	})
}

// Resolve returns the widget name and builder for a field.
func (r *Registry) Resolve(field model.CompiledField) (string, Builder, bool) {
	if r == nil {
		return "", nil, false
	}
	r.mu.RLock()
	entries := append([]entry(nil), r.entries...)
	r.mu.RUnlock()
	if len(entries) == 0 {
		return "", nil, false
	}

	sort.SliceStable(entries, func(i, j int) bool {
		if entries[i].priority == entries[j].priority {
			return entries[i].order < entries[j].order
		}
		return entries[i].priority > entries[j].priority
	})
	for _, candidate := range entries {
		if candidate.match(field) {
			return candidate.name, candidate.build, true
		}
	}
	return "", nil, false
}

// Names lists registered widget names in registration order.
func (r *Registry) Names() []string {
	if r == nil {
		return nil
	}
	r.mu.RLock()
	defer r.mu.RUnlock()
	out := make([]string, 0, len(r.entries))
	for _, candidate := range r.entries {
		out = append(out, candidate.name)
	}
	return out
}

// OfType matches fields whose widget kind is one of kinds.
func OfType(kinds ...model.QuestionType) Matcher {
	return func(field model.CompiledField) bool {
		for _, kind := range kinds {
			if field.Type == kind {
				return true
			}
		}
		return false
	}
}

func (r *Registry) registerBuiltins() {
	r.Register(WidgetInput, 0, OfType(
		model.QuestionTypeText,
		model.QuestionTypeEmail,
		model.QuestionTypePassword,
		model.QuestionTypeURL,
		model.QuestionTypeNumber,
		model.QuestionTypeDate,
	), Input)
	r.Register(WidgetTextArea, 0, OfType(model.QuestionTypeTextArea), TextArea)
	r.Register(WidgetFile, 0, OfType(model.QuestionTypeFileUpload), File)
	r.Register(WidgetRadio, 0, OfType(model.QuestionTypeRadio), RadioGroup)
	r.Register(WidgetCheckbox, 0, OfType(model.QuestionTypeCheckbox), CheckboxGroup)
	r.Register(WidgetSelect, 0, OfType(model.QuestionTypeDropdown), Select)
}
