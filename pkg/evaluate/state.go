// Package evaluate is a server-side reference for the client evaluator: it
// walks the dependency lists and rule descriptors embedded in a compiled form
// and decides field state and submission validity the same way a browser
// script would.
package evaluate

import (
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Values maps question ids to submitted values. A question missing from the
// map falls back to its compiled default value.
type Values map[string]model.Values

// FieldState is the evaluated state of one field.
type FieldState struct {
	Visible  bool `json:"visible"`
	Enabled  bool `json:"enabled"`
	Required bool `json:"required"`
}

// State holds the evaluated state of every field of a form.
type State struct {
	fields map[string]FieldState
	order  []string
}

// Field returns the state for a question id.
func (s State) Field(id string) (FieldState, bool) {
	st, ok := s.fields[id]
	return st, ok
}

// IDs lists field ids in form order.
func (s State) IDs() []string {
	return append([]string(nil), s.order...)
}

// Evaluate computes visibility, enablement and required state for every field.
//
// A field with Show edges is visible only while one of them matches, and any
// matching Hide edge hides it. Enable edges gate the field the same way and a
// matching Disable edge always wins. RequireWhenVisible is evaluated
// continuously: the field is required whenever a matching edge exists and the
// field is visible and enabled. A hidden source counts as having no value.
func Evaluate(form model.CompiledForm, values Values) State {
	e := newEvaluator(form, values)
	state := State{fields: make(map[string]FieldState, len(e.fields)), order: e.order}
	for _, id := range e.order {
		state.fields[id] = e.state(id)
	}
	return state
}

type evaluator struct {
	fields   map[string]model.CompiledField
	order    []string
	values   Values
	visible  map[string]bool
	visiting map[string]bool
}

func newEvaluator(form model.CompiledForm, values Values) *evaluator {
	e := &evaluator{
		fields:   make(map[string]model.CompiledField),
		values:   values,
		visible:  make(map[string]bool),
		visiting: make(map[string]bool),
	}
	for _, field := range form.Fields() {
		e.fields[field.ID] = field
		e.order = append(e.order, field.ID)
	}
	return e
}

func (e *evaluator) state(id string) FieldState {
	field := e.fields[id]
	visible := e.isVisible(id)

	enabled := !field.Disabled
	if gates := e.edges(field, model.ActionEnable); len(gates) > 0 && !e.anyMatch(gates) {
		enabled = false
	}
	if e.anyMatch(e.edges(field, model.ActionDisable)) {
		enabled = false
	}

	required := field.Required || e.anyMatch(e.edges(field, model.ActionRequireWhenVisible))
	return FieldState{
		Visible:  visible,
		Enabled:  enabled,
		Required: required && visible && enabled,
	}
}

// isVisible is memoised per evaluation. Compiled forms are acyclic; the
// visiting set only stops runaway recursion on hand-built input.
func (e *evaluator) isVisible(id string) bool {
	if visible, ok := e.visible[id]; ok {
		return visible
	}
	if e.visiting[id] {
		return false
	}
	e.visiting[id] = true
	defer delete(e.visiting, id)

	field, ok := e.fields[id]
	if !ok {
		return false
	}
	visible := true
	if shows := e.edges(field, model.ActionShow); len(shows) > 0 && !e.anyMatch(shows) {
		visible = false
	}
	if e.anyMatch(e.edges(field, model.ActionHide)) {
		visible = false
	}
	e.visible[id] = visible
	return visible
}

func (e *evaluator) edges(field model.CompiledField, action model.DependencyAction) []model.DependencyEdge {
	var out []model.DependencyEdge
	for _, edge := range field.Dependencies {
		if edge.Action == action {
			out = append(out, edge)
		}
	}
	return out
}

func (e *evaluator) anyMatch(edges []model.DependencyEdge) bool {
	for _, edge := range edges {
		if e.current(edge.SourceQuestionID).Contains(edge.TriggerValue) {
			return true
		}
	}
	return false
}

// current is the effective value of a source question.
func (e *evaluator) current(id string) model.Values {
	if !e.isVisible(id) {
		return nil
	}
	return e.raw(id)
}

func (e *evaluator) raw(id string) model.Values {
	if submitted, ok := e.values[id]; ok {
		return submitted
	}
	return model.Values(e.fields[id].Value)
}

// present drops blank entries.
func present(values model.Values) model.Values {
	var out model.Values
	for _, value := range values {
		if strings.TrimSpace(value) != "" {
			out = append(out, value)
		}
	}
	return out
}
