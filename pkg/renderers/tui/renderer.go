// Package tui fills a compiled form interactively in the terminal. Fields are
// prompted in form order; dependency edges are re-evaluated after every
// answer so hidden or disabled fields are skipped, and answers are checked
// against the compiled rules before moving on.
package tui

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/url"
	"strings"

	"github.com/goliatone/go-formdef/pkg/evaluate"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
)

// Name is the registry name of the terminal renderer.
const Name = "tui"

// Renderer implements render.Renderer for terminal sessions. The output is
// the collected submission, not markup.
type Renderer struct {
	driver       PromptDriver
	outputFormat OutputFormat
	maxAttempts  int
	out          io.Writer
	theme        Theme
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs a TUI renderer with defaults (survey driver, JSON output).
func New(options ...Option) *Renderer {
	r := &Renderer{
		outputFormat: OutputFormatJSON,
		maxAttempts:  DefaultMaxAttempts,
	}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	if r.driver == nil {
		r.driver = newSurveyDriver(r.out)
	}
	return r
}

// Name reports the renderer identifier.
func (r *Renderer) Name() string {
	return Name
}

// ContentType reports the serialization format used by Render.
func (r *Renderer) ContentType() string {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		return "application/x-www-form-urlencoded"
	case OutputFormatPrettyText:
		return "text/plain; charset=utf-8"
	default:
		return "application/json"
	}
}

// Render prompts for every visible, enabled field and serializes the answers.
func (r *Renderer) Render(ctx context.Context, form *model.CompiledForm, opts render.RenderOptions) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("tui: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if form == nil {
		return nil, errors.New("tui: compiled form is required")
	}

	values, err := r.Fill(ctx, *form, opts.Errors)
	if err != nil {
		return nil, err
	}
	return r.serialize(*form, values)
}

// Fill runs the prompt session and returns the submitted values of the
// fields that are visible and enabled once the session ends.
func (r *Renderer) Fill(ctx context.Context, form model.CompiledForm, initialErrors map[string][]string) (evaluate.Values, error) {
	if title := strings.TrimSpace(form.Title); title != "" {
		if err := r.info(ctx, title); err != nil {
			return nil, err
		}
	}
	errs := render.MapErrors(form, initialErrors)
	for _, msg := range errs.Form {
		if err := r.errorf(ctx, "%s", msg); err != nil {
			return nil, err
		}
	}

	values := make(evaluate.Values)
	for _, field := range form.Fields() {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		state, _ := evaluate.Evaluate(form, values).Field(field.ID)
		if !state.Visible || !state.Enabled {
			continue
		}
		for _, msg := range errs.Fields[field.ID] {
			if err := r.errorf(ctx, "%s: %s", field.Label, msg); err != nil {
				return nil, err
			}
		}
		if err := r.promptField(ctx, form, field, values); err != nil {
			return nil, err
		}
	}

	final := evaluate.Evaluate(form, values)
	out := make(evaluate.Values)
	for _, id := range final.IDs() {
		state, _ := final.Field(id)
		if !state.Visible || !state.Enabled {
			continue
		}
		if answer, ok := values[id]; ok {
			out[id] = answer
		}
	}
	return out, nil
}

func (r *Renderer) promptField(ctx context.Context, form model.CompiledForm, field model.CompiledField, values evaluate.Values) error {
	for attempt := 0; attempt < r.maxAttempts; attempt++ {
		answer, err := r.ask(ctx, field, current(field, values))
		if err != nil {
			return err
		}
		values[field.ID] = answer

		issues := fieldIssues(evaluate.Validate(form, values), field.ID)
		if len(issues) == 0 {
			return nil
		}
		for _, issue := range issues {
			if err := r.errorf(ctx, "Invalid %s: %s", field.ID, issue.Message); err != nil {
				return err
			}
		}
	}
	return fmt.Errorf("%w: %s", ErrTooManyAttempts, field.ID)
}

func (r *Renderer) ask(ctx context.Context, field model.CompiledField, currentValue model.Values) (model.Values, error) {
	help := field.Hint
	switch field.Type {
	case model.QuestionTypeRadio, model.QuestionTypeDropdown:
		labels := optionLabels(field)
		idx, err := r.driver.Select(ctx, SelectConfig{
			Message:      field.Label,
			Options:      labels,
			DefaultIndex: firstSelected(field, currentValue),
			Help:         help,
		})
		if err != nil {
			return nil, err
		}
		if idx < 0 || idx >= len(field.Options) {
			return nil, nil
		}
		return model.Values{field.Options[idx].Value}, nil

	case model.QuestionTypeCheckbox:
		if len(field.Options) == 1 {
			option := field.Options[0]
			yes, err := r.driver.Confirm(ctx, ConfirmConfig{
				Message: field.Label,
				Default: currentValue.Contains(option.Value),
				Help:    help,
			})
			if err != nil || !yes {
				return nil, err
			}
			return model.Values{option.Value}, nil
		}
		indices, err := r.driver.MultiSelect(ctx, SelectConfig{
			Message:  field.Label,
			Options:  optionLabels(field),
			Defaults: selectedIndices(field, currentValue),
			Help:     help,
		})
		if err != nil {
			return nil, err
		}
		var out model.Values
		for _, idx := range indices {
			if idx >= 0 && idx < len(field.Options) {
				out = append(out, field.Options[idx].Value)
			}
		}
		return out, nil

	case model.QuestionTypePassword:
		answer, err := r.driver.Password(ctx, InputConfig{Message: field.Label, Help: help})
		return single(answer), err

	case model.QuestionTypeTextArea:
		answer, err := r.driver.TextArea(ctx, TextAreaConfig{Message: field.Label, Default: currentValue.First(), Help: help})
		return single(answer), err

	default:
		answer, err := r.driver.Input(ctx, InputConfig{Message: field.Label, Default: currentValue.First(), Help: help})
		return single(strings.TrimSpace(answer)), err
	}
}

func (r *Renderer) info(ctx context.Context, msg string) error {
	return r.driver.Info(ctx, r.theme.InfoPrefix+msg)
}

func (r *Renderer) errorf(ctx context.Context, format string, args ...any) error {
	return r.driver.Info(ctx, r.theme.ErrorPrefix+fmt.Sprintf(format, args...))
}

func (r *Renderer) serialize(form model.CompiledForm, values evaluate.Values) ([]byte, error) {
	switch r.outputFormat {
	case OutputFormatFormURLEncoded:
		encoded := url.Values{}
		for id, answer := range values {
			for _, value := range answer {
				encoded.Add(id, value)
			}
		}
		return []byte(encoded.Encode()), nil
	case OutputFormatPrettyText:
		var b strings.Builder
		for _, field := range form.Fields() {
			answer, ok := values[field.ID]
			if !ok {
				continue
			}
			fmt.Fprintf(&b, "%s: %s\n", field.Label, strings.Join(answer, ", "))
		}
		return []byte(b.String()), nil
	default:
		payload := make(map[string]any, len(values))
		for _, field := range form.Fields() {
			answer, ok := values[field.ID]
			if !ok {
				continue
			}
			if field.Type == model.QuestionTypeCheckbox && len(field.Options) > 1 {
				payload[field.ID] = append([]string{}, answer...)
				continue
			}
			payload[field.ID] = answer.First()
		}
		var buf bytes.Buffer
		enc := json.NewEncoder(&buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "  ")
		if err := enc.Encode(payload); err != nil {
			return nil, fmt.Errorf("tui: encode values: %w", err)
		}
		return buf.Bytes(), nil
	}
}

func current(field model.CompiledField, values evaluate.Values) model.Values {
	if answer, ok := values[field.ID]; ok {
		return answer
	}
	return model.Values(field.Value)
}

func single(answer string) model.Values {
	if answer == "" {
		return nil
	}
	return model.Values{answer}
}

func fieldIssues(result evaluate.Result, id string) []evaluate.Issue {
	var out []evaluate.Issue
	for _, issue := range result.Issues {
		if issue.Field == id {
			out = append(out, issue)
		}
	}
	return out
}

func optionLabels(field model.CompiledField) []string {
	out := make([]string, 0, len(field.Options))
	for _, option := range field.Options {
		out = append(out, option.Label)
	}
	return out
}

func firstSelected(field model.CompiledField, values model.Values) int {
	for i, option := range field.Options {
		if values.Contains(option.Value) {
			return i
		}
	}
	return -1
}

func selectedIndices(field model.CompiledField, values model.Values) []int {
	var out []int
	for i, option := range field.Options {
		if values.Contains(option.Value) {
			out = append(out, i)
		}
	}
	return out
}
