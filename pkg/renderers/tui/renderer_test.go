package tui

import (
	"context"
	"encoding/json"
	"errors"
	"strings"
	"testing"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
)

type stubDriver struct {
	inputs       []string
	selectIdx    []int
	multiIdx     [][]int
	confirm      []bool
	textAreas    []string
	passwords    []string
	infoMessages []string
	prompted     []string
	inputPos     int
	selectPos    int
	multiPos     int
	confirmPos   int
	textPos      int
	passPos      int
}

func (s *stubDriver) Input(_ context.Context, cfg InputConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.inputPos >= len(s.inputs) {
		return "", errors.New("no input scripted")
	}
	val := s.inputs[s.inputPos]
	s.inputPos++
	return val, nil
}

func (s *stubDriver) Password(_ context.Context, cfg InputConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.passPos >= len(s.passwords) {
		return "", errors.New("no password scripted")
	}
	val := s.passwords[s.passPos]
	s.passPos++
	return val, nil
}

func (s *stubDriver) Confirm(_ context.Context, cfg ConfirmConfig) (bool, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.confirmPos >= len(s.confirm) {
		return false, errors.New("no confirm scripted")
	}
	val := s.confirm[s.confirmPos]
	s.confirmPos++
	return val, nil
}

func (s *stubDriver) Select(_ context.Context, cfg SelectConfig) (int, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.selectPos >= len(s.selectIdx) {
		return -1, errors.New("no select scripted")
	}
	val := s.selectIdx[s.selectPos]
	s.selectPos++
	return val, nil
}

func (s *stubDriver) MultiSelect(_ context.Context, cfg SelectConfig) ([]int, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.multiPos >= len(s.multiIdx) {
		return nil, errors.New("no multiselect scripted")
	}
	val := s.multiIdx[s.multiPos]
	s.multiPos++
	return val, nil
}

func (s *stubDriver) TextArea(_ context.Context, cfg TextAreaConfig) (string, error) {
	s.prompted = append(s.prompted, cfg.Message)
	if s.textPos >= len(s.textAreas) {
		return "", errors.New("no textarea scripted")
	}
	val := s.textAreas[s.textPos]
	s.textPos++
	return val, nil
}

func (s *stubDriver) Info(_ context.Context, msg string) error {
	s.infoMessages = append(s.infoMessages, msg)
	return nil
}

func petForm(t *testing.T) *model.CompiledForm {
	t.Helper()
	form, err := compiler.Compile(model.FormDefinition{
		ID:    "pets",
		Title: "Pets",
		Sections: []model.FormSection{{Questions: []model.FormQuestion{
			{ID: "hasPet", Type: model.QuestionTypeRadio, Label: "Do you have a pet?", Options: []model.QuestionOption{
				{Label: "Yes", Value: "yes"}, {Label: "No", Value: "no"},
			}},
			{ID: "petName", Type: model.QuestionTypeText, Label: "Pet name", IsRequired: true, Dependencies: []model.QuestionDependency{
				{SourceQuestionID: "hasPet", TriggerValue: "yes", Action: model.ActionShow},
			}},
			{ID: "tricks", Type: model.QuestionTypeCheckbox, Label: "Tricks", Options: []model.QuestionOption{
				{Label: "Sit", Value: "sit"}, {Label: "Roll", Value: "roll"},
			}, Dependencies: []model.QuestionDependency{
				{SourceQuestionID: "hasPet", TriggerValue: "yes", Action: model.ActionShow},
			}},
		}}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	return form
}

func TestRenderFollowsDependencies(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{"Rex"}, multiIdx: [][]int{{0, 1}}}
	out, err := New(WithPromptDriver(driver)).Render(context.Background(), petForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}

	var got map[string]any
	if err := json.Unmarshal(out, &got); err != nil {
		t.Fatalf("decode: %v", err)
	}
	want := map[string]any{"hasPet": "yes", "petName": "Rex", "tricks": []any{"sit", "roll"}}
	if diff := cmp.Diff(want, got); diff != "" {
		t.Fatalf("values mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderSkipsHiddenFields(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{1}}
	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatFormURLEncoded)).
		Render(context.Background(), petForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if string(out) != "hasPet=no" {
		t.Fatalf("unexpected output %q", out)
	}
	if diff := cmp.Diff([]string{"Do you have a pet?"}, driver.prompted); diff != "" {
		t.Fatalf("prompts mismatch (-want +got):\n%s", diff)
	}
}

func TestRenderRepromptsInvalidAnswers(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{"", "Rex"}, multiIdx: [][]int{nil}}
	_, err := New(WithPromptDriver(driver)).Render(context.Background(), petForm(t), render.RenderOptions{})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if driver.inputPos != 2 {
		t.Fatalf("expected petName prompted twice, got %d", driver.inputPos)
	}
	found := false
	for _, msg := range driver.infoMessages {
		if strings.Contains(msg, "Pet name is required") {
			found = true
		}
	}
	if !found {
		t.Fatalf("expected required message, got %v", driver.infoMessages)
	}
}

func TestRenderGivesUpAfterMaxAttempts(t *testing.T) {
	driver := &stubDriver{selectIdx: []int{0}, inputs: []string{"", ""}}
	_, err := New(WithPromptDriver(driver), WithMaxAttempts(2)).Render(context.Background(), petForm(t), render.RenderOptions{})
	if !errors.Is(err, ErrTooManyAttempts) {
		t.Fatalf("expected ErrTooManyAttempts, got %v", err)
	}
}

func TestRenderPrettyAndInitialErrors(t *testing.T) {
	form, err := compiler.Compile(model.FormDefinition{
		ID: "account",
		Sections: []model.FormSection{{Questions: []model.FormQuestion{
			{ID: "secret", Type: model.QuestionTypePassword, Label: "Password"},
			{ID: "bio", Type: model.QuestionTypeTextArea, Label: "Bio"},
			{ID: "agree", Label: "Agree", Metadata: &model.FieldMetadata{Name: "agree", Type: model.PrimitiveBoolean}},
		}}},
	})
	if err != nil {
		t.Fatalf("compile: %v", err)
	}
	driver := &stubDriver{passwords: []string{"hunter2"}, textAreas: []string{"hi"}, confirm: []bool{true}}
	out, err := New(WithPromptDriver(driver), WithOutputFormat(OutputFormatPrettyText), WithTheme(Theme{ErrorPrefix: "! "})).
		Render(context.Background(), form, render.RenderOptions{Errors: map[string][]string{"secret": {"too weak"}}})
	if err != nil {
		t.Fatalf("render: %v", err)
	}
	if got := string(out); got != "Password: hunter2\nBio: hi\nAgree: true\n" {
		t.Fatalf("unexpected output %q", got)
	}
	if diff := cmp.Diff([]string{"! Password: too weak"}, driver.infoMessages); diff != "" {
		t.Fatalf("messages mismatch (-want +got):\n%s", diff)
	}
}

func TestContentType(t *testing.T) {
	if got := New(WithOutputFormat(OutputFormatFormURLEncoded)).ContentType(); got != "application/x-www-form-urlencoded" {
		t.Fatalf("unexpected content type %q", got)
	}
	if New().Name() != "tui" {
		t.Fatalf("unexpected name")
	}
}

func TestRenderRequiresForm(t *testing.T) {
	if _, err := New(WithPromptDriver(&stubDriver{})).Render(context.Background(), nil, render.RenderOptions{}); err == nil {
		t.Fatalf("expected error for nil form")
	}
}
