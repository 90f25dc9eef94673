// Package compiler turns an authored FormDefinition into a render-ready
// CompiledForm. Compilation is all-or-nothing: the first invalid question
// aborts the whole form and no partial result is returned.
package compiler

import (
	"errors"
	"strings"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdef/pkg/dependency"
	"github.com/goliatone/go-formdef/pkg/inspect"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/rules"
)

const (
	defaultMethod     = "POST"
	defaultSubmitText = "Submit"
	checkboxTrue      = "true"
)

var allowedMethods = map[string]struct{}{
	"GET":    {},
	"POST":   {},
	"PUT":    {},
	"PATCH":  {},
	"DELETE": {},
}

// Option configures a Compiler.
type Option func(*Compiler)

// WithLogger sets the logger used for compile diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(c *Compiler) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithLocale selects which errorMessages entry rule messages surface.
func WithLocale(locale string) Option {
	return func(c *Compiler) {
		c.locale = strings.TrimSpace(locale)
	}
}

// WithTranslator supplies localized rule message templates.
func WithTranslator(translator rules.Translator) Option {
	return func(c *Compiler) {
		c.translator = translator
	}
}

// WithSanitizer replaces the text sanitizer applied to labels, hints and
// titles. Passing nil disables sanitizing.
func WithSanitizer(fn func(string) string) Option {
	return func(c *Compiler) {
		c.sanitizer = sanitizerCustom
		if fn == nil {
			fn = passthrough
			c.sanitizer = sanitizerNone
		}
		c.sanitize = fn
	}
}

// WithProfile names the message and sanitizer configuration. Compilers that
// share a cache but load different translator catalogs of the same type must
// use distinct profiles.
func WithProfile(name string) Option {
	return func(c *Compiler) {
		c.profile = strings.TrimSpace(name)
	}
}

// Compiler compiles form definitions. It holds no per-compile state and is
// safe for concurrent use.
type Compiler struct {
	logger     *zap.Logger
	locale     string
	translator rules.Translator
	sanitize   func(string) string
	sanitizer  string
	profile    string
}

// New constructs a Compiler.
func New(opts ...Option) *Compiler {
	c := &Compiler{
		logger:    zap.NewNop(),
		sanitize:  SanitizeText,
		sanitizer: sanitizerStrict,
	}
	for _, opt := range opts {
		if opt != nil {
			opt(c)
		}
	}
	return c
}

// Compile compiles def with default options.
func Compile(def model.FormDefinition) (*model.CompiledForm, error) {
	return New().Compile(def)
}

// Compile walks def in section then question order and returns the compiled
// form, or a ConfigurationError, ReferenceError or CycleError.
func (c *Compiler) Compile(def model.FormDefinition) (*model.CompiledForm, error) {
	form, err := c.compile(def)
	if err != nil {
		c.logger.Warn("form compilation failed",
			zap.String("form", def.ID),
			zap.String("kind", errorKind(err)),
			zap.Error(err),
		)
		return nil, err
	}
	c.logger.Debug("form compiled",
		zap.String("form", form.ID),
		zap.Int("sections", len(form.Sections)),
		zap.Int("fields", len(form.Fields())),
	)
	return form, nil
}

func (c *Compiler) compile(def model.FormDefinition) (*model.CompiledForm, error) {
	if strings.TrimSpace(def.ID) == "" {
		return nil, model.Configf("", "form id is required")
	}
	method := strings.ToUpper(strings.TrimSpace(def.Method))
	if method == "" {
		method = defaultMethod
	}
	if _, ok := allowedMethods[method]; !ok {
		return nil, model.Configf("", "unsupported form method %q", def.Method)
	}

	ids, deps, err := collect(def)
	if err != nil {
		return nil, err
	}
	graph, err := dependency.Resolve(deps, ids)
	if err != nil {
		return nil, err
	}
	c.logger.Debug("dependencies resolved",
		zap.String("form", def.ID),
		zap.Int("edges", graph.Len()),
		zap.Strings("targets", graph.Targets()),
	)

	normalizer := rules.New(rules.Options{Locale: c.locale, Translator: c.translator})

	submit := c.sanitize(def.SubmitButtonText)
	if submit == "" {
		submit = defaultSubmitText
	}
	form := &model.CompiledForm{
		ID:               def.ID,
		Title:            c.sanitize(def.Title),
		Action:           strings.TrimSpace(def.Action),
		Method:           method,
		SubmitButtonText: submit,
		Sections:         make([]model.CompiledSection, 0, len(def.Sections)),
	}

	keys := make(map[string]string)
	for _, section := range def.Sections {
		compiled := model.CompiledSection{
			Title:  c.sanitize(section.Title),
			Hint:   c.sanitize(section.Hint),
			Fields: make([]model.CompiledField, 0, len(section.Questions)),
		}
		for _, question := range section.Questions {
			field, err := c.compileQuestion(question, normalizer, graph)
			if err != nil {
				return nil, err
			}
			for _, option := range field.Options {
				if owner, taken := keys[option.Key]; taken {
					return nil, model.Configf(question.ID, "option key %q collides with question %q", option.Key, owner)
				}
				keys[option.Key] = question.ID
			}
			compiled.Fields = append(compiled.Fields, field)
		}
		form.Sections = append(form.Sections, compiled)
	}

	return form, nil
}

// collect gathers question ids in form order and every dependency with its
// target resolved. Empty and duplicate ids are rejected.
func collect(def model.FormDefinition) ([]string, []model.QuestionDependency, error) {
	var (
		ids  []string
		deps []model.QuestionDependency
		seen = make(map[string]struct{})
	)
	for sIdx, section := range def.Sections {
		for qIdx, question := range section.Questions {
			id := strings.TrimSpace(question.ID)
			if id == "" {
				return nil, nil, model.Configf("", "section %d question %d: id is required", sIdx, qIdx)
			}
			if id != question.ID {
				return nil, nil, model.Configf(question.ID, "id must not contain surrounding whitespace")
			}
			if _, dup := seen[id]; dup {
				return nil, nil, model.Configf(id, "duplicate question id")
			}
			seen[id] = struct{}{}
			ids = append(ids, id)

			for _, dep := range question.Dependencies {
				if dep.TargetQuestionID == "" {
					dep.TargetQuestionID = id
				}
				deps = append(deps, dep)
			}
		}
	}
	return ids, deps, nil
}

func (c *Compiler) compileQuestion(question model.FormQuestion, normalizer *rules.Normalizer, graph *dependency.Graph) (model.CompiledField, error) {
	descriptor, inferred, err := c.describe(question)
	if err != nil {
		return model.CompiledField{}, err
	}

	field := model.CompiledField{
		ID:             question.ID,
		Type:           descriptor.WidgetKind,
		InputSubtype:   descriptor.InputSubtype,
		Label:          descriptor.Label,
		Hint:           descriptor.Hint,
		Disabled:       question.IsDisabled,
		Value:          append([]string(nil), question.Value...),
		Dependencies:   graph.For(question.ID),
		ValidateOnBlur: question.ValidateOnBlur,
	}

	if field.Type.IsChoice() {
		options, err := c.compileOptions(question, descriptor, inferred)
		if err != nil {
			return model.CompiledField{}, err
		}
		field.Options = options
	} else if len(question.Options) > 0 {
		c.logger.Debug("options ignored for non-choice question",
			zap.String("question", question.ID),
			zap.String("type", string(field.Type)),
		)
	}

	compiledRules, err := normalizer.Normalize(question.ValidationRules, descriptor)
	if err != nil {
		return model.CompiledField{}, err
	}
	field.Rules = compiledRules
	field.Required = field.HasRule(model.RuleRequired)

	return field, nil
}

// describe produces the field descriptor. Explicitly typed questions skip
// metadata inspection; untyped questions must carry metadata. The returned
// bool reports whether the widget was inferred.
func (c *Compiler) describe(question model.FormQuestion) (model.FieldDescriptor, bool, error) {
	if question.Type != "" {
		if !question.Type.Valid() {
			return model.FieldDescriptor{}, false, model.Configf(question.ID, "unsupported question type %q", question.Type)
		}
		label := c.sanitize(question.Label)
		if label == "" {
			label = question.ID
		}
		return model.FieldDescriptor{
			Name:             question.ID,
			WidgetKind:       question.Type,
			InputSubtype:     inspect.SubtypeFor(question.Type),
			Label:            label,
			Hint:             c.sanitize(question.Hint),
			InferredRequired: question.IsRequired,
		}, false, nil
	}

	if question.Metadata == nil {
		return model.FieldDescriptor{}, false, model.Configf(question.ID, "question type is required when no field metadata is bound")
	}

	meta := *question.Metadata
	if meta.Name == "" {
		meta.Name = question.ID
	}
	descriptor := inspect.Inspect(meta)
	descriptor.Name = question.ID
	if label := c.sanitize(question.Label); label != "" {
		descriptor.Label = label
	} else {
		descriptor.Label = c.sanitize(descriptor.Label)
		if descriptor.Label == "" {
			descriptor.Label = question.ID
		}
	}
	if hint := c.sanitize(question.Hint); hint != "" {
		descriptor.Hint = hint
	} else {
		descriptor.Hint = c.sanitize(descriptor.Hint)
	}
	descriptor.InferredRequired = descriptor.InferredRequired || question.IsRequired
	return descriptor, true, nil
}

func (c *Compiler) compileOptions(question model.FormQuestion, descriptor model.FieldDescriptor, inferred bool) ([]model.CompiledOption, error) {
	source := question.Options
	if len(source) == 0 {
		if !(inferred && descriptor.WidgetKind == model.QuestionTypeCheckbox) {
			return nil, model.Configf(question.ID, "%s question requires a non-empty options list", descriptor.WidgetKind)
		}
		source = []model.QuestionOption{{ID: question.ID, Label: descriptor.Label, Value: checkboxTrue}}
	}

	out := make([]model.CompiledOption, 0, len(source))
	seen := make(map[string]struct{}, len(source))
	for _, option := range source {
		if _, dup := seen[option.Value]; dup {
			return nil, model.Configf(question.ID, "duplicate option value %q", option.Value)
		}
		seen[option.Value] = struct{}{}

		label := c.sanitize(option.Label)
		if label == "" {
			label = option.Value
		}
		out = append(out, model.CompiledOption{
			Key:      OptionKey(question.ID, option.Value),
			ID:       option.ID,
			Label:    label,
			Value:    option.Value,
			Selected: question.Value.Contains(option.Value),
		})
	}
	return out, nil
}

// OptionKey is the composite option identity `{questionId}_{optionValue}`.
// It depends on nothing else, so it is stable across re-compilations and
// option reordering.
func OptionKey(questionID, value string) string {
	return questionID + "_" + value
}

func errorKind(err error) string {
	switch {
	case errors.Is(err, model.ErrConfiguration):
		return "configuration"
	case errors.Is(err, model.ErrReference):
		return "reference"
	case errors.Is(err, model.ErrCycle):
		return "cycle"
	default:
		return "unknown"
	}
}
