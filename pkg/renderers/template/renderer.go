// Package template renders compiled forms through pongo2 templates. The
// embedded bundle mirrors the html renderer's markup so the client evaluator
// contract holds for both; callers swap in their own bundle with
// WithTemplatesFS or WithTemplatesDir.
package template

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"sort"
	"strings"

	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
	rendertemplate "github.com/goliatone/go-formdef/pkg/render/template"
	"github.com/goliatone/go-formdef/pkg/render/template/gotemplate"
	"github.com/goliatone/go-formdef/pkg/widgets"
)

// Name is the registry name of the template renderer.
const Name = "template"

// FormTemplate is the entry template looked up in the bundle.
const FormTemplate = "templates/form"

// ControlCustom is the field.control value of fields resolved to a widget
// registered outside the built-in set.
const ControlCustom = "custom"

type Option func(*config)

type config struct {
	templateFS       fs.FS
	templateRenderer rendertemplate.TemplateRenderer
	widgets          *widgets.Registry
	filters          map[string]rendertemplate.Filter
}

// WithTemplatesFS supplies an alternate template bundle via fs.FS. The bundle
// must provide templates/form.tpl.
func WithTemplatesFS(files fs.FS) Option {
	return func(cfg *config) {
		cfg.templateFS = files
	}
}

// WithTemplatesDir loads templates from a directory on disk.
func WithTemplatesDir(path string) Option {
	return func(cfg *config) {
		if path == "" {
			return
		}
		cfg.templateFS = os.DirFS(path)
	}
}

// WithTemplateRenderer injects a custom template renderer implementation.
func WithTemplateRenderer(renderer rendertemplate.TemplateRenderer) Option {
	return func(cfg *config) {
		if renderer != nil {
			cfg.templateRenderer = renderer
		}
	}
}

// WithWidgets resolves data-widget names through registry.
func WithWidgets(registry *widgets.Registry) Option {
	return func(cfg *config) {
		if registry != nil {
			cfg.widgets = registry
		}
	}
}

// WithFilter makes fn available to templates as name. The engine must
// implement template.FilterRegistrar.
func WithFilter(name string, fn rendertemplate.Filter) Option {
	return func(cfg *config) {
		if cfg.filters == nil {
			cfg.filters = make(map[string]rendertemplate.Filter)
		}
		cfg.filters[name] = fn
	}
}

// Renderer implements render.Renderer on a TemplateRenderer.
type Renderer struct {
	templates rendertemplate.TemplateRenderer
	widgets   *widgets.Registry
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the template renderer applying any provided options.
func New(options ...Option) (*Renderer, error) {
	cfg := config{templateFS: TemplatesFS()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(&cfg)
	}

	if cfg.templateFS == nil {
		cfg.templateFS = TemplatesFS()
	}
	if cfg.widgets == nil {
		cfg.widgets = widgets.NewRegistry()
	}

	renderer := cfg.templateRenderer
	if renderer == nil {
		engine, err := gotemplate.New(gotemplate.WithFS(cfg.templateFS))
		if err != nil {
			return nil, fmt.Errorf("template renderer: configure template renderer: %w", err)
		}
		renderer = engine
	}
	if err := registerFilters(renderer, cfg.filters); err != nil {
		return nil, err
	}

	return &Renderer{templates: renderer, widgets: cfg.widgets}, nil
}

func registerFilters(renderer rendertemplate.TemplateRenderer, filters map[string]rendertemplate.Filter) error {
	if len(filters) == 0 {
		return nil
	}
	registrar, ok := renderer.(rendertemplate.FilterRegistrar)
	if !ok {
		return fmt.Errorf("template renderer: %T does not accept filters", renderer)
	}
	names := make([]string, 0, len(filters))
	for name := range filters {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		err := registrar.RegisterFilter(name, filters[name])
		if err != nil && !errors.Is(err, gotemplate.ErrFilterExists) {
			return fmt.Errorf("template renderer: register filter %q: %w", name, err)
		}
	}
	return nil
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "text/html; charset=utf-8"
}

func (r *Renderer) Render(_ context.Context, form *model.CompiledForm, opts render.RenderOptions) ([]byte, error) {
	if r.templates == nil {
		return nil, fmt.Errorf("template renderer: template renderer is nil")
	}
	if form == nil {
		return nil, fmt.Errorf("template renderer: compiled form is required")
	}

	data, err := r.view(form, opts)
	if err != nil {
		return nil, err
	}
	result, err := r.templates.RenderTemplate(FormTemplate, data)
	if err != nil {
		return nil, fmt.Errorf("template renderer: render template: %w", err)
	}
	return []byte(result), nil
}

type themeView struct {
	Name       string `json:"name,omitempty"`
	Variant    string `json:"variant,omitempty"`
	Style      string `json:"style,omitempty"`
	Stylesheet string `json:"stylesheet,omitempty"`
}

type sectionView struct {
	Title  string      `json:"title,omitempty"`
	Hint   string      `json:"hint,omitempty"`
	Fields []fieldView `json:"fields"`
}

type fieldView struct {
	ID             string                 `json:"id"`
	Widget         string                 `json:"widget"`
	Control        string                 `json:"control"`
	InputType      string                 `json:"inputType"`
	Choice         bool                   `json:"choice"`
	Label          string                 `json:"label"`
	Hint           string                 `json:"hint,omitempty"`
	Text           string                 `json:"text,omitempty"`
	Required       bool                   `json:"required"`
	NativeRequired bool                   `json:"nativeRequired"`
	Disabled       bool                   `json:"disabled"`
	ValidateOnBlur bool                   `json:"validateOnBlur"`
	DescribedBy    string                 `json:"describedBy,omitempty"`
	Options        []model.CompiledOption `json:"options,omitempty"`
	Rules          []model.CompiledRule   `json:"rules,omitempty"`
	Dependencies   []model.DependencyEdge `json:"dependencies,omitempty"`
	Errors         []string               `json:"errors,omitempty"`
}

func (r *Renderer) view(form *model.CompiledForm, opts render.RenderOptions) (map[string]any, error) {
	errs := render.MapErrors(*form, opts.Errors)

	method := "post"
	if strings.EqualFold(form.Method, "GET") {
		method = "get"
	}

	var th themeView
	if cfg := opts.Theme; cfg != nil {
		th = themeView{
			Name:    cfg.Theme,
			Variant: cfg.Variant,
			Style:   render.CSSVars(cfg.CSSVars),
		}
		if cfg.AssetURL != nil {
			th.Stylesheet = cfg.AssetURL(render.StylesheetName)
		}
	}

	sections := make([]sectionView, 0, len(form.Sections))
	for _, section := range form.Sections {
		sv := sectionView{Title: section.Title, Hint: section.Hint, Fields: make([]fieldView, 0, len(section.Fields))}
		for _, field := range section.Fields {
			fv, err := r.field(field, errs.Fields[field.ID])
			if err != nil {
				return nil, err
			}
			sv.Fields = append(sv.Fields, fv)
		}
		sections = append(sections, sv)
	}

	return map[string]any{
		"form":      form,
		"method":    method,
		"multipart": render.HasFileUpload(form),
		"locale":    opts.Locale,
		"theme":     th,
		"hidden":    render.HiddenInputs(form.Method, opts),
		"errors":    errs,
		"sections":  sections,
	}, nil
}

func (r *Renderer) field(field model.CompiledField, messages []string) (fieldView, error) {
	name, _, ok := r.widgets.Resolve(field)
	if !ok {
		return fieldView{}, fmt.Errorf("template renderer: no widget for field %q of type %s", field.ID, field.Type)
	}

	ctx := widgets.Context{Field: field, Errors: messages}
	fv := fieldView{
		ID:             field.ID,
		Widget:         name,
		Label:          field.Label,
		Hint:           field.Hint,
		Required:       field.Required,
		Disabled:       field.Disabled,
		ValidateOnBlur: field.ValidateOnBlur,
		DescribedBy:    ctx.DescribedBy(),
		Options:        field.Options,
		Rules:          field.Rules,
		Dependencies:   field.Dependencies,
		Errors:         messages,
	}

	switch name {
	case widgets.WidgetRadio:
		fv.Control, fv.InputType, fv.Choice = "radio", "radio", true
		fv.NativeRequired = field.Required
	case widgets.WidgetCheckbox:
		fv.Control, fv.InputType, fv.Choice = "checkbox", "checkbox", true
	case widgets.WidgetSelect:
		fv.Control = "select"
	case widgets.WidgetTextArea:
		fv.Control = "textarea"
		fv.Text = strings.Join(field.Value, "\n")
	case widgets.WidgetFile:
		fv.Control, fv.InputType = "input", "file"
	default:
		// Widgets outside the built-in set render through widget.tpl, which
		// bundles override and branch on field.widget.
		fv.Control = "input"
		if name != widgets.WidgetInput {
			fv.Control = ControlCustom
		}
		fv.InputType = field.InputSubtype
		if field.Type == model.QuestionTypeDate {
			fv.InputType = "date"
		}
		if fv.InputType == "" {
			fv.InputType = "text"
		}
		if len(field.Value) > 0 && field.Type != model.QuestionTypePassword {
			fv.Text = field.Value[0]
		}
	}
	return fv, nil
}
