package render

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/goliatone/go-formdef/pkg/document"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/widgets"
)

// Data attributes carrying the client evaluator contract.
const (
	AttrFormID         = "data-form-id"
	AttrField          = "data-field"
	AttrWidget         = "data-widget"
	AttrValidation     = "data-validation"
	AttrDependencies   = "data-dependencies"
	AttrValidateOnBlur = "data-validate-on-blur"
	AttrTheme          = "data-theme"
	AttrThemeVariant   = "data-theme-variant"
)

// StylesheetName is the asset key resolved through the theme's AssetURL.
const StylesheetName = "formdef.stylesheet"

// Builder turns compiled forms into output documents using a widget
// registry.
type Builder struct {
	widgets *widgets.Registry
}

// NewBuilder constructs a Builder. A nil registry uses the built-in widgets.
func NewBuilder(registry *widgets.Registry) *Builder {
	if registry == nil {
		registry = widgets.NewRegistry()
	}
	return &Builder{widgets: registry}
}

// Build builds a document with the built-in widgets.
func Build(form *model.CompiledForm, opts RenderOptions) (*document.Document, error) {
	return NewBuilder(nil).Build(form, opts)
}

// Build is deterministic: the same form and options always produce the same
// tree. Fields carry their rule descriptors in data-validation and, when they
// are dependency targets, their edges in data-dependencies.
func (b *Builder) Build(form *model.CompiledForm, opts RenderOptions) (*document.Document, error) {
	if form == nil {
		return nil, errors.New("render: compiled form is required")
	}

	method := strings.ToUpper(form.Method)
	formMethod := "post"
	if method == "GET" {
		formMethod = "get"
	}

	root := document.El("form",
		document.A("id", "formdef-"+form.ID),
		document.A("class", "formdef"),
		document.A("action", form.Action),
		document.A("method", formMethod),
		document.A(AttrFormID, form.ID),
	)
	if HasFileUpload(form) {
		root.Set("enctype", "multipart/form-data")
	}
	if opts.Locale != "" {
		root.Set("lang", opts.Locale)
	}
	if cfg := opts.Theme; cfg != nil {
		if cfg.Theme != "" {
			root.Set(AttrTheme, cfg.Theme)
		}
		if cfg.Variant != "" {
			root.Set(AttrThemeVariant, cfg.Variant)
		}
		if style := CSSVars(cfg.CSSVars); style != "" {
			root.Set("style", style)
		}
		if cfg.AssetURL != nil {
			if href := cfg.AssetURL(StylesheetName); href != "" {
				root.Append(document.El("link", document.A("rel", "stylesheet"), document.A("href", href)))
			}
		}
	}

	if form.Title != "" {
		root.Append(document.El("h2", document.A("class", "formdef-title")).Append(document.Text(form.Title)))
	}

	errs := MapErrors(*form, opts.Errors)
	if len(errs.Form) > 0 {
		list := document.El("ul", document.A("class", "formdef-form-errors"), document.A("role", "alert"))
		for _, message := range errs.Form {
			list.Append(document.El("li").Append(document.Text(message)))
		}
		root.Append(list)
	}

	for _, hidden := range HiddenInputs(method, opts) {
		root.Append(document.El("input",
			document.A("type", "hidden"),
			document.A("name", hidden.Name),
			document.A("value", hidden.Value),
		))
	}

	for idx, section := range form.Sections {
		node := document.El("section",
			document.A("class", "formdef-section"),
			document.A("data-section", strconv.Itoa(idx)),
		)
		if section.Title != "" {
			node.Append(document.El("h3").Append(document.Text(section.Title)))
		}
		if section.Hint != "" {
			node.Append(document.El("p", document.A("class", "formdef-section-hint")).Append(document.Text(section.Hint)))
		}
		for _, field := range section.Fields {
			wrapper, err := b.field(field, errs.Fields[field.ID])
			if err != nil {
				return nil, err
			}
			node.Append(wrapper)
		}
		root.Append(node)
	}

	root.Append(document.El("div", document.A("class", "formdef-actions")).Append(
		document.El("button", document.A("type", "submit")).Append(document.Text(form.SubmitButtonText)),
	))

	return &document.Document{Root: root}, nil
}

func (b *Builder) field(field model.CompiledField, messages []string) (*document.Node, error) {
	name, build, ok := b.widgets.Resolve(field)
	if !ok {
		return nil, fmt.Errorf("render: no widget for field %q of type %s", field.ID, field.Type)
	}

	wrapper := document.El("div",
		document.A("class", "formdef-field"),
		document.A(AttrField, field.ID),
		document.A(AttrWidget, name),
	)
	if len(field.Rules) > 0 {
		payload, err := json.Marshal(field.Rules)
		if err != nil {
			return nil, fmt.Errorf("render: encode rules for %q: %w", field.ID, err)
		}
		wrapper.Set(AttrValidation, string(payload))
	}
	if len(field.Dependencies) > 0 {
		payload, err := json.Marshal(field.Dependencies)
		if err != nil {
			return nil, fmt.Errorf("render: encode dependencies for %q: %w", field.ID, err)
		}
		wrapper.Set(AttrDependencies, string(payload))
	}
	if field.ValidateOnBlur {
		wrapper.Set(AttrValidateOnBlur, "true")
	}

	wrapper.Append(build(widgets.Context{Field: field, Errors: messages})...)
	return wrapper, nil
}

// HiddenInputs lists the hidden inputs emitted for a form submitted with
// method: the method override, the CSRF token, then HiddenFields by name.
func HiddenInputs(method string, opts RenderOptions) []HiddenField {
	method = strings.ToUpper(method)
	var out []HiddenField
	if method != "" && method != "GET" && method != "POST" {
		out = append(out, HiddenField{Name: MethodOverrideField, Value: method})
	}
	if opts.CSRFToken != "" {
		name := strings.TrimSpace(opts.CSRFField)
		if name == "" {
			name = DefaultCSRFField
		}
		out = append(out, HiddenField{Name: name, Value: opts.CSRFToken})
	}
	return append(out, SortedHiddenFields(opts.HiddenFields)...)
}

// HasFileUpload reports whether the form needs a multipart encoding.
func HasFileUpload(form *model.CompiledForm) bool {
	for _, section := range form.Sections {
		for _, field := range section.Fields {
			if field.Type == model.QuestionTypeFileUpload {
				return true
			}
		}
	}
	return false
}

// CSSVars renders theme variables as an inline style value, sorted by name.
func CSSVars(vars map[string]string) string {
	if len(vars) == 0 {
		return ""
	}
	parts := make([]string, 0, len(vars))
	for _, key := range sortedKeys(vars) {
		name := strings.TrimSpace(key)
		if name == "" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
		}
		parts = append(parts, name+":"+vars[key])
	}
	return strings.Join(parts, ";")
}
