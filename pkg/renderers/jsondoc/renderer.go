// Package jsondoc renders a compiled form as JSON: the compiled form itself
// plus the output document tree, for client-side renderers that build their
// own markup.
package jsondoc

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"

	"github.com/goliatone/go-formdef/pkg/document"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
)

// Name is the registry name of the JSON renderer.
const Name = "json"

// Payload is the rendered JSON shape.
type Payload struct {
	Form     *model.CompiledForm `json:"form"`
	Document *document.Document  `json:"document,omitempty"`
	Errors   render.ErrorMapping `json:"errors"`
}

// Option configures the renderer.
type Option func(*Renderer)

// WithoutDocument omits the document tree, leaving only the compiled form.
func WithoutDocument() Option {
	return func(r *Renderer) {
		r.skipDocument = true
	}
}

// WithIndent pretty-prints the output.
func WithIndent(indent string) Option {
	return func(r *Renderer) {
		r.indent = indent
	}
}

// Renderer implements render.Renderer.
type Renderer struct {
	builder      *render.Builder
	skipDocument bool
	indent       string
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the JSON renderer.
func New(options ...Option) *Renderer {
	r := &Renderer{builder: render.NewBuilder(nil)}
	for _, opt := range options {
		if opt != nil {
			opt(r)
		}
	}
	return r
}

func (r *Renderer) Name() string {
	return Name
}

func (r *Renderer) ContentType() string {
	return "application/json"
}

func (r *Renderer) Render(_ context.Context, form *model.CompiledForm, opts render.RenderOptions) ([]byte, error) {
	if form == nil {
		return nil, fmt.Errorf("json renderer: compiled form is required")
	}
	payload := Payload{
		Form:   form,
		Errors: render.MapErrors(*form, opts.Errors),
	}
	if !r.skipDocument {
		doc, err := r.builder.Build(form, opts)
		if err != nil {
			return nil, err
		}
		payload.Document = doc
	}

	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(false)
	if r.indent != "" {
		enc.SetIndent("", r.indent)
	}
	if err := enc.Encode(payload); err != nil {
		return nil, fmt.Errorf("json renderer: encode: %w", err)
	}
	return buf.Bytes(), nil
}
