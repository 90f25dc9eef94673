// Package html serializes output documents as HTML markup through
// golang.org/x/net/html, which owns escaping and void-element handling.
package html

import (
	"bytes"
	"context"
	"fmt"
	"io"

	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/goliatone/go-formdef/pkg/document"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/widgets"
)

// Name is the registry name of the HTML renderer.
const Name = "html"

// Option configures the renderer.
type Option func(*Renderer)

// WithWidgets swaps the widget registry used to build field elements.
func WithWidgets(registry *widgets.Registry) Option {
	return func(r *Renderer) {
		if registry != nil {
			r.builder = render.NewBuilder(registry)
		}
	}
}

// Renderer renders compiled forms as an HTML fragment rooted at <form>.
type Renderer struct {
	builder *render.Builder
}

var _ render.Renderer = (*Renderer)(nil)

// New constructs the HTML renderer.
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
	return "text/html; charset=utf-8"
}

// Render builds the document and serializes it.
func (r *Renderer) Render(_ context.Context, form *model.CompiledForm, opts render.RenderOptions) ([]byte, error) {
	doc, err := r.builder.Build(form, opts)
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := Write(&buf, doc); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// Write serializes doc to w.
func Write(w io.Writer, doc *document.Document) error {
	if doc == nil || doc.Root == nil {
		return fmt.Errorf("html renderer: document is empty")
	}
	if err := html.Render(w, convert(doc.Root)); err != nil {
		return fmt.Errorf("html renderer: serialize: %w", err)
	}
	return nil
}

func convert(node *document.Node) *html.Node {
	if node.IsText() {
		return &html.Node{Type: html.TextNode, Data: node.Text}
	}
	out := &html.Node{
		Type:     html.ElementNode,
		Data:     node.Tag,
		DataAtom: atom.Lookup([]byte(node.Tag)),
	}
	for _, attr := range node.Attrs {
		out.Attr = append(out.Attr, html.Attribute{Key: attr.Key, Val: attr.Val})
	}
	for _, child := range node.Children {
		out.AppendChild(convert(child))
	}
	return out
}
