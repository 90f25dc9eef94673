package orchestrator

import (
	"context"
	"errors"
	"fmt"

	"go.uber.org/zap"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/loader"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/render"
	"github.com/goliatone/go-formdef/pkg/renderers/html"
	"github.com/goliatone/go-formdef/pkg/renderers/jsondoc"
	rendertemplate "github.com/goliatone/go-formdef/pkg/renderers/template"
)

const defaultRendererName = html.Name

// ErrFormNotFound is returned when a request names a form the store does not
// hold.
var ErrFormNotFound = errors.New("orchestrator: form not found")

// Compiler compiles definitions. *cache.Compiler satisfies it directly;
// plain *compiler.Compiler values are adapted by WithFormCompiler.
type Compiler interface {
	Compile(ctx context.Context, def model.FormDefinition) (*model.CompiledForm, error)
}

// CompilerFunc adapts plain functions to the Compiler interface.
type CompilerFunc func(ctx context.Context, def model.FormDefinition) (*model.CompiledForm, error)

// Compile executes the wrapped function.
func (fn CompilerFunc) Compile(ctx context.Context, def model.FormDefinition) (*model.CompiledForm, error) {
	return fn(ctx, def)
}

// Option customises the orchestrator configuration.
type Option func(*Orchestrator)

// WithStore sets the definition store used to resolve Request.FormID.
func WithStore(store *loader.Store) Option {
	return func(o *Orchestrator) {
		o.store = store
	}
}

// WithCompiler injects the compile step, typically a memoizing
// *cache.Compiler.
func WithCompiler(c Compiler) Option {
	return func(o *Orchestrator) {
		o.compiler = c
	}
}

// WithFormCompiler uses a plain compiler.
func WithFormCompiler(c *compiler.Compiler) Option {
	return func(o *Orchestrator) {
		if c == nil {
			return
		}
		o.compiler = CompilerFunc(func(_ context.Context, def model.FormDefinition) (*model.CompiledForm, error) {
			return c.Compile(def)
		})
	}
}

// WithRegistry injects a renderer registry.
func WithRegistry(registry *render.Registry) Option {
	return func(o *Orchestrator) {
		o.registry = registry
	}
}

// WithRenderers registers additional renderers on the registry in use.
func WithRenderers(renderers ...render.Renderer) Option {
	return func(o *Orchestrator) {
		o.extra = append(o.extra, renderers...)
	}
}

// WithDefaultRenderer overrides the renderer used when a request omits an
// explicit Renderer field.
func WithDefaultRenderer(name string) Option {
	return func(o *Orchestrator) {
		o.defaultRenderer = name
	}
}

// WithTransformers registers transformers run in order on a copy of the
// definition before it is compiled.
func WithTransformers(transformers ...Transformer) Option {
	return func(o *Orchestrator) {
		o.transformers = append(o.transformers, transformers...)
	}
}

// WithLogger sets the logger used for pipeline diagnostics.
func WithLogger(logger *zap.Logger) Option {
	return func(o *Orchestrator) {
		if logger != nil {
			o.logger = logger
		}
	}
}

// Orchestrator coordinates the pipeline from form definition to rendered
// output. It applies sensible defaults (plain compiler, html/json/template
// renderers) while remaining open to dependency injection.
type Orchestrator struct {
	store           *loader.Store
	compiler        Compiler
	registry        *render.Registry
	extra           []render.Renderer
	defaultRenderer string
	transformers    []Transformer
	logger          *zap.Logger
	initialiseErr   error
}

// New constructs an Orchestrator applying any provided options.
func New(options ...Option) *Orchestrator {
	o := &Orchestrator{logger: zap.NewNop()}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(o)
	}
	o.applyDefaults()
	return o
}

// Request describes the inputs required to render a form.
type Request struct {
	// FormID selects a definition from the store. Ignored when Definition is
	// supplied.
	FormID string

	// Definition bypasses the store for inline definitions.
	Definition *model.FormDefinition

	// Renderer names the renderer to use. If empty, the orchestrator falls back
	// to the configured default renderer.
	Renderer string

	// RenderOptions carries per-request data such as the CSRF token, theme or
	// server-side errors.
	RenderOptions render.RenderOptions
}

// Output is a rendered form plus the content type of the renderer that
// produced it.
type Output struct {
	Renderer    string
	ContentType string
	Body        []byte
}

// Generate renders the requested form and returns the bytes.
func (o *Orchestrator) Generate(ctx context.Context, req Request) ([]byte, error) {
	out, err := o.Render(ctx, req)
	if err != nil {
		return nil, err
	}
	return out.Body, nil
}

// Render executes the resolve → transform → compile → render sequence.
func (o *Orchestrator) Render(ctx context.Context, req Request) (*Output, error) {
	form, err := o.Compile(ctx, req)
	if err != nil {
		return nil, err
	}

	renderer, err := o.rendererFor(req.Renderer)
	if err != nil {
		return nil, err
	}

	body, err := renderer.Render(ctx, form, req.RenderOptions)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: render output: %w", err)
	}
	o.logger.Debug("form rendered",
		zap.String("form", form.ID),
		zap.String("renderer", renderer.Name()),
		zap.Int("bytes", len(body)),
	)
	return &Output{Renderer: renderer.Name(), ContentType: renderer.ContentType(), Body: body}, nil
}

// Compile resolves and compiles the requested definition without rendering
// it. Compile errors keep their model error type.
func (o *Orchestrator) Compile(ctx context.Context, req Request) (*model.CompiledForm, error) {
	if ctx == nil {
		return nil, errors.New("orchestrator: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if err := o.initialiseErr; err != nil {
		return nil, err
	}

	def, err := o.Definition(req)
	if err != nil {
		return nil, err
	}
	if err := o.applyTransformers(ctx, &def); err != nil {
		return nil, err
	}

	form, err := o.compiler.Compile(ctx, def)
	if err != nil {
		return nil, fmt.Errorf("orchestrator: compile %q: %w", def.ID, err)
	}
	return form, nil
}

// Definition resolves the request's definition and returns a copy that is
// safe to mutate.
func (o *Orchestrator) Definition(req Request) (model.FormDefinition, error) {
	if req.Definition != nil {
		return req.Definition.Clone(), nil
	}
	if req.FormID == "" {
		return model.FormDefinition{}, errors.New("orchestrator: form id or definition is required")
	}
	def, ok := o.store.Form(req.FormID)
	if !ok {
		return model.FormDefinition{}, fmt.Errorf("%w: %q", ErrFormNotFound, req.FormID)
	}
	return def.Clone(), nil
}

// FormIDs lists the ids held by the store.
func (o *Orchestrator) FormIDs() []string {
	return o.store.IDs()
}

// Renderers lists the registered renderer names.
func (o *Orchestrator) Renderers() []string {
	if o.registry == nil {
		return nil
	}
	return o.registry.List()
}

// rendererFor resolves name, then the configured default, then the
// registry's own default.
func (o *Orchestrator) rendererFor(name string) (render.Renderer, error) {
	if o.registry == nil {
		return nil, errors.New("orchestrator: renderer registry is nil")
	}
	if name != "" {
		renderer, err := o.registry.Get(name)
		if err != nil {
			return nil, fmt.Errorf("orchestrator: %w", err)
		}
		return renderer, nil
	}
	if o.defaultRenderer != "" && o.registry.Has(o.defaultRenderer) {
		return o.registry.Get(o.defaultRenderer)
	}
	renderer, err := o.registry.Get("")
	if err != nil {
		return nil, fmt.Errorf("orchestrator: no default renderer: %w", err)
	}
	return renderer, nil
}

func (o *Orchestrator) applyTransformers(ctx context.Context, def *model.FormDefinition) error {
	for _, transformer := range o.transformers {
		if transformer == nil {
			continue
		}
		if err := transformer.Transform(ctx, def); err != nil {
			return fmt.Errorf("orchestrator: transform definition: %w", err)
		}
	}
	return nil
}

func (o *Orchestrator) applyDefaults() {
	if o.compiler == nil {
		plain := compiler.New(compiler.WithLogger(o.logger))
		o.compiler = CompilerFunc(func(_ context.Context, def model.FormDefinition) (*model.CompiledForm, error) {
			return plain.Compile(def)
		})
	}
	if o.registry == nil {
		o.registry = render.NewRegistry()
		o.registry.MustRegister(html.New())
		o.registry.MustRegister(jsondoc.New())
		renderer, err := rendertemplate.New()
		if err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: template renderer: %w", err)
		} else {
			o.registry.MustRegister(renderer)
		}
	}
	for _, renderer := range o.extra {
		if err := o.registry.Register(renderer); err != nil {
			o.initialiseErr = fmt.Errorf("orchestrator: register renderer: %w", err)
		}
	}
	if o.defaultRenderer == "" {
		o.defaultRenderer = defaultRendererName
	}
}
