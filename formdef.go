// Package formdef is the top-level entry point: it re-exports the handful of
// types most callers need and wraps the orchestrator for one-shot rendering.
package formdef

import (
	"context"
	"fmt"
	"io/fs"

	"github.com/goliatone/go-formdef/pkg/compiler"
	"github.com/goliatone/go-formdef/pkg/loader"
	"github.com/goliatone/go-formdef/pkg/model"
	"github.com/goliatone/go-formdef/pkg/orchestrator"
	"github.com/goliatone/go-formdef/pkg/render"
	rendertemplate "github.com/goliatone/go-formdef/pkg/renderers/template"
)

// FormDefinition is the declarative input model.
type FormDefinition = model.FormDefinition

// CompiledForm is the render-ready compiler output.
type CompiledForm = model.CompiledForm

// RenderOptions describes per-request overrides that renderers can use to
// surface server-side errors, CSRF tokens and themes.
type RenderOptions = render.RenderOptions

// NewOrchestrator exposes the orchestrator constructor from the top-level
// module.
func NewOrchestrator(options ...orchestrator.Option) *orchestrator.Orchestrator {
	return orchestrator.New(options...)
}

// Compile compiles def with the default compiler.
func Compile(def FormDefinition) (*CompiledForm, error) {
	return compiler.Compile(def)
}

// Parse decodes a JSON or YAML definition.
func Parse(source string, data []byte) (FormDefinition, error) {
	return loader.Parse(source, data)
}

// GenerateHTML compiles def and renders it with the named renderer, html when
// rendererName is empty.
func GenerateHTML(ctx context.Context, def FormDefinition, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		Definition: &def,
		Renderer:   rendererName,
	})
}

// GenerateFromFS loads every definition under fsys and renders formID.
func GenerateFromFS(ctx context.Context, fsys fs.FS, formID, rendererName string, options ...orchestrator.Option) ([]byte, error) {
	store, err := loader.LoadFS(fsys)
	if err != nil {
		return nil, fmt.Errorf("formdef: %w", err)
	}
	options = append([]orchestrator.Option{orchestrator.WithStore(store)}, options...)
	return orchestrator.New(options...).Generate(ctx, orchestrator.Request{
		FormID:   formID,
		Renderer: rendererName,
	})
}

// EmbeddedTemplates exposes the built-in template bundle so callers can copy
// or extend it.
func EmbeddedTemplates() fs.FS {
	return rendertemplate.TemplatesFS()
}
