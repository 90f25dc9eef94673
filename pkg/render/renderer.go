package render

import (
	"context"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Renderer converts a CompiledForm into a byte representation (HTML, JSON,
// terminal session transcript). Renderers never validate values and never
// evaluate dependencies.
type Renderer interface {
	Name() string
	ContentType() string
	Render(ctx context.Context, form *model.CompiledForm, options RenderOptions) ([]byte, error)
}
