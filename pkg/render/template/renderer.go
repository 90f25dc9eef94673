package template

import "io"

// TemplateRenderer executes templates from a bundle. Output is returned and
// also copied to every writer in out.
type TemplateRenderer interface {
	RenderTemplate(name string, data any, out ...io.Writer) (string, error)
	RenderString(content string, data any, out ...io.Writer) (string, error)
}

// Filter transforms a value inside a template. param is nil when the filter
// is used without an argument.
type Filter = func(input any, param any) (any, error)

// FilterRegistrar is implemented by engines that accept custom filters.
type FilterRegistrar interface {
	RegisterFilter(name string, fn Filter) error
}
