package template

import (
	"embed"
	"io/fs"
)

//go:embed templates/*.tpl
var embeddedTemplates embed.FS

// TemplatesFS exposes the embedded template bundle so callers can copy it as
// a starting point for their own templates.
func TemplatesFS() fs.FS {
	return embeddedTemplates
}
