// Package template is the seam between form renderers and a template engine.
// gotemplate implements it on pongo2.
package template
