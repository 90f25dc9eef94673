// Package openapi binds OpenAPI 3 request bodies to form definitions. Each
// property of an operation's request schema becomes field metadata, which the
// compiler then inspects to pick widgets and inferred rules.
package openapi
