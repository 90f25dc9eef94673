// Package model defines the declarative form definition (sections, questions,
// options, validation rules and dependencies) together with the derived,
// render-ready types produced by the compiler. Definitions decode from JSON or
// YAML using the camelCase keys shown on each struct, so the same shape can be
// authored by hand, loaded from disk, or produced by a model binder such as
// pkg/inspect or pkg/openapi.
//
// Compiled types are immutable once returned by the compiler. The
// CompiledRule and DependencyEdge JSON shapes are consumed by client-side
// evaluators and must stay stable: `{type, pattern?, min?, max?,
// errorMessage}` and `{sourceQuestionId, triggerValue, action}`.
package model
