// Package orchestrator wires the definition store → transformer → compiler →
// renderer pipeline behind a single entry point. Every stage is injectable;
// New fills the gaps with the built-in implementations.
package orchestrator
