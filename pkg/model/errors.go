package model

import (
	"errors"
	"fmt"
	"strings"
)

// Sentinels for errors.Is checks against the compile error taxonomy.
var (
	ErrConfiguration = errors.New("configuration error")
	ErrReference     = errors.New("reference error")
	ErrCycle         = errors.New("dependency cycle")
)

// ConfigurationError reports structurally invalid authoring input.
type ConfigurationError struct {
	QuestionID string
	Reason     string
}

func (e *ConfigurationError) Error() string {
	if e.QuestionID == "" {
		return fmt.Sprintf("formdef: configuration error: %s", e.Reason)
	}
	return fmt.Sprintf("formdef: configuration error: question %q: %s", e.QuestionID, e.Reason)
}

// Is matches ErrConfiguration.
func (e *ConfigurationError) Is(target error) bool {
	return target == ErrConfiguration
}

// Configf builds a ConfigurationError with a formatted reason.
func Configf(questionID, format string, args ...any) *ConfigurationError {
	return &ConfigurationError{QuestionID: questionID, Reason: fmt.Sprintf(format, args...)}
}

// ReferenceError reports a dependency pointing at a question that does not
// exist in the form.
type ReferenceError struct {
	Dependency QuestionDependency
	MissingID  string
}

func (e *ReferenceError) Error() string {
	return fmt.Sprintf("formdef: reference error: dependency %s references unknown question %q", e.Dependency, e.MissingID)
}

// Is matches ErrReference.
func (e *ReferenceError) Is(target error) bool {
	return target == ErrReference
}

// CycleError reports a dependency cycle. Path lists the question ids in
// traversal order and repeats the first id at the end.
type CycleError struct {
	Path []string
}

func (e *CycleError) Error() string {
	return fmt.Sprintf("formdef: dependency cycle: %s", strings.Join(e.Path, " -> "))
}

// Is matches ErrCycle.
func (e *CycleError) Is(target error) bool {
	return target == ErrCycle
}
