package model

// CompiledForm is the render-ready result of compiling a FormDefinition.
type CompiledForm struct {
	ID               string            `json:"id"`
	Title            string            `json:"title,omitempty"`
	Action           string            `json:"action,omitempty"`
	Method           string            `json:"method"`
	SubmitButtonText string            `json:"submitButtonText"`
	Sections         []CompiledSection `json:"sections"`
}

// CompiledSection preserves the authored section order.
type CompiledSection struct {
	Title  string          `json:"title,omitempty"`
	Hint   string          `json:"hint,omitempty"`
	Fields []CompiledField `json:"fields"`
}

// CompiledField is a fully resolved question.
type CompiledField struct {
	ID             string           `json:"id"`
	Type           QuestionType     `json:"type"`
	InputSubtype   string           `json:"inputSubtype"`
	Label          string           `json:"label"`
	Hint           string           `json:"hint"`
	Required       bool             `json:"required"`
	Disabled       bool             `json:"disabled,omitempty"`
	Value          []string         `json:"value,omitempty"`
	Options        []CompiledOption `json:"options,omitempty"`
	Rules          []CompiledRule   `json:"rules"`
	Dependencies   []DependencyEdge `json:"dependencies"`
	ValidateOnBlur bool             `json:"validateOnBlur,omitempty"`
}

// CompiledOption carries the composite key `{questionId}_{optionValue}`.
type CompiledOption struct {
	Key      string `json:"key"`
	ID       string `json:"id,omitempty"`
	Label    string `json:"label"`
	Value    string `json:"value"`
	Selected bool   `json:"selected"`
}

// CompiledRule is the client-facing validation descriptor.
type CompiledRule struct {
	Type         RuleType `json:"type"`
	Pattern      string   `json:"pattern,omitempty"`
	Min          *float64 `json:"min,omitempty"`
	Max          *float64 `json:"max,omitempty"`
	ErrorMessage string   `json:"errorMessage"`
}

// DependencyEdge is the client-facing dependency descriptor attached to a
// target field.
type DependencyEdge struct {
	SourceQuestionID string           `json:"sourceQuestionId"`
	TriggerValue     string           `json:"triggerValue"`
	Action           DependencyAction `json:"action"`
}

// Fields returns every compiled field in section then question order.
func (f CompiledForm) Fields() []CompiledField {
	var out []CompiledField
	for _, section := range f.Sections {
		out = append(out, section.Fields...)
	}
	return out
}

// Field looks up a compiled field by question id.
func (f CompiledForm) Field(id string) (CompiledField, bool) {
	for _, section := range f.Sections {
		for _, field := range section.Fields {
			if field.ID == id {
				return field, true
			}
		}
	}
	return CompiledField{}, false
}

// HasRule reports whether the field carries a rule of the given type.
func (f CompiledField) HasRule(kind RuleType) bool {
	for _, rule := range f.Rules {
		if rule.Type == kind {
			return true
		}
	}
	return false
}

// Rule returns the first rule of the given type.
func (f CompiledField) Rule(kind RuleType) (CompiledRule, bool) {
	for _, rule := range f.Rules {
		if rule.Type == kind {
			return rule, true
		}
	}
	return CompiledRule{}, false
}
