package model

// QuestionType enumerates the widgets a question can render as.
type QuestionType string

const (
	QuestionTypeText       QuestionType = "Text"
	QuestionTypeEmail      QuestionType = "Email"
	QuestionTypePassword   QuestionType = "Password"
	QuestionTypeURL        QuestionType = "Url"
	QuestionTypeNumber     QuestionType = "Number"
	QuestionTypeRadio      QuestionType = "Radio"
	QuestionTypeCheckbox   QuestionType = "Checkbox"
	QuestionTypeDropdown   QuestionType = "Dropdown"
	QuestionTypeTextArea   QuestionType = "TextArea"
	QuestionTypeDate       QuestionType = "Date"
	QuestionTypeFileUpload QuestionType = "FileUpload"
)

// QuestionTypes lists every supported question type in declaration order.
var QuestionTypes = []QuestionType{
	QuestionTypeText,
	QuestionTypeEmail,
	QuestionTypePassword,
	QuestionTypeURL,
	QuestionTypeNumber,
	QuestionTypeRadio,
	QuestionTypeCheckbox,
	QuestionTypeDropdown,
	QuestionTypeTextArea,
	QuestionTypeDate,
	QuestionTypeFileUpload,
}

// Valid reports whether t is one of the supported question types.
func (t QuestionType) Valid() bool {
	for _, candidate := range QuestionTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// IsChoice reports whether the type renders a list of options.
func (t QuestionType) IsChoice() bool {
	switch t {
	case QuestionTypeRadio, QuestionTypeCheckbox, QuestionTypeDropdown:
		return true
	default:
		return false
	}
}

// RuleType identifies a validation rule kind.
type RuleType string

const (
	RuleRequired  RuleType = "Required"
	RuleEmail     RuleType = "Email"
	RuleURL       RuleType = "Url"
	RulePattern   RuleType = "Pattern"
	RuleMinLength RuleType = "MinLength"
	RuleMaxLength RuleType = "MaxLength"
	RuleMin       RuleType = "Min"
	RuleMax       RuleType = "Max"
	RuleRange     RuleType = "Range"
)

// RuleTypes lists every supported rule type.
var RuleTypes = []RuleType{
	RuleRequired,
	RuleEmail,
	RuleURL,
	RulePattern,
	RuleMinLength,
	RuleMaxLength,
	RuleMin,
	RuleMax,
	RuleRange,
}

// Valid reports whether t is a supported rule type.
func (t RuleType) Valid() bool {
	for _, candidate := range RuleTypes {
		if candidate == t {
			return true
		}
	}
	return false
}

// DependencyAction is the effect a dependency has on its target question.
type DependencyAction string

const (
	ActionShow               DependencyAction = "Show"
	ActionHide               DependencyAction = "Hide"
	ActionEnable             DependencyAction = "Enable"
	ActionDisable            DependencyAction = "Disable"
	ActionRequireWhenVisible DependencyAction = "RequireWhenVisible"
)

// Valid reports whether a is a supported dependency action.
func (a DependencyAction) Valid() bool {
	switch a {
	case ActionShow, ActionHide, ActionEnable, ActionDisable, ActionRequireWhenVisible:
		return true
	default:
		return false
	}
}

// DefaultLocaleKey is the errorMessages entry used when no locale matches.
const DefaultLocaleKey = "default"

// FormDefinition is the authored root object.
type FormDefinition struct {
	ID               string        `json:"id" yaml:"id"`
	Title            string        `json:"title,omitempty" yaml:"title,omitempty"`
	Action           string        `json:"action,omitempty" yaml:"action,omitempty"`
	Method           string        `json:"method,omitempty" yaml:"method,omitempty"`
	SubmitButtonText string        `json:"submitButtonText,omitempty" yaml:"submitButtonText,omitempty"`
	Sections         []FormSection `json:"sections" yaml:"sections"`
}

// FormSection groups questions under an optional title and hint.
type FormSection struct {
	Title     string         `json:"title,omitempty" yaml:"title,omitempty"`
	Hint      string         `json:"hint,omitempty" yaml:"hint,omitempty"`
	Questions []FormQuestion `json:"questions" yaml:"questions"`
}

// FormQuestion is a single authored field. IDs are unique across the whole
// form. Type may be left empty when Metadata is supplied, in which case the
// widget is inferred from the bound field metadata.
type FormQuestion struct {
	ID              string               `json:"id" yaml:"id"`
	Type            QuestionType         `json:"type,omitempty" yaml:"type,omitempty"`
	Label           string               `json:"label,omitempty" yaml:"label,omitempty"`
	Hint            string               `json:"hint,omitempty" yaml:"hint,omitempty"`
	IsRequired      bool                 `json:"isRequired,omitempty" yaml:"isRequired,omitempty"`
	IsDisabled      bool                 `json:"isDisabled,omitempty" yaml:"isDisabled,omitempty"`
	Value           Values               `json:"value,omitempty" yaml:"value,omitempty"`
	Options         []QuestionOption     `json:"options,omitempty" yaml:"options,omitempty"`
	ValidationRules []ValidationRule     `json:"validationRules,omitempty" yaml:"validationRules,omitempty"`
	Dependencies    []QuestionDependency `json:"dependencies,omitempty" yaml:"dependencies,omitempty"`
	ValidateOnBlur  bool                 `json:"validateOnBlur,omitempty" yaml:"validateOnBlur,omitempty"`
	Metadata        *FieldMetadata       `json:"metadata,omitempty" yaml:"metadata,omitempty"`
}

// QuestionOption is one selectable choice of a Radio, Checkbox or Dropdown
// question.
type QuestionOption struct {
	ID    string `json:"id,omitempty" yaml:"id,omitempty"`
	Label string `json:"label" yaml:"label"`
	Value string `json:"value" yaml:"value"`
}

// ValidationRule is a declarative constraint. MinLength reads Min, MaxLength
// reads Max, Range reads both. ErrorMessages maps locale to message and, when
// present, must contain a "default" entry.
type ValidationRule struct {
	Type          RuleType          `json:"type" yaml:"type"`
	Pattern       string            `json:"pattern,omitempty" yaml:"pattern,omitempty"`
	Min           *float64          `json:"min,omitempty" yaml:"min,omitempty"`
	Max           *float64          `json:"max,omitempty" yaml:"max,omitempty"`
	ErrorMessages map[string]string `json:"errorMessages,omitempty" yaml:"errorMessages,omitempty"`
}

// QuestionDependency links the value of a source question to an action on a
// target question. When declared on a question with TargetQuestionID left
// empty, the owning question is the target.
type QuestionDependency struct {
	SourceQuestionID string           `json:"sourceQuestionId" yaml:"sourceQuestionId"`
	TargetQuestionID string           `json:"targetQuestionId,omitempty" yaml:"targetQuestionId,omitempty"`
	TriggerValue     string           `json:"triggerValue" yaml:"triggerValue"`
	Action           DependencyAction `json:"action" yaml:"action"`
}

// String renders the dependency for error messages.
func (d QuestionDependency) String() string {
	return d.SourceQuestionID + "=" + quote(d.TriggerValue) + " -[" + string(d.Action) + "]-> " + d.TargetQuestionID
}

func quote(value string) string {
	return "\"" + value + "\""
}

// Float returns a pointer to v, handy when declaring rule bounds in code.
func Float(v float64) *float64 {
	return &v
}
