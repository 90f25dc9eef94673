package model

// Clone returns a deep copy of the definition. Mutating the copy never
// reaches the receiver's slices, maps or pointers.
func (d FormDefinition) Clone() FormDefinition {
	out := d
	if d.Sections == nil {
		return out
	}
	out.Sections = make([]FormSection, len(d.Sections))
	for s, section := range d.Sections {
		copied := section
		if section.Questions != nil {
			copied.Questions = make([]FormQuestion, len(section.Questions))
			for q, question := range section.Questions {
				copied.Questions[q] = question.Clone()
			}
		}
		out.Sections[s] = copied
	}
	return out
}

// Clone returns a deep copy of the question.
func (q FormQuestion) Clone() FormQuestion {
	out := q
	if q.Value != nil {
		out.Value = append(Values(nil), q.Value...)
	}
	if q.Options != nil {
		out.Options = append([]QuestionOption(nil), q.Options...)
	}
	if q.Dependencies != nil {
		out.Dependencies = append([]QuestionDependency(nil), q.Dependencies...)
	}
	if q.ValidationRules != nil {
		out.ValidationRules = make([]ValidationRule, len(q.ValidationRules))
		for i, rule := range q.ValidationRules {
			out.ValidationRules[i] = rule.Clone()
		}
	}
	if q.Metadata != nil {
		meta := *q.Metadata
		meta.MinLength = cloneInt(q.Metadata.MinLength)
		meta.MaxLength = cloneInt(q.Metadata.MaxLength)
		meta.Min = cloneFloat(q.Metadata.Min)
		meta.Max = cloneFloat(q.Metadata.Max)
		out.Metadata = &meta
	}
	return out
}

// Clone returns a deep copy of the rule.
func (r ValidationRule) Clone() ValidationRule {
	out := r
	out.Min = cloneFloat(r.Min)
	out.Max = cloneFloat(r.Max)
	if r.ErrorMessages != nil {
		out.ErrorMessages = make(map[string]string, len(r.ErrorMessages))
		for locale, message := range r.ErrorMessages {
			out.ErrorMessages[locale] = message
		}
	}
	return out
}

func cloneFloat(v *float64) *float64 {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}

func cloneInt(v *int) *int {
	if v == nil {
		return nil
	}
	c := *v
	return &c
}
