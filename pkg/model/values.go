package model

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strconv"

	"gopkg.in/yaml.v3"
)

// Values holds the current value collection of a question. Text-like
// questions use the first entry; Checkbox questions may hold several. Both a
// scalar and a list decode into Values.
type Values []string

// Contains reports whether value is part of the collection.
func (v Values) Contains(value string) bool {
	for _, candidate := range v {
		if candidate == value {
			return true
		}
	}
	return false
}

// First returns the first entry or an empty string.
func (v Values) First() string {
	if len(v) == 0 {
		return ""
	}
	return v[0]
}

// UnmarshalJSON accepts a string, number, boolean, null or array of scalars.
// Numbers keep their literal text.
func (v *Values) UnmarshalJSON(data []byte) error {
	var raw any
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	if err := dec.Decode(&raw); err != nil {
		return err
	}
	out, err := valuesFromAny(raw)
	if err != nil {
		return err
	}
	*v = out
	return nil
}

// UnmarshalYAML mirrors UnmarshalJSON for YAML documents.
func (v *Values) UnmarshalYAML(node *yaml.Node) error {
	switch node.Kind {
	case yaml.ScalarNode:
		if node.Tag == "!!null" {
			*v = nil
			return nil
		}
		*v = Values{node.Value}
		return nil
	case yaml.SequenceNode:
		out := make(Values, 0, len(node.Content))
		for _, item := range node.Content {
			if item.Kind != yaml.ScalarNode {
				return fmt.Errorf("model: value entries must be scalars (line %d)", item.Line)
			}
			out = append(out, item.Value)
		}
		*v = out
		return nil
	default:
		return fmt.Errorf("model: unsupported value shape (line %d)", node.Line)
	}
}

func valuesFromAny(raw any) (Values, error) {
	switch typed := raw.(type) {
	case nil:
		return nil, nil
	case []any:
		out := make(Values, 0, len(typed))
		for _, item := range typed {
			str, err := scalarString(item)
			if err != nil {
				return nil, err
			}
			out = append(out, str)
		}
		return out, nil
	default:
		str, err := scalarString(typed)
		if err != nil {
			return nil, err
		}
		return Values{str}, nil
	}
}

func scalarString(raw any) (string, error) {
	switch typed := raw.(type) {
	case string:
		return typed, nil
	case bool:
		return strconv.FormatBool(typed), nil
	case json.Number:
		return typed.String(), nil
	default:
		return "", fmt.Errorf("model: unsupported value entry %T", raw)
	}
}
