package openapi

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	"github.com/goliatone/go-formdef/pkg/inspect"
	"github.com/goliatone/go-formdef/pkg/model"
)

const (
	// KindExtension overrides the inferred field kind, for example
	// `x-formgen-kind: multiline`.
	KindExtension = "x-formgen-kind"
	// LabelExtension overrides the field label.
	LabelExtension = "x-formgen-label"
	// OrderExtension on the request schema lists property names in display
	// order. Unlisted properties follow in name order.
	OrderExtension = "x-formgen-order"
)

// Options configures parsing.
type Options struct {
	ResolveReferences bool
}

// Option mutates Options.
type Option func(*Options)

// WithReferenceResolution toggles validation and external $ref resolution.
func WithReferenceResolution(enabled bool) Option {
	return func(opts *Options) {
		opts.ResolveReferences = enabled
	}
}

func newOptions(options []Option) Options {
	cfg := Options{ResolveReferences: true}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}

// Operation is one API operation and the fields of its request body.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Fields      []Field
}

// Field is one request body property.
type Field struct {
	Metadata model.FieldMetadata
	Enum     []string
	Default  model.Values
}

// Operations parses raw and returns every operation keyed by operationId.
// Operations without an id are keyed as "method:path".
func Operations(ctx context.Context, raw []byte, options ...Option) (map[string]Operation, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if len(raw) == 0 {
		return nil, errors.New("openapi: document payload is empty")
	}
	opts := newOptions(options)

	loader := &openapi3.Loader{
		Context:               ctx,
		IsExternalRefsAllowed: opts.ResolveReferences,
	}
	doc, err := loader.LoadFromData(raw)
	if err != nil {
		return nil, fmt.Errorf("openapi: load document: %w", err)
	}
	if opts.ResolveReferences {
		if err := doc.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return nil, fmt.Errorf("openapi: validate: %w", err)
		}
	}
	if doc.Paths == nil || doc.Paths.Len() == 0 {
		return nil, errors.New("openapi: document does not contain any paths")
	}

	operations := make(map[string]Operation)
	for path, item := range doc.Paths.Map() {
		if item == nil {
			continue
		}
		for method, operation := range item.Operations() {
			op := convertOperation(method, path, operation)
			operations[op.ID] = op
		}
	}
	return operations, nil
}

func convertOperation(method, path string, operation *openapi3.Operation) Operation {
	method = strings.ToUpper(method)
	id := operation.OperationID
	if id == "" {
		id = strings.ToLower(method) + ":" + path
	}
	return Operation{
		ID:          id,
		Method:      method,
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Fields:      requestFields(operation.RequestBody),
	}
}

func requestFields(body *openapi3.RequestBodyRef) []Field {
	if body == nil || body.Value == nil {
		return nil
	}
	content := body.Value.Content
	for _, mediaType := range []string{"application/json", "application/x-www-form-urlencoded", "multipart/form-data"} {
		if mt, ok := content[mediaType]; ok && mt != nil {
			return schemaFields(mt.Schema)
		}
	}
	keys := make([]string, 0, len(content))
	for key := range content {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	for _, key := range keys {
		if mt := content[key]; mt != nil {
			return schemaFields(mt.Schema)
		}
	}
	return nil
}

func schemaFields(ref *openapi3.SchemaRef) []Field {
	if ref == nil || ref.Value == nil {
		return nil
	}
	schema := ref.Value
	required := make(map[string]bool, len(schema.Required))
	for _, name := range schema.Required {
		required[name] = true
	}

	out := make([]Field, 0, len(schema.Properties))
	for _, name := range propertyOrder(schema) {
		prop := schema.Properties[name]
		if prop == nil || prop.Value == nil || prop.Value.ReadOnly {
			continue
		}
		out = append(out, convertField(name, prop.Value, required[name]))
	}
	return out
}

func propertyOrder(schema *openapi3.Schema) []string {
	seen := make(map[string]bool, len(schema.Properties))
	var out []string
	if listed, ok := schema.Extensions[OrderExtension].([]any); ok {
		for _, raw := range listed {
			name, ok := raw.(string)
			if !ok || seen[name] {
				continue
			}
			if _, exists := schema.Properties[name]; exists {
				seen[name] = true
				out = append(out, name)
			}
		}
	}
	rest := make([]string, 0, len(schema.Properties))
	for name := range schema.Properties {
		if !seen[name] {
			rest = append(rest, name)
		}
	}
	sort.Strings(rest)
	return append(out, rest...)
}

func convertField(name string, schema *openapi3.Schema, required bool) Field {
	meta := model.FieldMetadata{
		Name:        name,
		Type:        primitive(schema),
		Kind:        formatKind(schema.Format),
		Required:    required,
		DisplayName: schema.Title,
		Description: schema.Description,
		Pattern:     schema.Pattern,
	}
	if label, ok := schema.Extensions[LabelExtension].(string); ok && strings.TrimSpace(label) != "" {
		meta.DisplayName = strings.TrimSpace(label)
	}
	if raw, ok := schema.Extensions[KindExtension].(string); ok {
		if kind := inspect.ParseKind(raw); kind != "" {
			meta.Kind = kind
		}
	}
	if schema.MinLength > 0 {
		value := int(schema.MinLength)
		meta.MinLength = &value
	}
	if schema.MaxLength != nil {
		value := int(*schema.MaxLength)
		meta.MaxLength = &value
	}
	if schema.Min != nil {
		meta.Min = model.Float(*schema.Min)
	}
	if schema.Max != nil {
		meta.Max = model.Float(*schema.Max)
	}

	field := Field{Metadata: meta}
	for _, value := range schema.Enum {
		if value != nil {
			field.Enum = append(field.Enum, fmt.Sprint(value))
		}
	}
	if schema.Default != nil {
		field.Default = defaultValues(schema.Default)
	}
	return field
}

func primitive(schema *openapi3.Schema) model.PrimitiveType {
	if schema.Type == nil {
		return ""
	}
	switch {
	case schema.Type.Is(openapi3.TypeBoolean):
		return model.PrimitiveBoolean
	case schema.Type.Is(openapi3.TypeInteger):
		return model.PrimitiveInteger
	case schema.Type.Is(openapi3.TypeNumber):
		return model.PrimitiveDecimal
	case schema.Type.Is(openapi3.TypeString):
		switch schema.Format {
		case "date", "date-time":
			return model.PrimitiveDate
		case "binary":
			return model.PrimitiveFile
		}
		return model.PrimitiveString
	default:
		return ""
	}
}

func formatKind(format string) model.FieldKind {
	switch format {
	case "email":
		return model.KindEmail
	case "password":
		return model.KindPassword
	case "uri", "url":
		return model.KindURL
	case "date", "date-time":
		return model.KindDate
	default:
		return ""
	}
}

func defaultValues(raw any) model.Values {
	if list, ok := raw.([]any); ok {
		out := make(model.Values, 0, len(list))
		for _, item := range list {
			out = append(out, fmt.Sprint(item))
		}
		return out
	}
	return model.Values{fmt.Sprint(raw)}
}
