package inspect

import (
	"errors"
	"fmt"
	"mime/multipart"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/goliatone/go-formdef/pkg/model"
)

// Struct tags read by FromStruct:
//
//	form:"name,required,kind=email,minlen=3,maxlen=40,min=1,max=9"
//	label:"E-mail address"
//	hint:"We never share it"
//	pattern:"^[a-z]+$"
//
// A form tag of "-" skips the field. Without a name the json tag name (or
// the Go field name) is used.
const (
	tagForm    = "form"
	tagLabel   = "label"
	tagHint    = "hint"
	tagPattern = "pattern"
)

var (
	timeType       = reflect.TypeOf(time.Time{})
	fileHeaderType = reflect.TypeOf(multipart.FileHeader{})
	byteSliceType  = reflect.TypeOf([]byte(nil))
)

// FromStruct reflects over the exported fields of a struct (or pointer to
// struct) and returns one FieldMetadata per bindable field, in declaration
// order.
func FromStruct(v any) ([]model.FieldMetadata, error) {
	if v == nil {
		return nil, errors.New("inspect: value is nil")
	}
	rt := reflect.TypeOf(v)
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	if rt.Kind() != reflect.Struct {
		return nil, fmt.Errorf("inspect: expected struct, got %s", rt.Kind())
	}

	var out []model.FieldMetadata
	for i := 0; i < rt.NumField(); i++ {
		field := rt.Field(i)
		if !field.IsExported() {
			continue
		}
		tag := field.Tag.Get(tagForm)
		if tag == "-" {
			continue
		}
		meta, err := metadataFromField(field, tag)
		if err != nil {
			return nil, err
		}
		out = append(out, meta)
	}
	return out, nil
}

func metadataFromField(field reflect.StructField, tag string) (model.FieldMetadata, error) {
	meta := model.FieldMetadata{
		Name:        fieldName(field, tag),
		Type:        primitiveFor(field.Type),
		DisplayName: field.Tag.Get(tagLabel),
		Description: field.Tag.Get(tagHint),
		Pattern:     field.Tag.Get(tagPattern),
	}

	parts := strings.Split(tag, ",")
	for _, part := range parts[1:] {
		key, value, _ := strings.Cut(strings.TrimSpace(part), "=")
		switch key {
		case "":
			continue
		case "required":
			meta.Required = true
		case "kind":
			meta.Kind = ParseKind(value)
		case "minlen":
			n, err := strconv.Atoi(value)
			if err != nil {
				return meta, fmt.Errorf("inspect: field %s: minlen: %w", field.Name, err)
			}
			meta.MinLength = &n
		case "maxlen":
			n, err := strconv.Atoi(value)
			if err != nil {
				return meta, fmt.Errorf("inspect: field %s: maxlen: %w", field.Name, err)
			}
			meta.MaxLength = &n
		case "min":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return meta, fmt.Errorf("inspect: field %s: min: %w", field.Name, err)
			}
			meta.Min = &f
		case "max":
			f, err := strconv.ParseFloat(value, 64)
			if err != nil {
				return meta, fmt.Errorf("inspect: field %s: max: %w", field.Name, err)
			}
			meta.Max = &f
		default:
			return meta, fmt.Errorf("inspect: field %s: unknown form tag option %q", field.Name, key)
		}
	}
	return meta, nil
}

func fieldName(field reflect.StructField, tag string) string {
	if name, _, _ := strings.Cut(tag, ","); strings.TrimSpace(name) != "" {
		return strings.TrimSpace(name)
	}
	if name, _, _ := strings.Cut(field.Tag.Get("json"), ","); name != "" && name != "-" {
		return name
	}
	return field.Name
}

func primitiveFor(rt reflect.Type) model.PrimitiveType {
	for rt.Kind() == reflect.Pointer {
		rt = rt.Elem()
	}
	switch {
	case rt == timeType:
		return model.PrimitiveDate
	case rt == fileHeaderType, rt == byteSliceType:
		return model.PrimitiveFile
	}
	switch rt.Kind() {
	case reflect.Bool:
		return model.PrimitiveBoolean
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64,
		reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return model.PrimitiveInteger
	case reflect.Float32, reflect.Float64:
		return model.PrimitiveDecimal
	default:
		return model.PrimitiveString
	}
}

// Questions wraps bound metadata into untyped form questions so the compiler
// infers each widget through Inspect.
func Questions(metas []model.FieldMetadata) []model.FormQuestion {
	out := make([]model.FormQuestion, 0, len(metas))
	for _, meta := range metas {
		meta := meta
		out = append(out, model.FormQuestion{
			ID:       meta.Name,
			Metadata: &meta,
		})
	}
	return out
}

// Section builds a form section from a struct value.
func Section(title string, v any) (model.FormSection, error) {
	metas, err := FromStruct(v)
	if err != nil {
		return model.FormSection{}, err
	}
	return model.FormSection{Title: title, Questions: Questions(metas)}, nil
}
