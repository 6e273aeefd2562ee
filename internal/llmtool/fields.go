package llmtool

import (
	"fmt"
	"reflect"
	"strings"
	"unicode"
)

// Struct tags read by FieldsFromStruct.
const (
	tagName   = "json"
	tagDesc   = "prompt_desc"
	tagType   = "prompt_type"
	tagPrompt = "prompt"
)

// FieldsFromStruct builds prompt fields from a Go struct using tags. Fields
// holding structs, or slices of structs, are expanded so nested members show
// up as "parent[].child" entries after their parent.
func FieldsFromStruct(v any) ([]PromptField, error) {
	if v == nil {
		return nil, fmt.Errorf("llmtool: struct is nil")
	}
	t := reflect.TypeOf(v)
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	if t.Kind() != reflect.Struct {
		return nil, fmt.Errorf("llmtool: expected struct, got %s", t.Kind())
	}
	return collectFields(t, ""), nil
}

// MustFieldsFromStruct panics on error; useful for prompt spec literals.
func MustFieldsFromStruct(v any) []PromptField {
	fields, err := FieldsFromStruct(v)
	if err != nil {
		panic(err)
	}
	return fields
}

func collectFields(t reflect.Type, prefix string) []PromptField {
	fields := make([]PromptField, 0, t.NumField())
	for i := 0; i < t.NumField(); i++ {
		f := t.Field(i)
		if !f.IsExported() || hasOption(f, "-", "omit") {
			continue
		}
		name := fieldName(f)
		if name == "" {
			continue
		}
		required := !hasOption(f, "optional")
		fields = append(fields, PromptField{
			Name:        prefix + name,
			Type:        fieldType(f),
			Required:    required,
			Description: strings.TrimSpace(f.Tag.Get(tagDesc)),
		})
		if nested, sep := nestedStruct(f.Type); nested != nil {
			fields = append(fields, collectFields(nested, prefix+name+sep)...)
		}
	}
	return fields
}

// nestedStruct returns the struct type to expand for ft, and the separator
// joining parent and child names.
func nestedStruct(ft reflect.Type) (reflect.Type, string) {
	for ft.Kind() == reflect.Pointer {
		ft = ft.Elem()
	}
	switch ft.Kind() {
	case reflect.Struct:
		return ft, "."
	case reflect.Slice, reflect.Array:
		el := ft.Elem()
		for el.Kind() == reflect.Pointer {
			el = el.Elem()
		}
		if el.Kind() == reflect.Struct {
			return el, "[]."
		}
	}
	return nil, ""
}

func hasOption(f reflect.StructField, opts ...string) bool {
	tag := strings.TrimSpace(f.Tag.Get(tagPrompt))
	if tag == "" {
		return false
	}
	for _, part := range strings.Split(tag, ",") {
		part = strings.TrimSpace(part)
		for _, o := range opts {
			if part == o {
				return true
			}
		}
	}
	return false
}

func fieldName(f reflect.StructField) string {
	tag := strings.TrimSpace(f.Tag.Get(tagName))
	if tag != "" {
		name := strings.Split(tag, ",")[0]
		if name == "-" {
			return ""
		}
		if name != "" {
			return name
		}
	}
	return toSnake(f.Name)
}

func fieldType(f reflect.StructField) string {
	if tag := strings.TrimSpace(f.Tag.Get(tagType)); tag != "" {
		return tag
	}
	return typeString(f.Type)
}

func typeString(t reflect.Type) string {
	for t.Kind() == reflect.Pointer {
		t = t.Elem()
	}
	switch t.Kind() {
	case reflect.String:
		return "string"
	case reflect.Bool:
		return "bool"
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return "int"
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		return "uint"
	case reflect.Float32, reflect.Float64:
		return "float64"
	case reflect.Slice, reflect.Array:
		return "[]" + typeString(t.Elem())
	case reflect.Map:
		return fmt.Sprintf("map[%s]%s", typeString(t.Key()), typeString(t.Elem()))
	case reflect.Struct:
		return "object"
	case reflect.Interface:
		return "any"
	default:
		return t.Kind().String()
	}
}

func toSnake(s string) string {
	var b strings.Builder
	runes := []rune(s)
	for i, r := range runes {
		if i > 0 && unicode.IsUpper(r) {
			prev := runes[i-1]
			nextLower := i+1 < len(runes) && unicode.IsLower(runes[i+1])
			if unicode.IsLower(prev) || nextLower {
				b.WriteByte('_')
			}
		}
		b.WriteRune(unicode.ToLower(r))
	}
	return b.String()
}
