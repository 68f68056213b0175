package panggil

import "fmt"

// FieldKind names the JSON type expected for a schema field.
type FieldKind string

const (
	FieldString  FieldKind = "string"
	FieldNumber  FieldKind = "number"
	FieldBoolean FieldKind = "boolean"
	FieldObject  FieldKind = "object"
	FieldArray   FieldKind = "array"
)

// Schema describes the expected shape of a decoded JSON response body.
// Fields maps property names to their expected JSON type; Required lists
// properties that must be present. A zero Schema accepts anything.
type Schema struct {
	Required []string
	Fields   map[string]FieldKind
}

func (s Schema) empty() bool {
	return len(s.Required) == 0 && len(s.Fields) == 0
}

// Validator structurally validates a decoded JSON value against a schema,
// returning a *ValidationFailure carrying per-field issues on mismatch.
type Validator interface {
	Validate(schema Schema, value any) error
}

// SchemaValidator is the built-in Validator. It checks required-field
// presence and per-field JSON types on top-level objects.
type SchemaValidator struct{}

// Validate implements the Validator interface.
func (SchemaValidator) Validate(schema Schema, value any) error {
	if schema.empty() {
		return nil
	}

	obj, ok := value.(map[string]any)
	if !ok {
		return &ValidationFailure{Issues: []Issue{{
			Field:   "",
			Message: fmt.Sprintf("expected object, got %T", value),
		}}}
	}

	var issues []Issue
	for _, name := range schema.Required {
		if _, present := obj[name]; !present {
			issues = append(issues, Issue{Field: name, Message: "required field missing"})
		}
	}
	for name, kind := range schema.Fields {
		raw, present := obj[name]
		if !present || raw == nil {
			continue
		}
		if !matchesKind(raw, kind) {
			issues = append(issues, Issue{
				Field:   name,
				Message: fmt.Sprintf("expected %s, got %T", kind, raw),
			})
		}
	}

	if len(issues) > 0 {
		return &ValidationFailure{Issues: issues}
	}
	return nil
}

func matchesKind(v any, kind FieldKind) bool {
	switch kind {
	case FieldString:
		_, ok := v.(string)
		return ok
	case FieldNumber:
		_, ok := v.(float64)
		return ok
	case FieldBoolean:
		_, ok := v.(bool)
		return ok
	case FieldObject:
		_, ok := v.(map[string]any)
		return ok
	case FieldArray:
		_, ok := v.([]any)
		return ok
	default:
		return true
	}
}
