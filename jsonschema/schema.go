package jsonschema

import (
	"github.com/reoring/autoschema/jsondoc"
)

// Schema is the JSON Schema representation a compiled model is exported to.
// It covers exactly the keywords the compiler understands; serialization keeps
// property and enum order.
type Schema struct {
	// Core
	Title       string
	Description string
	Type        string
	Format      string
	Default     any
	// HasDefault distinguishes an explicit null default from no default.
	HasDefault bool

	// Object. Properties is emitted when non-nil, so an empty non-nil list
	// still marks a model with no fields.
	Properties []Property
	Required   []string

	// Array
	Items    *Schema
	MinItems *int
	MaxItems *int

	// Number
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64

	// Closed set / union
	Enum  []any
	AnyOf []*Schema
}

// Property is one named entry of Schema.Properties.
type Property struct {
	Name   string
	Schema *Schema
}

// Document renders the schema as an ordered JSON document.
func (s *Schema) Document() *jsondoc.Object {
	o := jsondoc.NewObject()
	if s == nil {
		return o
	}
	setString(o, "title", s.Title)
	setString(o, "description", s.Description)
	setString(o, "type", s.Type)
	setString(o, "format", s.Format)
	if s.Enum != nil {
		o.Set("enum", append([]any(nil), s.Enum...))
	}
	if s.AnyOf != nil {
		members := make([]any, len(s.AnyOf))
		for i, m := range s.AnyOf {
			members[i] = m.Document()
		}
		o.Set("anyOf", members)
	}
	if s.Properties != nil {
		props := jsondoc.NewObject()
		for _, p := range s.Properties {
			props.Set(p.Name, p.Schema.Document())
		}
		o.Set("properties", props)
	}
	if len(s.Required) > 0 {
		req := make([]any, len(s.Required))
		for i, r := range s.Required {
			req[i] = r
		}
		o.Set("required", req)
	}
	if s.Items != nil {
		o.Set("items", s.Items.Document())
	}
	setInt(o, "minItems", s.MinItems)
	setInt(o, "maxItems", s.MaxItems)
	setFloat(o, "minimum", s.Minimum)
	setFloat(o, "maximum", s.Maximum)
	setFloat(o, "exclusiveMinimum", s.ExclusiveMinimum)
	setFloat(o, "exclusiveMaximum", s.ExclusiveMaximum)
	setFloat(o, "multipleOf", s.MultipleOf)
	if s.HasDefault {
		o.Set("default", jsondoc.Clone(s.Default))
	}
	return o
}

// MarshalJSON writes the ordered document.
func (s *Schema) MarshalJSON() ([]byte, error) { return s.Document().MarshalJSON() }

func setString(o *jsondoc.Object, k, v string) {
	if v != "" {
		o.Set(k, v)
	}
}

func setInt(o *jsondoc.Object, k string, v *int) {
	if v != nil {
		o.Set(k, *v)
	}
}

func setFloat(o *jsondoc.Object, k string, v *float64) {
	if v != nil {
		o.Set(k, *v)
	}
}
