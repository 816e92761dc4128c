package autoschema

import (
	"github.com/reoring/autoschema/jsondoc"
	js "github.com/reoring/autoschema/jsonschema"
)

// Export projects a compiled model back into a JSON Schema. Field order,
// required names, defaults, constraints and enum order are kept; keywords the
// compiler ignores (examples, unknown keys) are not.
func Export(m *ModelDescriptor) *js.Schema {
	s := &js.Schema{
		Title:       m.name,
		Description: m.description,
		Type:        string(TypeObject),
		Properties:  make([]js.Property, 0, len(m.fields)),
		Required:    m.RequiredFields(),
	}
	for _, f := range m.fields {
		fs := typeSchema(f.typ)
		if f.description != "" {
			fs.Description = f.description
		}
		if f.hasDefault {
			fs.Default, fs.HasDefault = jsondoc.Clone(f.def), true
		}
		s.Properties = append(s.Properties, js.Property{Name: f.name, Schema: fs})
	}
	return s
}

// JSONSchema is shorthand for Export(m).
func (m *ModelDescriptor) JSONSchema() *js.Schema { return Export(m) }

// MarshalSchema renders the exported schema as indented JSON.
func MarshalSchema(m *ModelDescriptor) ([]byte, error) {
	return jsondoc.MarshalIndent(Export(m).Document())
}

func typeSchema(t Type) *js.Schema {
	c := t.cons
	switch t.kind {
	case KindText, KindTimestamp, KindDate, KindTimeOfDay:
		return &js.Schema{Type: string(TypeString), Format: string(t.Format())}
	case KindInteger, KindNumber:
		return &js.Schema{
			Type:             string(typeNameOf(t.kind)),
			Minimum:          cloneFloat(c.Minimum),
			Maximum:          cloneFloat(c.Maximum),
			ExclusiveMinimum: cloneFloat(c.ExclusiveMinimum),
			ExclusiveMaximum: cloneFloat(c.ExclusiveMaximum),
			MultipleOf:       cloneFloat(c.MultipleOf),
		}
	case KindList:
		s := &js.Schema{Type: string(TypeArray), MinItems: cloneInt(c.MinItems), MaxItems: cloneInt(c.MaxItems)}
		if t.elem != nil {
			s.Items = typeSchema(*t.elem)
		}
		return s
	case KindModel:
		return Export(t.model)
	case KindLiteral:
		return &js.Schema{Enum: t.Literals()}
	case KindUnion:
		s := &js.Schema{AnyOf: make([]*js.Schema, len(t.variants))}
		for i, v := range t.variants {
			s.AnyOf[i] = typeSchema(v)
		}
		return s
	}
	// boolean, null, map
	return &js.Schema{Type: string(typeNameOf(t.kind))}
}
