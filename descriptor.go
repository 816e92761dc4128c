package autoschema

import (
	"reflect"
	"strconv"
	"strings"

	"github.com/reoring/autoschema/jsondoc"
)

// Kind identifies the resolved semantic type of a field.
type Kind int

const (
	KindText Kind = iota
	KindInteger
	KindNumber
	KindBoolean
	KindNull
	KindTimestamp // string with format date-time
	KindDate      // string with format date
	KindTimeOfDay // string with format time
	KindList
	KindMap // untyped mapping (object without properties)
	KindModel
	KindLiteral
	KindUnion
)

func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindInteger:
		return "int64"
	case KindNumber:
		return "float64"
	case KindBoolean:
		return "bool"
	case KindNull:
		return "null"
	case KindTimestamp:
		return "timestamp"
	case KindDate:
		return "date"
	case KindTimeOfDay:
		return "time"
	case KindList:
		return "list"
	case KindMap:
		return "map"
	case KindModel:
		return "model"
	case KindLiteral:
		return "literal"
	case KindUnion:
		return "union"
	}
	return "kind(" + strconv.Itoa(int(k)) + ")"
}

// Constraints carries the numeric and array constraints of a type so they
// survive re-serialization. Nil pointers mean "not set".
type Constraints struct {
	Minimum          *float64
	Maximum          *float64
	ExclusiveMinimum *float64
	ExclusiveMaximum *float64
	MultipleOf       *float64
	MinItems         *int
	MaxItems         *int
}

// IsZero reports whether no constraint is set.
func (c Constraints) IsZero() bool {
	return c.Minimum == nil && c.Maximum == nil && c.ExclusiveMinimum == nil &&
		c.ExclusiveMaximum == nil && c.MultipleOf == nil && c.MinItems == nil && c.MaxItems == nil
}

func (c Constraints) clone() Constraints {
	return Constraints{
		Minimum:          cloneFloat(c.Minimum),
		Maximum:          cloneFloat(c.Maximum),
		ExclusiveMinimum: cloneFloat(c.ExclusiveMinimum),
		ExclusiveMaximum: cloneFloat(c.ExclusiveMaximum),
		MultipleOf:       cloneFloat(c.MultipleOf),
		MinItems:         cloneInt(c.MinItems),
		MaxItems:         cloneInt(c.MaxItems),
	}
}

func (c Constraints) equal(o Constraints) bool {
	return eqFloat(c.Minimum, o.Minimum) && eqFloat(c.Maximum, o.Maximum) &&
		eqFloat(c.ExclusiveMinimum, o.ExclusiveMinimum) && eqFloat(c.ExclusiveMaximum, o.ExclusiveMaximum) &&
		eqFloat(c.MultipleOf, o.MultipleOf) && eqInt(c.MinItems, o.MinItems) && eqInt(c.MaxItems, o.MaxItems)
}

// Type is the resolved type of a field: a tagged variant over Kind. The zero
// value is Text.
type Type struct {
	kind     Kind
	format   Format
	elem     *Type
	model    *ModelDescriptor
	values   []any
	variants []Type
	cons     Constraints
}

// Text returns the plain string type.
func Text() Type { return Type{kind: KindText} }

// TextWithFormat returns a string type remembering a format that has no richer
// native representation (email, uuid, ...).
func TextWithFormat(f Format) Type { return Type{kind: KindText, format: f} }

// Integer returns the 64-bit integer type ("integer").
func Integer() Type { return Type{kind: KindInteger} }

// Number returns the floating point type ("number").
func Number() Type { return Type{kind: KindNumber} }

// Boolean returns the boolean type.
func Boolean() Type { return Type{kind: KindBoolean} }

// Null returns the null type. It appears on its own only inside unions.
func Null() Type { return Type{kind: KindNull} }

// Timestamp returns the date-and-time type ("date-time" strings).
func Timestamp() Type { return Type{kind: KindTimestamp} }

// Date returns the calendar date type ("date" strings).
func Date() Type { return Type{kind: KindDate} }

// TimeOfDay returns the time-of-day type ("time" strings).
func TimeOfDay() Type { return Type{kind: KindTimeOfDay} }

// Map returns an untyped string-keyed mapping (an object without properties).
func Map() Type { return Type{kind: KindMap} }

// UntypedList returns a list whose element type is unknown.
func UntypedList() Type { return Type{kind: KindList} }

// ListOf returns an ordered sequence of elem.
func ListOf(elem Type) Type { return Type{kind: KindList, elem: &elem} }

// ModelOf wraps a nested model.
func ModelOf(m *ModelDescriptor) Type { return Type{kind: KindModel, model: m} }

// Literal returns a closed set of values. The order is kept for descriptor
// and serialization purposes only.
func Literal(values ...any) Type {
	vs := make([]any, len(values))
	for i, v := range values {
		vs[i] = jsondoc.Clone(v)
	}
	return Type{kind: KindLiteral, values: vs}
}

// Union combines variants. Nested unions are flattened, structurally equal
// variants are merged and a single remaining variant is returned unwrapped.
func Union(variants ...Type) Type {
	var flat []Type
	var add func(t Type)
	add = func(t Type) {
		if t.kind == KindUnion {
			for _, v := range t.variants {
				add(v)
			}
			return
		}
		for _, seen := range flat {
			if seen.Equal(t) {
				return
			}
		}
		flat = append(flat, t)
	}
	for _, v := range variants {
		add(v)
	}
	switch len(flat) {
	case 0:
		return Text()
	case 1:
		return flat[0]
	}
	return Type{kind: KindUnion, variants: flat}
}

// Nullable widens t to "t or null".
func Nullable(t Type) Type { return Union(t, Null()) }

func (t Type) withConstraints(c Constraints) Type {
	t.cons = c
	return t
}

// Kind returns the variant tag.
func (t Type) Kind() Kind { return t.kind }

// Format returns the string format of a text or temporal type.
func (t Type) Format() Format {
	if t.format != "" {
		return t.format
	}
	return formatOf(t.kind)
}

// Elem returns the element type of a typed list.
func (t Type) Elem() (Type, bool) {
	if t.kind != KindList || t.elem == nil {
		return Type{}, false
	}
	return *t.elem, true
}

// Model returns the nested model of a KindModel type, or nil.
func (t Type) Model() *ModelDescriptor { return t.model }

// Literals returns a copy of the literal values.
func (t Type) Literals() []any {
	out := make([]any, len(t.values))
	for i, v := range t.values {
		out[i] = jsondoc.Clone(v)
	}
	return out
}

// Variants returns a copy of the union members.
func (t Type) Variants() []Type { return append([]Type(nil), t.variants...) }

// Constraints returns a copy of the numeric/array constraints.
func (t Type) Constraints() Constraints { return t.cons.clone() }

// AllowsNull reports whether null is a valid value of t.
func (t Type) AllowsNull() bool {
	switch t.kind {
	case KindNull:
		return true
	case KindUnion:
		for _, v := range t.variants {
			if v.AllowsNull() {
				return true
			}
		}
	case KindLiteral:
		for _, v := range t.values {
			if v == nil {
				return true
			}
		}
	}
	return false
}

// NonNull returns t without its null variant.
func (t Type) NonNull() Type {
	if t.kind != KindUnion {
		return t
	}
	var keep []Type
	for _, v := range t.variants {
		if v.kind != KindNull {
			keep = append(keep, v)
		}
	}
	if len(keep) == 0 {
		return Null()
	}
	return Union(keep...)
}

// Equal reports structural equality. Nested models compare by name and fields.
func (t Type) Equal(o Type) bool {
	if t.kind != o.kind || t.Format() != o.Format() || !t.cons.equal(o.cons) {
		return false
	}
	switch t.kind {
	case KindList:
		if (t.elem == nil) != (o.elem == nil) {
			return false
		}
		return t.elem == nil || t.elem.Equal(*o.elem)
	case KindModel:
		return t.model.Equal(o.model)
	case KindLiteral:
		return reflect.DeepEqual(t.values, o.values)
	case KindUnion:
		if len(t.variants) != len(o.variants) {
			return false
		}
		for i := range t.variants {
			if !t.variants[i].Equal(o.variants[i]) {
				return false
			}
		}
	}
	return true
}

// String renders the type, e.g. "int64 | null" or "list[text(email)]".
func (t Type) String() string {
	switch t.kind {
	case KindText:
		if t.format != "" {
			return "text(" + string(t.format) + ")"
		}
		return "text"
	case KindList:
		if t.elem == nil {
			return "list"
		}
		return "list[" + t.elem.String() + "]"
	case KindModel:
		if t.model == nil {
			return "model"
		}
		return "model(" + t.model.name + ")"
	case KindLiteral:
		parts := make([]string, len(t.values))
		for i, v := range t.values {
			if s, ok := v.(string); ok {
				parts[i] = strconv.Quote(s)
			} else {
				parts[i] = jsondoc.Stringify(v)
			}
		}
		return "literal[" + strings.Join(parts, ", ") + "]"
	case KindUnion:
		parts := make([]string, len(t.variants))
		for i, v := range t.variants {
			parts[i] = v.String()
		}
		return strings.Join(parts, " | ")
	}
	return t.kind.String()
}

// FieldDescriptor describes one field of a model.
type FieldDescriptor struct {
	name        string
	typ         Type
	required    bool
	def         any
	hasDefault  bool
	description string
}

// Name is the property name as written in the schema.
func (f FieldDescriptor) Name() string { return f.name }

// Type is the resolved type. Optional fields are already widened to allow null.
func (f FieldDescriptor) Type() Type { return f.typ }

// Required reports whether the property is listed in "required".
func (f FieldDescriptor) Required() bool { return f.required }

// Description is the schema "description", or empty.
func (f FieldDescriptor) Description() string { return f.description }

// Default returns the default value; ok is false when the field has no
// default, which is distinct from a null default (nil, true).
func (f FieldDescriptor) Default() (v any, ok bool) {
	if !f.hasDefault {
		return nil, false
	}
	return jsondoc.Clone(f.def), true
}

// HasDefault reports whether a default is set.
func (f FieldDescriptor) HasDefault() bool { return f.hasDefault }

func (f FieldDescriptor) equal(o FieldDescriptor) bool {
	return f.name == o.name && f.required == o.required && f.hasDefault == o.hasDefault &&
		f.description == o.description && f.typ.Equal(o.typ) && reflect.DeepEqual(f.def, o.def)
}

// ModelDescriptor is the compiled, immutable description of a record type.
// Every compile produces a fresh tree owned by the caller.
type ModelDescriptor struct {
	name        string
	description string
	fields      []FieldDescriptor
	index       map[string]int
}

func newModel(name, description string, fields []FieldDescriptor) *ModelDescriptor {
	m := &ModelDescriptor{name: name, description: description, fields: fields, index: make(map[string]int, len(fields))}
	for i, f := range fields {
		m.index[f.name] = i
	}
	return m
}

// Name is the model name: the explicit name, the schema title or a fallback.
func (m *ModelDescriptor) Name() string { return m.name }

// Description is the schema "description", or empty.
func (m *ModelDescriptor) Description() string { return m.description }

// Len returns the number of fields.
func (m *ModelDescriptor) Len() int { return len(m.fields) }

// Fields returns the fields in schema order.
func (m *ModelDescriptor) Fields() []FieldDescriptor {
	return append([]FieldDescriptor(nil), m.fields...)
}

// Field looks a field up by name.
func (m *ModelDescriptor) Field(name string) (FieldDescriptor, bool) {
	i, ok := m.index[name]
	if !ok {
		return FieldDescriptor{}, false
	}
	return m.fields[i], true
}

// FieldNames returns the field names in schema order.
func (m *ModelDescriptor) FieldNames() []string {
	out := make([]string, len(m.fields))
	for i, f := range m.fields {
		out[i] = f.name
	}
	return out
}

// RequiredFields returns the names of required fields in schema order.
func (m *ModelDescriptor) RequiredFields() []string {
	var out []string
	for _, f := range m.fields {
		if f.required {
			out = append(out, f.name)
		}
	}
	return out
}

// Equal reports structural equality of two descriptors.
func (m *ModelDescriptor) Equal(o *ModelDescriptor) bool {
	if m == nil || o == nil {
		return m == o
	}
	if m.name != o.name || m.description != o.description || len(m.fields) != len(o.fields) {
		return false
	}
	for i := range m.fields {
		if !m.fields[i].equal(o.fields[i]) {
			return false
		}
	}
	return true
}

func cloneFloat(p *float64) *float64 {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func cloneInt(p *int) *int {
	if p == nil {
		return nil
	}
	v := *p
	return &v
}

func eqFloat(a, b *float64) bool { return (a == nil && b == nil) || (a != nil && b != nil && *a == *b) }
func eqInt(a, b *int) bool       { return (a == nil && b == nil) || (a != nil && b != nil && *a == *b) }
