package autoschema

import (
	"errors"
	"strconv"
	"strings"

	"github.com/reoring/autoschema/jsondoc"
)

const (
	defaultModelName  = "DynamicModel"
	defaultNestedName = "NestedModel"
)

// Compile builds a ModelDescriptor from a schema document. The model is named
// name, else the root title, else "DynamicModel".
//
// Compile does not run Validate; documents loaded from storage should go
// through ValidateAndCompile. The root must still be an object schema.
func Compile(schema any, name string, opts ...Options) (*ModelDescriptor, error) {
	doc, err := toDocument(schema)
	if err != nil {
		if errors.Is(err, jsondoc.ErrNotObject) {
			return nil, newBuildError(location{}, err, "top-level schema must be of type 'object'")
		}
		return nil, err
	}
	c := compiler{opts: pickOptions(opts)}
	if name == "" {
		name = stringKey(doc, kwTitle)
	}
	if name == "" {
		name = defaultModelName
	}
	return c.buildModel(doc, name, location{})
}

// ValidateAndCompile runs Validate followed by Compile.
func ValidateAndCompile(schema any, name string, opts ...Options) (*ModelDescriptor, error) {
	doc, err := toDocument(schema)
	if err != nil && !errors.Is(err, jsondoc.ErrNotObject) {
		return nil, err
	}
	if err := Validate(orSchema(doc, schema), opts...); err != nil {
		return nil, err
	}
	return Compile(doc, name, opts...)
}

func orSchema(doc *jsondoc.Object, schema any) any {
	if doc == nil {
		return schema
	}
	return doc
}

type compiler struct {
	opts Options
}

func (c compiler) buildModel(node *jsondoc.Object, name string, at location) (*ModelDescriptor, error) {
	if c.opts.tooDeep(at) {
		return nil, newBuildError(at, ErrTooDeep, "schema too deeply nested (max depth %d)", c.opts.maxDepth())
	}
	if t, _ := node.Get(kwType); t != string(TypeObject) {
		return nil, newBuildError(at, nil, "top-level schema must be of type 'object', got %s", describe(t))
	}
	var props *jsondoc.Object
	if raw, ok := node.Get(kwProperties); ok {
		p, ok := raw.(*jsondoc.Object)
		if !ok {
			return nil, newBuildError(at.key(kwProperties), nil, "'properties' must be an object")
		}
		props = p
	}
	required := map[string]bool{}
	if raw, ok := node.Get(kwRequired); ok {
		if list, ok := raw.([]any); ok {
			for _, it := range list {
				if s, ok := it.(string); ok {
					required[s] = true
				}
			}
		}
	}

	fields := make([]FieldDescriptor, 0, props.Len())
	var err error
	props.Range(func(fname string, raw any) bool {
		fat := at.property(fname)
		fnode, ok := raw.(*jsondoc.Object)
		if !ok {
			err = newBuildError(fat, nil, "definition of field '%s' must be an object", fname)
			return false
		}
		var fd FieldDescriptor
		fd, err = c.buildField(fname, fnode, required[fname], fat)
		if err != nil {
			return false
		}
		fields = append(fields, fd)
		return true
	})
	if err != nil {
		return nil, err
	}
	return newModel(name, stringKey(node, kwDescription), fields), nil
}

func (c compiler) buildField(name string, node *jsondoc.Object, required bool, at location) (FieldDescriptor, error) {
	typ, err := c.resolve(node, at)
	if err != nil {
		return FieldDescriptor{}, err
	}
	fd := FieldDescriptor{name: name, typ: typ, required: required, description: stringKey(node, kwDescription)}
	def, hasDefault := node.Get(kwDefault)
	if hasDefault {
		fd.def, fd.hasDefault = jsondoc.Clone(def), true
	}
	if !required {
		fd.typ = Nullable(typ)
		fd.hasDefault = true
	}
	return fd, nil
}

// resolve maps a field schema to its Type in fixed priority: anyOf, enum,
// type list, string format, array, object, primitive.
func (c compiler) resolve(node *jsondoc.Object, at location) (Type, error) {
	if c.opts.tooDeep(at) {
		return Type{}, newBuildError(at, ErrTooDeep, "schema too deeply nested (max depth %d)", c.opts.maxDepth())
	}
	if raw, ok := node.Get(kwAnyOf); ok {
		return c.resolveAnyOf(raw, at)
	}
	if raw, ok := node.Get(kwEnum); ok {
		values, ok := raw.([]any)
		if !ok {
			return Type{}, newBuildError(at.key(kwEnum), nil, "'enum' must be a list")
		}
		if len(values) == 0 {
			return Text(), nil
		}
		return Literal(values...), nil
	}

	raw, ok := node.Get(kwType)
	if !ok {
		raw = string(TypeString)
	}
	switch t := raw.(type) {
	case []any:
		variants := make([]Type, 0, len(t))
		for _, it := range t {
			name, _ := it.(string)
			v, err := c.primitive(name, it, at)
			if err != nil {
				return Type{}, err
			}
			variants = append(variants, v)
		}
		return Union(variants...), nil
	case string:
		switch TypeName(t) {
		case TypeString:
			if f, ok := node.Get(kwFormat); ok {
				if fs, _ := f.(string); IsSupportedFormat(fs) {
					return formatType(Format(fs)), nil
				}
			}
		case TypeArray:
			return c.resolveArray(node, at)
		case TypeObject:
			if !node.Has(kwProperties) {
				return Map(), nil
			}
			name := stringKey(node, kwTitle)
			if name == "" {
				name = defaultNestedName
			}
			m, err := c.buildModel(node, name, at)
			if err != nil {
				return Type{}, err
			}
			return ModelOf(m), nil
		case TypeNumber, TypeInteger:
			p, err := c.primitive(t, t, at)
			if err != nil {
				return Type{}, err
			}
			return p.withConstraints(numericConstraints(node)), nil
		}
		return c.primitive(t, t, at)
	default:
		return c.primitive("", raw, at)
	}
}

func (c compiler) resolveAnyOf(raw any, at location) (Type, error) {
	members, ok := raw.([]any)
	if !ok {
		return Type{}, newBuildError(at.key(kwAnyOf), nil, "'anyOf' must be a list")
	}
	if len(members) == 0 {
		return Text(), nil
	}
	variants := make([]Type, 0, len(members))
	for i, m := range members {
		mat := at.anyOf(i)
		mnode, ok := m.(*jsondoc.Object)
		if !ok {
			return Type{}, newBuildError(mat, nil, "'anyOf' member %d must be an object", i)
		}
		v, err := c.resolve(mnode, mat)
		if err != nil {
			return Type{}, err
		}
		variants = append(variants, v)
	}
	return Union(variants...), nil
}

func (c compiler) resolveArray(node *jsondoc.Object, at location) (Type, error) {
	cons := arrayConstraints(node)
	raw, ok := node.Get(kwItems)
	if !ok {
		return UntypedList().withConstraints(cons), nil
	}
	items, ok := raw.(*jsondoc.Object)
	if !ok {
		return Type{}, newBuildError(at.key(kwItems), nil, "'items' must be an object")
	}
	elem, err := c.resolve(items, at.items())
	if err != nil {
		return Type{}, err
	}
	return ListOf(elem).withConstraints(cons), nil
}

// primitive maps a type keyword through the primitive table. Unknown names
// fall back to text unless StrictTypes is set.
func (c compiler) primitive(name string, raw any, at location) (Type, error) {
	k, ok := primitiveKind(name)
	if !ok {
		if c.opts.StrictTypes {
			return Type{}, newBuildError(at.key(kwType), nil, "type '%s' is not supported", describe(raw))
		}
		return Text(), nil
	}
	switch k {
	case KindList:
		return UntypedList(), nil
	case KindMap:
		return Map(), nil
	}
	return Type{kind: k}, nil
}

func formatType(f Format) Type {
	k, _ := formatKind(string(f))
	if k == KindText {
		return TextWithFormat(f)
	}
	return Type{kind: k}
}

func numericConstraints(node *jsondoc.Object) Constraints {
	get := func(k string) *float64 {
		raw, ok := node.Get(k)
		if !ok {
			return nil
		}
		f, ok := jsondoc.AsFloat(raw)
		if !ok {
			return nil
		}
		return &f
	}
	return Constraints{
		Minimum:          get(kwMinimum),
		Maximum:          get(kwMaximum),
		ExclusiveMinimum: get(kwExclusiveMinimum),
		ExclusiveMaximum: get(kwExclusiveMaximum),
		MultipleOf:       get(kwMultipleOf),
	}
}

func arrayConstraints(node *jsondoc.Object) Constraints {
	get := func(k string) *int {
		raw, ok := node.Get(k)
		if !ok {
			return nil
		}
		n, ok := jsondoc.AsInt(raw)
		if !ok || n < 0 {
			return nil
		}
		i := int(n)
		return &i
	}
	return Constraints{MinItems: get(kwMinItems), MaxItems: get(kwMaxItems)}
}

func stringKey(node *jsondoc.Object, key string) string {
	raw, _ := node.Get(key)
	s, _ := raw.(string)
	return s
}

// String renders the model on one line, e.g. "User{name: text, age?: int64 | null = null}".
func (m *ModelDescriptor) String() string {
	parts := make([]string, len(m.fields))
	for i, f := range m.fields {
		parts[i] = f.String()
	}
	return m.name + "{" + strings.Join(parts, ", ") + "}"
}

// String renders the field as "name: type" with markers for optionality and
// defaults.
func (f FieldDescriptor) String() string {
	s := f.name
	if !f.required {
		s += "?"
	}
	s += ": " + f.typ.String()
	if f.hasDefault {
		if str, ok := f.def.(string); ok {
			s += " = " + strconv.Quote(str)
		} else {
			s += " = " + describe(f.def)
		}
	}
	return s
}
