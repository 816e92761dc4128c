package autoschema

import (
	"errors"
	"strconv"
	"strings"

	"github.com/reoring/autoschema/jsondoc"
)

// Validate checks a schema document against the supported subset and returns
// the first violation as a *ValidationError. The document is never modified.
//
// schema may be a *jsondoc.Object, a map[string]any, or JSON text ([]byte or
// string); malformed JSON text yields a *DecodeError.
func Validate(schema any, opts ...Options) error {
	doc, err := toDocument(schema)
	if err != nil {
		if errors.Is(err, jsondoc.ErrNotObject) {
			return newValidationError(location{}, CodeRootNotObject, map[string]string{"type": describe(schema)})
		}
		return err
	}
	v := validator{opts: pickOptions(opts)}
	return v.validateRoot(doc)
}

func toDocument(schema any) (*jsondoc.Object, error) {
	doc, err := jsondoc.From(schema)
	if err != nil && !errors.Is(err, jsondoc.ErrNotObject) {
		return nil, &DecodeError{Err: err}
	}
	return doc, err
}

type validator struct {
	opts Options
}

func (v validator) validateRoot(doc *jsondoc.Object) error {
	at := location{}
	t, ok := doc.Get(kwType)
	if !ok {
		return newValidationError(at, CodeMissingType, nil)
	}
	if s, _ := t.(string); s != string(TypeObject) {
		return newValidationError(at, CodeRootNotObject, map[string]string{"type": describe(t)})
	}
	raw, ok := doc.Get(kwProperties)
	if !ok {
		return newValidationError(at, CodeMissingProperties, nil)
	}
	props, ok := raw.(*jsondoc.Object)
	if !ok {
		return newValidationError(at.key(kwProperties), CodeInvalidProperties, nil)
	}
	if props.Len() == 0 {
		return newValidationError(at, CodeMissingProperties, nil)
	}
	if err := v.validateProperties(props, at); err != nil {
		return err
	}
	return v.validateRequired(doc, props, at)
}

func (v validator) validateProperties(props *jsondoc.Object, parent location) error {
	var err error
	props.Range(func(name string, raw any) bool {
		at := parent.property(name)
		field, ok := raw.(*jsondoc.Object)
		if !ok {
			err = newValidationError(at, CodeInvalidField, nil)
			return false
		}
		err = v.validateField(field, at)
		return err == nil
	})
	return err
}

func (v validator) validateField(f *jsondoc.Object, at location) error {
	if v.opts.tooDeep(at) {
		return newValidationError(at, CodeTooDeep, map[string]string{"max": strconv.Itoa(v.opts.maxDepth())})
	}
	types, err := v.checkType(f, at)
	if err != nil {
		return err
	}
	if f.Has(kwFormat) && contains(types, string(TypeString)) {
		if err := v.checkFormat(f, at); err != nil {
			return err
		}
	}
	if len(types) == 1 {
		switch TypeName(types[0]) {
		case TypeNumber, TypeInteger:
			if err := v.checkNumeric(f, types[0], at); err != nil {
				return err
			}
		case TypeArray:
			if err := v.checkArray(f, at); err != nil {
				return err
			}
		case TypeObject:
			if err := v.checkObject(f, at); err != nil {
				return err
			}
		}
	}
	if raw, ok := f.Get(kwEnum); ok {
		if err := v.checkEnum(raw, at.key(kwEnum)); err != nil {
			return err
		}
	}
	if raw, ok := f.Get(kwAnyOf); ok {
		if err := v.checkAnyOf(raw, at); err != nil {
			return err
		}
	}
	return nil
}

// checkType returns the declared type names (nil when type is absent).
func (v validator) checkType(f *jsondoc.Object, at location) ([]string, error) {
	raw, ok := f.Get(kwType)
	if !ok {
		return nil, nil
	}
	tat := at.key(kwType)
	var names []string
	switch t := raw.(type) {
	case string:
		names = []string{t}
	case []any:
		if len(t) == 0 {
			return nil, newValidationError(tat, CodeInvalidTypeValue, nil)
		}
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				return nil, newValidationError(tat, CodeInvalidTypeValue, nil)
			}
			names = append(names, s)
		}
	default:
		return nil, newValidationError(tat, CodeInvalidTypeValue, nil)
	}
	for _, n := range names {
		if !IsSupportedType(n) {
			return nil, newValidationError(tat, CodeUnsupportedType, map[string]string{"type": n})
		}
	}
	return names, nil
}

func (v validator) checkFormat(f *jsondoc.Object, at location) error {
	raw, _ := f.Get(kwFormat)
	s, ok := raw.(string)
	if !ok || !IsSupportedFormat(s) {
		return newValidationError(at.key(kwFormat), CodeUnsupportedFormat, map[string]string{"format": describe(raw)})
	}
	return nil
}

func (v validator) checkNumeric(f *jsondoc.Object, typ string, at location) error {
	for _, k := range f.Keys() {
		if !contains(numericConstraintKey, k) && !contains(metadataKeys, k) && k != kwEnum {
			return newValidationError(at.key(k), CodeUnsupportedConstraint, map[string]string{"kind": typ, "key": k})
		}
	}
	if raw, ok := f.Get(kwMultipleOf); ok {
		n, ok := jsondoc.AsFloat(raw)
		if !ok {
			return newValidationError(at.key(kwMultipleOf), CodeNotANumber, map[string]string{"key": kwMultipleOf})
		}
		if n <= 0 {
			return newValidationError(at.key(kwMultipleOf), CodeNotPositive, map[string]string{"key": kwMultipleOf})
		}
	}
	for _, pair := range [][2]string{{kwMaximum, kwExclusiveMaximum}, {kwMinimum, kwExclusiveMinimum}} {
		if f.Has(pair[0]) && f.Has(pair[1]) {
			return newValidationError(at.key(pair[1]), CodeConflictingBounds, map[string]string{"first": pair[0], "second": pair[1]})
		}
	}
	for _, k := range []string{kwMaximum, kwExclusiveMaximum, kwMinimum, kwExclusiveMinimum} {
		if raw, ok := f.Get(k); ok && !jsondoc.IsNumber(raw) {
			return newValidationError(at.key(k), CodeNotANumber, map[string]string{"key": k})
		}
	}
	return nil
}

func (v validator) checkArray(f *jsondoc.Object, at location) error {
	for _, k := range f.Keys() {
		if !contains(arrayConstraintKeys, k) && !contains(metadataKeys, k) {
			return newValidationError(at.key(k), CodeUnsupportedConstraint, map[string]string{"kind": string(TypeArray), "key": k})
		}
	}
	bounds := map[string]int64{}
	for _, k := range []string{kwMinItems, kwMaxItems} {
		raw, ok := f.Get(k)
		if !ok {
			continue
		}
		n, ok := jsondoc.AsInt(raw)
		if !ok {
			return newValidationError(at.key(k), CodeNotAnInteger, map[string]string{"key": k})
		}
		if n < 0 {
			return newValidationError(at.key(k), CodeNegative, map[string]string{"key": k})
		}
		bounds[k] = n
	}
	minN, hasMin := bounds[kwMinItems]
	maxN, hasMax := bounds[kwMaxItems]
	if hasMin && hasMax && minN > maxN {
		return newValidationError(at.key(kwMinItems), CodeMinItemsExceedsMax, nil)
	}
	raw, ok := f.Get(kwItems)
	if !ok {
		return nil
	}
	items, ok := raw.(*jsondoc.Object)
	if !ok {
		return newValidationError(at.key(kwItems), CodeInvalidItems, nil)
	}
	return v.validateField(items, at.items())
}

func (v validator) checkObject(f *jsondoc.Object, at location) error {
	raw, ok := f.Get(kwProperties)
	if !ok {
		// An object without properties compiles to an untyped mapping;
		// required names still have to refer to something.
		return v.validateRequired(f, jsondoc.NewObject(), at)
	}
	props, ok := raw.(*jsondoc.Object)
	if !ok {
		return newValidationError(at.key(kwProperties), CodeInvalidProperties, nil)
	}
	if err := v.validateProperties(props, at); err != nil {
		return err
	}
	return v.validateRequired(f, props, at)
}

func (v validator) checkEnum(raw any, at location) error {
	values, ok := raw.([]any)
	if !ok {
		return newValidationError(at, CodeInvalidEnum, nil)
	}
	if len(values) == 0 {
		return newValidationError(at, CodeEmptyEnum, nil)
	}
	seen := make(map[string]struct{}, len(values))
	var dups []string
	for _, val := range values {
		if !jsondoc.IsScalar(val) {
			return newValidationError(at, CodeNonScalarEnum, nil)
		}
		key := jsondoc.Stringify(val)
		if _, ok := seen[key]; ok {
			if !contains(dups, key) {
				dups = append(dups, key)
			}
			continue
		}
		seen[key] = struct{}{}
	}
	if len(dups) > 0 {
		return newValidationError(at, CodeDuplicateEnum, map[string]string{"value": quoteList(dups)})
	}
	return nil
}

// checkAnyOf validates the union structurally only; members are resolved and
// reported by the compiler.
func (v validator) checkAnyOf(raw any, at location) error {
	members, ok := raw.([]any)
	if !ok {
		return newValidationError(at.key(kwAnyOf), CodeInvalidAnyOf, nil)
	}
	if len(members) == 0 {
		return newValidationError(at.key(kwAnyOf), CodeEmptyAnyOf, nil)
	}
	for i, m := range members {
		if _, ok := m.(*jsondoc.Object); !ok {
			return newValidationError(at.anyOf(i), CodeInvalidAnyOfMember, map[string]string{"index": strconv.Itoa(i)})
		}
	}
	return nil
}

func (v validator) validateRequired(node, props *jsondoc.Object, at location) error {
	raw, ok := node.Get(kwRequired)
	if !ok {
		return nil
	}
	rat := at.key(kwRequired)
	names, ok := raw.([]any)
	if !ok {
		return newValidationError(rat, CodeInvalidRequired, nil)
	}
	for i, it := range names {
		s, ok := it.(string)
		if !ok {
			return newValidationError(rat.key(strconv.Itoa(i)), CodeInvalidRequiredName, map[string]string{"value": describe(it)})
		}
		if !props.Has(s) {
			return newValidationError(rat.key(strconv.Itoa(i)), CodeUnknownRequired, map[string]string{"name": s})
		}
	}
	return nil
}

// describe renders an arbitrary schema value for messages.
func describe(v any) string {
	switch t := v.(type) {
	case *jsondoc.Object, map[string]any:
		return "object"
	case []any:
		parts := make([]string, 0, len(t))
		for _, it := range t {
			parts = append(parts, describe(it))
		}
		return "[" + strings.Join(parts, ", ") + "]"
	case []byte:
		return "document"
	}
	return jsondoc.Stringify(v)
}
