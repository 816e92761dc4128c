// Package jsondoc holds the insertion-ordered JSON document model that schema
// documents are read into. Key order matters: compiled models keep the field
// order of the source document, and re-serialised schemas keep it too.
package jsondoc

import (
	"bytes"
	"sort"

	"github.com/goccy/go-json"
)

// Object is a JSON object that remembers key insertion order.
//
// Values are nil, bool, string, a number (json.Number when parsed from JSON
// text; int, int64 or float64 when built from YAML or Go maps), []any or
// *Object. An Object handed to the validator or compiler is only read.
type Object struct {
	keys   []string
	values map[string]any
}

// NewObject returns an empty Object.
func NewObject() *Object {
	return &Object{values: make(map[string]any)}
}

// Set stores v under key. A new key is appended; an existing key keeps its
// position.
func (o *Object) Set(key string, v any) *Object {
	if o.values == nil {
		o.values = make(map[string]any)
	}
	if _, ok := o.values[key]; !ok {
		o.keys = append(o.keys, key)
	}
	o.values[key] = v
	return o
}

// Get returns the value stored under key.
func (o *Object) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	v, ok := o.values[key]
	return v, ok
}

// Has reports whether key is present (even with a null value).
func (o *Object) Has(key string) bool {
	_, ok := o.Get(key)
	return ok
}

// Len returns the number of keys.
func (o *Object) Len() int {
	if o == nil {
		return 0
	}
	return len(o.keys)
}

// Keys returns a copy of the keys in insertion order.
func (o *Object) Keys() []string {
	if o == nil {
		return nil
	}
	return append([]string(nil), o.keys...)
}

// Range calls fn for each entry in order until fn returns false.
func (o *Object) Range(fn func(key string, v any) bool) {
	if o == nil {
		return
	}
	for _, k := range o.keys {
		if !fn(k, o.values[k]) {
			return
		}
	}
}

// ToMap converts the Object (recursively) into plain Go maps and slices.
func (o *Object) ToMap() map[string]any {
	if o == nil {
		return nil
	}
	out := make(map[string]any, len(o.keys))
	for _, k := range o.keys {
		out[k] = toPlain(o.values[k])
	}
	return out
}

func toPlain(v any) any {
	switch t := v.(type) {
	case *Object:
		return t.ToMap()
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = toPlain(t[i])
		}
		return arr
	default:
		return v
	}
}

// MarshalJSON writes the object with keys in insertion order.
func (o *Object) MarshalJSON() ([]byte, error) {
	if o == nil {
		return []byte("null"), nil
	}
	var buf bytes.Buffer
	buf.WriteByte('{')
	for i, k := range o.keys {
		if i > 0 {
			buf.WriteByte(',')
		}
		kb, err := json.Marshal(k)
		if err != nil {
			return nil, err
		}
		buf.Write(kb)
		buf.WriteByte(':')
		vb, err := json.Marshal(o.values[k])
		if err != nil {
			return nil, err
		}
		buf.Write(vb)
	}
	buf.WriteByte('}')
	return buf.Bytes(), nil
}

// MarshalIndent renders the object as indented JSON.
func MarshalIndent(o *Object) ([]byte, error) {
	raw, err := o.MarshalJSON()
	if err != nil {
		return nil, err
	}
	var buf bytes.Buffer
	if err := json.Indent(&buf, raw, "", "  "); err != nil {
		return nil, err
	}
	buf.WriteByte('\n')
	return buf.Bytes(), nil
}

// From normalizes a schema value into an *Object. Go maps have no order, so
// their keys are sorted to keep results deterministic.
func From(v any) (*Object, error) {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return nil, ErrNotObject
		}
		return t, nil
	case []byte:
		return Parse(t)
	case json.RawMessage:
		return Parse(t)
	case string:
		return Parse([]byte(t))
	case map[string]any, map[any]any:
		o, ok := fromPlain(t).(*Object)
		if !ok {
			return nil, ErrNotObject
		}
		return o, nil
	default:
		return nil, ErrNotObject
	}
}

func fromPlain(v any) any {
	switch t := v.(type) {
	case map[string]any:
		keys := make([]string, 0, len(t))
		for k := range t {
			keys = append(keys, k)
		}
		sort.Strings(keys)
		o := &Object{keys: keys, values: make(map[string]any, len(t))}
		for _, k := range keys {
			o.values[k] = fromPlain(t[k])
		}
		return o
	case map[any]any:
		m := make(map[string]any, len(t))
		for k, vv := range t {
			if ks, ok := k.(string); ok {
				m[ks] = vv
			}
		}
		return fromPlain(m)
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = fromPlain(t[i])
		}
		return arr
	case []string:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = t[i]
		}
		return arr
	case []map[string]any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = fromPlain(t[i])
		}
		return arr
	default:
		return v
	}
}
