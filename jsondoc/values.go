package jsondoc

import (
	"fmt"
	"math"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// Number is the representation of numbers decoded from JSON text.
type Number = json.Number

type numberLike interface {
	Float64() (float64, error)
	Int64() (int64, error)
	String() string
}

var pointerEscaper = strings.NewReplacer("~", "~0", "/", "~1")

// IsNumber reports whether v is a JSON number in any of the accepted
// representations. Booleans are not numbers.
func IsNumber(v any) bool {
	_, ok := AsFloat(v)
	return ok
}

// AsFloat converts a numeric value to float64.
func AsFloat(v any) (float64, bool) {
	switch t := v.(type) {
	case float64:
		return t, true
	case float32:
		return float64(t), true
	case int:
		return float64(t), true
	case int8:
		return float64(t), true
	case int16:
		return float64(t), true
	case int32:
		return float64(t), true
	case int64:
		return float64(t), true
	case uint:
		return float64(t), true
	case uint8:
		return float64(t), true
	case uint16:
		return float64(t), true
	case uint32:
		return float64(t), true
	case uint64:
		return float64(t), true
	case numberLike:
		f, err := t.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

// AsInt converts an integral numeric value to int64. Numbers written with a
// fraction or exponent in JSON text are not integers, matching how a JSON
// decoder into an integer type behaves; float64 values from Go maps are
// accepted when they carry no fractional part.
func AsInt(v any) (int64, bool) {
	switch t := v.(type) {
	case int:
		return int64(t), true
	case int8:
		return int64(t), true
	case int16:
		return int64(t), true
	case int32:
		return int64(t), true
	case int64:
		return t, true
	case uint:
		return int64(t), true
	case uint8:
		return int64(t), true
	case uint16:
		return int64(t), true
	case uint32:
		return int64(t), true
	case uint64:
		if t > math.MaxInt64 {
			return 0, false
		}
		return int64(t), true
	case float64:
		if t != math.Trunc(t) || math.IsInf(t, 0) {
			return 0, false
		}
		return int64(t), true
	case float32:
		return AsInt(float64(t))
	case numberLike:
		i, err := t.Int64()
		if err != nil {
			return 0, false
		}
		return i, true
	}
	return 0, false
}

// IsScalar reports whether v is a JSON scalar (null, bool, string or number).
func IsScalar(v any) bool {
	switch v.(type) {
	case nil, bool, string:
		return true
	}
	return IsNumber(v)
}

// Stringify renders a scalar the way it is compared for enum duplicates: two
// values collide when their string forms are equal, so 1 and "1" collide.
func Stringify(v any) string {
	switch t := v.(type) {
	case nil:
		return "null"
	case string:
		return t
	case bool:
		return strconv.FormatBool(t)
	case float64:
		return strconv.FormatFloat(t, 'g', -1, 64)
	case float32:
		return strconv.FormatFloat(float64(t), 'g', -1, 32)
	case numberLike:
		return t.String()
	}
	return fmt.Sprint(v)
}

// StringSlice returns the elements of v when v is a sequence of strings.
func StringSlice(v any) ([]string, bool) {
	switch t := v.(type) {
	case []string:
		return append([]string(nil), t...), true
	case []any:
		out := make([]string, 0, len(t))
		for _, it := range t {
			s, ok := it.(string)
			if !ok {
				return nil, false
			}
			out = append(out, s)
		}
		return out, true
	}
	return nil, false
}

// Clone deep-copies objects and arrays; scalars are returned as is.
func Clone(v any) any {
	switch t := v.(type) {
	case *Object:
		if t == nil {
			return t
		}
		o := &Object{keys: append([]string(nil), t.keys...), values: make(map[string]any, len(t.values))}
		for k, vv := range t.values {
			o.values[k] = Clone(vv)
		}
		return o
	case []any:
		arr := make([]any, len(t))
		for i := range t {
			arr[i] = Clone(t[i])
		}
		return arr
	default:
		return v
	}
}
