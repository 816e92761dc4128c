package autoschema

import (
	"strconv"

	eng "github.com/reoring/autoschema/internal/engine"
)

// location tracks where the validator or compiler is in the schema document:
// the JSON Pointer of the current node, the dotted field path for messages and
// the nesting depth used by the depth guard.
type location struct {
	ptr   string
	field string
	depth int
}

func (l location) pointer() string { return eng.NormalizePointer(l.ptr) }

// key addresses a keyword of the current node.
func (l location) key(k string) location {
	return location{ptr: eng.JoinPointer(l.ptr, k), field: l.field, depth: l.depth}
}

// property descends into properties/<name>.
func (l location) property(name string) location {
	field := name
	if l.field != "" {
		field = l.field + "." + name
	}
	return location{ptr: eng.JoinPointer(eng.JoinPointer(l.ptr, kwProperties), name), field: field, depth: l.depth + 1}
}

// items descends into the array element schema.
func (l location) items() location {
	return location{ptr: eng.JoinPointer(l.ptr, kwItems), field: l.field + "[]", depth: l.depth + 1}
}

// anyOf descends into the i-th union member.
func (l location) anyOf(i int) location {
	return location{ptr: eng.JoinPointer(eng.JoinPointer(l.ptr, kwAnyOf), strconv.Itoa(i)), field: l.field, depth: l.depth + 1}
}
