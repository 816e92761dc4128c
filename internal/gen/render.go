// Package gen renders Go type declarations for compiled models.
package gen

import (
	"bytes"
	"fmt"
	"go/format"
	"sort"
	"strings"
	"text/template"
	"unicode"

	autoschema "github.com/reoring/autoschema"
)

// File is one generated Go source file.
type File struct {
	Package string
	Imports []string
	Types   []TypeStub
}

// TypeStub is a struct declaration.
type TypeStub struct {
	Name   string
	Doc    string
	Fields []FieldStub
}

// FieldStub is a struct field.
type FieldStub struct {
	Name    string
	Type    string
	Tag     string
	Comment string
}

var fileTmpl = template.Must(template.New("file").Funcs(template.FuncMap{
	"comment": comment,
}).Parse(`// Code generated by autoschema. DO NOT EDIT.

package {{.Package}}
{{if .Imports}}
import (
{{range .Imports}}	"{{.}}"
{{end}})
{{end}}
{{- range .Types}}
{{if .Doc}}{{comment "" .Doc}}
{{end}}type {{.Name}} struct {
{{- range .Fields}}
{{if .Comment}}{{comment "\t" .Comment}}
{{end}}	{{.Name}} {{.Type}}{{if .Tag}} ` + "`{{.Tag}}`" + `{{end}}
{{- end}}
}
{{end}}`))

// comment renders text as // lines with the given indent.
func comment(indent, text string) string {
	lines := strings.Split(strings.TrimSpace(text), "\n")
	for i, l := range lines {
		lines[i] = indent + "// " + strings.TrimSpace(l)
	}
	return strings.Join(lines, "\n")
}

// RenderFile executes the file template and gofmt's the result.
func RenderFile(f File) ([]byte, error) {
	if f.Package == "" {
		return nil, fmt.Errorf("gen: package name is required")
	}
	var buf bytes.Buffer
	if err := fileTmpl.Execute(&buf, f); err != nil {
		return nil, fmt.Errorf("gen: executing template: %w", err)
	}
	out, err := format.Source(buf.Bytes())
	if err != nil {
		return nil, fmt.Errorf("gen: formatting generated code: %w", err)
	}
	return out, nil
}

// Render generates a Go file declaring one struct per model, starting with m.
// Nested models get their own named types; a name already taken gets a
// numeric suffix.
func Render(pkg string, m *autoschema.ModelDescriptor) ([]byte, error) {
	r := &renderer{names: map[string]bool{}, declared: map[*autoschema.ModelDescriptor]string{}, imports: map[string]bool{}}
	r.declare(m)
	if r.err != nil {
		return nil, r.err
	}
	f := File{Package: pkg, Types: r.types}
	for imp := range r.imports {
		f.Imports = append(f.Imports, imp)
	}
	sort.Strings(f.Imports)
	return RenderFile(f)
}

type renderer struct {
	types    []TypeStub
	names    map[string]bool
	declared map[*autoschema.ModelDescriptor]string
	imports  map[string]bool
	err      error
}

// declare appends a TypeStub for m (and, after it, for its nested models)
// and returns the Go type name.
func (r *renderer) declare(m *autoschema.ModelDescriptor) string {
	if name, ok := r.declared[m]; ok {
		return name
	}
	name := unique(GoName(m.Name()), r.names)
	r.declared[m] = name
	idx := len(r.types)
	r.types = append(r.types, TypeStub{Name: name, Doc: m.Description()})

	fieldNames := map[string]bool{}
	fields := make([]FieldStub, 0, m.Len())
	for _, f := range m.Fields() {
		fields = append(fields, r.field(f, fieldNames))
	}
	r.types[idx].Fields = fields
	return name
}

func (r *renderer) field(f autoschema.FieldDescriptor, taken map[string]bool) FieldStub {
	t := f.Type()
	goType, note := r.goType(t.NonNull())
	if t.AllowsNull() || !f.Required() {
		goType = pointer(goType)
	}
	if !validTagName(f.Name()) && r.err == nil {
		r.err = fmt.Errorf("gen: field %q cannot be expressed as a json struct tag name", f.Name())
	}
	tag := `json:"` + f.Name()
	if !f.Required() {
		tag += ",omitempty"
	}
	tag += `"`

	doc := f.Description()
	if note != "" {
		if doc != "" {
			doc += "\n"
		}
		doc += note
	}
	return FieldStub{Name: unique(GoName(f.Name()), taken), Type: goType, Tag: tag, Comment: doc}
}

// goType maps a resolved type to Go source. note documents what the Go type
// cannot express (allowed literal values, string formats).
func (r *renderer) goType(t autoschema.Type) (goType, note string) {
	switch t.Kind() {
	case autoschema.KindText:
		if f := t.Format(); f != "" {
			return "string", "Format: " + string(f) + "."
		}
		return "string", ""
	case autoschema.KindInteger:
		return "int64", ""
	case autoschema.KindNumber:
		return "float64", ""
	case autoschema.KindBoolean:
		return "bool", ""
	case autoschema.KindTimestamp:
		r.imports["time"] = true
		return "time.Time", ""
	case autoschema.KindDate, autoschema.KindTimeOfDay:
		return "string", "Format: " + string(t.Format()) + "."
	case autoschema.KindList:
		elem, ok := t.Elem()
		if !ok {
			return "[]any", ""
		}
		et, note := r.goType(elem.NonNull())
		if elem.AllowsNull() {
			et = pointer(et)
		}
		return "[]" + et, note
	case autoschema.KindMap:
		return "map[string]any", ""
	case autoschema.KindModel:
		return r.declare(t.Model()), ""
	case autoschema.KindLiteral:
		return literalType(t.Literals()), "One of: " + literalList(t.Literals()) + "."
	case autoschema.KindUnion:
		return "any", "One of: " + t.String() + "."
	}
	return "any", ""
}

// pointer makes a Go type nilable; slices, maps and interfaces already are.
func pointer(goType string) string {
	if goType == "any" || strings.HasPrefix(goType, "[]") || strings.HasPrefix(goType, "map[") || strings.HasPrefix(goType, "*") {
		return goType
	}
	return "*" + goType
}

func literalType(values []any) string {
	allStrings, allBools := true, true
	for _, v := range values {
		if _, ok := v.(string); !ok {
			allStrings = false
		}
		if _, ok := v.(bool); !ok {
			allBools = false
		}
	}
	switch {
	case allStrings:
		return "string"
	case allBools:
		return "bool"
	}
	return "any"
}

func literalList(values []any) string {
	parts := make([]string, len(values))
	for i, v := range values {
		if s, ok := v.(string); ok {
			parts[i] = fmt.Sprintf("%q", s)
		} else {
			parts[i] = fmt.Sprint(v)
		}
	}
	return strings.Join(parts, ", ")
}

// validTagName reports whether encoding/json honors name in a struct tag.
// Other names would be silently replaced by the Go field name, or break the
// tag literal.
func validTagName(name string) bool {
	if name == "" {
		return false
	}
	for _, c := range name {
		switch {
		case strings.ContainsRune("!#$%&()*+-./:;<=>?@[]^_{|}~ ", c):
		case !unicode.IsLetter(c) && !unicode.IsDigit(c):
			return false
		}
	}
	return true
}

var initialisms = map[string]string{
	"id": "ID", "url": "URL", "uri": "URI", "uuid": "UUID", "api": "API",
	"http": "HTTP", "json": "JSON", "ip": "IP", "ipv4": "IPv4", "ipv6": "IPv6",
}

// GoName converts a schema name into an exported Go identifier:
// "user_id" -> "UserID", "created-at" -> "CreatedAt".
func GoName(s string) string {
	words := strings.FieldsFunc(s, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		if up, ok := initialisms[strings.ToLower(w)]; ok {
			b.WriteString(up)
			continue
		}
		rs := []rune(w)
		rs[0] = unicode.ToUpper(rs[0])
		b.WriteString(string(rs))
	}
	name := b.String()
	if name == "" {
		return "Field"
	}
	if !unicode.IsLetter([]rune(name)[0]) {
		name = "F" + name
	}
	return name
}

func unique(name string, taken map[string]bool) string {
	candidate := name
	for i := 2; taken[candidate]; i++ {
		candidate = fmt.Sprintf("%s%d", name, i)
	}
	taken[candidate] = true
	return candidate
}
