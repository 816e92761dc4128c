package jsondoc

import (
	"errors"
	"fmt"
	"math"

	"gopkg.in/yaml.v3"
)

// ParseYAML decodes a YAML document into an ordered Object. Mapping order is
// taken from the YAML node tree; anchors and aliases are resolved.
func ParseYAML(data []byte) (*Object, error) {
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &SyntaxError{Err: err}
	}
	if doc.Kind == 0 {
		return nil, &SyntaxError{Err: errors.New("empty YAML document")}
	}
	root := &doc
	if root.Kind == yaml.DocumentNode && len(root.Content) > 0 {
		root = root.Content[0]
	}
	d := &yamlDecoder{budget: yamlNodeBudget(len(data))}
	v, err := d.node(root, "", 0)
	if err != nil {
		return nil, err
	}
	o, ok := v.(*Object)
	if !ok {
		return nil, ErrNotObject
	}
	return o, nil
}

// ErrAliasExpansion reports a YAML document whose aliases expand to far more
// nodes than its size warrants.
var ErrAliasExpansion = errors.New("YAML alias expansion exceeds limit")

// yamlNodeBudget bounds the nodes a document may expand to, aliases included.
func yamlNodeBudget(size int) int {
	return 10_000 + 100*size
}

type yamlDecoder struct {
	budget int
}

func (d *yamlDecoder) node(n *yaml.Node, path string, depth int) (any, error) {
	if depth > DecodeMaxDepth {
		return nil, &SyntaxError{Path: pointerOrRoot(path), Err: errors.New("max depth exceeded")}
	}
	d.budget--
	if d.budget < 0 {
		return nil, &SyntaxError{Path: pointerOrRoot(path), Err: ErrAliasExpansion}
	}
	switch n.Kind {
	case yaml.AliasNode:
		return d.node(n.Alias, path, depth+1)
	case yaml.MappingNode:
		o := NewObject()
		for i := 0; i+1 < len(n.Content); i += 2 {
			kn, vn := n.Content[i], n.Content[i+1]
			if kn.Kind != yaml.ScalarNode || (kn.Tag != "!!str" && kn.Tag != "") {
				return nil, &SyntaxError{Path: pointerOrRoot(path), Err: fmt.Errorf("non-string mapping key %q", kn.Value)}
			}
			if o.Has(kn.Value) {
				return nil, &SyntaxError{Path: join(path, kn.Value), Err: fmt.Errorf("key '%s' duplicated", kn.Value)}
			}
			v, err := d.node(vn, join(path, kn.Value), depth+1)
			if err != nil {
				return nil, err
			}
			o.Set(kn.Value, v)
		}
		return o, nil
	case yaml.SequenceNode:
		arr := make([]any, 0, len(n.Content))
		for i, c := range n.Content {
			v, err := d.node(c, join(path, fmt.Sprint(i)), depth+1)
			if err != nil {
				return nil, err
			}
			arr = append(arr, v)
		}
		return arr, nil
	case yaml.ScalarNode:
		return scalar(n, path)
	}
	return nil, &SyntaxError{Path: pointerOrRoot(path), Err: fmt.Errorf("unsupported YAML node kind %d", n.Kind)}
}

// scalar maps a YAML scalar onto the JSON value space. Timestamps stay
// strings and non-finite floats are rejected.
func scalar(n *yaml.Node, path string) (any, error) {
	if n.ShortTag() == "!!timestamp" {
		return n.Value, nil
	}
	var v any
	if err := n.Decode(&v); err != nil {
		return nil, &SyntaxError{Path: pointerOrRoot(path), Err: err}
	}
	if f, ok := v.(float64); ok && (math.IsInf(f, 0) || math.IsNaN(f)) {
		return nil, &SyntaxError{Path: pointerOrRoot(path), Err: fmt.Errorf("non-finite number %q", n.Value)}
	}
	return v, nil
}

func join(base, token string) string {
	return base + "/" + pointerEscaper.Replace(token)
}

func pointerOrRoot(p string) string {
	if p == "" {
		return "/"
	}
	return p
}
