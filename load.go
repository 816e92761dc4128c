package autoschema

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"

	"github.com/reoring/autoschema/jsondoc"
	js "github.com/reoring/autoschema/jsonschema"
)

// DocumentFormat selects the syntax of a stored schema document.
type DocumentFormat int

const (
	// FormatAuto picks YAML for .yaml/.yml paths and JSON otherwise.
	FormatAuto DocumentFormat = iota
	FormatJSON
	FormatYAML
)

// DetectFormat returns the document format implied by a file name.
func DetectFormat(path string) DocumentFormat {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return FormatYAML
	}
	return FormatJSON
}

// Decode parses a stored schema document without validating it. Malformed
// input yields a *DecodeError.
func Decode(data []byte, format DocumentFormat) (*jsondoc.Object, error) {
	var (
		doc *jsondoc.Object
		err error
	)
	switch format {
	case FormatYAML:
		doc, err = jsondoc.ParseYAML(data)
	default:
		doc, err = jsondoc.Parse(data)
	}
	if err != nil {
		return nil, &DecodeError{Err: err}
	}
	return doc, nil
}

// LoadBytes decodes, validates and compiles a stored schema document.
// Errors are distinguishable: *DecodeError for malformed input,
// *ValidationError for documents outside the supported subset and
// *BuildError for compiler failures.
func LoadBytes(data []byte, format DocumentFormat, name string, opts ...Options) (*ModelDescriptor, error) {
	doc, err := Decode(data, format)
	if err != nil {
		return nil, err
	}
	return ValidateAndCompile(doc, name, opts...)
}

// LoadFile reads a schema document from path and compiles it. A missing file
// yields an error wrapping ErrSchemaNotFound.
func LoadFile(path string, name string, opts ...Options) (*ModelDescriptor, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return nil, fmt.Errorf("%w: %s", ErrSchemaNotFound, path)
		}
		return nil, fmt.Errorf("autoschema: read %s: %w", path, err)
	}
	format := DetectFormat(path)
	doc, err := Decode(data, format)
	if err != nil {
		var de *DecodeError
		if errors.As(err, &de) {
			de.Source = path
		}
		return nil, err
	}
	return ValidateAndCompile(doc, name, opts...)
}

// SaveFile exports m, checks the result against the JSON Schema meta-schema
// and writes it to path as indented JSON, creating parent directories.
func SaveFile(path string, m *ModelDescriptor) error {
	data, err := MarshalCheckedSchema(m)
	if err != nil {
		return err
	}
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("autoschema: create directory for %s: %w", path, err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("autoschema: write %s: %w", path, err)
	}
	return nil
}

// MarshalCheckedSchema is MarshalSchema followed by a meta-schema check.
func MarshalCheckedSchema(m *ModelDescriptor) ([]byte, error) {
	data, err := MarshalSchema(m)
	if err != nil {
		return nil, fmt.Errorf("autoschema: marshal %s: %w", m.Name(), err)
	}
	if err := js.Check(data); err != nil {
		return nil, err
	}
	return data, nil
}
