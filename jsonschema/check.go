package jsonschema

import (
	"bytes"
	"fmt"

	sjs "github.com/santhosh-tekuri/jsonschema/v5"
)

const checkResourceURL = "file:///exported.schema.json"

// Check compiles a JSON Schema document with a full Draft 2020-12 compiler,
// which validates it against the meta-schema. Exported models are run through
// it before they are persisted.
func Check(doc []byte) error {
	c := sjs.NewCompiler()
	c.Draft = sjs.Draft2020
	if err := c.AddResource(checkResourceURL, bytes.NewReader(doc)); err != nil {
		return fmt.Errorf("jsonschema: load exported schema: %w", err)
	}
	if _, err := c.Compile(checkResourceURL); err != nil {
		return fmt.Errorf("jsonschema: exported schema is not valid JSON Schema: %w", err)
	}
	return nil
}

// CheckSchema marshals s and runs Check on the result.
func CheckSchema(s *Schema) error {
	b, err := s.MarshalJSON()
	if err != nil {
		return err
	}
	return Check(b)
}
