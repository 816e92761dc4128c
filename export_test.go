package autoschema_test

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	autoschema "github.com/reoring/autoschema"
	js "github.com/reoring/autoschema/jsonschema"
)

const userSchema = `{
	"type": "object",
	"properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
	"required": ["name"]
}`

func TestExport_Shape(t *testing.T) {
	m := mustCompile(t, userSchema, "User")
	b, err := autoschema.Export(m).MarshalJSON()
	require.NoError(t, err)
	assert.JSONEq(t, `{
		"title": "User",
		"type": "object",
		"properties": {
			"name": {"type": "string"},
			"age": {"anyOf": [{"type": "integer"}, {"type": "null"}], "default": null}
		},
		"required": ["name"]
	}`, string(b))
	assert.Equal(t,
		`{"title":"User","type":"object","properties":{"name":{"type":"string"},"age":{"anyOf":[{"type":"integer"},{"type":"null"}],"default":null}},"required":["name"]}`,
		string(b), "keyword and property order")
}

func TestExport_RoundTrip(t *testing.T) {
	schemas := map[string]string{
		"user": userSchema,
		"rich": `{
			"type": "object",
			"title": "Order",
			"description": "a customer order",
			"properties": {
				"id": {"type": "string", "format": "uuid", "description": "order id"},
				"placed_at": {"type": "string", "format": "date-time"},
				"ship_on": {"type": "string", "format": "date"},
				"window": {"type": "string", "format": "time"},
				"total": {"type": "number", "minimum": 0, "multipleOf": 0.01},
				"qty": {"type": "integer", "exclusiveMinimum": 0, "maximum": 100, "default": 1},
				"status": {"enum": ["open", "closed", 3]},
				"tags": {"type": "array", "items": {"type": "string"}, "minItems": 1, "maxItems": 5},
				"meta": {"type": "object"},
				"ref": {"anyOf": [{"type": "string"}, {"type": "integer"}]},
				"customer": {
					"type": "object",
					"title": "Customer",
					"properties": {"name": {"type": "string"}, "email": {"type": "string", "format": "email"}},
					"required": ["name"]
				},
				"lines": {
					"type": "array",
					"items": {"type": "object", "properties": {"sku": {"type": "string"}}, "required": ["sku"]}
				},
				"flag": {"type": "boolean", "default": false},
				"nothing": {"type": "null"}
			},
			"required": ["id", "total", "customer", "status"]
		}`,
	}
	for name, schema := range schemas {
		t.Run(name, func(t *testing.T) {
			first := mustCompile(t, schema, "")
			out, err := autoschema.MarshalSchema(first)
			require.NoError(t, err)
			require.NoError(t, js.Check(out))

			second := mustCompile(t, out, "")
			assert.Truef(t, first.Equal(second), "round trip changed the model:\n%s\n%s", first, second)

			again, err := autoschema.MarshalSchema(second)
			require.NoError(t, err)
			assert.Equal(t, string(out), string(again))
		})
	}
}

func TestExport_KeepsEnumOrderAndRequired(t *testing.T) {
	m := mustCompile(t, `{
		"type": "object",
		"properties": {"b": {"enum": ["z", "a", "m"]}, "a": {"type": "string"}},
		"required": ["b", "a"]
	}`, "")
	s := m.JSONSchema()
	assert.Equal(t, []string{"b", "a"}, s.Required)
	require.Len(t, s.Properties, 2)
	assert.Equal(t, "b", s.Properties[0].Name)
	assert.Equal(t, []any{"z", "a", "m"}, s.Properties[0].Schema.Enum)
}

func TestMarshalCheckedSchema(t *testing.T) {
	m := mustCompile(t, userSchema, "User")
	b, err := autoschema.MarshalCheckedSchema(m)
	require.NoError(t, err)
	assert.Contains(t, string(b), "\n  \"title\": \"User\"")
}
