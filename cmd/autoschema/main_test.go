package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reoring/autoschema/jsondoc"
)

const userSchema = `{
  "title": "User",
  "type": "object",
  "properties": {"name": {"type": "string"}, "age": {"type": "integer"}},
  "required": ["name"]
}`

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(content), 0o644))
	return p
}

func runCLI(args ...string) (code int, stdout, stderr string) {
	var out, errOut bytes.Buffer
	code = run(args, &out, &errOut)
	return code, out.String(), errOut.String()
}

func TestRun_Usage(t *testing.T) {
	code, _, stderr := runCLI()
	assert.Equal(t, 2, code)
	assert.Contains(t, stderr, "Usage:")

	code, _, _ = runCLI("frobnicate")
	assert.Equal(t, 2, code)

	code, stdout, _ := runCLI("help")
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "autoschema validate")

	code, _, _ = runCLI("validate")
	assert.Equal(t, 2, code, "missing FILE")
}

func TestValidate(t *testing.T) {
	p := writeFile(t, "user.json", userSchema)
	code, stdout, _ := runCLI("validate", p)
	assert.Equal(t, 0, code)
	assert.Equal(t, "ok: "+p+"\n", stdout)

	bad := writeFile(t, "bad.json", `{"type":"object","properties":{"status":{"type":"string","enum":["a","a"]}}}`)
	code, _, stderr := runCLI("validate", bad)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "invalid schema at /properties/status/enum")

	broken := writeFile(t, "broken.json", `{"type":`)
	code, _, stderr = runCLI("validate", broken)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "malformed schema document "+broken)
}

func TestValidate_YAML(t *testing.T) {
	p := writeFile(t, "user.yaml", "type: object\nproperties:\n  name:\n    type: string\n")
	code, stdout, _ := runCLI("validate", p)
	assert.Equal(t, 0, code)
	assert.Contains(t, stdout, "ok:")
}

func TestCompile_Summary(t *testing.T) {
	p := writeFile(t, "user.json", userSchema)
	code, stdout, _ := runCLI("compile", p)
	require.Equal(t, 0, code)
	assert.Equal(t, "User{name: text, age?: int64 | null = null}\n", stdout)

	code, stdout, _ = runCLI("compile", "-name", "Person", p)
	require.Equal(t, 0, code)
	assert.Equal(t, "Person{name: text, age?: int64 | null = null}\n", stdout)
}

func TestCompile_GoSource(t *testing.T) {
	p := writeFile(t, "user.json", userSchema)
	out := filepath.Join(t.TempDir(), "models", "user_gen.go")

	code, _, stderr := runCLI("compile", "-v", "-pkg", "models", "-o", out, p)
	require.Equal(t, 0, code, stderr)
	assert.Contains(t, stderr, "wrote "+out)

	src, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Contains(t, string(src), "package models")
	assert.Contains(t, string(src), "type User struct")
}

func TestCompile_MissingFile(t *testing.T) {
	code, _, stderr := runCLI("compile", filepath.Join(t.TempDir(), "nope.json"))
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "schema not found")
}

func TestExport(t *testing.T) {
	p := writeFile(t, "user.json", userSchema)
	code, stdout, _ := runCLI("export", p)
	require.Equal(t, 0, code)

	doc, err := jsondoc.Parse([]byte(stdout))
	require.NoError(t, err)
	title, _ := doc.Get("title")
	assert.Equal(t, "User", title)

	out := filepath.Join(t.TempDir(), "out", "user.schema.json")
	code, _, _ = runCLI("export", "-o", out, p)
	require.Equal(t, 0, code)
	data, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, strings.TrimSpace(stdout), strings.TrimSpace(string(data)))
}

func TestConfig_StrictTypes(t *testing.T) {
	p := writeFile(t, "s.json", `{"type":"object","properties":{"v":{"anyOf":[{"type":"decimal"}]}},"required":["v"]}`)

	code, stdout, _ := runCLI("compile", p)
	require.Equal(t, 0, code)
	assert.Equal(t, "DynamicModel{v: text}\n", stdout)

	cfg := writeFile(t, "config.yaml", "strict_types: true\n")
	code, _, stderr := runCLI("compile", "-config", cfg, p)
	assert.Equal(t, 1, code)
	assert.Contains(t, stderr, "cannot build model at /properties/v/anyOf/0/type")

	code, _, _ = runCLI("compile", "-strict", p)
	assert.Equal(t, 1, code)
}

func TestLoadConfig(t *testing.T) {
	c, err := loadConfig("")
	require.NoError(t, err)
	assert.Equal(t, Config{}, c)

	c, err = loadConfig(writeFile(t, "c.yaml", "max_depth: 8\nstrict_types: true\n"))
	require.NoError(t, err)
	assert.Equal(t, Config{MaxDepth: 8, StrictTypes: true}, c)

	c, err = loadConfig(writeFile(t, "empty.yaml", ""))
	require.NoError(t, err)
	assert.Equal(t, Config{}, c)

	_, err = loadConfig(writeFile(t, "typo.yaml", "maxdepth: 8\n"))
	assert.Error(t, err)

	_, err = loadConfig(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
