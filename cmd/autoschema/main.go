package main

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	autoschema "github.com/reoring/autoschema"
	gen "github.com/reoring/autoschema/internal/gen"
)

func main() {
	os.Exit(run(os.Args[1:], os.Stdout, os.Stderr))
}

const usageText = `autoschema CLI

Usage:
  autoschema validate [-config c.yaml] [-strict] [-v] FILE
  autoschema compile  [-config c.yaml] [-strict] [-v] [-name N] [-pkg P] [-o OUT] FILE
  autoschema export   [-config c.yaml] [-strict] [-v] [-o OUT] FILE

FILE is a JSON or YAML (.yaml/.yml) schema document.
compile prints the model summary, or Go type declarations when -pkg is set.
export writes the compiled model back as a checked JSON Schema document.`

// errUsage makes run exit with status 2.
var errUsage = errors.New("usage")

func run(args []string, stdout, stderr io.Writer) int {
	if len(args) < 1 {
		fmt.Fprintln(stderr, usageText)
		return 2
	}
	var err error
	switch args[0] {
	case "validate":
		err = validateCmd(args[1:], stdout, stderr)
	case "compile":
		err = compileCmd(args[1:], stdout, stderr)
	case "export":
		err = exportCmd(args[1:], stdout, stderr)
	case "help", "-h", "--help":
		fmt.Fprintln(stdout, usageText)
		return 0
	default:
		fmt.Fprintln(stderr, usageText)
		return 2
	}
	switch {
	case err == nil:
		return 0
	case errors.Is(err, errUsage), errors.Is(err, flag.ErrHelp):
		return 2
	}
	fmt.Fprintln(stderr, err)
	return 1
}

// Config is the optional -config file.
type Config struct {
	MaxDepth    int  `yaml:"max_depth"`
	StrictTypes bool `yaml:"strict_types"`
}

func loadConfig(path string) (Config, error) {
	var c Config
	if path == "" {
		return c, nil
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return c, fmt.Errorf("reading config: %w", err)
	}
	dec := yaml.NewDecoder(bytes.NewReader(data))
	dec.KnownFields(true)
	if err := dec.Decode(&c); err != nil && !errors.Is(err, io.EOF) {
		return c, fmt.Errorf("parsing config %s: %w", path, err)
	}
	return c, nil
}

// common holds the flags every subcommand accepts.
type common struct {
	config  string
	strict  bool
	verbose bool
	stderr  io.Writer
}

func newFlagSet(name string, stderr io.Writer) (*flag.FlagSet, *common) {
	fs := flag.NewFlagSet(name, flag.ContinueOnError)
	fs.SetOutput(stderr)
	c := &common{stderr: stderr}
	fs.StringVar(&c.config, "config", "", "YAML config file (max_depth, strict_types)")
	fs.BoolVar(&c.strict, "strict", false, "reject unknown type names instead of falling back to text")
	fs.BoolVar(&c.verbose, "v", false, "enable verbose logs")
	return fs, c
}

func (c *common) logf(format string, a ...any) {
	if c.verbose {
		fmt.Fprintf(c.stderr, format+"\n", a...)
	}
}

func (c *common) options() (autoschema.Options, error) {
	cfg, err := loadConfig(c.config)
	if err != nil {
		return autoschema.Options{}, err
	}
	opts := autoschema.Options{MaxDepth: cfg.MaxDepth, StrictTypes: cfg.StrictTypes || c.strict}
	c.logf("options: max_depth=%d strict_types=%t", opts.MaxDepth, opts.StrictTypes)
	return opts, nil
}

// fileArg returns the single positional argument.
func fileArg(fs *flag.FlagSet) (string, error) {
	if fs.NArg() != 1 {
		fs.Usage()
		return "", errUsage
	}
	return fs.Arg(0), nil
}

func validateCmd(args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("validate", stderr)
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := fileArg(fs)
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	format := autoschema.DetectFormat(path)
	c.logf("validate: file=%s yaml=%t", path, format == autoschema.FormatYAML)
	doc, err := autoschema.Decode(data, format)
	if err != nil {
		var de *autoschema.DecodeError
		if errors.As(err, &de) {
			de.Source = path
		}
		return err
	}
	if err := autoschema.Validate(doc, opts); err != nil {
		return err
	}
	fmt.Fprintf(stdout, "ok: %s\n", path)
	return nil
}

func compileCmd(args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("compile", stderr)
	var name, pkg, out string
	fs.StringVar(&name, "name", "", "model name (defaults to the schema title)")
	fs.StringVar(&pkg, "pkg", "", "emit Go type declarations in this package")
	fs.StringVar(&out, "o", "", "output filename (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := fileArg(fs)
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	m, err := autoschema.LoadFile(path, name, opts)
	if err != nil {
		return err
	}
	c.logf("compile: file=%s model=%s fields=%d", path, m.Name(), m.Len())

	var code []byte
	if pkg != "" {
		code, err = gen.Render(pkg, m)
		if err != nil {
			return fmt.Errorf("generate: %w", err)
		}
	} else {
		code = []byte(m.String() + "\n")
	}
	return writeOut(out, code, stdout, c)
}

func exportCmd(args []string, stdout, stderr io.Writer) error {
	fs, c := newFlagSet("export", stderr)
	var out string
	fs.StringVar(&out, "o", "", "output filename (stdout when empty)")
	if err := fs.Parse(args); err != nil {
		return err
	}
	path, err := fileArg(fs)
	if err != nil {
		return err
	}
	opts, err := c.options()
	if err != nil {
		return err
	}
	m, err := autoschema.LoadFile(path, "", opts)
	if err != nil {
		return err
	}
	if out != "" {
		c.logf("export: file=%s out=%s", path, out)
		return autoschema.SaveFile(out, m)
	}
	data, err := autoschema.MarshalCheckedSchema(m)
	if err != nil {
		return err
	}
	if !bytes.HasSuffix(data, []byte("\n")) {
		data = append(data, '\n')
	}
	_, err = stdout.Write(data)
	return err
}

func writeOut(out string, data []byte, stdout io.Writer, c *common) error {
	if out == "" {
		_, err := stdout.Write(data)
		return err
	}
	if err := os.MkdirAll(filepath.Dir(out), 0o755); err != nil {
		return fmt.Errorf("creating output dir: %w", err)
	}
	if err := os.WriteFile(out, data, 0o644); err != nil {
		return fmt.Errorf("writing output: %w", err)
	}
	c.logf("wrote %s (%d bytes)", out, len(data))
	return nil
}
