package autoschema

// Package autoschema compiles a constrained subset of JSON Schema into a
// language-agnostic model descriptor.
//
// - Validate statically checks a schema document against the supported subset
//   (types, string formats, numeric/array constraints, enum, anyOf, required)
//   and reports the first violation with its JSON Pointer path.
// - Compile walks the document and builds a ModelDescriptor: named fields with
//   a resolved Type (a tagged variant), required flags and defaults.
// - Export re-serializes a descriptor into a JSON Schema (package jsonschema).
//
// Design policy:
// - Validate and Compile are pure: no I/O, no logging, no retries, no shared
//   mutable state. They are safe for concurrent use.
// - The supported vocabulary lives in one place (vocab.go) and is shared by
//   the validator, the compiler and the prompt builder in package extract.
// - Storage lives in package store, LLM orchestration in package extract and
//   Go code generation in internal/gen.
//
// Typical usage:
//
//  m, err := autoschema.ValidateAndCompile(data, "")
//  if ve, ok := autoschema.AsValidationError(err); ok {
//      // ve.Path, ve.Code, ve.Message
//  }
//  for _, f := range m.Fields() {
//      fmt.Println(f.Name(), f.Type(), f.Required())
//  }
