package jsondoc

import (
	"errors"
	"fmt"
	"io"

	"github.com/goccy/go-json"

	eng "github.com/reoring/autoschema/internal/engine"
)

// DecodeMaxDepth bounds container nesting accepted by Parse. It is well above
// the compiler's default depth guard so that the compiler, not the decoder,
// reports deeply nested schemas with a schema path.
const DecodeMaxDepth = 512

var (
	// ErrNotObject reports a document whose root is not a JSON object.
	ErrNotObject = errors.New("jsondoc: document root is not an object")
	// ErrTrailingData reports input left over after the root value.
	ErrTrailingData = errors.New("jsondoc: unexpected data after top-level value")
	// ErrMalformed reports JSON text that is not well-formed.
	ErrMalformed = errors.New("malformed JSON text")
)

// SyntaxError describes a document that could not be decoded.
type SyntaxError struct {
	// Path is the JSON Pointer of the offending location when known.
	Path   string
	Offset int64
	Err    error
}

func (e *SyntaxError) Error() string {
	if e.Path != "" {
		return fmt.Sprintf("jsondoc: %v (at %s)", e.Err, e.Path)
	}
	if e.Offset > 0 {
		return fmt.Sprintf("jsondoc: %v (offset %d)", e.Err, e.Offset)
	}
	return "jsondoc: " + e.Err.Error()
}

func (e *SyntaxError) Unwrap() error { return e.Err }

// Parse decodes JSON text into an ordered Object. Duplicate keys are rejected.
func Parse(data []byte) (*Object, error) {
	// The token stream does not check separators, so the text is checked first.
	if !json.Valid(data) {
		return nil, malformed(data)
	}
	src := eng.WrapWithEnforcement(eng.NewBytes(data), eng.EnforceOptions{MaxDepth: DecodeMaxDepth})
	tok, err := src.NextToken()
	if err != nil {
		return nil, wrapDecodeErr(src, err)
	}
	if tok.Kind != eng.KindBeginObject {
		return nil, ErrNotObject
	}
	o, err := decodeObject(src)
	if err != nil {
		return nil, wrapDecodeErr(src, err)
	}
	if _, err := src.NextToken(); !errors.Is(err, io.EOF) {
		return nil, &SyntaxError{Offset: src.Location(), Err: ErrTrailingData}
	}
	return o, nil
}

// malformed reports the decoder's own error for invalid text when it has one.
func malformed(data []byte) error {
	var v any
	if err := json.Unmarshal(data, &v); err != nil {
		return &SyntaxError{Err: fmt.Errorf("%w: %v", ErrMalformed, err)}
	}
	return &SyntaxError{Err: ErrMalformed}
}

func wrapDecodeErr(src eng.TokenSource, err error) error {
	var ie eng.IssueError
	if errors.As(err, &ie) {
		return &SyntaxError{Path: ie.Path, Offset: ie.Offset, Err: errors.New(ie.Message)}
	}
	if errors.Is(err, io.EOF) {
		err = io.ErrUnexpectedEOF
	}
	return &SyntaxError{Offset: src.Location(), Err: err}
}

func decodeValue(src eng.TokenSource, tok eng.Token) (any, error) {
	switch tok.Kind {
	case eng.KindBeginObject:
		return decodeObject(src)
	case eng.KindBeginArray:
		return decodeArray(src)
	case eng.KindString:
		return tok.String, nil
	case eng.KindNumber:
		return Number(tok.Number), nil
	case eng.KindBool:
		return tok.Bool, nil
	case eng.KindNull:
		return nil, nil
	default:
		return nil, fmt.Errorf("unexpected %s token", tok.Kind)
	}
}

func decodeObject(src eng.TokenSource) (*Object, error) {
	o := NewObject()
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == eng.KindEndObject {
			return o, nil
		}
		if tok.Kind != eng.KindKey {
			return nil, fmt.Errorf("expected object key, got %s", tok.Kind)
		}
		vt, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		v, err := decodeValue(src, vt)
		if err != nil {
			return nil, err
		}
		o.Set(tok.String, v)
	}
}

func decodeArray(src eng.TokenSource) ([]any, error) {
	arr := []any{}
	for {
		tok, err := src.NextToken()
		if err != nil {
			return nil, err
		}
		if tok.Kind == eng.KindEndArray {
			return arr, nil
		}
		v, err := decodeValue(src, tok)
		if err != nil {
			return nil, err
		}
		arr = append(arr, v)
	}
}
