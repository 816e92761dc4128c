package engine

import (
	"bytes"
	"io"
	"strconv"

	j "github.com/goccy/go-json"
)

type containerKind int

const (
	kindObject containerKind = iota
	kindArray
)

type frame struct {
	kind         containerKind
	expectingKey bool
}

// goJSONSource adapts the go-json token decoder to TokenSource. go-json reports
// object keys and string values with the same token type, so a small stack
// tracks whether the next string is a key.
type goJSONSource struct {
	dec   *j.Decoder
	stack []frame
}

// NewReader wraps an io.Reader into a TokenSource for JSON using go-json.
func NewReader(r io.Reader) TokenSource {
	dec := j.NewDecoder(r)
	dec.UseNumber()
	return &goJSONSource{dec: dec}
}

// NewBytes wraps a byte slice into a TokenSource for JSON using go-json.
func NewBytes(b []byte) TokenSource { return NewReader(bytes.NewReader(b)) }

func (s *goJSONSource) NextToken() (Token, error) {
	tok, err := s.dec.Token()
	if err != nil {
		return Token{}, err
	}
	offset := s.dec.InputOffset()
	switch v := tok.(type) {
	case j.Delim:
		switch v {
		case '{':
			s.stack = append(s.stack, frame{kind: kindObject, expectingKey: true})
			return Token{Kind: KindBeginObject, Offset: offset}, nil
		case '}':
			s.pop()
			return Token{Kind: KindEndObject, Offset: offset}, nil
		case '[':
			s.stack = append(s.stack, frame{kind: kindArray})
			return Token{Kind: KindBeginArray, Offset: offset}, nil
		case ']':
			s.pop()
			return Token{Kind: KindEndArray, Offset: offset}, nil
		}
	case string:
		if n := len(s.stack); n > 0 {
			top := &s.stack[n-1]
			if top.kind == kindObject && top.expectingKey {
				top.expectingKey = false
				return Token{Kind: KindKey, String: v, Offset: offset}, nil
			}
		}
		s.valueDone()
		return Token{Kind: KindString, String: v, Offset: offset}, nil
	case bool:
		s.valueDone()
		return Token{Kind: KindBool, Bool: v, Offset: offset}, nil
	case j.Number:
		s.valueDone()
		return Token{Kind: KindNumber, Number: string(v), Offset: offset}, nil
	case float64:
		s.valueDone()
		return Token{Kind: KindNumber, Number: strconv.FormatFloat(v, 'g', -1, 64), Offset: offset}, nil
	}
	s.valueDone()
	return Token{Kind: KindNull, Offset: offset}, nil
}

func (s *goJSONSource) Location() int64 { return s.dec.InputOffset() }

func (s *goJSONSource) pop() {
	if n := len(s.stack); n > 0 {
		s.stack = s.stack[:n-1]
	}
	s.valueDone()
}

// valueDone flips the enclosing object frame back to expecting a key.
func (s *goJSONSource) valueDone() {
	if n := len(s.stack); n > 0 {
		top := &s.stack[n-1]
		if top.kind == kindObject && !top.expectingKey {
			top.expectingKey = true
		}
	}
}
