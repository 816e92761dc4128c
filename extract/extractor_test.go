package extract

import (
	"bytes"
	"context"
	"errors"
	"log/slog"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	"go.opentelemetry.io/otel/sdk/trace/tracetest"

	autoschema "github.com/reoring/autoschema"
)

// scripted replays canned replies and records every request.
type scripted struct {
	mu       sync.Mutex
	replies  []string
	errs     []error
	requests []Request
}

func (s *scripted) GenerateSchema(ctx context.Context, req Request) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	i := len(s.requests)
	s.requests = append(s.requests, req)
	if i < len(s.errs) && s.errs[i] != nil {
		return "", s.errs[i]
	}
	if i < len(s.replies) {
		return s.replies[i], nil
	}
	return "", errors.New("script exhausted")
}

const goodReply = "```json\n" + `{
	"type": "object",
	"title": "Invoice",
	"properties": {
		"number": {"type": "string", "description": "invoice number"},
		"issued_on": {"type": "string", "format": "date"},
		"total": {"type": "number", "minimum": 0}
	},
	"required": ["number", "total"]
}` + "\n```"

func newTestExtractor(gen Generator, opts Options) (*Extractor, *tracetest.SpanRecorder, *bytes.Buffer) {
	rec := tracetest.NewSpanRecorder()
	opts.TracerProvider = sdktrace.NewTracerProvider(sdktrace.WithSpanProcessor(rec))
	buf := &bytes.Buffer{}
	opts.Logger = slog.New(slog.NewTextHandler(buf, nil))
	return New(gen, opts), rec, buf
}

func TestExtract_FirstAttempt(t *testing.T) {
	gen := &scripted{replies: []string{goodReply}}
	x, rec, logs := newTestExtractor(gen, Options{})

	res, err := x.Extract(context.Background(), "List invoices with number, date and total", ModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 1, res.Attempts)
	assert.Equal(t, "Invoice", res.Model.Name())
	assert.Equal(t, []string{"number", "issued_on", "total"}, res.Model.FieldNames())
	assert.Equal(t, []string{"number", "total"}, res.Model.RequiredFields())
	assert.NotEmpty(t, res.RunID)

	require.Len(t, gen.requests, 1)
	req := gen.requests[0]
	assert.Equal(t, res.RunID, req.RunID)
	assert.Equal(t, 1, req.Attempt)
	require.Len(t, req.Messages, 2)
	assert.Equal(t, RoleSystem, req.Messages[0].Role)
	assert.Contains(t, req.Messages[1].Content, "List invoices with number, date and total")

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "autoschema.extract.attempt", spans[0].Name())
	assert.Equal(t, "autoschema.extract", spans[1].Name())
	assert.Equal(t, spans[1].SpanContext().SpanID(), spans[0].Parent().SpanID())

	assert.Contains(t, logs.String(), "schema accepted")
	assert.Contains(t, logs.String(), "run_id="+res.RunID)
}

func TestExtract_RepairsRejectedSchema(t *testing.T) {
	bad := `{"type": "object", "properties": {"status": {"type": "string", "enum": ["a", "b", "a"]}}}`
	gen := &scripted{replies: []string{"not json at all", bad, goodReply}}
	x, rec, logs := newTestExtractor(gen, Options{ModelName: "Doc"})

	res, err := x.Extract(context.Background(), "invoices", ModeExtendedReasoning)
	require.NoError(t, err)
	assert.Equal(t, 3, res.Attempts)
	assert.Equal(t, "Doc", res.Model.Name())

	require.Len(t, gen.requests, 3)
	second := gen.requests[1]
	assert.Equal(t, 2, second.Attempt)
	assert.Equal(t, ModeExtendedReasoning, second.Mode)
	require.Len(t, second.Messages, 4)
	assert.Equal(t, RoleAssistant, second.Messages[2].Role)
	assert.Equal(t, "not json at all", second.Messages[2].Content)

	third := gen.requests[2]
	require.Len(t, third.Messages, 4, "repair conversations do not accumulate")
	assert.Equal(t, bad, third.Messages[2].Content)
	wantErr := autoschema.Validate([]byte(bad))
	require.Error(t, wantErr)
	assert.Contains(t, third.Messages[3].Content, wantErr.Error())

	assert.Len(t, rec.Ended(), 4)
	assert.Equal(t, 2, strings.Count(logs.String(), "schema rejected"))
}

func TestExtract_Exhausted(t *testing.T) {
	bad := `{"type": "string"}`
	gen := &scripted{replies: []string{bad, bad}}
	x, _, _ := newTestExtractor(gen, Options{MaxAttempts: 2})

	_, err := x.Extract(context.Background(), "anything", ModeStandard)
	var ex *ExhaustedError
	require.True(t, errors.As(err, &ex), "got %T", err)
	assert.Equal(t, 2, ex.Attempts)
	ve, ok := autoschema.AsValidationError(err)
	require.True(t, ok)
	assert.Equal(t, autoschema.CodeRootNotObject, ve.Code)
	assert.Len(t, gen.requests, 2)
}

func TestExtract_TransportErrorIsNotRetried(t *testing.T) {
	boom := errors.New("quota exceeded")
	gen := &scripted{errs: []error{boom}, replies: []string{goodReply}}
	x, rec, _ := newTestExtractor(gen, Options{})

	_, err := x.Extract(context.Background(), "anything", ModeStandard)
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %T", err)
	assert.Equal(t, 1, te.Attempt)
	assert.ErrorIs(t, err, boom)
	assert.Len(t, gen.requests, 1)

	spans := rec.Ended()
	require.Len(t, spans, 2)
	assert.Equal(t, "Error", spans[1].Status().Code.String())
}

func TestExtract_AttemptTimeout(t *testing.T) {
	gen := GeneratorFunc(func(ctx context.Context, _ Request) (string, error) {
		<-ctx.Done()
		return "", ctx.Err()
	})
	x, _, _ := newTestExtractor(gen, Options{AttemptTimeout: 10 * time.Millisecond})

	_, err := x.Extract(context.Background(), "anything", ModeStandard)
	var te *TransportError
	require.True(t, errors.As(err, &te), "got %T", err)
	assert.ErrorIs(t, err, context.DeadlineExceeded)
}

func TestExtract_CancelledContext(t *testing.T) {
	gen := &scripted{replies: []string{goodReply}}
	x, _, _ := newTestExtractor(gen, Options{})
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := x.Extract(ctx, "anything", ModeStandard)
	assert.ErrorIs(t, err, context.Canceled)
	assert.Empty(t, gen.requests)
}

func TestExtract_EmptyReplyIsRetried(t *testing.T) {
	gen := &scripted{replies: []string{"   ", goodReply}}
	x, _, _ := newTestExtractor(gen, Options{})

	res, err := x.Extract(context.Background(), "anything", ModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, gen.requests[1].Messages, 3, "no assistant message for an empty reply")
	assert.Contains(t, gen.requests[1].Messages[2].Content, ErrEmptyResponse.Error())
}

func TestExtract_MissingCommaIsRepaired(t *testing.T) {
	broken := `{"type":"object" "title":"Invoice","properties":{"number":{"type":"string",}}}`
	gen := &scripted{replies: []string{broken, goodReply}}
	x, _, _ := newTestExtractor(gen, Options{})

	res, err := x.Extract(context.Background(), "invoices", ModeStandard)
	require.NoError(t, err)
	assert.Equal(t, 2, res.Attempts)
	require.Len(t, gen.requests[1].Messages, 4)
	assert.Equal(t, broken, gen.requests[1].Messages[2].Content)
	assert.Contains(t, gen.requests[1].Messages[3].Content, "malformed schema document")
}

func TestExtract_RunIDsAreUnique(t *testing.T) {
	gen := GeneratorFunc(func(context.Context, Request) (string, error) { return goodReply, nil })
	x, _, _ := newTestExtractor(gen, Options{})
	a, err := x.Extract(context.Background(), "p", ModeStandard)
	require.NoError(t, err)
	b, err := x.Extract(context.Background(), "p", ModeStandard)
	require.NoError(t, err)
	assert.NotEqual(t, a.RunID, b.RunID)
}

func TestStripCodeFence(t *testing.T) {
	cases := []struct{ in, want string }{
		{in: `{"a":1}`, want: `{"a":1}`},
		{in: "```json\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "```\n{\"a\":1}\n```", want: `{"a":1}`},
		{in: "Here you go:\n```json\n{}\n```\nThanks", want: `{}`},
		{in: "  \n{\"a\":1}\n  ", want: `{"a":1}`},
		{in: "```{}```", want: `{}`},
	}
	for _, c := range cases {
		assert.Equal(t, c.want, StripCodeFence(c.in), "input %q", c.in)
	}
}
