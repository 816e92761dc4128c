package extract

import (
	"context"
	"errors"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/trace"

	autoschema "github.com/reoring/autoschema"
	"github.com/reoring/autoschema/jsondoc"
)

// DefaultMaxAttempts bounds the generate/repair loop when Options.MaxAttempts
// is zero.
const DefaultMaxAttempts = 3

const (
	tracerName = "github.com/reoring/autoschema/extract"
	meterName  = tracerName
)

// Request is one call to the generator.
type Request struct {
	RunID    string
	Attempt  int // 1-based
	Mode     Mode
	Messages []Message
}

// Generator produces a schema document for a conversation. Implementations
// wrap a model API; they return the raw reply text.
type Generator interface {
	GenerateSchema(ctx context.Context, req Request) (string, error)
}

// GeneratorFunc adapts a function to Generator.
type GeneratorFunc func(ctx context.Context, req Request) (string, error)

func (f GeneratorFunc) GenerateSchema(ctx context.Context, req Request) (string, error) {
	return f(ctx, req)
}

// Options configures an Extractor. The zero value is usable.
type Options struct {
	// MaxAttempts bounds generator calls per Extract; zero selects
	// DefaultMaxAttempts.
	MaxAttempts int
	// AttemptTimeout bounds each generator call; zero means no extra bound
	// beyond the caller's context.
	AttemptTimeout time.Duration
	// ModelName names the compiled model; empty uses the schema title.
	ModelName string
	// Compile is passed to autoschema.ValidateAndCompile.
	Compile autoschema.Options
	// Logger receives one record per attempt; nil uses slog.Default().
	Logger *slog.Logger
	// TracerProvider creates the run and attempt spans; nil uses the global
	// provider.
	TracerProvider trace.TracerProvider
	// MeterProvider creates the autoschema.extract.* instruments; nil uses
	// the global provider.
	MeterProvider metric.MeterProvider
}

// Result is a successful extraction.
type Result struct {
	RunID    string
	Attempts int
	// Schema is the accepted document as returned by the generator.
	Schema *jsondoc.Object
	Model  *autoschema.ModelDescriptor
}

// Extractor runs the generate, validate and repair loop. It is safe for
// concurrent use when the Generator is.
type Extractor struct {
	gen     Generator
	opts    Options
	log     *slog.Logger
	tracer  trace.Tracer
	metrics *extractMetrics
}

// New returns an Extractor calling gen.
func New(gen Generator, opts Options) *Extractor {
	if opts.MaxAttempts <= 0 {
		opts.MaxAttempts = DefaultMaxAttempts
	}
	log := opts.Logger
	if log == nil {
		log = slog.Default()
	}
	tp := opts.TracerProvider
	if tp == nil {
		tp = otel.GetTracerProvider()
	}
	mp := opts.MeterProvider
	if mp == nil {
		mp = otel.GetMeterProvider()
	}
	log = log.With("component", "extract")
	metrics, err := newExtractMetrics(mp.Meter(meterName))
	if err != nil {
		log.Warn("metrics disabled", "error", err)
		metrics = noopMetrics()
	}
	return &Extractor{gen: gen, opts: opts, log: log, tracer: tp.Tracer(tracerName), metrics: metrics}
}

// Extract asks the generator for a schema matching prompt and compiles it.
//
// Decode, validation and build failures are retried with a repair request.
// A generator failure ends the run with a *TransportError. When every
// attempt fails the result is an *ExhaustedError wrapping the last failure.
func (x *Extractor) Extract(ctx context.Context, prompt string, mode Mode) (*Result, error) {
	runID := uuid.New().String()
	ctx, span := x.tracer.Start(ctx, "autoschema.extract", trace.WithAttributes(
		attribute.String("autoschema.run_id", runID),
		attribute.String("autoschema.mode", mode.String()),
		attribute.Int("autoschema.max_attempts", x.opts.MaxAttempts),
	))
	defer span.End()
	log := x.log.With("run_id", runID, "mode", mode.String())

	msgs := Messages(prompt, mode)
	var last error
	for attempt := 1; attempt <= x.opts.MaxAttempts; attempt++ {
		if err := ctx.Err(); err != nil {
			te := &TransportError{RunID: runID, Attempt: attempt, Err: err}
			fail(span, te)
			x.metrics.recordRun(ctx, mode, OutcomeTransport)
			return nil, te
		}
		req := Request{RunID: runID, Attempt: attempt, Mode: mode, Messages: msgs}
		raw, doc, m, err := x.attempt(ctx, req)
		if err == nil {
			log.Info("schema accepted", "attempt", attempt, "model", m.Name(), "fields", m.Len())
			span.SetAttributes(attribute.Int("autoschema.attempts", attempt), attribute.String("autoschema.model", m.Name()))
			span.SetStatus(codes.Ok, "")
			x.metrics.recordRun(ctx, mode, OutcomeAccepted)
			return &Result{RunID: runID, Attempts: attempt, Schema: doc, Model: m}, nil
		}
		var te *TransportError
		if errors.As(err, &te) {
			log.Error("generator failed", "attempt", attempt, "error", err)
			fail(span, err)
			x.metrics.recordRun(ctx, mode, OutcomeTransport)
			return nil, err
		}
		log.Warn("schema rejected", "attempt", attempt, "error", err)
		last = err
		msgs = RepairMessages(prompt, mode, raw, err.Error())
	}
	ex := &ExhaustedError{RunID: runID, Attempts: x.opts.MaxAttempts, Err: last}
	log.Error("extraction failed", "attempts", x.opts.MaxAttempts, "error", last)
	span.SetAttributes(attribute.Int("autoschema.attempts", x.opts.MaxAttempts))
	fail(span, ex)
	x.metrics.recordRun(ctx, mode, OutcomeExhausted)
	return nil, ex
}

func (x *Extractor) attempt(ctx context.Context, req Request) (string, *jsondoc.Object, *autoschema.ModelDescriptor, error) {
	ctx, span := x.tracer.Start(ctx, "autoschema.extract.attempt", trace.WithAttributes(
		attribute.Int("autoschema.attempt", req.Attempt),
	))
	defer span.End()

	if x.opts.AttemptTimeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, x.opts.AttemptTimeout)
		defer cancel()
	}

	start := time.Now()
	raw, err := x.gen.GenerateSchema(ctx, req)
	elapsed := time.Since(start)
	span.SetAttributes(attribute.Int64("autoschema.generate_ms", elapsed.Milliseconds()))
	if err != nil {
		te := &TransportError{RunID: req.RunID, Attempt: req.Attempt, Err: err}
		fail(span, te)
		x.metrics.recordAttempt(ctx, req.Mode, OutcomeTransport, elapsed)
		return "", nil, nil, te
	}
	doc, m, err := parseReply(raw, x.opts.ModelName, x.opts.Compile)
	if err != nil {
		fail(span, err)
		x.metrics.recordAttempt(ctx, req.Mode, OutcomeRejected, elapsed)
		return raw, doc, nil, err
	}
	span.SetStatus(codes.Ok, "")
	x.metrics.recordAttempt(ctx, req.Mode, OutcomeAccepted, elapsed)
	return raw, doc, m, nil
}

// parseReply turns a generator reply into a compiled model.
func parseReply(raw, name string, opts autoschema.Options) (*jsondoc.Object, *autoschema.ModelDescriptor, error) {
	body := StripCodeFence(raw)
	if body == "" {
		return nil, nil, &autoschema.DecodeError{Source: "generator response", Err: ErrEmptyResponse}
	}
	doc, err := autoschema.Decode([]byte(body), autoschema.FormatJSON)
	if err != nil {
		return nil, nil, err
	}
	m, err := autoschema.ValidateAndCompile(doc, name, opts)
	if err != nil {
		return doc, nil, err
	}
	return doc, m, nil
}

func fail(span trace.Span, err error) {
	span.RecordError(err)
	span.SetStatus(codes.Error, err.Error())
}

// StripCodeFence removes a Markdown code fence around a reply, with or without
// a language tag. Text outside the first fenced block is dropped.
func StripCodeFence(s string) string {
	s = strings.TrimSpace(s)
	start := strings.Index(s, "```")
	if start < 0 {
		return s
	}
	body := s[start+3:]
	if nl := strings.IndexByte(body, '\n'); nl >= 0 {
		body = body[nl+1:]
	}
	if end := strings.Index(body, "```"); end >= 0 {
		body = body[:end]
	}
	return strings.TrimSpace(body)
}
