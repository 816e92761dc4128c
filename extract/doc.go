// Package extract drives a schema generator (typically an LLM) until it
// produces a schema document that autoschema accepts.
//
// The generator is asked for a JSON Schema describing the output a natural
// language prompt expects. Each response is decoded, validated and compiled;
// failures are fed back to the generator as a repair request carrying the
// exact error text, up to a bounded number of attempts.
//
// Runs are logged with log/slog and traced and measured through the
// OpenTelemetry providers in Options (the global providers by default).
//
// Typical usage:
//
//	x := extract.New(myGenerator, extract.Options{MaxAttempts: 3})
//	res, err := x.Extract(ctx, "List each invoice with its number, date and total", extract.ModeStandard)
//	if err != nil {
//	    var ex *extract.ExhaustedError
//	    if errors.As(err, &ex) { /* every attempt produced an unusable schema */ }
//	}
//	fmt.Println(res.Model)
package extract
