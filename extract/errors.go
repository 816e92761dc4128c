package extract

import (
	"errors"
	"fmt"
)

// ErrEmptyResponse reports a generator reply with no content.
var ErrEmptyResponse = errors.New("extract: generator returned an empty response")

// TransportError reports a failure of the generator itself (network, quota,
// cancellation). It is not retried.
type TransportError struct {
	RunID   string
	Attempt int
	Err     error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("extract: generator failed on attempt %d: %v", e.Attempt, e.Err)
}

func (e *TransportError) Unwrap() error { return e.Err }

// ExhaustedError reports that every attempt produced an unusable schema. Err
// is the failure of the last attempt, so errors.As can still reach the
// underlying *autoschema.ValidationError, *autoschema.BuildError or
// *autoschema.DecodeError.
type ExhaustedError struct {
	RunID    string
	Attempts int
	Err      error
}

func (e *ExhaustedError) Error() string {
	return fmt.Sprintf("extract: no usable schema after %d attempts: %v", e.Attempts, e.Err)
}

func (e *ExhaustedError) Unwrap() error { return e.Err }
