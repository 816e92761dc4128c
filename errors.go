package autoschema

import (
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/reoring/autoschema/i18n"
)

// Validation error codes (exported consts for IDE completion and type safety by convention).
const (
	CodeMissingType           = "missing_type"
	CodeRootNotObject         = "root_not_object"
	CodeMissingProperties     = "missing_properties"
	CodeInvalidProperties     = "invalid_properties"
	CodeInvalidField          = "invalid_field"
	CodeInvalidTypeValue      = "invalid_type_value"
	CodeUnsupportedType       = "unsupported_type"
	CodeUnsupportedFormat     = "unsupported_format"
	CodeUnsupportedConstraint = "unsupported_constraint"
	CodeNotANumber            = "not_a_number"
	CodeNotPositive           = "not_positive"
	CodeNotAnInteger          = "not_an_integer"
	CodeNegative              = "negative"
	CodeConflictingBounds     = "conflicting_bounds"
	CodeMinItemsExceedsMax    = "min_items_exceeds_max"
	CodeInvalidItems          = "invalid_items"
	CodeInvalidEnum           = "invalid_enum"
	CodeEmptyEnum             = "empty_enum"
	CodeNonScalarEnum         = "non_scalar_enum"
	CodeDuplicateEnum         = "duplicate_enum"
	CodeInvalidAnyOf          = "invalid_any_of"
	CodeEmptyAnyOf            = "empty_any_of"
	CodeInvalidAnyOfMember    = "invalid_any_of_member"
	CodeInvalidRequired       = "invalid_required"
	CodeInvalidRequiredName   = "invalid_required_name"
	CodeUnknownRequired       = "unknown_required"
	CodeTooDeep               = "too_deep"
)

var (
	// ErrTooDeep is wrapped by errors caused by schemas nested beyond
	// Options.MaxDepth.
	ErrTooDeep = errors.New("autoschema: schema too deeply nested")
	// ErrSchemaNotFound reports a schema that does not exist in storage.
	ErrSchemaNotFound = errors.New("autoschema: schema not found")
)

// ValidationError reports a schema document outside the supported subset.
// The message is complete on its own so it can be handed verbatim to a human
// or fed back into a generation loop.
type ValidationError struct {
	Path    string // JSON Pointer into the schema document ("/" for the root).
	Field   string // Dotted field path (for example: address.street); empty at the root.
	Code    string // One of the Code* constants.
	Message string
	// Params carries the structured values substituted into Message
	// (for example: {"type": "uri", "field": "homepage"}).
	Params map[string]string
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("autoschema: invalid schema at %s: %s", e.Path, e.Message)
}

// Is makes errors.Is(err, ErrTooDeep) hold for depth violations.
func (e *ValidationError) Is(target error) bool {
	return target == ErrTooDeep && e.Code == CodeTooDeep
}

// BuildError reports a schema the compiler cannot turn into a descriptor.
type BuildError struct {
	Path    string // JSON Pointer into the schema document.
	Field   string
	Message string
	Err     error // Optional: underlying error.
}

func (e *BuildError) Error() string {
	b := &strings.Builder{}
	fmt.Fprintf(b, "autoschema: cannot build model at %s: %s", e.Path, e.Message)
	if e.Err != nil && !strings.Contains(e.Message, e.Err.Error()) {
		fmt.Fprintf(b, ": %v", e.Err)
	}
	return b.String()
}

func (e *BuildError) Unwrap() error { return e.Err }

// DecodeError reports a stored schema that is not a well-formed JSON or YAML
// object.
type DecodeError struct {
	Source string // File path or storage key; may be empty.
	Err    error
}

func (e *DecodeError) Error() string {
	if e.Source != "" {
		return fmt.Sprintf("autoschema: malformed schema document %s: %v", e.Source, e.Err)
	}
	return fmt.Sprintf("autoschema: malformed schema document: %v", e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// AsValidationError extracts a *ValidationError from an error using errors.As internally.
func AsValidationError(err error) (*ValidationError, bool) {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// AsBuildError extracts a *BuildError from an error using errors.As internally.
func AsBuildError(err error) (*BuildError, bool) {
	var be *BuildError
	if errors.As(err, &be) {
		return be, true
	}
	return nil, false
}

// newValidationError renders the message for code through the i18n
// translator.
func newValidationError(at location, code string, params map[string]string) *ValidationError {
	data := make(map[string]string, len(params)+1)
	for k, v := range params {
		data[k] = v
	}
	if _, ok := data["field"]; !ok {
		data["field"] = at.field
	}
	return &ValidationError{
		Path:    at.pointer(),
		Field:   at.field,
		Code:    code,
		Message: i18n.T(code, data),
		Params:  data,
	}
}

func newBuildError(at location, err error, format string, a ...any) *BuildError {
	return &BuildError{Path: at.pointer(), Field: at.field, Message: fmt.Sprintf(format, a...), Err: err}
}

// quoteList renders values for messages in a stable order.
func quoteList(vals []string) string {
	vals = append([]string(nil), vals...)
	sort.Strings(vals)
	for i, v := range vals {
		vals[i] = "'" + v + "'"
	}
	return strings.Join(vals, ", ")
}
