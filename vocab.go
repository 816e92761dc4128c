package autoschema

// Supported vocabulary shared by the validator, the compiler and the prompt
// builder in package extract. Nothing else may carry its own copy of these
// tables.

// TypeName is a JSON Schema "type" keyword value.
type TypeName string

const (
	TypeString  TypeName = "string"
	TypeNumber  TypeName = "number"
	TypeInteger TypeName = "integer"
	TypeBoolean TypeName = "boolean"
	TypeObject  TypeName = "object"
	TypeArray   TypeName = "array"
	TypeNull    TypeName = "null"
)

// Format is a JSON Schema string "format" value.
type Format string

const (
	FormatDateTime Format = "date-time"
	FormatDate     Format = "date"
	FormatTime     Format = "time"
	FormatDuration Format = "duration"
	FormatEmail    Format = "email"
	FormatHostname Format = "hostname"
	FormatIPv4     Format = "ipv4"
	FormatIPv6     Format = "ipv6"
	FormatUUID     Format = "uuid"
)

// supportedTypes maps each supported type keyword to the kind it compiles to.
var supportedTypes = []struct {
	name TypeName
	kind Kind
}{
	{TypeString, KindText},
	{TypeNumber, KindNumber},
	{TypeInteger, KindInteger},
	{TypeBoolean, KindBoolean},
	{TypeObject, KindMap},
	{TypeArray, KindList},
	{TypeNull, KindNull},
}

// supportedFormats maps each supported string format to its native kind.
// Formats without a richer representation stay text.
var supportedFormats = []struct {
	name Format
	kind Kind
}{
	{FormatDateTime, KindTimestamp},
	{FormatDate, KindDate},
	{FormatTime, KindTimeOfDay},
	{FormatDuration, KindText},
	{FormatEmail, KindText},
	{FormatHostname, KindText},
	{FormatIPv4, KindText},
	{FormatIPv6, KindText},
	{FormatUUID, KindText},
}

// Schema keywords.
const (
	kwType             = "type"
	kwProperties       = "properties"
	kwRequired         = "required"
	kwItems            = "items"
	kwEnum             = "enum"
	kwAnyOf            = "anyOf"
	kwFormat           = "format"
	kwDescription      = "description"
	kwTitle            = "title"
	kwDefault          = "default"
	kwExamples         = "examples"
	kwMinimum          = "minimum"
	kwMaximum          = "maximum"
	kwExclusiveMinimum = "exclusiveMinimum"
	kwExclusiveMaximum = "exclusiveMaximum"
	kwMultipleOf       = "multipleOf"
	kwMinItems         = "minItems"
	kwMaxItems         = "maxItems"
)

var (
	metadataKeys         = []string{kwType, kwDescription, kwTitle, kwDefault, kwExamples}
	numericConstraintKey = []string{kwMultipleOf, kwMaximum, kwExclusiveMaximum, kwMinimum, kwExclusiveMinimum}
	arrayConstraintKeys  = []string{kwMinItems, kwMaxItems, kwItems}
)

// SupportedTypes lists the accepted "type" values in canonical order.
func SupportedTypes() []TypeName {
	out := make([]TypeName, len(supportedTypes))
	for i, t := range supportedTypes {
		out[i] = t.name
	}
	return out
}

// SupportedFormats lists the accepted string formats in canonical order.
func SupportedFormats() []Format {
	out := make([]Format, len(supportedFormats))
	for i, f := range supportedFormats {
		out[i] = f.name
	}
	return out
}

// NumericConstraints lists the keywords accepted on number and integer fields.
func NumericConstraints() []string { return append([]string(nil), numericConstraintKey...) }

// ArrayConstraints lists the keywords accepted on array fields.
func ArrayConstraints() []string { return append([]string(nil), arrayConstraintKeys...) }

// IsSupportedType reports whether name is in the supported type vocabulary.
func IsSupportedType(name string) bool {
	_, ok := primitiveKind(name)
	return ok
}

// IsSupportedFormat reports whether name is in the supported format vocabulary.
func IsSupportedFormat(name string) bool {
	_, ok := formatKind(name)
	return ok
}

func primitiveKind(name string) (Kind, bool) {
	for _, t := range supportedTypes {
		if string(t.name) == name {
			return t.kind, true
		}
	}
	return 0, false
}

func formatKind(name string) (Kind, bool) {
	for _, f := range supportedFormats {
		if string(f.name) == name {
			return f.kind, true
		}
	}
	return 0, false
}

func typeNameOf(k Kind) TypeName {
	for _, t := range supportedTypes {
		if t.kind == k {
			return t.name
		}
	}
	return ""
}

// formatOf returns the format a non-text temporal kind was compiled from.
func formatOf(k Kind) Format {
	if k == KindText {
		return ""
	}
	for _, f := range supportedFormats {
		if f.kind == k {
			return f.name
		}
	}
	return ""
}

func contains(list []string, s string) bool {
	for _, v := range list {
		if v == s {
			return true
		}
	}
	return false
}
