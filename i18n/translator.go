package i18n

import (
	"strings"
	"sync/atomic"
)

// Translator retrieves localized messages for error codes.
// data provides values substituted into "{name}" placeholders (for example,
// "field" or "type").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{ lang string }

func (t dictTranslator) Message(code string, data map[string]string) string {
	tmpl, ok := dictionaries[t.lang][code]
	if !ok {
		tmpl, ok = dictionaries["en"][code]
	}
	if !ok {
		return code
	}
	return Expand(tmpl, data)
}

var dictionaries = map[string]map[string]string{
	"en": {
		"missing_type":           "schema must have a 'type' field",
		"root_not_object":        "top-level schema must be of type 'object', got {type}",
		"missing_properties":     "schema must have a non-empty 'properties' field",
		"invalid_properties":     "'properties' must be an object",
		"invalid_field":          "definition of field '{field}' must be an object",
		"invalid_type_value":     "'type' for field '{field}' must be a string or a list of strings",
		"unsupported_type":       "type '{type}' for field '{field}' is not supported",
		"unsupported_format":     "string format '{format}' for field '{field}' is not supported",
		"unsupported_constraint": "{kind} constraint '{key}' for field '{field}' is not supported",
		"not_a_number":           "{key} for field '{field}' must be a number",
		"not_positive":           "{key} for field '{field}' must be a positive number",
		"not_an_integer":         "{key} for field '{field}' must be an integer",
		"negative":               "{key} for field '{field}' must be 0 or greater",
		"conflicting_bounds":     "cannot specify both {first} and {second} for field '{field}'",
		"min_items_exceeds_max":  "minItems must be less than or equal to maxItems for field '{field}'",
		"invalid_items":          "'items' for field '{field}' must be an object",
		"invalid_enum":           "enum for field '{field}' must be a list",
		"empty_enum":             "enum for field '{field}' must have at least one value",
		"non_scalar_enum":        "enum values for field '{field}' must be strings, numbers, booleans or null",
		"duplicate_enum":         "enum values for field '{field}' contain duplicates: {value}",
		"invalid_any_of":         "'anyOf' for field '{field}' must be a list",
		"empty_any_of":           "'anyOf' for field '{field}' must have at least one member",
		"invalid_any_of_member":  "'anyOf' member {index} for field '{field}' must be an object",
		"invalid_required":       "'required' must be a list",
		"invalid_required_name":  "required field name must be a string: {value}",
		"unknown_required":       "required field '{name}' is not defined in properties",
		"too_deep":               "schema too deeply nested (max depth {max})",
	},
	"ja": {
		"missing_type":          "スキーマに 'type' がありません",
		"root_not_object":       "トップレベルのスキーマは 'object' 型である必要があります ({type})",
		"missing_properties":    "スキーマに空でない 'properties' が必要です",
		"unsupported_type":      "フィールド '{field}' の型 '{type}' はサポートされていません",
		"unsupported_format":    "フィールド '{field}' の文字列フォーマット '{format}' はサポートされていません",
		"min_items_exceeds_max": "フィールド '{field}' の minItems は maxItems 以下である必要があります",
		"duplicate_enum":        "フィールド '{field}' の enum 値が重複しています: {value}",
		"empty_enum":            "フィールド '{field}' の enum には少なくとも1つの値が必要です",
		"unknown_required":      "必須フィールド '{name}' が properties に定義されていません",
		"too_deep":              "スキーマのネストが深すぎます (最大 {max})",
	},
}

// Expand substitutes "{name}" placeholders in tmpl with values from data.
// Unknown placeholders are left untouched.
func Expand(tmpl string, data map[string]string) string {
	if len(data) == 0 || !strings.Contains(tmpl, "{") {
		return tmpl
	}
	pairs := make([]string, 0, len(data)*2)
	for k, v := range data {
		pairs = append(pairs, "{"+k+"}", v)
	}
	return strings.NewReplacer(pairs...).Replace(tmpl)
}

var currentTranslator atomic.Pointer[Translator]

func init() { SetLanguage("en") }

// SetLanguage switches the built-in Translator language ("en"/"ja").
func SetLanguage(lang string) {
	if lang != "ja" {
		lang = "en"
	}
	var tr Translator = dictTranslator{lang: lang}
	currentTranslator.Store(&tr)
}

// SetTranslator replaces the Translator implementation (not limited to the
// dictionary version).
func SetTranslator(tr Translator) {
	if tr == nil {
		SetLanguage("en")
		return
	}
	currentTranslator.Store(&tr)
}

// T fetches a message for the given code using the current Translator.
func T(code string, data map[string]string) string {
	return (*currentTranslator.Load()).Message(code, data)
}
