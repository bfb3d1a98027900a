package i18n

import (
	"strings"
	"sync"
)

// Translator retrieves human-readable messages for error codes. data provides
// optional metadata to embed in the message (for example "min" or "choices").
type Translator interface {
	Message(code string, data map[string]string) string
}

// dictTranslator is the built-in dictionary-based Translator.
type dictTranslator struct{}

var defaults = map[string]string{
	"invalid_type":   "invalid input type",
	"required":       "missing data for required field",
	"null":           "field may not be null",
	"unknown_key":    "unknown field",
	"invalid_value":  "invalid value",
	"invalid_format": "not a valid {format}",
	"too_short":      "shorter than minimum length {min}",
	"too_long":       "longer than maximum length {max}",
	"too_small":      "must be greater than or equal to {min}",
	"too_big":        "must be less than or equal to {max}",
	"pattern":        "string does not match expected pattern",
	"invalid_enum":   "must be one of: {choices}",
	"not_equal":      "must be equal to {other}",
}

func (dictTranslator) Message(code string, data map[string]string) string {
	msg, ok := defaults[code]
	if !ok {
		return code
	}
	return expand(msg, data)
}

// expand substitutes {key} placeholders from data; unresolved placeholders
// are left intact so callers can spot missing parameters.
func expand(msg string, data map[string]string) string {
	if len(data) == 0 || !strings.ContainsRune(msg, '{') {
		return msg
	}
	out := msg
	for k, v := range data {
		out = strings.ReplaceAll(out, "{"+k+"}", v)
	}
	return out
}

var (
	mu      sync.RWMutex
	current Translator = dictTranslator{}
)

// SetDefault replaces the process-wide Translator; nil values are ignored.
func SetDefault(t Translator) {
	if t == nil {
		return
	}
	mu.Lock()
	current = t
	mu.Unlock()
}

// ResetDefault restores the built-in dictionary Translator.
func ResetDefault() {
	mu.Lock()
	current = dictTranslator{}
	mu.Unlock()
}

// T translates code using the current default Translator.
func T(code string, data map[string]string) string {
	mu.RLock()
	t := current
	mu.RUnlock()
	return t.Message(code, data)
}
