// Package validate ships the built-in validators. A validator is a unary
// callable over a deserialized value that signals failure by returning a
// *marshkit.ValidationError; it never mutates the value.
package validate

import (
	"context"
	"encoding/json"
	"fmt"
	"net/mail"
	"net/url"
	"reflect"
	"regexp"
	"strings"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/i18n"
)

// Opt customizes a validator.
type Opt func(*opts)

type opts struct{ message string }

// Message overrides the validator's failure message.
func Message(msg string) Opt { return func(o *opts) { o.message = msg } }

func applyOpts(os []Opt) opts {
	var o opts
	for _, fn := range os {
		fn(&o)
	}
	return o
}

func fail(o opts, code string, data map[string]string) error {
	if o.message != "" {
		return marshkit.NewValidationError(o.message)
	}
	return marshkit.NewValidationError(i18n.T(code, data))
}

// And composes validators; all of them run and every failure is collected.
func And(vs ...marshkit.Validator) marshkit.Validator {
	return func(ctx context.Context, v any) error {
		tree := marshkit.NewErrorTree()
		for _, vd := range vs {
			if err := vd(ctx, v); err != nil {
				if ve, ok := marshkit.AsValidationError(err); ok {
					tree.Merge(ve.Tree)
				} else {
					tree.Add(err.Error())
				}
			}
		}
		if !tree.Empty() {
			return &marshkit.ValidationError{Tree: tree}
		}
		return nil
	}
}

// Length bounds the length of a string, sequence, or mapping. A negative
// bound disables that side.
func Length(min, max int, os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		n, ok := lengthOf(v)
		if !ok {
			return fail(o, marshkit.CodeInvalidValue, nil)
		}
		if min >= 0 && n < min {
			return fail(o, marshkit.CodeTooShort, map[string]string{"min": itoa(min)})
		}
		if max >= 0 && n > max {
			return fail(o, marshkit.CodeTooLong, map[string]string{"max": itoa(max)})
		}
		return nil
	}
}

// Range bounds a numeric value inclusively. NaN never satisfies the range.
func Range(min, max float64, os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		f, ok := numericOf(v)
		if !ok {
			return fail(o, marshkit.CodeInvalidValue, nil)
		}
		if !(f >= min) {
			return fail(o, marshkit.CodeTooSmall, map[string]string{"min": ftoa(min)})
		}
		if !(f <= max) {
			return fail(o, marshkit.CodeTooBig, map[string]string{"max": ftoa(max)})
		}
		return nil
	}
}

// Regexp requires string values to match the pattern. The pattern compiles
// once at declaration time; an invalid pattern panics there, not at call
// time.
func Regexp(pattern string, os ...Opt) marshkit.Validator {
	re := regexp.MustCompile(pattern)
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		s, ok := v.(string)
		if !ok || !re.MatchString(s) {
			return fail(o, marshkit.CodePattern, nil)
		}
		return nil
	}
}

// OneOf requires the value to equal one of the choices.
func OneOf(choices []any, os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	rendered := renderChoices(choices)
	return func(ctx context.Context, v any) error {
		for _, c := range choices {
			if reflect.DeepEqual(v, c) {
				return nil
			}
		}
		return fail(o, marshkit.CodeInvalidEnum, map[string]string{"choices": rendered})
	}
}

// NoneOf rejects the value when it equals one of the choices.
func NoneOf(choices []any, os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		for _, c := range choices {
			if reflect.DeepEqual(v, c) {
				return fail(o, marshkit.CodeInvalidValue, nil)
			}
		}
		return nil
	}
}

// Equal requires the value to equal other.
func Equal(other any, os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		if !reflect.DeepEqual(v, other) {
			return fail(o, marshkit.CodeNotEqual, map[string]string{"other": fmt.Sprintf("%v", other)})
		}
		return nil
	}
}

// Email requires a string parseable as a single RFC 5322 address.
func Email(os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		s, ok := v.(string)
		if !ok {
			return fail(o, marshkit.CodeInvalidFormat, map[string]string{"format": "email"})
		}
		a, err := mail.ParseAddress(s)
		if err != nil || a.Address != s {
			return fail(o, marshkit.CodeInvalidFormat, map[string]string{"format": "email"})
		}
		return nil
	}
}

// URL requires a string parseable as an absolute URL.
func URL(os ...Opt) marshkit.Validator {
	o := applyOpts(os)
	return func(ctx context.Context, v any) error {
		s, ok := v.(string)
		if !ok {
			return fail(o, marshkit.CodeInvalidFormat, map[string]string{"format": "url"})
		}
		u, err := url.Parse(s)
		if err != nil || u.Scheme == "" || u.Host == "" {
			return fail(o, marshkit.CodeInvalidFormat, map[string]string{"format": "url"})
		}
		return nil
	}
}

// ---- helpers ----

func lengthOf(v any) (int, bool) {
	switch t := v.(type) {
	case string:
		return len(t), true
	case []any:
		return len(t), true
	case map[string]any:
		return len(t), true
	}
	rv := reflect.ValueOf(v)
	switch rv.Kind() {
	case reflect.Slice, reflect.Array, reflect.Map, reflect.String:
		return rv.Len(), true
	}
	return 0, false
}

func numericOf(v any) (float64, bool) {
	switch n := v.(type) {
	case int:
		return float64(n), true
	case int8, int16, int32, int64:
		return float64(reflect.ValueOf(n).Int()), true
	case uint, uint8, uint16, uint32, uint64:
		return float64(reflect.ValueOf(n).Uint()), true
	case float32:
		return float64(n), true
	case float64:
		return n, true
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return 0, false
		}
		return f, true
	}
	return 0, false
}

func renderChoices(choices []any) string {
	parts := make([]string, len(choices))
	for i, c := range choices {
		parts[i] = fmt.Sprintf("%v", c)
	}
	return strings.Join(parts, ", ")
}

func itoa(n int) string { return fmt.Sprintf("%d", n) }

func ftoa(f float64) string { return fmt.Sprintf("%v", f) }
