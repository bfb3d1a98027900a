// Package fields ships the built-in field types. Each type implements the
// marshkit.Type contract; the pipeline core never depends on this package.
package fields

import (
	"context"
	"encoding/json"
	"math"
	"strconv"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/i18n"
)

func invalidType() error {
	return marshkit.NewValidationError(i18n.T(marshkit.CodeInvalidType, nil))
}

// Raw passes values through untouched in both directions.
func Raw() marshkit.Type { return rawType{} }

type rawType struct{}

func (rawType) Serialize(ctx context.Context, v any) (any, error)   { return v, nil }
func (rawType) Deserialize(ctx context.Context, v any) (any, error) { return v, nil }

// String accepts and emits string values; anything else is a type error.
func String() marshkit.Type { return stringType{} }

type stringType struct{}

func (stringType) Serialize(ctx context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidType()
	}
	return s, nil
}

func (stringType) Deserialize(ctx context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidType()
	}
	return s, nil
}

// Bool accepts and emits bool values.
func Bool() marshkit.Type { return boolType{} }

type boolType struct{}

func (boolType) Serialize(ctx context.Context, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, invalidType()
	}
	return b, nil
}

func (boolType) Deserialize(ctx context.Context, v any) (any, error) {
	b, ok := v.(bool)
	if !ok {
		return nil, invalidType()
	}
	return b, nil
}

// Int coerces integral inputs to int64. Floats and json.Number values are
// accepted only when they carry no fractional part.
func Int() marshkit.Type { return intType{} }

type intType struct{}

func (intType) Serialize(ctx context.Context, v any) (any, error)   { return toInt64(v) }
func (intType) Deserialize(ctx context.Context, v any) (any, error) { return toInt64(v) }

func toInt64(v any) (any, error) {
	switch n := v.(type) {
	case int:
		return int64(n), nil
	case int8:
		return int64(n), nil
	case int16:
		return int64(n), nil
	case int32:
		return int64(n), nil
	case int64:
		return n, nil
	case uint:
		return int64(n), nil
	case uint8:
		return int64(n), nil
	case uint16:
		return int64(n), nil
	case uint32:
		return int64(n), nil
	case uint64:
		if n > math.MaxInt64 {
			return nil, invalidType()
		}
		return int64(n), nil
	case float32:
		return floatToInt64(float64(n))
	case float64:
		return floatToInt64(n)
	case json.Number:
		if i, err := n.Int64(); err == nil {
			return i, nil
		}
		if f, err := n.Float64(); err == nil {
			return floatToInt64(f)
		}
		return nil, invalidType()
	default:
		return nil, invalidType()
	}
}

func floatToInt64(f float64) (any, error) {
	if f != math.Trunc(f) || math.IsInf(f, 0) || math.IsNaN(f) {
		return nil, invalidType()
	}
	return int64(f), nil
}

// Float coerces numeric inputs to float64.
func Float() marshkit.Type { return floatType{} }

type floatType struct{}

func (floatType) Serialize(ctx context.Context, v any) (any, error)   { return toFloat64(v) }
func (floatType) Deserialize(ctx context.Context, v any) (any, error) { return toFloat64(v) }

func toFloat64(v any) (any, error) {
	switch n := v.(type) {
	case float64:
		return n, nil
	case float32:
		return float64(n), nil
	case int:
		return float64(n), nil
	case int8:
		return float64(n), nil
	case int16:
		return float64(n), nil
	case int32:
		return float64(n), nil
	case int64:
		return float64(n), nil
	case uint:
		return float64(n), nil
	case uint8:
		return float64(n), nil
	case uint16:
		return float64(n), nil
	case uint32:
		return float64(n), nil
	case uint64:
		return float64(n), nil
	case json.Number:
		f, err := n.Float64()
		if err != nil {
			return nil, invalidType()
		}
		return f, nil
	default:
		return nil, invalidType()
	}
}

// Number preserves numeric values as json.Number, keeping precision across
// the text boundary (decoders in codec/ run with UseNumber).
func Number() marshkit.Type { return numberType{} }

type numberType struct{}

func (numberType) Serialize(ctx context.Context, v any) (any, error)   { return toNumber(v) }
func (numberType) Deserialize(ctx context.Context, v any) (any, error) { return toNumber(v) }

func toNumber(v any) (any, error) {
	switch n := v.(type) {
	case json.Number:
		return n, nil
	case float64:
		return json.Number(strconv.FormatFloat(n, 'g', -1, 64)), nil
	case float32:
		return json.Number(strconv.FormatFloat(float64(n), 'g', -1, 32)), nil
	case int:
		return json.Number(strconv.FormatInt(int64(n), 10)), nil
	case int64:
		return json.Number(strconv.FormatInt(n, 10)), nil
	case uint64:
		return json.Number(strconv.FormatUint(n, 10)), nil
	default:
		return nil, invalidType()
	}
}

// Constant always produces v on dump and on load, regardless of input.
func Constant(v any) marshkit.Type { return constantType{v: v} }

type constantType struct{ v any }

func (c constantType) Serialize(ctx context.Context, v any) (any, error) { return c.v, nil }
func (c constantType) SerializeObject(ctx context.Context, obj any) (any, error) {
	return c.v, nil
}
func (c constantType) Deserialize(ctx context.Context, v any) (any, error) { return c.v, nil }
