// Package codec bridges schemas to wire formats. Decoding always yields the
// JSON-like value shapes the load pipeline expects: map[string]any, []any,
// string, bool, nil, and json.Number for anything numeric.
package codec

import (
	"bytes"
	"context"
	"fmt"

	json "github.com/goccy/go-json"

	marshkit "github.com/marshkit/marshkit"
)

// DecodeJSON parses raw JSON into the generic value shape. Numbers come back
// as json.Number so integer precision survives the round trip.
func DecodeJSON(data []byte) (any, error) {
	dec := json.NewDecoder(bytes.NewReader(data))
	dec.UseNumber()
	var v any
	if err := dec.Decode(&v); err != nil {
		return nil, fmt.Errorf("codec: decode json: %w", err)
	}
	return v, nil
}

// EncodeJSON renders a value as JSON. Ordered maps from DumpOrdered marshal
// with their insertion order preserved.
func EncodeJSON(v any) ([]byte, error) {
	out, err := json.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode json: %w", err)
	}
	return out, nil
}

// LoadJSON decodes raw JSON and runs it through the schema's load pipeline.
func LoadJSON(ctx context.Context, s *marshkit.Schema, data []byte, opts ...marshkit.LoadOpt) (any, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, v, opts...)
}

// LoadManyJSON decodes a raw JSON array and loads every element.
func LoadManyJSON(ctx context.Context, s *marshkit.Schema, data []byte, opts ...marshkit.LoadOpt) ([]any, error) {
	v, err := DecodeJSON(data)
	if err != nil {
		return nil, err
	}
	return s.LoadMany(ctx, v, opts...)
}

// DumpJSON dumps an object through the schema and renders it as JSON. Schemas
// built with Ordered() emit keys in declaration order.
func DumpJSON(ctx context.Context, s *marshkit.Schema, obj any) ([]byte, error) {
	if s.Ordered() {
		m, err := s.DumpOrdered(ctx, obj)
		if err != nil {
			return nil, err
		}
		return EncodeJSON(m)
	}
	m, err := s.Dump(ctx, obj)
	if err != nil {
		return nil, err
	}
	return EncodeJSON(m)
}

// DumpManyJSON dumps a collection and renders it as a JSON array.
func DumpManyJSON(ctx context.Context, s *marshkit.Schema, objs any) ([]byte, error) {
	if s.Ordered() {
		ms, err := s.DumpManyOrdered(ctx, objs)
		if err != nil {
			return nil, err
		}
		return EncodeJSON(ms)
	}
	ms, err := s.DumpMany(ctx, objs)
	if err != nil {
		return nil, err
	}
	return EncodeJSON(ms)
}
