package codec

import (
	"context"
	"fmt"

	"gopkg.in/yaml.v3"

	marshkit "github.com/marshkit/marshkit"
)

// DecodeYAML parses raw YAML into the generic value shape. Decoded mappings
// are normalized to map[string]any recursively; non-string keys are
// rejected rather than dropped.
func DecodeYAML(data []byte) (any, error) {
	var v any
	if err := yaml.Unmarshal(data, &v); err != nil {
		return nil, fmt.Errorf("codec: decode yaml: %w", err)
	}
	return normalizeYAML(v)
}

// EncodeYAML renders a value as YAML.
func EncodeYAML(v any) ([]byte, error) {
	out, err := yaml.Marshal(v)
	if err != nil {
		return nil, fmt.Errorf("codec: encode yaml: %w", err)
	}
	return out, nil
}

// LoadYAML decodes raw YAML and runs it through the schema's load pipeline.
func LoadYAML(ctx context.Context, s *marshkit.Schema, data []byte, opts ...marshkit.LoadOpt) (any, error) {
	v, err := DecodeYAML(data)
	if err != nil {
		return nil, err
	}
	return s.Load(ctx, v, opts...)
}

// DumpYAML dumps an object through the schema and renders it as YAML.
func DumpYAML(ctx context.Context, s *marshkit.Schema, obj any) ([]byte, error) {
	m, err := s.Dump(ctx, obj)
	if err != nil {
		return nil, err
	}
	return EncodeYAML(m)
}

// normalizeYAML rewrites map[any]any mappings (yaml.v3 still produces them
// for merge keys and aliases) into map[string]any so schema loads see one
// mapping shape.
func normalizeYAML(v any) (any, error) {
	switch t := v.(type) {
	case map[string]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			nv, err := normalizeYAML(vv)
			if err != nil {
				return nil, err
			}
			out[k] = nv
		}
		return out, nil
	case map[any]any:
		out := make(map[string]any, len(t))
		for k, vv := range t {
			ks, ok := k.(string)
			if !ok {
				return nil, fmt.Errorf("codec: yaml mapping key %v is not a string", k)
			}
			nv, err := normalizeYAML(vv)
			if err != nil {
				return nil, err
			}
			out[ks] = nv
		}
		return out, nil
	case []any:
		out := make([]any, len(t))
		for i := range t {
			nv, err := normalizeYAML(t[i])
			if err != nil {
				return nil, err
			}
			out[i] = nv
		}
		return out, nil
	default:
		return v, nil
	}
}
