package marshkit

import (
	"context"
	"fmt"
	"reflect"

	orderedmap "github.com/wk8/go-ordered-map/v2"
)

// Dump serializes a single source object into a plain mapping, walking the
// bound field table in declared order. No validation occurs: malformed
// source data surfaces as an immediate error from the field-type encode
// step, never aggregated, because dump operates on already-valid data.
func (s *Schema) Dump(ctx context.Context, v any) (map[string]any, error) {
	return s.dumpOne(ctx, v, hookAll)
}

// DumpMany serializes an ordered sequence of source objects.
func (s *Schema) DumpMany(ctx context.Context, v any) ([]map[string]any, error) {
	items, data, err := s.preDumpMany(ctx, v)
	if err != nil {
		return nil, err
	}
	out := make([]map[string]any, 0, len(items))
	for i, item := range items {
		m, err := s.dumpOne(ctx, item, hookPerItem)
		if err != nil {
			return nil, fmt.Errorf("marshkit: dump item %d: %w", i, err)
		}
		out = append(out, m)
	}
	data, err = runProcessors(ctx, s.hooks.postDump, hookPerColl, any(out))
	if err != nil {
		return nil, err
	}
	res, ok := data.([]map[string]any)
	if !ok {
		return nil, fmt.Errorf("marshkit: post-dump hook returned %T, want []map[string]any", data)
	}
	return res, nil
}

// DumpOrdered serializes one object into an ordered mapping whose key order
// is the declared field order, for order-sensitive output such as golden
// files. Nested schemas emit ordered mappings as well.
func (s *Schema) DumpOrdered(ctx context.Context, v any) (*orderedmap.OrderedMap[string, any], error) {
	return s.dumpOneOrdered(withOrderedDump(ctx), v, hookAll)
}

// DumpManyOrdered serializes a sequence into ordered mappings.
func (s *Schema) DumpManyOrdered(ctx context.Context, v any) ([]*orderedmap.OrderedMap[string, any], error) {
	ctx = withOrderedDump(ctx)
	items, _, err := s.preDumpMany(ctx, v)
	if err != nil {
		return nil, err
	}
	out := make([]*orderedmap.OrderedMap[string, any], 0, len(items))
	for i, item := range items {
		m, err := s.dumpOneOrdered(ctx, item, hookPerItem)
		if err != nil {
			return nil, fmt.Errorf("marshkit: dump item %d: %w", i, err)
		}
		out = append(out, m)
	}
	return out, nil
}

// preDumpMany checks the sequence shape and runs whole-collection pre-dump
// hooks.
func (s *Schema) preDumpMany(ctx context.Context, v any) ([]any, any, error) {
	data, err := runProcessors(ctx, s.hooks.preDump, hookPerColl, v)
	if err != nil {
		return nil, nil, err
	}
	items, ok := asSlice(data)
	if !ok {
		return nil, nil, fmt.Errorf("marshkit: dump many requires a sequence, got %T", data)
	}
	return items, data, nil
}

type dumpSink interface {
	set(k string, v any)
}

type plainSink map[string]any

func (m plainSink) set(k string, v any) { m[k] = v }

type orderedSink struct{ om *orderedmap.OrderedMap[string, any] }

func (o orderedSink) set(k string, v any) { o.om.Set(k, v) }

func (s *Schema) dumpOne(ctx context.Context, obj any, mode hookMode) (map[string]any, error) {
	obj, err := runProcessors(ctx, s.hooks.preDump, mode, obj)
	if err != nil {
		return nil, err
	}
	out := plainSink{}
	if err := s.collectFields(ctx, obj, out); err != nil {
		return nil, err
	}
	data, err := runProcessors(ctx, s.hooks.postDump, mode, any(map[string]any(out)))
	if err != nil {
		return nil, err
	}
	m, ok := data.(map[string]any)
	if !ok {
		return nil, fmt.Errorf("marshkit: post-dump hook returned %T, want map[string]any", data)
	}
	return m, nil
}

func (s *Schema) dumpOneOrdered(ctx context.Context, obj any, mode hookMode) (*orderedmap.OrderedMap[string, any], error) {
	obj, err := runProcessors(ctx, s.hooks.preDump, mode, obj)
	if err != nil {
		return nil, err
	}
	om := orderedmap.New[string, any]()
	if err := s.collectFields(ctx, obj, orderedSink{om: om}); err != nil {
		return nil, err
	}
	data, err := runProcessors(ctx, s.hooks.postDump, mode, any(om))
	if err != nil {
		return nil, err
	}
	res, ok := data.(*orderedmap.OrderedMap[string, any])
	if !ok {
		return nil, fmt.Errorf("marshkit: post-dump hook returned %T, want ordered map", data)
	}
	return res, nil
}

// collectFields walks the field table in declared order. Fields serializing
// to Missing are omitted entirely so "absent" stays distinguishable from
// "explicitly null" in the output.
func (s *Schema) collectFields(ctx context.Context, obj any, sink dumpSink) error {
	for _, f := range s.fields {
		if f.spec.LoadOnly {
			continue
		}
		v, err := f.serialize(ctx, obj, s.accessor)
		if err != nil {
			return fmt.Errorf("marshkit: dump field %q: %w", f.spec.Name, err)
		}
		if IsMissing(v) {
			continue
		}
		sink.set(f.spec.DataKey, v)
	}
	return nil
}

// asSlice normalizes slice-like inputs to []any. Strings and byte slices are
// not treated as sequences.
func asSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
	case []map[string]any:
		out := make([]any, len(t))
		for i := range t {
			out[i] = t[i]
		}
		return out, true
	case string, []byte:
		return nil, false
	}
	rv := reflect.ValueOf(v)
	if rv.Kind() != reflect.Slice && rv.Kind() != reflect.Array {
		return nil, false
	}
	out := make([]any, rv.Len())
	for i := 0; i < rv.Len(); i++ {
		out[i] = rv.Index(i).Interface()
	}
	return out, true
}
