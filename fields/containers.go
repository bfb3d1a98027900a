package fields

import (
	"context"
	"reflect"

	marshkit "github.com/marshkit/marshkit"
)

// List applies the element type to every item of an ordered sequence. Load
// failures are reported per index, keeping successful siblings out of the
// error tree.
func List(elem marshkit.Type) marshkit.Type { return listType{elem: elem} }

type listType struct{ elem marshkit.Type }

func (l listType) Serialize(ctx context.Context, v any) (any, error) {
	items, ok := toSlice(v)
	if !ok {
		return nil, invalidType()
	}
	out := make([]any, 0, len(items))
	for _, item := range items {
		ev, err := l.elem.Serialize(ctx, item)
		if err != nil {
			return nil, err
		}
		out = append(out, ev)
	}
	return out, nil
}

func (l listType) Deserialize(ctx context.Context, v any) (any, error) {
	items, ok := toSlice(v)
	if !ok {
		return nil, invalidType()
	}
	tree := marshkit.NewErrorTree()
	out := make([]any, 0, len(items))
	for i, item := range items {
		ev, err := l.elem.Deserialize(ctx, item)
		if err != nil {
			tree.ChildAt(i).Merge(errTree(err))
			continue
		}
		out = append(out, ev)
	}
	if !tree.Empty() {
		return nil, &marshkit.ValidationError{Tree: tree, ValidData: out}
	}
	return out, nil
}

// Map applies the value type to every value of a string-keyed mapping. Load
// failures are reported per key.
func Map(value marshkit.Type) marshkit.Type { return mapType{value: value} }

type mapType struct{ value marshkit.Type }

func (m mapType) Serialize(ctx context.Context, v any) (any, error) {
	src, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType()
	}
	out := make(map[string]any, len(src))
	for k, item := range src {
		ev, err := m.value.Serialize(ctx, item)
		if err != nil {
			return nil, err
		}
		out[k] = ev
	}
	return out, nil
}

func (m mapType) Deserialize(ctx context.Context, v any) (any, error) {
	src, ok := v.(map[string]any)
	if !ok {
		return nil, invalidType()
	}
	tree := marshkit.NewErrorTree()
	out := make(map[string]any, len(src))
	for k, item := range src {
		ev, err := m.value.Deserialize(ctx, item)
		if err != nil {
			tree.Child(k).Merge(errTree(err))
			continue
		}
		out[k] = ev
	}
	if !tree.Empty() {
		return nil, &marshkit.ValidationError{Tree: tree, ValidData: out}
	}
	return out, nil
}

func errTree(err error) *marshkit.ErrorTree {
	if ve, ok := marshkit.AsValidationError(err); ok {
		return ve.Tree
	}
	t := marshkit.NewErrorTree()
	t.Add(err.Error())
	return t
}

func toSlice(v any) ([]any, bool) {
	switch t := v.(type) {
	case nil:
		return nil, false
	case []any:
		return t, true
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
