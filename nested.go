package marshkit

import (
	"context"
	"fmt"
	"sync"

	"github.com/marshkit/marshkit/i18n"
)

// SchemaRef is an indirection cell over a schema: a concrete value, a
// zero-argument producer for forward and self references, or a registered
// name resolved at first use.
type SchemaRef interface {
	resolveSchema() (*Schema, error)
}

type schemaRefValue struct{ s *Schema }

func (r schemaRefValue) resolveSchema() (*Schema, error) {
	if r.s == nil {
		return nil, fmt.Errorf("marshkit: nil schema reference")
	}
	return r.s, nil
}

type schemaRefFunc func() *Schema

func (r schemaRefFunc) resolveSchema() (*Schema, error) {
	s := r()
	if s == nil {
		return nil, fmt.Errorf("marshkit: deferred schema reference produced nil")
	}
	return s, nil
}

type schemaRefName string

func (r schemaRefName) resolveSchema() (*Schema, error) {
	return ResolveRegistered(string(r))
}

// Use references a concrete compiled schema.
func Use(s *Schema) SchemaRef { return schemaRefValue{s: s} }

// Deferred references a schema produced lazily; required for
// self-referential declarations, which must not be expanded eagerly.
func Deferred(fn func() *Schema) SchemaRef { return schemaRefFunc(fn) }

// Named references a schema registered under name.
func Named(name string) SchemaRef { return schemaRefName(name) }

// NestedOpt configures a nested field.
type NestedOpt func(*Nested)

// Only restricts the nested schema to the given (possibly dotted) paths.
func Only(paths ...string) NestedOpt {
	return func(n *Nested) { n.only = append(n.only, paths...) }
}

// Exclude removes the given (possibly dotted) paths from the nested schema.
func Exclude(paths ...string) NestedOpt {
	return func(n *Nested) { n.exclude = append(n.exclude, paths...) }
}

// Many switches the nested field to element-wise processing over an ordered
// sequence.
func Many() NestedOpt {
	return func(n *Nested) { n.many = true }
}

// Nested is a field type whose value is governed by another schema. The
// target resolves lazily on first use and the resolved, projected schema is
// memoized for the lifetime of the field.
//
// Nothing limits recursion depth: a self-referential schema terminates only
// because resolution happens when data reaches that depth, and a runtime
// reference cycle in the dumped object graph must be cut by the caller with
// Only/Exclude; an unprojected cycle recurses without bound.
type Nested struct {
	ref     SchemaRef
	only    []string
	exclude []string
	many    bool
	pluck   string // non-empty for the pluck variant

	once     sync.Once
	resolved *Schema
	rerr     error
}

// NewNested declares a schema-valued field.
func NewNested(ref SchemaRef, opts ...NestedOpt) *Nested {
	n := &Nested{ref: ref}
	for _, opt := range opts {
		opt(n)
	}
	return n
}

// NewPluck declares a nested field collapsed to a single inner attribute:
// dump emits just that field's serialized value, load accepts the scalar and
// produces the one-field object. The target schema is narrowed to that one
// field, so its other declarations never participate.
func NewPluck(ref SchemaRef, field string, opts ...NestedOpt) *Nested {
	n := NewNested(ref, opts...)
	n.pluck = field
	return n
}

// project derives a copy with extra projection, dropping the memoized
// resolution so the narrower schema is computed on next use.
func (n *Nested) project(only, exclude []string) *Nested {
	d := &Nested{
		ref:     n.ref,
		only:    append(append([]string{}, n.only...), only...),
		exclude: append(append([]string{}, n.exclude...), exclude...),
		many:    n.many,
		pluck:   n.pluck,
	}
	return d
}

// Schema resolves and projects the target schema, memoized after the first
// call. Redundant computation under a race is harmless: the result is a pure
// function of the reference and projection.
func (n *Nested) Schema() (*Schema, error) {
	n.once.Do(func() {
		s, err := n.ref.resolveSchema()
		if err != nil {
			n.rerr = err
			return
		}
		if len(n.only) > 0 || len(n.exclude) > 0 {
			s, err = s.Project(n.only, n.exclude)
			if err != nil {
				n.rerr = err
				return
			}
		}
		if n.pluck != "" {
			if _, ok := s.byName[n.pluck]; !ok {
				n.rerr = &ConfigError{Schema: s.label, Field: n.pluck, Reason: "pluck target not declared"}
				return
			}
			// the pluck field is the whole contract; sibling fields of the
			// target never load or dump through this reference
			s, err = s.Project([]string{n.pluck}, nil)
			if err != nil {
				n.rerr = err
				return
			}
		}
		n.resolved = s
	})
	return n.resolved, n.rerr
}

// Serialize dumps the nested value through the resolved schema. Failures
// here are fatal, matching dump's trusted-input contract.
func (n *Nested) Serialize(ctx context.Context, v any) (any, error) {
	s, err := n.Schema()
	if err != nil {
		return nil, err
	}
	if n.many {
		items, ok := asSlice(v)
		if !ok {
			return nil, fmt.Errorf("marshkit: nested many field requires a sequence, got %T", v)
		}
		out := make([]any, 0, len(items))
		for _, item := range items {
			dv, err := n.serializeOne(ctx, s, item)
			if err != nil {
				return nil, err
			}
			out = append(out, dv)
		}
		return out, nil
	}
	return n.serializeOne(ctx, s, v)
}

func (n *Nested) serializeOne(ctx context.Context, s *Schema, obj any) (any, error) {
	if n.pluck != "" {
		m, err := s.dumpOne(ctx, obj, hookAll)
		if err != nil {
			return nil, err
		}
		return m[s.byName[n.pluck].spec.DataKey], nil
	}
	if isOrderedDump(ctx) {
		return s.dumpOneOrdered(ctx, obj, hookAll)
	}
	return s.dumpOne(ctx, obj, hookAll)
}

// Deserialize loads the nested raw value through the resolved schema,
// reporting failures as a structured subtree: by field name for a single
// object, by zero-based index for sequences, with successful items absent
// from the tree but present in ValidData.
func (n *Nested) Deserialize(ctx context.Context, raw any) (any, error) {
	s, err := n.Schema()
	if err != nil {
		return nil, err
	}
	if n.many {
		items, ok := asSlice(raw)
		if !ok {
			return nil, NewValidationError(i18n.T(CodeInvalidType, nil))
		}
		tree := NewErrorTree()
		valid := make([]any, 0, len(items))
		for i, item := range items {
			v, itemTree := n.deserializeOne(ctx, s, item)
			if !itemTree.Empty() {
				tree.ChildAt(i).Merge(itemTree)
				continue
			}
			valid = append(valid, v)
		}
		if !tree.Empty() {
			return nil, &ValidationError{Tree: tree, ValidData: valid}
		}
		return valid, nil
	}
	v, tree := n.deserializeOne(ctx, s, raw)
	if !tree.Empty() {
		return nil, &ValidationError{Tree: tree, ValidData: v}
	}
	return v, nil
}

func (n *Nested) deserializeOne(ctx context.Context, s *Schema, raw any) (any, *ErrorTree) {
	if n.pluck != "" {
		key := s.byName[n.pluck].spec.DataKey
		return s.loadValue(ctx, map[string]any{key: raw}, s.unknown, hookAll)
	}
	return s.loadValue(ctx, raw, s.unknown, hookAll)
}
