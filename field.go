package marshkit

import (
	"context"

	"github.com/marshkit/marshkit/i18n"
)

// Type is the field-type collaborator: it declares how one value converts
// between the application representation and the plain representation.
// Serialize is the dump-side encode step; Deserialize is the load-side
// coercion step. Both signal failure by returning an error, normalized by
// the pipeline into a *ValidationError under the field's declared name.
type Type interface {
	Serialize(ctx context.Context, v any) (any, error)
	Deserialize(ctx context.Context, v any) (any, error)
}

// ObjectSerializer is an optional Type extension for computed fields that
// need the whole source object rather than a single attribute. When a field's
// Type implements it, dump calls SerializeObject with the working object and
// skips the attribute lookup.
type ObjectSerializer interface {
	SerializeObject(ctx context.Context, obj any) (any, error)
}

// Validator checks one deserialized value. It must not mutate the value.
// Failure is signalled by returning an error; *ValidationError carries
// multiple messages, anything else contributes a single message. Validators
// run only at load time, in declaration order, and all of them run even
// after one fails.
type Validator func(ctx context.Context, v any) error

// FieldSpec declares one named slot in a schema. It is consumed by the
// compiler and immutable once the schema is built.
type FieldSpec struct {
	Name        string
	Type        Type
	Attribute   string // source/target object member; defaults to Name
	DataKey     string // external mapping key; defaults to Name
	Required    bool
	AllowNone   bool
	DumpOnly    bool
	LoadOnly    bool
	LoadDefault any // static value or func() any, invoked fresh per call
	DumpDefault any
	Validators  []Validator
	Messages    map[string]string // per-field overrides for code-keyed messages
}

// FieldOpt mutates a FieldSpec during declaration.
type FieldOpt func(*FieldSpec)

// Required marks the field as mandatory on load.
func Required() FieldOpt { return func(s *FieldSpec) { s.Required = true } }

// AllowNone lets a present null pass deserialization without running the
// field type or validators.
func AllowNone() FieldOpt { return func(s *FieldSpec) { s.AllowNone = true } }

// DumpOnly excludes the field from load. Its data key stays bound to the
// schema: input carrying that key is dropped on load under every unknown
// policy, not reported as an unknown field.
func DumpOnly() FieldOpt { return func(s *FieldSpec) { s.DumpOnly = true } }

// LoadOnly excludes the field from dump.
func LoadOnly() FieldOpt { return func(s *FieldSpec) { s.LoadOnly = true } }

// DataKey sets the external mapping key.
func DataKey(k string) FieldOpt { return func(s *FieldSpec) { s.DataKey = k } }

// Attribute sets the source/target object member name.
func Attribute(a string) FieldOpt { return func(s *FieldSpec) { s.Attribute = a } }

// LoadDefault substitutes v when the data key is absent on load. Pass a
// func() any for defaults that must be produced fresh per call.
func LoadDefault(v any) FieldOpt { return func(s *FieldSpec) { s.LoadDefault = v } }

// DumpDefault substitutes v when the attribute is absent on dump.
func DumpDefault(v any) FieldOpt { return func(s *FieldSpec) { s.DumpDefault = v } }

// Validate appends validators, run in declaration order at load time.
func Validate(vs ...Validator) FieldOpt {
	return func(s *FieldSpec) { s.Validators = append(s.Validators, vs...) }
}

// Messages overrides code-keyed default messages for this field (for example
// CodeRequired or CodeNull).
func Messages(m map[string]string) FieldOpt {
	return func(s *FieldSpec) {
		if s.Messages == nil {
			s.Messages = map[string]string{}
		}
		for k, v := range m {
			s.Messages[k] = v
		}
	}
}

// boundField is a FieldSpec after compilation: aliases resolved, immutable.
type boundField struct {
	spec   FieldSpec
	nested *Nested // non-nil when the field's Type is schema-valued
}

func (f *boundField) message(code string) string {
	if m, ok := f.spec.Messages[code]; ok {
		return m
	}
	return i18n.T(code, nil)
}

// serialize reads the field off the source object and applies the dump-side
// encode step. Validators never run here; dump operates on trusted data and
// a coercion failure is fatal, not aggregated.
func (f *boundField) serialize(ctx context.Context, obj any, acc AttributeAccessor) (any, error) {
	if os, ok := f.spec.Type.(ObjectSerializer); ok {
		return os.SerializeObject(ctx, obj)
	}
	v := acc.Get(obj, f.spec.Attribute, Missing)
	if IsMissing(v) {
		if f.spec.DumpDefault == nil {
			return Missing, nil
		}
		v = resolveDefault(f.spec.DumpDefault)
	}
	if v == nil {
		return nil, nil
	}
	return f.spec.Type.Serialize(ctx, v)
}

// deserialize coerces and validates one present raw value. All validator
// failures for the field are collected into one message list, not just the
// first.
func (f *boundField) deserialize(ctx context.Context, raw any) (any, error) {
	if raw == nil {
		if f.spec.AllowNone {
			return nil, nil
		}
		return nil, NewValidationError(f.message(CodeNull))
	}
	v, err := f.spec.Type.Deserialize(ctx, raw)
	if err != nil {
		return nil, &ValidationError{Tree: treeFromErr(err)}
	}
	tree := NewErrorTree()
	for _, vd := range f.spec.Validators {
		if verr := vd(ctx, v); verr != nil {
			tree.Merge(treeFromErr(verr))
		}
	}
	if !tree.Empty() {
		return nil, &ValidationError{Tree: tree}
	}
	return v, nil
}

// resolveDefault invokes producer defaults fresh per call; static values pass
// through.
func resolveDefault(d any) any {
	if fn, ok := d.(func() any); ok {
		return fn()
	}
	return d
}
