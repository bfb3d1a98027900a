package marshkit

import (
	"fmt"
	"strings"
)

// Builder accumulates field declarations and schema-level options, then
// compiles them into an immutable Schema. Declaration order is serialization
// order.
type Builder struct {
	label    string
	specs    []FieldSpec
	unknown  UnknownPolicy
	ordered  bool
	accessor AttributeAccessor
	hooks    hookSet
}

// NewBuilder returns a builder with safe defaults (UnknownRaise).
func NewBuilder() *Builder {
	return &Builder{unknown: UnknownRaise}
}

// Label names the schema for error reporting and registry use.
func (b *Builder) Label(name string) *Builder {
	b.label = name
	return b
}

// Field declares a field with its type collaborator.
func (b *Builder) Field(name string, typ Type, opts ...FieldOpt) *Builder {
	spec := FieldSpec{Name: name, Type: typ}
	for _, opt := range opts {
		opt(&spec)
	}
	b.specs = append(b.specs, spec)
	return b
}

// Unknown sets the compiled unknown-key policy.
func (b *Builder) Unknown(p UnknownPolicy) *Builder {
	b.unknown = p
	return b
}

// Ordered marks dump output as order-sensitive; codec JSON emission then
// preserves declared field order.
func (b *Builder) Ordered() *Builder {
	b.ordered = true
	return b
}

// Accessor injects the attribute accessor used on dump. The default
// dispatches between mapping and struct sources.
func (b *Builder) Accessor(acc AttributeAccessor) *Builder {
	b.accessor = acc
	return b
}

// PreLoad registers a hook run over raw input before deserialization.
func (b *Builder) PreLoad(fn Processor, opts ...HookOpt) *Builder {
	o := applyHookOpts(opts)
	b.hooks.preLoad = append(b.hooks.preLoad, processorHook{fn: fn, perItem: !o.wholeCollection})
	return b
}

// PostLoad registers a hook run over the validated mapping; the last hook's
// return value becomes the load result.
func (b *Builder) PostLoad(fn Processor, opts ...HookOpt) *Builder {
	o := applyHookOpts(opts)
	b.hooks.postLoad = append(b.hooks.postLoad, processorHook{fn: fn, perItem: !o.wholeCollection})
	return b
}

// PreDump registers a hook run over the source object before serialization.
func (b *Builder) PreDump(fn Processor, opts ...HookOpt) *Builder {
	o := applyHookOpts(opts)
	b.hooks.preDump = append(b.hooks.preDump, processorHook{fn: fn, perItem: !o.wholeCollection})
	return b
}

// PostDump registers a hook run over the accumulated dump output.
func (b *Builder) PostDump(fn Processor, opts ...HookOpt) *Builder {
	o := applyHookOpts(opts)
	b.hooks.postDump = append(b.hooks.postDump, processorHook{fn: fn, perItem: !o.wholeCollection})
	return b
}

// Validates registers a schema-level validator run after per-field
// deserialization. Skipped when field errors were recorded unless RunAlways
// is given.
func (b *Builder) Validates(fn SchemaValidator, opts ...HookOpt) *Builder {
	o := applyHookOpts(opts)
	b.hooks.validators = append(b.hooks.validators, validatorHook{
		fn:                fn,
		perItem:           !o.wholeCollection,
		skipOnFieldErrors: !o.runAlways,
	})
	return b
}

// Build compiles the declarations into an immutable Schema. It resolves
// attribute/data-key aliasing, freezes field order, and rejects colliding
// bindings with a ConfigError. Compilation is idempotent and runs once per
// schema definition.
func (b *Builder) Build() (*Schema, error) {
	s := &Schema{
		label:     b.label,
		fields:    make([]*boundField, 0, len(b.specs)),
		byName:    make(map[string]*boundField, len(b.specs)),
		byDataKey: make(map[string]*boundField, len(b.specs)),
		unknown:   b.unknown,
		ordered:   b.ordered,
		accessor:  b.accessor,
		hooks:     b.hooks,
	}
	if s.accessor == nil {
		s.accessor = defaultAccessor{}
	}
	byAttr := make(map[string]string, len(b.specs)) // attribute -> field name
	for _, spec := range b.specs {
		if spec.Name == "" {
			return nil, &ConfigError{Schema: b.label, Reason: "field with empty name"}
		}
		if spec.Type == nil {
			return nil, &ConfigError{Schema: b.label, Field: spec.Name, Reason: "nil field type"}
		}
		if _, dup := s.byName[spec.Name]; dup {
			return nil, &ConfigError{Schema: b.label, Field: spec.Name, Reason: "duplicate field name"}
		}
		if spec.DumpOnly && spec.LoadOnly {
			return nil, &ConfigError{Schema: b.label, Field: spec.Name, Reason: "field is both dump-only and load-only"}
		}
		if spec.Attribute == "" {
			spec.Attribute = spec.Name
		}
		if spec.DataKey == "" {
			spec.DataKey = spec.Name
		}
		f := &boundField{spec: spec}
		if n, ok := spec.Type.(*Nested); ok {
			f.nested = n
		}
		if !spec.DumpOnly {
			if prev, clash := byAttr[spec.Attribute]; clash {
				return nil, &ConfigError{
					Schema: b.label,
					Field:  spec.Name,
					Reason: fmt.Sprintf("attribute %q already bound by field %q", spec.Attribute, prev),
				}
			}
			byAttr[spec.Attribute] = spec.Name
		}
		if !spec.LoadOnly {
			if prev, clash := s.byDataKey[spec.DataKey]; clash {
				return nil, &ConfigError{
					Schema: b.label,
					Field:  spec.Name,
					Reason: fmt.Sprintf("data key %q already bound by field %q", spec.DataKey, prev.spec.Name),
				}
			}
		}
		s.fields = append(s.fields, f)
		s.byName[spec.Name] = f
		s.byDataKey[spec.DataKey] = f
	}
	return s, nil
}

// MustBuild is like Build but panics on error.
func (b *Builder) MustBuild() *Schema {
	s, err := b.Build()
	if err != nil {
		panic(err)
	}
	return s
}

// Schema is a compiled, ordered set of field bindings plus load/dump
// options. It is immutable and safe to share across concurrent calls;
// per-call settings travel through call options and context.
type Schema struct {
	label     string
	fields    []*boundField
	byName    map[string]*boundField
	byDataKey map[string]*boundField
	unknown   UnknownPolicy
	ordered   bool
	accessor  AttributeAccessor
	hooks     hookSet
}

// Label returns the schema's declared name, if any.
func (s *Schema) Label() string { return s.label }

// FieldNames returns the declared field names in serialization order.
func (s *Schema) FieldNames() []string {
	out := make([]string, len(s.fields))
	for i, f := range s.fields {
		out[i] = f.spec.Name
	}
	return out
}

// Spec returns the compiled FieldSpec for name.
func (s *Schema) Spec(name string) (FieldSpec, bool) {
	f, ok := s.byName[name]
	if !ok {
		return FieldSpec{}, false
	}
	return f.spec, true
}

// Ordered reports whether the schema was compiled order-sensitive.
func (s *Schema) Ordered() bool { return s.ordered }

// WithUnknown derives a schema with a different unknown-key policy. The
// field table is shared; only the policy differs.
func (s *Schema) WithUnknown(p UnknownPolicy) *Schema {
	d := *s
	d.unknown = p
	return &d
}

// Project derives a schema restricted by only and reduced by exclude.
// Dotted paths ("author.email") consume their first segment at this level
// and forward the remainder into the matching nested field's own
// projection. Unknown names are a configuration error.
func (s *Schema) Project(only, exclude []string) (*Schema, error) {
	if len(only) == 0 && len(exclude) == 0 {
		return s, nil
	}
	d := *s
	d.fields = make([]*boundField, 0, len(s.fields))

	onlyDirect, onlyForward, err := s.splitPaths(only, "only")
	if err != nil {
		return nil, err
	}
	exclDirect, exclForward, err := s.splitPaths(exclude, "exclude")
	if err != nil {
		return nil, err
	}

	for _, f := range s.fields {
		name := f.spec.Name
		if len(only) > 0 {
			_, direct := onlyDirect[name]
			fwd, forwarded := onlyForward[name]
			if !direct && !forwarded {
				continue
			}
			// a direct selection keeps the whole subtree; otherwise narrow
			// the nested projection to the forwarded remainders
			if !direct && forwarded {
				nf, err := f.withNestedProjection(fwd, nil)
				if err != nil {
					return nil, &ConfigError{Schema: s.label, Field: name, Reason: err.Error()}
				}
				f = nf
			}
		}
		if _, drop := exclDirect[name]; drop {
			continue
		}
		if fwd, ok := exclForward[name]; ok {
			nf, err := f.withNestedProjection(nil, fwd)
			if err != nil {
				return nil, &ConfigError{Schema: s.label, Field: name, Reason: err.Error()}
			}
			f = nf
		}
		d.fields = append(d.fields, f)
	}

	d.byName = make(map[string]*boundField, len(d.fields))
	d.byDataKey = make(map[string]*boundField, len(d.fields))
	for _, f := range d.fields {
		d.byName[f.spec.Name] = f
		d.byDataKey[f.spec.DataKey] = f
	}
	return &d, nil
}

// splitPaths separates direct names from dotted paths, keyed by first
// segment, verifying every first segment binds to a declared field.
func (s *Schema) splitPaths(paths []string, kind string) (map[string]struct{}, map[string][]string, error) {
	direct := map[string]struct{}{}
	forward := map[string][]string{}
	for _, p := range paths {
		head, rest, dotted := strings.Cut(p, ".")
		if _, ok := s.byName[head]; !ok {
			return nil, nil, &ConfigError{
				Schema: s.label,
				Field:  head,
				Reason: fmt.Sprintf("%s path %q names an undeclared field", kind, p),
			}
		}
		if dotted {
			forward[head] = append(forward[head], rest)
		} else {
			direct[head] = struct{}{}
		}
	}
	return direct, forward, nil
}

// withNestedProjection copies the field with extra only/exclude pushed into
// its nested reference.
func (f *boundField) withNestedProjection(only, exclude []string) (*boundField, error) {
	if f.nested == nil {
		return nil, fmt.Errorf("dotted path reaches non-nested field %q", f.spec.Name)
	}
	nf := *f
	nf.nested = f.nested.project(only, exclude)
	nf.spec.Type = nf.nested
	return &nf, nil
}
