package marshkit

import (
	"context"
	"sort"

	"github.com/marshkit/marshkit/i18n"
)

// Load parses and validates a plain mapping into a validated mapping (or
// whatever the last post-load hook produces). All fields are attempted even
// after one fails; the returned error, when non-nil, is a *ValidationError
// carrying the full merged message tree and the valid subset of the data.
func (s *Schema) Load(ctx context.Context, data any, opts ...LoadOpt) (any, error) {
	cfg := applyLoadOpts(opts)
	ctx = withLoadState(ctx, loadState{partialAll: cfg.partialAll, partialPaths: cfg.partialPaths})
	res, tree := s.loadPipeline(ctx, data, s.effectiveUnknown(cfg), hookAll, true)
	if !tree.Empty() {
		return nil, &ValidationError{Tree: tree, ValidData: res}
	}
	return res, nil
}

// LoadMany parses an ordered sequence of mappings. On failure the error tree
// is keyed by zero-based index, with only the failing items present; the
// items that validated successfully appear, in order, in ValidData.
func (s *Schema) LoadMany(ctx context.Context, data any, opts ...LoadOpt) ([]any, error) {
	cfg := applyLoadOpts(opts)
	ctx = withLoadState(ctx, loadState{partialAll: cfg.partialAll, partialPaths: cfg.partialPaths})
	res, tree := s.loadManyPipeline(ctx, data, s.effectiveUnknown(cfg), true)
	if !tree.Empty() {
		return nil, &ValidationError{Tree: tree, ValidData: res}
	}
	return res, nil
}

// Validate runs the load pipeline through schema-level validation and
// returns the error tree directly; an empty tree means valid. It never
// raises and discards any produced object.
func (s *Schema) Validate(ctx context.Context, data any, opts ...LoadOpt) *ErrorTree {
	cfg := applyLoadOpts(opts)
	ctx = withLoadState(ctx, loadState{partialAll: cfg.partialAll, partialPaths: cfg.partialPaths})
	_, tree := s.loadPipeline(ctx, data, s.effectiveUnknown(cfg), hookAll, false)
	return tree
}

// ValidateMany is Validate over an ordered sequence.
func (s *Schema) ValidateMany(ctx context.Context, data any, opts ...LoadOpt) *ErrorTree {
	cfg := applyLoadOpts(opts)
	ctx = withLoadState(ctx, loadState{partialAll: cfg.partialAll, partialPaths: cfg.partialPaths})
	_, tree := s.loadManyPipeline(ctx, data, s.effectiveUnknown(cfg), false)
	return tree
}

func applyLoadOpts(opts []LoadOpt) loadConfig {
	var cfg loadConfig
	for _, opt := range opts {
		opt(&cfg)
	}
	return cfg
}

// effectiveUnknown resolves the unknown policy: call-time argument wins over
// the compiled schema setting.
func (s *Schema) effectiveUnknown(cfg loadConfig) UnknownPolicy {
	if cfg.unknownSet {
		return cfg.unknown
	}
	return s.unknown
}

// loadValue is the nested-resolver entry point: one full load pass returning
// the result alongside the error tree instead of an error value.
func (s *Schema) loadValue(ctx context.Context, data any, unknown UnknownPolicy, mode hookMode) (any, *ErrorTree) {
	return s.loadPipeline(ctx, data, unknown, mode, true)
}

// loadPipeline processes a single mapping: shape check, pre-load hooks,
// unknown-key resolution, per-field deserialization, schema-level
// validation, then post-load hooks when runPost is set and no errors were
// recorded. The returned value is the partial result whenever the tree is
// non-empty.
func (s *Schema) loadPipeline(ctx context.Context, data any, unknown UnknownPolicy, mode hookMode, runPost bool) (any, *ErrorTree) {
	tree := NewErrorTree()

	m, ok := data.(map[string]any)
	if !ok {
		tree.AddAt(SchemaKey, i18n.T(CodeInvalidType, nil))
		return nil, tree
	}

	pd, err := runProcessors(ctx, s.hooks.preLoad, mode, any(m))
	if err != nil {
		mergeSchemaErr(tree, err)
		return nil, tree
	}
	if m, ok = pd.(map[string]any); !ok {
		tree.AddAt(SchemaKey, i18n.T(CodeInvalidType, nil))
		return nil, tree
	}

	st := loadStateFrom(ctx)
	out := make(map[string]any, len(s.fields))

	// unknown keys in sorted order for deterministic error output
	for _, k := range sortedKeys(m) {
		if _, known := s.byDataKey[k]; known {
			continue
		}
		switch unknown {
		case UnknownRaise:
			tree.AddAt(k, i18n.T(CodeUnknownKey, nil))
		case UnknownExclude:
			// drop
		case UnknownInclude:
			out[k] = m[k]
		}
	}

	hadFieldErrors := false
	for _, f := range s.fields {
		if f.spec.DumpOnly {
			continue
		}
		raw, present := m[f.spec.DataKey]
		if !present {
			if f.spec.LoadDefault != nil {
				// producers are invoked fresh per call, never memoized
				out[f.spec.Attribute] = resolveDefault(f.spec.LoadDefault)
				continue
			}
			if f.spec.Required && !st.exempt(f.spec.Name) {
				tree.AddAt(f.spec.Name, f.message(CodeRequired))
				hadFieldErrors = true
			}
			continue
		}
		fctx := ctx
		if f.nested != nil {
			fctx = withLoadState(ctx, st.descend(f.spec.Name))
		}
		v, derr := f.deserialize(fctx, raw)
		if derr != nil {
			// recorded under the declared name, not the data key
			tree.Child(f.spec.Name).Merge(treeFromErr(derr))
			hadFieldErrors = true
			continue
		}
		out[f.spec.Attribute] = v
	}

	for _, h := range s.hooks.validators {
		if !mode.wants(h.perItem) {
			continue
		}
		if h.skipOnFieldErrors && hadFieldErrors {
			continue
		}
		if verr := h.fn(ctx, out); verr != nil {
			mergeSchemaErr(tree, verr)
		}
	}

	if !tree.Empty() {
		return out, tree
	}
	var result any = out
	if runPost {
		r, perr := runProcessors(ctx, s.hooks.postLoad, mode, result)
		if perr != nil {
			mergeSchemaErr(tree, perr)
			return out, tree
		}
		result = r
	}
	return result, tree
}

// loadManyPipeline processes an ordered sequence element-wise. A nil input
// is treated as no items; any other non-sequence is a shape error under
// SchemaKey that short-circuits the pipeline.
func (s *Schema) loadManyPipeline(ctx context.Context, data any, unknown UnknownPolicy, runPost bool) ([]any, *ErrorTree) {
	tree := NewErrorTree()

	var items []any
	if data != nil {
		var ok bool
		if items, ok = asSlice(data); !ok {
			tree.AddAt(SchemaKey, i18n.T(CodeInvalidType, nil))
			return nil, tree
		}
	}

	pd, err := runProcessors(ctx, s.hooks.preLoad, hookPerColl, any(items))
	if err != nil {
		mergeSchemaErr(tree, err)
		return nil, tree
	}
	if pd != nil {
		var ok bool
		if items, ok = asSlice(pd); !ok {
			tree.AddAt(SchemaKey, i18n.T(CodeInvalidType, nil))
			return nil, tree
		}
	}

	results := make([]any, 0, len(items))
	for i, item := range items {
		r, t := s.loadPipeline(ctx, item, unknown, hookPerItem, runPost)
		if !t.Empty() {
			tree.ChildAt(i).Merge(t)
			continue
		}
		results = append(results, r)
	}

	hadErrors := !tree.Empty()
	for _, h := range s.hooks.validators {
		if h.perItem {
			continue
		}
		if h.skipOnFieldErrors && hadErrors {
			continue
		}
		if verr := h.fn(ctx, results); verr != nil {
			mergeSchemaErr(tree, verr)
		}
	}

	if !tree.Empty() {
		return results, tree
	}
	if runPost {
		out, perr := runProcessors(ctx, s.hooks.postLoad, hookPerColl, any(results))
		if perr != nil {
			mergeSchemaErr(tree, perr)
			return results, tree
		}
		var ok bool
		if results, ok = out.([]any); !ok {
			if items, sliceOK := asSlice(out); sliceOK {
				results = items
			} else {
				results = []any{out}
			}
		}
	}
	return results, tree
}

// mergeSchemaErr folds a hook/validator error into the tree: structured
// children merge by field, bare messages land under SchemaKey.
func mergeSchemaErr(tree *ErrorTree, err error) {
	tr := treeFromErr(err)
	if tr == nil {
		return
	}
	if len(tr.Children) == 0 {
		tree.Child(SchemaKey).Merge(tr)
		return
	}
	tree.Merge(tr)
}

func sortedKeys(m map[string]any) []string {
	ks := make([]string, 0, len(m))
	for k := range m {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}
