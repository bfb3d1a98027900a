package marshkit

import "context"

// Processor is a pre/post hook over the working data. It receives the data
// for its phase and returns the (possibly replaced) data; hooks chain, so
// later hooks see the prior hook's output.
type Processor func(ctx context.Context, data any) (any, error)

// SchemaValidator is a schema-level validation hook. It receives the
// field-validated mapping (or, for whole-collection hooks under many, the
// slice of item results). Failure is signalled by returning an error: a
// *ValidationError with children merges structurally into the error tree,
// anything else lands under SchemaKey.
type SchemaValidator func(ctx context.Context, data any) error

type hookOptions struct {
	wholeCollection bool
	runAlways       bool
}

// HookOpt configures a hook registration.
type HookOpt func(*hookOptions)

// WholeCollection registers the hook to run once for the whole collection
// when processing many, instead of once per element.
func WholeCollection() HookOpt { return func(o *hookOptions) { o.wholeCollection = true } }

// RunAlways makes a schema-level validator run even when per-field
// deserialization already recorded errors. By default those hooks are
// skipped on field errors.
func RunAlways() HookOpt { return func(o *hookOptions) { o.runAlways = true } }

func applyHookOpts(opts []HookOpt) hookOptions {
	var o hookOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

type processorHook struct {
	fn      Processor
	perItem bool
}

type validatorHook struct {
	fn                SchemaValidator
	perItem           bool
	skipOnFieldErrors bool
}

type hookSet struct {
	preLoad    []processorHook
	postLoad   []processorHook
	preDump    []processorHook
	postDump   []processorHook
	validators []validatorHook
}

// hookMode selects which registrations apply for one pipeline pass.
type hookMode int

const (
	hookAll      hookMode = iota // single-object call: every hook runs once
	hookPerItem                  // element pass under many
	hookPerColl                  // collection pass under many
)

func (m hookMode) wants(perItem bool) bool {
	switch m {
	case hookPerItem:
		return perItem
	case hookPerColl:
		return !perItem
	default:
		return true
	}
}

// runProcessors chains the selected hooks over data in declaration order.
func runProcessors(ctx context.Context, hooks []processorHook, mode hookMode, data any) (any, error) {
	for _, h := range hooks {
		if !mode.wants(h.perItem) {
			continue
		}
		next, err := h.fn(ctx, data)
		if err != nil {
			return data, err
		}
		data = next
	}
	return data, nil
}
