package marshkit

import "context"

// Ambient per-call data for hooks, validators and custom field types travels
// through context.Context rather than through mutable state on the shared
// schema, so one compiled schema stays safe to reuse across concurrent calls.

type contextKey int

const (
	_ctxKeyCallValue contextKey = iota
	_ctxKeyLoadState
	_ctxKeyOrderedDump
)

// NewContext returns a child context carrying v as the call-scoped value.
// Hooks and validators retrieve it with FromContext.
func NewContext(ctx context.Context, v any) context.Context {
	return context.WithValue(ctx, _ctxKeyCallValue, v)
}

// FromContext returns the call-scoped value set by NewContext.
func FromContext(ctx context.Context) (any, bool) {
	v := ctx.Value(_ctxKeyCallValue)
	if v == nil {
		return nil, false
	}
	return v, true
}

// loadState carries the per-call load options down through nested schemas.
// Dotted partial paths are consumed one segment per nesting level.
type loadState struct {
	partialAll   bool
	partialPaths []string
}

func withLoadState(ctx context.Context, st loadState) context.Context {
	return context.WithValue(ctx, _ctxKeyLoadState, st)
}

func loadStateFrom(ctx context.Context) loadState {
	st, _ := ctx.Value(_ctxKeyLoadState).(loadState)
	return st
}

// exempt reports whether the named field is exempted from required checks at
// the current nesting level.
func (st loadState) exempt(name string) bool {
	if st.partialAll {
		return true
	}
	for _, p := range st.partialPaths {
		if p == name {
			return true
		}
	}
	return false
}

// descend returns the load state forwarded to a nested field: partialAll
// propagates; dotted paths matching the field have their first segment
// consumed.
func (st loadState) descend(name string) loadState {
	next := loadState{partialAll: st.partialAll}
	prefix := name + "."
	for _, p := range st.partialPaths {
		if rest, ok := cutPrefix(p, prefix); ok {
			next.partialPaths = append(next.partialPaths, rest)
		}
	}
	return next
}

func cutPrefix(s, prefix string) (string, bool) {
	if len(s) >= len(prefix) && s[:len(prefix)] == prefix {
		return s[len(prefix):], true
	}
	return s, false
}

// withOrderedDump marks the call so nested schemas emit ordered mappings too.
func withOrderedDump(ctx context.Context) context.Context {
	return context.WithValue(ctx, _ctxKeyOrderedDump, true)
}

func isOrderedDump(ctx context.Context) bool {
	b, _ := ctx.Value(_ctxKeyOrderedDump).(bool)
	return b
}
