package marshkit

import (
	"errors"
	"fmt"
	"sort"
	"strconv"
	"strings"
)

// Message codes (exported consts for IDE completion and type safety by convention)
const (
	CodeInvalidType   = "invalid_type"
	CodeRequired      = "required"
	CodeNull          = "null"
	CodeUnknownKey    = "unknown_key"
	CodeInvalidValue  = "invalid_value"
	CodeInvalidFormat = "invalid_format"
	CodeTooShort      = "too_short"
	CodeTooLong       = "too_long"
	CodeTooSmall      = "too_small"
	CodeTooBig        = "too_big"
	CodePattern       = "pattern"
	CodeInvalidEnum   = "invalid_enum"
	CodeNotEqual      = "not_equal"
)

// SchemaKey is the reserved error-tree key for failures that are not
// attributable to a single field: top-level shape errors and messages from
// schema-level validators.
const SchemaKey = "_schema"

// ErrorTree is the structured, mergeable representation of validation
// failures. A node carries its own messages and/or children keyed by field
// name (or decimal index when the failing value was a collection).
type ErrorTree struct {
	Messages []string
	Children map[string]*ErrorTree
}

// NewErrorTree returns an empty tree.
func NewErrorTree() *ErrorTree { return &ErrorTree{} }

// Empty reports whether the tree holds no messages at any depth.
func (t *ErrorTree) Empty() bool {
	if t == nil {
		return true
	}
	if len(t.Messages) > 0 {
		return false
	}
	for _, c := range t.Children {
		if !c.Empty() {
			return false
		}
	}
	return true
}

// Add appends messages to this node.
func (t *ErrorTree) Add(msgs ...string) {
	t.Messages = append(t.Messages, msgs...)
}

// Child returns the subtree for key, creating it when absent.
func (t *ErrorTree) Child(key string) *ErrorTree {
	if t.Children == nil {
		t.Children = map[string]*ErrorTree{}
	}
	c, ok := t.Children[key]
	if !ok {
		c = &ErrorTree{}
		t.Children[key] = c
	}
	return c
}

// ChildAt returns the subtree for a collection index, creating it when absent.
func (t *ErrorTree) ChildAt(i int) *ErrorTree { return t.Child(strconv.Itoa(i)) }

// AddAt appends messages under key.
func (t *ErrorTree) AddAt(key string, msgs ...string) { t.Child(key).Add(msgs...) }

// Get returns the subtree for key without creating it; nil when absent.
func (t *ErrorTree) Get(key string) *ErrorTree {
	if t == nil {
		return nil
	}
	return t.Children[key]
}

// Keys returns the child keys in sorted order for deterministic iteration.
func (t *ErrorTree) Keys() []string {
	if t == nil || len(t.Children) == 0 {
		return nil
	}
	ks := make([]string, 0, len(t.Children))
	for k := range t.Children {
		ks = append(ks, k)
	}
	sort.Strings(ks)
	return ks
}

// Merge deep-unions other into t. Messages append; children merge
// recursively; nothing is overwritten.
func (t *ErrorTree) Merge(other *ErrorTree) {
	if other == nil {
		return
	}
	t.Messages = append(t.Messages, other.Messages...)
	for k, c := range other.Children {
		t.Child(k).Merge(c)
	}
}

// Flatten renders the tree into the plain mapping shape exchanged with the
// text-encoding layer: a leaf node becomes a []string, an inner node becomes
// a map[string]any. When a node carries both messages and children, its own
// messages surface under SchemaKey.
func (t *ErrorTree) Flatten() any {
	if t == nil {
		return nil
	}
	if len(t.Children) == 0 {
		out := make([]string, len(t.Messages))
		copy(out, t.Messages)
		return out
	}
	m := make(map[string]any, len(t.Children)+1)
	for k, c := range t.Children {
		if c.Empty() {
			continue
		}
		m[k] = c.Flatten()
	}
	if len(t.Messages) > 0 {
		own := append([]string{}, t.Messages...)
		switch prev := m[SchemaKey].(type) {
		case []string:
			m[SchemaKey] = append(own, prev...)
		case map[string]any:
			// a subtree already flattened under the reserved key; tuck the
			// node's own messages inside it rather than clobbering it
			if inner, ok := prev[SchemaKey].([]string); ok {
				prev[SchemaKey] = append(own, inner...)
			} else {
				prev[SchemaKey] = own
			}
		default:
			m[SchemaKey] = own
		}
	}
	return m
}

// ValidationError is the aggregated failure result of a load/validate call.
// Tree holds every independent failure found in one pass; ValidData holds the
// partial result built from the fields (or collection items) that validated
// successfully, so consumers can always recover the valid subset.
type ValidationError struct {
	Tree      *ErrorTree
	ValidData any
}

// NewValidationError builds a leaf error from one or more messages. Field
// types and validators signal failure with this shape; the pipelines rebase
// it under the field's declared name.
func NewValidationError(msgs ...string) *ValidationError {
	t := NewErrorTree()
	t.Add(msgs...)
	return &ValidationError{Tree: t}
}

// NewFieldError builds an error with messages already placed under a field
// name; schema-level validators use it to attribute failures to fields.
func NewFieldError(field string, msgs ...string) *ValidationError {
	t := NewErrorTree()
	t.AddAt(field, msgs...)
	return &ValidationError{Tree: t}
}

// Error summarizes the first few failing paths.
func (e *ValidationError) Error() string {
	if e == nil || e.Tree.Empty() {
		return "marshkit: validation failed"
	}
	const maxShown = 3
	paths := collectPaths(e.Tree, "")
	b := &strings.Builder{}
	b.WriteString("marshkit: ")
	lim := len(paths)
	if lim > maxShown {
		lim = maxShown
	}
	for i := 0; i < lim; i++ {
		if i > 0 {
			b.WriteString("; ")
		}
		b.WriteString(paths[i])
	}
	if len(paths) > lim {
		fmt.Fprintf(b, "; ... (total %d)", len(paths))
	}
	return b.String()
}

// Messages renders the error tree into the plain mapping shape.
func (e *ValidationError) Messages() any { return e.Tree.Flatten() }

func collectPaths(t *ErrorTree, base string) []string {
	var out []string
	for _, m := range t.Messages {
		p := base
		if p == "" {
			p = "/"
		}
		out = append(out, m+" at "+p)
	}
	for _, k := range t.Keys() {
		out = append(out, collectPaths(t.Children[k], base+"/"+k)...)
	}
	return out
}

// AsValidationError extracts a *ValidationError using errors.As.
func AsValidationError(err error) (*ValidationError, bool) {
	if err == nil {
		return nil, false
	}
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve, true
	}
	return nil, false
}

// treeFromErr normalizes an arbitrary error into a tree. Non-ValidationError
// errors become a single leaf message.
func treeFromErr(err error) *ErrorTree {
	if err == nil {
		return nil
	}
	if ve, ok := AsValidationError(err); ok {
		return ve.Tree
	}
	t := NewErrorTree()
	t.Add(err.Error())
	return t
}

// ConfigError reports a schema compiled with invalid bindings. It surfaces at
// schema-definition time and is never recoverable at call time.
type ConfigError struct {
	Schema string // optional schema label
	Field  string // offending field, when attributable
	Reason string
}

func (e *ConfigError) Error() string {
	b := &strings.Builder{}
	b.WriteString("marshkit: invalid schema")
	if e.Schema != "" {
		fmt.Fprintf(b, " %q", e.Schema)
	}
	if e.Field != "" {
		fmt.Fprintf(b, ", field %q", e.Field)
	}
	b.WriteString(": ")
	b.WriteString(e.Reason)
	return b.String()
}
