package fields

import (
	"context"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/i18n"
)

// Function computes the dumped value from the whole source object instead of
// a single attribute. It is dump-side only; declare the field with
// marshkit.DumpOnly(), or supply a load function via FunctionWithLoad.
func Function(dump func(ctx context.Context, obj any) (any, error)) marshkit.Type {
	return functionType{dump: dump}
}

// FunctionWithLoad is Function with a load-side counterpart over the raw
// value.
func FunctionWithLoad(
	dump func(ctx context.Context, obj any) (any, error),
	load func(ctx context.Context, v any) (any, error),
) marshkit.Type {
	return functionType{dump: dump, load: load}
}

type functionType struct {
	dump func(ctx context.Context, obj any) (any, error)
	load func(ctx context.Context, v any) (any, error)
}

func (f functionType) SerializeObject(ctx context.Context, obj any) (any, error) {
	if f.dump == nil {
		return marshkit.Missing, nil
	}
	return f.dump(ctx, obj)
}

func (f functionType) Serialize(ctx context.Context, v any) (any, error) {
	return f.SerializeObject(ctx, v)
}

func (f functionType) Deserialize(ctx context.Context, v any) (any, error) {
	if f.load == nil {
		return nil, marshkit.NewValidationError(i18n.T(marshkit.CodeInvalidValue, nil))
	}
	return f.load(ctx, v)
}
