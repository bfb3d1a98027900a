package fields

import (
	"context"
	"time"

	marshkit "github.com/marshkit/marshkit"
	"github.com/marshkit/marshkit/i18n"
)

// DateTime converts between time.Time and RFC3339 strings. Serialization
// accepts time.Time (or an already-formatted string) and emits the canonical
// RFC3339Nano rendering; deserialization parses RFC3339 with or without
// fractional seconds.
func DateTime() marshkit.Type { return dateTimeType{} }

type dateTimeType struct{}

func (dateTimeType) Serialize(ctx context.Context, v any) (any, error) {
	switch t := v.(type) {
	case time.Time:
		return t.Format(time.RFC3339Nano), nil
	case *time.Time:
		if t == nil {
			return nil, nil
		}
		return t.Format(time.RFC3339Nano), nil
	case string:
		if _, err := time.Parse(time.RFC3339Nano, t); err != nil {
			return nil, invalidFormat("datetime")
		}
		return t, nil
	default:
		return nil, invalidType()
	}
}

func (dateTimeType) Deserialize(ctx context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidType()
	}
	t, err := time.Parse(time.RFC3339Nano, s)
	if err != nil {
		return nil, invalidFormat("datetime")
	}
	return t, nil
}

func invalidFormat(format string) error {
	return marshkit.NewValidationError(i18n.T(marshkit.CodeInvalidFormat, map[string]string{"format": format}))
}
