package fields

import (
	"context"

	"github.com/google/uuid"

	marshkit "github.com/marshkit/marshkit"
)

// UUID converts between uuid.UUID and its canonical string form.
func UUID() marshkit.Type { return uuidType{} }

type uuidType struct{}

func (uuidType) Serialize(ctx context.Context, v any) (any, error) {
	switch u := v.(type) {
	case uuid.UUID:
		return u.String(), nil
	case string:
		parsed, err := uuid.Parse(u)
		if err != nil {
			return nil, invalidFormat("uuid")
		}
		return parsed.String(), nil
	default:
		return nil, invalidType()
	}
}

func (uuidType) Deserialize(ctx context.Context, v any) (any, error) {
	s, ok := v.(string)
	if !ok {
		return nil, invalidType()
	}
	u, err := uuid.Parse(s)
	if err != nil {
		return nil, invalidFormat("uuid")
	}
	return u, nil
}
