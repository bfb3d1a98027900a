package marshkit

// missingValue is the type of the Missing sentinel. It is deliberately not
// comparable to nil: "key absent" and "key present with null" are different
// signals and both required and allow-none rules observe them independently.
type missingValue struct{}

func (missingValue) String() string { return "<missing>" }

// Missing marks the absence of an externally supplied value when no default
// applies. Fields that serialize to Missing are omitted from dump output
// entirely; a null placeholder is never emitted in their place.
var Missing any = missingValue{}

// IsMissing reports whether v is the Missing sentinel.
func IsMissing(v any) bool {
	_, ok := v.(missingValue)
	return ok
}
