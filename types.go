package marshkit

// UnknownPolicy controls how input keys with no matching data key are handled
// during load.
type UnknownPolicy int

const (
	UnknownRaise   UnknownPolicy = iota // Reject unknown keys with an error.
	UnknownExclude                      // Drop unknown keys silently.
	UnknownInclude                      // Copy unknown keys into the output verbatim, uncoerced.
)

func (p UnknownPolicy) String() string {
	switch p {
	case UnknownRaise:
		return "raise"
	case UnknownExclude:
		return "exclude"
	case UnknownInclude:
		return "include"
	default:
		return "unknown"
	}
}

// loadConfig bundles the per-call load options.
type loadConfig struct {
	partialAll   bool
	partialPaths []string
	unknown      UnknownPolicy
	unknownSet   bool
}

// LoadOpt configures one Load/Validate call.
type LoadOpt func(*loadConfig)

// Partial exempts fields from required checks for this call. With no
// arguments every field is exempted; with arguments only the named fields
// are, where dotted paths ("author.email") forward into nested schemas.
func Partial(paths ...string) LoadOpt {
	return func(c *loadConfig) {
		if len(paths) == 0 {
			c.partialAll = true
			return
		}
		c.partialPaths = append(c.partialPaths, paths...)
	}
}

// Unknown overrides the unknown-key policy for this call. It takes precedence
// over the schema's compiled policy and applies to this schema only; nested
// schemas keep their own.
func Unknown(p UnknownPolicy) LoadOpt {
	return func(c *loadConfig) {
		c.unknown = p
		c.unknownSet = true
	}
}
