package registry

// Kind describes how a provider produces its instance.
type Kind string

const (
	// KindValue returns a pre-built value on every resolution.
	KindValue Kind = "value"

	// KindFactory calls a zero-argument producer on every resolution.
	// Results are never cached.
	KindFactory Kind = "factory"

	// KindClass constructs a marked type, resolving its constructor
	// parameters recursively.
	KindClass Kind = "class"
)

// String returns the string representation of the kind.
func (k Kind) String() string {
	return string(k)
}
