package replica

// OpaquePolicy decides how DeepClone treats opaque host values whose payload
// does not implement Cloner[any].
type OpaquePolicy uint8

const (
	// OpaqueShare passes the handle through by reference. The clone and the
	// source then refer to the same host object.
	OpaqueShare OpaquePolicy = iota

	// OpaqueReject fails the clone with *UnsupportedValueError.
	OpaqueReject

	// OpaqueDrop omits the value, like WithoutFuncs does for callables.
	OpaqueDrop
)

// Option configures a RecordCloner.
type Option func(*options)

type options struct {
	exclude    map[string]struct{}
	transforms map[string]transform
	dropFuncs  bool
	opaque     OpaquePolicy
	maxDepth   int
}

func buildOptions(opts []Option) options {
	o := options{}
	for _, opt := range opts {
		opt(&o)
	}
	return o
}

// WithExclude omits the given top-level keys from the clone.
func WithExclude(keys ...string) Option {
	return func(o *options) {
		if o.exclude == nil {
			o.exclude = make(map[string]struct{}, len(keys))
		}
		for _, k := range keys {
			o.exclude[k] = struct{}{}
		}
	}
}

// WithoutFuncs omits callable members at every depth.
func WithoutFuncs() Option {
	return func(o *options) {
		o.dropFuncs = true
	}
}

// WithOpaque sets the policy for opaque values.
func WithOpaque(p OpaquePolicy) Option {
	return func(o *options) {
		o.opaque = p
	}
}

// WithRedact keeps the given top-level keys but replaces their values with
// the string replacement. Exclusion takes precedence over redaction.
func WithRedact(replacement string, keys ...string) Option {
	r := String(replacement)
	return withTransform(transform{
		op:      "redact",
		discard: true,
		apply:   func(Value) (Value, error) { return r, nil },
	}, keys)
}

// WithMaxDepth bounds nesting. The source record is depth 1. Zero or a
// negative limit means unlimited.
func WithMaxDepth(n int) Option {
	return func(o *options) {
		o.maxDepth = max(n, 0)
	}
}
