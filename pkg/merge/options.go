package merge

// Options controls how source objects are written to the target.
type Options struct {
	TaskPrefix   string // Prepended to the names of migrated tasks
	PolicySuffix string // Stripped from target policy names when matching
}

// Option is a function that configures merge Options.
type Option func(*Options)

// Defaults returns the default merge options.
func Defaults() *Options {
	return &Options{}
}

// Apply applies the given options to the merge options.
func (o *Options) Apply(opts ...Option) *Options {
	for _, opt := range opts {
		opt(o)
	}
	return o
}

// WithTaskPrefix prepends prefix to every migrated task name.
func WithTaskPrefix(prefix string) Option {
	return func(o *Options) {
		o.TaskPrefix = prefix
	}
}

// WithPolicySuffix sets the suffix the target appends to imported policy names.
func WithPolicySuffix(suffix string) Option {
	return func(o *Options) {
		o.PolicySuffix = suffix
	}
}
