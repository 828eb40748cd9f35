package types

// Well-known Options.Properties keys.
const (
	// PropertyRandomSeed seeds rand and newGuid for reproducible output.
	PropertyRandomSeed = "randomSeed"
	// PropertyRandomValue fixes the [0,1) draw used by rand.
	PropertyRandomValue = "randomValue"
	// PropertyNow pins the clock used by utcNow and relative date functions.
	// The value is a time.Time or an ISO 8601 string.
	PropertyNow = "now"
)

// NullSubstitution decides what a null read at path evaluates to.
type NullSubstitution func(path string) any

// Options is the per-call evaluation context. Treat it as immutable: derive
// copies with Clone or the With* helpers instead of mutating a shared value.
type Options struct {
	// Locale is a BCP 47 tag such as "en-US"; empty means culture invariant.
	Locale string
	// NullSubstitution, when set, replaces nil path reads.
	NullSubstitution NullSubstitution
	// Properties is a side channel for deterministic overrides.
	Properties map[string]any
}

// NewOptions returns empty, culture-invariant options.
func NewOptions() *Options {
	return &Options{Properties: map[string]any{}}
}

// Clone returns a copy sharing no mutable state with o. A nil receiver
// yields fresh defaults.
func (o *Options) Clone() *Options {
	if o == nil {
		return NewOptions()
	}
	props := make(map[string]any, len(o.Properties))
	for k, v := range o.Properties {
		props[k] = v
	}
	return &Options{
		Locale:           o.Locale,
		NullSubstitution: o.NullSubstitution,
		Properties:       props,
	}
}

// WithoutNullSubstitution returns a copy with null substitution disabled.
func (o *Options) WithoutNullSubstitution() *Options {
	if o == nil || o.NullSubstitution == nil {
		return o
	}
	c := *o
	c.NullSubstitution = nil
	return &c
}

// WithLocale returns a copy using locale.
func (o *Options) WithLocale(locale string) *Options {
	c := o.Clone()
	c.Locale = locale
	return c
}

// Property reads a side-channel value.
func (o *Options) Property(key string) (any, bool) {
	if o == nil || o.Properties == nil {
		return nil, false
	}
	v, ok := o.Properties[key]
	return v, ok
}

// Substitute applies the null substitution policy to a read of path.
func (o *Options) Substitute(path string, value any) any {
	if value != nil || o == nil || o.NullSubstitution == nil {
		return value
	}
	return o.NullSubstitution(path)
}
