package options

import (
	"sort"
)

// Options maps option keys to arbitrary values. Leaf templates see each key as
// a binding of the same name.
type Options map[string]any

// Clone returns a shallow copy. Nil in, nil out.
func (o Options) Clone() Options {
	if o == nil {
		return nil
	}
	out := make(Options, len(o))
	for key, value := range o {
		out[key] = value
	}
	return out
}

// Merge returns a new mapping holding o overlaid with extra. Keys from extra
// win on collision. Neither input is modified.
func (o Options) Merge(extra Options) Options {
	out := make(Options, len(o)+len(extra))
	for key, value := range o {
		out[key] = value
	}
	for key, value := range extra {
		out[key] = value
	}
	return out
}

// Get returns the value stored under key.
func (o Options) Get(key string) (any, bool) {
	if o == nil {
		return nil, false
	}
	value, ok := o[key]
	return value, ok
}

// String returns the value under key when it is a string (or a named string
// type such as render.Format), otherwise fallback.
func (o Options) String(key, fallback string) string {
	value, ok := o.Get(key)
	if !ok || value == nil {
		return fallback
	}
	switch v := value.(type) {
	case string:
		return v
	case interface{ String() string }:
		return v.String()
	default:
		return fallback
	}
}

// Keys returns the option keys in sorted order.
func (o Options) Keys() []string {
	keys := make([]string, 0, len(o))
	for key := range o {
		keys = append(keys, key)
	}
	sort.Strings(keys)
	return keys
}
