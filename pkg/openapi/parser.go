package openapi

import "context"

// Parser normalises a Document into the documentation view.
type Parser interface {
	Parse(ctx context.Context, doc Document) (Spec, error)
}

// ParserOptions tunes parsing.
type ParserOptions struct {
	// Validate runs kin-openapi validation before normalising.
	Validate bool

	// AllowExternalRefs lets the parser follow $refs outside the document.
	AllowExternalRefs bool

	// IncludeDeprecated keeps deprecated operations in the Spec.
	IncludeDeprecated bool
}

// ParserOption mutates ParserOptions during construction.
type ParserOption func(*ParserOptions)

// WithValidation toggles document validation.
func WithValidation(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.Validate = enabled
	}
}

// WithExternalRefs toggles following external $refs.
func WithExternalRefs(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.AllowExternalRefs = enabled
	}
}

// WithDeprecated toggles documenting deprecated operations.
func WithDeprecated(enabled bool) ParserOption {
	return func(opts *ParserOptions) {
		opts.IncludeDeprecated = enabled
	}
}

// NewParserOptions returns the defaults (validation on, deprecated operations
// kept) with options applied.
func NewParserOptions(options ...ParserOption) ParserOptions {
	cfg := ParserOptions{
		Validate:          true,
		IncludeDeprecated: true,
	}
	for _, opt := range options {
		if opt != nil {
			opt(&cfg)
		}
	}
	return cfg
}
