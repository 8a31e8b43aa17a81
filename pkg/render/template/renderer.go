package template

// Request is a single leaf template evaluation.
type Request struct {
	// Name identifies the source in error messages and keys the parsed
	// template cache.
	Name string
	// Source is the raw leaf template text.
	Source string
	// Bindings are exposed to the template as top-level variables. A
	// section.Continuation binding is callable from the template and inserts
	// the text it returns without escaping. Safe values, and functions
	// returning Safe, are inserted without escaping too.
	Bindings map[string]any
	// Autoescape toggles HTML escaping of interpolated values.
	Autoescape bool
}

// Safe is text that is already escaped or sanitised for the output format.
type Safe string

// Evaluator turns leaf template source plus bindings into text. It is the
// seam between the section engine and the template language.
type Evaluator interface {
	Evaluate(req Request) (string, error)
}

// TemplateRenderer is an Evaluator that can also render ad-hoc strings and be
// extended with filters and global values.
type TemplateRenderer interface {
	Evaluator
	RenderString(templateContent string, data any) (string, error)
	RegisterFilter(name string, fn func(input any, param any) (any, error)) error
	GlobalContext(data any) error
}
