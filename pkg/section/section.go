package section

import (
	"context"
	"fmt"

	"github.com/goliatone/go-doctemplate/pkg/options"
)

// Kind tags the variant held by a Ref.
type Kind int

const (
	// KindFile renders a leaf template file named after the section.
	KindFile Kind = iota
	// KindMethod renders through a method registered on the template definition.
	KindMethod
	// KindLiteral renders its text as-is.
	KindLiteral
	// KindComposable renders a nested template through its Run.
	KindComposable
)

func (k Kind) String() string {
	switch k {
	case KindFile:
		return "file"
	case KindMethod:
		return "method"
	case KindLiteral:
		return "literal"
	case KindComposable:
		return "template"
	default:
		return fmt.Sprintf("kind(%d)", int(k))
	}
}

// Continuation renders the next subsection of the section currently being
// produced. Opts, when non-nil, are merged for the duration of that render.
type Continuation func(opts options.Options) (string, error)

// Composable is any value that can render itself as a nested section.
type Composable interface {
	Run(ctx context.Context, opts options.Options, yield Continuation) (string, error)
}

// Entry is an element of a List: a Ref or a nested List.
type Entry interface {
	entry()
}

// Ref identifies a single renderable section. Build one with File, Method,
// Literal or Template.
type Ref struct {
	Kind     Kind
	Name     string
	Text     string
	Template Composable
}

func (Ref) entry() {}

// File returns a Ref rendered from the leaf template "<name>.<format>.tpl".
func File(name string) Ref {
	return Ref{Kind: KindFile, Name: name}
}

// Method returns a Ref rendered by the method registered under name.
func Method(name string) Ref {
	return Ref{Kind: KindMethod, Name: name}
}

// Literal returns a Ref that renders text verbatim.
func Literal(text string) Ref {
	return Ref{Kind: KindLiteral, Text: text}
}

// Template returns a Ref that renders a nested composable template.
func Template(c Composable) Ref {
	name := ""
	if s, ok := c.(fmt.Stringer); ok {
		name = s.String()
	}
	return Ref{Kind: KindComposable, Name: name, Template: c}
}

// Label is a short human readable identifier used in logs and errors.
func (r Ref) Label() string {
	switch r.Kind {
	case KindLiteral:
		return "literal"
	case KindComposable:
		if r.Name != "" {
			return r.Name
		}
		return "template"
	default:
		return r.Name
	}
}

func (r Ref) String() string {
	return r.Kind.String() + ":" + r.Label()
}
