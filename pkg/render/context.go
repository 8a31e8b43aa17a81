package render

import (
	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

// RenderContext is the position of a render inside a section list plus the
// options visible to it. It is a value: deriving a child context never changes
// the parent, which is what keeps sibling iteration intact across nested
// renders.
type RenderContext struct {
	options  options.Options
	sections section.List
	cursor   int
	section  section.Ref
	outer    section.Continuation
}

// NewRenderContext returns the context for the entry at cursor in sections.
// A cursor pointing at a nested group yields a zero Section.
func NewRenderContext(opts options.Options, sections section.List, cursor int) RenderContext {
	rc := RenderContext{
		options:  opts.Clone(),
		sections: sections,
		cursor:   cursor,
	}
	if cursor >= 0 && cursor < len(sections) {
		if ref, ok := sections[cursor].(section.Ref); ok {
			rc.section = ref
		}
	}
	if rc.options == nil {
		rc.options = options.Options{}
	}
	return rc
}

// Options returns a copy of the options visible to this render.
func (rc RenderContext) Options() options.Options {
	return rc.options.Clone()
}

// Option returns a single option value.
func (rc RenderContext) Option(key string) (any, bool) {
	return rc.options.Get(key)
}

// Sections returns the list this context points into.
func (rc RenderContext) Sections() section.List {
	return rc.sections
}

// Cursor is the index of the current section within Sections.
func (rc RenderContext) Cursor() int {
	return rc.cursor
}

// Section is the section being rendered.
func (rc RenderContext) Section() section.Ref {
	return rc.section
}

// Outer is the continuation handed to the enclosing Run (or to the YieldNext
// that rendered this section). Pass it on when yielding subsections so they
// can reach the same producer.
func (rc RenderContext) Outer() section.Continuation {
	return rc.outer
}

// Subsections returns the group owned by the current section, if any.
func (rc RenderContext) Subsections() (section.List, bool) {
	return section.Subsections(rc.sections, rc.cursor)
}

// WithOptions returns a copy with opts merged over the current options.
func (rc RenderContext) WithOptions(opts options.Options) RenderContext {
	if opts == nil {
		return rc
	}
	rc.options = rc.options.Merge(opts)
	return rc
}

func (rc RenderContext) child(sub section.List, index int, opts options.Options, outer section.Continuation) RenderContext {
	next := NewRenderContext(rc.options, sub, index).WithOptions(opts)
	next.outer = outer
	return next
}
