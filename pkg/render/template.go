package render

import (
	"context"
	"fmt"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

// Template is a runtime instance of a Definition. Its persistent options and
// content cache live as long as the instance. A Template is not safe for
// concurrent use.
type Template struct {
	def       *Definition
	format    Format
	caps      Capabilities
	evaluator template.Evaluator
	registry  *Registry
	config    Config

	scope    *options.Scope
	options  options.Options
	sections section.List
	cache    *ContentCache
}

var _ section.Composable = (*Template)(nil)

func (t *Template) project(opts options.Options) {
	t.options = opts
}

// Definition returns the template type this instance was built from.
func (t *Template) Definition() *Definition {
	return t.def
}

// Format returns the output format.
func (t *Template) Format() Format {
	return t.format
}

// Capabilities returns the helper set composed into the instance.
func (t *Template) Capabilities() Capabilities {
	return t.caps
}

// Options returns a copy of the persistent options.
func (t *Template) Options() options.Options {
	return t.scope.Current()
}

// Sections returns the default section list.
func (t *Template) Sections() section.List {
	return t.sections
}

// SetSections replaces the default section list.
func (t *Template) SetSections(list section.List) error {
	if err := list.Validate(); err != nil {
		return &ConfigurationError{Key: "sections", Reason: t.def.Path, Err: err}
	}
	t.sections = list
	return nil
}

// Cache exposes the instance content cache.
func (t *Template) Cache() *ContentCache {
	return t.cache
}

func (t *Template) String() string {
	if t == nil || t.def == nil {
		return "Template()"
	}
	return "Template(" + t.def.Path + ")"
}

// Run renders the default sections. See RunSections.
func (t *Template) Run(ctx context.Context, opts options.Options, yield section.Continuation) (string, error) {
	return t.RunSections(ctx, opts, t.sections, yield)
}

// RunSections merges opts into the persistent options and renders every
// top-level entry of sections in order, concatenating the results. Nested
// groups are skipped: they only render when the section before them asks for
// them through its continuation. A nil list renders nothing.
//
// Yield is handed to nested composables and to subsections, so a template
// used as a section of another template can in turn pull in its parent's
// subsections.
func (t *Template) RunSections(ctx context.Context, opts options.Options, sections section.List, yield section.Continuation) (string, error) {
	if sections == nil {
		return "", nil
	}
	if err := ctx.Err(); err != nil {
		return "", err
	}

	t.scope.Merge(opts)

	var out strings.Builder
	for index, entry := range sections {
		ref, ok := entry.(section.Ref)
		if !ok {
			continue
		}
		rc := RenderContext{options: t.options, sections: sections, cursor: index, section: ref, outer: yield}
		text, err := t.RenderSection(ctx, rc, ref, t.continuation(ctx, rc, yield))
		if err != nil {
			return "", err
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

// continuation yields the subsections of rc's section one by one, starting
// with the first.
func (t *Template) continuation(ctx context.Context, rc RenderContext, yield section.Continuation) section.Continuation {
	next := 0
	return func(opts options.Options) (string, error) {
		text, err := t.YieldNext(ctx, rc, opts, next, yield)
		if err != nil {
			return "", err
		}
		next++
		return text, nil
	}
}

// RenderSection renders a single section in rc and returns its text.
func (t *Template) RenderSection(ctx context.Context, rc RenderContext, ref section.Ref, yield section.Continuation) (string, error) {
	zerolog.Ctx(ctx).Debug().
		Str("template", t.def.Path).
		Str("section", ref.String()).
		Int("cursor", rc.cursor).
		Msg("render section")

	switch ref.Kind {
	case section.KindMethod:
		fn, ok := t.def.Method(ref.Name)
		if !ok {
			return "", &ConfigurationError{Key: "methods", Reason: fmt.Sprintf("%s has no method %q", t.def.Path, ref.Name)}
		}
		return fn(ctx, t, rc, yield)
	case section.KindFile:
		return t.renderFile(ctx, rc, ref.Name, yield)
	case section.KindLiteral:
		return ref.Text, nil
	case section.KindComposable:
		if ref.Template == nil {
			return "", nil
		}
		return ref.Template.Run(ctx, rc.options, yield)
	default:
		return "", nil
	}
}

// YieldNext renders subsection index of rc's section with opts merged over
// rc's options. It fails with a *StructureError when the section owns no
// subsections or index is out of range. A nested group at index renders as
// empty text; it belongs to the entry before it.
func (t *Template) YieldNext(ctx context.Context, rc RenderContext, opts options.Options, index int, yield section.Continuation) (string, error) {
	sub, ok := rc.Subsections()
	if !ok {
		return "", errNoSubsections(rc.section.Label())
	}
	if index < 0 || index >= len(sub) {
		return "", &StructureError{
			Section: rc.section.Label(),
			Reason:  fmt.Sprintf("no subsection at index %d (%d available)", index, len(sub)),
		}
	}

	ref, ok := sub[index].(section.Ref)
	if !ok {
		return "", nil
	}
	return t.RenderSection(ctx, rc.child(sub, index, opts, yield), ref, yield)
}

// YieldAll renders every subsection of rc's section in order. On failure the
// text rendered so far is discarded and only the error is returned.
func (t *Template) YieldAll(ctx context.Context, rc RenderContext, opts options.Options, yield section.Continuation) (string, error) {
	sub, ok := rc.Subsections()
	if !ok {
		return "", errNoSubsections(rc.section.Label())
	}

	var out strings.Builder
	for i := range sub {
		text, err := t.YieldNext(ctx, rc, opts, i, yield)
		if err != nil {
			return "", err
		}
		out.WriteString(text)
	}
	return out.String(), nil
}

// WithOptions merges opts into the persistent options for the duration of
// body and restores them afterwards, whether body returns or panics. With a
// nil body the merge persists.
func (t *Template) WithOptions(opts options.Options, body func() error) error {
	if body == nil {
		return t.scope.WithMerged(opts, nil)
	}
	return t.scope.WithMerged(opts, func(options.Options) error {
		return body()
	})
}

// File reads basename from the definition's search paths.
func (t *Template) File(basename string) (string, error) {
	file, ok := t.def.Locate(basename)
	if !ok {
		return "", &LookupError{Name: basename, Template: t.def.Path}
	}
	data, err := file.Read()
	if err != nil {
		return "", fmt.Errorf("render: read %s: %w", file.Path(), err)
	}
	return string(data), nil
}

// Sub instantiates another template type from the registry with this
// instance's format, capabilities, evaluator and current options.
func (t *Template) Sub(ctx context.Context, path string) (*Template, error) {
	if t.registry == nil {
		return nil, &ConfigurationError{Key: "registry", Reason: fmt.Sprintf("%s has no registry to resolve %q", t.def.Path, path)}
	}
	cfg := t.config
	cfg.Options = t.scope.Current()
	cfg.ancestors = nil
	return t.registry.Instantiate(ctx, path, cfg)
}

func (t *Template) renderFile(ctx context.Context, rc RenderContext, name string, yield section.Continuation) (string, error) {
	source, err := t.cache.Get(name, t.def.Locate)
	if err != nil {
		return "", err
	}
	if t.evaluator == nil {
		return "", &ConfigurationError{Key: "evaluator", Reason: fmt.Sprintf("%s renders file section %q without a leaf evaluator", t.def.Path, name)}
	}

	origin, _ := t.cache.Origin(name)
	text, err := t.evaluator.Evaluate(template.Request{
		Name:       origin.Path(),
		Source:     source,
		Bindings:   t.bindings(ctx, rc, yield),
		Autoescape: t.caps.Autoescape(),
	})
	if err != nil {
		return "", fmt.Errorf("render: evaluate %s: %w", origin.Path(), err)
	}
	return text, nil
}

// bindings are the variables a leaf template sees: capability helpers, then
// options (options win over helpers of the same name), then the engine
// callables.
func (t *Template) bindings(ctx context.Context, rc RenderContext, yield section.Continuation) map[string]any {
	helpers := t.caps.Helpers()
	out := make(map[string]any, len(helpers)+len(rc.options)+4)
	for key, value := range helpers {
		out[key] = value
	}
	for key, value := range rc.options {
		out[key] = value
	}

	if yield != nil {
		out["yield"] = yield
	}
	out["yieldall"] = section.Continuation(func(opts options.Options) (string, error) {
		return t.YieldAll(ctx, rc, opts, rc.outer)
	})
	out["section"] = rc.section.Label()
	out["file"] = func(basename string) (string, error) {
		return t.File(basename)
	}
	return out
}
