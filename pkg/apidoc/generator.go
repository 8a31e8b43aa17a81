package apidoc

import (
	"context"
	"errors"
	"fmt"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-doctemplate/internal/openapi/loader"
	"github.com/goliatone/go-doctemplate/internal/openapi/parser"
	"github.com/goliatone/go-doctemplate/pkg/formats"
	"github.com/goliatone/go-doctemplate/pkg/openapi"
	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/render/template/gotemplate"
)

// Option customises the Generator.
type Option func(*Generator)

// WithLoader injects a custom OpenAPI loader.
func WithLoader(l openapi.Loader) Option {
	return func(g *Generator) {
		g.loader = l
	}
}

// WithParser injects a custom OpenAPI parser.
func WithParser(p openapi.Parser) Option {
	return func(g *Generator) {
		g.parser = p
	}
}

// WithRegistry replaces the built-in template registry. Call InstallMethods
// on it to keep the Go backed sections.
func WithRegistry(registry *render.Registry) Option {
	return func(g *Generator) {
		g.registry = registry
	}
}

// WithEvaluator replaces the pongo2 leaf evaluator.
func WithEvaluator(evaluator template.Evaluator) Option {
	return func(g *Generator) {
		g.evaluator = evaluator
	}
}

// WithFormatSettings configures the capability sets (theme, wrap width).
func WithFormatSettings(settings formats.Settings) Option {
	return func(g *Generator) {
		g.settings = settings
	}
}

// Generator runs the load, parse and render pipeline.
type Generator struct {
	loader    openapi.Loader
	parser    openapi.Parser
	registry  *render.Registry
	evaluator template.Evaluator
	settings  formats.Settings

	initialiseErr error
}

// New constructs a Generator. Missing dependencies default to the built-in
// loader, parser, pongo2 evaluator and embedded templates.
func New(opts ...Option) *Generator {
	g := &Generator{}
	for _, opt := range opts {
		if opt != nil {
			opt(g)
		}
	}
	g.applyDefaults()
	return g
}

// Request describes one render.
type Request struct {
	// Source locates the document. Optional when Document is set.
	Source openapi.Source
	// Document bypasses the loader.
	Document *openapi.Document
	// Format selects the output format.
	Format render.Format
	// Template overrides the template path. It defaults to DocumentTemplate,
	// or OperationTemplate when OperationID is set.
	Template string
	// OperationID renders a single operation.
	OperationID string
	// Options are merged over the options derived from the document.
	Options options.Options
}

// Generate renders the documentation for req.
func (g *Generator) Generate(ctx context.Context, req Request) ([]byte, error) {
	if ctx == nil {
		return nil, errors.New("apidoc: context is required")
	}
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if g.initialiseErr != nil {
		return nil, g.initialiseErr
	}

	doc, err := g.resolveDocument(ctx, req)
	if err != nil {
		return nil, err
	}
	spec, err := g.parser.Parse(ctx, doc)
	if err != nil {
		return nil, fmt.Errorf("apidoc: parse document: %w", err)
	}

	opts := SpecOptions(spec)
	name := req.Template
	if req.OperationID != "" {
		op, ok := spec.Operation(req.OperationID)
		if !ok {
			return nil, fmt.Errorf("apidoc: operation %q not found", req.OperationID)
		}
		opts["operation"] = OperationOptions(op)
		if name == "" {
			name = OperationTemplate
		}
	}
	if name == "" {
		name = DocumentTemplate
	}

	caps, err := formats.For(req.Format, g.settings)
	if err != nil {
		return nil, err
	}

	tmpl, err := g.registry.Instantiate(ctx, name, render.Config{
		Options:      opts.Merge(req.Options),
		Format:       req.Format,
		Capabilities: caps,
		Evaluator:    g.evaluator,
	})
	if err != nil {
		return nil, fmt.Errorf("apidoc: instantiate %s: %w", name, err)
	}

	out, err := tmpl.Run(ctx, nil, nil)
	if err != nil {
		return nil, fmt.Errorf("apidoc: render %s: %w", name, err)
	}

	zerolog.Ctx(ctx).Debug().
		Str("document", doc.Location()).
		Str("template", name).
		Str("format", string(req.Format)).
		Int("operations", len(spec.Operations)).
		Int("bytes", len(out)).
		Msg("generated api documentation")
	return []byte(out), nil
}

func (g *Generator) resolveDocument(ctx context.Context, req Request) (openapi.Document, error) {
	if req.Document != nil {
		return *req.Document, nil
	}
	if req.Source == nil {
		return openapi.Document{}, errors.New("apidoc: source or document is required")
	}
	doc, err := g.loader.Load(ctx, req.Source)
	if err != nil {
		return openapi.Document{}, fmt.Errorf("apidoc: load document: %w", err)
	}
	return doc, nil
}

func (g *Generator) applyDefaults() {
	if g.loader == nil {
		g.loader = loader.New(openapi.NewLoaderOptions())
	}
	if g.parser == nil {
		g.parser = parser.New(openapi.NewParserOptions())
	}
	if g.evaluator == nil {
		engine, err := gotemplate.New()
		if err != nil {
			g.initialiseErr = fmt.Errorf("apidoc: default evaluator: %w", err)
			return
		}
		g.evaluator = engine
	}
	if g.registry == nil {
		registry, err := NewRegistry()
		if err != nil {
			g.initialiseErr = fmt.Errorf("apidoc: default templates: %w", err)
			return
		}
		g.registry = registry
	}
}
