package render

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"strings"

	"github.com/rs/zerolog"

	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

// LayoutFile is read from a definition root by LoadDefinition.
const LayoutFile = "layout.yaml"

// Method renders a method-backed section. Yield renders the next subsection
// of the section being produced; rc can be passed to Template.YieldAll and
// Template.YieldNext directly.
type Method func(ctx context.Context, t *Template, rc RenderContext, yield section.Continuation) (string, error)

// PathProvider contributes search paths to the definitions that include it.
type PathProvider interface {
	SearchPaths() []SearchPath
}

// MethodProvider contributes methods to the definitions that include it.
type MethodProvider interface {
	Method(name string) (Method, bool)
}

// Definition is a template type: its own root, the definitions or path sets it
// includes, its methods and its default layout.
type Definition struct {
	Path     string
	Root     SearchPath
	Includes []PathProvider
	Layout   section.Layout
	Methods  map[string]Method
	// Setup runs once per instance after the default sections are resolved.
	Setup func(ctx context.Context, t *Template) error
}

// NewDefinition returns a Definition rooted at root that includes the given
// providers, in order.
func NewDefinition(path string, root SearchPath, includes ...PathProvider) *Definition {
	return &Definition{
		Path:     strings.Trim(path, "/"),
		Root:     root,
		Includes: includes,
		Methods:  make(map[string]Method),
	}
}

// LoadDefinition is NewDefinition plus the layout read from LayoutFile in
// root, when present.
func LoadDefinition(path string, root SearchPath, includes ...PathProvider) (*Definition, error) {
	def := NewDefinition(path, root, includes...)
	if !root.Valid() {
		return def, nil
	}

	data, err := fs.ReadFile(root.FS, LayoutFile)
	switch {
	case errors.Is(err, fs.ErrNotExist):
		return def, nil
	case err != nil:
		return nil, fmt.Errorf("render: read layout for %s: %w", def.Path, err)
	}

	layout, err := section.ParseLayout(File{Root: root, Name: LayoutFile}.Path(), data)
	if err != nil {
		return nil, &ConfigurationError{Key: "layout", Reason: def.Path, Err: err}
	}
	def.Layout = layout
	return def, nil
}

// HandleMethod registers fn under name and returns the definition for
// chaining.
func (d *Definition) HandleMethod(name string, fn Method) *Definition {
	if d.Methods == nil {
		d.Methods = make(map[string]Method)
	}
	d.Methods[strings.TrimSpace(name)] = fn
	return d
}

// Method looks name up on the definition, then on included method providers
// in inclusion order.
func (d *Definition) Method(name string) (Method, bool) {
	if d == nil {
		return nil, false
	}
	if fn, ok := d.Methods[name]; ok && fn != nil {
		return fn, true
	}
	for _, inc := range d.Includes {
		provider, ok := inc.(MethodProvider)
		if !ok {
			continue
		}
		if fn, ok := provider.Method(name); ok {
			return fn, true
		}
	}
	return nil, false
}

// SearchPaths returns the definition root followed by the search paths of each
// include, in order, keeping the first occurrence of every root name.
func (d *Definition) SearchPaths() []SearchPath {
	if d == nil {
		return nil
	}
	seen := make(map[string]struct{})
	var out []SearchPath

	add := func(p SearchPath) {
		if !p.Valid() {
			return
		}
		if _, dup := seen[p.Name]; dup {
			return
		}
		seen[p.Name] = struct{}{}
		out = append(out, p)
	}

	add(d.Root)
	for _, inc := range d.Includes {
		if inc == nil {
			continue
		}
		for _, p := range inc.SearchPaths() {
			add(p)
		}
	}
	return out
}

// Locate returns the first file called basename found on SearchPaths.
func (d *Definition) Locate(basename string) (File, bool) {
	for _, p := range d.SearchPaths() {
		if file, ok := p.locate(basename); ok {
			return file, true
		}
	}
	return File{}, false
}

func (d *Definition) String() string {
	return d.Path
}

// Config carries everything an instance needs beyond its definition.
type Config struct {
	// Options seed the instance options.
	Options options.Options
	// Format overrides Options["format"].
	Format Format
	// Capabilities must match the resolved format. Nil attaches no helpers.
	Capabilities Capabilities
	// Evaluator renders file-backed sections.
	Evaluator template.Evaluator
	// Registry resolves {template: path} layout entries and Template.Sub.
	Registry *Registry

	ancestors []string
}

func (c Config) format() (Format, error) {
	if c.Format != "" {
		return ParseFormat(string(c.Format))
	}
	return ParseFormat(c.Options.String("format", ""))
}

func (c Config) enter(path string) (Config, error) {
	for _, seen := range c.ancestors {
		if seen == path {
			chain := append(append([]string(nil), c.ancestors...), path)
			return c, &ConfigurationError{Key: "template", Reason: "include cycle " + strings.Join(chain, " -> ")}
		}
	}
	next := c
	next.ancestors = append(append([]string(nil), c.ancestors...), path)
	return next, nil
}

// Instantiate builds a new Template of this type.
func (d *Definition) Instantiate(ctx context.Context, cfg Config) (*Template, error) {
	if d == nil {
		return nil, &ConfigurationError{Key: "template", Reason: "definition is nil"}
	}

	format, err := cfg.format()
	if err != nil {
		return nil, err
	}
	cfg.Format = format

	caps := cfg.Capabilities
	if caps == nil {
		caps = plainCapabilities{format: format}
	} else if caps.Format() != format {
		return nil, &ConfigurationError{
			Key:    "capabilities",
			Reason: fmt.Sprintf("capabilities for %q attached to a %q template", caps.Format(), format),
		}
	}
	cfg.Capabilities = caps

	cfg, err = cfg.enter(d.Path)
	if err != nil {
		return nil, err
	}

	t := &Template{
		def:       d,
		format:    format,
		caps:      caps,
		evaluator: cfg.Evaluator,
		registry:  cfg.Registry,
		cache:     NewContentCache(d.Path, format.LeafFilename),
		config:    cfg,
	}
	initial := cfg.Options.Merge(options.Options{"format": string(format)})
	t.scope = options.NewScope(initial, t.project)

	sections, err := d.Resolve(ctx, d.Layout, cfg)
	if err != nil {
		return nil, err
	}
	t.sections = sections

	if d.Setup != nil {
		if err := d.Setup(ctx, t); err != nil {
			return nil, fmt.Errorf("render: setup %s: %w", d.Path, err)
		}
	}

	zerolog.Ctx(ctx).Debug().
		Str("template", d.Path).
		Str("format", string(format)).
		Int("sections", len(t.sections)).
		Msg("instantiated template")
	return t, nil
}
