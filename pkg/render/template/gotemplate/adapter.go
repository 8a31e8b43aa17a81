package gotemplate

import (
	"bytes"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"reflect"
	"regexp"
	"strings"
	"sync"

	"github.com/flosch/pongo2/v6"

	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

// Option configures the pongo2 adapter before construction.
type Option func(*config)

type config struct {
	templates  []fs.FS
	globalData map[string]any
}

// WithFS lets leaf templates {% include %} files from files. Repeated options
// are searched in order.
func WithFS(files fs.FS) Option {
	return func(cfg *config) {
		if files != nil {
			cfg.templates = append(cfg.templates, files)
		}
	}
}

// WithGlobalData seeds global context values available to every template.
func WithGlobalData(data map[string]any) Option {
	return func(cfg *config) {
		if len(data) == 0 {
			return
		}
		if cfg.globalData == nil {
			cfg.globalData = make(map[string]any, len(data))
		}
		for key, value := range data {
			cfg.globalData[strings.TrimSpace(key)] = value
		}
	}
}

// Engine evaluates leaf templates with pongo2. Parsed templates are cached by
// request name, so a source is parsed once per engine.
type Engine struct {
	mu sync.RWMutex

	templateSet *pongo2.TemplateSet
	templates   map[string]*pongo2.Template
}

var _ template.TemplateRenderer = (*Engine)(nil)

// New constructs an Engine using the provided configuration options.
func New(options ...Option) (*Engine, error) {
	cfg := &config{}
	for _, opt := range options {
		if opt == nil {
			continue
		}
		opt(cfg)
	}

	var loaders []pongo2.TemplateLoader
	for _, files := range cfg.templates {
		loaders = append(loaders, pongo2.NewFSLoader(files))
	}
	if len(loaders) == 0 {
		loaders = append(loaders, pongo2.NewFSLoader(embed.FS{}))
	}

	engine := &Engine{
		templateSet: pongo2.NewSet("doctemplate", loaders...),
		templates:   make(map[string]*pongo2.Template),
	}
	registerDefaultFilters()

	if err := engine.GlobalContext(cfg.globalData); err != nil {
		return nil, fmt.Errorf("gotemplate: apply global data: %w", err)
	}
	return engine, nil
}

// Evaluate renders a leaf template source with the request bindings.
func (e *Engine) Evaluate(req template.Request) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.parse(req)
	if err != nil {
		return "", err
	}

	// No lock is held while executing: yield bindings re-enter Evaluate on the
	// same goroutine, and a parsed template is safe for concurrent use.
	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(bindingsContext(req.Bindings), &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute %q: %w", req.Name, err)
	}
	return buf.String(), nil
}

// RenderString renders an ad-hoc template string with autoescaping enabled.
func (e *Engine) RenderString(templateContent string, data any) (string, error) {
	if e == nil || e.templateSet == nil {
		return "", errors.New("gotemplate: engine is nil")
	}

	tmpl, err := e.templateSet.FromString(templateContent)
	if err != nil {
		return "", fmt.Errorf("gotemplate: parse template string: %w", err)
	}

	viewContext, err := convertToContext(data)
	if err != nil {
		return "", fmt.Errorf("gotemplate: convert data: %w", err)
	}

	var buf bytes.Buffer
	if err := tmpl.ExecuteWriter(viewContext, &buf); err != nil {
		return "", fmt.Errorf("gotemplate: execute template string: %w", err)
	}
	return buf.String(), nil
}

// RegisterFilter registers a template filter.
func (e *Engine) RegisterFilter(name string, fn func(input any, param any) (any, error)) error {
	if strings.TrimSpace(name) == "" || fn == nil {
		return errors.New("gotemplate: filter name and function required")
	}

	filter := func(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
		var paramVal any
		if param != nil {
			paramVal = param.Interface()
		}
		result, err := fn(in.Interface(), paramVal)
		if err != nil {
			return nil, &pongo2.Error{Sender: "custom_filter", OrigError: err}
		}
		return pongo2.AsValue(result), nil
	}

	if pongo2.FilterExists(name) {
		return fmt.Errorf("gotemplate: filter %q already exists", name)
	}
	return pongo2.RegisterFilter(name, filter)
}

// GlobalContext seeds global data visible to every template. Call it before
// evaluating; globals are read without locking while templates execute.
func (e *Engine) GlobalContext(data any) error {
	if e == nil || e.templateSet == nil {
		return errors.New("gotemplate: engine is nil")
	}
	if data == nil {
		return nil
	}

	globalCtx, err := convertToContext(data)
	if err != nil {
		return err
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if e.templateSet.Globals == nil {
		e.templateSet.Globals = make(pongo2.Context)
	}
	e.templateSet.Globals.Update(globalCtx)
	return nil
}

// parse returns the cached template for req.Name, parsing it on first use.
// Requests without a name are parsed every time.
func (e *Engine) parse(req template.Request) (*pongo2.Template, error) {
	key := cacheKey(req)
	if key != "" {
		e.mu.RLock()
		if tmpl, ok := e.templates[key]; ok {
			e.mu.RUnlock()
			return tmpl, nil
		}
		e.mu.RUnlock()
	}

	source := req.Source
	if !req.Autoescape {
		source = "{% autoescape off %}" + source + "{% endautoescape %}"
	}

	e.mu.Lock()
	defer e.mu.Unlock()

	if key != "" {
		if tmpl, ok := e.templates[key]; ok {
			return tmpl, nil
		}
	}

	tmpl, err := e.templateSet.FromString(source)
	if err != nil {
		return nil, fmt.Errorf("gotemplate: parse %q: %w", req.Name, err)
	}
	if key != "" {
		e.templates[key] = tmpl
	}
	return tmpl, nil
}

func cacheKey(req template.Request) string {
	if req.Name == "" {
		return ""
	}
	if req.Autoescape {
		return req.Name + "#escaped"
	}
	return req.Name
}

var identifier = regexp.MustCompile(`^[a-zA-Z_][a-zA-Z0-9_]*$`)

// bindingsContext exposes bindings to pongo2 as-is, except continuations,
// which become callables returning safe values so yielded markup is not
// escaped a second time. Keys pongo2 cannot address are dropped.
func bindingsContext(bindings map[string]any) pongo2.Context {
	ctx := make(pongo2.Context, len(bindings))
	for key, value := range bindings {
		if !identifier.MatchString(key) {
			continue
		}
		switch v := value.(type) {
		case section.Continuation:
			ctx[key] = continuationFunc(v)
		case template.Safe:
			ctx[key] = pongo2.AsSafeValue(string(v))
		default:
			if fn, ok := safeFunc(value); ok {
				ctx[key] = fn
				continue
			}
			ctx[key] = value
		}
	}
	return ctx
}

var (
	safeType  = reflect.TypeOf(template.Safe(""))
	errorType = reflect.TypeOf((*error)(nil)).Elem()
)

// safeFunc wraps a helper returning template.Safe (optionally with an error)
// so pongo2 inserts its result without escaping it. Other values are left
// alone.
func safeFunc(value any) (func(args ...*pongo2.Value) (*pongo2.Value, error), bool) {
	fn := reflect.ValueOf(value)
	if fn.Kind() != reflect.Func {
		return nil, false
	}
	ft := fn.Type()
	if ft.IsVariadic() || ft.NumOut() < 1 || ft.NumOut() > 2 || ft.Out(0) != safeType {
		return nil, false
	}
	if ft.NumOut() == 2 && ft.Out(1) != errorType {
		return nil, false
	}

	return func(args ...*pongo2.Value) (*pongo2.Value, error) {
		if len(args) != ft.NumIn() {
			return nil, fmt.Errorf("gotemplate: helper expects %d arguments, got %d", ft.NumIn(), len(args))
		}
		in := make([]reflect.Value, len(args))
		for i, arg := range args {
			v, err := helperArg(arg, ft.In(i))
			if err != nil {
				return nil, fmt.Errorf("gotemplate: helper argument %d: %w", i+1, err)
			}
			in[i] = v
		}
		out := fn.Call(in)
		if len(out) == 2 && !out[1].IsNil() {
			return nil, out[1].Interface().(error)
		}
		return pongo2.AsSafeValue(out[0].String()), nil
	}, true
}

func helperArg(arg *pongo2.Value, want reflect.Type) (reflect.Value, error) {
	switch want.Kind() {
	case reflect.String:
		return reflect.ValueOf(arg.String()).Convert(want), nil
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		return reflect.ValueOf(arg.Integer()).Convert(want), nil
	case reflect.Float32, reflect.Float64:
		return reflect.ValueOf(arg.Float()).Convert(want), nil
	case reflect.Bool:
		return reflect.ValueOf(arg.IsTrue()).Convert(want), nil
	}
	raw := arg.Interface()
	if raw == nil {
		return reflect.Zero(want), nil
	}
	if v := reflect.ValueOf(raw); v.Type().AssignableTo(want) {
		return v, nil
	}
	return reflect.Value{}, fmt.Errorf("cannot use %T as %s", raw, want)
}

// continuationFunc adapts a Continuation to pongo2's calling convention. The
// optional argument is a map of options merged for the yielded render.
func continuationFunc(cont section.Continuation) func(args ...*pongo2.Value) (*pongo2.Value, error) {
	return func(args ...*pongo2.Value) (*pongo2.Value, error) {
		var opts options.Options
		if len(args) > 0 && args[0] != nil && !args[0].IsNil() {
			converted, err := optionsArg(args[0].Interface())
			if err != nil {
				return nil, err
			}
			opts = converted
		}
		text, err := cont(opts)
		if err != nil {
			return nil, err
		}
		return pongo2.AsSafeValue(text), nil
	}
}

func optionsArg(value any) (options.Options, error) {
	switch v := value.(type) {
	case options.Options:
		return v, nil
	case map[string]any:
		return options.Options(v), nil
	case pongo2.Context:
		return options.Options(v), nil
	default:
		rv := reflect.ValueOf(value)
		if rv.Kind() != reflect.Map || rv.Type().Key().Kind() != reflect.String {
			return nil, fmt.Errorf("gotemplate: yield expects a map of options, got %T", value)
		}
		out := make(options.Options, rv.Len())
		iter := rv.MapRange()
		for iter.Next() {
			out[iter.Key().String()] = iter.Value().Interface()
		}
		return out, nil
	}
}

func convertToContext(data any) (pongo2.Context, error) {
	switch v := data.(type) {
	case nil:
		return pongo2.Context{}, nil
	case pongo2.Context:
		return v, nil
	case map[string]any:
		return pongo2.Context(v), nil
	case options.Options:
		return pongo2.Context(v), nil
	default:
		b, err := json.Marshal(v)
		if err != nil {
			return nil, err
		}
		out := pongo2.Context{}
		if err := json.Unmarshal(b, &out); err != nil {
			return nil, err
		}
		return out, nil
	}
}

func registerDefaultFilters() {
	if !pongo2.FilterExists("trim") {
		_ = pongo2.RegisterFilter("trim", filterTrim)
	}
	if !pongo2.FilterExists("indent") {
		_ = pongo2.RegisterFilter("indent", filterIndent)
	}
}

func filterTrim(in *pongo2.Value, _ *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	if in.Len() <= 0 {
		return pongo2.AsValue(""), nil
	}
	return pongo2.AsValue(strings.TrimSpace(in.String())), nil
}

// filterIndent prefixes every non-empty line with param spaces (default 2).
func filterIndent(in *pongo2.Value, param *pongo2.Value) (*pongo2.Value, *pongo2.Error) {
	width := 2
	if param != nil && param.IsInteger() {
		width = param.Integer()
	}
	if width < 0 {
		width = 0
	}
	pad := strings.Repeat(" ", width)

	lines := strings.Split(in.String(), "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) == "" {
			continue
		}
		lines[i] = pad + line
	}
	return pongo2.AsValue(strings.Join(lines, "\n")), nil
}
