package gotemplate_test

import (
	"errors"
	"fmt"
	stdhtml "html"
	"strings"
	"testing"
	"testing/fstest"
	"time"

	"github.com/goliatone/go-doctemplate/pkg/options"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/render/template/gotemplate"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

func newEngine(t *testing.T, opts ...gotemplate.Option) *gotemplate.Engine {
	t.Helper()
	engine, err := gotemplate.New(opts...)
	if err != nil {
		t.Fatalf("new engine: %v", err)
	}
	return engine
}

func TestEngine_EvaluateEscaping(t *testing.T) {
	engine := newEngine(t)
	bindings := map[string]any{"name": "<Ada>"}

	escaped, err := engine.Evaluate(template.Request{
		Name:       "escaped.html.tpl",
		Source:     "<b>{{ name }}</b>",
		Bindings:   bindings,
		Autoescape: true,
	})
	if err != nil {
		t.Fatalf("evaluate escaped: %v", err)
	}
	if escaped != "<b>&lt;Ada&gt;</b>" {
		t.Fatalf("unexpected escaped output %q", escaped)
	}

	raw, err := engine.Evaluate(template.Request{
		Name:     "raw.text.tpl",
		Source:   "<b>{{ name }}</b>",
		Bindings: bindings,
	})
	if err != nil {
		t.Fatalf("evaluate raw: %v", err)
	}
	if raw != "<b><Ada></b>" {
		t.Fatalf("unexpected raw output %q", raw)
	}
}

func TestEngine_EvaluateYieldIsNotEscaped(t *testing.T) {
	engine := newEngine(t)
	calls := 0

	out, err := engine.Evaluate(template.Request{
		Name:   "yield.html.tpl",
		Source: "<div>{{ yield() }}{{ yield() }}</div>",
		Bindings: map[string]any{
			"yield": section.Continuation(func(options.Options) (string, error) {
				calls++
				return fmt.Sprintf("<i>%d</i>", calls), nil
			}),
		},
		Autoescape: true,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "<div><i>1</i><i>2</i></div>" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_EvaluateYieldWithOptions(t *testing.T) {
	engine := newEngine(t)

	var seen options.Options
	out, err := engine.Evaluate(template.Request{
		Name:   "yield-opts.text.tpl",
		Source: "{{ yield(child) }}",
		Bindings: map[string]any{
			"child": map[string]any{"depth": 1},
			"yield": section.Continuation(func(opts options.Options) (string, error) {
				seen = opts
				return "ok", nil
			}),
		},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "ok" {
		t.Fatalf("unexpected output %q", out)
	}
	if seen["depth"] != 1 {
		t.Fatalf("expected depth option to reach the continuation, got %v", seen)
	}
}

func TestEngine_EvaluateYieldError(t *testing.T) {
	engine := newEngine(t)
	boom := errors.New("no subsections")

	_, err := engine.Evaluate(template.Request{
		Name:   "yield-error.text.tpl",
		Source: "{{ yield() }}",
		Bindings: map[string]any{
			"yield": section.Continuation(func(options.Options) (string, error) {
				return "", boom
			}),
		},
	})
	if err == nil || !strings.Contains(err.Error(), "no subsections") {
		t.Fatalf("expected continuation error to surface, got %v", err)
	}
}

func TestEngine_EvaluateCachesByName(t *testing.T) {
	engine := newEngine(t)

	first, err := engine.Evaluate(template.Request{Name: "cached.text.tpl", Source: "first"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	second, err := engine.Evaluate(template.Request{Name: "cached.text.tpl", Source: "second"})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if first != "first" || second != "first" {
		t.Fatalf("expected parsed template to be reused, got %q then %q", first, second)
	}

	unnamed, err := engine.Evaluate(template.Request{Source: "fresh"})
	if err != nil || unnamed != "fresh" {
		t.Fatalf("unnamed evaluate: out=%q err=%v", unnamed, err)
	}
}

func TestEngine_EvaluateDropsInvalidKeys(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.Evaluate(template.Request{
		Name:     "keys.text.tpl",
		Source:   "{{ title }}",
		Bindings: map[string]any{"title": "Pets", "template-paths": []string{"a"}},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "Pets" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_IndentFilter(t *testing.T) {
	engine := newEngine(t)

	out, err := engine.Evaluate(template.Request{
		Name:     "indent.text.tpl",
		Source:   "{{ body|indent:4 }}",
		Bindings: map[string]any{"body": "a\n\nb"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "    a\n\n    b" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_GlobalsFiltersAndStrings(t *testing.T) {
	engine := newEngine(t, gotemplate.WithGlobalData(map[string]any{
		"project": "petstore",
	}))

	err := engine.RegisterFilter("shout_docgen_test", func(input any, _ any) (any, error) {
		return fmt.Sprintf("%s!", strings.ToUpper(fmt.Sprint(input))), nil
	})
	if err != nil {
		t.Fatalf("register filter: %v", err)
	}
	if err := engine.RegisterFilter("shout_docgen_test", func(input any, _ any) (any, error) { return input, nil }); err == nil {
		t.Fatalf("expected duplicate filter registration to fail")
	}

	out, err := engine.RenderString("{{ project|shout_docgen_test }} {{ name }}", map[string]any{"name": "Ada"})
	if err != nil {
		t.Fatalf("render string: %v", err)
	}
	if out != "PETSTORE! Ada" {
		t.Fatalf("unexpected output %q", out)
	}
}

// evaluateWithin fails the test when evaluation does not return within a
// few seconds, so a lock held across a yield shows up as a failure.
func evaluateWithin(t *testing.T, engine *gotemplate.Engine, req template.Request) (string, error) {
	t.Helper()
	type result struct {
		out string
		err error
	}
	done := make(chan result, 1)
	go func() {
		out, err := engine.Evaluate(req)
		done <- result{out, err}
	}()
	select {
	case r := <-done:
		return r.out, r.err
	case <-time.After(5 * time.Second):
		t.Fatalf("evaluate %s did not return", req.Name)
		return "", nil
	}
}

func TestEngine_EvaluateReentersFromYield(t *testing.T) {
	engine := newEngine(t)

	child := section.Continuation(func(options.Options) (string, error) {
		return engine.Evaluate(template.Request{
			Name:     "item.text.tpl",
			Source:   "I{{ n }}",
			Bindings: map[string]any{"n": 1},
		})
	})

	out, err := evaluateWithin(t, engine, template.Request{
		Name:     "page.text.tpl",
		Source:   "P[{{ yield() }}{{ yield() }}]",
		Bindings: map[string]any{"yield": child},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "P[I1I1]" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestEngine_SafeHelpersAreNotEscapedTwice(t *testing.T) {
	engine := newEngine(t)
	boom := errors.New("bad level")

	bindings := map[string]any{
		"x": "a<b",
		"h": func(s string) template.Safe {
			return template.Safe(stdhtml.EscapeString(s))
		},
		"css": func() template.Safe {
			return `:root { --font: "Inter", sans-serif; }`
		},
		"tag": func(level int, s string) (template.Safe, error) {
			if level < 1 {
				return "", boom
			}
			return template.Safe(fmt.Sprintf("<h%d>%s</h%d>", level, stdhtml.EscapeString(s), level)), nil
		},
		"marked": template.Safe("<i>ok</i>"),
		"plain":  func(s string) string { return s },
	}

	out, err := engine.Evaluate(template.Request{
		Name:       "safe.html.tpl",
		Source:     "{{ h(x) }}|<style>{{ css() }}</style>|{{ tag(2, x) }}|{{ marked }}|{{ plain(x) }}",
		Bindings:   bindings,
		Autoescape: true,
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	want := `a&lt;b|<style>:root { --font: "Inter", sans-serif; }</style>|<h2>a&lt;b</h2>|<i>ok</i>|a&lt;b`
	if out != want {
		t.Fatalf("unexpected output\nwant %q\ngot  %q", want, out)
	}

	_, err = engine.Evaluate(template.Request{
		Name:       "safe-error.html.tpl",
		Source:     "{{ tag(0, x) }}",
		Bindings:   bindings,
		Autoescape: true,
	})
	if err == nil || !strings.Contains(err.Error(), "bad level") {
		t.Fatalf("expected helper error to surface, got %v", err)
	}
}

func TestEngine_IncludeFromFS(t *testing.T) {
	partials := fstest.MapFS{
		"partials/signature.txt": {Data: []byte("-- {{ name }}")},
	}
	engine := newEngine(t, gotemplate.WithFS(partials))

	out, err := engine.Evaluate(template.Request{
		Name:     "letter.text.tpl",
		Source:   `Hi {{ name }} {% include "partials/signature.txt" %}`,
		Bindings: map[string]any{"name": "Ada"},
	})
	if err != nil {
		t.Fatalf("evaluate: %v", err)
	}
	if out != "Hi Ada -- Ada" {
		t.Fatalf("unexpected output %q", out)
	}
}
