package render_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

type pathSet []render.SearchPath

func (p pathSet) SearchPaths() []render.SearchPath { return p }

func pathNames(paths []render.SearchPath) []string {
	out := make([]string, 0, len(paths))
	for _, p := range paths {
		out = append(out, p.Name)
	}
	return out
}

func TestDefinition_SearchPathsDeduplicatesInOrder(t *testing.T) {
	p1 := memPath("p1", nil)
	p2 := memPath("p2", nil)
	p3 := memPath("p3", nil)

	def := render.NewDefinition("own", memPath("own", nil), pathSet{p1, p2}, pathSet{p2, p3})

	want := []string{"own", "p1", "p2", "p3"}
	if diff := cmp.Diff(want, pathNames(def.SearchPaths())); diff != "" {
		t.Fatalf("search paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDefinition_SearchPathsThroughIncludedDefinitions(t *testing.T) {
	base := render.NewDefinition("base", memPath("base", nil))
	mid := render.NewDefinition("mid", memPath("mid", nil), base)
	top := render.NewDefinition("top", memPath("top", nil), mid, base)

	want := []string{"top", "mid", "base"}
	if diff := cmp.Diff(want, pathNames(top.SearchPaths())); diff != "" {
		t.Fatalf("search paths mismatch (-want +got):\n%s", diff)
	}
}

func TestDefinition_LocateFirstMatchWins(t *testing.T) {
	base := render.NewDefinition("base", memPath("base", map[string]string{
		"header.text.tpl": "base header",
		"footer.text.tpl": "base footer",
	}))
	top := render.NewDefinition("top", memPath("top", map[string]string{
		"header.text.tpl": "top header",
	}), base)

	file, ok := top.Locate("header.text.tpl")
	if !ok || file.Path() != "top/header.text.tpl" {
		t.Fatalf("expected top header, got %+v (found=%v)", file, ok)
	}
	file, ok = top.Locate("footer.text.tpl")
	if !ok || file.Path() != "base/footer.text.tpl" {
		t.Fatalf("expected base footer, got %+v (found=%v)", file, ok)
	}
	if _, ok := top.Locate("nope.text.tpl"); ok {
		t.Fatalf("expected missing file")
	}
	if _, ok := top.Locate("../escape"); ok {
		t.Fatalf("expected invalid path to be rejected")
	}
}

func TestDefinition_MethodsResolveThroughIncludes(t *testing.T) {
	base := render.NewDefinition("base", render.SearchPath{}).
		HandleMethod("title", constant("base title")).
		HandleMethod("footer", constant("base footer"))
	top := render.NewDefinition("top", render.SearchPath{}, base).
		HandleMethod("title", constant("top title"))

	tpl := mustInstantiate(t, top, textConfig(nil))
	out, err := tpl.RunSections(context.Background(), nil, mustNames(t, top, "title", "footer"), nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "top titlebase footer" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestDefinition_InstantiateConfigurationErrors(t *testing.T) {
	def := render.NewDefinition("doc", render.SearchPath{})

	cases := map[string]render.Config{
		"missing format":  {},
		"unknown format":  {Format: "pdf"},
		"unknown option":  {Options: map[string]any{"format": "rtf"}},
		"caps mismatched": {Format: render.FormatText, Capabilities: stubCaps{format: render.FormatHTML}},
	}
	for name, cfg := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := def.Instantiate(context.Background(), cfg)
			var cfgErr *render.ConfigurationError
			if !errors.As(err, &cfgErr) {
				t.Fatalf("expected ConfigurationError, got %v", err)
			}
		})
	}
}

func TestDefinition_InstantiateFormatFromOptions(t *testing.T) {
	def := render.NewDefinition("doc", render.SearchPath{})
	tpl := mustInstantiate(t, def, render.Config{Options: map[string]any{"format": "HTML", "title": "x"}})

	if tpl.Format() != render.FormatHTML {
		t.Fatalf("expected html format, got %q", tpl.Format())
	}
	want := map[string]any{"format": "html", "title": "x"}
	if diff := cmp.Diff(want, map[string]any(tpl.Options())); diff != "" {
		t.Fatalf("options mismatch (-want +got):\n%s", diff)
	}
	if !tpl.Capabilities().Autoescape() {
		t.Fatalf("expected html default capabilities to autoescape")
	}
}

func TestLoadDefinition_ReadsLayout(t *testing.T) {
	root := render.FSPath("mem", fstest.MapFS{
		"layout.yaml":     {Data: []byte("sections:\n  - header\n  - [item]\n")},
		"item.text.tpl":   {Data: []byte("I")},
		"header.text.tpl": {Data: []byte("H{{ yield }}")},
	})

	def, err := render.LoadDefinition("doc", root)
	if err != nil {
		t.Fatalf("load definition: %v", err)
	}

	tpl := mustInstantiate(t, def, textConfig(&stubEvaluator{}))
	want := section.List{section.File("header"), section.List{section.File("item")}}
	if diff := cmp.Diff(want, tpl.Sections()); diff != "" {
		t.Fatalf("sections mismatch (-want +got):\n%s", diff)
	}

	out, err := tpl.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "HI" {
		t.Fatalf("expected %q, got %q", "HI", out)
	}
}

func TestLoadDefinition_InvalidLayout(t *testing.T) {
	root := render.FSPath("mem", fstest.MapFS{
		"layout.yaml": {Data: []byte("- [orphan]\n")},
	})

	_, err := render.LoadDefinition("doc", root)
	var cfgErr *render.ConfigurationError
	if !errors.As(err, &cfgErr) || !errors.Is(err, section.ErrInvalidLayout) {
		t.Fatalf("expected ConfigurationError wrapping ErrInvalidLayout, got %v", err)
	}
}

func TestDefinition_SetupHookRuns(t *testing.T) {
	def := render.NewDefinition("doc", render.SearchPath{})
	def.Setup = func(_ context.Context, tpl *render.Template) error {
		return tpl.SetSections(section.List{section.Literal("from setup")})
	}

	tpl := mustInstantiate(t, def, textConfig(nil))
	out, err := tpl.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "from setup" {
		t.Fatalf("unexpected output %q", out)
	}
}

type stubCaps struct {
	format  render.Format
	helpers map[string]any
}

func (c stubCaps) Format() render.Format   { return c.format }
func (c stubCaps) Helpers() map[string]any { return c.helpers }
func (c stubCaps) Autoescape() bool        { return false }
