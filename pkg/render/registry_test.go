package render_test

import (
	"context"
	"errors"
	"testing"
	"testing/fstest"

	"github.com/google/go-cmp/cmp"

	"github.com/goliatone/go-doctemplate/pkg/render"
)

func TestRegistry_RegisterAndGet(t *testing.T) {
	reg := render.NewRegistry()
	def := render.NewDefinition("api/operation", render.SearchPath{})

	if err := reg.Register(def); err != nil {
		t.Fatalf("register: %v", err)
	}
	if err := reg.Register(render.NewDefinition("/api/operation/", render.SearchPath{})); err == nil {
		t.Fatalf("expected duplicate registration to fail")
	}
	if err := reg.Register(render.NewDefinition("", render.SearchPath{})); err == nil {
		t.Fatalf("expected empty path to fail")
	}
	if err := reg.Register(nil); err == nil {
		t.Fatalf("expected nil definition to fail")
	}

	got, err := reg.Get("api/operation")
	if err != nil || got != def {
		t.Fatalf("get: def=%v err=%v", got, err)
	}
	if !reg.Has("/api/operation") {
		t.Fatalf("expected Has to normalise slashes")
	}

	_, err = reg.Get("missing")
	var lookupErr *render.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
}

func TestRegistry_LoadFSBuildsInheritedTree(t *testing.T) {
	fsys := fstest.MapFS{
		"api/layout.yaml":              {Data: []byte("sections:\n  - header\n  - [operation]\n")},
		"api/header.text.tpl":          {Data: []byte("API{{ yield }}")},
		"api/footer.text.tpl":          {Data: []byte("-end")},
		"api/operation/layout.yaml":    {Data: []byte("- title\n- footer\n")},
		"api/operation/title.text.tpl": {Data: []byte(":{{ name }}")},
	}

	reg := render.NewRegistry()
	if err := reg.LoadFS("bundle", "default", fsys); err != nil {
		t.Fatalf("load fs: %v", err)
	}

	if diff := cmp.Diff([]string{"default/api", "default/api/operation"}, reg.List()); diff != "" {
		t.Fatalf("registered paths mismatch (-want +got):\n%s", diff)
	}

	op := reg.MustGet("default/api/operation")
	if diff := cmp.Diff([]string{"bundle/api/operation", "bundle/api"}, pathNames(op.SearchPaths())); diff != "" {
		t.Fatalf("search paths mismatch (-want +got):\n%s", diff)
	}

	tpl, err := reg.Instantiate(context.Background(), "default/api/operation", render.Config{
		Format:    render.FormatText,
		Evaluator: &stubEvaluator{},
		Options:   map[string]any{"name": "listPets"},
	})
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	out, err := tpl.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != ":listPets-end" {
		t.Fatalf("unexpected output %q", out)
	}
}

func TestRegistry_LoadFSNamesRootLayoutAfterLabel(t *testing.T) {
	fsys := fstest.MapFS{
		"layout.yaml":         {Data: []byte("- body\n")},
		"body.text.tpl":       {Data: []byte("root")},
		"child/layout.yaml":   {Data: []byte("- body\n")},
		"child/body.text.tpl": {Data: []byte("child")},
	}

	reg := render.NewRegistry()
	if err := reg.LoadFS("/srv/templates/memo", "", fsys); err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if diff := cmp.Diff([]string{"child", "memo"}, reg.List()); diff != "" {
		t.Fatalf("registered paths mismatch (-want +got):\n%s", diff)
	}

	prefixed := render.NewRegistry()
	if err := prefixed.LoadFS("/srv/templates/memo", "docs", fsys); err != nil {
		t.Fatalf("load fs: %v", err)
	}
	if diff := cmp.Diff([]string{"docs", "docs/child"}, prefixed.List()); diff != "" {
		t.Fatalf("registered paths mismatch (-want +got):\n%s", diff)
	}
}

func TestRegistry_TemplateLayoutEntries(t *testing.T) {
	fsys := fstest.MapFS{
		"page/layout.yaml":     {Data: []byte("- header\n- [{ template: part }]\n")},
		"page/header.text.tpl": {Data: []byte("<{{ yield }}>")},
		"part/layout.yaml":     {Data: []byte("- body\n")},
		"part/body.text.tpl":   {Data: []byte("part")},
		"cycle/layout.yaml":    {Data: []byte("- { template: cycle }\n")},
	}
	reg := render.NewRegistry()
	if err := reg.LoadFS("mem", "", fsys); err != nil {
		t.Fatalf("load fs: %v", err)
	}
	cfg := render.Config{Format: render.FormatText, Evaluator: &stubEvaluator{}}

	tpl, err := reg.Instantiate(context.Background(), "page", cfg)
	if err != nil {
		t.Fatalf("instantiate: %v", err)
	}
	out, err := tpl.Run(context.Background(), nil, nil)
	if err != nil {
		t.Fatalf("run: %v", err)
	}
	if out != "<part>" {
		t.Fatalf("unexpected output %q", out)
	}

	_, err = reg.Instantiate(context.Background(), "cycle", cfg)
	var cfgErr *render.ConfigurationError
	if !errors.As(err, &cfgErr) {
		t.Fatalf("expected ConfigurationError for include cycle, got %v", err)
	}

	sub, err := tpl.Sub(context.Background(), "part")
	if err != nil {
		t.Fatalf("sub: %v", err)
	}
	if sub.String() != "Template(part)" {
		t.Fatalf("unexpected sub template %s", sub)
	}
}
