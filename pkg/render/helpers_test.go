package render_test

import (
	"context"
	"fmt"
	"regexp"
	"testing"
	"testing/fstest"

	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
	"github.com/goliatone/go-doctemplate/pkg/section"
)

var placeholder = regexp.MustCompile(`\{\{\s*([a-z_]+)\s*\}\}`)

// stubEvaluator replaces {{ name }} with the binding of that name, calling
// continuations in place.
type stubEvaluator struct {
	requests []template.Request
}

func (e *stubEvaluator) Evaluate(req template.Request) (string, error) {
	e.requests = append(e.requests, req)

	var firstErr error
	out := placeholder.ReplaceAllStringFunc(req.Source, func(match string) string {
		key := placeholder.FindStringSubmatch(match)[1]
		switch v := req.Bindings[key].(type) {
		case section.Continuation:
			text, err := v(nil)
			if err != nil && firstErr == nil {
				firstErr = err
			}
			return text
		case nil:
			return ""
		default:
			return fmt.Sprint(v)
		}
	})
	if firstErr != nil {
		return "", firstErr
	}
	return out, nil
}

func memPath(name string, files map[string]string) render.SearchPath {
	fsys := fstest.MapFS{}
	for file, body := range files {
		fsys[file] = &fstest.MapFile{Data: []byte(body)}
	}
	return render.FSPath(name, fsys)
}

func textConfig(eval template.Evaluator) render.Config {
	return render.Config{Format: render.FormatText, Evaluator: eval}
}

func mustInstantiate(t *testing.T, def *render.Definition, cfg render.Config) *render.Template {
	t.Helper()
	tpl, err := def.Instantiate(context.Background(), cfg)
	if err != nil {
		t.Fatalf("instantiate %s: %v", def.Path, err)
	}
	return tpl
}

func mustNames(t *testing.T, def *render.Definition, entries ...any) section.List {
	t.Helper()
	list, err := def.Names(entries...)
	if err != nil {
		t.Fatalf("names: %v", err)
	}
	return list
}

func constant(text string) render.Method {
	return func(context.Context, *render.Template, render.RenderContext, section.Continuation) (string, error) {
		return text, nil
	}
}
