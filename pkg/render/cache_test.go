package render_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-doctemplate/pkg/render"
)

func TestContentCache_LooksUpOncePerKey(t *testing.T) {
	root := memPath("mem", map[string]string{"item.text.tpl": "I"})
	def := render.NewDefinition("doc", root)
	cache := render.NewContentCache("doc", render.FormatText.LeafFilename)

	calls := 0
	var requested []string
	lookup := func(basename string) (render.File, bool) {
		calls++
		requested = append(requested, basename)
		return def.Locate(basename)
	}

	for i := 0; i < 2; i++ {
		got, err := cache.Get("item", lookup)
		if err != nil {
			t.Fatalf("get #%d: %v", i, err)
		}
		if got != "I" {
			t.Fatalf("get #%d: expected %q, got %q", i, "I", got)
		}
	}

	if calls != 1 {
		t.Fatalf("expected a single lookup, got %d", calls)
	}
	if requested[0] != "item.text.tpl" {
		t.Fatalf("unexpected filename %q", requested[0])
	}

	origin, ok := cache.Origin("item")
	if !ok {
		t.Fatalf("expected origin for cached key")
	}
	if origin.Path() != "mem/item.text.tpl" {
		t.Fatalf("unexpected origin %q", origin.Path())
	}
	if cache.Len() != 1 {
		t.Fatalf("expected one entry, got %d", cache.Len())
	}
}

func TestContentCache_MissingFile(t *testing.T) {
	cache := render.NewContentCache("doc", render.FormatHTML.LeafFilename)

	_, err := cache.Get("missing", func(string) (render.File, bool) {
		return render.File{}, false
	})

	var lookupErr *render.LookupError
	if !errors.As(err, &lookupErr) {
		t.Fatalf("expected LookupError, got %v", err)
	}
	if lookupErr.Name != "missing.html.tpl" || lookupErr.Template != "doc" {
		t.Fatalf("unexpected lookup error %+v", lookupErr)
	}
	if _, ok := cache.Origin("missing"); ok {
		t.Fatalf("failed lookups must not be cached")
	}
}
