package text_test

import (
	"errors"
	"testing"

	"github.com/goliatone/go-doctemplate/pkg/formats/text"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

func mustNew(t *testing.T, format render.Format, opts ...text.Option) *text.Capabilities {
	t.Helper()
	caps, err := text.New(format, opts...)
	if err != nil {
		t.Fatalf("new: %v", err)
	}
	return caps
}

func TestNew_RejectsHTML(t *testing.T) {
	_, err := text.New(render.FormatHTML)
	var cfgErr *render.ConfigurationError
	if !errors.As(err, &cfgErr) || cfgErr.Key != "format" {
		t.Fatalf("expected format configuration error, got %v", err)
	}
}

func TestCapabilities_Contract(t *testing.T) {
	for _, format := range []render.Format{render.FormatText, render.FormatMarkdown} {
		caps := mustNew(t, format)
		if caps.Format() != format {
			t.Fatalf("format mismatch: want %s got %s", format, caps.Format())
		}
		if caps.Autoescape() {
			t.Fatalf("%s must not autoescape", format)
		}
		if caps.Width() != text.DefaultWidth {
			t.Fatalf("unexpected default width %d", caps.Width())
		}
	}
}

func TestCapabilities_Wrap(t *testing.T) {
	caps := mustNew(t, render.FormatText, text.WithWidth(10))

	if got := caps.Wrap("list all pets in the store", 0); got != "list all\npets in\nthe store" {
		t.Fatalf("unexpected wrap %q", got)
	}
	if got := caps.Wrap("list all pets", 20); got != "list all pets" {
		t.Fatalf("explicit width not honoured, got %q", got)
	}
}

func TestIndentAndRule(t *testing.T) {
	if got := text.Indent("a\n\nb", 2); got != "  a\n\n  b" {
		t.Fatalf("unexpected indent %q", got)
	}
	if got := text.Indent("a", 0); got != "a" {
		t.Fatalf("zero indent should be identity, got %q", got)
	}
	if got := text.Rule(3); got != "---" {
		t.Fatalf("unexpected rule %q", got)
	}
}

func TestCapabilities_HeadingAndCode(t *testing.T) {
	md := mustNew(t, render.FormatMarkdown)
	if got := md.Heading(2, "Pets"); got != "## Pets" {
		t.Fatalf("unexpected markdown heading %q", got)
	}
	if got := md.Code("GET /pets"); got != "`GET /pets`" {
		t.Fatalf("unexpected markdown code %q", got)
	}

	plain := mustNew(t, render.FormatText)
	if got := plain.Heading(1, "Pets"); got != "Pets\n====" {
		t.Fatalf("unexpected text heading %q", got)
	}
	if got := plain.Heading(3, "Pets"); got != "Pets\n----" {
		t.Fatalf("unexpected text heading %q", got)
	}
	if got := plain.Code("GET /pets"); got != "GET /pets" {
		t.Fatalf("text code should be unchanged, got %q", got)
	}
}
