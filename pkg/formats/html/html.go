// Package html provides the HTML capability set: sanitising helpers backed by
// bluemonday and theme helpers backed by go-theme.
package html

import (
	stdhtml "html"
	"sort"
	"strings"
	"sync"

	theme "github.com/goliatone/go-theme"
	"github.com/microcosm-cc/bluemonday"

	"github.com/goliatone/go-doctemplate/pkg/render"
	"github.com/goliatone/go-doctemplate/pkg/render/template"
)

// Option customises the HTML capability set.
type Option func(*Capabilities)

// WithTheme attaches a resolved go-theme configuration. Its tokens, CSS
// variables and asset resolver become template helpers.
func WithTheme(cfg *theme.RendererConfig) Option {
	return func(c *Capabilities) {
		c.theme = cfg
	}
}

// WithPolicy replaces the policy used by the sanitize helper.
func WithPolicy(policy *bluemonday.Policy) Option {
	return func(c *Capabilities) {
		if policy != nil {
			c.policy = policy
		}
	}
}

// Capabilities implements render.Capabilities for render.FormatHTML.
type Capabilities struct {
	policy *bluemonday.Policy
	theme  *theme.RendererConfig
}

var _ render.Capabilities = (*Capabilities)(nil)

var (
	stripOnce   sync.Once
	stripPolicy *bluemonday.Policy
)

// New builds the HTML capability set. The default sanitize policy is
// bluemonday's UGC policy.
func New(opts ...Option) *Capabilities {
	caps := &Capabilities{policy: bluemonday.UGCPolicy()}
	for _, opt := range opts {
		if opt != nil {
			opt(caps)
		}
	}
	return caps
}

func (c *Capabilities) Format() render.Format { return render.FormatHTML }

func (c *Capabilities) Autoescape() bool { return true }

// Theme returns the attached theme configuration, if any.
func (c *Capabilities) Theme() *theme.RendererConfig { return c.theme }

// Helpers exposes the following. h, sanitize, strip and theme_css return
// template.Safe, so their output is not escaped a second time.
//
//	h(s)          escape s
//	sanitize(s)   keep safe markup in s
//	strip(s)      drop all markup from s
//	anchor(s)     fragment identifier derived from s
//	asset(key)    theme asset URL
//	theme_css()   :root block with the theme CSS variables
//	theme         name, variant and tokens of the theme
func (c *Capabilities) Helpers() map[string]any {
	return map[string]any{
		"h":         Escape,
		"sanitize":  c.Sanitize,
		"strip":     Strip,
		"anchor":    Anchor,
		"asset":     c.Asset,
		"theme_css": c.ThemeCSS,
		"theme":     c.themeData(),
	}
}

// Escape escapes HTML special characters.
func Escape(s string) template.Safe {
	return template.Safe(stdhtml.EscapeString(s))
}

// Sanitize removes unsafe markup from s.
func (c *Capabilities) Sanitize(s string) template.Safe {
	trimmed := strings.TrimSpace(s)
	if trimmed == "" {
		return ""
	}
	return template.Safe(strings.TrimSpace(c.policy.Sanitize(trimmed)))
}

// Strip removes every tag from s, keeping its text escaped.
func Strip(s string) template.Safe {
	stripOnce.Do(func() {
		stripPolicy = bluemonday.StrictPolicy()
	})
	return template.Safe(strings.TrimSpace(stripPolicy.Sanitize(s)))
}

// Anchor turns a title into a lowercase, dash separated fragment identifier.
func Anchor(s string) string {
	var b strings.Builder
	dash := false
	for _, r := range strings.ToLower(string(Strip(s))) {
		switch {
		case r >= 'a' && r <= 'z', r >= '0' && r <= '9':
			b.WriteRune(r)
			dash = false
		case b.Len() > 0 && !dash:
			b.WriteByte('-')
			dash = true
		}
	}
	return strings.TrimSuffix(b.String(), "-")
}

// Asset resolves a theme asset key to a URL. Without a theme it returns "".
func (c *Capabilities) Asset(key string) string {
	if c.theme == nil || c.theme.AssetURL == nil {
		return ""
	}
	return c.theme.AssetURL(strings.TrimSpace(key))
}

// ThemeCSS renders the theme CSS variables as a :root rule sorted by
// variable name. Names without a leading "--" get one; when both spellings of
// a name are set, the "--" spelling wins.
func (c *Capabilities) ThemeCSS() template.Safe {
	if c.theme == nil || len(c.theme.CSSVars) == 0 {
		return ""
	}
	vars := make(map[string]string, len(c.theme.CSSVars))
	for key, value := range c.theme.CSSVars {
		name := strings.TrimSpace(key)
		if name == "" || name == "--" {
			continue
		}
		if !strings.HasPrefix(name, "--") {
			name = "--" + name
			if _, explicit := c.theme.CSSVars[name]; explicit {
				continue
			}
		}
		vars[name] = value
	}
	names := make([]string, 0, len(vars))
	for name := range vars {
		names = append(names, name)
	}
	sort.Strings(names)

	var b strings.Builder
	b.WriteString(":root {")
	for _, name := range names {
		b.WriteString(" ")
		b.WriteString(name)
		b.WriteString(": ")
		b.WriteString(vars[name])
		b.WriteString(";")
	}
	b.WriteString(" }")
	return template.Safe(b.String())
}

func (c *Capabilities) themeData() map[string]any {
	if c.theme == nil {
		return map[string]any{}
	}
	tokens := make(map[string]string, len(c.theme.Tokens))
	for key, value := range c.theme.Tokens {
		tokens[key] = value
	}
	return map[string]any{
		"name":    c.theme.Theme,
		"variant": c.theme.Variant,
		"tokens":  tokens,
	}
}
