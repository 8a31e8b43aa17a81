// Package text provides the capability set shared by the plain text and
// markdown formats.
package text

import (
	"fmt"
	"strings"

	"github.com/mitchellh/go-wordwrap"

	"github.com/goliatone/go-doctemplate/pkg/render"
)

// DefaultWidth is the wrap width used when none is configured.
const DefaultWidth = 80

// Option customises the text capability set.
type Option func(*Capabilities)

// WithWidth sets the default wrap width. Zero keeps DefaultWidth.
func WithWidth(width uint) Option {
	return func(c *Capabilities) {
		if width > 0 {
			c.width = width
		}
	}
}

// Capabilities implements render.Capabilities for render.FormatText and
// render.FormatMarkdown.
type Capabilities struct {
	format render.Format
	width  uint
}

var _ render.Capabilities = (*Capabilities)(nil)

// New builds the capability set for a non HTML format.
func New(format render.Format, opts ...Option) (*Capabilities, error) {
	if format != render.FormatText && format != render.FormatMarkdown {
		return nil, &render.ConfigurationError{
			Key:    "format",
			Reason: fmt.Sprintf("text capabilities do not support %q", format),
		}
	}
	caps := &Capabilities{format: format, width: DefaultWidth}
	for _, opt := range opts {
		if opt != nil {
			opt(caps)
		}
	}
	return caps, nil
}

func (c *Capabilities) Format() render.Format { return c.format }

func (c *Capabilities) Autoescape() bool { return false }

// Width returns the default wrap width.
func (c *Capabilities) Width() uint { return c.width }

// Helpers exposes wrap, indent, rule, heading and code.
func (c *Capabilities) Helpers() map[string]any {
	return map[string]any{
		"wrap":    c.Wrap,
		"indent":  Indent,
		"rule":    Rule,
		"heading": c.Heading,
		"code":    c.Code,
	}
}

// Wrap word-wraps s. A width of zero or less uses the configured width.
func (c *Capabilities) Wrap(s string, width int) string {
	w := c.width
	if width > 0 {
		w = uint(width)
	}
	return wordwrap.WrapString(s, w)
}

// Indent prefixes every non-blank line of s with n spaces.
func Indent(s string, n int) string {
	if n <= 0 {
		return s
	}
	pad := strings.Repeat(" ", n)
	lines := strings.Split(s, "\n")
	for i, line := range lines {
		if strings.TrimSpace(line) != "" {
			lines[i] = pad + line
		}
	}
	return strings.Join(lines, "\n")
}

// Rule returns a horizontal rule of n dashes.
func Rule(n int) string {
	if n <= 0 {
		return ""
	}
	return strings.Repeat("-", n)
}

// Heading renders a heading of the given level. Markdown uses '#' prefixes;
// plain text underlines level 1 with '=' and deeper levels with '-'.
func (c *Capabilities) Heading(level int, title string) string {
	if level < 1 {
		level = 1
	}
	title = strings.TrimSpace(title)
	if c.format == render.FormatMarkdown {
		return strings.Repeat("#", level) + " " + title
	}
	underline := "-"
	if level == 1 {
		underline = "="
	}
	return title + "\n" + strings.Repeat(underline, len([]rune(title)))
}

// Code marks s as inline code in markdown and returns it unchanged in text.
func (c *Capabilities) Code(s string) string {
	if c.format != render.FormatMarkdown {
		return s
	}
	fence := "`"
	if strings.Contains(s, "`") {
		fence = "``"
	}
	return fence + s + fence
}
