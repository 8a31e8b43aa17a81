package render

import (
	"fmt"
	"strings"
)

// Format selects the output format of a render. It decides which leaf files a
// template reads and which Capabilities are composed into the instance.
type Format string

const (
	FormatHTML     Format = "html"
	FormatText     Format = "text"
	FormatMarkdown Format = "markdown"
)

// LeafExtension is appended to every leaf template filename.
const LeafExtension = ".tpl"

// Formats lists the supported formats.
func Formats() []Format {
	return []Format{FormatHTML, FormatText, FormatMarkdown}
}

// ParseFormat validates a format name. Unknown or empty names return a
// *ConfigurationError.
func ParseFormat(raw string) (Format, error) {
	name := strings.ToLower(strings.TrimSpace(raw))
	if name == "" {
		return "", &ConfigurationError{Key: "format", Reason: "required"}
	}
	for _, f := range Formats() {
		if string(f) == name {
			return f, nil
		}
	}
	return "", &ConfigurationError{Key: "format", Reason: fmt.Sprintf("unsupported format %q", raw)}
}

func (f Format) String() string {
	return string(f)
}

// LeafFilename returns the leaf template filename for a section, e.g.
// "header.html.tpl".
func (f Format) LeafFilename(sectionName string) string {
	return sectionName + "." + string(f) + LeafExtension
}

// Capabilities is the helper set attached to a template instance for one
// output format. Helpers are exposed to leaf templates as bindings.
type Capabilities interface {
	Format() Format
	Helpers() map[string]any
	// Autoescape reports whether leaf output should be HTML escaped.
	Autoescape() bool
}

type plainCapabilities struct {
	format Format
}

func (c plainCapabilities) Format() Format          { return c.format }
func (c plainCapabilities) Helpers() map[string]any { return nil }
func (c plainCapabilities) Autoescape() bool        { return c.format == FormatHTML }
