// Package formats selects the capability set for an output format.
package formats

import (
	theme "github.com/goliatone/go-theme"

	"github.com/goliatone/go-doctemplate/pkg/formats/html"
	"github.com/goliatone/go-doctemplate/pkg/formats/text"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

// Settings carries the per-format knobs. Fields that do not apply to the
// selected format are ignored.
type Settings struct {
	Theme *theme.RendererConfig
	Width uint
}

// For returns the capability set for format.
func For(format render.Format, settings Settings) (render.Capabilities, error) {
	switch format {
	case render.FormatHTML:
		return html.New(html.WithTheme(settings.Theme)), nil
	case render.FormatText, render.FormatMarkdown:
		return text.New(format, text.WithWidth(settings.Width))
	default:
		_, err := render.ParseFormat(string(format))
		return nil, err
	}
}

// Parse combines render.ParseFormat and For.
func Parse(name string, settings Settings) (render.Capabilities, error) {
	format, err := render.ParseFormat(name)
	if err != nil {
		return nil, err
	}
	return For(format, settings)
}
