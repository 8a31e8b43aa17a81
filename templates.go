package doctemplate

import (
	"io/fs"

	"github.com/goliatone/go-doctemplate/pkg/apidoc"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

// EmbeddedTemplates exposes the built-in api template tree so callers can
// copy or extend it.
func EmbeddedTemplates() fs.FS {
	return apidoc.TemplatesFS()
}

// NewRegistry returns a template registry holding the built-in templates.
func NewRegistry() (*render.Registry, error) {
	return apidoc.NewRegistry()
}
