package apidoc

import (
	"embed"
	"io/fs"

	"github.com/goliatone/go-doctemplate/pkg/render"
)

//go:embed templates
var embeddedTemplates embed.FS

// TemplatesLabel names the embedded tree in search paths.
const TemplatesLabel = "apidoc"

// TemplatesFS exposes the built-in template tree rooted at its template
// paths ("api/layout.yaml", "api/operation/layout.yaml", ...).
func TemplatesFS() fs.FS {
	sub, err := fs.Sub(embeddedTemplates, "templates")
	if err != nil {
		return embeddedTemplates
	}
	return sub
}

// NewRegistry returns a registry loaded with the built-in templates and their
// methods.
func NewRegistry() (*render.Registry, error) {
	return LoadRegistry(TemplatesLabel, TemplatesFS())
}

// LoadRegistry loads a template tree shaped like the built-in one and installs
// the api methods on it.
func LoadRegistry(label string, fsys fs.FS) (*render.Registry, error) {
	registry := render.NewRegistry()
	if err := registry.LoadFS(label, "", fsys); err != nil {
		return nil, err
	}
	InstallMethods(registry)
	return registry, nil
}
