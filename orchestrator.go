// Package doctemplate renders hierarchical documents from section templates.
//
// The engine lives in pkg/render; this package offers the short path from an
// OpenAPI document to rendered reference documentation.
package doctemplate

import (
	"context"

	"github.com/goliatone/go-doctemplate/pkg/apidoc"
	pkgopenapi "github.com/goliatone/go-doctemplate/pkg/openapi"
	"github.com/goliatone/go-doctemplate/pkg/render"
)

// Request aliases apidoc.Request.
type Request = apidoc.Request

// NewGenerator exposes the apidoc generator constructor from the top-level
// module.
func NewGenerator(options ...apidoc.Option) *apidoc.Generator {
	return apidoc.New(options...)
}

// GenerateAPI loads the document at source and renders it with the built-in
// api template.
func GenerateAPI(ctx context.Context, source pkgopenapi.Source, format render.Format, options ...apidoc.Option) ([]byte, error) {
	return apidoc.New(options...).Generate(ctx, apidoc.Request{
		Source: source,
		Format: format,
	})
}

// GenerateAPIFromDocument renders a pre-loaded document, bypassing the loader.
func GenerateAPIFromDocument(ctx context.Context, doc pkgopenapi.Document, format render.Format, options ...apidoc.Option) ([]byte, error) {
	return apidoc.New(options...).Generate(ctx, apidoc.Request{
		Document: &doc,
		Format:   format,
	})
}
