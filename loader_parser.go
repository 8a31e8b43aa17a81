package doctemplate

import (
	internalLoader "github.com/goliatone/go-doctemplate/internal/openapi/loader"
	internalParser "github.com/goliatone/go-doctemplate/internal/openapi/parser"
	pkgopenapi "github.com/goliatone/go-doctemplate/pkg/openapi"
)

// NewLoader constructs an OpenAPI loader while keeping the concrete type
// hidden from consumers.
func NewLoader(options ...pkgopenapi.LoaderOption) pkgopenapi.Loader {
	return internalLoader.New(pkgopenapi.NewLoaderOptions(options...))
}

// NewParser constructs the kin-openapi backed parser.
func NewParser(options ...pkgopenapi.ParserOption) pkgopenapi.Parser {
	return internalParser.New(pkgopenapi.NewParserOptions(options...))
}
