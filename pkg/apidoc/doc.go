// Package apidoc renders reference documentation for an OpenAPI document.
//
// The Generator loads and parses the document, turns it into render options
// and runs a section template over them. The built-in "api" template tree is
// embedded (see TemplatesFS): "api" renders the whole document and
// "api/operation" renders a single operation. Both support the html, text and
// markdown formats.
package apidoc
