// Package parser normalises OpenAPI documents with kin-openapi.
package parser

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-doctemplate/pkg/openapi"
)

// Parser implements pkgopenapi.Parser.
type Parser struct {
	options pkgopenapi.ParserOptions
}

var _ pkgopenapi.Parser = (*Parser)(nil)

// New constructs a Parser with the given options.
func New(options pkgopenapi.ParserOptions) *Parser {
	return &Parser{options: options}
}

// Parse loads the document and returns its documentation view. Operations are
// sorted by path and method.
func (p *Parser) Parse(ctx context.Context, doc pkgopenapi.Document) (pkgopenapi.Spec, error) {
	if err := ctx.Err(); err != nil {
		return pkgopenapi.Spec{}, err
	}
	raw := doc.Raw()
	if len(raw) == 0 {
		return pkgopenapi.Spec{}, errors.New("openapi parser: document payload is empty")
	}

	loader := openapi3.NewLoader()
	loader.Context = ctx
	loader.IsExternalRefsAllowed = p.options.AllowExternalRefs

	spec, err := loader.LoadFromData(raw)
	if err != nil {
		return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: load document: %w", err)
	}
	if p.options.Validate {
		if err := spec.Validate(ctx, openapi3.DisableExamplesValidation()); err != nil {
			return pkgopenapi.Spec{}, fmt.Errorf("openapi parser: validate: %w", err)
		}
	}

	out := pkgopenapi.Spec{}
	if spec.Info != nil {
		out.Title = spec.Info.Title
		out.Version = spec.Info.Version
		out.Description = spec.Info.Description
	}
	for _, server := range spec.Servers {
		if server != nil && server.URL != "" {
			out.Servers = append(out.Servers, server.URL)
		}
	}
	for _, tag := range spec.Tags {
		if tag != nil {
			out.Tags = append(out.Tags, pkgopenapi.Tag{Name: tag.Name, Description: tag.Description})
		}
	}

	if spec.Paths != nil {
		for path, item := range spec.Paths.Map() {
			if item == nil {
				continue
			}
			for method, operation := range item.Operations() {
				if operation == nil {
					continue
				}
				if operation.Deprecated && !p.options.IncludeDeprecated {
					continue
				}
				out.Operations = append(out.Operations, convertOperation(method, path, item, operation))
			}
		}
	}
	pkgopenapi.SortOperations(out.Operations)
	out.Tags = mergeTags(out.Tags, out.Operations)

	return out, nil
}

func convertOperation(method, path string, item *openapi3.PathItem, operation *openapi3.Operation) pkgopenapi.Operation {
	op := pkgopenapi.Operation{
		ID:          operation.OperationID,
		Method:      strings.ToUpper(method),
		Path:        path,
		Summary:     operation.Summary,
		Description: operation.Description,
		Tags:        append([]string(nil), operation.Tags...),
		Deprecated:  operation.Deprecated,
		Parameters:  convertParameters(item.Parameters, operation.Parameters),
		RequestBody: convertRequestBody(operation.RequestBody),
		Responses:   convertResponses(operation.Responses),
	}
	return op
}

// convertParameters merges path level parameters with operation parameters.
// An operation parameter overrides a path parameter with the same name and
// location.
func convertParameters(pathParams, opParams openapi3.Parameters) []pkgopenapi.Parameter {
	var out []pkgopenapi.Parameter
	index := make(map[string]int)
	for _, refs := range []openapi3.Parameters{pathParams, opParams} {
		for _, ref := range refs {
			if ref == nil || ref.Value == nil {
				continue
			}
			param := pkgopenapi.Parameter{
				Name:        ref.Value.Name,
				In:          ref.Value.In,
				Required:    ref.Value.Required,
				Description: ref.Value.Description,
				Schema:      convertSchema(ref.Value.Schema),
			}
			key := param.In + ":" + param.Name
			if i, ok := index[key]; ok {
				out[i] = param
				continue
			}
			index[key] = len(out)
			out = append(out, param)
		}
	}
	return out
}

var preferredMediaTypes = []string{
	"application/json",
	"application/x-www-form-urlencoded",
	"multipart/form-data",
}

func pickContent(content openapi3.Content) (string, *openapi3.MediaType) {
	if len(content) == 0 {
		return "", nil
	}
	for _, name := range preferredMediaTypes {
		if mt, ok := content[name]; ok {
			return name, mt
		}
	}
	names := make([]string, 0, len(content))
	for name := range content {
		names = append(names, name)
	}
	sort.Strings(names)
	return names[0], content[names[0]]
}

func convertRequestBody(ref *openapi3.RequestBodyRef) *pkgopenapi.Body {
	if ref == nil {
		return nil
	}
	if ref.Value == nil {
		return &pkgopenapi.Body{Schema: pkgopenapi.Schema{Ref: ref.Ref}}
	}
	body := &pkgopenapi.Body{
		Description: ref.Value.Description,
		Required:    ref.Value.Required,
	}
	if name, mt := pickContent(ref.Value.Content); mt != nil {
		body.ContentType = name
		body.Schema = convertSchema(mt.Schema)
	}
	return body
}

func convertResponses(responses *openapi3.Responses) []pkgopenapi.Response {
	if responses == nil || responses.Len() == 0 {
		return nil
	}
	statuses := make([]string, 0, responses.Len())
	for status := range responses.Map() {
		statuses = append(statuses, status)
	}
	sort.Strings(statuses)

	out := make([]pkgopenapi.Response, 0, len(statuses))
	for _, status := range statuses {
		ref := responses.Value(status)
		if ref == nil {
			continue
		}
		resp := pkgopenapi.Response{Status: status}
		if ref.Value == nil {
			resp.Schema = pkgopenapi.Schema{Ref: ref.Ref}
			out = append(out, resp)
			continue
		}
		if ref.Value.Description != nil {
			resp.Description = *ref.Value.Description
		}
		if name, mt := pickContent(ref.Value.Content); mt != nil {
			resp.ContentType = name
			resp.Schema = convertSchema(mt.Schema)
		}
		out = append(out, resp)
	}
	return out
}

// mergeTags appends tags used by operations but not declared at the top
// level, in first-use order.
func mergeTags(declared []pkgopenapi.Tag, ops []pkgopenapi.Operation) []pkgopenapi.Tag {
	seen := make(map[string]bool, len(declared))
	for _, tag := range declared {
		seen[tag.Name] = true
	}
	for _, op := range ops {
		for _, name := range op.Tags {
			if !seen[name] {
				seen[name] = true
				declared = append(declared, pkgopenapi.Tag{Name: name})
			}
		}
	}
	return declared
}
