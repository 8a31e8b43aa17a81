package apidoc

import (
	"github.com/goliatone/go-doctemplate/pkg/formats/html"
	"github.com/goliatone/go-doctemplate/pkg/openapi"
	"github.com/goliatone/go-doctemplate/pkg/options"
)

// SpecOptions converts a Spec into the options the api template renders:
//
//	title, version, description  info fields
//	servers                      []string
//	operations                   []map[string]any, see OperationOptions
//	tags                         []map[string]any with name, description and operations
func SpecOptions(spec openapi.Spec) options.Options {
	ops := make([]map[string]any, 0, len(spec.Operations))
	byTag := make(map[string][]map[string]any)
	for _, op := range spec.Operations {
		converted := OperationOptions(op)
		ops = append(ops, converted)
		for _, tag := range op.Tags {
			byTag[tag] = append(byTag[tag], converted)
		}
	}

	tags := make([]map[string]any, 0, len(spec.Tags))
	for _, tag := range spec.Tags {
		tags = append(tags, map[string]any{
			"name":        tag.Name,
			"description": tag.Description,
			"operations":  byTag[tag.Name],
		})
	}

	return options.Options{
		"title":       spec.Title,
		"version":     spec.Version,
		"description": spec.Description,
		"servers":     append([]string(nil), spec.Servers...),
		"operations":  ops,
		"tags":        tags,
	}
}

// OperationOptions converts one operation into the value bound as
// "operation" in the api/operation template.
func OperationOptions(op openapi.Operation) map[string]any {
	params := make([]map[string]any, 0, len(op.Parameters))
	for _, p := range op.Parameters {
		params = append(params, map[string]any{
			"name":        p.Name,
			"location":    p.In,
			"required":    p.Required,
			"description": p.Description,
			"type":        p.Schema.TypeName(),
		})
	}

	responses := make([]map[string]any, 0, len(op.Responses))
	for _, r := range op.Responses {
		responses = append(responses, map[string]any{
			"status":       r.Status,
			"description":  r.Description,
			"content_type": r.ContentType,
			"type":         r.Schema.TypeName(),
			"fields":       fieldOptions(r.Schema),
		})
	}

	var body map[string]any
	if op.RequestBody != nil {
		body = map[string]any{
			"description":  op.RequestBody.Description,
			"required":     op.RequestBody.Required,
			"content_type": op.RequestBody.ContentType,
			"type":         op.RequestBody.Schema.TypeName(),
			"fields":       fieldOptions(op.RequestBody.Schema),
		}
	}

	title := op.Method + " " + op.Path
	return map[string]any{
		"id":           op.ID,
		"key":          op.Key(),
		"title":        title,
		"anchor":       html.Anchor(op.Key()),
		"method":       op.Method,
		"path":         op.Path,
		"summary":      op.Summary,
		"description":  op.Description,
		"tags":         append([]string(nil), op.Tags...),
		"deprecated":   op.Deprecated,
		"parameters":   params,
		"request_body": body,
		"responses":    responses,
	}
}

// fieldOptions lists the fields of an object schema, or of the items of an
// array schema.
func fieldOptions(schema openapi.Schema) []map[string]any {
	fields := schema.Fields
	if len(fields) == 0 && schema.Items != nil {
		fields = schema.Items.Fields
	}
	out := make([]map[string]any, 0, len(fields))
	for _, f := range fields {
		out = append(out, map[string]any{
			"name":        f.Name,
			"required":    f.Required,
			"type":        f.Schema.TypeName(),
			"description": f.Schema.Description,
		})
	}
	return out
}
