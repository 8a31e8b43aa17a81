package parser

import (
	"sort"
	"strings"

	"github.com/getkin/kin-openapi/openapi3"

	pkgopenapi "github.com/goliatone/go-doctemplate/pkg/openapi"
)

// maxSchemaDepth bounds expansion of deeply nested inline schemas.
const maxSchemaDepth = 8

func convertSchema(ref *openapi3.SchemaRef) pkgopenapi.Schema {
	return newConverter().convert(ref, 0)
}

// converter tracks the $refs being expanded so recursive schemas stop at the
// second visit and keep only their reference.
type converter struct {
	active map[string]bool
}

func newConverter() *converter {
	return &converter{active: make(map[string]bool)}
}

func (c *converter) convert(ref *openapi3.SchemaRef, depth int) pkgopenapi.Schema {
	if ref == nil {
		return pkgopenapi.Schema{}
	}
	if ref.Value == nil {
		return pkgopenapi.Schema{Ref: ref.Ref}
	}
	src := ref.Value
	schema := pkgopenapi.Schema{
		Ref:         ref.Ref,
		Type:        schemaType(src.Type),
		Format:      src.Format,
		Description: src.Description,
	}
	if len(src.Enum) > 0 {
		schema.Enum = append([]any(nil), src.Enum...)
	}

	if ref.Ref != "" {
		if c.active[ref.Ref] {
			return schema
		}
		c.active[ref.Ref] = true
		defer delete(c.active, ref.Ref)
	}
	if depth >= maxSchemaDepth {
		return schema
	}

	if src.Items != nil {
		items := c.convert(src.Items, depth+1)
		schema.Items = &items
	}

	var fields []pkgopenapi.Field
	for _, part := range src.AllOf {
		merged := c.convert(part, depth+1)
		if schema.Type == "" {
			schema.Type = merged.Type
		}
		if schema.Description == "" {
			schema.Description = merged.Description
		}
		fields = mergeFields(fields, merged.Fields)
	}

	required := make(map[string]bool, len(src.Required))
	for _, name := range src.Required {
		required[name] = true
	}
	schema.Fields = mergeFields(fields, c.fields(src.Properties, required, depth))
	return schema
}

func (c *converter) fields(props openapi3.Schemas, required map[string]bool, depth int) []pkgopenapi.Field {
	if len(props) == 0 {
		return nil
	}
	names := make([]string, 0, len(props))
	for name := range props {
		names = append(names, name)
	}
	sort.Strings(names)

	out := make([]pkgopenapi.Field, 0, len(names))
	for _, name := range names {
		out = append(out, pkgopenapi.Field{
			Name:     name,
			Required: required[name],
			Schema:   c.convert(props[name], depth+1),
		})
	}
	return out
}

// mergeFields appends extra to base, replacing base fields with the same name.
func mergeFields(base, extra []pkgopenapi.Field) []pkgopenapi.Field {
	if len(base) == 0 {
		return extra
	}
	out := append([]pkgopenapi.Field(nil), base...)
	index := make(map[string]int, len(out))
	for i, field := range out {
		index[field.Name] = i
	}
	for _, field := range extra {
		if i, ok := index[field.Name]; ok {
			field.Required = field.Required || out[i].Required
			out[i] = field
			continue
		}
		index[field.Name] = len(out)
		out = append(out, field)
	}
	return out
}

func schemaType(types *openapi3.Types) string {
	if types == nil {
		return ""
	}
	return strings.Join(types.Slice(), ",")
}
