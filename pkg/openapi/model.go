package openapi

import (
	"sort"
	"strings"
)

// Spec is the documentation view of an OpenAPI document.
type Spec struct {
	Title       string
	Version     string
	Description string
	Servers     []string
	Tags        []Tag
	Operations  []Operation
}

// Tag groups operations.
type Tag struct {
	Name        string
	Description string
}

// Operation is one documented method+path pair.
type Operation struct {
	ID          string
	Method      string
	Path        string
	Summary     string
	Description string
	Tags        []string
	Deprecated  bool
	Parameters  []Parameter
	RequestBody *Body
	Responses   []Response
}

// Parameter is a path, query, header or cookie parameter.
type Parameter struct {
	Name        string
	In          string
	Required    bool
	Description string
	Schema      Schema
}

// Body is a request body.
type Body struct {
	Description string
	Required    bool
	ContentType string
	Schema      Schema
}

// Response is one documented status code.
type Response struct {
	Status      string
	Description string
	ContentType string
	Schema      Schema
}

// Schema is the part of a JSON schema that documentation renders.
type Schema struct {
	Ref         string
	Type        string
	Format      string
	Description string
	Enum        []any
	Items       *Schema
	Fields      []Field
}

// Field is a named object property.
type Field struct {
	Name     string
	Required bool
	Schema   Schema
}

// RefName returns the last segment of a $ref, e.g. "Pet" for
// "#/components/schemas/Pet".
func (s Schema) RefName() string {
	if s.Ref == "" {
		return ""
	}
	return s.Ref[strings.LastIndex(s.Ref, "/")+1:]
}

// TypeName describes the schema in one short phrase: "Pet", "array of Pet",
// "string (date-time)".
func (s Schema) TypeName() string {
	if name := s.RefName(); name != "" {
		return name
	}
	switch {
	case s.Type == "array" && s.Items != nil:
		return "array of " + s.Items.TypeName()
	case s.Type == "" && len(s.Fields) > 0:
		return "object"
	case s.Format != "":
		return s.Type + " (" + s.Format + ")"
	default:
		return s.Type
	}
}

// IsZero reports whether the schema carries nothing worth documenting.
func (s Schema) IsZero() bool {
	return s.Ref == "" && s.Type == "" && s.Items == nil && len(s.Fields) == 0
}

// Key identifies the operation: its ID, or "method path" when it has none.
func (op Operation) Key() string {
	if op.ID != "" {
		return op.ID
	}
	return strings.ToLower(op.Method) + " " + op.Path
}

// Operation returns the operation with the given ID.
func (s Spec) Operation(id string) (Operation, bool) {
	for _, op := range s.Operations {
		if op.ID == id {
			return op, true
		}
	}
	return Operation{}, false
}

var methodOrder = map[string]int{
	"GET": 0, "PUT": 1, "POST": 2, "DELETE": 3, "PATCH": 4, "HEAD": 5, "OPTIONS": 6, "TRACE": 7,
}

// SortOperations orders operations by path, then by HTTP method.
func SortOperations(ops []Operation) {
	sort.SliceStable(ops, func(i, j int) bool {
		if ops[i].Path != ops[j].Path {
			return ops[i].Path < ops[j].Path
		}
		return methodOrder[ops[i].Method] < methodOrder[ops[j].Method]
	})
}
