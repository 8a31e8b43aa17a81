package render

import (
	"context"
	"fmt"

	"github.com/goliatone/go-doctemplate/pkg/section"
)

// Resolve turns a parsed layout into a section list for this definition.
// Names with a registered method become method sections, every other name a
// file section. Template entries are instantiated through cfg.Registry with
// the same configuration.
func (d *Definition) Resolve(ctx context.Context, layout section.Layout, cfg Config) (section.List, error) {
	if len(layout.Sections) == 0 {
		return nil, nil
	}
	list, err := d.resolveNodes(ctx, layout.Sections, cfg)
	if err != nil {
		return nil, err
	}
	if err := list.Validate(); err != nil {
		return nil, &ConfigurationError{Key: "layout", Reason: layout.Source, Err: err}
	}
	return list, nil
}

func (d *Definition) resolveNodes(ctx context.Context, nodes []section.Node, cfg Config) (section.List, error) {
	out := make(section.List, 0, len(nodes))
	for _, node := range nodes {
		switch node.Kind {
		case section.NodeName:
			if _, ok := d.Method(node.Value); ok {
				out = append(out, section.Method(node.Value))
			} else {
				out = append(out, section.File(node.Value))
			}
		case section.NodeLiteral:
			out = append(out, section.Literal(node.Value))
		case section.NodeTemplate:
			if cfg.Registry == nil {
				return nil, &ConfigurationError{
					Key:    "registry",
					Reason: fmt.Sprintf("template %q referenced by %s without a registry", node.Value, d.Path),
				}
			}
			nested, err := cfg.Registry.Instantiate(ctx, node.Value, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, section.Template(nested))
		case section.NodeGroup:
			children, err := d.resolveNodes(ctx, node.Children, cfg)
			if err != nil {
				return nil, err
			}
			out = append(out, children)
		default:
			return nil, &ConfigurationError{Key: "layout", Reason: fmt.Sprintf("unknown node kind %d", node.Kind)}
		}
	}
	return out, nil
}

// Names builds a section list from names and nested []any groups, resolving
// each name against the definition's methods. It is the programmatic
// counterpart of a layout file:
//
//	def.Names("header", []any{"summary", "details"}, "footer")
func (d *Definition) Names(entries ...any) (section.List, error) {
	out := make(section.List, 0, len(entries))
	for i, entry := range entries {
		switch v := entry.(type) {
		case string:
			if _, ok := d.Method(v); ok {
				out = append(out, section.Method(v))
			} else {
				out = append(out, section.File(v))
			}
		case section.Ref:
			out = append(out, v)
		case section.List:
			out = append(out, v)
		case []any:
			children, err := d.Names(v...)
			if err != nil {
				return nil, err
			}
			out = append(out, children)
		default:
			return nil, &ConfigurationError{Key: "sections", Reason: fmt.Sprintf("unsupported entry %T at position %d", entry, i)}
		}
	}
	if err := out.Validate(); err != nil {
		return nil, &ConfigurationError{Key: "sections", Reason: d.Path, Err: err}
	}
	return out, nil
}
