package section

import (
	"bytes"
	"errors"
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// NodeKind tags a layout node.
type NodeKind int

const (
	// NodeName is a bare section name, resolved later to a method or a file.
	NodeName NodeKind = iota
	// NodeLiteral is literal text.
	NodeLiteral
	// NodeTemplate names a nested template by registry path.
	NodeTemplate
	// NodeGroup is a nested group of subsections.
	NodeGroup
)

// Node is one unresolved entry of a Layout.
type Node struct {
	Kind     NodeKind
	Value    string
	Children []Node
}

// Layout is a section list as written in a layout file, before names are
// resolved against a template definition.
type Layout struct {
	Source   string
	Sections []Node
}

// ErrInvalidLayout wraps every layout parse failure.
var ErrInvalidLayout = errors.New("section: invalid layout")

// ParseLayout decodes a YAML layout document. The document is either a
// sequence or a mapping with a "sections" sequence:
//
//	sections:
//	  - header
//	  - [summary, { literal: "\n" }, details]
//	  - { template: api/footer }
func ParseLayout(source string, data []byte) (Layout, error) {
	layout := Layout{Source: source}
	if len(bytes.TrimSpace(data)) == 0 {
		return layout, nil
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return Layout{}, fmt.Errorf("%w: %s: %v", ErrInvalidLayout, source, err)
	}
	if doc.Kind != yaml.DocumentNode || len(doc.Content) == 0 {
		return layout, nil
	}

	root := doc.Content[0]
	switch root.Kind {
	case yaml.SequenceNode:
	case yaml.MappingNode:
		seq, err := sectionsKey(root)
		if err != nil {
			return Layout{}, fmt.Errorf("%w: %s: %v", ErrInvalidLayout, source, err)
		}
		if seq == nil {
			return layout, nil
		}
		root = seq
	default:
		return Layout{}, fmt.Errorf("%w: %s: expected a sequence of sections (line %d)", ErrInvalidLayout, source, root.Line)
	}

	nodes, err := parseSequence(root)
	if err != nil {
		return Layout{}, fmt.Errorf("%w: %s: %v", ErrInvalidLayout, source, err)
	}
	layout.Sections = nodes
	return layout, nil
}

func sectionsKey(mapping *yaml.Node) (*yaml.Node, error) {
	var seq *yaml.Node
	for i := 0; i+1 < len(mapping.Content); i += 2 {
		key, value := mapping.Content[i], mapping.Content[i+1]
		if key.Value != "sections" {
			return nil, fmt.Errorf("unknown key %q (line %d)", key.Value, key.Line)
		}
		if seq != nil {
			return nil, fmt.Errorf("duplicate key %q (line %d)", key.Value, key.Line)
		}
		if value.Kind != yaml.SequenceNode {
			return nil, fmt.Errorf("sections must be a sequence (line %d)", value.Line)
		}
		seq = value
	}
	return seq, nil
}

func parseSequence(seq *yaml.Node) ([]Node, error) {
	out := make([]Node, 0, len(seq.Content))
	for _, item := range seq.Content {
		node, err := parseNode(item)
		if err != nil {
			return nil, err
		}
		if node.Kind == NodeGroup {
			if len(out) == 0 || out[len(out)-1].Kind == NodeGroup {
				return nil, fmt.Errorf("nested list must follow a section (line %d)", item.Line)
			}
		}
		out = append(out, node)
	}
	return out, nil
}

func parseNode(item *yaml.Node) (Node, error) {
	switch item.Kind {
	case yaml.ScalarNode:
		name := strings.TrimSpace(item.Value)
		if name == "" {
			return Node{}, fmt.Errorf("empty section name (line %d)", item.Line)
		}
		return Node{Kind: NodeName, Value: name}, nil
	case yaml.SequenceNode:
		children, err := parseSequence(item)
		if err != nil {
			return Node{}, err
		}
		return Node{Kind: NodeGroup, Children: children}, nil
	case yaml.MappingNode:
		if len(item.Content) != 2 {
			return Node{}, fmt.Errorf("section mapping must have exactly one key (line %d)", item.Line)
		}
		key, value := item.Content[0], item.Content[1]
		if value.Kind != yaml.ScalarNode {
			return Node{}, fmt.Errorf("%s value must be a string (line %d)", key.Value, value.Line)
		}
		switch key.Value {
		case "literal":
			return Node{Kind: NodeLiteral, Value: value.Value}, nil
		case "template":
			path := strings.TrimSpace(value.Value)
			if path == "" {
				return Node{}, fmt.Errorf("empty template path (line %d)", value.Line)
			}
			return Node{Kind: NodeTemplate, Value: path}, nil
		default:
			return Node{}, fmt.Errorf("unknown section key %q (line %d)", key.Value, key.Line)
		}
	case yaml.AliasNode:
		if item.Alias == nil {
			return Node{}, fmt.Errorf("dangling alias (line %d)", item.Line)
		}
		return parseNode(item.Alias)
	default:
		return Node{}, fmt.Errorf("unsupported section entry (line %d)", item.Line)
	}
}
