package config

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// StringList accepts either a single string or a list of strings, in YAML and TOML.
// Blank items are dropped; surrounding whitespace is kept because it can be
// significant inside a regular expression.
type StringList []string

func (s *StringList) UnmarshalYAML(node *yaml.Node) error {
	if s == nil {
		return fmt.Errorf("StringList: UnmarshalYAML on nil receiver")
	}
	if node == nil {
		return nil
	}

	node = resolveAlias(node)
	if node.Tag == "!!null" {
		*s = nil
		return nil
	}

	switch node.Kind {
	case yaml.ScalarNode:
		*s = collect([]string{node.Value})
		return nil

	case yaml.SequenceNode:
		items := make([]string, 0, len(node.Content))
		for _, child := range node.Content {
			if child == nil {
				continue
			}
			child = resolveAlias(child)
			if child.Tag == "!!null" {
				continue
			}
			if child.Kind != yaml.ScalarNode {
				return fmt.Errorf("StringList: expected sequence of strings, got %s at line %d col %d", yamlKindName(child.Kind), child.Line, child.Column)
			}
			items = append(items, child.Value)
		}
		*s = collect(items)
		return nil

	default:
		return fmt.Errorf("StringList: expected string or list, got %s at line %d col %d", yamlKindName(node.Kind), node.Line, node.Column)
	}
}

// UnmarshalTOML implements toml.Unmarshaler.
func (s *StringList) UnmarshalTOML(value any) error {
	switch v := value.(type) {
	case nil:
		*s = nil
		return nil
	case string:
		*s = collect([]string{v})
		return nil
	case []any:
		items := make([]string, 0, len(v))
		for i, item := range v {
			str, ok := item.(string)
			if !ok {
				return fmt.Errorf("StringList: expected string at index %d, got %T", i, item)
			}
			items = append(items, str)
		}
		*s = collect(items)
		return nil
	default:
		return fmt.Errorf("StringList: expected string or array, got %T", value)
	}
}

func (s StringList) MarshalYAML() (any, error) {
	switch len(s) {
	case 0:
		return nil, nil
	case 1:
		return s[0], nil
	default:
		return []string(s), nil
	}
}

// IsZero helps omitempty-style behavior in serializers that consult IsZero.
func (s StringList) IsZero() bool { return len(s) == 0 }

func collect(items []string) StringList {
	var out StringList
	for _, item := range items {
		if strings.TrimSpace(item) == "" {
			continue
		}
		out = append(out, item)
	}
	return out
}

func resolveAlias(node *yaml.Node) *yaml.Node {
	for node.Kind == yaml.AliasNode && node.Alias != nil {
		node = node.Alias
	}
	return node
}

func yamlKindName(kind yaml.Kind) string {
	switch kind {
	case yaml.DocumentNode:
		return "document"
	case yaml.SequenceNode:
		return "sequence"
	case yaml.MappingNode:
		return "mapping"
	case yaml.ScalarNode:
		return "scalar"
	case yaml.AliasNode:
		return "alias"
	default:
		return fmt.Sprintf("kind(%d)", int(kind))
	}
}
