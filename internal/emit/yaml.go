package emit

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"github.com/honelang/hone/internal/value"
)

// YAML renders v as YAML, building a yaml.Node tree directly so
// Object's declared field order survives — yaml.v3 would otherwise sort
// or reorder a plain map[string]any on encode.
func YAML(v value.Value) ([]byte, error) {
	node, err := toYAMLNode(v)
	if err != nil {
		return nil, err
	}
	return yaml.Marshal(node)
}

func toYAMLNode(v value.Value) (*yaml.Node, error) {
	switch val := v.(type) {
	case value.Null:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!null", Value: "null"}, nil
	case value.Bool:
		tag := "!!bool"
		text := "false"
		if val {
			text = "true"
		}
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: tag, Value: text}, nil
	case value.Int:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!int", Value: val.Stringify()}, nil
	case value.Float:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!float", Value: val.Stringify()}, nil
	case value.String:
		return &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: string(val)}, nil
	case value.Array:
		node := &yaml.Node{Kind: yaml.SequenceNode, Tag: "!!seq"}
		for _, elem := range val {
			child, err := toYAMLNode(elem)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, child)
		}
		return node, nil
	case *value.Object:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, k := range val.Keys() {
			fv, _ := val.Get(k)
			child, err := toYAMLNode(fv)
			if err != nil {
				return nil, err
			}
			node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, child)
		}
		return node, nil
	default:
		return nil, fmt.Errorf("emit: unsupported value kind %v", v.Kind())
	}
}
