package catalog

import (
	"bytes"

	"github.com/glorpus-work/drmget/pkg/errors"
	"gopkg.in/yaml.v3"
)

var utf8BOM = []byte{0xEF, 0xBB, 0xBF}

// Parse decodes a JSON (or YAML) document into a Node, keeping the key
// order of every object as it appears in the source.
func Parse(data []byte) (Node, error) {
	data = bytes.TrimPrefix(data, utf8BOM)

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, errors.Wrap(errors.ErrCatalogParse, err.Error())
	}
	if doc.Kind == 0 {
		return nil, nil
	}
	return convert(&doc), nil
}

func convert(n *yaml.Node) Node {
	switch n.Kind {
	case yaml.DocumentNode:
		if len(n.Content) == 0 {
			return nil
		}
		return convert(n.Content[0])
	case yaml.AliasNode:
		return convert(n.Alias)
	case yaml.MappingNode:
		m := NewMapping()
		for i := 0; i+1 < len(n.Content); i += 2 {
			m.Set(n.Content[i].Value, convert(n.Content[i+1]))
		}
		return m
	case yaml.SequenceNode:
		seq := make(Sequence, 0, len(n.Content))
		for _, el := range n.Content {
			seq = append(seq, convert(el))
		}
		return seq
	case yaml.ScalarNode:
		switch n.ShortTag() {
		case "!!null":
			return nil
		case "!!int", "!!float":
			return Scalar{Value: n.Value, Kind: KindNumber}
		case "!!bool":
			return Scalar{Value: n.Value, Kind: KindBool}
		default:
			return String(n.Value)
		}
	}
	return nil
}
