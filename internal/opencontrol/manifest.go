package opencontrol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"masonry/internal/natsort"
)

// Manifest lists the (standard, control) cells a certification requires.
type Manifest struct {
	Name string
	Path string
	// Standards maps standard key to required control keys in natural
	// order.
	Standards map[string][]string
}

// LoadManifest reads a certification file. The name is the file stem.
// Controls may be listed as a mapping (values are ignored) or a sequence.
func LoadManifest(path string) (*Manifest, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Kind: "certification", Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var raw struct {
		Standards yaml.Node `yaml:"standards"`
	}
	if err := yaml.Unmarshal(data, &raw); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}

	base := filepath.Base(path)
	m := &Manifest{
		Name:      strings.TrimSuffix(base, filepath.Ext(base)),
		Path:      path,
		Standards: make(map[string][]string),
	}
	node := &raw.Standards
	if node.Kind == 0 || node.Tag == "!!null" {
		return m, nil
	}
	if node.Kind != yaml.MappingNode {
		return nil, malformed(path, "line %d: standards must be a mapping", node.Line)
	}
	for i := 0; i+1 < len(node.Content); i += 2 {
		std, controls := node.Content[i].Value, node.Content[i+1]
		keys, err := controlKeys(controls)
		if err != nil {
			return nil, &MalformedError{Path: path, Err: fmt.Errorf("standard %s: %w", std, err)}
		}
		natsort.Strings(keys)
		m.Standards[std] = keys
	}
	return m, nil
}

func controlKeys(n *yaml.Node) ([]string, error) {
	keys := []string{}
	switch n.Kind {
	case yaml.MappingNode:
		for i := 0; i+1 < len(n.Content); i += 2 {
			keys = append(keys, n.Content[i].Value)
		}
	case yaml.SequenceNode:
		for _, item := range n.Content {
			if item.Kind != yaml.ScalarNode {
				return nil, fmt.Errorf("line %d: control keys must be scalars", item.Line)
			}
			keys = append(keys, item.Value)
		}
	case yaml.ScalarNode:
		if n.Tag != "!!null" {
			return nil, fmt.Errorf("line %d: controls must be a mapping or a list", n.Line)
		}
	default:
		return nil, fmt.Errorf("line %d: controls must be a mapping or a list", n.Line)
	}
	return keys, nil
}

// StandardKeys returns standard keys in natural order.
func (m *Manifest) StandardKeys() []string {
	return natsort.Keys(m.Standards)
}

// Cells counts required (standard, control) pairs.
func (m *Manifest) Cells() int {
	n := 0
	for _, controls := range m.Standards {
		n += len(controls)
	}
	return n
}
