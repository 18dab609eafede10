package opencontrol

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"masonry/internal/model"
	"masonry/internal/natsort"
)

// Standard is one catalog of control definitions.
type Standard struct {
	Key  string
	Name string
	Path string
	// Meta holds top-level entries that are not controls.
	Meta     map[string]interface{}
	Controls map[string]model.ControlInfo
}

// LoadStandard reads a standard file. The key is the file name without its
// extension. Mapping entries are controls; scalar and sequence entries at
// the top level (such as name) are standard metadata. An entry with an
// empty value is a control without metadata.
func LoadStandard(path string) (*Standard, error) {
	data, err := os.ReadFile(path)
	if os.IsNotExist(err) {
		return nil, &NotFoundError{Kind: "standard", Path: path}
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}

	base := filepath.Base(path)
	s := &Standard{
		Key:      strings.TrimSuffix(base, filepath.Ext(base)),
		Path:     path,
		Meta:     make(map[string]interface{}),
		Controls: make(map[string]model.ControlInfo),
	}
	if len(doc.Content) == 0 {
		s.Name = s.Key
		return s, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed(path, "line %d: standard must be a mapping", root.Line)
	}

	for i := 0; i+1 < len(root.Content); i += 2 {
		k, v := root.Content[i], root.Content[i+1]
		if k.Kind != yaml.ScalarNode {
			return nil, malformed(path, "line %d: keys must be scalars", k.Line)
		}
		switch {
		case v.Kind == yaml.MappingNode:
			var info model.ControlInfo
			if err := v.Decode(&info); err != nil {
				return nil, &MalformedError{Path: path, Err: fmt.Errorf("control %s: %w", k.Value, err)}
			}
			s.Controls[k.Value] = info
		case v.Kind == yaml.ScalarNode && v.Tag == "!!null":
			s.Controls[k.Value] = model.ControlInfo{}
		default:
			var val interface{}
			if err := v.Decode(&val); err != nil {
				return nil, &MalformedError{Path: path, Err: err}
			}
			s.Meta[k.Value] = val
		}
	}

	s.Name = s.Key
	if name, ok := s.Meta["name"].(string); ok && name != "" {
		s.Name = name
	}
	return s, nil
}

// Control returns the metadata for one control key.
func (s *Standard) Control(key string) (model.ControlInfo, bool) {
	c, ok := s.Controls[key]
	return c, ok
}

// Keys returns control keys in natural order.
func (s *Standard) Keys() []string {
	return natsort.Keys(s.Controls)
}
