package model

import (
	"fmt"
	"sort"
	"strings"

	"gopkg.in/yaml.v3"
)

// ControlInfo is the canonical description of one control as published by a
// standard. Keys other than name, family and description are kept in Extra.
type ControlInfo struct {
	Name        string
	Family      string
	Description string
	Extra       map[string]interface{}
}

// IsZero reports whether no metadata is present.
func (c ControlInfo) IsZero() bool {
	return c.Name == "" && c.Family == "" && c.Description == "" && len(c.Extra) == 0
}

// MergeFrom copies every non-empty field of src over c. Empty fields in src
// never clear values already set on c.
func (c *ControlInfo) MergeFrom(src ControlInfo) {
	if src.Name != "" {
		c.Name = src.Name
	}
	if src.Family != "" {
		c.Family = src.Family
	}
	if src.Description != "" {
		c.Description = src.Description
	}
	for k, v := range src.Extra {
		if v == nil {
			continue
		}
		if c.Extra == nil {
			c.Extra = make(map[string]interface{})
		}
		c.Extra[k] = v
	}
}

// FamilyFor returns the declared family, or the family derived from key
// when the standard does not declare one.
func (c ControlInfo) FamilyFor(key string) string {
	if c.Family != "" {
		return c.Family
	}
	return FamilyOf(key)
}

// FamilyOf derives a coarse grouping from a control key: everything before
// the first hyphen ("AC-2 (1)" → "AC"). Keys without a hyphen are their own
// family.
func FamilyOf(key string) string {
	if i := strings.Index(key, "-"); i > 0 {
		return key[:i]
	}
	return key
}

// UnmarshalYAML reads a control mapping from a standard file.
func (c *ControlInfo) UnmarshalYAML(value *yaml.Node) error {
	if value.Kind != yaml.MappingNode {
		return fmt.Errorf("line %d: control must be a mapping", value.Line)
	}
	var raw map[string]interface{}
	if err := value.Decode(&raw); err != nil {
		return err
	}
	*c = ControlInfo{}
	for k, v := range raw {
		switch k {
		case "name":
			c.Name = scalarString(v)
		case "family":
			c.Family = scalarString(v)
		case "description":
			c.Description = scalarString(v)
		default:
			if c.Extra == nil {
				c.Extra = make(map[string]interface{})
			}
			c.Extra[k] = v
		}
	}
	return nil
}

// MarshalYAML emits every key, known and extra, in alphabetical order.
func (c ControlInfo) MarshalYAML() (interface{}, error) {
	fields := make(map[string]interface{}, len(c.Extra)+3)
	for k, v := range c.Extra {
		fields[k] = v
	}
	if c.Name != "" {
		fields["name"] = c.Name
	}
	if c.Family != "" {
		fields["family"] = c.Family
	}
	if c.Description != "" {
		fields["description"] = c.Description
	}
	keys := make([]string, 0, len(fields))
	for k := range fields {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
	for _, k := range keys {
		var v yaml.Node
		if err := v.Encode(fields[k]); err != nil {
			return nil, fmt.Errorf("encode %s: %w", k, err)
		}
		node.Content = append(node.Content, &yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: k}, &v)
	}
	return node, nil
}

func scalarString(v interface{}) string {
	if v == nil {
		return ""
	}
	if s, ok := v.(string); ok {
		return s
	}
	return fmt.Sprint(v)
}

// Control is one resolved cell of a certification: the standard's metadata
// merged with every justification claimed by a component.
type Control struct {
	Justifications []Justification `yaml:"justifications"`
	Meta           ControlInfo     `yaml:"meta"`
}

// NewControl returns an empty cell. Justifications is an empty, non-nil
// slice so the cell always serialises with a list.
func NewControl() *Control {
	return &Control{Justifications: []Justification{}}
}

// UnmarshalYAML keeps the non-nil justification invariant for snapshots
// read back from disk.
func (c *Control) UnmarshalYAML(value *yaml.Node) error {
	type plain Control
	var p plain
	if err := value.Decode(&p); err != nil {
		return err
	}
	if p.Justifications == nil {
		p.Justifications = []Justification{}
	}
	*c = Control(p)
	return nil
}
