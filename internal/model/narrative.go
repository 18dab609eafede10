package model

// narrative.go — Narrative is either a single block of prose or a set of
// labelled sections. component.yaml files use both shapes:
//
//	narrative: We do X.
//
//	narrative:
//	  1: Policy defined.
//	  2: Policy enforced.

import (
	"fmt"

	"gopkg.in/yaml.v3"

	"masonry/internal/natsort"
)

// NarrativeKind discriminates the two Narrative shapes.
type NarrativeKind int

const (
	// NarrativeNone is the zero value: no narrative was given.
	NarrativeNone NarrativeKind = iota
	// NarrativePlain holds one free-text block.
	NarrativePlain
	// NarrativeSectioned holds label → text sections.
	NarrativeSectioned
)

// Narrative is a tagged union of Plain text and Sectioned text.
type Narrative struct {
	kind     NarrativeKind
	text     string
	sections map[string]string
}

// PlainNarrative returns a narrative holding text verbatim.
func PlainNarrative(text string) Narrative {
	return Narrative{kind: NarrativePlain, text: text}
}

// SectionedNarrative returns a narrative of labelled sections. The map is
// copied.
func SectionedNarrative(sections map[string]string) Narrative {
	cp := make(map[string]string, len(sections))
	for k, v := range sections {
		cp[k] = v
	}
	return Narrative{kind: NarrativeSectioned, sections: cp}
}

// Kind reports which shape n holds.
func (n Narrative) Kind() NarrativeKind { return n.kind }

// Text returns the plain text; empty for sectioned narratives.
func (n Narrative) Text() string { return n.text }

// Section returns the text for one label.
func (n Narrative) Section(label string) string { return n.sections[label] }

// Labels returns the section labels in natural order ("2" before "10").
func (n Narrative) Labels() []string {
	if n.kind != NarrativeSectioned {
		return nil
	}
	return natsort.Keys(n.sections)
}

// Len is 1 for a non-empty plain narrative and the number of sections for a
// sectioned one.
func (n Narrative) Len() int {
	switch n.kind {
	case NarrativePlain:
		if n.text == "" {
			return 0
		}
		return 1
	case NarrativeSectioned:
		return len(n.sections)
	}
	return 0
}

// IsZero reports whether no narrative content exists. yaml.v3 uses this to
// honour omitempty.
func (n Narrative) IsZero() bool {
	switch n.kind {
	case NarrativePlain:
		return n.text == ""
	case NarrativeSectioned:
		return len(n.sections) == 0
	}
	return true
}

// UnmarshalYAML accepts a scalar or a mapping. Mapping keys of any scalar
// type (ints are common) are kept as their literal text.
func (n *Narrative) UnmarshalYAML(value *yaml.Node) error {
	switch value.Kind {
	case yaml.ScalarNode:
		if value.Tag == "!!null" {
			*n = Narrative{}
			return nil
		}
		*n = PlainNarrative(value.Value)
		return nil
	case yaml.MappingNode:
		sections := make(map[string]string, len(value.Content)/2)
		for i := 0; i+1 < len(value.Content); i += 2 {
			k, v := value.Content[i], value.Content[i+1]
			if k.Kind != yaml.ScalarNode || v.Kind != yaml.ScalarNode {
				return fmt.Errorf("line %d: narrative sections must map labels to text", k.Line)
			}
			sections[k.Value] = v.Value
		}
		*n = Narrative{kind: NarrativeSectioned, sections: sections}
		return nil
	}
	return fmt.Errorf("line %d: narrative must be text or a mapping of sections", value.Line)
}

// MarshalYAML writes the shape that was read: a string or a mapping whose
// labels are emitted in natural order.
func (n Narrative) MarshalYAML() (interface{}, error) {
	switch n.kind {
	case NarrativePlain:
		return n.text, nil
	case NarrativeSectioned:
		node := &yaml.Node{Kind: yaml.MappingNode, Tag: "!!map"}
		for _, label := range n.Labels() {
			node.Content = append(node.Content,
				&yaml.Node{Kind: yaml.ScalarNode, Value: label},
				&yaml.Node{Kind: yaml.ScalarNode, Tag: "!!str", Value: n.sections[label]},
			)
		}
		return node, nil
	}
	return nil, nil
}
