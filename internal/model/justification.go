package model

import "strings"

// ImplementationStatus records how far a component has gone in satisfying a
// control.
type ImplementationStatus string

const (
	StatusPartial  ImplementationStatus = "partial"
	StatusComplete ImplementationStatus = "complete"
	StatusPlanned  ImplementationStatus = "planned"
	StatusNone     ImplementationStatus = "none"
)

// Valid reports whether s is one of the known statuses. The empty status is
// not valid; callers treat it as missing.
func (s ImplementationStatus) Valid() bool {
	switch s {
	case StatusPartial, StatusComplete, StatusPlanned, StatusNone:
		return true
	}
	return false
}

// ParseImplementationStatus normalises case and surrounding space. Unknown
// values come back unchanged with ok=false.
func ParseImplementationStatus(s string) (ImplementationStatus, bool) {
	st := ImplementationStatus(strings.ToLower(strings.TrimSpace(s)))
	return st, st.Valid()
}

// Justification is one component's claim that it satisfies one control.
// System and Component are back-references to the claiming component; they
// identify it but do not own it.
type Justification struct {
	Component            string               `yaml:"component,omitempty"`
	ImplementationStatus ImplementationStatus `yaml:"implementation_status,omitempty"`
	Narrative            Narrative            `yaml:"narrative,omitempty"`
	References           []Reference          `yaml:"references,omitempty"`
	System               string               `yaml:"system,omitempty"`
}

// Clone returns a copy that shares nothing mutable with j.
func (j Justification) Clone() Justification {
	out := j
	if j.References != nil {
		out.References = append([]Reference(nil), j.References...)
	}
	if j.Narrative.kind == NarrativeSectioned {
		out.Narrative = SectionedNarrative(j.Narrative.sections)
	}
	return out
}
