// Package inventory builds the gap analysis of a resolved certification:
// for every control and every component justifying it, what is present,
// how much of it, and what is missing.
package inventory

import (
	"path/filepath"

	"masonry/internal/export"
	"masonry/internal/model"
)

// Presence values.
const (
	Missing               = "Missing"
	Present               = "Present"
	MissingJustifications = "Missing Justifications"
)

// Fallback keys for justifications that carry no identity.
const (
	noSystem    = "No System"
	noComponent = "No Name"
)

// Inventory is the gap-analysis document. Signals are either Missing, a
// count, or Present.
type Inventory struct {
	Certification string                               `yaml:"certification"`
	Components    map[string]map[string]ComponentEntry `yaml:"components"`
	Standards     map[string]map[string]interface{}    `yaml:"standards"`
}

// ComponentEntry summarises one component independent of any control.
type ComponentEntry struct {
	DocumentationComplete bool        `yaml:"documentation_complete"`
	References            interface{} `yaml:"references"`
	Verifications         interface{} `yaml:"verifications"`
}

// JustificationEntry summarises one component's claim on one control.
type JustificationEntry struct {
	ImplementationStatus string      `yaml:"implementation_status"`
	Narrative            interface{} `yaml:"narrative"`
	References           interface{} `yaml:"references"`
}

// Build computes the inventory of cert. It performs no I/O.
func Build(cert *model.Certification) *Inventory {
	inv := &Inventory{
		Certification: cert.Name,
		Components:    make(map[string]map[string]ComponentEntry),
		Standards:     make(map[string]map[string]interface{}),
	}

	for sys, snap := range cert.Components {
		entries := make(map[string]ComponentEntry, len(snap.Components))
		for key, c := range snap.Components {
			entries[key] = ComponentEntry{
				DocumentationComplete: c.DocumentationComplete,
				References:            count(len(c.References)),
				Verifications:         count(len(c.Verifications)),
			}
		}
		inv.Components[sys] = entries
	}

	for std, controls := range cert.Standards {
		out := make(map[string]interface{}, len(controls))
		for key, c := range controls {
			out[key] = controlEntry(c)
		}
		inv.Standards[std] = out
	}
	return inv
}

func controlEntry(c *model.Control) interface{} {
	if c == nil || len(c.Justifications) == 0 {
		return MissingJustifications
	}
	bySystem := make(map[string]map[string]JustificationEntry)
	for _, j := range c.Justifications {
		sys, comp := j.System, j.Component
		if sys == "" {
			sys = noSystem
		}
		if comp == "" {
			comp = noComponent
		}
		if bySystem[sys] == nil {
			bySystem[sys] = make(map[string]JustificationEntry)
		}
		status := string(j.ImplementationStatus)
		if status == "" {
			status = Missing
		}
		bySystem[sys][comp] = JustificationEntry{
			ImplementationStatus: status,
			Narrative:            NarrativeSignal(j.Narrative),
			References:           count(len(j.References)),
		}
	}
	return bySystem
}

// NarrativeSignal is Missing for an empty narrative, Present for plain text
// and the number of sections for a sectioned one.
func NarrativeSignal(n model.Narrative) interface{} {
	switch {
	case n.IsZero():
		return Missing
	case n.Kind() == model.NarrativeSectioned:
		return n.Len()
	}
	return Present
}

func count(n int) interface{} {
	if n == 0 {
		return Missing
	}
	return n
}

// Write serialises inv to <outDir>/<certification>.yaml.
func Write(inv *Inventory, outDir string) (string, error) {
	path := filepath.Join(outDir, inv.Certification+".yaml")
	if err := export.WriteFile(path, inv); err != nil {
		return "", err
	}
	return path, nil
}
