package opencontrol

import (
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"masonry/internal/export"
	"masonry/internal/model"
	"masonry/internal/natsort"
)

// File names probed, in order, for component and system metadata.
var (
	componentFiles = []string{"component.yaml", "component.yml"}
	systemFiles    = []string{"system.yaml", "system.yml"}
)

// Component is one loaded component.yaml. SystemKey and Key come from the
// last two segments of Dir and nothing else.
type Component struct {
	SystemKey string
	Key       string
	Dir       string
	Record    model.ComponentRecord

	mapping model.JustificationMapping
}

// LoadComponent reads the component metadata file in dir. Every reference
// under satisfies is tagged with the component's identity before the
// component is returned.
func LoadComponent(dir string) (*Component, error) {
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	path, ok := findFile(abs, componentFiles)
	if !ok {
		return nil, &NotFoundError{Kind: "component", Path: filepath.Join(abs, componentFiles[0])}
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}

	var rec model.ComponentRecord
	if err := yaml.Unmarshal(data, &rec); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}

	c := &Component{
		SystemKey: filepath.Base(filepath.Dir(abs)),
		Key:       filepath.Base(abs),
		Dir:       abs,
		Record:    rec,
		mapping:   model.JustificationMapping{},
	}
	owner := model.Owner{System: c.SystemKey, Component: c.Key}
	for _, std := range natsort.Keys(c.Record.Satisfies) {
		controls := c.Record.Satisfies[std]
		for _, ctrl := range natsort.Keys(controls) {
			j := controls[ctrl]
			for i := range j.References {
				j.References[i].Tag(c.SystemKey, c.Key)
			}
			controls[ctrl] = j
			c.mapping.Add(std, ctrl, owner)
		}
	}
	return c, nil
}

// Name is the display name, falling back to the key.
func (c *Component) Name() string {
	if c.Record.Name != "" {
		return c.Record.Name
	}
	return c.Key
}

// Mapping returns the component's claim index: one owner per claimed
// (standard, control). The returned value must not be modified.
func (c *Component) Mapping() model.JustificationMapping {
	return c.mapping
}

// Claims reports whether the component claims (standard, control).
func (c *Component) Claims(standard, control string) bool {
	_, ok := c.Record.Satisfies[standard][control]
	return ok
}

// GetJustification returns a copy of the claim for (standard, control)
// tagged with the component's system and key. It fails with *ClaimError when
// the component does not claim the pair.
func (c *Component) GetJustification(standard, control string) (model.Justification, error) {
	j, ok := c.Record.Satisfies[standard][control]
	if !ok {
		return model.Justification{}, &ClaimError{System: c.SystemKey, Component: c.Key, Standard: standard, Control: control}
	}
	out := j.Clone()
	out.System = c.SystemKey
	out.Component = c.Key
	return out, nil
}

// Snapshot returns the component's exportable data without relocating any
// artifact.
func (c *Component) Snapshot() model.ComponentSnapshot {
	snap := model.ComponentSnapshot{
		Name:                  c.Name(),
		DocumentationComplete: c.Record.DocumentationComplete,
		References:            append([]model.Reference{}, c.Record.References...),
		Verifications:         make(map[string]model.Reference, len(c.Record.Verifications)),
	}
	for k, v := range c.Record.Verifications {
		snap.Verifications[k] = v
	}
	return snap
}

// Export snapshots the component with its local references and
// verifications relocated beneath exportDir. The component itself is not
// modified. References whose files do not exist are returned as missing.
func (c *Component) Export(exportDir string) (model.ComponentSnapshot, []model.Reference, error) {
	snap := c.Snapshot()
	refs, missing, err := c.ExportReferences(snap.References, exportDir)
	if err != nil {
		return model.ComponentSnapshot{}, nil, err
	}
	snap.References = refs

	for _, key := range natsort.Keys(snap.Verifications) {
		out, m, err := c.ExportReferences([]model.Reference{snap.Verifications[key]}, exportDir)
		if err != nil {
			return model.ComponentSnapshot{}, nil, err
		}
		snap.Verifications[key] = out[0]
		missing = append(missing, m...)
	}
	return snap, missing, nil
}

// ExportReferences relocates each local reference in refs and returns the
// rewritten list, in input order, plus tagged copies of the references whose
// files are missing.
func (c *Component) ExportReferences(refs []model.Reference, exportDir string) ([]model.Reference, []model.Reference, error) {
	out := make([]model.Reference, 0, len(refs))
	var missing []model.Reference
	for _, ref := range refs {
		moved, outcome, err := export.RelocateArtifact(ref, c.Dir, exportDir, c.SystemKey, c.Key)
		if err != nil {
			return nil, nil, fmt.Errorf("component %s/%s: %w", c.SystemKey, c.Key, err)
		}
		if outcome == export.Missing {
			m := ref
			m.Tag(c.SystemKey, c.Key)
			missing = append(missing, m)
		}
		out = append(out, moved)
	}
	return out, missing, nil
}

// findFile returns the first candidate that exists as a regular file in dir.
func findFile(dir string, candidates []string) (string, bool) {
	for _, name := range candidates {
		path := filepath.Join(dir, name)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, true
		}
	}
	return "", false
}
