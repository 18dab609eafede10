package model

import "masonry/internal/natsort"

// Certification is the resolved document: every control a certification
// requires, filled with standard metadata and component justifications, plus
// a snapshot of every system's components taken at export time.
type Certification struct {
	Components map[string]SystemSnapshot      `yaml:"components"`
	Name       string                         `yaml:"name"`
	Standards  map[string]map[string]*Control `yaml:"standards"`
}

// NewCertification returns an empty certification named name.
func NewCertification(name string) *Certification {
	return &Certification{
		Name:       name,
		Components: make(map[string]SystemSnapshot),
		Standards:  make(map[string]map[string]*Control),
	}
}

// Control returns the cell for (standard, control), nil if absent.
func (c *Certification) Control(standard, control string) *Control {
	return c.Standards[standard][control]
}

// Component returns the snapshot for (system, component).
func (c *Certification) Component(system, component string) (ComponentSnapshot, bool) {
	sys, ok := c.Components[system]
	if !ok {
		return ComponentSnapshot{}, false
	}
	comp, ok := sys.Components[component]
	return comp, ok
}

// Verification resolves a justification reference that points at a
// component's verification. The boolean is false when the system, component
// or verification does not exist in the snapshot.
func (c *Certification) Verification(ref Reference) (Reference, bool) {
	comp, ok := c.Component(ref.System, ref.Component)
	if !ok {
		return Reference{}, false
	}
	v, ok := comp.Verifications[ref.Verification]
	return v, ok
}

// StandardKeys returns standard keys in natural order.
func (c *Certification) StandardKeys() []string {
	return natsort.Keys(c.Standards)
}

// ControlKeys returns the control keys of one standard in natural order.
func (c *Certification) ControlKeys(standard string) []string {
	return natsort.Keys(c.Standards[standard])
}

// SystemKeys returns system keys in natural order.
func (c *Certification) SystemKeys() []string {
	return natsort.Keys(c.Components)
}

// ComponentKeys returns the component keys of one system in natural order.
func (c *Certification) ComponentKeys(system string) []string {
	return natsort.Keys(c.Components[system].Components)
}

// Normalize restores invariants on a certification read from disk: non-nil
// maps and a non-nil justification list in every cell.
func (c *Certification) Normalize() {
	if c.Components == nil {
		c.Components = make(map[string]SystemSnapshot)
	}
	if c.Standards == nil {
		c.Standards = make(map[string]map[string]*Control)
	}
	for std, controls := range c.Standards {
		if controls == nil {
			c.Standards[std] = make(map[string]*Control)
			continue
		}
		for key, ctrl := range controls {
			if ctrl == nil {
				controls[key] = NewControl()
				continue
			}
			if ctrl.Justifications == nil {
				ctrl.Justifications = []Justification{}
			}
		}
	}
}
