package model

// ComponentRecord mirrors a component.yaml file. The component and system
// keys are not part of the record: they come from where the file lives.
type ComponentRecord struct {
	DocumentationComplete bool                                `yaml:"documentation_complete"`
	Name                  string                              `yaml:"name"`
	References            []Reference                         `yaml:"references,omitempty"`
	Satisfies             map[string]map[string]Justification `yaml:"satisfies,omitempty"`
	Verifications         map[string]Reference                `yaml:"verifications,omitempty"`
}

// ComponentSnapshot is the part of a component copied into a certification:
// everything except its claims.
type ComponentSnapshot struct {
	DocumentationComplete bool                 `yaml:"documentation_complete"`
	Name                  string               `yaml:"name"`
	References            []Reference          `yaml:"references"`
	Verifications         map[string]Reference `yaml:"verifications"`
}

// SystemSnapshot groups the component snapshots of one system together with
// the system's own metadata.
type SystemSnapshot struct {
	Components map[string]ComponentSnapshot `yaml:"components"`
	Meta       map[string]interface{}       `yaml:"meta,omitempty"`
	Name       string                       `yaml:"name,omitempty"`
}
