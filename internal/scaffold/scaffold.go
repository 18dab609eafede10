// Package scaffold creates OpenControl workspaces and starter files.
//
// Directory layout written by Init:
//
//	<data>/
//	    .masonry/settings.yaml   # empty exclude rules
//	    components/
//	    standards/
//	    certifications/
//
// NewSystem and NewComponent add components/<system>/system.yaml and
// components/<system>/<component>/component.yaml. Directory names are
// slugified keys; the name field keeps what was typed.
package scaffold

import (
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"masonry/internal/config"
	"masonry/internal/export"
	"masonry/internal/gitbook"
	"masonry/internal/model"
	"masonry/internal/opencontrol"
)

// DefaultDir is the workspace directory Init uses when none is given.
const DefaultDir = "data"

// systemTemplate is the starter system.yaml.
type systemTemplate struct {
	Name string `yaml:"name"`
}

// componentTemplate is the starter component.yaml. Unlike
// model.ComponentRecord every section is written, empty or not, so the file
// shows the full shape to fill in.
type componentTemplate struct {
	DocumentationComplete bool                                      `yaml:"documentation_complete"`
	Name                  string                                    `yaml:"name"`
	References            []model.Reference                         `yaml:"references"`
	Satisfies             map[string]map[string]model.Justification `yaml:"satisfies"`
	Verifications         map[string]model.Reference                `yaml:"verifications"`
}

// Init creates an empty workspace at dir. An existing, non-empty dir is an
// error.
func Init(dir string) error {
	entries, err := os.ReadDir(dir)
	if err == nil && len(entries) > 0 {
		return fmt.Errorf("workspace %s: %w", dir, fs.ErrExist)
	}
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("read %s: %w", dir, err)
	}
	for _, sub := range []string{opencontrol.ComponentsDir, opencontrol.StandardsDir, opencontrol.CertificationsDir} {
		if err := os.MkdirAll(filepath.Join(dir, sub), 0o755); err != nil {
			return fmt.Errorf("create workspace: %w", err)
		}
	}
	return export.WriteFile(filepath.Join(dir, config.SettingsDir, "settings.yaml"), config.Settings{})
}

// NewSystem writes a starter system.yaml for name and returns its path.
func NewSystem(dataDir, name string) (string, error) {
	key, err := keyFor("system", name)
	if err != nil {
		return "", err
	}
	path := filepath.Join(dataDir, opencontrol.ComponentsDir, key, "system.yaml")
	if err := create(path, systemTemplate{Name: name}); err != nil {
		return "", fmt.Errorf("system %q: %w", name, err)
	}
	return path, nil
}

// NewComponent writes a starter component.yaml for component under system
// and returns its path. The system is created first when it has no
// system.yaml yet.
func NewComponent(dataDir, system, component string) (string, error) {
	sysKey, err := keyFor("system", system)
	if err != nil {
		return "", err
	}
	compKey, err := keyFor("component", component)
	if err != nil {
		return "", err
	}
	sysDir := filepath.Join(dataDir, opencontrol.ComponentsDir, sysKey)
	if _, err := os.Stat(filepath.Join(sysDir, "system.yaml")); os.IsNotExist(err) {
		if _, err := NewSystem(dataDir, system); err != nil {
			return "", err
		}
	}

	path := filepath.Join(sysDir, compKey, "component.yaml")
	tmpl := componentTemplate{
		Name: component,
		References: []model.Reference{
			{Name: "Reference Name", Path: "http://dummyimage.com/600x400", Type: "Image"},
		},
		Satisfies: map[string]map[string]model.Justification{},
		Verifications: map[string]model.Reference{
			"Verification_ID": {Name: "Verification Name", Path: "http://dummyimage.com/600x400", Type: "Image"},
		},
	}
	if err := create(path, tmpl); err != nil {
		return "", fmt.Errorf("component %q: %w", component, err)
	}
	return path, nil
}

func keyFor(kind, name string) (string, error) {
	key := gitbook.Slug(name)
	if key == "" {
		return "", fmt.Errorf("%s name %q has no usable characters", kind, name)
	}
	return key, nil
}

// create writes v to path unless path already exists.
func create(path string, v any) error {
	if _, err := os.Stat(path); err == nil {
		return fmt.Errorf("%s: %w", path, fs.ErrExist)
	}
	return export.WriteFile(path, v)
}
