package config

// settings.go — workspace settings loaded from <data>/.masonry/settings.yaml.
//
//	exclude:
//	  systems: [legacy, "sandbox-*"]
//	  components: ["*/scratch", "aws/old-*", tmp]
//	  standards: ["draft-*"]
//
// Rules are globs over workspace keys, never file paths. A component rule
// with a slash matches "<system>/<component>"; one without a slash matches
// the component key in every system.

import (
	"fmt"
	"os"
	"path"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"
)

// SettingsDir is the workspace-relative directory holding settings.yaml.
const SettingsDir = ".masonry"

// Exclude lists the keys discovery skips.
type Exclude struct {
	Components []string `yaml:"components"`
	Standards  []string `yaml:"standards"`
	Systems    []string `yaml:"systems"`
}

// Settings holds workspace configuration.
type Settings struct {
	Exclude Exclude `yaml:"exclude"`
}

// LoadSettings reads .masonry/settings.yaml relative to root.
// Returns nil (not an error) if the file does not exist.
func LoadSettings(root string) (*Settings, error) {
	p := filepath.Join(root, SettingsDir, "settings.yaml")
	data, err := os.ReadFile(p)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", p, err)
	}
	var s Settings
	if err := yaml.Unmarshal(data, &s); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", p, err)
	}
	if err := s.validate(); err != nil {
		return nil, fmt.Errorf("%s: %w", p, err)
	}
	return &s, nil
}

func (s *Settings) validate() error {
	for kind, rules := range map[string][]string{
		"systems":    s.Exclude.Systems,
		"components": s.Exclude.Components,
		"standards":  s.Exclude.Standards,
	} {
		for _, r := range rules {
			if _, err := path.Match(r, ""); err != nil {
				return fmt.Errorf("exclude %s: bad pattern %q", kind, r)
			}
			if kind == "components" && strings.Count(r, "/") > 1 {
				return fmt.Errorf("exclude components: %q has more than one slash", r)
			}
		}
	}
	return nil
}

// ExcludesSystem reports whether the system key is excluded. Safe on a nil
// *Settings, as are the other Excludes methods.
func (s *Settings) ExcludesSystem(key string) bool {
	return s != nil && matchAny(s.Exclude.Systems, key)
}

// ExcludesStandard reports whether the standard key is excluded.
func (s *Settings) ExcludesStandard(key string) bool {
	return s != nil && matchAny(s.Exclude.Standards, key)
}

// ExcludesComponent reports whether a component of system is excluded.
func (s *Settings) ExcludesComponent(system, component string) bool {
	if s == nil {
		return false
	}
	for _, r := range s.Exclude.Components {
		key := component
		if strings.Contains(r, "/") {
			key = system + "/" + component
		}
		if ok, _ := path.Match(r, key); ok {
			return true
		}
	}
	return false
}

func matchAny(rules []string, key string) bool {
	for _, r := range rules {
		if ok, _ := path.Match(r, key); ok {
			return true
		}
	}
	return false
}
