package opencontrol

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"masonry/internal/model"
	"masonry/internal/natsort"
)

// System is a directory of components sharing a system.yaml.
type System struct {
	Key  string
	Name string
	Dir  string
	// Meta holds every top-level key of system.yaml, name included.
	Meta map[string]interface{}

	components map[string]*Component
	order      []string
	mapping    model.JustificationMapping
}

// Option configures discovery in LoadSystem and Workspace.
type Option func(*loadOptions)

type loadOptions struct {
	exclude func(system, component string) bool
	logger  *slog.Logger
}

// WithExclude skips every component for which exclude returns true.
func WithExclude(exclude func(system, component string) bool) Option {
	return func(o *loadOptions) { o.exclude = exclude }
}

// WithLogger sets the logger used for discovery messages.
func WithLogger(l *slog.Logger) Option {
	return func(o *loadOptions) { o.logger = l }
}

func applyOptions(opts []Option) loadOptions {
	o := loadOptions{exclude: func(string, string) bool { return false }, logger: slog.Default()}
	for _, opt := range opts {
		opt(&o)
	}
	if o.logger == nil {
		o.logger = slog.Default()
	}
	return o
}

// LoadSystem reads system.yaml in dir and loads every immediate
// subdirectory holding a component file, in directory order. Component
// mappings are folded together with model.Merge.
func LoadSystem(dir string, opts ...Option) (*System, error) {
	o := applyOptions(opts)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	path, ok := findFile(abs, systemFiles)
	if !ok {
		return nil, &NotFoundError{Kind: "system", Path: filepath.Join(abs, systemFiles[0])}
	}
	meta, err := readMetadata(path)
	if err != nil {
		return nil, err
	}

	s := &System{
		Key:        filepath.Base(abs),
		Dir:        abs,
		Meta:       meta,
		components: make(map[string]*Component),
		mapping:    model.JustificationMapping{},
	}
	s.Name = s.Key
	if name, ok := meta["name"].(string); ok && name != "" {
		s.Name = name
	}

	entries, err := os.ReadDir(abs)
	if err != nil {
		return nil, fmt.Errorf("read system dir %s: %w", abs, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		compDir := filepath.Join(abs, e.Name())
		if o.exclude(s.Key, e.Name()) {
			o.logger.Debug("skipping excluded component", "system", s.Key, "component", e.Name())
			continue
		}
		if _, ok := findFile(compDir, componentFiles); !ok {
			continue
		}
		c, err := LoadComponent(compDir)
		if err != nil {
			return nil, err
		}
		s.components[c.Key] = c
		s.order = append(s.order, c.Key)
		s.mapping = model.Merge(s.mapping, c.Mapping())
	}
	o.logger.Debug("loaded system", "system", s.Key, "components", len(s.order))
	return s, nil
}

// readMetadata decodes a top-level mapping. An empty file yields an empty
// map.
func readMetadata(path string) (map[string]interface{}, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var doc yaml.Node
	if err := yaml.Unmarshal(data, &doc); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}
	meta := make(map[string]interface{})
	if len(doc.Content) == 0 {
		return meta, nil
	}
	root := doc.Content[0]
	if root.Kind != yaml.MappingNode {
		return nil, malformed(path, "line %d: expected a mapping", root.Line)
	}
	if err := root.Decode(&meta); err != nil {
		return nil, &MalformedError{Path: path, Err: err}
	}
	return meta, nil
}

// Component returns the component with the given key.
func (s *System) Component(key string) (*Component, bool) {
	c, ok := s.components[key]
	return c, ok
}

// Components returns components in load order.
func (s *System) Components() []*Component {
	out := make([]*Component, 0, len(s.order))
	for _, k := range s.order {
		out = append(out, s.components[k])
	}
	return out
}

// Keys returns component keys in natural order.
func (s *System) Keys() []string {
	return natsort.Keys(s.components)
}

// Mapping returns the system-level claim index.
func (s *System) Mapping() model.JustificationMapping {
	return s.mapping
}

// Snapshot captures the system's metadata and every component, relocating
// artifacts beneath exportDir when it is non-empty.
func (s *System) Snapshot(exportDir string) (model.SystemSnapshot, []model.Reference, error) {
	snap := model.SystemSnapshot{
		Name:       s.Name,
		Components: make(map[string]model.ComponentSnapshot, len(s.components)),
	}
	if len(s.Meta) > 0 {
		snap.Meta = make(map[string]interface{}, len(s.Meta))
		for k, v := range s.Meta {
			if k != "name" {
				snap.Meta[k] = v
			}
		}
		if len(snap.Meta) == 0 {
			snap.Meta = nil
		}
	}

	var missing []model.Reference
	for _, key := range s.Keys() {
		c := s.components[key]
		if exportDir == "" {
			snap.Components[key] = c.Snapshot()
			continue
		}
		cs, m, err := c.Export(exportDir)
		if err != nil {
			return model.SystemSnapshot{}, nil, err
		}
		snap.Components[key] = cs
		missing = append(missing, m...)
	}
	return snap, missing, nil
}
