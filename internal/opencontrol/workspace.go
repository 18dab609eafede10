package opencontrol

// workspace.go — the OpenControl data directory.
//
// Directory layout:
//
//	<data>/
//	    .masonry/settings.yaml           # optional exclude rules
//	    components/<system>/system.yaml  # one directory per system
//	    components/<system>/<component>/component.yaml
//	    standards/<standard>.yaml
//	    certifications/<certification>.yaml

import (
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"masonry/internal/config"
	"masonry/internal/natsort"
)

// Workspace subdirectories.
const (
	ComponentsDir     = "components"
	StandardsDir      = "standards"
	CertificationsDir = "certifications"
)

// Workspace is an opened data directory.
type Workspace struct {
	Dir      string
	Settings *config.Settings
	logger   *slog.Logger
}

// OpenWorkspace opens an existing data directory and its settings file.
func OpenWorkspace(dir string, opts ...Option) (*Workspace, error) {
	o := applyOptions(opts)
	abs, err := filepath.Abs(dir)
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", dir, err)
	}
	info, err := os.Stat(abs)
	if err != nil || !info.IsDir() {
		return nil, &NotFoundError{Kind: "workspace", Path: abs}
	}
	settings, err := config.LoadSettings(abs)
	if err != nil {
		return nil, err
	}
	return &Workspace{Dir: abs, Settings: settings, logger: o.logger}, nil
}

// LoadSystems loads every components/<system>/ directory that has a system
// file. A workspace without a components directory has no systems.
func (w *Workspace) LoadSystems() (map[string]*System, error) {
	root := filepath.Join(w.Dir, ComponentsDir)
	entries, err := os.ReadDir(root)
	if os.IsNotExist(err) {
		return map[string]*System{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read components dir: %w", err)
	}

	systems := make(map[string]*System)
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		dir := filepath.Join(root, e.Name())
		if w.Settings.ExcludesSystem(e.Name()) {
			w.logger.Debug("skipping excluded system", "system", e.Name())
			continue
		}
		if _, ok := findFile(dir, systemFiles); !ok {
			continue
		}
		sys, err := LoadSystem(dir, WithExclude(w.Settings.ExcludesComponent), WithLogger(w.logger))
		if err != nil {
			return nil, err
		}
		systems[sys.Key] = sys
	}
	return systems, nil
}

// LoadStandards loads every standards/*.yaml (or .yml) file.
func (w *Workspace) LoadStandards() (map[string]*Standard, error) {
	root := filepath.Join(w.Dir, StandardsDir)
	names, err := yamlFiles(root)
	if err != nil {
		return nil, err
	}
	standards := make(map[string]*Standard, len(names))
	for _, name := range names {
		path := filepath.Join(root, name)
		if key := strings.TrimSuffix(name, filepath.Ext(name)); w.Settings.ExcludesStandard(key) {
			w.logger.Debug("skipping excluded standard", "standard", key)
			continue
		}
		std, err := LoadStandard(path)
		if err != nil {
			return nil, err
		}
		standards[std.Key] = std
	}
	return standards, nil
}

// ListCertifications returns certification names derived from files in
// certifications/, in natural order.
func (w *Workspace) ListCertifications() ([]string, error) {
	names, err := yamlFiles(filepath.Join(w.Dir, CertificationsDir))
	if err != nil {
		return nil, err
	}
	var certs []string
	for _, n := range names {
		certs = append(certs, strings.TrimSuffix(n, filepath.Ext(n)))
	}
	natsort.Strings(certs)
	return certs, nil
}

// CertificationPath returns the manifest path for name.
func (w *Workspace) CertificationPath(name string) (string, error) {
	dir := filepath.Join(w.Dir, CertificationsDir)
	for _, ext := range []string{".yaml", ".yml"} {
		path := filepath.Join(dir, name+ext)
		if info, err := os.Stat(path); err == nil && !info.IsDir() {
			return path, nil
		}
	}
	return "", &NotFoundError{Kind: "certification", Path: filepath.Join(dir, name+".yaml")}
}

// LoadCertification loads the manifest for name.
func (w *Workspace) LoadCertification(name string) (*Manifest, error) {
	path, err := w.CertificationPath(name)
	if err != nil {
		return nil, err
	}
	return LoadManifest(path)
}

// yamlFiles lists *.yaml and *.yml file names in dir. A missing directory
// is empty.
func yamlFiles(dir string) ([]string, error) {
	entries, err := os.ReadDir(dir)
	if os.IsNotExist(err) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var names []string
	for _, e := range entries {
		if e.IsDir() {
			continue
		}
		switch filepath.Ext(e.Name()) {
		case ".yaml", ".yml":
			names = append(names, e.Name())
		}
	}
	return names, nil
}
