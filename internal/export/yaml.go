package export

// yaml.go — the resolved certification snapshot on disk.
//
// Output is deterministic: struct fields are declared in key order, yaml.v3
// sorts map keys, the indent is fixed at two spaces and nothing time-based is
// written. Two exports of unchanged inputs are byte-identical.

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"

	"gopkg.in/yaml.v3"

	"masonry/internal/model"
)

// Indent is the number of spaces per nesting level in every YAML artifact.
const Indent = 2

// Marshal encodes v with the fixed indent.
func Marshal(v any) ([]byte, error) {
	var buf bytes.Buffer
	enc := yaml.NewEncoder(&buf)
	enc.SetIndent(Indent)
	if err := enc.Encode(v); err != nil {
		return nil, err
	}
	if err := enc.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// WriteFile encodes v to path, creating parent directories.
func WriteFile(path string, v any) error {
	data, err := Marshal(v)
	if err != nil {
		return fmt.Errorf("marshal %s: %w", filepath.Base(path), err)
	}
	return writeBytes(path, data)
}

func writeBytes(path string, data []byte) error {
	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", path, err)
	}
	return nil
}

// Write serialises cert to <exportDir>/<name>.yaml and returns the path.
func Write(cert *model.Certification, exportDir string) (string, error) {
	if cert.Name == "" {
		return "", fmt.Errorf("certification has no name")
	}
	path := filepath.Join(exportDir, cert.Name+".yaml")
	if err := WriteFile(path, cert); err != nil {
		return "", err
	}
	return path, nil
}

// Load reads a resolved certification written by Write. A missing name is
// taken from the file stem.
func Load(path string) (*model.Certification, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", path, err)
	}
	var cert model.Certification
	if err := yaml.Unmarshal(data, &cert); err != nil {
		return nil, fmt.Errorf("unmarshal %s: %w", path, err)
	}
	if cert.Name == "" {
		base := filepath.Base(path)
		cert.Name = base[:len(base)-len(filepath.Ext(base))]
	}
	cert.Normalize()
	return &cert, nil
}
