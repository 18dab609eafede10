// Package fixture materialises txtar archives as directory trees. Tests use it
// to describe whole OpenControl workspaces inline:
//
//	-- components/aws/system.yaml --
//	name: AWS
//	-- components/aws/ec2/component.yaml --
//	name: EC2
package fixture

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"golang.org/x/tools/txtar"
)

// Extract writes every file of ar beneath dir, creating directories as
// needed. File names must be relative and stay inside dir.
func Extract(ar *txtar.Archive, dir string) error {
	for _, f := range ar.Files {
		name := filepath.FromSlash(strings.TrimSpace(f.Name))
		if name == "" || filepath.IsAbs(name) || strings.HasPrefix(filepath.Clean(name), "..") {
			return fmt.Errorf("fixture: bad file name %q", f.Name)
		}
		path := filepath.Join(dir, name)
		if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
			return fmt.Errorf("mkdir %s: %w", filepath.Dir(path), err)
		}
		if err := os.WriteFile(path, f.Data, 0o644); err != nil {
			return fmt.Errorf("write %s: %w", path, err)
		}
	}
	return nil
}

// Dir parses src as a txtar archive, extracts it into a fresh temporary
// directory and returns that directory. The archive comment is ignored.
func Dir(t testing.TB, src string) string {
	t.Helper()
	dir := t.TempDir()
	if err := Extract(txtar.Parse([]byte(src)), dir); err != nil {
		t.Fatalf("fixture: %v", err)
	}
	return dir
}

// Tree returns every regular file beneath dir keyed by slash-separated
// relative path. Renderer tests compare whole output trees with it.
func Tree(t testing.TB, dir string) map[string]string {
	t.Helper()
	out := make(map[string]string)
	err := filepath.WalkDir(dir, func(path string, d os.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if d.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(dir, path)
		if err != nil {
			return err
		}
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		out[filepath.ToSlash(rel)] = string(data)
		return nil
	})
	if err != nil {
		t.Fatalf("fixture: walk %s: %v", dir, err)
	}
	return out
}
