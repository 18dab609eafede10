package scaffold

import (
	"io/fs"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masonry/internal/fixture"
	"masonry/internal/opencontrol"
)

func TestInitCreatesLoadableWorkspace(t *testing.T) {
	dir := filepath.Join(t.TempDir(), DefaultDir)
	require.NoError(t, Init(dir))

	assert.DirExists(t, filepath.Join(dir, "components"))
	assert.DirExists(t, filepath.Join(dir, "standards"))
	assert.DirExists(t, filepath.Join(dir, "certifications"))

	settings, err := os.ReadFile(filepath.Join(dir, ".masonry", "settings.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "exclude:\n  components: []\n  standards: []\n  systems: []\n", string(settings))

	w, err := opencontrol.OpenWorkspace(dir)
	require.NoError(t, err)
	assert.NotNil(t, w.Settings)
	systems, err := w.LoadSystems()
	require.NoError(t, err)
	assert.Empty(t, systems)
	certs, err := w.ListCertifications()
	require.NoError(t, err)
	assert.Empty(t, certs)
}

func TestInitAcceptsEmptyDir(t *testing.T) {
	assert.NoError(t, Init(t.TempDir()))
}

func TestInitRefusesExistingWorkspace(t *testing.T) {
	dir := fixture.Dir(t, `
-- components/aws/system.yaml --
name: AWS
`)
	err := Init(dir)
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestNewComponentIsLoadable(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, Init(dir))

	path, err := NewComponent(dir, "My System", "Web Server")
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(dir, "components", "my-system", "web-server", "component.yaml"), path)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(data), "documentation_complete: false\n")
	assert.Contains(t, string(data), "satisfies: {}\n")

	sys, err := opencontrol.LoadSystem(filepath.Join(dir, "components", "my-system"))
	require.NoError(t, err)
	assert.Equal(t, "My System", sys.Name)
	assert.Equal(t, []string{"web-server"}, sys.Keys())

	comp, ok := sys.Component("web-server")
	require.True(t, ok)
	assert.Equal(t, "Web Server", comp.Record.Name)
	require.Len(t, comp.Record.References, 1)
	assert.Equal(t, "Image", comp.Record.References[0].Type)
	assert.Equal(t, "Verification Name", comp.Record.Verifications["Verification_ID"].Name)
	assert.Empty(t, sys.Mapping())
}

func TestNewKeepsExistingFiles(t *testing.T) {
	dir := t.TempDir()
	_, err := NewSystem(dir, "aws")
	require.NoError(t, err)
	_, err = NewSystem(dir, "AWS")
	assert.ErrorIs(t, err, fs.ErrExist)

	sysFile := filepath.Join(dir, "components", "aws", "system.yaml")
	require.NoError(t, os.WriteFile(sysFile, []byte("name: Amazon\n"), 0o644))
	_, err = NewComponent(dir, "aws", "ec2")
	require.NoError(t, err)
	data, err := os.ReadFile(sysFile)
	require.NoError(t, err)
	assert.Equal(t, "name: Amazon\n", string(data))

	_, err = NewComponent(dir, "aws", "EC2")
	assert.ErrorIs(t, err, fs.ErrExist)
}

func TestNewRejectsEmptyKeys(t *testing.T) {
	_, err := NewSystem(t.TempDir(), "  ")
	assert.Error(t, err)
	_, err = NewComponent(t.TempDir(), "aws", "!!")
	assert.Error(t, err)
}
