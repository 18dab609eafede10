package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/mattn/go-isatty"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masonry/internal/config"
	"masonry/internal/fixture"
)

const workspace = `
-- components/aws/system.yaml --
name: AWS
-- components/aws/ec2/component.yaml --
name: EC2
references:
  - name: Diagram
    path: diagram.png
    type: Image
verifications:
  audit:
    name: Audit
    path: audit.txt
satisfies:
  NIST-800-53:
    AC-2:
      narrative: We do X.
      references:
        - verification: audit
-- components/aws/ec2/diagram.png --
PNG
-- components/aws/ec2/audit.txt --
AUDIT
-- standards/NIST-800-53.yaml --
AC-2:
  name: Account Management
AC-3:
  name: Access Enforcement
-- certifications/LATO.yaml --
standards:
  NIST-800-53: [AC-2, AC-3]
-- certifications/Clean.yaml --
standards:
  NIST-800-53: [AC-2]
`

// execute runs the CLI with args and returns everything written to stdout
// and stderr.
func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()
	for _, k := range []string{config.EnvLogLevel, config.EnvLogFormat, config.EnvWorkers} {
		t.Setenv(k, "")
	}
	var out bytes.Buffer
	root := newRootCmd()
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

// ---------------------------------------------------------------------------
// Dispatch and help
// ---------------------------------------------------------------------------

func TestHelpListsEverySubcommand(t *testing.T) {
	out, err := execute(t, "--help")
	require.NoError(t, err)
	for _, c := range newRootCmd().Commands() {
		if c.Hidden {
			continue
		}
		if !strings.Contains(out, c.Name()) {
			t.Errorf("help output missing command %q", c.Name())
		}
	}
}

func TestSubcommandsHaveUsage(t *testing.T) {
	for _, c := range newRootCmd().Commands() {
		if c.Short == "" {
			t.Errorf("command %q has empty short description", c.Name())
		}
		if c.RunE == nil && c.Run == nil && !c.HasSubCommands() && c.Name() != "help" && c.Name() != "completion" {
			t.Errorf("command %q has no run func", c.Name())
		}
	}
}

func TestUnknownCommand(t *testing.T) {
	_, err := execute(t, "no-such-command")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown command")
}

func TestBadArgs(t *testing.T) {
	for _, args := range [][]string{
		{"docs"},
		{"docs", "gitbook"},
		{"inventory"},
		{"export", "a", "b"},
		{"init", "a", "b"},
		{"new", "system"},
		{"new", "component", "aws"},
	} {
		t.Run(strings.Join(args, "_"), func(t *testing.T) {
			_, err := execute(t, args...)
			require.Error(t, err)
			assert.NotContains(t, err.Error(), "unknown command")
		})
	}
}

func TestInvalidLogLevel(t *testing.T) {
	_, err := execute(t, "--log-level", "loud", "certifications", "--data", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid config")
}

// ---------------------------------------------------------------------------
// Workspace commands
// ---------------------------------------------------------------------------

func TestCertificationsLists(t *testing.T) {
	data := fixture.Dir(t, workspace)
	out, err := execute(t, "--log-level", "error", "certifications", "--data", data)
	require.NoError(t, err)
	assert.Equal(t, "Clean\nLATO\n", out)
}

func TestCertificationsMissingWorkspace(t *testing.T) {
	_, err := execute(t, "certifications", "--data", filepath.Join(t.TempDir(), "nope"))
	assert.Error(t, err)
}

func TestExportWritesCertificationAndArtifacts(t *testing.T) {
	data := fixture.Dir(t, workspace)
	exports := filepath.Join(t.TempDir(), "exports")

	out, err := execute(t, "--log-level", "error", "export", "LATO", "--data", data, "--output", exports)
	require.NoError(t, err)
	assert.Contains(t, out, "exported "+filepath.Join(exports, "LATO.yaml"))
	assert.Contains(t, out, "1 diagnostic(s) reported")

	for _, p := range []string{"LATO.yaml", "aws/ec2/diagram.png", "aws/ec2/audit.txt"} {
		_, err := os.Stat(filepath.Join(exports, filepath.FromSlash(p)))
		assert.NoError(t, err, p)
	}
}

func TestExportStrict(t *testing.T) {
	data := fixture.Dir(t, workspace)
	exports := t.TempDir()

	_, err := execute(t, "--log-level", "error", "export", "LATO", "--strict", "--data", data, "--output", exports)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--strict")

	_, err = execute(t, "export", "Clean", "--strict", "--data", data, "--output", exports)
	assert.NoError(t, err)
}

func TestExportUnknownCertification(t *testing.T) {
	data := fixture.Dir(t, workspace)
	_, err := execute(t, "export", "Nope", "--data", data, "--output", t.TempDir())
	assert.Error(t, err)
}

func TestExportWithoutNameNeedsTerminal(t *testing.T) {
	if isatty.IsTerminal(os.Stdin.Fd()) {
		t.Skip("stdin is a terminal")
	}
	data := fixture.Dir(t, workspace)
	_, err := execute(t, "export", "--data", data, "--output", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "certification name required")
	assert.Contains(t, err.Error(), "LATO")
}

func TestExportJSON(t *testing.T) {
	data := fixture.Dir(t, workspace)
	exports := t.TempDir()

	out, err := execute(t, "--log-level", "error", "export", "Clean", "--format", "json", "--data", data, "--output", exports)
	require.NoError(t, err)
	assert.Contains(t, out, "exported "+filepath.Join(exports, "Clean.json"))

	raw, err := os.ReadFile(filepath.Join(exports, "Clean.json"))
	require.NoError(t, err)
	var doc map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &doc))
	assert.Equal(t, "Clean", doc["name"])

	_, err = execute(t, "--log-level", "error", "export", "Clean", "--format", "json", "--flatten", "--separator", "..", "--data", data, "--output", exports)
	require.NoError(t, err)
	raw, err = os.ReadFile(filepath.Join(exports, "Clean.json"))
	require.NoError(t, err)
	var flat map[string]interface{}
	require.NoError(t, json.Unmarshal(raw, &flat))
	assert.Equal(t, "We do X.", flat["standards..NIST-800-53..AC-2..justifications..0..narrative"])
}

func TestExportFormatErrors(t *testing.T) {
	data := fixture.Dir(t, workspace)
	_, err := execute(t, "export", "Clean", "--flatten", "--data", data, "--output", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "--flatten unsupported for YAML")

	_, err = execute(t, "export", "Clean", "--format", "xml", "--data", data, "--output", t.TempDir())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

// ---------------------------------------------------------------------------
// Scaffolding
// ---------------------------------------------------------------------------

func TestInitAndNewBuildAWorkspace(t *testing.T) {
	data := filepath.Join(t.TempDir(), "data")

	out, err := execute(t, "init", data)
	require.NoError(t, err)
	assert.Contains(t, out, "created workspace at "+data)

	_, err = execute(t, "init", data)
	assert.Error(t, err, "init refuses a non-empty directory")

	out, err = execute(t, "new", "component", "Payments", "API Gateway", "--data", data)
	require.NoError(t, err)
	assert.Contains(t, out, filepath.Join(data, "components", "payments", "api-gateway", "component.yaml"))
	assert.FileExists(t, filepath.Join(data, "components", "payments", "system.yaml"))

	_, err = execute(t, "new", "system", "payments", "--data", data)
	assert.Error(t, err, "existing system.yaml is not overwritten")

	require.NoError(t, os.WriteFile(filepath.Join(data, "certifications", "LATO.yaml"), []byte("standards: {}\n"), 0o644))
	out, err = execute(t, "--log-level", "error", "export", "LATO", "--data", data, "--output", t.TempDir())
	require.NoError(t, err)
	assert.NotContains(t, out, "diagnostic(s) reported")
}

// ---------------------------------------------------------------------------
// Rendering
// ---------------------------------------------------------------------------

func exported(t *testing.T) string {
	t.Helper()
	data := fixture.Dir(t, workspace)
	exports := t.TempDir()
	_, err := execute(t, "--log-level", "error", "export", "Clean", "--data", data, "--output", exports)
	require.NoError(t, err)
	return filepath.Join(exports, "Clean.yaml")
}

func TestDocsGitbook(t *testing.T) {
	cert := exported(t)
	book := t.TempDir()

	out, err := execute(t, "docs", "gitbook", cert, "--output", book)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote gitbook "+book)

	for _, p := range []string{"SUMMARY.md", "README.md", "artifacts/aws/ec2/diagram.png"} {
		_, err := os.Stat(filepath.Join(book, filepath.FromSlash(p)))
		assert.NoError(t, err, p)
	}
}

func TestDocsDocx(t *testing.T) {
	cert := exported(t)
	dir := t.TempDir()

	out, err := execute(t, "--log-level", "error", "docs", "docx", cert, "--output", dir)
	require.NoError(t, err)
	assert.Contains(t, out, "wrote docx "+filepath.Join(dir, "Clean.docx"))

	_, err = os.Stat(filepath.Join(dir, "Clean.docx"))
	assert.NoError(t, err)
}

func TestDocsUnknownFormat(t *testing.T) {
	cert := exported(t)
	_, err := execute(t, "docs", "pdf", cert)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown format")
}

func TestInventory(t *testing.T) {
	cert := exported(t)
	dir := t.TempDir()

	_, err := execute(t, "inventory", cert, "--output", dir)
	require.NoError(t, err)

	data, err := os.ReadFile(filepath.Join(dir, "Clean.yaml"))
	require.NoError(t, err)
	assert.Contains(t, string(data), "certification: Clean")
}

// ---------------------------------------------------------------------------
// Picker
// ---------------------------------------------------------------------------

func TestPickerModelLists(t *testing.T) {
	m := newPickerModel([]string{"Clean", "LATO"})
	assert.Len(t, m.list.Items(), 2)
	assert.Equal(t, certItem("Clean"), m.list.SelectedItem())
}
