package certification

import (
	"bytes"
	"context"
	"log/slog"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masonry/internal/export"
	"masonry/internal/fixture"
	"masonry/internal/model"
	"masonry/internal/opencontrol"
)

const workspace = `
-- components/gcp/system.yaml --
name: Google Cloud
-- components/gcp/gce/component.yaml --
name: GCE
satisfies:
  NIST-800-53:
    AC-2:
      implementation_status: planned
      narrative: Planned.
-- components/aws/system.yaml --
name: AWS
-- components/aws/ec2/component.yaml --
name: EC2
references:
  - name: Diagram
    path: diagram.png
    type: Image
  - name: Missing
    path: missing.png
verifications:
  audit:
    name: Audit
    path: https://example.com/audit
satisfies:
  NIST-800-53:
    AC-2:
      implementation_status: complete
      narrative: We do X.
      references:
        - verification: audit
    AC-10:
      narrative:
        1: Policy defined.
        2: Policy enforced.
      references:
        - verification: nonexistent
-- components/aws/ec2/diagram.png --
PNG
-- components/aws/s3/component.yaml --
name: S3
satisfies:
  NIST-800-53:
    AC-2:
      implementation_status: partial
-- standards/NIST-800-53.yaml --
name: NIST SP 800-53
AC-2:
  name: Account Management
  family: AC
AC-10:
  name: Concurrent Session Control
-- certifications/LATO.yaml --
standards:
  NIST-800-53:
    AC-99:
    AC-10:
    AC-2:
  PCI:
    "1.1":
`

type loaded struct {
	manifest  *opencontrol.Manifest
	systems   map[string]*opencontrol.System
	standards map[string]*opencontrol.Standard
}

func load(t *testing.T) loaded {
	t.Helper()
	w, err := opencontrol.OpenWorkspace(fixture.Dir(t, workspace))
	require.NoError(t, err)
	systems, err := w.LoadSystems()
	require.NoError(t, err)
	standards, err := w.LoadStandards()
	require.NoError(t, err)
	m, err := w.LoadCertification("LATO")
	require.NoError(t, err)
	return loaded{manifest: m, systems: systems, standards: standards}
}

func resolve(t *testing.T, in loaded, opts Options) *Result {
	t.Helper()
	res, err := Resolve(context.Background(), in.manifest, in.systems, in.standards, opts)
	require.NoError(t, err)
	return res
}

func TestResolveIsTotal(t *testing.T) {
	in := load(t)
	cert := resolve(t, in, Options{}).Certification

	for std, controls := range in.manifest.Standards {
		for _, ctrl := range controls {
			c := cert.Control(std, ctrl)
			require.NotNil(t, c, "%s %s", std, ctrl)
			assert.NotNil(t, c.Justifications, "%s %s", std, ctrl)
		}
	}
	assert.Equal(t, []string{"AC-2", "AC-10", "AC-99"}, cert.ControlKeys("NIST-800-53"))
}

func TestResolveMergesClaimsAcrossSystems(t *testing.T) {
	cert := resolve(t, load(t), Options{}).Certification

	ac2 := cert.Control("NIST-800-53", "AC-2")
	var got []model.Owner
	for _, j := range ac2.Justifications {
		got = append(got, model.Owner{System: j.System, Component: j.Component})
	}
	assert.Equal(t, []model.Owner{
		{System: "aws", Component: "ec2"},
		{System: "aws", Component: "s3"},
		{System: "gcp", Component: "gce"},
	}, got)
	assert.Equal(t, model.StatusComplete, ac2.Justifications[0].ImplementationStatus)
	assert.Equal(t, "Account Management", ac2.Meta.Name)
	assert.Equal(t, "AC", ac2.Meta.Family)

	ac10 := cert.Control("NIST-800-53", "AC-10")
	require.Len(t, ac10.Justifications, 1)
	assert.Equal(t, []string{"1", "2"}, ac10.Justifications[0].Narrative.Labels())
}

func TestResolveMissingJustificationIsDiagnostic(t *testing.T) {
	res := resolve(t, load(t), Options{})

	ac99 := res.Certification.Control("NIST-800-53", "AC-99")
	require.NotNil(t, ac99)
	assert.Empty(t, ac99.Justifications)
	assert.NotNil(t, ac99.Justifications)

	var found int
	for _, d := range res.Diagnostics.OfKind(MissingJustifications) {
		if d.Standard == "NIST-800-53" && d.Control == "AC-99" {
			found++
			assert.Equal(t, "LATO", d.Certification)
		}
	}
	assert.Equal(t, 1, found)
}

func TestResolveMetadataDiagnostics(t *testing.T) {
	res := resolve(t, load(t), Options{})

	info := res.Diagnostics.OfKind(MissingControlInfo)
	require.Len(t, info, 2)
	assert.Equal(t, "AC-99", info[0].Control)
	assert.Empty(t, info[0].Detail)
	assert.Equal(t, "PCI", info[1].Standard)
	assert.Equal(t, "1.1", info[1].Control)
	assert.Equal(t, "standard not loaded", info[1].Detail)

	std := res.Diagnostics.OfKind(MissingStandard)
	require.Len(t, std, 1)
	assert.Equal(t, "PCI", std[0].Standard)
	assert.Equal(t, "1 required control(s) have no metadata", std[0].Detail)

	pci := res.Certification.Control("PCI", "1.1")
	require.NotNil(t, pci)
	assert.True(t, pci.Meta.IsZero())
}

func TestResolveCrossReferences(t *testing.T) {
	res := resolve(t, load(t), Options{})
	xref := res.Diagnostics.OfKind(MissingCrossReference)
	require.Len(t, xref, 1)
	assert.Equal(t, "AC-10", xref[0].Control)
	assert.Equal(t, "aws", xref[0].System)
	assert.Equal(t, "ec2", xref[0].Component)
	assert.Contains(t, xref[0].Detail, "nonexistent")
}

func TestResolveSnapshotsComponents(t *testing.T) {
	out := t.TempDir()
	res := resolve(t, load(t), Options{ExportDir: out})
	cert := res.Certification

	assert.Equal(t, []string{"aws", "gcp"}, cert.SystemKeys())
	assert.Equal(t, []string{"ec2", "s3"}, cert.ComponentKeys("aws"))

	ec2, ok := cert.Component("aws", "ec2")
	require.True(t, ok)
	assert.Equal(t, "aws/ec2/diagram.png", ec2.References[0].Path)
	assert.Equal(t, "missing.png", ec2.References[1].Path)
	assert.Equal(t, "https://example.com/audit", ec2.Verifications["audit"].Path)
	assert.FileExists(t, filepath.Join(out, "aws", "ec2", "diagram.png"))

	missing := res.Diagnostics.OfKind(MissingArtifact)
	require.Len(t, missing, 1)
	assert.Equal(t, "missing.png", missing[0].Detail)
	assert.Equal(t, "ec2", missing[0].Component)
}

func TestResolveIsDeterministicAcrossWorkers(t *testing.T) {
	in := load(t)
	serial := resolve(t, in, Options{Workers: 1})
	parallel := resolve(t, in, Options{Workers: 8})

	a, err := export.Marshal(serial.Certification)
	require.NoError(t, err)
	b, err := export.Marshal(parallel.Certification)
	require.NoError(t, err)
	assert.Equal(t, string(a), string(b))
	assert.Equal(t, serial.Diagnostics.Items(), parallel.Diagnostics.Items())
}

func TestResolveHonoursCancellation(t *testing.T) {
	in := load(t)
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Resolve(ctx, in.manifest, in.systems, in.standards, Options{})
	assert.ErrorIs(t, err, context.Canceled)
}

func TestGlobalIndexFoldsInSystemOrder(t *testing.T) {
	in := load(t)
	owners := GlobalIndex(in.systems).Lookup("NIST-800-53", "AC-2")
	require.Len(t, owners, 3)
	assert.Equal(t, "aws", owners[0].System)
	assert.Equal(t, "gcp", owners[2].System)
}

func TestDiagnosticsLogAndSort(t *testing.T) {
	var d Diagnostics
	d.Add(
		Diagnostic{Kind: MissingJustifications, Certification: "c", Standard: "S", Control: "AC-10"},
		Diagnostic{Kind: MissingJustifications, Certification: "c", Standard: "S", Control: "AC-9"},
		Diagnostic{Kind: MissingArtifact, Certification: "c", System: "aws", Component: "ec2", Detail: "x.png"},
	)
	sorted := d.Sorted()
	assert.Equal(t, MissingArtifact, sorted[0].Kind)
	assert.Equal(t, "AC-9", sorted[1].Control)
	assert.Equal(t, "AC-10", sorted[2].Control)

	var buf bytes.Buffer
	d.Log(slog.New(slog.NewTextHandler(&buf, nil)))
	assert.Contains(t, buf.String(), "control=AC-10")
	assert.Contains(t, buf.String(), "kind=missing-artifact")
	assert.Equal(t, 3, bytes.Count(buf.Bytes(), []byte("level=WARN")))

	assert.Equal(t, "missing-artifact: certification c component aws/ec2: x.png", sorted[0].String())
}
