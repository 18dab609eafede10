package render

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masonry/internal/model"
)

func sampleCert() *model.Certification {
	cert := model.NewCertification("LATO")
	cert.Components["aws"] = model.SystemSnapshot{
		Name: "AWS",
		Components: map[string]model.ComponentSnapshot{
			"ec2": {Name: "EC2", References: []model.Reference{}, Verifications: map[string]model.Reference{}},
		},
	}
	cert.Standards["NIST-800-53"] = map[string]*model.Control{
		"AC-2": {
			Meta: model.ControlInfo{Name: "Account Management"},
			Justifications: []model.Justification{{
				System:     "aws",
				Component:  "ec2",
				Narrative:  model.PlainNarrative("We do X."),
				References: []model.Reference{{System: "aws", Component: "ec2", Verification: "missing"}},
			}},
		},
	}
	return cert
}

func TestNamesAreSorted(t *testing.T) {
	assert.Equal(t, []string{"docx", "gitbook", "inventory"}, Names())
}

func TestLookupUnknown(t *testing.T) {
	_, err := Lookup("pdf")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "gitbook")
}

func TestEveryRendererWrites(t *testing.T) {
	want := map[string]string{
		"gitbook":   "",
		"docx":      "LATO.docx",
		"inventory": "LATO.yaml",
	}
	for _, name := range Names() {
		t.Run(name, func(t *testing.T) {
			r, err := Lookup(name)
			require.NoError(t, err)
			assert.Equal(t, name, r.Name())

			out := t.TempDir()
			res, err := r.Render(sampleCert(), out, Options{})
			require.NoError(t, err)
			assert.Equal(t, filepath.Join(out, want[name]), res.Path)

			_, err = os.Stat(res.Path)
			assert.NoError(t, err)
		})
	}
}

func TestRenderersReportCrossReferences(t *testing.T) {
	for _, name := range []string{"gitbook", "docx"} {
		r, err := Lookup(name)
		require.NoError(t, err)
		res, err := r.Render(sampleCert(), t.TempDir(), Options{})
		require.NoError(t, err)
		assert.Len(t, res.Diagnostics, 1, name)
	}
}
