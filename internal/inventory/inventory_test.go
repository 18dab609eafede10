package inventory

import (
	"os"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"masonry/internal/model"
)

func certWithGaps() *model.Certification {
	cert := model.NewCertification("LATO")
	cert.Standards["NIST-800-53"] = map[string]*model.Control{
		"AC-2": {
			Justifications: []model.Justification{
				{
					System:               "aws",
					Component:            "ec2",
					ImplementationStatus: model.StatusComplete,
					Narrative:            model.PlainNarrative("We do X."),
					References:           []model.Reference{{Verification: "a"}, {Verification: "b"}},
				},
				{
					System:    "aws",
					Component: "s3",
					Narrative: model.SectionedNarrative(map[string]string{"1": "a", "2": "b"}),
				},
				{Narrative: model.PlainNarrative("")},
			},
		},
		"AC-99": model.NewControl(),
	}
	cert.Components["aws"] = model.SystemSnapshot{Components: map[string]model.ComponentSnapshot{
		"ec2": {
			DocumentationComplete: true,
			References:            []model.Reference{{Name: "r"}},
			Verifications:         map[string]model.Reference{"a": {}, "b": {}, "c": {}},
		},
		"s3": {References: []model.Reference{}},
	}}
	return cert
}

func TestBuildPresenceSignals(t *testing.T) {
	inv := Build(certWithGaps())
	assert.Equal(t, "LATO", inv.Certification)

	assert.Equal(t, ComponentEntry{DocumentationComplete: true, References: 1, Verifications: 3}, inv.Components["aws"]["ec2"])
	assert.Equal(t, ComponentEntry{References: Missing, Verifications: Missing}, inv.Components["aws"]["s3"])

	ac2, ok := inv.Standards["NIST-800-53"]["AC-2"].(map[string]map[string]JustificationEntry)
	require.True(t, ok)
	assert.Equal(t, JustificationEntry{ImplementationStatus: "complete", Narrative: Present, References: 2}, ac2["aws"]["ec2"])
	assert.Equal(t, JustificationEntry{ImplementationStatus: Missing, Narrative: 2, References: Missing}, ac2["aws"]["s3"])
	assert.Equal(t, JustificationEntry{ImplementationStatus: Missing, Narrative: Missing, References: Missing}, ac2[noSystem][noComponent])

	assert.Equal(t, MissingJustifications, inv.Standards["NIST-800-53"]["AC-99"])
}

const wantInventory = `certification: LATO
components:
  aws:
    ec2:
      documentation_complete: true
      references: 1
      verifications: 3
    s3:
      documentation_complete: false
      references: Missing
      verifications: Missing
standards:
  NIST-800-53:
    AC-2:
      No System:
        No Name:
          implementation_status: Missing
          narrative: Missing
          references: Missing
      aws:
        ec2:
          implementation_status: complete
          narrative: Present
          references: 2
        s3:
          implementation_status: Missing
          narrative: 2
          references: Missing
    AC-99: Missing Justifications
`

func TestWrite(t *testing.T) {
	out := t.TempDir()
	path, err := Write(Build(certWithGaps()), out)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, wantInventory, string(data))
}
