package InputParameters

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/notargets/hpadapt/model_problems"
	"github.com/notargets/hpadapt/selector"
	"github.com/notargets/hpadapt/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse(t *testing.T) {
	input := `
########################################
Title: "Peak on triangles"
Strategy: relative
Norm: L2
Components: 2
MeshType: triangle
Nx: 6
Ny: 3
Domain: [0, 2, -1, 1]
CoarseOrder: 1
MaxOrder: 5
CandidateList: hp-iso
Field: [peak, sincos]
Refine: 4
########################################
`
	ip := NewInputParameters()
	require.NoError(t, ip.Parse([]byte(input)))
	require.NoError(t, ip.Validate())
	assert.Equal(t, "Peak on triangles", ip.Title)
	assert.Equal(t, 2, ip.Components)
	assert.Equal(t, [4]float64{0, 2, -1, 1}, ip.Domain)
	assert.Equal(t, 5, ip.MaxOrder)
	assert.Equal(t, 4, ip.Refine)
	// defaults survive for keys that are absent
	assert.Equal(t, selector.DefaultQuadOrder, ip.QuadOrder)
	assert.Equal(t, "orthonormal", ip.ProjectionMethod)

	mode, err := ip.Mode()
	require.NoError(t, err)
	assert.Equal(t, types.Triangle, mode)
	fts, err := ip.FieldTypes()
	require.NoError(t, err)
	assert.Equal(t, []model_problems.FieldType{model_problems.PEAK, model_problems.SINCOS}, fts)
}

func TestValidate(t *testing.T) {
	ip := NewInputParameters()
	require.NoError(t, ip.Validate())
	ip.Components = 3
	fts, err := ip.FieldTypes()
	require.NoError(t, err)
	assert.Len(t, fts, 3)

	bad := NewInputParameters()
	bad.Strategy = "worst"
	bad.MeshType = "hex"
	bad.Field = []string{"peak", "peak"}
	bad.CoarseOrder = 3
	bad.MaxOrder = 2
	err = bad.Validate()
	require.Error(t, err)
	for _, msg := range []string{"worst", "hex", "2 fields for 1 components", "max order 2"} {
		assert.Contains(t, err.Error(), msg)
	}
}

func TestBuildMesh(t *testing.T) {
	ip := NewInputParameters()
	m, err := ip.BuildMesh()
	require.NoError(t, err)
	assert.Equal(t, 16, m.NumActive())

	su2 := `NDIME= 2
NELEM= 2
5 0 1 2 0
5 1 3 2 1
NPOIN= 4
0 0 0
1 0 1
0 1 2
1 1 3
NMARK= 1
MARKER_TAG= wall
MARKER_ELEMS= 4
3 0 1
3 1 3
3 3 2
3 2 0
`
	ip.MeshFile = filepath.Join(t.TempDir(), "square.su2")
	require.NoError(t, os.WriteFile(ip.MeshFile, []byte(su2), 0644))
	ip.MeshType = "ignored"
	require.NoError(t, ip.Validate())
	m, err = ip.BuildMesh()
	require.NoError(t, err)
	require.Equal(t, 2, m.NumActive())
	for _, e := range m.ActiveElements() {
		assert.Equal(t, types.Triangle, e.Mode)
		assert.Contains(t, e.EdgeMarkers, "wall")
	}

	ip.MeshFile = filepath.Join(t.TempDir(), "missing.su2")
	_, err = ip.BuildMesh()
	assert.Error(t, err)
}
