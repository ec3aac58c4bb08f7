package cmd

import (
	"bytes"
	"io"
	"testing"

	"github.com/notargets/hpadapt/InputParameters"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEstimate(t *testing.T) {
	fileInput := []byte(`
Title: Test Case
Norm: h1
Components: 2
MeshType: quad
Nx: 3
Ny: 3
CoarseOrder: 1
MaxOrder: 4
CandidateList: hp-aniso
Field: [peak, polynomial]
Refine: 3
`)
	ip := InputParameters.NewInputParameters()
	require.NoError(t, ip.Parse(fileInput))

	l := logrus.New()
	l.SetOutput(io.Discard)
	var out bytes.Buffer
	rep, err := Estimate(ip, logrus.NewEntry(l), &out)
	require.NoError(t, err)
	assert.Equal(t, 2, rep.Result.Components())
	assert.Equal(t, 9, rep.Result.NumElements())
	require.Len(t, rep.Worst, 3)
	require.Len(t, rep.Evaluations, 3)
	for i, ref := range rep.Worst {
		ev := rep.Evaluations[i]
		require.NotNil(t, ev)
		assert.Equal(t, ref.ElementID, ev.ElementID)
		assert.NotEmpty(t, ev.Results)
		if i > 0 {
			assert.LessOrEqual(t, ref.ErrorSquared(), rep.Worst[i-1].ErrorSquared())
		}
	}
	assert.Contains(t, out.String(), "best:")

	ip.MeshType = "hex"
	_, err = Estimate(ip, logrus.NewEntry(l), &out)
	assert.Error(t, err)
}

func TestNewProblemLabels(t *testing.T) {
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)
	ip := InputParameters.NewInputParameters()
	m, err := ip.BuildMesh()
	require.NoError(t, err)

	_, prob, err := newProblem(ip, m, log)
	require.NoError(t, err)
	assert.Len(t, prob.Exact, 1)

	bad := *ip
	bad.CandidateList = "hp-everything"
	_, _, err = newProblem(&bad, m, log)
	assert.ErrorContains(t, err, "hp-everything")

	bad = *ip
	bad.ProjectionMethod = "least-squares"
	_, _, err = newProblem(&bad, m, log)
	assert.ErrorContains(t, err, "least-squares")
}
