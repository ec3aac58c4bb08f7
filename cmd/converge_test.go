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

func TestConverge(t *testing.T) {
	ip := InputParameters.NewInputParameters()
	require.NoError(t, ip.Parse([]byte(`
Title: cubic
Norm: h1
Nx: 2
Ny: 2
CoarseOrder: 1
Field: [polynomial]
`)))
	l := logrus.New()
	l.SetOutput(io.Discard)
	log := logrus.NewEntry(l)

	var out bytes.Buffer
	cs, err := Converge(ip, 3, log, &out)
	require.NoError(t, err)
	assert.Equal(t, []int{4, 16, 64}, cs.NumElements)
	rates := cs.Rates()
	for i := 1; i < cs.Levels(); i++ {
		assert.Less(t, cs.TotalSquared[i], cs.TotalSquared[i-1])
		assert.Greater(t, rates[i], 0.)
	}
	assert.Contains(t, out.String(), "title,order,elements")

	_, err = Converge(ip, 1, log, &out)
	assert.Error(t, err)
	ip.MeshFile = "mesh.su2"
	_, err = Converge(ip, 3, log, &out)
	assert.Error(t, err)
}
