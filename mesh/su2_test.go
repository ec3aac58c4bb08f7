package mesh

import (
	"strings"
	"testing"

	"github.com/notargets/hpadapt/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestReadSU2(t *testing.T) {
	g, err := ReadSU2(strings.NewReader(su2Triangles))
	require.NoError(t, err)
	assert.Len(t, g.Elements, 22)
	assert.Equal(t, 22, g.NumActive())
	assert.Equal(t, 12, g.BoundaryEdges)
	assert.Equal(t, 39, g.EdgeCount)
	var (
		area   float64
		counts = make(map[string]int)
	)
	for _, e := range g.Elements {
		assert.Equal(t, types.Triangle, e.Mode)
		assert.Greater(t, e.Area(), 0.)
		area += e.Area()
		for edge, nbr := range e.Neighbors {
			if nbr >= 0 {
				assert.Contains(t, g.Element(nbr).Neighbors, e.ID)
				assert.Empty(t, e.EdgeMarkers[edge])
				continue
			}
			counts[e.EdgeMarkers[edge]]++
		}
	}
	assert.InDelta(t, 200., area, 1.e-9)
	assert.Equal(t, map[string]int{"periodic-left": 2, "periodic-right": 2, "top": 4, "bottom": 4}, counts)
	// last vertex of the last element
	e := g.Element(21)
	assert.Contains(t, e.VX, -7.100939331382065)
	assert.Contains(t, e.VY, 2.889910324036197)
}

func TestReadSU2Quads(t *testing.T) {
	// the second quad is listed clockwise
	input := `NDIME= 2
NELEM= 2
9 0 1 4 3 0
9 1 2 5 4 1
NPOIN= 6
0 0 0
1 0 1
2 0 2
0 1 3
1 1 4
2 1 5
NMARK= 2
MARKER_TAG= wall
MARKER_ELEMS= 2
3 0 1
3 1 2
MARKER_TAG= outlet
MARKER_ELEMS= 1
3 2 5`
	g, err := ReadSU2(strings.NewReader(strings.Replace(input, "9 1 2 5 4 1", "9 1 4 5 2 1", 1)))
	require.NoError(t, err)
	require.Len(t, g.Elements, 2)
	assert.Equal(t, 7, g.EdgeCount)
	for _, e := range g.Elements {
		assert.Equal(t, types.Quad, e.Mode)
		assert.InDelta(t, 1., e.Area(), 1.e-14)
		assert.Contains(t, e.Neighbors, 1-e.ID)
	}
	assert.Contains(t, g.Element(1).EdgeMarkers, "outlet")
	assert.Contains(t, g.Element(1).EdgeMarkers, "wall")
	assert.Contains(t, g.Element(0).EdgeMarkers, "wall")

	for name, bad := range map[string]string{
		"interior marker": strings.Replace(input, "3 2 5", "3 1 4", 1),
		"hexahedra":       strings.Replace(input, "9 0 1 4 3 0", "12 0 1 4 3 0", 1),
		"three dim":       strings.Replace(input, "NDIME= 2", "NDIME= 3", 1),
		"vertex range":    strings.Replace(input, "9 0 1 4 3 0", "9 0 1 4 7 0", 1),
		"truncated":       input[:strings.Index(input, "NMARK")],
		"token":           strings.Replace(input, "NPOIN= 6", "NPOINTS= 6", 1),
	} {
		_, err := ReadSU2(strings.NewReader(bad))
		assert.Error(t, err, name)
	}
	_, err = ReadSU2File("no_such_file.su2")
	assert.Error(t, err)
}

var su2Triangles = ` %This is an example input file in SU2 format, output from gmsh
% Comments can appear outside of data areas
NDIME= 2
% Comments can appear outside of data areas
NELEM= 22
5 5 6 13 0
5 9 10 12 1
5 12 5 13 2
5 9 12 13 3
5 13 6 14 4
5 12 10 15 5
5 8 9 13 6
5 4 5 12 7
5 1 7 14 8
5 6 1 14 9
5 3 11 15 10
5 10 3 15 11
5 8 13 16 12
5 4 12 17 13
5 13 14 16 14
5 12 15 17 15
5 7 2 16 16
5 11 0 17 17
5 2 8 16 18
5 0 4 17 19
5 14 7 16 20
5 15 11 17 21
% Comments can appear outside of data areas
NPOIN= 18
-10 0 0
10 0 1
10 10 2
-10 10 3
-5.000000000004944 0 4
-1.231725832440134e-11 0 5
4.99999999999384 0 6
10 4.999999999992398 7
5.000000000004944 10 8
1.231725832440134e-11 10 9
-4.99999999999384 10 10
-10 5 11
-2.500000000008632 4.330127018915808 12
2.50000000000863 5.669872981084192 13
6.712741669205853 3.668411415814691 14
-6.712741669205681 6.331588584184096 15
7.100939331384343 7.110089675963254 16
-7.100939331382065 2.889910324036197 17
NMARK= 4
% Comments can appear outside of data areas
MARKER_TAG= periodic-left
% Comments can appear outside of data areas
MARKER_ELEMS= 2
3 3 11
3 11 0
% Comments can appear outside of data areas
MARKER_TAG= periodic-right
MARKER_ELEMS= 2
3 1 7
3 7 2
% Comments can appear outside of data areas
MARKER_TAG= top
MARKER_ELEMS= 4
3 2 8
3 8 9
3 9 10
3 10 3
MARKER_TAG= bottom
% Comments can appear outside of data areas
MARKER_ELEMS= 4
3 0 4
3 4 5
3 5 6
3 6 1
% Comments can appear outside of data areas
`
