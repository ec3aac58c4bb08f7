package mesh

import (
	"testing"

	"github.com/notargets/hpadapt/types"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestElementGeometry(t *testing.T) {
	{ // Affine triangle
		e := NewElement(0, types.Triangle, []float64{0, 2, 0}, []float64{0, 0, 1})
		x, y := e.RefToPhys(-1, -1)
		assert.Equal(t, [2]float64{0, 0}, [2]float64{x, y})
		x, y = e.RefToPhys(1, -1)
		assert.InDelta(t, 2., x, 1.e-15)
		assert.InDelta(t, 0., y, 1.e-15)
		J, det := e.Jacobian(0.1, -0.3)
		assert.InDelta(t, 1., J[0][0], 1.e-15)
		assert.InDelta(t, 0.5, J[1][1], 1.e-15)
		assert.InDelta(t, 0.5, det, 1.e-15)
		assert.InDelta(t, 1., e.Area(), 1.e-15)
		r, s, err := e.PhysToRef(0.5, 0.25)
		require.NoError(t, err)
		x, y = e.RefToPhys(r, s)
		assert.InDelta(t, 0.5, x, 1.e-13)
		assert.InDelta(t, 0.25, y, 1.e-13)
		nx, ny := e.EdgeNormal(0)
		assert.InDelta(t, 0., nx, 1.e-15)
		assert.InDelta(t, -1., ny, 1.e-15)
		assert.InDelta(t, 2., e.EdgeLength(0), 1.e-15)
		r, s = e.EdgeRefPoint(1, 0)
		assert.Equal(t, [2]float64{0, 0}, [2]float64{r, s})
	}
	{ // Non affine quad
		e := NewElement(3, types.Quad, []float64{0, 2, 2.5, 0}, []float64{0, 0, 1.5, 1})
		assert.InDelta(t, 2.75, e.Area(), 1.e-14)
		for _, p := range [][2]float64{{-0.5, 0.25}, {0.9, 0.9}, {-1, 1}} {
			x, y := e.RefToPhys(p[0], p[1])
			r, s, err := e.PhysToRef(x, y)
			require.NoError(t, err)
			assert.InDelta(t, p[0], r, 1.e-12)
			assert.InDelta(t, p[1], s, 1.e-12)
		}
		for edge := 0; edge < 4; edge++ {
			// outward normals point away from the centroid
			r, s := e.EdgeRefPoint(edge, 0)
			x, y := e.RefToPhys(r, s)
			nx, ny := e.EdgeNormal(edge)
			assert.Greater(t, nx*(x-1.125)+ny*(y-0.625), 0.)
		}
	}
	assert.Panics(t, func() { NewElement(0, types.Quad, []float64{0, 1, 1}, []float64{0, 0, 1}) })
}

func TestFieldSamples(t *testing.T) {
	var (
		e = NewElement(0, types.Quad, []float64{1, 3, 3.2, 1}, []float64{0, 0.4, 2, 1.5})
		f = PhysicalFunc(func(x, y float64) types.Sample {
			return types.Sample{V: x*x + 3*y, Dx: 2 * x, Dy: 3}
		})
		h = 1.e-6
	)
	for _, p := range [][2]float64{{0, 0}, {-0.4, 0.7}, {0.8, -0.9}} {
		var (
			ps  = f.Sample(e, p[0], p[1])
			rs  = ReferenceSample(e, p[0], p[1], ps)
			fdr = (f.Sample(e, p[0]+h, p[1]).V - f.Sample(e, p[0]-h, p[1]).V) / (2 * h)
			fds = (f.Sample(e, p[0], p[1]+h).V - f.Sample(e, p[0], p[1]-h).V) / (2 * h)
		)
		assert.InDelta(t, fdr, rs.Dx, 1.e-6)
		assert.InDelta(t, fds, rs.Dy, 1.e-6)
		back := PhysicalSample(e, p[0], p[1], rs)
		assert.InDelta(t, ps.Dx, back.Dx, 1.e-12)
		assert.InDelta(t, ps.Dy, back.Dy, 1.e-12)
	}
}

func TestStructured(t *testing.T) {
	{ // quads
		sm, err := NewStructured(3, 2, 0, 3, 0, 1, types.Quad)
		require.NoError(t, err)
		assert.Len(t, sm.Elements, 6)
		assert.Equal(t, 6, sm.NumActive())
		assert.Equal(t, 10, sm.BoundaryEdges)
		assert.Equal(t, 17, sm.EdgeCount)
		e := sm.Element(4) // i=1, j=1
		assert.Equal(t, []int{1, 5, -1, 3}, e.Neighbors)
		assert.Equal(t, []string{"", "", "top", ""}, e.EdgeMarkers)
		assert.Equal(t, []string{"bottom", "", "", "left"}, sm.Element(0).EdgeMarkers)
		assert.Equal(t, DomainMarker, e.Marker)
		assert.Nil(t, sm.Element(6))
		// neighbor relations are symmetric
		for _, el := range sm.Elements {
			for _, nbr := range el.Neighbors {
				if nbr >= 0 {
					assert.Contains(t, sm.Element(nbr).Neighbors, el.ID)
				}
			}
		}
	}
	{ // triangles
		sm, err := NewStructured(2, 2, -1, 1, -1, 1, types.Triangle, "s", "e", "n", "w")
		require.NoError(t, err)
		assert.Len(t, sm.Elements, 8)
		assert.Equal(t, 8, sm.BoundaryEdges)
		assert.Equal(t, 16, sm.EdgeCount)
		var area float64
		for _, el := range sm.Elements {
			area += el.Area()
			assert.Greater(t, el.Area(), 0.)
		}
		assert.InDelta(t, 4., area, 1.e-14)
		// Lower left cell: the diagonal is edge 1 of the first triangle
		assert.Equal(t, []int{-1, 1, -1}, sm.Element(0).Neighbors)
		assert.Equal(t, []string{"s", "", "w"}, sm.Element(0).EdgeMarkers)
		sm.Element(1).Active = false
		assert.Equal(t, 7, sm.NumActive())
		act := sm.ActiveElements()
		assert.Len(t, act, 7)
		assert.Equal(t, 2, act[1].ID)
		sm.SetMarker("corner", func(x, y float64) bool { return x > 0.5 && y > 0.5 })
		assert.Equal(t, "corner", sm.Element(7).Marker)
		assert.Equal(t, DomainMarker, sm.Element(6).Marker)
	}
	_, err := NewStructured(0, 2, 0, 1, 0, 1, types.Quad)
	assert.Error(t, err)
	_, err = NewStructured(2, 2, 0, 1, 0, 1, types.Quad, "a")
	assert.Error(t, err)
}
