// Package mesh is the contract the error calculator and the selector consume
// from the mesh and solution layer, plus a structured mesh used by the model
// problems and the tests.
package mesh

import (
	"fmt"

	"github.com/james-bowman/sparse"
	"github.com/notargets/hpadapt/types"
)

const DomainMarker = "domain"

// Boundary markers of a structured mesh, by side
var DefaultBoundaryMarkers = [4]string{"bottom", "right", "top", "left"}

type Mesh interface {
	// ActiveElements are returned in a stable order, the position in the
	// slice is the element's active local index
	ActiveElements() []*Element
	Element(id int) *Element
	NumActive() int
}

// Grid is a conforming mesh of triangles and quads
type Grid struct {
	Elements                 []*Element
	EdgeCount, BoundaryEdges int
}

type Structured struct {
	Grid
	Nx, Ny         int
	X0, X1, Y0, Y1 float64
	Mode           types.Mode
}

/*
NewStructured builds an nx by ny grid of quads over [x0,x1]x[y0,y1], or two
triangles per grid cell. Edges on the domain boundary carry markers[side] with
sides ordered bottom, right, top, left.
*/
func NewStructured(nx, ny int, x0, x1, y0, y1 float64, mode types.Mode,
	markers ...string) (sm *Structured, err error) {
	if nx < 1 || ny < 1 || !(x1 > x0) || !(y1 > y0) {
		err = fmt.Errorf("invalid structured mesh %dx%d over [%g,%g]x[%g,%g]", nx, ny, x0, x1, y0, y1)
		return
	}
	bm := DefaultBoundaryMarkers
	switch len(markers) {
	case 0:
	case 4:
		copy(bm[:], markers)
	default:
		err = fmt.Errorf("need one boundary marker per side, have %d", len(markers))
		return
	}
	sm = &Structured{Nx: nx, Ny: ny, X0: x0, X1: x1, Y0: y0, Y1: y1, Mode: mode}
	var (
		dx   = (x1 - x0) / float64(nx)
		dy   = (y1 - y0) / float64(ny)
		vert = func(i, j int) (vx, vy float64, vi int) {
			return x0 + float64(i)*dx, y0 + float64(j)*dy, i + (nx+1)*j
		}
		EToV [][]int
	)
	add := func(ij ...[2]int) {
		var (
			vx, vy = make([]float64, len(ij)), make([]float64, len(ij))
			vi     = make([]int, len(ij))
		)
		for n, p := range ij {
			vx[n], vy[n], vi[n] = vert(p[0], p[1])
		}
		sm.Elements = append(sm.Elements, NewElement(len(sm.Elements), mode, vx, vy))
		EToV = append(EToV, vi)
	}
	for j := 0; j < ny; j++ {
		for i := 0; i < nx; i++ {
			switch mode {
			case types.Quad:
				add([2]int{i, j}, [2]int{i + 1, j}, [2]int{i + 1, j + 1}, [2]int{i, j + 1})
			case types.Triangle:
				add([2]int{i, j}, [2]int{i + 1, j}, [2]int{i, j + 1})
				add([2]int{i + 1, j + 1}, [2]int{i, j + 1}, [2]int{i + 1, j})
			default:
				err = fmt.Errorf("unsupported element mode %v", mode)
				return
			}
		}
	}
	sm.connect(EToV, (nx+1)*(ny+1))
	sm.markBoundaries(bm)
	return
}

// connect finds neighbors through the edge to vertex incidence matrix: two
// edges are the same edge when they share both vertices, which is where
// FToV * FToV^T equals 2 off the diagonal
func (g *Grid) connect(EToV [][]int, Nv int) {
	var (
		K      = len(EToV)
		offset = make([]int, K+1) // first edge row of each element
		owner  []int
	)
	for k, e := range g.Elements {
		offset[k+1] = offset[k] + e.Mode.NumEdges()
		for edge := 0; edge < e.Mode.NumEdges(); edge++ {
			owner = append(owner, k)
		}
	}
	TotalEdges := offset[K]
	SpFToV_Tmp := sparse.NewDOK(TotalEdges, Nv)
	for k := 0; k < K; k++ {
		NEdges := offset[k+1] - offset[k]
		for edge := 0; edge < NEdges; edge++ {
			SpFToV_Tmp.Set(offset[k]+edge, EToV[k][edge], 1)
			SpFToV_Tmp.Set(offset[k]+edge, EToV[k][(edge+1)%NEdges], 1)
		}
	}
	SpFToF := sparse.NewCSR(TotalEdges, TotalEdges, nil, nil, nil)
	SpFToV := SpFToV_Tmp.ToCSR()
	SpFToF.Mul(SpFToV, SpFToV.T())
	raw := SpFToF.RawMatrix()
	var shared int
	for row := 0; row < TotalEdges; row++ {
		for ii := raw.Indptr[row]; ii < raw.Indptr[row+1]; ii++ {
			col := raw.Ind[ii]
			if col == row || raw.Data[ii] != 2 {
				continue
			}
			k := owner[row]
			g.Elements[k].Neighbors[row-offset[k]] = g.Elements[owner[col]].ID
			shared++
		}
	}
	g.BoundaryEdges = TotalEdges - shared
	g.EdgeCount = g.BoundaryEdges + shared/2
}

func (sm *Structured) markBoundaries(bm [4]string) {
	var (
		tol = 1.e-10 * max(sm.X1-sm.X0, sm.Y1-sm.Y0)
		on  = func(a, b float64) bool { return a > b-tol && a < b+tol }
	)
	for _, e := range sm.Elements {
		for edge, nbr := range e.Neighbors {
			if nbr != -1 {
				continue
			}
			r, s := e.EdgeRefPoint(edge, 0)
			x, y := e.RefToPhys(r, s)
			switch {
			case on(y, sm.Y0):
				e.EdgeMarkers[edge] = bm[0]
			case on(x, sm.X1):
				e.EdgeMarkers[edge] = bm[1]
			case on(y, sm.Y1):
				e.EdgeMarkers[edge] = bm[2]
			case on(x, sm.X0):
				e.EdgeMarkers[edge] = bm[3]
			}
		}
	}
}

func (g *Grid) ActiveElements() (active []*Element) {
	active = make([]*Element, 0, len(g.Elements))
	for _, e := range g.Elements {
		if e.Active {
			active = append(active, e)
		}
	}
	return
}

func (g *Grid) Element(id int) *Element {
	if id < 0 || id >= len(g.Elements) {
		return nil
	}
	return g.Elements[id]
}

func (g *Grid) NumActive() (n int) {
	for _, e := range g.Elements {
		if e.Active {
			n++
		}
	}
	return
}

// SetMarker assigns an element marker to every element whose centroid
// satisfies within
func (g *Grid) SetMarker(marker string, within func(x, y float64) bool) {
	for _, e := range g.Elements {
		var cx, cy float64
		for i := range e.VX {
			cx += e.VX[i]
			cy += e.VY[i]
		}
		n := float64(len(e.VX))
		if within(cx/n, cy/n) {
			e.Marker = marker
		}
	}
}
