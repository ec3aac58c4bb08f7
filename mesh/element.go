package mesh

import (
	"fmt"
	"math"

	"github.com/notargets/hpadapt/types"
)

// Element is one cell of a 2D mesh. Vertices are stored counter clockwise,
// edge k runs from vertex k to vertex k+1.
type Element struct {
	ID          int
	Mode        types.Mode
	Marker      string
	VX, VY      []float64
	EdgeMarkers []string // "" for interior edges
	Neighbors   []int    // -1 where there is no neighbor across the edge
	IROCache    int      // integration order hint from the geometry, 0 for straight sided cells
	Active      bool
}

func NewElement(id int, mode types.Mode, vx, vy []float64) (e *Element) {
	nE := mode.NumEdges()
	if len(vx) != nE || len(vy) != nE {
		panic(fmt.Errorf("a %v needs %d vertices, have %d", mode, nE, len(vx)))
	}
	e = &Element{
		ID:          id,
		Mode:        mode,
		Marker:      DomainMarker,
		VX:          vx,
		VY:          vy,
		EdgeMarkers: make([]string, nE),
		Neighbors:   make([]int, nE),
		Active:      true,
	}
	for i := range e.Neighbors {
		e.Neighbors[i] = -1
	}
	return
}

// shape returns the vertex weights of the geometric map at (r,s) and their
// reference derivatives
func (e *Element) shape(r, s float64) (N, Nr, Ns [4]float64) {
	switch e.Mode {
	case types.Triangle:
		N = [4]float64{-0.5 * (r + s), 0.5 * (1 + r), 0.5 * (1 + s)}
		Nr = [4]float64{-0.5, 0.5, 0}
		Ns = [4]float64{-0.5, 0, 0.5}
	default:
		N = [4]float64{
			0.25 * (1 - r) * (1 - s),
			0.25 * (1 + r) * (1 - s),
			0.25 * (1 + r) * (1 + s),
			0.25 * (1 - r) * (1 + s),
		}
		Nr = [4]float64{-0.25 * (1 - s), 0.25 * (1 - s), 0.25 * (1 + s), -0.25 * (1 + s)}
		Ns = [4]float64{-0.25 * (1 - r), -0.25 * (1 + r), 0.25 * (1 + r), 0.25 * (1 - r)}
	}
	return
}

func (e *Element) RefToPhys(r, s float64) (x, y float64) {
	N, _, _ := e.shape(r, s)
	for i := range e.VX {
		x += N[i] * e.VX[i]
		y += N[i] * e.VY[i]
	}
	return
}

// Jacobian returns J[i][j] = d(x_i)/d(r_j) and its determinant
func (e *Element) Jacobian(r, s float64) (J [2][2]float64, det float64) {
	_, Nr, Ns := e.shape(r, s)
	for i := range e.VX {
		J[0][0] += Nr[i] * e.VX[i]
		J[0][1] += Ns[i] * e.VX[i]
		J[1][0] += Nr[i] * e.VY[i]
		J[1][1] += Ns[i] * e.VY[i]
	}
	det = J[0][0]*J[1][1] - J[0][1]*J[1][0]
	return
}

// InverseJacobian returns d(r_i)/d(x_j), used to move derivatives between
// reference and physical coordinates
func (e *Element) InverseJacobian(r, s float64) (Ji [2][2]float64, det float64) {
	var J [2][2]float64
	J, det = e.Jacobian(r, s)
	oodet := 1 / det
	Ji[0][0] = J[1][1] * oodet
	Ji[0][1] = -J[0][1] * oodet
	Ji[1][0] = -J[1][0] * oodet
	Ji[1][1] = J[0][0] * oodet
	return
}

const (
	newtonTol      = 1.e-13
	newtonMaxIters = 25
)

// PhysToRef inverts the geometric map by Newton iteration, affine elements
// converge in one step
func (e *Element) PhysToRef(x, y float64) (r, s float64, err error) {
	for it := 0; it < newtonMaxIters; it++ {
		var (
			px, py = e.RefToPhys(r, s)
			fx, fy = px - x, py - y
			Ji, _  = e.InverseJacobian(r, s)
			dr     = Ji[0][0]*fx + Ji[0][1]*fy
			ds     = Ji[1][0]*fx + Ji[1][1]*fy
		)
		r -= dr
		s -= ds
		if math.Abs(dr)+math.Abs(ds) < newtonTol {
			return
		}
	}
	err = fmt.Errorf("element %d: no reference point found for (%g,%g)", e.ID, x, y)
	return
}

func (e *Element) refVertices() (R, S []float64) {
	if e.Mode == types.Triangle {
		return []float64{-1, 1, -1}, []float64{-1, -1, 1}
	}
	return []float64{-1, 1, 1, -1}, []float64{-1, -1, 1, 1}
}

// EdgeRefPoint is the reference coordinate at parameter t in [-1,1] along
// an edge
func (e *Element) EdgeRefPoint(edge int, t float64) (r, s float64) {
	var (
		R, S = e.refVertices()
		v1   = edge
		v2   = (edge + 1) % len(R)
		a    = 0.5 * (1 - t)
		b    = 0.5 * (1 + t)
	)
	r = a*R[v1] + b*R[v2]
	s = a*S[v1] + b*S[v2]
	return
}

func (e *Element) edgeVector(edge int) (dx, dy float64) {
	v2 := (edge + 1) % len(e.VX)
	return e.VX[v2] - e.VX[edge], e.VY[v2] - e.VY[edge]
}

// EdgeNormal is the outward unit normal of a straight edge
func (e *Element) EdgeNormal(edge int) (nx, ny float64) {
	dx, dy := e.edgeVector(edge)
	l := math.Hypot(dx, dy)
	return dy / l, -dx / l
}

func (e *Element) EdgeLength(edge int) float64 {
	return math.Hypot(e.edgeVector(edge))
}

// Area integrates the Jacobian determinant
func (e *Element) Area() (a float64) {
	if e.Mode == types.Triangle {
		_, det := e.Jacobian(-1, -1)
		return 2 * det
	}
	// The bilinear determinant is affine in (r,s)
	_, det := e.Jacobian(0, 0)
	return 4 * det
}

func (e *Element) String() string {
	return fmt.Sprintf("%v %d [%s]", e.Mode, e.ID, e.Marker)
}
