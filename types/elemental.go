package types

import (
	"fmt"
	"math"
)

// Mode is the reference shape of an element.
// The reference triangle has vertices (-1,-1), (1,-1), (-1,1), the reference
// quad is [-1,1]x[-1,1].
type Mode uint8

const (
	Triangle Mode = iota
	Quad
)

func (m Mode) String() string {
	switch m {
	case Triangle:
		return "triangle"
	case Quad:
		return "quad"
	}
	return fmt.Sprintf("Mode(%d)", m)
}

// NumEdges is 3 for triangles, 4 for quads
func (m Mode) NumEdges() int {
	if m == Triangle {
		return 3
	}
	return 4
}

// Order is the polynomial degree of an element. Triangles only use H, quads
// may carry a different degree in each reference direction.
type Order struct {
	H, V int
}

func NewOrder(p int) Order { return Order{H: p, V: p} }

func (o Order) Max() int {
	if o.V > o.H {
		return o.V
	}
	return o.H
}

func (o Order) Min() int {
	if o.V < o.H {
		return o.V
	}
	return o.H
}

// ForMode folds the order onto what the mode can represent
func (o Order) ForMode(m Mode) Order {
	if m == Triangle {
		return NewOrder(o.H)
	}
	return o
}

// Contains is true when every direction of q is at or below o
func (o Order) Contains(q Order) bool {
	return q.H <= o.H && q.V <= o.V
}

func (o Order) String() string {
	if o.H == o.V {
		return fmt.Sprintf("%d", o.H)
	}
	return fmt.Sprintf("(%d,%d)", o.H, o.V)
}

// Sample is a function value and its first derivatives at one point
type Sample struct {
	V, Dx, Dy float64
}

func (s Sample) Sub(o Sample) Sample {
	return Sample{V: s.V - o.V, Dx: s.Dx - o.Dx, Dy: s.Dy - o.Dy}
}

func (s Sample) Scale(a float64) Sample {
	return Sample{V: a * s.V, Dx: a * s.Dx, Dy: a * s.Dy}
}

// Energy is the pointwise integrand of the H1 inner product of s with o
func (s Sample) Energy(o Sample) float64 {
	return s.V*o.V + s.Dx*o.Dx + s.Dy*o.Dy
}

/*
EdgeKey is an always positive number that stores an edge's vertices as indices in a way that can be compared
An edge between vertices [4] and [0] will always be stored as [0,4], in the ascending order of the index values
*/
type EdgeKey uint64

func NewEdgeKey(verts [2]int) (packed EdgeKey) {
	// This packs two index coordinates into two 32 bit unsigned integers to act as a hash and an indirect access method
	var (
		limit = math.MaxUint32
	)
	for _, vert := range verts {
		if vert < 0 || vert > limit {
			panic(fmt.Errorf("unable to pack two ints into a uint64, have %d and %d as inputs",
				verts[0], verts[1]))
		}
	}
	var i1, i2 int
	if verts[0] <= verts[1] {
		i1, i2 = verts[0], verts[1]
	} else {
		i1, i2 = verts[1], verts[0]
	}
	packed = EdgeKey(i1 + i2<<32)
	return
}

func (ek EdgeKey) GetVertices(rev bool) (verts [2]int) {
	var (
		enTmp EdgeKey
	)
	enTmp = ek >> 32
	verts[1] = int(enTmp)
	verts[0] = int(ek - enTmp*(1<<32))
	if rev {
		verts[0], verts[1] = verts[1], verts[0]
	}
	return
}
