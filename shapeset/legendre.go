package shapeset

import (
	"math"
	"sort"

	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
)

/*
Legendre is a modal shapeset:
  - quads use L_i(x)*L_j(y) with L_n the orthonormal Legendre polynomial,
    the span for order (H,V) is Q_{H,V}
  - triangles use the orthonormal PKD (Dubiner) basis on the collapsed
    coordinates (a,b), the span for order p is P_p
Index 0 is the constant function in both modes.
*/
type Legendre struct {
	P        int
	triTerms [][2]int // index -> (i,j)
	triOrder []int
}

func NewLegendre(maxOrder int) (ls *Legendre) {
	if maxOrder < 1 {
		maxOrder = DefaultMaxOrder
	}
	ls = &Legendre{P: maxOrder}
	for i := 0; i <= maxOrder; i++ {
		for j := 0; j <= maxOrder-i; j++ {
			ls.triTerms = append(ls.triTerms, [2]int{i, j})
		}
	}
	ls.triOrder = make([]int, len(ls.triTerms))
	for sk := range ls.triTerms {
		ls.triOrder[sk] = sk
	}
	sort.SliceStable(ls.triOrder, func(a, b int) bool {
		ta, tb := ls.triTerms[ls.triOrder[a]], ls.triTerms[ls.triOrder[b]]
		return ta[0]+ta[1] < tb[0]+tb[1]
	})
	return
}

func (ls *Legendre) MaxOrder() int { return ls.P }

func (ls *Legendre) MaxIndex(mode types.Mode) int {
	if mode == types.Triangle {
		return len(ls.triTerms) - 1
	}
	return (ls.P+1)*(ls.P+1) - 1
}

func (ls *Legendre) quadTerm(index int) (i, j int) {
	return index % (ls.P + 1), index / (ls.P + 1)
}

func (ls *Legendre) valid(index int, mode types.Mode) bool {
	return index >= 0 && index <= ls.MaxIndex(mode) && mode <= types.Quad
}

func (ls *Legendre) IndexOrder(mode types.Mode, index int) (o types.Order) {
	if !ls.valid(index, mode) {
		return
	}
	if mode == types.Triangle {
		t := ls.triTerms[index]
		return types.NewOrder(t[0] + t[1])
	}
	i, j := ls.quadTerm(index)
	return types.Order{H: i, V: j}
}

func (ls *Legendre) Indices(mode types.Mode, order types.Order) (I []int) {
	var (
		H = min(order.H, ls.P)
		V = min(order.V, ls.P)
	)
	switch mode {
	case types.Triangle:
		for _, sk := range ls.triOrder {
			t := ls.triTerms[sk]
			if t[0]+t[1] <= H {
				I = append(I, sk)
			}
		}
	case types.Quad:
		for j := 0; j <= V; j++ {
			for i := 0; i <= H; i++ {
				I = append(I, i+(ls.P+1)*j)
			}
		}
		sort.SliceStable(I, func(a, b int) bool {
			ia, ja := ls.quadTerm(I[a])
			ib, jb := ls.quadTerm(I[b])
			return ia+ja < ib+jb
		})
	}
	return
}

func (ls *Legendre) Value(index int, x, y float64, mode types.Mode) float64 {
	return ls.Sample(index, x, y, mode).V
}

func (ls *Legendre) Dx(index int, x, y float64, mode types.Mode) float64 {
	return ls.Sample(index, x, y, mode).Dx
}

func (ls *Legendre) Dy(index int, x, y float64, mode types.Mode) float64 {
	return ls.Sample(index, x, y, mode).Dy
}

func (ls *Legendre) Sample(index int, x, y float64, mode types.Mode) (s types.Sample) {
	if !ls.valid(index, mode) {
		return
	}
	if mode == types.Quad {
		i, j := ls.quadTerm(index)
		var (
			li, dli = quadrature.JacobiPAt(x, 0, 0, i), quadrature.GradJacobiPAt(x, 0, 0, i)
			lj, dlj = quadrature.JacobiPAt(y, 0, 0, j), quadrature.GradJacobiPAt(y, 0, 0, j)
		)
		return types.Sample{V: li * lj, Dx: dli * lj, Dy: li * dlj}
	}
	t := ls.triTerms[index]
	return simplex2DP(x, y, t[0], t[1])
}

// RStoAB maps the reference triangle onto the collapsed square
func RStoAB(r, s float64) (a, b float64) {
	if s != 1 {
		a = 2*(1+r)/(1-s) - 1
	} else {
		a = -1
	}
	b = s
	return
}

// simplex2DP evaluates the orthonormal PKD mode (i,j) and its gradient
func simplex2DP(r, s float64, id, jd int) (m types.Sample) {
	var (
		a, b = RStoAB(r, s)
		fa   = quadrature.JacobiPAt(a, 0, 0, id)
		dfa  = quadrature.GradJacobiPAt(a, 0, 0, id)
		gb   = quadrature.JacobiPAt(b, 2*float64(id)+1, 0, jd)
		dgb  = quadrature.GradJacobiPAt(b, 2*float64(id)+1, 0, jd)
		hb   = 0.5 * (1 - b)
		norm = math.Pow(2, float64(id)+0.5)
	)
	m.V = norm * fa * gb * utils.POW(hb, id)

	// r-derivative: d/da * da/dr, da/dr = 2/(1-b)
	m.Dx = dfa * gb
	if id > 0 {
		m.Dx *= utils.POW(hb, id-1)
	}
	// s-derivative: ((1+a)/(1-b)) d/da + d/db
	m.Dy = dfa * gb * 0.5 * (1 + a)
	if id > 0 {
		m.Dy *= utils.POW(hb, id-1)
	}
	tmp := dgb * utils.POW(hb, id)
	if id > 0 {
		tmp -= 0.5 * float64(id) * gb * utils.POW(hb, id-1)
	}
	m.Dy += fa * tmp

	m.Dx *= norm
	m.Dy *= norm
	return
}
