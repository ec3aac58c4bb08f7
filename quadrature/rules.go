package quadrature

import (
	"fmt"
	"math"
	"sync"

	"github.com/notargets/hpadapt/types"
)

// Rule is a set of integration points on a reference domain. For line rules Y
// is nil.
type Rule struct {
	Order   int
	X, Y, W []float64
}

func (r *Rule) Len() int { return len(r.W) }

// Map returns the rule moved through trf: points go to M*x+T and the weights
// pick up the area ratio |Mx*My|.
func (r *Rule) Map(trf Trf) (R *Rule) {
	var (
		n    = r.Len()
		area = math.Abs(trf.M[0] * trf.M[1])
	)
	R = &Rule{
		Order: r.Order,
		X:     make([]float64, n),
		Y:     make([]float64, n),
		W:     make([]float64, n),
	}
	for k := 0; k < n; k++ {
		R.X[k], R.Y[k] = trf.Apply(r.X[k], r.Y[k])
		R.W[k] = r.W[k] * area
	}
	return
}

// Composite joins the rule mapped through each transform
func (r *Rule) Composite(trfs []Trf) (R *Rule) {
	R = &Rule{Order: r.Order}
	for _, trf := range trfs {
		m := r.Map(trf)
		R.X = append(R.X, m.X...)
		R.Y = append(R.Y, m.Y...)
		R.W = append(R.W, m.W...)
	}
	return
}

// pointsForOrder is the number of Gauss points needed to integrate degree
// order exactly
func pointsForOrder(order int) int {
	if order < 1 {
		return 1
	}
	return (order + 2) / 2
}

func Line(order int) (R *Rule) {
	X, W := JacobiGQ(0, 0, pointsForOrder(order)-1)
	R = &Rule{Order: order, X: X, W: W}
	return
}

func Quad(order int) (R *Rule) {
	var (
		X, W = JacobiGQ(0, 0, pointsForOrder(order)-1)
		n    = len(X)
	)
	R = &Rule{
		Order: order,
		X:     make([]float64, n*n),
		Y:     make([]float64, n*n),
		W:     make([]float64, n*n),
	}
	var sk int
	for j := 0; j < n; j++ {
		for i := 0; i < n; i++ {
			R.X[sk], R.Y[sk], R.W[sk] = X[i], X[j], W[i]*W[j]
			sk++
		}
	}
	return
}

// Triangle collapses a tensor Gauss rule onto the reference triangle:
// r = (1+a)(1-b)/2 - 1, s = b, with the (1-b) Jacobian carried by the
// Gauss-Jacobi(1,0) weights in b.
func Triangle(order int) (R *Rule) {
	var (
		nP     = pointsForOrder(order)
		A, WA  = JacobiGQ(0, 0, nP-1)
		B, WB  = JacobiGQ(1, 0, nP-1)
		na, nb = len(A), len(B)
	)
	R = &Rule{
		Order: order,
		X:     make([]float64, na*nb),
		Y:     make([]float64, na*nb),
		W:     make([]float64, na*nb),
	}
	var sk int
	for j := 0; j < nb; j++ {
		for i := 0; i < na; i++ {
			R.X[sk] = 0.5*(1+A[i])*(1-B[j]) - 1
			R.Y[sk] = B[j]
			R.W[sk] = 0.5 * WA[i] * WB[j]
			sk++
		}
	}
	return
}

type ruleKey struct {
	mode  types.Mode
	order int
	sons  bool
	line  bool
}

var (
	ruleCache   = map[ruleKey]*Rule{}
	ruleCacheMu sync.Mutex
)

// ForMode returns a cached rule; callers must not modify it
func ForMode(mode types.Mode, order int) (R *Rule) {
	return cached(ruleKey{mode: mode, order: order}, func() *Rule {
		switch mode {
		case types.Triangle:
			return Triangle(order)
		case types.Quad:
			return Quad(order)
		}
		panic(fmt.Errorf("no quadrature for mode %v", mode))
	})
}

// Sons returns the cached composite rule over the four reference sons of the
// element, used where the integrand is only piecewise smooth at that level.
func Sons(mode types.Mode, order int) (R *Rule) {
	return cached(ruleKey{mode: mode, order: order, sons: true}, func() *Rule {
		return ForMode(mode, order).Composite(SonTransforms(mode))
	})
}

// LineSons is the line rule repeated on both halves of [-1,1], matching the
// edges of the sons
func LineSons(order int) (R *Rule) {
	return cached(ruleKey{order: order, sons: true, line: true}, func() *Rule {
		var (
			l = Line(order)
			n = l.Len()
		)
		r := &Rule{Order: order, X: make([]float64, 2*n), W: make([]float64, 2*n)}
		for k := 0; k < n; k++ {
			r.X[k], r.W[k] = 0.5*l.X[k]-0.5, 0.5*l.W[k]
			r.X[n+k], r.W[n+k] = 0.5*l.X[k]+0.5, 0.5*l.W[k]
		}
		return r
	})
}

func cached(key ruleKey, build func() *Rule) (R *Rule) {
	ruleCacheMu.Lock()
	R, ok := ruleCache[key]
	ruleCacheMu.Unlock()
	if ok {
		return
	}
	R = build()
	ruleCacheMu.Lock()
	ruleCache[key] = R
	ruleCacheMu.Unlock()
	return
}
