package shapeset

import (
	"testing"

	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/types"
	"github.com/stretchr/testify/assert"
)

// valuesOnly hides the Evaluator fast path
type valuesOnly struct{ *Legendre }

func (v valuesOnly) Sample() {}

func TestLegendreIndices(t *testing.T) {
	ls := NewLegendre(6)
	assert.Equal(t, 6, ls.MaxOrder())
	for p := 0; p <= 6; p++ {
		I := ls.Indices(types.Triangle, types.NewOrder(p))
		assert.Len(t, I, (p+1)*(p+2)/2)
		assert.Equal(t, 0, I[0])
		var last int
		for _, ind := range I {
			o := ls.IndexOrder(types.Triangle, ind)
			assert.LessOrEqual(t, o.H, p)
			assert.GreaterOrEqual(t, o.H, last)
			last = o.H
		}
	}
	I := ls.Indices(types.Quad, types.Order{H: 2, V: 3})
	assert.Len(t, I, 12)
	assert.Equal(t, 0, I[0])
	for _, ind := range I {
		assert.True(t, types.Order{H: 2, V: 3}.Contains(ls.IndexOrder(types.Quad, ind)))
		assert.LessOrEqual(t, ind, ls.MaxIndex(types.Quad))
	}
	// Orders beyond the shapeset are clamped
	assert.Len(t, ls.Indices(types.Triangle, types.NewOrder(20)), 28)
	assert.Equal(t, 0., ls.Value(-1, 0, 0, types.Quad))
	assert.Equal(t, 0., ls.Value(ls.MaxIndex(types.Triangle)+1, 0, 0, types.Triangle))
	assert.Equal(t, types.Order{}, ls.IndexOrder(types.Quad, 1000))
}

func TestLegendreOrthonormal(t *testing.T) {
	ls := NewLegendre(5)
	for _, mode := range []types.Mode{types.Triangle, types.Quad} {
		var (
			r = quadrature.ForMode(mode, 12)
			I = ls.Indices(mode, types.NewOrder(5))
		)
		for _, i := range I {
			for _, j := range I {
				var s float64
				for k := range r.W {
					s += r.W[k] * ls.Value(i, r.X[k], r.Y[k], mode) * ls.Value(j, r.X[k], r.Y[k], mode)
				}
				want := 0.
				if i == j {
					want = 1
				}
				assert.InDeltaf(t, want, s, 1.e-10, "%v <%d,%d>", mode, i, j)
			}
		}
	}
}

func TestLegendreDerivatives(t *testing.T) {
	var (
		ls  = NewLegendre(5)
		h   = 1.e-6
		pts = [][2]float64{{-0.7, -0.6}, {-0.2, 0.1}, {0.3, -0.8}, {-0.9, 0.5}}
	)
	for _, mode := range []types.Mode{types.Triangle, types.Quad} {
		for _, ind := range ls.Indices(mode, types.NewOrder(5)) {
			for _, p := range pts {
				var (
					x, y = p[0], p[1]
					s    = Eval(ls, ind, x, y, mode)
					fdx  = (ls.Value(ind, x+h, y, mode) - ls.Value(ind, x-h, y, mode)) / (2 * h)
					fdy  = (ls.Value(ind, x, y+h, mode) - ls.Value(ind, x, y-h, mode)) / (2 * h)
				)
				assert.InDeltaf(t, fdx, s.Dx, 1.e-5, "%v index %d dx at %v", mode, ind, p)
				assert.InDeltaf(t, fdy, s.Dy, 1.e-5, "%v index %d dy at %v", mode, ind, p)
				assert.Equal(t, s.Dx, ls.Dx(ind, x, y, mode))
				assert.Equal(t, s.Dy, ls.Dy(ind, x, y, mode))
			}
		}
	}
}

func TestEvalFallback(t *testing.T) {
	var (
		ls = NewLegendre(3)
		vo Shapeset = valuesOnly{ls}
	)
	_, isEvaluator := vo.(Evaluator)
	assert.False(t, isEvaluator)
	for _, ind := range ls.Indices(types.Quad, types.NewOrder(3)) {
		assert.Equal(t, ls.Sample(ind, 0.2, -0.4, types.Quad), Eval(vo, ind, 0.2, -0.4, types.Quad))
	}
}
