package model_problems

import (
	"io"
	"testing"

	"github.com/notargets/hpadapt/adapt"
	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/selector"
	"github.com/notargets/hpadapt/shapeset"
	"github.com/notargets/hpadapt/types"
	"github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func quietLog() *logrus.Entry {
	l := logrus.New()
	l.SetOutput(io.Discard)
	return logrus.NewEntry(l)
}

func newSelector() *selector.Selector {
	return selector.NewSelector(shapeset.NewLegendre(0), selector.HPIso, selector.WithLogger(quietLog()))
}

func TestFieldTypes(t *testing.T) {
	ft, err := NewFieldType(" Peak")
	require.NoError(t, err)
	assert.Equal(t, PEAK, ft)
	assert.Equal(t, "Exponential Peak", ft.String())
	_, err = NewFieldType("")
	assert.Error(t, err)
	_, err = NewFieldType("vortex")
	assert.Error(t, err)
	for _, ft := range []FieldType{POLYNOMIAL, PEAK, SINCOS} {
		assert.NotNil(t, NewExactField(ft))
	}
}

func TestExactFields(t *testing.T) {
	{
		p := NewExactField(POLYNOMIAL).(Polynomial)
		assert.Equal(t, 3, p.Degree())
		smp := p.At(1, 2)
		assert.InDelta(t, 2., smp.V, 1.e-14)
		assert.InDelta(t, -1., smp.Dx, 1.e-14)
		assert.InDelta(t, 2., smp.Dy, 1.e-14)
	}
	// derivatives against central differences
	h := 1.e-6
	for _, ef := range []ExactField{NewExactField(PEAK), NewExactField(SINCOS), NewExactField(POLYNOMIAL)} {
		for _, xy := range [][2]float64{{0.1, 0.2}, {0.55, 0.45}, {0.9, 0.7}} {
			var (
				x, y = xy[0], xy[1]
				smp  = ef.At(x, y)
				dx   = (ef.At(x+h, y).V - ef.At(x-h, y).V) / (2 * h)
				dy   = (ef.At(x, y+h).V - ef.At(x, y-h).V) / (2 * h)
			)
			assert.InDelta(t, dx, smp.Dx, 1.e-6)
			assert.InDelta(t, dy, smp.Dy, 1.e-6)
		}
	}
	// Sample goes through the element map
	e := mesh.NewElement(0, types.Quad, []float64{0, 2, 2, 0}, []float64{1, 1, 2, 2})
	sc := NewExactField(SINCOS)
	assert.Equal(t, sc.At(1, 1.5), sc.Sample(e, 0, 0))
}

func TestProjectedField(t *testing.T) {
	poly := NewExactField(POLYNOMIAL)
	for _, mode := range []types.Mode{types.Quad, types.Triangle} {
		sm, err := mesh.NewStructured(2, 2, 0, 1, 0, 1, mode)
		require.NoError(t, err)
		sel := newSelector()

		exact, err := NewProjectedField(sel, sm, poly, types.NewOrder(3))
		require.NoError(t, err)
		assert.InDelta(t, 0., exact.ErrorSquared(), 1.e-16)
		for _, e := range sm.ActiveElements() {
			require.NotNil(t, exact.Projection(e.ID))
			for _, rs := range [][2]float64{{-0.5, -0.5}, {0.2, -0.6}} {
				var (
					got  = exact.Sample(e, rs[0], rs[1])
					want = poly.Sample(e, rs[0], rs[1])
				)
				assert.InDelta(t, want.V, got.V, 1.e-11)
				assert.InDelta(t, want.Dx, got.Dx, 1.e-10)
				assert.InDelta(t, want.Dy, got.Dy, 1.e-10)
			}
		}

		coarse, err := NewProjectedField(sel, sm, poly, types.NewOrder(1))
		require.NoError(t, err)
		assert.Greater(t, coarse.ErrorSquared(), 1.e-8)
	}
}

func TestProblem(t *testing.T) {
	sm, err := mesh.NewStructured(3, 3, 0, 1, 0, 1, types.Quad)
	require.NoError(t, err)
	sel := newSelector()
	_, err = NewProblem(sm, nil, sel, types.NewOrder(2))
	assert.Error(t, err)

	p, err := NewProblem(sm, []ExactField{NewExactField(PEAK), NewExactField(POLYNOMIAL)}, sel, types.NewOrder(2))
	require.NoError(t, err)
	assert.Equal(t, 2, p.Components())

	calc := adapt.NewDefaultCalculator(types.AbsoluteError, types.H1Norm, p.Components(),
		adapt.WithLogger(quietLog()))
	_, err = calc.CalculateErrors(p.CoarseFields(), p.FineFields(), sm, true)
	require.NoError(t, err)
	e0, err := calc.ErrorSquared(0)
	require.NoError(t, err)
	assert.Greater(t, e0, 0.)
	// the polynomial is cubic, Q2 misses it
	e1, err := calc.ErrorSquared(1)
	require.NoError(t, err)
	assert.Greater(t, e1, 0.)

	// the peak dominates the worst element
	worst, err := calc.Worst(1)
	require.NoError(t, err)
	require.Len(t, worst, 1)
	assert.Equal(t, 0, worst[0].Component)

	elements := []*mesh.Element{sm.Element(worst[0].ElementID)}
	evs, err := sel.EvaluateElements(elements, p.Exact[0], p.Orders(elements))
	require.NoError(t, err)
	require.Len(t, evs, 1)
	best, ok := evs[0].Best(selector.ErrorReductionScore(evs[0].Base))
	require.True(t, ok)
	assert.Less(t, best.ErrorSquared, evs[0].Base.ErrorSquared)
}
