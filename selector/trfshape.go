package selector

import (
	"fmt"
	"math"

	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/shapeset"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
	"gonum.org/v1/gonum/floats"
	"gonum.org/v1/gonum/mat"
)

// orthoTol is how far Gram-Schmidt may shrink a function, relative to its
// norm before orthogonalization, before the set is declared dependent
const orthoTol = 1.e-10

// ShapeExp is one function sampled at every point of an integration rule,
// derivatives are in the function's own reference coordinates
type ShapeExp struct {
	V, Dx, Dy []float64
}

func newShapeExp(n int) ShapeExp {
	return ShapeExp{V: make([]float64, n), Dx: make([]float64, n), Dy: make([]float64, n)}
}

func (se ShapeExp) addScaled(alpha float64, o ShapeExp) {
	floats.AddScaled(se.V, alpha, o.V)
	floats.AddScaled(se.Dx, alpha, o.Dx)
	floats.AddScaled(se.Dy, alpha, o.Dy)
}

func (se ShapeExp) scale(alpha float64) {
	floats.Scale(alpha, se.V)
	floats.Scale(alpha, se.Dx)
	floats.Scale(alpha, se.Dy)
}

func (se ShapeExp) zero() {
	for k := range se.V {
		se.V[k], se.Dx[k], se.Dy[k] = 0, 0, 0
	}
}

// energy is sum_k w_k (a*b + a_x*b_x + a_y*b_y)
func energy(w []float64, a, b ShapeExp) (sum float64) {
	for k, wk := range w {
		sum += wk * (a.V[k]*b.V[k] + a.Dx[k]*b.Dx[k] + a.Dy[k]*b.Dy[k])
	}
	return
}

/*
TrfShape holds the shape functions of one mode and order sampled at the
points of the integration rule moved through each enumerated sub transform,
indexed [trf][shape]. Raw are the shapeset functions, Ortho the same functions
after Gram-Schmidt in the energy product over the untransformed domain.
Gram is the energy product matrix of the raw functions.
*/
type TrfShape struct {
	Mode       types.Mode
	Order      types.Order
	Indices    []int
	Rule       *quadrature.Rule
	Transforms TransformSet
	Raw, Ortho [quadrature.NumTrf][]ShapeExp
	Gram       *mat.SymDense
	chol       *mat.Cholesky // nil when Gram is not numerically positive definite
}

func (ts *TrfShape) NumShapes() int { return len(ts.Indices) }

func newTrfShape(ss shapeset.Shapeset, rule *quadrature.Rule, trfSet TransformSet,
	mode types.Mode, order types.Order) (ts *TrfShape, err error) {
	ts = &TrfShape{
		Mode:    mode,
		Order:   order,
		Indices: ss.Indices(mode, order),
		Rule:    rule,
	}
	if ts.Transforms, err = trfSet.ordered(); err != nil {
		return nil, err
	}
	ts.precalcShapes(ss)
	ts.buildGram()
	if err = ts.precalcOrthoShapes(); err != nil {
		return nil, err
	}
	return
}

// precalcShapes samples every shape under every transform
func (ts *TrfShape) precalcShapes(ss shapeset.Shapeset) {
	var (
		trfs = quadrature.Transforms(ts.Mode)
		nPts = ts.Rule.Len()
	)
	for _, t := range ts.Transforms {
		trf := trfs[t]
		ts.Raw[t] = make([]ShapeExp, len(ts.Indices))
		for i, ind := range ts.Indices {
			se := newShapeExp(nPts)
			for k := 0; k < nPts; k++ {
				x, y := trf.Apply(ts.Rule.X[k], ts.Rule.Y[k])
				s := shapeset.Eval(ss, ind, x, y, ts.Mode)
				se.V[k], se.Dx[k], se.Dy[k] = s.V, s.Dx, s.Dy
			}
			ts.Raw[t][i] = se
		}
	}
}

func (ts *TrfShape) buildGram() {
	var (
		n  = len(ts.Indices)
		id = ts.Raw[quadrature.IdentityTrf]
	)
	ts.Gram = mat.NewSymDense(n, nil)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			ts.Gram.SetSym(i, j, energy(ts.Rule.W, id[i], id[j]))
		}
	}
	var chol mat.Cholesky
	if chol.Factorize(ts.Gram) {
		ts.chol = &chol
	}
}

/*
precalcOrthoShapes runs modified Gram-Schmidt over the shapes in index order.
Products and norms are taken on the identity transform only, each
subtraction and the normalization is applied under every transform so the
sampled functions stay the same functions everywhere.
*/
func (ts *TrfShape) precalcOrthoShapes() (err error) {
	var (
		w = ts.Rule.W
		n = len(ts.Indices)
	)
	for _, t := range ts.Transforms {
		ts.Ortho[t] = make([]ShapeExp, n)
		for i, raw := range ts.Raw[t] {
			se := newShapeExp(len(raw.V))
			copy(se.V, raw.V)
			copy(se.Dx, raw.Dx)
			copy(se.Dy, raw.Dy)
			ts.Ortho[t][i] = se
		}
	}
	id := ts.Ortho[quadrature.IdentityTrf]
	for i := 0; i < n; i++ {
		norm0 := math.Sqrt(energy(w, id[i], id[i]))
		for j := 0; j < i; j++ {
			product := energy(w, id[i], id[j])
			for _, t := range ts.Transforms {
				ts.Ortho[t][i].addScaled(-product, ts.Ortho[t][j])
			}
		}
		var (
			norm   = math.Sqrt(energy(w, id[i], id[i]))
			oonorm = 1 / norm
		)
		if !utils.IsFinite(oonorm) || norm <= orthoTol*norm0 {
			return fmt.Errorf("%w: shape %d of %v order %v, norm %g",
				ErrDegenerateNorm, ts.Indices[i], ts.Mode, ts.Order, norm)
		}
		for _, t := range ts.Transforms {
			ts.Ortho[t][i].scale(oonorm)
		}
	}
	return
}

// solveGram finds the raw shape coefficients for the energy products in rhs
func (ts *TrfShape) solveGram(rhs []float64) (coeffs []float64, err error) {
	var (
		n = len(rhs)
		b = mat.NewVecDense(n, rhs)
		x = mat.NewVecDense(n, nil)
	)
	if ts.chol != nil {
		if err = ts.chol.SolveVecTo(x, b); err == nil {
			return x.RawVector().Data, nil
		}
	}
	// LU fallback
	if err = x.SolveVec(ts.Gram, b); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDegenerateNorm, err)
	}
	return x.RawVector().Data, nil
}

type shapeKey struct {
	mode  types.Mode
	order types.Order
}

type shapeEntry struct {
	ts  *TrfShape
	err error
}

// shapeCache is owned by one worker, degenerate sets are cached with their
// error so they fail fast for every later candidate
type shapeCache struct {
	ss        shapeset.Shapeset
	quadOrder int
	trfSets   [2]TransformSet
	entries   map[shapeKey]shapeEntry
}

func newShapeCache(ss shapeset.Shapeset, quadOrder int, trfSets [2]TransformSet) *shapeCache {
	return &shapeCache{
		ss:        ss,
		quadOrder: quadOrder,
		trfSets:   trfSets,
		entries:   make(map[shapeKey]shapeEntry),
	}
}

func (sc *shapeCache) get(mode types.Mode, order types.Order) (*TrfShape, error) {
	key := shapeKey{mode, order.ForMode(mode)}
	if se, ok := sc.entries[key]; ok {
		return se.ts, se.err
	}
	ts, err := newTrfShape(sc.ss, quadrature.ForMode(mode, sc.quadOrder), sc.trfSets[mode], mode, key.order)
	sc.entries[key] = shapeEntry{ts, err}
	return ts, err
}
