package selector

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/shapeset"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
)

type ProjectionMethod uint8

const (
	// Orthonormal projects onto the orthonormalized shapes, the coefficients
	// are plain energy products
	Orthonormal ProjectionMethod = iota
	// GramSolve projects onto the raw shapes by solving the Gram system
	GramSolve
)

var ProjectionMethodNameMap = map[string]ProjectionMethod{
	"orthonormal": Orthonormal,
	"ortho":       Orthonormal,
	"gram":        GramSolve,
	"gramsolve":   GramSolve,
}

func NewProjectionMethod(label string) (pm ProjectionMethod, err error) {
	var ok bool
	if pm, ok = ProjectionMethodNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("selector: unknown projection method %q", label)
	}
	return
}

func (pm ProjectionMethod) String() string {
	switch pm {
	case Orthonormal:
		return "Orthonormal"
	case GramSolve:
		return "GramSolve"
	}
	return fmt.Sprintf("ProjectionMethod(%d)", pm)
}

/*
evaluator scores candidates of one element at a time. It owns its shape cache
and scratch so one evaluator per worker needs no locking.

rval[rson] holds the reference solution at the rule points of reference son
rson, with derivatives in the parent's reference coordinates.
*/
type evaluator struct {
	sel    *Selector
	cache  *shapeCache
	rval   [4]ShapeExp
	target ShapeExp // reference solution seen from a candidate son
	proj   ShapeExp
	rhs    []float64
}

func newEvaluator(sel *Selector) (ev *evaluator) {
	ev = &evaluator{
		sel:   sel,
		cache: newShapeCache(sel.ss, sel.quadOrder, sel.trfSets),
	}
	return
}

func resizeExp(se ShapeExp, n int) ShapeExp {
	if cap(se.V) < n {
		return newShapeExp(n)
	}
	return ShapeExp{V: se.V[:n], Dx: se.Dx[:n], Dy: se.Dy[:n]}
}

// precalcRefSolution samples ref on the four reference sons of e
func (ev *evaluator) precalcRefSolution(e *mesh.Element, ref mesh.Field) {
	var (
		rule = quadrature.ForMode(e.Mode, ev.sel.quadOrder)
		sons = quadrature.SonTransforms(e.Mode)
		n    = rule.Len()
	)
	for rson, trf := range sons {
		rv := resizeExp(ev.rval[rson], n)
		for k := 0; k < n; k++ {
			r, s := trf.Apply(rule.X[k], rule.Y[k])
			smp := mesh.ReferenceSample(e, r, s, ref.Sample(e, r, s))
			rv.V[k], rv.Dx[k], rv.Dy[k] = smp.V, smp.Dx, smp.Dy
		}
		ev.rval[rson] = rv
	}
}

// loadTarget is the reference son seen from a candidate son: derivatives move
// into the candidate son's reference coordinates through its scale coef
func (ev *evaluator) loadTarget(cv cover, coef [2]float64) {
	var (
		rv = ev.rval[cv.rson]
		n  = len(rv.V)
	)
	ev.target = resizeExp(ev.target, n)
	for k := 0; k < n; k++ {
		ev.target.V[k] = rv.V[k]
		ev.target.Dx[k] = coef[0] * rv.Dx[k]
		ev.target.Dy[k] = coef[1] * rv.Dy[k]
	}
}

// projectSon returns the coefficients of the projection of the reference
// solution onto one candidate son and the squared energy error
func (ev *evaluator) projectSon(ts *TrfShape, cand Candidate, son int,
	method ProjectionMethod) (coeffs []float64, err2 float64, err error) {
	var (
		mode   = ts.Mode
		trfs   = quadrature.Transforms(mode)
		coef   = cand.sonTrf(mode, son).M
		covers = cand.coverage()[son]
		n      = ts.NumShapes()
		w      = ts.Rule.W
		basis  = &ts.Ortho
	)
	if method == GramSolve {
		basis = &ts.Raw
	}
	for _, cv := range covers {
		if basis[cv.trf] == nil {
			return nil, 0, fmt.Errorf("%w: %d for %v", ErrMissingTransform, cv.trf, cand)
		}
	}
	if cap(ev.rhs) < n {
		ev.rhs = make([]float64, n)
	}
	rhs := ev.rhs[:n]
	for i := range rhs {
		rhs[i] = 0
	}
	for _, cv := range covers {
		area := math.Abs(trfs[cv.trf].M[0] * trfs[cv.trf].M[1])
		ev.loadTarget(cv, coef)
		for i := 0; i < n; i++ {
			rhs[i] += area * energy(w, basis[cv.trf][i], ev.target)
		}
	}
	switch method {
	case GramSolve:
		if coeffs, err = ts.solveGram(rhs); err != nil {
			return
		}
	default:
		coeffs = make([]float64, n)
		copy(coeffs, rhs)
	}
	for _, cv := range covers {
		area := math.Abs(trfs[cv.trf].M[0] * trfs[cv.trf].M[1])
		ev.loadTarget(cv, coef)
		ev.proj = resizeExp(ev.proj, len(w))
		ev.proj.zero()
		for i := 0; i < n; i++ {
			ev.proj.addScaled(coeffs[i], basis[cv.trf][i])
		}
		ev.proj.addScaled(-1, ev.target)
		err2 += area * energy(w, ev.proj, ev.proj)
	}
	return
}

func (ev *evaluator) score(e *mesh.Element, cand Candidate) (cr CandidateResult, err error) {
	cr = CandidateResult{
		Candidate:    cand,
		DOFs:         cand.DOFs(ev.sel.ss, e.Mode),
		Coefficients: make([][]float64, cand.NumSons()),
	}
	for son := 0; son < cand.NumSons(); son++ {
		var (
			ts      *TrfShape
			coeffs  []float64
			sonErr2 float64
		)
		if ts, err = ev.cache.get(e.Mode, cand.Orders[son]); err == nil {
			coeffs, sonErr2, err = ev.projectSon(ts, cand, son, ev.sel.method)
		}
		if err == nil && !utils.IsFinite(sonErr2) {
			err = ErrNonFinite
		}
		if err != nil {
			cr.Err = &CandidateError{ElementID: e.ID, Candidate: cand, Son: son, Err: err}
			cr.ErrorSquared, cr.Coefficients = math.Inf(1), nil
			if fatal(err) {
				return cr, cr.Err
			}
			return cr, nil
		}
		cr.Coefficients[son] = coeffs
		cr.ErrorSquared += sonErr2
	}
	return
}

// Projection is the projection of a field onto the raw shapes of one element
type Projection struct {
	Mode         types.Mode
	Order        types.Order
	Indices      []int
	Coefficients []float64
	ErrorSquared float64
	ss           shapeset.Shapeset
}

// Sample evaluates the projection at reference coordinates, derivatives are
// in reference coordinates
func (p *Projection) Sample(r, s float64) (smp types.Sample) {
	for i, ind := range p.Indices {
		phi := shapeset.Eval(p.ss, ind, r, s, p.Mode)
		smp.V += p.Coefficients[i] * phi.V
		smp.Dx += p.Coefficients[i] * phi.Dx
		smp.Dy += p.Coefficients[i] * phi.Dy
	}
	return
}
