/*
Package selector scores refinement candidates of an element by projecting a
reference solution onto the shape functions of every candidate son and
measuring what is left over in the energy norm.

The shape functions of each (mode, order) are sampled once per integration
point and sub transform and kept in a cache, optionally orthonormalized so the
projection reduces to inner products.
*/
package selector

import (
	"errors"
	"fmt"
	"sync"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/shapeset"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

const (
	// DefaultOrder leaves the maximum order to the element
	DefaultOrder     = -1
	DefaultQuadOrder = 20
	// elementOrderLimit bounds the order an element can take together with
	// its geometry integration order
	elementOrderLimit = 20
)

type Option func(sel *Selector)

func WithMaxOrder(order int) Option {
	return func(sel *Selector) { sel.maxOrder = order }
}

// WithQuadOrder sets the polynomial degree integrated exactly on each son
func WithQuadOrder(order int) Option {
	return func(sel *Selector) {
		if order > 0 {
			sel.quadOrder = order
		}
	}
}

func WithMethod(method ProjectionMethod) Option {
	return func(sel *Selector) { sel.method = method }
}

// WithParallelDegree limits the number of worker go routines, 0 uses every CPU
func WithParallelDegree(np int) Option {
	return func(sel *Selector) { sel.parallelDegree = np }
}

func WithLogger(log *logrus.Entry) Option {
	return func(sel *Selector) {
		if log != nil {
			sel.log = log.WithField("component", "selector")
		}
	}
}

// WithTransforms replaces the sub transforms the shapes of a mode are
// sampled under
func WithTransforms(mode types.Mode, set TransformSet) Option {
	return func(sel *Selector) { sel.trfSets[mode] = set }
}

func WithShapeset(ss shapeset.Shapeset) Option {
	return func(sel *Selector) {
		if ss != nil {
			sel.ss = ss
		}
	}
}

type Selector struct {
	ss             shapeset.Shapeset
	cands          CandidateGenerator
	maxOrder       int
	quadOrder      int
	method         ProjectionMethod
	parallelDegree int
	trfSets        [2]TransformSet // indexed by types.Mode
	log            *logrus.Entry

	mu   sync.Mutex // guards eval
	eval *evaluator
}

func NewSelector(ss shapeset.Shapeset, cands CandidateGenerator, opts ...Option) (sel *Selector) {
	if ss == nil {
		panic("selector: nil shapeset")
	}
	if cands == nil {
		cands = HPAniso
	}
	sel = &Selector{
		ss:        ss,
		cands:     cands,
		maxOrder:  DefaultOrder,
		quadOrder: DefaultQuadOrder,
		method:    Orthonormal,
		trfSets: [2]TransformSet{
			types.Triangle: DefaultTransformSet(types.Triangle),
			types.Quad:     DefaultTransformSet(types.Quad),
		},
		log: logrus.NewEntry(logrus.StandardLogger()).WithField("component", "selector"),
	}
	sel.Configure(opts...)
	return
}

// Configure applies opts and drops every cached shape table
func (sel *Selector) Configure(opts ...Option) {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	for _, opt := range opts {
		opt(sel)
	}
	sel.eval = newEvaluator(sel)
}

func (sel *Selector) Shapeset() shapeset.Shapeset   { return sel.ss }
func (sel *Selector) Method() ProjectionMethod      { return sel.method }
func (sel *Selector) Generator() CandidateGenerator { return sel.cands }

// OrderRange is the admissible range of son orders of e
func (sel *Selector) OrderRange(e *mesh.Element) (minOrder, maxOrder int) {
	maxOrder = (elementOrderLimit-e.IROCache)/2 - 1
	if sel.maxOrder != DefaultOrder {
		maxOrder = min(sel.maxOrder, maxOrder)
	}
	maxOrder = min(maxOrder, sel.ss.MaxOrder())
	minOrder = 1
	if maxOrder < minOrder {
		maxOrder = minOrder
	}
	return
}

func (sel *Selector) Candidates(e *mesh.Element, current types.Order) []Candidate {
	minOrder, maxOrder := sel.OrderRange(e)
	return sel.cands.Candidates(e.Mode, current, minOrder, maxOrder)
}

func (sel *Selector) validate(mode types.Mode) error {
	if mode > types.Quad {
		return fmt.Errorf("selector: unknown element mode %v", mode)
	}
	return sel.trfSets[mode].Validate()
}

// EvaluateCandidates scores the candidates of the configured generator for e
// at its current order
func (sel *Selector) EvaluateCandidates(e *mesh.Element, ref mesh.Field, current types.Order) (*Evaluation, error) {
	return sel.Evaluate(e, ref, current, sel.Candidates(e, current))
}

/*
Evaluate scores cands for e against ref, together with the base candidate
keeping e at its current order. A failing candidate is recorded in its result
and the others are scored as usual. Errors that make every candidate
meaningless, such as a transform set without the identity, are returned.
*/
func (sel *Selector) Evaluate(e *mesh.Element, ref mesh.Field, current types.Order,
	cands []Candidate) (ev *Evaluation, err error) {
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.evaluate(sel.eval, e, ref, current, cands)
}

func (sel *Selector) evaluate(eval *evaluator, e *mesh.Element, ref mesh.Field, current types.Order,
	cands []Candidate) (ev *Evaluation, err error) {
	if err = sel.validate(e.Mode); err != nil {
		return
	}
	eval.precalcRefSolution(e, ref)
	ev = &Evaluation{
		ElementID: e.ID,
		Mode:      e.Mode,
		Current:   current.ForMode(e.Mode),
		Results:   make([]CandidateResult, 0, len(cands)),
	}
	if ev.Base, err = eval.score(e, PCandidate(ev.Current)); err != nil {
		return nil, err
	}
	for _, cand := range cands {
		var cr CandidateResult
		if cr, err = eval.score(e, cand); err != nil {
			return nil, err
		}
		ev.Results = append(ev.Results, cr)
	}
	sel.log.WithFields(logrus.Fields{
		"element":    e.ID,
		"candidates": len(cands),
		"base":       ev.Base.ErrorSquared,
	}).Debug("candidates evaluated")
	return
}

/*
EvaluateElements runs EvaluateCandidates over elements in parallel, orders
holds the current order of each element. The evaluations come back in input
order; an element that hit a fatal error has a nil evaluation and its error is
part of the joined error.
*/
func (sel *Selector) EvaluateElements(elements []*mesh.Element, ref mesh.Field,
	orders []types.Order) (evs []*Evaluation, err error) {
	if len(elements) != len(orders) {
		err = fmt.Errorf("%w: have %d orders for %d elements", ErrOrderMismatch, len(orders), len(elements))
		return
	}
	var (
		K    = len(elements)
		pm   = utils.NewPartitionMap(utils.ParallelDegree(sel.parallelDegree, K), K)
		errs = make([]error, K)
	)
	evs = make([]*Evaluation, K)
	if K == 0 {
		return
	}
	sel.log.WithFields(logrus.Fields{
		"elements": K,
		"workers":  pm.ParallelDegree,
		"method":   sel.method,
	}).Debug("element evaluation started")
	pm.Run(func(bn, kMin, kMax int) error {
		eval := newEvaluator(sel)
		for k := kMin; k < kMax; k++ {
			e := elements[k]
			evs[k], errs[k] = sel.evaluate(eval, e, ref, orders[k], sel.Candidates(e, orders[k]))
		}
		return nil
	})
	return evs, errors.Join(errs...)
}

// Project is the energy projection of ref onto the shapes of order on e,
// coefficients are for the raw shapes
func (sel *Selector) Project(e *mesh.Element, ref mesh.Field, order types.Order) (p *Projection, err error) {
	if err = sel.validate(e.Mode); err != nil {
		return
	}
	sel.mu.Lock()
	defer sel.mu.Unlock()
	var (
		ts     *TrfShape
		cand   = PCandidate(order.ForMode(e.Mode))
		coeffs []float64
		err2   float64
	)
	if ts, err = sel.eval.cache.get(e.Mode, cand.Orders[0]); err != nil {
		return nil, &CandidateError{ElementID: e.ID, Candidate: cand, Err: err}
	}
	sel.eval.precalcRefSolution(e, ref)
	if coeffs, err2, err = sel.eval.projectSon(ts, cand, 0, GramSolve); err != nil {
		return nil, &CandidateError{ElementID: e.ID, Candidate: cand, Err: err}
	}
	p = &Projection{
		Mode:         e.Mode,
		Order:        ts.Order,
		Indices:      ts.Indices,
		Coefficients: coeffs,
		ErrorSquared: err2,
		ss:           sel.ss,
	}
	return
}

// TrfShape is the cached shape table of mode and order
func (sel *Selector) TrfShape(mode types.Mode, order types.Order) (*TrfShape, error) {
	if err := sel.validate(mode); err != nil {
		return nil, err
	}
	sel.mu.Lock()
	defer sel.mu.Unlock()
	return sel.eval.cache.get(mode, order)
}

// BuildProjectionMatrix returns a copy of the energy Gram matrix of the raw
// shapes of mode and order, rows in shape index order
func (sel *Selector) BuildProjectionMatrix(mode types.Mode, order types.Order) (G *mat.SymDense, err error) {
	var ts *TrfShape
	if ts, err = sel.TrfShape(mode, order); err != nil {
		return
	}
	G = mat.NewSymDense(ts.NumShapes(), nil)
	G.CopySym(ts.Gram)
	return
}
