package adapt

import (
	"fmt"
	"sort"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/types"
)

/*
Result holds the raw squared errors and norms of one calculation, indexed by
component and by active local element index. The raw values are always
absolute, the strategy only changes what the error accessors report.
*/
type Result struct {
	Strategy                        types.Strategy
	ElementIDs                      []int // active local index -> element id
	local                           map[int]int
	errors, norms                   [][]float64
	componentErrors, componentNorms []float64
	totalError, totalNorm           float64
}

func newResult(strategy types.Strategy, components int, active []*mesh.Element) (r *Result) {
	K := len(active)
	r = &Result{
		Strategy:        strategy,
		ElementIDs:      make([]int, K),
		local:           make(map[int]int, K),
		errors:          make([][]float64, components),
		norms:           make([][]float64, components),
		componentErrors: make([]float64, components),
		componentNorms:  make([]float64, components),
	}
	for k, e := range active {
		r.ElementIDs[k] = e.ID
		r.local[e.ID] = k
	}
	for c := 0; c < components; c++ {
		r.errors[c] = make([]float64, K)
		r.norms[c] = make([]float64, K)
	}
	return
}

func (r *Result) Components() int  { return len(r.errors) }
func (r *Result) NumElements() int { return len(r.ElementIDs) }

func (r *Result) checkComponent(c int) error {
	if c < 0 || c >= len(r.errors) {
		return fmt.Errorf("%w: %d of %d", ErrComponentRange, c, len(r.errors))
	}
	return nil
}

func (r *Result) index(c, id int) (k int, err error) {
	if err = r.checkComponent(c); err != nil {
		return
	}
	var ok bool
	if k, ok = r.local[id]; !ok {
		err = fmt.Errorf("%w: element %d", ErrElementRange, id)
	}
	return
}

func divide(value, norm float64, what string) (float64, error) {
	if norm <= NormEpsilon {
		return 0, fmt.Errorf("%w: %s norm^2 = %g", ErrDegenerateNorm, what, norm)
	}
	return value / norm, nil
}

func (r *Result) elementErrorSquared(s types.Strategy, c, id int) (e2 float64, err error) {
	var k int
	if k, err = r.index(c, id); err != nil {
		return
	}
	e2 = r.errors[c][k]
	if s == types.RelativeError {
		return divide(e2, r.componentNorms[c], fmt.Sprintf("component %d", c))
	}
	return
}

func (r *Result) errorSquared(s types.Strategy, c int) (e2 float64, err error) {
	if err = r.checkComponent(c); err != nil {
		return
	}
	e2 = r.componentErrors[c]
	if s == types.RelativeError {
		return divide(e2, r.componentNorms[c], fmt.Sprintf("component %d", c))
	}
	return
}

func (r *Result) totalErrorSquared(s types.Strategy) (float64, error) {
	if s == types.RelativeError {
		return divide(r.totalError, r.totalNorm, "total")
	}
	return r.totalError, nil
}

func (r *Result) ElementErrorSquared(c, id int) (float64, error) {
	return r.elementErrorSquared(r.Strategy, c, id)
}

func (r *Result) ElementNormSquared(c, id int) (n2 float64, err error) {
	var k int
	if k, err = r.index(c, id); err != nil {
		return
	}
	return r.norms[c][k], nil
}

func (r *Result) ErrorSquared(c int) (float64, error) {
	return r.errorSquared(r.Strategy, c)
}

func (r *Result) NormSquared(c int) (float64, error) {
	if err := r.checkComponent(c); err != nil {
		return 0, err
	}
	return r.componentNorms[c], nil
}

func (r *Result) TotalErrorSquared() (float64, error) {
	return r.totalErrorSquared(r.Strategy)
}

func (r *Result) TotalNormSquared() float64 { return r.totalNorm }

// ElementReference points at one stored element error without copying it
type ElementReference struct {
	ElementID, Component int
	err                  *float64
}

// ErrorSquared is the raw squared error the reference points at
func (er ElementReference) ErrorSquared() float64 { return *er.err }

func (er ElementReference) String() string {
	return fmt.Sprintf("element %d component %d: %g", er.ElementID, er.Component, *er.err)
}

// buildQueue sorts one reference per (element, component) ascending in raw
// error. Equal errors keep their component major build order.
func (r *Result) buildQueue() (q []ElementReference) {
	q = make([]ElementReference, 0, len(r.errors)*len(r.ElementIDs))
	for c := range r.errors {
		for k, id := range r.ElementIDs {
			q = append(q, ElementReference{ElementID: id, Component: c, err: &r.errors[c][k]})
		}
	}
	sort.SliceStable(q, func(i, j int) bool {
		return *q[i].err < *q[j].err
	})
	return
}
