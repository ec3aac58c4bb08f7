// Package adapt measures the distance between coarse and reference solutions
// element by element and ranks the elements for refinement.
package adapt

import (
	"fmt"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
	"github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/floats"
)

const (
	DefaultQuadOrder = 12
	// NormEpsilon is the smallest squared norm a relative error is divided by
	NormEpsilon = 1.e-30
)

type Option func(c *Calculator)

// WithQuadOrder sets the polynomial degree integrated exactly on each son
func WithQuadOrder(order int) Option {
	return func(c *Calculator) {
		if order > 0 {
			c.quadOrder = order
		}
	}
}

// WithParallelDegree limits the number of worker go routines, 0 uses every CPU
func WithParallelDegree(np int) Option {
	return func(c *Calculator) { c.parallelDegree = np }
}

func WithLogger(log *logrus.Entry) Option {
	return func(c *Calculator) {
		if log != nil {
			c.log = log
		}
	}
}

// calcState is either noResult or *stored
type calcState interface {
	stored() (*stored, bool)
}

type noResult struct{}

func (noResult) stored() (*stored, bool) { return nil, false }

type stored struct {
	res   *Result
	queue []ElementReference
}

func (st *stored) stored() (*stored, bool) { return st, true }

type Calculator struct {
	strategy       types.Strategy
	components     int
	quadOrder      int
	parallelDegree int
	log            *logrus.Entry
	forms          [3][]ErrorForm // indexed by FormKind
	state          calcState
}

func NewCalculator(strategy types.Strategy, components int, opts ...Option) (c *Calculator) {
	if components < 1 {
		panic(fmt.Errorf("an error calculator needs at least one component, have %d", components))
	}
	c = &Calculator{
		strategy:   strategy,
		components: components,
		quadOrder:  DefaultQuadOrder,
		log:        logrus.NewEntry(logrus.StandardLogger()),
		state:      noResult{},
	}
	for _, opt := range opts {
		opt(c)
	}
	c.log = c.log.WithField("component", "error-calculator")
	return
}

// NewDefaultCalculator registers the volumetric form of normType for every
// component
func NewDefaultCalculator(strategy types.Strategy, normType types.NormType,
	components int, opts ...Option) (c *Calculator) {
	c = NewCalculator(strategy, components, opts...)
	for i := 0; i < components; i++ {
		if err := c.AddErrorFormVol(DefaultForm(normType, i), AnyMarker); err != nil {
			panic(err)
		}
	}
	return
}

func (c *Calculator) Components() int          { return c.components }
func (c *Calculator) Strategy() types.Strategy { return c.strategy }

// SetStrategy changes how stored errors are reported, the stored values are
// untouched
func (c *Calculator) SetStrategy(s types.Strategy) { c.strategy = s }

func (c *Calculator) addForm(kind FormKind, form NormForm, marker string) (err error) {
	if form == nil {
		return fmt.Errorf("adapt: nil %v form", kind)
	}
	for _, ci := range []int{form.I(), form.J()} {
		if ci < 0 || ci >= c.components {
			return fmt.Errorf("%w: %v form on component %d of %d", ErrComponentRange, kind, ci, c.components)
		}
	}
	if marker == "" {
		marker = form.Marker()
	}
	c.forms[kind] = append(c.forms[kind], ErrorForm{Kind: kind, Form: form, Marker: marker})
	return
}

// AddErrorFormVol registers a form integrated over element interiors with
// a matching element marker. An empty marker uses the form's own.
func (c *Calculator) AddErrorFormVol(form NormForm, marker string) error {
	return c.addForm(Volumetric, form, marker)
}

// AddErrorFormSurf registers a form integrated over boundary edges with a
// matching boundary marker
func (c *Calculator) AddErrorFormSurf(form NormForm, marker string) error {
	return c.addForm(Surface, form, marker)
}

// AddErrorFormDG registers a form integrated over interior edges, the
// marker restricts the element the edge is visited from
func (c *Calculator) AddErrorFormDG(form NormForm) error {
	return c.addForm(Interface, form, "")
}

func (c *Calculator) Forms(kind FormKind) []ErrorForm { return c.forms[kind] }

/*
CalculateErrors integrates every registered form over every active element of
m, with error = form(coarse-fine, coarse-fine) and norm = form(fine, fine).

When sortAndStore is true the result replaces the stored one and the element
queue is rebuilt. Otherwise the result is only returned and any stored result
is dropped. On failure nothing is stored or dropped.
*/
func (c *Calculator) CalculateErrors(coarse, fine []mesh.Field, m mesh.Mesh,
	sortAndStore bool) (res *Result, err error) {
	if len(coarse) != c.components || len(fine) != c.components {
		err = fmt.Errorf("%w: have %d coarse and %d fine solutions for %d components",
			ErrComponentMismatch, len(coarse), len(fine), c.components)
		return
	}
	if res, err = c.calculate(coarse, fine, m); err != nil {
		res = nil
		return
	}
	if sortAndStore {
		c.state = &stored{res: res, queue: res.buildQueue()}
	} else {
		c.state = noResult{}
	}
	return
}

// CalculateError is CalculateErrors for a single component
func (c *Calculator) CalculateError(coarse, fine mesh.Field, m mesh.Mesh,
	sortAndStore bool) (res *Result, err error) {
	return c.CalculateErrors([]mesh.Field{coarse}, []mesh.Field{fine}, m, sortAndStore)
}

// CalculateNorms integrates the registered forms on fields alone, the stored
// state is left as is. Only the norm accessors of the result are meaningful.
func (c *Calculator) CalculateNorms(fields []mesh.Field, m mesh.Mesh) (res *Result, err error) {
	if len(fields) != c.components {
		err = fmt.Errorf("%w: have %d solutions for %d components",
			ErrComponentMismatch, len(fields), c.components)
		return
	}
	if res, err = c.calculate(fields, fields, m); err != nil {
		res = nil
	}
	return
}

func (c *Calculator) calculate(coarse, fine []mesh.Field, m mesh.Mesh) (res *Result, err error) {
	if m == nil {
		err = ErrNoMesh
		return
	}
	var (
		active  = m.ActiveElements()
		K       = len(active)
		pm      = utils.NewPartitionMap(utils.ParallelDegree(c.parallelDegree, K), K)
		workers = make([]*worker, pm.ParallelDegree)
	)
	res = newResult(c.strategy, c.components, active)
	c.log.WithFields(logrus.Fields{
		"elements":   K,
		"components": c.components,
		"workers":    pm.ParallelDegree,
		"strategy":   c.strategy,
	}).Debug("error calculation started")

	errs := pm.Run(func(bn, kMin, kMax int) error {
		workers[bn] = newWorker(c, m, coarse, fine, res)
		return workers[bn].run(active, kMin, kMax)
	})
	for _, werr := range errs {
		if werr != nil {
			c.log.WithError(werr).Warn("error calculation aborted")
			return nil, werr
		}
	}
	for _, w := range workers {
		floats.Add(res.componentErrors, w.compErr)
		floats.Add(res.componentNorms, w.compNorm)
	}
	res.totalError = floats.Sum(res.componentErrors)
	res.totalNorm = floats.Sum(res.componentNorms)

	c.log.WithFields(logrus.Fields{
		"error2": res.totalError,
		"norm2":  res.totalNorm,
	}).Info("error calculation finished")
	return
}

func (c *Calculator) current() (st *stored, err error) {
	var ok bool
	if st, ok = c.state.stored(); !ok {
		err = ErrNoResult
	}
	return
}

// Result is the stored result, or ErrNoResult
func (c *Calculator) Result() (*Result, error) {
	st, err := c.current()
	if err != nil {
		return nil, err
	}
	return st.res, nil
}

// HasResult is false until a CalculateErrors call with sortAndStore
func (c *Calculator) HasResult() bool {
	_, ok := c.state.stored()
	return ok
}

func (c *Calculator) ElementErrorSquared(component, id int) (float64, error) {
	st, err := c.current()
	if err != nil {
		return 0, err
	}
	return st.res.elementErrorSquared(c.strategy, component, id)
}

func (c *Calculator) ElementNormSquared(component, id int) (float64, error) {
	st, err := c.current()
	if err != nil {
		return 0, err
	}
	return st.res.ElementNormSquared(component, id)
}

func (c *Calculator) ErrorSquared(component int) (float64, error) {
	st, err := c.current()
	if err != nil {
		return 0, err
	}
	return st.res.errorSquared(c.strategy, component)
}

func (c *Calculator) NormSquared(component int) (float64, error) {
	st, err := c.current()
	if err != nil {
		return 0, err
	}
	return st.res.NormSquared(component)
}

func (c *Calculator) TotalErrorSquared() (float64, error) {
	st, err := c.current()
	if err != nil {
		return 0, err
	}
	return st.res.totalErrorSquared(c.strategy)
}

func (c *Calculator) TotalNormSquared() (float64, error) {
	st, err := c.current()
	if err != nil {
		return 0, err
	}
	return st.res.TotalNormSquared(), nil
}

// Queue is the element queue of the stored result, ascending in error. It is
// nil when there is no stored result.
func (c *Calculator) Queue() []ElementReference {
	st, err := c.current()
	if err != nil {
		return nil
	}
	return st.queue
}

// Worst returns up to n queue entries with the largest errors, largest first
func (c *Calculator) Worst(n int) (refs []ElementReference, err error) {
	var st *stored
	if st, err = c.current(); err != nil {
		return
	}
	q := st.queue
	for i := len(q) - 1; i >= 0 && len(refs) < n; i-- {
		refs = append(refs, q[i])
	}
	return
}
