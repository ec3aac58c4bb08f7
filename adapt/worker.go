package adapt

import (
	"math"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/types"
	"github.com/notargets/hpadapt/utils"
)

/*
worker integrates one contiguous range of active elements. Everything it
writes is private to it except the per element slots of the result that fall
inside its range. Component totals are kept as partial sums and reduced by the
calculator once all workers are done.
*/
type worker struct {
	c            *Calculator
	m            mesh.Mesh
	coarse, fine []mesh.Field
	res          *Result

	pts        FormPoints
	r, s       []float64 // reference coordinates of pts in the central element
	nr, ns     []float64 // and in the neighbor
	diff, ref  []Trace
	eErr, eNrm []float64

	compErr, compNorm []float64
}

func newWorker(c *Calculator, m mesh.Mesh, coarse, fine []mesh.Field, res *Result) (w *worker) {
	n := c.components
	w = &worker{
		c: c, m: m, coarse: coarse, fine: fine, res: res,
		diff:     make([]Trace, n),
		ref:      make([]Trace, n),
		eErr:     make([]float64, n),
		eNrm:     make([]float64, n),
		compErr:  make([]float64, n),
		compNorm: make([]float64, n),
	}
	return
}

func (w *worker) run(active []*mesh.Element, kMin, kMax int) (err error) {
	for k := kMin; k < kMax; k++ {
		if err = w.element(k, active[k]); err != nil {
			return
		}
	}
	return
}

func (w *worker) element(k int, e *mesh.Element) (err error) {
	for i := range w.eErr {
		w.eErr[i], w.eNrm[i] = 0, 0
	}
	var (
		vol  = w.c.forms[Volumetric]
		surf = w.c.forms[Surface]
		dg   = w.c.forms[Interface]
	)
	if anyMatch(vol, e.Marker) {
		w.volumePoints(e)
		w.sample(e, nil)
		w.accumulate(vol, e.Marker)
	}
	for edge, nbr := range e.Neighbors {
		switch {
		case nbr < 0:
			bm := e.EdgeMarkers[edge]
			if bm == "" || !anyMatch(surf, bm) {
				continue
			}
			w.edgePoints(e, edge)
			w.sample(e, nil)
			w.accumulate(surf, bm)
		case anyMatch(dg, e.Marker):
			nb := w.m.Element(nbr)
			if nb == nil || !nb.Active {
				continue
			}
			w.edgePoints(e, edge)
			if err = w.neighborPoints(e, nb); err != nil {
				return
			}
			w.sample(e, nb)
			w.accumulate(dg, e.Marker)
		}
	}
	for c := range w.eErr {
		if !utils.IsFinite(w.eErr[c]) || !utils.IsFinite(w.eNrm[c]) {
			return &ElementError{ElementID: e.ID, Component: c, Err: ErrNonFinite}
		}
		w.res.errors[c][k] = w.eErr[c]
		w.res.norms[c][k] = w.eNrm[c]
		w.compErr[c] += w.eErr[c]
		w.compNorm[c] += w.eNrm[c]
	}
	return
}

func anyMatch(forms []ErrorForm, marker string) bool {
	for _, ef := range forms {
		if ef.Matches(marker) {
			return true
		}
	}
	return false
}

func (w *worker) accumulate(forms []ErrorForm, marker string) {
	for _, ef := range forms {
		if !ef.Matches(marker) {
			continue
		}
		ec, nc := ef.Evaluate(&w.pts, w.diff, w.ref)
		i := ef.Form.I()
		w.eErr[i] += ec
		w.eNrm[i] += nc
	}
}

// volumePoints uses the composite rule over the element's four sons, the
// reference solution is only piecewise smooth at that level
func (w *worker) volumePoints(e *mesh.Element) {
	rule := quadrature.Sons(e.Mode, w.c.quadOrder)
	w.pts.reset(e, -1)
	w.r, w.s = w.r[:0], w.s[:0]
	for q := range rule.W {
		var (
			r, s   = rule.X[q], rule.Y[q]
			x, y   = e.RefToPhys(r, s)
			_, det = e.Jacobian(r, s)
		)
		w.r, w.s = append(w.r, r), append(w.s, s)
		w.pts.X, w.pts.Y = append(w.pts.X, x), append(w.pts.Y, y)
		w.pts.W = append(w.pts.W, rule.W[q]*math.Abs(det))
	}
}

func (w *worker) edgePoints(e *mesh.Element, edge int) {
	var (
		rule = quadrature.LineSons(w.c.quadOrder)
		half = 0.5 * e.EdgeLength(edge)
	)
	w.pts.reset(e, edge)
	w.pts.NX, w.pts.NY = e.EdgeNormal(edge)
	w.r, w.s = w.r[:0], w.s[:0]
	for q := range rule.W {
		var (
			r, s = e.EdgeRefPoint(edge, rule.X[q])
			x, y = e.RefToPhys(r, s)
		)
		w.r, w.s = append(w.r, r), append(w.s, s)
		w.pts.X, w.pts.Y = append(w.pts.X, x), append(w.pts.Y, y)
		w.pts.W = append(w.pts.W, rule.W[q]*half)
	}
}

func (w *worker) neighborPoints(e, nb *mesh.Element) (err error) {
	w.nr, w.ns = w.nr[:0], w.ns[:0]
	for q := range w.pts.X {
		var r, s float64
		if r, s, err = nb.PhysToRef(w.pts.X[q], w.pts.Y[q]); err != nil {
			return &ElementError{ElementID: e.ID, Component: -1, Err: err}
		}
		w.nr, w.ns = append(w.nr, r), append(w.ns, s)
	}
	return
}

// sample fills the difference and reference traces of every component at the
// current points, and the neighbor traces when nb is not nil
func (w *worker) sample(e, nb *mesh.Element) {
	n := w.pts.Len()
	for c := range w.diff {
		var (
			d = resize(w.diff[c].Central, n)
			f = resize(w.ref[c].Central, n)
		)
		for q := 0; q < n; q++ {
			f[q] = w.fine[c].Sample(e, w.r[q], w.s[q])
			d[q] = w.coarse[c].Sample(e, w.r[q], w.s[q]).Sub(f[q])
		}
		w.diff[c].Central, w.ref[c].Central = d, f
		if nb == nil {
			w.diff[c].Neighbor, w.ref[c].Neighbor = w.diff[c].Neighbor[:0], w.ref[c].Neighbor[:0]
			continue
		}
		var (
			dn = resize(w.diff[c].Neighbor, n)
			fn = resize(w.ref[c].Neighbor, n)
		)
		for q := 0; q < n; q++ {
			fn[q] = w.fine[c].Sample(nb, w.nr[q], w.ns[q])
			dn[q] = w.coarse[c].Sample(nb, w.nr[q], w.ns[q]).Sub(fn[q])
		}
		w.diff[c].Neighbor, w.ref[c].Neighbor = dn, fn
	}
}

func resize(s []types.Sample, n int) []types.Sample {
	if cap(s) < n {
		return make([]types.Sample, n)
	}
	return s[:n]
}
