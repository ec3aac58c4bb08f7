package adapt

import (
	"fmt"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/types"
)

// AnyMarker matches every element and every boundary edge
const AnyMarker = "any"

type FormKind uint8

const (
	Volumetric FormKind = iota
	Surface
	Interface
)

func (k FormKind) String() string {
	switch k {
	case Volumetric:
		return "volumetric"
	case Surface:
		return "surface"
	case Interface:
		return "interface"
	}
	return fmt.Sprintf("FormKind(%d)", k)
}

// Trace is one solution component sampled at the points of a FormPoints.
// Neighbor is only filled for interface forms and holds the samples taken
// from the element across the edge at the same physical points.
type Trace struct {
	Central  []types.Sample
	Neighbor []types.Sample
}

// FormPoints are the physical integration points handed to a form
type FormPoints struct {
	Element *mesh.Element
	Edge    int // -1 for volumetric integrals
	X, Y    []float64
	W       []float64 // physical weights
	NX, NY  float64   // outward unit normal of Edge
}

func (p *FormPoints) Len() int { return len(p.W) }

func (p *FormPoints) reset(e *mesh.Element, edge int) {
	p.Element, p.Edge = e, edge
	p.X, p.Y, p.W = p.X[:0], p.Y[:0], p.W[:0]
	p.NX, p.NY = 0, 0
}

/*
NormForm is a bilinear form defining the error and the norm of component I.
u is a trace of component I, v a trace of component J. The error of an element
is Value(coarse-fine, coarse-fine), the norm is Value(fine, fine).
*/
type NormForm interface {
	I() int
	J() int
	Marker() string
	Value(pts *FormPoints, u, v Trace) float64
}

// FormBase carries the metadata every form needs
type FormBase struct {
	i, j   int
	marker string
}

func NewFormBase(i, j int, marker string) FormBase {
	if marker == "" {
		marker = AnyMarker
	}
	return FormBase{i: i, j: j, marker: marker}
}

func (fb FormBase) I() int         { return fb.i }
func (fb FormBase) J() int         { return fb.j }
func (fb FormBase) Marker() string { return fb.marker }

type L2Form struct{ FormBase }

func NewL2Form(i int) *L2Form { return &L2Form{NewFormBase(i, i, AnyMarker)} }

func (f *L2Form) Value(pts *FormPoints, u, v Trace) (sum float64) {
	for k, w := range pts.W {
		sum += w * u.Central[k].V * v.Central[k].V
	}
	return
}

type H1Form struct{ FormBase }

func NewH1Form(i int) *H1Form { return &H1Form{NewFormBase(i, i, AnyMarker)} }

func (f *H1Form) Value(pts *FormPoints, u, v Trace) (sum float64) {
	for k, w := range pts.W {
		sum += w * u.Central[k].Energy(v.Central[k])
	}
	return
}

type H1SemiForm struct{ FormBase }

func NewH1SemiForm(i int) *H1SemiForm { return &H1SemiForm{NewFormBase(i, i, AnyMarker)} }

func (f *H1SemiForm) Value(pts *FormPoints, u, v Trace) (sum float64) {
	for k, w := range pts.W {
		a, b := u.Central[k], v.Central[k]
		sum += w * (a.Dx*b.Dx + a.Dy*b.Dy)
	}
	return
}

// BoundaryL2Form integrates u*v along boundary edges carrying marker
type BoundaryL2Form struct{ FormBase }

func NewBoundaryL2Form(i int, marker string) *BoundaryL2Form {
	return &BoundaryL2Form{NewFormBase(i, i, marker)}
}

func (f *BoundaryL2Form) Value(pts *FormPoints, u, v Trace) (sum float64) {
	for k, w := range pts.W {
		sum += w * u.Central[k].V * v.Central[k].V
	}
	return
}

// JumpL2Form integrates the squared jump across interior edges. The edge is
// visited once from each side so each side carries half of the integral.
type JumpL2Form struct{ FormBase }

func NewJumpL2Form(i int) *JumpL2Form { return &JumpL2Form{NewFormBase(i, i, AnyMarker)} }

func (f *JumpL2Form) Value(pts *FormPoints, u, v Trace) (sum float64) {
	for k, w := range pts.W {
		ju := u.Central[k].V - u.Neighbor[k].V
		jv := v.Central[k].V - v.Neighbor[k].V
		sum += w * ju * jv
	}
	return 0.5 * sum
}

// DefaultForm is the volumetric form for a norm type
func DefaultForm(nt types.NormType, i int) NormForm {
	switch nt {
	case types.H1Norm:
		return NewH1Form(i)
	case types.H1SemiNorm:
		return NewH1SemiForm(i)
	default:
		return NewL2Form(i)
	}
}

// ErrorForm is a registered form: its kind and the marker it is restricted to
type ErrorForm struct {
	Kind   FormKind
	Form   NormForm
	Marker string
}

// Matches is true when the form applies to an element or edge marker
func (ef ErrorForm) Matches(marker string) bool {
	return ef.Marker == AnyMarker || ef.Marker == marker
}

// Evaluate returns the error and norm contributions of the form over pts.
// diff and fine are indexed by component.
func (ef ErrorForm) Evaluate(pts *FormPoints, diff, fine []Trace) (errC, normC float64) {
	var (
		i, j = ef.Form.I(), ef.Form.J()
	)
	errC = ef.Form.Value(pts, diff[i], diff[j])
	normC = ef.Form.Value(pts, fine[i], fine[j])
	return
}
