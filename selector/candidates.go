package selector

import (
	"fmt"
	"strings"

	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/shapeset"
	"github.com/notargets/hpadapt/types"
)

type SplitType uint8

const (
	SplitNone       SplitType = iota // p refinement, one son
	SplitIso                         // four sons
	SplitHorizontal                  // quads only, sons 0,1 are the bottom and top halves
	SplitVertical                    // quads only, sons 0,1 are the left and right halves
)

func (st SplitType) String() string {
	switch st {
	case SplitNone:
		return "p"
	case SplitIso:
		return "h"
	case SplitHorizontal:
		return "ah"
	case SplitVertical:
		return "av"
	}
	return fmt.Sprintf("SplitType(%d)", st)
}

func (st SplitType) NumSons() int {
	switch st {
	case SplitNone:
		return 1
	case SplitIso:
		return 4
	default:
		return 2
	}
}

// Candidate is a split pattern and the order of each resulting son
type Candidate struct {
	Split  SplitType
	Orders [4]types.Order
}

func PCandidate(o types.Order) Candidate {
	return Candidate{Split: SplitNone, Orders: [4]types.Order{o}}
}

func HCandidate(o types.Order) Candidate {
	return Candidate{Split: SplitIso, Orders: [4]types.Order{o, o, o, o}}
}

func (c Candidate) NumSons() int { return c.Split.NumSons() }

// DOFs counts the shape functions of all sons
func (c Candidate) DOFs(ss shapeset.Shapeset, mode types.Mode) (n int) {
	for son := 0; son < c.NumSons(); son++ {
		n += len(ss.Indices(mode, c.Orders[son].ForMode(mode)))
	}
	return
}

func (c Candidate) String() string {
	var b strings.Builder
	b.WriteString(c.Split.String())
	b.WriteString("[")
	for son := 0; son < c.NumSons(); son++ {
		if son > 0 {
			b.WriteString(" ")
		}
		b.WriteString(c.Orders[son].String())
	}
	b.WriteString("]")
	return b.String()
}

// cover says that a reference son is seen by a candidate son through a sub
// transform of the candidate son's reference domain
type cover struct {
	rson, trf int
}

var (
	pCover = [][]cover{{{0, 0}, {1, 1}, {2, 2}, {3, 3}}}
	hCover = [][]cover{
		{{0, quadrature.IdentityTrf}},
		{{1, quadrature.IdentityTrf}},
		{{2, quadrature.IdentityTrf}},
		{{3, quadrature.IdentityTrf}},
	}
	horizontalCover = [][]cover{
		{{0, quadrature.TrfLeftHalf}, {1, quadrature.TrfRightHalf}},
		{{3, quadrature.TrfLeftHalf}, {2, quadrature.TrfRightHalf}},
	}
	verticalCover = [][]cover{
		{{0, quadrature.TrfBottomHalf}, {3, quadrature.TrfTopHalf}},
		{{1, quadrature.TrfBottomHalf}, {2, quadrature.TrfTopHalf}},
	}
)

func (c Candidate) coverage() [][]cover {
	switch c.Split {
	case SplitIso:
		return hCover
	case SplitHorizontal:
		return horizontalCover
	case SplitVertical:
		return verticalCover
	}
	return pCover
}

// sonTrf maps the candidate son's reference domain into the parent's
func (c Candidate) sonTrf(mode types.Mode, son int) quadrature.Trf {
	trfs := quadrature.Transforms(mode)
	switch c.Split {
	case SplitIso:
		return trfs[son]
	case SplitHorizontal:
		return trfs[quadrature.TrfBottomHalf+son]
	case SplitVertical:
		return trfs[quadrature.TrfLeftHalf+son]
	}
	return quadrature.Identity
}

// Valid is false for anisotropic splits of triangles
func (c Candidate) Valid(mode types.Mode) bool {
	if mode == types.Triangle {
		return c.Split == SplitNone || c.Split == SplitIso
	}
	return c.Split <= SplitVertical
}

// CandidateGenerator enumerates the candidates of an element of the given mode
// and current order, every son order inside [minOrder, maxOrder]
type CandidateGenerator interface {
	Candidates(mode types.Mode, current types.Order, minOrder, maxOrder int) []Candidate
}

// CandList is the built in family of candidate lists
type CandList uint8

const (
	PList   CandList = iota // p candidates only
	HList                   // the uniform split keeping the current order
	HPIso                   // p candidates and uniform splits
	HPAniso                 // HPIso plus anisotropic orders and splits of quads
)

var CandListNameMap = map[string]CandList{
	"p":        PList,
	"h":        HList,
	"hp":       HPIso,
	"hp-iso":   HPIso,
	"hp-aniso": HPAniso,
}

func NewCandList(label string) (cl CandList, err error) {
	var ok bool
	if cl, ok = CandListNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("%w: %q", ErrUnknownCandidates, label)
	}
	return
}

func (cl CandList) String() string {
	switch cl {
	case PList:
		return "p"
	case HList:
		return "h"
	case HPIso:
		return "hp-iso"
	case HPAniso:
		return "hp-aniso"
	}
	return fmt.Sprintf("CandList(%d)", cl)
}

func clamp(p, minOrder, maxOrder int) int {
	return max(minOrder, min(p, maxOrder))
}

func (cl CandList) Candidates(mode types.Mode, current types.Order, minOrder, maxOrder int) (cands []Candidate) {
	var (
		cur  = current.ForMode(mode)
		p    = clamp(cur.Max(), minOrder, maxOrder)
		seen = make(map[Candidate]bool)
		add  = func(c Candidate) {
			for son := 0; son < c.NumSons(); son++ {
				o := c.Orders[son].ForMode(mode)
				o.H, o.V = clamp(o.H, minOrder, maxOrder), clamp(o.V, minOrder, maxOrder)
				c.Orders[son] = o
			}
			if c.Valid(mode) && !seen[c] {
				seen[c] = true
				cands = append(cands, c)
			}
		}
		// son orders of split candidates hold about the same number of
		// unknowns as the parent
		hLow = max(minOrder, (p+1)/2)
	)
	if cl != HList {
		for q := p; q <= p+2; q++ {
			add(PCandidate(types.NewOrder(q)))
		}
	}
	if cl == HList {
		add(HCandidate(cur))
		return
	}
	if cl == PList {
		return
	}
	for q := hLow; q <= hLow+1; q++ {
		add(HCandidate(types.NewOrder(q)))
	}
	if cl != HPAniso || mode != types.Quad {
		return
	}
	add(PCandidate(types.Order{H: cur.H + 1, V: cur.V}))
	add(PCandidate(types.Order{H: cur.H, V: cur.V + 1}))
	for q := hLow; q <= hLow+1; q++ {
		o := types.NewOrder(q)
		add(Candidate{Split: SplitHorizontal, Orders: [4]types.Order{o, o}})
		add(Candidate{Split: SplitVertical, Orders: [4]types.Order{o, o}})
	}
	return
}
