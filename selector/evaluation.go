package selector

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/hpadapt/types"
)

// CandidateResult is the projection error of one candidate. When Err is set
// the candidate could not be scored and ErrorSquared is +Inf.
type CandidateResult struct {
	Candidate    Candidate
	ErrorSquared float64
	DOFs         int
	Coefficients [][]float64 // per son, Ortho or Raw shapes depending on the method
	Err          error
}

type Evaluation struct {
	ElementID int
	Mode      types.Mode
	Current   types.Order
	Base      CandidateResult // the element kept at its current order
	Results   []CandidateResult
}

/*
Best returns the scored result with the largest score, results carrying an
error or scoring NaN are skipped. The second return is false when nothing was
scored.
*/
func (ev *Evaluation) Best(score func(CandidateResult) float64) (best CandidateResult, ok bool) {
	bestScore := math.Inf(-1)
	for _, cr := range ev.Results {
		if cr.Err != nil {
			continue
		}
		s := score(cr)
		if math.IsNaN(s) {
			continue
		}
		if !ok || s > bestScore {
			best, bestScore, ok = cr, s, true
		}
	}
	return
}

func (ev *Evaluation) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "element %d %v order %v, base error2 %8.5g\n", ev.ElementID, ev.Mode, ev.Current, ev.Base.ErrorSquared)
	for _, cr := range ev.Results {
		if cr.Err != nil {
			fmt.Fprintf(&b, "\t%-24v failed: %v\n", cr.Candidate, cr.Err)
			continue
		}
		fmt.Fprintf(&b, "\t%-24v dofs %4d error2 %8.5g\n", cr.Candidate, cr.DOFs, cr.ErrorSquared)
	}
	return b.String()
}

/*
ErrorReductionScore rates a candidate by the log of the error decrease over
base per added unknown. A candidate that adds no unknowns is charged one.
Reaching zero error scores +Inf; when base is already exact nothing scores
above zero.
*/
func ErrorReductionScore(base CandidateResult) func(CandidateResult) float64 {
	return func(cr CandidateResult) float64 {
		var (
			err0 = base.ErrorSquared
			err  = cr.ErrorSquared
			dofs = float64(max(cr.DOFs-base.DOFs, 1))
		)
		switch {
		case err0 <= 0 && err <= 0:
			return 0
		case err0 <= 0:
			return math.Inf(-1)
		case err <= 0:
			return math.Inf(1)
		}
		return (math.Log(err0) - math.Log(err)) / dofs
	}
}
