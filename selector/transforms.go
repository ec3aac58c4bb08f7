package selector

import (
	"fmt"

	"github.com/notargets/hpadapt/quadrature"
	"github.com/notargets/hpadapt/types"
)

// TransformSet lists the indices of the sub transforms shape functions are
// sampled under. The identity has to be among them.
type TransformSet []int

// DefaultTransformSet is every non identity transform of the mode followed by
// the identity
func DefaultTransformSet(mode types.Mode) (ts TransformSet) {
	n := quadrature.NumNonIdentity(mode)
	ts = make(TransformSet, 0, n+1)
	for i := 0; i < n; i++ {
		ts = append(ts, i)
	}
	return append(ts, quadrature.IdentityTrf)
}

func (ts TransformSet) Contains(trf int) bool {
	for _, t := range ts {
		if t == trf {
			return true
		}
	}
	return false
}

// ordered returns the non identity transforms first and the identity last
func (ts TransformSet) ordered() (out TransformSet, err error) {
	out = make(TransformSet, 0, len(ts))
	var found bool
	for _, t := range ts {
		switch {
		case t == quadrature.IdentityTrf:
			found = true
		case t < 0 || t >= quadrature.IdentityTrf:
			return nil, fmt.Errorf("selector: transform index %d out of range", t)
		default:
			out = append(out, t)
		}
	}
	if !found {
		return nil, ErrMissingIdentity
	}
	return append(out, quadrature.IdentityTrf), nil
}

func (ts TransformSet) Validate() error {
	_, err := ts.ordered()
	return err
}
