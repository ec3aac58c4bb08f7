package selector

import (
	"errors"
	"fmt"
)

var (
	ErrMissingIdentity   = errors.New("selector: all transforms processed but identity not found")
	ErrMissingTransform  = errors.New("selector: transform needed by a candidate is not enumerated")
	ErrDegenerateNorm    = errors.New("selector: shape function norm is almost zero")
	ErrNonFinite         = errors.New("selector: non finite projection error")
	ErrOrderMismatch     = errors.New("selector: one current order is needed per element")
	ErrUnknownCandidates = errors.New("selector: unknown candidate list")
)

// CandidateError is a failure contained to one candidate of one element, the
// other candidates of the element are still scored
type CandidateError struct {
	ElementID int
	Candidate Candidate
	Son       int
	Err       error
}

func (e *CandidateError) Error() string {
	return fmt.Sprintf("element %d, candidate %v, son %d: %v", e.ElementID, e.Candidate, e.Son, e.Err)
}

func (e *CandidateError) Unwrap() error { return e.Err }

// fatal is true for errors that invalidate every candidate of the call
func fatal(err error) bool {
	return errors.Is(err, ErrMissingIdentity) || errors.Is(err, ErrMissingTransform)
}
