package adapt

import (
	"errors"
	"fmt"
)

var (
	ErrNoResult          = errors.New("adapt: no stored error calculation")
	ErrComponentMismatch = errors.New("adapt: solution component count mismatch")
	ErrComponentRange    = errors.New("adapt: component index out of range")
	ErrElementRange      = errors.New("adapt: element is not part of the calculation")
	ErrDegenerateNorm    = errors.New("adapt: reference norm too small for a relative error")
	ErrNonFinite         = errors.New("adapt: non finite error contribution")
	ErrNoMesh            = errors.New("adapt: no mesh")
)

// ElementError reports a failure while integrating one element
type ElementError struct {
	ElementID int
	Component int // -1 when the failure is not tied to a component
	Err       error
}

func (e *ElementError) Error() string {
	if e.Component < 0 {
		return fmt.Sprintf("element %d: %v", e.ElementID, e.Err)
	}
	return fmt.Sprintf("element %d, component %d: %v", e.ElementID, e.Component, e.Err)
}

func (e *ElementError) Unwrap() error { return e.Err }
