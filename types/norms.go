package types

import (
	"fmt"
	"strings"
)

// Strategy selects how accumulated errors are reported
type Strategy uint8

const (
	AbsoluteError Strategy = iota
	RelativeError
)

var StrategyNameMap = map[string]Strategy{
	"absolute": AbsoluteError,
	"abs":      AbsoluteError,
	"relative": RelativeError,
	"rel":      RelativeError,
}

func NewStrategy(label string) (s Strategy, err error) {
	var ok bool
	if s, ok = StrategyNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown error calculation strategy %q", label)
	}
	return
}

func (s Strategy) String() string {
	switch s {
	case AbsoluteError:
		return "Absolute"
	case RelativeError:
		return "Relative"
	}
	return fmt.Sprintf("Strategy(%d)", s)
}

// NormType names the default norm used for a solution component
type NormType uint8

const (
	L2Norm NormType = iota
	H1Norm
	H1SemiNorm
)

var NormNameMap = map[string]NormType{
	"l2":      L2Norm,
	"h1":      H1Norm,
	"h1semi":  H1SemiNorm,
	"h1-semi": H1SemiNorm,
}

func NewNormType(label string) (n NormType, err error) {
	var ok bool
	if n, ok = NormNameMap[strings.ToLower(strings.TrimSpace(label))]; !ok {
		err = fmt.Errorf("unknown norm %q", label)
	}
	return
}

func (n NormType) String() string {
	switch n {
	case L2Norm:
		return "L2"
	case H1Norm:
		return "H1"
	case H1SemiNorm:
		return "H1-semi"
	}
	return fmt.Sprintf("NormType(%d)", n)
}
