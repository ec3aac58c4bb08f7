// Package shapeset holds the shape function capability consumed by the
// projection selector: evaluate basis function i and its first derivatives
// at reference coordinates.
package shapeset

import (
	"github.com/notargets/hpadapt/types"
)

const DefaultMaxOrder = 10

type Shapeset interface {
	Value(index int, x, y float64, mode types.Mode) float64
	Dx(index int, x, y float64, mode types.Mode) float64
	Dy(index int, x, y float64, mode types.Mode) float64
	// Indices lists the admissible shape indices for an order, by increasing
	// polynomial degree
	Indices(mode types.Mode, order types.Order) []int
	IndexOrder(mode types.Mode, index int) types.Order
	MaxOrder() int
	// MaxIndex bounds every index returned by Indices for the mode
	MaxIndex(mode types.Mode) int
}

// Evaluator is implemented by shapesets that can produce the value and both
// derivatives in one pass
type Evaluator interface {
	Sample(index int, x, y float64, mode types.Mode) types.Sample
}

func Eval(ss Shapeset, index int, x, y float64, mode types.Mode) types.Sample {
	if ev, ok := ss.(Evaluator); ok {
		return ev.Sample(index, x, y, mode)
	}
	return types.Sample{
		V:  ss.Value(index, x, y, mode),
		Dx: ss.Dx(index, x, y, mode),
		Dy: ss.Dy(index, x, y, mode),
	}
}
