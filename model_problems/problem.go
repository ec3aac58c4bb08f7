package model_problems

import (
	"fmt"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/selector"
	"github.com/notargets/hpadapt/types"
)

// Problem pairs a reference solution with a coarse approximation of it on a
// mesh, one of each per component
type Problem struct {
	Mesh        mesh.Mesh
	Exact       []ExactField
	Coarse      []*ProjectedField
	CoarseOrder types.Order
}

func NewProblem(m mesh.Mesh, exact []ExactField, sel *selector.Selector,
	coarseOrder types.Order) (p *Problem, err error) {
	if len(exact) == 0 {
		return nil, fmt.Errorf("a problem needs at least one component")
	}
	p = &Problem{
		Mesh:        m,
		Exact:       exact,
		Coarse:      make([]*ProjectedField, len(exact)),
		CoarseOrder: coarseOrder,
	}
	for n, f := range exact {
		if p.Coarse[n], err = NewProjectedField(sel, m, f, p.CoarseOrder); err != nil {
			return nil, fmt.Errorf("component %d: %w", n, err)
		}
	}
	return
}

func (p *Problem) Components() int { return len(p.Exact) }

func (p *Problem) FineFields() (ff []mesh.Field) {
	ff = make([]mesh.Field, len(p.Exact))
	for n, f := range p.Exact {
		ff[n] = f
	}
	return
}

func (p *Problem) CoarseFields() (cf []mesh.Field) {
	cf = make([]mesh.Field, len(p.Coarse))
	for n, f := range p.Coarse {
		cf[n] = f
	}
	return
}

// Orders is the current order of each of elements, every element of a
// problem starts at the coarse order
func (p *Problem) Orders(elements []*mesh.Element) (orders []types.Order) {
	orders = make([]types.Order, len(elements))
	for k, e := range elements {
		orders[k] = p.CoarseOrder.ForMode(e.Mode)
	}
	return
}
