package model_problems

import (
	"fmt"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/selector"
	"github.com/notargets/hpadapt/types"
)

/*
ProjectedField is a field replaced element by element with its energy
projection onto the shapes of a fixed order. It stands in for the coarse
solution of a solver: smooth inside each element, discontinuous across edges.
*/
type ProjectedField struct {
	Order       types.Order
	projections map[int]*selector.Projection // by element ID
}

func NewProjectedField(sel *selector.Selector, m mesh.Mesh, f mesh.Field,
	order types.Order) (pf *ProjectedField, err error) {
	pf = &ProjectedField{
		Order:       order,
		projections: make(map[int]*selector.Projection, m.NumActive()),
	}
	for _, e := range m.ActiveElements() {
		var p *selector.Projection
		if p, err = sel.Project(e, f, order); err != nil {
			return nil, fmt.Errorf("projecting element %d: %w", e.ID, err)
		}
		pf.projections[e.ID] = p
	}
	return
}

func (pf *ProjectedField) Sample(e *mesh.Element, r, s float64) types.Sample {
	p, ok := pf.projections[e.ID]
	if !ok {
		panic(fmt.Errorf("element %d was not projected", e.ID))
	}
	return mesh.PhysicalSample(e, r, s, p.Sample(r, s))
}

// Projection is the projection on element id, nil if there is none
func (pf *ProjectedField) Projection(id int) *selector.Projection {
	return pf.projections[id]
}

// ErrorSquared is the energy error of the projections summed over elements,
// derivatives measured in reference coordinates
func (pf *ProjectedField) ErrorSquared() (sum float64) {
	for _, p := range pf.projections {
		sum += p.ErrorSquared
	}
	return
}
