package mesh

import "github.com/notargets/hpadapt/types"

// Field is a solution component that can be sampled anywhere inside an
// element. Derivatives are returned in physical coordinates.
type Field interface {
	Sample(e *Element, r, s float64) types.Sample
}

// PhysicalFunc is a field given directly in physical coordinates
type PhysicalFunc func(x, y float64) types.Sample

func (f PhysicalFunc) Sample(e *Element, r, s float64) types.Sample {
	return f(e.RefToPhys(r, s))
}

// ReferenceSample converts the physical derivatives of a field sample into
// derivatives with respect to the element's reference coordinates
func ReferenceSample(e *Element, r, s float64, ps types.Sample) (rs types.Sample) {
	J, _ := e.Jacobian(r, s)
	rs.V = ps.V
	rs.Dx = ps.Dx*J[0][0] + ps.Dy*J[1][0]
	rs.Dy = ps.Dx*J[0][1] + ps.Dy*J[1][1]
	return
}

// PhysicalSample is the inverse of ReferenceSample
func PhysicalSample(e *Element, r, s float64, rs types.Sample) (ps types.Sample) {
	Ji, _ := e.InverseJacobian(r, s)
	ps.V = rs.V
	ps.Dx = rs.Dx*Ji[0][0] + rs.Dy*Ji[1][0]
	ps.Dy = rs.Dx*Ji[0][1] + rs.Dy*Ji[1][1]
	return
}
