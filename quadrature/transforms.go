package quadrature

import "github.com/notargets/hpadapt/types"

// Trf is an axis aligned affine map (x,y) -> (M[0]*x+T[0], M[1]*y+T[1])
// from a son's reference domain into its parent's reference domain.
type Trf struct {
	M, T [2]float64
}

func (trf Trf) Apply(x, y float64) (X, Y float64) {
	return trf.M[0]*x + trf.T[0], trf.M[1]*y + trf.T[1]
}

// Inverse maps parent coordinates back into the son
func (trf Trf) Inverse() Trf {
	return Trf{
		M: [2]float64{1 / trf.M[0], 1 / trf.M[1]},
		T: [2]float64{-trf.T[0] / trf.M[0], -trf.T[1] / trf.M[1]},
	}
}

// Then composes: first trf, then outer
func (trf Trf) Then(outer Trf) Trf {
	return Trf{
		M: [2]float64{outer.M[0] * trf.M[0], outer.M[1] * trf.M[1]},
		T: [2]float64{outer.M[0]*trf.T[0] + outer.T[0], outer.M[1]*trf.T[1] + outer.T[1]},
	}
}

const (
	// NumTrf is the size of a transform table, the identity sits last
	NumTrf      = 9
	IdentityTrf = NumTrf - 1

	// Quad transform indices beyond the four sons
	TrfBottomHalf = 4
	TrfTopHalf    = 5
	TrfLeftHalf   = 6
	TrfRightHalf  = 7
)

var Identity = Trf{M: [2]float64{1, 1}}

var triTrfs = [NumTrf]Trf{
	{M: [2]float64{0.5, 0.5}, T: [2]float64{-0.5, -0.5}},
	{M: [2]float64{0.5, 0.5}, T: [2]float64{0.5, -0.5}},
	{M: [2]float64{0.5, 0.5}, T: [2]float64{-0.5, 0.5}},
	{M: [2]float64{-0.5, -0.5}, T: [2]float64{-0.5, -0.5}}, // central son, flipped
	{}, {}, {}, {},
	Identity,
}

var quadTrfs = [NumTrf]Trf{
	{M: [2]float64{0.5, 0.5}, T: [2]float64{-0.5, -0.5}},
	{M: [2]float64{0.5, 0.5}, T: [2]float64{0.5, -0.5}},
	{M: [2]float64{0.5, 0.5}, T: [2]float64{0.5, 0.5}},
	{M: [2]float64{0.5, 0.5}, T: [2]float64{-0.5, 0.5}},
	{M: [2]float64{1, 0.5}, T: [2]float64{0, -0.5}},
	{M: [2]float64{1, 0.5}, T: [2]float64{0, 0.5}},
	{M: [2]float64{0.5, 1}, T: [2]float64{-0.5, 0}},
	{M: [2]float64{0.5, 1}, T: [2]float64{0.5, 0}},
	Identity,
}

// Transforms is the full table for a mode. Only the first
// NumNonIdentity(mode) entries and IdentityTrf are meaningful.
func Transforms(mode types.Mode) *[NumTrf]Trf {
	if mode == types.Triangle {
		return &triTrfs
	}
	return &quadTrfs
}

func NumNonIdentity(mode types.Mode) int {
	if mode == types.Triangle {
		return 4
	}
	return 8
}

// SonTransforms are the maps of the four sons of a uniform split
func SonTransforms(mode types.Mode) []Trf {
	return Transforms(mode)[:4]
}
