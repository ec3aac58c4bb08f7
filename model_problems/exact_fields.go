package model_problems

import (
	"fmt"
	"math"
	"strings"

	"github.com/notargets/hpadapt/mesh"
	"github.com/notargets/hpadapt/types"
)

// ExactField is an analytic field given in physical coordinates
type ExactField interface {
	mesh.Field
	At(x, y float64) types.Sample
}

type FieldType uint

const (
	POLYNOMIAL FieldType = iota
	PEAK
	SINCOS
)

var (
	FieldNames = map[string]FieldType{
		"polynomial": POLYNOMIAL,
		"peak":       PEAK,
		"sincos":     SINCOS,
	}
	FieldPrintNames = []string{"Polynomial", "Exponential Peak", "Sin(kx x) Cos(ky y)"}
)

func NewFieldType(label string) (ft FieldType, err error) {
	var ok bool
	if len(label) == 0 {
		err = fmt.Errorf("empty field type, must be one of %v", FieldPrintNames)
		return
	}
	label = strings.ToLower(strings.TrimSpace(label))
	if ft, ok = FieldNames[label]; !ok {
		err = fmt.Errorf("unable to use field type named %s", label)
	}
	return
}

func (ft FieldType) String() string {
	if int(ft) < len(FieldPrintNames) {
		return FieldPrintNames[ft]
	}
	return fmt.Sprintf("FieldType(%d)", ft)
}

// NewExactField is the default instance of each field type, sized for the
// unit square
func NewExactField(ft FieldType) (ef ExactField) {
	switch ft {
	case POLYNOMIAL:
		// x^3 - 2xy + y^2 + 1
		ef = Polynomial{C: [][]float64{{1, 0, 1}, {0, -2}, {}, {1}}}
	case PEAK:
		ef = Peak{X0: 0.6, Y0: 0.4, Alpha: 60, Amplitude: 1}
	case SINCOS:
		ef = SinCos{Kx: math.Pi, Ky: 1.5 * math.Pi}
	default:
		panic(fmt.Errorf("unknown field type %d", ft))
	}
	return
}

// Polynomial is sum C[i][j] x^i y^j
type Polynomial struct {
	C [][]float64
}

func (p Polynomial) At(x, y float64) (smp types.Sample) {
	for i, row := range p.C {
		for j, c := range row {
			if c == 0 {
				continue
			}
			xi, yj := math.Pow(x, float64(i)), math.Pow(y, float64(j))
			smp.V += c * xi * yj
			if i > 0 {
				smp.Dx += c * float64(i) * math.Pow(x, float64(i-1)) * yj
			}
			if j > 0 {
				smp.Dy += c * float64(j) * xi * math.Pow(y, float64(j-1))
			}
		}
	}
	return
}

func (p Polynomial) Sample(e *mesh.Element, r, s float64) types.Sample {
	return p.At(e.RefToPhys(r, s))
}

// Degree is the total degree of the polynomial
func (p Polynomial) Degree() (d int) {
	for i, row := range p.C {
		for j, c := range row {
			if c != 0 {
				d = max(d, i+j)
			}
		}
	}
	return
}

// Peak is Amplitude * exp(-Alpha * |(x,y) - (X0,Y0)|^2)
type Peak struct {
	X0, Y0, Alpha, Amplitude float64
}

func (p Peak) At(x, y float64) types.Sample {
	var (
		dx, dy = x - p.X0, y - p.Y0
		v      = p.Amplitude * math.Exp(-p.Alpha*(dx*dx+dy*dy))
	)
	return types.Sample{V: v, Dx: -2 * p.Alpha * dx * v, Dy: -2 * p.Alpha * dy * v}
}

func (p Peak) Sample(e *mesh.Element, r, s float64) types.Sample {
	return p.At(e.RefToPhys(r, s))
}

type SinCos struct {
	Kx, Ky float64
}

func (sc SinCos) At(x, y float64) types.Sample {
	var (
		sx, cx = math.Sincos(sc.Kx * x)
		sy, cy = math.Sincos(sc.Ky * y)
	)
	return types.Sample{V: sx * cy, Dx: sc.Kx * cx * cy, Dy: -sc.Ky * sx * sy}
}

func (sc SinCos) Sample(e *mesh.Element, r, s float64) types.Sample {
	return sc.At(e.RefToPhys(r, s))
}
