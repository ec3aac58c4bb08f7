package quadrature

import (
	"math"

	"gonum.org/v1/gonum/mat"
)

// JacobiGQ returns the N+1 Gauss-Jacobi nodes and weights for the weight
// (1-x)^alpha (1+x)^beta on [-1,1], exact for polynomials of degree 2N+1.
func JacobiGQ(alpha, beta float64, N int) (X, W []float64) {
	var (
		fac    float64
		h1, d0 []float64
		VVr    *mat.Dense
	)
	if N == 0 {
		X = []float64{-(alpha - beta) / (alpha + beta + 2.)}
		W = []float64{gamma0(alpha, beta)}
		return
	}

	h1 = make([]float64, N+1)
	for i := 0; i < N+1; i++ {
		h1[i] = 2*float64(i) + alpha + beta
	}

	// main diagonal: diag(-1/2*(alpha^2-beta^2)./(h1+2)./h1)
	d0 = make([]float64, N+1)
	fac = -.5 * (alpha*alpha - beta*beta)
	for i := 0; i < N+1; i++ {
		val := h1[i]
		d0[i] = fac / (val * (val + 2.))
	}
	// Handle division by zero
	eps := 1.e-16
	if alpha+beta < 10*eps {
		d0[0] = 0.
	}

	// J + J^T doubles the diagonal
	JJ := mat.NewSymDense(N+1, nil)
	for i := 0; i < N+1; i++ {
		JJ.SetSym(i, i, 2*d0[i])
	}
	// 1st upper diagonal
	var ip1 float64
	for i := 0; i < N; i++ {
		ip1 = float64(i + 1)
		val := h1[i]
		d1 := 2. / (val + 2.)
		d1 *= math.Sqrt(ip1 * (ip1 + alpha + beta) * (ip1 + alpha) * (ip1 + beta) / ((val + 1.) * (val + 3.)))
		JJ.SetSym(i, i+1, d1)
	}

	var eig mat.EigenSym
	if ok := eig.Factorize(JJ, true); !ok {
		panic("eigenvalue decomposition failed")
	}
	X = eig.Values(nil)

	VVr = mat.NewDense(N+1, N+1, nil)
	eig.VectorsTo(VVr)
	W = make([]float64, N+1)
	g0 := gamma0(alpha, beta)
	for j, v := range VVr.RawRowView(0) {
		W[j] = v * v * g0
	}
	return
}

// JacobiP evaluates the orthonormal Jacobi polynomial of degree N at every x
func JacobiP(x []float64, alpha, beta float64, N int) (p []float64) {
	p = make([]float64, len(x))
	for i, xx := range x {
		p[i] = JacobiPAt(xx, alpha, beta, N)
	}
	return
}

func GradJacobiP(x []float64, alpha, beta float64, N int) (p []float64) {
	p = make([]float64, len(x))
	for i, xx := range x {
		p[i] = GradJacobiPAt(xx, alpha, beta, N)
	}
	return
}

// JacobiPAt is the three term recurrence for a single point
func JacobiPAt(x, alpha, beta float64, N int) float64 {
	var (
		ab = alpha + beta
		p0 = 1. / math.Sqrt(gamma0(alpha, beta))
	)
	if N == 0 {
		return p0
	}
	p1 := ((ab+2.0)*x/2.0 + (alpha-beta)/2.0) / math.Sqrt(gamma1(alpha, beta))
	if N == 1 {
		return p1
	}
	var (
		a1   = alpha + 1.
		b1   = beta + 1.
		ab1  = ab + 1.
		aold = 2.0 * math.Sqrt(a1*b1/(ab+3.0)) / (ab + 2.0)
	)
	for i := 0; i < N-1; i++ {
		ip1 := float64(i + 1)
		ip2 := ip1 + 1
		h1 := 2.0*ip1 + ab
		anew := 2.0 / (h1 + 2.0) * math.Sqrt(ip2*(ip1+ab1)*(ip1+a1)*(ip1+b1)/(h1+1.0)/(h1+3.0))
		bnew := -(alpha*alpha - beta*beta) / h1 / (h1 + 2.0)
		p0, p1 = p1, (-aold*p0+(x-bnew)*p1)/anew
		aold = anew
	}
	return p1
}

func GradJacobiPAt(x, alpha, beta float64, N int) float64 {
	if N == 0 {
		return 0
	}
	fN := float64(N)
	return math.Sqrt(fN*(fN+alpha+beta+1)) * JacobiPAt(x, alpha+1, beta+1, N-1)
}

func gamma0(alpha, beta float64) float64 {
	ab1 := alpha + beta + 1.
	a1 := alpha + 1.
	b1 := beta + 1.
	return math.Gamma(a1) * math.Gamma(b1) * math.Pow(2, ab1) / ab1 / math.Gamma(ab1)
}

func gamma1(alpha, beta float64) float64 {
	ab := alpha + beta
	a1 := alpha + 1.
	b1 := beta + 1.
	return a1 * b1 * gamma0(alpha, beta) / (ab + 3.0)
}
