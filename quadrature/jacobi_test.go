package quadrature

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestJacobiGQ_PartitionAndFirstMoment(t *testing.T) {
	const (
		α   = 0.3
		β   = 0.7
		N   = 5
		tol = 1e-12
	)
	x, w := JacobiGQ(α, β, N)

	// ∫_{-1}^1 (1-x)^α (1+x)^β dx = 2^{α+β+1} B(α+1, β+1)
	exactZero := math.Pow(2, α+β+1) * beta(α+1, β+1)
	exactOne := (β - α) / (α + β + 2) * exactZero

	var sum0, sum1 float64
	for i := range x {
		sum0 += w[i]
		sum1 += x[i] * w[i]
	}
	assert.InDeltaf(t, exactZero, sum0, tol,
		"sum(w) = %v, want %v", sum0, exactZero)
	assert.InDeltaf(t, exactOne, sum1, tol,
		"sum(x*w) = %v, want %v", sum1, exactOne)
}

func TestJacobiGQ_Roots(t *testing.T) {
	const (
		α = 0.3
		β = 0.7
		N = 5
	)
	X, W := JacobiGQ(α, β, N)
	assert.Equal(t, N+1, len(X))
	assert.Equal(t, N+1, len(W))
	// The nodes are roots of the (N+1)-th Jacobi polynomial
	for i, xi := range X {
		pi := JacobiPAt(xi, α, β, N+1)
		assert.InDeltaf(t, 0, pi, 1e-10,
			"JacobiP_{%d}^{(%.1f,%.1f)}(%g) = %g ≠ 0 (node %d)", N+1, α, β, xi, pi, i)
	}
	for i := 1; i < len(X); i++ {
		assert.Less(t, X[i-1], X[i])
	}
}

func TestJacobiPOrthonormality(t *testing.T) {
	const N = 6
	for _, ab := range [][2]float64{{0, 0}, {1, 0}, {2, 1}} {
		X, W := JacobiGQ(ab[0], ab[1], N+1)
		for m := 0; m <= N; m++ {
			pm := JacobiP(X, ab[0], ab[1], m)
			for n := 0; n <= N; n++ {
				pn := JacobiP(X, ab[0], ab[1], n)
				var s float64
				for i := range W {
					s += W[i] * pm[i] * pn[i]
				}
				want := 0.
				if m == n {
					want = 1
				}
				assert.InDeltaf(t, want, s, 1.e-10, "<P%d,P%d> (α,β)=%v", m, n, ab)
			}
		}
	}
}

func TestGradJacobiP(t *testing.T) {
	var (
		h = 1.e-6
		x = []float64{-0.9, -0.2, 0.35, 0.8}
	)
	for n := 0; n < 7; n++ {
		g := GradJacobiP(x, 1, 0, n)
		for i, xx := range x {
			fd := (JacobiPAt(xx+h, 1, 0, n) - JacobiPAt(xx-h, 1, 0, n)) / (2 * h)
			assert.InDeltaf(t, fd, g[i], 1.e-6, "n = %d, x = %g", n, xx)
		}
	}
}

func beta(a, b float64) float64 {
	return math.Gamma(a) * math.Gamma(b) / math.Gamma(a+b)
}

func TestJacobiGQ_Asymmetric(t *testing.T) {
	// Legendre with a high point count integrates the polynomial weights exactly
	ref, refW := JacobiGQ(0, 0, 20)
	for _, ab := range [][2]float64{{1, 0}, {0, 1}, {2, 1}, {0, 3}} {
		α, β := ab[0], ab[1]
		for N := 0; N <= 6; N++ {
			x, w := JacobiGQ(α, β, N)
			for k := 0; k <= 2*N+1; k++ {
				var want, got float64
				for i := range ref {
					want += refW[i] * math.Pow(1-ref[i], α) * math.Pow(1+ref[i], β) * math.Pow(ref[i], float64(k))
				}
				for i := range x {
					got += w[i] * math.Pow(x[i], float64(k))
				}
				assert.InDeltaf(t, want, got, 1.e-12, "alpha %v beta %v N %d x^%d", α, β, N, k)
			}
		}
	}
	// the single point rule sits on the centroid of the weight
	x, _ := JacobiGQ(1, 0, 0)
	assert.InDelta(t, -1./3., x[0], 1.e-15)
}
