package geometry

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMetricInverseTikhonovFallback(t *testing.T) {
	// A near-singular metric: second row is a tiny perturbation of the first,
	// so |det| < detFloor before regularization.
	g := NewSymmetricMatrix(2)
	g.Set(0, 0, 1)
	g.Set(0, 1, 1)
	g.Set(1, 1, 1+1e-14)

	inv, det, err := MetricInverse(g, 2, 1e-10, 1e-12, 1e-6)
	require.NoError(t, err)
	assert.Len(t, inv, 4)
	assert.NotZero(t, det)
}

func TestScalarCurvatureFlatMetricIsZero(t *testing.T) {
	n := 3
	ginv := identity(n)
	ricci := make([]float64, n*n) // zero Ricci

	r := ScalarCurvature(ricci, ginv, n)
	assert.Equal(t, 0.0, r)
}

func TestFiniteDiffsBoundaryClamp(t *testing.T) {
	field := []float64{1, 2, 4, 8, 16}
	first, second := FiniteDiffs(field, 1.0, 5)

	assert.Equal(t, 0.0, first[0])
	assert.Equal(t, 0.0, first[4])
	assert.Equal(t, 0.0, second[0])
	assert.Equal(t, 0.0, second[4])
	// interior central difference at i=2: (8-2)/2 = 3
	assert.InDelta(t, 3.0, first[2], 1e-9)
}

func TestChristoffelZeroWhenPartialsNil(t *testing.T) {
	n := 2
	g := NewSymmetricMatrix(n)
	g.Set(0, 0, 1)
	g.Set(1, 1, 1)
	ginv := identity(n)

	gamma, err := Christoffel(g, ginv, nil, n)
	require.NoError(t, err)
	for _, v := range gamma {
		assert.Equal(t, 0.0, v)
	}
}

func TestRicciZeroWhenPartialGammaNilAndGammaZero(t *testing.T) {
	n := 2
	gamma := make([]float64, n*n*n)
	ricci := Ricci(gamma, nil, n)
	for _, v := range ricci {
		assert.Equal(t, 0.0, v)
	}
}

func TestBuildMetricFromNeighborsMissingInput(t *testing.T) {
	_, err := BuildMetricFromNeighbors([]float64{1, 2}, [2][]float64{{1}, {2}}, 0.1, 2)
	assert.Error(t, err)
}
