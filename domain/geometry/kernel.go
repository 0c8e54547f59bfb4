package geometry

import (
	"context"
	"math"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
)

// BuildMetricFromNeighbors builds a metric tensor heuristically from the
// current field and its two temporal neighbors: at each component k,
// estimate the partial derivative via a centered difference, then fill
// g_ij = <grad_i, grad_j> + base*delta_ij (spec §4.3). Only the upper
// triangle is computed; the lower triangle mirrors on access.
func BuildMetricFromNeighbors(field []float64, neighbors [2][]float64, base float64, n int) (*SymmetricMatrix, error) {
	if len(field) < n || len(neighbors[0]) < n || len(neighbors[1]) < n {
		return nil, core.NewMissingInputError("neighbor field")
	}

	grad := make([]float64, n)
	for k := 0; k < n; k++ {
		grad[k] = (neighbors[1][k] - neighbors[0][k]) / 2
	}

	g := NewSymmetricMatrix(n)
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := grad[i] * grad[j]
			if i == j {
				v += base
			}
			g.Set(i, j, v)
		}
	}
	return g, nil
}

// MetricInverse expands g to dense form, computes its determinant, and —
// if the magnitude falls below detFloor — adds tikhonovAdd to the diagonal
// before inverting (Tikhonov-style regularization, spec §4.3). Returns the
// flattened inverse, the determinant actually used (post-regularization),
// and any inversion error.
func MetricInverse(g *SymmetricMatrix, n int, detFloor, pivotEps, tikhonovAdd float64) ([]float64, float64, error) {
	dense := g.Expand()

	d, err := Det(dense, n, pivotEps)
	if err != nil {
		return nil, 0, err
	}
	if math.Abs(d) < detFloor {
		for i := 0; i < n; i++ {
			dense[i*n+i] += tikhonovAdd
		}
		d, err = Det(dense, n, pivotEps)
		if err != nil {
			return nil, 0, err
		}
	}

	inv, err := Inverse(dense, n, pivotEps)
	if err != nil {
		return nil, 0, err
	}
	return inv, d, nil
}

// Christoffel computes Gamma^k_ij = 1/2 * g^kl * (d_i g_jl + d_j g_il - d_l g_ij),
// stored flat by (k,i,j) via ChristoffelIndex (spec §4.1, §4.3). partials[l]
// is the derivative of g with respect to component l, dense n*n; a nil
// partials is treated as an all-zero derivative field.
func Christoffel(g *SymmetricMatrix, ginv []float64, partials [][]float64, n int) ([]float64, error) {
	if len(ginv) != n*n {
		return nil, core.NewDimensionMismatchError(n*n, len(ginv))
	}

	partial := func(l, a, b int) float64 {
		if partials == nil || l >= len(partials) || partials[l] == nil {
			return 0
		}
		return partials[l][MatrixIndex(a, b, n)]
	}

	gamma := make([]float64, n*n*n)
	for k := 0; k < n; k++ {
		for i := 0; i < n; i++ {
			for j := 0; j < n; j++ {
				var sum float64
				for l := 0; l < n; l++ {
					gkl := ginv[MatrixIndex(k, l, n)]
					if gkl == 0 {
						continue
					}
					term := partial(i, j, l) + partial(j, i, l) - partial(l, i, j)
					sum += gkl * term
				}
				gamma[ChristoffelIndex(k, i, j, n)] = 0.5 * sum
			}
		}
	}
	return gamma, nil
}

// Ricci computes R_ij = d_k Gamma^k_ij - d_j Gamma^k_ik + Gamma^l_ij*Gamma^k_kl - Gamma^l_ik*Gamma^k_jl,
// with the partialGamma derivative terms skipped (treated as zero) when
// partialGamma is nil (spec §4.1). Returns a flat n*n array indexed by
// MatrixIndex.
func Ricci(gamma []float64, partialGamma [][]float64, n int) []float64 {
	partial := func(k, a, b int) float64 {
		if partialGamma == nil || k >= len(partialGamma) || partialGamma[k] == nil {
			return 0
		}
		return partialGamma[k][MatrixIndex(a, b, n)]
	}

	ricci := make([]float64, n*n)
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			var divergence, contractionA, contractionB float64
			for k := 0; k < n; k++ {
				divergence += partial(k, i, j)
				divergence -= partial(j, i, k)
			}
			for l := 0; l < n; l++ {
				for k := 0; k < n; k++ {
					contractionA += gamma[ChristoffelIndex(l, i, j, n)] * gamma[ChristoffelIndex(k, k, l, n)]
					contractionB += gamma[ChristoffelIndex(l, i, k, n)] * gamma[ChristoffelIndex(k, j, l, n)]
				}
			}
			ricci[MatrixIndex(i, j, n)] = divergence + contractionA - contractionB
		}
	}
	return ricci
}

// ScalarCurvature contracts the Ricci tensor against the inverse metric:
// R = sum_ij g^ij R_ij (spec §4.1).
func ScalarCurvature(ricci, ginv []float64, n int) float64 {
	var r float64
	for i := 0; i < n; i++ {
		for j := 0; j < n; j++ {
			idx := MatrixIndex(i, j, n)
			r += ginv[idx] * ricci[idx]
		}
	}
	return r
}

// FiniteDiffs computes central first and second derivatives of field over
// its first n components, clamping the boundary at index 0 and n-1 (spec
// §4.1: "boundary clamp at 1 and n", 1-indexed in the source; the interior
// stencil is the standard central-difference form).
func FiniteDiffs(field []float64, h float64, n int) (first, second []float64) {
	first = make([]float64, n)
	second = make([]float64, n)
	if len(field) < n || h == 0 {
		return first, second
	}

	for i := 0; i < n; i++ {
		switch {
		case i == 0 || i == n-1:
			first[i] = 0
			second[i] = 0
		default:
			first[i] = (field[i+1] - field[i-1]) / (2 * h)
			second[i] = (field[i+1] - 2*field[i] + field[i-1]) / (h * h)
		}
	}
	return first, second
}

// GeodesicDistance integrates a linearized path between two points: start
// at pa's truncated field, velocity = (pb-pa)/steps, acceleration at each
// step a^i = -Gamma^i_jk v^j v^k with Gamma linearly interpolated between
// the endpoints' own symbols, position advanced Verlet-style, and step
// length accumulated as sqrt(|avg_g . dx . dx|) (Euclidean fallback when
// either metric is absent). Non-negative by construction (spec §4.3).
func GeodesicDistance(ctx context.Context, pa, pb *manifold.ManifoldPoint, steps int, cfg config.Dimensions) (float64, error) {
	if pa == nil || pb == nil {
		return 0, core.NewMissingInputError("point")
	}
	n := cfg.ActiveDim
	if len(pa.SemanticField) < n || len(pb.SemanticField) < n {
		return 0, core.NewMissingInputError("semantic_field")
	}
	if steps <= 0 {
		steps = 100
	}

	pos := append([]float64(nil), pa.SemanticField[:n]...)
	vel := make([]float64, n)
	for i := 0; i < n; i++ {
		vel[i] = (pb.SemanticField[i] - pa.SemanticField[i]) / float64(steps)
	}

	gammaA := pa.ChristoffelSymbols
	gammaB := pb.ChristoffelSymbols
	haveGamma := len(gammaA) == n*n*n && len(gammaB) == n*n*n

	gA := expandMetric(pa.MetricTensor, n)
	gB := expandMetric(pb.MetricTensor, n)
	haveMetric := gA != nil && gB != nil

	var total float64
	for s := 0; s < steps; s++ {
		select {
		case <-ctx.Done():
			return total, core.ErrDeadlineExceeded
		default:
		}

		t := float64(s) / float64(steps)
		accel := make([]float64, n)
		if haveGamma {
			for i := 0; i < n; i++ {
				var a float64
				for j := 0; j < n; j++ {
					for k := 0; k < n; k++ {
						gIdx := ChristoffelIndex(i, j, k, n)
						gammaInterp := gammaA[gIdx] + t*(gammaB[gIdx]-gammaA[gIdx])
						a -= gammaInterp * vel[j] * vel[k]
					}
				}
				accel[i] = a
			}
		}

		prev := append([]float64(nil), pos...)
		for i := 0; i < n; i++ {
			vel[i] += accel[i]
			pos[i] += vel[i]
		}

		dx := make([]float64, n)
		for i := 0; i < n; i++ {
			dx[i] = pos[i] - prev[i]
		}

		var stepLen float64
		if haveMetric {
			for i := 0; i < n; i++ {
				for j := 0; j < n; j++ {
					avg := (gA[MatrixIndex(i, j, n)] + gB[MatrixIndex(i, j, n)]) / 2
					stepLen += avg * dx[i] * dx[j]
				}
			}
		} else {
			for i := 0; i < n; i++ {
				stepLen += dx[i] * dx[i]
			}
		}
		total += math.Sqrt(math.Abs(stepLen))
	}

	return total, nil
}

func expandMetric(flat []float64, n int) []float64 {
	if len(flat) != n*(n+1)/2 {
		return nil
	}
	return NewSymmetricMatrixFromUpper(n, flat).Expand()
}
