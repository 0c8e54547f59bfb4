package geometry

import (
	"math"

	"gonum.org/v1/gonum/floats"

	"github.com/someobserver/godel/domain/core"
)

// defaultPivotEps is used by callers that don't thread a configured guard
// through (e.g. package-level tests); production call sites should pass
// the configured value from config.NumericalGuards.PivotEps.
const defaultPivotEps = 1e-12

// Det computes the determinant of a dense row-major n×n matrix via
// partial-pivot LU elimination, tracking the sign flip across each row
// swap. A pivot whose magnitude falls below pivotEps after selection
// floors the determinant to zero rather than dividing by it (spec §4.1).
func Det(m []float64, n int, pivotEps float64) (float64, error) {
	if len(m) != n*n {
		return 0, core.NewDimensionMismatchError(n*n, len(m))
	}
	if n == 0 {
		return 1, nil
	}
	a := append([]float64(nil), m...)
	sign := 1.0
	det := 1.0

	for col := 0; col < n; col++ {
		pivotRow := col
		maxAbs := math.Abs(a[col*n+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(a[r*n+col]); v > maxAbs {
				maxAbs = v
				pivotRow = r
			}
		}
		if pivotRow != col {
			swapRows(a, n, col, pivotRow)
			sign = -sign
		}
		pivot := a[col*n+col]
		if math.Abs(pivot) < pivotEps {
			return 0, nil
		}
		det *= pivot
		for r := col + 1; r < n; r++ {
			factor := a[r*n+col] / pivot
			if factor == 0 {
				continue
			}
			for c := col; c < n; c++ {
				a[r*n+c] -= factor * a[col*n+c]
			}
		}
	}
	return sign * det, nil
}

// Inverse computes the matrix inverse of a dense row-major n×n matrix via
// Gauss-Jordan elimination on the augmented [M | I] system. A pivot whose
// magnitude falls below pivotEps fails with ErrSingularMatrix (spec §4.1).
func Inverse(m []float64, n int, pivotEps float64) ([]float64, error) {
	if len(m) != n*n {
		return nil, core.NewDimensionMismatchError(n*n, len(m))
	}

	aug := make([]float64, n*2*n)
	for r := 0; r < n; r++ {
		copy(aug[r*2*n:r*2*n+n], m[r*n:r*n+n])
		aug[r*2*n+n+r] = 1
	}

	for col := 0; col < n; col++ {
		pivotRow := col
		maxAbs := math.Abs(aug[col*2*n+col])
		for r := col + 1; r < n; r++ {
			if v := math.Abs(aug[r*2*n+col]); v > maxAbs {
				maxAbs = v
				pivotRow = r
			}
		}
		if pivotRow != col {
			swapRows(aug, 2*n, col, pivotRow)
		}
		pivot := aug[col*2*n+col]
		if math.Abs(pivot) < pivotEps {
			return nil, core.ErrSingularMatrix
		}
		for c := 0; c < 2*n; c++ {
			aug[col*2*n+c] /= pivot
		}
		for r := 0; r < n; r++ {
			if r == col {
				continue
			}
			factor := aug[r*2*n+col]
			if factor == 0 {
				continue
			}
			for c := 0; c < 2*n; c++ {
				aug[r*2*n+c] -= factor * aug[col*2*n+c]
			}
		}
	}

	inv := make([]float64, n*n)
	for r := 0; r < n; r++ {
		copy(inv[r*n:r*n+n], aug[r*2*n+n:r*2*n+2*n])
	}
	return inv, nil
}

func swapRows(a []float64, width, r1, r2 int) {
	if r1 == r2 {
		return
	}
	for c := 0; c < width; c++ {
		a[r1*width+c], a[r2*width+c] = a[r2*width+c], a[r1*width+c]
	}
}

// VectorNorm returns the Euclidean norm of v over its first dims
// components (used to truncate from storage dimension N to active
// dimension n), backed by gonum/floats.
func VectorNorm(v []float64, dims int) float64 {
	if dims > len(v) {
		dims = len(v)
	}
	if dims <= 0 {
		return 0
	}
	return floats.Norm(v[:dims], 2)
}
