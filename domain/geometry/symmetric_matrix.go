// Package geometry implements the numerical kernel: linear algebra
// primitives, metric construction, Christoffel symbols, Ricci and scalar
// curvature, finite differences, and geodesic integration (spec §4.1, §4.3).
package geometry

// SymmetricMatrix stores an n×n symmetric matrix as its flattened upper
// triangular half (length n(n+1)/2), mirroring on access rather than
// duplicating the lower half in memory — the dedicated type spec §9 asks
// for in place of the source's "flatten and read both halves" pattern.
type SymmetricMatrix struct {
	n    int
	flat []float64
}

// NewSymmetricMatrix allocates a zeroed n×n symmetric matrix.
func NewSymmetricMatrix(n int) *SymmetricMatrix {
	return &SymmetricMatrix{n: n, flat: make([]float64, n*(n+1)/2)}
}

// NewSymmetricMatrixFromUpper wraps an already-flattened upper-triangular
// slice; it does not copy.
func NewSymmetricMatrixFromUpper(n int, upper []float64) *SymmetricMatrix {
	return &SymmetricMatrix{n: n, flat: upper}
}

// N returns the matrix dimension.
func (m *SymmetricMatrix) N() int { return m.n }

// Raw returns the underlying flattened upper-triangular storage.
func (m *SymmetricMatrix) Raw() []float64 { return m.flat }

func upperIndex(i, j, n int) int {
	if i > j {
		i, j = j, i
	}
	// Row-major offset into the flattened upper triangle.
	return i*n - (i*(i-1))/2 + (j - i)
}

// At returns the (i,j) entry, mirroring across the diagonal transparently.
func (m *SymmetricMatrix) At(i, j int) float64 {
	return m.flat[upperIndex(i, j, m.n)]
}

// Set writes the (i,j) entry; since the matrix is symmetric this also
// determines (j,i).
func (m *SymmetricMatrix) Set(i, j int, v float64) {
	m.flat[upperIndex(i, j, m.n)] = v
}

// Expand returns the full row-major n×n dense form, for kernel routines
// (Gauss-Jordan, Christoffel) that need dense access.
func (m *SymmetricMatrix) Expand() []float64 {
	full := make([]float64, m.n*m.n)
	for i := 0; i < m.n; i++ {
		for j := 0; j < m.n; j++ {
			full[i*m.n+j] = m.At(i, j)
		}
	}
	return full
}

// MatrixIndex maps a dense (i,j) coordinate into a row-major flat index,
// the flat indexer spec §4.1 prescribes for the inverse metric and Ricci.
func MatrixIndex(i, j, n int) int { return i*n + j }

// ChristoffelIndex maps a (k,i,j) coordinate into the row-major flat index
// of an n³ Christoffel-shaped array, per spec §4.1: (k·n + i)·n + j.
func ChristoffelIndex(k, i, j, n int) int { return (k*n+i)*n + j }
