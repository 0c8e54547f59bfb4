// Package coupling implements the recursive coupling tensor between two
// manifold points and its scalar reductions (spec §4.4).
package coupling

import (
	"gonum.org/v1/gonum/floats"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
)

// Tensor computes the heuristic mixed-product coupling tensor:
// R_ijk = (s_p[i] * s_q[j] * c_p[k]) / (1 + |s_p[i]| + |s_q[j]|), returned
// as an n^3 flat array indexed via geometry.ChristoffelIndex's layout.
// Indices beyond an input's available length clamp to its last component.
func Tensor(p, q *manifold.ManifoldPoint, n int) []float64 {
	if p == nil || q == nil {
		return nil
	}
	sp := p.SemanticField
	sq := q.SemanticField
	cp := p.CoherenceField
	if len(sp) == 0 || len(sq) == 0 || len(cp) == 0 {
		return nil
	}

	get := func(v []float64, i int) float64 {
		if i >= len(v) {
			i = len(v) - 1
		}
		return v[i]
	}

	out := make([]float64, n*n*n)
	for i := 0; i < n; i++ {
		spi := get(sp, i)
		for j := 0; j < n; j++ {
			sqj := get(sq, j)
			denom := 1 + absf(spi) + absf(sqj)
			for k := 0; k < n; k++ {
				cpk := get(cp, k)
				out[(i*n+j)*n+k] = (spi * sqj * cpk) / denom
			}
		}
	}
	return out
}

func absf(x float64) float64 {
	if x < 0 {
		return -x
	}
	return x
}

// Magnitude reduces an n^3 coupling tensor to its Frobenius norm.
func Magnitude(tensor []float64) float64 {
	if len(tensor) == 0 {
		return 0
	}
	return floats.Norm(tensor, 2)
}

// SelfHeteroSplit partitions the total coupling strength of pointID across
// a set of couplings into self (p == q == pointID) and hetero components,
// per spec §3's "partitions total coupling strength within rounding".
func SelfHeteroSplit(couplings []manifold.RecursiveCoupling, pointID core.ID) (self, hetero float64) {
	for _, c := range couplings {
		if c.PointP != pointID && c.PointQ != pointID {
			continue
		}
		if c.IsSelf() {
			self += c.CouplingMagnitude
		} else {
			hetero += c.CouplingMagnitude
		}
	}
	return self, hetero
}
