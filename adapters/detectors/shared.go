// Package detectors implements the twelve orthogonal structural-breakdown
// signatures of spec §4.5, grouped as rigidity, fragmentation, inflation,
// and observer-coupling, plus the Engine that runs them concurrently.
package detectors

import (
	"time"

	"github.com/someobserver/godel/domain/geometry"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
)

// DistanceFunc is the signature of a "direction" measure between two
// truncated field vectors. The detectors in this package call
// DefaultDistance directly; none of them accepts a DistanceFunc, so using a
// different metric (e.g. cosine) means changing those call sites.
type DistanceFunc func(a, b []float64) float64

// DefaultDistance is the Euclidean (L2) distance over the active dimension.
func DefaultDistance(a, b []float64) float64 {
	n := len(a)
	if len(b) < n {
		n = len(b)
	}
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = a[i] - b[i]
	}
	return geometry.VectorNorm(diff, n)
}

func truncate(v []float64, n int) []float64 {
	if len(v) <= n {
		return v
	}
	return v[:n]
}

func mean(xs []float64) float64 {
	if len(xs) == 0 {
		return 0
	}
	var sum float64
	for _, x := range xs {
		sum += x
	}
	return sum / float64(len(xs))
}

// sinceHours returns the timestamp that is durHours before t.
func sinceHours(t time.Time, durHours float64) time.Time {
	return t.Add(-time.Duration(durHours * float64(time.Hour)))
}

// activeDim is a tiny helper avoiding repeated cfg.Dimensions.ActiveDim plumbing.
func activeDim(cfg *config.Config) int { return cfg.Dimensions.ActiveDim }

// curvaturePressure is mean |R_ii| over the first n diagonal entries of a
// flat n*n Ricci tensor, shared by Metric Crystallization.
func curvaturePressure(ricci []float64, n int) float64 {
	if len(ricci) == 0 {
		return 0
	}
	var sum float64
	for i := 0; i < n; i++ {
		v := ricci[geometry.MatrixIndex(i, i, n)]
		if v < 0 {
			v = -v
		}
		sum += v
	}
	return sum / float64(n)
}

func ptrRecord(rec manifold.SignatureRecord) *manifold.SignatureRecord {
	return &rec
}
