// Package evolution implements the single-step coherence field integrator
// (spec §4.7).
package evolution

import (
	"context"
	"sync"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/geometry"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"
)

// keyLocks serializes writers per point_id (spec §5: "writers ... serialized
// per point_id via a lightweight per-key lock"). There is no teacher
// precedent for a keyed-mutex map; this follows the same sync.RWMutex-
// guarded-state idiom memstore uses, specialized to one lock per key.
type keyLocks struct {
	mu    sync.Mutex
	locks map[core.ID]*sync.Mutex
}

func newKeyLocks() *keyLocks {
	return &keyLocks{locks: map[core.ID]*sync.Mutex{}}
}

func (k *keyLocks) lock(id core.ID) func() {
	k.mu.Lock()
	l, ok := k.locks[id]
	if !ok {
		l = &sync.Mutex{}
		k.locks[id] = l
	}
	k.mu.Unlock()

	l.Lock()
	return l.Unlock
}

var pointLocks = newKeyLocks()

// EvolveCoherenceField advances pointID's coherence field by one explicit
// Euler step of size dt, returning the new field padded to the storage
// dimension N (spec §4.7). Missing point or field yields a zero vector of
// length N rather than an error.
func EvolveCoherenceField(ctx context.Context, store ports.DataStore, pointID core.ID, dt float64, cfg config.EvolutionConfig, dims config.Dimensions) ([]float64, error) {
	unlock := pointLocks.lock(pointID)
	defer unlock()

	zero := make([]float64, dims.StorageDim)

	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.CoherenceField) == 0 {
		return zero, nil
	}

	n := dims.ActiveDim
	if len(p.CoherenceField) < n {
		n = len(p.CoherenceField)
	}
	field := p.CoherenceField[:n]
	cMag := p.CoherenceMagnitude
	mass := p.SemanticMass

	ginv := inverseMetricOrIdentity(p, n, dims)
	gamma := p.ChristoffelSymbols // nil-safe: treated as all-zero below

	delta := oneSidedFiniteDiff(field, cfg.FiniteDiffH, n)

	var scalarTerm float64
	for j := 0; j < n; j++ {
		for k := 0; k < n; k++ {
			gjk := ginv[geometry.MatrixIndex(j, k, n)]
			if gjk == 0 {
				continue
			}
			var innerSum float64
			if len(gamma) == n*n*n {
				for l := 0; l < n; l++ {
					innerSum += gamma[geometry.ChristoffelIndex(l, j, k, n)] * delta[l]
				}
			}
			scalarTerm += gjk * (-innerSum)
		}
	}

	next := make([]float64, dims.StorageDim)
	for i := 0; i < n; i++ {
		select {
		case <-ctx.Done():
			return nil, core.ErrDeadlineExceeded
		default:
		}

		c := field[i]
		l := scalarTerm - mass*c

		attractor := -(cMag - cfg.CThreshold) * c / (cMag + 1e-10)

		var autopoietic float64
		if cMag >= cfg.CThreshold {
			autopoietic = 2 * (cMag - cfg.CThreshold) * c / (cMag + 1e-10)
		}

		humility := -0.1 * cMag * c

		next[i] = c + dt*(l+attractor+autopoietic+humility)
	}

	return next, nil
}

// oneSidedFiniteDiff computes a forward difference at each component; the
// last component, which has no forward neighbor, reuses the difference of
// the component before it (boundary clamp).
func oneSidedFiniteDiff(field []float64, h float64, n int) []float64 {
	delta := make([]float64, n)
	if h == 0 {
		return delta
	}
	for l := 0; l < n; l++ {
		if l == n-1 {
			delta[l] = delta[maxInt(l-1, 0)]
			continue
		}
		delta[l] = (field[l+1] - field[l]) / h
	}
	return delta
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// inverseMetricOrIdentity expands and inverts the point's metric tensor,
// falling back to the flat (identity) metric when none is present.
func inverseMetricOrIdentity(p *manifold.ManifoldPoint, n int, dims config.Dimensions) []float64 {
	if len(p.MetricTensor) == 0 {
		id := make([]float64, n*n)
		for i := 0; i < n; i++ {
			id[i*n+i] = 1
		}
		return id
	}
	g := geometry.NewSymmetricMatrixFromUpper(n, p.MetricTensor)
	inv, _, err := geometry.MetricInverse(g, n, 1e-10, 1e-12, 1e-6)
	if err != nil {
		id := make([]float64, n*n)
		for i := 0; i < n; i++ {
			id[i*n+i] = 1
		}
		return id
	}
	return inv
}
