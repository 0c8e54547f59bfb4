package analytics

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someobserver/godel/adapters/memstore"
	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
)

func TestCoordinationClustersTrigger(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	now := core.Now()

	field := []float64{0.5, 0.5, 0.5}
	store.PutPoint(&manifold.ManifoldPoint{ID: "p", SourceFingerprint: "u1", CoherenceField: field, SemanticMass: 100})
	store.PutPoint(&manifold.ManifoldPoint{ID: "q", SourceFingerprint: "u2", CoherenceField: field, SemanticMass: 100})

	for i := 0; i < 10; i++ {
		store.PutCoupling(manifold.RecursiveCoupling{
			PointP:            "p",
			PointQ:            "q",
			CouplingMagnitude: 0.9,
			ComputedAt:        now,
		})
	}

	clusters, err := CoordinationClusters(ctx, store, 10000, 0.5, 2, 0.5)
	require.NoError(t, err)
	require.Len(t, clusters, 1)

	c := clusters[0]
	assert.Equal(t, 10, c.ClusterSize)
	assert.InDelta(t, 0.9, c.AvgCoupling, 1e-9)
	assert.InDelta(t, 1.0, c.AvgGeomCoherence, 1e-9)
	assert.InDelta(t, 100.0, c.AvgMass, 1e-9)
	assert.Greater(t, c.Confidence, 0.5)
	assert.ElementsMatch(t, []core.ID{"p", "q"}, c.MemberPoints)
}

func TestCoordinationClustersExcludesSelfCoupling(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	now := core.Now()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p", SourceFingerprint: "u1", SemanticMass: 100})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p", PointQ: "p", CouplingMagnitude: 0.95, ComputedAt: now})

	clusters, err := CoordinationClusters(ctx, store, 10000, 0.5, 1, 0.0)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestCoordinationClustersExcludesSameSourcePair(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	now := core.Now()

	field := []float64{0.1, 0.2}
	store.PutPoint(&manifold.ManifoldPoint{ID: "p", SourceFingerprint: "u1", CoherenceField: field, SemanticMass: 100})
	store.PutPoint(&manifold.ManifoldPoint{ID: "q", SourceFingerprint: "u1", CoherenceField: field, SemanticMass: 100})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p", PointQ: "q", CouplingMagnitude: 0.95, ComputedAt: now})

	clusters, err := CoordinationClusters(ctx, store, 10000, 0.5, 1, 0.0)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestCoordinationClustersBelowThresholdDropped(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	now := core.Now()

	field := []float64{0.1, 0.2}
	store.PutPoint(&manifold.ManifoldPoint{ID: "p", SourceFingerprint: "u1", CoherenceField: field, SemanticMass: 100})
	store.PutPoint(&manifold.ManifoldPoint{ID: "q", SourceFingerprint: "u2", CoherenceField: field, SemanticMass: 100})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p", PointQ: "q", CouplingMagnitude: 0.2, ComputedAt: now})

	clusters, err := CoordinationClusters(ctx, store, 10000, 0.5, 1, 0.0)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}

func TestCoordinationClustersBelowMinSizeDropped(t *testing.T) {
	store := memstore.New()
	ctx := context.Background()
	now := core.Now()

	field := []float64{0.1, 0.2}
	store.PutPoint(&manifold.ManifoldPoint{ID: "p", SourceFingerprint: "u1", CoherenceField: field, SemanticMass: 100})
	store.PutPoint(&manifold.ManifoldPoint{ID: "q", SourceFingerprint: "u2", CoherenceField: field, SemanticMass: 100})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p", PointQ: "q", CouplingMagnitude: 0.9, ComputedAt: now})

	clusters, err := CoordinationClusters(ctx, store, 10000, 0.5, 5, 0.0)
	require.NoError(t, err)
	assert.Empty(t, clusters)
}
