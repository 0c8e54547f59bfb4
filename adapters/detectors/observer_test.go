package detectors

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someobserver/godel/adapters/memstore"
	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
)

// TestNarcissismTrigger is spec §8 end-to-end scenario 8: four self-couplings
// at {0.95, 0.90, 0.85, 0.80} plus one cross-source coupling at 0.05 must
// produce a SEMANTIC_NARCISSISM record with self_fraction > 0.8 and
// external_fraction < 0.2.
func TestNarcissismTrigger(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", CreatedAt: core.Now()})

	for _, mag := range []float64{0.95, 0.90, 0.85, 0.80} {
		store.PutCoupling(manifold.RecursiveCoupling{
			PointP:            "p1",
			PointQ:            "p1",
			CouplingMagnitude: mag,
			ComputedAt:        core.Now(),
		})
	}
	store.PutCoupling(manifold.RecursiveCoupling{
		PointP:            "p1",
		PointQ:            "other",
		CouplingMagnitude: 0.05,
		ComputedAt:        core.Now(),
	})

	rec, err := DetectSemanticNarcissism(ctx, store, "p1", cfg)
	require.NoError(t, err)
	require.NotNil(t, rec)

	assert.Equal(t, manifold.SemanticNarcissism, rec.SignatureType)
	require.Len(t, rec.GeometricSignature, 2)
	selfFraction, externalFraction := rec.GeometricSignature[0], rec.GeometricSignature[1]
	assert.Greater(t, selfFraction, 0.8)
	assert.Less(t, externalFraction, 0.2)
	assert.GreaterOrEqual(t, rec.Severity, 0.0)
	assert.LessOrEqual(t, rec.Severity, 1.0)
}

func TestNarcissismNoTriggerWithBalancedCoupling(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", CreatedAt: core.Now()})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "p1", CouplingMagnitude: 0.5, ComputedAt: core.Now()})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "other", CouplingMagnitude: 0.5, ComputedAt: core.Now()})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "other2", CouplingMagnitude: 0.5, ComputedAt: core.Now()})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "other3", CouplingMagnitude: 0.5, ComputedAt: core.Now()})

	rec, err := DetectSemanticNarcissism(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestNarcissismNoTriggerOnSparseHistory(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", CreatedAt: core.Now()})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "p1", CouplingMagnitude: 0.95, ComputedAt: core.Now()})

	rec, err := DetectSemanticNarcissism(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestSolipsismNoTriggerWithoutBaseline(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", SourceFingerprint: "u1", CoherenceField: []float64{0.5, 0.5}})

	rec, err := DetectObserverSolipsism(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestParanoidNoTriggerWithFewSamples(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", SourceFingerprint: "u1", CreatedAt: core.Now()})

	rec, err := DetectParanoidInterpretation(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
