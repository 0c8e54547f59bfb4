package evolution

import (
	"context"
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someobserver/godel/adapters/memstore"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
)

func TestEvolveCoherenceFieldMissingPointReturnsZeroVector(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()

	out, err := EvolveCoherenceField(context.Background(), store, "missing", cfg.Evolution.DT, cfg.Evolution, cfg.Dimensions)
	require.NoError(t, err)
	require.Len(t, out, cfg.Dimensions.StorageDim)
	for _, v := range out {
		assert.Equal(t, 0.0, v)
	}
}

func TestEvolveCoherenceFieldEmptyFieldReturnsZeroVector(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	store.PutPoint(&manifold.ManifoldPoint{ID: "p1"})

	out, err := EvolveCoherenceField(context.Background(), store, "p1", cfg.Evolution.DT, cfg.Evolution, cfg.Dimensions)
	require.NoError(t, err)
	require.Len(t, out, cfg.Dimensions.StorageDim)
}

// TestEvolveCoherenceFieldStability is spec §8's evolution stability
// property: with dt=0.01 and C_mag <= 1.5, one Euler step from a finite
// field must stay finite and bounded by 10*max(|C_i|).
func TestEvolveCoherenceFieldStability(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()

	field := []float64{0.3, -0.2, 0.5, 0.1}
	store.PutPoint(&manifold.ManifoldPoint{
		ID:                 "p1",
		CoherenceField:     field,
		CoherenceMagnitude: 1.2,
		SemanticMass:       0.5,
	})

	out, err := EvolveCoherenceField(context.Background(), store, "p1", 0.01, cfg.Evolution, cfg.Dimensions)
	require.NoError(t, err)

	maxAbs := 0.0
	for _, v := range field {
		if math.Abs(v) > maxAbs {
			maxAbs = math.Abs(v)
		}
	}

	for i := 0; i < len(field); i++ {
		assert.False(t, math.IsNaN(out[i]) || math.IsInf(out[i], 0))
		assert.LessOrEqual(t, math.Abs(out[i]), 10*maxAbs+1e-9)
	}
}

func TestEvolveCoherenceFieldFallsBackToIdentityMetric(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()

	store.PutPoint(&manifold.ManifoldPoint{
		ID:                 "p1",
		CoherenceField:     []float64{0.1, 0.2, 0.3},
		CoherenceMagnitude: 0.6,
		SemanticMass:       0.2,
		// No MetricTensor set: inverseMetricOrIdentity must fall back to I.
	})

	out, err := EvolveCoherenceField(context.Background(), store, "p1", cfg.Evolution.DT, cfg.Evolution, cfg.Dimensions)
	require.NoError(t, err)
	for _, v := range out[:3] {
		assert.False(t, math.IsNaN(v))
	}
}

func TestEvolveCoherenceFieldOutputPaddedToStorageDim(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", CoherenceField: []float64{0.5, 0.5}, CoherenceMagnitude: 0.8})

	out, err := EvolveCoherenceField(context.Background(), store, "p1", cfg.Evolution.DT, cfg.Evolution, cfg.Dimensions)
	require.NoError(t, err)
	assert.Len(t, out, cfg.Dimensions.StorageDim)
	for _, v := range out[2:] {
		assert.Equal(t, 0.0, v)
	}
}
