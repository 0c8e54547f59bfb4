package detectors

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someobserver/godel/adapters/memstore"
	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
)

func TestSplinteringTrigger(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()
	base := time.Now()

	fields := [][]float64{
		{0.0, 0.0},
		{1.0, 0.0},
		{0.0, 1.0},
		{-1.0, 0.0},
		{0.0, -1.0},
	}
	for i, f := range fields {
		store.PutPoint(&manifold.ManifoldPoint{
			ID:                 core.ID(string(rune('a' + i))),
			ConversationID:     "conv1",
			CoherenceField:     f,
			CoherenceMagnitude: 0.9,
			CreatedAt:          core.NewTimestamp(base.Add(time.Duration(i) * time.Minute)),
		})
	}

	rec, err := DetectAttractorSplintering(ctx, store, "e", cfg)
	require.NoError(t, err)
	require.NotNil(t, rec)
	assert.Equal(t, manifold.AttractorSplintering, rec.SignatureType)
	assert.GreaterOrEqual(t, rec.Severity, 0.0)
	assert.LessOrEqual(t, rec.Severity, 1.0)
}

func TestSplinteringNoTriggerOnShortTrajectory(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "a", ConversationID: "conv1", CoherenceField: []float64{0.1}, CreatedAt: core.Now()})

	rec, err := DetectAttractorSplintering(ctx, store, "a", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCoherenceDissolutionNoTriggerOnSmoothField(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	flat := make([]float64, 10)
	for i := range flat {
		flat[i] = 0.5
	}
	store.PutPoint(&manifold.ManifoldPoint{ID: "p1", CoherenceField: flat})

	rec, err := DetectCoherenceDissolution(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestCoherenceDissolutionNoTriggerOnEmptyField(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutPoint(&manifold.ManifoldPoint{ID: "p1"})

	rec, err := DetectCoherenceDissolution(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}

func TestReferenceDecayRequiresWisdom(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "q", CouplingMagnitude: 0.9, ComputedAt: core.Now()})
	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "q", CouplingMagnitude: 0.1, ComputedAt: core.Now()})

	rec, err := DetectReferenceDecay(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec) // no wisdom record on file
}

func TestReferenceDecayNoTriggerOnSingleCoupling(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	ctx := context.Background()

	store.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "q", CouplingMagnitude: 0.9, ComputedAt: core.Now()})

	rec, err := DetectReferenceDecay(ctx, store, "p1", cfg)
	require.NoError(t, err)
	assert.Nil(t, rec)
}
