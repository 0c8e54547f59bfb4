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

func TestEngineDetectRigidityAbsorbsMissingInput(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	store.PutPoint(&manifold.ManifoldPoint{
		ID:                 "p1",
		AttractorStability: 0.9,
		CoherenceMagnitude: 0.8,
	})

	e := NewEngine(store, cfg, 2)
	records, err := e.DetectRigidity(context.Background(), "p1")
	require.NoError(t, err)

	// Belief Calcification and Metric Crystallization both need additional
	// inputs this point doesn't have; only Attractor Dogmatism should fire.
	require.Len(t, records, 1)
	assert.Equal(t, manifold.AttractorDogmatism, records[0].SignatureType)
}

func TestEngineDetectAllOnMissingPointReturnsEmpty(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()

	e := NewEngine(store, cfg, 4)
	records, err := e.DetectAll(context.Background(), core.ID("missing"))
	require.NoError(t, err)
	assert.Empty(t, records)
}

func TestEngineDetectAllRunsAllTwelve(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()

	store.PutPoint(&manifold.ManifoldPoint{
		ID:                 "p1",
		AttractorStability: 0.9,
		CoherenceMagnitude: 0.8,
	})

	e := NewEngine(store, cfg, 1) // concurrency=1 forces full serialization through the semaphore
	records, err := e.DetectAll(context.Background(), "p1")
	require.NoError(t, err)
	assert.NotEmpty(t, records)
	for _, r := range records {
		assert.GreaterOrEqual(t, r.Severity, 0.0)
		assert.LessOrEqual(t, r.Severity, 1.0)
	}
}

func TestEngineDefaultsConcurrencyWhenNonPositive(t *testing.T) {
	store := memstore.New()
	cfg := config.Defaults()
	e := NewEngine(store, cfg, 0)
	assert.NotNil(t, e.sem)
}
