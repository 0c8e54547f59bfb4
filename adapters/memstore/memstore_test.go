package memstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/ports"
)

func TestGetPointRoundtrip(t *testing.T) {
	s := New()
	ctx := context.Background()

	p := &manifold.ManifoldPoint{ID: "p1", SourceFingerprint: "u1"}
	s.PutPoint(p)

	got, err := s.GetPoint(ctx, "p1")
	require.NoError(t, err)
	assert.Equal(t, p, got)

	missing, err := s.GetPoint(ctx, "nope")
	require.NoError(t, err)
	assert.Nil(t, missing)
}

func TestListUserPointsOrderAndLimit(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 5; i++ {
		s.PutPoint(&manifold.ManifoldPoint{
			ID:                core.ID(string(rune('a' + i))),
			SourceFingerprint: "u1",
			CreatedAt:         core.NewTimestamp(base.Add(time.Duration(i) * time.Minute)),
		})
	}

	out, err := s.ListUserPoints(ctx, "u1", core.Timestamp{}, 3)
	require.NoError(t, err)
	require.Len(t, out, 3)
	// Descending: most recent (i=4) first.
	assert.Equal(t, core.ID("e"), out[0].ID)
	assert.Equal(t, core.ID("d"), out[1].ID)
	assert.Equal(t, core.ID("c"), out[2].ID)
}

func TestListConversationPointsAscendingAndSince(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now()

	for i := 0; i < 3; i++ {
		s.PutPoint(&manifold.ManifoldPoint{
			ID:             core.ID(string(rune('a' + i))),
			ConversationID: "conv1",
			CreatedAt:      core.NewTimestamp(base.Add(time.Duration(i) * time.Hour)),
		})
	}

	since := core.NewTimestamp(base.Add(30 * time.Minute))
	out, err := s.ListConversationPoints(ctx, "conv1", since)
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, core.ID("b"), out[0].ID)
	assert.Equal(t, core.ID("c"), out[1].ID)
}

func TestListCouplingsFiltersByPointID(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.PutCoupling(manifold.RecursiveCoupling{PointP: "p1", PointQ: "p1", CouplingMagnitude: 0.5, ComputedAt: core.Now()})
	s.PutCoupling(manifold.RecursiveCoupling{PointP: "p2", PointQ: "p3", CouplingMagnitude: 0.9, ComputedAt: core.Now()})

	out, err := s.ListCouplings(ctx, "p1", core.Timestamp{}, ports.Ascending, 0)
	require.NoError(t, err)
	require.Len(t, out, 1)
	assert.Equal(t, core.ID("p1"), out[0].PointP)

	all, err := s.ListCouplings(ctx, "", core.Timestamp{}, ports.Ascending, 0)
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestLatestCrossSourcePointExcludesSource(t *testing.T) {
	s := New()
	ctx := context.Background()
	base := time.Now()

	s.PutPoint(&manifold.ManifoldPoint{ID: "a", SourceFingerprint: "u1", CreatedAt: core.NewTimestamp(base)})
	s.PutPoint(&manifold.ManifoldPoint{ID: "b", SourceFingerprint: "u2", CreatedAt: core.NewTimestamp(base.Add(time.Minute))})

	got, err := s.LatestCrossSourcePoint(ctx, "u1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, core.ID("b"), got.ID)
}

func TestAppendSignatureAndEvolutionSnapshot(t *testing.T) {
	s := New()
	ctx := context.Background()

	s.PutPoint(&manifold.ManifoldPoint{ID: "p1", CoherenceField: []float64{1, 2}})

	rec := manifold.SignatureRecord{PointID: "p1", SignatureType: manifold.AttractorDogmatism, Severity: 0.8}
	require.NoError(t, s.AppendSignature(ctx, rec))
	assert.Len(t, s.Signatures(), 1)

	require.NoError(t, s.AppendEvolutionSnapshot(ctx, "p1", []float64{9, 9}))
	p, _ := s.GetPoint(ctx, "p1")
	assert.Equal(t, []float64{9, 9}, p.CoherenceField)
}
