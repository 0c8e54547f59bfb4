package coupling

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
)

func samplePoint(id core.ID) *manifold.ManifoldPoint {
	return &manifold.ManifoldPoint{
		ID:             id,
		SemanticField:  []float64{1, 2, 3},
		CoherenceField: []float64{0.5, 0.5, 0.5},
	}
}

func TestTensorNilOnMissingInput(t *testing.T) {
	assert.Nil(t, Tensor(nil, samplePoint("q"), 2))
	assert.Nil(t, Tensor(samplePoint("p"), nil, 2))

	empty := &manifold.ManifoldPoint{ID: "empty"}
	assert.Nil(t, Tensor(empty, samplePoint("q"), 2))
}

func TestTensorClampsOutOfRangeIndices(t *testing.T) {
	p := samplePoint("p")
	q := samplePoint("q")
	tensor := Tensor(p, q, 5)
	assert.Len(t, tensor, 5*5*5)
	// All entries finite; no panic on index clamp.
	for _, v := range tensor {
		assert.False(t, v != v) // not NaN
	}
}

func TestMagnitudeEmptyIsZero(t *testing.T) {
	assert.Equal(t, 0.0, Magnitude(nil))
}

func TestMagnitudeFrobeniusNorm(t *testing.T) {
	tensor := []float64{3, 4}
	assert.InDelta(t, 5.0, Magnitude(tensor), 1e-9)
}

func TestSelfHeteroSplit(t *testing.T) {
	pid := core.ID("p")
	couplings := []manifold.RecursiveCoupling{
		{PointP: pid, PointQ: pid, CouplingMagnitude: 0.9},
		{PointP: pid, PointQ: "other", CouplingMagnitude: 0.3},
		{PointP: "irrelevant", PointQ: "also-irrelevant", CouplingMagnitude: 0.7},
	}
	self, hetero := SelfHeteroSplit(couplings, pid)
	assert.InDelta(t, 0.9, self, 1e-9)
	assert.InDelta(t, 0.3, hetero, 1e-9)
}
