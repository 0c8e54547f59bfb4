package detectors

import (
	"context"
	"fmt"
	"math"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/geometry"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/domain/scalar"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"
)

// DetectAttractorSplintering flags a trajectory generating new attractor
// directions faster than autopoietic growth can integrate them (spec §4.5
// Fragmentation/Attractor Splintering).
func DetectAttractorSplintering(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.CoherenceField) == 0 {
		return nil, nil
	}

	since := core.NewTimestamp(sinceHours(p.CreatedAt.Time(), cfg.Detectors.SplinterWindowHours))
	trajectory, err := store.ListConversationPoints(ctx, p.ConversationID, since)
	if err != nil {
		return nil, err
	}
	if len(trajectory) < 2 {
		return nil, nil
	}

	n := activeDim(cfg)
	var distances []float64
	uniqueDirections := 0
	for i := 1; i < len(trajectory); i++ {
		if len(trajectory[i-1].CoherenceField) == 0 || len(trajectory[i].CoherenceField) == 0 {
			continue
		}
		d := DefaultDistance(truncate(trajectory[i-1].CoherenceField, n), truncate(trajectory[i].CoherenceField, n))
		distances = append(distances, d)
		if d > cfg.Detectors.SplinterDistance {
			uniqueDirections++
		}
	}
	sampleCount := len(distances)
	if sampleCount <= 2 {
		return nil, nil
	}

	windowSeconds := trajectory[len(trajectory)-1].CreatedAt.Sub(trajectory[0].CreatedAt).Seconds()
	if windowSeconds <= 0 {
		return nil, nil
	}
	attractorRate := float64(uniqueDirections) * 3600 / windowSeconds

	phi := scalar.AutopoieticPotential(p.CoherenceMagnitude, cfg.Evolution.CThreshold, cfg.Evolution.AutopoieticAlpha, cfg.Evolution.AutopoieticBeta)
	directionVariance := variance(distances)
	autopoieticRate := math.Max(0, phi*directionVariance/float64(sampleCount))
	if autopoieticRate <= 0 {
		return nil, nil
	}

	ratio := attractorRate / autopoieticRate
	if ratio <= cfg.Detectors.SplinterRatioMin {
		return nil, nil
	}

	severity := manifold.Clip(ratio / 10)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.AttractorSplintering,
		Severity:            severity,
		GeometricSignature:  []float64{float64(uniqueDirections), attractorRate, autopoieticRate, ratio},
		MathematicalEvidence: fmt.Sprintf("unique_directions=%d attractor_rate=%.4f autopoietic_rate=%.6f ratio=%.4f", uniqueDirections, attractorRate, autopoieticRate, ratio),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectCoherenceDissolution flags a coherence field whose local gradient
// dwarfs its own magnitude — structure unraveling faster than it can be
// re-established (spec §4.5 Fragmentation/Coherence Dissolution).
func DetectCoherenceDissolution(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.CoherenceField) == 0 {
		return nil, nil
	}

	n := activeDim(cfg)
	cNorm := geometry.VectorNorm(p.CoherenceField, n)
	first, second := geometry.FiniteDiffs(p.CoherenceField, cfg.Evolution.FiniteDiffH, n)
	gradNorm := geometry.VectorNorm(first, n)
	var secondSum float64
	for _, v := range second {
		secondSum += v
	}

	if !(cNorm > cfg.Detectors.CoherenceNormMin &&
		gradNorm > cfg.Detectors.CoherenceGradientMultiplier*cNorm &&
		secondSum > 0) {
		return nil, nil
	}

	severity := manifold.Clip((gradNorm / cNorm) / 10)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.CoherenceDissolution,
		Severity:            severity,
		GeometricSignature:  []float64{cNorm, gradNorm, secondSum},
		MathematicalEvidence: fmt.Sprintf("||C||=%.4f ||grad C||=%.4f sum_second=%.4f", cNorm, gradNorm, secondSum),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectReferenceDecay flags a point whose recent coupling strength is
// trending down without compensating wisdom regulation (spec §4.5
// Fragmentation/Reference Decay).
func DetectReferenceDecay(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	couplings, err := store.ListCouplings(ctx, pointID, core.Timestamp{}, ports.Descending, cfg.Detectors.DecayWindowCount)
	if err != nil {
		return nil, err
	}
	if len(couplings) < 2 {
		return nil, nil
	}

	// Chronological order for a meaningful step-to-step trend.
	magnitudes := make([]float64, len(couplings))
	for i, c := range couplings {
		magnitudes[len(couplings)-1-i] = c.CouplingMagnitude
	}

	decayRate := meanConsecutiveDelta(magnitudes)

	wisdom, err := store.LatestWisdom(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if wisdom == nil {
		return nil, nil
	}
	compensatoryWisdom := wisdom.WisdomValue * wisdom.HumilityFactor

	if !(decayRate < cfg.Detectors.DecayRateThreshold && compensatoryWisdom < cfg.Detectors.DecayWisdomMax) {
		return nil, nil
	}

	severity := manifold.Clip(math.Abs(decayRate) * (1 - compensatoryWisdom) * 10)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.ReferenceDecay,
		Severity:            severity,
		GeometricSignature:  []float64{decayRate, compensatoryWisdom},
		MathematicalEvidence: fmt.Sprintf("decay_rate=%.6f compensatory_wisdom=%.4f samples=%d", decayRate, compensatoryWisdom, len(couplings)),
		ComputedAt:           core.Now(),
	}), nil
}

func variance(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	m := mean(xs)
	var sumSq float64
	for _, x := range xs {
		d := x - m
		sumSq += d * d
	}
	return sumSq / float64(len(xs)-1)
}

// meanConsecutiveDelta averages step-to-step change; subtracting the
// series mean from each value before differencing (the "around its mean"
// phrasing of spec §4.5) leaves consecutive differences unchanged, so the
// two formulations coincide.
func meanConsecutiveDelta(xs []float64) float64 {
	if len(xs) < 2 {
		return 0
	}
	var sum float64
	for i := 1; i < len(xs); i++ {
		sum += xs[i] - xs[i-1]
	}
	return sum / float64(len(xs)-1)
}
