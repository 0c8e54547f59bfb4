package detectors

import (
	"context"
	"fmt"
	"math"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/domain/scalar"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"
)

// DetectAttractorDogmatism flags an attractor so stable, and coherence so
// resistant to the autopoietic growth term, that the point is over-
// constrained (spec §4.5 Rigidity/Attractor Dogmatism).
func DetectAttractorDogmatism(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	a := p.AttractorStability
	cMag := p.CoherenceMagnitude
	cThr := cfg.Detectors.ConstraintThreshold

	if !(a > cfg.Detectors.AttractorCritical && cMag > cThr) {
		return nil, nil
	}

	phi := scalar.AutopoieticPotential(cMag, cThr, 2, 2)
	constrainingForce := math.Abs(cMag-cThr) * cMag
	forceRatio := constrainingForce / math.Max(phi, 1e-10)

	if forceRatio <= cfg.Detectors.DogmatismTau {
		return nil, nil
	}

	severity := manifold.Clip(forceRatio / 10)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.AttractorDogmatism,
		Severity:            severity,
		GeometricSignature:  []float64{a, cMag, constrainingForce, phi},
		MathematicalEvidence: fmt.Sprintf("A=%.4f C_mag=%.4f constraining_force=%.4f Phi=%.4f force_ratio=%.4f", a, cMag, constrainingForce, phi, forceRatio),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectBeliefCalcification flags a conversation whose recent trajectory
// has stopped moving in coherence space while carrying substantial
// semantic mass (spec §4.5 Rigidity/Belief Calcification).
func DetectBeliefCalcification(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.CoherenceField) == 0 {
		return nil, nil
	}

	since := core.NewTimestamp(sinceHours(p.CreatedAt.Time(), cfg.Detectors.BeliefWindowHours))
	trajectory, err := store.ListConversationPoints(ctx, p.ConversationID, since)
	if err != nil {
		return nil, err
	}
	if len(trajectory) < 2 {
		return nil, nil
	}

	n := activeDim(cfg)
	cur := truncate(p.CoherenceField, n)

	var distances, masses []float64
	for _, other := range trajectory {
		if other.ID == p.ID || len(other.CoherenceField) == 0 {
			continue
		}
		distances = append(distances, DefaultDistance(cur, truncate(other.CoherenceField, n)))
		masses = append(masses, other.SemanticMass)
	}
	if len(distances) == 0 {
		return nil, nil
	}

	delta := mean(distances)
	pi := mean(masses)

	if !(delta < cfg.Detectors.BeliefDeltaMax && pi > cfg.Detectors.BeliefMassMin) {
		return nil, nil
	}

	severity := manifold.Clip((pi / (delta + 1e-10)) / 50)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.BeliefCalcification,
		Severity:            severity,
		GeometricSignature:  []float64{delta, pi},
		MathematicalEvidence: fmt.Sprintf("delta=%.6f pi=%.4f samples=%d", delta, pi, len(distances)),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectMetricCrystallization flags a point whose geometry has stopped
// evolving while curvature pressure keeps building (spec §4.5
// Rigidity/Metric Crystallization).
func DetectMetricCrystallization(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.RicciCurvature) == 0 {
		return nil, nil
	}

	n := activeDim(cfg)
	evolutionRate := 0.1 * math.Abs(p.SemanticMass)
	pressure := curvaturePressure(p.RicciCurvature, n)

	if !(evolutionRate < cfg.Detectors.MetricCrystEvoMax && pressure > cfg.Detectors.MetricCrystPressureMin) {
		return nil, nil
	}

	severity := manifold.Clip((pressure / (evolutionRate + 1e-10)) / 100)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.MetricCrystallization,
		Severity:            severity,
		GeometricSignature:  []float64{evolutionRate, pressure},
		MathematicalEvidence: fmt.Sprintf("evolution_rate=%.6f curvature_pressure=%.6f", evolutionRate, pressure),
		ComputedAt:           core.Now(),
	}), nil
}
