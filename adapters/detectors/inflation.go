package detectors

import (
	"context"
	"fmt"
	"math"
	"sort"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/domain/scalar"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"
)

// DetectDelusionalExpansion flags runaway autopoietic growth that the
// constraint structure and wisdom regulation have both stopped damping
// (spec §4.5 Inflation/Delusional Expansion).
func DetectDelusionalExpansion(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	wisdom, err := store.LatestWisdom(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if wisdom == nil {
		return nil, nil
	}

	cMag := p.CoherenceMagnitude
	constrainingForce := math.Abs(cMag-cfg.Evolution.CThreshold) * 0.5
	if constrainingForce <= 0 {
		return nil, nil
	}
	phi := scalar.AutopoieticPotential(cMag, cfg.Evolution.CThreshold, cfg.Evolution.AutopoieticAlpha, cfg.Evolution.AutopoieticBeta)

	h := wisdom.HumilityFactor
	w := wisdom.WisdomValue

	if !(phi > cfg.Detectors.DelusionRatio*constrainingForce &&
		h < cfg.Detectors.DelusionHumilityMax &&
		w < cfg.Detectors.DelusionWisdomMax) {
		return nil, nil
	}

	severity := manifold.Clip(phi / (constrainingForce + 1e-10) * (1 - h) * (1 - w) / 20)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.DelusionalExpansion,
		Severity:            severity,
		GeometricSignature:  []float64{phi, constrainingForce, h, w},
		MathematicalEvidence: fmt.Sprintf("Phi=%.4f constraining_force=%.4f H=%.4f W=%.4f", phi, constrainingForce, h, w),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectSemanticHypercoherence flags a near-saturated coherence field that
// has sealed itself off from external influence (spec §4.5
// Inflation/Semantic Hypercoherence).
func DetectSemanticHypercoherence(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}
	if p.CoherenceMagnitude <= cfg.Detectors.HypercoherenceTrigger {
		return nil, nil
	}

	since := core.NewTimestamp(sinceHours(p.CreatedAt.Time(), cfg.Detectors.HypercoherenceWindowHours))
	couplings, err := store.ListCouplings(ctx, pointID, since, ports.Ascending, 0)
	if err != nil {
		return nil, err
	}
	if len(couplings) == 0 {
		return nil, nil
	}

	magnitudes := make([]float64, len(couplings))
	for i, c := range couplings {
		magnitudes[i] = c.CouplingMagnitude
	}
	flux := mean(magnitudes)

	if flux >= cfg.Detectors.HypercoherenceFluxMax {
		return nil, nil
	}

	severity := manifold.Clip(p.CoherenceMagnitude * (1 - flux))
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.SemanticHypercoherence,
		Severity:            severity,
		GeometricSignature:  []float64{p.CoherenceMagnitude, flux},
		MathematicalEvidence: fmt.Sprintf("C_mag=%.4f external_influence_flux=%.4f samples=%d", p.CoherenceMagnitude, flux, len(couplings)),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectRecurgentParasitism flags a point growing locally while draining
// the coherence of the wider conversation it participates in (spec §4.5
// Inflation/Recurgent Parasitism).
//
// Same-source and other-source series are sampled independently with no
// cross-alignment of cadence — a modeling choice inherited unresolved from
// the source, preserved rather than guessed at.
func DetectRecurgentParasitism(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	since := core.NewTimestamp(sinceHours(p.CreatedAt.Time(), cfg.Detectors.ParasitismWindowHours))

	sameSource, err := store.ListUserPoints(ctx, p.SourceFingerprint, since, 0)
	if err != nil {
		return nil, err
	}
	if len(sameSource) <= 2 {
		return nil, nil
	}
	// ListUserPoints returns descending order; reverse for a chronological trend.
	sameMasses := make([]float64, len(sameSource))
	for i, sp := range sameSource {
		sameMasses[len(sameSource)-1-i] = sp.SemanticMass
	}
	local := meanConsecutiveDelta(sameMasses)

	conv, err := store.ListConversationPoints(ctx, p.ConversationID, since)
	if err != nil {
		return nil, err
	}
	buckets := map[int64][]float64{}
	for _, cp := range conv {
		if cp.SourceFingerprint == p.SourceFingerprint {
			continue
		}
		epoch := cp.CreatedAt.BucketEpoch()
		buckets[epoch] = append(buckets[epoch], cp.SemanticMass)
	}
	if len(buckets) <= 2 {
		return nil, nil
	}
	epochs := make([]int64, 0, len(buckets))
	for e := range buckets {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })
	bucketAverages := make([]float64, len(epochs))
	for i, e := range epochs {
		bucketAverages[i] = mean(buckets[e])
	}
	ecological := meanConsecutiveDelta(bucketAverages)

	if !(local > cfg.Detectors.ParasitismLocalMin && ecological < cfg.Detectors.ParasitismEcologicalMax) {
		return nil, nil
	}

	severity := manifold.Clip(local * math.Abs(ecological) * 5)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.RecurgentParasitism,
		Severity:            severity,
		GeometricSignature:  []float64{local, ecological},
		MathematicalEvidence: fmt.Sprintf("local_growth=%.4f ecological_drain=%.4f", local, ecological),
		ComputedAt:           core.Now(),
	}), nil
}
