package detectors

import (
	"context"
	"fmt"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/geometry"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"
)

// DetectParanoidInterpretation flags a source whose recent output reads
// external signals as threats out of proportion to their actual coupling
// strength (spec §4.5 Observer-Coupling/Paranoid Interpretation).
func DetectParanoidInterpretation(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	since := core.NewTimestamp(sinceHours(p.CreatedAt.Time(), cfg.Detectors.ParanoidWindowHours))
	recent, err := store.ListUserPoints(ctx, p.SourceFingerprint, since, cfg.Detectors.ParanoidSampleCount)
	if err != nil {
		return nil, err
	}
	samples := len(recent)
	if samples <= 3 {
		return nil, nil
	}

	w := cfg.Dimensions.SmallWindow
	var biases []float64
	threatCount := 0
	for _, rp := range recent {
		norm := geometry.VectorNorm(rp.CoherenceField, w)
		bias := 0.5 - norm
		if bias < 0 {
			bias = 0
		}
		biases = append(biases, bias)

		if rp.SemanticMass > 0.6 {
			couplings, err := store.ListCouplings(ctx, rp.ID, core.Timestamp{}, ports.Descending, 1)
			if err != nil {
				return nil, err
			}
			if len(couplings) > 0 && couplings[0].CouplingMagnitude < 0.3 {
				threatCount++
			}
		}
	}

	bias := mean(biases)
	threatConc := float64(threatCount) / float64(samples)

	if !(bias > cfg.Detectors.ParanoidBiasMin && threatConc > cfg.Detectors.ParanoidThreatConc) {
		return nil, nil
	}

	severity := manifold.Clip(bias * threatConc * 2)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.ParanoidInterpretation,
		Severity:            severity,
		GeometricSignature:  []float64{bias, threatConc},
		MathematicalEvidence: fmt.Sprintf("negative_bias=%.4f threat_concentration=%.4f samples=%d", bias, threatConc, samples),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectObserverSolipsism flags a source whose recent points sit far from
// its current coherence field relative to that field's own norm: it fires
// when mean self-divergence / ||C|| exceeds SolipsismRatioMin, and the
// mean divergence from the latest cross-source baseline only scales the
// severity (spec §4.5 Observer-Coupling/Observer Solipsism).
func DetectObserverSolipsism(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil || len(p.CoherenceField) == 0 {
		return nil, nil
	}

	baseline, err := store.LatestCrossSourcePoint(ctx, p.SourceFingerprint)
	if err != nil {
		return nil, err
	}
	if baseline == nil || len(baseline.CoherenceField) == 0 {
		return nil, nil
	}

	recent, err := store.ListUserPoints(ctx, p.SourceFingerprint, core.Timestamp{}, cfg.Detectors.SolipsismSampleCount)
	if err != nil {
		return nil, err
	}
	samples := len(recent)
	if samples <= 2 {
		return nil, nil
	}

	n := activeDim(cfg)
	cur := truncate(p.CoherenceField, n)
	base := truncate(baseline.CoherenceField, n)

	var selfDivergences, baselineDivergences []float64
	for _, rp := range recent {
		if len(rp.CoherenceField) == 0 {
			continue
		}
		field := truncate(rp.CoherenceField, n)
		selfDivergences = append(selfDivergences, DefaultDistance(field, cur))
		baselineDivergences = append(baselineDivergences, DefaultDistance(field, base))
	}
	if len(selfDivergences) == 0 {
		return nil, nil
	}

	cNorm := geometry.VectorNorm(p.CoherenceField, n)
	if cNorm <= 0.1 {
		return nil, nil
	}

	deltaSelf := mean(selfDivergences)
	deltaCons := mean(baselineDivergences)
	ratio := deltaSelf / cNorm

	if ratio <= cfg.Detectors.SolipsismRatioMin {
		return nil, nil
	}

	severity := manifold.Clip(ratio * deltaCons)
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.ObserverSolipsism,
		Severity:            severity,
		GeometricSignature:  []float64{deltaSelf, deltaCons, ratio},
		MathematicalEvidence: fmt.Sprintf("delta_self=%.4f delta_cons=%.4f ratio=%.4f", deltaSelf, deltaCons, ratio),
		ComputedAt:           core.Now(),
	}), nil
}

// DetectSemanticNarcissism flags a point whose recent relational strength
// is almost entirely self-referential, with external coupling vanishing
// to noise (spec §4.5 Observer-Coupling/Semantic Narcissism).
func DetectSemanticNarcissism(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error) {
	p, err := store.GetPoint(ctx, pointID)
	if err != nil {
		return nil, err
	}
	if p == nil {
		return nil, nil
	}

	since := core.NewTimestamp(sinceHours(p.CreatedAt.Time(), cfg.Detectors.NarcissismWindowHours))
	couplings, err := store.ListCouplings(ctx, pointID, since, ports.Ascending, 0)
	if err != nil {
		return nil, err
	}

	var total, self float64
	var nSelf, nExt int
	for _, c := range couplings {
		total += c.CouplingMagnitude
		if c.IsSelf() {
			self += c.CouplingMagnitude
			nSelf++
		} else {
			nExt++
		}
	}
	external := total - self

	if !(total > 0 && nSelf+nExt > 3) {
		return nil, nil
	}
	selfFraction := self / total
	externalFraction := external / total

	if !(selfFraction > cfg.Detectors.NarcissismSelfFraction && externalFraction < cfg.Detectors.NarcissismExternalFraction) {
		return nil, nil
	}

	severity := manifold.Clip(selfFraction * (1 - externalFraction))
	return ptrRecord(manifold.SignatureRecord{
		PointID:             pointID,
		SignatureType:       manifold.SemanticNarcissism,
		Severity:            severity,
		GeometricSignature:  []float64{selfFraction, externalFraction},
		MathematicalEvidence: fmt.Sprintf("self_fraction=%.4f external_fraction=%.4f n_self=%d n_ext=%d", selfFraction, externalFraction, nSelf, nExt),
		ComputedAt:           core.Now(),
	}), nil
}
