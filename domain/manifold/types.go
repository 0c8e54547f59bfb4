// Package manifold holds the observation entity (ManifoldPoint) and its
// derived records: pairwise coupling, wisdom regulation, detector output,
// coordination clusters, and escalation records (spec §3).
package manifold

import (
	"github.com/someobserver/godel/domain/core"
)

// ManifoldPoint is the fundamental observation: a pair of high-dimensional
// field vectors plus whatever geometric quantities have been derived from
// them so far.
type ManifoldPoint struct {
	ID                core.ID
	SourceFingerprint core.SourceFingerprint
	ConversationID    core.ConversationID
	CreatedAt         core.Timestamp

	// SemanticField and CoherenceField are N-component embeddings; N is the
	// configured storage dimension.
	SemanticField      []float64
	CoherenceField      []float64
	CoherenceMagnitude float64

	// Geometry is filled by the kernel, either eagerly on ingest or lazily
	// on first detector call. Nil until computed.
	MetricTensor       []float64 // n*(n+1)/2 flattened upper triangular
	MetricDeterminant  float64
	ChristoffelSymbols []float64 // n^3 flat
	RicciCurvature     []float64 // n^2 flat
	ScalarCurvature    float64

	// Semantics.
	RecursiveDepth     float64 // D
	ConstraintDensity  float64 // rho
	AttractorStability float64 // A
	SemanticMass       float64 // M
}

// HasGeometry reports whether the kernel has already populated this point's
// metric tensor.
func (p *ManifoldPoint) HasGeometry() bool {
	return p != nil && len(p.MetricTensor) > 0
}

// Validate checks two at-rest invariants: a non-empty field vector shorter
// than n is rejected, and a present metric tensor (expanded at dimension n)
// must agree with its cached determinant within epsDet. Field vectors longer
// than n, and empty ones, are not rejected.
func (p *ManifoldPoint) Validate(n int, epsDet float64, det func([]float64, int) (float64, error)) error {
	if p == nil {
		return core.NewMissingInputError("point")
	}
	if len(p.SemanticField) > 0 && len(p.SemanticField) < n {
		return core.NewDimensionMismatchError(n, len(p.SemanticField))
	}
	if len(p.CoherenceField) > 0 && len(p.CoherenceField) < n {
		return core.NewDimensionMismatchError(n, len(p.CoherenceField))
	}
	if len(p.MetricTensor) == 0 {
		return nil
	}
	full := expandSymmetric(p.MetricTensor, n)
	d, err := det(full, n)
	if err != nil {
		return err
	}
	diff := d - p.MetricDeterminant
	if diff < 0 {
		diff = -diff
	}
	if diff > epsDet {
		return core.NewDimensionMismatchError(0, 0)
	}
	return nil
}

func expandSymmetric(flat []float64, n int) []float64 {
	full := make([]float64, n*n)
	idx := 0
	for i := 0; i < n; i++ {
		for j := i; j < n; j++ {
			v := flat[idx]
			idx++
			full[i*n+j] = v
			full[j*n+i] = v
		}
	}
	return full
}

// RecursiveCoupling is the pairwise relationship (p, q). Self-referential
// entries (p == q) are permitted and measure self-coupling.
type RecursiveCoupling struct {
	PointP core.ID
	PointQ core.ID

	CouplingTensor    []float64 // n^3 flat, may be empty
	CouplingMagnitude float64

	SelfCoupling  []float64
	HeteroCoupling []float64

	EvolutionRate  float64
	LatentChannels int
	ComputedAt     core.Timestamp
}

// IsSelf reports whether this coupling is a self-reference (p == q).
func (c RecursiveCoupling) IsSelf() bool { return c.PointP == c.PointQ }

// WisdomField is the per-point regulation record. At most one active record
// exists per point; updates supersede the prior one.
type WisdomField struct {
	PointID            core.ID
	WisdomValue        float64 // W, >= 0
	ForecastSensitivity float64
	GradientResponse    float64
	HumilityFactor      float64 // H, in [0,1]
	RecursionRegulation float64
	ComputedAt          core.Timestamp
}

// SignatureType enumerates the twelve orthogonal breakdown detectors.
type SignatureType string

const (
	AttractorDogmatism     SignatureType = "ATTRACTOR_DOGMATISM"
	BeliefCalcification    SignatureType = "BELIEF_CALCIFICATION"
	MetricCrystallization  SignatureType = "METRIC_CRYSTALLIZATION"
	AttractorSplintering   SignatureType = "ATTRACTOR_SPLINTERING"
	CoherenceDissolution   SignatureType = "COHERENCE_DISSOLUTION"
	ReferenceDecay         SignatureType = "REFERENCE_DECAY"
	DelusionalExpansion    SignatureType = "DELUSIONAL_EXPANSION"
	SemanticHypercoherence SignatureType = "SEMANTIC_HYPERCOHERENCE"
	RecurgentParasitism    SignatureType = "RECURGENT_PARASITISM"
	ParanoidInterpretation SignatureType = "PARANOID_INTERPRETATION"
	ObserverSolipsism      SignatureType = "OBSERVER_SOLIPSISM"
	SemanticNarcissism     SignatureType = "SEMANTIC_NARCISSISM"
)

// SignatureRecord is a detector's output: a single flagged structural
// breakdown with its severity and supporting evidence.
type SignatureRecord struct {
	PointID             core.ID
	SignatureType       SignatureType
	Severity            float64 // clipped to [0,1]
	GeometricSignature  []float64
	MathematicalEvidence string
	ComputedAt           core.Timestamp
}

// ClusterRecord is an hourly bucket of cross-source high-coupling pairs.
type ClusterRecord struct {
	ID                core.ClusterID
	BucketEpoch       int64
	ClusterSize       int
	AvgCoupling       float64
	AvgGeomCoherence  float64
	AvgMass           float64
	Confidence        float64
	MemberPoints      []core.ID
}

// EscalationRecord captures per-step dynamics along an ordered trajectory.
type EscalationRecord struct {
	PointID      core.ID
	Velocity     float64
	Acceleration float64
	Trajectory   float64
	Urgency      float64
	ComputedAt   core.Timestamp
}

// Clip bounds x to [0, 1], the severity contract every detector shares.
func Clip(x float64) float64 {
	if x < 0 {
		return 0
	}
	if x > 1 {
		return 1
	}
	return x
}
