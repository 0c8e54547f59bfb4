// Package analytics computes trajectory and coordination statistics that
// span many points: coordination clusters over a time window, and
// escalation dynamics along an ordered trajectory (spec §4.6).
package analytics

import (
	"context"
	"math"
	"sort"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/geometry"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/ports"
)

// pairObservation is an intermediate per-coupling measurement, bucketed by
// hour before aggregation.
type pairObservation struct {
	bucketEpoch   int64
	coupling      float64
	geomCoherence float64
	pairMass      float64
}

// CoordinationClusters buckets cross-source, high-coupling pairs into
// hourly windows and reports the buckets whose size and confidence clear
// the given thresholds (spec §4.6 "Coordination clusters").
func CoordinationClusters(ctx context.Context, store ports.DataStore, window float64, threshold float64, minSize int, confidenceMin float64) ([]manifold.ClusterRecord, error) {
	since := core.NewTimestamp(timeNowMinusHours(window))
	couplings, err := store.ListCouplings(ctx, "", since, ports.Ascending, 0)
	if err != nil {
		return nil, err
	}

	buckets := map[int64][]pairObservation{}
	pointCache := map[core.ID]*manifold.ManifoldPoint{}
	getPoint := func(id core.ID) (*manifold.ManifoldPoint, error) {
		if p, ok := pointCache[id]; ok {
			return p, nil
		}
		p, err := store.GetPoint(ctx, id)
		if err != nil {
			return nil, err
		}
		pointCache[id] = p
		return p, nil
	}

	memberBuckets := map[int64]map[core.ID]struct{}{}

	for _, c := range couplings {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		if c.IsSelf() || c.CouplingMagnitude < threshold {
			continue
		}

		p, err := getPoint(c.PointP)
		if err != nil {
			return nil, err
		}
		q, err := getPoint(c.PointQ)
		if err != nil {
			return nil, err
		}
		if p == nil || q == nil || p.SourceFingerprint == q.SourceFingerprint {
			continue
		}

		epoch := c.ComputedAt.BucketEpoch()
		geomCoherence := geometricCoherence(p, q)
		obs := pairObservation{
			bucketEpoch:   epoch,
			coupling:      c.CouplingMagnitude,
			geomCoherence: geomCoherence,
			pairMass:      (p.SemanticMass + q.SemanticMass) / 2,
		}
		buckets[epoch] = append(buckets[epoch], obs)

		if memberBuckets[epoch] == nil {
			memberBuckets[epoch] = map[core.ID]struct{}{}
		}
		memberBuckets[epoch][p.ID] = struct{}{}
		memberBuckets[epoch][q.ID] = struct{}{}
	}

	epochs := make([]int64, 0, len(buckets))
	for e := range buckets {
		epochs = append(epochs, e)
	}
	sort.Slice(epochs, func(i, j int) bool { return epochs[i] < epochs[j] })

	out := make([]manifold.ClusterRecord, 0, len(epochs))
	for _, e := range epochs {
		obs := buckets[e]
		size := len(obs)
		if size < minSize {
			continue
		}
		var sumCoupling, sumCoherence, sumMass float64
		for _, o := range obs {
			sumCoupling += o.coupling
			sumCoherence += o.geomCoherence
			sumMass += o.pairMass
		}
		avgCoupling := sumCoupling / float64(size)
		avgCoherence := sumCoherence / float64(size)
		avgMass := sumMass / float64(size)

		confidence := manifold.Clip(avgCoupling * avgCoherence * (float64(size) / 10) * (avgMass / 100))
		if confidence <= confidenceMin {
			continue
		}

		members := make([]core.ID, 0, len(memberBuckets[e]))
		for id := range memberBuckets[e] {
			members = append(members, id)
		}
		sort.Slice(members, func(i, j int) bool { return members[i] < members[j] })

		out = append(out, manifold.ClusterRecord{
			ID:               core.NewClusterID(e),
			BucketEpoch:      e,
			ClusterSize:      size,
			AvgCoupling:      avgCoupling,
			AvgGeomCoherence: avgCoherence,
			AvgMass:          avgMass,
			Confidence:       confidence,
			MemberPoints:     members,
		})
	}

	sort.Slice(out, func(i, j int) bool {
		if out[i].Confidence != out[j].Confidence {
			return out[i].Confidence > out[j].Confidence
		}
		return out[i].AvgMass > out[j].AvgMass
	})

	return out, nil
}

// geometricCoherence measures how aligned two coherence fields are,
// normalized by the local volume element when both metrics are available.
func geometricCoherence(p, q *manifold.ManifoldPoint) float64 {
	n := minLen(len(p.CoherenceField), len(q.CoherenceField))
	if n == 0 {
		return 0
	}
	d := distance(p.CoherenceField[:n], q.CoherenceField[:n])

	if p.MetricDeterminant > 0 && q.MetricDeterminant > 0 {
		denom := math.Sqrt(p.MetricDeterminant * q.MetricDeterminant)
		return 1 - d/denom
	}
	return 1 - d
}

func distance(a, b []float64) float64 {
	n := minLen(len(a), len(b))
	diff := make([]float64, n)
	for i := 0; i < n; i++ {
		diff[i] = a[i] - b[i]
	}
	return geometry.VectorNorm(diff, n)
}

func minLen(a, b int) int {
	if a < b {
		return a
	}
	return b
}
