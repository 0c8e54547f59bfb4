package analytics

import (
	"context"

	"github.com/montanaflynn/stats"
	"gonum.org/v1/gonum/stat/distuv"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/log"
	"github.com/someobserver/godel/ports"
)

// EscalationTrajectory walks an ordered list of point ids and emits one
// record per non-initial point describing the velocity, acceleration,
// trajectory, and urgency of the step from its predecessor (spec §4.6
// "Escalation along a trajectory").
func EscalationTrajectory(ctx context.Context, store ports.DataStore, pointIDs []core.ID) ([]manifold.EscalationRecord, error) {
	logger := log.NewDefaultLogger()

	points := make([]*manifold.ManifoldPoint, 0, len(pointIDs))
	for _, id := range pointIDs {
		select {
		case <-ctx.Done():
			return nil, ctx.Err()
		default:
		}
		p, err := store.GetPoint(ctx, id)
		if err != nil {
			return nil, err
		}
		if p == nil {
			continue
		}
		points = append(points, p)
	}
	if len(points) < 2 {
		return nil, nil
	}

	accelerations := make([]float64, 0, len(points)-1)
	out := make([]manifold.EscalationRecord, 0, len(points)-1)

	for i := 1; i < len(points); i++ {
		prev, cur := points[i-1], points[i]

		dt := cur.CreatedAt.Sub(prev.CreatedAt).Seconds()
		if dt < 1 {
			dt = 1
		}
		n := minLen(len(prev.CoherenceField), len(cur.CoherenceField))
		var velocity float64
		if n > 0 {
			velocity = distance(prev.CoherenceField[:n], cur.CoherenceField[:n]) / dt
		}
		acceleration := cur.ScalarCurvature * velocity
		accelerations = append(accelerations, acceleration)

		var trajectory float64
		if acceleration > 0.2 && cur.SemanticMass > 0.5 {
			trajectory = acceleration * cur.SemanticMass * 2
		} else {
			trajectory = acceleration * 0.5
		}

		urgency := 0.3
		if acceleration > 0.3 {
			wisdom, err := store.LatestWisdom(ctx, cur.ID)
			if err != nil {
				return nil, err
			}
			if wisdom != nil && wisdom.HumilityFactor < 0.3 {
				urgency = manifold.Clip(acceleration * cur.SemanticMass * 1.5)
			}
		}

		out = append(out, manifold.EscalationRecord{
			PointID:      cur.ID,
			Velocity:     velocity,
			Acceleration: acceleration,
			Trajectory:   trajectory,
			Urgency:      urgency,
			ComputedAt:   core.Now(),
		})
	}

	flagOutlierSteps(accelerations, out, logger)
	return out, nil
}

// flagOutlierSteps fits a Normal distribution to the trajectory's observed
// accelerations and logs any step beyond its 95th percentile — a
// diagnostic signal layered on top of the literal per-step formulas above,
// not a substitute for them. Mean/stdDev fitting follows the same
// montanaflynn/stats + gonum/distuv combination as the teacher's
// internal/profiling/distribution.go.
func flagOutlierSteps(accelerations []float64, records []manifold.EscalationRecord, logger *log.Logger) {
	if len(accelerations) < 3 {
		return
	}
	mu, err := stats.Mean(accelerations)
	if err != nil {
		return
	}
	sigma, err := stats.StandardDeviation(accelerations)
	if err != nil || sigma <= 0 {
		return
	}
	dist := distuv.Normal{Mu: mu, Sigma: sigma}
	for i, a := range accelerations {
		percentile := dist.CDF(a)
		if percentile > 0.95 {
			logger.Warn("escalation outlier: point=%s acceleration=%.4f percentile=%.4f", records[i].PointID, a, percentile)
		}
	}
}
