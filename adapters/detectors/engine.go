package detectors

import (
	"context"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/someobserver/godel/domain/core"
	"github.com/someobserver/godel/domain/manifold"
	"github.com/someobserver/godel/internal/config"
	"github.com/someobserver/godel/ports"
)

type detectorFunc func(ctx context.Context, store ports.DataStore, pointID core.ID, cfg *config.Config) (*manifold.SignatureRecord, error)

var rigidityDetectors = []detectorFunc{
	DetectAttractorDogmatism,
	DetectBeliefCalcification,
	DetectMetricCrystallization,
}

var fragmentationDetectors = []detectorFunc{
	DetectAttractorSplintering,
	DetectCoherenceDissolution,
	DetectReferenceDecay,
}

var inflationDetectors = []detectorFunc{
	DetectDelusionalExpansion,
	DetectSemanticHypercoherence,
	DetectRecurgentParasitism,
}

var observerDetectors = []detectorFunc{
	DetectParanoidInterpretation,
	DetectObserverSolipsism,
	DetectSemanticNarcissism,
}

// Engine runs the twelve signature detectors concurrently, bounded by a
// weighted semaphore, per spec §5's "independent task per public call"
// scheduling model.
type Engine struct {
	store ports.DataStore
	cfg   *config.Config
	sem   *semaphore.Weighted
}

// NewEngine builds an Engine over store and cfg, bounding concurrent
// detector calls at maxConcurrency.
func NewEngine(store ports.DataStore, cfg *config.Config, maxConcurrency int64) *Engine {
	if maxConcurrency <= 0 {
		maxConcurrency = 4
	}
	return &Engine{
		store: store,
		cfg:   cfg,
		sem:   semaphore.NewWeighted(maxConcurrency),
	}
}

// DetectRigidity runs the three rigidity detectors concurrently.
func (e *Engine) DetectRigidity(ctx context.Context, pointID core.ID) ([]*manifold.SignatureRecord, error) {
	return e.run(ctx, pointID, rigidityDetectors)
}

// DetectFragmentation runs the three fragmentation detectors concurrently.
func (e *Engine) DetectFragmentation(ctx context.Context, pointID core.ID) ([]*manifold.SignatureRecord, error) {
	return e.run(ctx, pointID, fragmentationDetectors)
}

// DetectInflation runs the three inflation detectors concurrently.
func (e *Engine) DetectInflation(ctx context.Context, pointID core.ID) ([]*manifold.SignatureRecord, error) {
	return e.run(ctx, pointID, inflationDetectors)
}

// DetectObserverCoupling runs the three observer-coupling detectors concurrently.
func (e *Engine) DetectObserverCoupling(ctx context.Context, pointID core.ID) ([]*manifold.SignatureRecord, error) {
	return e.run(ctx, pointID, observerDetectors)
}

// DetectAll runs all twelve detectors concurrently and concatenates the
// emitted records (spec §4.5 "combined detector").
func (e *Engine) DetectAll(ctx context.Context, pointID core.ID) ([]*manifold.SignatureRecord, error) {
	all := make([]detectorFunc, 0, 12)
	all = append(all, rigidityDetectors...)
	all = append(all, fragmentationDetectors...)
	all = append(all, inflationDetectors...)
	all = append(all, observerDetectors...)
	return e.run(ctx, pointID, all)
}

// run executes fns concurrently against pointID, bounded by e.sem, and
// returns the records emitted by whichever detectors fired. A single
// detector's hard failure (store error, not a "no record" result) cancels
// the remaining in-flight detectors and is returned to the caller, per
// spec §5's deadline/cancellation model. A record of every point skipped
// due to deadline exceedance is deliberately not swallowed: it surfaces as
// ctx.Err() from the group.
func (e *Engine) run(ctx context.Context, pointID core.ID, fns []detectorFunc) ([]*manifold.SignatureRecord, error) {
	results := make([]*manifold.SignatureRecord, len(fns))

	g, gctx := errgroup.WithContext(ctx)
	for i, fn := range fns {
		i, fn := i, fn
		g.Go(func() error {
			if err := e.sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer e.sem.Release(1)

			rec, err := fn(gctx, e.store, pointID, e.cfg)
			if err != nil {
				if core.IsMissingInput(err) {
					return nil
				}
				return err
			}
			results[i] = rec
			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	out := make([]*manifold.SignatureRecord, 0, len(results))
	for _, r := range results {
		if r != nil {
			out = append(out, r)
		}
	}
	return out, nil
}
