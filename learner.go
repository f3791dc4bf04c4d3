package stump

import (
	"cmp"
	"context"
	"math"
	"slices"
	"sync"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

//////
// Exported functionalities.
//////

// DefaultOptions returns the default learner options: exhaustive search,
// discrete votes, no edge offset, one worker, wall clock, no logging.
func DefaultOptions() Options {
	return Options{
		Sampling:     SamplingPolicy{Kind: NoSampling},
		Theta:        0,
		Votes:        DiscreteVotes,
		Workers:      1,
		Clock:        clock.New(),
		Logger:       zap.NewNop(),
		ProgressChan: nil, // Default to no progress updates.
	}
}

// Learner selects the best multi-class stump over a catalog of feature types.
//
// Type Parameters:
//   - T: The coordinate type of the feature types
//   - D: The dataset type the feature types read
//
// A Learner holds no state between Train calls and can be reused.
type Learner[T Coordinate, D Dataset] struct {
	opts Options
}

// NewLearner validates opts and returns a learner. Nil Clock and Logger are
// replaced by the defaults.
func NewLearner[T Coordinate, D Dataset](opts Options) (*Learner[T, D], error) {
	switch opts.Sampling.Kind {
	case NoSampling:
	case CountBound:
		if opts.Sampling.Count < 1 {
			return nil, errors.Wrapf(ErrInvalidOptions, "count bound must be positive, got %d", opts.Sampling.Count)
		}
	case TimeBound:
		if opts.Sampling.Duration <= 0 {
			return nil, errors.Wrapf(ErrInvalidOptions, "time bound must be positive, got %s", opts.Sampling.Duration)
		}
	default:
		return nil, errors.Wrapf(ErrInvalidOptions, "unknown sampling kind %d", opts.Sampling.Kind)
	}

	if opts.Votes != DiscreteVotes && opts.Votes != ConfidenceRatedVotes {
		return nil, errors.Wrapf(ErrInvalidOptions, "unknown vote mode %d", opts.Votes)
	}

	// NaN fails both comparisons.
	if !(opts.Theta >= 0 && opts.Theta < 1) {
		return nil, errors.Wrapf(ErrInvalidOptions, "theta must be in [0, 1), got %v", opts.Theta)
	}

	if opts.Workers < 1 {
		opts.Workers = 1
	}

	if opts.Clock == nil {
		opts.Clock = clock.New()
	}

	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	return &Learner[T, D]{opts: opts}, nil
}

// Options returns a copy of the learner options.
func (l *Learner[T, D]) Options() Options { return l.opts }

// Train searches every feature type of catalog under the sampling policy and
// returns the configuration with the globally lowest energy.
//
// Parameters:
//   - ctx: Checked once per configuration; cancellation aborts training
//   - ds: Weighted dataset, read-only for the duration of the call
//   - catalog: Feature types to search; their iterators are advanced and not
//     restored
//
// Returns:
//   - The selected hypothesis
//   - ErrNoFeatureFound if no configuration was evaluated at all
//   - The error of the first DatasetValidator that rejects ds
//
// How it works:
//  1. The smoothing value is fixed from the dataset size
//  2. For every feature type (in parallel when Workers > 1):
//     - set the access mode from the sampling policy and reset the iterator
//     - project, sort, find thresholds, compute energy for each configuration
//     - keep the strictly lowest energy
//     - stop on exhaustion or when the policy bound is met
//  3. Reduce the per-type winners with strict `<`, earlier types winning ties
//
// Important notes:
//   - The result does not depend on Workers
//   - The same FeatureType value must not appear twice in catalog when
//     Workers > 1.
func (l *Learner[T, D]) Train(ctx context.Context, ds D, catalog Catalog[T, D]) (*Hypothesis[T, D], error) {
	for _, ft := range catalog {
		if v, ok := ft.(DatasetValidator[D]); ok {
			if err := v.ValidateDataset(ds); err != nil {
				return nil, errors.Wrapf(err, "feature type %q", ft.Name())
			}
		}
	}

	smoothing := SmoothingFor(ds.NumExamples())

	winners := make([]*candidate, len(catalog))

	// bestEnergy tracks the best energy across finished types, for progress.
	bestEnergy := math.MaxFloat64

	// bestMu protects access to bestEnergy.
	var bestMu sync.Mutex

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(l.opts.Workers)

	for i, ft := range catalog {
		i, ft := i, ft // per-iteration copy (pre-Go 1.22 loop semantics)
		g.Go(func() error {
			start := l.opts.Clock.Now()

			winner, err := l.sweep(gctx, ds, ft, smoothing)
			if err != nil {
				return err
			}

			winners[i] = winner

			elapsed := l.opts.Clock.Since(start)

			bestMu.Lock()
			typeBest := math.MaxFloat64
			processed := 0
			if winner != nil {
				typeBest = winner.energy
				processed = winner.processed
				if winner.energy < bestEnergy {
					bestEnergy = winner.energy
				}
			}
			current := bestEnergy
			bestMu.Unlock()

			l.opts.Logger.Debug("feature type done",
				zap.String("type", ft.Name()),
				zap.Int("processed", processed),
				zap.Duration("elapsed", elapsed),
			)

			l.sendProgress(ProgressUpdate{
				FeatureType:       ft.Name(),
				Processed:         processed,
				Elapsed:           elapsed,
				TypeBestEnergy:    typeBest,
				CurrentBestEnergy: current,
			})

			return nil
		})
	}

	if err := g.Wait(); err != nil {
		return nil, err
	}

	bestIdx := -1
	for i, w := range winners {
		if w == nil {
			continue
		}

		if bestIdx < 0 || w.energy < winners[bestIdx].energy {
			bestIdx = i
		}
	}

	if bestIdx < 0 {
		return nil, errors.WithStack(ErrNoFeatureFound)
	}

	best := winners[bestIdx]
	feature := catalog[bestIdx]

	l.opts.Logger.Info("selected feature type",
		zap.String("type", feature.Name()),
		zap.Float64("energy", best.energy),
		zap.Float64("alpha", best.alpha),
	)

	return newHypothesis(feature, best.config, best.thresholds, best.votes, best.alpha, best.energy), nil
}

//////
// Internals.
//////

// candidate is the best configuration found within one feature type.
type candidate struct {
	config     Configuration
	thresholds []float64
	votes      []float64
	alpha      float64
	energy     float64
	processed  int
}

// sweep evaluates the configurations of one feature type under the sampling
// policy. It returns nil when the type yields no configuration.
func (l *Learner[T, D]) sweep(ctx context.Context, ds D, ft FeatureType[T, D], smoothing float64) (*candidate, error) {
	numClasses := ds.NumClasses()

	// Scratch buffers, owned by this sweep only.
	projected := make([]Projected[T], ds.NumExamples())
	scratch := NewScratch(numClasses)
	thresholds := make([]float64, numClasses)
	rates := make([]Rates, numClasses)
	votes := make([]float64, numClasses)

	mode := Exhaustive
	if l.opts.Sampling.Kind != NoSampling {
		mode = RandomSampling
	}

	ft.SetAccessMode(mode)

	// For random sampling this reshuffles the configurations.
	ft.ResetConfigIterator()

	l.opts.Logger.Debug("learning feature type",
		zap.String("type", ft.Name()),
		zap.Stringer("access", mode),
	)

	start := l.opts.Clock.Now()

	var best *candidate

	processed := 0

	for ft.HasConfigs() {
		if err := ctx.Err(); err != nil {
			return nil, errors.Wrapf(err, "training feature type %q", ft.Name())
		}

		cfg := ft.CurrentConfig()

		ft.Project(ds, cfg, projected)
		slices.SortFunc(projected, func(a, b Projected[T]) int {
			return cmp.Compare(a.Value, b.Value)
		})

		FindThresholds(projected, ds, smoothing, l.opts.Votes, scratch, thresholds, rates, votes)
		energy, alpha := Energy(rates, votes, smoothing, l.opts.Theta, l.opts.Votes)
		processed++

		// The first configuration always becomes the incumbent.
		if best == nil {
			best = &candidate{
				thresholds: make([]float64, numClasses),
				votes:      make([]float64, numClasses),
			}
		}

		if processed == 1 || energy < best.energy {
			best.config = cfg
			best.energy = energy
			best.alpha = alpha
			copy(best.thresholds, thresholds)
			copy(best.votes, votes)
		}

		ft.MoveToNextConfig()

		if l.exhausted(processed, l.opts.Clock.Since(start)) {
			break
		}
	}

	if best != nil {
		best.processed = processed
	}

	return best, nil
}

// exhausted reports whether the sampling policy stops the current type.
func (l *Learner[T, D]) exhausted(processed int, elapsed time.Duration) bool {
	switch l.opts.Sampling.Kind {
	case CountBound:
		return processed >= l.opts.Sampling.Count
	case TimeBound:
		return elapsed >= l.opts.Sampling.Duration
	default:
		return false
	}
}

// sendProgress delivers update without blocking.
func (l *Learner[T, D]) sendProgress(update ProgressUpdate) {
	if l.opts.ProgressChan == nil {
		return
	}

	select {
	case l.opts.ProgressChan <- update:
	default:
		// Skip update if channel is full.
	}
}
