package stump

import (
	"context"
	"math"
	"testing"
	"time"

	"github.com/benbjohnson/clock"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

// 32 examples and 3 classes keep every weight dyadic, so sums do not depend
// on the order of equal coordinates and energies can be compared exactly.
func testDataset() *labeledDataset {
	labels := make([]int, 32)
	for i := range labels {
		labels[i] = i % 3
	}

	return newLabeledDataset(labels, 3)
}

func testFeatures() []*tableFeature {
	return []*tableFeature{
		randomTableFeature("a", 1, 20, 32, 10),
		randomTableFeature("b", 2, 25, 32, 50),
		randomTableFeature("c", 3, 15, 32, 4),
	}
}

func newTestLearner(t *testing.T, opts Options) *Learner[int, *labeledDataset] {
	t.Helper()

	learner, err := NewLearner[int, *labeledDataset](opts)
	require.NoError(t, err)

	return learner
}

func TestTrainDeterministicExhaustive(t *testing.T) {
	ds := testDataset()
	learner := newTestLearner(t, DefaultOptions())

	first, err := learner.Train(context.Background(), ds, catalogOf(testFeatures()...))
	require.NoError(t, err)

	second, err := learner.Train(context.Background(), ds, catalogOf(testFeatures()...))
	require.NoError(t, err)

	assert.Equal(t, first.Energy(), second.Energy())
	assert.Equal(t, first.Alpha(), second.Alpha())
	assert.Equal(t, first.Thresholds(), second.Thresholds())
	assert.Equal(t, first.Votes(), second.Votes())
	assert.Equal(t, first.Feature().Name(), second.Feature().Name())
	assert.Equal(t, first.Config(), second.Config())
}

func TestTrainGlobalOptimality(t *testing.T) {
	for _, mode := range []VoteMode{DiscreteVotes, ConfidenceRatedVotes} {
		t.Run(mode.String(), func(t *testing.T) {
			ds := testDataset()
			features := testFeatures()

			opts := DefaultOptions()
			opts.Votes = mode

			h, err := newTestLearner(t, opts).Train(context.Background(), ds, catalogOf(features...))
			require.NoError(t, err)

			assert.Equal(t, bruteForceEnergy(ds, mode, testFeatures()...), h.Energy())
			assert.Len(t, h.Votes(), ds.NumClasses())
			assert.Len(t, h.Thresholds(), ds.NumClasses())
		})
	}
}

func TestTrainSampledNeverBeatsExhaustive(t *testing.T) {
	ds := testDataset()

	opts := DefaultOptions()
	opts.Sampling = SamplingPolicy{Kind: CountBound, Count: 5}

	h, err := newTestLearner(t, opts).Train(context.Background(), ds, catalogOf(testFeatures()...))
	require.NoError(t, err)

	assert.GreaterOrEqual(t, h.Energy(), bruteForceEnergy(ds, DiscreteVotes, testFeatures()...))
}

func TestTrainCountBound(t *testing.T) {
	tests := []struct {
		name  string
		count int
		want  []int
	}{
		{"below every type", 5, []int{5, 5, 5}},
		{"above the smallest type", 18, []int{18, 18, 15}},
		{"above every type", 100, []int{20, 25, 15}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			features := testFeatures()

			opts := DefaultOptions()
			opts.Sampling = SamplingPolicy{Kind: CountBound, Count: tt.count}

			_, err := newTestLearner(t, opts).Train(context.Background(), testDataset(), catalogOf(features...))
			require.NoError(t, err)

			for i, f := range features {
				assert.Equal(t, tt.want[i], f.projections, f.name)
				assert.Equal(t, RandomSampling, f.mode, f.name)
			}
		})
	}
}

func TestTrainTimeBound(t *testing.T) {
	mock := clock.NewMock()
	step := 300 * time.Millisecond

	features := testFeatures()
	for _, f := range features {
		f.onProject = func() { mock.Add(step) }
	}

	progress := make(chan ProgressUpdate, len(features))

	opts := DefaultOptions()
	opts.Clock = mock
	opts.Sampling = SamplingPolicy{Kind: TimeBound, Duration: time.Second}
	opts.ProgressChan = progress

	_, err := newTestLearner(t, opts).Train(context.Background(), testDataset(), catalogOf(features...))
	require.NoError(t, err)
	close(progress)

	// 0.3s, 0.6s, 0.9s, 1.2s: the fourth evaluation crosses the bound.
	for _, f := range features {
		assert.Equal(t, 4, f.projections, f.name)
	}

	for update := range progress {
		assert.Equal(t, 4, update.Processed, update.FeatureType)
		assert.LessOrEqual(t, update.Elapsed, opts.Sampling.Duration+step, update.FeatureType)
	}
}

func TestTrainEmptyCatalog(t *testing.T) {
	learner := newTestLearner(t, DefaultOptions())

	t.Run("no feature types", func(t *testing.T) {
		h, err := learner.Train(context.Background(), testDataset(), nil)
		assert.ErrorIs(t, err, ErrNoFeatureFound)
		assert.Nil(t, h)
	})

	t.Run("no configurations", func(t *testing.T) {
		catalog := catalogOf(newTableFeature("empty", 1), newTableFeature("void", 2))

		h, err := learner.Train(context.Background(), testDataset(), catalog)
		assert.ErrorIs(t, err, ErrNoFeatureFound)
		assert.Nil(t, h)
	})
}

func TestTrainSkipsEmptyFeatureTypes(t *testing.T) {
	features := append([]*tableFeature{newTableFeature("empty", 9)}, testFeatures()...)

	h, err := newTestLearner(t, DefaultOptions()).Train(context.Background(), testDataset(), catalogOf(features...))
	require.NoError(t, err)
	assert.NotEqual(t, "empty", h.Feature().Name())
}

// Examples with an even index are class 0, odd ones class 1. The first
// configuration also separates the classes (1, 2 | 3, 5) with the same energy
// as the third, so with strict improvement it is kept.
func TestTrainScenario(t *testing.T) {
	ds := newLabeledDataset([]int{0, 1, 0, 1}, 2)

	first := []Projected[int]{{1, 0}, {3, 1}, {2, 2}, {5, 3}}
	second := []Projected[int]{{2, 0}, {2, 1}, {9, 2}, {1, 3}}
	third := []Projected[int]{{0, 0}, {1, 2}, {2, 1}, {3, 3}}

	learner := newTestLearner(t, DefaultOptions())

	t.Run("as given", func(t *testing.T) {
		h, err := learner.Train(context.Background(), ds, catalogOf(newTableFeature("f", 1, first, second, third)))
		require.NoError(t, err)

		thirdOnly, err := learner.Train(context.Background(), ds, catalogOf(newTableFeature("f", 1, third)))
		require.NoError(t, err)

		assert.Equal(t, thirdOnly.Energy(), h.Energy())
		assert.Equal(t, []float64{1.5, 1.5}, thirdOnly.Thresholds())
		assert.Equal(t, 0, h.Config())
	})

	t.Run("first configuration mixed", func(t *testing.T) {
		mixed := []Projected[int]{{1, 0}, {3, 2}, {2, 1}, {5, 3}}

		h, err := learner.Train(context.Background(), ds, catalogOf(newTableFeature("f", 1, mixed, second, third)))
		require.NoError(t, err)

		assert.Equal(t, 2, h.Config())
		assert.Equal(t, []float64{1.5, 1.5}, h.Thresholds())
		assert.Equal(t, []float64{-1, 1}, h.Votes())
		assert.Greater(t, h.Alpha(), 0.0)

		// Below the threshold votes for class 0, above for class 1.
		assert.Equal(t, 1.0, h.Classify(1, 0))
		assert.Equal(t, -1.0, h.Classify(1, 1))
		assert.Equal(t, -1.0, h.Classify(2, 0))
		assert.Equal(t, 1.0, h.Classify(2, 1))
	})
}

func TestTrainSmoothingKeepsResultsFinite(t *testing.T) {
	// Every class is perfectly separated: no weighted error on either side.
	ds := newLabeledDataset([]int{0, 0, 1, 1, 2, 2}, 3)
	perfect := []Projected[int]{{0, 0}, {0, 1}, {5, 2}, {5, 3}, {9, 4}, {9, 5}}

	for _, mode := range []VoteMode{DiscreteVotes, ConfidenceRatedVotes} {
		t.Run(mode.String(), func(t *testing.T) {
			opts := DefaultOptions()
			opts.Votes = mode

			h, err := newTestLearner(t, opts).Train(context.Background(), ds, catalogOf(newTableFeature("p", 1, perfect)))
			require.NoError(t, err)

			assert.False(t, math.IsInf(h.Alpha(), 0) || math.IsNaN(h.Alpha()))
			assert.False(t, math.IsInf(h.Energy(), 0) || math.IsNaN(h.Energy()))
			for _, v := range h.Votes() {
				assert.False(t, math.IsInf(v, 0) || math.IsNaN(v))
				assert.NotZero(t, v)
			}
		})
	}
}

func TestTrainEdgeOffsetPrefersSeparation(t *testing.T) {
	ds := newLabeledDataset([]int{0, 1, 0, 1}, 2)
	mixed := []Projected[int]{{0, 0}, {0, 1}, {1, 2}, {1, 3}}
	perfect := []Projected[int]{{0, 0}, {0, 2}, {7, 1}, {7, 3}}

	for _, theta := range []float64{0, 0.3, 0.5} {
		opts := DefaultOptions()
		opts.Theta = theta

		h, err := newTestLearner(t, opts).Train(context.Background(), ds, catalogOf(newTableFeature("f", 1, mixed, perfect)))
		require.NoError(t, err)

		assert.Equal(t, 1, h.Config(), "theta=%v", theta)
		assert.Greater(t, h.Alpha(), 0.0, "theta=%v", theta)
	}
}

func TestTrainParallelMatchesSequential(t *testing.T) {
	ds := testDataset()

	sequential, err := newTestLearner(t, DefaultOptions()).Train(context.Background(), ds, catalogOf(testFeatures()...))
	require.NoError(t, err)

	opts := DefaultOptions()
	opts.Workers = 4

	parallel, err := newTestLearner(t, opts).Train(context.Background(), ds, catalogOf(testFeatures()...))
	require.NoError(t, err)

	assert.Equal(t, sequential.Energy(), parallel.Energy())
	assert.Equal(t, sequential.Feature().Name(), parallel.Feature().Name())
	assert.Equal(t, sequential.Config(), parallel.Config())
	assert.Equal(t, sequential.Thresholds(), parallel.Thresholds())
}

func TestTrainParallelTiesFavorEarlierType(t *testing.T) {
	ds := newLabeledDataset([]int{0, 1, 0, 1}, 2)
	perfect := []Projected[int]{{0, 0}, {0, 2}, {7, 1}, {7, 3}}

	opts := DefaultOptions()
	opts.Workers = 3

	catalog := catalogOf(
		newTableFeature("x", 1, perfect),
		newTableFeature("y", 2, perfect),
		newTableFeature("z", 3, perfect),
	)

	h, err := newTestLearner(t, opts).Train(context.Background(), ds, catalog)
	require.NoError(t, err)
	assert.Equal(t, "x", h.Feature().Name())
}

// rejectingFeature refuses every dataset.
type rejectingFeature struct {
	*tableFeature
}

var errWrongShape = errors.New("wrong shape")

func (f rejectingFeature) ValidateDataset(*labeledDataset) error { return errWrongShape }

func TestTrainValidatesDataset(t *testing.T) {
	features := testFeatures()

	catalog := catalogOf(features...)
	catalog = append(catalog, rejectingFeature{newTableFeature("bad", 1, features[0].configs...)})

	h, err := newTestLearner(t, DefaultOptions()).Train(context.Background(), testDataset(), catalog)
	assert.ErrorIs(t, err, errWrongShape)
	assert.Contains(t, err.Error(), `"bad"`)
	assert.Nil(t, h)

	for _, f := range features {
		assert.Zero(t, f.projections, f.name)
	}
}

func TestTrainCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	h, err := newTestLearner(t, DefaultOptions()).Train(ctx, testDataset(), catalogOf(testFeatures()...))
	assert.ErrorIs(t, err, context.Canceled)
	assert.Nil(t, h)
}

func TestTrainProgressAndLogging(t *testing.T) {
	core, logs := observer.New(zapcore.DebugLevel)
	progress := make(chan ProgressUpdate, 3)

	opts := DefaultOptions()
	opts.Logger = zap.New(core)
	opts.ProgressChan = progress

	h, err := newTestLearner(t, opts).Train(context.Background(), testDataset(), catalogOf(testFeatures()...))
	require.NoError(t, err)
	close(progress)

	var names []string
	for update := range progress {
		names = append(names, update.FeatureType)
		assert.GreaterOrEqual(t, update.TypeBestEnergy, update.CurrentBestEnergy)
	}
	assert.Equal(t, []string{"a", "b", "c"}, names)

	assert.Equal(t, 3, logs.FilterMessage("learning feature type").Len())
	assert.Equal(t, 3, logs.FilterMessage("feature type done").Len())

	selected := logs.FilterMessage("selected feature type").All()
	require.Len(t, selected, 1)
	assert.Equal(t, h.Feature().Name(), selected[0].ContextMap()["type"])
}

func TestNewLearnerValidation(t *testing.T) {
	tests := []struct {
		name    string
		modify  func(*Options)
		wantErr bool
	}{
		{"defaults", func(*Options) {}, false},
		{"count bound", func(o *Options) { o.Sampling = SamplingPolicy{Kind: CountBound, Count: 3} }, false},
		{"zero count", func(o *Options) { o.Sampling = SamplingPolicy{Kind: CountBound} }, true},
		{"time bound", func(o *Options) { o.Sampling = SamplingPolicy{Kind: TimeBound, Duration: time.Second} }, false},
		{"zero duration", func(o *Options) { o.Sampling = SamplingPolicy{Kind: TimeBound} }, true},
		{"unknown kind", func(o *Options) { o.Sampling.Kind = SamplingKind(7) }, true},
		{"unknown votes", func(o *Options) { o.Votes = VoteMode(7) }, true},
		{"theta in range", func(o *Options) { o.Theta = 0.5 }, false},
		{"infinite theta", func(o *Options) { o.Theta = math.Inf(1) }, true},
		{"theta one", func(o *Options) { o.Theta = 1 }, true},
		{"theta above one", func(o *Options) { o.Theta = 5 }, true},
		{"negative theta", func(o *Options) { o.Theta = -0.1 }, true},
		{"NaN theta", func(o *Options) { o.Theta = math.NaN() }, true},
		{"nil clock and logger", func(o *Options) { o.Clock, o.Logger = nil, nil }, false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			opts := DefaultOptions()
			tt.modify(&opts)

			learner, err := NewLearner[int, *labeledDataset](opts)
			if tt.wantErr {
				assert.ErrorIs(t, err, ErrInvalidOptions)
				return
			}

			require.NoError(t, err)
			assert.NotNil(t, learner.Options().Clock)
			assert.NotNil(t, learner.Options().Logger)
			assert.GreaterOrEqual(t, learner.Options().Workers, 1)
		})
	}
}
