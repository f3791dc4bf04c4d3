package stump

import (
	"time"

	"github.com/benbjohnson/clock"
	"go.uber.org/zap"
	"golang.org/x/exp/constraints"
)

// Coordinate is the numeric type a feature type projects examples onto.
// Haar features produce integers, other feature domains may produce reals.
type Coordinate interface {
	constraints.Integer | constraints.Float
}

// Projected is one example mapped into a feature configuration's space.
//
// Fields:
// - Value: The projected coordinate, used as the sort key
// - Index: The index of the example in the dataset
//
// Important notes:
//   - Buffers of Projected values are scratch space: they are allocated once
//     per training call and overwritten for every configuration
//   - Never keep a reference to a Projected slice across configurations
type Projected[T Coordinate] struct {
	Value T
	Index int
}

// Configuration is an opaque, feature-type specific parameter set. The learner
// never interprets it, it only stores the one that won.
//
// CurrentConfig implementations must return a value that stays valid after the
// iterator moves on (a copy, not a pointer into the iterator state).
type Configuration any

// Dataset is the weighted, multi-class view of the training set consumed by
// the threshold search.
//
// Methods:
// - NumExamples: Number of examples
// - NumClasses: Number of classes known at training time
// - Weight: AdaBoost.MH weight of the (example, class) pair
// - IsPositive: Whether the example belongs to the class (label +1, else -1)
//
// Thread safety:
//   - The dataset is read-only for the duration of a Train call and may be
//     read concurrently by parallel workers
type Dataset interface {
	NumExamples() int
	NumClasses() int
	Weight(idx, class int) float64
	IsPositive(idx, class int) bool
}

// AccessMode controls how a feature type walks its configuration space.
type AccessMode int

const (
	// Exhaustive visits every configuration in a fixed order.
	Exhaustive AccessMode = iota

	// RandomSampling visits configurations in a shuffled order, reshuffled on
	// every ResetConfigIterator.
	RandomSampling
)

// String implements fmt.Stringer.
func (m AccessMode) String() string {
	switch m {
	case Exhaustive:
		return "exhaustive"
	case RandomSampling:
		return "random"
	default:
		return "unknown"
	}
}

// FeatureType is a family of parameterized filters. It enumerates (or
// samples) configurations and projects the dataset for a given one.
//
// Type Parameters:
//   - T: The coordinate type produced by Project and Value
//   - D: The dataset type the feature knows how to read raw data from
//
// Iterator protocol:
//
//	ft.SetAccessMode(stump.RandomSampling)
//	ft.ResetConfigIterator()
//	for ft.HasConfigs() {
//	    cfg := ft.CurrentConfig()
//	    ft.Project(ds, cfg, buf)
//	    // ... evaluate ...
//	    ft.MoveToNextConfig()
//	}
//
// Thread safety:
//   - The iterator is mutated in place. A FeatureType must not be shared
//     between goroutines evaluating it at the same time
//   - Project and Value must only read the dataset
type FeatureType[T Coordinate, D Dataset] interface {
	// Name is the short name used for logging and for dispatch on load.
	Name() string

	SetAccessMode(mode AccessMode)
	ResetConfigIterator()
	HasConfigs() bool
	CurrentConfig() Configuration
	MoveToNextConfig()

	// Project fills dst (len == ds.NumExamples()) with the coordinate of
	// every example under cfg. The order of dst is unspecified.
	Project(ds D, cfg Configuration, dst []Projected[T])

	// Value projects a single example under cfg.
	Value(ds D, idx int, cfg Configuration) T

	// MarshalConfig and UnmarshalConfig define the persisted payload of a
	// configuration.
	MarshalConfig(cfg Configuration) (string, error)
	UnmarshalConfig(payload string) (Configuration, error)
}

// DatasetValidator is implemented by feature types that can only read
// datasets of a given shape, such as images of a fixed size. Train calls
// ValidateDataset on every feature type of the catalog before searching.
type DatasetValidator[D Dataset] interface {
	ValidateDataset(ds D) error
}

// Catalog is the ordered set of feature types searched by Train.
type Catalog[T Coordinate, D Dataset] []FeatureType[T, D]

// Lookup returns the feature type registered under name.
func (c Catalog[T, D]) Lookup(name string) (FeatureType[T, D], bool) {
	for _, ft := range c {
		if ft.Name() == name {
			return ft, true
		}
	}

	return nil, false
}

// Rates holds the weighted mass of one class split by outcome under a stump.
//
// Fields:
// - Plus: Mass classified correctly (mu+)
// - Minus: Mass classified incorrectly (mu-)
// - Zero: Mass on which the stump abstains (mu0)
//
// Rates are recomputed for every configuration and never persisted.
type Rates struct {
	Plus  float64
	Minus float64
	Zero  float64
}

// SamplingKind selects how much of a feature type's space is explored.
type SamplingKind int

const (
	// NoSampling explores every configuration.
	NoSampling SamplingKind = iota

	// CountBound stops after a fixed number of configurations per type.
	CountBound

	// TimeBound stops once a fixed wall-clock budget per type is spent.
	TimeBound
)

// String implements fmt.Stringer.
func (k SamplingKind) String() string {
	switch k {
	case NoSampling:
		return "none"
	case CountBound:
		return "num"
	case TimeBound:
		return "time"
	default:
		return "unknown"
	}
}

// SamplingPolicy is the termination rule applied to every feature type. Each
// feature type gets a fresh budget.
//
// Fields:
// - Kind: NoSampling, CountBound or TimeBound
// - Count: Configurations evaluated per feature type (CountBound only)
// - Duration: Time spent per feature type (TimeBound only)
//
// Usage:
//
//	// Evaluate 500 random configurations of every feature type
//	policy := SamplingPolicy{Kind: CountBound, Count: 500}
//
//	// Spend two seconds on every feature type
//	policy := SamplingPolicy{Kind: TimeBound, Duration: 2 * time.Second}
//
// Important notes:
//   - Both bounds are checked after each configuration, so one configuration
//     is always evaluated and a TimeBound may overrun by one evaluation
type SamplingPolicy struct {
	Kind     SamplingKind
	Count    int
	Duration time.Duration
}

// VoteMode selects how per-class votes are derived from the class rates.
type VoteMode int

const (
	// DiscreteVotes stores votes in {-1, +1}; the confidence of the stump is
	// carried by alpha alone.
	DiscreteVotes VoteMode = iota

	// ConfidenceRatedVotes stores signed half log-odds per class; alpha is 1.
	ConfidenceRatedVotes
)

// String implements fmt.Stringer.
func (m VoteMode) String() string {
	switch m {
	case DiscreteVotes:
		return "discrete"
	case ConfidenceRatedVotes:
		return "real"
	default:
		return "unknown"
	}
}

// ProgressUpdate reports the end of one feature type's sweep.
type ProgressUpdate struct {
	// FeatureType is the name of the feature type that just finished
	FeatureType string

	// Processed is the number of configurations evaluated for this type
	Processed int

	// Elapsed is the time spent on this type
	Elapsed time.Duration

	// TypeBestEnergy is the lowest energy found within this type
	TypeBestEnergy float64

	// CurrentBestEnergy is the lowest energy found so far across types. With
	// parallel workers it only covers the types finished so far.
	CurrentBestEnergy float64
}

// Options holds everything that drives one learner.
//
// Fields explanation:
// - Sampling: Termination rule per feature type
// - Theta: Edge offset of the energy, in [0, 1) (0 for plain AdaBoost.MH)
// - Votes: Discrete or confidence-rated votes
// - Workers: Feature types evaluated in parallel (1 = sequential)
// - Clock: Time source for TimeBound and progress reports
// - Logger: Structured logger; defaults to a no-op logger
// - ProgressChan: Receives one update per feature type if not nil
//
// Usage example:
//
//	opts := DefaultOptions()
//	opts.Sampling = SamplingPolicy{Kind: CountBound, Count: 1000}
//	opts.Workers = runtime.NumCPU()
//	learner, err := NewLearner[int, *haar.Dataset](opts)
//
// Note:
// - Create separate options (and channels) for concurrent learners.
type Options struct {
	Sampling SamplingPolicy

	Theta float64

	Votes VoteMode

	Workers int

	Clock clock.Clock

	Logger *zap.Logger

	// ProgressChan is used to send progress updates during training.
	// If nil, no updates will be sent. Sends never block.
	ProgressChan chan<- ProgressUpdate
}
