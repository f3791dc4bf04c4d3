package stump

import (
	"math"
	"strings"
	"time"

	"github.com/pkg/errors"
)

//////
// Helper functions.
//////

// ParseSamplingPolicy builds a policy from its textual kind and value.
//
// Parameters:
//   - kind: "none" (or empty), "num" or "time"
//   - value: Configurations per type for "num", seconds per type for "time";
//     ignored for "none"
//
// Usage example:
//
//	policy, err := ParseSamplingPolicy("num", 200)   // 200 configurations per type
//	policy, err := ParseSamplingPolicy("time", 1.5)  // 1.5 seconds per type
func ParseSamplingPolicy(kind string, value float64) (SamplingPolicy, error) {
	switch strings.ToLower(strings.TrimSpace(kind)) {
	case "", "none":
		return SamplingPolicy{Kind: NoSampling}, nil

	case "num":
		if math.IsNaN(value) || value < 1 || value >= math.MaxInt || value != math.Trunc(value) {
			return SamplingPolicy{}, errors.Wrapf(ErrInvalidOptions, "num sampling needs a positive integer, got %v", value)
		}

		return SamplingPolicy{Kind: CountBound, Count: int(value)}, nil

	case "time":
		if math.IsNaN(value) || value <= 0 || value >= float64(math.MaxInt64)/float64(time.Second) {
			return SamplingPolicy{}, errors.Wrapf(ErrInvalidOptions, "time sampling needs a positive duration, got %v", value)
		}

		return SamplingPolicy{
			Kind:     TimeBound,
			Duration: time.Duration(value * float64(time.Second)),
		}, nil

	default:
		return SamplingPolicy{}, errors.Wrapf(ErrInvalidOptions, "unknown sampling kind %q", kind)
	}
}

// ParseVoteMode maps "discrete" (or empty) and "real" to a VoteMode.
func ParseVoteMode(name string) (VoteMode, error) {
	switch strings.ToLower(strings.TrimSpace(name)) {
	case "", "discrete":
		return DiscreteVotes, nil
	case "real":
		return ConfidenceRatedVotes, nil
	default:
		return DiscreteVotes, errors.Wrapf(ErrInvalidOptions, "unknown vote mode %q", name)
	}
}
