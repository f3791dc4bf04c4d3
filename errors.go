package stump

import "github.com/pkg/errors"

var (
	// ErrNoFeatureFound is returned by Train when no configuration was
	// evaluated across all feature types.
	ErrNoFeatureFound = errors.New("no feature configuration found")

	// ErrSerializationMismatch is returned by Load when the persisted feature
	// type is not in the catalog.
	ErrSerializationMismatch = errors.New("unknown feature type in serialized hypothesis")

	// ErrMalformedHypothesis is returned by Load when the persisted record is
	// structurally inconsistent.
	ErrMalformedHypothesis = errors.New("malformed serialized hypothesis")

	// ErrInvalidOptions is returned by NewLearner for unusable options.
	ErrInvalidOptions = errors.New("invalid learner options")
)
