// Package stump selects the weak hypothesis of one multi-class boosting round:
// the single feature configuration, and the per-class threshold stump on it,
// that minimizes the AdaBoost.MH energy under the current example weights.
//
// # Features
//
// The package includes the following key features:
//
//   - Exhaustive or Sampled Search: every configuration of every feature type,
//     a fixed number of random configurations per type, or a time budget per type
//   - Linear Threshold Sweep: per-class optimal thresholds from one pass over
//     the sorted projections
//   - Smoothed Energy: alpha and votes stay finite even with zero error
//   - Parallel Search: feature types can be searched concurrently with a
//     result identical to the sequential one
//   - Generic Coordinates: integer or real projections
//   - Progress Monitoring: per-feature-type updates via channels
//   - Persistence: a tab-indented text record that reloads bit-exact
//
// # Usage
//
//	catalog, err := haar.Catalog(24, 24, 1)  // all Haar feature types
//	ds, classes, err := haar.LoadDir("faces", 24, 24)
//
//	opts := stump.DefaultOptions()
//	opts.Sampling = stump.SamplingPolicy{Kind: stump.CountBound, Count: 2000}
//
//	learner, err := stump.NewLearner[int, *haar.Dataset](opts)
//	h, err := learner.Train(ctx, ds, catalog)
//	if errors.Is(err, stump.ErrNoFeatureFound) {
//	    // nothing to select this round
//	}
//
//	err = h.SaveFile("round-1.xml")
//
// # Sampling Policies
//
// 1. NoSampling:
//
//   - Every configuration is visited in the feature type's fixed order
//   - Repeated runs are bit-for-bit reproducible
//
// 2. CountBound:
//
//   - Configurations are visited in a random order, reshuffled per call
//   - At most Count configurations per feature type
//
// 3. TimeBound:
//
//   - Configurations are visited in a random order
//   - The budget is checked after each configuration, so a type may overrun
//     its Duration by one evaluation
//
// # Energy
//
// With discrete votes, for the summed class rates eps+ (correct), eps-
// (incorrect) and eps0 (abstained) and the smoothing value s = 0.01/n:
//
//	alpha  = 0.5 * ln((eps+ + s) / (eps- + s)) - 0.5 * ln((1 + theta) / (1 - theta))
//	energy = exp(theta*alpha) * (eps- * exp(alpha) + eps+ * exp(-alpha) + eps0)
//
// The edge offset theta lies in [0, 1). Confidence-rated votes put a signed
// half log-odds on every class and use alpha = 1.
//
// # Thread Safety
//
//   - A Learner is immutable and can be shared
//   - The dataset is only read during Train
//   - Feature types are iterators: a catalog must not be trained on by two
//     goroutines at once
package stump
