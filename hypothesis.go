package stump

// Hypothesis is the weak classifier selected by one Train call: a feature
// type, one of its configurations, and a per-class stump on the projected
// value. It is immutable; accessors return copies.
type Hypothesis[T Coordinate, D Dataset] struct {
	feature    FeatureType[T, D]
	config     Configuration
	thresholds []float64
	votes      []float64
	alpha      float64
	energy     float64
}

func newHypothesis[T Coordinate, D Dataset](
	feature FeatureType[T, D],
	config Configuration,
	thresholds, votes []float64,
	alpha, energy float64,
) *Hypothesis[T, D] {
	return &Hypothesis[T, D]{
		feature:    feature,
		config:     config,
		thresholds: append([]float64(nil), thresholds...),
		votes:      append([]float64(nil), votes...),
		alpha:      alpha,
		energy:     energy,
	}
}

// Feature returns the selected feature type.
func (h *Hypothesis[T, D]) Feature() FeatureType[T, D] { return h.feature }

// Config returns the selected configuration.
func (h *Hypothesis[T, D]) Config() Configuration { return h.config }

// Thresholds returns a copy of the per-class thresholds.
func (h *Hypothesis[T, D]) Thresholds() []float64 {
	return append([]float64(nil), h.thresholds...)
}

// Votes returns a copy of the per-class votes.
func (h *Hypothesis[T, D]) Votes() []float64 {
	return append([]float64(nil), h.votes...)
}

// Alpha returns the confidence weight of the hypothesis.
func (h *Hypothesis[T, D]) Alpha() float64 { return h.alpha }

// Energy returns the energy the hypothesis was selected with. Hypotheses
// loaded from a stream carry the persisted value.
func (h *Hypothesis[T, D]) Energy() float64 { return h.energy }

// NumClasses returns the number of classes the hypothesis was trained on.
func (h *Hypothesis[T, D]) NumClasses() int { return len(h.votes) }

// Phi returns +1 if value lies above the threshold of class, -1 otherwise.
func (h *Hypothesis[T, D]) Phi(value T, class int) float64 {
	return Phi(float64(value), h.thresholds[class])
}

// Classify returns the vote of the hypothesis for class given a value
// projected with the selected feature type and configuration.
func (h *Hypothesis[T, D]) Classify(value T, class int) float64 {
	return h.votes[class] * h.Phi(value, class)
}

// ClassifyExample projects example idx of ds with the selected configuration
// and classifies it.
func (h *Hypothesis[T, D]) ClassifyExample(ds D, idx, class int) float64 {
	return h.Classify(h.feature.Value(ds, idx, h.config), class)
}

// Scores returns alpha * Classify for every class of example idx, the
// contribution of this hypothesis to a boosted discriminant.
func (h *Hypothesis[T, D]) Scores(ds D, idx int) []float64 {
	value := h.feature.Value(ds, idx, h.config)

	scores := make([]float64, len(h.votes))
	for l := range scores {
		scores[l] = h.alpha * h.Classify(value, l)
	}

	return scores
}
