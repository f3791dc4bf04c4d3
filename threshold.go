package stump

import "math"

//////
// Threshold search.
//////

// Scratch holds the per-class accumulators of one threshold sweep. It is
// sized once per training call and reused for every configuration.
//
// Thread safety:
// - Not safe for concurrent use; every worker owns its own Scratch.
type Scratch struct {
	// classMass is the total weight of each class over all examples.
	classMass []float64

	// totalEdge is sum(w * y) of each class over all examples.
	totalEdge []float64

	// leftEdge is sum(w * y) of each class over the examples swept so far.
	leftEdge []float64

	// bestEdge is the edge of the best threshold found so far per class.
	bestEdge []float64
}

// NewScratch allocates the accumulators for numClasses classes.
func NewScratch(numClasses int) *Scratch {
	return &Scratch{
		classMass: make([]float64, numClasses),
		totalEdge: make([]float64, numClasses),
		leftEdge:  make([]float64, numClasses),
		bestEdge:  make([]float64, numClasses),
	}
}

func (s *Scratch) reset() {
	clear(s.classMass)
	clear(s.totalEdge)
	clear(s.leftEdge)
	clear(s.bestEdge)
}

// FindThresholds computes, for every class, the stump threshold that
// maximizes the absolute weighted edge, and derives the class rates and votes.
//
// Parameters:
//   - sorted: Projected examples in ascending order of Value
//   - ds: The dataset providing weights and labels
//   - smoothing: Strictly positive value added before any log ratio
//   - mode: Discrete or confidence-rated votes
//   - s: Scratch sized for ds.NumClasses()
//   - thresholds, rates, votes: Outputs, each of length ds.NumClasses()
//
// How it works:
//
//	edge(b) = sum_i w_il * y_il * phi(x_i, b)   with phi = +1 if x > b else -1
//	        = totalEdge_l - 2 * sum_{x_i <= b} w_il * y_il
//
// The baseline candidate puts every example left of the threshold (threshold
// = largest value). Then, at every boundary between two distinct adjacent
// values, the midpoint is a candidate and replaces the incumbent only if its
// absolute edge is strictly larger.
//
// Important notes:
//   - A configuration whose values are all equal yields only the baseline
//     candidate; it is scored, never rejected
//   - Runs in O(m * c) for m examples and c classes.
func FindThresholds[T Coordinate](
	sorted []Projected[T],
	ds Dataset,
	smoothing float64,
	mode VoteMode,
	s *Scratch,
	thresholds []float64,
	rates []Rates,
	votes []float64,
) {
	numClasses := ds.NumClasses()

	s.reset()

	for _, p := range sorted {
		for l := 0; l < numClasses; l++ {
			w := ds.Weight(p.Index, l)
			s.classMass[l] += w

			if ds.IsPositive(p.Index, l) {
				s.totalEdge[l] += w
			} else {
				s.totalEdge[l] -= w
			}
		}
	}

	var last float64
	if len(sorted) > 0 {
		last = float64(sorted[len(sorted)-1].Value)
	}

	for l := 0; l < numClasses; l++ {
		thresholds[l] = last
		s.bestEdge[l] = -s.totalEdge[l]
	}

	for i := 0; i+1 < len(sorted); i++ {
		idx := sorted[i].Index
		for l := 0; l < numClasses; l++ {
			if ds.IsPositive(idx, l) {
				s.leftEdge[l] += ds.Weight(idx, l)
			} else {
				s.leftEdge[l] -= ds.Weight(idx, l)
			}
		}

		// Only boundaries between distinct values are valid cuts.
		if sorted[i].Value == sorted[i+1].Value {
			continue
		}

		threshold := (float64(sorted[i].Value) + float64(sorted[i+1].Value)) / 2

		for l := 0; l < numClasses; l++ {
			edge := s.totalEdge[l] - 2*s.leftEdge[l]
			if math.Abs(edge) > math.Abs(s.bestEdge[l]) {
				s.bestEdge[l] = edge
				thresholds[l] = threshold
			}
		}
	}

	for l := 0; l < numClasses; l++ {
		edge := s.bestEdge[l]
		abs := math.Abs(edge)

		rates[l] = Rates{
			Plus:  (s.classMass[l] + abs) / 2,
			Minus: math.Max(0, (s.classMass[l]-abs)/2),
		}

		sign := 1.0
		if edge < 0 {
			sign = -1.0
		}

		switch mode {
		case ConfidenceRatedVotes:
			votes[l] = sign * halfLogRatio(rates[l].Plus, rates[l].Minus, smoothing)
		default:
			votes[l] = sign
		}
	}
}

// Phi is the stump decision: +1 above the threshold, -1 otherwise.
func Phi(value, threshold float64) float64 {
	if value > threshold {
		return 1
	}

	return -1
}

// SmoothingFor returns the smoothing value used for a dataset of numExamples
// examples. It is strictly positive for any input.
func SmoothingFor(numExamples int) float64 {
	if numExamples < 1 {
		numExamples = 1
	}

	return 1.0 / float64(numExamples) * 0.01
}
