package stump

import "math"

//////
// Energy.
//////

// Energy folds the per-class rates of one configuration into the scalar the
// search minimizes, and returns the alpha of the corresponding hypothesis.
//
// Parameters:
//   - rates: Class rates from FindThresholds
//   - votes: Class votes from FindThresholds
//   - smoothing: Strictly positive smoothing value
//   - theta: Edge offset in [0, 1) (0 for plain AdaBoost.MH); ignored for
//     confidence-rated votes
//   - mode: Must match the mode used by FindThresholds
//
// Returns:
//   - energy: Lower is better; decreases as the weighted margin grows
//   - alpha: Confidence of the hypothesis (1 for confidence-rated votes)
//
// Mathematical formula (discrete votes):
//
//	eps+ = sum_l mu+_l,  eps- = sum_l mu-_l,  eps0 = sum_l mu0_l
//	alpha  = 0.5 * ln((eps+ + s) / (eps- + s)) - 0.5 * ln((1 + theta) / (1 - theta))
//	energy = exp(theta*alpha) * (eps- * exp(alpha) + eps+ * exp(-alpha) + eps0)
//
// For theta in [0, 1) alpha minimizes the energy, and the energy decreases as
// the edge eps+ - eps- grows beyond theta.
//
// Confidence-rated votes carry their own magnitude, so:
//
//	energy = sum_l (mu-_l * exp(|v_l|) + mu+_l * exp(-|v_l|) + mu0_l)
//
// Energy is pure: the same inputs always produce the same outputs.
func Energy(rates []Rates, votes []float64, smoothing, theta float64, mode VoteMode) (energy, alpha float64) {
	if mode == ConfidenceRatedVotes {
		for l, r := range rates {
			v := math.Abs(votes[l])
			energy += r.Minus*math.Exp(v) + r.Plus*math.Exp(-v) + r.Zero
		}

		return energy, 1
	}

	var epsPlus, epsMinus, epsZero float64
	for _, r := range rates {
		epsPlus += r.Plus
		epsMinus += r.Minus
		epsZero += r.Zero
	}

	alpha = halfLogRatio(epsPlus, epsMinus, smoothing)
	if theta != 0 {
		alpha -= 0.5 * math.Log((1+theta)/(1-theta))
	}
	energy = math.Exp(theta*alpha) * (epsMinus*math.Exp(alpha) + epsPlus*math.Exp(-alpha) + epsZero)

	return energy, alpha
}

// halfLogRatio is 0.5 * ln((plus + s) / (minus + s)). With s > 0 and
// non-negative masses it is always finite.
func halfLogRatio(plus, minus, smoothing float64) float64 {
	return 0.5 * math.Log((plus+smoothing)/(minus+smoothing))
}
