package stump

import (
	"math/rand"
	"strconv"

	"github.com/pkg/errors"
)

// labeledDataset is a dataset without raw data: feature types below carry
// their projections directly.
type labeledDataset struct {
	labels     []int
	numClasses int
	weights    [][]float64
}

// newLabeledDataset uses the AdaBoost.MH initial weights, the same ones
// haar.NewDataset sets.
func newLabeledDataset(labels []int, numClasses int) *labeledDataset {
	n := float64(len(labels))
	weights := make([][]float64, len(labels))

	for i, label := range labels {
		weights[i] = make([]float64, numClasses)
		for l := range weights[i] {
			switch {
			case numClasses == 1:
				weights[i][l] = 1 / n
			case l == label:
				weights[i][l] = 1 / (2 * n)
			default:
				weights[i][l] = 1 / (2 * n * float64(numClasses-1))
			}
		}
	}

	return &labeledDataset{labels: labels, numClasses: numClasses, weights: weights}
}

func (d *labeledDataset) NumExamples() int              { return len(d.labels) }
func (d *labeledDataset) NumClasses() int               { return d.numClasses }
func (d *labeledDataset) Weight(idx, class int) float64 { return d.weights[idx][class] }
func (d *labeledDataset) IsPositive(idx, class int) bool {
	return d.labels[idx] == class
}

// tableFeature is a feature type whose configurations are explicit lists of
// projected examples. Its configuration is the index into configs.
type tableFeature struct {
	name    string
	configs [][]Projected[int]
	order   []int
	pos     int
	mode    AccessMode
	rng     *rand.Rand

	// projections counts Project calls since the last reset.
	projections int

	// onProject runs after every Project call.
	onProject func()
}

func newTableFeature(name string, seed int64, configs ...[]Projected[int]) *tableFeature {
	return &tableFeature{
		name:    name,
		configs: configs,
		order:   make([]int, len(configs)),
		rng:     rand.New(rand.NewSource(seed)),
	}
}

// randomTableFeature draws numConfigs configurations of numExamples values in
// [0, spread).
func randomTableFeature(name string, seed int64, numConfigs, numExamples, spread int) *tableFeature {
	rng := rand.New(rand.NewSource(seed))

	configs := make([][]Projected[int], numConfigs)
	for c := range configs {
		configs[c] = make([]Projected[int], numExamples)
		for i := range configs[c] {
			configs[c][i] = Projected[int]{Value: rng.Intn(spread), Index: i}
		}
	}

	return newTableFeature(name, seed, configs...)
}

func (f *tableFeature) Name() string                  { return f.name }
func (f *tableFeature) SetAccessMode(mode AccessMode) { f.mode = mode }
func (f *tableFeature) HasConfigs() bool              { return f.pos < len(f.order) }
func (f *tableFeature) CurrentConfig() Configuration  { return f.order[f.pos] }
func (f *tableFeature) MoveToNextConfig()             { f.pos++ }

func (f *tableFeature) ResetConfigIterator() {
	f.pos = 0
	f.projections = 0

	for i := range f.order {
		f.order[i] = i
	}

	if f.mode == RandomSampling {
		f.rng.Shuffle(len(f.order), func(i, j int) {
			f.order[i], f.order[j] = f.order[j], f.order[i]
		})
	}
}

func (f *tableFeature) Project(_ *labeledDataset, cfg Configuration, dst []Projected[int]) {
	copy(dst, f.configs[cfg.(int)])
	f.projections++

	if f.onProject != nil {
		f.onProject()
	}
}

func (f *tableFeature) Value(_ *labeledDataset, idx int, cfg Configuration) int {
	for _, p := range f.configs[cfg.(int)] {
		if p.Index == idx {
			return p.Value
		}
	}

	return 0
}

func (f *tableFeature) MarshalConfig(cfg Configuration) (string, error) {
	return strconv.Itoa(cfg.(int)), nil
}

func (f *tableFeature) UnmarshalConfig(payload string) (Configuration, error) {
	c, err := strconv.Atoi(payload)
	if err != nil {
		return nil, err
	}

	if c < 0 || c >= len(f.configs) {
		return nil, errors.Errorf("configuration %d out of range", c)
	}

	return c, nil
}

// bruteForceEnergy evaluates every configuration of every feature type
// independently and returns the minimum energy.
func bruteForceEnergy(ds *labeledDataset, mode VoteMode, features ...*tableFeature) float64 {
	smoothing := SmoothingFor(ds.NumExamples())
	c := ds.NumClasses()

	best := 0.0
	first := true

	for _, f := range features {
		for _, cfg := range f.configs {
			sorted := append([]Projected[int](nil), cfg...)
			for i := 1; i < len(sorted); i++ {
				for j := i; j > 0 && sorted[j].Value < sorted[j-1].Value; j-- {
					sorted[j], sorted[j-1] = sorted[j-1], sorted[j]
				}
			}

			thresholds := make([]float64, c)
			rates := make([]Rates, c)
			votes := make([]float64, c)
			FindThresholds(sorted, ds, smoothing, mode, NewScratch(c), thresholds, rates, votes)

			energy, _ := Energy(rates, votes, smoothing, 0, mode)
			if first || energy < best {
				best = energy
				first = false
			}
		}
	}

	return best
}

func catalogOf(features ...*tableFeature) Catalog[int, *labeledDataset] {
	catalog := make(Catalog[int, *labeledDataset], len(features))
	for i, f := range features {
		catalog[i] = f
	}

	return catalog
}
