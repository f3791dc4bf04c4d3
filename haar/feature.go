package haar

import (
	"fmt"
	"math/rand"
	"strconv"
	"strings"

	"github.com/pkg/errors"

	"github.com/thalesfsp/stump"
)

var (
	// ErrInvalidConfig is returned when a persisted configuration does not
	// fit the feature type.
	ErrInvalidConfig = errors.New("invalid haar configuration")

	// ErrSizeMismatch is returned when a dataset's images do not have the
	// size the feature type was built for.
	ErrSizeMismatch = errors.New("image size does not match the feature type")
)

var (
	_ stump.FeatureType[int, *Dataset] = (*Feature)(nil)
	_ stump.DatasetValidator[*Dataset] = (*Feature)(nil)
	_ stump.Dataset                    = (*Dataset)(nil)
)

// Rect is the bounding box of one feature placement. It is the Configuration
// of every Haar feature type.
type Rect struct {
	X, Y, W, H int
}

// String returns "x y w h".
func (r Rect) String() string {
	return fmt.Sprintf("%d %d %d %d", r.X, r.Y, r.W, r.H)
}

// geometry describes one feature type: its grid of cells and how the cell
// sums combine into a value.
type geometry struct {
	cols, rows int
	value      func(ii *IntegralImage, r Rect) int
}

// Feature is one Haar feature type over images of a fixed size. It implements
// stump.FeatureType[int, *Dataset].
//
// A Feature carries its own iterator and random source and must not be used
// by two goroutines at once.
type Feature struct {
	name    string
	geom    geometry
	width   int
	height  int
	configs []Rect
	order   []int
	pos     int
	mode    stump.AccessMode
	rng     *rand.Rand
}

func newFeature(name string, geom geometry, width, height int, rng *rand.Rand) *Feature {
	f := &Feature{
		name:   name,
		geom:   geom,
		width:  width,
		height: height,
		rng:    rng,
	}

	// Every placement of every size that is a whole number of cells.
	for h := geom.rows; h <= height; h += geom.rows {
		for w := geom.cols; w <= width; w += geom.cols {
			for y := 0; y+h <= height; y++ {
				for x := 0; x+w <= width; x++ {
					f.configs = append(f.configs, Rect{X: x, Y: y, W: w, H: h})
				}
			}
		}
	}

	f.order = make([]int, len(f.configs))
	f.resetOrder()

	return f
}

// Name implements stump.FeatureType.
func (f *Feature) Name() string { return f.name }

// NumConfigs returns the size of the configuration space.
func (f *Feature) NumConfigs() int { return len(f.configs) }

// SetAccessMode implements stump.FeatureType.
func (f *Feature) SetAccessMode(mode stump.AccessMode) { f.mode = mode }

// ResetConfigIterator implements stump.FeatureType. Under random sampling the
// order is reshuffled.
func (f *Feature) ResetConfigIterator() {
	f.pos = 0
	f.resetOrder()

	if f.mode == stump.RandomSampling {
		f.rng.Shuffle(len(f.order), func(i, j int) {
			f.order[i], f.order[j] = f.order[j], f.order[i]
		})
	}
}

func (f *Feature) resetOrder() {
	for i := range f.order {
		f.order[i] = i
	}
}

// HasConfigs implements stump.FeatureType.
func (f *Feature) HasConfigs() bool { return f.pos < len(f.order) }

// CurrentConfig implements stump.FeatureType. It returns a Rect value.
func (f *Feature) CurrentConfig() stump.Configuration {
	return f.configs[f.order[f.pos]]
}

// MoveToNextConfig implements stump.FeatureType.
func (f *Feature) MoveToNextConfig() { f.pos++ }

// ValidateDataset implements stump.DatasetValidator. An empty dataset is
// always accepted.
func (f *Feature) ValidateDataset(ds *Dataset) error {
	if ds.NumExamples() == 0 || (ds.Width() == f.width && ds.Height() == f.height) {
		return nil
	}

	return errors.Wrapf(ErrSizeMismatch, "%s: dataset is %dx%d, feature type is %dx%d",
		f.name, ds.Width(), ds.Height(), f.width, f.height)
}

// Project implements stump.FeatureType. ds must pass ValidateDataset.
func (f *Feature) Project(ds *Dataset, cfg stump.Configuration, dst []stump.Projected[int]) {
	r := cfg.(Rect)
	for i, ii := range ds.images {
		dst[i] = stump.Projected[int]{Value: f.geom.value(ii, r), Index: i}
	}
}

// Value implements stump.FeatureType.
func (f *Feature) Value(ds *Dataset, idx int, cfg stump.Configuration) int {
	return f.geom.value(ds.images[idx], cfg.(Rect))
}

// ValueOf projects a single integral image, for classification outside a
// dataset.
func (f *Feature) ValueOf(ii *IntegralImage, cfg stump.Configuration) int {
	return f.geom.value(ii, cfg.(Rect))
}

// MarshalConfig implements stump.FeatureType.
func (f *Feature) MarshalConfig(cfg stump.Configuration) (string, error) {
	r, ok := cfg.(Rect)
	if !ok {
		return "", errors.Wrapf(ErrInvalidConfig, "%s: configuration of type %T", f.name, cfg)
	}

	return r.String(), nil
}

// UnmarshalConfig implements stump.FeatureType.
func (f *Feature) UnmarshalConfig(payload string) (stump.Configuration, error) {
	fields := strings.Fields(payload)
	if len(fields) != 4 {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: want 4 fields, got %q", f.name, payload)
	}

	var v [4]int
	for i, field := range fields {
		n, err := strconv.Atoi(field)
		if err != nil {
			return nil, errors.Wrapf(ErrInvalidConfig, "%s: %v", f.name, err)
		}
		v[i] = n
	}

	r := Rect{X: v[0], Y: v[1], W: v[2], H: v[3]}
	if !f.fits(r) {
		return nil, errors.Wrapf(ErrInvalidConfig, "%s: %v does not fit a %dx%d image", f.name, r, f.width, f.height)
	}

	return r, nil
}

func (f *Feature) fits(r Rect) bool {
	return r.X >= 0 && r.Y >= 0 &&
		r.W >= f.geom.cols && r.H >= f.geom.rows &&
		r.W%f.geom.cols == 0 && r.H%f.geom.rows == 0 &&
		r.X+r.W <= f.width && r.Y+r.H <= f.height
}
