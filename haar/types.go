package haar

import (
	"math/rand"
	"sort"

	"github.com/pkg/errors"

	"github.com/thalesfsp/stump"
)

// ErrUnknownFeatureType is returned for a short name outside the catalog.
var ErrUnknownFeatureType = errors.New("unknown haar feature type")

// Short names of the feature types.
const (
	TwoHorizontal   = "2h"
	TwoVertical     = "2v"
	ThreeHorizontal = "3h"
	ThreeVertical   = "3v"
	FourQuadrant    = "4q"
)

var geometries = map[string]geometry{
	// left - right
	TwoHorizontal: {cols: 2, rows: 1, value: func(ii *IntegralImage, r Rect) int {
		cw := r.W / 2
		return ii.RectSum(r.X, r.Y, cw, r.H) - ii.RectSum(r.X+cw, r.Y, cw, r.H)
	}},

	// top - bottom
	TwoVertical: {cols: 1, rows: 2, value: func(ii *IntegralImage, r Rect) int {
		ch := r.H / 2
		return ii.RectSum(r.X, r.Y, r.W, ch) - ii.RectSum(r.X, r.Y+ch, r.W, ch)
	}},

	// left + right - 2*middle
	ThreeHorizontal: {cols: 3, rows: 1, value: func(ii *IntegralImage, r Rect) int {
		cw := r.W / 3
		return ii.RectSum(r.X, r.Y, cw, r.H) +
			ii.RectSum(r.X+2*cw, r.Y, cw, r.H) -
			2*ii.RectSum(r.X+cw, r.Y, cw, r.H)
	}},

	// top + bottom - 2*middle
	ThreeVertical: {cols: 1, rows: 3, value: func(ii *IntegralImage, r Rect) int {
		ch := r.H / 3
		return ii.RectSum(r.X, r.Y, r.W, ch) +
			ii.RectSum(r.X, r.Y+2*ch, r.W, ch) -
			2*ii.RectSum(r.X, r.Y+ch, r.W, ch)
	}},

	// (top-left + bottom-right) - (top-right + bottom-left)
	FourQuadrant: {cols: 2, rows: 2, value: func(ii *IntegralImage, r Rect) int {
		cw, ch := r.W/2, r.H/2
		return ii.RectSum(r.X, r.Y, cw, ch) +
			ii.RectSum(r.X+cw, r.Y+ch, cw, ch) -
			ii.RectSum(r.X+cw, r.Y, cw, ch) -
			ii.RectSum(r.X, r.Y+ch, cw, ch)
	}},
}

// Names returns the short names of every feature type, sorted.
func Names() []string {
	names := make([]string, 0, len(geometries))
	for name := range geometries {
		names = append(names, name)
	}

	sort.Strings(names)

	return names
}

// New returns the feature type called name for width x height images. The
// random source drives the shuffled order under random sampling.
func New(name string, width, height int, rng *rand.Rand) (*Feature, error) {
	geom, ok := geometries[name]
	if !ok {
		return nil, errors.Wrapf(ErrUnknownFeatureType, "%q", name)
	}

	if width < 1 || height < 1 {
		return nil, errors.Errorf("image size must be positive, got %dx%d", width, height)
	}

	return newFeature(name, geom, width, height, rng), nil
}

// Catalog builds the feature types called names (all of them if names is
// empty) for width x height images. Feature i is seeded with seed+i.
func Catalog(width, height int, seed int64, names ...string) (stump.Catalog[int, *Dataset], error) {
	if len(names) == 0 {
		names = Names()
	}

	catalog := make(stump.Catalog[int, *Dataset], 0, len(names))
	for i, name := range names {
		f, err := New(name, width, height, rand.New(rand.NewSource(seed+int64(i))))
		if err != nil {
			return nil, err
		}

		catalog = append(catalog, f)
	}

	return catalog, nil
}
