// Package haar provides the Haar-like feature catalog searched by the stump
// learner: integral images, the five rectangle feature types and a weighted
// multi-class image dataset.
package haar

import (
	"image"
	"image/color"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
)

// IntegralImage is the summed-area table of a grey-level image. The table has
// one extra row and column of zeros so rectangle sums need no bounds checks.
type IntegralImage struct {
	width  int
	height int
	sums   []int
}

// NewIntegralImage computes the integral image of img's grey levels.
func NewIntegralImage(img image.Image) *IntegralImage {
	b := img.Bounds()
	w, h := b.Dx(), b.Dy()
	stride := w + 1

	ii := &IntegralImage{
		width:  w,
		height: h,
		sums:   make([]int, stride*(h+1)),
	}

	for y := 0; y < h; y++ {
		row := 0
		for x := 0; x < w; x++ {
			g := color.GrayModel.Convert(img.At(b.Min.X+x, b.Min.Y+y)).(color.Gray)
			row += int(g.Y)
			ii.sums[(y+1)*stride+x+1] = ii.sums[y*stride+x+1] + row
		}
	}

	return ii
}

// FromImage resizes img to width x height, converts it to grey levels and
// returns its integral image.
func FromImage(img image.Image, width, height int) *IntegralImage {
	resized := imaging.Resize(img, width, height, imaging.Lanczos)

	return NewIntegralImage(imaging.Grayscale(resized))
}

// LoadImage opens the image at path and returns its integral image at the
// given size.
func LoadImage(path string, width, height int) (*IntegralImage, error) {
	img, err := imaging.Open(path)
	if err != nil {
		return nil, errors.Wrapf(err, "opening %s", path)
	}

	return FromImage(img, width, height), nil
}

// Width returns the image width in pixels.
func (ii *IntegralImage) Width() int { return ii.width }

// Height returns the image height in pixels.
func (ii *IntegralImage) Height() int { return ii.height }

// RectSum returns the sum of the pixels in the w x h rectangle whose top-left
// corner is (x, y). The rectangle must lie inside the image.
func (ii *IntegralImage) RectSum(x, y, w, h int) int {
	stride := ii.width + 1

	return ii.sums[(y+h)*stride+x+w] -
		ii.sums[(y+h)*stride+x] -
		ii.sums[y*stride+x+w] +
		ii.sums[y*stride+x]
}
