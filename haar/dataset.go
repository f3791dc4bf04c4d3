package haar

import (
	"os"
	"path/filepath"

	"github.com/disintegration/imaging"
	"github.com/pkg/errors"
	"go.uber.org/multierr"
	"gonum.org/v1/gonum/floats"
)

// Dataset is a set of same-size integral images with one class label each
// and AdaBoost.MH weights per (example, class). It implements stump.Dataset.
type Dataset struct {
	images     []*IntegralImage
	labels     []int
	numClasses int
	weights    [][]float64
}

// NewDataset builds a dataset with the initial AdaBoost.MH weights: half of
// the mass on the true class of every example, the other half spread over the
// remaining classes.
func NewDataset(images []*IntegralImage, labels []int, numClasses int) (*Dataset, error) {
	if len(images) != len(labels) {
		return nil, errors.Errorf("%d images for %d labels", len(images), len(labels))
	}

	if numClasses < 1 {
		return nil, errors.Errorf("need at least one class, got %d", numClasses)
	}

	for i, ii := range images {
		if ii.Width() != images[0].Width() || ii.Height() != images[0].Height() {
			return nil, errors.Errorf("image %d is %dx%d, expected %dx%d",
				i, ii.Width(), ii.Height(), images[0].Width(), images[0].Height())
		}
	}

	n := float64(len(images))
	weights := make([][]float64, len(images))

	for i, label := range labels {
		if label < 0 || label >= numClasses {
			return nil, errors.Errorf("label %d of example %d outside [0, %d)", label, i, numClasses)
		}

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

	return &Dataset{
		images:     images,
		labels:     labels,
		numClasses: numClasses,
		weights:    weights,
	}, nil
}

// NumExamples implements stump.Dataset.
func (d *Dataset) NumExamples() int { return len(d.images) }

// NumClasses implements stump.Dataset.
func (d *Dataset) NumClasses() int { return d.numClasses }

// Weight implements stump.Dataset.
func (d *Dataset) Weight(idx, class int) float64 { return d.weights[idx][class] }

// IsPositive implements stump.Dataset.
func (d *Dataset) IsPositive(idx, class int) bool { return d.labels[idx] == class }

// Width returns the image width of the dataset, 0 when it is empty.
func (d *Dataset) Width() int {
	if len(d.images) == 0 {
		return 0
	}

	return d.images[0].Width()
}

// Height returns the image height of the dataset, 0 when it is empty.
func (d *Dataset) Height() int {
	if len(d.images) == 0 {
		return 0
	}

	return d.images[0].Height()
}

// Label returns the class of example idx.
func (d *Dataset) Label(idx int) int { return d.labels[idx] }

// Image returns the integral image of example idx.
func (d *Dataset) Image(idx int) *IntegralImage { return d.images[idx] }

// SetWeight sets the weight of the (idx, class) pair. Callers reweighting a
// whole round usually call Normalize afterwards.
func (d *Dataset) SetWeight(idx, class int, w float64) { d.weights[idx][class] = w }

// Normalize rescales the weights to sum to one. A dataset with zero total
// weight is left unchanged.
func (d *Dataset) Normalize() {
	var total float64
	for _, row := range d.weights {
		total += floats.Sum(row)
	}

	if total == 0 {
		return
	}

	for _, row := range d.weights {
		floats.Scale(1/total, row)
	}
}

// LoadDir reads dir/<class>/<image> into a dataset at the given image size.
// Classes are the sub-directories of dir in lexical order; files that are not
// images are skipped. Every unreadable image is reported in the returned
// error.
func LoadDir(dir string, width, height int) (*Dataset, []string, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, nil, errors.Wrapf(err, "reading %s", dir)
	}

	var (
		classes []string
		images  []*IntegralImage
		labels  []int
		errs    error
	)

	for _, entry := range entries {
		if !entry.IsDir() {
			continue
		}

		class := len(classes)
		classes = append(classes, entry.Name())

		classDir := filepath.Join(dir, entry.Name())
		files, err := os.ReadDir(classDir)
		if err != nil {
			errs = multierr.Append(errs, errors.Wrapf(err, "reading %s", classDir))
			continue
		}

		for _, file := range files {
			if file.IsDir() {
				continue
			}

			path := filepath.Join(classDir, file.Name())
			if _, err := imaging.FormatFromFilename(path); err != nil {
				continue
			}

			ii, err := LoadImage(path, width, height)
			if err != nil {
				errs = multierr.Append(errs, err)
				continue
			}

			images = append(images, ii)
			labels = append(labels, class)
		}
	}

	if errs != nil {
		return nil, nil, errs
	}

	if len(classes) == 0 {
		return nil, nil, errors.Errorf("no class directories in %s", dir)
	}

	ds, err := NewDataset(images, labels, len(classes))
	if err != nil {
		return nil, nil, err
	}

	return ds, classes, nil
}
