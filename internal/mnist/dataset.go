package mnist

import (
	"fmt"
	"math/rand"
	"os"
	"path/filepath"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Dataset statistics used for input normalization.
const (
	Mean = 0.1307
	Std  = 0.3081
)

// Dataset holds one split of MNIST as float32 images (n, 1, 28, 28) in
// [0, 1] or normalized, with int32 labels (n,).
type Dataset struct {
	Images *tensor.RawTensor
	Labels *tensor.RawTensor
}

// Len returns the number of examples.
func (d *Dataset) Len() int { return d.Labels.Shape()[0] }

// Batch is one mini-batch of images and labels.
type Batch struct {
	Images *tensor.RawTensor
	Labels *tensor.RawTensor
}

// Size returns the number of examples in the batch.
func (b Batch) Size() int { return b.Labels.Shape()[0] }

// Load reads the train and test splits from dir, downloading them first
// when missing. With normalize set, pixels are standardized with the
// dataset mean and deviation; otherwise they stay in [0, 1].
func Load(dir string, normalize bool) (train, test *Dataset, err error) {
	if err := Download(dir); err != nil {
		return nil, nil, err
	}
	train, err = loadSplit(dir, trainImagesFile, trainLabelsFile, normalize)
	if err != nil {
		return nil, nil, err
	}
	test, err = loadSplit(dir, testImagesFile, testLabelsFile, normalize)
	if err != nil {
		return nil, nil, err
	}
	return train, test, nil
}

func loadSplit(dir, imagesName, labelsName string, normalize bool) (*Dataset, error) {
	imgFile, err := os.Open(filepath.Join(dir, imagesName))
	if err != nil {
		return nil, fmt.Errorf("mnist: open %s: %w", imagesName, err)
	}
	defer imgFile.Close()
	images, err := ReadImages(imgFile)
	if err != nil {
		return nil, err
	}

	lblFile, err := os.Open(filepath.Join(dir, labelsName))
	if err != nil {
		return nil, fmt.Errorf("mnist: open %s: %w", labelsName, err)
	}
	defer lblFile.Close()
	labels, err := ReadLabels(lblFile)
	if err != nil {
		return nil, err
	}

	shape := images.Shape()
	if labels.Shape()[0] != shape[0] {
		return nil, fmt.Errorf("mnist: %d images but %d labels", shape[0], labels.Shape()[0])
	}
	return &Dataset{
		Images: pixelsToFloat(images, normalize),
		Labels: labels,
	}, nil
}

// pixelsToFloat converts (n, rows, cols) uint8 pixels to (n, 1, rows,
// cols) float32 values.
func pixelsToFloat(images *tensor.RawTensor, normalize bool) *tensor.RawTensor {
	shape := images.Shape()
	out := tensor.NewRaw(tensor.Shape{shape[0], 1, shape[1], shape[2]}, tensor.Float32)
	od := out.AsFloat32()
	for i, px := range images.AsUint8() {
		od[i] = TransformPixel(px, normalize)
	}
	return out
}

// TransformPixel maps one raw pixel to the model's input scale.
func TransformPixel(px uint8, normalize bool) float32 {
	v := float32(px) / 255
	if normalize {
		v = (v - Mean) / Std
	}
	return v
}

// Batches splits the dataset into mini-batches of at most batchSize,
// shuffling example order with rng first when shuffle is set. The final
// batch may be smaller.
func (d *Dataset) Batches(rng *rand.Rand, batchSize int, shuffle bool) []Batch {
	n := d.Len()
	order := make([]int, n)
	for i := range order {
		order[i] = i
	}
	if shuffle {
		rng.Shuffle(n, func(i, j int) { order[i], order[j] = order[j], order[i] })
	}

	imgShape := d.Images.Shape()
	pixels := imgShape[1] * imgShape[2] * imgShape[3]
	images := d.Images.AsFloat32()
	labels := d.Labels.AsInt32()

	batches := make([]Batch, 0, (n+batchSize-1)/batchSize)
	for start := 0; start < n; start += batchSize {
		end := start + batchSize
		if end > n {
			end = n
		}
		size := end - start
		bImages := tensor.NewRaw(tensor.Shape{size, imgShape[1], imgShape[2], imgShape[3]}, tensor.Float32)
		bLabels := tensor.NewRaw(tensor.Shape{size}, tensor.Int32)
		bid := bImages.AsFloat32()
		bld := bLabels.AsInt32()
		for i := 0; i < size; i++ {
			src := order[start+i]
			copy(bid[i*pixels:(i+1)*pixels], images[src*pixels:(src+1)*pixels])
			bld[i] = labels[src]
		}
		batches = append(batches, Batch{Images: bImages, Labels: bLabels})
	}
	return batches
}
