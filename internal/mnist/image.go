package mnist

import (
	"fmt"
	"image"
	_ "image/jpeg"
	_ "image/png"
	"os"

	"golang.org/x/image/draw"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// LoadImage reads a single digit image from disk, converts it to
// grayscale, scales it to 28x28 and returns a (1, 1, 28, 28) float32
// tensor on the model's input scale.
func LoadImage(path string, normalize bool) (*tensor.RawTensor, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("mnist: open image %s: %w", path, err)
	}
	defer f.Close()

	src, _, err := image.Decode(f)
	if err != nil {
		return nil, fmt.Errorf("mnist: decode image %s: %w", path, err)
	}

	gray := image.NewGray(image.Rect(0, 0, 28, 28))
	draw.ApproxBiLinear.Scale(gray, gray.Bounds(), src, src.Bounds(), draw.Src, nil)

	out := tensor.NewRaw(tensor.Shape{1, 1, 28, 28}, tensor.Float32)
	od := out.AsFloat32()
	for y := 0; y < 28; y++ {
		for x := 0; x < 28; x++ {
			px := gray.GrayAt(x, y).Y
			od[y*28+x] = TransformPixel(px, normalize)
		}
	}
	return out, nil
}
