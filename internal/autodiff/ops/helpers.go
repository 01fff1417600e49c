package ops

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// reduceBroadcast sums grad down to shape, undoing the broadcasting that
// expanded an input of that shape during the forward pass.
func reduceBroadcast(backend tensor.Backend, grad *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	if grad.Shape().Equal(shape) {
		return grad
	}
	// Collapse leading dimensions the input never had.
	for grad.Shape().Rank() > shape.Rank() {
		grad = backend.SumDim(grad, 0, false)
	}
	// Collapse dimensions the input held at size 1.
	for d := 0; d < shape.Rank(); d++ {
		if shape[d] == 1 && grad.Shape()[d] != 1 {
			grad = backend.SumDim(grad, d, true)
		}
	}
	return backend.Reshape(grad, shape)
}

// expandDim broadcasts grad back over the reduced dimension dim of shape,
// scaling every element by scale. It inverts SumDim and MeanDim.
func expandDim(grad *tensor.RawTensor, shape tensor.Shape, dim int, scale float32) *tensor.RawTensor {
	dim = shape.Normalize(dim)
	out := tensor.NewRaw(shape, tensor.Float32)
	od := out.AsFloat32()
	gd := grad.AsFloat32()

	width := shape[dim]
	inner := 1
	for d := dim + 1; d < shape.Rank(); d++ {
		inner *= shape[d]
	}
	outer := shape.NumElements() / (width * inner)
	for o := 0; o < outer; o++ {
		for w := 0; w < width; w++ {
			base := (o*width + w) * inner
			for i := 0; i < inner; i++ {
				od[base+i] = gd[o*inner+i] * scale
			}
		}
	}
	return out
}
