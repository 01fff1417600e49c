package cpu

import (
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// SumDim sums along a single dimension.
func (b *Backend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return b.reduceDim(x, dim, keepDim, 1)
}

// MeanDim averages along a single dimension.
func (b *Backend) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	width := x.Shape()[x.Shape().Normalize(dim)]
	return b.reduceDim(x, dim, keepDim, 1/float32(width))
}

func (b *Backend) reduceDim(x *tensor.RawTensor, dim int, keepDim bool, scale float32) *tensor.RawTensor {
	xd := mustFloat32(x, "SumDim")
	shape := x.Shape()
	dim = shape.Normalize(dim)

	outer, width, inner := 1, shape[dim], 1
	for d := 0; d < dim; d++ {
		outer *= shape[d]
	}
	for d := dim + 1; d < shape.Rank(); d++ {
		inner *= shape[d]
	}

	outShape := ReducedShape(shape, dim, keepDim)
	out := tensor.NewRaw(outShape, tensor.Float32)
	od := out.AsFloat32()

	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, outer, func(o int) {
		base := o * width * inner
		for i := 0; i < inner; i++ {
			var sum float32
			for w := 0; w < width; w++ {
				sum += xd[base+w*inner+i]
			}
			od[o*inner+i] = sum * scale
		}
	})
	return out
}

// ReducedShape returns the shape left after reducing dim, keeping a size-1
// dimension in its place when keepDim is set.
func ReducedShape(shape tensor.Shape, dim int, keepDim bool) tensor.Shape {
	dim = shape.Normalize(dim)
	if keepDim {
		out := shape.Clone()
		out[dim] = 1
		return out
	}
	out := make(tensor.Shape, 0, shape.Rank()-1)
	out = append(out, shape[:dim]...)
	out = append(out, shape[dim+1:]...)
	if len(out) == 0 {
		out = tensor.Shape{1}
	}
	return out
}
