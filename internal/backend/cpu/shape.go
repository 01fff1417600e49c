package cpu

import (
	"fmt"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Reshape returns a view with the requested shape over the same buffer.
func (b *Backend) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	return x.WithShape(shape)
}

// Transpose permutes dimensions, copying into a fresh contiguous tensor.
// With no axes the dimension order is reversed.
func (b *Backend) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	xd := mustFloat32(x, "Transpose")
	shape := x.Shape()
	rank := shape.Rank()

	if len(axes) == 0 {
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	if len(axes) != rank {
		panic(fmt.Sprintf("cpu: Transpose got %d axes for shape %v", len(axes), shape))
	}
	seen := make([]bool, rank)
	outShape := make(tensor.Shape, rank)
	for i, ax := range axes {
		ax = shape.Normalize(ax)
		if seen[ax] {
			panic(fmt.Sprintf("cpu: Transpose axis %d repeated in %v", ax, axes))
		}
		seen[ax] = true
		axes[i] = ax
		outShape[i] = shape[ax]
	}

	out := tensor.NewRaw(outShape, tensor.Float32)
	od := out.AsFloat32()
	inStrides := shape.Strides()
	outStrides := outShape.Strides()

	parallel.For(b.parallel, len(od), func(i int) {
		rem := i
		src := 0
		for d := 0; d < rank; d++ {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			src += idx * inStrides[axes[d]]
		}
		od[i] = xd[src]
	})
	return out
}
