package cpu

import (
	"fmt"
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// ReLU applies max(0, x) elementwise.
func (b *Backend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "ReLU", func(v float32) float32 {
		if v > 0 {
			return v
		}
		return 0
	})
}

// GELU applies the exact Gaussian error linear unit, x * Phi(x).
func (b *Backend) GELU(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "GELU", func(v float32) float32 {
		return v * 0.5 * float32(1+math.Erf(float64(v)/math.Sqrt2))
	})
}

// Rsqrt applies 1/sqrt(x) elementwise.
func (b *Backend) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	return b.unaryOp(x, "Rsqrt", func(v float32) float32 {
		return float32(1 / math.Sqrt(float64(v)))
	})
}

// Softmax normalizes along dim, which must address the last dimension.
// Rows are shifted by their maximum before exponentiation.
func (b *Backend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	xd := mustFloat32(x, "Softmax")
	shape := x.Shape()
	if shape.Normalize(dim) != shape.Rank()-1 {
		panic(fmt.Sprintf("cpu: Softmax supports only the last dimension, got dim %d for shape %v", dim, shape))
	}
	width := shape[shape.Rank()-1]
	rows := len(xd) / width

	out := tensor.NewRaw(shape, tensor.Float32)
	od := out.AsFloat32()
	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, rows, func(r int) {
		in := xd[r*width : (r+1)*width]
		o := od[r*width : (r+1)*width]
		maxV := in[0]
		for _, v := range in[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sum float32
		for i, v := range in {
			e := float32(math.Exp(float64(v - maxV)))
			o[i] = e
			sum += e
		}
		inv := 1 / sum
		for i := range o {
			o[i] *= inv
		}
	})
	return out
}
