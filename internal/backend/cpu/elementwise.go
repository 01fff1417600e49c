package cpu

import (
	"fmt"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Add returns a + b with broadcasting.
func (b *Backend) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(x, y, "Add", func(a, b float32) float32 { return a + b })
}

// Sub returns a - b with broadcasting.
func (b *Backend) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(x, y, "Sub", func(a, b float32) float32 { return a - b })
}

// Mul returns the elementwise product with broadcasting.
func (b *Backend) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(x, y, "Mul", func(a, b float32) float32 { return a * b })
}

// Div returns the elementwise quotient with broadcasting.
func (b *Backend) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	return b.binaryOp(x, y, "Div", func(a, b float32) float32 { return a / b })
}

// AddScalar returns x + s.
func (b *Backend) AddScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return b.unaryOp(x, "AddScalar", func(v float32) float32 { return v + s })
}

// MulScalar returns x * s.
func (b *Backend) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	return b.unaryOp(x, "MulScalar", func(v float32) float32 { return v * s })
}

func (b *Backend) unaryOp(x *tensor.RawTensor, op string, fn func(float32) float32) *tensor.RawTensor {
	xd := mustFloat32(x, op)
	out := tensor.NewRaw(x.Shape(), tensor.Float32)
	od := out.AsFloat32()
	parallel.For(b.parallel, len(xd), func(i int) {
		od[i] = fn(xd[i])
	})
	return out
}

func (b *Backend) binaryOp(x, y *tensor.RawTensor, op string, fn func(a, b float32) float32) *tensor.RawTensor {
	xd := mustFloat32(x, op)
	yd := mustFloat32(y, op)

	// Fast path for identical shapes.
	if x.Shape().Equal(y.Shape()) {
		out := tensor.NewRaw(x.Shape(), tensor.Float32)
		od := out.AsFloat32()
		parallel.For(b.parallel, len(od), func(i int) {
			od[i] = fn(xd[i], yd[i])
		})
		return out
	}

	outShape := tensor.BroadcastShapes(x.Shape(), y.Shape())
	out := tensor.NewRaw(outShape, tensor.Float32)
	od := out.AsFloat32()

	xStrides := broadcastStrides(x.Shape(), outShape)
	yStrides := broadcastStrides(y.Shape(), outShape)
	outStrides := outShape.Strides()

	parallel.For(b.parallel, len(od), func(i int) {
		xi, yi := 0, 0
		rem := i
		for d := 0; d < len(outShape); d++ {
			idx := rem / outStrides[d]
			rem %= outStrides[d]
			xi += idx * xStrides[d]
			yi += idx * yStrides[d]
		}
		od[i] = fn(xd[xi], yd[yi])
	})
	return out
}

// broadcastStrides returns per-output-dimension strides into a tensor of
// shape in, with zero stride on broadcast dimensions.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.Strides()
	offset := len(out) - len(in)
	for d := range out {
		src := d - offset
		if src < 0 || in[src] == 1 {
			strides[d] = 0
			continue
		}
		if in[src] != out[d] {
			panic(fmt.Sprintf("cpu: cannot broadcast %v to %v", in, out))
		}
		strides[d] = inStrides[src]
	}
	return strides
}
