package ops

import (
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// ReLUOp records max(0, x).
type ReLUOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
}

func NewReLUOp(x, out *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{x: x, out: out}
}

func (op *ReLUOp) Output() *tensor.RawTensor   { return op.out }
func (op *ReLUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *ReLUOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	xd := op.x.AsFloat32()
	gd := grad.AsFloat32()
	out := tensor.NewRaw(op.x.Shape(), tensor.Float32)
	od := out.AsFloat32()
	for i, v := range xd {
		if v > 0 {
			od[i] = gd[i]
		}
	}
	return []*tensor.RawTensor{out}
}

// GELUOp records the exact GELU, x * Phi(x).
type GELUOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
}

func NewGELUOp(x, out *tensor.RawTensor) *GELUOp {
	return &GELUOp{x: x, out: out}
}

func (op *GELUOp) Output() *tensor.RawTensor   { return op.out }
func (op *GELUOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *GELUOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	xd := op.x.AsFloat32()
	gd := grad.AsFloat32()
	out := tensor.NewRaw(op.x.Shape(), tensor.Float32)
	od := out.AsFloat32()
	const invSqrt2Pi = 0.3989422804014327
	for i, v := range xd {
		x := float64(v)
		cdf := 0.5 * (1 + math.Erf(x/math.Sqrt2))
		pdf := invSqrt2Pi * math.Exp(-0.5*x*x)
		od[i] = gd[i] * float32(cdf+x*pdf)
	}
	return []*tensor.RawTensor{out}
}

// RsqrtOp records 1/sqrt(x).
type RsqrtOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
}

func NewRsqrtOp(x, out *tensor.RawTensor) *RsqrtOp {
	return &RsqrtOp{x: x, out: out}
}

func (op *RsqrtOp) Output() *tensor.RawTensor   { return op.out }
func (op *RsqrtOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *RsqrtOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	// d/dx x^(-1/2) = -y^3 / 2
	yd := op.out.AsFloat32()
	gd := grad.AsFloat32()
	out := tensor.NewRaw(op.x.Shape(), tensor.Float32)
	od := out.AsFloat32()
	for i, y := range yd {
		od[i] = gd[i] * -0.5 * y * y * y
	}
	return []*tensor.RawTensor{out}
}

// SoftmaxOp records a softmax along the last dimension.
type SoftmaxOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
}

func NewSoftmaxOp(x, out *tensor.RawTensor) *SoftmaxOp {
	return &SoftmaxOp{x: x, out: out}
}

func (op *SoftmaxOp) Output() *tensor.RawTensor   { return op.out }
func (op *SoftmaxOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *SoftmaxOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	// dx = y * (g - sum(g * y)) per row.
	yd := op.out.AsFloat32()
	gd := grad.AsFloat32()
	shape := op.x.Shape()
	width := shape[shape.Rank()-1]
	rows := len(yd) / width

	out := tensor.NewRaw(shape, tensor.Float32)
	od := out.AsFloat32()
	for r := 0; r < rows; r++ {
		base := r * width
		var dot float32
		for i := 0; i < width; i++ {
			dot += gd[base+i] * yd[base+i]
		}
		for i := 0; i < width; i++ {
			od[base+i] = yd[base+i] * (gd[base+i] - dot)
		}
	}
	return []*tensor.RawTensor{out}
}
