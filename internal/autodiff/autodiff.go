// Package autodiff provides reverse-mode automatic differentiation as a
// decorator around any tensor backend. Forward calls are delegated
// unchanged; while the tape is recording, each call also appends an
// operation that knows its own gradient.
package autodiff

import (
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/autodiff/ops"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// AutodiffBackend wraps an inner backend with gradient recording. It
// implements tensor.Backend itself, so tensors bound to it behave exactly
// like tensors on the inner backend.
type AutodiffBackend[B tensor.Backend] struct {
	backend B
	tape    *GradientTape
}

// New wraps backend with a fresh, non-recording tape.
func New[B tensor.Backend](backend B) *AutodiffBackend[B] {
	return &AutodiffBackend[B]{backend: backend, tape: NewGradientTape()}
}

// Tape returns the gradient tape.
func (a *AutodiffBackend[B]) Tape() *GradientTape { return a.tape }

// Inner returns the wrapped backend.
func (a *AutodiffBackend[B]) Inner() B { return a.backend }

func (a *AutodiffBackend[B]) Name() string   { return "autodiff(" + a.backend.Name() + ")" }
func (a *AutodiffBackend[B]) Device() string { return a.backend.Device() }

func (a *AutodiffBackend[B]) record(op ops.Operation) {
	if a.tape.IsRecording() {
		a.tape.Record(op)
	}
}

func (a *AutodiffBackend[B]) Add(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.Add(x, y)
	a.record(ops.NewAddOp(a.backend, x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Sub(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.Sub(x, y)
	a.record(ops.NewSubOp(a.backend, x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Mul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.Mul(x, y)
	a.record(ops.NewMulOp(a.backend, x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Div(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.Div(x, y)
	a.record(ops.NewDivOp(a.backend, x, y, out))
	return out
}

func (a *AutodiffBackend[B]) AddScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	out := a.backend.AddScalar(x, s)
	a.record(ops.NewAddScalarOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) MulScalar(x *tensor.RawTensor, s float32) *tensor.RawTensor {
	out := a.backend.MulScalar(x, s)
	a.record(ops.NewMulScalarOp(a.backend, x, s, out))
	return out
}

func (a *AutodiffBackend[B]) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.MatMul(x, y)
	a.record(ops.NewMatMulOp(a.backend, x, y, out))
	return out
}

func (a *AutodiffBackend[B]) BatchMatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.BatchMatMul(x, y)
	a.record(ops.NewBatchMatMulOp(a.backend, x, y, out))
	return out
}

func (a *AutodiffBackend[B]) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	out := a.backend.Conv2D(input, kernel, stride, padding)
	a.record(ops.NewConv2DOp(a.backend, input, kernel, out, stride, padding))
	return out
}

func (a *AutodiffBackend[B]) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return a.backend.Conv2DInputBackward(input, kernel, grad, stride, padding)
}

func (a *AutodiffBackend[B]) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	return a.backend.Conv2DKernelBackward(input, kernel, grad, stride, padding)
}

func (a *AutodiffBackend[B]) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) (*tensor.RawTensor, []int32) {
	out, indices := a.backend.MaxPool2D(input, kernelSize, stride)
	a.record(ops.NewMaxPool2DOp(a.backend, input, out, indices, kernelSize, stride))
	return out, indices
}

func (a *AutodiffBackend[B]) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int32, kernelSize, stride int) *tensor.RawTensor {
	return a.backend.MaxPool2DBackward(input, grad, maxIndices, kernelSize, stride)
}

func (a *AutodiffBackend[B]) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.ReLU(x)
	a.record(ops.NewReLUOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) GELU(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.GELU(x)
	a.record(ops.NewGELUOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Rsqrt(x *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.Rsqrt(x)
	a.record(ops.NewRsqrtOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	out := a.backend.Softmax(x, dim)
	a.record(ops.NewSoftmaxOp(x, out))
	return out
}

func (a *AutodiffBackend[B]) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := a.backend.SumDim(x, dim, keepDim)
	a.record(ops.NewSumDimOp(x, out, dim))
	return out
}

func (a *AutodiffBackend[B]) MeanDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	out := a.backend.MeanDim(x, dim, keepDim)
	a.record(ops.NewMeanDimOp(x, out, dim))
	return out
}

func (a *AutodiffBackend[B]) Reshape(x *tensor.RawTensor, shape tensor.Shape) *tensor.RawTensor {
	out := a.backend.Reshape(x, shape)
	a.record(ops.NewReshapeOp(a.backend, x, out))
	return out
}

func (a *AutodiffBackend[B]) Transpose(x *tensor.RawTensor, axes ...int) *tensor.RawTensor {
	out := a.backend.Transpose(x, axes...)
	a.record(ops.NewTransposeOp(a.backend, x, out, axes))
	return out
}

func (a *AutodiffBackend[B]) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	out := a.backend.CrossEntropy(logits, targets)
	a.record(ops.NewCrossEntropyOp(logits, targets, out))
	return out
}

var _ tensor.Backend = (*AutodiffBackend[tensor.Backend])(nil)
