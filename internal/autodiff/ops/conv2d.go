package ops

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// Conv2DOp records a 2D cross-correlation.
type Conv2DOp struct {
	backend       tensor.Backend
	input, kernel *tensor.RawTensor
	out           *tensor.RawTensor
	stride        int
	padding       int
}

func NewConv2DOp(backend tensor.Backend, input, kernel, out *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{backend: backend, input: input, kernel: kernel, out: out, stride: stride, padding: padding}
}

func (op *Conv2DOp) Output() *tensor.RawTensor   { return op.out }
func (op *Conv2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input, op.kernel} }

func (op *Conv2DOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		op.backend.Conv2DInputBackward(op.input, op.kernel, grad, op.stride, op.padding),
		op.backend.Conv2DKernelBackward(op.input, op.kernel, grad, op.stride, op.padding),
	}
}

// MaxPool2DOp records a max pooling together with the winning indices
// captured during the forward pass.
type MaxPool2DOp struct {
	backend    tensor.Backend
	input      *tensor.RawTensor
	out        *tensor.RawTensor
	maxIndices []int32
	kernelSize int
	stride     int
}

func NewMaxPool2DOp(backend tensor.Backend, input, out *tensor.RawTensor, maxIndices []int32, kernelSize, stride int) *MaxPool2DOp {
	return &MaxPool2DOp{backend: backend, input: input, out: out, maxIndices: maxIndices, kernelSize: kernelSize, stride: stride}
}

func (op *MaxPool2DOp) Output() *tensor.RawTensor   { return op.out }
func (op *MaxPool2DOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.input} }

func (op *MaxPool2DOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		op.backend.MaxPool2DBackward(op.input, grad, op.maxIndices, op.kernelSize, op.stride),
	}
}
