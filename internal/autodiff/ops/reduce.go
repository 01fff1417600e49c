package ops

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// SumDimOp records a sum along one dimension.
type SumDimOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
	dim int
}

func NewSumDimOp(x, out *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{x: x, out: out, dim: dim}
}

func (op *SumDimOp) Output() *tensor.RawTensor   { return op.out }
func (op *SumDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *SumDimOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{expandDim(grad, op.x.Shape(), op.dim, 1)}
}

// MeanDimOp records an average along one dimension.
type MeanDimOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
	dim int
}

func NewMeanDimOp(x, out *tensor.RawTensor, dim int) *MeanDimOp {
	return &MeanDimOp{x: x, out: out, dim: dim}
}

func (op *MeanDimOp) Output() *tensor.RawTensor   { return op.out }
func (op *MeanDimOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *MeanDimOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	shape := op.x.Shape()
	width := shape[shape.Normalize(op.dim)]
	return []*tensor.RawTensor{expandDim(grad, shape, op.dim, 1/float32(width))}
}

// ReshapeOp records a view with a different shape.
type ReshapeOp struct {
	backend tensor.Backend
	x       *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewReshapeOp(backend tensor.Backend, x, out *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{backend: backend, x: x, out: out}
}

func (op *ReshapeOp) Output() *tensor.RawTensor   { return op.out }
func (op *ReshapeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *ReshapeOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{op.backend.Reshape(grad, op.x.Shape())}
}

// TransposeOp records a dimension permutation.
type TransposeOp struct {
	backend tensor.Backend
	x       *tensor.RawTensor
	out     *tensor.RawTensor
	axes    []int
}

func NewTransposeOp(backend tensor.Backend, x, out *tensor.RawTensor, axes []int) *TransposeOp {
	if len(axes) == 0 {
		rank := x.Shape().Rank()
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	return &TransposeOp{backend: backend, x: x, out: out, axes: axes}
}

func (op *TransposeOp) Output() *tensor.RawTensor   { return op.out }
func (op *TransposeOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *TransposeOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	inverse := make([]int, len(op.axes))
	for i, ax := range op.axes {
		if ax < 0 {
			ax += len(op.axes)
		}
		inverse[ax] = i
	}
	return []*tensor.RawTensor{op.backend.Transpose(grad, inverse...)}
}
