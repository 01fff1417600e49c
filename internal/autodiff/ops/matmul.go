package ops

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// MatMulOp records the 2D matrix product a @ b.
type MatMulOp struct {
	backend tensor.Backend
	a, b    *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewMatMulOp(backend tensor.Backend, a, b, out *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{backend: backend, a: a, b: b, out: out}
}

func (op *MatMulOp) Output() *tensor.RawTensor   { return op.out }
func (op *MatMulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }

func (op *MatMulOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	b := op.backend
	// dA = grad @ B^T, dB = A^T @ grad
	gradA := b.MatMul(grad, b.Transpose(op.b, 1, 0))
	gradB := b.MatMul(b.Transpose(op.a, 1, 0), grad)
	return []*tensor.RawTensor{gradA, gradB}
}

// BatchMatMulOp records a batched matrix product over the trailing two
// dimensions.
type BatchMatMulOp struct {
	backend tensor.Backend
	a, b    *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewBatchMatMulOp(backend tensor.Backend, a, b, out *tensor.RawTensor) *BatchMatMulOp {
	return &BatchMatMulOp{backend: backend, a: a, b: b, out: out}
}

func (op *BatchMatMulOp) Output() *tensor.RawTensor   { return op.out }
func (op *BatchMatMulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }

func (op *BatchMatMulOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	b := op.backend
	gradA := b.BatchMatMul(grad, transposeLastTwo(b, op.b))
	gradB := b.BatchMatMul(transposeLastTwo(b, op.a), grad)
	return []*tensor.RawTensor{gradA, gradB}
}

func transposeLastTwo(b tensor.Backend, x *tensor.RawTensor) *tensor.RawTensor {
	rank := x.Shape().Rank()
	axes := make([]int, rank)
	for i := range axes {
		axes[i] = i
	}
	axes[rank-2], axes[rank-1] = axes[rank-1], axes[rank-2]
	return b.Transpose(x, axes...)
}
