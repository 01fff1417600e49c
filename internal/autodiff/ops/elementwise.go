package ops

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// AddOp records a + b. Both inputs may have been broadcast.
type AddOp struct {
	backend tensor.Backend
	a, b    *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewAddOp(backend tensor.Backend, a, b, out *tensor.RawTensor) *AddOp {
	return &AddOp{backend: backend, a: a, b: b, out: out}
}

func (op *AddOp) Output() *tensor.RawTensor   { return op.out }
func (op *AddOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }

func (op *AddOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(op.backend, grad, op.a.Shape()),
		reduceBroadcast(op.backend, grad, op.b.Shape()),
	}
}

// SubOp records a - b.
type SubOp struct {
	backend tensor.Backend
	a, b    *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewSubOp(backend tensor.Backend, a, b, out *tensor.RawTensor) *SubOp {
	return &SubOp{backend: backend, a: a, b: b, out: out}
}

func (op *SubOp) Output() *tensor.RawTensor   { return op.out }
func (op *SubOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }

func (op *SubOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(op.backend, grad, op.a.Shape()),
		reduceBroadcast(op.backend, op.backend.MulScalar(grad, -1), op.b.Shape()),
	}
}

// MulOp records the elementwise product a * b.
type MulOp struct {
	backend tensor.Backend
	a, b    *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewMulOp(backend tensor.Backend, a, b, out *tensor.RawTensor) *MulOp {
	return &MulOp{backend: backend, a: a, b: b, out: out}
}

func (op *MulOp) Output() *tensor.RawTensor   { return op.out }
func (op *MulOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }

func (op *MulOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(op.backend, op.backend.Mul(grad, op.b), op.a.Shape()),
		reduceBroadcast(op.backend, op.backend.Mul(grad, op.a), op.b.Shape()),
	}
}

// DivOp records the elementwise quotient a / b.
type DivOp struct {
	backend tensor.Backend
	a, b    *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewDivOp(backend tensor.Backend, a, b, out *tensor.RawTensor) *DivOp {
	return &DivOp{backend: backend, a: a, b: b, out: out}
}

func (op *DivOp) Output() *tensor.RawTensor   { return op.out }
func (op *DivOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.a, op.b} }

func (op *DivOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	b := op.backend
	// d/da (a/b) = 1/b, d/db (a/b) = -a/b^2
	gradA := b.Div(grad, op.b)
	gradB := b.MulScalar(b.Div(b.Mul(grad, op.out), op.b), -1)
	return []*tensor.RawTensor{
		reduceBroadcast(b, gradA, op.a.Shape()),
		reduceBroadcast(b, gradB, op.b.Shape()),
	}
}

// MulScalarOp records x * s.
type MulScalarOp struct {
	backend tensor.Backend
	x       *tensor.RawTensor
	s       float32
	out     *tensor.RawTensor
}

func NewMulScalarOp(backend tensor.Backend, x *tensor.RawTensor, s float32, out *tensor.RawTensor) *MulScalarOp {
	return &MulScalarOp{backend: backend, x: x, s: s, out: out}
}

func (op *MulScalarOp) Output() *tensor.RawTensor   { return op.out }
func (op *MulScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *MulScalarOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{op.backend.MulScalar(grad, op.s)}
}

// AddScalarOp records x + s.
type AddScalarOp struct {
	x   *tensor.RawTensor
	out *tensor.RawTensor
}

func NewAddScalarOp(x *tensor.RawTensor, out *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{x: x, out: out}
}

func (op *AddScalarOp) Output() *tensor.RawTensor   { return op.out }
func (op *AddScalarOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.x} }

func (op *AddScalarOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	return []*tensor.RawTensor{grad}
}
