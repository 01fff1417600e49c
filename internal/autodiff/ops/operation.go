// Package ops defines the differentiable operations recorded on a
// gradient tape. Each operation captures its inputs and output at forward
// time and knows how to turn an output gradient into input gradients.
package ops

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// Operation is one recorded step of a forward pass.
type Operation interface {
	// Output returns the tensor this operation produced.
	Output() *tensor.RawTensor
	// Inputs returns the tensors this operation consumed, in order.
	Inputs() []*tensor.RawTensor
	// Backward maps the gradient of the output to gradients of the
	// inputs, aligned with Inputs(). A nil entry means no gradient
	// flows to that input.
	Backward(grad *tensor.RawTensor) []*tensor.RawTensor
}
