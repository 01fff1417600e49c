// Package nn provides neural network layers built on the tensor package.
// Layers hold float32 parameters and compose through the Module interface.
package nn

import (
	"fmt"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Parameter is a named, trainable tensor. Optimizers key their per-weight
// state on the parameter pointer; checkpoints key on the name.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewParameter wraps t as a trainable parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter's checkpoint key, e.g. "conv1.weight".
func (p *Parameter[B]) Name() string { return p.name }

// Tensor returns the underlying tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] { return p.tensor }

// Raw returns the parameter's raw tensor. Gradient maps produced by the
// tape are keyed on this pointer.
func (p *Parameter[B]) Raw() *tensor.RawTensor { return p.tensor.Raw() }

// Data returns the parameter values as a mutable slice.
func (p *Parameter[B]) Data() []float32 { return p.tensor.Data() }

// CopyFrom overwrites the parameter values from src, which must have the
// same shape.
func (p *Parameter[B]) CopyFrom(src *tensor.RawTensor) error {
	if !src.Shape().Equal(p.tensor.Shape()) {
		return fmt.Errorf("nn: parameter %q has shape %v, checkpoint tensor has %v",
			p.name, p.tensor.Shape(), src.Shape())
	}
	copy(p.tensor.Raw().Bytes(), src.Bytes())
	return nil
}

// Module is anything with trainable parameters.
type Module[B tensor.Backend] interface {
	// Parameters returns every trainable parameter, in a stable order.
	Parameters() []*Parameter[B]
}
