// Package optim implements gradient descent optimizers over nn parameters.
package optim

import (
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Optimizer updates parameters in place from a gradient map produced by a
// tape's Backward, keyed on each parameter's raw tensor. Parameters with
// no entry in the map are left untouched.
type Optimizer[B tensor.Backend] interface {
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)
	LearningRate() float32
}

func gradFor[B tensor.Backend](grads map[*tensor.RawTensor]*tensor.RawTensor, p *nn.Parameter[B]) []float32 {
	g, ok := grads[p.Raw()]
	if !ok {
		return nil
	}
	return g.AsFloat32()
}
