// Package model defines the MNIST digit classifiers: a small CNN and a
// vision transformer behind a common interface.
package model

import (
	"fmt"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// NumClasses is the number of digit classes.
const NumClasses = 10

// Classifier maps a batch of (n, 1, 28, 28) images to (n, 10) logits.
type Classifier[B tensor.Backend] interface {
	// Forward computes class logits for a batch of images.
	Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]
	// Parameters returns every trainable parameter in a stable order.
	Parameters() []*nn.Parameter[B]
	// StateDict snapshots the parameters by name. The returned tensors
	// are copies, safe to mutate or serialize.
	StateDict() map[string]*tensor.RawTensor
	// LoadStateDict overwrites the parameters from a snapshot. It fails
	// when a parameter is missing or a shape disagrees, leaving
	// already-copied parameters modified.
	LoadStateDict(state map[string]*tensor.RawTensor) error
	// SetTraining switches train-only behavior such as dropout.
	SetTraining(training bool)
	// Name identifies the architecture, "cnn" or "transformer".
	Name() string
}

func stateDict[B tensor.Backend](params []*nn.Parameter[B]) map[string]*tensor.RawTensor {
	state := make(map[string]*tensor.RawTensor, len(params))
	for _, p := range params {
		state[p.Name()] = p.Raw().Clone()
	}
	return state
}

func loadStateDict[B tensor.Backend](params []*nn.Parameter[B], state map[string]*tensor.RawTensor) error {
	for _, p := range params {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("model: state dict is missing parameter %q", p.Name())
		}
		if err := p.CopyFrom(src); err != nil {
			return err
		}
	}
	return nil
}
