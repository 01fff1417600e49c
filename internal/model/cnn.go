package model

import (
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// CNN is a three-layer convolutional classifier:
//
//	conv 1->64 k3, relu, maxpool 2
//	conv 64->64 k3, relu, maxpool 2
//	conv 64->64 k3, dropout 0.2
//	flatten, linear 576->10
type CNN[B tensor.Backend] struct {
	conv1   *nn.Conv2D[B]
	conv2   *nn.Conv2D[B]
	conv3   *nn.Conv2D[B]
	pool    *nn.MaxPool2D[B]
	dropout *nn.Dropout[B]
	fc      *nn.Linear[B]
}

// NewCNN builds a CNN with Xavier-initialized weights drawn from rng.
func NewCNN[B tensor.Backend](backend B, rng *rand.Rand) *CNN[B] {
	return &CNN[B]{
		conv1:   nn.NewConv2D(backend, rng, "conv1", 1, 64, 3, 1, 0),
		conv2:   nn.NewConv2D(backend, rng, "conv2", 64, 64, 3, 1, 0),
		conv3:   nn.NewConv2D(backend, rng, "conv3", 64, 64, 3, 1, 0),
		pool:    nn.NewMaxPool2D[B](2, 2),
		dropout: nn.NewDropout[B](rng, 0.2),
		fc:      nn.NewLinear(backend, rng, "fc", 576, NumClasses),
	}
}

func (m *CNN[B]) Name() string { return "cnn" }

// Forward computes logits for (n, 1, 28, 28) input.
func (m *CNN[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	logits, _ := m.forward(x, false)
	return logits
}

// ForwardWithActivations additionally returns the raw output of each
// convolution, for feature map visualization.
func (m *CNN[B]) ForwardWithActivations(x *tensor.Tensor[float32, B]) (*tensor.Tensor[float32, B], []*tensor.Tensor[float32, B]) {
	return m.forward(x, true)
}

func (m *CNN[B]) forward(x *tensor.Tensor[float32, B], keepActivations bool) (*tensor.Tensor[float32, B], []*tensor.Tensor[float32, B]) {
	var activations []*tensor.Tensor[float32, B]
	record := func(t *tensor.Tensor[float32, B]) {
		if keepActivations {
			activations = append(activations, t)
		}
	}

	c1 := m.conv1.Forward(x) // (n, 64, 26, 26)
	record(c1)
	x = m.pool.Forward(c1.ReLU()) // (n, 64, 13, 13)

	c2 := m.conv2.Forward(x) // (n, 64, 11, 11)
	record(c2)
	x = m.pool.Forward(c2.ReLU()) // (n, 64, 5, 5)

	c3 := m.conv3.Forward(x) // (n, 64, 3, 3)
	record(c3)
	x = m.dropout.Forward(c3)

	return m.fc.Forward(x.Flatten()), activations
}

// Kernels returns the convolution weights by layer, each shaped
// (outC, inC, k, k).
func (m *CNN[B]) Kernels() []*tensor.Tensor[float32, B] {
	return []*tensor.Tensor[float32, B]{
		m.conv1.Weight().Tensor(),
		m.conv2.Weight().Tensor(),
		m.conv3.Weight().Tensor(),
	}
}

func (m *CNN[B]) Parameters() []*nn.Parameter[B] {
	var params []*nn.Parameter[B]
	params = append(params, m.conv1.Parameters()...)
	params = append(params, m.conv2.Parameters()...)
	params = append(params, m.conv3.Parameters()...)
	params = append(params, m.fc.Parameters()...)
	return params
}

func (m *CNN[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(m.Parameters())
}

func (m *CNN[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadStateDict(m.Parameters(), state)
}

func (m *CNN[B]) SetTraining(training bool) {
	m.dropout.SetTraining(training)
}
