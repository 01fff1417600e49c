package nn

import (
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Linear is a fully connected layer, y = x W^T + b. The weight is stored
// as (outFeatures, inFeatures).
type Linear[B tensor.Backend] struct {
	weight *Parameter[B]
	bias   *Parameter[B]

	inFeatures  int
	outFeatures int
}

// NewLinear creates a Xavier-initialized linear layer. name prefixes the
// parameter names, giving name.weight and name.bias.
func NewLinear[B tensor.Backend](backend B, rng *rand.Rand, name string, inFeatures, outFeatures int) *Linear[B] {
	weight := XavierUniform(backend, rng, tensor.Shape{outFeatures, inFeatures}, inFeatures, outFeatures)
	bias := tensor.Zeros[float32](backend, tensor.Shape{outFeatures})
	return &Linear[B]{
		weight:      NewParameter(name+".weight", weight),
		bias:        NewParameter(name+".bias", bias),
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
	}
}

// Forward applies the layer to a (batch, inFeatures) input.
func (l *Linear[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.MatMul(l.weight.Tensor().T()).Add(l.bias.Tensor().Reshape(1, l.outFeatures))
}

// Parameters returns the weight and bias.
func (l *Linear[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{l.weight, l.bias}
}

// Weight returns the weight parameter.
func (l *Linear[B]) Weight() *Parameter[B] { return l.weight }
