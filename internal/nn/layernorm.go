package nn

import "github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"

// LayerNorm normalizes the last dimension to zero mean and unit variance,
// then applies a learned elementwise affine transform.
type LayerNorm[B tensor.Backend] struct {
	gamma *Parameter[B]
	beta  *Parameter[B]
	eps   float32
}

func NewLayerNorm[B tensor.Backend](backend B, name string, dim int) *LayerNorm[B] {
	return &LayerNorm[B]{
		gamma: NewParameter(name+".weight", tensor.Ones[float32](backend, tensor.Shape{dim})),
		beta:  NewParameter(name+".bias", tensor.Zeros[float32](backend, tensor.Shape{dim})),
		eps:   1e-5,
	}
}

// Forward normalizes (..., dim) input along its last dimension.
func (ln *LayerNorm[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	mean := x.MeanDim(-1, true)
	centered := x.Sub(mean)
	variance := centered.Mul(centered).MeanDim(-1, true)
	normed := centered.Mul(variance.AddScalar(ln.eps).Rsqrt())
	return normed.Mul(ln.gamma.Tensor()).Add(ln.beta.Tensor())
}

func (ln *LayerNorm[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{ln.gamma, ln.beta}
}
