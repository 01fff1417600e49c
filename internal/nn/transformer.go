package nn

import (
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// TransformerBlock is a pre-norm encoder block: attention and a two-layer
// GELU MLP, each behind a layer norm with a residual connection.
type TransformerBlock[B tensor.Backend] struct {
	norm1 *LayerNorm[B]
	attn  *MultiHeadAttention[B]
	norm2 *LayerNorm[B]
	fc1   *Linear[B]
	fc2   *Linear[B]

	embedDim int
}

func NewTransformerBlock[B tensor.Backend](backend B, rng *rand.Rand, name string, embedDim, numHeads, mlpDim int) *TransformerBlock[B] {
	return &TransformerBlock[B]{
		norm1:    NewLayerNorm[B](backend, name+".norm1", embedDim),
		attn:     NewMultiHeadAttention(backend, rng, name+".attn", embedDim, numHeads),
		norm2:    NewLayerNorm[B](backend, name+".norm2", embedDim),
		fc1:      NewLinear(backend, rng, name+".mlp.fc1", embedDim, mlpDim),
		fc2:      NewLinear(backend, rng, name+".mlp.fc2", mlpDim, embedDim),
		embedDim: embedDim,
	}
}

// Forward runs the block on (batch, seq, embedDim) input.
func (b *TransformerBlock[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	x = x.Add(b.attn.Forward(b.norm1.Forward(x)))
	return x.Add(b.mlp(b.norm2.Forward(x)))
}

func (b *TransformerBlock[B]) mlp(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	batch, seq := shape[0], shape[1]
	h := b.fc1.Forward(x.Reshape(batch*seq, b.embedDim)).GELU()
	return b.fc2.Forward(h).Reshape(batch, seq, b.embedDim)
}

func (b *TransformerBlock[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	params = append(params, b.norm1.Parameters()...)
	params = append(params, b.attn.Parameters()...)
	params = append(params, b.norm2.Parameters()...)
	params = append(params, b.fc1.Parameters()...)
	params = append(params, b.fc2.Parameters()...)
	return params
}
