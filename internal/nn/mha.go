package nn

import (
	"fmt"
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// MultiHeadAttention is standard multi-head self-attention over
// (batch, seq, embedDim) input.
type MultiHeadAttention[B tensor.Backend] struct {
	wq, wk, wv, wo *Linear[B]

	embedDim int
	numHeads int
	headDim  int
}

func NewMultiHeadAttention[B tensor.Backend](backend B, rng *rand.Rand, name string, embedDim, numHeads int) *MultiHeadAttention[B] {
	if embedDim%numHeads != 0 {
		panic(fmt.Sprintf("nn: embed dim %d not divisible by %d heads", embedDim, numHeads))
	}
	return &MultiHeadAttention[B]{
		wq:       NewLinear(backend, rng, name+".wq", embedDim, embedDim),
		wk:       NewLinear(backend, rng, name+".wk", embedDim, embedDim),
		wv:       NewLinear(backend, rng, name+".wv", embedDim, embedDim),
		wo:       NewLinear(backend, rng, name+".wo", embedDim, embedDim),
		embedDim: embedDim,
		numHeads: numHeads,
		headDim:  embedDim / numHeads,
	}
}

// Forward runs self-attention on (batch, seq, embedDim) input.
func (m *MultiHeadAttention[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := x.Shape()
	batch, seq := shape[0], shape[1]

	q := m.projectAndSplit(m.wq, x, batch, seq)
	k := m.projectAndSplit(m.wk, x, batch, seq)
	v := m.projectAndSplit(m.wv, x, batch, seq)

	attended := ScaledDotProductAttention(q, k, v)

	// (batch, heads, seq, headDim) -> (batch, seq, embedDim)
	merged := attended.Transpose(0, 2, 1, 3).Reshape(batch*seq, m.embedDim)
	return m.wo.Forward(merged).Reshape(batch, seq, m.embedDim)
}

// projectAndSplit applies a projection and splits the result into heads,
// returning (batch, heads, seq, headDim).
func (m *MultiHeadAttention[B]) projectAndSplit(lin *Linear[B], x *tensor.Tensor[float32, B], batch, seq int) *tensor.Tensor[float32, B] {
	p := lin.Forward(x.Reshape(batch*seq, m.embedDim))
	return p.Reshape(batch, seq, m.numHeads, m.headDim).Transpose(0, 2, 1, 3)
}

func (m *MultiHeadAttention[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, lin := range []*Linear[B]{m.wq, m.wk, m.wv, m.wo} {
		params = append(params, lin.Parameters()...)
	}
	return params
}
