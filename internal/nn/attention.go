package nn

import (
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// ScaledDotProductAttention computes softmax(Q K^T / sqrt(dk)) V for
// (batch, heads, seq, headDim) tensors.
func ScaledDotProductAttention[B tensor.Backend](query, key, value *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	headDim := query.Shape()[query.Shape().Rank()-1]
	kT := key.Transpose(0, 1, 3, 2)
	scores := query.BatchMatMul(kT).MulScalar(float32(1 / math.Sqrt(float64(headDim))))
	return scores.Softmax(-1).BatchMatMul(value)
}
