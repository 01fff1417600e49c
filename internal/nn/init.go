package nn

import (
	"math"
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// XavierUniform fills a new tensor with Glorot-uniform values, drawn from
// [-b, b] with b = sqrt(6 / (fanIn + fanOut)).
func XavierUniform[B tensor.Backend](backend B, rng *rand.Rand, shape tensor.Shape, fanIn, fanOut int) *tensor.Tensor[float32, B] {
	bound := float32(math.Sqrt(6 / float64(fanIn+fanOut)))
	return tensor.Uniform(backend, rng, shape, -bound, bound)
}
