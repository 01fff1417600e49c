package nn

import (
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Dropout zeroes each element with probability p during training and
// rescales survivors by 1/(1-p). In evaluation mode it is the identity.
// The mask is a constant tensor, so gradients flow through the surviving
// elements only.
type Dropout[B tensor.Backend] struct {
	p        float32
	rng      *rand.Rand
	training bool
}

func NewDropout[B tensor.Backend](rng *rand.Rand, p float32) *Dropout[B] {
	return &Dropout[B]{p: p, rng: rng, training: true}
}

// SetTraining switches between training and evaluation behavior.
func (d *Dropout[B]) SetTraining(training bool) { d.training = training }

func (d *Dropout[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !d.training || d.p == 0 {
		return x
	}
	mask := tensor.New[float32](x.Backend(), x.Shape())
	md := mask.Data()
	scale := 1 / (1 - d.p)
	for i := range md {
		if d.rng.Float32() >= d.p {
			md[i] = scale
		}
	}
	return x.Mul(mask)
}

func (d *Dropout[B]) Parameters() []*Parameter[B] { return nil }
