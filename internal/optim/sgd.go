package optim

import (
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] struct {
	params   []*nn.Parameter[B]
	lr       float32
	momentum float32

	velocity map[*nn.Parameter[B]][]float32
}

func NewSGD[B tensor.Backend](params []*nn.Parameter[B], lr, momentum float32) *SGD[B] {
	return &SGD[B]{
		params:   params,
		lr:       lr,
		momentum: momentum,
		velocity: make(map[*nn.Parameter[B]][]float32),
	}
}

func (s *SGD[B]) LearningRate() float32 { return s.lr }

func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, p := range s.params {
		g := gradFor(grads, p)
		if g == nil {
			continue
		}
		data := p.Data()
		if s.momentum == 0 {
			for i := range data {
				data[i] -= s.lr * g[i]
			}
			continue
		}
		vel, ok := s.velocity[p]
		if !ok {
			vel = make([]float32, len(data))
			s.velocity[p] = vel
		}
		for i := range data {
			vel[i] = s.momentum*vel[i] + g[i]
			data[i] -= s.lr * vel[i]
		}
	}
}
