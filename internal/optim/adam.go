package optim

import (
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Adam implements the Adam optimizer with bias-corrected first and second
// moment estimates.
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	lr     float32
	beta1  float32
	beta2  float32
	eps    float32

	m    map[*nn.Parameter[B]][]float32
	v    map[*nn.Parameter[B]][]float32
	step int
}

// NewAdam creates an Adam optimizer with the standard betas 0.9/0.999.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], lr float32) *Adam[B] {
	return &Adam[B]{
		params: params,
		lr:     lr,
		beta1:  0.9,
		beta2:  0.999,
		eps:    1e-8,
		m:      make(map[*nn.Parameter[B]][]float32),
		v:      make(map[*nn.Parameter[B]][]float32),
	}
}

func (a *Adam[B]) LearningRate() float32 { return a.lr }

func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.step++
	correction1 := 1 - float32(math.Pow(float64(a.beta1), float64(a.step)))
	correction2 := 1 - float32(math.Pow(float64(a.beta2), float64(a.step)))

	for _, p := range a.params {
		g := gradFor(grads, p)
		if g == nil {
			continue
		}
		data := p.Data()
		m, ok := a.m[p]
		if !ok {
			m = make([]float32, len(data))
			a.m[p] = m
		}
		v, ok := a.v[p]
		if !ok {
			v = make([]float32, len(data))
			a.v[p] = v
		}
		for i := range data {
			m[i] = a.beta1*m[i] + (1-a.beta1)*g[i]
			v[i] = a.beta2*v[i] + (1-a.beta2)*g[i]*g[i]
			mHat := m[i] / correction1
			vHat := v[i] / correction2
			data[i] -= a.lr * mHat / (float32(math.Sqrt(float64(vHat))) + a.eps)
		}
	}
}
