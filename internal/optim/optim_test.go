package optim_test

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/backend/cpu"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/optim"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

func newParam(b *cpu.Backend, values []float32) *nn.Parameter[*cpu.Backend] {
	t := tensor.FromSlice(b, values, tensor.Shape{len(values)})
	return nn.NewParameter("w", t)
}

func gradsOf(p *nn.Parameter[*cpu.Backend], values []float32) map[*tensor.RawTensor]*tensor.RawTensor {
	g := tensor.NewRaw(tensor.Shape{len(values)}, tensor.Float32)
	copy(g.AsFloat32(), values)
	return map[*tensor.RawTensor]*tensor.RawTensor{p.Raw(): g}
}

func TestSGDStep(t *testing.T) {
	b := cpu.New()
	p := newParam(b, []float32{1, 2})
	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, 0.1, 0)
	sgd.Step(gradsOf(p, []float32{1, -1}))
	assert.InDelta(t, 0.9, float64(p.Data()[0]), 1e-6)
	assert.InDelta(t, 2.1, float64(p.Data()[1]), 1e-6)
}

func TestSGDMomentumAccumulates(t *testing.T) {
	b := cpu.New()
	p := newParam(b, []float32{0})
	sgd := optim.NewSGD([]*nn.Parameter[*cpu.Backend]{p}, 1, 0.9)

	sgd.Step(gradsOf(p, []float32{1}))
	assert.InDelta(t, -1, float64(p.Data()[0]), 1e-6)

	// velocity = 0.9*1 + 1 = 1.9
	sgd.Step(gradsOf(p, []float32{1}))
	assert.InDelta(t, -2.9, float64(p.Data()[0]), 1e-6)
}

func TestAdamFirstStepMovesByLR(t *testing.T) {
	b := cpu.New()
	p := newParam(b, []float32{1, 1})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, 0.001)
	adam.Step(gradsOf(p, []float32{0.5, -0.5}))

	// Bias correction makes the first update approximately lr * sign(g).
	assert.InDelta(t, 1-0.001, float64(p.Data()[0]), 1e-5)
	assert.InDelta(t, 1+0.001, float64(p.Data()[1]), 1e-5)
}

func TestAdamConvergesOnQuadratic(t *testing.T) {
	b := cpu.New()
	p := newParam(b, []float32{5})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, 0.1)

	// Minimize f(x) = x^2 with df/dx = 2x.
	for i := 0; i < 500; i++ {
		adam.Step(gradsOf(p, []float32{2 * p.Data()[0]}))
	}
	assert.InDelta(t, 0, float64(p.Data()[0]), 0.05)
}

func TestStepSkipsParamsWithoutGrad(t *testing.T) {
	b := cpu.New()
	p := newParam(b, []float32{3})
	adam := optim.NewAdam([]*nn.Parameter[*cpu.Backend]{p}, 0.1)
	adam.Step(map[*tensor.RawTensor]*tensor.RawTensor{})
	assert.Equal(t, float32(3), p.Data()[0])
}

func TestLearningRateAccessors(t *testing.T) {
	b := cpu.New()
	p := newParam(b, []float32{0})
	params := []*nn.Parameter[*cpu.Backend]{p}
	assert.Equal(t, float32(0.01), optim.NewSGD(params, 0.01, 0.9).LearningRate())
	assert.Equal(t, float32(0.001), optim.NewAdam(params, 0.001).LearningRate())
}
