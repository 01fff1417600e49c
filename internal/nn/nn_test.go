package nn_test

import (
	"math"
	"math/rand"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/backend/cpu"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

func TestLinearForward(t *testing.T) {
	b := cpu.New()
	rng := rand.New(rand.NewSource(1))
	lin := nn.NewLinear(b, rng, "fc", 3, 2)

	// Known weights: y = x W^T + bias.
	copy(lin.Weight().Data(), []float32{1, 0, 0, 0, 1, 0})
	x := tensor.FromSlice(b, []float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3})
	out := lin.Forward(x)

	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{1, 2, 4, 5}, out.Data())
}

func TestLinearParameterNames(t *testing.T) {
	b := cpu.New()
	lin := nn.NewLinear(b, rand.New(rand.NewSource(1)), "head", 4, 2)
	params := lin.Parameters()
	require.Len(t, params, 2)
	assert.Equal(t, "head.weight", params[0].Name())
	assert.Equal(t, "head.bias", params[1].Name())
}

func TestXavierBoundsRespected(t *testing.T) {
	b := cpu.New()
	w := nn.XavierUniform(b, rand.New(rand.NewSource(2)), tensor.Shape{64, 64}, 64, 64)
	bound := float32(math.Sqrt(6.0 / 128))
	for _, v := range w.Data() {
		assert.LessOrEqual(t, v, bound)
		assert.GreaterOrEqual(t, v, -bound)
	}
}

func TestConv2DLayerShape(t *testing.T) {
	b := cpu.New()
	conv := nn.NewConv2D(b, rand.New(rand.NewSource(3)), "conv1", 1, 64, 3, 1, 0)
	x := tensor.New[float32](b, tensor.Shape{2, 1, 28, 28})
	out := conv.Forward(x)
	assert.Equal(t, tensor.Shape{2, 64, 26, 26}, out.Shape())
}

func TestConv2DBiasApplied(t *testing.T) {
	b := cpu.New()
	conv := nn.NewConv2D(b, rand.New(rand.NewSource(4)), "conv", 1, 2, 1, 1, 0)
	copy(conv.Weight().Data(), []float32{0, 0})
	copy(conv.Parameters()[1].Data(), []float32{5, -5})

	x := tensor.New[float32](b, tensor.Shape{1, 1, 2, 2})
	out := conv.Forward(x)
	d := out.Data()
	for i := 0; i < 4; i++ {
		assert.Equal(t, float32(5), d[i])
		assert.Equal(t, float32(-5), d[4+i])
	}
}

func TestMaxPool2DLayerShape(t *testing.T) {
	b := cpu.New()
	pool := nn.NewMaxPool2D[*cpu.Backend](2, 2)
	x := tensor.New[float32](b, tensor.Shape{1, 64, 26, 26})
	assert.Equal(t, tensor.Shape{1, 64, 13, 13}, pool.Forward(x).Shape())
}

func TestLayerNormNormalizes(t *testing.T) {
	b := cpu.New()
	ln := nn.NewLayerNorm[*cpu.Backend](b, "norm", 4)
	x := tensor.FromSlice(b, []float32{1, 2, 3, 4, 10, 20, 30, 40}, tensor.Shape{2, 4})
	out := ln.Forward(x)

	d := out.Data()
	for r := 0; r < 2; r++ {
		var mean float64
		for i := 0; i < 4; i++ {
			mean += float64(d[r*4+i])
		}
		mean /= 4
		assert.InDelta(t, 0, mean, 1e-5)

		var variance float64
		for i := 0; i < 4; i++ {
			diff := float64(d[r*4+i]) - mean
			variance += diff * diff
		}
		assert.InDelta(t, 1, variance/4, 1e-3)
	}
}

func TestDropoutEvalIsIdentity(t *testing.T) {
	b := cpu.New()
	drop := nn.NewDropout[*cpu.Backend](rand.New(rand.NewSource(5)), 0.5)
	drop.SetTraining(false)
	x := tensor.FromSlice(b, []float32{1, 2, 3, 4}, tensor.Shape{4})
	assert.Equal(t, []float32{1, 2, 3, 4}, drop.Forward(x).Data())
}

func TestDropoutTrainMasksAndRescales(t *testing.T) {
	b := cpu.New()
	drop := nn.NewDropout[*cpu.Backend](rand.New(rand.NewSource(6)), 0.5)
	x := tensor.Full[float32](b, tensor.Shape{10000}, 1)
	out := drop.Forward(x).Data()

	zeros := 0
	for _, v := range out {
		if v == 0 {
			zeros++
		} else {
			assert.Equal(t, float32(2), v)
		}
	}
	assert.InDelta(t, 5000, zeros, 300)
}

func TestMultiHeadAttentionShape(t *testing.T) {
	b := cpu.New()
	mha := nn.NewMultiHeadAttention(b, rand.New(rand.NewSource(7)), "attn", 16, 4)
	x := tensor.New[float32](b, tensor.Shape{2, 4, 16})
	assert.Equal(t, tensor.Shape{2, 4, 16}, mha.Forward(x).Shape())
	assert.Len(t, mha.Parameters(), 8)
}

func TestScaledDotProductAttentionUniformKeys(t *testing.T) {
	b := cpu.New()
	// Identical keys make attention an average of the values.
	q := tensor.Full[float32](b, tensor.Shape{1, 1, 2, 4}, 1)
	k := tensor.Full[float32](b, tensor.Shape{1, 1, 2, 4}, 1)
	v := tensor.FromSlice(b, []float32{0, 0, 0, 0, 2, 2, 2, 2}, tensor.Shape{1, 1, 2, 4})
	out := nn.ScaledDotProductAttention(q, k, v)
	for _, val := range out.Data() {
		assert.InDelta(t, 1, val, 1e-6)
	}
}

func TestTransformerBlockShapeAndParams(t *testing.T) {
	b := cpu.New()
	block := nn.NewTransformerBlock(b, rand.New(rand.NewSource(8)), "block0", 16, 4, 32)
	x := tensor.New[float32](b, tensor.Shape{2, 4, 16})
	assert.Equal(t, tensor.Shape{2, 4, 16}, block.Forward(x).Shape())
	// 2 norms x2 + 4 projections x2 + 2 mlp layers x2
	assert.Len(t, block.Parameters(), 16)

	names := map[string]bool{}
	for _, p := range block.Parameters() {
		names[p.Name()] = true
	}
	assert.True(t, names["block0.attn.wq.weight"])
	assert.True(t, names["block0.mlp.fc2.bias"])
}
