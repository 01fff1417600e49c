package model

import (
	"fmt"
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

const (
	patchSize  = 14
	numPatches = 4 // (28/14)^2
	embedDim   = 128
	numBlocks  = 6
	numHeads   = 8
	mlpDim     = 128
)

// ViT is a small vision transformer. The image is cut into four 14x14
// patches by a strided convolution, given a learned positional embedding,
// run through pre-norm encoder blocks and mean-pooled into a linear head.
type ViT[B tensor.Backend] struct {
	patchEmbed *nn.Conv2D[B]
	posEmbed   *nn.Parameter[B]
	blocks     []*nn.TransformerBlock[B]
	norm       *nn.LayerNorm[B]
	head       *nn.Linear[B]
}

// NewViT builds a vision transformer with Xavier-initialized weights.
func NewViT[B tensor.Backend](backend B, rng *rand.Rand) *ViT[B] {
	m := &ViT[B]{
		patchEmbed: nn.NewConv2D(backend, rng, "patch_embed", 1, embedDim, patchSize, patchSize, 0),
		posEmbed: nn.NewParameter("pos_embed",
			tensor.Randn(backend, rng, tensor.Shape{1, numPatches, embedDim}, 0, 0.02)),
		norm: nn.NewLayerNorm(backend, "norm", embedDim),
		head: nn.NewLinear(backend, rng, "head", embedDim, NumClasses),
	}
	for i := 0; i < numBlocks; i++ {
		name := fmt.Sprintf("blocks.%d", i)
		m.blocks = append(m.blocks, nn.NewTransformerBlock(backend, rng, name, embedDim, numHeads, mlpDim))
	}
	return m
}

func (m *ViT[B]) Name() string { return "transformer" }

// Forward computes logits for (n, 1, 28, 28) input.
func (m *ViT[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	batch := x.Shape()[0]

	// (n, 1, 28, 28) -> (n, embedDim, 2, 2) -> (n, patches, embedDim)
	patches := m.patchEmbed.Forward(x).
		Reshape(batch, embedDim, numPatches).
		Transpose(0, 2, 1)
	h := patches.Add(m.posEmbed.Tensor())

	for _, block := range m.blocks {
		h = block.Forward(h)
	}
	h = m.norm.Forward(h)

	pooled := h.MeanDim(1, false) // (n, embedDim)
	return m.head.Forward(pooled)
}

func (m *ViT[B]) Parameters() []*nn.Parameter[B] {
	params := append([]*nn.Parameter[B]{}, m.patchEmbed.Parameters()...)
	params = append(params, m.posEmbed)
	for _, block := range m.blocks {
		params = append(params, block.Parameters()...)
	}
	params = append(params, m.norm.Parameters()...)
	params = append(params, m.head.Parameters()...)
	return params
}

func (m *ViT[B]) StateDict() map[string]*tensor.RawTensor {
	return stateDict(m.Parameters())
}

func (m *ViT[B]) LoadStateDict(state map[string]*tensor.RawTensor) error {
	return loadStateDict(m.Parameters(), state)
}

// SetTraining is a no-op; the transformer variant uses no dropout.
func (m *ViT[B]) SetTraining(training bool) {}
