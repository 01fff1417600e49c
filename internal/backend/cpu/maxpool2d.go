package cpu

import (
	"fmt"
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// MaxPool2D pools NCHW input over square windows. It also returns the flat
// input offset of each window's maximum, which MaxPool2DBackward scatters
// gradients back through.
func (b *Backend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) (*tensor.RawTensor, []int32) {
	in := mustFloat32(input, "MaxPool2D")
	is := input.Shape()
	if is.Rank() != 4 {
		panic(fmt.Sprintf("cpu: MaxPool2D requires a 4D tensor, got %v", is))
	}
	n, c, inH, inW := is[0], is[1], is[2], is[3]
	outH := (inH-kernelSize)/stride + 1
	outW := (inW-kernelSize)/stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("cpu: MaxPool2D window %d stride %d does not fit input %v", kernelSize, stride, is))
	}

	out := tensor.NewRaw(tensor.Shape{n, c, outH, outW}, tensor.Float32)
	od := out.AsFloat32()
	indices := make([]int32, len(od))

	planes := n * c
	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, planes, func(p int) {
		inBase := p * inH * inW
		outBase := p * outH * outW
		for oh := 0; oh < outH; oh++ {
			for ow := 0; ow < outW; ow++ {
				best := float32(math.Inf(-1))
				bestIdx := -1
				for y := 0; y < kernelSize; y++ {
					ih := oh*stride + y
					for x := 0; x < kernelSize; x++ {
						iw := ow*stride + x
						idx := inBase + ih*inW + iw
						if v := in[idx]; v > best {
							best = v
							bestIdx = idx
						}
					}
				}
				oi := outBase + oh*outW + ow
				od[oi] = best
				indices[oi] = int32(bestIdx)
			}
		}
	})
	return out, indices
}

// MaxPool2DBackward routes each output gradient to the input position that
// produced the corresponding maximum.
func (b *Backend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int32, kernelSize, stride int) *tensor.RawTensor {
	gd := mustFloat32(grad, "MaxPool2DBackward")
	if len(gd) != len(maxIndices) {
		panic(fmt.Sprintf("cpu: MaxPool2DBackward has %d gradients but %d indices", len(gd), len(maxIndices)))
	}
	out := tensor.NewRaw(input.Shape(), tensor.Float32)
	od := out.AsFloat32()
	for i, idx := range maxIndices {
		od[idx] += gd[i]
	}
	return out
}
