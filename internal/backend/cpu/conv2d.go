package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Conv2D cross-correlates NCHW input with an (outC, inC, kh, kw) kernel
// using im2col followed by a GEMM per batch item.
func (b *Backend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	in := mustFloat32(input, "Conv2D")
	kd := mustFloat32(kernel, "Conv2D")
	is, ks := input.Shape(), kernel.Shape()
	if is.Rank() != 4 || ks.Rank() != 4 {
		panic(fmt.Sprintf("cpu: Conv2D requires 4D tensors, got %v and %v", is, ks))
	}
	n, inC, inH, inW := is[0], is[1], is[2], is[3]
	outC, kC, kh, kw := ks[0], ks[1], ks[2], ks[3]
	if kC != inC {
		panic(fmt.Sprintf("cpu: Conv2D channel mismatch: input %v, kernel %v", is, ks))
	}
	outH := (inH+2*padding-kh)/stride + 1
	outW := (inW+2*padding-kw)/stride + 1
	if outH <= 0 || outW <= 0 {
		panic(fmt.Sprintf("cpu: Conv2D output would be empty for input %v, kernel %v, stride %d, padding %d",
			is, ks, stride, padding))
	}

	out := tensor.NewRaw(tensor.Shape{n, outC, outH, outW}, tensor.Float32)
	od := out.AsFloat32()

	patches := outH * outW
	patchLen := inC * kh * kw
	inStride := inC * inH * inW
	outStride := outC * patches

	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, n, func(bi int) {
		col := make([]float32, patches*patchLen)
		im2col(in[bi*inStride:(bi+1)*inStride], col, inC, inH, inW, kh, kw, stride, padding, outH, outW)
		// out[bi] = kernel (outC, patchLen) @ col^T (patchLen, patches)
		blas32.Gemm(blas.NoTrans, blas.Trans, 1,
			blas32.General{Rows: outC, Cols: patchLen, Stride: patchLen, Data: kd},
			blas32.General{Rows: patches, Cols: patchLen, Stride: patchLen, Data: col},
			0,
			blas32.General{Rows: outC, Cols: patches, Stride: patches, Data: od[bi*outStride : (bi+1)*outStride]})
	})
	return out
}

// im2col unrolls every receptive field of a single CHW image into a row
// of col, which must hold outH*outW rows of inC*kh*kw elements.
func im2col(img, col []float32, inC, inH, inW, kh, kw, stride, padding, outH, outW int) {
	row := 0
	for oh := 0; oh < outH; oh++ {
		for ow := 0; ow < outW; ow++ {
			base := row * inC * kh * kw
			row++
			for c := 0; c < inC; c++ {
				for y := 0; y < kh; y++ {
					ih := oh*stride + y - padding
					for x := 0; x < kw; x++ {
						iw := ow*stride + x - padding
						dst := base + (c*kh+y)*kw + x
						if ih < 0 || ih >= inH || iw < 0 || iw >= inW {
							col[dst] = 0
							continue
						}
						col[dst] = img[(c*inH+ih)*inW+iw]
					}
				}
			}
		}
	}
}
