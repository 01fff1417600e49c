package cpu

import (
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Conv2DInputBackward computes the gradient of a Conv2D with respect to
// its input: a full correlation of the output gradient with the kernel.
func (b *Backend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	kd := mustFloat32(kernel, "Conv2DInputBackward")
	gd := mustFloat32(grad, "Conv2DInputBackward")
	is, ks, gs := input.Shape(), kernel.Shape(), grad.Shape()
	n, inC, inH, inW := is[0], is[1], is[2], is[3]
	outC, _, kh, kw := ks[0], ks[1], ks[2], ks[3]
	outH, outW := gs[2], gs[3]

	out := tensor.NewRaw(is, tensor.Float32)
	od := out.AsFloat32()
	inStride := inC * inH * inW
	gradStride := outC * outH * outW

	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, n, func(bi int) {
		dIn := od[bi*inStride : (bi+1)*inStride]
		g := gd[bi*gradStride : (bi+1)*gradStride]
		for oc := 0; oc < outC; oc++ {
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					gv := g[(oc*outH+oh)*outW+ow]
					if gv == 0 {
						continue
					}
					for c := 0; c < inC; c++ {
						for y := 0; y < kh; y++ {
							ih := oh*stride + y - padding
							if ih < 0 || ih >= inH {
								continue
							}
							for x := 0; x < kw; x++ {
								iw := ow*stride + x - padding
								if iw < 0 || iw >= inW {
									continue
								}
								dIn[(c*inH+ih)*inW+iw] += kd[((oc*inC+c)*kh+y)*kw+x] * gv
							}
						}
					}
				}
			}
		}
	})
	return out
}

// Conv2DKernelBackward computes the gradient of a Conv2D with respect to
// its kernel by correlating the input with the output gradient.
func (b *Backend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	in := mustFloat32(input, "Conv2DKernelBackward")
	gd := mustFloat32(grad, "Conv2DKernelBackward")
	is, ks, gs := input.Shape(), kernel.Shape(), grad.Shape()
	n, inC, inH, inW := is[0], is[1], is[2], is[3]
	outC, _, kh, kw := ks[0], ks[1], ks[2], ks[3]
	outH, outW := gs[2], gs[3]

	out := tensor.NewRaw(ks, tensor.Float32)
	od := out.AsFloat32()
	inStride := inC * inH * inW
	gradStride := outC * outH * outW

	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, outC, func(oc int) {
		for bi := 0; bi < n; bi++ {
			img := in[bi*inStride : (bi+1)*inStride]
			g := gd[bi*gradStride : (bi+1)*gradStride]
			for oh := 0; oh < outH; oh++ {
				for ow := 0; ow < outW; ow++ {
					gv := g[(oc*outH+oh)*outW+ow]
					if gv == 0 {
						continue
					}
					for c := 0; c < inC; c++ {
						for y := 0; y < kh; y++ {
							ih := oh*stride + y - padding
							if ih < 0 || ih >= inH {
								continue
							}
							for x := 0; x < kw; x++ {
								iw := ow*stride + x - padding
								if iw < 0 || iw >= inW {
									continue
								}
								od[((oc*inC+c)*kh+y)*kw+x] += img[(c*inH+ih)*inW+iw] * gv
							}
						}
					}
				}
			}
		}
	})
	return out
}
