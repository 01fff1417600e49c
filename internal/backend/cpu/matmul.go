package cpu

import (
	"fmt"

	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// MatMul multiplies two 2D tensors via single-precision GEMM.
func (b *Backend) MatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xd := mustFloat32(x, "MatMul")
	yd := mustFloat32(y, "MatMul")
	xs, ys := x.Shape(), y.Shape()
	if xs.Rank() != 2 || ys.Rank() != 2 {
		panic(fmt.Sprintf("cpu: MatMul requires 2D tensors, got %v and %v", xs, ys))
	}
	m, k := xs[0], xs[1]
	if ys[0] != k {
		panic(fmt.Sprintf("cpu: MatMul dimension mismatch: %v x %v", xs, ys))
	}
	n := ys[1]

	out := tensor.NewRaw(tensor.Shape{m, n}, tensor.Float32)
	gemm(m, n, k, xd, yd, out.AsFloat32())
	return out
}

// BatchMatMul multiplies the trailing two dimensions of equally batched
// tensors. Batches run in parallel, one GEMM each.
func (b *Backend) BatchMatMul(x, y *tensor.RawTensor) *tensor.RawTensor {
	xd := mustFloat32(x, "BatchMatMul")
	yd := mustFloat32(y, "BatchMatMul")
	xs, ys := x.Shape(), y.Shape()
	if xs.Rank() < 3 || xs.Rank() != ys.Rank() {
		panic(fmt.Sprintf("cpu: BatchMatMul requires equal-rank batched tensors, got %v and %v", xs, ys))
	}
	batch := 1
	for d := 0; d < xs.Rank()-2; d++ {
		if xs[d] != ys[d] {
			panic(fmt.Sprintf("cpu: BatchMatMul batch mismatch: %v x %v", xs, ys))
		}
		batch *= xs[d]
	}
	m, k := xs[xs.Rank()-2], xs[xs.Rank()-1]
	if ys[ys.Rank()-2] != k {
		panic(fmt.Sprintf("cpu: BatchMatMul dimension mismatch: %v x %v", xs, ys))
	}
	n := ys[ys.Rank()-1]

	outShape := xs.Clone()
	outShape[len(outShape)-1] = n
	out := tensor.NewRaw(outShape, tensor.Float32)
	od := out.AsFloat32()

	cfg := b.parallel
	cfg.MinChunkSize = 1
	parallel.For(cfg, batch, func(i int) {
		gemm(m, n, k, xd[i*m*k:(i+1)*m*k], yd[i*k*n:(i+1)*k*n], od[i*m*n:(i+1)*m*n])
	})
	return out
}

// gemm computes c = a @ b for row-major float32 buffers.
func gemm(m, n, k int, a, b, c []float32) {
	blas32.Gemm(blas.NoTrans, blas.NoTrans, 1,
		blas32.General{Rows: m, Cols: k, Stride: k, Data: a},
		blas32.General{Rows: k, Cols: n, Stride: n, Data: b},
		0,
		blas32.General{Rows: m, Cols: n, Stride: n, Data: c})
}
