package cpu

import (
	"math"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

func raw(t *testing.T, data []float32, shape ...int) *tensor.RawTensor {
	t.Helper()
	rt := tensor.NewRaw(tensor.Shape(shape), tensor.Float32)
	require.Equal(t, len(data), rt.NumElements())
	copy(rt.AsFloat32(), data)
	return rt
}

func TestAddSameShape(t *testing.T) {
	b := NewWithConfig(parallel.SerialConfig())
	out := b.Add(raw(t, []float32{1, 2, 3, 4}, 2, 2), raw(t, []float32{10, 20, 30, 40}, 2, 2))
	assert.Equal(t, []float32{11, 22, 33, 44}, out.AsFloat32())
}

func TestAddBroadcastBias(t *testing.T) {
	b := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	bias := raw(t, []float32{10, 20, 30}, 1, 3)
	out := b.Add(x, bias)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
}

func TestAddShapeMismatchPanics(t *testing.T) {
	b := New()
	assert.Panics(t, func() {
		b.Add(raw(t, []float32{1, 2, 3}, 3), raw(t, []float32{1, 2}, 2))
	})
}

func TestSubAndDiv(t *testing.T) {
	b := New()
	x := raw(t, []float32{8, 6, 4, 2}, 4)
	y := raw(t, []float32{2, 2, 2, 2}, 4)
	assert.Equal(t, []float32{6, 4, 2, 0}, b.Sub(x, y).AsFloat32())
	assert.Equal(t, []float32{4, 3, 2, 1}, b.Div(x, y).AsFloat32())
}

func TestScalarOps(t *testing.T) {
	b := New()
	x := raw(t, []float32{1, -2, 3}, 3)
	assert.Equal(t, []float32{2, -4, 6}, b.MulScalar(x, 2).AsFloat32())
	assert.Equal(t, []float32{2, -1, 4}, b.AddScalar(x, 1).AsFloat32())
}

func TestMatMul(t *testing.T) {
	b := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	y := raw(t, []float32{7, 8, 9, 10, 11, 12}, 3, 2)
	out := b.MatMul(x, y)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestMatMulDimensionMismatchPanics(t *testing.T) {
	b := New()
	assert.Panics(t, func() {
		b.MatMul(raw(t, make([]float32, 6), 2, 3), raw(t, make([]float32, 4), 2, 2))
	})
}

func TestBatchMatMul(t *testing.T) {
	b := New()
	// Two 2x2 identity-ish batches.
	x := raw(t, []float32{
		1, 0, 0, 1,
		2, 0, 0, 2,
	}, 2, 2, 2)
	y := raw(t, []float32{
		5, 6, 7, 8,
		5, 6, 7, 8,
	}, 2, 2, 2)
	out := b.BatchMatMul(x, y)
	assert.Equal(t, tensor.Shape{2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{5, 6, 7, 8, 10, 12, 14, 16}, out.AsFloat32())
}

func TestConv2DKnownValues(t *testing.T) {
	b := New()
	input := raw(t, []float32{
		1, 2, 3,
		4, 5, 6,
		7, 8, 9,
	}, 1, 1, 3, 3)
	kernel := raw(t, []float32{1, 0, 0, 1}, 1, 1, 2, 2)
	out := b.Conv2D(input, kernel, 1, 0)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{6, 8, 12, 14}, out.AsFloat32())
}

func TestConv2DPadding(t *testing.T) {
	b := New()
	input := raw(t, []float32{1, 2, 3, 4}, 1, 1, 2, 2)
	kernel := raw(t, []float32{1}, 1, 1, 1, 1)
	out := b.Conv2D(input, kernel, 1, 1)
	assert.Equal(t, tensor.Shape{1, 1, 4, 4}, out.Shape())
	// Identity kernel with zero padding leaves the image centered.
	assert.Equal(t, float32(1), out.AsFloat32()[5])
	assert.Equal(t, float32(4), out.AsFloat32()[10])
	assert.Equal(t, float32(0), out.AsFloat32()[0])
}

func TestConv2DStride(t *testing.T) {
	b := New()
	input := raw(t, []float32{
		1, 2, 3, 4,
		5, 6, 7, 8,
		9, 10, 11, 12,
		13, 14, 15, 16,
	}, 1, 1, 4, 4)
	kernel := raw(t, []float32{1, 1, 1, 1}, 1, 1, 2, 2)
	out := b.Conv2D(input, kernel, 2, 0)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{14, 22, 46, 54}, out.AsFloat32())
}

func TestConv2DKernelBackwardMatchesManualSum(t *testing.T) {
	b := New()
	input := raw(t, []float32{1, 2, 3, 4}, 1, 1, 2, 2)
	kernel := raw(t, []float32{0}, 1, 1, 1, 1)
	grad := raw(t, []float32{1, 1, 1, 1}, 1, 1, 2, 2)
	dk := b.Conv2DKernelBackward(input, kernel, grad, 1, 0)
	assert.Equal(t, []float32{10}, dk.AsFloat32())
}

func TestConv2DInputBackwardDistributesKernel(t *testing.T) {
	b := New()
	input := raw(t, []float32{0, 0, 0, 0}, 1, 1, 2, 2)
	kernel := raw(t, []float32{3}, 1, 1, 1, 1)
	grad := raw(t, []float32{1, 2, 3, 4}, 1, 1, 2, 2)
	di := b.Conv2DInputBackward(input, kernel, grad, 1, 0)
	assert.Equal(t, []float32{3, 6, 9, 12}, di.AsFloat32())
}

func TestMaxPool2D(t *testing.T) {
	b := New()
	input := raw(t, []float32{
		1, 2, 5, 6,
		3, 4, 7, 8,
		9, 10, 13, 14,
		11, 12, 15, 16,
	}, 1, 1, 4, 4)
	out, indices := b.MaxPool2D(input, 2, 2)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{4, 8, 12, 16}, out.AsFloat32())
	assert.Equal(t, []int32{5, 7, 13, 15}, indices)
}

func TestMaxPool2DBackwardScatters(t *testing.T) {
	b := New()
	input := tensor.NewRaw(tensor.Shape{1, 1, 4, 4}, tensor.Float32)
	grad := raw(t, []float32{1, 2, 3, 4}, 1, 1, 2, 2)
	di := b.MaxPool2DBackward(input, grad, []int32{5, 7, 13, 15}, 2, 2)
	want := make([]float32, 16)
	want[5], want[7], want[13], want[15] = 1, 2, 3, 4
	assert.Equal(t, want, di.AsFloat32())
}

func TestReLU(t *testing.T) {
	b := New()
	out := b.ReLU(raw(t, []float32{-1, 0, 2, -3}, 4))
	assert.Equal(t, []float32{0, 0, 2, 0}, out.AsFloat32())
}

func TestGELU(t *testing.T) {
	b := New()
	out := b.GELU(raw(t, []float32{0, 100, -100}, 3)).AsFloat32()
	assert.Equal(t, float32(0), out[0])
	assert.InDelta(t, 100, out[1], 1e-4)
	assert.InDelta(t, 0, out[2], 1e-4)
}

func TestSoftmaxRowsSumToOne(t *testing.T) {
	b := New()
	out := b.Softmax(raw(t, []float32{1, 2, 3, 1, 1, 1}, 2, 3), -1).AsFloat32()
	assert.InDelta(t, 1, out[0]+out[1]+out[2], 1e-6)
	assert.InDelta(t, float64(1)/3, out[3], 1e-6)
	assert.Greater(t, out[2], out[1])
}

func TestSoftmax4D(t *testing.T) {
	b := New()
	x := tensor.NewRaw(tensor.Shape{2, 2, 2, 3}, tensor.Float32)
	out := b.Softmax(x, 3)
	for _, v := range out.AsFloat32() {
		assert.InDelta(t, float64(1)/3, v, 1e-6)
	}
}

func TestSumDimAndMeanDim(t *testing.T) {
	b := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)

	sum := b.SumDim(x, 1, false)
	assert.Equal(t, tensor.Shape{2}, sum.Shape())
	assert.Equal(t, []float32{6, 15}, sum.AsFloat32())

	mean := b.MeanDim(x, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, mean.Shape())
	assert.Equal(t, []float32{2, 5}, mean.AsFloat32())

	cols := b.SumDim(x, 0, false)
	assert.Equal(t, []float32{5, 7, 9}, cols.AsFloat32())
}

func TestTranspose2D(t *testing.T) {
	b := New()
	x := raw(t, []float32{1, 2, 3, 4, 5, 6}, 2, 3)
	out := b.Transpose(x, 1, 0)
	assert.Equal(t, tensor.Shape{3, 2}, out.Shape())
	assert.Equal(t, []float32{1, 4, 2, 5, 3, 6}, out.AsFloat32())
}

func TestTranspose4DSwapMiddle(t *testing.T) {
	b := New()
	x := tensor.NewRaw(tensor.Shape{2, 3, 4, 5}, tensor.Float32)
	d := x.AsFloat32()
	for i := range d {
		d[i] = float32(i)
	}
	out := b.Transpose(x, 0, 2, 1, 3)
	assert.Equal(t, tensor.Shape{2, 4, 3, 5}, out.Shape())
	// out[1][2][1][3] must equal x[1][1][2][3].
	want := d[((1*3+1)*4+2)*5+3]
	got := out.AsFloat32()[((1*4+2)*3+1)*5+3]
	assert.Equal(t, want, got)
}

func TestReshapeSharesBuffer(t *testing.T) {
	b := New()
	x := raw(t, []float32{1, 2, 3, 4}, 2, 2)
	view := b.Reshape(x, tensor.Shape{4})
	view.AsFloat32()[0] = 42
	assert.Equal(t, float32(42), x.AsFloat32()[0])
}

func TestCrossEntropyUniformLogits(t *testing.T) {
	b := New()
	logits := tensor.NewRaw(tensor.Shape{4, 10}, tensor.Float32)
	targets := tensor.NewRaw(tensor.Shape{4}, tensor.Int32)
	loss := b.CrossEntropy(logits, targets)
	assert.Equal(t, tensor.Shape{1}, loss.Shape())
	assert.InDelta(t, math.Log(10), float64(loss.AsFloat32()[0]), 1e-5)
}

func TestCrossEntropyConfidentPrediction(t *testing.T) {
	b := New()
	logits := raw(t, []float32{10, 0, 0}, 1, 3)
	targets := tensor.NewRaw(tensor.Shape{1}, tensor.Int32)
	loss := b.CrossEntropy(logits, targets)
	assert.Less(t, float64(loss.AsFloat32()[0]), 1e-3)
}

func TestBackendName(t *testing.T) {
	b := New()
	assert.Equal(t, "cpu", b.Device())
	assert.Contains(t, b.Name(), "cpu")
}

// The backend must satisfy the full interface.
var _ tensor.Backend = (*Backend)(nil)
