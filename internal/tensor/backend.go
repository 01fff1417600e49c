package tensor

// Backend implements tensor math on some device. All operations take and
// return RawTensors so implementations stay free of generics; shape or
// dtype violations panic, mirroring out-of-range slice indexing.
//
// Operations allocate a fresh output tensor unless documented otherwise.
type Backend interface {
	// Name identifies the backend and its device, e.g. "cpu (AMD Ryzen 9)".
	Name() string
	// Device returns the short device tag, e.g. "cpu".
	Device() string

	// Elementwise binary operations with trailing-dimension broadcasting.
	Add(a, b *RawTensor) *RawTensor
	Sub(a, b *RawTensor) *RawTensor
	Mul(a, b *RawTensor) *RawTensor
	Div(a, b *RawTensor) *RawTensor

	// Scalar operations.
	AddScalar(a *RawTensor, s float32) *RawTensor
	MulScalar(a *RawTensor, s float32) *RawTensor

	// MatMul multiplies two 2D tensors: (m,k) x (k,n) -> (m,n).
	MatMul(a, b *RawTensor) *RawTensor
	// BatchMatMul multiplies the trailing two dimensions of equally
	// batched tensors: (..., m, k) x (..., k, n) -> (..., m, n).
	BatchMatMul(a, b *RawTensor) *RawTensor

	// Conv2D runs a 2D cross-correlation over NCHW input with an
	// (outC, inC, kh, kw) kernel.
	Conv2D(input, kernel *RawTensor, stride, padding int) *RawTensor
	Conv2DInputBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor
	Conv2DKernelBackward(input, kernel, grad *RawTensor, stride, padding int) *RawTensor

	// MaxPool2D pools NCHW input and additionally returns, for every
	// output element, the flat input offset of its maximum.
	MaxPool2D(input *RawTensor, kernelSize, stride int) (*RawTensor, []int32)
	MaxPool2DBackward(input, grad *RawTensor, maxIndices []int32, kernelSize, stride int) *RawTensor

	// Activations.
	ReLU(a *RawTensor) *RawTensor
	GELU(a *RawTensor) *RawTensor
	Rsqrt(a *RawTensor) *RawTensor
	// Softmax normalizes along dim. Only the last dimension is supported.
	Softmax(a *RawTensor, dim int) *RawTensor

	// Reductions along a single dimension.
	SumDim(a *RawTensor, dim int, keepDim bool) *RawTensor
	MeanDim(a *RawTensor, dim int, keepDim bool) *RawTensor

	// Shape manipulation. Reshape shares the input buffer.
	Reshape(a *RawTensor, shape Shape) *RawTensor
	Transpose(a *RawTensor, axes ...int) *RawTensor

	// CrossEntropy computes mean softmax cross-entropy between (batch,
	// classes) float32 logits and (batch,) int32 class targets, returning
	// a single-element tensor.
	CrossEntropy(logits, targets *RawTensor) *RawTensor
}
