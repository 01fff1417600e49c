package tensor

// Method wrappers that route through the tensor's backend. When the backend
// is an autodiff decorator these calls are recorded on its tape.

func (t *Tensor[T, B]) wrap(raw *RawTensor) *Tensor[T, B] {
	return &Tensor[T, B]{raw: raw, backend: t.backend}
}

// Add returns t + other with broadcasting.
func (t *Tensor[T, B]) Add(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Add(t.raw, other.raw))
}

// Sub returns t - other with broadcasting.
func (t *Tensor[T, B]) Sub(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Sub(t.raw, other.raw))
}

// Mul returns the elementwise product with broadcasting.
func (t *Tensor[T, B]) Mul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Mul(t.raw, other.raw))
}

// Div returns the elementwise quotient with broadcasting.
func (t *Tensor[T, B]) Div(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.Div(t.raw, other.raw))
}

// AddScalar returns t + s.
func (t *Tensor[T, B]) AddScalar(s float32) *Tensor[T, B] {
	return t.wrap(t.backend.AddScalar(t.raw, s))
}

// MulScalar returns t * s.
func (t *Tensor[T, B]) MulScalar(s float32) *Tensor[T, B] {
	return t.wrap(t.backend.MulScalar(t.raw, s))
}

// MatMul returns the 2D matrix product t @ other.
func (t *Tensor[T, B]) MatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.MatMul(t.raw, other.raw))
}

// BatchMatMul multiplies the trailing two dimensions batchwise.
func (t *Tensor[T, B]) BatchMatMul(other *Tensor[T, B]) *Tensor[T, B] {
	return t.wrap(t.backend.BatchMatMul(t.raw, other.raw))
}

// Conv2D cross-correlates NCHW input t with the given kernel.
func (t *Tensor[T, B]) Conv2D(kernel *Tensor[T, B], stride, padding int) *Tensor[T, B] {
	return t.wrap(t.backend.Conv2D(t.raw, kernel.raw, stride, padding))
}

// MaxPool2D pools NCHW input t over square windows.
func (t *Tensor[T, B]) MaxPool2D(kernelSize, stride int) *Tensor[T, B] {
	out, _ := t.backend.MaxPool2D(t.raw, kernelSize, stride)
	return t.wrap(out)
}

// ReLU applies max(0, x) elementwise.
func (t *Tensor[T, B]) ReLU() *Tensor[T, B] {
	return t.wrap(t.backend.ReLU(t.raw))
}

// GELU applies the exact Gaussian error linear unit elementwise.
func (t *Tensor[T, B]) GELU() *Tensor[T, B] {
	return t.wrap(t.backend.GELU(t.raw))
}

// Rsqrt applies 1/sqrt(x) elementwise.
func (t *Tensor[T, B]) Rsqrt() *Tensor[T, B] {
	return t.wrap(t.backend.Rsqrt(t.raw))
}

// Softmax normalizes along dim, which must address the last dimension.
func (t *Tensor[T, B]) Softmax(dim int) *Tensor[T, B] {
	return t.wrap(t.backend.Softmax(t.raw, dim))
}

// SumDim sums along a single dimension.
func (t *Tensor[T, B]) SumDim(dim int, keepDim bool) *Tensor[T, B] {
	return t.wrap(t.backend.SumDim(t.raw, dim, keepDim))
}

// MeanDim averages along a single dimension.
func (t *Tensor[T, B]) MeanDim(dim int, keepDim bool) *Tensor[T, B] {
	return t.wrap(t.backend.MeanDim(t.raw, dim, keepDim))
}

// Reshape returns a view with a new shape over the same data.
func (t *Tensor[T, B]) Reshape(dims ...int) *Tensor[T, B] {
	return t.wrap(t.backend.Reshape(t.raw, Shape(dims)))
}

// Unsqueeze inserts a size-1 dimension at dim.
func (t *Tensor[T, B]) Unsqueeze(dim int) *Tensor[T, B] {
	shape := t.Shape()
	if dim < 0 {
		dim += len(shape) + 1
	}
	out := make(Shape, 0, len(shape)+1)
	out = append(out, shape[:dim]...)
	out = append(out, 1)
	out = append(out, shape[dim:]...)
	return t.wrap(t.backend.Reshape(t.raw, out))
}

// Flatten collapses all dimensions after the first into one.
func (t *Tensor[T, B]) Flatten() *Tensor[T, B] {
	shape := t.Shape()
	rest := 1
	for _, dim := range shape[1:] {
		rest *= dim
	}
	return t.wrap(t.backend.Reshape(t.raw, Shape{shape[0], rest}))
}

// Transpose permutes dimensions. With no axes it reverses them.
func (t *Tensor[T, B]) Transpose(axes ...int) *Tensor[T, B] {
	return t.wrap(t.backend.Transpose(t.raw, axes...))
}

// T is shorthand for the 2D transpose.
func (t *Tensor[T, B]) T() *Tensor[T, B] {
	return t.Transpose(1, 0)
}

// CrossEntropy computes mean softmax cross-entropy between float32 logits
// of shape (batch, classes) and int32 class targets of shape (batch,).
func CrossEntropy[B Backend](logits *Tensor[float32, B], targets *Tensor[int32, B]) *Tensor[float32, B] {
	return logits.wrap(logits.backend.CrossEntropy(logits.raw, targets.raw))
}
