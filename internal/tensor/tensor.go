package tensor

import "fmt"

// Tensor is a typed, backend-aware view over a RawTensor. The element type
// T is checked once at construction; operations delegate to the backend B
// and wrap its results.
type Tensor[T DType, B Backend] struct {
	raw     *RawTensor
	backend B
}

// New allocates a zeroed tensor of the given shape on the backend.
func New[T DType, B Backend](backend B, shape Shape) *Tensor[T, B] {
	return &Tensor[T, B]{raw: NewRaw(shape, DataTypeOf[T]()), backend: backend}
}

// FromRaw wraps an existing RawTensor. Panics when the raw tensor's data
// type does not match T.
func FromRaw[T DType, B Backend](backend B, raw *RawTensor) *Tensor[T, B] {
	if want := DataTypeOf[T](); raw.DType() != want {
		panic(fmt.Sprintf("tensor: raw tensor is %s, want %s", raw.DType(), want))
	}
	return &Tensor[T, B]{raw: raw, backend: backend}
}

// FromSlice copies data into a new tensor of the given shape. The slice
// length must match the shape's element count.
func FromSlice[T DType, B Backend](backend B, data []T, shape Shape) *Tensor[T, B] {
	if len(data) != shape.NumElements() {
		panic(fmt.Sprintf("tensor: %d elements do not fit shape %v", len(data), shape))
	}
	t := New[T](backend, shape)
	copy(t.Data(), data)
	return t
}

// Raw returns the underlying untyped tensor.
func (t *Tensor[T, B]) Raw() *RawTensor { return t.raw }

// Backend returns the backend this tensor is bound to.
func (t *Tensor[T, B]) Backend() B { return t.backend }

// Shape returns the tensor's shape.
func (t *Tensor[T, B]) Shape() Shape { return t.raw.Shape() }

// NumElements returns the total element count.
func (t *Tensor[T, B]) NumElements() int { return t.raw.NumElements() }

// DType returns the element type tag.
func (t *Tensor[T, B]) DType() DataType { return t.raw.DType() }

// Data returns the elements as a typed slice sharing the buffer.
func (t *Tensor[T, B]) Data() []T { return typedView[T](t.raw) }

// At returns the element at the given multi-dimensional index.
func (t *Tensor[T, B]) At(indices ...int) T {
	return t.Data()[t.flatIndex(indices)]
}

// Set writes the element at the given multi-dimensional index.
func (t *Tensor[T, B]) Set(value T, indices ...int) {
	t.Data()[t.flatIndex(indices)] = value
}

// Item returns the sole element of a single-element tensor.
func (t *Tensor[T, B]) Item() T {
	if t.raw.NumElements() != 1 {
		panic(fmt.Sprintf("tensor: Item on tensor of shape %v", t.Shape()))
	}
	return t.Data()[0]
}

// Clone returns a deep copy.
func (t *Tensor[T, B]) Clone() *Tensor[T, B] {
	return &Tensor[T, B]{raw: t.raw.Clone(), backend: t.backend}
}

func (t *Tensor[T, B]) flatIndex(indices []int) int {
	shape := t.raw.Shape()
	if len(indices) != len(shape) {
		panic(fmt.Sprintf("tensor: %d indices for shape %v", len(indices), shape))
	}
	flat := 0
	stride := 1
	for i := len(shape) - 1; i >= 0; i-- {
		if indices[i] < 0 || indices[i] >= shape[i] {
			panic(fmt.Sprintf("tensor: index %v out of range for shape %v", indices, shape))
		}
		flat += indices[i] * stride
		stride *= shape[i]
	}
	return flat
}

func (t *Tensor[T, B]) String() string {
	return fmt.Sprintf("Tensor[%s]%v on %s", t.DType(), t.Shape(), t.backend.Device())
}
