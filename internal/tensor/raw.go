package tensor

import (
	"fmt"
	"unsafe"
)

// RawTensor is an untyped, contiguous, row-major tensor. It owns a byte
// buffer and exposes typed views into it without copying. Backends operate
// on RawTensors; the generic Tensor wrapper adds type safety on top.
type RawTensor struct {
	shape Shape
	dtype DataType
	data  []byte
}

// NewRaw allocates a zeroed RawTensor with the given shape and data type.
func NewRaw(shape Shape, dtype DataType) *RawTensor {
	shape.Validate()
	return &RawTensor{
		shape: shape.Clone(),
		dtype: dtype,
		data:  make([]byte, shape.NumElements()*dtype.Size()),
	}
}

// NewRawFromBytes wraps an existing byte buffer. The buffer length must
// match the shape and data type exactly; the RawTensor takes ownership.
func NewRawFromBytes(shape Shape, dtype DataType, data []byte) (*RawTensor, error) {
	shape.Validate()
	want := shape.NumElements() * dtype.Size()
	if len(data) != want {
		return nil, fmt.Errorf("tensor: buffer size %d does not match shape %v of %s (want %d)",
			len(data), shape, dtype, want)
	}
	return &RawTensor{shape: shape.Clone(), dtype: dtype, data: data}, nil
}

// Shape returns the tensor's shape. The caller must not mutate it.
func (rt *RawTensor) Shape() Shape { return rt.shape }

// DType returns the tensor's element type.
func (rt *RawTensor) DType() DataType { return rt.dtype }

// NumElements returns the total element count.
func (rt *RawTensor) NumElements() int { return rt.shape.NumElements() }

// Bytes returns the underlying buffer. Mutations are visible to every view.
func (rt *RawTensor) Bytes() []byte { return rt.data }

// Clone returns a deep copy with its own buffer.
func (rt *RawTensor) Clone() *RawTensor {
	data := make([]byte, len(rt.data))
	copy(data, rt.data)
	return &RawTensor{shape: rt.shape.Clone(), dtype: rt.dtype, data: data}
}

// WithShape returns a view over the same buffer with a new shape. The
// element counts must agree.
func (rt *RawTensor) WithShape(shape Shape) *RawTensor {
	shape.Validate()
	if shape.NumElements() != rt.shape.NumElements() {
		panic(fmt.Sprintf("tensor: cannot view shape %v as %v", rt.shape, shape))
	}
	return &RawTensor{shape: shape.Clone(), dtype: rt.dtype, data: rt.data}
}

// AsFloat32 returns the buffer as a []float32 view. Panics when the
// tensor's data type is not Float32.
func (rt *RawTensor) AsFloat32() []float32 {
	rt.mustBe(Float32)
	return typedView[float32](rt)
}

// AsInt32 returns the buffer as an []int32 view.
func (rt *RawTensor) AsInt32() []int32 {
	rt.mustBe(Int32)
	return typedView[int32](rt)
}

// AsUint8 returns the buffer as a []uint8 view.
func (rt *RawTensor) AsUint8() []uint8 {
	rt.mustBe(Uint8)
	return rt.data
}

func (rt *RawTensor) mustBe(dt DataType) {
	if rt.dtype != dt {
		panic(fmt.Sprintf("tensor: have %s, want %s", rt.dtype, dt))
	}
}

func typedView[T DType](rt *RawTensor) []T {
	if len(rt.data) == 0 {
		return nil
	}
	n := len(rt.data) / rt.dtype.Size()
	return unsafe.Slice((*T)(unsafe.Pointer(&rt.data[0])), n)
}

func (rt *RawTensor) String() string {
	return fmt.Sprintf("RawTensor[%s]%v", rt.dtype, rt.shape)
}
