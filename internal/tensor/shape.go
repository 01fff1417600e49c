package tensor

import (
	"fmt"
	"strings"
)

// Shape describes the dimensions of a tensor. A nil or empty shape is a
// scalar.
type Shape []int

// NumElements returns the total number of elements the shape addresses.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Equal reports whether two shapes have identical dimensions.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy that does not alias the receiver.
func (s Shape) Clone() Shape {
	out := make(Shape, len(s))
	copy(out, s)
	return out
}

// Strides returns the row-major stride of each dimension, in elements.
func (s Shape) Strides() []int {
	strides := make([]int, len(s))
	stride := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = stride
		stride *= s[i]
	}
	return strides
}

// Validate panics when any dimension is non-positive.
func (s Shape) Validate() {
	for i, dim := range s {
		if dim <= 0 {
			panic(fmt.Sprintf("tensor: invalid dimension %d at axis %d in shape %v", dim, i, s))
		}
	}
}

// Normalize resolves a possibly negative axis against the shape's rank.
// Negative axes count from the end, so -1 is the last dimension.
func (s Shape) Normalize(axis int) int {
	if axis < 0 {
		axis += len(s)
	}
	if axis < 0 || axis >= len(s) {
		panic(fmt.Sprintf("tensor: axis %d out of range for shape %v", axis, s))
	}
	return axis
}

func (s Shape) String() string {
	parts := make([]string, len(s))
	for i, dim := range s {
		parts[i] = fmt.Sprintf("%d", dim)
	}
	return "(" + strings.Join(parts, ", ") + ")"
}

// BroadcastShapes computes the shape that results from broadcasting a
// against b under the usual trailing-dimension rules. It panics when the
// shapes are incompatible.
func BroadcastShapes(a, b Shape) Shape {
	rank := len(a)
	if len(b) > rank {
		rank = len(b)
	}
	out := make(Shape, rank)
	for i := 0; i < rank; i++ {
		da, db := 1, 1
		if idx := len(a) - rank + i; idx >= 0 {
			da = a[idx]
		}
		if idx := len(b) - rank + i; idx >= 0 {
			db = b[idx]
		}
		switch {
		case da == db:
			out[i] = da
		case da == 1:
			out[i] = db
		case db == 1:
			out[i] = da
		default:
			panic(fmt.Sprintf("tensor: cannot broadcast shapes %v and %v", a, b))
		}
	}
	return out
}
