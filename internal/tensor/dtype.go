package tensor

import "fmt"

// DataType identifies the element type stored in a tensor's buffer.
type DataType int

const (
	Float32 DataType = iota
	Int32
	Uint8
)

// DType constrains the Go types a Tensor may be parameterized over.
type DType interface {
	float32 | int32 | uint8
}

// Size returns the width of one element in bytes.
func (dt DataType) Size() int {
	switch dt {
	case Float32, Int32:
		return 4
	case Uint8:
		return 1
	default:
		panic(fmt.Sprintf("tensor: unknown data type %d", int(dt)))
	}
}

func (dt DataType) String() string {
	switch dt {
	case Float32:
		return "float32"
	case Int32:
		return "int32"
	case Uint8:
		return "uint8"
	default:
		return fmt.Sprintf("DataType(%d)", int(dt))
	}
}

// DataTypeOf maps a concrete element type to its DataType tag.
func DataTypeOf[T DType]() DataType {
	var zero T
	switch any(zero).(type) {
	case float32:
		return Float32
	case int32:
		return Int32
	case uint8:
		return Uint8
	default:
		panic("tensor: unsupported element type")
	}
}

// ParseDataType converts a serialized name back to its DataType tag.
func ParseDataType(s string) (DataType, error) {
	switch s {
	case "float32":
		return Float32, nil
	case "int32":
		return Int32, nil
	case "uint8":
		return Uint8, nil
	default:
		return 0, fmt.Errorf("tensor: unknown data type %q", s)
	}
}
