// Package serialization reads and writes model checkpoints. A checkpoint
// is a binary file holding named tensors plus free-form string metadata.
//
// Layout, all integers little-endian:
//
//	magic "DLEX" | version u32 | flags u32 | headerSize u64
//	| JSON header | zero padding to a 64-byte boundary | tensor data
//
// The JSON header lists every tensor with its dtype, shape and offset into
// the data section, along with a SHA-256 checksum of the data section.
package serialization

// Magic identifies a checkpoint file.
const Magic = "DLEX"

// Version is the current format version.
const Version uint32 = 1

// dataAlignment keeps tensor data on a cache-line boundary.
const dataAlignment = 64

// TensorMeta describes one tensor in the header.
type TensorMeta struct {
	Name   string `json:"name"`
	DType  string `json:"dtype"`
	Shape  []int  `json:"shape"`
	Offset uint64 `json:"offset"`
	Size   uint64 `json:"size"`
}

type header struct {
	Version  uint32            `json:"version"`
	Checksum string            `json:"checksum"`
	Tensors  []TensorMeta      `json:"tensors"`
	Metadata map[string]string `json:"metadata,omitempty"`
}
