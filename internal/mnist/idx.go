// Package mnist downloads, parses and batches the MNIST handwritten digit
// dataset in its original IDX format.
package mnist

import (
	"encoding/binary"
	"fmt"
	"io"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

const (
	imagesMagic = 2051
	labelsMagic = 2049
)

// ReadImages parses an IDX image file into a uint8 tensor of shape
// (count, rows, cols).
func ReadImages(r io.Reader) (*tensor.RawTensor, error) {
	var hdr struct {
		Magic uint32
		Count uint32
		Rows  uint32
		Cols  uint32
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("mnist: read image header: %w", err)
	}
	if hdr.Magic != imagesMagic {
		return nil, fmt.Errorf("mnist: bad image magic %d, want %d", hdr.Magic, imagesMagic)
	}

	out := tensor.NewRaw(tensor.Shape{int(hdr.Count), int(hdr.Rows), int(hdr.Cols)}, tensor.Uint8)
	if _, err := io.ReadFull(r, out.Bytes()); err != nil {
		return nil, fmt.Errorf("mnist: read %d images: %w", hdr.Count, err)
	}
	return out, nil
}

// ReadLabels parses an IDX label file into an int32 tensor of shape
// (count,).
func ReadLabels(r io.Reader) (*tensor.RawTensor, error) {
	var hdr struct {
		Magic uint32
		Count uint32
	}
	if err := binary.Read(r, binary.BigEndian, &hdr); err != nil {
		return nil, fmt.Errorf("mnist: read label header: %w", err)
	}
	if hdr.Magic != labelsMagic {
		return nil, fmt.Errorf("mnist: bad label magic %d, want %d", hdr.Magic, labelsMagic)
	}

	buf := make([]byte, hdr.Count)
	if _, err := io.ReadFull(r, buf); err != nil {
		return nil, fmt.Errorf("mnist: read %d labels: %w", hdr.Count, err)
	}
	out := tensor.NewRaw(tensor.Shape{int(hdr.Count)}, tensor.Int32)
	od := out.AsInt32()
	for i, b := range buf {
		od[i] = int32(b)
	}
	return out, nil
}
