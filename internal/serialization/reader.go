package serialization

import (
	"bytes"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Load reads a checkpoint written by Save and returns its tensors and
// metadata. The data section is verified against the stored checksum.
func Load(path string) (map[string]*tensor.RawTensor, map[string]string, error) {
	raw, err := os.ReadFile(path)
	if err != nil {
		return nil, nil, fmt.Errorf("serialization: read %s: %w", path, err)
	}

	fixed := len(Magic) + 4 + 4 + 8
	if len(raw) < fixed {
		return nil, nil, fmt.Errorf("serialization: %s: %w", path, ErrTruncated)
	}
	if !bytes.Equal(raw[:len(Magic)], []byte(Magic)) {
		return nil, nil, fmt.Errorf("serialization: %s: %w", path, ErrInvalidMagic)
	}
	version := binary.LittleEndian.Uint32(raw[4:8])
	if version > Version {
		return nil, nil, fmt.Errorf("serialization: %s has version %d: %w", path, version, ErrUnsupportedVersion)
	}
	// Bound every length read from the file before using it as a slice
	// index, so a crafted header cannot overflow the checks below.
	headerSize := binary.LittleEndian.Uint64(raw[12:20])
	if headerSize > uint64(len(raw))-uint64(fixed) {
		return nil, nil, fmt.Errorf("serialization: %s: %w", path, ErrTruncated)
	}

	var hdr header
	if err := json.Unmarshal(raw[fixed:uint64(fixed)+headerSize], &hdr); err != nil {
		return nil, nil, fmt.Errorf("serialization: %s: %w: %v", path, ErrCorruptHeader, err)
	}

	dataStart := uint64(fixed) + headerSize
	if pad := (dataAlignment - dataStart%dataAlignment) % dataAlignment; pad > 0 {
		dataStart += pad
	}
	if dataStart > uint64(len(raw)) {
		return nil, nil, fmt.Errorf("serialization: %s: %w", path, ErrTruncated)
	}
	dataLen := uint64(len(raw)) - dataStart

	var dataSize uint64
	for _, meta := range hdr.Tensors {
		if meta.Size > dataLen || meta.Offset > dataLen-meta.Size {
			return nil, nil, fmt.Errorf("serialization: tensor %q: %w", meta.Name, ErrCorruptHeader)
		}
		if end := meta.Offset + meta.Size; end > dataSize {
			dataSize = end
		}
	}
	data := raw[dataStart : dataStart+dataSize]

	sum := sha256.Sum256(data)
	if hex.EncodeToString(sum[:]) != hdr.Checksum {
		return nil, nil, fmt.Errorf("serialization: %s: %w", path, ErrChecksumMismatch)
	}

	tensors := make(map[string]*tensor.RawTensor, len(hdr.Tensors))
	for _, meta := range hdr.Tensors {
		dtype, err := tensor.ParseDataType(meta.DType)
		if err != nil {
			return nil, nil, fmt.Errorf("serialization: tensor %q: %w: %v", meta.Name, ErrCorruptHeader, err)
		}
		buf := make([]byte, meta.Size)
		copy(buf, data[meta.Offset:meta.Offset+meta.Size])
		rt, err := tensor.NewRawFromBytes(tensor.Shape(meta.Shape), dtype, buf)
		if err != nil {
			return nil, nil, fmt.Errorf("serialization: tensor %q: %w: %v", meta.Name, ErrCorruptHeader, err)
		}
		tensors[meta.Name] = rt
	}
	return tensors, hdr.Metadata, nil
}
