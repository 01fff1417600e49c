package serialization

import (
	"bufio"
	"crypto/sha256"
	"encoding/binary"
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
	"sort"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Save writes the named tensors and metadata to path, replacing any
// existing file. Tensors are laid out in name order so identical inputs
// produce identical files.
func Save(path string, tensors map[string]*tensor.RawTensor, metadata map[string]string) error {
	names := make([]string, 0, len(tensors))
	for name := range tensors {
		names = append(names, name)
	}
	sort.Strings(names)

	hdr := header{Version: Version, Metadata: metadata}
	hash := sha256.New()
	var offset uint64
	for _, name := range names {
		rt := tensors[name]
		size := uint64(len(rt.Bytes()))
		hdr.Tensors = append(hdr.Tensors, TensorMeta{
			Name:   name,
			DType:  rt.DType().String(),
			Shape:  rt.Shape(),
			Offset: offset,
			Size:   size,
		})
		hash.Write(rt.Bytes())
		offset += size
	}
	hdr.Checksum = hex.EncodeToString(hash.Sum(nil))

	headerJSON, err := json.Marshal(hdr)
	if err != nil {
		return fmt.Errorf("serialization: encode header: %w", err)
	}

	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("serialization: create %s: %w", path, err)
	}
	defer f.Close()

	w := bufio.NewWriter(f)
	if _, err := w.WriteString(Magic); err != nil {
		return fmt.Errorf("serialization: write magic: %w", err)
	}
	for _, v := range []uint32{Version, 0} {
		if err := binary.Write(w, binary.LittleEndian, v); err != nil {
			return fmt.Errorf("serialization: write header fields: %w", err)
		}
	}
	if err := binary.Write(w, binary.LittleEndian, uint64(len(headerJSON))); err != nil {
		return fmt.Errorf("serialization: write header size: %w", err)
	}
	if _, err := w.Write(headerJSON); err != nil {
		return fmt.Errorf("serialization: write header: %w", err)
	}

	written := len(Magic) + 4 + 4 + 8 + len(headerJSON)
	if pad := (dataAlignment - written%dataAlignment) % dataAlignment; pad > 0 {
		if _, err := w.Write(make([]byte, pad)); err != nil {
			return fmt.Errorf("serialization: write padding: %w", err)
		}
	}

	for _, name := range names {
		if _, err := w.Write(tensors[name].Bytes()); err != nil {
			return fmt.Errorf("serialization: write tensor %q: %w", name, err)
		}
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("serialization: flush %s: %w", path, err)
	}
	return nil
}
