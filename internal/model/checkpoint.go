package model

import (
	"fmt"
	"strconv"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/serialization"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// CheckpointFileName returns the conventional checkpoint name for an
// architecture, e.g. "cnn-mnist.ckpt".
func CheckpointFileName(modelName string) string {
	return modelName + "-mnist.ckpt"
}

// SaveCheckpoint writes the model's parameters and the accuracy it
// achieved to path.
func SaveCheckpoint[B tensor.Backend](path string, m Classifier[B], top1 float64) error {
	meta := map[string]string{
		"model": m.Name(),
		"top1":  strconv.FormatFloat(top1, 'f', 4, 64),
	}
	if err := serialization.Save(path, m.StateDict(), meta); err != nil {
		return fmt.Errorf("model: save checkpoint %s: %w", path, err)
	}
	return nil
}

// RestoreCheckpoint loads parameters from path into the model and returns
// the recorded accuracy. It fails when the file is missing or corrupt,
// was written for a different architecture, or any tensor shape
// disagrees with the model.
func RestoreCheckpoint[B tensor.Backend](path string, m Classifier[B]) (top1 float64, err error) {
	tensors, meta, err := serialization.Load(path)
	if err != nil {
		return 0, fmt.Errorf("model: restore checkpoint %s: %w", path, err)
	}
	if name := meta["model"]; name != "" && name != m.Name() {
		return 0, fmt.Errorf("model: checkpoint %s was written for %q, not %q", path, name, m.Name())
	}
	if err := m.LoadStateDict(tensors); err != nil {
		return 0, fmt.Errorf("model: restore checkpoint %s: %w", path, err)
	}
	if s := meta["top1"]; s != "" {
		top1, _ = strconv.ParseFloat(s, 64)
	}
	return top1, nil
}
