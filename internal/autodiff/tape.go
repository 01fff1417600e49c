package autodiff

import (
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/autodiff/ops"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// GradientTape records operations during a forward pass and replays them
// in reverse to accumulate gradients. A tape is not safe for concurrent
// use; training runs one tape per goroutine.
type GradientTape struct {
	operations []ops.Operation
	recording  bool
}

// NewGradientTape returns an empty, non-recording tape.
func NewGradientTape() *GradientTape {
	return &GradientTape{}
}

// StartRecording begins capturing operations.
func (t *GradientTape) StartRecording() { t.recording = true }

// StopRecording pauses capture without discarding recorded operations.
func (t *GradientTape) StopRecording() { t.recording = false }

// IsRecording reports whether operations are currently captured.
func (t *GradientTape) IsRecording() bool { return t.recording }

// Record appends an operation to the tape.
func (t *GradientTape) Record(op ops.Operation) {
	t.operations = append(t.operations, op)
}

// NumOperations returns the number of recorded operations.
func (t *GradientTape) NumOperations() int { return len(t.operations) }

// Clear drops every recorded operation but keeps the recording state.
// Call it once per training step to bound memory.
func (t *GradientTape) Clear() {
	t.operations = t.operations[:0]
}

// Backward propagates outputGrad from output back through the recorded
// operations and returns the accumulated gradient per encountered tensor.
// Tensors not on any path to output are absent from the result.
func (t *GradientTape) Backward(backend tensor.Backend, output, outputGrad *tensor.RawTensor) map[*tensor.RawTensor]*tensor.RawTensor {
	grads := map[*tensor.RawTensor]*tensor.RawTensor{output: outputGrad}
	for i := len(t.operations) - 1; i >= 0; i-- {
		op := t.operations[i]
		outGrad, ok := grads[op.Output()]
		if !ok {
			continue
		}
		inputGrads := op.Backward(outGrad)
		for j, input := range op.Inputs() {
			g := inputGrads[j]
			if g == nil {
				continue
			}
			if existing, ok := grads[input]; ok {
				grads[input] = backend.Add(existing, g)
			} else {
				grads[input] = g
			}
		}
	}
	return grads
}
