package ops

import (
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// CrossEntropyOp records a mean softmax cross-entropy loss.
type CrossEntropyOp struct {
	logits  *tensor.RawTensor
	targets *tensor.RawTensor
	out     *tensor.RawTensor
}

func NewCrossEntropyOp(logits, targets, out *tensor.RawTensor) *CrossEntropyOp {
	return &CrossEntropyOp{logits: logits, targets: targets, out: out}
}

func (op *CrossEntropyOp) Output() *tensor.RawTensor { return op.out }

// Inputs exposes only the logits; class targets carry no gradient.
func (op *CrossEntropyOp) Inputs() []*tensor.RawTensor { return []*tensor.RawTensor{op.logits} }

func (op *CrossEntropyOp) Backward(grad *tensor.RawTensor) []*tensor.RawTensor {
	// dlogits = (softmax(logits) - onehot(targets)) * g / batch
	ld := op.logits.AsFloat32()
	td := op.targets.AsInt32()
	shape := op.logits.Shape()
	batch, classes := shape[0], shape[1]
	gradScale := grad.AsFloat32()[0] / float32(batch)

	out := tensor.NewRaw(shape, tensor.Float32)
	od := out.AsFloat32()
	for i := 0; i < batch; i++ {
		row := ld[i*classes : (i+1)*classes]
		o := od[i*classes : (i+1)*classes]
		maxV := row[0]
		for _, v := range row[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sum float32
		for j, v := range row {
			e := float32(math.Exp(float64(v - maxV)))
			o[j] = e
			sum += e
		}
		inv := 1 / sum
		for j := range o {
			o[j] *= inv
		}
		o[td[i]] -= 1
		for j := range o {
			o[j] *= gradScale
		}
	}
	return []*tensor.RawTensor{out}
}
