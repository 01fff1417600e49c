package cpu

import (
	"fmt"
	"math"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// CrossEntropy computes mean softmax cross-entropy between (batch, classes)
// float32 logits and (batch,) int32 class targets. The log-sum-exp is
// shifted by each row's maximum for stability.
func (b *Backend) CrossEntropy(logits, targets *tensor.RawTensor) *tensor.RawTensor {
	ld := mustFloat32(logits, "CrossEntropy")
	ls := logits.Shape()
	if ls.Rank() != 2 {
		panic(fmt.Sprintf("cpu: CrossEntropy requires 2D logits, got %v", ls))
	}
	if targets.DType() != tensor.Int32 {
		panic(fmt.Sprintf("cpu: CrossEntropy requires int32 targets, got %s", targets.DType()))
	}
	td := targets.AsInt32()
	batch, classes := ls[0], ls[1]
	if len(td) != batch {
		panic(fmt.Sprintf("cpu: CrossEntropy got %d targets for batch %d", len(td), batch))
	}

	var total float64
	for i := 0; i < batch; i++ {
		row := ld[i*classes : (i+1)*classes]
		target := int(td[i])
		if target < 0 || target >= classes {
			panic(fmt.Sprintf("cpu: CrossEntropy target %d out of range for %d classes", target, classes))
		}
		maxV := row[0]
		for _, v := range row[1:] {
			if v > maxV {
				maxV = v
			}
		}
		var sumExp float64
		for _, v := range row {
			sumExp += math.Exp(float64(v - maxV))
		}
		total += math.Log(sumExp) + float64(maxV) - float64(row[target])
	}

	out := tensor.NewRaw(tensor.Shape{1}, tensor.Float32)
	out.AsFloat32()[0] = float32(total / float64(batch))
	return out
}
