// Package metrics provides running statistics and accuracy measures used
// during training and evaluation.
package metrics

import (
	"fmt"
	"sort"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// AverageMeter tracks a weighted running average. Each Update contributes
// value with weight n, typically a per-batch mean weighted by batch size.
type AverageMeter struct {
	sum   float64
	count int
}

// NewAverageMeter returns a zeroed meter.
func NewAverageMeter() *AverageMeter {
	return &AverageMeter{}
}

// Reset clears the accumulated state.
func (m *AverageMeter) Reset() {
	m.sum = 0
	m.count = 0
}

// Update adds a value observed over n samples.
func (m *AverageMeter) Update(value float64, n int) {
	m.sum += value * float64(n)
	m.count += n
}

// Average returns the weighted mean of all updates, or zero before any.
func (m *AverageMeter) Average() float64 {
	if m.count == 0 {
		return 0
	}
	return m.sum / float64(m.count)
}

// Count returns the total weight seen so far.
func (m *AverageMeter) Count() int { return m.count }

func (m *AverageMeter) String() string {
	return fmt.Sprintf("%.4f (n=%d)", m.Average(), m.count)
}

// TopKAccuracy returns, for each k, the percentage of rows in the (batch,
// classes) logits whose target class ranks among the k highest scores.
func TopKAccuracy(logits *tensor.RawTensor, targets *tensor.RawTensor, ks ...int) []float64 {
	ld := logits.AsFloat32()
	td := targets.AsInt32()
	shape := logits.Shape()
	batch, classes := shape[0], shape[1]
	if len(td) != batch {
		panic(fmt.Sprintf("metrics: %d targets for batch %d", len(td), batch))
	}

	maxK := 0
	for _, k := range ks {
		if k < 1 || k > classes {
			panic(fmt.Sprintf("metrics: k=%d out of range for %d classes", k, classes))
		}
		if k > maxK {
			maxK = k
		}
	}

	correct := make([]int, len(ks))
	order := make([]int, classes)
	for i := 0; i < batch; i++ {
		row := ld[i*classes : (i+1)*classes]
		for j := range order {
			order[j] = j
		}
		sort.Slice(order, func(a, b int) bool { return row[order[a]] > row[order[b]] })

		rank := -1
		for r := 0; r < maxK; r++ {
			if int32(order[r]) == td[i] {
				rank = r
				break
			}
		}
		if rank < 0 {
			continue
		}
		for ki, k := range ks {
			if rank < k {
				correct[ki]++
			}
		}
	}

	accs := make([]float64, len(ks))
	for ki := range ks {
		accs[ki] = 100 * float64(correct[ki]) / float64(batch)
	}
	return accs
}
