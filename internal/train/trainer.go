// Package train runs the training and evaluation loops.
package train

import (
	"fmt"
	"io"
	"math/rand"
	"os"
	"time"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/autodiff"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/metrics"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/mnist"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/model"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/optim"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Trainer drives a classifier through gradient descent on MNIST batches.
// The model's tensors must be bound to the trainer's autodiff backend.
type Trainer[B tensor.Backend] struct {
	backend   *autodiff.AutodiffBackend[B]
	model     model.Classifier[*autodiff.AutodiffBackend[B]]
	optimizer optim.Optimizer[*autodiff.AutodiffBackend[B]]

	// Out receives progress lines; defaults to os.Stdout.
	Out io.Writer
}

// New creates a trainer for the given model and optimizer.
func New[B tensor.Backend](backend *autodiff.AutodiffBackend[B],
	m model.Classifier[*autodiff.AutodiffBackend[B]],
	opt optim.Optimizer[*autodiff.AutodiffBackend[B]]) *Trainer[B] {
	return &Trainer[B]{backend: backend, model: m, optimizer: opt, Out: os.Stdout}
}

// Result summarizes one evaluation pass.
type Result struct {
	Loss float64
	Top1 float64
	Top5 float64
}

// Fit trains for the given number of epochs, evaluating on test after
// each one. Whenever test top-1 accuracy strictly improves on the best
// seen so far, the model is checkpointed to checkpointPath (when
// non-empty). initialBest seeds the record, so resuming from a restored
// checkpoint never overwrites it with a worse model; pass 0 for a fresh
// run. It returns the best accuracy reached.
func (t *Trainer[B]) Fit(train, test *mnist.Dataset, epochs, batchSize int, rng *rand.Rand, checkpointPath string, initialBest float64) (float64, error) {
	tape := t.backend.Tape()
	tape.StartRecording()
	defer tape.StopRecording()

	best := initialBest
	for epoch := 1; epoch <= epochs; epoch++ {
		start := time.Now()
		batches := train.Batches(rng, batchSize, true)
		loss, acc := t.TrainEpoch(epoch, batches)

		result := t.Evaluate(test.Batches(rng, batchSize, false))
		fmt.Fprintf(t.Out, "epoch %d: train loss %.4f acc %.2f%% | test loss %.4f top1 %.2f%% top5 %.2f%% (%.1fs)\n",
			epoch, loss, acc, result.Loss, result.Top1, result.Top5, time.Since(start).Seconds())

		if result.Top1 > best {
			best = result.Top1
			if checkpointPath != "" {
				if err := model.SaveCheckpoint(checkpointPath, t.model, best); err != nil {
					return best, err
				}
				fmt.Fprintf(t.Out, "saved checkpoint %s (top1 %.2f%%)\n", checkpointPath, best)
			}
		}
	}
	return best, nil
}

// TrainEpoch runs one pass over the batches, updating parameters after
// each batch, and returns the epoch's mean loss and accuracy.
func (t *Trainer[B]) TrainEpoch(epoch int, batches []mnist.Batch) (loss, acc float64) {
	t.model.SetTraining(true)
	tape := t.backend.Tape()

	lossMeter := metrics.NewAverageMeter()
	accMeter := metrics.NewAverageMeter()
	for i, batch := range batches {
		tape.Clear()

		images := tensor.FromRaw[float32](t.backend, batch.Images)
		labels := tensor.FromRaw[int32](t.backend, batch.Labels)

		logits := t.model.Forward(images)
		batchLoss := tensor.CrossEntropy(logits, labels)

		grad := tensor.NewRaw(tensor.Shape{1}, tensor.Float32)
		grad.AsFloat32()[0] = 1
		grads := tape.Backward(t.backend.Inner(), batchLoss.Raw(), grad)
		t.optimizer.Step(grads)

		n := batch.Size()
		lossMeter.Update(float64(batchLoss.Item()), n)
		accMeter.Update(metrics.TopKAccuracy(logits.Raw(), batch.Labels, 1)[0], n)

		fmt.Fprintf(t.Out, "\repoch %d: batch %d/%d loss %.4f acc %.2f%%",
			epoch, i+1, len(batches), lossMeter.Average(), accMeter.Average())
	}
	fmt.Fprintln(t.Out)
	return lossMeter.Average(), accMeter.Average()
}

// Evaluate runs a pure inference pass: the tape does not record and
// dropout is disabled, so no parameters change.
func (t *Trainer[B]) Evaluate(batches []mnist.Batch) Result {
	tape := t.backend.Tape()
	wasRecording := tape.IsRecording()
	tape.StopRecording()
	defer func() {
		if wasRecording {
			tape.StartRecording()
		}
	}()

	t.model.SetTraining(false)

	lossMeter := metrics.NewAverageMeter()
	top1Meter := metrics.NewAverageMeter()
	top5Meter := metrics.NewAverageMeter()
	for _, batch := range batches {
		images := tensor.FromRaw[float32](t.backend, batch.Images)
		labels := tensor.FromRaw[int32](t.backend, batch.Labels)

		logits := t.model.Forward(images)
		loss := tensor.CrossEntropy(logits, labels)
		accs := metrics.TopKAccuracy(logits.Raw(), batch.Labels, 1, 5)

		n := batch.Size()
		lossMeter.Update(float64(loss.Item()), n)
		top1Meter.Update(accs[0], n)
		top5Meter.Update(accs[1], n)
	}
	return Result{
		Loss: lossMeter.Average(),
		Top1: top1Meter.Average(),
		Top5: top5Meter.Average(),
	}
}
