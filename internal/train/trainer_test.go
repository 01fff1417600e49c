package train_test

import (
	"bytes"
	"fmt"
	"math/rand"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/autodiff"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/backend/cpu"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/mnist"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/model"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/nn"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/optim"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/parallel"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/train"
)

type adBackend = *autodiff.AutodiffBackend[*cpu.Backend]

// linearModel is a minimal classifier for exercising the training loop.
type linearModel struct {
	fc *nn.Linear[adBackend]
}

func newLinearModel(b adBackend, rng *rand.Rand) *linearModel {
	return &linearModel{fc: nn.NewLinear(b, rng, "fc", 4, 2)}
}

func (m *linearModel) Forward(x *tensor.Tensor[float32, adBackend]) *tensor.Tensor[float32, adBackend] {
	return m.fc.Forward(x.Flatten())
}

func (m *linearModel) Parameters() []*nn.Parameter[adBackend] { return m.fc.Parameters() }

func (m *linearModel) StateDict() map[string]*tensor.RawTensor {
	state := map[string]*tensor.RawTensor{}
	for _, p := range m.Parameters() {
		state[p.Name()] = p.Raw().Clone()
	}
	return state
}

func (m *linearModel) LoadStateDict(state map[string]*tensor.RawTensor) error {
	for _, p := range m.Parameters() {
		src, ok := state[p.Name()]
		if !ok {
			return fmt.Errorf("missing %q", p.Name())
		}
		if err := p.CopyFrom(src); err != nil {
			return err
		}
	}
	return nil
}

func (m *linearModel) SetTraining(bool) {}
func (m *linearModel) Name() string    { return "cnn" }

// separableDataset puts class evidence in one pixel per class.
func separableDataset(rng *rand.Rand, n int) *mnist.Dataset {
	images := tensor.NewRaw(tensor.Shape{n, 1, 2, 2}, tensor.Float32)
	labels := tensor.NewRaw(tensor.Shape{n}, tensor.Int32)
	id := images.AsFloat32()
	ld := labels.AsInt32()
	for i := 0; i < n; i++ {
		class := int32(i % 2)
		ld[i] = class
		id[i*4+int(class)] = 1 + float32(rng.NormFloat64())*0.1
	}
	return &mnist.Dataset{Images: images, Labels: labels}
}

func newTrainer(t *testing.T, rng *rand.Rand) (*train.Trainer[*cpu.Backend], *linearModel, adBackend) {
	t.Helper()
	backend := autodiff.New(cpu.NewWithConfig(parallel.SerialConfig()))
	m := newLinearModel(backend, rng)
	opt := optim.NewAdam(m.Parameters(), 0.05)
	tr := train.New[*cpu.Backend](backend, m, opt)
	tr.Out = &bytes.Buffer{}
	return tr, m, backend
}

func TestFitLearnsSeparableData(t *testing.T) {
	rng := rand.New(rand.NewSource(1))
	tr, _, _ := newTrainer(t, rng)
	data := separableDataset(rng, 64)

	best, err := tr.Fit(data, data, 5, 16, rng, "", 0)
	require.NoError(t, err)
	assert.Greater(t, best, 95.0)
}

func TestEvaluateDoesNotRecordOrUpdate(t *testing.T) {
	rng := rand.New(rand.NewSource(2))
	tr, m, backend := newTrainer(t, rng)
	data := separableDataset(rng, 32)

	before := append([]float32(nil), m.fc.Weight().Data()...)
	tr.Evaluate(data.Batches(rng, 8, false))

	assert.Equal(t, 0, backend.Tape().NumOperations())
	assert.Equal(t, before, m.fc.Weight().Data())
}

func TestEvaluateRestoresRecordingState(t *testing.T) {
	rng := rand.New(rand.NewSource(3))
	tr, _, backend := newTrainer(t, rng)
	data := separableDataset(rng, 16)

	backend.Tape().StartRecording()
	tr.Evaluate(data.Batches(rng, 8, false))
	assert.True(t, backend.Tape().IsRecording())
}

func TestFitSavesCheckpointOnImprovement(t *testing.T) {
	rng := rand.New(rand.NewSource(4))
	tr, m, _ := newTrainer(t, rng)
	data := separableDataset(rng, 64)
	path := filepath.Join(t.TempDir(), "cnn-mnist.ckpt")

	best, err := tr.Fit(data, data, 3, 16, rng, path, 0)
	require.NoError(t, err)
	require.FileExists(t, path)

	// The checkpoint records the best accuracy reached.
	top1, err := model.RestoreCheckpoint(path, model.Classifier[adBackend](m))
	require.NoError(t, err)
	assert.InDelta(t, best, top1, 1e-4)
}

func TestFitKeepsCheckpointWhenSeededBestIsHigher(t *testing.T) {
	rng := rand.New(rand.NewSource(6))
	tr, _, _ := newTrainer(t, rng)
	data := separableDataset(rng, 64)
	path := filepath.Join(t.TempDir(), "cnn-mnist.ckpt")

	// A restored record no epoch can beat: the file must never be written.
	best, err := tr.Fit(data, data, 2, 16, rng, path, 100.0)
	require.NoError(t, err)
	assert.Equal(t, 100.0, best)
	assert.NoFileExists(t, path)
}

func TestTrainEpochReportsProgress(t *testing.T) {
	rng := rand.New(rand.NewSource(5))
	tr, _, backend := newTrainer(t, rng)
	out := &bytes.Buffer{}
	tr.Out = out
	data := separableDataset(rng, 16)

	backend.Tape().StartRecording()
	loss, acc := tr.TrainEpoch(1, data.Batches(rng, 8, true))
	assert.Contains(t, out.String(), "epoch 1")
	assert.Greater(t, loss, 0.0)
	assert.GreaterOrEqual(t, acc, 0.0)
}
