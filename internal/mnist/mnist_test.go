package mnist

import (
	"bytes"
	"encoding/binary"
	"image"
	"image/png"
	"math/rand"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

func encodeImages(t *testing.T, magic uint32, count, rows, cols int, pixels []byte) *bytes.Reader {
	t.Helper()
	var buf bytes.Buffer
	for _, v := range []uint32{magic, uint32(count), uint32(rows), uint32(cols)} {
		require.NoError(t, binary.Write(&buf, binary.BigEndian, v))
	}
	buf.Write(pixels)
	return bytes.NewReader(buf.Bytes())
}

func TestReadImages(t *testing.T) {
	pixels := []byte{0, 128, 255, 64, 32, 16, 8, 4}
	r := encodeImages(t, 2051, 2, 2, 2, pixels)

	images, err := ReadImages(r)
	require.NoError(t, err)
	assert.True(t, images.Shape().Equal(tensor.Shape{2, 2, 2}))
	assert.Equal(t, pixels, images.AsUint8())
}

func TestReadImagesRejectsBadMagic(t *testing.T) {
	r := encodeImages(t, 2049, 1, 2, 2, make([]byte, 4))
	_, err := ReadImages(r)
	assert.ErrorContains(t, err, "magic")
}

func TestReadImagesTruncated(t *testing.T) {
	r := encodeImages(t, 2051, 2, 2, 2, make([]byte, 3))
	_, err := ReadImages(r)
	assert.Error(t, err)
}

func TestReadLabels(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(2049)))
	require.NoError(t, binary.Write(&buf, binary.BigEndian, uint32(3)))
	buf.Write([]byte{7, 0, 9})

	labels, err := ReadLabels(bytes.NewReader(buf.Bytes()))
	require.NoError(t, err)
	assert.Equal(t, []int32{7, 0, 9}, labels.AsInt32())
}

func TestTransformPixel(t *testing.T) {
	assert.Equal(t, float32(0), TransformPixel(0, false))
	assert.Equal(t, float32(1), TransformPixel(255, false))
	assert.InDelta(t, -Mean/Std, float64(TransformPixel(0, true)), 1e-6)
	assert.InDelta(t, (1-Mean)/Std, float64(TransformPixel(255, true)), 1e-6)
}

func syntheticDataset(n int) *Dataset {
	images := tensor.NewRaw(tensor.Shape{n, 1, 2, 2}, tensor.Float32)
	labels := tensor.NewRaw(tensor.Shape{n}, tensor.Int32)
	id := images.AsFloat32()
	ld := labels.AsInt32()
	for i := 0; i < n; i++ {
		for p := 0; p < 4; p++ {
			id[i*4+p] = float32(i)
		}
		ld[i] = int32(i)
	}
	return &Dataset{Images: images, Labels: labels}
}

func TestBatchesPartitionWithoutShuffle(t *testing.T) {
	d := syntheticDataset(10)
	batches := d.Batches(rand.New(rand.NewSource(1)), 4, false)
	require.Len(t, batches, 3)
	assert.Equal(t, 4, batches[0].Size())
	assert.Equal(t, 2, batches[2].Size())
	assert.Equal(t, []int32{0, 1, 2, 3}, batches[0].Labels.AsInt32())
	// Image rows travel with their labels.
	assert.Equal(t, float32(3), batches[0].Images.AsFloat32()[3*4])
}

func TestBatchesShuffleKeepsPairsAligned(t *testing.T) {
	d := syntheticDataset(64)
	batches := d.Batches(rand.New(rand.NewSource(2)), 16, true)

	seen := map[int32]bool{}
	for _, b := range batches {
		images := b.Images.AsFloat32()
		for i, label := range b.Labels.AsInt32() {
			assert.Equal(t, float32(label), images[i*4])
			seen[label] = true
		}
	}
	assert.Len(t, seen, 64)
}

func TestBatchesShuffleChangesOrder(t *testing.T) {
	d := syntheticDataset(256)
	plain := d.Batches(rand.New(rand.NewSource(3)), 256, false)[0].Labels.AsInt32()
	shuffled := d.Batches(rand.New(rand.NewSource(3)), 256, true)[0].Labels.AsInt32()
	assert.NotEqual(t, plain, shuffled)
}

func TestLoadImageScalesTo28x28(t *testing.T) {
	img := image.NewGray(image.Rect(0, 0, 56, 56))
	for y := 0; y < 56; y++ {
		for x := 0; x < 56; x++ {
			img.Pix[y*56+x] = 255
		}
	}
	path := filepath.Join(t.TempDir(), "digit.png")
	f, err := os.Create(path)
	require.NoError(t, err)
	require.NoError(t, png.Encode(f, img))
	require.NoError(t, f.Close())

	out, err := LoadImage(path, false)
	require.NoError(t, err)
	assert.True(t, out.Shape().Equal(tensor.Shape{1, 1, 28, 28}))
	for _, v := range out.AsFloat32() {
		assert.InDelta(t, 1, float64(v), 1e-2)
	}
}

func TestLoadImageMissingFile(t *testing.T) {
	_, err := LoadImage(filepath.Join(t.TempDir(), "absent.png"), false)
	assert.Error(t, err)
}
