package nn

import (
	"math/rand"

	"github.com/bassndao-fork/Deep-Learning-Experiments/internal/tensor"
)

// Conv2D is a 2D convolution layer over NCHW input with a square kernel.
type Conv2D[B tensor.Backend] struct {
	weight *Parameter[B]
	bias   *Parameter[B]

	outChannels int
	stride      int
	padding     int
}

// NewConv2D creates a Xavier-initialized convolution. The fan-in counts
// the full receptive field, inChannels*kernelSize^2.
func NewConv2D[B tensor.Backend](backend B, rng *rand.Rand, name string, inChannels, outChannels, kernelSize, stride, padding int) *Conv2D[B] {
	fanIn := inChannels * kernelSize * kernelSize
	fanOut := outChannels * kernelSize * kernelSize
	weight := XavierUniform(backend, rng,
		tensor.Shape{outChannels, inChannels, kernelSize, kernelSize}, fanIn, fanOut)
	bias := tensor.Zeros[float32](backend, tensor.Shape{outChannels})
	return &Conv2D[B]{
		weight:      NewParameter(name+".weight", weight),
		bias:        NewParameter(name+".bias", bias),
		outChannels: outChannels,
		stride:      stride,
		padding:     padding,
	}
}

// Forward applies the convolution to (batch, inChannels, h, w) input.
func (c *Conv2D[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := x.Conv2D(c.weight.Tensor(), c.stride, c.padding)
	return out.Add(c.bias.Tensor().Reshape(1, c.outChannels, 1, 1))
}

// Parameters returns the kernel weight and bias.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{c.weight, c.bias}
}

// Weight returns the kernel parameter, shaped (outC, inC, k, k).
func (c *Conv2D[B]) Weight() *Parameter[B] { return c.weight }

// MaxPool2D is a stateless max pooling layer.
type MaxPool2D[B tensor.Backend] struct {
	kernelSize int
	stride     int
}

func NewMaxPool2D[B tensor.Backend](kernelSize, stride int) *MaxPool2D[B] {
	return &MaxPool2D[B]{kernelSize: kernelSize, stride: stride}
}

func (m *MaxPool2D[B]) Forward(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return x.MaxPool2D(m.kernelSize, m.stride)
}

func (m *MaxPool2D[B]) Parameters() []*Parameter[B] { return nil }
