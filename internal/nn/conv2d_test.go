package nn_test

import (
	"testing"

	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/stretchr/testify/assert"
)

func TestConv2D_PointwiseMatchesMatMul(t *testing.T) {
	backend := newBackend()
	conv := nn.NewConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 1, KernelW: 1, InChannels: 3, OutChannels: 2,
	}, backend)
	copy(conv.Bias().Tensor().Data(), []float32{1, -1})

	x := randInput(tensor.Shape{2, 3, 3, 3}, 7, backend)
	y := conv.Forward(x)
	assert.Equal(t, tensor.Shape{2, 3, 3, 2}, y.Shape())

	// A 1×1 filter [1, 1, in, out] acts as an [in, out] matrix on every pixel.
	want := x.Reshape(18, 3).MatMul(conv.Weight().Tensor().Reshape(3, 2)).Add(conv.Bias().Tensor())
	assert.InDeltaSlice(t, want.Data(), y.Data(), 1e-5)
}

func TestConv2D_OutputSize(t *testing.T) {
	backend := newBackend()
	conv := nn.NewConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 4, KernelW: 4, InChannels: 3, OutChannels: 5, Stride: 2, Padding: 1,
	}, backend)

	assert.Equal(t, [2]int{4, 4}, conv.ComputeOutputSize(8, 8))
	y := conv.Forward(randInput(tensor.Shape{1, 8, 8, 3}, 1, backend))
	assert.Equal(t, tensor.Shape{1, 4, 4, 5}, y.Shape())
}

func TestConv2D_WrongChannelsPanics(t *testing.T) {
	backend := newBackend()
	conv := nn.NewConv2D(nn.Conv2DConfig[Backend]{KernelH: 3, KernelW: 3, InChannels: 3, OutChannels: 4}, backend)
	assert.Panics(t, func() { conv.Forward(randInput(tensor.Shape{1, 5, 5, 2}, 1, backend)) })
}

func TestTransposedConv2D_Upsamples(t *testing.T) {
	backend := newBackend()
	conv := nn.NewTransposedConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 4, KernelW: 4, InChannels: 8, OutChannels: 4, Stride: 2, Padding: 1,
	}, backend)

	assert.Equal(t, tensor.Shape{4, 4, 4, 8}, conv.Weight().Tensor().Shape())
	assert.Equal(t, [2]int{8, 8}, conv.ComputeOutputSize(4, 4))

	y := conv.Forward(randInput(tensor.Shape{2, 4, 4, 8}, 3, backend))
	assert.Equal(t, tensor.Shape{2, 8, 8, 4}, y.Shape())
}

func TestTransposedConv2D_SinglePixelStampsFilter(t *testing.T) {
	backend := newBackend()
	conv := nn.NewTransposedConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 2, KernelW: 2, InChannels: 1, OutChannels: 1, DisableBias: true,
	}, backend)
	copy(conv.Weight().Tensor().Data(), []float32{1, 2, 3, 4})

	x, _ := tensor.FromSlice([]float32{2}, tensor.Shape{1, 1, 1, 1}, backend)
	y := conv.Forward(x)

	assert.Equal(t, tensor.Shape{1, 2, 2, 1}, y.Shape())
	assert.Equal(t, []float32{2, 4, 6, 8}, y.Data())
	assert.Len(t, conv.Parameters(), 1)
}

func TestMaxPool2D_NHWC(t *testing.T) {
	backend := newBackend()
	pool := nn.NewMaxPool2D[Backend](2, 2)

	// Two channels: channel 0 counts up, channel 1 counts down.
	data := make([]float32, 0, 32)
	for i := 0; i < 16; i++ {
		data = append(data, float32(i), float32(-i))
	}
	x, _ := tensor.FromSlice(data, tensor.Shape{1, 4, 4, 2}, backend)
	y := pool.Forward(x)

	assert.Equal(t, tensor.Shape{1, 2, 2, 2}, y.Shape())
	assert.Equal(t, []float32{5, 0, 7, -2, 13, -8, 15, -10}, y.Data())
}
