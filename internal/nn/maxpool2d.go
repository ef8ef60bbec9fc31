package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// MaxPool2D applies max pooling over NHWC input.
//
// Output shape: [batch, (height-k)/stride+1, (width-k)/stride+1, channels].
type MaxPool2D[B tensor.Backend] struct {
	stateless[B]
	kernelSize int
	stride     int
}

// NewMaxPool2D creates a new max pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int) *MaxPool2D[B] {
	if kernelSize <= 0 || stride <= 0 {
		panic(fmt.Sprintf("maxpool2d: invalid kernel size %d or stride %d", kernelSize, stride))
	}
	return &MaxPool2D[B]{kernelSize: kernelSize, stride: stride}
}

// Forward applies max pooling.
func (m *MaxPool2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if len(input.Shape()) != 4 {
		panic(fmt.Sprintf("maxpool2d: expected 4D input [batch, height, width, channels], got %v", input.Shape()))
	}
	backend := input.Backend()
	x := input.Transpose(0, 3, 1, 2)
	y := tensor.New[float32, B](backend.MaxPool2D(x.Raw(), m.kernelSize, m.stride), backend)
	return y.Transpose(0, 2, 3, 1)
}

// KernelSize returns the pooling window size.
func (m *MaxPool2D[B]) KernelSize() int {
	return m.kernelSize
}

// Stride returns the pooling stride.
func (m *MaxPool2D[B]) Stride() int {
	return m.stride
}
