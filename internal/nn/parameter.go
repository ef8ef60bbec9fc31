package nn

import (
	"github.com/born-ml/gan/internal/tensor"
)

// Parameter is a trainable tensor with an optional gradient.
type Parameter[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
	grad   *tensor.Tensor[float32, B]
}

// NewParameter creates a new Parameter.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return &Parameter[B]{name: name, tensor: t}
}

// Name returns the parameter name (e.g. "theta.weight").
func (p *Parameter[B]) Name() string {
	return p.name
}

// Tensor returns the parameter tensor.
func (p *Parameter[B]) Tensor() *tensor.Tensor[float32, B] {
	return p.tensor
}

// Grad returns the gradient tensor, or nil before a backward pass.
func (p *Parameter[B]) Grad() *tensor.Tensor[float32, B] {
	return p.grad
}

// SetGrad sets the gradient tensor.
func (p *Parameter[B]) SetGrad(grad *tensor.Tensor[float32, B]) {
	p.grad = grad
}

// ZeroGrad clears the gradient.
func (p *Parameter[B]) ZeroGrad() {
	p.grad = nil
}

// Buffer is persisted layer state that is never trained by gradients, such
// as the power-iteration vector of a spectrally normalized layer.
type Buffer[B tensor.Backend] struct {
	name   string
	tensor *tensor.Tensor[float32, B]
}

// NewBuffer creates a new Buffer.
func NewBuffer[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Buffer[B] {
	return &Buffer[B]{name: name, tensor: t}
}

// Name returns the buffer name.
func (b *Buffer[B]) Name() string {
	return b.name
}

// Tensor returns the buffer tensor.
func (b *Buffer[B]) Tensor() *tensor.Tensor[float32, B] {
	return b.tensor
}
