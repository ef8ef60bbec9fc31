// Package nn provides the neural network layers used to build GAN generators
// and discriminators: plain and spectrally normalized dense and convolution
// layers, downsampled self-attention, pooling and activations.
//
// Every layer works on float32 tensors. Convolutional layers use NHWC
// activations and [kh, kw, in, out] filters.
package nn

import (
	"github.com/born-ml/gan/internal/tensor"
)

// Phase selects how stateful layers behave during a forward call.
type Phase int

// Supported phases. Layers start in Inference.
const (
	Inference Phase = iota
	Training
)

// String returns the phase name.
func (p Phase) String() string {
	switch p {
	case Inference:
		return "inference"
	case Training:
		return "training"
	default:
		return "unknown"
	}
}

// Module is the interface implemented by every layer.
//
// Parameters and Buffers enumerate the module's leaves, children included,
// in a stable order fixed by the module's structure. Two modules built with
// the same constructor arguments enumerate isomorphic leaves.
type Module[B tensor.Backend] interface {
	// Forward computes the output of the module.
	Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B]

	// Parameters returns the trainable tensors.
	Parameters() []*Parameter[B]

	// Buffers returns the persisted non-trainable tensors.
	Buffers() []*Buffer[B]

	// SetPhase switches the module and its children to phase.
	SetPhase(phase Phase)
}

// Leaf is a named tensor owned by a module: a Parameter or a Buffer.
type Leaf[B tensor.Backend] interface {
	Name() string
	Tensor() *tensor.Tensor[float32, B]
}

// Leaves returns every parameter followed by every buffer of m.
func Leaves[B tensor.Backend](m Module[B]) []Leaf[B] {
	params, bufs := m.Parameters(), m.Buffers()
	leaves := make([]Leaf[B], 0, len(params)+len(bufs))
	for _, p := range params {
		leaves = append(leaves, p)
	}
	for _, b := range bufs {
		leaves = append(leaves, b)
	}
	return leaves
}

// stateless supplies the Module bookkeeping for layers without leaves.
type stateless[B tensor.Backend] struct{}

// Parameters returns nil.
func (stateless[B]) Parameters() []*Parameter[B] { return nil }

// Buffers returns nil.
func (stateless[B]) Buffers() []*Buffer[B] { return nil }

// SetPhase is a no-op.
func (stateless[B]) SetPhase(Phase) {}

// prefixLeaves qualifies the leaf names of m with prefix.
func prefixLeaves[B tensor.Backend](prefix string, m Module[B]) {
	for _, p := range m.Parameters() {
		p.name = prefix + "." + p.name
	}
	for _, b := range m.Buffers() {
		b.name = prefix + "." + b.name
	}
}
