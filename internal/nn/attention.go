package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// SelfAttentionConfig configures SelfAttention.
type SelfAttentionConfig[B tensor.Backend] struct {
	// Channels of the NHWC input. Must be a positive multiple of 8.
	Channels int

	// SpectralNorm applies to all four 1×1 projections.
	SpectralNorm SpectralNormConfig

	// Initializer for the projection filters. Nil means GlorotUniform.
	Initializer Initializer[B]
}

// DefaultSelfAttentionConfig returns a config with Glorot-uniform projections
// and spectral normalization disabled.
func DefaultSelfAttentionConfig[B tensor.Backend](channels int) SelfAttentionConfig[B] {
	return SelfAttentionConfig[B]{
		Channels:     channels,
		SpectralNorm: SpectralNormConfig{Enabled: false, NumPowerIterations: 1},
		Initializer:  GlorotUniform[B],
	}
}

// SelfAttention is non-local self-attention with 2×2 downsampled keys and values.
//
// For input x of shape [B, H, W, C]:
//
//	theta = conv1x1(x, C/8)                 -> [B, HW, C/8]
//	phi   = maxpool(conv1x1(x, C/8))        -> [B, HW/4, C/8]
//	g     = maxpool(conv1x1(x, C/2))        -> [B, HW/4, C/2]
//	attn  = softmax(theta @ phiᵗ)           -> [B, HW, HW/4]
//	y     = conv1x1(attn @ g, C)·gate + x   -> [B, H, W, C]
//
// The gate starts at zero, so a fresh layer returns its input unchanged.
type SelfAttention[B tensor.Backend] struct {
	channels int
	theta    *SNConv2D[B]
	phi      *SNConv2D[B]
	g        *SNConv2D[B]
	output   *SNConv2D[B]
	pool     *MaxPool2D[B]
	gate     *Parameter[B] // [1]
}

// NewSelfAttention creates a new self-attention layer.
// Panics if Channels is not a positive multiple of 8.
func NewSelfAttention[B tensor.Backend](cfg SelfAttentionConfig[B], backend B) *SelfAttention[B] {
	c := cfg.Channels
	if c <= 0 || c%8 != 0 {
		panic(fmt.Sprintf("self_attention: channels must be a positive multiple of 8, got %d", c))
	}

	project := func(name string, in, out int) *SNConv2D[B] {
		conv := NewSNConv2D(Conv2DConfig[B]{
			KernelH:     1,
			KernelW:     1,
			InChannels:  in,
			OutChannels: out,
			Initializer: cfg.Initializer,
		}, cfg.SpectralNorm, backend)
		prefixLeaves[B](name, conv)
		return conv
	}

	return &SelfAttention[B]{
		channels: c,
		theta:    project("theta", c, c/8),
		phi:      project("phi", c, c/8),
		g:        project("g", c, c/2),
		output:   project("output", c/2, c),
		pool:     NewMaxPool2D[B](2, 2),
		gate:     NewParameter("gate", Zeros(tensor.Shape{1}, backend)),
	}
}

// Forward applies gated self-attention with a residual connection.
func (a *SelfAttention[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	batch, h, w := a.checkInput(input)

	attention := a.ComputeAttention(input)                                     // [B, HW, HW/4]
	g := a.pool.Forward(a.g.Forward(input)).Reshape(batch, h*w/4, a.channels/2) // [B, HW/4, C/2]

	x := attention.BatchMatMul(g).Reshape(batch, h, w, a.channels/2)
	x = a.output.Forward(x)

	return x.Mul(a.gate.Tensor()).Add(input)
}

// ComputeAttention returns the row-stochastic attention map [B, HW, HW/4].
func (a *SelfAttention[B]) ComputeAttention(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	batch, h, w := a.checkInput(input)

	theta := a.theta.Forward(input).Reshape(batch, h*w, a.channels/8)
	phi := a.pool.Forward(a.phi.Forward(input)).Reshape(batch, h*w/4, a.channels/8)

	return theta.BatchMatMul(phi.Transpose(0, 2, 1)).Softmax(-1)
}

// Parameters returns the projection parameters followed by the gate.
func (a *SelfAttention[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, conv := range a.projections() {
		params = append(params, conv.Parameters()...)
	}
	return append(params, a.gate)
}

// Buffers returns the power-iteration vectors of the projections.
func (a *SelfAttention[B]) Buffers() []*Buffer[B] {
	var bufs []*Buffer[B]
	for _, conv := range a.projections() {
		bufs = append(bufs, conv.Buffers()...)
	}
	return bufs
}

// SetPhase sets the phase of every projection.
func (a *SelfAttention[B]) SetPhase(phase Phase) {
	for _, conv := range a.projections() {
		conv.SetPhase(phase)
	}
}

// Gate returns the residual gate parameter.
func (a *SelfAttention[B]) Gate() *Parameter[B] {
	return a.gate
}

// Channels returns the number of input and output channels.
func (a *SelfAttention[B]) Channels() int {
	return a.channels
}

func (a *SelfAttention[B]) checkInput(input *tensor.Tensor[float32, B]) (batch, h, w int) {
	shape := input.Shape()
	if len(shape) != 4 || shape[3] != a.channels {
		panic(fmt.Sprintf("self_attention: expected input [batch, height, width, %d], got %v", a.channels, shape))
	}
	if shape[1]%2 != 0 || shape[2]%2 != 0 {
		panic(fmt.Sprintf("self_attention: height and width must be even, got %dx%d", shape[1], shape[2]))
	}
	return shape[0], shape[1], shape[2]
}

func (a *SelfAttention[B]) projections() []*SNConv2D[B] {
	return []*SNConv2D[B]{a.theta, a.phi, a.g, a.output}
}
