package nn

import (
	"github.com/born-ml/gan/internal/tensor"
)

// SNDense is a Dense layer whose [in, out] weight is spectrally normalized
// on every forward call. The bias is used as is.
type SNDense[B tensor.Backend] struct {
	dense *Dense[B]
	sn    *SpectralNorm[B]
}

// NewSNDense creates a spectrally normalized dense layer.
func NewSNDense[B tensor.Backend](inFeatures, outFeatures int, cfg SpectralNormConfig, backend B) *SNDense[B] {
	return WrapDense(NewDense(inFeatures, outFeatures, backend), cfg, backend)
}

// WrapDense adds spectral normalization to an existing Dense layer.
func WrapDense[B tensor.Backend](dense *Dense[B], cfg SpectralNormConfig, backend B) *SNDense[B] {
	return &SNDense[B]{
		dense: dense,
		sn:    NewSpectralNorm(dense.inFeatures, dense.outFeatures, cfg, backend),
	}
}

// Forward computes x @ (W/sigma) + b.
func (l *SNDense[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.dense.forwardWith(input, l.sn.Normalize(l.dense.weight.Tensor()))
}

// Parameters returns [weight, bias].
func (l *SNDense[B]) Parameters() []*Parameter[B] { return l.dense.Parameters() }

// Buffers returns [v].
func (l *SNDense[B]) Buffers() []*Buffer[B] { return []*Buffer[B]{l.sn.v} }

// SetPhase sets the phase.
func (l *SNDense[B]) SetPhase(phase Phase) { l.sn.SetPhase(phase) }

// Dense returns the wrapped layer.
func (l *SNDense[B]) Dense() *Dense[B] { return l.dense }

// SpectralNorm returns the normalization state.
func (l *SNDense[B]) SpectralNorm() *SpectralNorm[B] { return l.sn }

// NormalizedWeight returns W/sigma without refining v.
func (l *SNDense[B]) NormalizedWeight() *tensor.Tensor[float32, B] {
	return l.sn.Normalized(l.dense.weight.Tensor())
}

// SNConv2D is a Conv2D whose [kh, kw, in, out] filter is spectrally normalized
// as a [kh·kw·in, out] matrix.
type SNConv2D[B tensor.Backend] struct {
	conv *Conv2D[B]
	sn   *SpectralNorm[B]
}

// NewSNConv2D creates a spectrally normalized convolution layer.
func NewSNConv2D[B tensor.Backend](conv Conv2DConfig[B], cfg SpectralNormConfig, backend B) *SNConv2D[B] {
	return WrapConv2D(NewConv2D(conv, backend), cfg, backend)
}

// WrapConv2D adds spectral normalization to an existing Conv2D layer.
func WrapConv2D[B tensor.Backend](conv *Conv2D[B], cfg SpectralNormConfig, backend B) *SNConv2D[B] {
	c := conv.cfg
	return &SNConv2D[B]{
		conv: conv,
		sn:   NewSpectralNorm(c.KernelH*c.KernelW*c.InChannels, c.OutChannels, cfg, backend),
	}
}

// Forward applies the convolution with the normalized filter.
func (l *SNConv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.conv.forwardWith(input, l.sn.Normalize(l.conv.weight.Tensor()))
}

// Parameters returns the convolution parameters.
func (l *SNConv2D[B]) Parameters() []*Parameter[B] { return l.conv.Parameters() }

// Buffers returns [v].
func (l *SNConv2D[B]) Buffers() []*Buffer[B] { return []*Buffer[B]{l.sn.v} }

// SetPhase sets the phase.
func (l *SNConv2D[B]) SetPhase(phase Phase) { l.sn.SetPhase(phase) }

// Conv returns the wrapped layer.
func (l *SNConv2D[B]) Conv() *Conv2D[B] { return l.conv }

// SpectralNorm returns the normalization state.
func (l *SNConv2D[B]) SpectralNorm() *SpectralNorm[B] { return l.sn }

// NormalizedWeight returns the filter divided by sigma without refining v.
func (l *SNConv2D[B]) NormalizedWeight() *tensor.Tensor[float32, B] {
	return l.sn.Normalized(l.conv.weight.Tensor())
}

// SNTransposedConv2D is a TransposedConv2D whose [kh, kw, out, in] filter is
// spectrally normalized as a [kh·kw·out, in] matrix.
type SNTransposedConv2D[B tensor.Backend] struct {
	conv *TransposedConv2D[B]
	sn   *SpectralNorm[B]
}

// NewSNTransposedConv2D creates a spectrally normalized transposed convolution.
func NewSNTransposedConv2D[B tensor.Backend](conv Conv2DConfig[B], cfg SpectralNormConfig, backend B) *SNTransposedConv2D[B] {
	return WrapTransposedConv2D(NewTransposedConv2D(conv, backend), cfg, backend)
}

// WrapTransposedConv2D adds spectral normalization to an existing layer.
func WrapTransposedConv2D[B tensor.Backend](conv *TransposedConv2D[B], cfg SpectralNormConfig, backend B) *SNTransposedConv2D[B] {
	c := conv.cfg
	return &SNTransposedConv2D[B]{
		conv: conv,
		sn:   NewSpectralNorm(c.KernelH*c.KernelW*c.OutChannels, c.InChannels, cfg, backend),
	}
}

// Forward applies the transposed convolution with the normalized filter.
func (l *SNTransposedConv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return l.conv.forwardWith(input, l.sn.Normalize(l.conv.weight.Tensor()))
}

// Parameters returns the convolution parameters.
func (l *SNTransposedConv2D[B]) Parameters() []*Parameter[B] { return l.conv.Parameters() }

// Buffers returns [v].
func (l *SNTransposedConv2D[B]) Buffers() []*Buffer[B] { return []*Buffer[B]{l.sn.v} }

// SetPhase sets the phase.
func (l *SNTransposedConv2D[B]) SetPhase(phase Phase) { l.sn.SetPhase(phase) }

// Conv returns the wrapped layer.
func (l *SNTransposedConv2D[B]) Conv() *TransposedConv2D[B] { return l.conv }

// SpectralNorm returns the normalization state.
func (l *SNTransposedConv2D[B]) SpectralNorm() *SpectralNorm[B] { return l.sn }

// NormalizedWeight returns the filter divided by sigma without refining v.
func (l *SNTransposedConv2D[B]) NormalizedWeight() *tensor.Tensor[float32, B] {
	return l.sn.Normalized(l.conv.weight.Tensor())
}
