// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

package nn

import (
	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
)

// Module is the interface implemented by every layer.
type Module[B tensor.Backend] = nn.Module[B]

// Phase selects training or inference behavior.
type Phase = nn.Phase

// Phases.
const (
	Inference = nn.Inference
	Training  = nn.Training
)

// Parameter is a trainable tensor.
type Parameter[B tensor.Backend] = nn.Parameter[B]

// Buffer is a persisted tensor that is not trained.
type Buffer[B tensor.Backend] = nn.Buffer[B]

// Leaf is a named parameter or buffer.
type Leaf[B tensor.Backend] = nn.Leaf[B]

// NewParameter creates a new parameter with the given name and tensor.
func NewParameter[B tensor.Backend](name string, t *tensor.Tensor[float32, B]) *Parameter[B] {
	return nn.NewParameter(name, t)
}

// Leaves returns every parameter followed by every buffer of m.
func Leaves[B tensor.Backend](m Module[B]) []Leaf[B] {
	return nn.Leaves(m)
}

// StateDict returns the leaves of m keyed by name.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	return nn.StateDict(m)
}

// LoadStateDict copies state into the leaves of m.
func LoadStateDict[B tensor.Backend](m Module[B], state map[string]*tensor.RawTensor) error {
	return nn.LoadStateDict(m, state)
}

// Initializer creates a weight tensor from its fan-in and fan-out.
type Initializer[B tensor.Backend] = nn.Initializer[B]

// GlorotUniform samples U(-a, a) with a = sqrt(6 / (fanIn + fanOut)).
func GlorotUniform[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return nn.GlorotUniform(fanIn, fanOut, shape, backend)
}

// RandomNormal returns an initializer sampling N(0, stddev²).
func RandomNormal[B tensor.Backend](stddev float64) Initializer[B] {
	return nn.RandomNormal[B](stddev)
}

// Dense is a fully connected layer.
type Dense[B tensor.Backend] = nn.Dense[B]

// NewDense creates a dense layer with Glorot-uniform weights.
//
//	backend := cpu.New()
//	layer := nn.NewDense(128, 256, backend)
func NewDense[B tensor.Backend](inFeatures, outFeatures int, backend B) *Dense[B] {
	return nn.NewDense(inFeatures, outFeatures, backend)
}

// Conv2DConfig configures Conv2D and TransposedConv2D.
type Conv2DConfig[B tensor.Backend] = nn.Conv2DConfig[B]

// Conv2D is a 2D convolution over NHWC input.
type Conv2D[B tensor.Backend] = nn.Conv2D[B]

// NewConv2D creates a convolution layer.
func NewConv2D[B tensor.Backend](cfg Conv2DConfig[B], backend B) *Conv2D[B] {
	return nn.NewConv2D(cfg, backend)
}

// TransposedConv2D is the adjoint of Conv2D, used for upsampling.
type TransposedConv2D[B tensor.Backend] = nn.TransposedConv2D[B]

// NewTransposedConv2D creates a transposed convolution layer.
func NewTransposedConv2D[B tensor.Backend](cfg Conv2DConfig[B], backend B) *TransposedConv2D[B] {
	return nn.NewTransposedConv2D(cfg, backend)
}

// MaxPool2D is max pooling over NHWC input.
type MaxPool2D[B tensor.Backend] = nn.MaxPool2D[B]

// NewMaxPool2D creates a max pooling layer.
func NewMaxPool2D[B tensor.Backend](kernelSize, stride int) *MaxPool2D[B] {
	return nn.NewMaxPool2D[B](kernelSize, stride)
}

// Activations

// ReLU applies max(0, x).
type ReLU[B tensor.Backend] = nn.ReLU[B]

// NewReLU creates a ReLU module.
func NewReLU[B tensor.Backend]() *ReLU[B] { return nn.NewReLU[B]() }

// LeakyReLU applies x for x > 0 and alpha·x otherwise.
type LeakyReLU[B tensor.Backend] = nn.LeakyReLU[B]

// NewLeakyReLU creates a LeakyReLU module.
func NewLeakyReLU[B tensor.Backend](alpha float64) *LeakyReLU[B] { return nn.NewLeakyReLU[B](alpha) }

// Tanh applies the hyperbolic tangent.
type Tanh[B tensor.Backend] = nn.Tanh[B]

// NewTanh creates a Tanh module.
func NewTanh[B tensor.Backend]() *Tanh[B] { return nn.NewTanh[B]() }

// Sigmoid applies the logistic function.
type Sigmoid[B tensor.Backend] = nn.Sigmoid[B]

// NewSigmoid creates a Sigmoid module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] { return nn.NewSigmoid[B]() }

// Reshape reshapes each sample, keeping the batch dimension.
type Reshape[B tensor.Backend] = nn.Reshape[B]

// NewReshape creates a Reshape module.
func NewReshape[B tensor.Backend](dims ...int) *Reshape[B] { return nn.NewReshape[B](dims...) }

// DepthToSpace moves channel blocks into spatial blocks.
type DepthToSpace[B tensor.Backend] = nn.DepthToSpace[B]

// NewDepthToSpace creates a DepthToSpace module.
func NewDepthToSpace[B tensor.Backend](blockSize int) *DepthToSpace[B] {
	return nn.NewDepthToSpace[B](blockSize)
}

// SpaceToDepth moves spatial blocks into channel blocks.
type SpaceToDepth[B tensor.Backend] = nn.SpaceToDepth[B]

// NewSpaceToDepth creates a SpaceToDepth module.
func NewSpaceToDepth[B tensor.Backend](blockSize int) *SpaceToDepth[B] {
	return nn.NewSpaceToDepth[B](blockSize)
}

// Sequential chains modules.
type Sequential[B tensor.Backend] = nn.Sequential[B]

// NewSequential creates a Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	return nn.NewSequential(modules...)
}

// Spectral normalization

// SpectralNormConfig configures spectral normalization.
type SpectralNormConfig = nn.SpectralNormConfig

// DefaultSpectralNormConfig enables normalization with one power iteration.
func DefaultSpectralNormConfig() SpectralNormConfig {
	return nn.DefaultSpectralNormConfig()
}

// SpectralNorm holds the power-iteration state of one weight.
type SpectralNorm[B tensor.Backend] = nn.SpectralNorm[B]

// PowerIterate refines v for the rows×cols matrix w and returns the estimate
// of its largest singular value.
func PowerIterate(w []float32, rows, cols int, v []float32, k int) (sigma float32, u, vNext []float32) {
	return nn.PowerIterate(w, rows, cols, v, k)
}

// SNDense is a spectrally normalized dense layer.
type SNDense[B tensor.Backend] = nn.SNDense[B]

// NewSNDense creates a spectrally normalized dense layer.
func NewSNDense[B tensor.Backend](inFeatures, outFeatures int, cfg SpectralNormConfig, backend B) *SNDense[B] {
	return nn.NewSNDense(inFeatures, outFeatures, cfg, backend)
}

// SNConv2D is a spectrally normalized convolution.
type SNConv2D[B tensor.Backend] = nn.SNConv2D[B]

// NewSNConv2D creates a spectrally normalized convolution.
func NewSNConv2D[B tensor.Backend](conv Conv2DConfig[B], cfg SpectralNormConfig, backend B) *SNConv2D[B] {
	return nn.NewSNConv2D(conv, cfg, backend)
}

// SNTransposedConv2D is a spectrally normalized transposed convolution.
type SNTransposedConv2D[B tensor.Backend] = nn.SNTransposedConv2D[B]

// NewSNTransposedConv2D creates a spectrally normalized transposed convolution.
func NewSNTransposedConv2D[B tensor.Backend](conv Conv2DConfig[B], cfg SpectralNormConfig, backend B) *SNTransposedConv2D[B] {
	return nn.NewSNTransposedConv2D(conv, cfg, backend)
}

// Attention

// SelfAttentionConfig configures SelfAttention.
type SelfAttentionConfig[B tensor.Backend] = nn.SelfAttentionConfig[B]

// DefaultSelfAttentionConfig returns the configuration for channels with
// spectral normalization disabled.
func DefaultSelfAttentionConfig[B tensor.Backend](channels int) SelfAttentionConfig[B] {
	return nn.DefaultSelfAttentionConfig[B](channels)
}

// SelfAttention is gated non-local attention over NHWC feature maps.
type SelfAttention[B tensor.Backend] = nn.SelfAttention[B]

// NewSelfAttention creates a self-attention layer.
//
//	attn := nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[B](64), backend)
func NewSelfAttention[B tensor.Backend](cfg SelfAttentionConfig[B], backend B) *SelfAttention[B] {
	return nn.NewSelfAttention(cfg, backend)
}

// BlockAttentionConfig configures ConvolutionalBlockAttention.
type BlockAttentionConfig[B tensor.Backend] = nn.BlockAttentionConfig[B]

// DefaultBlockAttentionConfig returns the configuration for channels with a
// channel reduction of 16.
func DefaultBlockAttentionConfig[B tensor.Backend](channels int) BlockAttentionConfig[B] {
	return nn.DefaultBlockAttentionConfig[B](channels)
}

// ConvolutionalBlockAttention applies a channel mask and a spatial mask.
type ConvolutionalBlockAttention[B tensor.Backend] = nn.ConvolutionalBlockAttention[B]

// NewConvolutionalBlockAttention creates a block attention layer.
func NewConvolutionalBlockAttention[B tensor.Backend](cfg BlockAttentionConfig[B], backend B) *ConvolutionalBlockAttention[B] {
	return nn.NewConvolutionalBlockAttention(cfg, backend)
}
