package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// BlockAttentionConfig configures ConvolutionalBlockAttention.
type BlockAttentionConfig[B tensor.Backend] struct {
	// Channels of the NHWC input.
	Channels int

	// HiddenChannels is the width of the shared channel MLP.
	HiddenChannels int

	// Initializer for the MLP weights and the spatial filter. Nil means GlorotUniform.
	Initializer Initializer[B]
}

// DefaultBlockAttentionConfig uses a channel reduction of 16 and
// Glorot-uniform weights.
func DefaultBlockAttentionConfig[B tensor.Backend](channels int) BlockAttentionConfig[B] {
	return BlockAttentionConfig[B]{
		Channels:       channels,
		HiddenChannels: channels / 16,
		Initializer:    GlorotUniform[B],
	}
}

// ConvolutionalBlockAttention reweights NHWC features with a channel mask
// followed by a spatial mask:
//
//	ca = sigmoid(mlp(max_hw x) + mlp(mean_hw x))     -> [B, 1, 1, C]
//	x  = x · ca
//	sa = sigmoid(conv7x7([max_c x, mean_c x]))       -> [B, H, W, 1]
//	y  = x · sa
//
// mlp is Dense(C, hidden) -> ReLU -> Dense(hidden, C), shared by both pooled
// descriptors. The 7×7 convolution keeps the spatial size.
type ConvolutionalBlockAttention[B tensor.Backend] struct {
	stateless[B]
	channels int
	dense1   *Dense[B]
	dense2   *Dense[B]
	conv     *Conv2D[B]
}

// NewConvolutionalBlockAttention creates a new block attention layer.
// Panics unless Channels and HiddenChannels are positive.
func NewConvolutionalBlockAttention[B tensor.Backend](cfg BlockAttentionConfig[B], backend B) *ConvolutionalBlockAttention[B] {
	if cfg.Channels <= 0 || cfg.HiddenChannels <= 0 {
		panic(fmt.Sprintf("block_attention: invalid channels %d with hidden %d", cfg.Channels, cfg.HiddenChannels))
	}
	if cfg.Initializer == nil {
		cfg.Initializer = GlorotUniform[B]
	}

	a := &ConvolutionalBlockAttention[B]{
		channels: cfg.Channels,
		dense1:   NewDenseWithInitializer(cfg.Channels, cfg.HiddenChannels, cfg.Initializer, backend),
		dense2:   NewDenseWithInitializer(cfg.HiddenChannels, cfg.Channels, cfg.Initializer, backend),
		conv: NewConv2D(Conv2DConfig[B]{
			KernelH:     7,
			KernelW:     7,
			InChannels:  2,
			OutChannels: 1,
			Padding:     3,
			Initializer: cfg.Initializer,
		}, backend),
	}
	prefixLeaves[B]("dense1", a.dense1)
	prefixLeaves[B]("dense2", a.dense2)
	prefixLeaves[B]("conv", a.conv)
	return a
}

// Forward applies the channel mask, then the spatial mask.
func (a *ConvolutionalBlockAttention[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkNHWC("block_attention", input, a.channels)
	x := input.Mul(a.ChannelAttention(input))
	return x.Mul(a.SpatialAttention(x))
}

// ChannelAttention returns the per-channel mask [B, 1, 1, C].
func (a *ConvolutionalBlockAttention[B]) ChannelAttention(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkNHWC("block_attention", input, a.channels)
	maxPooled := input.MaxDim(1, false).MaxDim(1, false) // [B, C]
	avgPooled := input.MeanDim(1, false).MeanDim(1, false)

	mask := a.mlp(maxPooled).Add(a.mlp(avgPooled)).Sigmoid()
	return mask.Reshape(input.Shape()[0], 1, 1, a.channels)
}

// SpatialAttention returns the per-pixel mask [B, H, W, 1].
func (a *ConvolutionalBlockAttention[B]) SpatialAttention(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	pooled := tensor.Cat([]*tensor.Tensor[float32, B]{
		input.MaxDim(3, true),
		input.MeanDim(3, true),
	}, 3) // [B, H, W, 2]
	return a.conv.Forward(pooled).Sigmoid()
}

func (a *ConvolutionalBlockAttention[B]) mlp(x *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return a.dense2.Forward(a.dense1.Forward(x).ReLU())
}

// Parameters returns the MLP parameters followed by the spatial filter.
func (a *ConvolutionalBlockAttention[B]) Parameters() []*Parameter[B] {
	params := append(a.dense1.Parameters(), a.dense2.Parameters()...)
	return append(params, a.conv.Parameters()...)
}

// Channels returns the expected input channels.
func (a *ConvolutionalBlockAttention[B]) Channels() int {
	return a.channels
}
