package main

import (
	"github.com/born-ml/gan/autodiff"
	"github.com/born-ml/gan/backend/cpu"
	"github.com/born-ml/gan/nn"
)

// Backend is the autodiff-wrapped CPU backend used by the demo.
type Backend = *autodiff.Backend[*cpu.Backend]

const (
	imageSize = 8
	channels  = 8
)

// Generator maps a latent vector to an 8×8×1 image in [-1, 1].
type Generator struct {
	*nn.Sequential[Backend]
	attention *nn.SelfAttention[Backend]
}

func newGenerator(latentDim int, backend Backend) *Generator {
	sn := nn.DefaultSpectralNormConfig()
	attnCfg := nn.DefaultSelfAttentionConfig[Backend](channels)
	attnCfg.SpectralNorm = sn
	attention := nn.NewSelfAttention(attnCfg, backend)

	seq := nn.NewSequential[Backend](
		nn.NewSNDense(latentDim, 4*4*2*channels, sn, backend),
		nn.NewReshape[Backend](4, 4, 2*channels),
		nn.NewReLU[Backend](),
		nn.NewSNTransposedConv2D(nn.Conv2DConfig[Backend]{
			KernelH: 4, KernelW: 4, InChannels: 2 * channels, OutChannels: channels, Stride: 2, Padding: 1,
		}, sn, backend),
		nn.NewReLU[Backend](),
		attention,
		nn.NewSNConv2D(nn.Conv2DConfig[Backend]{
			KernelH: 3, KernelW: 3, InChannels: channels, OutChannels: 1, Padding: 1,
		}, sn, backend),
		nn.NewTanh[Backend](),
	)
	return &Generator{Sequential: seq, attention: attention}
}

// Discriminator scores 8×8×1 images with an unbounded realness logit.
type Discriminator struct {
	*nn.Sequential[Backend]
	attention *nn.SelfAttention[Backend]
}

func newDiscriminator(backend Backend) *Discriminator {
	sn := nn.DefaultSpectralNormConfig()
	attnCfg := nn.DefaultSelfAttentionConfig[Backend](channels)
	attnCfg.SpectralNorm = sn
	attention := nn.NewSelfAttention(attnCfg, backend)

	seq := nn.NewSequential[Backend](
		nn.NewSNConv2D(nn.Conv2DConfig[Backend]{
			KernelH: 3, KernelW: 3, InChannels: 1, OutChannels: channels, Padding: 1,
		}, sn, backend),
		nn.NewLeakyReLU[Backend](0.1),
		attention,
		nn.NewSNConv2D(nn.Conv2DConfig[Backend]{
			KernelH: 4, KernelW: 4, InChannels: channels, OutChannels: 2 * channels, Stride: 2, Padding: 1,
		}, sn, backend),
		nn.NewLeakyReLU[Backend](0.1),
		nn.NewReshape[Backend](4*4*2*channels),
		nn.NewSNDense(4*4*2*channels, 1, sn, backend),
	)
	return &Discriminator{Sequential: seq, attention: attention}
}

func countParameters(m nn.Module[Backend]) int {
	n := 0
	for _, p := range m.Parameters() {
		n += p.Tensor().NumElements()
	}
	return n
}
