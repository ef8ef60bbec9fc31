package nn_test

import (
	"testing"

	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSelfAttention_ZeroGateIsIdentity(t *testing.T) {
	backend := newBackend()
	attn := nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[Backend](16), backend)

	x := randInput(tensor.Shape{2, 4, 6, 16}, 3, backend)
	y := attn.Forward(x)

	assert.Equal(t, x.Shape(), y.Shape())
	assert.Equal(t, x.Data(), y.Data())
}

func TestSelfAttention_NonZeroGateChangesOutput(t *testing.T) {
	backend := newBackend()
	attn := nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[Backend](8), backend)
	attn.Gate().Tensor().Data()[0] = 0.5

	x := randInput(tensor.Shape{1, 4, 4, 8}, 11, backend)
	y := attn.Forward(x)

	assert.Equal(t, tensor.Shape{1, 4, 4, 8}, y.Shape())
	assert.NotEqual(t, x.Data(), y.Data())
}

func TestSelfAttention_AttentionRowsSumToOne(t *testing.T) {
	backend := newBackend()
	attn := nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[Backend](8), backend)

	x := randInput(tensor.Shape{2, 4, 4, 8}, 5, backend)
	weights := attn.ComputeAttention(x)
	require.Equal(t, tensor.Shape{2, 16, 4}, weights.Shape())

	data := weights.Data()
	for row := 0; row < 2*16; row++ {
		var sum float32
		for j := 0; j < 4; j++ {
			v := data[row*4+j]
			assert.GreaterOrEqual(t, v, float32(0))
			sum += v
		}
		assert.InDelta(t, 1.0, sum, 1e-5)
	}
}

func TestSelfAttention_InvalidChannelsPanics(t *testing.T) {
	backend := newBackend()
	for _, channels := range []int{0, 4, 12, -8} {
		assert.Panics(t, func() {
			nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[Backend](channels), backend)
		}, "channels=%d", channels)
	}
}

func TestSelfAttention_InvalidInputPanics(t *testing.T) {
	backend := newBackend()
	attn := nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[Backend](8), backend)

	assert.Panics(t, func() { attn.Forward(randInput(tensor.Shape{1, 3, 4, 8}, 1, backend)) })
	assert.Panics(t, func() { attn.Forward(randInput(tensor.Shape{1, 4, 4, 16}, 1, backend)) })
	assert.Panics(t, func() { attn.Forward(randInput(tensor.Shape{4, 4, 8}, 1, backend)) })
}

func TestSelfAttention_Leaves(t *testing.T) {
	backend := newBackend()
	attn := nn.NewSelfAttention(nn.DefaultSelfAttentionConfig[Backend](8), backend)

	var names []string
	for _, leaf := range nn.Leaves[Backend](attn) {
		names = append(names, leaf.Name())
	}
	assert.Equal(t, []string{
		"theta.weight", "theta.bias",
		"phi.weight", "phi.bias",
		"g.weight", "g.bias",
		"output.weight", "output.bias",
		"gate",
		"theta.v", "phi.v", "g.v", "output.v",
	}, names)

	assert.Equal(t, tensor.Shape{1}, attn.Gate().Tensor().Shape())
	assert.Equal(t, []float32{0}, attn.Gate().Tensor().Data())
}

func TestSelfAttention_SpectralNormPhase(t *testing.T) {
	backend := newBackend()
	cfg := nn.DefaultSelfAttentionConfig[Backend](8)
	cfg.SpectralNorm = nn.DefaultSpectralNormConfig()
	attn := nn.NewSelfAttention(cfg, backend)

	snapshot := func() [][]float32 {
		var out [][]float32
		for _, b := range attn.Buffers() {
			out = append(out, append([]float32(nil), b.Tensor().Data()...))
		}
		return out
	}

	x := randInput(tensor.Shape{1, 4, 4, 8}, 2, backend)
	before := snapshot()
	attn.Forward(x)
	assert.Equal(t, before, snapshot())

	attn.SetPhase(nn.Training)
	attn.Forward(x)
	assert.NotEqual(t, before, snapshot())
}
