package ema_test

import (
	"math"
	"testing"

	"github.com/born-ml/gan/internal/autodiff"
	"github.com/born-ml/gan/internal/backend/cpu"
	"github.com/born-ml/gan/internal/ema"
	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type Backend = *autodiff.AutodiffBackend[*cpu.CPUBackend]

func newBackend() Backend {
	return autodiff.New(cpu.New())
}

func newModel(backend Backend) *nn.Sequential[Backend] {
	return nn.NewSequential[Backend](
		nn.NewSNDense(8, 8, nn.DefaultSpectralNormConfig(), backend),
		nn.NewLeakyReLU[Backend](0.2),
		nn.NewDense(8, 2, backend),
	)
}

func snapshot(m nn.Module[Backend]) [][]float32 {
	var out [][]float32
	for _, leaf := range nn.Leaves(m) {
		out = append(out, append([]float32(nil), leaf.Tensor().Data()...))
	}
	return out
}

func perturb(m nn.Module[Backend], delta float32) {
	for _, leaf := range nn.Leaves(m) {
		data := leaf.Tensor().Data()
		for i := range data {
			data[i] += delta * float32(i%3+1)
		}
	}
}

func TestNew_CopiesLiveIntoShadow(t *testing.T) {
	backend := newBackend()
	live, shadow := newModel(backend), newModel(backend)

	avg, err := ema.New[Backend](live, shadow, ema.DefaultBeta)
	require.NoError(t, err)

	assert.Equal(t, snapshot(live), snapshot(avg.Average()))
	assert.Equal(t, ema.DefaultBeta, avg.Beta())
}

func TestNew_RejectsInvalidBeta(t *testing.T) {
	backend := newBackend()
	for _, beta := range []float32{-0.1, 1.01, float32(math.NaN())} {
		_, err := ema.New[Backend](newModel(backend), newModel(backend), beta)
		assert.Error(t, err, "beta=%v", beta)
	}
}

func TestNew_RejectsMismatchedModels(t *testing.T) {
	backend := newBackend()

	_, err := ema.New[Backend](newModel(backend), nn.NewDense(8, 8, backend), 0.9)
	assert.Error(t, err)

	wider := nn.NewSequential[Backend](
		nn.NewSNDense(8, 16, nn.DefaultSpectralNormConfig(), backend),
		nn.NewLeakyReLU[Backend](0.2),
		nn.NewDense(16, 2, backend),
	)
	_, err = ema.New[Backend](newModel(backend), wider, 0.9)
	assert.Error(t, err)
}

func TestUpdate_BlendsEveryLeaf(t *testing.T) {
	backend := newBackend()
	live, shadow := newModel(backend), newModel(backend)
	const beta = 0.9

	avg, err := ema.New[Backend](live, shadow, beta)
	require.NoError(t, err)

	before := snapshot(shadow)
	perturb(live, 0.5)
	current := snapshot(live)

	avg.Update(live)

	after := snapshot(shadow)
	require.Len(t, after, 5)
	for i := range after {
		for j := range after[i] {
			want := beta*before[i][j] + (1-beta)*current[i][j]
			assert.InDelta(t, want, after[i][j], 1e-6)
		}
	}
}

func TestUpdate_BetaOneFreezesShadow(t *testing.T) {
	backend := newBackend()
	live, shadow := newModel(backend), newModel(backend)

	avg, err := ema.New[Backend](live, shadow, 1)
	require.NoError(t, err)
	before := snapshot(shadow)

	for i := 0; i < 3; i++ {
		perturb(live, 1)
		avg.Update(live)
	}
	assert.Equal(t, before, snapshot(shadow))
}

func TestUpdate_BetaZeroTracksLive(t *testing.T) {
	backend := newBackend()
	live, shadow := newModel(backend), newModel(backend)

	avg, err := ema.New[Backend](live, shadow, 0)
	require.NoError(t, err)

	perturb(live, 0.25)
	avg.Update(live)
	assert.Equal(t, snapshot(live), snapshot(shadow))
}

func TestUpdate_IdentityScenario(t *testing.T) {
	backend := newBackend()
	live := nn.NewDense(8, 8, backend)
	shadow := nn.NewDense(8, 8, backend)

	eye := tensor.Eye[float32](8, backend).Data()
	copy(live.Weight().Tensor().Data(), eye)

	avg, err := ema.New[Backend](live, shadow, ema.DefaultBeta)
	require.NoError(t, err)

	// Live moves to 2·I and its bias from 0 to 1.
	for i, v := range eye {
		live.Weight().Tensor().Data()[i] = 2 * v
	}
	for i := range live.Bias().Tensor().Data() {
		live.Bias().Tensor().Data()[i] = 1
	}
	avg.Update(live)

	w := shadow.Weight().Tensor().Data()
	for i := 0; i < 8; i++ {
		for j := 0; j < 8; j++ {
			want := 0.0
			if i == j {
				want = 1.05
			}
			assert.InDelta(t, want, w[i*8+j], 1e-6)
		}
	}
	for _, b := range shadow.Bias().Tensor().Data() {
		assert.InDelta(t, 0.05, b, 1e-6)
	}
}

func TestUpdate_AveragesBuffers(t *testing.T) {
	backend := newBackend()
	live := nn.NewSNDense(4, 4, nn.DefaultSpectralNormConfig(), backend)
	shadow := nn.NewSNDense(4, 4, nn.DefaultSpectralNormConfig(), backend)

	avg, err := ema.New[Backend](live, shadow, 0.5)
	require.NoError(t, err)

	v0 := append([]float32(nil), shadow.SpectralNorm().V().Tensor().Data()...)
	for i := range live.SpectralNorm().V().Tensor().Data() {
		live.SpectralNorm().V().Tensor().Data()[i] = 3
	}
	avg.Update(live)

	for i, v := range shadow.SpectralNorm().V().Tensor().Data() {
		assert.InDelta(t, 0.5*v0[i]+1.5, v, 1e-6)
	}
}

func TestUpdate_PanicsOnMismatch(t *testing.T) {
	backend := newBackend()
	avg, err := ema.New[Backend](newModel(backend), newModel(backend), 0.9)
	require.NoError(t, err)

	assert.Panics(t, func() { avg.Update(nn.NewDense(8, 8, backend)) })
}

func TestLerp(t *testing.T) {
	a := []float32{0, 2, -4}
	b := []float32{10, 2, 4}

	assert.InDeltaSlice(t, []float32{2.5, 2, -2}, ema.Lerp(a, b, 0.25), 1e-6)
	assert.Equal(t, a, ema.Lerp(a, b, 0))
	assert.Equal(t, b, ema.Lerp(a, b, 1))
	assert.Equal(t, []float32{0, 2, -4}, a)
	assert.Panics(t, func() { ema.Lerp(a, b[:2], 0.5) })
}

func TestLerp_RejectsRateOutsideUnitInterval(t *testing.T) {
	a := []float32{0, 1}
	b := []float32{1, 0}
	for _, rate := range []float32{-0.1, 1.5, float32(math.NaN())} {
		assert.Panics(t, func() { ema.Lerp(a, b, rate) }, "rate %v", rate)
	}
}
