package nn_test

import (
	"math"
	"testing"

	"github.com/born-ml/gan/internal/autodiff"
	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestPowerIterate_Identity(t *testing.T) {
	w := []float32{
		1, 0, 0,
		0, 1, 0,
		0, 0, 1,
	}
	v := []float32{0.3, -1.2, 0.5}

	sigma, u, vNext := nn.PowerIterate(w, 3, 3, v, 1)

	assert.InDelta(t, 1.0, sigma, 1e-6)
	assert.InDeltaSlice(t, u, vNext, 1e-6)
	// Inputs are left untouched.
	assert.Equal(t, []float32{0.3, -1.2, 0.5}, v)
}

func TestPowerIterate_ZeroMatrixStaysFinite(t *testing.T) {
	w := make([]float32, 6)
	sigma, u, v := nn.PowerIterate(w, 2, 3, []float32{1, 2, 3}, 2)

	assert.Zero(t, sigma)
	for _, x := range append(u, v...) {
		assert.False(t, math.IsNaN(float64(x)))
	}
}

func TestPowerIterate_Diagonal(t *testing.T) {
	w := []float32{
		3, 0,
		0, 1,
		0, 0,
	}
	sigma, _, v := nn.PowerIterate(w, 3, 2, []float32{1, 1}, 20)

	assert.InDelta(t, 3.0, sigma, 1e-4)
	assert.InDelta(t, 1.0, math.Abs(float64(v[0])), 1e-4)
}

func TestPowerIterate_IndependentOfSliceOffset(t *testing.T) {
	const rows, cols = 7, 5
	w := make([]float32, rows*cols)
	fillWellConditioned(w, rows, cols, 11)
	v := []float32{0.7, -1.3, 0.2, 2.1, -0.4}

	at := func(src []float32, offset int) []float32 {
		buf := make([]float32, offset+len(src))
		copy(buf[offset:], src)
		return buf[offset:]
	}

	wantSigma, wantU, wantV := nn.PowerIterate(w, rows, cols, v, 1)
	for offset := 1; offset <= 7; offset++ {
		sigma, u, vNext := nn.PowerIterate(at(w, offset), rows, cols, at(v, offset), 1)
		assert.Equal(t, wantSigma, sigma, "offset %d", offset)
		assert.Equal(t, wantU, u, "offset %d", offset)
		assert.Equal(t, wantV, vNext, "offset %d", offset)
	}
}

func TestSNDense_ConvergesToUnitSpectralNorm(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNDense(10, 8, nn.DefaultSpectralNormConfig(), backend)
	fillWellConditioned(layer.Dense().Weight().Tensor().Data(), 10, 8, 42)
	layer.SetPhase(nn.Training)

	x := randInput(tensor.Shape{4, 10}, 1, backend)
	for i := 0; i < 100; i++ {
		layer.Forward(x)
	}

	normalized := layer.NormalizedWeight()
	assert.InDelta(t, 1.0, topSingularValue(t, normalized.Data(), 10, 8), 1e-3)

	raw := layer.Dense().Weight().Tensor().Data()
	assert.InDelta(t, topSingularValue(t, raw, 10, 8), float64(layer.SpectralNorm().Sigma()), 1e-3)
}

func TestSNDense_InferenceLeavesVUnchanged(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNDense(6, 5, nn.SpectralNormConfig{Enabled: true, NumPowerIterations: 3}, backend)
	before := append([]float32(nil), layer.SpectralNorm().V().Tensor().Data()...)

	x := randInput(tensor.Shape{2, 6}, 5, backend)
	first := layer.Forward(x).Data()
	sigma := layer.SpectralNorm().Sigma()
	for i := 0; i < 3; i++ {
		assert.Equal(t, first, layer.Forward(x).Data())
		assert.Equal(t, sigma, layer.SpectralNorm().Sigma())
	}

	assert.Equal(t, before, layer.SpectralNorm().V().Tensor().Data())
}

func TestSNDense_TrainingRefinesV(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNDense(6, 5, nn.DefaultSpectralNormConfig(), backend)
	before := append([]float32(nil), layer.SpectralNorm().V().Tensor().Data()...)

	layer.SetPhase(nn.Training)
	layer.Forward(randInput(tensor.Shape{2, 6}, 5, backend))

	assert.NotEqual(t, before, layer.SpectralNorm().V().Tensor().Data())
}

func TestSNDense_DisabledMatchesPlainDense(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNDense(6, 4, nn.SpectralNormConfig{Enabled: false}, backend)
	layer.SetPhase(nn.Training)
	before := append([]float32(nil), layer.SpectralNorm().V().Tensor().Data()...)

	x := randInput(tensor.Shape{3, 6}, 9, backend)
	got := layer.Forward(x).Data()
	want := layer.Dense().Forward(x).Data()

	assert.Equal(t, want, got)
	assert.Equal(t, before, layer.SpectralNorm().V().Tensor().Data())
}

func TestSNConv2D_DisabledMatchesPlainConv(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 3, KernelW: 3, InChannels: 2, OutChannels: 4, Padding: 1,
	}, nn.SpectralNormConfig{Enabled: false}, backend)
	layer.SetPhase(nn.Training)
	before := append([]float32(nil), layer.SpectralNorm().V().Tensor().Data()...)

	x := randInput(tensor.Shape{2, 4, 4, 2}, 6, backend)
	assert.Equal(t, layer.Conv().Forward(x).Data(), layer.Forward(x).Data())
	assert.Equal(t, before, layer.SpectralNorm().V().Tensor().Data())
}

func TestSNTransposedConv2D_DisabledMatchesPlainConv(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNTransposedConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 4, KernelW: 4, InChannels: 4, OutChannels: 2, Stride: 2, Padding: 1,
	}, nn.SpectralNormConfig{Enabled: false}, backend)
	layer.SetPhase(nn.Training)
	before := append([]float32(nil), layer.SpectralNorm().V().Tensor().Data()...)

	x := randInput(tensor.Shape{1, 3, 3, 4}, 12, backend)
	assert.Equal(t, layer.Conv().Forward(x).Data(), layer.Forward(x).Data())
	assert.Equal(t, before, layer.SpectralNorm().V().Tensor().Data())
}

func TestSNDense_Deterministic(t *testing.T) {
	backend := newBackend()
	a := nn.NewSNDense(7, 5, nn.DefaultSpectralNormConfig(), backend)
	b := nn.NewSNDense(7, 5, nn.DefaultSpectralNormConfig(), backend)
	require.NoError(t, nn.LoadStateDict[Backend](b, nn.StateDict[Backend](a)))
	a.SetPhase(nn.Training)
	b.SetPhase(nn.Training)

	x := randInput(tensor.Shape{2, 7}, 3, backend)
	for i := 0; i < 5; i++ {
		assert.Equal(t, a.Forward(x).Data(), b.Forward(x).Data())
		assert.Equal(t, a.SpectralNorm().Sigma(), b.SpectralNorm().Sigma())
		assert.Equal(t, a.SpectralNorm().V().Tensor().Data(), b.SpectralNorm().V().Tensor().Data())
	}
}

func TestSNDense_BiasIsNotNormalized(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNDense(3, 2, nn.DefaultSpectralNormConfig(), backend)
	copy(layer.Dense().Bias().Tensor().Data(), []float32{5, -5})

	y := layer.Forward(tensor.Zeros[float32](tensor.Shape{1, 3}, backend))
	assert.Equal(t, []float32{5, -5}, y.Data())
}

func TestSNDense_GradientReachesWeight(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNDense(4, 3, nn.DefaultSpectralNormConfig(), backend)
	layer.SetPhase(nn.Training)

	tape := backend.Tape()
	tape.StartRecording()
	loss := layer.Forward(randInput(tensor.Shape{5, 4}, 2, backend)).Sum()
	grads := autodiff.Backward(loss, backend)
	tape.StopRecording()

	dW, ok := grads[layer.Dense().Weight().Tensor().Raw()]
	require.True(t, ok)
	assert.Equal(t, tensor.Shape{4, 3}, dW.Shape())

	dB, ok := grads[layer.Dense().Bias().Tensor().Raw()]
	require.True(t, ok)
	assert.Equal(t, []float32{5, 5, 5}, dB.AsFloat32())

	// v is a constant of the graph.
	_, ok = grads[layer.SpectralNorm().V().Tensor().Raw()]
	assert.False(t, ok)
}

func TestSNConv2D_NormalizesReshapedFilter(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 3, KernelW: 3, InChannels: 4, OutChannels: 8, Padding: 1,
	}, nn.DefaultSpectralNormConfig(), backend)
	assert.Equal(t, tensor.Shape{1, 8}, layer.SpectralNorm().V().Tensor().Shape())

	fillWellConditioned(layer.Conv().Weight().Tensor().Data(), 36, 8, 7)
	layer.SetPhase(nn.Training)

	x := randInput(tensor.Shape{1, 5, 5, 4}, 4, backend)
	var y *tensor.Tensor[float32, Backend]
	for i := 0; i < 100; i++ {
		y = layer.Forward(x)
	}
	assert.Equal(t, tensor.Shape{1, 5, 5, 8}, y.Shape())
	assert.InDelta(t, 1.0, topSingularValue(t, layer.NormalizedWeight().Data(), 36, 8), 1e-3)
}

func TestSNTransposedConv2D_NormalizesReshapedFilter(t *testing.T) {
	backend := newBackend()
	layer := nn.NewSNTransposedConv2D(nn.Conv2DConfig[Backend]{
		KernelH: 4, KernelW: 4, InChannels: 6, OutChannels: 3, Stride: 2, Padding: 1,
	}, nn.DefaultSpectralNormConfig(), backend)
	// [kh, kw, out, in] is read as [kh·kw·out, in].
	assert.Equal(t, tensor.Shape{4, 4, 3, 6}, layer.Conv().Weight().Tensor().Shape())
	assert.Equal(t, tensor.Shape{1, 6}, layer.SpectralNorm().V().Tensor().Shape())

	fillWellConditioned(layer.Conv().Weight().Tensor().Data(), 48, 6, 13)
	layer.SetPhase(nn.Training)

	x := randInput(tensor.Shape{2, 3, 3, 6}, 8, backend)
	var y *tensor.Tensor[float32, Backend]
	for i := 0; i < 100; i++ {
		y = layer.Forward(x)
	}
	assert.Equal(t, tensor.Shape{2, 6, 6, 3}, y.Shape())
	assert.InDelta(t, 1.0, topSingularValue(t, layer.NormalizedWeight().Data(), 48, 6), 1e-3)
}

func TestSpectralNorm_InvalidIterationsPanics(t *testing.T) {
	backend := newBackend()
	assert.Panics(t, func() {
		nn.NewSNDense(3, 3, nn.SpectralNormConfig{Enabled: true, NumPowerIterations: 0}, backend)
	})
	assert.NotPanics(t, func() {
		nn.NewSNDense(3, 3, nn.SpectralNormConfig{Enabled: false}, backend)
	})
}
