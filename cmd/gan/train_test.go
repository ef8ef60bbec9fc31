package main

import (
	"math"
	"testing"

	"github.com/born-ml/gan/nn"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func smallConfig() demoConfig {
	cfg := defaultDemoConfig()
	cfg.Steps = 2
	cfg.BatchSize = 2
	cfg.LatentDim = 4
	return cfg
}

func TestTrainer_Step(t *testing.T) {
	tr, err := newTrainer(smallConfig())
	require.NoError(t, err)

	before := snapshot(tr.average.Average())
	stats := tr.Step()

	for _, v := range []float32{stats.LossD, stats.LossG, stats.RealScore, stats.FakeScore} {
		assert.False(t, math.IsNaN(float64(v)))
	}
	assert.GreaterOrEqual(t, stats.LossD, float32(0))
	assert.NotEqual(t, before, snapshot(tr.average.Average()))
}

func TestTrainer_SampleStats(t *testing.T) {
	tr, err := newTrainer(smallConfig())
	require.NoError(t, err)

	mean, std := tr.SampleStats(4)
	assert.True(t, mean >= -1 && mean <= 1)
	assert.Greater(t, std, 0.0)
}

func TestTrainer_RealBatch(t *testing.T) {
	tr, err := newTrainer(smallConfig())
	require.NoError(t, err)

	images := tr.realBatch()
	assert.Equal(t, []int{2, imageSize, imageSize, 1}, []int(images.Shape()))
	for _, v := range images.Data() {
		assert.LessOrEqual(t, math.Abs(float64(v)), 0.8+1e-6)
	}
}

func TestNewTrainer_InvalidConfig(t *testing.T) {
	cfg := smallConfig()
	cfg.BatchSize = 0
	_, err := newTrainer(cfg)
	assert.Error(t, err)

	cfg = smallConfig()
	cfg.EMABeta = 2
	_, err = newTrainer(cfg)
	assert.Error(t, err)
}

func snapshot(m nn.Module[Backend]) [][]float32 {
	var out [][]float32
	for _, leaf := range nn.Leaves(m) {
		out = append(out, append([]float32(nil), leaf.Tensor().Data()...))
	}
	return out
}
