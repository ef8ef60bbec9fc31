package main

import (
	"math"
	"math/rand"

	"github.com/born-ml/gan/autodiff"
	"github.com/born-ml/gan/backend/cpu"
	"github.com/born-ml/gan/ema"
	"github.com/born-ml/gan/nn"
	"github.com/born-ml/gan/optim"
	"github.com/born-ml/gan/tensor"
	"github.com/pkg/errors"
)

type demoConfig struct {
	Steps           int
	BatchSize       int
	LatentDim       int
	Seed            int64
	LRDiscriminator float32
	LRGenerator     float32
	EMABeta         float32
	LogEvery        int
}

func defaultDemoConfig() demoConfig {
	return demoConfig{
		Steps:           100,
		BatchSize:       8,
		LatentDim:       16,
		Seed:            1,
		LRDiscriminator: 4e-4,
		LRGenerator:     1e-4,
		EMABeta:         ema.DefaultBeta,
		LogEvery:        10,
	}
}

type stepStats struct {
	LossD, LossG         float32
	RealScore, FakeScore float32
	DiscGate             float32
}

type trainer struct {
	cfg     demoConfig
	backend Backend
	rng     *rand.Rand

	gen     *Generator
	disc    *Discriminator
	average *ema.Averager[Backend]

	genOpt  *optim.Adam[Backend]
	discOpt *optim.Adam[Backend]
}

func newTrainer(cfg demoConfig) (*trainer, error) {
	if cfg.BatchSize <= 0 || cfg.LatentDim <= 0 || cfg.Steps <= 0 {
		return nil, errors.Errorf("invalid config: steps=%d batch=%d latent=%d", cfg.Steps, cfg.BatchSize, cfg.LatentDim)
	}
	if cfg.LogEvery <= 0 {
		cfg.LogEvery = 1
	}
	backend := autodiff.New(cpu.New())
	gen := newGenerator(cfg.LatentDim, backend)
	disc := newDiscriminator(backend)

	average, err := ema.New[Backend](gen, newGenerator(cfg.LatentDim, backend), cfg.EMABeta)
	if err != nil {
		return nil, errors.Wrap(err, "generator average")
	}

	gCfg := optim.DefaultAdamConfig()
	gCfg.LR = cfg.LRGenerator
	dCfg := optim.DefaultAdamConfig()
	dCfg.LR = cfg.LRDiscriminator

	return &trainer{
		cfg:     cfg,
		backend: backend,
		rng:     rand.New(rand.NewSource(cfg.Seed)), //nolint:gosec // G404: sampling, not crypto
		gen:     gen,
		disc:    disc,
		average: average,
		genOpt:  optim.NewAdam(gen.Parameters(), gCfg),
		discOpt: optim.NewAdam(disc.Parameters(), dCfg),
	}, nil
}

// Step runs one discriminator update followed by one generator update.
func (t *trainer) Step() stepStats {
	var stats stepStats
	tape := t.backend.Tape()

	// Discriminator: hinge loss on real and detached fake batches.
	t.gen.SetPhase(nn.Inference)
	t.disc.SetPhase(nn.Training)
	fake := t.gen.Forward(t.latent()).Detach()
	realImages := t.realBatch()

	tape.StartRecording()
	realScores := t.disc.Forward(realImages)
	fakeScores := t.disc.Forward(fake)
	lossD := mean(realScores.MulScalar(-1).AddScalar(1).ReLU()).
		Add(mean(fakeScores.AddScalar(1).ReLU()))
	gradsD := autodiff.Backward(lossD, t.backend)
	tape.StopRecording()
	tape.Clear()
	t.discOpt.Step(gradsD)

	stats.LossD = lossD.Item()
	stats.RealScore = mean(realScores).Item()
	stats.FakeScore = mean(fakeScores).Item()

	// Generator: maximize the discriminator score of fresh samples.
	t.gen.SetPhase(nn.Training)
	t.disc.SetPhase(nn.Inference)

	tape.StartRecording()
	lossG := mean(t.disc.Forward(t.gen.Forward(t.latent()))).MulScalar(-1)
	gradsG := autodiff.Backward(lossG, t.backend)
	tape.StopRecording()
	tape.Clear()
	t.genOpt.Step(gradsG)
	t.average.Update(t.gen)

	stats.LossG = lossG.Item()
	stats.DiscGate = t.disc.attention.Gate().Tensor().Item()
	return stats
}

// SampleStats draws n images from the averaged generator and returns the
// pixel mean and standard deviation.
func (t *trainer) SampleStats(n int) (mean, std float64) {
	g := t.average.Average()
	g.SetPhase(nn.Inference)

	pixels := g.Forward(tensor.RandnWithSource[float32](tensor.Shape{n, t.cfg.LatentDim}, t.rng, t.backend)).Data()
	for _, p := range pixels {
		mean += float64(p)
	}
	mean /= float64(len(pixels))
	for _, p := range pixels {
		d := float64(p) - mean
		std += d * d
	}
	return mean, math.Sqrt(std / float64(len(pixels)))
}

func (t *trainer) latent() *tensor.Tensor[float32, Backend] {
	return tensor.RandnWithSource[float32](tensor.Shape{t.cfg.BatchSize, t.cfg.LatentDim}, t.rng, t.backend)
}

// realBatch samples 8×8 images of horizontal sine stripes with random phase.
func (t *trainer) realBatch() *tensor.Tensor[float32, Backend] {
	data := make([]float32, t.cfg.BatchSize*imageSize*imageSize)
	for b := 0; b < t.cfg.BatchSize; b++ {
		phase := t.rng.Float64() * 2 * math.Pi
		for y := 0; y < imageSize; y++ {
			v := float32(0.8 * math.Sin(2*math.Pi*float64(y)/imageSize+phase))
			for x := 0; x < imageSize; x++ {
				data[(b*imageSize+y)*imageSize+x] = v
			}
		}
	}
	out, err := tensor.FromSlice(data, tensor.Shape{t.cfg.BatchSize, imageSize, imageSize, 1}, t.backend)
	if err != nil {
		panic(err)
	}
	return out
}

func mean(x *tensor.Tensor[float32, Backend]) *tensor.Tensor[float32, Backend] {
	return x.Sum().MulScalar(1 / float64(x.NumElements()))
}
