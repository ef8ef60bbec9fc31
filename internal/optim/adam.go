package optim

import (
	"math"

	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
)

// AdamConfig configures Adam.
//
// GAN training usually runs with Beta1 = 0, so zero betas are taken literally.
// Start from DefaultAdamConfig and override fields.
type AdamConfig struct {
	LR    float32
	Beta1 float32
	Beta2 float32
	Eps   float32
}

// DefaultAdamConfig returns the two-timescale setting common for spectrally
// normalized GANs: lr 1e-4, betas (0, 0.9).
func DefaultAdamConfig() AdamConfig {
	return AdamConfig{LR: 1e-4, Beta1: 0, Beta2: 0.9, Eps: 1e-8}
}

// Adam is the Adam optimizer with bias-corrected moment estimates.
//
//	m = β1·m + (1-β1)·g
//	v = β2·v + (1-β2)·g²
//	param -= lr · m̂ / (sqrt(v̂) + eps)
type Adam[B tensor.Backend] struct {
	params []*nn.Parameter[B]
	cfg    AdamConfig
	t      int
	m      map[*nn.Parameter[B]][]float32
	v      map[*nn.Parameter[B]][]float32
}

// NewAdam creates an Adam optimizer over params. Zero LR and Eps take their
// defaults.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	def := DefaultAdamConfig()
	if config.LR == 0 {
		config.LR = def.LR
	}
	if config.Eps == 0 {
		config.Eps = def.Eps
	}
	return &Adam[B]{
		params: params,
		cfg:    config,
		m:      make(map[*nn.Parameter[B]][]float32),
		v:      make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one update to every parameter found in grads.
func (a *Adam[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	a.t++
	c1 := float32(1 - math.Pow(float64(a.cfg.Beta1), float64(a.t)))
	c2 := float32(1 - math.Pow(float64(a.cfg.Beta2), float64(a.t)))

	for _, param := range a.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}
		m, v := a.moments(param, len(grad))
		data := param.Tensor().Data()

		b1, b2 := a.cfg.Beta1, a.cfg.Beta2
		for i, g := range grad {
			m[i] = b1*m[i] + (1-b1)*g
			v[i] = b2*v[i] + (1-b2)*g*g
			mHat := m[i] / c1
			vHat := v[i] / c2
			data[i] -= a.cfg.LR * mHat / (float32(math.Sqrt(float64(vHat))) + a.cfg.Eps)
		}
	}
}

func (a *Adam[B]) moments(param *nn.Parameter[B], n int) (m, v []float32) {
	m, ok := a.m[param]
	if !ok {
		m = make([]float32, n)
		a.m[param] = m
	}
	v, ok = a.v[param]
	if !ok {
		v = make([]float32, n)
		a.v[param] = v
	}
	return m, v
}

// ZeroGrad clears the gradients of all parameters.
func (a *Adam[B]) ZeroGrad() {
	for _, param := range a.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (a *Adam[B]) GetLR() float32 {
	return a.cfg.LR
}

// SetLR updates the learning rate.
func (a *Adam[B]) SetLR(lr float32) {
	a.cfg.LR = lr
}

// Timestep returns the number of completed steps.
func (a *Adam[B]) Timestep() int {
	return a.t
}
