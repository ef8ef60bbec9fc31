package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// SpectralNormConfig controls spectral normalization of a weight.
type SpectralNormConfig struct {
	// Enabled turns normalization on. A disabled layer uses its raw weight
	// and never touches its power-iteration state.
	Enabled bool

	// NumPowerIterations is the number of refinement steps per forward call.
	NumPowerIterations int
}

// DefaultSpectralNormConfig returns an enabled config with one power iteration.
func DefaultSpectralNormConfig() SpectralNormConfig {
	return SpectralNormConfig{Enabled: true, NumPowerIterations: 1}
}

// SpectralNorm divides a weight by an estimate of its largest singular value.
//
// The weight is viewed as a rows×cols matrix. The right singular vector
// estimate v ([1, cols], drawn from N(0, 1) at construction) persists across
// calls and is refined only by training-phase calls.
//
// Gradients flow through the weight in both the numerator and sigma = u·W·vᵗ;
// u and v themselves are constants.
type SpectralNorm[B tensor.Backend] struct {
	cfg   SpectralNormConfig
	rows  int
	cols  int
	v     *Buffer[B]
	phase Phase
	sigma float32
}

// NewSpectralNorm creates spectral normalization state for a rows×cols weight.
func NewSpectralNorm[B tensor.Backend](rows, cols int, cfg SpectralNormConfig, backend B) *SpectralNorm[B] {
	if cfg.Enabled && cfg.NumPowerIterations < 1 {
		panic(fmt.Sprintf("spectral norm: NumPowerIterations must be >= 1, got %d", cfg.NumPowerIterations))
	}
	if rows <= 0 || cols <= 0 {
		panic(fmt.Sprintf("spectral norm: invalid weight matrix %dx%d", rows, cols))
	}
	return &SpectralNorm[B]{
		cfg:  cfg,
		rows: rows,
		cols: cols,
		v:    NewBuffer("v", tensor.Randn[float32](tensor.Shape{1, cols}, backend)),
	}
}

// Estimate runs the power iteration on w from the persisted v without
// changing any state.
func (s *SpectralNorm[B]) Estimate(w []float32) (sigma float32, u, v []float32) {
	return PowerIterate(w, s.rows, s.cols, s.v.Tensor().Data(), s.cfg.NumPowerIterations)
}

// Commit stores v as the persisted right singular vector estimate.
func (s *SpectralNorm[B]) Commit(v []float32) {
	copy(s.v.Tensor().Data(), v)
}

// Normalize returns weight / sigma. v is committed only in the training phase.
// A disabled instance returns weight itself.
func (s *SpectralNorm[B]) Normalize(weight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	if !s.cfg.Enabled {
		return weight
	}
	if weight.NumElements() != s.rows*s.cols {
		panic(fmt.Sprintf("spectral norm: weight %v does not match %dx%d", weight.Shape(), s.rows, s.cols))
	}

	sigma, u, v := s.Estimate(weight.Data())
	if s.phase == Training {
		s.Commit(v)
	}
	s.sigma = sigma

	backend := weight.Backend()
	uRow, err := tensor.FromSlice(u, tensor.Shape{1, s.rows}, backend)
	if err != nil {
		panic(fmt.Sprintf("spectral norm: %v", err))
	}
	vCol, err := tensor.FromSlice(v, tensor.Shape{s.cols, 1}, backend)
	if err != nil {
		panic(fmt.Sprintf("spectral norm: %v", err))
	}

	sig := uRow.MatMul(weight.Reshape(s.rows, s.cols)).MatMul(vCol) // [1, 1]
	return weight.Div(sig)
}

// SetPhase sets the phase used by later Normalize calls.
func (s *SpectralNorm[B]) SetPhase(phase Phase) {
	s.phase = phase
}

// Phase returns the current phase.
func (s *SpectralNorm[B]) Phase() Phase {
	return s.phase
}

// Enabled reports whether normalization is applied.
func (s *SpectralNorm[B]) Enabled() bool {
	return s.cfg.Enabled
}

// NumPowerIterations returns the number of refinement steps per call.
func (s *SpectralNorm[B]) NumPowerIterations() int {
	return s.cfg.NumPowerIterations
}

// V returns the persisted right singular vector estimate.
func (s *SpectralNorm[B]) V() *Buffer[B] {
	return s.v
}

// Sigma returns the estimate computed by the last Normalize call.
func (s *SpectralNorm[B]) Sigma() float32 {
	return s.sigma
}

// Normalized returns weight / sigma as a constant tensor, estimating sigma
// from the persisted v without committing anything.
func (s *SpectralNorm[B]) Normalized(weight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := weight.Clone()
	if !s.cfg.Enabled {
		return out
	}
	sigma, _, _ := s.Estimate(weight.Data())
	data := out.Data()
	for i := range data {
		data[i] /= sigma
	}
	return out
}
