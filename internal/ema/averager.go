// Package ema keeps an exponential moving average of a model's leaves.
//
// The averaged copy (the shadow) is a second instance of the same module
// structure. Every Update blends it toward the live model:
//
//	shadow = beta·shadow + (1-beta)·live
//
// Both trainable parameters and persisted buffers are averaged, in the order
// reported by nn.Leaves.
//
//	avg, err := ema.New[Backend](generator, shadowGenerator, ema.DefaultBeta)
//	for step := range steps {
//	    trainStep(generator)
//	    avg.Update(generator)
//	}
//	samples := avg.Average().Forward(z)
package ema

import (
	"fmt"

	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas/blas32"
)

// DefaultBeta is the decay used by most GAN generator averages.
const DefaultBeta float32 = 0.95

// Averager holds the shadow model and the decay rate.
type Averager[B tensor.Backend] struct {
	shadow nn.Module[B]
	leaves []nn.Leaf[B]
	beta   float32
}

// New creates an averager whose shadow starts as a copy of live.
//
// live and shadow must enumerate the same leaves: equal count, and matching
// name and shape at every position. beta must lie in [0, 1].
func New[B tensor.Backend](live, shadow nn.Module[B], beta float32) (*Averager[B], error) {
	if !inUnitInterval(beta) {
		return nil, errors.Errorf("ema: beta must be in [0, 1], got %v", beta)
	}

	liveLeaves := nn.Leaves(live)
	shadowLeaves := nn.Leaves(shadow)
	if err := match(liveLeaves, shadowLeaves); err != nil {
		return nil, errors.Wrap(err, "ema: live and shadow models differ")
	}

	for i, leaf := range shadowLeaves {
		copy(leaf.Tensor().Data(), liveLeaves[i].Tensor().Data())
	}

	return &Averager[B]{shadow: shadow, leaves: shadowLeaves, beta: beta}, nil
}

// Update blends every shadow leaf toward the matching leaf of live.
// Panics if live no longer matches the shadow structure.
func (a *Averager[B]) Update(live nn.Module[B]) {
	liveLeaves := nn.Leaves(live)
	if err := match(liveLeaves, a.leaves); err != nil {
		panic(fmt.Sprintf("ema: update: %v", err))
	}

	for i, leaf := range a.leaves {
		avg := vector(leaf.Tensor().Data())
		cur := vector(liveLeaves[i].Tensor().Data())
		blas32.Scal(a.beta, avg)
		blas32.Axpy(1-a.beta, cur, avg)
	}
}

// Average returns the shadow model.
func (a *Averager[B]) Average() nn.Module[B] {
	return a.shadow
}

// Beta returns the decay rate.
func (a *Averager[B]) Beta() float32 {
	return a.beta
}

// Lerp returns a + rate·(b - a). It panics unless rate lies in [0, 1].
func Lerp(a, b []float32, rate float32) []float32 {
	if len(a) != len(b) {
		panic(fmt.Sprintf("lerp: length mismatch %d vs %d", len(a), len(b)))
	}
	if !inUnitInterval(rate) {
		panic(fmt.Sprintf("lerp: rate must be in [0, 1], got %v", rate))
	}

	out := append([]float32(nil), a...)
	blas32.Scal(1-rate, vector(out))
	blas32.Axpy(rate, vector(b), vector(out))
	return out
}

// inUnitInterval is false for NaN.
func inUnitInterval(x float32) bool {
	return x >= 0 && x <= 1
}

func match[B tensor.Backend](live, shadow []nn.Leaf[B]) error {
	if len(live) != len(shadow) {
		return errors.Errorf("leaf count %d vs %d", len(live), len(shadow))
	}
	for i := range live {
		if live[i].Name() != shadow[i].Name() {
			return errors.Errorf("leaf %d: name %q vs %q", i, live[i].Name(), shadow[i].Name())
		}
		if !live[i].Tensor().Shape().Equal(shadow[i].Tensor().Shape()) {
			return errors.Errorf("leaf %d (%s): shape %v vs %v",
				i, live[i].Name(), live[i].Tensor().Shape(), shadow[i].Tensor().Shape())
		}
	}
	return nil
}

func vector(data []float32) blas32.Vector {
	return blas32.Vector{N: len(data), Inc: 1, Data: data}
}
