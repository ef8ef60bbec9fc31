// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package ema keeps an exponential moving average of a model.
//
//	gen := buildGenerator(backend)
//	avg, err := ema.New[B](gen, buildGenerator(backend), ema.DefaultBeta)
//	if err != nil {
//	    log.Fatal(err)
//	}
//	for step := range steps {
//	    trainStep(gen)
//	    avg.Update(gen)
//	}
//	samples := avg.Average().Forward(z)
package ema

import (
	"github.com/born-ml/gan/internal/ema"
	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
)

// DefaultBeta is the default decay rate.
const DefaultBeta = ema.DefaultBeta

// Averager holds the averaged copy of a model.
type Averager[B tensor.Backend] = ema.Averager[B]

// New creates an averager whose shadow starts as a copy of live.
// live and shadow must have the same leaves, and beta must lie in [0, 1].
func New[B tensor.Backend](live, shadow nn.Module[B], beta float32) (*Averager[B], error) {
	return ema.New(live, shadow, beta)
}

// Lerp returns a + rate·(b - a) with rate clamped to [0, 1].
func Lerp(a, b []float32, rate float32) []float32 {
	return ema.Lerp(a, b, rate)
}
