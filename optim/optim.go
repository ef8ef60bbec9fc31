// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package optim provides SGD and Adam.
//
//	dOpt := optim.NewAdam(disc.Parameters(), optim.AdamConfig{LR: 4e-4, Beta2: 0.9})
//	gOpt := optim.NewAdam(gen.Parameters(), optim.DefaultAdamConfig())
package optim

import (
	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/optim"
	"github.com/born-ml/gan/internal/tensor"
)

// Optimizer is the interface implemented by every optimizer.
type Optimizer = optim.Optimizer

// SGD is stochastic gradient descent with optional momentum.
type SGD[B tensor.Backend] = optim.SGD[B]

// SGDConfig configures SGD.
type SGDConfig = optim.SGDConfig

// NewSGD creates an SGD optimizer.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	return optim.NewSGD(params, config)
}

// Adam is the Adam optimizer.
type Adam[B tensor.Backend] = optim.Adam[B]

// AdamConfig configures Adam.
type AdamConfig = optim.AdamConfig

// DefaultAdamConfig returns lr 1e-4 and betas (0, 0.9).
func DefaultAdamConfig() AdamConfig {
	return optim.DefaultAdamConfig()
}

// NewAdam creates an Adam optimizer.
func NewAdam[B tensor.Backend](params []*nn.Parameter[B], config AdamConfig) *Adam[B] {
	return optim.NewAdam(params, config)
}
