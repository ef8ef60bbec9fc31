// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package nn provides the layers used to build GAN generators and
// discriminators.
//
// # Spectral normalization
//
// SNDense, SNConv2D and SNTransposedConv2D divide their weight by an estimate
// of its largest singular value before every forward call. The estimate comes
// from power iteration seeded by a persisted vector v, which is refined and
// stored only while the layer is in the Training phase:
//
//	d := nn.NewSNConv2D(nn.Conv2DConfig[B]{
//	    KernelH: 3, KernelW: 3, InChannels: 3, OutChannels: 64, Padding: 1,
//	}, nn.DefaultSpectralNormConfig(), backend)
//	d.SetPhase(nn.Training)
//
// # Self-attention
//
// SelfAttention implements non-local attention with 2×2 downsampled keys and
// values and a zero-initialized residual gate.
//
// # State
//
// Leaves enumerates parameters then buffers with stable, dotted names.
// StateDict and LoadStateDict use those names as keys.
package nn
