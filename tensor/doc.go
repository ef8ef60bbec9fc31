// Copyright 2025 Born ML Framework. All rights reserved.
// Use of this source code is governed by an Apache 2.0
// license that can be found in the LICENSE file.

// Package tensor provides the generic tensor type the GAN layers are built on.
//
// # Overview
//
// A Tensor[T, B] pairs typed storage (float32 or float64) with the backend
// that executes its operations. Operations never modify their operands; every
// call returns a new tensor. Broadcasting follows NumPy rules.
//
// # Basic Usage
//
//	import (
//	    "github.com/born-ml/gan/backend/cpu"
//	    "github.com/born-ml/gan/tensor"
//	)
//
//	func main() {
//	    backend := cpu.New()
//
//	    x := tensor.Randn[float32](tensor.Shape{4, 8}, backend)
//	    w := tensor.Ones[float32](tensor.Shape{8, 2}, backend)
//	    y := x.MatMul(w).Tanh()
//	}
//
// # Gradients
//
// Wrap the backend with autodiff.New to record operations on a gradient tape.
// Tensors created directly (FromSlice, Zeros, Randn) or obtained through
// Detach are constants for backpropagation.
package tensor
