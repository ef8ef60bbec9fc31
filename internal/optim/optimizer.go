// Package optim implements the optimizers used to train generators and
// discriminators.
//
// Optimizers update the trainable parameters of a module in place from the
// gradient map returned by autodiff.Backward. Persisted buffers such as the
// spectral-norm power-iteration vectors are not parameters and are never
// touched.
//
//	backend.Tape().StartRecording()
//	loss := lossFn(model.Forward(x))
//	grads := autodiff.Backward(loss, backend)
//	backend.Tape().StopRecording()
//	backend.Tape().Clear()
//
//	opt.Step(grads)
package optim

import (
	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"gonum.org/v1/gonum/blas/blas32"
)

// Optimizer is the interface implemented by SGD and Adam.
type Optimizer interface {
	// Step applies one update from a gradient map produced by Backward.
	// Parameters without a gradient are skipped.
	Step(grads map[*tensor.RawTensor]*tensor.RawTensor)

	// ZeroGrad clears the gradients stored on the parameters.
	ZeroGrad()

	// GetLR returns the current learning rate.
	GetLR() float32
}

// getGradient returns the float32 gradient of param, or nil if param was not
// reached by the backward pass.
func getGradient[B tensor.Backend](param *nn.Parameter[B], grads map[*tensor.RawTensor]*tensor.RawTensor) []float32 {
	if param == nil {
		return nil
	}
	grad, ok := grads[param.Tensor().Raw()]
	if !ok {
		return nil
	}
	return grad.AsFloat32()
}

func vector(data []float32) blas32.Vector {
	return blas32.Vector{N: len(data), Inc: 1, Data: data}
}
