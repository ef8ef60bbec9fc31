// Package ops defines the differentiable operations recorded on a gradient tape.
//
// Each operation keeps its inputs and output from the forward pass and turns
// an output gradient into one gradient per input during the backward pass.
package ops

import "github.com/born-ml/gan/internal/tensor"

// Operation represents a differentiable operation in the computation graph.
type Operation interface {
	// Backward computes gradients for inputs given the output gradient.
	// The result is aligned with Inputs(); a nil entry means no gradient.
	Backward(outputGrad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor

	// Inputs returns the input tensors for this operation.
	Inputs() []*tensor.RawTensor

	// Output returns the output tensor produced by this operation.
	Output() *tensor.RawTensor
}

// recorded holds the tensors shared by every operation.
type recorded struct {
	inputs []*tensor.RawTensor
	output *tensor.RawTensor
}

func record(output *tensor.RawTensor, inputs ...*tensor.RawTensor) recorded {
	return recorded{inputs: inputs, output: output}
}

// Inputs returns the input tensors.
func (r recorded) Inputs() []*tensor.RawTensor {
	return r.inputs
}

// Output returns the output tensor.
func (r recorded) Output() *tensor.RawTensor {
	return r.output
}
