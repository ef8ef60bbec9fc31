package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// Dense is a fully connected layer: y = x @ W + b.
//
// W has shape [in, out] so that a spectral norm over W reads rows as inputs
// and columns as outputs.
//
//	layer := nn.NewDense[Backend](128, 64, backend)
//	y := layer.Forward(x) // [batch, 128] -> [batch, 64]
type Dense[B tensor.Backend] struct {
	stateless[B]
	inFeatures  int
	outFeatures int
	weight      *Parameter[B] // [in, out]
	bias        *Parameter[B] // [out]
}

// NewDense creates a Dense layer with Glorot-uniform weights and zero bias.
func NewDense[B tensor.Backend](inFeatures, outFeatures int, backend B) *Dense[B] {
	return NewDenseWithInitializer(inFeatures, outFeatures, GlorotUniform[B], backend)
}

// NewDenseWithInitializer creates a Dense layer with a custom weight initializer.
func NewDenseWithInitializer[B tensor.Backend](inFeatures, outFeatures int, init Initializer[B], backend B) *Dense[B] {
	if inFeatures <= 0 || outFeatures <= 0 {
		panic(fmt.Sprintf("dense: invalid features in=%d, out=%d", inFeatures, outFeatures))
	}
	return &Dense[B]{
		inFeatures:  inFeatures,
		outFeatures: outFeatures,
		weight:      NewParameter("weight", init(inFeatures, outFeatures, tensor.Shape{inFeatures, outFeatures}, backend)),
		bias:        NewParameter("bias", Zeros(tensor.Shape{outFeatures}, backend)),
	}
}

// Forward computes x @ W + b for x of shape [batch, in].
func (d *Dense[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return d.forwardWith(input, d.weight.Tensor())
}

func (d *Dense[B]) forwardWith(input, weight *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	shape := input.Shape()
	if len(shape) != 2 || shape[1] != d.inFeatures {
		panic(fmt.Sprintf("dense: expected input [batch, %d], got %v", d.inFeatures, shape))
	}
	return input.MatMul(weight).Add(d.bias.Tensor())
}

// Parameters returns [weight, bias].
func (d *Dense[B]) Parameters() []*Parameter[B] {
	return []*Parameter[B]{d.weight, d.bias}
}

// Weight returns the weight parameter.
func (d *Dense[B]) Weight() *Parameter[B] {
	return d.weight
}

// Bias returns the bias parameter.
func (d *Dense[B]) Bias() *Parameter[B] {
	return d.bias
}

// InFeatures returns the number of input features.
func (d *Dense[B]) InFeatures() int {
	return d.inFeatures
}

// OutFeatures returns the number of output features.
func (d *Dense[B]) OutFeatures() int {
	return d.outFeatures
}
