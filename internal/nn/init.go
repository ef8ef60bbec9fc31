package nn

import (
	"math"

	"github.com/born-ml/gan/internal/tensor"
)

// Initializer creates a weight tensor of the given shape.
// fanIn and fanOut are the number of inputs and outputs of one unit.
type Initializer[B tensor.Backend] func(fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B]

// GlorotUniform samples U(-limit, limit) with limit = sqrt(6/(fanIn+fanOut)).
func GlorotUniform[B tensor.Backend](fanIn, fanOut int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	limit := math.Sqrt(6.0 / float64(fanIn+fanOut))
	return tensor.Uniform[float32](shape, -limit, limit, nil, backend)
}

// RandomNormal returns an initializer sampling N(0, stddev²).
func RandomNormal[B tensor.Backend](stddev float64) Initializer[B] {
	return func(_, _ int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
		t := tensor.Randn[float32](shape, backend)
		data := t.Data()
		for i := range data {
			data[i] *= float32(stddev)
		}
		return t
	}
}

// ZerosInitializer fills weights with zeros.
func ZerosInitializer[B tensor.Backend](_, _ int, shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return Zeros(shape, backend)
}

// Zeros creates a float32 tensor filled with zeros.
func Zeros[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Zeros[float32](shape, backend)
}

// Ones creates a float32 tensor filled with ones.
func Ones[B tensor.Backend](shape tensor.Shape, backend B) *tensor.Tensor[float32, B] {
	return tensor.Ones[float32](shape, backend)
}
