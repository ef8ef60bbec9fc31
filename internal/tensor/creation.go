package tensor

import (
	"math"
	"math/rand"
)

// Zeros creates a tensor filled with zeros.
func Zeros[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return New[T, B](MustNewRaw(shape, inferDataType[T](), b.Device()), b)
}

// Ones creates a tensor filled with ones.
func Ones[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return Full[T, B](shape, 1, b)
}

// Full creates a tensor filled with value.
//
//	gate := tensor.Full[float32](tensor.Shape{1}, 0, backend)
func Full[T DType, B Backend](shape Shape, value T, b B) *Tensor[T, B] {
	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = value
	}
	return t
}

// Eye creates an n×n identity matrix.
func Eye[T DType, B Backend](n int, b B) *Tensor[T, B] {
	t := Zeros[T, B](Shape{n, n}, b)
	data := t.Data()
	for i := 0; i < n; i++ {
		data[i*n+i] = 1
	}
	return t
}

// Randn creates a tensor with samples from N(0, 1) using the global source.
func Randn[T DType, B Backend](shape Shape, b B) *Tensor[T, B] {
	return RandnWithSource[T, B](shape, nil, b)
}

// RandnWithSource is Randn drawing from rng. A nil rng uses the global source.
// Samples are produced with the Box-Muller transform.
func RandnWithSource[T DType, B Backend](shape Shape, rng *rand.Rand, b B) *Tensor[T, B] {
	uniform := rand.Float64 //nolint:gosec // G404: math/rand is intended for weight init
	if rng != nil {
		uniform = rng.Float64
	}

	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := 0; i < len(data); i += 2 {
		u1 := 1 - uniform() // (0, 1] keeps the log finite
		u2 := uniform()
		r := math.Sqrt(-2 * math.Log(u1))
		data[i] = T(r * math.Cos(2*math.Pi*u2))
		if i+1 < len(data) {
			data[i+1] = T(r * math.Sin(2*math.Pi*u2))
		}
	}
	return t
}

// Uniform creates a tensor with samples from U(low, high).
func Uniform[T DType, B Backend](shape Shape, low, high float64, rng *rand.Rand, b B) *Tensor[T, B] {
	uniform := rand.Float64 //nolint:gosec // G404: math/rand is intended for weight init
	if rng != nil {
		uniform = rng.Float64
	}

	t := Zeros[T, B](shape, b)
	data := t.Data()
	for i := range data {
		data[i] = T(low + (high-low)*uniform())
	}
	return t
}
