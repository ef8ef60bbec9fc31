package cpu

import (
	"fmt"
	"math"

	"github.com/born-ml/gan/internal/tensor"
)

// ReLU applies max(0, x) element-wise.
func (cpu *CPUBackend) ReLU(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x, reluFn[float32], reluFn[float64])
}

// LeakyReLU applies x for x > 0 and alpha·x otherwise.
func (cpu *CPUBackend) LeakyReLU(x *tensor.RawTensor, alpha float64) *tensor.RawTensor {
	return cpu.unary(x,
		func(v float32) float32 {
			if v > 0 {
				return v
			}
			return float32(alpha) * v
		},
		func(v float64) float64 {
			if v > 0 {
				return v
			}
			return alpha * v
		})
}

// Tanh applies the hyperbolic tangent element-wise.
func (cpu *CPUBackend) Tanh(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x,
		func(v float32) float32 { return float32(math.Tanh(float64(v))) },
		math.Tanh)
}

// Sigmoid applies 1/(1+exp(-x)) element-wise.
func (cpu *CPUBackend) Sigmoid(x *tensor.RawTensor) *tensor.RawTensor {
	return cpu.unary(x,
		func(v float32) float32 { return float32(sigmoid(float64(v))) },
		sigmoid)
}

// Softmax normalizes x along dim using the max-shifted exponential.
func (cpu *CPUBackend) Softmax(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeAxis(dim, len(shape))
	outer, size, inner := splitAt(shape, dim)

	result := cpu.alloc("softmax", shape, x.DType())
	switch x.DType() {
	case tensor.Float32:
		softmaxLoop(cpu, x.AsFloat32(), result.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		softmaxLoop(cpu, x.AsFloat64(), result.AsFloat64(), outer, size, inner)
	default:
		panic(fmt.Sprintf("softmax: unsupported dtype %s", x.DType()))
	}
	return result
}

func reluFn[T float](v T) T {
	if v > 0 {
		return v
	}
	return 0
}

func sigmoid(v float64) float64 {
	return 1 / (1 + math.Exp(-v))
}

// splitAt returns the products of dimensions before dim, at dim and after dim.
func splitAt(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

func softmaxLoop[T float](cpu *CPUBackend, in, out []T, outer, size, inner int) {
	parallelFor(cpu, outer*inner, func(row int) {
		o, i := row/inner, row%inner
		base := o*size*inner + i

		maxV := in[base]
		for j := 1; j < size; j++ {
			maxV = max(maxV, in[base+j*inner])
		}
		var sum float64
		for j := 0; j < size; j++ {
			e := math.Exp(float64(in[base+j*inner] - maxV))
			out[base+j*inner] = T(e)
			sum += e
		}
		for j := 0; j < size; j++ {
			out[base+j*inner] = T(float64(out[base+j*inner]) / sum)
		}
	})
}
