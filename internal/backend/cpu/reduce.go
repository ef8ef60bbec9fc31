package cpu

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// Sum reduces every element to a scalar tensor.
func (cpu *CPUBackend) Sum(x *tensor.RawTensor) *tensor.RawTensor {
	result := cpu.alloc("sum", tensor.Shape{}, x.DType())
	switch x.DType() {
	case tensor.Float32:
		result.AsFloat32()[0] = float32(sumAll(x.AsFloat32()))
	case tensor.Float64:
		result.AsFloat64()[0] = sumAll(x.AsFloat64())
	}
	return result
}

// SumDim sums x along dim, optionally keeping it as a size-1 dimension.
func (cpu *CPUBackend) SumDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("sumdim", x, dim, keepDim, sumDimLoop[float32], sumDimLoop[float64])
}

// MaxDim takes the maximum of x along dim, optionally keeping it as a
// size-1 dimension.
func (cpu *CPUBackend) MaxDim(x *tensor.RawTensor, dim int, keepDim bool) *tensor.RawTensor {
	return cpu.reduceDim("maxdim", x, dim, keepDim, maxDimLoop[float32], maxDimLoop[float64])
}

func (cpu *CPUBackend) reduceDim(op string, x *tensor.RawTensor, dim int, keepDim bool,
	f32 func(in, out []float32, outer, size, inner int), f64 func(in, out []float64, outer, size, inner int),
) *tensor.RawTensor {
	shape := x.Shape()
	dim = tensor.NormalizeAxis(dim, len(shape))
	outer, size, inner := splitAt(shape, dim)
	if size == 0 {
		panic(fmt.Sprintf("%s: empty dimension %d in %v", op, dim, shape))
	}

	outShape := make(tensor.Shape, 0, len(shape))
	for i, d := range shape {
		switch {
		case i != dim:
			outShape = append(outShape, d)
		case keepDim:
			outShape = append(outShape, 1)
		}
	}

	result := cpu.alloc(op, outShape, x.DType())
	switch x.DType() {
	case tensor.Float32:
		f32(x.AsFloat32(), result.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		f64(x.AsFloat64(), result.AsFloat64(), outer, size, inner)
	}
	return result
}

func sumAll[T float](data []T) float64 {
	var s float64
	for _, v := range data {
		s += float64(v)
	}
	return s
}

func sumDimLoop[T float](in, out []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			var s float64
			for j := 0; j < size; j++ {
				s += float64(in[(o*size+j)*inner+i])
			}
			out[o*inner+i] = T(s)
		}
	}
}

func maxDimLoop[T float](in, out []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := in[o*size*inner+i]
			for j := 1; j < size; j++ {
				if v := in[(o*size+j)*inner+i]; v > best {
					best = v
				}
			}
			out[o*inner+i] = best
		}
	}
}
