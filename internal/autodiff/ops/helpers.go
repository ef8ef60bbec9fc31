package ops

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// reduceBroadcast sums grad down to targetShape, undoing forward broadcasting.
//
//	Forward:  a[3,1] + b[3,4] -> c[3,4]
//	Backward: grad_c[3,4] -> grad_a[3,1]
func reduceBroadcast(grad *tensor.RawTensor, targetShape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	if grad.Shape().Equal(targetShape) {
		return grad
	}

	for len(grad.Shape()) > len(targetShape) {
		grad = backend.SumDim(grad, 0, false)
	}
	for i, d := range targetShape {
		if d == 1 && grad.Shape()[i] != 1 {
			grad = backend.SumDim(grad, i, true)
		}
	}
	if !grad.Shape().Equal(targetShape) {
		grad = backend.Reshape(grad, targetShape)
	}
	return grad
}

// broadcastTo expands grad to shape by adding it onto zeros.
func broadcastTo(grad *tensor.RawTensor, shape tensor.Shape, backend tensor.Backend) *tensor.RawTensor {
	zeros, err := tensor.NewRaw(shape, grad.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("broadcast: %v", err))
	}
	return backend.Add(zeros, grad)
}

// mapGrad computes grad·f(x, y) element-wise, where x is the forward input
// and y the forward output.
func mapGrad(grad, x, y *tensor.RawTensor, f func(x, y float64) float64) *tensor.RawTensor {
	result := tensor.MustNewRaw(grad.Shape(), grad.DType(), grad.Device())
	switch grad.DType() {
	case tensor.Float32:
		g, xs, ys, out := grad.AsFloat32(), x.AsFloat32(), y.AsFloat32(), result.AsFloat32()
		for i := range out {
			out[i] = g[i] * float32(f(float64(xs[i]), float64(ys[i])))
		}
	case tensor.Float64:
		g, xs, ys, out := grad.AsFloat64(), x.AsFloat64(), y.AsFloat64(), result.AsFloat64()
		for i := range out {
			out[i] = g[i] * f(xs[i], ys[i])
		}
	}
	return result
}

func inversePermutation(axes []int) []int {
	inv := make([]int, len(axes))
	for i, ax := range axes {
		inv[ax] = i
	}
	return inv
}

// swapLast2 is the permutation exchanging the two innermost axes.
func swapLast2(rank int) []int {
	axes := make([]int, rank)
	for i := range axes {
		axes[i] = i
	}
	axes[rank-2], axes[rank-1] = axes[rank-1], axes[rank-2]
	return axes
}

// splitShape views shape as [outer, shape[dim], inner].
func splitShape(shape tensor.Shape, dim int) (outer, size, inner int) {
	outer, inner = 1, 1
	for i := 0; i < dim; i++ {
		outer *= shape[i]
	}
	for i := dim + 1; i < len(shape); i++ {
		inner *= shape[i]
	}
	return outer, shape[dim], inner
}

// narrow copies the slice [start, start+size) of x along dim.
func narrow(x *tensor.RawTensor, dim, start, size int) *tensor.RawTensor {
	outer, total, inner := splitShape(x.Shape(), dim)
	shape := x.Shape().Clone()
	shape[dim] = size
	result := tensor.MustNewRaw(shape, x.DType(), x.Device())
	switch x.DType() {
	case tensor.Float32:
		narrowCopy(result.AsFloat32(), x.AsFloat32(), outer, total*inner, start*inner, size*inner)
	case tensor.Float64:
		narrowCopy(result.AsFloat64(), x.AsFloat64(), outer, total*inner, start*inner, size*inner)
	}
	return result
}

func narrowCopy[T float32 | float64](dst, src []T, outer, row, offset, block int) {
	for o := 0; o < outer; o++ {
		copy(dst[o*block:(o+1)*block], src[o*row+offset:o*row+offset+block])
	}
}
