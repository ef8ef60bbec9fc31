package cpu

import "github.com/born-ml/gan/internal/tensor"

type float interface {
	~float32 | ~float64
}

func addFn[T float](x, y T) T { return x + y }
func subFn[T float](x, y T) T { return x - y }
func mulFn[T float](x, y T) T { return x * y }
func divFn[T float](x, y T) T { return x / y }

func unaryLoop[T float](dst, src []T, f func(T) T) {
	for i, v := range src {
		dst[i] = f(v)
	}
}

// binaryLoop applies f over the broadcast of a and b into dst.
func binaryLoop[T float](dst, a, b []T, out, aShape, bShape tensor.Shape, f func(x, y T) T) {
	if aShape.Equal(bShape) {
		for i := range dst {
			dst[i] = f(a[i], b[i])
		}
		return
	}

	sa := broadcastStrides(aShape, out)
	sb := broadcastStrides(bShape, out)
	idx := make([]int, len(out))
	ia, ib := 0, 0
	for i := range dst {
		dst[i] = f(a[ia], b[ib])
		for d := len(out) - 1; d >= 0; d-- {
			idx[d]++
			ia += sa[d]
			ib += sb[d]
			if idx[d] < out[d] {
				break
			}
			ia -= sa[d] * out[d]
			ib -= sb[d] * out[d]
			idx[d] = 0
		}
	}
}

// broadcastStrides returns strides of in aligned to out, with zero stride on
// broadcast dimensions.
func broadcastStrides(in, out tensor.Shape) []int {
	strides := make([]int, len(out))
	inStrides := in.ComputeStrides()
	off := len(out) - len(in)
	for i := range in {
		if in[i] != 1 {
			strides[i+off] = inStrides[i]
		}
	}
	return strides
}

// gatherStrided walks dst in row-major order over shape, reading src through
// srcStrides.
func gatherStrided[T float](dst, src []T, shape tensor.Shape, srcStrides []int) {
	idx := make([]int, len(shape))
	off := 0
	for i := range dst {
		dst[i] = src[off]
		for d := len(shape) - 1; d >= 0; d-- {
			idx[d]++
			off += srcStrides[d]
			if idx[d] < shape[d] {
				break
			}
			off -= srcStrides[d] * shape[d]
			idx[d] = 0
		}
	}
}
