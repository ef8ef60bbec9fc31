package cpu

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// MaxPool2D applies 2D max pooling over [N, C, H, W] input.
// The output is [N, C, (H-k)/s+1, (W-k)/s+1].
func (cpu *CPUBackend) MaxPool2D(input *tensor.RawTensor, kernelSize, stride int) *tensor.RawTensor {
	n, c, h, w, oh, ow := poolDims("maxpool2d", input.Shape(), kernelSize, stride)

	result := cpu.alloc("maxpool2d", tensor.Shape{n, c, oh, ow}, input.DType())
	switch input.DType() {
	case tensor.Float32:
		maxPoolForward(cpu, input.AsFloat32(), result.AsFloat32(), n, c, h, w, oh, ow, kernelSize, stride)
	case tensor.Float64:
		maxPoolForward(cpu, input.AsFloat64(), result.AsFloat64(), n, c, h, w, oh, ow, kernelSize, stride)
	}
	return result
}

// MaxPool2DBackward routes grad to the input positions listed in maxIndices.
// maxIndices holds, for every output element, the flat input index that won.
func (cpu *CPUBackend) MaxPool2DBackward(input, grad *tensor.RawTensor, maxIndices []int, kernelSize, stride int) *tensor.RawTensor {
	n, c, _, _, oh, ow := poolDims("maxpool2d backward", input.Shape(), kernelSize, stride)
	checkGradShape("maxpool2d backward", grad, tensor.Shape{n, c, oh, ow})
	if len(maxIndices) != grad.NumElements() {
		panic(fmt.Sprintf("maxpool2d backward: %d indices for %d gradients", len(maxIndices), grad.NumElements()))
	}

	result := cpu.alloc("maxpool2d backward", input.Shape(), input.DType())
	switch input.DType() {
	case tensor.Float32:
		scatterAdd(result.AsFloat32(), grad.AsFloat32(), maxIndices)
	case tensor.Float64:
		scatterAdd(result.AsFloat64(), grad.AsFloat64(), maxIndices)
	}
	return result
}

func poolDims(op string, shape tensor.Shape, kernelSize, stride int) (n, c, h, w, oh, ow int) {
	if len(shape) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input [N, C, H, W], got %v", op, shape))
	}
	if kernelSize < 1 || stride < 1 {
		panic(fmt.Sprintf("%s: invalid kernel size %d or stride %d", op, kernelSize, stride))
	}
	n, c, h, w = shape[0], shape[1], shape[2], shape[3]
	if h < kernelSize || w < kernelSize {
		panic(fmt.Sprintf("%s: kernel %d larger than input %dx%d", op, kernelSize, h, w))
	}
	return n, c, h, w, (h-kernelSize)/stride + 1, (w-kernelSize)/stride + 1
}

func maxPoolForward[T float](cpu *CPUBackend, in, out []T, n, c, h, w, oh, ow, k, s int) {
	parallelFor(cpu, n*c, func(plane int) {
		src := in[plane*h*w : (plane+1)*h*w]
		dst := out[plane*oh*ow : (plane+1)*oh*ow]
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				best := src[oy*s*w+ox*s]
				for ky := 0; ky < k; ky++ {
					row := (oy*s + ky) * w
					for kx := 0; kx < k; kx++ {
						if v := src[row+ox*s+kx]; v > best {
							best = v
						}
					}
				}
				dst[oy*ow+ox] = best
			}
		}
	})
}

func scatterAdd[T float](dst, src []T, indices []int) {
	for i, idx := range indices {
		dst[idx] += src[i]
	}
}
