package ops

import "github.com/born-ml/gan/internal/tensor"

// MaxPool2DOp records output = MaxPool2D(input) on NCHW tensors.
//
// The winning input position of every window is captured at record time;
// ties resolve to the first element in row-major window order.
type MaxPool2DOp struct {
	recorded
	kernelSize int
	stride     int
	maxIndices []int
}

// NewMaxPool2DOp creates a new MaxPool2DOp.
func NewMaxPool2DOp(input, output *tensor.RawTensor, kernelSize, stride int) *MaxPool2DOp {
	return &MaxPool2DOp{
		recorded:   record(output, input),
		kernelSize: kernelSize,
		stride:     stride,
		maxIndices: computeMaxIndices(input, output.Shape(), kernelSize, stride),
	}
}

// Backward routes each output gradient to the input that produced the maximum.
func (op *MaxPool2DOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		backend.MaxPool2DBackward(op.inputs[0], grad, op.maxIndices, op.kernelSize, op.stride),
	}
}

func computeMaxIndices(input *tensor.RawTensor, outShape tensor.Shape, k, s int) []int {
	switch input.DType() {
	case tensor.Float32:
		return argmaxWindows(input.AsFloat32(), input.Shape(), outShape, k, s)
	default:
		return argmaxWindows(input.AsFloat64(), input.Shape(), outShape, k, s)
	}
}

func argmaxWindows[T float32 | float64](in []T, inShape, outShape tensor.Shape, k, s int) []int {
	planes, h, w := inShape[0]*inShape[1], inShape[2], inShape[3]
	oh, ow := outShape[2], outShape[3]

	indices := make([]int, 0, planes*oh*ow)
	for p := 0; p < planes; p++ {
		base := p * h * w
		for oy := 0; oy < oh; oy++ {
			for ox := 0; ox < ow; ox++ {
				best := base + oy*s*w + ox*s
				for ky := 0; ky < k; ky++ {
					for kx := 0; kx < k; kx++ {
						idx := base + (oy*s+ky)*w + ox*s + kx
						if in[idx] > in[best] {
							best = idx
						}
					}
				}
				indices = append(indices, best)
			}
		}
	}
	return indices
}
