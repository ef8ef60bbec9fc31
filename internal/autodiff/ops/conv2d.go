package ops

import "github.com/born-ml/gan/internal/tensor"

// Conv2DOp records output = Conv2D(input, kernel) on NCHW tensors.
type Conv2DOp struct {
	recorded
	stride  int
	padding int
}

// NewConv2DOp creates a new Conv2DOp.
func NewConv2DOp(input, kernel, output *tensor.RawTensor, stride, padding int) *Conv2DOp {
	return &Conv2DOp{recorded: record(output, input, kernel), stride: stride, padding: padding}
}

// Backward computes gradients for input and kernel.
func (op *Conv2DOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input, kernel := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.Conv2DInputBackward(input, kernel, grad, op.stride, op.padding),
		backend.Conv2DKernelBackward(input, kernel, grad, op.stride, op.padding),
	}
}

// ConvTranspose2DOp records output = ConvTranspose2D(input, kernel) with the
// kernel laid out as [Cin, Cout, KH, KW].
//
// Transposed convolution is the adjoint of Conv2D with the same kernel, so
// its input gradient is a forward convolution of the output gradient, and
// its kernel gradient is the Conv2D kernel gradient with the roles of
// activation and gradient exchanged.
type ConvTranspose2DOp struct {
	recorded
	stride  int
	padding int
}

// NewConvTranspose2DOp creates a new ConvTranspose2DOp.
func NewConvTranspose2DOp(input, kernel, output *tensor.RawTensor, stride, padding int) *ConvTranspose2DOp {
	return &ConvTranspose2DOp{recorded: record(output, input, kernel), stride: stride, padding: padding}
}

// Backward computes gradients for input and kernel.
func (op *ConvTranspose2DOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	input, kernel := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.Conv2D(grad, kernel, op.stride, op.padding),
		backend.Conv2DKernelBackward(grad, kernel, input, op.stride, op.padding),
	}
}
