package ops

import "github.com/born-ml/gan/internal/tensor"

// ReshapeOp records output = Reshape(input).
type ReshapeOp struct{ recorded }

// NewReshapeOp creates a new ReshapeOp.
func NewReshapeOp(input, output *tensor.RawTensor) *ReshapeOp {
	return &ReshapeOp{record(output, input)}
}

// Backward reshapes the gradient back to the input shape.
func (op *ReshapeOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Reshape(grad, op.inputs[0].Shape())}
}

// TransposeOp records output = Transpose(input, axes).
type TransposeOp struct {
	recorded
	axes []int
}

// NewTransposeOp creates a new TransposeOp. Empty axes reverse the dimensions.
func NewTransposeOp(input, output *tensor.RawTensor, axes []int) *TransposeOp {
	if len(axes) == 0 {
		rank := len(input.Shape())
		axes = make([]int, rank)
		for i := range axes {
			axes[i] = rank - 1 - i
		}
	}
	return &TransposeOp{recorded: record(output, input), axes: append([]int(nil), axes...)}
}

// Backward applies the inverse permutation to the gradient.
func (op *TransposeOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.Transpose(grad, inversePermutation(op.axes)...)}
}

// CatOp records output = Cat(inputs, dim).
type CatOp struct {
	recorded
	dim int
}

// NewCatOp creates a new CatOp.
func NewCatOp(inputs []*tensor.RawTensor, output *tensor.RawTensor, dim int) *CatOp {
	return &CatOp{
		recorded: record(output, inputs...),
		dim:      tensor.NormalizeAxis(dim, len(output.Shape())),
	}
}

// Backward splits the gradient along dim at the input boundaries.
func (op *CatOp) Backward(grad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	grads := make([]*tensor.RawTensor, len(op.inputs))
	offset := 0
	for i, input := range op.inputs {
		size := input.Shape()[op.dim]
		grads[i] = narrow(grad, op.dim, offset, size)
		offset += size
	}
	return grads
}

// DepthToSpaceOp records output = DepthToSpace(input, blockSize).
type DepthToSpaceOp struct {
	recorded
	blockSize int
}

// NewDepthToSpaceOp creates a new DepthToSpaceOp.
func NewDepthToSpaceOp(input, output *tensor.RawTensor, blockSize int) *DepthToSpaceOp {
	return &DepthToSpaceOp{recorded: record(output, input), blockSize: blockSize}
}

// Backward applies SpaceToDepth, the adjoint permutation.
func (op *DepthToSpaceOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.SpaceToDepth(grad, op.blockSize)}
}

// SpaceToDepthOp records output = SpaceToDepth(input, blockSize).
type SpaceToDepthOp struct {
	recorded
	blockSize int
}

// NewSpaceToDepthOp creates a new SpaceToDepthOp.
func NewSpaceToDepthOp(input, output *tensor.RawTensor, blockSize int) *SpaceToDepthOp {
	return &SpaceToDepthOp{recorded: record(output, input), blockSize: blockSize}
}

// Backward applies DepthToSpace, the adjoint permutation.
func (op *SpaceToDepthOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.DepthToSpace(grad, op.blockSize)}
}
