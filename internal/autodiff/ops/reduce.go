package ops

import "github.com/born-ml/gan/internal/tensor"

// SumOp records output = Σx as a scalar.
type SumOp struct{ recorded }

// NewSumOp creates a new SumOp.
func NewSumOp(x, output *tensor.RawTensor) *SumOp {
	return &SumOp{record(output, x)}
}

// Backward broadcasts the scalar gradient to the input shape.
func (op *SumOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{broadcastTo(grad, op.inputs[0].Shape(), backend)}
}

// SumDimOp records output = Σ_dim x.
type SumDimOp struct {
	recorded
	dim int
}

// NewSumDimOp creates a new SumDimOp.
func NewSumDimOp(x, output *tensor.RawTensor, dim int) *SumDimOp {
	return &SumDimOp{recorded: record(output, x), dim: tensor.NormalizeAxis(dim, len(x.Shape()))}
}

// Backward broadcasts the gradient back along dim.
func (op *SumDimOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	inShape := op.inputs[0].Shape()
	kept := inShape.Clone()
	kept[op.dim] = 1
	return []*tensor.RawTensor{broadcastTo(backend.Reshape(grad, kept), inShape, backend)}
}

// MaxDimOp records output = max_dim x.
//
// The position of the maximum is captured at record time as a one-hot mask;
// ties resolve to the first element along dim.
type MaxDimOp struct {
	recorded
	dim  int
	mask *tensor.RawTensor
}

// NewMaxDimOp creates a new MaxDimOp.
func NewMaxDimOp(x, output *tensor.RawTensor, dim int) *MaxDimOp {
	dim = tensor.NormalizeAxis(dim, len(x.Shape()))
	return &MaxDimOp{recorded: record(output, x), dim: dim, mask: argmaxMask(x, dim)}
}

// Backward routes the gradient to the maximal element of every slice.
func (op *MaxDimOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	kept := op.inputs[0].Shape().Clone()
	kept[op.dim] = 1
	return []*tensor.RawTensor{backend.Mul(backend.Reshape(grad, kept), op.mask)}
}

func argmaxMask(x *tensor.RawTensor, dim int) *tensor.RawTensor {
	mask := tensor.MustNewRaw(x.Shape(), x.DType(), x.Device())
	outer, size, inner := splitShape(x.Shape(), dim)
	switch x.DType() {
	case tensor.Float32:
		markArgmax(x.AsFloat32(), mask.AsFloat32(), outer, size, inner)
	case tensor.Float64:
		markArgmax(x.AsFloat64(), mask.AsFloat64(), outer, size, inner)
	}
	return mask
}

func markArgmax[T float32 | float64](in, mask []T, outer, size, inner int) {
	for o := 0; o < outer; o++ {
		for i := 0; i < inner; i++ {
			best := o * size * inner
			for j := 1; j < size; j++ {
				if in[(o*size+j)*inner+i] > in[best+i] {
					best = (o*size + j) * inner
				}
			}
			mask[best+i] = 1
		}
	}
}
