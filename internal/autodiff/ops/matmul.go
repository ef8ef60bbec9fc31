package ops

import "github.com/born-ml/gan/internal/tensor"

// MatMulOp records output = a @ b.
//
//   - d(A@B)/dA = grad @ Bᵀ
//   - d(A@B)/dB = Aᵀ @ grad
type MatMulOp struct{ recorded }

// NewMatMulOp creates a new MatMulOp.
func NewMatMulOp(a, b, output *tensor.RawTensor) *MatMulOp {
	return &MatMulOp{record(output, a, b)}
}

// Backward computes input gradients for matrix multiplication.
func (op *MatMulOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		backend.MatMul(grad, backend.Transpose(b, 1, 0)),
		backend.MatMul(backend.Transpose(a, 1, 0), grad),
	}
}

// BatchMatMulOp records output = a @ b over leading batch dimensions.
type BatchMatMulOp struct{ recorded }

// NewBatchMatMulOp creates a new BatchMatMulOp.
func NewBatchMatMulOp(a, b, output *tensor.RawTensor) *BatchMatMulOp {
	return &BatchMatMulOp{record(output, a, b)}
}

// Backward computes input gradients for batched matrix multiplication.
func (op *BatchMatMulOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	swap := swapLast2(len(a.Shape()))
	return []*tensor.RawTensor{
		backend.BatchMatMul(grad, backend.Transpose(b, swap...)),
		backend.BatchMatMul(backend.Transpose(a, swap...), grad),
	}
}
