package ops

import "github.com/born-ml/gan/internal/tensor"

// AddOp records output = a + b.
type AddOp struct{ recorded }

// NewAddOp creates a new AddOp.
func NewAddOp(a, b, output *tensor.RawTensor) *AddOp {
	return &AddOp{record(output, a, b)}
}

// Backward passes the gradient to both inputs.
func (op *AddOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(grad, op.inputs[0].Shape(), backend),
		reduceBroadcast(grad, op.inputs[1].Shape(), backend),
	}
}

// SubOp records output = a - b.
type SubOp struct{ recorded }

// NewSubOp creates a new SubOp.
func NewSubOp(a, b, output *tensor.RawTensor) *SubOp {
	return &SubOp{record(output, a, b)}
}

// Backward returns grad and -grad.
func (op *SubOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{
		reduceBroadcast(grad, op.inputs[0].Shape(), backend),
		reduceBroadcast(backend.MulScalar(grad, -1), op.inputs[1].Shape(), backend),
	}
}

// MulOp records output = a * b.
type MulOp struct{ recorded }

// NewMulOp creates a new MulOp.
func NewMulOp(a, b, output *tensor.RawTensor) *MulOp {
	return &MulOp{record(output, a, b)}
}

// Backward returns grad·b and grad·a.
func (op *MulOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	return []*tensor.RawTensor{
		reduceBroadcast(backend.Mul(grad, b), a.Shape(), backend),
		reduceBroadcast(backend.Mul(grad, a), b.Shape(), backend),
	}
}

// DivOp records output = a / b.
//
// d(a/b)/da = 1/b and d(a/b)/db = -a/b² = -output/b.
type DivOp struct{ recorded }

// NewDivOp creates a new DivOp.
func NewDivOp(a, b, output *tensor.RawTensor) *DivOp {
	return &DivOp{record(output, a, b)}
}

// Backward computes input gradients for division.
func (op *DivOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	a, b := op.inputs[0], op.inputs[1]
	gradA := backend.Div(grad, b)
	gradB := backend.MulScalar(backend.Mul(gradA, op.output), -1)
	return []*tensor.RawTensor{
		reduceBroadcast(gradA, a.Shape(), backend),
		reduceBroadcast(gradB, b.Shape(), backend),
	}
}

// MulScalarOp records output = x·s.
type MulScalarOp struct {
	recorded
	scalar float64
}

// NewMulScalarOp creates a new MulScalarOp.
func NewMulScalarOp(x, output *tensor.RawTensor, scalar float64) *MulScalarOp {
	return &MulScalarOp{recorded: record(output, x), scalar: scalar}
}

// Backward returns grad·s.
func (op *MulScalarOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{backend.MulScalar(grad, op.scalar)}
}

// AddScalarOp records output = x + s.
type AddScalarOp struct{ recorded }

// NewAddScalarOp creates a new AddScalarOp.
func NewAddScalarOp(x, output *tensor.RawTensor) *AddScalarOp {
	return &AddScalarOp{record(output, x)}
}

// Backward passes the gradient through.
func (op *AddScalarOp) Backward(grad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{grad}
}
