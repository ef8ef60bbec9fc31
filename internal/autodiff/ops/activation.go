package ops

import "github.com/born-ml/gan/internal/tensor"

// ReLUOp records output = max(0, x).
type ReLUOp struct{ recorded }

// NewReLUOp creates a new ReLUOp.
func NewReLUOp(x, output *tensor.RawTensor) *ReLUOp {
	return &ReLUOp{record(output, x)}
}

// Backward masks the gradient where x <= 0.
func (op *ReLUOp) Backward(grad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(grad, op.inputs[0], op.output, func(x, _ float64) float64 {
		if x > 0 {
			return 1
		}
		return 0
	})}
}

// LeakyReLUOp records output = x if x > 0 else alpha·x.
type LeakyReLUOp struct {
	recorded
	alpha float64
}

// NewLeakyReLUOp creates a new LeakyReLUOp.
func NewLeakyReLUOp(x, output *tensor.RawTensor, alpha float64) *LeakyReLUOp {
	return &LeakyReLUOp{recorded: record(output, x), alpha: alpha}
}

// Backward scales the gradient by alpha where x <= 0.
func (op *LeakyReLUOp) Backward(grad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(grad, op.inputs[0], op.output, func(x, _ float64) float64 {
		if x > 0 {
			return 1
		}
		return op.alpha
	})}
}

// TanhOp records output = tanh(x); d/dx = 1 - y².
type TanhOp struct{ recorded }

// NewTanhOp creates a new TanhOp.
func NewTanhOp(x, output *tensor.RawTensor) *TanhOp {
	return &TanhOp{record(output, x)}
}

// Backward computes grad·(1 - y²).
func (op *TanhOp) Backward(grad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(grad, op.inputs[0], op.output, func(_, y float64) float64 {
		return 1 - y*y
	})}
}

// SigmoidOp records output = σ(x); d/dx = y(1 - y).
type SigmoidOp struct{ recorded }

// NewSigmoidOp creates a new SigmoidOp.
func NewSigmoidOp(x, output *tensor.RawTensor) *SigmoidOp {
	return &SigmoidOp{record(output, x)}
}

// Backward computes grad·y·(1 - y).
func (op *SigmoidOp) Backward(grad *tensor.RawTensor, _ tensor.Backend) []*tensor.RawTensor {
	return []*tensor.RawTensor{mapGrad(grad, op.inputs[0], op.output, func(_, y float64) float64 {
		return y * (1 - y)
	})}
}

// SoftmaxOp records output = softmax(x) along dim.
//
// dx = y ⊙ (grad - Σ_dim(grad ⊙ y)).
type SoftmaxOp struct {
	recorded
	dim int
}

// NewSoftmaxOp creates a new SoftmaxOp.
func NewSoftmaxOp(x, output *tensor.RawTensor, dim int) *SoftmaxOp {
	return &SoftmaxOp{recorded: record(output, x), dim: tensor.NormalizeAxis(dim, len(x.Shape()))}
}

// Backward computes the softmax Jacobian-vector product along dim.
func (op *SoftmaxOp) Backward(grad *tensor.RawTensor, backend tensor.Backend) []*tensor.RawTensor {
	y := op.output
	dot := backend.SumDim(backend.Mul(grad, y), op.dim, true)
	return []*tensor.RawTensor{backend.Mul(y, backend.Sub(grad, dot))}
}
