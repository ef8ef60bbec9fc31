package autodiff

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// BackwardCapable is implemented by backends that own a gradient tape.
type BackwardCapable interface {
	tensor.Backend
	GetTape() *GradientTape
}

// GetTape returns the gradient tape (implements BackwardCapable).
func (b *AutodiffBackend[B]) GetTape() *GradientTape {
	return b.tape
}

// Backward differentiates t, seeding its gradient with ones, and returns a
// map from every reached RawTensor to its gradient.
//
//	grads := autodiff.Backward(loss, backend)
//	dW := grads[layer.Weight().Tensor().Raw()]
func Backward[T tensor.DType, B BackwardCapable](t *tensor.Tensor[T, B], backend B) map[*tensor.RawTensor]*tensor.RawTensor {
	tape := backend.GetTape()
	if tape.NumOps() == 0 {
		panic("backward: no operations recorded (did you forget to call Tape().StartRecording()?)")
	}

	seed, err := tensor.NewRaw(t.Shape(), t.DType(), backend.Device())
	if err != nil {
		panic(fmt.Sprintf("backward: failed to create output gradient: %v", err))
	}
	switch t.DType() {
	case tensor.Float32:
		for i := range seed.AsFloat32() {
			seed.AsFloat32()[i] = 1
		}
	case tensor.Float64:
		for i := range seed.AsFloat64() {
			seed.AsFloat64()[i] = 1
		}
	}

	return tape.Backward(t.Raw(), seed, backend)
}
