package optim

import (
	"fmt"

	"github.com/born-ml/gan/internal/nn"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/blas/blas32"
)

// SGDConfig configures SGD.
type SGDConfig struct {
	LR       float32 // Learning rate (default: 0.01)
	Momentum float32 // Momentum factor in [0, 1) (default: 0)
}

// SGD is stochastic gradient descent with optional momentum.
//
//	velocity = momentum·velocity + grad
//	param    = param - lr·velocity
type SGD[B tensor.Backend] struct {
	params     []*nn.Parameter[B]
	lr         float32
	momentum   float32
	velocities map[*nn.Parameter[B]][]float32
}

// NewSGD creates an SGD optimizer over params.
func NewSGD[B tensor.Backend](params []*nn.Parameter[B], config SGDConfig) *SGD[B] {
	if config.LR == 0 {
		config.LR = 0.01
	}
	if config.Momentum < 0 || config.Momentum >= 1 {
		panic(fmt.Sprintf("sgd: momentum must be in [0, 1), got %v", config.Momentum))
	}
	return &SGD[B]{
		params:     params,
		lr:         config.LR,
		momentum:   config.Momentum,
		velocities: make(map[*nn.Parameter[B]][]float32),
	}
}

// Step applies one update to every parameter found in grads.
func (s *SGD[B]) Step(grads map[*tensor.RawTensor]*tensor.RawTensor) {
	for _, param := range s.params {
		grad := getGradient(param, grads)
		if grad == nil {
			continue
		}

		step := grad
		if s.momentum != 0 {
			velocity, ok := s.velocities[param]
			if !ok {
				velocity = make([]float32, len(grad))
				s.velocities[param] = velocity
			}
			blas32.Scal(s.momentum, vector(velocity))
			blas32.Axpy(1, vector(grad), vector(velocity))
			step = velocity
		}

		blas32.Axpy(-s.lr, vector(step), vector(param.Tensor().Data()))
	}
}

// ZeroGrad clears the gradients of all parameters.
func (s *SGD[B]) ZeroGrad() {
	for _, param := range s.params {
		param.ZeroGrad()
	}
}

// GetLR returns the current learning rate.
func (s *SGD[B]) GetLR() float32 {
	return s.lr
}

// SetLR updates the learning rate.
func (s *SGD[B]) SetLR(lr float32) {
	s.lr = lr
}

// StateDict exports the momentum buffers under "velocity.{param_name}".
func (s *SGD[B]) StateDict() map[string][]float32 {
	state := make(map[string][]float32, len(s.velocities))
	for _, param := range s.params {
		if velocity, ok := s.velocities[param]; ok {
			state["velocity."+param.Name()] = append([]float32(nil), velocity...)
		}
	}
	return state
}

// LoadStateDict restores momentum buffers exported by StateDict.
func (s *SGD[B]) LoadStateDict(state map[string][]float32) error {
	velocities := make(map[*nn.Parameter[B]][]float32)
	for _, param := range s.params {
		velocity, ok := state["velocity."+param.Name()]
		if !ok {
			continue
		}
		if len(velocity) != param.Tensor().NumElements() {
			return errors.Errorf("sgd: velocity for %s has %d values, parameter has %d",
				param.Name(), len(velocity), param.Tensor().NumElements())
		}
		velocities[param] = append([]float32(nil), velocity...)
	}
	s.velocities = velocities
	return nil
}
