package nn

import (
	"strconv"

	"github.com/born-ml/gan/internal/tensor"
)

// Sequential chains modules, feeding each output into the next module.
//
// Leaf names of child i are prefixed with "i.".
//
//	disc := nn.NewSequential[Backend](
//		nn.NewSNConv2D(cfg, nn.DefaultSpectralNormConfig(), backend),
//		nn.NewLeakyReLU[Backend](0.2),
//	)
type Sequential[B tensor.Backend] struct {
	modules []Module[B]
}

// NewSequential creates a new Sequential container.
func NewSequential[B tensor.Backend](modules ...Module[B]) *Sequential[B] {
	s := &Sequential[B]{}
	for _, m := range modules {
		s.Add(m)
	}
	return s
}

// Add appends a module.
func (s *Sequential[B]) Add(module Module[B]) {
	prefixLeaves(strconv.Itoa(len(s.modules)), module)
	s.modules = append(s.modules, module)
}

// Forward applies every module in order.
func (s *Sequential[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	out := input
	for _, m := range s.modules {
		out = m.Forward(out)
	}
	return out
}

// Parameters returns the parameters of every module in order.
func (s *Sequential[B]) Parameters() []*Parameter[B] {
	var params []*Parameter[B]
	for _, m := range s.modules {
		params = append(params, m.Parameters()...)
	}
	return params
}

// Buffers returns the buffers of every module in order.
func (s *Sequential[B]) Buffers() []*Buffer[B] {
	var bufs []*Buffer[B]
	for _, m := range s.modules {
		bufs = append(bufs, m.Buffers()...)
	}
	return bufs
}

// SetPhase switches every module to phase.
func (s *Sequential[B]) SetPhase(phase Phase) {
	for _, m := range s.modules {
		m.SetPhase(phase)
	}
}

// Len returns the number of modules.
func (s *Sequential[B]) Len() int {
	return len(s.modules)
}

// Module returns the module at index.
func (s *Sequential[B]) Module(index int) Module[B] {
	return s.modules[index]
}
