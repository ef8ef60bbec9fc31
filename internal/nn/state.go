package nn

import (
	"github.com/born-ml/gan/internal/tensor"
	"github.com/pkg/errors"
)

// StateDict maps every leaf name of m to its raw tensor, buffers included.
// The tensors are shared, not copied.
func StateDict[B tensor.Backend](m Module[B]) map[string]*tensor.RawTensor {
	leaves := Leaves(m)
	state := make(map[string]*tensor.RawTensor, len(leaves))
	for _, leaf := range leaves {
		state[leaf.Name()] = leaf.Tensor().Raw()
	}
	return state
}

// LoadStateDict copies values from state into the leaves of m.
// Every leaf must be present with a matching shape.
func LoadStateDict[B tensor.Backend](m Module[B], state map[string]*tensor.RawTensor) error {
	for _, leaf := range Leaves(m) {
		src, ok := state[leaf.Name()]
		if !ok {
			return errors.Errorf("load state: missing %q", leaf.Name())
		}
		dst := leaf.Tensor().Raw()
		if !dst.Shape().Equal(src.Shape()) || dst.DType() != src.DType() {
			return errors.Errorf("load state: %q has %s%v, expected %s%v",
				leaf.Name(), src.DType(), src.Shape(), dst.DType(), dst.Shape())
		}
		dst.CopyFrom(src)
	}
	return nil
}
