package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// ReLU applies max(0, x).
type ReLU[B tensor.Backend] struct{ stateless[B] }

// NewReLU creates a new ReLU activation module.
func NewReLU[B tensor.Backend]() *ReLU[B] {
	return &ReLU[B]{}
}

// Forward applies ReLU.
func (r *ReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.ReLU()
}

// LeakyReLU applies x for x > 0 and alpha·x otherwise.
//
// GAN discriminators commonly use alpha = 0.2.
type LeakyReLU[B tensor.Backend] struct {
	stateless[B]
	alpha float64
}

// NewLeakyReLU creates a new LeakyReLU activation module.
func NewLeakyReLU[B tensor.Backend](alpha float64) *LeakyReLU[B] {
	return &LeakyReLU[B]{alpha: alpha}
}

// Forward applies LeakyReLU.
func (l *LeakyReLU[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.LeakyReLU(l.alpha)
}

// Tanh applies the hyperbolic tangent, the usual generator output activation.
type Tanh[B tensor.Backend] struct{ stateless[B] }

// NewTanh creates a new Tanh activation module.
func NewTanh[B tensor.Backend]() *Tanh[B] {
	return &Tanh[B]{}
}

// Forward applies tanh.
func (t *Tanh[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Tanh()
}

// Sigmoid applies 1/(1+exp(-x)).
type Sigmoid[B tensor.Backend] struct{ stateless[B] }

// NewSigmoid creates a new Sigmoid activation module.
func NewSigmoid[B tensor.Backend]() *Sigmoid[B] {
	return &Sigmoid[B]{}
}

// Forward applies the sigmoid.
func (s *Sigmoid[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Sigmoid()
}

// Reshape reshapes its input, keeping the batch dimension.
//
//	nn.NewReshape[Backend](4, 4, 16) // [batch, 256] -> [batch, 4, 4, 16]
type Reshape[B tensor.Backend] struct {
	stateless[B]
	dims []int
}

// NewReshape creates a module reshaping each sample to dims.
func NewReshape[B tensor.Backend](dims ...int) *Reshape[B] {
	return &Reshape[B]{dims: append([]int(nil), dims...)}
}

// Forward reshapes [batch, ...] to [batch, dims...].
func (r *Reshape[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.Reshape(append([]int{input.Shape()[0]}, r.dims...)...)
}

// DepthToSpace trades channels for resolution: [B, H, W, C·bs²] -> [B, H·bs, W·bs, C].
type DepthToSpace[B tensor.Backend] struct {
	stateless[B]
	blockSize int
}

// NewDepthToSpace creates a module with the given block size.
func NewDepthToSpace[B tensor.Backend](blockSize int) *DepthToSpace[B] {
	if blockSize < 1 {
		panic(fmt.Sprintf("depth_to_space: invalid block size %d", blockSize))
	}
	return &DepthToSpace[B]{blockSize: blockSize}
}

// Forward rearranges channel blocks into spatial blocks.
func (d *DepthToSpace[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.DepthToSpace(d.blockSize)
}

// SpaceToDepth trades resolution for channels: [B, H·bs, W·bs, C] -> [B, H, W, C·bs²].
type SpaceToDepth[B tensor.Backend] struct {
	stateless[B]
	blockSize int
}

// NewSpaceToDepth creates a module with the given block size.
func NewSpaceToDepth[B tensor.Backend](blockSize int) *SpaceToDepth[B] {
	if blockSize < 1 {
		panic(fmt.Sprintf("space_to_depth: invalid block size %d", blockSize))
	}
	return &SpaceToDepth[B]{blockSize: blockSize}
}

// Forward rearranges spatial blocks into channel blocks.
func (s *SpaceToDepth[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return input.SpaceToDepth(s.blockSize)
}
