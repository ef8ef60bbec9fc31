package nn

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// Conv2DConfig configures Conv2D and TransposedConv2D.
//
// Zero Stride means 1 and a nil Initializer means GlorotUniform.
type Conv2DConfig[B tensor.Backend] struct {
	KernelH, KernelW int
	InChannels       int
	OutChannels      int
	Stride           int
	Padding          int
	DisableBias      bool
	Initializer      Initializer[B]
}

func (c Conv2DConfig[B]) withDefaults(op string) Conv2DConfig[B] {
	if c.Stride == 0 {
		c.Stride = 1
	}
	if c.Initializer == nil {
		c.Initializer = GlorotUniform[B]
	}
	if c.InChannels <= 0 || c.OutChannels <= 0 {
		panic(fmt.Sprintf("%s: invalid channels in=%d, out=%d", op, c.InChannels, c.OutChannels))
	}
	if c.KernelH <= 0 || c.KernelW <= 0 {
		panic(fmt.Sprintf("%s: invalid kernel size h=%d, w=%d", op, c.KernelH, c.KernelW))
	}
	if c.Stride < 0 || c.Padding < 0 {
		panic(fmt.Sprintf("%s: invalid stride %d or padding %d", op, c.Stride, c.Padding))
	}
	return c
}

// Conv2D is a 2D convolution over NHWC input.
//
// Input shape:  [batch, height, width, in]
// Filter shape: [kh, kw, in, out]
// Output shape: [batch, oh, ow, out] with oh = (height + 2·padding - kh)/stride + 1
type Conv2D[B tensor.Backend] struct {
	stateless[B]
	cfg    Conv2DConfig[B]
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewConv2D creates a new convolution layer.
func NewConv2D[B tensor.Backend](cfg Conv2DConfig[B], backend B) *Conv2D[B] {
	cfg = cfg.withDefaults("conv2d")
	kk := cfg.KernelH * cfg.KernelW
	shape := tensor.Shape{cfg.KernelH, cfg.KernelW, cfg.InChannels, cfg.OutChannels}

	c := &Conv2D[B]{
		cfg:    cfg,
		weight: NewParameter("weight", cfg.Initializer(kk*cfg.InChannels, kk*cfg.OutChannels, shape, backend)),
	}
	if !cfg.DisableBias {
		c.bias = NewParameter("bias", Zeros(tensor.Shape{cfg.OutChannels}, backend))
	}
	return c
}

// Forward applies the convolution.
func (c *Conv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return c.forwardWith(input, c.weight.Tensor())
}

func (c *Conv2D[B]) forwardWith(input, filter *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkNHWC("conv2d", input, c.cfg.InChannels)
	backend := input.Backend()

	x := input.Transpose(0, 3, 1, 2)  // NCHW
	k := filter.Transpose(3, 2, 0, 1) // [out, in, kh, kw]
	y := tensor.New[float32, B](backend.Conv2D(x.Raw(), k.Raw(), c.cfg.Stride, c.cfg.Padding), backend)

	return addBias(y.Transpose(0, 2, 3, 1), c.bias)
}

// Parameters returns [weight, bias] or [weight] without bias.
func (c *Conv2D[B]) Parameters() []*Parameter[B] {
	return withBias(c.weight, c.bias)
}

// Weight returns the filter parameter [kh, kw, in, out].
func (c *Conv2D[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter or nil.
func (c *Conv2D[B]) Bias() *Parameter[B] {
	return c.bias
}

// ComputeOutputSize returns the spatial output size for an input size.
func (c *Conv2D[B]) ComputeOutputSize(inputH, inputW int) [2]int {
	return [2]int{
		(inputH+2*c.cfg.Padding-c.cfg.KernelH)/c.cfg.Stride + 1,
		(inputW+2*c.cfg.Padding-c.cfg.KernelW)/c.cfg.Stride + 1,
	}
}

// TransposedConv2D is a 2D transposed convolution over NHWC input.
//
// Input shape:  [batch, height, width, in]
// Filter shape: [kh, kw, out, in]
// Output shape: [batch, oh, ow, out] with oh = (height-1)·stride - 2·padding + kh
type TransposedConv2D[B tensor.Backend] struct {
	stateless[B]
	cfg    Conv2DConfig[B]
	weight *Parameter[B]
	bias   *Parameter[B]
}

// NewTransposedConv2D creates a new transposed convolution layer.
func NewTransposedConv2D[B tensor.Backend](cfg Conv2DConfig[B], backend B) *TransposedConv2D[B] {
	cfg = cfg.withDefaults("transposed_conv2d")
	kk := cfg.KernelH * cfg.KernelW
	shape := tensor.Shape{cfg.KernelH, cfg.KernelW, cfg.OutChannels, cfg.InChannels}

	c := &TransposedConv2D[B]{
		cfg:    cfg,
		weight: NewParameter("weight", cfg.Initializer(kk*cfg.InChannels, kk*cfg.OutChannels, shape, backend)),
	}
	if !cfg.DisableBias {
		c.bias = NewParameter("bias", Zeros(tensor.Shape{cfg.OutChannels}, backend))
	}
	return c
}

// Forward applies the transposed convolution.
func (c *TransposedConv2D[B]) Forward(input *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	return c.forwardWith(input, c.weight.Tensor())
}

func (c *TransposedConv2D[B]) forwardWith(input, filter *tensor.Tensor[float32, B]) *tensor.Tensor[float32, B] {
	checkNHWC("transposed_conv2d", input, c.cfg.InChannels)
	backend := input.Backend()

	x := input.Transpose(0, 3, 1, 2)  // NCHW
	k := filter.Transpose(3, 2, 0, 1) // [in, out, kh, kw]
	y := tensor.New[float32, B](backend.ConvTranspose2D(x.Raw(), k.Raw(), c.cfg.Stride, c.cfg.Padding), backend)

	return addBias(y.Transpose(0, 2, 3, 1), c.bias)
}

// Parameters returns [weight, bias] or [weight] without bias.
func (c *TransposedConv2D[B]) Parameters() []*Parameter[B] {
	return withBias(c.weight, c.bias)
}

// Weight returns the filter parameter [kh, kw, out, in].
func (c *TransposedConv2D[B]) Weight() *Parameter[B] {
	return c.weight
}

// Bias returns the bias parameter or nil.
func (c *TransposedConv2D[B]) Bias() *Parameter[B] {
	return c.bias
}

// ComputeOutputSize returns the spatial output size for an input size.
func (c *TransposedConv2D[B]) ComputeOutputSize(inputH, inputW int) [2]int {
	return [2]int{
		(inputH-1)*c.cfg.Stride - 2*c.cfg.Padding + c.cfg.KernelH,
		(inputW-1)*c.cfg.Stride - 2*c.cfg.Padding + c.cfg.KernelW,
	}
}

func checkNHWC[B tensor.Backend](op string, input *tensor.Tensor[float32, B], channels int) {
	shape := input.Shape()
	if len(shape) != 4 || shape[3] != channels {
		panic(fmt.Sprintf("%s: expected input [batch, height, width, %d], got %v", op, channels, shape))
	}
}

func addBias[B tensor.Backend](y *tensor.Tensor[float32, B], bias *Parameter[B]) *tensor.Tensor[float32, B] {
	if bias == nil {
		return y
	}
	return y.Add(bias.Tensor())
}

func withBias[B tensor.Backend](weight, bias *Parameter[B]) []*Parameter[B] {
	if bias == nil {
		return []*Parameter[B]{weight}
	}
	return []*Parameter[B]{weight, bias}
}
