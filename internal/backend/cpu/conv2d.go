package cpu

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// convGeom describes one 2D convolution: image [C, H, W] convolved with a
// [KH, KW] window produces [OH, OW].
type convGeom struct {
	c, h, w    int
	kh, kw     int
	oh, ow     int
	stride     int
	padding    int
	colRows    int // c·kh·kw
	colCols    int // oh·ow
	imageSize  int // c·h·w
	outputSize int // oh·ow per output channel
}

func newConvGeom(c, h, w, kh, kw, stride, padding int) convGeom {
	oh := (h+2*padding-kh)/stride + 1
	ow := (w+2*padding-kw)/stride + 1
	return convGeom{
		c: c, h: h, w: w,
		kh: kh, kw: kw,
		oh: oh, ow: ow,
		stride: stride, padding: padding,
		colRows:    c * kh * kw,
		colCols:    oh * ow,
		imageSize:  c * h * w,
		outputSize: oh * ow,
	}
}

// Conv2D performs 2D convolution.
//
// Input is [N, Cin, H, W], kernel is [Cout, Cin, KH, KW] and the output is
// [N, Cout, OH, OW] with OH = (H + 2·padding - KH)/stride + 1.
func (cpu *CPUBackend) Conv2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	n, g, cout := cpu.convCheck("conv2d", input, kernel, stride, padding)

	result := cpu.alloc("conv2d", tensor.Shape{n, cout, g.oh, g.ow}, input.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2DForward(cpu, n, cout, g, input.AsFloat32(), kernel.AsFloat32(), result.AsFloat32())
	case tensor.Float64:
		conv2DForward(cpu, n, cout, g, input.AsFloat64(), kernel.AsFloat64(), result.AsFloat64())
	}
	return result
}

// Conv2DInputBackward computes the gradient of Conv2D with respect to its input.
func (cpu *CPUBackend) Conv2DInputBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	n, g, cout := cpu.convCheck("conv2d backward", input, kernel, stride, padding)
	checkGradShape("conv2d backward", grad, tensor.Shape{n, cout, g.oh, g.ow})

	result := cpu.alloc("conv2d backward", input.Shape(), input.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2DAdjoint(cpu, n, cout, g, grad.AsFloat32(), kernel.AsFloat32(), result.AsFloat32())
	case tensor.Float64:
		conv2DAdjoint(cpu, n, cout, g, grad.AsFloat64(), kernel.AsFloat64(), result.AsFloat64())
	}
	return result
}

// Conv2DKernelBackward computes the gradient of Conv2D with respect to its kernel.
func (cpu *CPUBackend) Conv2DKernelBackward(input, kernel, grad *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	n, g, cout := cpu.convCheck("conv2d kernel backward", input, kernel, stride, padding)
	checkGradShape("conv2d kernel backward", grad, tensor.Shape{n, cout, g.oh, g.ow})

	result := cpu.alloc("conv2d kernel backward", kernel.Shape(), kernel.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2DKernelGrad(n, cout, g, input.AsFloat32(), grad.AsFloat32(), result.AsFloat32())
	case tensor.Float64:
		conv2DKernelGrad(n, cout, g, input.AsFloat64(), grad.AsFloat64(), result.AsFloat64())
	}
	return result
}

// ConvTranspose2D performs 2D transposed convolution, the adjoint of Conv2D.
//
// Input is [N, Cin, H, W], kernel is [Cin, Cout, KH, KW] and the output is
// [N, Cout, OH, OW] with OH = (H-1)·stride - 2·padding + KH.
func (cpu *CPUBackend) ConvTranspose2D(input, kernel *tensor.RawTensor, stride, padding int) *tensor.RawTensor {
	is, ks := input.Shape(), kernel.Shape()
	if len(is) != 4 || len(ks) != 4 {
		panic(fmt.Sprintf("conv_transpose2d: expected 4D input and kernel, got %v and %v", is, ks))
	}
	if is[1] != ks[0] {
		panic(fmt.Sprintf("conv_transpose2d: input channels %d != kernel input channels %d", is[1], ks[0]))
	}
	if stride < 1 || padding < 0 {
		panic(fmt.Sprintf("conv_transpose2d: invalid stride %d or padding %d", stride, padding))
	}
	n, cin, h, w := is[0], is[1], is[2], is[3]
	cout, kh, kw := ks[1], ks[2], ks[3]
	oh := (h-1)*stride - 2*padding + kh
	ow := (w-1)*stride - 2*padding + kw
	if oh <= 0 || ow <= 0 {
		panic(fmt.Sprintf("conv_transpose2d: non-positive output %dx%d", oh, ow))
	}

	// The output plays the role of a convolution input whose forward pass
	// would produce an [h, w] map.
	g := newConvGeom(cout, oh, ow, kh, kw, stride, padding)
	if g.oh != h || g.ow != w {
		panic(fmt.Sprintf("conv_transpose2d: inconsistent geometry for input %v and kernel %v", is, ks))
	}

	result := cpu.alloc("conv_transpose2d", tensor.Shape{n, cout, oh, ow}, input.DType())
	switch input.DType() {
	case tensor.Float32:
		conv2DAdjoint(cpu, n, cin, g, input.AsFloat32(), kernel.AsFloat32(), result.AsFloat32())
	case tensor.Float64:
		conv2DAdjoint(cpu, n, cin, g, input.AsFloat64(), kernel.AsFloat64(), result.AsFloat64())
	}
	return result
}

func (cpu *CPUBackend) convCheck(op string, input, kernel *tensor.RawTensor, stride, padding int) (int, convGeom, int) {
	is, ks := input.Shape(), kernel.Shape()
	if len(is) != 4 || len(ks) != 4 {
		panic(fmt.Sprintf("%s: expected 4D input and kernel, got %v and %v", op, is, ks))
	}
	if is[1] != ks[1] {
		panic(fmt.Sprintf("%s: input channels %d != kernel channels %d", op, is[1], ks[1]))
	}
	if input.DType() != kernel.DType() {
		panic(fmt.Sprintf("%s: dtype mismatch %s vs %s", op, input.DType(), kernel.DType()))
	}
	if stride < 1 || padding < 0 {
		panic(fmt.Sprintf("%s: invalid stride %d or padding %d", op, stride, padding))
	}
	g := newConvGeom(is[1], is[2], is[3], ks[2], ks[3], stride, padding)
	if g.oh <= 0 || g.ow <= 0 {
		panic(fmt.Sprintf("%s: kernel %v larger than padded input %v", op, ks, is))
	}
	return is[0], g, ks[0]
}

func checkGradShape(op string, grad *tensor.RawTensor, want tensor.Shape) {
	if !grad.Shape().Equal(want) {
		panic(fmt.Sprintf("%s: gradient shape %v, expected %v", op, grad.Shape(), want))
	}
}

// conv2DForward computes out[b] = kernel[cout, colRows] @ im2col(in[b]).
func conv2DForward[T float](cpu *CPUBackend, n, cout int, g convGeom, in, kernel, out []T) {
	parallelFor(cpu, n, func(b int) {
		col := make([]T, g.colRows*g.colCols)
		im2col(col, in[b*g.imageSize:(b+1)*g.imageSize], g)
		gemm(false, false, cout, g.colCols, g.colRows,
			kernel, col, 0, out[b*cout*g.outputSize:(b+1)*cout*g.outputSize])
	})
}

// conv2DAdjoint scatters maps of `channels` planes of size [oh, ow] back into
// images described by g: img[b] = col2im(kernelᵀ @ maps[b]).
func conv2DAdjoint[T float](cpu *CPUBackend, n, channels int, g convGeom, maps, kernel, img []T) {
	parallelFor(cpu, n, func(b int) {
		col := make([]T, g.colRows*g.colCols)
		gemm(true, false, g.colRows, g.colCols, channels,
			kernel, maps[b*channels*g.outputSize:(b+1)*channels*g.outputSize], 0, col)
		col2im(img[b*g.imageSize:(b+1)*g.imageSize], col, g)
	})
}

// conv2DKernelGrad accumulates dK = Σ_b grad[b] @ im2col(in[b])ᵀ in batch order.
func conv2DKernelGrad[T float](n, cout int, g convGeom, in, grad, dk []T) {
	col := make([]T, g.colRows*g.colCols)
	for b := 0; b < n; b++ {
		im2col(col, in[b*g.imageSize:(b+1)*g.imageSize], g)
		gemm(false, true, cout, g.colRows, g.colCols,
			grad[b*cout*g.outputSize:(b+1)*cout*g.outputSize], col, 1, dk)
	}
}

func im2col[T float](col, img []T, g convGeom) {
	for c := 0; c < g.c; c++ {
		for ki := 0; ki < g.kh; ki++ {
			for kj := 0; kj < g.kw; kj++ {
				row := ((c*g.kh+ki)*g.kw + kj) * g.colCols
				for oy := 0; oy < g.oh; oy++ {
					iy := oy*g.stride - g.padding + ki
					for ox := 0; ox < g.ow; ox++ {
						ix := ox*g.stride - g.padding + kj
						var v T
						if iy >= 0 && iy < g.h && ix >= 0 && ix < g.w {
							v = img[(c*g.h+iy)*g.w+ix]
						}
						col[row+oy*g.ow+ox] = v
					}
				}
			}
		}
	}
}

func col2im[T float](img, col []T, g convGeom) {
	for c := 0; c < g.c; c++ {
		for ki := 0; ki < g.kh; ki++ {
			for kj := 0; kj < g.kw; kj++ {
				row := ((c*g.kh+ki)*g.kw + kj) * g.colCols
				for oy := 0; oy < g.oh; oy++ {
					iy := oy*g.stride - g.padding + ki
					if iy < 0 || iy >= g.h {
						continue
					}
					for ox := 0; ox < g.ow; ox++ {
						ix := ox*g.stride - g.padding + kj
						if ix < 0 || ix >= g.w {
							continue
						}
						img[(c*g.h+iy)*g.w+ix] += col[row+oy*g.ow+ox]
					}
				}
			}
		}
	}
}
