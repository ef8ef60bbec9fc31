package cpu

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
)

// Cat concatenates tensors along dim. Every other dimension must match.
func (cpu *CPUBackend) Cat(tensors []*tensor.RawTensor, dim int) *tensor.RawTensor {
	if len(tensors) == 0 {
		panic("cat: at least one tensor required")
	}
	first := tensors[0]
	shape := first.Shape()
	dim = tensor.NormalizeAxis(dim, len(shape))

	total := 0
	for i, t := range tensors {
		ts := t.Shape()
		if len(ts) != len(shape) {
			panic(fmt.Sprintf("cat: tensor %d has rank %d, expected %d", i, len(ts), len(shape)))
		}
		if t.DType() != first.DType() {
			panic(fmt.Sprintf("cat: tensor %d has dtype %s, expected %s", i, t.DType(), first.DType()))
		}
		for d := range ts {
			if d != dim && ts[d] != shape[d] {
				panic(fmt.Sprintf("cat: tensor %d has shape %v, incompatible with %v along dim %d", i, ts, shape, dim))
			}
		}
		total += ts[dim]
	}

	outShape := shape.Clone()
	outShape[dim] = total
	result := cpu.alloc("cat", outShape, first.DType())

	outer, _, inner := splitAt(outShape, dim)
	offset := 0
	for _, t := range tensors {
		size := t.Shape()[dim]
		switch t.DType() {
		case tensor.Float32:
			catCopy(result.AsFloat32(), t.AsFloat32(), outer, size*inner, total*inner, offset*inner)
		case tensor.Float64:
			catCopy(result.AsFloat64(), t.AsFloat64(), outer, size*inner, total*inner, offset*inner)
		}
		offset += size
	}
	return result
}

// catCopy writes outer blocks of length block from src into dst rows of
// length row, starting at column offset.
func catCopy[T float](dst, src []T, outer, block, row, offset int) {
	for o := 0; o < outer; o++ {
		copy(dst[o*row+offset:o*row+offset+block], src[o*block:(o+1)*block])
	}
}

// DepthToSpace rearranges [N, H, W, C·bs²] into [N, H·bs, W·bs, C].
//
// Channel (i·bs + j)·C + c of input pixel (h, w) lands at pixel
// (h·bs + i, w·bs + j), channel c.
func (cpu *CPUBackend) DepthToSpace(x *tensor.RawTensor, blockSize int) *tensor.RawTensor {
	s := x.Shape()
	if len(s) != 4 || blockSize < 1 || s[3]%(blockSize*blockSize) != 0 {
		panic(fmt.Sprintf("depth_to_space: expected [N, H, W, C·%d²], got %v", blockSize, s))
	}
	g := blockGeom{n: s[0], h: s[1], w: s[2], c: s[3] / (blockSize * blockSize), bs: blockSize}

	result := cpu.alloc("depth_to_space", tensor.Shape{g.n, g.h * blockSize, g.w * blockSize, g.c}, x.DType())
	switch x.DType() {
	case tensor.Float32:
		blockShuffle(result.AsFloat32(), x.AsFloat32(), g, true)
	case tensor.Float64:
		blockShuffle(result.AsFloat64(), x.AsFloat64(), g, true)
	}
	return result
}

// SpaceToDepth rearranges [N, H·bs, W·bs, C] into [N, H, W, C·bs²].
func (cpu *CPUBackend) SpaceToDepth(x *tensor.RawTensor, blockSize int) *tensor.RawTensor {
	s := x.Shape()
	if len(s) != 4 || blockSize < 1 || s[1]%blockSize != 0 || s[2]%blockSize != 0 {
		panic(fmt.Sprintf("space_to_depth: expected [N, H·%d, W·%d, C], got %v", blockSize, blockSize, s))
	}
	g := blockGeom{n: s[0], h: s[1] / blockSize, w: s[2] / blockSize, c: s[3], bs: blockSize}

	result := cpu.alloc("space_to_depth", tensor.Shape{g.n, g.h, g.w, g.c * blockSize * blockSize}, x.DType())
	switch x.DType() {
	case tensor.Float32:
		blockShuffle(result.AsFloat32(), x.AsFloat32(), g, false)
	case tensor.Float64:
		blockShuffle(result.AsFloat64(), x.AsFloat64(), g, false)
	}
	return result
}

// blockGeom describes the depth-side layout [n, h, w, c·bs²].
type blockGeom struct {
	n, h, w, c, bs int
}

// blockShuffle copies between the depth layout and the space layout.
// toSpace selects the direction.
func blockShuffle[T float](dst, src []T, g blockGeom, toSpace bool) {
	depthC := g.c * g.bs * g.bs
	spaceW := g.w * g.bs
	for n := 0; n < g.n; n++ {
		for h := 0; h < g.h; h++ {
			for w := 0; w < g.w; w++ {
				depthBase := ((n*g.h+h)*g.w + w) * depthC
				for i := 0; i < g.bs; i++ {
					for j := 0; j < g.bs; j++ {
						d := depthBase + (i*g.bs+j)*g.c
						sp := ((n*g.h*g.bs+h*g.bs+i)*spaceW + w*g.bs + j) * g.c
						if toSpace {
							copy(dst[sp:sp+g.c], src[d:d+g.c])
						} else {
							copy(dst[d:d+g.c], src[sp:sp+g.c])
						}
					}
				}
			}
		}
	}
}
