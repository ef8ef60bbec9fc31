package cpu

import (
	"math/rand"
	"testing"

	"github.com/born-ml/gan/internal/parallel"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func raw32(t *testing.T, shape tensor.Shape, data ...float32) *tensor.RawTensor {
	t.Helper()
	r, err := tensor.NewRaw(shape, tensor.Float32, tensor.CPU)
	require.NoError(t, err)
	copy(r.AsFloat32(), data)
	return r
}

func randRaw64(rng *rand.Rand, shape tensor.Shape) *tensor.RawTensor {
	r := tensor.MustNewRaw(shape, tensor.Float64, tensor.CPU)
	for i := range r.AsFloat64() {
		r.AsFloat64()[i] = rng.NormFloat64()
	}
	return r
}

func dot64(a, b *tensor.RawTensor) float64 {
	var s float64
	for i, v := range a.AsFloat64() {
		s += v * b.AsFloat64()[i]
	}
	return s
}

func TestAdd_Broadcast(t *testing.T) {
	backend := New()

	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := raw32(t, tensor.Shape{3}, 10, 20, 30)

	out := backend.Add(a, b)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{11, 22, 33, 14, 25, 36}, out.AsFloat32())
}

func TestDiv_ByScalarShapedTensor(t *testing.T) {
	backend := New()

	w := raw32(t, tensor.Shape{2, 2}, 2, 4, 6, 8)
	sigma := raw32(t, tensor.Shape{1, 1}, 2)

	out := backend.Div(w, sigma)
	assert.Equal(t, []float32{1, 2, 3, 4}, out.AsFloat32())
	// Inputs are never written.
	assert.Equal(t, []float32{2, 4, 6, 8}, w.AsFloat32())
}

func TestMatMul(t *testing.T) {
	backend := New()

	a := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)
	b := raw32(t, tensor.Shape{3, 2}, 7, 8, 9, 10, 11, 12)

	out := backend.MatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 2}, out.Shape())
	assert.Equal(t, []float32{58, 64, 139, 154}, out.AsFloat32())
}

func TestBatchMatMul(t *testing.T) {
	backend := NewWithConfig(parallel.Config{Enabled: true, NumWorkers: 2, MinChunkSize: 1})

	a := raw32(t, tensor.Shape{2, 1, 2}, 1, 2, 3, 4)
	b := raw32(t, tensor.Shape{2, 2, 1}, 5, 6, 7, 8)

	out := backend.BatchMatMul(a, b)
	assert.Equal(t, tensor.Shape{2, 1, 1}, out.Shape())
	assert.Equal(t, []float32{17, 53}, out.AsFloat32())
}

func TestTranspose_Permute(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{1, 2, 2, 3}, 0, 1, 2, 3, 4, 5, 6, 7, 8, 9, 10, 11)
	out := backend.Transpose(x, 0, 3, 1, 2)

	assert.Equal(t, tensor.Shape{1, 3, 2, 2}, out.Shape())
	assert.Equal(t, []float32{0, 3, 6, 9, 1, 4, 7, 10, 2, 5, 8, 11}, out.AsFloat32())
}

func TestConv2D_BasicForward(t *testing.T) {
	backend := New()

	input := raw32(t, tensor.Shape{1, 1, 3, 3}, 1, 2, 3, 4, 5, 6, 7, 8, 9)
	kernel := raw32(t, tensor.Shape{1, 1, 2, 2}, 1, 0, 0, 1)

	out := backend.Conv2D(input, kernel, 1, 0)
	assert.Equal(t, tensor.Shape{1, 1, 2, 2}, out.Shape())
	assert.Equal(t, []float32{6, 8, 12, 14}, out.AsFloat32())
}

func TestConv2D_BackwardIsAdjoint(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(7))

	x := randRaw64(rng, tensor.Shape{2, 3, 5, 5})
	k := randRaw64(rng, tensor.Shape{4, 3, 3, 3})
	y := backend.Conv2D(x, k, 2, 1)
	g := randRaw64(rng, y.Shape())

	dx := backend.Conv2DInputBackward(x, k, g, 2, 1)
	dk := backend.Conv2DKernelBackward(x, k, g, 2, 1)

	// Conv2D is bilinear, so <conv(x, k), g> = <x, dx> = <k, dk>.
	lhs := dot64(y, g)
	assert.InDelta(t, lhs, dot64(x, dx), 1e-9)
	assert.InDelta(t, lhs, dot64(k, dk), 1e-9)
}

func TestConvTranspose2D_OutputSize(t *testing.T) {
	backend := New()

	x := tensor.MustNewRaw(tensor.Shape{1, 8, 4, 4}, tensor.Float32, tensor.CPU)
	k := tensor.MustNewRaw(tensor.Shape{8, 3, 4, 4}, tensor.Float32, tensor.CPU)

	out := backend.ConvTranspose2D(x, k, 2, 1)
	assert.Equal(t, tensor.Shape{1, 3, 8, 8}, out.Shape())
}

func TestConvTranspose2D_AdjointOfConv2D(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(11))

	// Transposed kernel [Cin, Cout, KH, KW] is a conv kernel from Cout to Cin.
	k := randRaw64(rng, tensor.Shape{4, 2, 3, 3})
	x := randRaw64(rng, tensor.Shape{1, 4, 3, 3})

	y := backend.ConvTranspose2D(x, k, 2, 1)
	assert.Equal(t, tensor.Shape{1, 2, 5, 5}, y.Shape())

	z := randRaw64(rng, y.Shape())
	cz := backend.Conv2D(z, k, 2, 1)
	assert.InDelta(t, dot64(y, z), dot64(x, cz), 1e-9)
}

func TestConvTranspose2D_Scatter(t *testing.T) {
	backend := New()

	// A single input pixel stamps the kernel into the output.
	x := raw32(t, tensor.Shape{1, 1, 1, 1}, 2)
	k := raw32(t, tensor.Shape{1, 1, 2, 2}, 1, 2, 3, 4)

	out := backend.ConvTranspose2D(x, k, 1, 0)
	assert.Equal(t, []float32{2, 4, 6, 8}, out.AsFloat32())
}

func TestMaxPool2D(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{1, 1, 2, 4}, 1, 5, 2, 0, 3, 4, 8, 7)
	out := backend.MaxPool2D(x, 2, 2)

	assert.Equal(t, tensor.Shape{1, 1, 1, 2}, out.Shape())
	assert.Equal(t, []float32{5, 8}, out.AsFloat32())

	grad := raw32(t, tensor.Shape{1, 1, 1, 2}, 1, 2)
	dx := backend.MaxPool2DBackward(x, grad, []int{1, 6}, 2, 2)
	assert.Equal(t, []float32{0, 1, 0, 0, 0, 0, 2, 0}, dx.AsFloat32())
}

func TestSoftmax_LastDim(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 1000, 1000, 1000)
	out := backend.Softmax(x, -1).AsFloat32()

	assert.InDelta(t, 1.0, out[0]+out[1]+out[2], 1e-6)
	assert.Greater(t, out[2], out[1])
	for _, v := range out[3:] {
		assert.InDelta(t, 1.0/3.0, v, 1e-6)
	}
}

func TestSumDim(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 3}, 1, 2, 3, 4, 5, 6)

	assert.Equal(t, []float32{5, 7, 9}, backend.SumDim(x, 0, false).AsFloat32())
	keep := backend.SumDim(x, 1, true)
	assert.Equal(t, tensor.Shape{2, 1}, keep.Shape())
	assert.Equal(t, []float32{6, 15}, keep.AsFloat32())
	assert.Equal(t, float32(21), backend.Sum(x).AsFloat32()[0])
}

func TestMaxDim(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{2, 3}, 1, 7, 3, 4, -5, 6)

	assert.Equal(t, []float32{4, 7, 6}, backend.MaxDim(x, 0, false).AsFloat32())
	keep := backend.MaxDim(x, -1, true)
	assert.Equal(t, tensor.Shape{2, 1}, keep.Shape())
	assert.Equal(t, []float32{7, 6}, keep.AsFloat32())
}

func TestCat(t *testing.T) {
	backend := New()

	a := raw32(t, tensor.Shape{2, 1}, 1, 2)
	b := raw32(t, tensor.Shape{2, 2}, 3, 4, 5, 6)

	out := backend.Cat([]*tensor.RawTensor{a, b}, 1)
	assert.Equal(t, tensor.Shape{2, 3}, out.Shape())
	assert.Equal(t, []float32{1, 3, 4, 2, 5, 6}, out.AsFloat32())

	rows := backend.Cat([]*tensor.RawTensor{b, b}, 0)
	assert.Equal(t, []float32{3, 4, 5, 6, 3, 4, 5, 6}, rows.AsFloat32())

	assert.Panics(t, func() { backend.Cat([]*tensor.RawTensor{a, b}, 0) })
}

func TestDepthToSpace(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{1, 1, 1, 4}, 1, 2, 3, 4)
	out := backend.DepthToSpace(x, 2)
	assert.Equal(t, tensor.Shape{1, 2, 2, 1}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, out.AsFloat32())

	assert.Panics(t, func() { backend.DepthToSpace(raw32(t, tensor.Shape{1, 1, 1, 3}), 2) })
}

func TestSpaceToDepth(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{1, 2, 2, 1}, 1, 2, 3, 4)
	out := backend.SpaceToDepth(x, 2)
	assert.Equal(t, tensor.Shape{1, 1, 1, 4}, out.Shape())
	assert.Equal(t, []float32{1, 2, 3, 4}, out.AsFloat32())

	assert.Panics(t, func() { backend.SpaceToDepth(raw32(t, tensor.Shape{1, 3, 2, 1}), 2) })
}

func TestDepthToSpace_ChannelsMoveIntoBlocks(t *testing.T) {
	backend := New()

	// Two output channels: pixel (i, j) of the 2×2 block takes channels
	// 2·(2i+j) and 2·(2i+j)+1.
	x := raw32(t, tensor.Shape{1, 1, 1, 8}, 0, 10, 1, 11, 2, 12, 3, 13)
	out := backend.DepthToSpace(x, 2)
	assert.Equal(t, tensor.Shape{1, 2, 2, 2}, out.Shape())
	assert.Equal(t, []float32{0, 10, 1, 11, 2, 12, 3, 13}, out.AsFloat32())

	// A 2×4 image splits into two blocks side by side.
	img := raw32(t, tensor.Shape{1, 2, 4, 1}, 1, 2, 3, 4, 5, 6, 7, 8)
	depth := backend.SpaceToDepth(img, 2)
	assert.Equal(t, tensor.Shape{1, 1, 2, 4}, depth.Shape())
	assert.Equal(t, []float32{1, 2, 5, 6, 3, 4, 7, 8}, depth.AsFloat32())
	assert.Equal(t, img.AsFloat32(), backend.DepthToSpace(depth, 2).AsFloat32())
}

func TestDepthToSpace_AdjointOfSpaceToDepth(t *testing.T) {
	backend := New()
	rng := rand.New(rand.NewSource(5))

	// <D2S(x), y> == <x, S2D(y)>
	x := randRaw64(rng, tensor.Shape{2, 3, 2, 12})
	y := randRaw64(rng, tensor.Shape{2, 6, 4, 3})
	assert.InDelta(t, dot64(backend.DepthToSpace(x, 2), y), dot64(x, backend.SpaceToDepth(y, 2)), 1e-9)
}

func TestActivations(t *testing.T) {
	backend := New()

	x := raw32(t, tensor.Shape{3}, -2, 0, 3)
	assert.Equal(t, []float32{0, 0, 3}, backend.ReLU(x).AsFloat32())
	assert.Equal(t, []float32{-0.4, 0, 3}, backend.LeakyReLU(x, 0.2).AsFloat32())
	assert.InDelta(t, 0.5, backend.Sigmoid(x).AsFloat32()[1], 1e-7)
	assert.InDelta(t, 0.0, backend.Tanh(x).AsFloat32()[1], 1e-7)
}
