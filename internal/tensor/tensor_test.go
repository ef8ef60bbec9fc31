package tensor_test

import (
	"math/rand"
	"testing"

	"github.com/born-ml/gan/internal/backend/cpu"
	"github.com/born-ml/gan/internal/tensor"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestFromSlice(t *testing.T) {
	backend := cpu.New()

	x, err := tensor.FromSlice([]float32{1, 2, 3, 4, 5, 6}, tensor.Shape{2, 3}, backend)
	require.NoError(t, err)
	assert.Equal(t, tensor.Float32, x.DType())
	assert.Equal(t, tensor.CPU, x.Device())
	assert.Equal(t, float32(6), x.At(1, 2))

	x.Set(9, 0, 1)
	assert.Equal(t, []float32{1, 9, 3, 4, 5, 6}, x.Data())

	_, err = tensor.FromSlice([]float32{1, 2}, tensor.Shape{3}, backend)
	assert.Error(t, err)
}

func TestFromSlice_CopiesInput(t *testing.T) {
	data := []float64{1, 2}
	x, err := tensor.FromSlice(data, tensor.Shape{2}, cpu.New())
	require.NoError(t, err)

	data[0] = 100
	assert.Equal(t, []float64{1, 2}, x.Data())
	assert.Equal(t, tensor.Float64, x.DType())
}

func TestCreation(t *testing.T) {
	backend := cpu.New()

	assert.Equal(t, []float32{0, 0, 0}, tensor.Zeros[float32](tensor.Shape{3}, backend).Data())
	assert.Equal(t, []float32{1, 1}, tensor.Ones[float32](tensor.Shape{2}, backend).Data())
	assert.Equal(t, []float64{2.5, 2.5}, tensor.Full[float64](tensor.Shape{2}, 2.5, backend).Data())
	assert.Equal(t, []float32{1, 0, 0, 1}, tensor.Eye[float32](2, backend).Data())
}

func TestRandnWithSource_Reproducible(t *testing.T) {
	backend := cpu.New()
	a := tensor.RandnWithSource[float32](tensor.Shape{5, 7}, rand.New(rand.NewSource(3)), backend)
	b := tensor.RandnWithSource[float32](tensor.Shape{5, 7}, rand.New(rand.NewSource(3)), backend)
	assert.Equal(t, a.Data(), b.Data())

	big := tensor.RandnWithSource[float64](tensor.Shape{20000}, rand.New(rand.NewSource(1)), backend)
	var mean, sq float64
	for _, v := range big.Data() {
		mean += v
		sq += v * v
	}
	mean /= 20000
	assert.InDelta(t, 0.0, mean, 0.05)
	assert.InDelta(t, 1.0, sq/20000-mean*mean, 0.05)
}

func TestUniform_Range(t *testing.T) {
	x := tensor.Uniform[float32](tensor.Shape{1000}, -0.5, 0.5, rand.New(rand.NewSource(1)), cpu.New())
	for _, v := range x.Data() {
		assert.GreaterOrEqual(t, v, float32(-0.5))
		assert.Less(t, v, float32(0.5))
	}
}

func TestItem(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{1, 2, 3}, tensor.Shape{3}, backend)

	assert.Equal(t, float32(6), x.Sum().Item())
	assert.Panics(t, func() { x.Item() })
}

func TestDetachSharesStorage(t *testing.T) {
	backend := cpu.New()
	x, _ := tensor.FromSlice([]float32{1, 2}, tensor.Shape{2}, backend)
	d := x.Detach()
	d.Data()[0] = 5

	assert.Equal(t, float32(5), x.At(0))
	assert.NotSame(t, x.Raw(), d.Raw())

	c := x.Clone()
	c.Data()[1] = 7
	assert.Equal(t, float32(2), x.At(1))
}

func TestOps(t *testing.T) {
	backend := cpu.New()
	a, _ := tensor.FromSlice([]float32{1, 2, 3, 4}, tensor.Shape{2, 2}, backend)
	b, _ := tensor.FromSlice([]float32{10, 20}, tensor.Shape{2}, backend)

	assert.Equal(t, []float32{11, 22, 13, 24}, a.Add(b).Data())
	assert.Equal(t, []float32{-9, -18, -7, -16}, a.Sub(b).Data())
	assert.Equal(t, []float32{10, 40, 30, 80}, a.Mul(b).Data())
	assert.Equal(t, []float32{2, 4, 6, 8}, a.MulScalar(2).Data())
	assert.Equal(t, []float32{2, 3, 4, 5}, a.AddScalar(1).Data())
	assert.Equal(t, []float32{7, 10, 15, 22}, a.MatMul(a).Data())
	assert.Equal(t, []float32{1, 3, 2, 4}, a.T().Data())
	assert.Equal(t, []float32{4, 6}, a.SumDim(0, false).Data())
	assert.Equal(t, tensor.Shape{2, 1}, a.SumDim(-1, true).Shape())

	// Inputs are never modified.
	assert.Equal(t, []float32{1, 2, 3, 4}, a.Data())
}

func TestReshape_InfersDimension(t *testing.T) {
	x := tensor.Zeros[float32](tensor.Shape{2, 3, 4}, cpu.New())

	assert.Equal(t, tensor.Shape{6, 4}, x.Reshape(-1, 4).Shape())
	assert.Equal(t, tensor.Shape{2, 12}, x.Reshape(2, -1).Shape())
	assert.Panics(t, func() { x.Reshape(5, -1) })
	assert.Panics(t, func() { x.Reshape(-1, -1) })
}

func TestString(t *testing.T) {
	x := tensor.Zeros[float32](tensor.Shape{2, 3}, cpu.New())
	assert.Equal(t, "Tensor[float32][2 3] on CPU", x.String())
}
