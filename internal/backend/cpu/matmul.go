package cpu

import (
	"fmt"

	"github.com/born-ml/gan/internal/tensor"
	"gonum.org/v1/gonum/blas"
	"gonum.org/v1/gonum/blas/blas32"
	"gonum.org/v1/gonum/blas/blas64"
)

// MatMul performs 2D matrix multiplication: [M, K] @ [K, N] -> [M, N].
func (cpu *CPUBackend) MatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	if len(a.Shape()) != 2 || len(b.Shape()) != 2 {
		panic(fmt.Sprintf("matmul: expected 2D tensors, got %v and %v", a.Shape(), b.Shape()))
	}
	m, k := a.Shape()[0], a.Shape()[1]
	k2, n := b.Shape()[0], b.Shape()[1]
	if k != k2 {
		panic(fmt.Sprintf("matmul: inner dimensions mismatch %v @ %v", a.Shape(), b.Shape()))
	}
	if a.DType() != b.DType() {
		panic(fmt.Sprintf("matmul: dtype mismatch %s vs %s", a.DType(), b.DType()))
	}

	result := cpu.alloc("matmul", tensor.Shape{m, n}, a.DType())
	switch a.DType() {
	case tensor.Float32:
		gemm(false, false, m, n, k, a.AsFloat32(), b.AsFloat32(), 0, result.AsFloat32())
	case tensor.Float64:
		gemm(false, false, m, n, k, a.AsFloat64(), b.AsFloat64(), 0, result.AsFloat64())
	}
	return result
}

// BatchMatMul multiplies stacks of matrices with identical leading dimensions:
// [..., M, K] @ [..., K, N] -> [..., M, N].
func (cpu *CPUBackend) BatchMatMul(a, b *tensor.RawTensor) *tensor.RawTensor {
	as, bs := a.Shape(), b.Shape()
	if len(as) < 3 || len(as) != len(bs) {
		panic(fmt.Sprintf("batchmatmul: expected matching rank >= 3, got %v and %v", as, bs))
	}
	if !as[:len(as)-2].Equal(bs[:len(bs)-2]) {
		panic(fmt.Sprintf("batchmatmul: batch dimensions mismatch %v vs %v", as, bs))
	}
	m, k := as[len(as)-2], as[len(as)-1]
	k2, n := bs[len(bs)-2], bs[len(bs)-1]
	if k != k2 {
		panic(fmt.Sprintf("batchmatmul: inner dimensions mismatch %v @ %v", as, bs))
	}

	outShape := append(as[:len(as)-2].Clone(), m, n)
	batch := as[:len(as)-2].NumElements()
	result := cpu.alloc("batchmatmul", outShape, a.DType())

	switch a.DType() {
	case tensor.Float32:
		batchGemm(cpu, batch, m, n, k, a.AsFloat32(), b.AsFloat32(), result.AsFloat32())
	case tensor.Float64:
		batchGemm(cpu, batch, m, n, k, a.AsFloat64(), b.AsFloat64(), result.AsFloat64())
	}
	return result
}

func batchGemm[T float](cpu *CPUBackend, batch, m, n, k int, a, b, c []T) {
	parallelFor(cpu, batch, func(i int) {
		gemm(false, false, m, n, k,
			a[i*m*k:(i+1)*m*k],
			b[i*k*n:(i+1)*k*n],
			0,
			c[i*m*n:(i+1)*m*n])
	})
}

// gemm computes c = op(a)·op(b) + beta·c for row-major operands where op(a)
// is [m, k] and op(b) is [k, n].
func gemm[T float](transA, transB bool, m, n, k int, a, b []T, beta T, c []T) {
	tA, aRows, aCols := blas.NoTrans, m, k
	if transA {
		tA, aRows, aCols = blas.Trans, k, m
	}
	tB, bRows, bCols := blas.NoTrans, k, n
	if transB {
		tB, bRows, bCols = blas.Trans, n, k
	}

	switch cc := any(c).(type) {
	case []float32:
		blas32.Gemm(tA, tB, 1,
			blas32.General{Rows: aRows, Cols: aCols, Stride: aCols, Data: any(a).([]float32)},
			blas32.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float32)},
			float32(beta),
			blas32.General{Rows: m, Cols: n, Stride: n, Data: cc})
	case []float64:
		blas64.Gemm(tA, tB, 1,
			blas64.General{Rows: aRows, Cols: aCols, Stride: aCols, Data: any(a).([]float64)},
			blas64.General{Rows: bRows, Cols: bCols, Stride: bCols, Data: any(b).([]float64)},
			float64(beta),
			blas64.General{Rows: m, Cols: n, Stride: n, Data: cc})
	}
}
