package nn

import (
	"fmt"
	"math"
)

// normEpsilon keeps normalization finite for all-zero vectors.
const normEpsilon = 1e-8

// PowerIterate estimates the largest singular value of the row-major
// rows×cols matrix w, starting from the right vector v (length cols).
//
// Each of the k steps computes
//
//	u ← normalize(v·Wᵗ)
//	v ← normalize(u·W)
//
// with normalize(x) = x / sqrt(Σx² + 1e-8), and the estimate is u·W·vᵗ.
// The inputs are not modified; the refined vectors are returned.
//
// Sums run in index order with float64 accumulators, so equal inputs give
// bit-identical results wherever the slices live in memory.
func PowerIterate(w []float32, rows, cols int, v []float32, k int) (sigma float32, u, vNext []float32) {
	if len(w) != rows*cols || len(v) != cols {
		panic(fmt.Sprintf("power iteration: matrix %dx%d with %d values and vector of %d", rows, cols, len(w), len(v)))
	}
	if k < 1 {
		panic(fmt.Sprintf("power iteration: need at least one step, got %d", k))
	}

	u = make([]float32, rows)
	vNext = append([]float32(nil), v...)
	for i := 0; i < k; i++ {
		matVec(w, rows, cols, vNext, u)
		l2Normalize(u)
		vecMat(w, rows, cols, u, vNext)
		l2Normalize(vNext)
	}

	wv := make([]float32, rows)
	matVec(w, rows, cols, vNext, wv)
	return float32(dot(u, wv)), u, vNext
}

// matVec writes W·x into y.
func matVec(w []float32, rows, cols int, x, y []float32) {
	for r := 0; r < rows; r++ {
		y[r] = float32(dot(w[r*cols:(r+1)*cols], x))
	}
}

// vecMat writes x·W into y.
func vecMat(w []float32, rows, cols int, x, y []float32) {
	acc := make([]float64, cols)
	for r := 0; r < rows; r++ {
		xr := float64(x[r])
		row := w[r*cols : (r+1)*cols]
		for c, wc := range row {
			acc[c] += xr * float64(wc)
		}
	}
	for c, s := range acc {
		y[c] = float32(s)
	}
}

func dot(a, b []float32) float64 {
	var s float64
	for i, x := range a {
		s += float64(x) * float64(b[i])
	}
	return s
}

func l2Normalize(x []float32) {
	scale := 1 / math.Sqrt(dot(x, x)+normEpsilon)
	for i, xi := range x {
		x[i] = float32(float64(xi) * scale)
	}
}
