package tensor

import (
	"fmt"

	"github.com/pkg/errors"
)

// Shape represents the dimensions of a tensor.
type Shape []int

// NumElements returns the total number of elements in the tensor.
func (s Shape) NumElements() int {
	n := 1
	for _, dim := range s {
		n *= dim
	}
	return n
}

// Rank returns the number of dimensions.
func (s Shape) Rank() int {
	return len(s)
}

// Validate checks that every dimension is positive.
func (s Shape) Validate() error {
	for i, dim := range s {
		if dim <= 0 {
			return errors.Errorf("invalid dimension at index %d: %d (must be > 0)", i, dim)
		}
	}
	return nil
}

// Equal checks if two shapes are equal.
func (s Shape) Equal(other Shape) bool {
	if len(s) != len(other) {
		return false
	}
	for i := range s {
		if s[i] != other[i] {
			return false
		}
	}
	return true
}

// Clone returns a copy of the shape.
func (s Shape) Clone() Shape {
	return append(Shape(nil), s...)
}

// ComputeStrides calculates row-major strides for the shape.
func (s Shape) ComputeStrides() []int {
	strides := make([]int, len(s))
	acc := 1
	for i := len(s) - 1; i >= 0; i-- {
		strides[i] = acc
		acc *= s[i]
	}
	return strides
}

// Permute returns the shape reordered by axes.
// An empty axes list reverses the dimensions.
func (s Shape) Permute(axes ...int) Shape {
	if len(axes) == 0 {
		out := make(Shape, len(s))
		for i := range s {
			out[i] = s[len(s)-1-i]
		}
		return out
	}
	if len(axes) != len(s) {
		panic(fmt.Sprintf("permute: got %d axes for rank %d", len(axes), len(s)))
	}
	out := make(Shape, len(s))
	seen := make([]bool, len(s))
	for i, ax := range axes {
		if ax < 0 || ax >= len(s) || seen[ax] {
			panic(fmt.Sprintf("permute: invalid axes %v for rank %d", axes, len(s)))
		}
		seen[ax] = true
		out[i] = s[ax]
	}
	return out
}

// NormalizeAxis maps a possibly negative axis into [0, rank).
func NormalizeAxis(axis, rank int) int {
	if axis < 0 {
		axis += rank
	}
	if axis < 0 || axis >= rank {
		panic(fmt.Sprintf("axis %d out of range for rank %d", axis, rank))
	}
	return axis
}

// BroadcastShapes implements NumPy-style broadcasting.
//
// Shapes are aligned from the right; a dimension is compatible when both sides
// are equal or one of them is 1. Missing leading dimensions count as 1.
//
//	(3, 1) + (3, 5) → (3, 5), true
//	(8, 4) + (1, 1) → (8, 4), true
//	(3, 4) + (3, 5) → error
func BroadcastShapes(a, b Shape) (Shape, bool, error) {
	rank := max(len(a), len(b))
	result := make(Shape, rank)
	needsBroadcast := len(a) != len(b)

	for i := 1; i <= rank; i++ {
		aDim, bDim := 1, 1
		if len(a)-i >= 0 {
			aDim = a[len(a)-i]
		}
		if len(b)-i >= 0 {
			bDim = b[len(b)-i]
		}

		switch {
		case aDim == bDim:
			result[rank-i] = aDim
		case aDim == 1:
			result[rank-i] = bDim
			needsBroadcast = true
		case bDim == 1:
			result[rank-i] = aDim
			needsBroadcast = true
		default:
			return nil, false, errors.Errorf("shapes not compatible for broadcasting: %v vs %v (dimension %d: %d vs %d)",
				a, b, rank-i, aDim, bDim)
		}
	}

	return result, needsBroadcast, nil
}
