// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

// Package shapes defines Shape, the rank, dimensions and DType of values in the IR.
//
// A Shape describes either an immutable tensor value or a mutable buffer (see
// Shape.IsBuffer). Dimensions are usually static (known at IR construction time),
// but individual axes may be marked dynamic with DynamicDim -- e.g. the result of
// extracting a slice whose size is only known at execution time.
//
// ## Glossary
//
//   - Rank: number of axes (dimensions) of a value.
//   - Axis: the index of a dimension. We refer to a dimension index as "axis"
//     (plural axes), and to its size as its dimension.
//   - DType: the data type of the unit element, from github.com/gomlx/gopjrt/dtypes.
//   - Scalar: a shape with no axes, a single value of the associated DType.
package shapes

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
)

// DynamicDim marks an axis whose dimension is only known at execution time.
const DynamicDim = -1

// Shape represents the shape of a value in the IR: element DType, dimensions and
// whether the value has buffer (mutable, zero-result ops) or tensor (immutable,
// value-producing ops) semantics.
//
// Use Make (or MakeBuffer) to create a new shape.
type Shape struct {
	DType      dtypes.DType
	Dimensions []int

	// IsBuffer marks a mutable buffer: operations writing to it produce no results,
	// as opposed to tensor values which are threaded functionally.
	IsBuffer bool
}

// Make returns a tensor Shape filled with the values given.
// Dimensions must be positive or DynamicDim.
func Make(dtype dtypes.DType, dimensions ...int) Shape {
	s := Shape{DType: dtype, Dimensions: copyDims(dimensions)}
	for _, dim := range dimensions {
		if dim <= 0 && dim != DynamicDim {
			exceptions.Panicf("shapes.Make(%s): cannot create a shape with an axis with dimension <= 0", s)
		}
	}
	return s
}

// MakeBuffer returns a buffer Shape with the given element type and dimensions.
func MakeBuffer(dtype dtypes.DType, dimensions ...int) Shape {
	s := Make(dtype, dimensions...)
	s.IsBuffer = true
	return s
}

// Scalar returns a scalar tensor Shape of the given DType.
func Scalar(dtype dtypes.DType) Shape {
	return Shape{DType: dtype}
}

// Index returns the scalar shape used for loop bounds, offsets and sizes.
func Index() Shape {
	return Scalar(dtypes.Int64)
}

// Invalid returns an invalid shape.
//
// Invalid().Ok() == false.
func Invalid() Shape {
	return Shape{DType: dtypes.InvalidDType}
}

// Ok returns whether this is a valid Shape. A "zero" Shape, that is just instantiating
// it with Shape{}, is invalid.
func (s Shape) Ok() bool { return s.DType != dtypes.InvalidDType }

// Rank of the shape, that is, the number of axes.
func (s Shape) Rank() int { return len(s.Dimensions) }

// IsScalar returns whether the shape represents a scalar: no axes, rank 0.
func (s Shape) IsScalar() bool { return s.Ok() && s.Rank() == 0 }

// IsIndex returns whether this is the scalar index shape used for loop arithmetic.
func (s Shape) IsIndex() bool {
	return s.IsScalar() && s.DType == dtypes.Int64 && !s.IsBuffer
}

// Dim returns the dimension of the given axis. axis can take negative numbers, in which
// case it counts from the end -- so axis=-1 refers to the last axis.
// Like with slice indexing, it panics for an out-of-bounds axis.
func (s Shape) Dim(axis int) int {
	adjustedAxis := axis
	if adjustedAxis < 0 {
		adjustedAxis += s.Rank()
	}
	if adjustedAxis < 0 || adjustedAxis >= s.Rank() {
		exceptions.Panicf("Shape.Dim(%d) out-of-bounds for rank %d (shape=%s)", axis, s.Rank(), s)
	}
	return s.Dimensions[adjustedAxis]
}

// IsDynamicDim returns whether the given axis has a dynamic dimension.
func (s Shape) IsDynamicDim(axis int) bool {
	return s.Dim(axis) == DynamicDim
}

// IsFullyStatic returns whether every axis has a static dimension.
func (s Shape) IsFullyStatic() bool {
	for _, dim := range s.Dimensions {
		if dim == DynamicDim {
			return false
		}
	}
	return true
}

// Size returns the number of elements of the shape. It panics if any axis is dynamic.
func (s Shape) Size() int {
	size := 1
	for axis, dim := range s.Dimensions {
		if dim == DynamicDim {
			exceptions.Panicf("Shape.Size() of %s: axis %d is dynamic", s, axis)
		}
		size *= dim
	}
	return size
}

// Clone makes a deep copy of the shape.
func (s Shape) Clone() Shape {
	s2 := s
	s2.Dimensions = copyDims(s.Dimensions)
	return s2
}

// Equal compares dtype, dimensions and buffer-ness.
func (s Shape) Equal(other Shape) bool {
	if s.DType != other.DType || s.IsBuffer != other.IsBuffer || s.Rank() != other.Rank() {
		return false
	}
	for axis, dim := range s.Dimensions {
		if other.Dimensions[axis] != dim {
			return false
		}
	}
	return true
}

// Shape returns a shallow copy of itself. It implements the HasShape interface.
func (s Shape) Shape() Shape { return s }

// String implements fmt.Stringer, pretty-prints the shape.
func (s Shape) String() string {
	var b strings.Builder
	if s.IsBuffer {
		b.WriteString("buffer")
	}
	fmt.Fprintf(&b, "(%s)", s.DType)
	if s.Rank() > 0 {
		b.WriteString("[")
		for axis, dim := range s.Dimensions {
			if axis > 0 {
				b.WriteString(" ")
			}
			if dim == DynamicDim {
				b.WriteString("?")
			} else {
				fmt.Fprintf(&b, "%d", dim)
			}
		}
		b.WriteString("]")
	}
	return b.String()
}

// HasShape is an interface for objects that have an associated Shape.
type HasShape interface {
	Shape() Shape
}

func copyDims(dims []int) []int {
	if len(dims) == 0 {
		return nil
	}
	dims2 := make([]int, len(dims))
	copy(dims2, dims)
	return dims2
}
