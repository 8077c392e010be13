// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package interp

import (
	"fmt"
	"strings"

	"github.com/gomlx/exceptions"

	"github.com/tilir/tilir/pkg/core/shapes"
)

// Tensor is a concrete value handled by the interpreter: a shape plus flat
// row-major data. The reference interpreter stores every element type as
// float64; integer dtypes (e.g. scatter indices) are exact up to 2^53.
type Tensor struct {
	shape shapes.Shape
	data  []float64
}

// NewTensor wraps the given flat row-major data with the shape. The shape must
// be fully static and the data length must match its size.
func NewTensor(shape shapes.Shape, data []float64) *Tensor {
	if !shape.IsFullyStatic() {
		exceptions.Panicf("interp.NewTensor: shape %s is not fully static", shape)
	}
	if len(data) != shape.Size() {
		exceptions.Panicf("interp.NewTensor: %d elements for shape %s (size %d)", len(data), shape, shape.Size())
	}
	return &Tensor{shape: shape, data: data}
}

// Zeros returns a zero-initialized tensor of the given shape.
func Zeros(shape shapes.Shape) *Tensor {
	return NewTensor(shape, make([]float64, shape.Size()))
}

// Full returns a tensor of the given shape filled with value.
func Full(shape shapes.Shape, value float64) *Tensor {
	t := Zeros(shape)
	for idx := range t.data {
		t.data[idx] = value
	}
	return t
}

// Shape of the tensor.
func (t *Tensor) Shape() shapes.Shape { return t.shape }

// Data returns the flat row-major data, aliased (not a copy).
func (t *Tensor) Data() []float64 { return t.data }

// Clone returns a deep copy of the tensor.
func (t *Tensor) Clone() *Tensor {
	data := make([]float64, len(t.data))
	copy(data, t.data)
	return &Tensor{shape: t.shape.Clone(), data: data}
}

// At returns the element at the given multi-dimensional index.
func (t *Tensor) At(indices ...int64) float64 {
	return t.data[t.flatIndex(indices)]
}

// Set writes the element at the given multi-dimensional index.
func (t *Tensor) Set(value float64, indices ...int64) {
	t.data[t.flatIndex(indices)] = value
}

func (t *Tensor) flatIndex(indices []int64) int {
	if len(indices) != t.shape.Rank() {
		exceptions.Panicf("Tensor.flatIndex: %d indices for rank %d", len(indices), t.shape.Rank())
	}
	flat := int64(0)
	for axis, index := range indices {
		dim := int64(t.shape.Dim(axis))
		if index < 0 || index >= dim {
			exceptions.Panicf("Tensor.flatIndex: index %d out of range for axis %d (dim %d)", index, axis, dim)
		}
		flat = flat*dim + index
	}
	return int(flat)
}

// String implements fmt.Stringer, printing shape and flat data.
func (t *Tensor) String() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s%v", t.shape, t.data)
	return b.String()
}

// iterIndices calls fn once for every multi-dimensional index of the given
// dims, in row-major order. dims with any zero entry yield no calls.
func iterIndices(dims []int64, fn func(indices []int64)) {
	if len(dims) == 0 {
		fn(nil)
		return
	}
	for _, dim := range dims {
		if dim == 0 {
			return
		}
	}
	indices := make([]int64, len(dims))
	for {
		fn(indices)
		axis := len(dims) - 1
		for ; axis >= 0; axis-- {
			indices[axis]++
			if indices[axis] < dims[axis] {
				break
			}
			indices[axis] = 0
		}
		if axis < 0 {
			return
		}
	}
}
