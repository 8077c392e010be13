// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

import (
	"fmt"

	"github.com/gomlx/exceptions"

	"github.com/tilir/tilir/pkg/support/xslices"
)

// Extent is an index quantity that is either a static (IR-construction time)
// constant or a dynamically computed index value. Offsets, sizes and strides of
// slices and loop bounds are all Extents, so that arithmetic on them folds
// statically whenever possible.
//
// The zero Extent is the static constant 0.
type Extent struct {
	node   *Node
	static int64
}

// StaticExtent returns an Extent with a static value.
func StaticExtent(value int64) Extent {
	return Extent{static: value}
}

// StaticExtents converts a list of static values to Extents.
func StaticExtents(values ...int64) []Extent {
	return xslices.Map(values, StaticExtent)
}

// ValueExtent returns an Extent for a dynamically computed index value. If the
// node is an index constant it is folded back to a static Extent.
func ValueExtent(n *Node) Extent {
	if n == nil {
		exceptions.Panicf("ValueExtent: nil node")
	}
	if n.Type() == OpConstant {
		return StaticExtent(n.data.(int64))
	}
	if !n.Shape().IsIndex() {
		exceptions.Panicf("ValueExtent: node %s has shape %s, expected an index scalar", n.Type(), n.Shape())
	}
	return Extent{node: n}
}

// IsStatic returns whether the extent is a static constant.
func (e Extent) IsStatic() bool { return e.node == nil }

// Static returns the static value. It panics on a dynamic extent.
func (e Extent) Static() int64 {
	if !e.IsStatic() {
		exceptions.Panicf("Extent.Static() called on dynamic extent %s", e)
	}
	return e.static
}

// IsStaticZero returns whether the extent is statically 0.
func (e Extent) IsStaticZero() bool { return e.IsStatic() && e.static == 0 }

// IsStaticOne returns whether the extent is statically 1.
func (e Extent) IsStaticOne() bool { return e.IsStatic() && e.static == 1 }

// Node returns the dynamic value, or nil for a static extent.
func (e Extent) Node() *Node { return e.node }

// Value materializes the extent as an index value in the IR, creating a
// constant node for static extents.
func (e Extent) Value(b *Builder) *Node {
	if e.IsStatic() {
		return b.ConstantIndex(e.static)
	}
	return e.node
}

// String implements fmt.Stringer.
func (e Extent) String() string {
	if e.IsStatic() {
		return fmt.Sprintf("%d", e.static)
	}
	return "?"
}

// UnitStrides returns rank unit-stride Extents.
func UnitStrides(rank int) []Extent {
	return xslices.SliceWithValue(rank, StaticExtent(1))
}

// ZeroOffsets returns rank zero-offset Extents.
func ZeroOffsets(rank int) []Extent {
	return xslices.SliceWithValue(rank, StaticExtent(0))
}

// AddExtents returns x+y, folding statically when both extents are static.
func AddExtents(b *Builder, x, y Extent) Extent {
	if x.IsStatic() && y.IsStatic() {
		return StaticExtent(x.static + y.static)
	}
	if x.IsStaticZero() {
		return y
	}
	if y.IsStaticZero() {
		return x
	}
	return ValueExtent(b.Add(x.Value(b), y.Value(b)))
}

// SubExtents returns x-y, folding statically when both extents are static.
func SubExtents(b *Builder, x, y Extent) Extent {
	if x.IsStatic() && y.IsStatic() {
		return StaticExtent(x.static - y.static)
	}
	if y.IsStaticZero() {
		return x
	}
	return ValueExtent(b.Sub(x.Value(b), y.Value(b)))
}

// MulExtents returns x*y, folding statically when both extents are static.
func MulExtents(b *Builder, x, y Extent) Extent {
	if x.IsStatic() && y.IsStatic() {
		return StaticExtent(x.static * y.static)
	}
	if x.IsStaticOne() {
		return y
	}
	if y.IsStaticOne() {
		return x
	}
	return ValueExtent(b.Mul(x.Value(b), y.Value(b)))
}

// MinExtents returns min(x, y), folding statically when both extents are static.
func MinExtents(b *Builder, x, y Extent) Extent {
	if x.IsStatic() && y.IsStatic() {
		return StaticExtent(min(x.static, y.static))
	}
	return ValueExtent(b.Min(x.Value(b), y.Value(b)))
}

// DimExtent returns the dimension of the given axis of x as an Extent: static
// for static axes, a fresh OpDim value for dynamic ones.
func (b *Builder) DimExtent(x *Node, axis int) Extent {
	if !x.Shape().IsDynamicDim(axis) {
		return StaticExtent(int64(x.Shape().Dim(axis)))
	}
	return ValueExtent(b.Dim(x, axis))
}
