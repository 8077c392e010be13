// Copyright 2026 The TilIR Authors. SPDX-License-Identifier: Apache-2.0

package ir

// This file defines the domain operations of the IR and their Tileable
// capability implementations. All three are destination-style: the last
// operand(s) are the accumulator outputs the result is composed into.

import (
	"github.com/gomlx/exceptions"
	"github.com/gomlx/gopjrt/dtypes"
	"github.com/pkg/errors"

	"github.com/tilir/tilir/pkg/core/shapes"
	"github.com/tilir/tilir/pkg/support/xslices"
)

type scaleData struct {
	factor float64
}

// Scale multiplies every element of x by factor, writing into the destination
// tensor dest (same shape as x). It is the simplest pointwise operation: every
// iteration-space dimension is parallel.
func (b *Builder) Scale(x, dest *Node, factor float64) *Node {
	b.checkNodes("Scale", x, dest)
	if x.Shape().IsBuffer || dest.Shape().IsBuffer {
		exceptions.Panicf("Scale: operands must be tensors, got %s and %s", x.Shape(), dest.Shape())
	}
	if !x.Shape().Equal(dest.Shape()) {
		exceptions.Panicf("Scale: x and dest shapes differ: %s vs %s", x.Shape(), dest.Shape())
	}
	n := b.newNode(OpScale, x.Shape().Clone(), x, dest)
	n.data = scaleData{factor: factor}
	return n
}

// ScaleFactor returns the factor of an OpScale node.
func (n *Node) ScaleFactor() float64 {
	if n.opType != OpScale {
		exceptions.Panicf("ScaleFactor called on %s node", n.opType)
	}
	return n.data.(scaleData).factor
}

// Scatter writes each row of updates into dest at the row given by the
// corresponding entry of indices (a 1-D Int64 tensor with one entry per
// leading-axis row of updates).
//
// If dest is a tensor, Scatter produces the updated tensor. If dest is a
// buffer, Scatter writes in place and produces no results.
func (b *Builder) Scatter(updates, indices, dest *Node) *Node {
	b.checkNodes("Scatter", updates, indices, dest)
	if updates.Shape().IsBuffer || indices.Shape().IsBuffer {
		exceptions.Panicf("Scatter: updates and indices must be tensors")
	}
	if indices.Shape().Rank() != 1 || indices.Shape().DType != dtypes.Int64 {
		exceptions.Panicf("Scatter: indices must be a 1-D Int64 tensor, got %s", indices.Shape())
	}
	if updates.Shape().Rank() != dest.Shape().Rank() {
		exceptions.Panicf("Scatter: updates rank %d != dest rank %d",
			updates.Shape().Rank(), dest.Shape().Rank())
	}
	shape := dest.Shape().Clone()
	if dest.Shape().IsBuffer {
		// Buffer scatter is purely effectful.
		shape = shapes.Invalid()
	}
	return b.newNode(OpScatter, shape, updates, indices, dest)
}

type sortData struct {
	axis int
}

// Sort sorts x in ascending order along the given axis, writing into x's role
// as its own destination: the operand is the accumulator the sorted result is
// composed into.
func (b *Builder) Sort(x *Node, axis int) *Node {
	b.checkNodes("Sort", x)
	if x.Shape().IsBuffer {
		exceptions.Panicf("Sort: operand must be a tensor, got %s", x.Shape())
	}
	if axis < 0 || axis >= x.Shape().Rank() {
		exceptions.Panicf("Sort: axis %d out of range for rank %d", axis, x.Shape().Rank())
	}
	n := b.newNode(OpSort, x.Shape().Clone(), x)
	n.data = sortData{axis: axis}
	return n
}

//
// Tileable implementations.
//

type scaleTileable struct{ n *Node }

func (t scaleTileable) Op() *Node { return t.n }

func (t scaleTileable) IteratorKinds() []IteratorKind {
	return xslices.SliceWithValue(t.n.Inputs()[0].Shape().Rank(), IteratorParallel)
}

func (t scaleTileable) LoopBounds(b *Builder) []Range {
	return shapeLoopBounds(b, t.n.Inputs()[0])
}

func (t scaleTileable) Outputs() []*Node {
	return []*Node{t.n.Inputs()[1]}
}

// BuildTile extracts the tile of the input and of the destination, and scales
// it; the tile's contribution lands at the tile's own offsets in the result.
func (t scaleTileable) BuildTile(b *Builder, outputs []*Node, offsets, sizes []Extent) (*Node, [][]Extent, error) {
	x := t.n.Inputs()[0]
	rank := x.Shape().Rank()
	strides := UnitStrides(rank)
	xTile := b.ExtractSlice(x, offsets, sizes, strides)
	destTile := b.ExtractSlice(outputs[0], offsets, sizes, strides)
	tiled := b.Scale(xTile, destTile, t.n.ScaleFactor())
	return tiled, [][]Extent{xslices.Copy(offsets)}, nil
}

type scatterTileable struct{ n *Node }

func (t scatterTileable) Op() *Node { return t.n }

// The iteration space of Scatter is the leading axis of updates: each tile is a
// contiguous run of update rows scattered into the whole destination.
func (t scatterTileable) IteratorKinds() []IteratorKind {
	return []IteratorKind{IteratorParallel}
}

func (t scatterTileable) LoopBounds(b *Builder) []Range {
	updates := t.n.Inputs()[0]
	return []Range{{
		Offset: StaticExtent(0),
		Size:   b.DimExtent(updates, 0),
		Stride: StaticExtent(1),
	}}
}

func (t scatterTileable) Outputs() []*Node {
	return []*Node{t.n.Inputs()[2]}
}

func (t scatterTileable) BuildTile(b *Builder, outputs []*Node, offsets, sizes []Extent) (*Node, [][]Extent, error) {
	updates, indices := t.n.Inputs()[0], t.n.Inputs()[1]
	updRank := updates.Shape().Rank()

	updOffsets := ZeroOffsets(updRank)
	updOffsets[0] = offsets[0]
	updSizes := make([]Extent, updRank)
	updSizes[0] = sizes[0]
	for axis := 1; axis < updRank; axis++ {
		updSizes[axis] = b.DimExtent(updates, axis)
	}
	updTile := b.ExtractSlice(updates, updOffsets, updSizes, UnitStrides(updRank))
	idxTile := b.ExtractSlice(indices, []Extent{offsets[0]}, []Extent{sizes[0]}, UnitStrides(1))

	tiled := b.Scatter(updTile, idxTile, outputs[0])
	if tiled.NumResults() == 0 {
		// Buffer destination: purely effectful, nothing to stitch.
		return tiled, nil, nil
	}
	// A scatter tile contributes to the whole destination.
	return tiled, [][]Extent{ZeroOffsets(outputs[0].Shape().Rank())}, nil
}

type sortTileable struct{ n *Node }

func (t sortTileable) Op() *Node { return t.n }

// Every axis of Sort is parallel except the sorted one: slices along the other
// axes are sorted independently, while splitting the sort axis itself would
// break the ordering invariant.
func (t sortTileable) IteratorKinds() []IteratorKind {
	kinds := xslices.SliceWithValue(t.n.Shape().Rank(), IteratorParallel)
	kinds[t.n.Axis()] = IteratorReduction
	return kinds
}

func (t sortTileable) LoopBounds(b *Builder) []Range {
	return shapeLoopBounds(b, t.n.Inputs()[0])
}

func (t sortTileable) Outputs() []*Node {
	return []*Node{t.n.Inputs()[0]}
}

func (t sortTileable) BuildTile(b *Builder, outputs []*Node, offsets, sizes []Extent) (*Node, [][]Extent, error) {
	axis := t.n.Axis()
	if sizes[axis].IsStatic() && int(sizes[axis].Static()) != outputs[0].Shape().Dim(axis) {
		// Cannot happen through the tiling transformation (reduction dimensions
		// are never split), but guards direct misuse of the capability.
		return nil, nil, errors.Errorf("sort tile must span the whole sort axis %d", axis)
	}
	tile := b.ExtractSlice(outputs[0], offsets, sizes, UnitStrides(outputs[0].Shape().Rank()))
	tiled := b.Sort(tile, axis)
	return tiled, [][]Extent{xslices.Copy(offsets)}, nil
}
